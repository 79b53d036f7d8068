package jobs

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingStore struct {
	mu      sync.Mutex
	calls   int
	maxIdle time.Duration
}

func (s *countingStore) CleanupIdle(maxIdle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.maxIdle = maxIdle
	return 1
}

func (s *countingStore) snapshot() (int, time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls, s.maxIdle
}

func TestSessionCleanupJob_RunsOnSchedule(t *testing.T) {
	store := &countingStore{}
	job := NewSessionCleanupJob(store, 10*time.Millisecond, time.Hour)
	job.Start()
	defer job.Stop()

	assert.Eventually(t, func() bool {
		calls, _ := store.snapshot()
		return calls >= 2
	}, time.Second, 5*time.Millisecond)

	_, maxIdle := store.snapshot()
	assert.Equal(t, time.Hour, maxIdle)
}

func TestSessionCleanupJob_Cleanup(t *testing.T) {
	store := &countingStore{}
	job := NewSessionCleanupJob(store, time.Hour, 30*time.Minute)
	defer job.ticker.Stop()

	assert.Equal(t, 1, job.cleanup())
}
