// File: /jobs/session_cleanup_job.go
package jobs

import (
	"log"
	"time"
)

// IdleSessionStore is the part of the session registry the cleanup job needs.
type IdleSessionStore interface {
	CleanupIdle(maxIdle time.Duration) int
}

// SessionCleanupJob periodically drops editing sessions nobody has touched for maxIdle.
type SessionCleanupJob struct {
	sessions IdleSessionStore
	maxIdle  time.Duration
	ticker   *time.Ticker
	done     chan struct{}
}

func NewSessionCleanupJob(sessions IdleSessionStore, interval, maxIdle time.Duration) *SessionCleanupJob {
	return &SessionCleanupJob{
		sessions: sessions,
		maxIdle:  maxIdle,
		ticker:   time.NewTicker(interval),
		done:     make(chan struct{}),
	}
}

// Start runs the cleanup loop in the background.
func (j *SessionCleanupJob) Start() {
	log.Printf("Session cleanup job started (idle timeout %v)", j.maxIdle)

	go func() {
		for {
			select {
			case <-j.ticker.C:
				j.cleanup()
			case <-j.done:
				log.Printf("Session cleanup job stopped")
				return
			}
		}
	}()
}

// Stop ends the cleanup loop. Call it once.
func (j *SessionCleanupJob) Stop() {
	j.ticker.Stop()
	close(j.done)
}

func (j *SessionCleanupJob) cleanup() int {
	removed := j.sessions.CleanupIdle(j.maxIdle)
	if removed > 0 {
		log.Printf("Removed %d idle editing sessions", removed)
	}
	return removed
}
