// File: /services/session_service.go
package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"trailcraft-api/models"
	"trailcraft-api/utils"
)

// SessionMetrics receives submission outcomes and the live session count.
type SessionMetrics interface {
	SubmissionObserved(outcome string, d time.Duration)
	ActiveSessionsSet(n int)
}

// TrailSession is one user's in-progress trail: its points, drawing mode and form state.
// All access goes through mu; at most one submission runs at a time.
type TrailSession struct {
	ID string

	mu           sync.Mutex
	editor       *PointEditor
	metadata     models.TrailMetadata
	submitting   bool
	lastAck      *models.TrailAcknowledgement
	createdAt    time.Time
	lastActivity time.Time
}

// SessionSnapshot is a copy of a session's state safe to hand to callers.
type SessionSnapshot struct {
	ID                  string                       `json:"id"`
	DrawingMode         bool                         `json:"drawing_mode"`
	Points              []models.TrailPoint          `json:"points"`
	Metadata            models.TrailMetadata         `json:"metadata"`
	Metrics             models.TrailMetrics          `json:"metrics"`
	Display             models.TrailMetricsDisplay   `json:"display"`
	Submitting          bool                         `json:"submitting"`
	LastAcknowledgement *models.TrailAcknowledgement `json:"last_acknowledgement,omitempty"`
	CreatedAt           time.Time                    `json:"created_at"`
	LastActivity        time.Time                    `json:"last_activity"`
}

// MetadataUpdate carries the form fields a client changed. Nil fields are left alone.
// A zero distance or time returns that field to the derived value.
type MetadataUpdate struct {
	Name                  *string  `json:"name"`
	Description           *string  `json:"description"`
	Country               *string  `json:"country"`
	City                  *string  `json:"city"`
	DistanceMeters        *float64 `json:"distance"`
	ApproximateTimeMillis *int64   `json:"approximate_time"`
	IsActive              *bool    `json:"is_active"`
}

func (u MetadataUpdate) apply(meta *models.TrailMetadata) {
	if u.Name != nil {
		meta.Name = strings.TrimSpace(*u.Name)
	}
	if u.Description != nil {
		meta.Description = *u.Description
	}
	if u.Country != nil {
		meta.Country = strings.TrimSpace(*u.Country)
	}
	if u.City != nil {
		meta.City = strings.TrimSpace(*u.City)
	}
	if u.DistanceMeters != nil {
		meta.DistanceMeters = *u.DistanceMeters
	}
	if u.ApproximateTimeMillis != nil {
		meta.ApproximateTimeMillis = *u.ApproximateTimeMillis
	}
	if u.IsActive != nil {
		meta.IsActive = *u.IsActive
	}
}

func (s *TrailSession) snapshot() SessionSnapshot {
	points := s.editor.Points()
	metrics := ComputeMetrics(points)
	snap := SessionSnapshot{
		ID:           s.ID,
		DrawingMode:  s.editor.DrawingMode(),
		Points:       points,
		Metadata:     ApplyDerivedDefaults(s.metadata, metrics),
		Metrics:      metrics,
		Display:      Display(metrics),
		Submitting:   s.submitting,
		CreatedAt:    s.createdAt,
		LastActivity: s.lastActivity,
	}
	if s.lastAck != nil {
		ack := *s.lastAck
		snap.LastAcknowledgement = &ack
	}
	return snap
}

// SessionServiceOptions wires a SessionService. Nil Notifier and Events become no-ops.
type SessionServiceOptions struct {
	Altitude  AltitudeProvider
	Submitter TrailSubmitter
	Tokens    *TokenStore
	Notifier  Notifier
	Events    EventPublisher
	Metrics   SessionMetrics
}

// SessionService owns the editing sessions of all connected clients.
type SessionService struct {
	mu       sync.RWMutex
	sessions map[string]*TrailSession

	altitude  AltitudeProvider
	submitter TrailSubmitter
	tokens    *TokenStore
	notifier  Notifier
	events    EventPublisher
	metrics   SessionMetrics
	now       func() time.Time
}

func NewSessionService(opts SessionServiceOptions) *SessionService {
	svc := &SessionService{
		sessions:  make(map[string]*TrailSession),
		altitude:  opts.Altitude,
		submitter: opts.Submitter,
		tokens:    opts.Tokens,
		notifier:  opts.Notifier,
		events:    opts.Events,
		metrics:   opts.Metrics,
		now:       time.Now,
	}
	if svc.notifier == nil {
		svc.notifier = NopNotifier{}
	}
	if svc.events == nil {
		svc.events = NopEventPublisher{}
	}
	return svc
}

// Create starts a session with empty points and default metadata.
func (svc *SessionService) Create() SessionSnapshot {
	now := svc.now()
	s := &TrailSession{
		ID:           uuid.NewString(),
		editor:       NewPointEditor(svc.altitude),
		metadata:     models.NewTrailMetadata(),
		createdAt:    now,
		lastActivity: now,
	}

	svc.mu.Lock()
	svc.sessions[s.ID] = s
	n := len(svc.sessions)
	svc.mu.Unlock()

	svc.reportActive(n)
	log.Printf("Editing session %s created", s.ID)

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (svc *SessionService) lookup(id string) (*TrailSession, error) {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	s, ok := svc.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// update runs fn with the session locked and returns the resulting snapshot.
func (svc *SessionService) update(id string, fn func(s *TrailSession) error) (SessionSnapshot, error) {
	s, err := svc.lookup(id)
	if err != nil {
		return SessionSnapshot{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if fn != nil {
		if err := fn(s); err != nil {
			return SessionSnapshot{}, err
		}
	}
	s.lastActivity = svc.now()
	return s.snapshot(), nil
}

// Get returns a snapshot of the session.
func (svc *SessionService) Get(id string) (SessionSnapshot, error) {
	return svc.update(id, nil)
}

func (svc *SessionService) Delete(id string) error {
	svc.mu.Lock()
	if _, ok := svc.sessions[id]; !ok {
		svc.mu.Unlock()
		return ErrSessionNotFound
	}
	delete(svc.sessions, id)
	n := len(svc.sessions)
	svc.mu.Unlock()

	svc.reportActive(n)
	return nil
}

// SetDrawingMode toggles map-click placement for the session.
func (svc *SessionService) SetDrawingMode(id string, enabled bool) (SessionSnapshot, error) {
	return svc.update(id, func(s *TrailSession) error {
		s.editor.SetDrawingMode(enabled)
		return nil
	})
}

// PlacePoint records a map click at lat/lon.
func (svc *SessionService) PlacePoint(id string, lat, lon float64) (models.TrailPoint, SessionSnapshot, error) {
	var placed models.TrailPoint
	snap, err := svc.update(id, func(s *TrailSession) error {
		p, err := s.editor.Place(lat, lon)
		placed = p
		return err
	})
	return placed, snap, err
}

// RemovePoint deletes the point at index.
func (svc *SessionService) RemovePoint(id string, index int) (SessionSnapshot, error) {
	return svc.update(id, func(s *TrailSession) error {
		return s.editor.RemoveAt(index)
	})
}

// Undo drops the last point; an empty session is left unchanged.
func (svc *SessionService) Undo(id string) (SessionSnapshot, bool, error) {
	var removed bool
	snap, err := svc.update(id, func(s *TrailSession) error {
		removed = s.editor.Undo()
		return nil
	})
	return snap, removed, err
}

// ClearPoints empties the session and turns drawing mode off.
func (svc *SessionService) ClearPoints(id string) (SessionSnapshot, error) {
	return svc.update(id, func(s *TrailSession) error {
		s.editor.Clear()
		return nil
	})
}

// UpdateMetadata merges u into the session form state.
func (svc *SessionService) UpdateMetadata(id string, u MetadataUpdate) (SessionSnapshot, error) {
	return svc.update(id, func(s *TrailSession) error {
		u.apply(&s.metadata)
		return nil
	})
}

// ValidationReport summarizes whether a session could be submitted as it stands.
type ValidationReport struct {
	Valid      bool               `json:"valid"`
	PointCount int                `json:"point_count"`
	Errors     []utils.FieldError `json:"validation_errors,omitempty"`
}

// Validate runs the submission checks against the session's current state.
func (svc *SessionService) Validate(id string) (ValidationReport, error) {
	var report ValidationReport
	_, err := svc.update(id, func(s *TrailSession) error {
		points := s.editor.Points()
		report = NewValidationReport(ApplyDerivedDefaults(s.metadata, ComputeMetrics(points)), points)
		return nil
	})
	return report, err
}

// NewValidationReport runs submission validation and flattens the result for clients.
func NewValidationReport(meta models.TrailMetadata, points []models.TrailPoint) ValidationReport {
	report := ValidationReport{Valid: true, PointCount: len(points)}
	err := ValidateSubmission(meta, points)
	if err == nil {
		return report
	}

	report.Valid = false
	var (
		insufficient *InsufficientPointsError
		verrs        ValidationErrors
	)
	switch {
	case errors.As(err, &insufficient):
		report.Errors = []utils.FieldError{{Field: "points", Message: insufficient.Error()}}
	case errors.As(err, &verrs):
		report.Errors = FieldErrors(verrs)
	}
	return report
}

// Submit snapshots the session, builds the payload and sends it. Points and metadata
// are never modified by a submission, whether it succeeds or fails.
func (svc *SessionService) Submit(ctx context.Context, id, token string) SubmissionResult {
	started := svc.now()
	result := svc.submit(ctx, id, token)
	if svc.metrics != nil && !errors.Is(result.Err, ErrSessionNotFound) && !errors.Is(result.Err, ErrSubmissionInFlight) {
		svc.metrics.SubmissionObserved(SubmissionOutcome(result.Err), svc.now().Sub(started))
	}
	return result
}

func (svc *SessionService) submit(ctx context.Context, id, token string) SubmissionResult {
	s, err := svc.lookup(id)
	if err != nil {
		return SubmissionResult{Err: err}
	}

	s.mu.Lock()
	if s.submitting {
		s.mu.Unlock()
		return SubmissionResult{Err: ErrSubmissionInFlight}
	}
	points := s.editor.Points()
	metrics := ComputeMetrics(points)
	if err := ValidateSubmission(ApplyDerivedDefaults(s.metadata, metrics), points); err != nil {
		s.mu.Unlock()
		return SubmissionResult{Err: err}
	}
	payload, err := BuildPayload(s.metadata, points, metrics)
	if err != nil {
		s.mu.Unlock()
		return SubmissionResult{Err: err}
	}
	s.submitting = true
	s.lastActivity = svc.now()
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.submitting = false
		s.lastActivity = svc.now()
		s.mu.Unlock()
	}()

	mutation, err := RenderMutation(payload)
	if err != nil {
		return SubmissionResult{Err: err}
	}

	if svc.tokens != nil {
		if token, err = svc.tokens.Resolve(token); err != nil {
			return SubmissionResult{Mutation: mutation, Err: err}
		}
	}
	if svc.submitter == nil {
		return SubmissionResult{Mutation: mutation, Err: &NetworkError{Err: errors.New("no submission endpoint configured")}}
	}

	ack, err := svc.submitter.Submit(ctx, payload, token)
	if err != nil {
		log.Printf("Submission for session %s failed: %v", id, err)
		return SubmissionResult{Mutation: mutation, Err: err}
	}

	s.mu.Lock()
	s.lastAck = ack
	s.mu.Unlock()

	svc.afterSubmit(id, payload, ack)
	return SubmissionResult{Acknowledgement: ack, Mutation: mutation}
}

func (svc *SessionService) afterSubmit(sessionID string, payload models.MutationPayload, ack *models.TrailAcknowledgement) {
	if err := svc.notifier.NotifySubmitted(payload, ack); err != nil {
		log.Printf("Submission notification failed: %v", err)
	}
	ev := models.SubmissionEvent{
		SessionID:  sessionID,
		ExternalID: ack.ID,
		Name:       payload.Name,
		Distance:   payload.DistanceMeters,
		PointCount: len(payload.Track.Points),
		Timestamp:  svc.now().UTC(),
	}
	if err := svc.events.PublishTrailSubmitted(ev); err != nil {
		log.Printf("Failed to publish %s: %v", SubjectTrailSubmitted, err)
	}
}

// CleanupIdle removes sessions idle longer than maxIdle, skipping any with a submission running.
func (svc *SessionService) CleanupIdle(maxIdle time.Duration) int {
	cutoff := svc.now().Add(-maxIdle)

	svc.mu.Lock()
	removed := 0
	for id, s := range svc.sessions {
		s.mu.Lock()
		idle := !s.submitting && s.lastActivity.Before(cutoff)
		s.mu.Unlock()
		if idle {
			delete(svc.sessions, id)
			removed++
		}
	}
	n := len(svc.sessions)
	svc.mu.Unlock()

	if removed > 0 {
		svc.reportActive(n)
	}
	return removed
}

// Count is the number of live sessions.
func (svc *SessionService) Count() int {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	return len(svc.sessions)
}

func (svc *SessionService) reportActive(n int) {
	if svc.metrics != nil {
		svc.metrics.ActiveSessionsSet(n)
	}
}

// SubmissionOutcome labels a submission error for metrics.
func SubmissionOutcome(err error) string {
	var (
		verrs    ValidationErrors
		verr     *ValidationError
		points   *InsufficientPointsError
		authErr  *AuthenticationError
		netErr   *NetworkError
		encoding *EncodingError
	)
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &verrs), errors.As(err, &verr), errors.As(err, &points):
		return "validation"
	case errors.As(err, &authErr):
		return "auth"
	case errors.As(err, &encoding):
		return "encoding"
	case errors.As(err, &netErr):
		return "network"
	}
	return "error"
}
