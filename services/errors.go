// File: /services/errors.go
package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrPointIndexOutOfRange = errors.New("point index out of range")
	ErrDrawingModeOff       = errors.New("drawing mode is off")
	ErrInvalidCoordinates   = errors.New("invalid coordinates: latitude must be [-90, 90], longitude must be [-180, 180]")
	ErrSubmissionInFlight   = errors.New("a submission is already in progress for this session")
	ErrSessionNotFound      = errors.New("session not found")
)

// ValidationError is a user-correctable problem with one field.
type ValidationError struct {
	Field  string `json:"field"`
	Reason string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// ValidationErrors collects every failing field of one validation pass.
type ValidationErrors []*ValidationError

func (v ValidationErrors) Error() string {
	parts := make([]string, len(v))
	for i, e := range v {
		parts[i] = e.Error()
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Has reports whether field failed validation.
func (v ValidationErrors) Has(field string) bool {
	for _, e := range v {
		if e.Field == field {
			return true
		}
	}
	return false
}

// InsufficientPointsError means a trail has no distinct start and end point.
type InsufficientPointsError struct {
	Count int
}

func (e *InsufficientPointsError) Error() string {
	return fmt.Sprintf("at least %d points are required to create a trail, got %d", MinTrailPoints, e.Count)
}

// AuthenticationError means the bearer token is missing or malformed.
type AuthenticationError struct {
	Reason string
}

func (e *AuthenticationError) Error() string {
	return "authentication failed: " + e.Reason
}

// NetworkError means the submission did not complete against the external service.
type NetworkError struct {
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("graphql request failed with status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("graphql request failed: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// EncodingError is a payload serialization defect.
type EncodingError struct {
	Err error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("failed to encode payload: %v", e.Err)
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}
