// File: /services/validation_service.go
package services

import (
	"fmt"
	"strings"

	"trailcraft-api/models"
	"trailcraft-api/utils"
)

// MinTrailPoints is the smallest sequence that has both a start and an end.
const MinTrailPoints = 2

// MinApproximateTimeMillis is one minute.
const MinApproximateTimeMillis = millisPerMinute

// ValidateMetadata checks every metadata rule and returns all failures together.
// It returns nil when the metadata is valid.
func ValidateMetadata(meta models.TrailMetadata) ValidationErrors {
	var errs ValidationErrors

	if strings.TrimSpace(meta.Name) == "" {
		errs = append(errs, &ValidationError{Field: "name", Reason: "Trail name is required"})
	}
	if strings.TrimSpace(meta.Country) == "" {
		errs = append(errs, &ValidationError{Field: "country", Reason: "Country is required"})
	}
	if strings.TrimSpace(meta.City) == "" {
		errs = append(errs, &ValidationError{Field: "city", Reason: "City is required"})
	}
	if !(meta.DistanceMeters > 0) || !utils.IsFinite(meta.DistanceMeters) {
		errs = append(errs, &ValidationError{Field: "distance", Reason: "Distance must be greater than 0"})
	}
	if meta.ApproximateTimeMillis < MinApproximateTimeMillis {
		errs = append(errs, &ValidationError{Field: "approximate_time", Reason: "Time must be at least 1 minute"})
	}

	return errs
}

// ValidatePoints checks that every point lies within WGS84 bounds.
func ValidatePoints(points []models.TrailPoint) ValidationErrors {
	var errs ValidationErrors
	for i, p := range points {
		if !utils.IsValidCoordinate(p.Latitude, p.Longitude) {
			errs = append(errs, &ValidationError{
				Field:  fmt.Sprintf("points[%d]", i),
				Reason: "latitude must be [-90, 90], longitude must be [-180, 180]",
			})
		}
	}
	return errs
}

// ValidateSubmission adds the structural point-count precondition to metadata validation.
// An InsufficientPointsError takes precedence over field errors.
func ValidateSubmission(meta models.TrailMetadata, points []models.TrailPoint) error {
	if len(points) < MinTrailPoints {
		return &InsufficientPointsError{Count: len(points)}
	}

	errs := ValidateMetadata(meta)
	errs = append(errs, ValidatePoints(points)...)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// FieldErrors converts validation failures into response entries.
func FieldErrors(errs ValidationErrors) []utils.FieldError {
	out := make([]utils.FieldError, len(errs))
	for i, e := range errs {
		out[i] = utils.FieldError{Field: e.Field, Message: e.Reason}
	}
	return out
}
