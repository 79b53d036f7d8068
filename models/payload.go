// File: /models/payload.go
package models

import "time"

// LocationPoint is the representative coordinate of a trail location.
type LocationPoint struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

type PayloadLocation struct {
	Country string        `json:"country"`
	City    string        `json:"city"`
	Point   LocationPoint `json:"point"`
	Title   *string       `json:"title"`
}

type PayloadTrack struct {
	Points []TrailPoint `json:"points"`
}

// MutationPayload is the createTrail submission body.
type MutationPayload struct {
	Name                             string          `json:"name"`
	Location                         PayloadLocation `json:"location"`
	Track                            PayloadTrack    `json:"track"`
	Description                      string          `json:"description"`
	IsActive                         bool            `json:"isActive"`
	DistanceMeters                   float64         `json:"distance"`
	ApproximateTimeMillis            int64           `json:"approximateTime"`
	ImagesIDs                        []string        `json:"imagesIds"`
	AvailableDisciplinesIDs          []string        `json:"availableDisciplinesIds"`
	AllowedForStartingDisciplinesIDs []string        `json:"allowedForStartingDisciplinesIds"`
}

// TrailAcknowledgement is the createTrail selection set echoed by the external service.
type TrailAcknowledgement struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	HTMLDescription string `json:"htmlDescription"`
	IsActive        bool   `json:"isActive"`
	Track           struct {
		Image struct {
			URL string `json:"url"`
		} `json:"image"`
	} `json:"track"`
	Created              string       `json:"created"`
	Updated              string       `json:"updated"`
	AvailableDisciplines []Discipline `json:"availableDisciplines"`
}

type Discipline struct {
	Name string `json:"name"`
}

// TrailMetrics is the derived metrics view of a point sequence.
type TrailMetrics struct {
	DistanceMeters          float64 `json:"distance_meters"`
	ElevationGainMeters     float64 `json:"elevation_gain_meters"`
	EstimatedDurationMillis int64   `json:"estimated_duration_millis"`
	PointCount              int     `json:"point_count"`
}

// TrailMetricsDisplay carries the presentation-rounded values.
type TrailMetricsDisplay struct {
	DistanceMeters      int64   `json:"distance_meters"`
	DistanceKm          float64 `json:"distance_km"`
	ElevationGainMeters int64   `json:"elevation_gain_meters"`
	EstimatedMinutes    int64   `json:"estimated_minutes"`
}

// SubmissionEvent is published after a trail is created or submitted.
type SubmissionEvent struct {
	TrailID    uint      `json:"trailId,omitempty"`
	SessionID  string    `json:"sessionId,omitempty"`
	ExternalID string    `json:"externalId,omitempty"`
	Name       string    `json:"name"`
	Distance   float64   `json:"distance"`
	PointCount int       `json:"pointCount"`
	Timestamp  time.Time `json:"timestamp"`
}
