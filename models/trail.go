// File: /models/trail.go
package models

import (
	"time"
)

// TrailPoint is one sampled location along a trail.
type TrailPoint struct {
	ID        string   `json:"id"`
	Timestamp string   `json:"time,omitempty"` // ISO-8601
	Latitude  float64  `json:"lat"`
	Longitude float64  `json:"lon"`
	Altitude  *float64 `json:"altitude,omitempty"` // meters
}

// Clone copies the point including its altitude.
func (p TrailPoint) Clone() TrailPoint {
	if p.Altitude != nil {
		alt := *p.Altitude
		p.Altitude = &alt
	}
	return p
}

// TrailMetadata holds the user-entered descriptive fields of a trail.
type TrailMetadata struct {
	Name                  string  `json:"name"`
	Description           string  `json:"description"`
	Country               string  `json:"country"`
	City                  string  `json:"city"`
	DistanceMeters        float64 `json:"distance"`
	ApproximateTimeMillis int64   `json:"approximate_time"`
	IsActive              bool    `json:"is_active"`
}

// NewTrailMetadata returns empty metadata with the active flag set.
func NewTrailMetadata() TrailMetadata {
	return TrailMetadata{IsActive: true}
}

// Trail is the persisted trail record.
type Trail struct {
	ID                    uint           `json:"id" gorm:"primaryKey;autoIncrement"`
	Name                  string         `json:"name" gorm:"not null;size:255"`
	Description           string         `json:"description" gorm:"type:text"`
	Country               string         `json:"country" gorm:"not null;size:128"`
	City                  string         `json:"city" gorm:"not null;size:128"`
	Latitude              float64        `json:"latitude" gorm:"not null"`
	Longitude             float64        `json:"longitude" gorm:"not null"`
	DistanceMeters        float64        `json:"distance" gorm:"not null"`
	ApproximateTimeMillis int64          `json:"approximate_time" gorm:"not null"`
	IsActive              bool           `json:"is_active" gorm:"not null"`
	Points                TrailPointList `json:"points" gorm:"type:json;not null"`
	CreatedAt             time.Time      `json:"created_at"`
}

func (Trail) TableName() string {
	return "trails"
}

// Metadata extracts the descriptive fields of a stored trail.
func (t Trail) Metadata() TrailMetadata {
	return TrailMetadata{
		Name:                  t.Name,
		Description:           t.Description,
		Country:               t.Country,
		City:                  t.City,
		DistanceMeters:        t.DistanceMeters,
		ApproximateTimeMillis: t.ApproximateTimeMillis,
		IsActive:              t.IsActive,
	}
}

// TrailUpdate is a partial update; nil fields are left untouched.
type TrailUpdate struct {
	Name                  *string         `json:"name"`
	Description           *string         `json:"description"`
	Country               *string         `json:"country"`
	City                  *string         `json:"city"`
	DistanceMeters        *float64        `json:"distance"`
	ApproximateTimeMillis *int64          `json:"approximate_time"`
	IsActive              *bool           `json:"is_active"`
	Points                *TrailPointList `json:"points"`
}

// Apply merges the update into t. The representative point follows the first track point.
func (u TrailUpdate) Apply(t *Trail) {
	if u.Name != nil {
		t.Name = *u.Name
	}
	if u.Description != nil {
		t.Description = *u.Description
	}
	if u.Country != nil {
		t.Country = *u.Country
	}
	if u.City != nil {
		t.City = *u.City
	}
	if u.DistanceMeters != nil {
		t.DistanceMeters = *u.DistanceMeters
	}
	if u.ApproximateTimeMillis != nil {
		t.ApproximateTimeMillis = *u.ApproximateTimeMillis
	}
	if u.IsActive != nil {
		t.IsActive = *u.IsActive
	}
	if u.Points != nil {
		t.Points = u.Points.Clone()
		if len(t.Points) > 0 {
			t.Latitude = t.Points[0].Latitude
			t.Longitude = t.Points[0].Longitude
		}
	}
}

// RouteSegment is one routed leg between two consecutive trail points.
type RouteSegment struct {
	Coordinates     [][2]float64 `json:"coordinates"` // [lon, lat]
	DistanceMeters  float64      `json:"distance"`
	DurationSeconds float64      `json:"duration"`
	Fallback        bool         `json:"fallback"`
}

// Setting is a client-local key/value entry, e.g. the stored auth token.
type Setting struct {
	Key       string    `json:"key" gorm:"primaryKey;size:191"`
	Value     string    `json:"value" gorm:"type:text"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Setting) TableName() string {
	return "client_settings"
}
