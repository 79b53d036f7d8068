// File: /services/point_editor.go
package services

import (
	"time"

	"github.com/google/uuid"

	"trailcraft-api/models"
	"trailcraft-api/utils"
)

// AltitudeProvider supplies the altitude for a newly placed point. A nil result leaves altitude unset.
type AltitudeProvider interface {
	AltitudeAt(lat, lon float64) *float64
}

// FixedAltitude returns the same altitude for every point, or none when Meters is nil.
type FixedAltitude struct {
	Meters *float64
}

func (f FixedAltitude) AltitudeAt(_, _ float64) *float64 {
	if f.Meters == nil {
		return nil
	}
	v := *f.Meters
	return &v
}

// PointEditor holds the ordered point list of one editing session.
// It is not safe for concurrent use; TrailSession serializes access.
type PointEditor struct {
	points      []models.TrailPoint
	drawingMode bool
	altitude    AltitudeProvider
	now         func() time.Time
	newID       func() string
}

// NewPointEditor starts empty with drawing mode off. A nil provider leaves altitude unset.
func NewPointEditor(altitude AltitudeProvider) *PointEditor {
	if altitude == nil {
		altitude = FixedAltitude{}
	}
	return &PointEditor{
		altitude: altitude,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Add appends point to the tail. It always succeeds.
func (e *PointEditor) Add(point models.TrailPoint) {
	e.points = append(e.points, point.Clone())
}

// Place handles a map click in drawing mode: it creates a point with a fresh id,
// the capture time and the provider's altitude, then appends it.
func (e *PointEditor) Place(lat, lon float64) (models.TrailPoint, error) {
	if !e.drawingMode {
		return models.TrailPoint{}, ErrDrawingModeOff
	}
	if !utils.IsValidCoordinate(lat, lon) {
		return models.TrailPoint{}, ErrInvalidCoordinates
	}

	point := models.TrailPoint{
		ID:        e.newID(),
		Timestamp: e.now().UTC().Format(time.RFC3339Nano),
		Latitude:  lat,
		Longitude: lon,
		Altitude:  e.altitude.AltitudeAt(lat, lon),
	}
	e.Add(point)
	return point.Clone(), nil
}

// RemoveAt deletes the point at index.
func (e *PointEditor) RemoveAt(index int) error {
	if index < 0 || index >= len(e.points) {
		return ErrPointIndexOutOfRange
	}
	e.points = append(e.points[:index], e.points[index+1:]...)
	return nil
}

// Undo removes the last point. It reports false when there was nothing to remove.
func (e *PointEditor) Undo() bool {
	if len(e.points) == 0 {
		return false
	}
	e.points = e.points[:len(e.points)-1]
	return true
}

// Clear empties the sequence and leaves drawing mode.
func (e *PointEditor) Clear() {
	e.points = nil
	e.drawingMode = false
}

// SetDrawingMode controls whether Place accepts map clicks.
func (e *PointEditor) SetDrawingMode(enabled bool) {
	e.drawingMode = enabled
}

func (e *PointEditor) DrawingMode() bool {
	return e.drawingMode
}

// Len is the number of points.
func (e *PointEditor) Len() int {
	return len(e.points)
}

// Points returns a copy of the current sequence.
func (e *PointEditor) Points() []models.TrailPoint {
	return models.TrailPointList(e.points).Clone()
}
