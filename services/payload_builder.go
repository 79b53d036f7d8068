// File: /services/payload_builder.go
package services

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"trailcraft-api/models"
	"trailcraft-api/utils"
)

// BuildPayload assembles the createTrail payload. The track is a deep copy of points in
// their original order, so later edits to the source do not affect the payload.
// Distance and time come from meta; metrics only fill fields meta leaves unset.
func BuildPayload(meta models.TrailMetadata, points []models.TrailPoint, metrics models.TrailMetrics) (models.MutationPayload, error) {
	if len(points) < MinTrailPoints {
		return models.MutationPayload{}, &InsufficientPointsError{Count: len(points)}
	}

	meta = ApplyDerivedDefaults(meta, metrics)
	start := points[0]

	return models.MutationPayload{
		Name: meta.Name,
		Location: models.PayloadLocation{
			Country: meta.Country,
			City:    meta.City,
			Point:   models.LocationPoint{Latitude: start.Latitude, Longitude: start.Longitude},
		},
		Track:                            models.PayloadTrack{Points: models.TrailPointList(points).Clone()},
		Description:                      meta.Description,
		IsActive:                         meta.IsActive,
		DistanceMeters:                   meta.DistanceMeters,
		ApproximateTimeMillis:            meta.ApproximateTimeMillis,
		ImagesIDs:                        []string{},
		AvailableDisciplinesIDs:          []string{},
		AllowedForStartingDisciplinesIDs: []string{},
	}, nil
}

// BuildPayloadFromTrail builds the payload of a stored trail record.
func BuildPayloadFromTrail(trail models.Trail) (models.MutationPayload, error) {
	points := []models.TrailPoint(trail.Points)
	return BuildPayload(trail.Metadata(), points, ComputeMetrics(points))
}

const createTrailSelection = `{
    id
    name
    description
    htmlDescription
    isActive
    track {
      image {
        url
      }
    }
    created
    updated
    availableDisciplines {
      name
    }
  }`

// RenderMutation serializes the payload as a createTrail GraphQL mutation document.
// Every string value is emitted as an escaped GraphQL string literal.
func RenderMutation(p models.MutationPayload) (string, error) {
	w := &mutationWriter{}

	w.printf("mutation CreateTrail {\n  createTrail(\n")
	w.printf("    name: %s\n", w.str(p.Name))
	w.printf("    location: {\n")
	w.printf("      country: %s\n", w.str(p.Location.Country))
	w.printf("      city: %s\n", w.str(p.Location.City))
	w.printf("      point: { lat: %s, lon: %s }\n", w.num(p.Location.Point.Latitude), w.num(p.Location.Point.Longitude))
	if p.Location.Title != nil {
		w.printf("      title: %s\n", w.str(*p.Location.Title))
	} else {
		w.printf("      title: null\n")
	}
	w.printf("    }\n")
	w.printf("    track: {\n      points: [\n")
	for _, pt := range p.Track.Points {
		w.printf("        { id: %s, time: %s, lat: %s, lon: %s, altitude: %s }\n",
			w.str(pt.ID), w.str(pt.Timestamp), w.num(pt.Latitude), w.num(pt.Longitude), w.optNum(pt.Altitude))
	}
	w.printf("      ]\n    }\n")
	w.printf("    description: %s\n", w.str(p.Description))
	w.printf("    isActive: %t\n", p.IsActive)
	w.printf("    distance: %s\n", w.meters(p.DistanceMeters))
	w.printf("    approximateTime: %d\n", p.ApproximateTimeMillis)
	w.printf("    imagesIds: %s\n", w.list(p.ImagesIDs))
	w.printf("    availableDisciplinesIds: %s\n", w.list(p.AvailableDisciplinesIDs))
	w.printf("    allowedForStartingDisciplinesIds: %s\n", w.list(p.AllowedForStartingDisciplinesIDs))
	w.printf("  ) %s\n}\n", createTrailSelection)

	if w.err != nil {
		return "", &EncodingError{Err: w.err}
	}
	return w.sb.String(), nil
}

type mutationWriter struct {
	sb  strings.Builder
	err error
}

func (w *mutationWriter) printf(format string, args ...interface{}) {
	fmt.Fprintf(&w.sb, format, args...)
}

// str quotes s as a GraphQL string. GraphQL string escapes are a subset of JSON's.
func (w *mutationWriter) str(s string) string {
	b, err := json.Marshal(s)
	if err != nil && w.err == nil {
		w.err = err
	}
	return string(b)
}

func (w *mutationWriter) num(v float64) string {
	if !utils.IsFinite(v) {
		if w.err == nil {
			w.err = fmt.Errorf("non-finite number %v", v)
		}
		return "null"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// meters renders a distance as whole meters; the createTrail argument is an Int.
func (w *mutationWriter) meters(v float64) string {
	if !utils.IsFinite(v) {
		return w.num(v)
	}
	return strconv.FormatInt(utils.RoundMeters(v), 10)
}

func (w *mutationWriter) optNum(v *float64) string {
	if v == nil {
		return "null"
	}
	return w.num(*v)
}

func (w *mutationWriter) list(ids []string) string {
	quoted := make([]string, len(ids))
	for i, id := range ids {
		quoted[i] = w.str(id)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
