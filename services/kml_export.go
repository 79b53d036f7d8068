// File: /services/kml_export.go
package services

import (
	"fmt"
	"io"

	"github.com/twpayne/go-kml"

	"trailcraft-api/models"
	"trailcraft-api/utils"
)

// WriteTrailKML renders the trail as a KML document: the track as a LineString
// plus start and end placemarks.
func WriteTrailKML(w io.Writer, trail models.Trail) error {
	points := []models.TrailPoint(trail.Points)
	if len(points) < MinTrailPoints {
		return &InsufficientPointsError{Count: len(points)}
	}

	coords := make([]kml.Coordinate, len(points))
	for i, p := range points {
		coords[i] = kml.Coordinate{Lon: p.Longitude, Lat: p.Latitude}
		if p.Altitude != nil {
			coords[i].Alt = *p.Altitude
		}
	}

	metrics := Display(ComputeMetrics(points))
	summary := fmt.Sprintf("%s, %s. %d m, %d m elevation gain, about %d min.",
		trail.City, trail.Country, utils.RoundMeters(trail.DistanceMeters), metrics.ElevationGainMeters,
		trail.ApproximateTimeMillis/millisPerMinute)
	if trail.Description != "" {
		summary = trail.Description + "\n\n" + summary
	}

	start, end := coords[0], coords[len(coords)-1]
	doc := kml.KML(
		kml.Document(
			kml.Name(trail.Name),
			kml.Description(summary),
			kml.Placemark(
				kml.Name(trail.Name),
				kml.LineString(
					kml.Tessellate(true),
					kml.Coordinates(coords...),
				),
			),
			kml.Placemark(
				kml.Name("Start"),
				kml.Point(kml.Coordinates(start)),
			),
			kml.Placemark(
				kml.Name("End"),
				kml.Point(kml.Coordinates(end)),
			),
		),
	)

	if err := doc.WriteIndent(w, "", "  "); err != nil {
		return &EncodingError{Err: err}
	}
	return nil
}
