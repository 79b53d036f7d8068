// File: /services/metrics_service.go
package services

import (
	"math"

	"trailcraft-api/models"
	"trailcraft-api/utils"
)

// MinutesPerKilometer is the fixed pace behind the duration estimate.
const MinutesPerKilometer = 15

const millisPerMinute = 60000

// ComputeMetrics derives distance, elevation gain and the estimated duration of a point sequence.
func ComputeMetrics(points []models.TrailPoint) models.TrailMetrics {
	distance := utils.TotalDistance(points)
	return models.TrailMetrics{
		DistanceMeters:          distance,
		ElevationGainMeters:     utils.TotalElevationGain(points),
		EstimatedDurationMillis: EstimateDurationMillis(distance),
		PointCount:              len(points),
	}
}

// EstimateDurationMillis applies the 15 min/km pace to an unrounded distance.
func EstimateDurationMillis(distanceMeters float64) int64 {
	return int64(math.Round(distanceMeters / 1000 * MinutesPerKilometer * millisPerMinute))
}

// Display rounds metrics for presentation.
func Display(m models.TrailMetrics) models.TrailMetricsDisplay {
	return models.TrailMetricsDisplay{
		DistanceMeters:      utils.RoundMeters(m.DistanceMeters),
		DistanceKm:          utils.RoundToDecimal(m.DistanceMeters/1000, 1),
		ElevationGainMeters: utils.RoundMeters(m.ElevationGainMeters),
		EstimatedMinutes:    int64(math.Round(float64(m.EstimatedDurationMillis) / millisPerMinute)),
	}
}

// ApplyDerivedDefaults fills distance and time from metrics when they are unset (zero).
// Any other value, negative included, is the user's and is left for validation to judge.
func ApplyDerivedDefaults(meta models.TrailMetadata, m models.TrailMetrics) models.TrailMetadata {
	if meta.DistanceMeters == 0 {
		meta.DistanceMeters = m.DistanceMeters
	}
	if meta.ApproximateTimeMillis == 0 {
		meta.ApproximateTimeMillis = m.EstimatedDurationMillis
	}
	return meta
}
