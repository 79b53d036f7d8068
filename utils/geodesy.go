// File: /utils/geodesy.go
package utils

import (
	"math"

	"trailcraft-api/models"
)

// EarthRadiusMeters is the mean Earth radius used by the haversine formula.
const EarthRadiusMeters = 6371000

const deg2rad = math.Pi / 180

// DistanceMeters returns the great-circle distance between two points using the haversine formula.
func DistanceMeters(p1, p2 models.TrailPoint) float64 {
	return HaversineMeters(p1.Latitude, p1.Longitude, p2.Latitude, p2.Longitude)
}

// HaversineMeters is DistanceMeters over raw coordinates.
func HaversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * deg2rad
	phi2 := lat2 * deg2rad
	dPhi := (lat2 - lat1) * deg2rad
	dLambda := (lon2 - lon1) * deg2rad

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*
			math.Sin(dLambda/2)*math.Sin(dLambda/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusMeters * c
}

// TotalDistance sums the leg distances of an ordered point sequence. The result is not rounded.
func TotalDistance(points []models.TrailPoint) float64 {
	if len(points) < 2 {
		return 0
	}

	var total float64
	for i := 1; i < len(points); i++ {
		total += DistanceMeters(points[i-1], points[i])
	}
	return total
}

// TotalElevationGain sums positive altitude deltas between consecutive points.
// Descents are ignored, and so is any pair missing an altitude.
func TotalElevationGain(points []models.TrailPoint) float64 {
	if len(points) < 2 {
		return 0
	}

	var gain float64
	for i := 1; i < len(points); i++ {
		prev, curr := points[i-1].Altitude, points[i].Altitude
		if prev == nil || curr == nil {
			continue
		}
		if diff := *curr - *prev; diff > 0 {
			gain += diff
		}
	}
	return gain
}

// RoundMeters rounds to the nearest whole meter for display.
func RoundMeters(v float64) int64 {
	return int64(math.Round(v))
}

// RoundToDecimal rounds a float to specified decimal places
func RoundToDecimal(val float64, precision int) float64 {
	ratio := math.Pow(10, float64(precision))
	return math.Round(val*ratio) / ratio
}
