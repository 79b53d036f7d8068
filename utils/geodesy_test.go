package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"trailcraft-api/models"
)

func alt(v float64) *float64 { return &v }

func TestDistanceMetersSamePointIsZero(t *testing.T) {
	p := models.TrailPoint{Latitude: 47.6062, Longitude: -122.3321}
	assert.Equal(t, 0.0, DistanceMeters(p, p))
}

func TestDistanceMetersSymmetric(t *testing.T) {
	a := models.TrailPoint{Latitude: 38.0675, Longitude: -120.5436}
	b := models.TrailPoint{Latitude: 38.1391, Longitude: -120.4561}

	assert.InDelta(t, DistanceMeters(a, b), DistanceMeters(b, a), 1e-9)
	// Angels Camp to Murphys is about 11 km.
	assert.InDelta(t, 11046, DistanceMeters(a, b), 100)
}

func TestTotalDistanceShortSequences(t *testing.T) {
	assert.Equal(t, 0.0, TotalDistance(nil))
	assert.Equal(t, 0.0, TotalDistance([]models.TrailPoint{{Latitude: 1, Longitude: 1}}))
}

func TestTotalDistanceSumsLegs(t *testing.T) {
	points := []models.TrailPoint{
		{Latitude: 47.6062, Longitude: -122.3321},
		{Latitude: 47.61, Longitude: -122.33},
		{Latitude: 47.62, Longitude: -122.34},
	}

	want := DistanceMeters(points[0], points[1]) + DistanceMeters(points[1], points[2])
	got := TotalDistance(points)

	assert.InDelta(t, want, got, 1e-9)
	assert.InDelta(t, 1792.0, got, 10.0)
	assert.NotEqual(t, math.Round(got), got, "total distance is kept unrounded")
}

func TestTotalElevationGainIgnoresDescents(t *testing.T) {
	points := []models.TrailPoint{
		{Altitude: alt(100)},
		{Altitude: alt(80)},
		{Altitude: alt(120)},
	}
	assert.Equal(t, 40.0, TotalElevationGain(points))
}

func TestTotalElevationGainMissingAltitude(t *testing.T) {
	assert.Equal(t, 0.0, TotalElevationGain([]models.TrailPoint{{}, {}}))
	assert.Equal(t, 0.0, TotalElevationGain([]models.TrailPoint{{Altitude: alt(10)}}))

	points := []models.TrailPoint{{Altitude: alt(100)}, {}, {Altitude: alt(150)}, {Altitude: alt(170)}}
	assert.Equal(t, 20.0, TotalElevationGain(points))
}

func TestRoundMeters(t *testing.T) {
	assert.Equal(t, int64(1235), RoundMeters(1234.5))
	assert.Equal(t, int64(1234), RoundMeters(1234.49))
	assert.Equal(t, 1.2, RoundToDecimal(1.234, 1))
}

func TestCoordinateValidators(t *testing.T) {
	assert.True(t, IsValidCoordinate(-90, 180))
	assert.False(t, IsValidCoordinate(90.1, 0))
	assert.False(t, IsValidCoordinate(0, -180.5))
	assert.False(t, IsValidCoordinate(math.NaN(), 0))
	assert.False(t, IsFinite(math.Inf(1)))
	assert.True(t, IsValidEmail("ops@trailcraft.test"))
	assert.False(t, IsValidEmail("nope"))
}
