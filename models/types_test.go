package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrailPointListScan(t *testing.T) {
	var pl TrailPointList
	require.NoError(t, pl.Scan([]byte(`[{"id":"a","lat":1.5,"lon":2.5,"altitude":10}]`)))
	require.Len(t, pl, 1)
	assert.Equal(t, "a", pl[0].ID)
	require.NotNil(t, pl[0].Altitude)
	assert.Equal(t, 10.0, *pl[0].Altitude)

	require.NoError(t, pl.Scan(nil))
	assert.Empty(t, pl)

	assert.Error(t, pl.Scan(42))
}

func TestTrailPointListNilMarshalsAsEmptyArray(t *testing.T) {
	var pl TrailPointList
	b, err := json.Marshal(pl)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(b))

	v, err := pl.Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)
}

func TestTrailPointListCloneIsDeep(t *testing.T) {
	alt := 100.0
	pl := TrailPointList{{ID: "a", Altitude: &alt}}

	clone := pl.Clone()
	*pl[0].Altitude = 5
	pl[0].ID = "changed"

	assert.Equal(t, "a", clone[0].ID)
	assert.Equal(t, 100.0, *clone[0].Altitude)
}

func TestTrailUpdateApply(t *testing.T) {
	trail := Trail{Name: "Old", City: "Seattle", IsActive: true}
	name := "New"
	inactive := false
	points := TrailPointList{{ID: "p1", Latitude: 47.6, Longitude: -122.3}, {ID: "p2", Latitude: 47.7, Longitude: -122.4}}

	TrailUpdate{Name: &name, IsActive: &inactive, Points: &points}.Apply(&trail)

	assert.Equal(t, "New", trail.Name)
	assert.Equal(t, "Seattle", trail.City)
	assert.False(t, trail.IsActive)
	assert.Equal(t, 47.6, trail.Latitude)
	assert.Equal(t, -122.3, trail.Longitude)
	assert.Len(t, trail.Points, 2)
}
