package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDistanceZeroForIdenticalPoints(t *testing.T) {
	require.Equal(t, 0.0, Distance(-6.2, 106.8, -6.2, 106.8))
}

func TestDistanceSymmetric(t *testing.T) {
	d1 := Distance(-6.2, 106.8, -6.21, 106.81)
	d2 := Distance(-6.21, 106.81, -6.2, 106.8)
	require.InDelta(t, d1, d2, 1e-9)
}

func TestDistanceKnownValue(t *testing.T) {
	// One degree of latitude is ~111.19 km on a 6371 km sphere.
	d := Distance(0, 0, 1, 0)
	require.InDelta(t, 111194.9, d, 1.0)

	// 0.001 degrees of latitude is ~111.19 m, outside the 100 m geofence.
	d = Distance(-6.2, 106.8, -6.201, 106.8)
	require.InDelta(t, 111.19, d, 0.5)
}

func TestDistanceAntipodalNotNaN(t *testing.T) {
	d := Distance(0, 0, 0, 180)
	require.False(t, math.IsNaN(d))
	// Half the circumference of the sphere.
	require.InDelta(t, math.Pi*earthRadiusMeters, d, 1.0)
}

func TestWithinCheckInRadius(t *testing.T) {
	// ~55.6 m away.
	require.True(t, WithinCheckInRadius(-6.2005, 106.8, -6.2, 106.8))
	// ~111.2 m away.
	require.False(t, WithinCheckInRadius(-6.201, 106.8, -6.2, 106.8))
}

func TestValidCoordinate(t *testing.T) {
	require.True(t, ValidCoordinate(0, 0))
	require.True(t, ValidCoordinate(-90, 180))
	require.True(t, ValidCoordinate(90, -180))
	require.False(t, ValidCoordinate(90.1, 0))
	require.False(t, ValidCoordinate(0, -180.1))
}
