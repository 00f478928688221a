package domain

import (
	"math"
)

// CheckInRadiusMeters is the geofence radius for outlet check-in. The mobile
// client enforces it before calling check-in; the server only reports the
// measured distance.
const CheckInRadiusMeters = 100.0

const earthRadiusMeters = 6371000.0

// Distance returns the great-circle distance in meters between two
// (latitude, longitude) pairs in decimal degrees, using the haversine
// formula.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	sinPhi := math.Sin(dPhi / 2)
	sinLambda := math.Sin(dLambda / 2)
	h := sinPhi*sinPhi + math.Cos(phi1)*math.Cos(phi2)*sinLambda*sinLambda

	// Rounding can push h a hair outside [0, 1] for antipodal points, which
	// would make Sqrt/Asin produce NaN.
	if h > 1 {
		h = 1
	} else if h < 0 {
		h = 0
	}

	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(h))
}

// WithinCheckInRadius reports whether the point (lat, lon) is inside the
// check-in geofence around the outlet's coordinates.
func WithinCheckInRadius(lat, lon, outletLat, outletLon float64) bool {
	return Distance(lat, lon, outletLat, outletLon) <= CheckInRadiusMeters
}

// ValidCoordinate reports whether (lat, lon) is a standard-range coordinate.
func ValidCoordinate(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
