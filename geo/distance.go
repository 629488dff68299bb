// Package geo provides great-circle distance and bearing math for
// coordinate pairs. All functions are pure and never fail; callers are
// expected to reject NaN or out-of-bounds coordinates upstream.
package geo

import (
	"math"
)

// EarthRadiusMeters is the mean Earth radius used for haversine distances.
// The haversine approximation stays within 0.5% of an ellipsoidal model,
// which is fine for quality thresholds measured in tens to thousands of
// meters. Survey-grade callers need a Vincenty/Karney implementation
// behind the same signature.
const EarthRadiusMeters = 6371008.8

// HaversineMeters returns the great-circle distance in meters between two
// coordinates. Symmetric, non-negative, and zero for identical inputs.
func HaversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	if lat1 == lat2 && lon1 == lon2 {
		return 0
	}
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	la1 := lat1 * math.Pi / 180
	la2 := lat2 * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(la1)*math.Cos(la2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusMeters * c
}

// BearingDegrees returns the initial compass bearing in degrees [0, 360)
// when traveling from the first coordinate to the second.
func BearingDegrees(lat1, lon1, lat2, lon2 float64) float64 {
	la1 := lat1 * math.Pi / 180
	la2 := lat2 * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	x := math.Sin(dLon) * math.Cos(la2)
	y := math.Cos(la1)*math.Sin(la2) - math.Sin(la1)*math.Cos(la2)*math.Cos(dLon)
	deg := math.Atan2(x, y) * 180 / math.Pi
	return math.Mod(deg+360, 360)
}

// TurnAngleDegrees returns the absolute change between two compass
// bearings, wrapped to [0, 180].
func TurnAngleDegrees(b1, b2 float64) float64 {
	d := math.Abs(b2 - b1)
	if d > 180 {
		d = 360 - d
	}
	return d
}
