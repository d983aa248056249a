// Package geo implements the small set of spherical-geometry helpers
// Stage 3 needs: great-circle distance and initial bearing between two
// points. Grounded on azybler/map_router's pkg/geo.Haversine, the only
// geometry helper anywhere in the retrieval pack.
package geo

import "math"

// EarthRadiusM is the mean Earth radius in meters used by Haversine,
// matching the constant map_router's pkg/geo uses.
const EarthRadiusM = 6371000.0

// Haversine returns the great-circle distance in meters between two
// lat/lon points given in degrees.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	rad := func(d float64) float64 { return d * math.Pi / 180 }
	phi1, phi2 := rad(lat1), rad(lat2)
	dPhi := rad(lat2 - lat1)
	dLambda := rad(lon2 - lon1)

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusM * c
}

// InitialBearingDeg returns the initial compass bearing in degrees
// [0, 360) travelling from (lat1,lon1) towards (lat2,lon2).
func InitialBearingDeg(lat1, lon1, lat2, lon2 float64) float64 {
	rad := func(d float64) float64 { return d * math.Pi / 180 }
	phi1, phi2 := rad(lat1), rad(lat2)
	dLambda := rad(lon2 - lon1)

	y := math.Sin(dLambda) * math.Cos(phi2)
	x := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(dLambda)
	theta := math.Atan2(y, x)
	deg := theta*180/math.Pi + 360
	return math.Mod(deg, 360)
}
