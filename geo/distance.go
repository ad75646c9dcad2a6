// Package geo holds the distance math and the discovery filter predicates.
// Candidate retrieval is done by the 2dsphere index; everything in here runs
// in-process on the fetched candidates.
package geo

import "math"

const earthRadiusKm = 6371

// DistanceKm returns the Haversine distance between two points in kilometers.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// DistanceMeters returns the Haversine distance rounded to whole meters.
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	return math.Round(DistanceKm(lat1, lon1, lat2, lon2) * 1000)
}
