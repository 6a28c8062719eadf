package fetcher

import "math"

const earthRadiusMiles = 3958.8

// haversineMiles is the great-circle distance between two coordinates.
func haversineMiles(lat1, lon1, lat2, lon2 float64) float64 {
	const deg = math.Pi / 180
	dLat := (lat2 - lat1) * deg
	dLon := (lon2 - lon1) * deg
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*deg)*math.Cos(lat2*deg)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMiles * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
