package geospatial

import "math"

const earthRadiusKm = 6371.0

// metresPerDegree is the length of one degree of latitude.
const metresPerDegree = 111320.0

// Haversine calculates the great-circle distance in meters between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c * 1000 // meters
}

// BoundingBox returns a bounding box around a point with the given radius in meters.
func BoundingBox(lat, lon, radiusMeters float64) (minLat, minLon, maxLat, maxLon float64) {
	latDelta := radiusMeters / metresPerDegree
	lonDelta := radiusMeters / (metresPerDegree * math.Cos(toRad(lat)))

	return lat - latDelta, lon - lonDelta, lat + latDelta, lon + lonDelta
}

// Offset moves a point by north/east metres on a local tangent plane.
// Accurate for the few kilometres a well departs from its surface location.
func Offset(lat, lon, north, east float64) (float64, float64) {
	return lat + north/metresPerDegree,
		lon + east/(metresPerDegree*math.Cos(toRad(lat)))
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
