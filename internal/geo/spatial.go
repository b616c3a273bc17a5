package geo

import "math"

const (
	earthRadiusMeters = 6371000.0
	metersPerDegree   = 111320.0
)

// DistanceMeters is the great-circle (Haversine) distance between a and b.
func DistanceMeters(a, b Coordinate) float64 {
	dLat := radians(b.Latitude - a.Latitude)
	dLon := radians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(a.Latitude))*math.Cos(radians(b.Latitude))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	return earthRadiusMeters * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Bounds is an axis-aligned latitude/longitude box.
type Bounds struct {
	MinLatitude  float64
	MaxLatitude  float64
	MinLongitude float64
	MaxLongitude float64
}

// BoundingBox returns a box that contains every point within radiusMeters of
// center. It is a prefilter only: callers still check DistanceMeters.
// Near the poles, or when the box would cross the antimeridian, the
// longitude span widens to the full range.
func BoundingBox(center Coordinate, radiusMeters float64) Bounds {
	deltaLat := radiusMeters / metersPerDegree
	b := Bounds{
		MinLatitude:  math.Max(MinLatitude, center.Latitude-deltaLat),
		MaxLatitude:  math.Min(MaxLatitude, center.Latitude+deltaLat),
		MinLongitude: MinLongitude,
		MaxLongitude: MaxLongitude,
	}

	cosLat := math.Cos(radians(center.Latitude))
	if cosLat < 1e-6 {
		return b
	}
	deltaLon := radiusMeters / (metersPerDegree * cosLat)
	if center.Longitude-deltaLon < MinLongitude || center.Longitude+deltaLon > MaxLongitude {
		return b
	}
	b.MinLongitude = center.Longitude - deltaLon
	b.MaxLongitude = center.Longitude + deltaLon
	return b
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
