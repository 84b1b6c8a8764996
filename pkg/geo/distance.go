// Package geo holds the great-circle math used by every proximity query.
package geo

import "math"

// EarthRadiusKm is the mean Earth radius used by the haversine formula.
const EarthRadiusKm = 6371.0

// DefaultRadiusKm applies whenever a query does not specify a radius.
const DefaultRadiusKm = 5.0

// Point is a WGS84 coordinate in degrees.
type Point struct {
	Lat float64 `json:"latitude"`
	Lng float64 `json:"longitude"`
}

// Valid reports whether both coordinates are finite numbers.
func (p Point) Valid() bool {
	return isFinite(p.Lat) && isFinite(p.Lng)
}

// DistanceKm returns the great-circle distance between p and q.
func (p Point) DistanceKm(q Point) float64 {
	return Haversine(p.Lat, p.Lng, q.Lat, q.Lng)
}

// Within reports whether q lies at most radiusKm away from p.
// A negative radius matches nothing.
func (p Point) Within(q Point, radiusKm float64) (float64, bool) {
	d := p.DistanceKm(q)
	return d, d <= radiusKm
}

// Haversine returns the great-circle distance in kilometres between two
// latitude/longitude pairs given in degrees.
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	lat1Rad := toRad(lat1)
	lat2Rad := toRad(lat2)
	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dLng/2)*math.Sin(dLng/2)
	// rounding can push a a hair outside [0,1] for antipodal points
	a = math.Min(1, math.Max(0, a))
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
