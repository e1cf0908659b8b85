// Package geo computes great-circle distances between profile locations.
package geo

import (
	"math"

	"github.com/gdugdh24/partnerfinder/internal/domain"
)

const EarthRadiusKm = 6371.0

type Coordinate struct {
	Lat float64
	Lon float64
}

// Distance returns the haversine distance in kilometers.
func Distance(a, b Coordinate) float64 {
	if a == b {
		return 0
	}
	dLat := toRadians(b.Lat - a.Lat)
	dLon := toRadians(b.Lon - a.Lon)
	lat1 := toRadians(a.Lat)
	lat2 := toRadians(b.Lat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1)*math.Cos(lat2)
	// Rounding can push h slightly outside [0,1] for antipodal points.
	h = math.Min(1, math.Max(0, h))
	return EarthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// DistanceBetween returns the distance between two profiles, or false when
// either one has no coordinates.
func DistanceBetween(p, q *domain.Profile) (float64, bool) {
	if p == nil || q == nil || !p.HasCoordinates() || !q.HasCoordinates() {
		return 0, false
	}
	return Distance(
		Coordinate{Lat: *p.Latitude, Lon: *p.Longitude},
		Coordinate{Lat: *q.Latitude, Lon: *q.Longitude},
	), true
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
