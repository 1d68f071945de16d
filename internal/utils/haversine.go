package utils

import (
	"math"

	"github.com/spotfinder/backend/internal/models"
)

const earthRadiusMeters = 6371000.0

// DistanceMeters returns the great-circle distance between a and b using the
// haversine formula. NaN inputs propagate.
func DistanceMeters(a, b models.Coordinate) float64 {
	dLat := degreesToRadians(b.Latitude - a.Latitude)
	dLon := degreesToRadians(b.Longitude - a.Longitude)

	lat1R := degreesToRadians(a.Latitude)
	lat2R := degreesToRadians(b.Latitude)

	hav := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1R)*math.Cos(lat2R)
	// rounding can push hav a hair above 1 for antipodal points
	if hav > 1 {
		hav = 1
	}
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(hav))
}

func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	return DistanceMeters(
		models.Coordinate{Latitude: lat1, Longitude: lon1},
		models.Coordinate{Latitude: lat2, Longitude: lon2},
	) / 1000
}

func degreesToRadians(d float64) float64 {
	return d * math.Pi / 180
}
