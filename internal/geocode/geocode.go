package geocode

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spotfinder/backend/internal/models"
)

var ErrNotFound = errors.New("geocode not found")

// RoadFallback is used when the upstream response carries no street-like field.
const RoadFallback = "Address not found"

// Address keys tried in priority order. Nominatim reports a locality under
// whichever key matches the place's administrative class.
var (
	RoadFields    = []string{"road", "pedestrian", "footway", "path"}
	CityFields    = []string{"city", "town", "village", "suburb"}
	StateFields   = []string{"state", "region", "state_district"}
	CountryFields = []string{"country"}
)

type Geocoder interface {
	Geocode(ctx context.Context, query string) (lat float64, lon float64, displayName string, confidence float64, err error)
}

// Reverser resolves a coordinate into a normalized address.
type Reverser interface {
	Reverse(ctx context.Context, c models.Coordinate) (models.AddressInfo, error)
}

// GeocodingError reports a failed reverse lookup. StatusCode is zero for transport failures.
type GeocodingError struct {
	Coordinate models.Coordinate
	StatusCode int
	Err        error
}

func (e *GeocodingError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("reverse geocoding %.6f,%.6f: status %d: %v", e.Coordinate.Latitude, e.Coordinate.Longitude, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("reverse geocoding %.6f,%.6f: %v", e.Coordinate.Latitude, e.Coordinate.Longitude, e.Err)
}

func (e *GeocodingError) Unwrap() error {
	return e.Err
}

func BuildSearchQuery(city string, state string, country string) string {
	parts := []string{}
	for _, p := range []string{city, state, country} {
		p = strings.TrimSpace(p)
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// NormalizeAddress maps a raw address object onto AddressInfo using the field priority lists.
func NormalizeAddress(raw map[string]any) models.AddressInfo {
	road := firstNonEmpty(raw, RoadFields)
	if road == "" {
		road = RoadFallback
	}
	return models.AddressInfo{
		Road:    road,
		City:    firstNonEmpty(raw, CityFields),
		State:   firstNonEmpty(raw, StateFields),
		Country: firstNonEmpty(raw, CountryFields),
	}
}

func firstNonEmpty(raw map[string]any, keys []string) string {
	for _, k := range keys {
		v, ok := raw[k].(string)
		if !ok {
			continue
		}
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
