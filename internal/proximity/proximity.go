package proximity

import (
	"sort"
	"strings"

	"github.com/spotfinder/backend/internal/models"
	"github.com/spotfinder/backend/internal/utils"
)

const DefaultRadiusMeters = 500.0

// FindNearby returns every location strictly closer than radiusMeters to candidate,
// nearest first. Equal distances are ordered by name, then by ID.
func FindNearby(candidate models.Coordinate, existing []models.Location, radiusMeters float64) []models.ProximityMatch {
	if radiusMeters <= 0 {
		radiusMeters = DefaultRadiusMeters
	}

	out := make([]models.ProximityMatch, 0)
	for _, loc := range existing {
		d := utils.DistanceMeters(candidate, loc.Coordinate())
		if d < radiusMeters {
			out = append(out, models.ProximityMatch{Location: loc, DistanceMeters: d})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DistanceMeters != out[j].DistanceMeters {
			return out[i].DistanceMeters < out[j].DistanceMeters
		}
		ni, nj := strings.ToLower(out[i].Name), strings.ToLower(out[j].Name)
		if ni != nj {
			return ni < nj
		}
		return out[i].ID < out[j].ID
	})
	return out
}
