package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/spotfinder/backend/internal/models"
	"github.com/spotfinder/backend/internal/proximity"
	"github.com/spotfinder/backend/internal/utils"
)

func nearbyCmd() *cobra.Command {
	var (
		radius float64
		city   string
	)
	cmd := &cobra.Command{
		Use:   "nearby",
		Short: "List registered locations near a coordinate",
		RunE: func(cmd *cobra.Command, args []string) error {
			source, closeFn, err := openSource(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			existing, err := source.ListLocations(cmd.Context(), city)
			if err != nil {
				return err
			}
			if radius <= 0 {
				radius = cfg.NearbyRadiusMeters
			}
			origin := models.Coordinate{Latitude: lat, Longitude: lon}
			matches := proximity.FindNearby(origin, existing, radius)
			printMatches(cmd.OutOrStdout(), origin, matches, radius)
			return nil
		},
	}
	addCoordinateFlags(cmd)
	cmd.Flags().Float64Var(&radius, "radius", 0, "search radius in meters (default NEARBY_RADIUS_METERS)")
	cmd.Flags().StringVar(&city, "city", "", "only consider locations in this city")
	return cmd
}

func printMatches(w io.Writer, origin models.Coordinate, matches []models.ProximityMatch, radius float64) {
	if len(matches) == 0 {
		fmt.Fprintf(w, "No locations within %s\n", formatDistance(radius))
		return
	}
	for _, m := range matches {
		dist := fmt.Sprintf("%.0fm", m.DistanceMeters)
		if m.DistanceMeters >= 1000 {
			dist = fmt.Sprintf("%.2fkm", utils.HaversineKm(origin.Latitude, origin.Longitude, m.Latitude, m.Longitude))
		}
		fmt.Fprintf(w, "%8s  #%d  %s  (%s)\n", dist, m.ID, m.Name, m.Address)
	}
}

func formatDistance(meters float64) string {
	if meters >= 1000 {
		return fmt.Sprintf("%.2fkm", meters/1000)
	}
	return fmt.Sprintf("%.0fm", meters)
}
