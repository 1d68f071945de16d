package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spotfinder/backend/internal/models"
)

func reverseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reverse",
		Short: "Print the normalized address of a coordinate",
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := newReverser().Reverse(cmd.Context(), models.Coordinate{Latitude: lat, Longitude: lon})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Road:    %s\n", info.Road)
			fmt.Fprintf(out, "City:    %s\n", info.City)
			fmt.Fprintf(out, "State:   %s\n", info.State)
			fmt.Fprintf(out, "Country: %s\n", info.Country)
			return nil
		},
	}
	addCoordinateFlags(cmd)
	return cmd
}
