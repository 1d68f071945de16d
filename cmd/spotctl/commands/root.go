package commands

import (
	"context"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/spotfinder/backend/internal/config"
	"github.com/spotfinder/backend/internal/db"
	"github.com/spotfinder/backend/internal/geocode"
	"github.com/spotfinder/backend/internal/locationapi"
)

var (
	envFile string
	cfg     config.Config

	lat float64
	lon float64
)

func Execute() error {
	root := &cobra.Command{
		Use:          "spotctl",
		Short:        "Inspect addresses and nearby locations from the command line",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(envFile)
			if err != nil {
				return err
			}
			cfg = loaded
			return nil
		},
	}

	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before the environment")

	root.AddCommand(reverseCmd(), nearbyCmd())
	return root.Execute()
}

func addCoordinateFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&lat, "lat", 0, "latitude")
	cmd.Flags().Float64Var(&lon, "lon", 0, "longitude")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lon")
}

func newReverser() geocode.Reverser {
	return geocode.NewNominatimGeocoder(cfg.NominatimURL, cfg.NominatimUserAgent, cfg.NominatimMinInterval)
}

// openSource returns the configured location source and a cleanup func.
func openSource(ctx context.Context) (locationapi.Source, func(), error) {
	switch cfg.LocationBackend {
	case "postgres":
		store, err := db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect db: %w", err)
		}
		return store, store.Close, nil
	case "memory":
		return locationapi.NewMemorySource(), func() {}, nil
	default:
		return locationapi.HTTPSource{BaseURL: cfg.LocationsAPIURL, Client: &http.Client{Timeout: cfg.RequestTimeout}}, func() {}, nil
	}
}
