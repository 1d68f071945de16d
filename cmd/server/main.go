// @title Spotfinder Backend
// @version 1.0
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/spotfinder/backend/internal/config"
	"github.com/spotfinder/backend/internal/db"
	"github.com/spotfinder/backend/internal/events"
	"github.com/spotfinder/backend/internal/geocode"
	httpapi "github.com/spotfinder/backend/internal/http"
	"github.com/spotfinder/backend/internal/locationapi"
	"github.com/spotfinder/backend/internal/registration"
	"github.com/spotfinder/backend/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := log.Level(level).With().Str("service", "spotfinder-backend").Logger()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	var (
		source     locationapi.Source
		photoIndex *db.Store
	)
	switch cfg.LocationBackend {
	case "postgres":
		store, err := db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect db")
		}
		defer store.Close()
		if err := store.EnsureSchema(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to apply schema")
		}
		source, photoIndex = store, store
	case "memory":
		source = locationapi.NewMemorySource()
		logger.Warn().Msg("using in-memory location source")
	default:
		source = locationapi.HTTPSource{BaseURL: cfg.LocationsAPIURL, Client: &http.Client{Timeout: cfg.RequestTimeout}}
	}
	logger.Info().Str("backend", cfg.LocationBackend).Msg("location source ready")

	nominatim := geocode.NewNominatimGeocoder(cfg.NominatimURL, cfg.NominatimUserAgent, cfg.NominatimMinInterval)

	var publisher events.Publisher = events.NopPublisher{Logger: logger}
	if brokers := cfg.KafkaBrokerList(); len(brokers) > 0 {
		publisher = events.NewKafkaPublisher(brokers, cfg.KafkaTopic, logger)
		logger.Info().Strs("brokers", brokers).Str("topic", cfg.KafkaTopic).Msg("kafka publisher enabled")
	}
	defer publisher.Close()

	deps := httpapi.Deps{
		Locations: source,
		Geocoder:  nominatim,
		Reverser:  nominatim,
	}
	if photoIndex != nil {
		deps.PhotoIndex = photoIndex
	}
	if cfg.PhotosEnabled() {
		photos, err := storage.NewPhotoStore(storage.Options{
			Endpoint:      cfg.MinioEndpoint,
			AccessKey:     cfg.MinioAccessKey,
			SecretKey:     cfg.MinioSecretKey,
			UseSSL:        cfg.MinioUseSSL,
			Bucket:        cfg.MinioBucket,
			Region:        cfg.MinioRegion,
			PublicBaseURL: cfg.MinioPublicURL,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create photo store")
		}
		if err := photos.EnsureBucket(ctx, cfg.MinioRegion); err != nil {
			logger.Fatal().Err(err).Str("bucket", cfg.MinioBucket).Msg("failed to ensure bucket")
		}
		deps.Photos = photos
	}

	manager := registration.NewManager(source, nominatim, publisher, registration.ManagerConfig{
		RadiusMeters: cfg.NearbyRadiusMeters,
		SessionTTL:   cfg.SessionTTL,
	}, logger)
	deps.Registrations = manager
	go manager.Run(ctx)

	router := httpapi.Router(cfg, deps, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	stop()

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShutdown)
	logger.Info().Msg("server stopped")
}
