package httpapi

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/spotfinder/backend/internal/config"
	"github.com/spotfinder/backend/internal/geocode"
	"github.com/spotfinder/backend/internal/http/handlers"
	"github.com/spotfinder/backend/internal/http/middleware"
	"github.com/spotfinder/backend/internal/locationapi"
	"github.com/spotfinder/backend/internal/mapview"
	"github.com/spotfinder/backend/internal/models"
	"github.com/spotfinder/backend/internal/registration"

	_ "github.com/spotfinder/backend/docs"
)

type Deps struct {
	Locations     locationapi.Source
	Registrations *registration.Manager
	Geocoder      geocode.Geocoder
	Reverser      geocode.Reverser
	Photos        handlers.PhotoUploader
	PhotoIndex    handlers.PhotoIndex
}

func Router(cfg config.Config, deps Deps, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.MaxMultipartMemory = cfg.MaxUploadSizeMB << 20

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-Id"},
		ExposeHeaders:    []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.CORSAllowed == "*" {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		for _, o := range strings.Split(cfg.CORSAllowed, ",") {
			if o = strings.TrimSpace(o); o != "" {
				corsCfg.AllowOrigins = append(corsCfg.AllowOrigins, o)
			}
		}
	}
	r.Use(cors.New(corsCfg))

	h := &handlers.Handler{
		Locations:      deps.Locations,
		Registrations:  deps.Registrations,
		Geocoder:       deps.Geocoder,
		Reverser:       deps.Reverser,
		Photos:         deps.Photos,
		PhotoIndex:     deps.PhotoIndex,
		MapConfig:      mapview.New(cfg.MapTileURL, cfg.MapAttribution, models.Coordinate{Latitude: cfg.MapCenterLat, Longitude: cfg.MapCenterLon}, cfg.MapZoom, cfg.NearbyRadiusMeters),
		Validator:      validator.New(),
		Logger:         logger,
		MaxUploadBytes: cfg.MaxUploadSizeMB << 20,
	}

	r.GET("/healthz", h.Healthz)

	api := r.Group("/api")
	{
		api.GET("/map/config", h.MapConfigGet)
		api.GET("/geocode/search", h.GeocodeSearch)
		api.GET("/geocode/reverse", h.GeocodeReverse)
		api.GET("/locations", h.LocationsList)
		api.GET("/locations/cities", h.CitiesList)
		api.GET("/locations/:id", h.LocationGet)
	}

	authed := api.Group("")
	authed.Use(middleware.BearerAuth())
	{
		authed.POST("/registrations", h.RegistrationStart)
		authed.GET("/registrations/:id", h.RegistrationGet)
		authed.POST("/registrations/:id/selection", h.RegistrationSelect)
		authed.PATCH("/registrations/:id/draft", h.RegistrationDraft)
		authed.POST("/registrations/:id/submit", h.RegistrationSubmit)
		authed.DELETE("/registrations/:id", h.RegistrationAbandon)
		authed.POST("/locations/:id/photos", h.PhotoUpload)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
