package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/spotfinder/backend/internal/geocode"
	"github.com/spotfinder/backend/internal/locationapi"
	"github.com/spotfinder/backend/internal/mapview"
	"github.com/spotfinder/backend/internal/models"
	"github.com/spotfinder/backend/internal/registration"
)

type PhotoUploader interface {
	Upload(ctx context.Context, locationID int64, filename string, contentType string, r io.Reader, size int64) (models.Photo, error)
}

// PhotoIndex records uploaded photos against a location. Only the postgres
// backend provides one.
type PhotoIndex interface {
	InsertPhoto(ctx context.Context, p models.Photo) (models.Photo, error)
	ListPhotos(ctx context.Context, locationID int64) ([]models.Photo, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	Locations      locationapi.Source
	Registrations  *registration.Manager
	Geocoder       geocode.Geocoder
	Reverser       geocode.Reverser
	Photos         PhotoUploader
	PhotoIndex     PhotoIndex
	MapConfig      mapview.Config
	Validator      *validator.Validate
	Logger         zerolog.Logger
	MaxUploadBytes int64
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} ErrorResponse
// @Router /healthz [get]
func (h *Handler) Healthz(c *gin.Context) {
	p, ok := h.Locations.(pinger)
	if ok {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()
		if err := p.Ping(ctx); err != nil {
			h.Logger.Error().Err(err).Msg("location source unavailable")
			writeError(c, http.StatusServiceUnavailable, "SOURCE_UNAVAILABLE", "Location source unavailable", err.Error())
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// @Summary Map configuration
// @Tags map
// @Produce json
// @Success 200 {object} mapview.Config
// @Router /api/map/config [get]
func (h *Handler) MapConfigGet(c *gin.Context) {
	c.JSON(http.StatusOK, h.MapConfig)
}

func writeError(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

// respondError maps domain errors onto the error envelope. snap, when given,
// is returned as details so clients can render the flow's state.
func (h *Handler) respondError(c *gin.Context, err error, snap *registration.Snapshot) {
	var (
		verr *registration.ValidationError
		cerr *registration.ConfirmationRequiredError
		gerr *geocode.GeocodingError
		serr *registration.SubmissionError
		aerr *locationapi.APIError
	)
	var details any
	if snap != nil {
		details = snap
	}

	switch {
	case errors.As(err, &verr):
		h.Logger.Warn().Err(err).Str("field", verr.Field).Msg("validation failed")
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", verr.Error(), gin.H{"field": verr.Field})
	case errors.As(err, &cerr):
		writeError(c, http.StatusConflict, "CONFIRMATION_REQUIRED", cerr.Error(), cerr.Matches)
	case errors.As(err, &gerr):
		h.Logger.Error().Err(err).Int("status", gerr.StatusCode).Msg("reverse geocoding failed")
		writeError(c, http.StatusBadGateway, "GEOCODING_ERROR", "Could not resolve the address for this point", details)
	case errors.As(err, &serr):
		h.Logger.Error().Err(err).Msg("location submission failed")
		writeError(c, http.StatusBadGateway, "SUBMISSION_ERROR", "Could not save the location", details)
	case errors.Is(err, registration.ErrFlowNotFound):
		writeError(c, http.StatusNotFound, "NOT_FOUND", "Registration not found", nil)
	case errors.Is(err, registration.ErrSuperseded):
		writeError(c, http.StatusConflict, "SUPERSEDED", err.Error(), details)
	case errors.Is(err, registration.ErrFlowClosed):
		writeError(c, http.StatusConflict, "FLOW_CLOSED", err.Error(), details)
	case errors.Is(err, locationapi.ErrLocationNotFound):
		writeError(c, http.StatusNotFound, "NOT_FOUND", "Location not found", nil)
	case errors.As(err, &aerr):
		h.Logger.Error().Err(err).Str("op", aerr.Op).Int("status", aerr.StatusCode).Msg("location api error")
		writeError(c, http.StatusBadGateway, "UPSTREAM_ERROR", "Location API request failed", aerr.StatusCode)
	default:
		h.Logger.Error().Err(err).Msg("request failed")
		writeError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal error", err.Error())
	}
}
