package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/spotfinder/backend/internal/geocode"
	"github.com/spotfinder/backend/internal/models"
)

type GeocodeSearchResponse struct {
	Query       string  `json:"query"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	DisplayName string  `json:"displayName"`
	Confidence  float64 `json:"confidence"`
}

// @Summary Forward geocode a place
// @Tags geocode
// @Produce json
// @Param q query string false "Free-form query"
// @Param city query string false "City, used when q is empty"
// @Param state query string false "State, used when q is empty"
// @Param country query string false "Country, used when q is empty"
// @Success 200 {object} GeocodeSearchResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/geocode/search [get]
func (h *Handler) GeocodeSearch(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		q = geocode.BuildSearchQuery(c.Query("city"), c.Query("state"), c.Query("country"))
	}
	if q == "" {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "q or city is required", nil)
		return
	}
	lat, lon, name, conf, err := h.Geocoder.Geocode(c.Request.Context(), q)
	if errors.Is(err, geocode.ErrNotFound) {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "No match for query", q)
		return
	}
	if err != nil {
		h.Logger.Error().Err(err).Str("query", q).Msg("geocode search failed")
		writeError(c, http.StatusBadGateway, "GEOCODING_ERROR", "Geocoding failed", nil)
		return
	}
	c.JSON(http.StatusOK, GeocodeSearchResponse{Query: q, Latitude: lat, Longitude: lon, DisplayName: name, Confidence: conf})
}

// @Summary Reverse geocode a coordinate
// @Tags geocode
// @Produce json
// @Param lat query number true "Latitude"
// @Param lon query number true "Longitude"
// @Success 200 {object} models.AddressInfo
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /api/geocode/reverse [get]
func (h *Handler) GeocodeReverse(c *gin.Context) {
	coord, ok := parseCoordinate(c.Query("lat"), c.Query("lon"))
	if !ok {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "lat and lon must be valid coordinates", nil)
		return
	}
	info, err := h.Reverser.Reverse(c.Request.Context(), coord)
	if err != nil {
		h.respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, info)
}

func parseCoordinate(latRaw string, lonRaw string) (models.Coordinate, bool) {
	lat, err := strconv.ParseFloat(strings.TrimSpace(latRaw), 64)
	if err != nil || lat < -90 || lat > 90 {
		return models.Coordinate{}, false
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonRaw), 64)
	if err != nil || lon < -180 || lon > 180 {
		return models.Coordinate{}, false
	}
	return models.Coordinate{Latitude: lat, Longitude: lon}, true
}
