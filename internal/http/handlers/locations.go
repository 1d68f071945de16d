package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/spotfinder/backend/internal/models"
)

// @Summary List locations
// @Tags locations
// @Produce json
// @Param city query string false "City filter"
// @Success 200 {array} models.Location
// @Router /api/locations [get]
func (h *Handler) LocationsList(c *gin.Context) {
	items, err := h.Locations.ListLocations(c.Request.Context(), strings.TrimSpace(c.Query("city")))
	if err != nil {
		h.respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, items)
}

// @Summary List cities with locations
// @Tags locations
// @Produce json
// @Success 200 {array} string
// @Router /api/locations/cities [get]
func (h *Handler) CitiesList(c *gin.Context) {
	cities, err := h.Locations.ListCities(c.Request.Context())
	if err != nil {
		h.respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, cities)
}

// @Summary Location details with photos
// @Tags locations
// @Produce json
// @Param id path int true "Location ID"
// @Success 200 {object} models.LocationDetail
// @Failure 404 {object} ErrorResponse
// @Router /api/locations/{id} [get]
func (h *Handler) LocationGet(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid location id", c.Param("id"))
		return
	}
	ctx := c.Request.Context()
	loc, err := h.Locations.GetLocation(ctx, id)
	if err != nil {
		h.respondError(c, err, nil)
		return
	}
	detail := models.LocationDetail{Location: loc, Photos: []models.Photo{}}
	if h.PhotoIndex != nil {
		photos, err := h.PhotoIndex.ListPhotos(ctx, id)
		if err != nil {
			h.respondError(c, err, nil)
			return
		}
		detail.Photos = photos
	}
	c.JSON(http.StatusOK, detail)
}
