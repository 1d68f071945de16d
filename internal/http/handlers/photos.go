package handlers

import (
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/spotfinder/backend/internal/auth"
)

var allowedPhotoExt = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true}

// @Summary Attach a photo to a location
// @Tags locations
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "Location ID"
// @Param photo formData file true "Image file"
// @Success 201 {object} models.Photo
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 413 {object} ErrorResponse
// @Router /api/locations/{id}/photos [post]
func (h *Handler) PhotoUpload(c *gin.Context) {
	if h.Photos == nil {
		writeError(c, http.StatusServiceUnavailable, "PHOTOS_DISABLED", "Photo storage is not configured", nil)
		return
	}
	locationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || locationID <= 0 {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid location id", c.Param("id"))
		return
	}
	file, err := c.FormFile("photo")
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "photo file required", nil)
		return
	}
	if h.MaxUploadBytes > 0 && file.Size > h.MaxUploadBytes {
		writeError(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "photo exceeds upload limit", h.MaxUploadBytes)
		return
	}
	contentType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") || !allowedPhotoExt[strings.ToLower(filepath.Ext(file.Filename))] {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "photo must be an image", contentType)
		return
	}

	ctx := c.Request.Context()
	if _, err := h.Locations.GetLocation(ctx, locationID); err != nil {
		h.respondError(c, err, nil)
		return
	}

	f, err := file.Open()
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "unreadable upload", err.Error())
		return
	}
	defer f.Close()

	photo, err := h.Photos.Upload(ctx, locationID, file.Filename, contentType, f, file.Size)
	if err != nil {
		h.Logger.Error().Err(err).Int64("location_id", locationID).Msg("photo upload failed")
		writeError(c, http.StatusBadGateway, "STORAGE_ERROR", "Failed to store photo", nil)
		return
	}
	id, _ := auth.FromContext(ctx)
	photo.UserID = id.UserID

	if h.PhotoIndex != nil {
		photo, err = h.PhotoIndex.InsertPhoto(ctx, photo)
		if err != nil {
			h.respondError(c, err, nil)
			return
		}
	}
	h.Logger.Info().Int64("location_id", locationID).Str("key", photo.Key).Int64("size", photo.Size).Msg("photo stored")
	c.JSON(http.StatusCreated, photo)
}
