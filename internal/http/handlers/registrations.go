package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/spotfinder/backend/internal/auth"
	"github.com/spotfinder/backend/internal/models"
	"github.com/spotfinder/backend/internal/registration"
)

type SelectionRequest struct {
	Latitude  *float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
}

type DraftRequest struct {
	Name     *string `json:"name" validate:"omitempty,max=200"`
	Address  *string `json:"address" validate:"omitempty,max=500"`
	WhatsApp *string `json:"whatsapp" validate:"omitempty,max=40"`
}

type SubmitRequest struct {
	Confirmed bool `json:"confirmed"`
}

// @Summary Start a location registration
// @Tags registrations
// @Security BearerAuth
// @Produce json
// @Success 201 {object} registration.Snapshot
// @Router /api/registrations [post]
func (h *Handler) RegistrationStart(c *gin.Context) {
	id, _ := auth.FromContext(c.Request.Context())
	flow, err := h.Registrations.Start(c.Request.Context(), id.UserID)
	if err != nil {
		h.respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusCreated, flow.Snapshot())
}

// @Summary Registration state
// @Tags registrations
// @Security BearerAuth
// @Produce json
// @Param id path string true "Registration ID"
// @Success 200 {object} registration.Snapshot
// @Failure 404 {object} ErrorResponse
// @Router /api/registrations/{id} [get]
func (h *Handler) RegistrationGet(c *gin.Context) {
	flow, ok := h.ownedFlow(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, flow.Snapshot())
}

// @Summary Select a point on the map
// @Tags registrations
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Registration ID"
// @Param payload body SelectionRequest true "Selected coordinate"
// @Success 200 {object} registration.Snapshot
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /api/registrations/{id}/selection [post]
func (h *Handler) RegistrationSelect(c *gin.Context) {
	flow, ok := h.ownedFlow(c)
	if !ok {
		return
	}
	var req SelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid coordinate", err.Error())
		return
	}

	snap, err := h.Registrations.Select(c.Request.Context(), flow.ID(), models.Coordinate{Latitude: *req.Latitude, Longitude: *req.Longitude})
	if err != nil {
		h.respondError(c, err, &snap)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// @Summary Edit the registration draft
// @Tags registrations
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Registration ID"
// @Param payload body DraftRequest true "Draft fields"
// @Success 200 {object} registration.Snapshot
// @Router /api/registrations/{id}/draft [patch]
func (h *Handler) RegistrationDraft(c *gin.Context) {
	flow, ok := h.ownedFlow(c)
	if !ok {
		return
	}
	var req DraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid draft", err.Error())
		return
	}

	snap, err := h.Registrations.UpdateDraft(flow.ID(), registration.DraftUpdate{
		Name:          req.Name,
		Address:       req.Address,
		ContactHandle: req.WhatsApp,
	})
	if err != nil {
		h.respondError(c, err, &snap)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// @Summary Submit the registration
// @Tags registrations
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Registration ID"
// @Param payload body SubmitRequest false "Confirmation of nearby matches"
// @Success 201 {object} registration.Snapshot
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /api/registrations/{id}/submit [post]
func (h *Handler) RegistrationSubmit(c *gin.Context) {
	flow, ok := h.ownedFlow(c)
	if !ok {
		return
	}
	var req SubmitRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON", err.Error())
			return
		}
	}

	snap, err := h.Registrations.Submit(c.Request.Context(), flow.ID(), req.Confirmed)
	if err != nil {
		h.respondError(c, err, &snap)
		return
	}
	c.JSON(http.StatusCreated, snap)
}

// @Summary Abandon the registration
// @Tags registrations
// @Security BearerAuth
// @Param id path string true "Registration ID"
// @Success 204
// @Router /api/registrations/{id} [delete]
func (h *Handler) RegistrationAbandon(c *gin.Context) {
	flow, ok := h.ownedFlow(c)
	if !ok {
		return
	}
	h.Registrations.Abandon(flow.ID())
	c.Status(http.StatusNoContent)
}

// ownedFlow resolves the path's flow. Flows of other users are reported as missing.
func (h *Handler) ownedFlow(c *gin.Context) (*registration.Flow, bool) {
	flow, err := h.Registrations.Get(c.Param("id"))
	if err != nil {
		h.respondError(c, err, nil)
		return nil, false
	}
	id, _ := auth.FromContext(c.Request.Context())
	if flow.UserID() != id.UserID {
		h.respondError(c, registration.ErrFlowNotFound, nil)
		return nil, false
	}
	return flow, true
}
