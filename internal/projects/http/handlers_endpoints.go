package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aibuilder/aibuilder-backend/internal/api/http/respond"
	"github.com/aibuilder/aibuilder-backend/internal/auth"
	"github.com/aibuilder/aibuilder-backend/internal/projects/domain"
)

func (h *Handler) listEndpoints(c *gin.Context) {
	items, err := h.svc.ListEndpoints(c.Request.Context(), auth.UserID(c), c.Param("id"))
	if err != nil {
		h.fail(c, err, "Failed to fetch endpoints")
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) createEndpoint(c *gin.Context) {
	ctx := c.Request.Context()
	userID, projectID := auth.UserID(c), c.Param("id")

	if _, err := h.svc.Get(ctx, userID, projectID); err != nil {
		h.fail(c, err, "Failed to create endpoint")
		return
	}

	var req createEndpointReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Invalid(c, "Invalid endpoint data", err)
		return
	}

	e, err := h.svc.CreateEndpoint(ctx, userID, domain.NewAPIEndpoint{
		ProjectID:   projectID,
		Method:      req.Method,
		Path:        req.Path,
		Description: req.Description,
	})
	if err != nil {
		h.fail(c, err, "Failed to create endpoint")
		return
	}
	c.JSON(http.StatusCreated, e)
}

func (h *Handler) updateEndpoint(c *gin.Context) {
	ctx := c.Request.Context()
	userID, projectID := auth.UserID(c), c.Param("id")

	if _, err := h.svc.Get(ctx, userID, projectID); err != nil {
		h.fail(c, err, "Failed to update endpoint")
		return
	}

	var req updateEndpointReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Invalid(c, "Invalid endpoint data", err)
		return
	}

	e, err := h.svc.UpdateEndpoint(ctx, userID, projectID, c.Param("endpointId"), domain.APIEndpointUpdate{
		Method:      req.Method,
		Path:        req.Path,
		Description: req.Description,
	})
	if err != nil {
		h.failEndpoint(c, err, "Failed to update endpoint")
		return
	}
	c.JSON(http.StatusOK, e)
}

func (h *Handler) deleteEndpoint(c *gin.Context) {
	err := h.svc.DeleteEndpoint(c.Request.Context(), auth.UserID(c), c.Param("id"), c.Param("endpointId"))
	if err != nil {
		h.failEndpoint(c, err, "Failed to delete endpoint")
		return
	}
	c.Status(http.StatusNoContent)
}

// failEndpoint reports a missing endpoint under an accessible project.
// Ownership failures on the project itself still go through fail.
func (h *Handler) failEndpoint(c *gin.Context, err error, message string) {
	if errors.Is(err, domain.ErrEndpointNotFound) {
		respond.Message(c, http.StatusNotFound, "Endpoint not found")
		return
	}
	h.fail(c, err, message)
}
