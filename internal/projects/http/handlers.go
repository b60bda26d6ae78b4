package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aibuilder/aibuilder-backend/internal/api/http/respond"
	"github.com/aibuilder/aibuilder-backend/internal/auth"
	"github.com/aibuilder/aibuilder-backend/internal/projects/domain"
)

func (h *Handler) list(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context(), auth.UserID(c))
	if err != nil {
		h.fail(c, err, "Failed to fetch projects")
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) get(c *gin.Context) {
	p, err := h.svc.Get(c.Request.Context(), auth.UserID(c), c.Param("id"))
	if err != nil {
		h.fail(c, err, "Failed to fetch project")
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) create(c *gin.Context) {
	var req createProjectReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Invalid(c, "Invalid project data", err)
		return
	}

	p, err := h.svc.Create(c.Request.Context(), req.toDomain(auth.UserID(c)))
	if err != nil {
		h.fail(c, err, "Failed to create project")
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *Handler) update(c *gin.Context) {
	ctx := c.Request.Context()
	userID, id := auth.UserID(c), c.Param("id")

	if _, err := h.svc.Get(ctx, userID, id); err != nil {
		h.fail(c, err, "Failed to update project")
		return
	}

	var req updateProjectReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Invalid(c, "Invalid project data", err)
		return
	}

	p, err := h.svc.Update(ctx, userID, id, req.toDomain())
	if err != nil {
		h.fail(c, err, "Failed to update project")
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), auth.UserID(c), c.Param("id")); err != nil {
		h.fail(c, err, "Failed to delete project")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) publish(c *gin.Context) {
	p, url, err := h.svc.Publish(c.Request.Context(), auth.UserID(c), c.Param("id"))
	if err != nil {
		h.fail(c, err, "Failed to publish project")
		return
	}
	c.JSON(http.StatusOK, publishResp{Project: p, URL: url})
}

// fail maps service errors to the shared status codes; anything unexpected
// is logged and reported with the handler's generic message.
func (h *Handler) fail(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		respond.Message(c, http.StatusNotFound, "Project not found")
	case errors.Is(err, domain.ErrForbidden):
		respond.Message(c, http.StatusForbidden, "Access denied")
	case errors.Is(err, domain.ErrOwnerNotFound):
		respond.Message(c, http.StatusConflict, domain.OwnerNotSyncedMessage)
	default:
		h.log.Error(message, zap.String("path", c.FullPath()), zap.String("user_id", auth.UserID(c)), zap.Error(err))
		respond.Message(c, http.StatusInternalServerError, message)
	}
}
