package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aibuilder/aibuilder-backend/internal/api/http/respond"
	"github.com/aibuilder/aibuilder-backend/internal/auth"
	"github.com/aibuilder/aibuilder-backend/internal/auth/domain"
)

// GetUser returns the stored record of the authenticated caller.
func (h *Handler) GetUser(c *gin.Context) {
	user, err := h.authService.GetUser(c.Request.Context(), auth.UserID(c))
	if errors.Is(err, domain.ErrUserNotFound) {
		respond.Message(c, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		h.opts.Log.Error("fetch user", zap.String("user_id", auth.UserID(c)), zap.Error(err))
		respond.Message(c, http.StatusInternalServerError, "Failed to fetch user")
		return
	}
	c.JSON(http.StatusOK, user)
}

// SyncUser stores the caller's identity claims. Bearer-token clients call it
// once after signing in, since they never pass through the callback.
func (h *Handler) SyncUser(c *gin.Context) {
	claims, ok := auth.ClaimsFrom(c)
	if !ok {
		respond.Message(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := h.authService.SyncUser(c.Request.Context(), claims)
	if err != nil {
		h.opts.Log.Error("sync user", zap.String("user_id", claims.Sub), zap.Error(err))
		respond.Message(c, http.StatusInternalServerError, "Failed to sync user")
		return
	}
	c.JSON(http.StatusOK, user)
}
