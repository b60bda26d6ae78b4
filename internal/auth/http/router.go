package http

import "github.com/gin-gonic/gin"

// Register attaches the login flow and the current-user routes under /api.
func (h *Handler) Register(api gin.IRouter, requireUser gin.HandlerFunc) {
	api.GET("/login", h.Login)
	api.GET("/callback", h.Callback)
	api.GET("/logout", h.Logout)

	api.GET("/auth/user", requireUser, h.GetUser)
	api.POST("/auth/sync", requireUser, h.SyncUser)
}
