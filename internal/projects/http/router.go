package http

import "github.com/gin-gonic/gin"

// Register attaches project, endpoint and preview routes under /api.
// Every route requires an authenticated caller.
func (h *Handler) Register(api gin.IRouter, requireUser gin.HandlerFunc) {
	rg := api.Group("/projects", requireUser)
	rg.GET("", h.list)
	rg.POST("", h.create)
	rg.GET("/:id", h.get)
	rg.PUT("/:id", h.update)
	rg.DELETE("/:id", h.delete)
	rg.POST("/:id/publish", h.publish)

	rg.GET("/:id/endpoints", h.listEndpoints)
	rg.POST("/:id/endpoints", h.createEndpoint)
	rg.PUT("/:id/endpoints/:endpointId", h.updateEndpoint)
	rg.DELETE("/:id/endpoints/:endpointId", h.deleteEndpoint)

	api.GET("/preview/:projectId", requireUser, h.preview)
}
