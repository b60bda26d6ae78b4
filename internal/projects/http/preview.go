package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aibuilder/aibuilder-backend/internal/auth"
	"github.com/aibuilder/aibuilder-backend/internal/preview"
)

// preview serves the owner's project as a standalone HTML page.
func (h *Handler) preview(c *gin.Context) {
	p, err := h.svc.Get(c.Request.Context(), auth.UserID(c), c.Param("projectId"))
	if err != nil {
		h.fail(c, err, "Failed to load preview")
		return
	}

	page, err := preview.Render(p)
	if err != nil {
		h.fail(c, err, "Failed to load preview")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}
