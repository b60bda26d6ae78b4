package auth

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/aibuilder/aibuilder-backend/internal/auth/domain"
)

const (
	CtxUserID = "user_id"
	CtxClaims = "claims"
)

// SetUser stores the authenticated identity on the request context.
func SetUser(c *gin.Context, claims *domain.Claims) {
	c.Set(CtxUserID, claims.Sub)
	c.Set(CtxClaims, claims)
}

// UserID extracts the authenticated user's id. It is set by RequireUser.
func UserID(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(CtxUserID))
}

func ClaimsFrom(c *gin.Context) (*domain.Claims, bool) {
	v, ok := c.Get(CtxClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*domain.Claims)
	return claims, ok && claims != nil
}
