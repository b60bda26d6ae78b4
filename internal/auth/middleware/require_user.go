package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/aibuilder/aibuilder-backend/internal/auth"
	"github.com/aibuilder/aibuilder-backend/internal/auth/domain"
	"github.com/aibuilder/aibuilder-backend/internal/auth/session"
)

// TokenRefresher renews an expired access token.
type TokenRefresher interface {
	RefreshToken(ctx context.Context, refreshToken string) (*oauth2.Token, error)
}

type Options struct {
	// LocalAuth authenticates every request as the demo user.
	LocalAuth bool
	Verifier  auth.TokenVerifier
	Sessions  session.Store
	Cookies   *session.Cookies
	Refresher TokenRefresher
	Log       *zap.Logger
}

type Authenticator struct {
	opts Options
	now  func() time.Time
}

func NewAuthenticator(opts Options) *Authenticator {
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	return &Authenticator{opts: opts, now: time.Now}
}

// RequireUser resolves the caller in order: local demo user, Firebase bearer
// token, session cookie. Anything else is rejected with 401.
func (a *Authenticator) RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if a.opts.LocalAuth {
			demo := domain.DemoClaims
			auth.SetUser(c, &demo)
			c.Next()
			return
		}

		if token := extractToken(c); token != "" && a.opts.Verifier != nil {
			claims, err := a.opts.Verifier.VerifyIDToken(c.Request.Context(), token)
			if err != nil {
				a.opts.Log.Debug("bearer token rejected", zap.Error(err))
				unauthorized(c)
				return
			}
			auth.SetUser(c, claims)
			c.Next()
			return
		}

		claims, ok := a.fromSession(c)
		if !ok {
			unauthorized(c)
			return
		}
		auth.SetUser(c, claims)
		c.Next()
	}
}

func (a *Authenticator) fromSession(c *gin.Context) (*domain.Claims, bool) {
	if a.opts.Sessions == nil || a.opts.Cookies == nil {
		return nil, false
	}
	id, ok := a.opts.Cookies.Read(c)
	if !ok {
		return nil, false
	}

	ctx := c.Request.Context()
	s, err := a.opts.Sessions.Get(ctx, id)
	if err != nil || !s.Authenticated() {
		return nil, false
	}
	if !s.Expired(a.now()) {
		return s.Claims, true
	}

	if s.RefreshToken == "" || a.opts.Refresher == nil {
		return nil, false
	}
	tok, err := a.opts.Refresher.RefreshToken(ctx, s.RefreshToken)
	if err != nil {
		a.opts.Log.Info("session refresh failed", zap.String("user_id", s.Claims.Sub), zap.Error(err))
		return nil, false
	}

	s.AccessToken = tok.AccessToken
	if tok.RefreshToken != "" {
		s.RefreshToken = tok.RefreshToken
	}
	s.ExpiresAt = tok.Expiry
	if err := a.opts.Sessions.Save(ctx, id, s, a.opts.Cookies.TTL()); err != nil {
		a.opts.Log.Warn("save refreshed session", zap.Error(err))
	}
	return s.Claims, true
}

func unauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
}

// extractToken extracts the Bearer token from the Authorization header
func extractToken(c *gin.Context) string {
	bearerToken := c.GetHeader("Authorization")
	if len(bearerToken) > 7 && strings.HasPrefix(bearerToken, "Bearer ") {
		return strings.TrimSpace(bearerToken[7:])
	}
	return ""
}
