package http

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/aibuilder/aibuilder-backend/internal/auth/domain"
	"github.com/aibuilder/aibuilder-backend/internal/auth/service"
	"github.com/aibuilder/aibuilder-backend/internal/auth/session"
)

// pendingLoginTTL bounds how long a login may wait for the provider callback.
const pendingLoginTTL = 10 * time.Minute

// IdentityProvider is the OpenID Connect surface the login flow needs.
type IdentityProvider interface {
	AuthCodeURL(ctx context.Context, redirectURL, state string) (string, error)
	Exchange(ctx context.Context, redirectURL, code string) (*oauth2.Token, error)
	UserInfo(ctx context.Context, tok *oauth2.Token) (*domain.Claims, error)
	EndSessionURL(ctx context.Context, postLogoutRedirect string) (string, error)
}

type Options struct {
	LocalAuth bool
	// RedirectURL overrides the callback URL derived from the request host.
	RedirectURL string
	Provider    IdentityProvider
	Sessions    session.Store
	Cookies     *session.Cookies
	Log         *zap.Logger
}

type Handler struct {
	authService *service.AuthService
	opts        Options
}

func NewHandler(authService *service.AuthService, opts Options) *Handler {
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	return &Handler{authService: authService, opts: opts}
}
