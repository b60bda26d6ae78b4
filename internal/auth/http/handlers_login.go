package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aibuilder/aibuilder-backend/internal/api/http/respond"
	"github.com/aibuilder/aibuilder-backend/internal/auth/session"
)

// Login starts the authorization code flow. The state is kept in a pending
// session bound to the browser through the session cookie.
func (h *Handler) Login(c *gin.Context) {
	if h.opts.LocalAuth {
		c.Redirect(http.StatusFound, "/")
		return
	}

	ctx := c.Request.Context()
	state := session.NewID()
	sid := session.NewID()

	if err := h.opts.Sessions.Save(ctx, sid, &session.Session{State: state}, pendingLoginTTL); err != nil {
		h.opts.Log.Error("save pending login", zap.Error(err))
		respond.Message(c, http.StatusInternalServerError, "Login unavailable")
		return
	}

	target, err := h.opts.Provider.AuthCodeURL(ctx, h.redirectURL(c), state)
	if err != nil {
		h.opts.Log.Error("build authorization url", zap.Error(err))
		respond.Message(c, http.StatusBadGateway, "Login unavailable")
		return
	}

	if err := h.opts.Cookies.Set(c, sid); err != nil {
		h.opts.Log.Error("set session cookie", zap.Error(err))
		respond.Message(c, http.StatusInternalServerError, "Login unavailable")
		return
	}
	c.Redirect(http.StatusFound, target)
}

// Callback finishes the flow: state check, code exchange, userinfo, user
// upsert, then a fresh session id. Any failure sends the browser back to login.
func (h *Handler) Callback(c *gin.Context) {
	if h.opts.LocalAuth {
		c.Redirect(http.StatusFound, "/")
		return
	}

	ctx := c.Request.Context()
	fail := func(reason string, err error) {
		h.opts.Log.Warn("login callback failed", zap.String("reason", reason), zap.Error(err))
		c.Redirect(http.StatusFound, "/api/login")
	}

	if e := c.Query("error"); e != "" {
		fail("provider error", nil)
		return
	}

	sid, ok := h.opts.Cookies.Read(c)
	if !ok {
		fail("missing session cookie", nil)
		return
	}
	pending, err := h.opts.Sessions.Get(ctx, sid)
	if err != nil {
		fail("unknown session", err)
		return
	}
	if pending.State == "" || pending.State != c.Query("state") {
		fail("state mismatch", nil)
		return
	}

	tok, err := h.opts.Provider.Exchange(ctx, h.redirectURL(c), c.Query("code"))
	if err != nil {
		fail("code exchange", err)
		return
	}
	claims, err := h.opts.Provider.UserInfo(ctx, tok)
	if err != nil {
		fail("userinfo", err)
		return
	}
	if _, err := h.authService.SyncUser(ctx, claims); err != nil {
		fail("upsert user", err)
		return
	}

	if err := h.opts.Sessions.Delete(ctx, sid); err != nil {
		h.opts.Log.Warn("drop pending session", zap.Error(err))
	}
	newID := session.NewID()
	s := &session.Session{
		Claims:       claims,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    tok.Expiry,
	}
	if err := h.opts.Sessions.Save(ctx, newID, s, h.opts.Cookies.TTL()); err != nil {
		fail("save session", err)
		return
	}

	if err := h.opts.Cookies.Set(c, newID); err != nil {
		fail("set session cookie", err)
		return
	}
	h.opts.Log.Info("user logged in", zap.String("user_id", claims.Sub))
	c.Redirect(http.StatusFound, "/")
}

// Logout drops the local session and hands the browser to the provider's
// end-session endpoint.
func (h *Handler) Logout(c *gin.Context) {
	if h.opts.LocalAuth {
		c.Redirect(http.StatusFound, "/")
		return
	}

	ctx := c.Request.Context()
	if sid, ok := h.opts.Cookies.Read(c); ok {
		if err := h.opts.Sessions.Delete(ctx, sid); err != nil {
			h.opts.Log.Warn("delete session", zap.Error(err))
		}
	}
	h.opts.Cookies.Clear(c)

	target, err := h.opts.Provider.EndSessionURL(ctx, origin(c))
	if err != nil {
		h.opts.Log.Warn("end session url", zap.Error(err))
		target = "/"
	}
	c.Redirect(http.StatusFound, target)
}

func (h *Handler) redirectURL(c *gin.Context) string {
	if h.opts.RedirectURL != "" {
		return h.opts.RedirectURL
	}
	return origin(c) + "/api/callback"
}

func origin(c *gin.Context) string {
	scheme := "http"
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	} else if c.Request.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host
}
