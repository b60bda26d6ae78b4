package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/aibuilder/aibuilder-backend/internal/auth"
	"github.com/aibuilder/aibuilder-backend/internal/auth/domain"
	"github.com/aibuilder/aibuilder-backend/internal/auth/session"
)

type stubVerifier map[string]*domain.Claims

func (s stubVerifier) VerifyIDToken(_ context.Context, token string) (*domain.Claims, error) {
	if c, ok := s[token]; ok {
		return c, nil
	}
	return nil, errors.New("invalid token")
}

type stubRefresher struct {
	tok   *oauth2.Token
	err   error
	calls int
}

func (s *stubRefresher) RefreshToken(_ context.Context, _ string) (*oauth2.Token, error) {
	s.calls++
	return s.tok, s.err
}

func serve(a *Authenticator, req *http.Request) (int, string) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", a.RequireUser(), func(c *gin.Context) {
		c.String(http.StatusOK, auth.UserID(c))
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code, w.Body.String()
}

func TestRequireUser_LocalAuth(t *testing.T) {
	a := NewAuthenticator(Options{LocalAuth: true})

	code, body := serve(a, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "local_user_123", body)
}

func TestRequireUser_NoCredentials(t *testing.T) {
	a := NewAuthenticator(Options{Sessions: session.NewMemoryStore(), Cookies: session.NewCookies("s", time.Hour, false)})

	code, body := serve(a, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, code)

	var out map[string]string
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	assert.Equal(t, "Unauthorized", out["message"])
}

func TestRequireUser_Bearer(t *testing.T) {
	a := NewAuthenticator(Options{Verifier: stubVerifier{"good": {Sub: "fb-1"}}})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer good")
	code, body := serve(a, req)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "fb-1", body)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer bad")
	code, _ = serve(a, req)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func sessionRequest(t *testing.T, cookies *session.Cookies, id string) *http.Request {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	require.NoError(t, cookies.Set(c, id))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	for _, ck := range w.Result().Cookies() {
		req.AddCookie(ck)
	}
	return req
}

func TestRequireUser_Session(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()
	cookies := session.NewCookies("secret", time.Hour, false)
	a := NewAuthenticator(Options{Sessions: store, Cookies: cookies})

	require.NoError(t, store.Save(ctx, "sid", &session.Session{
		Claims:    &domain.Claims{Sub: "oidc-1"},
		ExpiresAt: time.Now().Add(time.Hour),
	}, time.Hour))
	code, body := serve(a, sessionRequest(t, cookies, "sid"))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "oidc-1", body)

	// pending login sessions are not authenticated
	require.NoError(t, store.Save(ctx, "pending", &session.Session{State: "xyz"}, time.Hour))
	code, _ = serve(a, sessionRequest(t, cookies, "pending"))
	assert.Equal(t, http.StatusUnauthorized, code)

	// cookie signed with another secret
	code, _ = serve(a, sessionRequest(t, session.NewCookies("other", time.Hour, false), "sid"))
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestRequireUser_RefreshesExpiredSession(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()
	cookies := session.NewCookies("secret", time.Hour, false)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	refresher := &stubRefresher{tok: &oauth2.Token{AccessToken: "new-at", Expiry: now.Add(time.Hour)}}
	a := NewAuthenticator(Options{Sessions: store, Cookies: cookies, Refresher: refresher})
	a.now = func() time.Time { return now }

	require.NoError(t, store.Save(ctx, "sid", &session.Session{
		Claims:       &domain.Claims{Sub: "oidc-1"},
		AccessToken:  "old-at",
		RefreshToken: "rt",
		ExpiresAt:    now.Add(-time.Minute),
	}, time.Hour))

	code, body := serve(a, sessionRequest(t, cookies, "sid"))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "oidc-1", body)
	assert.Equal(t, 1, refresher.calls)

	s, err := store.Get(ctx, "sid")
	require.NoError(t, err)
	assert.Equal(t, "new-at", s.AccessToken)
	assert.Equal(t, "rt", s.RefreshToken)
}

func TestRequireUser_ExpiredWithoutRefresh(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()
	cookies := session.NewCookies("secret", time.Hour, false)
	refresher := &stubRefresher{err: errors.New("revoked")}
	a := NewAuthenticator(Options{Sessions: store, Cookies: cookies, Refresher: refresher})

	require.NoError(t, store.Save(ctx, "norefresh", &session.Session{
		Claims:    &domain.Claims{Sub: "u"},
		ExpiresAt: time.Now().Add(-time.Minute),
	}, time.Hour))
	code, _ := serve(a, sessionRequest(t, cookies, "norefresh"))
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, 0, refresher.calls)

	require.NoError(t, store.Save(ctx, "revoked", &session.Session{
		Claims:       &domain.Claims{Sub: "u"},
		RefreshToken: "rt",
		ExpiresAt:    time.Now().Add(-time.Minute),
	}, time.Hour))
	code, _ = serve(a, sessionRequest(t, cookies, "revoked"))
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, 1, refresher.calls)
}

func TestRequireUser_SessionWithoutExpiry(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()
	cookies := session.NewCookies("secret", time.Hour, false)
	refresher := &stubRefresher{tok: &oauth2.Token{AccessToken: "new-at", Expiry: time.Now().Add(time.Hour)}}
	a := NewAuthenticator(Options{Sessions: store, Cookies: cookies, Refresher: refresher})

	require.NoError(t, store.Save(ctx, "bare", &session.Session{Claims: &domain.Claims{Sub: "u"}}, time.Hour))
	code, _ := serve(a, sessionRequest(t, cookies, "bare"))
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, 0, refresher.calls)

	require.NoError(t, store.Save(ctx, "refreshable", &session.Session{
		Claims:       &domain.Claims{Sub: "u"},
		RefreshToken: "rt",
	}, time.Hour))
	code, body := serve(a, sessionRequest(t, cookies, "refreshable"))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "u", body)
	assert.Equal(t, 1, refresher.calls)

	s, err := store.Get(ctx, "refreshable")
	require.NoError(t, err)
	assert.False(t, s.ExpiresAt.IsZero())
}
