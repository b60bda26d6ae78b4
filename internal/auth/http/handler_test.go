package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/aibuilder/aibuilder-backend/internal/auth/domain"
	"github.com/aibuilder/aibuilder-backend/internal/auth/middleware"
	"github.com/aibuilder/aibuilder-backend/internal/auth/service"
	"github.com/aibuilder/aibuilder-backend/internal/auth/session"
	"github.com/aibuilder/aibuilder-backend/internal/storage/memory"
)

type fakeProvider struct {
	lastRedirect string
	exchangeErr  error
	claims       *domain.Claims
}

func (f *fakeProvider) AuthCodeURL(_ context.Context, redirectURL, state string) (string, error) {
	f.lastRedirect = redirectURL
	return "https://idp.example.com/auth?state=" + url.QueryEscape(state), nil
}

func (f *fakeProvider) Exchange(_ context.Context, _ string, code string) (*oauth2.Token, error) {
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	return &oauth2.Token{AccessToken: "at-" + code, RefreshToken: "rt", Expiry: time.Now().Add(time.Hour)}, nil
}

func (f *fakeProvider) UserInfo(context.Context, *oauth2.Token) (*domain.Claims, error) {
	return f.claims, nil
}

func (f *fakeProvider) EndSessionURL(_ context.Context, back string) (string, error) {
	return "https://idp.example.com/logout?post_logout_redirect_uri=" + url.QueryEscape(back), nil
}

type harness struct {
	router   *gin.Engine
	provider *fakeProvider
	sessions *session.MemoryStore
}

func newHarness(t *testing.T, local bool) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.New()
	sessions := session.NewMemoryStore()
	cookies := session.NewCookies("test-secret", time.Hour, false)
	provider := &fakeProvider{claims: &domain.Claims{Sub: "oidc-42", Email: "ada@example.com", FirstName: "Ada"}}

	h := NewHandler(service.NewAuthService(store), Options{
		LocalAuth: local,
		Provider:  provider,
		Sessions:  sessions,
		Cookies:   cookies,
	})
	authn := middleware.NewAuthenticator(middleware.Options{LocalAuth: local, Sessions: sessions, Cookies: cookies})

	r := gin.New()
	h.Register(r.Group("/api"), authn.RequireUser())
	return &harness{router: r, provider: provider, sessions: sessions}
}

func (h *harness) do(method, target string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func TestLocalAuth_RedirectsHome(t *testing.T) {
	h := newHarness(t, true)
	for _, p := range []string{"/api/login", "/api/callback", "/api/logout"} {
		w := h.do(http.MethodGet, p, nil)
		assert.Equal(t, http.StatusFound, w.Code, p)
		assert.Equal(t, "/", w.Header().Get("Location"), p)
	}

	w := h.do(http.MethodGet, "/api/auth/user", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var user domain.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	assert.Equal(t, "local_user_123", user.ID)
	assert.Equal(t, "demo@example.com", *user.Email)
}

func TestLoginFlow(t *testing.T) {
	h := newHarness(t, false)

	w := h.do(http.MethodGet, "/api/auth/user", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	login := h.do(http.MethodGet, "/api/login", nil)
	require.Equal(t, http.StatusFound, login.Code)
	assert.Equal(t, "http://example.com/api/callback", h.provider.lastRedirect)

	loc, err := url.Parse(login.Header().Get("Location"))
	require.NoError(t, err)
	state := loc.Query().Get("state")
	require.NotEmpty(t, state)
	pendingCookies := login.Result().Cookies()

	// a pending session is not a login
	w = h.do(http.MethodGet, "/api/auth/user", pendingCookies)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	cb := h.do(http.MethodGet, "/api/callback?code=abc&state="+url.QueryEscape(state), pendingCookies)
	require.Equal(t, http.StatusFound, cb.Code)
	assert.Equal(t, "/", cb.Header().Get("Location"))
	sessionCookies := cb.Result().Cookies()
	require.Len(t, sessionCookies, 1)
	assert.NotEqual(t, pendingCookies[0].Value, sessionCookies[0].Value)

	// the pre-login id is no longer valid
	w = h.do(http.MethodGet, "/api/auth/user", pendingCookies)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = h.do(http.MethodGet, "/api/auth/user", sessionCookies)
	require.Equal(t, http.StatusOK, w.Code)
	var user domain.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	assert.Equal(t, "oidc-42", user.ID)
	assert.Equal(t, "Ada", *user.FirstName)

	out := h.do(http.MethodGet, "/api/logout", sessionCookies)
	require.Equal(t, http.StatusFound, out.Code)
	assert.Contains(t, out.Header().Get("Location"), "https://idp.example.com/logout")
	assert.Contains(t, out.Header().Get("Location"), url.QueryEscape("http://example.com"))

	w = h.do(http.MethodGet, "/api/auth/user", sessionCookies)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCallback_Failures(t *testing.T) {
	h := newHarness(t, false)

	login := h.do(http.MethodGet, "/api/login", nil)
	cookies := login.Result().Cookies()

	cases := map[string]struct {
		target  string
		cookies []*http.Cookie
	}{
		"no cookie":      {"/api/callback?code=x&state=y", nil},
		"wrong state":    {"/api/callback?code=x&state=forged", cookies},
		"provider error": {"/api/callback?error=access_denied", cookies},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			w := h.do(http.MethodGet, tc.target, tc.cookies)
			assert.Equal(t, http.StatusFound, w.Code)
			assert.Equal(t, "/api/login", w.Header().Get("Location"))
		})
	}

	loc, _ := url.Parse(login.Header().Get("Location"))
	h.provider.exchangeErr = errors.New("invalid_grant")
	w := h.do(http.MethodGet, "/api/callback?code=x&state="+loc.Query().Get("state"), cookies)
	assert.Equal(t, "/api/login", w.Header().Get("Location"))
}

func TestRedirectURL_Override(t *testing.T) {
	h := NewHandler(nil, Options{RedirectURL: "https://app.example.com/api/callback"})
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/api/login", nil)
	assert.Equal(t, "https://app.example.com/api/callback", h.redirectURL(c))

	h = NewHandler(nil, Options{})
	c.Request.Header.Set("X-Forwarded-Proto", "https")
	assert.Equal(t, "https://example.com/api/callback", h.redirectURL(c))
}

func TestSyncUser(t *testing.T) {
	h := newHarness(t, true)

	w := h.do(http.MethodPost, "/api/auth/sync", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var user domain.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	assert.Equal(t, "local_user_123", user.ID)
	assert.Equal(t, "User", *user.LastName)
}
