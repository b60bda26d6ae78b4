package session

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
)

const CookieName = "aibuilder.sid"

// Cookies signs session ids so a client cannot pick someone else's id.
type Cookies struct {
	codec  *securecookie.SecureCookie
	ttl    time.Duration
	secure bool
}

func NewCookies(secret string, ttl time.Duration, secure bool) *Cookies {
	codec := securecookie.New([]byte(secret), nil)
	codec.MaxAge(int(ttl.Seconds()))
	return &Cookies{codec: codec, ttl: ttl, secure: secure}
}

func NewID() string {
	return uuid.NewString()
}

func (c *Cookies) TTL() time.Duration { return c.ttl }

// Encode signs id into a cookie value.
func (c *Cookies) Encode(id string) (string, error) {
	value, err := c.codec.Encode(CookieName, id)
	if err != nil {
		return "", fmt.Errorf("encode session cookie: %w", err)
	}
	return value, nil
}

// Verify returns the session id carried by a signed cookie value.
func (c *Cookies) Verify(value string) (string, bool) {
	var id string
	if err := c.codec.Decode(CookieName, value, &id); err != nil || id == "" {
		return "", false
	}
	return id, true
}

func (c *Cookies) Set(ctx *gin.Context, id string) error {
	value, err := c.Encode(id)
	if err != nil {
		return err
	}
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(CookieName, value, int(c.ttl.Seconds()), "/", "", c.secure, true)
	return nil
}

// Read returns the verified session id from the request, if any.
func (c *Cookies) Read(ctx *gin.Context) (string, bool) {
	value, err := ctx.Cookie(CookieName)
	if err != nil || value == "" {
		return "", false
	}
	return c.Verify(value)
}

func (c *Cookies) Clear(ctx *gin.Context) {
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(CookieName, "", -1, "/", "", c.secure, true)
}
