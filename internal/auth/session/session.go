// Package session keeps server-side login state keyed by an opaque id that
// travels in a signed cookie.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/aibuilder/aibuilder-backend/internal/auth/domain"
)

var ErrNotFound = errors.New("session not found")

// Session is either pending (State set, waiting for the provider callback)
// or authenticated (Claims set).
type Session struct {
	State        string         `json:"state,omitempty"`
	Claims       *domain.Claims `json:"claims,omitempty"`
	AccessToken  string         `json:"access_token,omitempty"`
	RefreshToken string         `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time      `json:"expires_at,omitempty"`
}

func (s *Session) Authenticated() bool {
	return s != nil && s.Claims != nil && s.Claims.Sub != ""
}

// Expired reports whether the access token is past its expiry.
// A session without an expiry counts as expired.
func (s *Session) Expired(now time.Time) bool {
	return s.ExpiresAt.IsZero() || !now.Before(s.ExpiresAt)
}

type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, id string, s *Session, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}
