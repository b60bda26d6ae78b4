package domain

import (
	"errors"
	"strings"
	"time"
)

var ErrUserNotFound = errors.New("user not found")

// User mirrors the identity provider's claims for a signed-in person.
type User struct {
	ID              string    `json:"id"`
	Email           *string   `json:"email"`
	FirstName       *string   `json:"firstName"`
	LastName        *string   `json:"lastName"`
	ProfileImageURL *string   `json:"profileImageUrl"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// UpsertUser represents the data needed to create or refresh a user.
// Empty strings are stored as NULL.
type UpsertUser struct {
	ID              string
	Email           string
	FirstName       string
	LastName        string
	ProfileImageURL string
}

// Claims is the subset of identity claims the application relies on.
type Claims struct {
	Sub             string `json:"sub"`
	Email           string `json:"email,omitempty"`
	FirstName       string `json:"first_name,omitempty"`
	LastName        string `json:"last_name,omitempty"`
	ProfileImageURL string `json:"profile_image_url,omitempty"`
}

// DemoClaims identify the user every request runs as in local development.
var DemoClaims = Claims{
	Sub:       "local_user_123",
	Email:     "demo@example.com",
	FirstName: "Demo",
	LastName:  "User",
}

func (c Claims) Upsert() UpsertUser {
	return UpsertUser{
		ID:              c.Sub,
		Email:           c.Email,
		FirstName:       c.FirstName,
		LastName:        c.LastName,
		ProfileImageURL: c.ProfileImageURL,
	}
}

// SplitName fills first/last name from a display name when the provider only sends "name".
func (c *Claims) SplitName(name string) {
	name = strings.TrimSpace(name)
	if name == "" || c.FirstName != "" || c.LastName != "" {
		return
	}
	first, last, _ := strings.Cut(name, " ")
	c.FirstName = first
	c.LastName = strings.TrimSpace(last)
}

func NullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
