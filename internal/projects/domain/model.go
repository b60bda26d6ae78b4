package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("access denied")

	// ErrEndpointNotFound also matches ErrNotFound.
	ErrEndpointNotFound = fmt.Errorf("endpoint %w", ErrNotFound)

	// ErrOwnerNotFound means the project's user has no user record yet.
	ErrOwnerNotFound = errors.New("project owner not found")
)

// Field limits shared by request validation and generated content.
const (
	MaxTitleLength       = 255
	MaxDescriptionLength = 2000
)

// OwnerNotSyncedMessage is returned when a caller creates a project before
// their user record exists.
const OwnerNotSyncedMessage = "User record not found. Call POST /api/auth/sync first"

// Project is one user-generated website together with its generated source.
// It is storage-agnostic and shared by the store, service and HTTP layers.
type Project struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	UserID      string          `json:"userId"`
	Components  json.RawMessage `json:"components"`
	HTMLCode    string          `json:"htmlCode"`
	CSSCode     string          `json:"cssCode"`
	JSCode      string          `json:"jsCode"`
	IsPublished bool            `json:"isPublished"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// NewProject carries the insertable fields of a project.
type NewProject struct {
	Title       string
	Description string
	UserID      string
	Components  json.RawMessage
	HTMLCode    string
	CSSCode     string
	JSCode      string
}

// ProjectUpdate is a partial update; nil fields are left unchanged.
type ProjectUpdate struct {
	Title       *string
	Description *string
	Components  json.RawMessage
	HTMLCode    *string
	CSSCode     *string
	JSCode      *string
}

// APIEndpoint is descriptive metadata attached to a project. It has no runtime effect.
type APIEndpoint struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"projectId"`
	Method      string    `json:"method"`
	Path        string    `json:"path"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type NewAPIEndpoint struct {
	ProjectID   string
	Method      string
	Path        string
	Description string
}

type APIEndpointUpdate struct {
	Method      *string
	Path        *string
	Description *string
}

// EmptyComponents is stored when a project is created without components.
var EmptyComponents = json.RawMessage("[]")

// ComponentsOrEmpty never returns a nil slice so the JSON field is always an array.
func ComponentsOrEmpty(c json.RawMessage) json.RawMessage {
	if len(c) == 0 || string(c) == "null" {
		return append(json.RawMessage(nil), EmptyComponents...)
	}
	return append(json.RawMessage(nil), c...)
}
