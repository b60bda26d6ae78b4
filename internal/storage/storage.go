// Package storage defines the persistence contract shared by the Postgres and
// in-memory stores. Implementations return domain.ErrNotFound for missing
// projects and endpoints and authdomain.ErrUserNotFound for missing users.
package storage

import (
	"context"

	authdomain "github.com/aibuilder/aibuilder-backend/internal/auth/domain"
	"github.com/aibuilder/aibuilder-backend/internal/projects/domain"
)

type UserStore interface {
	GetUser(ctx context.Context, id string) (*authdomain.User, error)
	UpsertUser(ctx context.Context, u authdomain.UpsertUser) (*authdomain.User, error)
}

type ProjectStore interface {
	ListProjects(ctx context.Context, userID string) ([]domain.Project, error)
	GetProject(ctx context.Context, id string) (*domain.Project, error)
	CreateProject(ctx context.Context, p domain.NewProject) (*domain.Project, error)
	UpdateProject(ctx context.Context, id string, upd domain.ProjectUpdate) (*domain.Project, error)
	SetPublished(ctx context.Context, id string, published bool) (*domain.Project, error)
	DeleteProject(ctx context.Context, id string) error
}

type EndpointStore interface {
	ListEndpoints(ctx context.Context, projectID string) ([]domain.APIEndpoint, error)
	GetEndpoint(ctx context.Context, id string) (*domain.APIEndpoint, error)
	CreateEndpoint(ctx context.Context, e domain.NewAPIEndpoint) (*domain.APIEndpoint, error)
	UpdateEndpoint(ctx context.Context, id string, upd domain.APIEndpointUpdate) (*domain.APIEndpoint, error)
	DeleteEndpoint(ctx context.Context, id string) error
}

// Storage is everything the application persists.
type Storage interface {
	UserStore
	ProjectStore
	EndpointStore
}
