package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/aibuilder/aibuilder-backend/internal/preview"
	"github.com/aibuilder/aibuilder-backend/internal/projects/domain"
	"github.com/aibuilder/aibuilder-backend/internal/publish"
	"github.com/aibuilder/aibuilder-backend/internal/storage"
)

// ProjectService enforces project ownership on top of the store.
// Every method that takes a project id returns domain.ErrNotFound when it is
// missing and domain.ErrForbidden when it belongs to another user.
type ProjectService struct {
	projects  storage.ProjectStore
	endpoints storage.EndpointStore
	publisher publish.Publisher
	log       *zap.Logger
}

func NewProjectService(projects storage.ProjectStore, endpoints storage.EndpointStore, publisher publish.Publisher, log *zap.Logger) *ProjectService {
	return &ProjectService{
		projects:  projects,
		endpoints: endpoints,
		publisher: publisher,
		log:       log,
	}
}

// List returns the user's projects, most recently updated first.
func (s *ProjectService) List(ctx context.Context, userID string) ([]domain.Project, error) {
	return s.projects.ListProjects(ctx, userID)
}

// Get returns a project owned by userID.
func (s *ProjectService) Get(ctx context.Context, userID, id string) (*domain.Project, error) {
	p, err := s.projects.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return p, nil
}

func (s *ProjectService) Create(ctx context.Context, in domain.NewProject) (*domain.Project, error) {
	p, err := s.projects.CreateProject(ctx, in)
	if err != nil {
		return nil, err
	}
	s.log.Info("project created", zap.String("project_id", p.ID), zap.String("user_id", p.UserID))
	return p, nil
}

func (s *ProjectService) Update(ctx context.Context, userID, id string, upd domain.ProjectUpdate) (*domain.Project, error) {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return nil, err
	}
	return s.projects.UpdateProject(ctx, id, upd)
}

func (s *ProjectService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	if err := s.projects.DeleteProject(ctx, id); err != nil {
		return err
	}
	s.log.Info("project deleted", zap.String("project_id", id), zap.String("user_id", userID))
	return nil
}

// Publish renders the project page, hands it to the publisher and marks
// the project published. It returns the updated project and its public URL.
func (s *ProjectService) Publish(ctx context.Context, userID, id string) (*domain.Project, string, error) {
	p, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, "", err
	}

	page, err := preview.Render(p)
	if err != nil {
		return nil, "", err
	}

	url, err := s.publisher.Publish(ctx, p.ID, page)
	if err != nil {
		return nil, "", fmt.Errorf("publish project %s: %w", p.ID, err)
	}

	p, err = s.projects.SetPublished(ctx, p.ID, true)
	if err != nil {
		return nil, "", err
	}
	return p, url, nil
}

func (s *ProjectService) ListEndpoints(ctx context.Context, userID, projectID string) ([]domain.APIEndpoint, error) {
	if _, err := s.Get(ctx, userID, projectID); err != nil {
		return nil, err
	}
	return s.endpoints.ListEndpoints(ctx, projectID)
}

func (s *ProjectService) CreateEndpoint(ctx context.Context, userID string, in domain.NewAPIEndpoint) (*domain.APIEndpoint, error) {
	if _, err := s.Get(ctx, userID, in.ProjectID); err != nil {
		return nil, err
	}
	return s.endpoints.CreateEndpoint(ctx, in)
}

func (s *ProjectService) UpdateEndpoint(ctx context.Context, userID, projectID, endpointID string, upd domain.APIEndpointUpdate) (*domain.APIEndpoint, error) {
	if err := s.ownEndpoint(ctx, userID, projectID, endpointID); err != nil {
		return nil, err
	}
	return s.endpoints.UpdateEndpoint(ctx, endpointID, upd)
}

func (s *ProjectService) DeleteEndpoint(ctx context.Context, userID, projectID, endpointID string) error {
	if err := s.ownEndpoint(ctx, userID, projectID, endpointID); err != nil {
		return err
	}
	return s.endpoints.DeleteEndpoint(ctx, endpointID)
}

// ownEndpoint treats an endpoint under a different project as missing.
func (s *ProjectService) ownEndpoint(ctx context.Context, userID, projectID, endpointID string) error {
	if _, err := s.Get(ctx, userID, projectID); err != nil {
		return err
	}
	e, err := s.endpoints.GetEndpoint(ctx, endpointID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrEndpointNotFound
	}
	if err != nil {
		return err
	}
	if e.ProjectID != projectID {
		return domain.ErrEndpointNotFound
	}
	return nil
}
