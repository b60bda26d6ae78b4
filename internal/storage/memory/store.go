// Package memory is the mock store used when no database is configured.
// Everything lives in process memory and is lost on restart.
package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	authdomain "github.com/aibuilder/aibuilder-backend/internal/auth/domain"
	"github.com/aibuilder/aibuilder-backend/internal/projects/domain"
	"github.com/aibuilder/aibuilder-backend/internal/storage"
)

var _ storage.Storage = (*Store)(nil)

type Store struct {
	mu        sync.RWMutex
	users     map[string]authdomain.User
	projects  map[string]domain.Project
	endpoints map[string]domain.APIEndpoint

	now   func() time.Time
	newID func() string
}

type Option func(*Store)

// WithClock overrides the time source, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New returns a store seeded with the local demo user.
func New(opts ...Option) *Store {
	s := &Store{
		users:     make(map[string]authdomain.User),
		projects:  make(map[string]domain.Project),
		endpoints: make(map[string]domain.APIEndpoint),
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}

	demo := authdomain.DemoClaims
	now := s.now()
	s.users[demo.Sub] = authdomain.User{
		ID:        demo.Sub,
		Email:     authdomain.NullableString(demo.Email),
		FirstName: authdomain.NullableString(demo.FirstName),
		LastName:  authdomain.NullableString(demo.LastName),
		CreatedAt: now,
		UpdatedAt: now,
	}
	return s
}

func (s *Store) GetUser(_ context.Context, id string) (*authdomain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, authdomain.ErrUserNotFound
	}
	return &u, nil
}

func (s *Store) UpsertUser(_ context.Context, in authdomain.UpsertUser) (*authdomain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	u := authdomain.User{
		ID:              in.ID,
		Email:           authdomain.NullableString(in.Email),
		FirstName:       authdomain.NullableString(in.FirstName),
		LastName:        authdomain.NullableString(in.LastName),
		ProfileImageURL: authdomain.NullableString(in.ProfileImageURL),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if existing, ok := s.users[in.ID]; ok {
		u.CreatedAt = existing.CreatedAt
	}
	s.users[in.ID] = u
	return &u, nil
}

// ListProjects returns the user's projects, most recently updated first.
func (s *Store) ListProjects(_ context.Context, userID string) ([]domain.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Project, 0, 16)
	for _, p := range s.projects {
		if p.UserID == userID {
			out = append(out, cloneProject(p))
		}
	}
	slices.SortFunc(out, func(a, b domain.Project) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (s *Store) GetProject(_ context.Context, id string) (*domain.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.projects[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	p = cloneProject(p)
	return &p, nil
}

func (s *Store) CreateProject(_ context.Context, in domain.NewProject) (*domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	p := domain.Project{
		ID:          s.newID(),
		Title:       in.Title,
		Description: in.Description,
		UserID:      in.UserID,
		Components:  domain.ComponentsOrEmpty(in.Components),
		HTMLCode:    in.HTMLCode,
		CSSCode:     in.CSSCode,
		JSCode:      in.JSCode,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.projects[p.ID] = p
	out := cloneProject(p)
	return &out, nil
}

func (s *Store) UpdateProject(_ context.Context, id string, upd domain.ProjectUpdate) (*domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.projects[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if upd.Title != nil {
		p.Title = *upd.Title
	}
	if upd.Description != nil {
		p.Description = *upd.Description
	}
	if upd.Components != nil {
		p.Components = domain.ComponentsOrEmpty(upd.Components)
	}
	if upd.HTMLCode != nil {
		p.HTMLCode = *upd.HTMLCode
	}
	if upd.CSSCode != nil {
		p.CSSCode = *upd.CSSCode
	}
	if upd.JSCode != nil {
		p.JSCode = *upd.JSCode
	}
	p.UpdatedAt = s.now()
	s.projects[id] = p

	out := cloneProject(p)
	return &out, nil
}

func (s *Store) SetPublished(_ context.Context, id string, published bool) (*domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.projects[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	p.IsPublished = published
	p.UpdatedAt = s.now()
	s.projects[id] = p

	out := cloneProject(p)
	return &out, nil
}

// DeleteProject removes the project and its endpoints.
func (s *Store) DeleteProject(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.projects[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.projects, id)
	for eid, e := range s.endpoints {
		if e.ProjectID == id {
			delete(s.endpoints, eid)
		}
	}
	return nil
}

// ListEndpoints returns a project's endpoints, newest first.
func (s *Store) ListEndpoints(_ context.Context, projectID string) ([]domain.APIEndpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.APIEndpoint, 0, 8)
	for _, e := range s.endpoints {
		if e.ProjectID == projectID {
			out = append(out, e)
		}
	}
	slices.SortFunc(out, func(a, b domain.APIEndpoint) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (s *Store) GetEndpoint(_ context.Context, id string) (*domain.APIEndpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.endpoints[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &e, nil
}

func (s *Store) CreateEndpoint(_ context.Context, in domain.NewAPIEndpoint) (*domain.APIEndpoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.projects[in.ProjectID]; !ok {
		return nil, domain.ErrNotFound
	}

	now := s.now()
	e := domain.APIEndpoint{
		ID:          s.newID(),
		ProjectID:   in.ProjectID,
		Method:      in.Method,
		Path:        in.Path,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.endpoints[e.ID] = e
	return &e, nil
}

func (s *Store) UpdateEndpoint(_ context.Context, id string, upd domain.APIEndpointUpdate) (*domain.APIEndpoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.endpoints[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if upd.Method != nil {
		e.Method = *upd.Method
	}
	if upd.Path != nil {
		e.Path = *upd.Path
	}
	if upd.Description != nil {
		e.Description = *upd.Description
	}
	e.UpdatedAt = s.now()
	s.endpoints[id] = e
	return &e, nil
}

func (s *Store) DeleteEndpoint(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.endpoints[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.endpoints, id)
	return nil
}

func cloneProject(p domain.Project) domain.Project {
	p.Components = slices.Clone(p.Components)
	return p
}
