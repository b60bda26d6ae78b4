package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	authdomain "github.com/aibuilder/aibuilder-backend/internal/auth/domain"
	"github.com/aibuilder/aibuilder-backend/internal/projects/domain"
	"github.com/aibuilder/aibuilder-backend/internal/storage"
)

var _ storage.Storage = (*Store)(nil)

const pqForeignKeyViolation = "23503"

const userColumns = `id, email, first_name, last_name, profile_image_url, created_at, updated_at`

const projectColumns = `id, title, description, user_id, components, html_code, css_code, js_code,
	is_published, created_at, updated_at`

const endpointColumns = `id, project_id, method, path, description, created_at, updated_at`

// Store persists users, projects and endpoints in PostgreSQL.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Store) GetUser(ctx context.Context, id string) (*authdomain.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, authdomain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *Store) UpsertUser(ctx context.Context, in authdomain.UpsertUser) (*authdomain.User, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO users (id, email, first_name, last_name, profile_image_url)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			profile_image_url = EXCLUDED.profile_image_url,
			updated_at = NOW()
		RETURNING `+userColumns,
		in.ID,
		nullIfEmpty(in.Email),
		nullIfEmpty(in.FirstName),
		nullIfEmpty(in.LastName),
		nullIfEmpty(in.ProfileImageURL),
	)
	u, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}
	return u, nil
}

func (s *Store) ListProjects(ctx context.Context, userID string) ([]domain.Project, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+projectColumns+`
		FROM projects
		WHERE user_id = $1
		ORDER BY updated_at DESC, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Project, 0, 16)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return out, nil
}

func (s *Store) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

func (s *Store) CreateProject(ctx context.Context, in domain.NewProject) (*domain.Project, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO projects (id, title, description, user_id, components, html_code, css_code, js_code)
		VALUES ($1, $2, $3, $4, $5::jsonb, $6, $7, $8)
		RETURNING `+projectColumns,
		uuid.NewString(),
		in.Title,
		in.Description,
		in.UserID,
		string(domain.ComponentsOrEmpty(in.Components)),
		in.HTMLCode,
		in.CSSCode,
		in.JSCode,
	)
	p, err := scanProject(row)
	if err != nil {
		var pgErr *pq.Error
		if errors.As(err, &pgErr) && pgErr.Code == pqForeignKeyViolation {
			return nil, domain.ErrOwnerNotFound
		}
		return nil, fmt.Errorf("create project: %w", err)
	}
	return p, nil
}

// UpdateProject applies only the non-nil fields and always bumps updated_at.
func (s *Store) UpdateProject(ctx context.Context, id string, upd domain.ProjectUpdate) (*domain.Project, error) {
	var components sql.NullString
	if upd.Components != nil {
		components = sql.NullString{String: string(domain.ComponentsOrEmpty(upd.Components)), Valid: true}
	}

	row := s.db.QueryRowContext(ctx, `
		UPDATE projects SET
			title = COALESCE($2, title),
			description = COALESCE($3, description),
			components = COALESCE($4::jsonb, components),
			html_code = COALESCE($5, html_code),
			css_code = COALESCE($6, css_code),
			js_code = COALESCE($7, js_code),
			updated_at = NOW()
		WHERE id = $1
		RETURNING `+projectColumns,
		id,
		nullString(upd.Title),
		nullString(upd.Description),
		components,
		nullString(upd.HTMLCode),
		nullString(upd.CSSCode),
		nullString(upd.JSCode),
	)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	return p, nil
}

func (s *Store) SetPublished(ctx context.Context, id string, published bool) (*domain.Project, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE projects SET is_published = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+projectColumns, id, published)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("set published: %w", err)
	}
	return p, nil
}

// DeleteProject relies on ON DELETE CASCADE to drop the project's endpoints.
func (s *Store) DeleteProject(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return requireAffected(res)
}

func (s *Store) ListEndpoints(ctx context.Context, projectID string) ([]domain.APIEndpoint, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+endpointColumns+`
		FROM api_endpoints
		WHERE project_id = $1
		ORDER BY created_at DESC, id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list endpoints: %w", err)
	}
	defer rows.Close()

	out := make([]domain.APIEndpoint, 0, 8)
	for rows.Next() {
		e, err := scanEndpoint(rows)
		if err != nil {
			return nil, fmt.Errorf("scan endpoint: %w", err)
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list endpoints: %w", err)
	}
	return out, nil
}

func (s *Store) GetEndpoint(ctx context.Context, id string) (*domain.APIEndpoint, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+endpointColumns+` FROM api_endpoints WHERE id = $1`, id)
	e, err := scanEndpoint(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get endpoint: %w", err)
	}
	return e, nil
}

func (s *Store) CreateEndpoint(ctx context.Context, in domain.NewAPIEndpoint) (*domain.APIEndpoint, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO api_endpoints (id, project_id, method, path, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+endpointColumns,
		uuid.NewString(),
		in.ProjectID,
		in.Method,
		in.Path,
		in.Description,
	)
	e, err := scanEndpoint(row)
	if err != nil {
		var pgErr *pq.Error
		if errors.As(err, &pgErr) && pgErr.Code == pqForeignKeyViolation {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("create endpoint: %w", err)
	}
	return e, nil
}

func (s *Store) UpdateEndpoint(ctx context.Context, id string, upd domain.APIEndpointUpdate) (*domain.APIEndpoint, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE api_endpoints SET
			method = COALESCE($2, method),
			path = COALESCE($3, path),
			description = COALESCE($4, description),
			updated_at = NOW()
		WHERE id = $1
		RETURNING `+endpointColumns,
		id,
		nullString(upd.Method),
		nullString(upd.Path),
		nullString(upd.Description),
	)
	e, err := scanEndpoint(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update endpoint: %w", err)
	}
	return e, nil
}

func (s *Store) DeleteEndpoint(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM api_endpoints WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete endpoint: %w", err)
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanUser(row rowScanner) (*authdomain.User, error) {
	var (
		u                                 authdomain.User
		email, first, last, profileImage sql.NullString
	)
	if err := row.Scan(&u.ID, &email, &first, &last, &profileImage, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Email = fromNull(email)
	u.FirstName = fromNull(first)
	u.LastName = fromNull(last)
	u.ProfileImageURL = fromNull(profileImage)
	return &u, nil
}

func scanProject(row rowScanner) (*domain.Project, error) {
	var (
		p          domain.Project
		components []byte
	)
	err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Description,
		&p.UserID,
		&components,
		&p.HTMLCode,
		&p.CSSCode,
		&p.JSCode,
		&p.IsPublished,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Components = domain.ComponentsOrEmpty(components)
	return &p, nil
}

func scanEndpoint(row rowScanner) (*domain.APIEndpoint, error) {
	var e domain.APIEndpoint
	err := row.Scan(&e.ID, &e.ProjectID, &e.Method, &e.Path, &e.Description, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func fromNull(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
