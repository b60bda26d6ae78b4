package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aibuilder/aibuilder-backend/config"
	authdomain "github.com/aibuilder/aibuilder-backend/internal/auth/domain"
	"github.com/aibuilder/aibuilder-backend/internal/projects/domain"
)

var (
	projectRowColumns  = []string{"id", "title", "description", "user_id", "components", "html_code", "css_code", "js_code", "is_published", "created_at", "updated_at"}
	endpointRowColumns = []string{"id", "project_id", "method", "path", "description", "created_at", "updated_at"}
)

func setupStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(db), mock
}

func TestStore_GetUser(t *testing.T) {
	store, mock := setupStore(t)
	now := time.Now()

	t.Run("maps NULL columns to nil", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .* FROM users WHERE id = \$1`).
			WithArgs("u1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "email", "first_name", "last_name", "profile_image_url", "created_at", "updated_at"}).
				AddRow("u1", "a@example.com", nil, nil, nil, now, now))

		u, err := store.GetUser(context.Background(), "u1")
		require.NoError(t, err)
		require.NotNil(t, u.Email)
		assert.Equal(t, "a@example.com", *u.Email)
		assert.Nil(t, u.FirstName)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing user", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .* FROM users`).
			WithArgs("ghost").
			WillReturnError(sql.ErrNoRows)

		_, err := store.GetUser(context.Background(), "ghost")
		assert.ErrorIs(t, err, authdomain.ErrUserNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestStore_UpsertUser(t *testing.T) {
	store, mock := setupStore(t)
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO users .* ON CONFLICT \(id\) DO UPDATE`).
		WithArgs("u1", "a@example.com", "Ada", nil, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "first_name", "last_name", "profile_image_url", "created_at", "updated_at"}).
			AddRow("u1", "a@example.com", "Ada", nil, nil, now, now))

	u, err := store.UpsertUser(context.Background(), authdomain.UpsertUser{ID: "u1", Email: "a@example.com", FirstName: "Ada"})
	require.NoError(t, err)
	assert.Equal(t, "Ada", *u.FirstName)
	assert.Nil(t, u.LastName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_ListProjects(t *testing.T) {
	store, mock := setupStore(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT .* FROM projects\s+WHERE user_id = \$1\s+ORDER BY updated_at DESC`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(projectRowColumns).
			AddRow("p2", "Second", "", "u1", `[{"type":"hero"}]`, "<h1>", "", "", true, now, now).
			AddRow("p1", "First", "", "u1", nil, "", "", "", false, now, now.Add(-time.Hour)))

	list, err := store.ListProjects(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "p2", list[0].ID)
	assert.True(t, list[0].IsPublished)
	assert.JSONEq(t, `[{"type":"hero"}]`, string(list[0].Components))
	assert.JSONEq(t, `[]`, string(list[1].Components))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_CreateProject(t *testing.T) {
	store, mock := setupStore(t)
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO projects`).
		WithArgs(sqlmock.AnyArg(), "Site", "desc", "u1", "[]", "<p>hi</p>", "", "").
		WillReturnRows(sqlmock.NewRows(projectRowColumns).
			AddRow("p1", "Site", "desc", "u1", "[]", "<p>hi</p>", "", "", false, now, now))

	p, err := store.CreateProject(context.Background(), domain.NewProject{
		Title:       "Site",
		Description: "desc",
		UserID:      "u1",
		HTMLCode:    "<p>hi</p>",
	})
	require.NoError(t, err)
	assert.Equal(t, "p1", p.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_CreateProject_UnknownOwner(t *testing.T) {
	store, mock := setupStore(t)

	mock.ExpectQuery(`INSERT INTO projects`).
		WillReturnError(&pq.Error{Code: pqForeignKeyViolation})

	_, err := store.CreateProject(context.Background(), domain.NewProject{Title: "Site", UserID: "firebase-only"})
	assert.ErrorIs(t, err, domain.ErrOwnerNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_UpdateProject(t *testing.T) {
	store, mock := setupStore(t)
	now := time.Now()
	title := "Renamed"

	t.Run("partial update", func(t *testing.T) {
		mock.ExpectQuery(`UPDATE projects SET\s+title = COALESCE\(\$2, title\)`).
			WithArgs("p1", "Renamed", nil, `[{"a":1}]`, nil, nil, nil).
			WillReturnRows(sqlmock.NewRows(projectRowColumns).
				AddRow("p1", "Renamed", "", "u1", `[{"a":1}]`, "", "", "", false, now, now))

		p, err := store.UpdateProject(context.Background(), "p1", domain.ProjectUpdate{
			Title:      &title,
			Components: json.RawMessage(`[{"a":1}]`),
		})
		require.NoError(t, err)
		assert.Equal(t, "Renamed", p.Title)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing project", func(t *testing.T) {
		mock.ExpectQuery(`UPDATE projects`).WillReturnError(sql.ErrNoRows)

		_, err := store.UpdateProject(context.Background(), "ghost", domain.ProjectUpdate{Title: &title})
		assert.ErrorIs(t, err, domain.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestStore_DeleteProject(t *testing.T) {
	store, mock := setupStore(t)

	mock.ExpectExec(`DELETE FROM projects WHERE id = \$1`).
		WithArgs("p1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, store.DeleteProject(context.Background(), "p1"))

	mock.ExpectExec(`DELETE FROM projects`).
		WithArgs("ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, store.DeleteProject(context.Background(), "ghost"), domain.ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_CreateEndpoint(t *testing.T) {
	store, mock := setupStore(t)
	now := time.Now()

	t.Run("creates endpoint", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO api_endpoints`).
			WithArgs(sqlmock.AnyArg(), "p1", "GET", "/users", "").
			WillReturnRows(sqlmock.NewRows(endpointRowColumns).
				AddRow("e1", "p1", "GET", "/users", "", now, now))

		e, err := store.CreateEndpoint(context.Background(), domain.NewAPIEndpoint{ProjectID: "p1", Method: "GET", Path: "/users"})
		require.NoError(t, err)
		assert.Equal(t, "e1", e.ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown project maps to not found", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO api_endpoints`).
			WillReturnError(&pq.Error{Code: pqForeignKeyViolation})

		_, err := store.CreateEndpoint(context.Background(), domain.NewAPIEndpoint{ProjectID: "ghost", Method: "GET", Path: "/"})
		assert.ErrorIs(t, err, domain.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestStore_ListEndpoints(t *testing.T) {
	store, mock := setupStore(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT .* FROM api_endpoints\s+WHERE project_id = \$1\s+ORDER BY created_at DESC`).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows(endpointRowColumns).
			AddRow("e2", "p1", "POST", "/users", "create", now, now).
			AddRow("e1", "p1", "GET", "/users", "list", now.Add(-time.Minute), now))

	list, err := store.ListEndpoints(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "e2", list[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_UpdateAndDeleteEndpoint(t *testing.T) {
	store, mock := setupStore(t)
	now := time.Now()
	path := "/people"

	mock.ExpectQuery(`UPDATE api_endpoints SET`).
		WithArgs("e1", nil, "/people", nil).
		WillReturnRows(sqlmock.NewRows(endpointRowColumns).
			AddRow("e1", "p1", "GET", "/people", "", now, now))

	e, err := store.UpdateEndpoint(context.Background(), "e1", domain.APIEndpointUpdate{Path: &path})
	require.NoError(t, err)
	assert.Equal(t, "/people", e.Path)

	mock.ExpectExec(`DELETE FROM api_endpoints WHERE id = \$1`).
		WithArgs("e1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, store.DeleteEndpoint(context.Background(), "e1"))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDSN(t *testing.T) {
	assert.Equal(t, "postgres://u:p@db:5432/app", DSN(&config.DatabaseConfig{URL: "postgres://u:p@db:5432/app"}))
	assert.Equal(t,
		"host=db port=5432 user=u password=p dbname=app sslmode=disable",
		DSN(&config.DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "app"}),
	)
}
