package bootstrap

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/aibuilder/aibuilder-backend/config"
	authdomain "github.com/aibuilder/aibuilder-backend/internal/auth/domain"
	"github.com/aibuilder/aibuilder-backend/internal/storage"
	"github.com/aibuilder/aibuilder-backend/internal/storage/memory"
	"github.com/aibuilder/aibuilder-backend/internal/storage/postgres"
)

// Storage is the selected store plus the connections backing it.
// Pool and DB are nil for the in-memory store.
type Storage struct {
	storage.Storage
	Pool *pgxpool.Pool
	DB   *sql.DB
}

func (s *Storage) Close() {
	if s.DB != nil {
		_ = s.DB.Close()
	}
	if s.Pool != nil {
		s.Pool.Close()
	}
}

// UsePostgres applies the selection rule: an explicit STORAGE_DRIVER wins,
// otherwise Postgres whenever a database is configured outside development.
func UsePostgres(cfg *config.Config) bool {
	switch cfg.Database.Driver {
	case "postgres":
		return true
	case "memory":
		return false
	default:
		return cfg.Database.Configured() && !cfg.IsDevelopment()
	}
}

// OpenStorage connects the selected store. When Postgres was picked
// automatically and cannot be reached, it falls back to memory.
func OpenStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Storage, error) {
	if !UsePostgres(cfg) {
		log.Info("using in-memory storage")
		return &Storage{Storage: memory.New()}, nil
	}

	st, err := openPostgres(ctx, cfg)
	if err != nil {
		if cfg.Database.Driver == "postgres" {
			return nil, err
		}
		log.Warn("postgres unavailable, falling back to in-memory storage", zap.Error(err))
		return &Storage{Storage: memory.New()}, nil
	}

	if cfg.LocalAuth() {
		if _, err := st.UpsertUser(ctx, authdomain.DemoClaims.Upsert()); err != nil {
			st.Close()
			return nil, fmt.Errorf("seed demo user: %w", err)
		}
	}

	log.Info("using postgres storage")
	return st, nil
}

func openPostgres(ctx context.Context, cfg *config.Config) (*Storage, error) {
	pool, err := OpenDB(ctx, DBOptions{DSN: postgres.DSN(&cfg.Database)})
	if err != nil {
		return nil, err
	}
	if err := Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	db, err := postgres.NewConnection(ctx, &cfg.Database)
	if err != nil {
		pool.Close()
		return nil, err
	}

	return &Storage{Storage: postgres.NewStore(db), Pool: pool, DB: db}, nil
}
