package postgres

import (
	"fmt"

	"github.com/aibuilder/aibuilder-backend/config"
)

// DSN prefers DATABASE_URL and otherwise builds a key/value string from the DB_* settings.
func DSN(cfg *config.DatabaseConfig) string {
	if cfg.URL != "" {
		return cfg.URL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name,
	)
}
