package database

import (
	"database/sql"
	"embed"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"

	"github.com/elibrary/backend/internal/config"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// RunMigrations applies embedded goose migrations. A separate database/sql
// connection is used because goose does not speak the pgx pool interface.
func RunMigrations(cfg *config.DatabaseConfig, logger *slog.Logger) error {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return fmt.Errorf("unable to open migration connection: %w", err)
	}
	defer db.Close()

	version, err := Migrate(db)
	if err != nil {
		return err
	}

	logger.Info("database migrations applied", slog.Int64("version", version))
	return nil
}

// Migrate applies the embedded migrations over an open connection and
// returns the resulting schema version.
func Migrate(db *sql.DB) (int64, error) {
	goose.SetBaseFS(migrationsFS)

	if err := goose.SetDialect("postgres"); err != nil {
		return 0, fmt.Errorf("unable to set goose dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return 0, fmt.Errorf("migrations failed: %w", err)
	}

	version, err := goose.GetDBVersion(db)
	if err != nil {
		return 0, fmt.Errorf("unable to read migration version: %w", err)
	}

	return version, nil
}
