package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"uredno/internal/storage/migrations"
)

// migrationsDir is the root of the embedded migrations FS.
const migrationsDir = "."

type gooseCommand func(ctx context.Context, db *sql.DB) error

// RunMigrations applies every pending migration.
func RunMigrations(ctx context.Context, db *sql.DB, logger *zap.Logger) error {
	return migrate(ctx, db, logger, "up", func(ctx context.Context, db *sql.DB) error {
		return goose.UpContext(ctx, db, migrationsDir)
	})
}

// RollbackMigration reverts the latest applied migration.
func RollbackMigration(ctx context.Context, db *sql.DB, logger *zap.Logger) error {
	return migrate(ctx, db, logger, "down", func(ctx context.Context, db *sql.DB) error {
		return goose.DownContext(ctx, db, migrationsDir)
	})
}

// MigrationStatus prints the state of every migration to stdout.
func MigrationStatus(ctx context.Context, db *sql.DB, logger *zap.Logger) error {
	return migrate(ctx, db, logger, "status", func(ctx context.Context, db *sql.DB) error {
		return goose.StatusContext(ctx, db, migrationsDir)
	})
}

func migrate(ctx context.Context, db *sql.DB, logger *zap.Logger, name string, run gooseCommand) error {
	const operation = "storage.migrate"

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("%s %s: %w", operation, name, err)
	}

	logger.Info("Migrating schema", zap.String("command", name))
	if err := run(ctx, db); err != nil {
		return fmt.Errorf("%s %s: %w", operation, name, err)
	}
	logger.Info("Schema migration finished", zap.String("command", name))
	return nil
}
