package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/udisondev/turnbattle/internal/db/migrations"
)

// RunMigrations runs goose migrations on the given PostgreSQL DSN.
func RunMigrations(ctx context.Context, dsn string) error {
	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("opening sql connection for migrations: %w", err)
	}
	defer sqlDB.Close()

	return Migrate(ctx, sqlDB, "postgres", migrations.PostgresDir)
}

// Migrate applies the embedded migrations in dir using the goose dialect.
func Migrate(ctx context.Context, sqlDB *sql.DB, dialect, dir string) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, sqlDB, dir); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}
