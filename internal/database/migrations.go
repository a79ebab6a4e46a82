package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/chybatronik/goUsersTable/internal/database/migrations"
	"github.com/chybatronik/goUsersTable/internal/logging"
)

// seams for testing goose
var (
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return goose.UpContext(ctx, db, dir, opts...)
	}
	gooseDownContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return goose.DownContext(ctx, db, dir, opts...)
	}
	gooseStatusContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return goose.StatusContext(ctx, db, dir, opts...)
	}
	gooseVersionContext = func(ctx context.Context, db *sql.DB) (int64, error) {
		return goose.GetDBVersionContext(ctx, db)
	}
)

// Migrator applies the embedded snapshot schema migrations
type Migrator struct {
	db     *sql.DB
	logger *logging.Logger
}

// NewMigrator creates a migrator for db. goose output goes through logger.
func NewMigrator(db *sql.DB, logger *logging.Logger) (*Migrator, error) {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(gooseLogger{logger: logger})
	if err := goose.SetDialect("pgx"); err != nil {
		return nil, fmt.Errorf("failed to set migration dialect: %w", err)
	}
	return &Migrator{db: db, logger: logger}, nil
}

// Up applies every pending migration
func (m *Migrator) Up(ctx context.Context) error {
	m.logger.Database("applying migrations")
	if err := gooseUpContext(ctx, m.db, "."); err != nil {
		m.logger.DatabaseError("migration failed", err)
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// Down rolls back the most recent migration
func (m *Migrator) Down(ctx context.Context) error {
	m.logger.Database("rolling back last migration")
	if err := gooseDownContext(ctx, m.db, "."); err != nil {
		m.logger.DatabaseError("rollback failed", err)
		return fmt.Errorf("failed to roll back migration: %w", err)
	}
	return nil
}

// Status logs the applied state of every migration
func (m *Migrator) Status(ctx context.Context) error {
	if err := gooseStatusContext(ctx, m.db, "."); err != nil {
		return fmt.Errorf("failed to read migration status: %w", err)
	}
	return nil
}

// Version returns the current schema version
func (m *Migrator) Version(ctx context.Context) (int64, error) {
	v, err := gooseVersionContext(ctx, m.db)
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return v, nil
}

type gooseLogger struct {
	logger *logging.Logger
}

func (l gooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Database(fmt.Sprintf(format, v...))
}

func (l gooseLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Error("migration: " + fmt.Sprintf(format, v...))
	os.Exit(1)
}
