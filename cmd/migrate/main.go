// Package main provides CLI for manual snapshot database migration management.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/chybatronik/goUsersTable/internal/config"
	"github.com/chybatronik/goUsersTable/internal/database"
	"github.com/chybatronik/goUsersTable/internal/logging"
)

func main() {
	var (
		action  = flag.String("action", "up", "Migration action: up, down, status, version")
		timeout = flag.Duration("timeout", 30*time.Second, "Timeout for the whole operation")
		help    = flag.Bool("help", false, "Show help information")
	)
	flag.Parse()

	if *help {
		showHelp()
		return
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	logger := logging.New(os.Stderr, appConfig.Logging.Level, logging.FormatText, "goUsersTable-migrate", "")
	logger.Database("Migration CLI", "action", *action)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := run(ctx, *action, appConfig.Database, logger); err != nil {
		logger.DatabaseError("Migration command failed", err)
		cancel()
		os.Exit(1)
	}
}

func run(ctx context.Context, action string, cfg config.DatabaseConfig, logger *logging.Logger) error {
	pool, err := database.NewConnectionPool(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	logger.Database("Database connection established successfully")

	db := database.OpenDB(pool)
	defer db.Close()

	migrator, err := database.NewMigrator(db, logger)
	if err != nil {
		return err
	}

	switch action {
	case "up":
		if err := migrator.Up(ctx); err != nil {
			return err
		}
		logger.Database("Migrations completed successfully")
	case "down":
		if err := migrator.Down(ctx); err != nil {
			return err
		}
		logger.Database("Rollback completed successfully")
	case "status":
		return migrator.Status(ctx)
	case "version":
		version, err := migrator.Version(ctx)
		if err != nil {
			return err
		}
		fmt.Println(version)
	default:
		return fmt.Errorf("unknown action %q", action)
	}
	return nil
}

func showHelp() {
	fmt.Println(`Snapshot database migration CLI

Usage:
  migrate [flags]

Flags:
  -action string    Migration action: up, down, status, version (default "up")
  -timeout duration Timeout for the whole operation (default 30s)
  -help             Show help information

Actions:
  up       Apply all pending migrations
  down     Roll back the most recent migration
  status   Print the applied state of every migration
  version  Print the current schema version

Connection settings come from the DB_* environment variables (or .env).`)
}
