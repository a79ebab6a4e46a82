// Package main provides the entry point for the goUsersTable web service.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chybatronik/goUsersTable/internal/cache"
	"github.com/chybatronik/goUsersTable/internal/config"
	"github.com/chybatronik/goUsersTable/internal/database"
	"github.com/chybatronik/goUsersTable/internal/directory"
	"github.com/chybatronik/goUsersTable/internal/handlers"
	"github.com/chybatronik/goUsersTable/internal/logging"
	"github.com/chybatronik/goUsersTable/internal/middleware"
	"github.com/chybatronik/goUsersTable/internal/source"
)

var (
	// Build information (set during build)
	Version   = "dev"
	BuildTime = ""
)

const serviceName = "goUsersTable"

// dependencies are the optional backends of the record source
type dependencies struct {
	source   *source.Source
	checkers []handlers.HealthChecker
	closers  []func()
}

// close releases backends in reverse order of creation
func (d *dependencies) close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

func main() {
	// Initialize configuration first
	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	logger := setupStructuredLogging(appConfig, os.Stdout)
	logStartupEvents(logger, appConfig)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, err := setupDependencies(ctx, appConfig, logger)
	if err != nil {
		logger.Error("Failed to initialize backends", logging.Err(err))
		log.Fatalf("FATAL: Failed to initialize backends: %v", err)
	}
	defer deps.close()

	loadRecords(ctx, deps.source, appConfig, logger)

	limiter := middleware.NewRateLimiter(appConfig.Application.RateLimitRequests,
		appConfig.Application.RateLimitWindowDuration(), logger)
	go limiter.Run(ctx)

	server := setupHTTPServer(appConfig, newHandler(appConfig, deps, limiter, logger))

	serverErr := make(chan error, 1)
	go func() {
		logger.Startup("HTTP server starting",
			"host", appConfig.Server.Host,
			"port", appConfig.Server.Port,
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	logger.Startup("goUsersTable service started successfully")

	select {
	case err := <-serverErr:
		logger.Error("HTTP server failed", logging.Err(err))
	case <-ctx.Done():
		logger.Startup("Received signal, initiating graceful shutdown")
	}

	gracefulShutdown(server, appConfig.Application.ShutdownTimeout, logger)
}

// setupDependencies connects the configured cache and snapshot database and builds the
// record source on top of them
func setupDependencies(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*dependencies, error) {
	deps := &dependencies{}
	var opts []source.Option

	if cfg.Cache.Enabled {
		redisCache := cache.NewRedis(cfg.Cache, logger)
		opts = append(opts, source.WithCache(redisCache))
		deps.checkers = append(deps.checkers, handlers.NewPingHealthChecker("redis", redisCache, logger))
		deps.closers = append(deps.closers, func() {
			if err := redisCache.Close(); err != nil {
				logger.Warn("Failed to close redis client", logging.Err(err))
			}
		})
	}

	if cfg.Database.Enabled {
		store, err := setupSnapshots(ctx, cfg.Database, logger, deps)
		if err != nil {
			deps.close()
			return nil, err
		}
		opts = append(opts, source.WithSnapshots(store))
	}

	client := directory.NewClient(cfg.Upstream.URL, cfg.Upstream.TimeoutDuration())
	deps.source = source.New(client, logger, opts...)
	deps.checkers = append([]handlers.HealthChecker{handlers.NewSourceHealthChecker(deps.source)}, deps.checkers...)

	return deps, nil
}

func setupSnapshots(ctx context.Context, cfg config.DatabaseConfig, logger *logging.Logger, deps *dependencies) (*database.SnapshotStore, error) {
	logger.Startup("Initializing database connection...")

	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	pool, err := database.NewConnectionPool(connectCtx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection pool: %w", err)
	}
	deps.closers = append(deps.closers, func() {
		logger.Startup("Closing database connections...")
		pool.Close()
	})
	logger.Database("Database connection established successfully")

	db := database.OpenDB(pool)
	deps.closers = append(deps.closers, func() { _ = db.Close() })

	logger.Startup("Running database migrations...")
	migrator, err := database.NewMigrator(db, logger)
	if err != nil {
		return nil, err
	}
	if err := migrator.Up(connectCtx); err != nil {
		return nil, err
	}
	logger.Database("Database migrations completed successfully")

	deps.checkers = append(deps.checkers, handlers.NewPingHealthChecker("database", pool, logger))
	return database.NewSnapshotStore(db), nil
}

// loadRecords performs the startup fetch. A failure is not fatal: requests answer 503
// until POST /api/refresh succeeds.
func loadRecords(ctx context.Context, src *source.Source, cfg *config.Config, logger *logging.Logger) {
	loadCtx, cancel := context.WithTimeout(ctx, 2*cfg.Upstream.TimeoutDuration())
	defer cancel()

	if err := src.Load(loadCtx); err != nil {
		logger.SourceError("Initial record load failed", err)
		return
	}

	status := src.Status()
	logger.Startup("User records loaded",
		logging.Records(status.Records),
		logging.Origin(string(status.Origin)),
	)
}

// newHandler registers the routes and wraps them in the middleware chain.
// Order: rate limit -> request ID -> logging -> error handler -> router
func newHandler(cfg *config.Config, deps *dependencies, limiter *middleware.RateLimiter, logger *logging.Logger) http.Handler {
	mux := http.NewServeMux()

	handlers.NewTableHandler(deps.source, logger, cfg.Application.DefaultItemsPerPage).RegisterRoutes(mux)

	if cfg.HealthCheck.Enabled {
		healthHandler := handlers.NewHealthHandler(serviceName, Version, logger)
		for _, checker := range deps.checkers {
			healthHandler.AddChecker(checker)
		}
		mux.Handle("GET /health", healthHandler)
		mux.Handle("/health", handlers.MethodNotAllowed(http.MethodGet, http.MethodHead))
	}

	handler := http.Handler(mux)
	handler = middleware.NewErrorHandler(logger, handler)
	handler = middleware.NewLoggingMiddleware(logger, handler)
	handler = middleware.RequestIDMiddleware(handler)
	handler = limiter.Middleware(handler)

	return handler
}

// setupHTTPServer configures the HTTP server with timeouts
func setupHTTPServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Server.Address(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:      time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:       time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}
}

// gracefulShutdown drains in-flight requests within shutdownTimeout seconds
func gracefulShutdown(server *http.Server, shutdownTimeout int, logger *logging.Logger) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(shutdownTimeout)*time.Second)
	defer cancel()

	logger.Startup("Shutting down HTTP server...")
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", logging.Err(err))
	} else {
		logger.Startup("HTTP server shutdown completed")
	}
}

// setupStructuredLogging initializes the structured logger based on configuration and
// installs it as the slog default, so packages logging through slog share its output
func setupStructuredLogging(cfg *config.Config, w io.Writer) *logging.Logger {
	logger := logging.New(w, cfg.Logging.Level, cfg.Logging.Format, serviceName, Version).WithServiceContext()
	slog.SetDefault(logger.Logger)
	return logger
}

// logStartupEvents logs the effective configuration, without secrets
func logStartupEvents(logger *logging.Logger, cfg *config.Config) {
	logger.Startup("goUsersTable service starting up",
		"version", Version,
		"build_time", BuildTime,
	)

	logger.Startup("configuration loaded successfully",
		"environment", cfg.Application.Environment,
		"log_level", cfg.Logging.Level,
		"server_host", cfg.Server.Host,
		"server_port", cfg.Server.Port,
		logging.FieldUpstream, cfg.Upstream.URL,
		"snapshot_enabled", cfg.Database.Enabled,
		"cache_enabled", cfg.Cache.Enabled,
		"health_check_enabled", cfg.HealthCheck.Enabled,
	)
}
