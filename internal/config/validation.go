package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"
)

// Validate validates the configuration and returns any errors
func Validate(config *Config) error {
	var validationErrors []string

	if err := validateServerConfig(&config.Server); err != nil {
		validationErrors = append(validationErrors, err.Error())
	}

	if err := validateUpstreamConfig(&config.Upstream); err != nil {
		validationErrors = append(validationErrors, err.Error())
	}

	// The snapshot database is only checked when it will be used
	if config.Database.Enabled {
		if err := validateDatabaseConfig(&config.Database); err != nil {
			validationErrors = append(validationErrors, err.Error())
		}
	}

	if config.Cache.Enabled {
		if err := validateCacheConfig(&config.Cache); err != nil {
			validationErrors = append(validationErrors, err.Error())
		}
	}

	if err := validateLoggingConfig(&config.Logging); err != nil {
		validationErrors = append(validationErrors, err.Error())
	}

	if err := validateApplicationConfig(&config.Application); err != nil {
		validationErrors = append(validationErrors, err.Error())
	}

	if len(validationErrors) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(validationErrors, "; "))
	}

	return nil
}

// validateServerConfig validates server configuration
func validateServerConfig(server *ServerConfig) error {
	if server.Port <= 0 || server.Port > 65535 {
		return errors.New("server port must be between 1 and 65535")
	}

	if server.ReadTimeout <= 0 {
		return errors.New("server read timeout must be positive")
	}

	if server.WriteTimeout <= 0 {
		return errors.New("server write timeout must be positive")
	}

	if server.IdleTimeout <= 0 {
		return errors.New("server idle timeout must be positive")
	}

	return nil
}

// validateUpstreamConfig validates the directory endpoint
func validateUpstreamConfig(upstream *UpstreamConfig) error {
	if upstream.URL == "" {
		return errors.New("upstream URL is required")
	}

	u, err := url.Parse(upstream.URL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("invalid upstream URL: %s", upstream.URL)
	}

	if upstream.Timeout <= 0 {
		return errors.New("upstream timeout must be positive")
	}

	return nil
}

// validateDatabaseConfig validates database configuration
func validateDatabaseConfig(db *DatabaseConfig) error {
	if db.Host == "" {
		return errors.New("database host is required")
	}

	if db.Port <= 0 || db.Port > 65535 {
		return errors.New("database port must be between 1 and 65535")
	}

	if db.User == "" {
		return errors.New("database user is required")
	}

	if db.Password == "" && db.SSLMode != "disable" {
		return errors.New("database password is required when SSL is enabled")
	}

	if db.Database == "" {
		return errors.New("database name is required")
	}

	validSSLModes := []string{"disable", "allow", "prefer", "require", "verify-ca", "verify-full"}
	if !slices.Contains(validSSLModes, db.SSLMode) {
		return fmt.Errorf("invalid SSL mode: %s, must be one of: %s", db.SSLMode, strings.Join(validSSLModes, ", "))
	}

	if db.MaxConns <= 0 {
		return errors.New("database max connections must be positive")
	}

	if db.MinConns < 0 || db.MinConns > db.MaxConns {
		return errors.New("database min connections must be between 0 and max connections")
	}

	return nil
}

// validateCacheConfig validates the Redis cache configuration
func validateCacheConfig(cache *CacheConfig) error {
	if cache.Addr == "" {
		return errors.New("redis address is required")
	}

	if cache.DB < 0 {
		return errors.New("redis database index must not be negative")
	}

	if cache.TTL <= 0 {
		return errors.New("cache TTL must be positive")
	}

	return nil
}

// validateLoggingConfig validates logging configuration
func validateLoggingConfig(logging *LoggingConfig) error {
	validLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLevels, logging.Level) {
		return fmt.Errorf("invalid log level: %s, must be one of: %s", logging.Level, strings.Join(validLevels, ", "))
	}

	validFormats := []string{"json", "text"}
	if !slices.Contains(validFormats, logging.Format) {
		return fmt.Errorf("invalid log format: %s, must be one of: %s", logging.Format, strings.Join(validFormats, ", "))
	}

	return nil
}

// validateApplicationConfig validates application configuration
func validateApplicationConfig(app *ApplicationConfig) error {
	validEnvironments := []string{"development", "staging", "production", "test"}
	if !slices.Contains(validEnvironments, app.Environment) {
		return fmt.Errorf("invalid environment: %s, must be one of: %s", app.Environment, strings.Join(validEnvironments, ", "))
	}

	if app.ShutdownTimeout <= 0 {
		return errors.New("shutdown timeout must be positive")
	}

	if app.RateLimitRequests <= 0 {
		return errors.New("rate limit requests must be positive")
	}

	if app.RateLimitWindow == "" {
		return errors.New("rate limit window is required")
	}
	if _, err := time.ParseDuration(app.RateLimitWindow); err != nil {
		return fmt.Errorf("invalid rate limit window: %s", app.RateLimitWindow)
	}

	switch app.DefaultItemsPerPage {
	case 20, 50, 100:
	default:
		return fmt.Errorf("invalid default items per page: %d, must be one of: 20, 50, 100", app.DefaultItemsPerPage)
	}

	return nil
}

// RateLimitWindowDuration returns the parsed rate limit window, falling back to one minute.
func (app ApplicationConfig) RateLimitWindowDuration() time.Duration {
	d, err := time.ParseDuration(app.RateLimitWindow)
	if err != nil || d <= 0 {
		return time.Minute
	}
	return d
}
