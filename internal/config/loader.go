// Package config provides configuration loading and environment management
package config

import (
	"fmt"
	"log"
	"net"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultUpstreamURL is the public demo directory the table was built against.
const DefaultUpstreamURL = "https://fww-demo.herokuapp.com/"

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s='%s': %s", e.Field, e.Value, e.Message)
}

// ValidationErrors represents multiple validation errors
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return ""
	}

	msg := "configuration validation errors:\n"
	for _, err := range ve {
		msg += fmt.Sprintf("  - %s\n", err.Error())
	}
	return msg
}

// SnapshotEnvironmentVariables are required once SNAPSHOT_ENABLED is true
var SnapshotEnvironmentVariables = []string{
	"DB_HOST",
	"DB_USER",
	"DB_PASSWORD",
	"DB_NAME",
}

// CacheEnvironmentVariables are required once CACHE_ENABLED is true
var CacheEnvironmentVariables = []string{
	"REDIS_ADDR",
}

// OptionalEnvironmentVariables defines optional environment variables with defaults
var OptionalEnvironmentVariables = map[string]string{
	"APP_HOST":               "0.0.0.0",
	"APP_PORT":               "8080",
	"SERVER_READ_TIMEOUT":    "30",
	"SERVER_WRITE_TIMEOUT":   "30",
	"SERVER_IDLE_TIMEOUT":    "120",
	"UPSTREAM_URL":           DefaultUpstreamURL,
	"UPSTREAM_TIMEOUT":       "10",
	"SNAPSHOT_ENABLED":       "false",
	"DB_PORT":                "5432",
	"DB_SSL_MODE":            "disable",
	"DB_MAX_CONNECTIONS":     "10",
	"DB_MIN_CONNS":           "1",
	"CACHE_ENABLED":          "false",
	"REDIS_DB":               "0",
	"CACHE_TTL":              "5m",
	"LOG_LEVEL":              "info",
	"LOG_FORMAT":             "json",
	"ENVIRONMENT":            "development",
	"SHUTDOWN_TIMEOUT":       "30",
	"RATE_LIMIT_REQUESTS":    "100",
	"RATE_LIMIT_WINDOW":      "1m",
	"HEALTH_CHECK_ENABLED":   "true",
	"DEFAULT_ITEMS_PER_PAGE": "100",
}

// ValidateRequired validates the variables required by the enabled storage features
func ValidateRequired() ValidationErrors {
	var errors ValidationErrors

	if getEnvBool("SNAPSHOT_ENABLED", false) {
		errors = append(errors, missing(SnapshotEnvironmentVariables)...)
	}
	if getEnvBool("CACHE_ENABLED", false) {
		errors = append(errors, missing(CacheEnvironmentVariables)...)
	}

	return errors
}

func missing(vars []string) ValidationErrors {
	var errors ValidationErrors
	for _, envVar := range vars {
		if value := os.Getenv(envVar); value == "" {
			errors = append(errors, ValidationError{
				Field:   envVar,
				Value:   "",
				Message: "required environment variable is not set",
			})
		}
	}
	return errors
}

// ValidatePort validates that a port number is in valid range
func ValidatePort(envVar string) error {
	portStr := os.Getenv(envVar)
	if portStr == "" {
		return nil // skip validation if not set
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return ValidationError{
			Field:   envVar,
			Value:   portStr,
			Message: "must be a valid integer",
		}
	}

	if port < 1 || port > 65535 {
		return ValidationError{
			Field:   envVar,
			Value:   portStr,
			Message: "must be between 1 and 65535",
		}
	}

	return nil
}

// ValidateLogLevel validates log level value
func ValidateLogLevel() error {
	return validateOneOf("LOG_LEVEL", "debug", "info", "warn", "error")
}

// ValidateEnvironmentType validates environment type
func ValidateEnvironmentType() error {
	return validateOneOf("ENVIRONMENT", "development", "staging", "production", "test")
}

// validateOneOf accepts an unset variable or one of allowed, compared exactly
func validateOneOf(envVar string, allowed ...string) error {
	value := os.Getenv(envVar)
	if value == "" || slices.Contains(allowed, value) {
		return nil
	}
	return ValidationError{
		Field:   envVar,
		Value:   value,
		Message: "must be one of: " + strings.Join(allowed, ", "),
	}
}

// ValidateURL validates that envVar holds an absolute http or https URL
func ValidateURL(envVar string) error {
	raw := os.Getenv(envVar)
	if raw == "" {
		return nil
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return ValidationError{
			Field:   envVar,
			Value:   raw,
			Message: "must be an absolute http or https URL",
		}
	}

	return nil
}

// ValidateDuration validates that envVar parses as a positive time.Duration
func ValidateDuration(envVar string) error {
	raw := os.Getenv(envVar)
	if raw == "" {
		return nil
	}

	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return ValidationError{
			Field:   envVar,
			Value:   raw,
			Message: "must be a positive duration such as 30s or 5m",
		}
	}

	return nil
}

// ValidateAll performs comprehensive configuration validation
func ValidateAll() error {
	var errors ValidationErrors

	// Validate required variables
	if requiredErrs := ValidateRequired(); len(requiredErrs) > 0 {
		errors = append(errors, requiredErrs...)
	}

	checks := []error{
		ValidatePort("DB_PORT"),
		ValidatePort("APP_PORT"),
		ValidateLogLevel(),
		ValidateEnvironmentType(),
		ValidateURL("UPSTREAM_URL"),
		ValidateDuration("CACHE_TTL"),
		ValidateDuration("RATE_LIMIT_WINDOW"),
	}
	for _, err := range checks {
		if validationErr, ok := err.(ValidationError); ok {
			errors = append(errors, validationErr)
		}
	}

	if len(errors) > 0 {
		return errors
	}

	return nil
}

// LoadAndValidate loads environment variables and validates configuration
func LoadAndValidate() (map[string]string, error) {
	env := make(map[string]string)

	for _, key := range append(SnapshotEnvironmentVariables, CacheEnvironmentVariables...) {
		if value := os.Getenv(key); value != "" {
			env[key] = value
		}
	}

	// Load optional variables with defaults
	for key, defaultValue := range OptionalEnvironmentVariables {
		value := os.Getenv(key)
		if value == "" {
			value = defaultValue
		}
		env[key] = value
	}

	if err := ValidateAll(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return env, nil
}

// Load loads and validates configuration from environment variables
func Load() (*Config, error) {
	// 1. Load .env file if it exists
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	// 2. Pre-load environment variable validation
	if _, err := LoadAndValidate(); err != nil {
		return nil, fmt.Errorf("environment validation failed: %w", err)
	}

	// 3. Load configuration with defaults
	config := &Config{
		Server: ServerConfig{
			Port:         getEnvInt("APP_PORT", 8080),
			Host:         getEnv("APP_HOST", "0.0.0.0"),
			ReadTimeout:  getEnvInt("SERVER_READ_TIMEOUT", 30),
			WriteTimeout: getEnvInt("SERVER_WRITE_TIMEOUT", 30),
			IdleTimeout:  getEnvInt("SERVER_IDLE_TIMEOUT", 120),
		},
		Upstream: UpstreamConfig{
			URL:     strings.TrimSpace(getEnv("UPSTREAM_URL", DefaultUpstreamURL)),
			Timeout: getEnvInt("UPSTREAM_TIMEOUT", 10),
		},
		Database: DatabaseConfig{
			Enabled:  getEnvBool("SNAPSHOT_ENABLED", false),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "userstable"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
			MaxConns: getEnvInt("DB_MAX_CONNECTIONS", 10),
			MinConns: getEnvInt("DB_MIN_CONNS", 1),
		},
		Cache: CacheConfig{
			Enabled:  getEnvBool("CACHE_ENABLED", false),
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			TTL:      getEnvDuration("CACHE_TTL", 5*time.Minute),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		HealthCheck: HealthCheckConfig{
			Enabled: getEnvBool("HEALTH_CHECK_ENABLED", true),
		},
		Application: ApplicationConfig{
			Environment:         getEnv("ENVIRONMENT", "development"),
			ShutdownTimeout:     getEnvInt("SHUTDOWN_TIMEOUT", 30),
			RateLimitRequests:   getEnvInt("RATE_LIMIT_REQUESTS", 100),
			RateLimitWindow:     getEnv("RATE_LIMIT_WINDOW", "1m"),
			DefaultItemsPerPage: getEnvInt("DEFAULT_ITEMS_PER_PAGE", 100),
		},
	}

	// 4. Post-load configuration validation
	if err := Validate(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func joinHostPort(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets environment variable as integer with default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool gets environment variable as boolean with default value
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvDuration gets environment variable as time.Duration with default value
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
