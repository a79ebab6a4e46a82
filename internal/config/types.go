// Package config provides configuration types and structures for the users table service.
package config

import "time"

// Config represents the application configuration
type Config struct {
	Server      ServerConfig
	Upstream    UpstreamConfig
	Database    DatabaseConfig
	Cache       CacheConfig
	Logging     LoggingConfig
	HealthCheck HealthCheckConfig
	Application ApplicationConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         int    // Server port number
	Host         string // Server host address
	ReadTimeout  int    // Read timeout in seconds
	WriteTimeout int    // Write timeout in seconds
	IdleTimeout  int    // Idle timeout in seconds
}

// Address returns the host:port the HTTP server listens on.
func (s ServerConfig) Address() string {
	return joinHostPort(s.Host, s.Port)
}

// UpstreamConfig holds the user directory endpoint configuration
type UpstreamConfig struct {
	URL     string // Directory endpoint returning the nested country/state/users payload
	Timeout int    // Fetch timeout in seconds
}

// TimeoutDuration returns Timeout as a time.Duration.
func (u UpstreamConfig) TimeoutDuration() time.Duration {
	return time.Duration(u.Timeout) * time.Second
}

// DatabaseConfig holds the snapshot database configuration
type DatabaseConfig struct {
	Enabled  bool   // Persist and fall back to a Postgres snapshot of the records
	Host     string // Database host address
	Port     int    // Database port number
	User     string // Database username
	Password string // Database password
	Database string // Database name
	SSLMode  string // SSL mode (disable, require, etc.)
	MaxConns int    // Maximum database connections
	MinConns int    // Minimum database connections
}

// CacheConfig holds the Redis payload cache configuration
type CacheConfig struct {
	Enabled  bool          // Cache the raw upstream payload in Redis
	Addr     string        // Redis host:port
	Password string        // Redis password
	DB       int           // Redis logical database
	TTL      time.Duration // Lifetime of a cached payload
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string // Log level (debug, info, warn, error)
	Format string // Log format (json, text)
}

// HealthCheckConfig holds health check configuration
type HealthCheckConfig struct {
	Enabled bool // Enable health check endpoint
}

// ApplicationConfig holds application-specific configuration
type ApplicationConfig struct {
	Environment         string // Environment (development, staging, production, test)
	ShutdownTimeout     int    // Shutdown timeout in seconds
	RateLimitRequests   int    // Rate limit requests per window
	RateLimitWindow     string // Rate limit time window
	DefaultItemsPerPage int    // Page size of a fresh table session
}
