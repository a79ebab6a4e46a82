package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/chybatronik/goUsersTable/internal/logging"
	"github.com/chybatronik/goUsersTable/internal/source"
)

// checkTimeout bounds each individual checker
const checkTimeout = 2 * time.Second

// HealthCheckResponse is the body of GET /health
type HealthCheckResponse struct {
	Status        string                 `json:"status"` // healthy|unhealthy
	Timestamp     int64                  `json:"timestamp"`
	Service       string                 `json:"service"`
	Version       string                 `json:"version"`
	UptimeSeconds int64                  `json:"uptime_seconds"`
	Checks        map[string]HealthCheck `json:"checks"`
}

// HealthCheck is one checker's result
type HealthCheck struct {
	Status         string            `json:"status"` // healthy|unhealthy
	ResponseTimeMs int64             `json:"response_time_ms"`
	Error          string            `json:"error,omitempty"`
	Details        map[string]string `json:"details,omitempty"`
}

// HealthChecker interface for health check components
type HealthChecker interface {
	CheckHealth(ctx context.Context) HealthCheck
	Name() string
}

// HealthHandler runs every registered checker and reports the aggregate
type HealthHandler struct {
	checkers  []HealthChecker
	startTime time.Time
	version   string
	service   string
	mu        sync.RWMutex
	logger    *logging.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(service, version string, logger *logging.Logger) *HealthHandler {
	return &HealthHandler{
		checkers:  make([]HealthChecker, 0),
		startTime: time.Now(),
		version:   version,
		service:   service,
		logger:    logger,
	}
}

// AddChecker adds a health checker to the handler
func (h *HealthHandler) AddChecker(checker HealthChecker) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checkers = append(h.checkers, checker)
}

// ServeHTTP handles GET /health. ?ping=true answers without running the checkers.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if r.URL.Query().Get("ping") == "true" {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "ping": "pong"}, h.logger)
		return
	}

	response := HealthCheckResponse{
		Timestamp:     time.Now().Unix(),
		Service:       h.service,
		Version:       h.version,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		Checks:        make(map[string]HealthCheck),
	}

	h.mu.RLock()
	checkers := make([]HealthChecker, len(h.checkers))
	copy(checkers, h.checkers)
	h.mu.RUnlock()

	allHealthy := true
	for _, checker := range checkers {
		ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
		healthCheck := checker.CheckHealth(ctx)
		cancel()

		response.Checks[checker.Name()] = healthCheck
		if healthCheck.Status != logging.StatusHealthy {
			allHealthy = false
			h.logger.HealthCheck("health check failed",
				logging.FieldCheckName, checker.Name(),
				logging.FieldCheckStatus, healthCheck.Status,
				logging.FieldError, healthCheck.Error,
			)
		}
	}

	status := http.StatusOK
	response.Status = logging.StatusHealthy
	if !allHealthy {
		status = http.StatusServiceUnavailable
		response.Status = logging.StatusUnhealthy
	}

	h.logger.HealthCheck("health check completed",
		logging.CheckStatus(allHealthy),
		logging.FieldResponseTime, time.Since(start).Milliseconds(),
	)
	writeJSON(w, status, response, h.logger)
}

func writeJSON(w http.ResponseWriter, status int, body any, logger *logging.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("failed to encode response", logging.Err(err))
	}
}

// Pinger is anything with a connectivity check: the snapshot database, Redis
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingHealthChecker reports a dependency healthy when its Ping succeeds
type PingHealthChecker struct {
	name   string
	pinger Pinger
	logger *logging.Logger
}

// NewPingHealthChecker creates a checker named name over pinger
func NewPingHealthChecker(name string, pinger Pinger, logger *logging.Logger) *PingHealthChecker {
	return &PingHealthChecker{
		name:   name,
		pinger: pinger,
		logger: logger,
	}
}

// Name returns the checker name
func (p *PingHealthChecker) Name() string {
	return p.name
}

// CheckHealth pings the dependency with timing
func (p *PingHealthChecker) CheckHealth(ctx context.Context) HealthCheck {
	start := time.Now()
	err := p.pinger.Ping(ctx)
	responseTime := time.Since(start).Milliseconds()

	healthCheck := HealthCheck{ResponseTimeMs: responseTime}
	if err != nil {
		healthCheck.Status = logging.StatusUnhealthy
		healthCheck.Error = err.Error()
		p.logger.HealthCheck(p.name+" ping failed", logging.Err(err))
		return healthCheck
	}

	healthCheck.Status = logging.StatusHealthy
	return healthCheck
}

// StatusProvider reports the state of the record list
type StatusProvider interface {
	Status() source.Status
}

// SourceHealthChecker is healthy once a record list has been loaded from any origin
type SourceHealthChecker struct {
	source StatusProvider
}

// NewSourceHealthChecker creates a checker over src
func NewSourceHealthChecker(src StatusProvider) *SourceHealthChecker {
	return &SourceHealthChecker{source: src}
}

// Name returns the checker name
func (s *SourceHealthChecker) Name() string {
	return "records"
}

// CheckHealth reports the origin and size of the current record list
func (s *SourceHealthChecker) CheckHealth(ctx context.Context) HealthCheck {
	status := s.source.Status()

	if !status.Loaded {
		msg := "no records loaded"
		if status.LastError != "" {
			msg = status.LastError
		}
		return HealthCheck{Status: logging.StatusUnhealthy, Error: msg}
	}

	details := map[string]string{
		"origin":  string(status.Origin),
		"records": strconv.Itoa(status.Records),
	}
	if !status.FetchedAt.IsZero() {
		details["fetched_at"] = status.FetchedAt.UTC().Format(time.RFC3339)
	}
	if status.LastError != "" {
		details["last_error"] = status.LastError
	}
	return HealthCheck{Status: logging.StatusHealthy, Details: details}
}
