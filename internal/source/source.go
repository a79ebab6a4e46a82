// Package source owns the record list shared by every table view. Records are loaded
// once from the directory, optionally through the payload cache, and the last good list
// is kept in the snapshot store as a fallback for when the directory is unreachable.
package source

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chybatronik/goUsersTable/internal/cache"
	"github.com/chybatronik/goUsersTable/internal/directory"
	"github.com/chybatronik/goUsersTable/internal/logging"
	"github.com/chybatronik/goUsersTable/internal/models"
)

// ErrNoRecords is returned when no record list could be obtained from any origin
var ErrNoRecords = errors.New("source: user records unavailable")

// Origin names where the current record list came from
type Origin string

const (
	OriginNone     Origin = ""
	OriginUpstream Origin = "upstream"
	OriginCache    Origin = "cache"
	OriginSnapshot Origin = "snapshot"
)

// PayloadCache stores raw directory payloads keyed by upstream URL.
// Get returns cache.ErrMiss when nothing is stored.
type PayloadCache interface {
	Get(ctx context.Context, url string) ([]byte, error)
	Set(ctx context.Context, url string, payload []byte) error
	Delete(ctx context.Context, url string) error
}

// SnapshotStore persists the last good record list
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, users []models.User, fetchedAt time.Time) error
	LoadSnapshot(ctx context.Context) ([]models.User, time.Time, error)
}

// Status describes the current record list
type Status struct {
	Loaded    bool      `json:"loaded"`
	Origin    Origin    `json:"origin,omitempty"`
	Records   int       `json:"records"`
	FetchedAt time.Time `json:"fetched_at,omitempty"`
	LastError string    `json:"last_error,omitempty"`
}

// Source holds the session's record list. It is safe for concurrent use: readers get
// the current slice, which is never mutated, and a reload swaps it wholesale.
type Source struct {
	fetcher   directory.Fetcher
	cache     PayloadCache
	snapshots SnapshotStore
	logger    *logging.Logger
	now       func() time.Time

	loadMu sync.Mutex

	mu      sync.RWMutex
	records []models.User
	status  Status
}

// Option configures a Source
type Option func(*Source)

// WithCache serves loads from c when it holds a payload for the upstream URL
func WithCache(c PayloadCache) Option {
	return func(s *Source) { s.cache = c }
}

// WithSnapshots saves every fetched list to store and falls back to it when the
// directory fails
func WithSnapshots(store SnapshotStore) Option {
	return func(s *Source) { s.snapshots = store }
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Source) { s.now = now }
}

// New creates a Source reading from fetcher
func New(fetcher directory.Fetcher, logger *logging.Logger, opts ...Option) *Source {
	s := &Source{
		fetcher: fetcher,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load obtains the record list unless one is already held
func (s *Source) Load(ctx context.Context) error {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	if s.Status().Loaded {
		return nil
	}
	return s.load(ctx, true)
}

// Refresh fetches the directory again, bypassing the cache. On failure the current
// list is kept.
func (s *Source) Refresh(ctx context.Context) error {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	if s.cache != nil {
		if err := s.cache.Delete(ctx, s.fetcher.URL()); err != nil {
			s.logger.SourceError("failed to drop cached payload", err)
		}
	}

	if s.Status().Loaded {
		// keep serving the current list if the directory is down
		return s.fetchUpstream(ctx)
	}
	return s.load(ctx, false)
}

// Records returns the current list, or ErrNoRecords if none has been loaded.
// Callers must not modify the returned slice.
func (s *Source) Records() ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.status.Loaded {
		return nil, ErrNoRecords
	}
	return s.records, nil
}

// Status reports where the current list came from
func (s *Source) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *Source) load(ctx context.Context, useCache bool) error {
	if useCache && s.loadFromCache(ctx) {
		return nil
	}

	upstreamErr := s.fetchUpstream(ctx)
	if upstreamErr == nil {
		return nil
	}

	if s.snapshots != nil {
		users, fetchedAt, err := s.snapshots.LoadSnapshot(ctx)
		if err == nil {
			s.logger.Source("serving snapshot after upstream failure",
				logging.Records(len(users)), "fetched_at", fetchedAt)
			s.swap(users, OriginSnapshot, fetchedAt)
			return nil
		}
		s.logger.SourceError("snapshot fallback failed", err)
	}

	return fmt.Errorf("%w: %w", ErrNoRecords, upstreamErr)
}

func (s *Source) loadFromCache(ctx context.Context) bool {
	if s.cache == nil {
		return false
	}

	url := s.fetcher.URL()
	payload, err := s.cache.Get(ctx, url)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			s.logger.SourceError("cache read failed", err)
		}
		return false
	}

	users, err := directory.DecodeUsers(payload)
	if err != nil {
		s.logger.SourceError("discarding undecodable cached payload", err)
		if err := s.cache.Delete(ctx, url); err != nil {
			s.logger.SourceError("failed to drop cached payload", err)
		}
		return false
	}

	s.logger.Source("records loaded", logging.Origin(string(OriginCache)), logging.Records(len(users)))
	s.swap(users, OriginCache, s.now())
	return true
}

func (s *Source) fetchUpstream(ctx context.Context) error {
	start := s.now()
	url := s.fetcher.URL()

	payload, err := s.fetcher.FetchRaw(ctx)
	if err == nil {
		var users []models.User
		users, err = directory.DecodeUsers(payload)
		if err == nil {
			fetchedAt := s.now()
			s.logger.Source("records loaded",
				logging.Origin(string(OriginUpstream)),
				logging.Records(len(users)),
				logging.FieldDurationMs, fetchedAt.Sub(start).Milliseconds())
			s.swap(users, OriginUpstream, fetchedAt)
			s.persist(ctx, url, payload, users, fetchedAt)
			return nil
		}
	}

	s.logger.SourceError("upstream fetch failed", err, logging.FieldUpstream, url)
	s.mu.Lock()
	s.status.LastError = err.Error()
	s.mu.Unlock()
	return err
}

// persist failures only cost the next load its shortcut, so they are logged
func (s *Source) persist(ctx context.Context, url string, payload []byte, users []models.User, fetchedAt time.Time) {
	if s.cache != nil {
		if err := s.cache.Set(ctx, url, payload); err != nil {
			s.logger.SourceError("failed to cache payload", err)
		}
	}
	if s.snapshots != nil {
		if err := s.snapshots.SaveSnapshot(ctx, users, fetchedAt); err != nil {
			s.logger.SourceError("failed to save snapshot", err)
		}
	}
}

func (s *Source) swap(users []models.User, origin Origin, fetchedAt time.Time) {
	if users == nil {
		users = []models.User{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = users
	s.status = Status{
		Loaded:    true,
		Origin:    origin,
		Records:   len(users),
		FetchedAt: fetchedAt,
	}
}
