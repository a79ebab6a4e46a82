// Package cache keeps the raw directory payload in Redis so repeated loads within the
// TTL skip the upstream round trip.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/chybatronik/goUsersTable/internal/config"
	"github.com/chybatronik/goUsersTable/internal/logging"
)

// KeyPrefix namespaces every key this package writes
const KeyPrefix = "userstable:upstream:"

// ErrMiss is returned by Get when no payload is cached for the URL
var ErrMiss = errors.New("cache: miss")

// Redis wraps the go-redis client.
type Redis struct {
	Client *redis.Client
	ttl    time.Duration
}

// NewRedis connects to Redis using the provided configuration. An unreachable server
// is only logged; every later call reports its own error.
func NewRedis(cfg config.CacheConfig, logger *logging.Logger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("unable to reach redis", logging.Err(err), "addr", cfg.Addr)
	} else {
		logger.Info("connected to redis", "addr", cfg.Addr)
	}

	return &Redis{Client: client, ttl: cfg.TTL}
}

// Key derives the cache key of an upstream URL
func Key(url string) string {
	sum := sha256.Sum256([]byte(url))
	return KeyPrefix + hex.EncodeToString(sum[:])
}

// Get returns the cached payload for url, or ErrMiss
func (r *Redis) Get(ctx context.Context, url string) ([]byte, error) {
	data, err := r.Client.Get(ctx, Key(url)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached payload: %w", err)
	}
	return data, nil
}

// Set stores payload for url with the configured TTL
func (r *Redis) Set(ctx context.Context, url string, payload []byte) error {
	if err := r.Client.Set(ctx, Key(url), payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache payload: %w", err)
	}
	return nil
}

// Delete drops the cached payload for url, so the next load goes upstream
func (r *Redis) Delete(ctx context.Context, url string) error {
	if err := r.Client.Del(ctx, Key(url)).Err(); err != nil {
		return fmt.Errorf("failed to drop cached payload: %w", err)
	}
	return nil
}

// Close closes the client.
func (r *Redis) Close() error {
	if r == nil || r.Client == nil {
		return nil
	}
	return r.Client.Close()
}

// Ping verifies Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	return r.Client.Ping(ctx).Err()
}
