// Package cache stores rendered HTML fragments so repeated renders of the
// same value skip the renderer
package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Cache is a fragment store. Implementations must be safe for concurrent
// use
type Cache interface {
	// Get returns the fragment stored under key or an ErrCacheMiss
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a fragment. A zero ttl means the configured default, a
	// negative one never expires
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	Delete(ctx context.Context, key string) error

	// Clear drops every fragment under the configured prefix
	Clear(ctx context.Context) error

	Close() error
}

// Config holds settings shared by every backend
type Config struct {
	DefaultTTL time.Duration
	// Prefix is prepended to every key
	Prefix string
}

// DefaultConfig returns the configuration used when none is given
func DefaultConfig() Config {
	return Config{
		DefaultTTL: 10 * time.Minute,
		Prefix:     "fieldmeta:",
	}
}

// ErrCacheMiss is returned when a key holds nothing
type ErrCacheMiss struct {
	Key string
}

func (e ErrCacheMiss) Error() string {
	return "cache miss: " + e.Key
}

// IsCacheMiss checks if an error is a cache miss
func IsCacheMiss(err error) bool {
	var miss ErrCacheMiss
	return errors.As(err, &miss)
}

// Backend names accepted by New
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendNone   = "none"
)

// New opens the backend called name. BackendNone yields a nil Cache and a
// nil error: callers treat a nil Cache as caching disabled
func New(name string, cfg Config, redisAddr string) (Cache, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", BackendMemory:
		return NewMemoryCache(cfg), nil
	case BackendRedis:
		rc, err := NewRedisCache(RedisConfig{Addr: redisAddr, Config: cfg})
		if err != nil {
			return nil, err
		}
		return rc, nil
	case BackendNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", name)
	}
}
