package cache

import (
	"context"
	"time"
)

// Cache is the key/value contract used for lookups that are cheap to lose.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns ErrMiss when the key is absent
	Get(ctx context.Context, key string) (string, error)
	// MGet returns the values of the keys that are present
	MGet(ctx context.Context, keys ...string) (map[string]string, error)
	// Set stores value with a TTL; zero or negative means no expiry
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) (int64, error)
	Ping(ctx context.Context) error
	Close() error
}

// ErrMiss signals a cache miss so callers can tell it apart from transport errors
var ErrMiss = errMiss{}

type errMiss struct{}

func (e errMiss) Error() string { return "cache: miss" }

// Noop never stores anything. Used when no Redis is configured.
type Noop struct{}

var _ Cache = Noop{}

func (Noop) Get(ctx context.Context, key string) (string, error) { return "", ErrMiss }

func (Noop) MGet(ctx context.Context, keys ...string) (map[string]string, error) {
	return map[string]string{}, nil
}

func (Noop) Set(ctx context.Context, key, value string, ttl time.Duration) error { return nil }

func (Noop) Del(ctx context.Context, keys ...string) (int64, error) { return 0, nil }

func (Noop) Ping(ctx context.Context) error { return nil }

func (Noop) Close() error { return nil }
