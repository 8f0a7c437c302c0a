// Package cache provides the TTL key-value port used for the category index
// and for pending learning contexts. Two implementations exist: a Redis
// client for multi-instance deployments and an in-process map for
// single-instance deployments and tests. Consumers never branch on which
// one they were given.
package cache

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrCacheMiss indicates the key is absent or expired. Callers treat it as
// an empty result, never as a failure.
var ErrCacheMiss = errors.New("cache miss")

// Client is the cache port.
type Client interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeleteByPrefix(ctx context.Context, prefix string) error
	Close() error
}

// Key joins key components with ":".
func Key(parts ...string) string {
	return strings.Join(parts, ":")
}
