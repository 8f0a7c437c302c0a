// Package index maintains the per-user cache of expanded category entries
// that the matcher scores against.
package index

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gastobot/gastobot/internal/cache"
	"github.com/gastobot/gastobot/internal/common"
	"github.com/gastobot/gastobot/internal/model"
)

const (
	keyspace       = "categories:u"
	defaultTTL     = 24 * time.Hour
	defaultTimeout = 2 * time.Second
)

func userKey(userID string) string {
	return cache.Key(keyspace, userID)
}

// Index stores expanded category lists per user with a TTL. Concurrent
// indexing for the same user is last-write-wins.
type Index struct {
	cache   cache.Client
	ttl     time.Duration
	timeout time.Duration
}

// Option configures an Index.
type Option func(*Index)

// WithTTL overrides the 24h default entry lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(i *Index) { i.ttl = ttl }
}

// WithTimeout overrides the per-call cache timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(i *Index) { i.timeout = timeout }
}

// New creates a category index on the given cache client.
func New(client cache.Client, opts ...Option) *Index {
	idx := &Index{
		cache:   client,
		ttl:     defaultTTL,
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// Index stores the expanded category list for a user. Every entry must
// carry at most one subcategory; lists straight from the category source
// should go through model.ExpandCategories first.
func (i *Index) Index(ctx context.Context, userID string, categories []model.UserCategory) error {
	if userID == "" {
		return fmt.Errorf("userID is required")
	}

	for idx := range categories {
		if err := categories[idx].Validate(); err != nil {
			return fmt.Errorf("invalid category at index %d: %w", idx, err)
		}
	}

	data, err := json.Marshal(categories)
	if err != nil {
		return fmt.Errorf("failed to encode categories: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	if err := i.cache.Set(ctx, userKey(userID), data, i.ttl); err != nil {
		return fmt.Errorf("failed to store category index: %w", err)
	}

	common.LogDebug("indexed user categories",
		common.Fields{"user_id": userID, "count": len(categories)})
	return nil
}

// Get returns the indexed categories for a user. An absent or expired entry
// yields nil, not an error; a cache timeout is treated the same way so the
// matcher degrades instead of failing.
func (i *Index) Get(ctx context.Context, userID string) ([]model.UserCategory, error) {
	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	data, err := i.cache.Get(ctx, userKey(userID))
	if errors.Is(err, cache.ErrCacheMiss) {
		return nil, nil
	}
	if err != nil {
		slog.Warn("category index lookup failed, treating as miss",
			"user_id", userID, "error", err)
		return nil, nil
	}

	var categories []model.UserCategory
	if err := json.Unmarshal(data, &categories); err != nil {
		slog.Warn("category index entry corrupted, treating as miss",
			"user_id", userID, "error", err)
		return nil, nil
	}

	return categories, nil
}

// Invalidate clears the index for one user.
func (i *Index) Invalidate(ctx context.Context, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	return i.cache.Delete(ctx, userKey(userID))
}

// InvalidateAll clears every user's index.
func (i *Index) InvalidateAll(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	return i.cache.DeleteByPrefix(ctx, userKey(""))
}
