package learning

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gastobot/gastobot/internal/cache"
	"github.com/gastobot/gastobot/internal/model"
)

const (
	contextKeyspace  = "learning:p"
	contextTTL       = 5 * time.Minute
	contextOpTimeout = 2 * time.Second
)

func contextKey(phoneID string) string {
	return cache.Key(contextKeyspace, phoneID)
}

// ContextStore keeps pending learning contexts in the TTL cache, keyed by
// phone/platform id. A context lives for five minutes; terminal state
// transitions delete it explicitly.
type ContextStore struct {
	cache cache.Client
	ttl   time.Duration
}

// NewContextStore creates a context store with the standard 5 minute TTL.
func NewContextStore(client cache.Client) *ContextStore {
	return &ContextStore{
		cache: client,
		ttl:   contextTTL,
	}
}

// Save persists the context, replacing any previous one for the key and
// restarting its TTL.
func (s *ContextStore) Save(ctx context.Context, phoneID string, lc *model.LearningContext) error {
	if phoneID == "" {
		return fmt.Errorf("phoneID is required")
	}

	data, err := json.Marshal(lc)
	if err != nil {
		return fmt.Errorf("failed to encode learning context: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, contextOpTimeout)
	defer cancel()

	if err := s.cache.Set(ctx, contextKey(phoneID), data, s.ttl); err != nil {
		return fmt.Errorf("failed to store learning context: %w", err)
	}

	return nil
}

// Get returns the pending context for a phone id, or nil when none exists.
func (s *ContextStore) Get(ctx context.Context, phoneID string) (*model.LearningContext, error) {
	ctx, cancel := context.WithTimeout(ctx, contextOpTimeout)
	defer cancel()

	data, err := s.cache.Get(ctx, contextKey(phoneID))
	if errors.Is(err, cache.ErrCacheMiss) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load learning context: %w", err)
	}

	var lc model.LearningContext
	if err := json.Unmarshal(data, &lc); err != nil {
		return nil, fmt.Errorf("corrupted learning context: %w", err)
	}

	return &lc, nil
}

// Delete removes the context for a phone id.
func (s *ContextStore) Delete(ctx context.Context, phoneID string) error {
	ctx, cancel := context.WithTimeout(ctx, contextOpTimeout)
	defer cancel()

	return s.cache.Delete(ctx, contextKey(phoneID))
}
