// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/gastobot/gastobot/internal/model"
)

// SynonymFilter defines filtering options for synonym queries.
type SynonymFilter struct {
	// UserID scopes the query; global synonyms (nil user) are always included.
	UserID string
	// Tokens restricts results to synonyms whose keyword contains any token.
	Tokens []string
	Limit  int
}

// SearchLogFilter defines filtering options for search log queries.
type SearchLogFilter struct {
	UserID     string
	OnlyFailed bool
	Limit      int
	Offset     int
}

// Storage defines the contract for the persistence layer.
type Storage interface {
	// Synonym operations. UpsertSynonym resolves a duplicate (userID, keyword)
	// pair by updating the existing row, never by erroring.
	UpsertSynonym(ctx context.Context, syn *model.Synonym) (*model.Synonym, error)
	GetSynonym(ctx context.Context, userID *string, keyword string) (*model.Synonym, error)
	GetSynonymsForTokens(ctx context.Context, filter SynonymFilter) ([]model.Synonym, error)
	TouchSynonyms(ctx context.Context, ids []string) error
	DeleteSynonym(ctx context.Context, id string) error
	ListSynonyms(ctx context.Context, userID *string) ([]model.Synonym, error)

	// Search log operations. Logs are append-only.
	CreateSearchLog(ctx context.Context, log *model.SearchLog) (string, error)
	ListSearchLogs(ctx context.Context, filter SearchLogFilter) ([]model.SearchLog, int, error)
	DeleteSearchLogs(ctx context.Context, ids []string) (int, error)

	// Database management.
	Migrate(ctx context.Context) error
	Close() error
}

// CategorySource supplies a user's categories with subcategories still
// nested; callers expand them before indexing.
type CategorySource interface {
	GetUserCategories(ctx context.Context, userID string) ([]model.Account, error)
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// AddSynonymParams are the inputs to the exposed AddSynonym operation.
type AddSynonymParams struct {
	UserID          *string
	Keyword         string
	CategoryID      string
	CategoryName    string
	SubCategoryID   string
	SubCategoryName string
	Confidence      float64
	Source          model.SynonymSource
}
