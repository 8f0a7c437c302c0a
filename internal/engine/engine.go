// Package engine wires the matching and learning components behind the
// operations the rest of the system calls.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/gastobot/gastobot/internal/cache"
	"github.com/gastobot/gastobot/internal/common"
	"github.com/gastobot/gastobot/internal/index"
	"github.com/gastobot/gastobot/internal/learning"
	"github.com/gastobot/gastobot/internal/matcher"
	"github.com/gastobot/gastobot/internal/model"
	"github.com/gastobot/gastobot/internal/service"
	"github.com/gastobot/gastobot/internal/synonyms"
	"github.com/gastobot/gastobot/internal/text"
)

// Config assembles an Engine from its collaborators.
type Config struct {
	Cache   cache.Client
	Storage service.Storage
	Graph   *synonyms.Graph
	// Source is optional; when present RefreshUserCategories can pull and
	// expand categories without the caller doing it.
	Source service.CategorySource
	// Threshold is the operating score floor below which matches need
	// human confirmation. Zero means learning.DefaultOperatingThreshold.
	Threshold float64
}

// ConfirmationRequest is the outcome of DetectAndPrepareConfirmation.
type ConfirmationRequest struct {
	Context           *model.LearningContext
	Message           string
	NeedsConfirmation bool
}

// Engine is the matching-and-learning facade.
type Engine struct {
	index     *index.Index
	matcher   *matcher.Matcher
	detector  *learning.Detector
	machine   *learning.Machine
	storage   service.Storage
	source    service.CategorySource
	locks     *learning.KeyedMutex
	threshold float64
}

// New creates a fully wired engine.
func New(cfg Config) (*Engine, error) {
	if cfg.Cache == nil {
		return nil, fmt.Errorf("%w: cache client", common.ErrMissingConfig)
	}
	if cfg.Storage == nil {
		return nil, fmt.Errorf("%w: storage", common.ErrMissingConfig)
	}
	if cfg.Graph == nil {
		return nil, fmt.Errorf("%w: synonym graph", common.ErrMissingConfig)
	}

	threshold := cfg.Threshold
	if threshold <= 0 {
		threshold = learning.DefaultOperatingThreshold
	}

	idx := index.New(cfg.Cache)
	m := matcher.New(idx, cfg.Graph, cfg.Storage)
	contexts := learning.NewContextStore(cfg.Cache)

	return &Engine{
		index:     idx,
		matcher:   m,
		detector:  learning.NewDetector(m, cfg.Storage, threshold),
		machine:   learning.NewMachine(contexts, cfg.Storage),
		storage:   cfg.Storage,
		source:    cfg.Source,
		locks:     learning.NewKeyedMutex(),
		threshold: threshold,
	}, nil
}

// IndexUserCategories stores the expanded category list for a user.
func (e *Engine) IndexUserCategories(ctx context.Context, userID string, categories []model.UserCategory) error {
	return e.index.Index(ctx, userID, categories)
}

// RefreshUserCategories pulls the user's categories from the source,
// expands subcategories and reindexes.
func (e *Engine) RefreshUserCategories(ctx context.Context, userID string) error {
	if e.source == nil {
		return fmt.Errorf("%w: category source", common.ErrMissingConfig)
	}

	accounts, err := e.source.GetUserCategories(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load user categories: %w", err)
	}

	return e.index.Index(ctx, userID, model.ExpandCategories(accounts))
}

// InvalidateUserCategories clears the index for one user.
func (e *Engine) InvalidateUserCategories(ctx context.Context, userID string) error {
	return e.index.Invalidate(ctx, userID)
}

// FindSimilarCategories returns the ranked candidate categories for a
// query. Every attempt is recorded in the search log off the critical path;
// a missing index yields an empty slice, never an error.
func (e *Engine) FindSimilarCategories(ctx context.Context, query, userID string, opts matcher.Options) (model.Matches, error) {
	start := time.Now()

	matches, err := e.matcher.Match(ctx, query, userID, opts)
	if err != nil {
		return nil, err
	}

	e.recordSearch(userID, query, matches, opts, time.Since(start))

	return matches, nil
}

// AddSynonym upserts a synonym row; duplicate (userID, keyword) pairs
// update in place.
func (e *Engine) AddSynonym(ctx context.Context, params service.AddSynonymParams) (*model.Synonym, error) {
	syn := &model.Synonym{
		UserID:          params.UserID,
		Keyword:         params.Keyword,
		CategoryID:      params.CategoryID,
		CategoryName:    params.CategoryName,
		SubCategoryID:   params.SubCategoryID,
		SubCategoryName: params.SubCategoryName,
		Confidence:      params.Confidence,
		Source:          params.Source,
	}

	return e.storage.UpsertSynonym(ctx, syn)
}

// DetectAndPrepareConfirmation decides whether the text needs human
// confirmation and, when it does, opens the learning dialogue and returns
// the prompt to send.
func (e *Engine) DetectAndPrepareConfirmation(ctx context.Context, txt, userID, phoneID string, aiHint *model.AIHint) (*ConfirmationRequest, error) {
	det, err := e.detector.Detect(ctx, txt, userID, aiHint)
	if err != nil {
		return nil, err
	}
	if det == nil {
		return &ConfirmationRequest{NeedsConfirmation: false}, nil
	}

	unlock := e.locks.Lock(phoneID)
	defer unlock()

	lc, message, err := e.machine.Begin(ctx, phoneID, det, txt, e.hasGenericCategory(ctx, userID))
	if err != nil {
		return nil, err
	}

	return &ConfirmationRequest{
		NeedsConfirmation: true,
		Message:           message,
		Context:           lc,
	}, nil
}

// ProcessResponse handles a reply to a pending confirmation. Replies for
// the same phone id are serialized; different users proceed in parallel.
func (e *Engine) ProcessResponse(ctx context.Context, phoneID, reply, userID string) (*learning.ResponseResult, error) {
	unlock := e.locks.Lock(phoneID)
	defer unlock()

	return e.machine.HandleReply(ctx, phoneID, reply, userID)
}

// ProcessCorrection handles free-text or numeric correction input against
// the user's category list.
func (e *Engine) ProcessCorrection(ctx context.Context, phoneID, input, userID string, categories []model.UserCategory) (*learning.CorrectionResult, error) {
	unlock := e.locks.Lock(phoneID)
	defer unlock()

	if categories == nil {
		categories, _ = e.index.Get(ctx, userID)
	}

	return e.machine.HandleCorrection(ctx, phoneID, input, userID, categories)
}

// hasGenericCategory reports whether the user has a catch-all category
// like "Outros" available as a fallback target.
func (e *Engine) hasGenericCategory(ctx context.Context, userID string) bool {
	categories, err := e.index.Get(ctx, userID)
	if err != nil {
		return false
	}

	for i := range categories {
		if learning.IsGenericLabel(categories[i].Name) {
			return true
		}
	}
	return false
}

// recordSearch writes the search log off the caller's critical path.
// Logging must never block or fail the matching path, so the write runs on
// its own goroutine with its own deadline and retries, and errors only log.
func (e *Engine) recordSearch(userID, query string, matches model.Matches, opts matcher.Options, elapsed time.Duration) {
	if text.Normalize(query) == "" {
		return
	}

	entry := &model.SearchLog{
		UserID:          userID,
		Query:           query,
		NormalizedQuery: text.Normalize(query),
		Matches:         matches,
		Threshold:       e.threshold,
		Mode:            model.ModeBM25,
		ResponseTimeMs:  elapsed.Milliseconds(),
	}

	if top := matches.Top(); top != nil {
		entry.BestCategory = top.CategoryName
		entry.BestScore = top.Score
		entry.Success = top.Score >= e.threshold
	}

	if opts.MinScore > 0 {
		entry.Threshold = opts.MinScore
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		err := common.WithRetry(ctx, func() error {
			_, createErr := e.storage.CreateSearchLog(ctx, entry)
			return createErr
		}, service.RetryOptions{MaxAttempts: 2})
		if err != nil {
			common.LogError(err, "failed to record search log",
				common.Fields{"user_id": userID, "query": query})
		}
	}()
}
