package matcher

import (
	"context"

	"github.com/gastobot/gastobot/internal/model"
	"github.com/gastobot/gastobot/internal/service"
)

// SynonymStore is the slice of the persistence layer the matcher consumes:
// reading personalized synonyms and refreshing their usage stats.
type SynonymStore interface {
	GetSynonymsForTokens(ctx context.Context, filter service.SynonymFilter) ([]model.Synonym, error)
	TouchSynonyms(ctx context.Context, ids []string) error
}
