package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/gastobot/gastobot/internal/model"
)

func validateContext(ctx context.Context) error {
	if ctx == nil {
		return fmt.Errorf("context is required")
	}
	return ctx.Err()
}

func validateString(value, name string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", name)
	}
	return nil
}

func validateSynonym(syn *model.Synonym) error {
	if syn == nil {
		return fmt.Errorf("synonym is required")
	}
	return syn.Validate()
}

func validateSearchLog(log *model.SearchLog) error {
	if log == nil {
		return fmt.Errorf("search log is required")
	}
	if err := validateString(log.UserID, "userID"); err != nil {
		return err
	}
	if err := validateString(log.Query, "query"); err != nil {
		return err
	}
	switch log.Mode {
	case model.ModeBM25, model.ModeAI, model.ModeHybrid:
	default:
		return fmt.Errorf("unknown search mode %q", log.Mode)
	}
	return nil
}
