package model

import (
	"fmt"
	"strings"
	"time"
)

// SynonymSource records how a synonym entered the store.
type SynonymSource string

// Synonym sources.
const (
	SourceUserConfirmed SynonymSource = "USER_CONFIRMED"
	SourceAISuggested   SynonymSource = "AI_SUGGESTED"
	SourceAutoLearned   SynonymSource = "AUTO_LEARNED"
	SourceImported      SynonymSource = "IMPORTED"
	SourceAdminApproved SynonymSource = "ADMIN_APPROVED"
)

// Valid reports whether the source is one of the known values.
func (s SynonymSource) Valid() bool {
	switch s {
	case SourceUserConfirmed, SourceAISuggested, SourceAutoLearned,
		SourceImported, SourceAdminApproved:
		return true
	}
	return false
}

// Synonym is a learned keyword-to-category mapping. A nil UserID marks a
// global synonym applied to all users; global synonyms match by category
// name because category ids differ per user. The pair (userID, keyword) is
// unique with upsert semantics on write.
type Synonym struct {
	LastUsedAt      *time.Time    `json:"lastUsedAt,omitempty"`
	UserID          *string       `json:"userId,omitempty"`
	ID              string        `json:"id"`
	Keyword         string        `json:"keyword"`
	CategoryID      string        `json:"categoryId,omitempty"`
	CategoryName    string        `json:"categoryName"`
	SubCategoryID   string        `json:"subCategoryId,omitempty"`
	SubCategoryName string        `json:"subCategoryName,omitempty"`
	Source          SynonymSource `json:"source"`
	Confidence      float64       `json:"confidence"`
	UsageCount      int           `json:"usageCount"`
	CreatedAt       time.Time     `json:"createdAt"`
}

// IsGlobal reports whether the synonym applies to all users.
func (s *Synonym) IsGlobal() bool {
	return s.UserID == nil || *s.UserID == ""
}

// Validate ensures the Synonym has valid data.
func (s *Synonym) Validate() error {
	if strings.TrimSpace(s.Keyword) == "" {
		return fmt.Errorf("keyword is required")
	}

	if strings.TrimSpace(s.CategoryName) == "" {
		return fmt.Errorf("category name is required")
	}

	if s.Confidence < 0.0 || s.Confidence > 1.0 {
		return fmt.Errorf("confidence must be between 0.0 and 1.0, got %.2f", s.Confidence)
	}

	if !s.Source.Valid() {
		return fmt.Errorf("unknown synonym source %q", s.Source)
	}

	return nil
}
