package model

import "time"

// SearchMode identifies which path produced a search result.
type SearchMode string

// Search modes.
const (
	ModeBM25   SearchMode = "BM25"
	ModeAI     SearchMode = "AI"
	ModeHybrid SearchMode = "HYBRID"
)

// SearchTracking carries the multi-step flow context of a search attempt,
// including AI fallback details when a fallback occurred.
type SearchTracking struct {
	AIProvider    string  `json:"aiProvider,omitempty"`
	AIModel       string  `json:"aiModel,omitempty"`
	FinalCategory string  `json:"finalCategory,omitempty"`
	AIConfidence  float64 `json:"aiConfidence,omitempty"`
	FlowStep      int     `json:"flowStep,omitempty"`
	TotalSteps    int     `json:"totalSteps,omitempty"`
}

// SearchLog is an immutable, append-only record of one match attempt.
// Rows are never mutated after creation and are removed only by explicit
// administrative batch deletes.
type SearchLog struct {
	CreatedAt       time.Time      `json:"createdAt"`
	ID              string         `json:"id"`
	UserID          string         `json:"userId"`
	Query           string         `json:"query"`
	NormalizedQuery string         `json:"normalizedQuery"`
	BestCategory    string         `json:"bestCategory,omitempty"`
	Mode            SearchMode     `json:"mode"`
	Matches         []CategoryMatch `json:"matches,omitempty"`
	Tracking        SearchTracking `json:"tracking,omitempty"`
	BestScore       float64        `json:"bestScore"`
	Threshold       float64        `json:"threshold"`
	ResponseTimeMs  int64          `json:"responseTimeMs"`
	Success         bool           `json:"success"`
}
