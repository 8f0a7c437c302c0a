package model

import "time"

// LearningState is the state of a pending confirmation dialogue.
type LearningState string

// Learning states. Confirmed and Cancelled are terminal; reaching either
// deletes the stored context.
const (
	StateIdle                 LearningState = "IDLE"
	StateAwaitingConfirmation LearningState = "AWAITING_CONFIRMATION"
	StateAwaitingCorrection   LearningState = "AWAITING_CORRECTION"
	StateAwaitingSelection    LearningState = "AWAITING_SELECTION"
	StateConfirmed            LearningState = "CONFIRMED"
	StateCancelled            LearningState = "CANCELLED"
)

// Terminal reports whether the state ends the dialogue.
func (s LearningState) Terminal() bool {
	return s == StateConfirmed || s == StateCancelled
}

// learningTransitions enumerates the legal state transitions.
var learningTransitions = map[LearningState][]LearningState{
	StateIdle:                 {StateAwaitingConfirmation},
	StateAwaitingConfirmation: {StateConfirmed, StateAwaitingCorrection, StateCancelled},
	StateAwaitingCorrection:   {StateConfirmed, StateAwaitingSelection, StateCancelled},
	StateAwaitingSelection:    {StateConfirmed, StateAwaitingSelection, StateCancelled},
}

// CanTransition reports whether moving from s to next is legal.
func (s LearningState) CanTransition(next LearningState) bool {
	for _, allowed := range learningTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Detection is the Unknown-Term Detector's request for human confirmation.
type Detection struct {
	DetectedTerm         string  `json:"detectedTerm"`
	SuggestedCategoryID  string  `json:"suggestedCategoryId,omitempty"`
	SuggestedCategory    string  `json:"suggestedCategory"`
	SuggestedSubID       string  `json:"suggestedSubCategoryId,omitempty"`
	SuggestedSubCategory string  `json:"suggestedSubCategory,omitempty"`
	Reason               string  `json:"reason"`
	Confidence           float64 `json:"confidence"`
}

// AIHint carries the result of an upstream AI classifier, when one ran
// before the detector. A generic category label here triggers confirmation.
type AIHint struct {
	Provider        string  `json:"provider,omitempty"`
	Model           string  `json:"model,omitempty"`
	CategoryName    string  `json:"categoryName"`
	SubCategoryName string  `json:"subCategoryName,omitempty"`
	Confidence      float64 `json:"confidence"`
}

// LearningContext is the short-lived per-user record of an unresolved
// confirmation dialogue, keyed by phone/platform id in a TTL store.
type LearningContext struct {
	Timestamp            time.Time      `json:"timestamp"`
	State                LearningState  `json:"state"`
	DetectedTerm         string         `json:"detectedTerm"`
	SuggestedCategoryID  string         `json:"suggestedCategoryId,omitempty"`
	SuggestedCategory    string         `json:"suggestedCategory"`
	SuggestedSubID       string         `json:"suggestedSubCategoryId,omitempty"`
	SuggestedSubCategory string         `json:"suggestedSubCategory,omitempty"`
	OriginalText         string         `json:"originalText"`
	PendingMatches       []CategoryMatch `json:"pendingMatches,omitempty"`
	Confidence           float64        `json:"confidence"`
	HasOutrosCategory    bool           `json:"hasOutrosCategory"`
}
