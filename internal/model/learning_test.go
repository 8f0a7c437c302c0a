package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLearningStateTerminal(t *testing.T) {
	assert.True(t, StateConfirmed.Terminal())
	assert.True(t, StateCancelled.Terminal())
	assert.False(t, StateIdle.Terminal())
	assert.False(t, StateAwaitingConfirmation.Terminal())
	assert.False(t, StateAwaitingCorrection.Terminal())
	assert.False(t, StateAwaitingSelection.Terminal())
}

func TestLearningStateCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from LearningState
		to   LearningState
		want bool
	}{
		{name: "idle to awaiting confirmation", from: StateIdle, to: StateAwaitingConfirmation, want: true},
		{name: "confirmation to confirmed", from: StateAwaitingConfirmation, to: StateConfirmed, want: true},
		{name: "confirmation to correction", from: StateAwaitingConfirmation, to: StateAwaitingCorrection, want: true},
		{name: "confirmation to cancelled", from: StateAwaitingConfirmation, to: StateCancelled, want: true},
		{name: "correction to selection", from: StateAwaitingCorrection, to: StateAwaitingSelection, want: true},
		{name: "correction to confirmed", from: StateAwaitingCorrection, to: StateConfirmed, want: true},
		{name: "selection stays on bad pick", from: StateAwaitingSelection, to: StateAwaitingSelection, want: true},
		{name: "selection to confirmed", from: StateAwaitingSelection, to: StateConfirmed, want: true},
		{name: "idle cannot confirm", from: StateIdle, to: StateConfirmed, want: false},
		{name: "confirmation cannot skip to selection", from: StateAwaitingConfirmation, to: StateAwaitingSelection, want: false},
		{name: "terminal states are dead ends", from: StateConfirmed, to: StateAwaitingConfirmation, want: false},
		{name: "cancelled is a dead end", from: StateCancelled, to: StateIdle, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransition(tt.to))
		})
	}
}
