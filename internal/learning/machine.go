package learning

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gastobot/gastobot/internal/model"
	"github.com/gastobot/gastobot/internal/text"
)

// SynonymWriter persists learned synonyms.
type SynonymWriter interface {
	UpsertSynonym(ctx context.Context, syn *model.Synonym) (*model.Synonym, error)
}

// ResponseResult is the outcome of processing a confirmation reply.
type ResponseResult struct {
	Action         string
	Message        string
	OriginalText   string
	Processed      bool
	ShouldContinue bool
}

// CorrectionResult is the outcome of processing a correction reply.
type CorrectionResult struct {
	Message        string
	OriginalText   string
	Success        bool
	NeedsSelection bool
	ShouldContinue bool
}

// Response actions.
const (
	ActionConfirmed           = "confirmed"
	ActionCorrectionRequested = "correction_requested"
	ActionCancelled           = "cancelled"
	ActionNone                = "none"
)

// Reply keyword sets, compared after normalization.
var (
	confirmWords = map[string]struct{}{
		"sim": {}, "isso": {}, "exato": {}, "certo": {}, "confirmo": {},
		"confirmar": {}, "ok": {}, "claro": {}, "pode ser": {}, "yes": {},
	}
	rejectWords = map[string]struct{}{
		"nao": {}, "errado": {}, "corrigir": {}, "outra": {}, "mudar": {},
		"trocar": {}, "no": {},
	}
	cancelWords = map[string]struct{}{
		"cancelar": {}, "cancela": {}, "esquece": {}, "deixa": {},
		"deixa pra la": {}, "sair": {}, "parar": {},
	}
)

// Machine drives the confirmation dialogue: it owns the pending contexts
// and turns confirm/reject/correct replies into synonym store writes.
type Machine struct {
	contexts *ContextStore
	synonyms SynonymWriter
}

// NewMachine creates a learning state machine.
func NewMachine(contexts *ContextStore, synonyms SynonymWriter) *Machine {
	return &Machine{
		contexts: contexts,
		synonyms: synonyms,
	}
}

// Begin moves a detection into AWAITING_CONFIRMATION: persists the context
// with its TTL and returns the prompt to send to the user.
func (m *Machine) Begin(ctx context.Context, phoneID string, det *model.Detection, originalText string, hasOutros bool) (*model.LearningContext, string, error) {
	lc := &model.LearningContext{
		State:                model.StateAwaitingConfirmation,
		DetectedTerm:         det.DetectedTerm,
		SuggestedCategoryID:  det.SuggestedCategoryID,
		SuggestedCategory:    det.SuggestedCategory,
		SuggestedSubID:       det.SuggestedSubID,
		SuggestedSubCategory: det.SuggestedSubCategory,
		OriginalText:         originalText,
		Confidence:           det.Confidence,
		Timestamp:            time.Now().UTC(),
		// Without a concrete suggestion there is nothing to confirm, so the
		// prompt degrades to asking for the category even when a catch-all
		// fallback exists.
		HasOutrosCategory: hasOutros && det.SuggestedCategory != "",
	}

	if err := m.contexts.Save(ctx, phoneID, lc); err != nil {
		return nil, "", err
	}

	return lc, confirmationPrompt(lc), nil
}

// advance moves the context to the next state, enforcing the transition
// table.
func advance(lc *model.LearningContext, next model.LearningState) error {
	if !lc.State.CanTransition(next) {
		return fmt.Errorf("cannot move dialogue from %s to %s", lc.State, next)
	}
	lc.State = next
	return nil
}

// HandleReply processes a reply to a pending confirmation. Unrecognized
// replies leave the state unchanged and come back with Processed == false
// so the caller can re-prompt or escalate.
func (m *Machine) HandleReply(ctx context.Context, phoneID, reply, userID string) (*ResponseResult, error) {
	lc, err := m.contexts.Get(ctx, phoneID)
	if err != nil {
		return nil, err
	}
	if lc == nil {
		return &ResponseResult{Processed: false, Action: ActionNone}, nil
	}

	kind := classifyReply(reply, lc)

	if kind == replyCancel {
		if err := m.contexts.Delete(ctx, phoneID); err != nil {
			slog.Warn("failed to delete learning context", "phone_id", phoneID, "error", err)
		}
		return &ResponseResult{
			Processed: true,
			Action:    ActionCancelled,
			Message:   cancelledMessage(),
		}, nil
	}

	if lc.State != model.StateAwaitingConfirmation {
		return &ResponseResult{Processed: false, Action: ActionNone}, nil
	}

	switch kind {
	case replyConfirm:
		// A confirm word means nothing when no category was suggested;
		// the dialogue keeps waiting for the actual category.
		if lc.SuggestedCategory == "" {
			return &ResponseResult{Processed: false, Action: ActionNone}, nil
		}
		return m.confirm(ctx, phoneID, lc, userID)
	case replyReject:
		if err := advance(lc, model.StateAwaitingCorrection); err != nil {
			return nil, err
		}
		if err := m.contexts.Save(ctx, phoneID, lc); err != nil {
			return nil, err
		}
		return &ResponseResult{
			Processed: true,
			Action:    ActionCorrectionRequested,
			Message:   correctionPrompt(lc.DetectedTerm),
		}, nil
	default:
		return &ResponseResult{Processed: false, Action: ActionNone}, nil
	}
}

// confirm finishes the dialogue on an affirmative reply. A generic
// suggestion is acknowledged but never written, so catch-all categories
// don't pollute the learned synonyms.
func (m *Machine) confirm(ctx context.Context, phoneID string, lc *model.LearningContext, userID string) (*ResponseResult, error) {
	if err := advance(lc, model.StateConfirmed); err != nil {
		return nil, err
	}

	if !IsGenericLabel(lc.SuggestedCategory) && !IsGenericLabel(lc.SuggestedSubCategory) {
		syn := &model.Synonym{
			UserID:          &userID,
			Keyword:         lc.DetectedTerm,
			CategoryID:      lc.SuggestedCategoryID,
			CategoryName:    lc.SuggestedCategory,
			SubCategoryID:   lc.SuggestedSubID,
			SubCategoryName: lc.SuggestedSubCategory,
			Confidence:      1.0,
			Source:          model.SourceUserConfirmed,
		}
		if _, err := m.synonyms.UpsertSynonym(ctx, syn); err != nil {
			return nil, fmt.Errorf("failed to save confirmed synonym: %w", err)
		}
	}

	if err := m.contexts.Delete(ctx, phoneID); err != nil {
		slog.Warn("failed to delete learning context", "phone_id", phoneID, "error", err)
	}

	return &ResponseResult{
		Processed:      true,
		Action:         ActionConfirmed,
		Message:        acknowledgedMessage(lc.SuggestedCategory, lc.SuggestedSubCategory),
		ShouldContinue: true,
		OriginalText:   lc.OriginalText,
	}, nil
}

// HandleCorrection processes free-text or numeric correction input while
// the dialogue is in a correction state.
func (m *Machine) HandleCorrection(ctx context.Context, phoneID, input, userID string, categories []model.UserCategory) (*CorrectionResult, error) {
	lc, err := m.contexts.Get(ctx, phoneID)
	if err != nil {
		return nil, err
	}
	if lc == nil {
		return &CorrectionResult{
			Success: false,
			Message: "Não há nenhuma correção pendente.",
		}, nil
	}

	if isKeyword(input, cancelWords) {
		if err := m.contexts.Delete(ctx, phoneID); err != nil {
			slog.Warn("failed to delete learning context", "phone_id", phoneID, "error", err)
		}
		return &CorrectionResult{Success: false, Message: cancelledMessage()}, nil
	}

	// Numeric selection against a previously shown candidate list.
	if lc.State == model.StateAwaitingSelection && len(lc.PendingMatches) > 0 {
		if n, ok := parseSelection(input); ok {
			if n < 1 || n > len(lc.PendingMatches) {
				return &CorrectionResult{
					Success:        false,
					NeedsSelection: true,
					Message:        selectionRangeMessage(len(lc.PendingMatches)),
				}, nil
			}
			return m.resolveCorrection(ctx, phoneID, lc, userID, lc.PendingMatches[n-1])
		}
	}

	matches := FindCategoryMatches(input, categories)

	switch len(matches) {
	case 0:
		return &CorrectionResult{
			Success: false,
			Message: categoryListPrompt(lc.DetectedTerm, categories),
		}, nil
	case 1:
		return m.resolveCorrection(ctx, phoneID, lc, userID, matches[0])
	default:
		if err := advance(lc, model.StateAwaitingSelection); err != nil {
			return nil, err
		}
		lc.PendingMatches = matches
		if err := m.contexts.Save(ctx, phoneID, lc); err != nil {
			return nil, err
		}
		return &CorrectionResult{
			Success:        false,
			NeedsSelection: true,
			Message:        selectionPrompt(matches),
		}, nil
	}
}

// resolveCorrection writes the corrected synonym and closes the dialogue.
// The rejected suggestion is kept in the logs for later analysis.
func (m *Machine) resolveCorrection(ctx context.Context, phoneID string, lc *model.LearningContext, userID string, target model.CategoryMatch) (*CorrectionResult, error) {
	if err := advance(lc, model.StateConfirmed); err != nil {
		return nil, err
	}

	slog.Info("correction learned",
		"user_id", userID,
		"term", lc.DetectedTerm,
		"rejected_category", lc.SuggestedCategory,
		"selected_category", target.CategoryName,
		"selected_subcategory", target.SubCategoryName)

	if !IsGenericLabel(target.CategoryName) && !IsGenericLabel(target.SubCategoryName) {
		syn := &model.Synonym{
			UserID:          &userID,
			Keyword:         lc.DetectedTerm,
			CategoryID:      target.CategoryID,
			CategoryName:    target.CategoryName,
			SubCategoryID:   target.SubCategoryID,
			SubCategoryName: target.SubCategoryName,
			Confidence:      1.0,
			Source:          model.SourceUserConfirmed,
		}
		if _, err := m.synonyms.UpsertSynonym(ctx, syn); err != nil {
			return nil, fmt.Errorf("failed to save corrected synonym: %w", err)
		}
	}

	if err := m.contexts.Delete(ctx, phoneID); err != nil {
		slog.Warn("failed to delete learning context", "phone_id", phoneID, "error", err)
	}

	return &CorrectionResult{
		Success:        true,
		Message:        learnedMessage(lc.DetectedTerm, target.CategoryName, target.SubCategoryName),
		OriginalText:   lc.OriginalText,
		ShouldContinue: true,
	}, nil
}

type replyKind int

const (
	replyUnknown replyKind = iota
	replyConfirm
	replyReject
	replyCancel
)

// classifyReply maps a reply onto confirm/reject/cancel. Numeric replies
// follow the option numbering of the prompt, which differs when the user
// has no generic fallback category.
func classifyReply(reply string, lc *model.LearningContext) replyKind {
	norm := text.Normalize(reply)

	if lc.State == model.StateAwaitingConfirmation {
		if lc.HasOutrosCategory {
			switch norm {
			case "1":
				return replyConfirm
			case "2":
				return replyReject
			case "3":
				return replyCancel
			}
		} else {
			switch norm {
			case "1":
				return replyReject
			case "2":
				return replyCancel
			}
		}
	}

	if _, ok := confirmWords[norm]; ok {
		return replyConfirm
	}
	if _, ok := rejectWords[norm]; ok {
		return replyReject
	}
	if _, ok := cancelWords[norm]; ok {
		return replyCancel
	}

	return replyUnknown
}

func isKeyword(reply string, words map[string]struct{}) bool {
	_, ok := words[text.Normalize(reply)]
	return ok
}
