package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gastobot/gastobot/internal/model"
	"github.com/gastobot/gastobot/internal/service"
)

const searchLogColumns = `id, user_id, query, normalized_query, matches,
	best_category, best_score, threshold, success, mode, response_time_ms,
	flow_step, total_steps, ai_provider, ai_model, ai_confidence,
	final_category, created_at`

// CreateSearchLog appends one search attempt record and returns its id.
// Rows are immutable after creation.
func (s *SQLiteStorage) CreateSearchLog(ctx context.Context, log *model.SearchLog) (string, error) {
	if err := validateContext(ctx); err != nil {
		return "", err
	}
	if err := validateSearchLog(log); err != nil {
		return "", err
	}

	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}

	var matchesJSON []byte
	if len(log.Matches) > 0 {
		var err error
		matchesJSON, err = json.Marshal(log.Matches)
		if err != nil {
			return "", fmt.Errorf("failed to encode matches: %w", err)
		}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO search_logs (`+searchLogColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		log.ID,
		log.UserID,
		log.Query,
		log.NormalizedQuery,
		nullable(string(matchesJSON)),
		nullable(log.BestCategory),
		log.BestScore,
		log.Threshold,
		log.Success,
		string(log.Mode),
		log.ResponseTimeMs,
		log.Tracking.FlowStep,
		log.Tracking.TotalSteps,
		nullable(log.Tracking.AIProvider),
		nullable(log.Tracking.AIModel),
		log.Tracking.AIConfidence,
		nullable(log.Tracking.FinalCategory),
		log.CreatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("failed to create search log: %w", err)
	}

	return log.ID, nil
}

// ListSearchLogs returns a page of search logs for a user, newest first,
// along with the total row count for the filter.
func (s *SQLiteStorage) ListSearchLogs(ctx context.Context, filter service.SearchLogFilter) ([]model.SearchLog, int, error) {
	if err := validateContext(ctx); err != nil {
		return nil, 0, err
	}
	if err := validateString(filter.UserID, "userID"); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}

	where := "WHERE user_id = ?"
	args := []any{filter.UserID}
	if filter.OnlyFailed {
		where += " AND success = 0"
	}

	var total int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM search_logs `+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count search logs: %w", err)
	}

	query := `SELECT ` + searchLogColumns + ` FROM search_logs ` + where +
		` ORDER BY created_at DESC, id LIMIT ? OFFSET ?`
	args = append(args, limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query search logs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var logs []model.SearchLog
	for rows.Next() {
		log, scanErr := scanSearchLog(rows)
		if scanErr != nil {
			return nil, 0, fmt.Errorf("failed to scan search log: %w", scanErr)
		}
		logs = append(logs, *log)
	}

	return logs, total, rows.Err()
}

// DeleteSearchLogs removes the given log rows and reports how many were
// deleted. This is the only way a log row ever disappears.
func (s *SQLiteStorage) DeleteSearchLogs(ctx context.Context, ids []string) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM search_logs WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete search logs: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return int(rowsAffected), nil
}

func scanSearchLog(row rowScanner) (*model.SearchLog, error) {
	var log model.SearchLog
	var matchesJSON, bestCategory, aiProvider, aiModel, finalCategory sql.NullString
	var mode string

	err := row.Scan(
		&log.ID,
		&log.UserID,
		&log.Query,
		&log.NormalizedQuery,
		&matchesJSON,
		&bestCategory,
		&log.BestScore,
		&log.Threshold,
		&log.Success,
		&mode,
		&log.ResponseTimeMs,
		&log.Tracking.FlowStep,
		&log.Tracking.TotalSteps,
		&aiProvider,
		&aiModel,
		&log.Tracking.AIConfidence,
		&finalCategory,
		&log.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	log.Mode = model.SearchMode(mode)
	log.BestCategory = bestCategory.String
	log.Tracking.AIProvider = aiProvider.String
	log.Tracking.AIModel = aiModel.String
	log.Tracking.FinalCategory = finalCategory.String

	if matchesJSON.Valid && matchesJSON.String != "" {
		if err := json.Unmarshal([]byte(matchesJSON.String), &log.Matches); err != nil {
			return nil, fmt.Errorf("corrupted matches payload: %w", err)
		}
	}

	return &log, nil
}
