package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gastobot/gastobot/internal/common"
	"github.com/gastobot/gastobot/internal/model"
	"github.com/gastobot/gastobot/internal/service"
)

const synonymColumns = `id, user_id, keyword, category_id, category_name,
	sub_category_id, sub_category_name, confidence, usage_count, source,
	last_used_at, created_at`

// globalUserID is how a nil (global) user id is stored, so the
// (user_id, keyword) uniqueness constraint covers global rows too.
const globalUserID = ""

func storedUserID(userID *string) string {
	if userID == nil {
		return globalUserID
	}
	return *userID
}

// UpsertSynonym inserts a synonym or, when the (userID, keyword) pair
// already exists, updates the existing row in place. The usage counter of
// an existing row survives the update.
func (s *SQLiteStorage) UpsertSynonym(ctx context.Context, syn *model.Synonym) (*model.Synonym, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateSynonym(syn); err != nil {
		return nil, err
	}

	if syn.ID == "" {
		syn.ID = uuid.NewString()
	}
	if syn.CreatedAt.IsZero() {
		syn.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO synonyms (`+synonymColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, keyword) DO UPDATE SET
			category_id = excluded.category_id,
			category_name = excluded.category_name,
			sub_category_id = excluded.sub_category_id,
			sub_category_name = excluded.sub_category_name,
			confidence = excluded.confidence,
			source = excluded.source,
			last_used_at = COALESCE(excluded.last_used_at, synonyms.last_used_at)
	`,
		syn.ID,
		storedUserID(syn.UserID),
		syn.Keyword,
		nullable(syn.CategoryID),
		syn.CategoryName,
		nullable(syn.SubCategoryID),
		nullable(syn.SubCategoryName),
		syn.Confidence,
		syn.UsageCount,
		string(syn.Source),
		syn.LastUsedAt,
		syn.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert synonym: %w", err)
	}

	// Read the row back so callers see the surviving id and usage count
	// when the insert resolved to an update.
	return s.GetSynonym(ctx, syn.UserID, syn.Keyword)
}

// GetSynonym finds the synonym for a keyword, preferring a personal row
// over a global one. Absence yields common.ErrNotFound.
func (s *SQLiteStorage) GetSynonym(ctx context.Context, userID *string, keyword string) (*model.Synonym, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(keyword, "keyword"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT `+synonymColumns+`
		FROM synonyms
		WHERE (user_id = ? OR user_id = '') AND keyword = ?
		ORDER BY user_id DESC
		LIMIT 1
	`, storedUserID(userID), keyword)

	syn, err := scanSynonym(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get synonym: %w", err)
	}
	return syn, nil
}

// GetSynonymsForTokens returns personal and global synonyms whose keyword
// contains any of the given tokens, strongest first.
func (s *SQLiteStorage) GetSynonymsForTokens(ctx context.Context, filter service.SynonymFilter) ([]model.Synonym, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if len(filter.Tokens) == 0 {
		return nil, nil
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	var sb strings.Builder
	args := make([]any, 0, len(filter.Tokens)+2)

	sb.WriteString(`SELECT ` + synonymColumns + ` FROM synonyms WHERE (user_id = ? OR user_id = '') AND (`)
	args = append(args, filter.UserID)

	for i, token := range filter.Tokens {
		if i > 0 {
			sb.WriteString(" OR ")
		}
		sb.WriteString("keyword LIKE ?")
		args = append(args, "%"+token+"%")
	}

	sb.WriteString(`) ORDER BY confidence DESC, usage_count DESC LIMIT ?`)
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query synonyms: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var syns []model.Synonym
	for rows.Next() {
		syn, scanErr := scanSynonym(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan synonym: %w", scanErr)
		}
		syns = append(syns, *syn)
	}

	return syns, rows.Err()
}

// TouchSynonyms increments the usage counter and refreshes last_used_at
// for every given synonym id.
func (s *SQLiteStorage) TouchSynonyms(ctx context.Context, ids []string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, 0, len(ids)+1)
	args = append(args, time.Now().UTC())
	for _, id := range ids {
		args = append(args, id)
	}

	_, err := s.db.ExecContext(ctx, `
		UPDATE synonyms
		SET usage_count = usage_count + 1, last_used_at = ?
		WHERE id IN (`+placeholders+`)
	`, args...)
	if err != nil {
		return fmt.Errorf("failed to touch synonyms: %w", err)
	}

	return nil
}

// DeleteSynonym removes a synonym by id.
func (s *SQLiteStorage) DeleteSynonym(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM synonyms WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete synonym: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return common.ErrNotFound
	}

	return nil
}

// ListSynonyms returns all synonyms for a user, or all global synonyms
// when userID is nil.
func (s *SQLiteStorage) ListSynonyms(ctx context.Context, userID *string) ([]model.Synonym, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+synonymColumns+`
		FROM synonyms
		WHERE user_id = ?
		ORDER BY keyword
	`, storedUserID(userID))
	if err != nil {
		return nil, fmt.Errorf("failed to query synonyms: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var syns []model.Synonym
	for rows.Next() {
		syn, scanErr := scanSynonym(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan synonym: %w", scanErr)
		}
		syns = append(syns, *syn)
	}

	return syns, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSynonym(row rowScanner) (*model.Synonym, error) {
	var syn model.Synonym
	var userID string
	var categoryID, subCategoryID, subCategoryName sql.NullString
	var source string
	var lastUsedAt sql.NullTime

	err := row.Scan(
		&syn.ID,
		&userID,
		&syn.Keyword,
		&categoryID,
		&syn.CategoryName,
		&subCategoryID,
		&subCategoryName,
		&syn.Confidence,
		&syn.UsageCount,
		&source,
		&lastUsedAt,
		&syn.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if userID != globalUserID {
		syn.UserID = &userID
	}
	syn.CategoryID = categoryID.String
	syn.SubCategoryID = subCategoryID.String
	syn.SubCategoryName = subCategoryName.String
	syn.Source = model.SynonymSource(source)
	if lastUsedAt.Valid {
		t := lastUsedAt.Time
		syn.LastUsedAt = &t
	}

	return &syn, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
