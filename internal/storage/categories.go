package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/evanko/ledgerbot/internal/common"
	"github.com/evanko/ledgerbot/internal/model"
)

// ListCategories returns all categories of a kind ordered by their sort hint.
func (s *SQLiteStorage) ListCategories(ctx context.Context, kind model.Kind) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateKind(kind); err != nil {
		return nil, err
	}

	query := `
		SELECT id, kind, code, display_name, sort_order, created_at
		FROM categories
		WHERE kind = ?
		ORDER BY sort_order ASC, code ASC`

	rows, err := s.db.QueryContext(ctx, query, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		var cat model.Category
		if err := rows.Scan(&cat.ID, &cat.Kind, &cat.Code, &cat.DisplayName, &cat.Order, &cat.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, cat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

// GetCategoryByCode returns the category with the exact (kind, code) pair.
func (s *SQLiteStorage) GetCategoryByCode(ctx context.Context, kind model.Kind, code string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(code, "code"); err != nil {
		return nil, err
	}

	query := `
		SELECT id, kind, code, display_name, sort_order, created_at
		FROM categories
		WHERE kind = ? AND code = ?`

	return s.scanCategory(s.db.QueryRowContext(ctx, query, kind, code))
}

// GetCategoryByName returns the category whose display name matches
// case-insensitively within the kind.
func (s *SQLiteStorage) GetCategoryByName(ctx context.Context, kind model.Kind, name string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	query := `
		SELECT id, kind, code, display_name, sort_order, created_at
		FROM categories
		WHERE kind = ? AND lower(display_name) = lower(?)`

	return s.scanCategory(s.db.QueryRowContext(ctx, query, kind, name))
}

func (s *SQLiteStorage) scanCategory(row *sql.Row) (*model.Category, error) {
	var cat model.Category
	err := row.Scan(&cat.ID, &cat.Kind, &cat.Code, &cat.DisplayName, &cat.Order, &cat.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}
	return &cat, nil
}

// CategoryCodeExists reports whether the (kind, code) pair is taken.
func (s *SQLiteStorage) CategoryCodeExists(ctx context.Context, kind model.Kind, code string) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}
	if err := validateString(code, "code"); err != nil {
		return false, err
	}

	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM categories WHERE kind = ? AND code = ?`, kind, code,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check category code: %w", err)
	}
	return true, nil
}

// MaxCategoryOrder returns the highest sort hint among categories of a kind,
// or 0 when none exist.
func (s *SQLiteStorage) MaxCategoryOrder(ctx context.Context, kind model.Kind) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateKind(kind); err != nil {
		return 0, err
	}

	var maxOrder int
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(sort_order), 0) FROM categories WHERE kind = ?`, kind,
	).Scan(&maxOrder)
	if err != nil {
		return 0, fmt.Errorf("failed to query max order: %w", err)
	}
	return maxOrder, nil
}

// CreateCategory inserts a category. The unique indexes on (kind, code) and
// (kind, lower(display_name)) are the final arbiter of uniqueness; violations
// come back as common.ErrDuplicateEntry.
func (s *SQLiteStorage) CreateCategory(ctx context.Context, category *model.Category) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if category == nil {
		return fmt.Errorf("%w: category", ErrNilParameter)
	}
	if err := validateKind(category.Kind); err != nil {
		return err
	}
	if err := validateString(category.Code, "code"); err != nil {
		return err
	}
	if err := validateString(category.DisplayName, "displayName"); err != nil {
		return err
	}

	if category.ID == "" {
		category.ID = uuid.NewString()
	}
	if category.CreatedAt.IsZero() {
		category.CreatedAt = time.Now()
	}

	insert := `
		INSERT INTO categories (id, kind, code, display_name, sort_order, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, insert,
		category.ID, category.Kind, category.Code, category.DisplayName, category.Order, category.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to create category: %w", mapConstraintErr(err))
	}

	slog.Info("created category", "kind", category.Kind, "code", category.Code)
	return nil
}

// RenameCategory updates only the display name; code and order never change.
func (s *SQLiteStorage) RenameCategory(ctx context.Context, kind model.Kind, code, newName string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(code, "code"); err != nil {
		return err
	}
	if err := validateString(newName, "newName"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE categories SET display_name = ? WHERE kind = ? AND code = ?`,
		newName, kind, code,
	)
	if err != nil {
		return fmt.Errorf("failed to rename category: %w", mapConstraintErr(err))
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rename result: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}

	slog.Info("renamed category", "kind", kind, "code", code, "name", newName)
	return nil
}

// DeleteCategory removes a category row. Callers are responsible for the
// in-use guard; transactions that still reference the row keep their data
// and fall back to the uncategorized label on reads.
func (s *SQLiteStorage) DeleteCategory(ctx context.Context, kind model.Kind, code string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(code, "code"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM categories WHERE kind = ? AND code = ?`, kind, code,
	)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}

	slog.Info("deleted category", "kind", kind, "code", code)
	return nil
}

// EnsureCategories inserts any seed categories that are not present yet,
// keyed by (kind, code). Idempotent; safe to call on every startup.
func (s *SQLiteStorage) EnsureCategories(ctx context.Context, seeds []model.Category) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO categories (id, kind, code, display_name, sort_order, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare seed insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	inserted := int64(0)
	for _, seed := range seeds {
		if err := validateKind(seed.Kind); err != nil {
			return err
		}
		res, execErr := stmt.ExecContext(ctx,
			uuid.NewString(), seed.Kind, seed.Code, seed.DisplayName, seed.Order, now,
		)
		if execErr != nil {
			return fmt.Errorf("failed to seed category %s/%s: %w", seed.Kind, seed.Code, execErr)
		}
		n, _ := res.RowsAffected()
		inserted += n
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit seed categories: %w", err)
	}

	if inserted > 0 {
		slog.Info("seeded default categories", "inserted", inserted)
	}
	return nil
}

// CountTransactionsByCategory counts ledger records referencing a category.
func (s *SQLiteStorage) CountTransactionsByCategory(ctx context.Context, categoryID string) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateString(categoryID, "categoryID"); err != nil {
		return 0, err
	}

	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE category_id = ?`, categoryID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}
