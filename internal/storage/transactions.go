package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/evanko/ledgerbot/internal/model"
	"github.com/evanko/ledgerbot/internal/service"
)

// RecordTransaction appends an immutable ledger record with a server-assigned
// id and timestamp.
func (s *SQLiteStorage) RecordTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(txn); err != nil {
		return err
	}

	if txn.ID == "" {
		txn.ID = uuid.NewString()
	}
	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = time.Now()
	}

	insert := `
		INSERT INTO transactions (id, user_id, category_id, kind, amount_cents, comment, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, insert,
		txn.ID, txn.UserID, txn.CategoryID, txn.Kind, toCents(txn.Amount), txn.Comment, txn.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to record transaction: %w", mapConstraintErr(err))
	}

	slog.Debug("recorded transaction",
		"kind", txn.Kind,
		"amount", txn.Amount,
		"category_id", txn.CategoryID)
	return nil
}

// GetTransactionPage returns up to limit most-recent-first entries starting
// at offset, plus whether older records remain. One extra row is requested
// to decide hasMore without a second query.
func (s *SQLiteStorage) GetTransactionPage(ctx context.Context, userID string, limit, offset int) ([]service.TransactionEntry, bool, error) {
	if err := validateContext(ctx); err != nil {
		return nil, false, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, false, err
	}
	if limit <= 0 {
		return nil, false, fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT t.id, t.kind, t.amount_cents, t.comment, t.created_at,
		       COALESCE(c.display_name, 'uncategorized')
		FROM transactions t
		LEFT JOIN categories c ON c.id = t.category_id
		WHERE t.user_id = ?
		ORDER BY t.created_at DESC, t.id DESC
		LIMIT ? OFFSET ?`

	rows, err := s.db.QueryContext(ctx, query, userID, limit+1, offset)
	if err != nil {
		return nil, false, fmt.Errorf("failed to query transaction page: %w", err)
	}
	defer rows.Close()

	entries, err := scanEntries(rows)
	if err != nil {
		return nil, false, err
	}

	hasMore := len(entries) > limit
	if hasMore {
		entries = entries[:limit]
	}
	return entries, hasMore, nil
}

// GetTransactionsByRange returns a user's entries inside [start, end],
// oldest first, as used by exports.
func (s *SQLiteStorage) GetTransactionsByRange(ctx context.Context, userID string, start, end time.Time) ([]service.TransactionEntry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: %v > %v", ErrInvalidDateRange, start, end)
	}

	query := `
		SELECT t.id, t.kind, t.amount_cents, t.comment, t.created_at,
		       COALESCE(c.display_name, 'uncategorized')
		FROM transactions t
		LEFT JOIN categories c ON c.id = t.category_id
		WHERE t.user_id = ? AND t.created_at BETWEEN ? AND ?
		ORDER BY t.created_at ASC, t.id ASC`

	rows, err := s.db.QueryContext(ctx, query, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions by range: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// SumAmountsByKind totals income and expense amounts within [start, end].
func (s *SQLiteStorage) SumAmountsByKind(ctx context.Context, userID string, start, end time.Time) (income, expense decimal.Decimal, err error) {
	zero := decimal.Zero
	if err := validateContext(ctx); err != nil {
		return zero, zero, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return zero, zero, err
	}
	if end.Before(start) {
		return zero, zero, fmt.Errorf("%w: %v > %v", ErrInvalidDateRange, start, end)
	}

	query := `
		SELECT
			COALESCE(SUM(CASE WHEN kind = 'income' THEN amount_cents ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN kind = 'expense' THEN amount_cents ELSE 0 END), 0)
		FROM transactions
		WHERE user_id = ? AND created_at BETWEEN ? AND ?`

	var incomeCents, expenseCents int64
	if err := s.db.QueryRowContext(ctx, query, userID, start, end).Scan(&incomeCents, &expenseCents); err != nil {
		return zero, zero, fmt.Errorf("failed to sum amounts: %w", err)
	}

	return fromCents(incomeCents), fromCents(expenseCents), nil
}

// SumExpensesByCategory groups expense totals by category display name within
// [start, end], largest first. Records with a broken category link fall into
// an "uncategorized" bucket.
func (s *SQLiteStorage) SumExpensesByCategory(ctx context.Context, userID string, start, end time.Time) ([]service.CategoryTotal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: %v > %v", ErrInvalidDateRange, start, end)
	}

	query := `
		SELECT COALESCE(c.display_name, 'uncategorized'), SUM(t.amount_cents)
		FROM transactions t
		LEFT JOIN categories c ON c.id = t.category_id
		WHERE t.user_id = ? AND t.kind = 'expense' AND t.created_at BETWEEN ? AND ?
		GROUP BY COALESCE(c.display_name, 'uncategorized')
		ORDER BY SUM(t.amount_cents) DESC`

	rows, err := s.db.QueryContext(ctx, query, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query expense totals: %w", err)
	}
	defer rows.Close()

	var totals []service.CategoryTotal
	for rows.Next() {
		var name string
		var cents int64
		if err := rows.Scan(&name, &cents); err != nil {
			return nil, fmt.Errorf("failed to scan expense total: %w", err)
		}
		totals = append(totals, service.CategoryTotal{CategoryName: name, Total: fromCents(cents)})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expense totals: %w", err)
	}
	return totals, nil
}

// SumByCategory totals one category's amount and record count within [start, end].
func (s *SQLiteStorage) SumByCategory(ctx context.Context, userID, categoryID string, start, end time.Time) (total decimal.Decimal, count int, err error) {
	if err := validateContext(ctx); err != nil {
		return decimal.Zero, 0, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return decimal.Zero, 0, err
	}
	if err := validateString(categoryID, "categoryID"); err != nil {
		return decimal.Zero, 0, err
	}
	if end.Before(start) {
		return decimal.Zero, 0, fmt.Errorf("%w: %v > %v", ErrInvalidDateRange, start, end)
	}

	query := `
		SELECT COALESCE(SUM(amount_cents), 0), COUNT(*)
		FROM transactions
		WHERE user_id = ? AND category_id = ? AND created_at BETWEEN ? AND ?`

	var cents int64
	if err := s.db.QueryRowContext(ctx, query, userID, categoryID, start, end).Scan(&cents, &count); err != nil {
		return decimal.Zero, 0, fmt.Errorf("failed to sum category: %w", err)
	}

	return fromCents(cents), count, nil
}

func scanEntries(rows *sql.Rows) ([]service.TransactionEntry, error) {
	var entries []service.TransactionEntry
	for rows.Next() {
		var e service.TransactionEntry
		var cents int64
		if err := rows.Scan(&e.ID, &e.Kind, &cents, &e.Comment, &e.CreatedAt, &e.CategoryName); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		e.Amount = fromCents(cents)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	return entries, nil
}
