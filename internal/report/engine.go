// Package report computes period aggregates over the transaction store:
// summaries, expense ratings, and per-category statistics. Everything here is
// read-only.
package report

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/evanko/ledgerbot/internal/period"
	"github.com/evanko/ledgerbot/internal/service"
)

// Engine derives reports from the persistence layer.
type Engine struct {
	storage service.Storage
}

// NewEngine creates a report engine.
func NewEngine(storage service.Storage) *Engine {
	return &Engine{storage: storage}
}

// Summary totals both kinds over the range. An empty range produces zeros,
// not an error.
func (e *Engine) Summary(ctx context.Context, userID string, rng period.Range) (service.Summary, error) {
	income, expense, err := e.storage.SumAmountsByKind(ctx, userID, rng.Start, rng.End)
	if err != nil {
		return service.Summary{}, fmt.Errorf("failed to compute summary: %w", err)
	}

	days := rng.Days
	if days < 1 {
		days = 1
	}
	divisor := decimal.NewFromInt(int64(days))

	return service.Summary{
		Income:           income,
		Expense:          expense,
		Balance:          income.Sub(expense),
		AvgIncomePerDay:  income.DivRound(divisor, 2),
		AvgExpensePerDay: expense.DivRound(divisor, 2),
		Days:             days,
	}, nil
}

// ExpenseRating groups expense totals by category display name, largest
// first. Broken category links surface as the "uncategorized" bucket.
func (e *Engine) ExpenseRating(ctx context.Context, userID string, rng period.Range) ([]service.CategoryTotal, error) {
	totals, err := e.storage.SumExpensesByCategory(ctx, userID, rng.Start, rng.End)
	if err != nil {
		return nil, fmt.Errorf("failed to compute expense rating: %w", err)
	}
	return totals, nil
}

// CategoryStats totals one category over the range.
func (e *Engine) CategoryStats(ctx context.Context, userID, categoryID string, rng period.Range) (service.CategoryStats, error) {
	total, count, err := e.storage.SumByCategory(ctx, userID, categoryID, rng.Start, rng.End)
	if err != nil {
		return service.CategoryStats{}, fmt.Errorf("failed to compute category stats: %w", err)
	}

	days := rng.Days
	if days < 1 {
		days = 1
	}

	return service.CategoryStats{
		Total:     total,
		Count:     count,
		AvgPerDay: total.DivRound(decimal.NewFromInt(int64(days)), 2),
	}, nil
}
