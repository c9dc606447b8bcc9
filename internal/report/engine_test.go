package report

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evanko/ledgerbot/internal/model"
	"github.com/evanko/ledgerbot/internal/period"
	"github.com/evanko/ledgerbot/internal/storage"
)

func newTestEngine(t *testing.T) (*Engine, *storage.SQLiteStorage, *model.User) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := storage.NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	require.NoError(t, store.Migrate(ctx))

	user, err := store.FindOrCreateUser(ctx, model.Identity{ExternalID: "u1"})
	require.NoError(t, err)

	return NewEngine(store), store, user
}

func record(t *testing.T, store *storage.SQLiteStorage, userID, categoryID string, kind model.Kind, amount string, at time.Time) {
	t.Helper()
	d, err := decimal.NewFromString(amount)
	require.NoError(t, err)
	require.NoError(t, store.RecordTransaction(context.Background(), &model.Transaction{
		UserID:     userID,
		CategoryID: categoryID,
		Kind:       kind,
		Amount:     d,
		CreatedAt:  at,
	}))
}

func mustRange(t *testing.T, from, to string) period.Range {
	t.Helper()
	start, err := time.Parse("2006-01-02", from)
	require.NoError(t, err)
	end, err := time.Parse("2006-01-02", to)
	require.NoError(t, err)
	rng, err := period.Custom(start, end)
	require.NoError(t, err)
	return rng
}

func TestSummaryEmptyPeriod(t *testing.T) {
	engine, _, user := newTestEngine(t)

	summary, err := engine.Summary(context.Background(), user.ID, mustRange(t, "2025-01-01", "2025-01-31"))
	require.NoError(t, err)

	assert.Equal(t, "0.00", summary.Income.StringFixed(2))
	assert.Equal(t, "0.00", summary.Expense.StringFixed(2))
	assert.Equal(t, "0.00", summary.Balance.StringFixed(2))
	assert.Equal(t, "0.00", summary.AvgExpensePerDay.StringFixed(2))
	assert.Equal(t, 31, summary.Days)
}

func TestSummary(t *testing.T) {
	engine, store, user := newTestEngine(t)
	ctx := context.Background()

	work := &model.Category{Kind: model.KindIncome, Code: "work", DisplayName: "Work", Order: 1}
	food := &model.Category{Kind: model.KindExpense, Code: "food", DisplayName: "Food", Order: 1}
	require.NoError(t, store.CreateCategory(ctx, work))
	require.NoError(t, store.CreateCategory(ctx, food))

	at := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	record(t, store, user.ID, work.ID, model.KindIncome, "1000.00", at)
	record(t, store, user.ID, food.ID, model.KindExpense, "45.50", at)
	record(t, store, user.ID, food.ID, model.KindExpense, "54.50", at.Add(time.Hour))

	rng := mustRange(t, "2025-01-01", "2025-01-10")
	summary, err := engine.Summary(ctx, user.ID, rng)
	require.NoError(t, err)

	assert.Equal(t, "1000.00", summary.Income.StringFixed(2))
	assert.Equal(t, "100.00", summary.Expense.StringFixed(2))
	assert.Equal(t, "900.00", summary.Balance.StringFixed(2))
	assert.Equal(t, 10, summary.Days)
	assert.Equal(t, "100.00", summary.AvgIncomePerDay.StringFixed(2))
	assert.Equal(t, "10.00", summary.AvgExpensePerDay.StringFixed(2))

	// Reads never change the data.
	again, err := engine.Summary(ctx, user.ID, rng)
	require.NoError(t, err)
	assert.Equal(t, summary, again)
}

func TestExpenseRating(t *testing.T) {
	engine, store, user := newTestEngine(t)
	ctx := context.Background()

	food := &model.Category{Kind: model.KindExpense, Code: "food", DisplayName: "Food", Order: 1}
	taxi := &model.Category{Kind: model.KindExpense, Code: "transport", DisplayName: "Transport", Order: 2}
	require.NoError(t, store.CreateCategory(ctx, food))
	require.NoError(t, store.CreateCategory(ctx, taxi))

	at := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	record(t, store, user.ID, food.ID, model.KindExpense, "10.00", at)
	record(t, store, user.ID, taxi.ID, model.KindExpense, "99.00", at)

	rating, err := engine.ExpenseRating(ctx, user.ID, mustRange(t, "2025-01-01", "2025-01-31"))
	require.NoError(t, err)
	require.Len(t, rating, 2)
	assert.Equal(t, "Transport", rating[0].CategoryName)
	assert.Equal(t, "Food", rating[1].CategoryName)

	// No expenses means an empty rating, not an error.
	empty, err := engine.ExpenseRating(ctx, user.ID, mustRange(t, "2024-01-01", "2024-01-31"))
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestCategoryStats(t *testing.T) {
	engine, store, user := newTestEngine(t)
	ctx := context.Background()

	food := &model.Category{Kind: model.KindExpense, Code: "food", DisplayName: "Food", Order: 1}
	require.NoError(t, store.CreateCategory(ctx, food))

	at := time.Date(2025, 1, 5, 12, 0, 0, 0, time.UTC)
	record(t, store, user.ID, food.ID, model.KindExpense, "30.00", at)
	record(t, store, user.ID, food.ID, model.KindExpense, "20.00", at.Add(time.Hour))

	stats, err := engine.CategoryStats(ctx, user.ID, food.ID, mustRange(t, "2025-01-01", "2025-01-10"))
	require.NoError(t, err)
	assert.Equal(t, "50.00", stats.Total.StringFixed(2))
	assert.Equal(t, 2, stats.Count)
	assert.Equal(t, "5.00", stats.AvgPerDay.StringFixed(2))
}
