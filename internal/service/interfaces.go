// Package service defines the interfaces and shared value types for all
// application services.
package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/evanko/ledgerbot/internal/model"
	"github.com/evanko/ledgerbot/internal/period"
)

// Storage defines the contract for our persistence layer.
type Storage interface {
	// User operations
	FindOrCreateUser(ctx context.Context, identity model.Identity) (*model.User, error)

	// Category operations
	ListCategories(ctx context.Context, kind model.Kind) ([]model.Category, error)
	GetCategoryByCode(ctx context.Context, kind model.Kind, code string) (*model.Category, error)
	GetCategoryByName(ctx context.Context, kind model.Kind, name string) (*model.Category, error)
	CategoryCodeExists(ctx context.Context, kind model.Kind, code string) (bool, error)
	MaxCategoryOrder(ctx context.Context, kind model.Kind) (int, error)
	CreateCategory(ctx context.Context, category *model.Category) error
	RenameCategory(ctx context.Context, kind model.Kind, code, newName string) error
	DeleteCategory(ctx context.Context, kind model.Kind, code string) error
	EnsureCategories(ctx context.Context, seeds []model.Category) error
	CountTransactionsByCategory(ctx context.Context, categoryID string) (int, error)

	// Transaction operations
	RecordTransaction(ctx context.Context, txn *model.Transaction) error
	GetTransactionPage(ctx context.Context, userID string, limit, offset int) ([]TransactionEntry, bool, error)
	GetTransactionsByRange(ctx context.Context, userID string, start, end time.Time) ([]TransactionEntry, error)
	SumAmountsByKind(ctx context.Context, userID string, start, end time.Time) (income, expense decimal.Decimal, err error)
	SumExpensesByCategory(ctx context.Context, userID string, start, end time.Time) ([]CategoryTotal, error)
	SumByCategory(ctx context.Context, userID, categoryID string, start, end time.Time) (total decimal.Decimal, count int, err error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// TransactionEntry is a transaction joined with its category display name,
// as shown in listings and exports.
type TransactionEntry struct {
	CreatedAt    time.Time
	ID           string
	Kind         model.Kind
	CategoryName string
	Amount       decimal.Decimal
	Comment      *string
}

// Summary aggregates both kinds over a period.
type Summary struct {
	Income           decimal.Decimal
	Expense          decimal.Decimal
	Balance          decimal.Decimal
	AvgIncomePerDay  decimal.Decimal
	AvgExpensePerDay decimal.Decimal
	Days             int
}

// CategoryTotal is one row of the expense rating.
type CategoryTotal struct {
	CategoryName string
	Total        decimal.Decimal
}

// CategoryStats aggregates a single category over a period.
type CategoryStats struct {
	Total     decimal.Decimal
	AvgPerDay decimal.Decimal
	Count     int
}

// Artifact is an opaque export result produced by a renderer. Either Data
// (file contents) or Link (remote document) is set.
type Artifact struct {
	Filename string
	Caption  string
	Link     string
	Data     []byte
}

// ReportRenderer turns a period's transactions plus their summary into a
// downloadable artifact. The core never inspects the artifact's format.
type ReportRenderer interface {
	Render(ctx context.Context, entries []TransactionEntry, summary Summary, rng period.Range) (*Artifact, error)
}

// Gate authorizes inbound senders and tracks the paused flag toggled by the
// pause and start commands.
type Gate interface {
	Authorized(externalID string) bool
	Paused(externalID string) bool
	Pause(externalID string)
	Resume(externalID string)
}
