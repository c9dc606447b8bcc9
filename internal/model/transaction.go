package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaxCommentLen bounds the free-text comment attached to a transaction.
const MaxCommentLen = 256

// Transaction is an immutable ledger record. Amount always carries two
// decimal places and is strictly positive; Comment is nil when the user
// declined to leave one. Records are never mutated or deleted.
type Transaction struct {
	CreatedAt  time.Time
	ID         string
	UserID     string
	CategoryID string
	Kind       Kind
	Amount     decimal.Decimal
	Comment    *string
}
