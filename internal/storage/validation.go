// Package storage provides the data persistence layer for the ledger bot.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/evanko/ledgerbot/internal/model"
)

// Validation errors.
var (
	ErrNilContext       = errors.New("context cannot be nil")
	ErrEmptyString      = errors.New("string parameter cannot be empty")
	ErrNilParameter     = errors.New("parameter cannot be nil")
	ErrInvalidKind      = errors.New("invalid kind")
	ErrInvalidDateRange = errors.New("start date must be before end date")
	ErrInvalidAmount    = errors.New("amount must be positive")
	ErrInvalidLimit     = errors.New("limit must be positive")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateKind ensures the kind is one of the two known values.
func validateKind(kind model.Kind) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}
	return nil
}

// validateTransaction validates a transaction before insert.
func validateTransaction(txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction", ErrNilParameter)
	}
	if err := validateString(txn.UserID, "userID"); err != nil {
		return err
	}
	if err := validateString(txn.CategoryID, "categoryID"); err != nil {
		return err
	}
	if err := validateKind(txn.Kind); err != nil {
		return err
	}
	if !txn.Amount.IsPositive() {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, txn.Amount)
	}
	if txn.Comment != nil && len([]rune(*txn.Comment)) > model.MaxCommentLen {
		return fmt.Errorf("comment exceeds %d characters", model.MaxCommentLen)
	}
	return nil
}
