// Package category owns the category lifecycle: naming, uniqueness, code
// derivation, ordering, and the no-cascade deletion guard.
package category

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/evanko/ledgerbot/internal/common"
	"github.com/evanko/ledgerbot/internal/model"
	"github.com/evanko/ledgerbot/internal/service"
)

// fallbackCode is used when a display name slugs down to nothing.
const fallbackCode = "cat"

var nonSlugRun = regexp.MustCompile(`[^a-z0-9]+`)

// Service enforces category invariants on top of the storage layer.
type Service struct {
	storage service.Storage
}

// NewService creates a category service.
func NewService(storage service.Storage) *Service {
	return &Service{storage: storage}
}

// Seeds is the default category set, created once if absent.
var Seeds = []model.Category{
	{Kind: model.KindIncome, Code: "work", DisplayName: "Work", Order: 1},
	{Kind: model.KindIncome, Code: "gifts", DisplayName: "Gifts", Order: 2},
	{Kind: model.KindIncome, Code: "other_income", DisplayName: "Other", Order: 3},
	{Kind: model.KindExpense, Code: "food", DisplayName: "Food", Order: 1},
	{Kind: model.KindExpense, Code: "transport", DisplayName: "Transport", Order: 2},
	{Kind: model.KindExpense, Code: "clothes", DisplayName: "Clothes", Order: 3},
	{Kind: model.KindExpense, Code: "cinema", DisplayName: "Cinema", Order: 4},
	{Kind: model.KindExpense, Code: "purchases", DisplayName: "Purchases", Order: 5},
	{Kind: model.KindExpense, Code: "transfers", DisplayName: "Transfers", Order: 6},
	{Kind: model.KindExpense, Code: "other_expense", DisplayName: "Other", Order: 7},
}

// EnsureDefaults seeds the default set, inserting only what is missing.
func (s *Service) EnsureDefaults(ctx context.Context) error {
	if err := s.storage.EnsureCategories(ctx, Seeds); err != nil {
		return fmt.Errorf("failed to ensure default categories: %w", err)
	}
	return nil
}

// ListByKind returns categories of one kind in display order.
func (s *Service) ListByKind(ctx context.Context, kind model.Kind) ([]model.Category, error) {
	return s.storage.ListCategories(ctx, kind)
}

// GetByCode returns the category with the exact (kind, code) pair.
func (s *Service) GetByCode(ctx context.Context, kind model.Kind, code string) (*model.Category, error) {
	return s.storage.GetCategoryByCode(ctx, kind, code)
}

// Create validates a raw display name, derives a free machine code, assigns
// the next sort position, and persists the category.
func (s *Service) Create(ctx context.Context, kind model.Kind, rawName string) (*model.Category, error) {
	name, err := validateName(rawName)
	if err != nil {
		return nil, err
	}

	existing, err := s.storage.GetCategoryByName(ctx, kind, name)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("failed to check name uniqueness: %w", err)
	}
	if existing != nil {
		return nil, common.ErrDuplicateEntry
	}

	code, err := s.freeCode(ctx, kind, DeriveCode(name))
	if err != nil {
		return nil, err
	}

	maxOrder, err := s.storage.MaxCategoryOrder(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve sort order: %w", err)
	}

	category := &model.Category{
		Kind:        kind,
		Code:        code,
		DisplayName: name,
		Order:       maxOrder + 1,
	}

	// The unique indexes close the race the pre-checks leave open.
	if err := s.storage.CreateCategory(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// Rename changes only the display name of an existing category.
func (s *Service) Rename(ctx context.Context, kind model.Kind, code, rawName string) (*model.Category, error) {
	current, err := s.storage.GetCategoryByCode(ctx, kind, code)
	if err != nil {
		return nil, err
	}

	name, err := validateName(rawName)
	if err != nil {
		return nil, err
	}

	if strings.EqualFold(current.DisplayName, name) {
		return nil, common.ErrSameName
	}

	other, err := s.storage.GetCategoryByName(ctx, kind, name)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("failed to check name uniqueness: %w", err)
	}
	if other != nil && other.Code != code {
		return nil, common.ErrDuplicateEntry
	}

	if err := s.storage.RenameCategory(ctx, kind, code, name); err != nil {
		return nil, err
	}

	current.DisplayName = name
	return current, nil
}

// Delete removes a category unless transactions still reference it. Deletion
// is rejected, never cascaded.
func (s *Service) Delete(ctx context.Context, kind model.Kind, code string) error {
	current, err := s.storage.GetCategoryByCode(ctx, kind, code)
	if err != nil {
		return err
	}

	count, err := s.storage.CountTransactionsByCategory(ctx, current.ID)
	if err != nil {
		return fmt.Errorf("failed to count category usage: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: %d transactions", common.ErrCategoryInUse, count)
	}

	return s.storage.DeleteCategory(ctx, kind, code)
}

// DeriveCode slugs a display name into a stable machine code: lower-cased,
// runs of non [a-z0-9] collapsed to a single underscore, trimmed.
func DeriveCode(name string) string {
	code := nonSlugRun.ReplaceAllString(strings.ToLower(name), "_")
	code = strings.Trim(code, "_")
	if code == "" {
		return fallbackCode
	}
	return code
}

// freeCode resolves collisions by suffixing _2, _3, ... until the code is free.
func (s *Service) freeCode(ctx context.Context, kind model.Kind, base string) (string, error) {
	code := base
	for n := 2; ; n++ {
		taken, err := s.storage.CategoryCodeExists(ctx, kind, code)
		if err != nil {
			return "", fmt.Errorf("failed to check code availability: %w", err)
		}
		if !taken {
			return code, nil
		}
		code = fmt.Sprintf("%s_%d", base, n)
	}
}

func validateName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", common.ErrEmptyName
	}
	if len([]rune(name)) > model.MaxCategoryNameLen {
		return "", common.ErrNameTooLong
	}
	return name, nil
}
