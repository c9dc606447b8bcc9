package model

import (
	"strings"
	"time"
)

// MaxCategoryNameLen bounds the human display name of a category.
const MaxCategoryNameLen = 64

// OtherCodePrefix marks catch-all categories that sort to the end of listings.
const OtherCodePrefix = "other_"

// Category groups transactions of one kind. Code is the stable machine slug,
// unique within the kind; DisplayName is the human-editable label, unique
// within the kind case-insensitively. Order is a display hint, not an
// enforced invariant.
type Category struct {
	CreatedAt   time.Time
	ID          string
	Kind        Kind
	Code        string
	DisplayName string
	Order       int
}

// IsOther reports whether the category is a catch-all bucket, either by its
// reserved code prefix or by an "Other"-style display name.
func (c Category) IsOther() bool {
	return strings.HasPrefix(c.Code, OtherCodePrefix) || strings.EqualFold(c.DisplayName, "other")
}
