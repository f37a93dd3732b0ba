package domain

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/purple-water/accounting/internal/finance/errors"
)

const maxCategoryNameLength = 100

// CategoryKind tells item categories (what was bought) from payment
// categories (how it was paid).
type CategoryKind string

const (
	ItemCategory    CategoryKind = "item"
	PaymentCategory CategoryKind = "payment"
)

func (k CategoryKind) Valid() bool {
	return k == ItemCategory || k == PaymentCategory
}

// Label is the human readable entity name used in error messages.
func (k CategoryKind) Label() string {
	if k == PaymentCategory {
		return "Payment category"
	}
	return "Item category"
}

type Category struct {
	ID     int64  `json:"id"`
	UserID string `json:"-"`
	Name   string `json:"name"`
}

type CategoryRepository interface {
	FindByUser(ctx context.Context, kind CategoryKind, userID string) ([]Category, error)
	Exists(ctx context.Context, kind CategoryKind, userID string, categoryID int64) (bool, error)
	Create(ctx context.Context, kind CategoryKind, category Category) (int64, error)
	Update(ctx context.Context, kind CategoryKind, category Category) (int64, error)
	// DeleteUnreferenced removes the category only when no transaction of the
	// same user points at it, in a single statement.
	DeleteUnreferenced(ctx context.Context, kind CategoryKind, userID string, categoryID int64) (int64, error)
}

// NormalizeCategoryName trims the name and checks it is usable.
func NormalizeCategoryName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", errors.ErrCategoryNameRequired
	}
	if utf8.RuneCountInString(trimmed) > maxCategoryNameLength {
		return "", errors.NewValidationError("Category name must be at most 100 characters")
	}
	return trimmed, nil
}
