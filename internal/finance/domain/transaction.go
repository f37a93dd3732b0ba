package domain

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/purple-water/accounting/internal/finance/errors"
	"github.com/shopspring/decimal"
)

const (
	maxItemNameLength = 200
	maxNotesLength    = 1000
)

// maxAmount keeps amounts inside NUMERIC(14,2).
var maxAmount = decimal.New(1, 12)

type TransactionRepository interface {
	Create(ctx context.Context, transaction Transaction) (int64, error)
	Update(ctx context.Context, transaction Transaction) (int64, error)
	Delete(ctx context.Context, userID string, transactionID int64) (int64, error)
	FindViewByID(ctx context.Context, userID string, transactionID int64) (*TransactionView, error)
	List(ctx context.Context, userID string, filter TransactionFilter) ([]TransactionView, error)
}

// Transaction is the stored row. A positive Amount is an expense, a negative one income.
type Transaction struct {
	ID                int64
	UserID            string
	Date              Date
	ItemName          string
	Amount            decimal.Decimal
	ItemCategoryID    int64
	PaymentCategoryID int64
	Notes             *string
}

// TransactionView is a transaction joined with its category display names.
// Names are nil when the referenced category no longer exists.
type TransactionView struct {
	ID                int64           `json:"transaction_id"`
	Date              Date            `json:"transaction_date"`
	ItemName          string          `json:"item_name"`
	ItemCategory      *string         `json:"item_category"`
	PaymentCategory   *string         `json:"payment_category"`
	Amount            decimal.Decimal `json:"amount"`
	Notes             *string         `json:"notes"`
	ItemCategoryID    int64           `json:"item_category_id"`
	PaymentCategoryID int64           `json:"payment_category_id"`
}

// TransactionInput is the create/update payload. Pointer fields distinguish
// "absent" from zero values.
type TransactionInput struct {
	Date              *Date            `json:"transaction_date"`
	ItemName          string           `json:"item_name"`
	Amount            *decimal.Decimal `json:"amount"`
	ItemCategoryID    *int64           `json:"item_category_id"`
	PaymentCategoryID *int64           `json:"payment_category_id"`
	Notes             *string          `json:"notes"`
}

// ToTransaction validates the input and returns the row to store for userID.
func (in TransactionInput) ToTransaction(userID string) (Transaction, error) {
	missing := &errors.ValidationErrors{Msg: "Missing required fields"}
	if in.Date == nil || in.Date.IsZero() {
		missing.Add(errors.NewValidationError("transaction_date is required"))
	}
	itemName := strings.TrimSpace(in.ItemName)
	if itemName == "" {
		missing.Add(errors.NewValidationError("item_name is required"))
	}
	if in.Amount == nil {
		missing.Add(errors.NewValidationError("amount is required"))
	}
	if in.ItemCategoryID == nil || *in.ItemCategoryID <= 0 {
		missing.Add(errors.NewValidationError("item_category_id is required"))
	}
	if in.PaymentCategoryID == nil || *in.PaymentCategoryID <= 0 {
		missing.Add(errors.NewValidationError("payment_category_id is required"))
	}
	if err := missing.ErrOrNil(); err != nil {
		return Transaction{}, err
	}

	if utf8.RuneCountInString(itemName) > maxItemNameLength {
		return Transaction{}, errors.NewValidationError("item_name must be at most 200 characters")
	}

	amount := in.Amount.Round(2)
	if amount.Abs().GreaterThanOrEqual(maxAmount) {
		return Transaction{}, errors.NewValidationError("amount is out of range")
	}

	var notes *string
	if in.Notes != nil {
		trimmed := strings.TrimSpace(*in.Notes)
		if utf8.RuneCountInString(trimmed) > maxNotesLength {
			return Transaction{}, errors.NewValidationError("notes must be at most 1000 characters")
		}
		if trimmed != "" {
			notes = &trimmed
		}
	}

	return Transaction{
		UserID:            userID,
		Date:              *in.Date,
		ItemName:          itemName,
		Amount:            amount,
		ItemCategoryID:    *in.ItemCategoryID,
		PaymentCategoryID: *in.PaymentCategoryID,
		Notes:             notes,
	}, nil
}

// IsIncome follows the sign convention: negative amounts are income.
func (v TransactionView) IsIncome() bool {
	return v.Amount.IsNegative()
}

// TransactionFilter selects the transactions of one month, optionally narrowed
// by a search term and a set of item categories.
type TransactionFilter struct {
	Month           YearMonth
	Search          string
	ItemCategoryIDs []int64
}

// Matches applies the filter to a view in memory; it mirrors the SQL used by
// the PostgreSQL repository.
func (f TransactionFilter) Matches(v TransactionView) bool {
	if !f.Month.Contains(v.Date) {
		return false
	}
	if term := strings.ToLower(strings.TrimSpace(f.Search)); term != "" {
		inName := strings.Contains(strings.ToLower(v.ItemName), term)
		inNotes := v.Notes != nil && strings.Contains(strings.ToLower(*v.Notes), term)
		if !inName && !inNotes {
			return false
		}
	}
	if len(f.ItemCategoryIDs) > 0 {
		for _, id := range f.ItemCategoryIDs {
			if id == v.ItemCategoryID {
				return true
			}
		}
		return false
	}
	return true
}
