package infrastructure

import (
	"context"
	"sort"

	"github.com/purple-water/accounting/internal/finance/domain"
	financeErrors "github.com/purple-water/accounting/internal/finance/errors"
)

// MockTransactionRepository is an in-memory TransactionRepository for tests.
// Category names are resolved through Categories when it is set.
type MockTransactionRepository struct {
	Transactions []domain.Transaction
	Categories   *MockCategoryRepository
	Err          error
	nextID       int64
}

func (m *MockTransactionRepository) Create(_ context.Context, transaction domain.Transaction) (int64, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	for _, t := range m.Transactions {
		if t.ID > m.nextID {
			m.nextID = t.ID
		}
	}
	m.nextID++
	transaction.ID = m.nextID
	m.Transactions = append(m.Transactions, transaction)
	return transaction.ID, nil
}

func (m *MockTransactionRepository) Update(_ context.Context, transaction domain.Transaction) (int64, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	for i, t := range m.Transactions {
		if t.ID == transaction.ID && t.UserID == transaction.UserID {
			m.Transactions[i] = transaction
			return 1, nil
		}
	}
	return 0, nil
}

func (m *MockTransactionRepository) Delete(_ context.Context, userID string, transactionID int64) (int64, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	for i, t := range m.Transactions {
		if t.ID == transactionID && t.UserID == userID {
			m.Transactions = append(m.Transactions[:i], m.Transactions[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (m *MockTransactionRepository) FindViewByID(_ context.Context, userID string, transactionID int64) (*domain.TransactionView, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	for _, t := range m.Transactions {
		if t.ID == transactionID && t.UserID == userID {
			view := m.view(t)
			return &view, nil
		}
	}
	return nil, financeErrors.NewNotFoundError("Transaction")
}

func (m *MockTransactionRepository) List(_ context.Context, userID string, filter domain.TransactionFilter) ([]domain.TransactionView, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var filtered []domain.TransactionView
	for _, t := range m.Transactions {
		if t.UserID != userID {
			continue
		}
		view := m.view(t)
		if filter.Matches(view) {
			filtered = append(filtered, view)
		}
	}
	sort.Slice(filtered, func(i, j int) bool {
		if !filtered[i].Date.Equal(filtered[j].Date.Time) {
			return filtered[i].Date.After(filtered[j].Date.Time)
		}
		return filtered[i].ID > filtered[j].ID
	})
	return filtered, nil
}

// IsReferenced reports whether any transaction of userID points at the category.
func (m *MockTransactionRepository) IsReferenced(kind domain.CategoryKind, userID string, categoryID int64) bool {
	for _, t := range m.Transactions {
		if t.UserID != userID {
			continue
		}
		if kind == domain.ItemCategory && t.ItemCategoryID == categoryID {
			return true
		}
		if kind == domain.PaymentCategory && t.PaymentCategoryID == categoryID {
			return true
		}
	}
	return false
}

func (m *MockTransactionRepository) view(t domain.Transaction) domain.TransactionView {
	view := domain.TransactionView{
		ID:                t.ID,
		Date:              t.Date,
		ItemName:          t.ItemName,
		Amount:            t.Amount,
		Notes:             t.Notes,
		ItemCategoryID:    t.ItemCategoryID,
		PaymentCategoryID: t.PaymentCategoryID,
	}
	if m.Categories != nil {
		view.ItemCategory = m.Categories.name(domain.ItemCategory, t.UserID, t.ItemCategoryID)
		view.PaymentCategory = m.Categories.name(domain.PaymentCategory, t.UserID, t.PaymentCategoryID)
	}
	return view
}
