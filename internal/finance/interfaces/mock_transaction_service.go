package interfaces

import (
	"context"

	"github.com/purple-water/accounting/internal/finance/domain"
	financeErrors "github.com/purple-water/accounting/internal/finance/errors"
)

// MockTransactionService records the arguments of the last call and answers
// from its fields. Err, when set, is returned by every method.
type MockTransactionService struct {
	Transactions []domain.TransactionView
	Summary      domain.MonthlySummary
	Err          error

	LastUserID        string
	LastFilter        domain.TransactionFilter
	LastMonth         domain.YearMonth
	LastTransactionID int64
	LastInput         domain.TransactionInput
}

func (m *MockTransactionService) ListTransactions(ctx context.Context, userID string, filter domain.TransactionFilter) ([]domain.TransactionView, error) {
	m.LastUserID, m.LastFilter = userID, filter
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Transactions, nil
}

func (m *MockTransactionService) GetMonthlySummary(ctx context.Context, userID string, month domain.YearMonth) (domain.MonthlySummary, error) {
	m.LastUserID, m.LastMonth = userID, month
	if m.Err != nil {
		return domain.MonthlySummary{}, m.Err
	}
	return m.Summary, nil
}

func (m *MockTransactionService) GetTransaction(ctx context.Context, userID string, transactionID int64) (*domain.TransactionView, error) {
	m.LastUserID, m.LastTransactionID = userID, transactionID
	if m.Err != nil {
		return nil, m.Err
	}
	return m.find(transactionID)
}

func (m *MockTransactionService) CreateTransaction(ctx context.Context, userID string, input domain.TransactionInput) (*domain.TransactionView, error) {
	m.LastUserID, m.LastInput = userID, input
	if m.Err != nil {
		return nil, m.Err
	}
	t, err := input.ToTransaction(userID)
	if err != nil {
		return nil, err
	}
	view := domain.TransactionView{
		ID:                int64(len(m.Transactions) + 1),
		Date:              t.Date,
		ItemName:          t.ItemName,
		Amount:            t.Amount,
		Notes:             t.Notes,
		ItemCategoryID:    t.ItemCategoryID,
		PaymentCategoryID: t.PaymentCategoryID,
	}
	m.Transactions = append(m.Transactions, view)
	return &view, nil
}

func (m *MockTransactionService) UpdateTransaction(ctx context.Context, userID string, transactionID int64, input domain.TransactionInput) (*domain.TransactionView, error) {
	m.LastUserID, m.LastTransactionID, m.LastInput = userID, transactionID, input
	if m.Err != nil {
		return nil, m.Err
	}
	if _, err := input.ToTransaction(userID); err != nil {
		return nil, err
	}
	return m.find(transactionID)
}

func (m *MockTransactionService) DeleteTransaction(ctx context.Context, userID string, transactionID int64) error {
	m.LastUserID, m.LastTransactionID = userID, transactionID
	if m.Err != nil {
		return m.Err
	}
	_, err := m.find(transactionID)
	return err
}

func (m *MockTransactionService) find(transactionID int64) (*domain.TransactionView, error) {
	for i := range m.Transactions {
		if m.Transactions[i].ID == transactionID {
			view := m.Transactions[i]
			return &view, nil
		}
	}
	return nil, financeErrors.NewNotFoundError("Transaction")
}
