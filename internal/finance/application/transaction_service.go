package application

import (
	"context"

	"github.com/purple-water/accounting/internal/finance/domain"
	financeErrors "github.com/purple-water/accounting/internal/finance/errors"
	"github.com/sirupsen/logrus"
)

type CategoryServiceInterface interface {
	DoesCategoryExist(ctx context.Context, kind domain.CategoryKind, userID string, categoryID int64) (bool, error)
}

type TransactionService struct {
	repo            domain.TransactionRepository
	categoryService CategoryServiceInterface
	logger          logrus.FieldLogger
}

func NewTransactionService(repo domain.TransactionRepository, categoryService CategoryServiceInterface, logger logrus.FieldLogger) *TransactionService {
	return &TransactionService{repo: repo, categoryService: categoryService, logger: logger}
}

// ListTransactions returns the user's transactions for the filter's month,
// newest date first and, within a day, newest insert first.
func (s *TransactionService) ListTransactions(ctx context.Context, userID string, filter domain.TransactionFilter) ([]domain.TransactionView, error) {
	transactions, err := s.repo.List(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	if transactions == nil {
		return []domain.TransactionView{}, nil
	}
	return transactions, nil
}

func (s *TransactionService) GetMonthlySummary(ctx context.Context, userID string, month domain.YearMonth) (domain.MonthlySummary, error) {
	transactions, err := s.repo.List(ctx, userID, domain.TransactionFilter{Month: month})
	if err != nil {
		return domain.MonthlySummary{}, err
	}
	return domain.Summarize(month, transactions), nil
}

func (s *TransactionService) GetTransaction(ctx context.Context, userID string, transactionID int64) (*domain.TransactionView, error) {
	return s.repo.FindViewByID(ctx, userID, transactionID)
}

func (s *TransactionService) CreateTransaction(ctx context.Context, userID string, input domain.TransactionInput) (*domain.TransactionView, error) {
	transaction, err := input.ToTransaction(userID)
	if err != nil {
		return nil, err
	}
	if err := s.checkCategories(ctx, transaction); err != nil {
		return nil, err
	}

	id, err := s.repo.Create(ctx, transaction)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":        userID,
		"transaction_id": id,
		"date":           transaction.Date.String(),
	}).Info("transaction created")

	// The insert only yields the id; category names come from the join.
	return s.repo.FindViewByID(ctx, userID, id)
}

func (s *TransactionService) UpdateTransaction(ctx context.Context, userID string, transactionID int64, input domain.TransactionInput) (*domain.TransactionView, error) {
	transaction, err := input.ToTransaction(userID)
	if err != nil {
		return nil, err
	}
	transaction.ID = transactionID

	// Ownership is checked before the categories so that a foreign or
	// missing transaction is reported as not found.
	if _, err := s.repo.FindViewByID(ctx, userID, transactionID); err != nil {
		return nil, err
	}
	if err := s.checkCategories(ctx, transaction); err != nil {
		return nil, err
	}

	affected, err := s.repo.Update(ctx, transaction)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, financeErrors.NewNotFoundError("Transaction")
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":        userID,
		"transaction_id": transactionID,
	}).Info("transaction updated")

	return s.repo.FindViewByID(ctx, userID, transactionID)
}

func (s *TransactionService) DeleteTransaction(ctx context.Context, userID string, transactionID int64) error {
	affected, err := s.repo.Delete(ctx, userID, transactionID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return financeErrors.NewNotFoundError("Transaction")
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":        userID,
		"transaction_id": transactionID,
	}).Info("transaction deleted")
	return nil
}

func (s *TransactionService) checkCategories(ctx context.Context, transaction domain.Transaction) error {
	exists, err := s.categoryService.DoesCategoryExist(ctx, domain.ItemCategory, transaction.UserID, transaction.ItemCategoryID)
	if err != nil {
		return err
	}
	if !exists {
		return financeErrors.ErrInvalidItemCategory
	}

	exists, err = s.categoryService.DoesCategoryExist(ctx, domain.PaymentCategory, transaction.UserID, transaction.PaymentCategoryID)
	if err != nil {
		return err
	}
	if !exists {
		return financeErrors.ErrInvalidPaymentCategory
	}
	return nil
}
