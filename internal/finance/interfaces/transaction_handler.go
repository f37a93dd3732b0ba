package interfaces

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/purple-water/accounting/internal/finance/domain"
	financeErrors "github.com/purple-water/accounting/internal/finance/errors"
	"github.com/sirupsen/logrus"
)

type TransactionServiceInterface interface {
	ListTransactions(ctx context.Context, userID string, filter domain.TransactionFilter) ([]domain.TransactionView, error)
	GetMonthlySummary(ctx context.Context, userID string, month domain.YearMonth) (domain.MonthlySummary, error)
	GetTransaction(ctx context.Context, userID string, transactionID int64) (*domain.TransactionView, error)
	CreateTransaction(ctx context.Context, userID string, input domain.TransactionInput) (*domain.TransactionView, error)
	UpdateTransaction(ctx context.Context, userID string, transactionID int64, input domain.TransactionInput) (*domain.TransactionView, error)
	DeleteTransaction(ctx context.Context, userID string, transactionID int64) error
}

type TransactionHandler struct {
	responder
	service TransactionServiceInterface
	now     func() time.Time
}

type transactionRequest struct {
	domain.TransactionInput
	UserID string `json:"user_id"`
}

func NewTransactionHandler(
	service TransactionServiceInterface,
	respondJSON func(w http.ResponseWriter, status int, payload interface{}),
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string),
	logger logrus.FieldLogger,
) *TransactionHandler {
	if service == nil {
		panic("Service must not be nil")
	}
	return &TransactionHandler{
		responder: newResponder(respondJSON, respondError, logger),
		service:   service,
		now:       time.Now,
	}
}

// NewDefaultTransactionHandler wires the package's JSON response helpers.
func NewDefaultTransactionHandler(service TransactionServiceInterface, logger logrus.FieldLogger) *TransactionHandler {
	return NewTransactionHandler(service, respondJSON, respondError, logger)
}

func (h *TransactionHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	userID, ok := h.userID(w, r, query.Get("user_id"))
	if !ok {
		return
	}

	month, err := domain.ParseYearMonth(query.Get("year"), query.Get("month"), h.now())
	if err != nil {
		h.serviceError(w, err, "Failed to retrieve transactions", nil)
		return
	}

	categoryIDs, err := parseCategoryIDs(query["item_category_id"])
	if err != nil {
		h.serviceError(w, err, "Failed to retrieve transactions", nil)
		return
	}

	filter := domain.TransactionFilter{
		Month:           month,
		Search:          query.Get("search"),
		ItemCategoryIDs: categoryIDs,
	}
	transactions, err := h.service.ListTransactions(r.Context(), userID, filter)
	if err != nil {
		h.serviceError(w, err, "Failed to retrieve transactions", logrus.Fields{"user_id": userID, "month": month.String()})
		return
	}

	h.respondJSON(w, http.StatusOK, transactions)
}

func (h *TransactionHandler) GetMonthlySummary(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	userID, ok := h.userID(w, r, query.Get("user_id"))
	if !ok {
		return
	}

	month, err := domain.ParseYearMonth(query.Get("year"), query.Get("month"), h.now())
	if err != nil {
		h.serviceError(w, err, "Failed to retrieve transaction summary", nil)
		return
	}

	summary, err := h.service.GetMonthlySummary(r.Context(), userID, month)
	if err != nil {
		h.serviceError(w, err, "Failed to retrieve transaction summary", logrus.Fields{"user_id": userID, "month": month.String()})
		return
	}

	h.respondJSON(w, http.StatusOK, summary)
}

func (h *TransactionHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r, r.URL.Query().Get("user_id"))
	if !ok {
		return
	}
	transactionID, ok := h.pathID(w, r, "Transaction")
	if !ok {
		return
	}

	transaction, err := h.service.GetTransaction(r.Context(), userID, transactionID)
	if err != nil {
		h.serviceError(w, err, "Failed to retrieve transaction", logrus.Fields{"user_id": userID, "transaction_id": transactionID})
		return
	}

	h.respondJSON(w, http.StatusOK, transaction)
}

func (h *TransactionHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	userID, ok := h.userID(w, r, req.UserID)
	if !ok {
		return
	}

	transaction, err := h.service.CreateTransaction(r.Context(), userID, req.TransactionInput)
	if err != nil {
		h.serviceError(w, err, "Failed to create transaction", logrus.Fields{"user_id": userID})
		return
	}

	h.respondJSON(w, http.StatusCreated, transaction)
}

func (h *TransactionHandler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	transactionID, ok := h.pathID(w, r, "Transaction")
	if !ok {
		return
	}

	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	userID, ok := h.userID(w, r, req.UserID)
	if !ok {
		return
	}

	transaction, err := h.service.UpdateTransaction(r.Context(), userID, transactionID, req.TransactionInput)
	if err != nil {
		h.serviceError(w, err, "Failed to update transaction", logrus.Fields{"user_id": userID, "transaction_id": transactionID})
		return
	}

	h.respondJSON(w, http.StatusOK, transaction)
}

func (h *TransactionHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r, r.URL.Query().Get("user_id"))
	if !ok {
		return
	}
	transactionID, ok := h.pathID(w, r, "Transaction")
	if !ok {
		return
	}

	if err := h.service.DeleteTransaction(r.Context(), userID, transactionID); err != nil {
		h.serviceError(w, err, "Failed to delete transaction", logrus.Fields{"user_id": userID, "transaction_id": transactionID})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// parseCategoryIDs accepts repeated item_category_id values as well as comma
// separated lists.
func parseCategoryIDs(values []string) ([]int64, error) {
	var ids []int64
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil || id <= 0 {
				return nil, financeErrors.NewValidationError("Invalid item_category_id")
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}
