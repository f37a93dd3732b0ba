package interfaces

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/purple-water/accounting/internal/auth"
	"github.com/purple-water/accounting/internal/finance/domain"
	financeErrors "github.com/purple-water/accounting/internal/finance/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	userA = "8a1f3c52-4d0e-4b8e-9d4a-0c1e2f3a4b5c"
	userB = "0b9e8d7c-6a5f-4e3d-8c2b-1a0f9e8d7c6b"
)

func newTransactionHandler(service *MockTransactionService) (*TransactionHandler, *test.Hook) {
	logger, hook := test.NewNullLogger()
	handler := NewTransactionHandler(service, respondJSON, respondError, logger)
	handler.now = func() time.Time { return time.Date(2024, time.May, 17, 12, 0, 0, 0, time.UTC) }
	return handler, hook
}

// authed builds a request on behalf of userID, or anonymously when userID is empty.
func authed(method, target, userID string, body interface{}) *http.Request {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req = req.WithContext(auth.WithUserID(context.Background(), userID))
	}
	return req
}

func decodeBody(t *testing.T, res *http.Response) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	return body
}

func seededTransactions() []domain.TransactionView {
	groceries := "Groceries"
	card := "Card"
	return []domain.TransactionView{
		{
			ID:                7,
			Date:              domain.NewDate(2024, time.May, 3),
			ItemName:          "Bread",
			ItemCategory:      &groceries,
			PaymentCategory:   &card,
			Amount:            decimal.RequireFromString("4.50"),
			ItemCategoryID:    1,
			PaymentCategoryID: 2,
		},
	}
}

func validInput() map[string]interface{} {
	return map[string]interface{}{
		"transaction_date":    "2024-05-10",
		"item_name":           "Coffee",
		"amount":              3.2,
		"item_category_id":    1,
		"payment_category_id": 2,
		"notes":               "morning",
	}
}

func TestListTransactions(t *testing.T) {
	t.Run("defaults to the current month", func(t *testing.T) {
		service := &MockTransactionService{Transactions: seededTransactions()}
		handler, _ := newTransactionHandler(service)

		w := httptest.NewRecorder()
		handler.ListTransactions(w, authed(http.MethodGet, "/api/transactions", userA, nil))

		res := w.Result()
		defer res.Body.Close()
		assert.Equal(t, http.StatusOK, res.StatusCode)
		assert.Equal(t, userA, service.LastUserID)
		assert.Equal(t, domain.YearMonth{Year: 2024, Month: time.May}, service.LastFilter.Month)

		var views []map[string]interface{}
		require.NoError(t, json.NewDecoder(res.Body).Decode(&views))
		require.Len(t, views, 1)
		assert.Equal(t, "Bread", views[0]["item_name"])
		assert.Equal(t, "2024-05-03", views[0]["transaction_date"])
		assert.Equal(t, "Groceries", views[0]["item_category"])
	})

	t.Run("empty result is an empty array", func(t *testing.T) {
		service := &MockTransactionService{Transactions: []domain.TransactionView{}}
		handler, _ := newTransactionHandler(service)

		w := httptest.NewRecorder()
		handler.ListTransactions(w, authed(http.MethodGet, "/api/transactions?year=2023&month=1", userA, nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, "[]", w.Body.String())
		assert.Equal(t, domain.YearMonth{Year: 2023, Month: time.January}, service.LastFilter.Month)
	})

	t.Run("search and category filters are passed through", func(t *testing.T) {
		service := &MockTransactionService{}
		handler, _ := newTransactionHandler(service)

		w := httptest.NewRecorder()
		target := "/api/transactions?year=2024&month=5&search=coffee&item_category_id=3,4&item_category_id=9"
		handler.ListTransactions(w, authed(http.MethodGet, target, userA, nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "coffee", service.LastFilter.Search)
		assert.Equal(t, []int64{3, 4, 9}, service.LastFilter.ItemCategoryIDs)
	})

	t.Run("invalid query values", func(t *testing.T) {
		cases := map[string]string{
			"/api/transactions?year=2024&month=13":  "Invalid month",
			"/api/transactions?year=abc&month=1":    "Invalid year",
			"/api/transactions?item_category_id=x":  "Invalid item_category_id",
			"/api/transactions?item_category_id=-1": "Invalid item_category_id",
		}
		for target, message := range cases {
			handler, _ := newTransactionHandler(&MockTransactionService{})
			w := httptest.NewRecorder()
			handler.ListTransactions(w, authed(http.MethodGet, target, userA, nil))

			res := w.Result()
			assert.Equal(t, http.StatusBadRequest, res.StatusCode, target)
			assert.Equal(t, message, decodeBody(t, res)["message"], target)
			res.Body.Close()
		}
	})

	t.Run("user_id must match the token", func(t *testing.T) {
		service := &MockTransactionService{}
		handler, _ := newTransactionHandler(service)

		w := httptest.NewRecorder()
		handler.ListTransactions(w, authed(http.MethodGet, "/api/transactions?user_id="+userB, userA, nil))
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Empty(t, service.LastUserID)

		w = httptest.NewRecorder()
		handler.ListTransactions(w, authed(http.MethodGet, "/api/transactions?user_id="+userA, userA, nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("anonymous requests are rejected", func(t *testing.T) {
		handler, _ := newTransactionHandler(&MockTransactionService{})

		w := httptest.NewRecorder()
		handler.ListTransactions(w, authed(http.MethodGet, "/api/transactions", "", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("service failure is logged and hidden", func(t *testing.T) {
		service := &MockTransactionService{Err: errors.New("connection reset")}
		handler, hook := newTransactionHandler(service)

		w := httptest.NewRecorder()
		handler.ListTransactions(w, authed(http.MethodGet, "/api/transactions", userA, nil))

		res := w.Result()
		defer res.Body.Close()
		assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
		body := decodeBody(t, res)
		assert.Equal(t, "Failed to retrieve transactions", body["message"])
		assert.Equal(t, "error", body["status"])

		require.NotNil(t, hook.LastEntry())
		assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
		assert.Equal(t, userA, hook.LastEntry().Data["user_id"])
	})
}

func TestGetMonthlySummary(t *testing.T) {
	service := &MockTransactionService{Summary: domain.MonthlySummary{
		Year:       2024,
		Month:      3,
		Income:     decimal.RequireFromString("100"),
		Expense:    decimal.RequireFromString("40"),
		Net:        decimal.RequireFromString("60"),
		ByCategory: []domain.CategorySummary{},
	}}
	handler, _ := newTransactionHandler(service)

	w := httptest.NewRecorder()
	handler.GetMonthlySummary(w, authed(http.MethodGet, "/api/transactions/summary?year=2024&month=3", userA, nil))

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, domain.YearMonth{Year: 2024, Month: time.March}, service.LastMonth)

	body := decodeBody(t, res)
	assert.EqualValues(t, 2024, body["year"])
	assert.EqualValues(t, 3, body["month"])
	assert.Contains(t, body, "by_category")
}

func TestGetTransaction(t *testing.T) {
	service := &MockTransactionService{Transactions: seededTransactions()}
	handler, _ := newTransactionHandler(service)

	for _, id := range []string{"abc", "0", "-4"} {
		req := authed(http.MethodGet, "/api/transactions/"+id, userA, nil)
		req.SetPathValue("id", id)
		w := httptest.NewRecorder()
		handler.GetTransaction(w, req)

		res := w.Result()
		assert.Equal(t, http.StatusNotFound, res.StatusCode, id)
		assert.Equal(t, "Transaction not found", decodeBody(t, res)["message"], id)
		res.Body.Close()
	}

	req := authed(http.MethodGet, "/api/transactions/99", userA, nil)
	req.SetPathValue("id", "99")
	w := httptest.NewRecorder()
	handler.GetTransaction(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	req = authed(http.MethodGet, "/api/transactions/7", userA, nil)
	req.SetPathValue("id", "7")
	w = httptest.NewRecorder()
	handler.GetTransaction(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(7), service.LastTransactionID)
}

func TestCreateTransaction(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		service := &MockTransactionService{}
		handler, _ := newTransactionHandler(service)

		w := httptest.NewRecorder()
		handler.CreateTransaction(w, authed(http.MethodPost, "/api/transactions", userA, validInput()))

		res := w.Result()
		defer res.Body.Close()
		assert.Equal(t, http.StatusCreated, res.StatusCode)
		assert.Equal(t, userA, service.LastUserID)
		require.NotNil(t, service.LastInput.Amount)
		assert.True(t, decimal.RequireFromString("3.2").Equal(*service.LastInput.Amount))

		body := decodeBody(t, res)
		assert.Equal(t, "Coffee", body["item_name"])
		assert.Equal(t, "2024-05-10", body["transaction_date"])
		assert.EqualValues(t, 1, body["transaction_id"])
	})

	t.Run("missing fields are listed", func(t *testing.T) {
		handler, _ := newTransactionHandler(&MockTransactionService{})

		w := httptest.NewRecorder()
		handler.CreateTransaction(w, authed(http.MethodPost, "/api/transactions", userA, map[string]interface{}{
			"item_name": "Coffee",
		}))

		res := w.Result()
		defer res.Body.Close()
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)

		body := decodeBody(t, res)
		assert.Equal(t, "Missing required fields", body["message"])
		assert.ElementsMatch(t, []interface{}{
			"transaction_date is required",
			"amount is required",
			"item_category_id is required",
			"payment_category_id is required",
		}, body["errors"])
	})

	t.Run("malformed body", func(t *testing.T) {
		handler, _ := newTransactionHandler(&MockTransactionService{})

		for _, body := range []string{"not json", `{"transaction_date":"yesterday"}`, `{"amount":"lots"}`} {
			w := httptest.NewRecorder()
			handler.CreateTransaction(w, authed(http.MethodPost, "/api/transactions", userA, body))

			res := w.Result()
			assert.Equal(t, http.StatusBadRequest, res.StatusCode, body)
			assert.Equal(t, "Invalid request body", decodeBody(t, res)["message"], body)
			res.Body.Close()
		}
	})

	t.Run("unknown category is a bad request", func(t *testing.T) {
		service := &MockTransactionService{Err: financeErrors.ErrInvalidItemCategory}
		handler, _ := newTransactionHandler(service)

		w := httptest.NewRecorder()
		handler.CreateTransaction(w, authed(http.MethodPost, "/api/transactions", userA, validInput()))

		res := w.Result()
		defer res.Body.Close()
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
		assert.Equal(t, "Invalid item category", decodeBody(t, res)["message"])
	})

	t.Run("foreign user_id in body", func(t *testing.T) {
		service := &MockTransactionService{}
		handler, _ := newTransactionHandler(service)

		input := validInput()
		input["user_id"] = userB
		w := httptest.NewRecorder()
		handler.CreateTransaction(w, authed(http.MethodPost, "/api/transactions", userA, input))

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Empty(t, service.Transactions)
	})
}

func TestUpdateTransaction(t *testing.T) {
	service := &MockTransactionService{Transactions: seededTransactions()}
	handler, _ := newTransactionHandler(service)

	req := authed(http.MethodPut, "/api/transactions/7", userA, validInput())
	req.SetPathValue("id", "7")
	w := httptest.NewRecorder()
	handler.UpdateTransaction(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(7), service.LastTransactionID)
	assert.Equal(t, "Coffee", service.LastInput.ItemName)

	req = authed(http.MethodPut, "/api/transactions/8", userA, validInput())
	req.SetPathValue("id", "8")
	w = httptest.NewRecorder()
	handler.UpdateTransaction(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	req = authed(http.MethodPut, "/api/transactions/nope", userA, validInput())
	req.SetPathValue("id", "nope")
	w = httptest.NewRecorder()
	handler.UpdateTransaction(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteTransaction(t *testing.T) {
	service := &MockTransactionService{Transactions: seededTransactions()}
	handler, _ := newTransactionHandler(service)

	req := authed(http.MethodDelete, "/api/transactions/7", userA, nil)
	req.SetPathValue("id", "7")
	w := httptest.NewRecorder()
	handler.DeleteTransaction(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	req = authed(http.MethodDelete, "/api/transactions/7?user_id="+userB, userA, nil)
	req.SetPathValue("id", "7")
	w = httptest.NewRecorder()
	handler.DeleteTransaction(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	req = authed(http.MethodDelete, "/api/transactions/12", userA, nil)
	req.SetPathValue("id", "12")
	w = httptest.NewRecorder()
	handler.DeleteTransaction(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNewTransactionHandlerPanicsOnNil(t *testing.T) {
	logger, _ := test.NewNullLogger()
	assert.Panics(t, func() { NewTransactionHandler(nil, respondJSON, respondError, logger) })
	assert.Panics(t, func() { NewTransactionHandler(&MockTransactionService{}, nil, respondError, logger) })
}
