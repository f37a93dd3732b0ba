package user

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ctxKey struct{}

func testUserIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKey{}).(string)
	return id, ok
}

func newTestHandler() (*Handler, Service) {
	service, _ := newTestService()
	logger, _ := test.NewNullLogger()
	return NewHandler(service, testUserIDFrom, logger), service
}

func TestHandleRegister(t *testing.T) {
	handler, _ := newTestHandler()

	post := func(body string) (*httptest.ResponseRecorder, map[string]interface{}) {
		req := httptest.NewRequest(http.MethodPost, "/api/register", bytes.NewBufferString(body))
		w := httptest.NewRecorder()
		handler.HandleRegister(w, req)

		var response map[string]interface{}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		return w, response
	}

	w, response := post(`{"email":"alice@example.com","login":"alice","password":"s3cret-pass"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	data := response["data"].(map[string]interface{})
	assert.NotEmpty(t, data["user_id"])

	w, response = post(`{"email":"alice@example.com","login":"alice2","password":"s3cret-pass"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, ErrEmailAlreadyExists.Error(), response["message"])

	w, _ = post(`{"email":"bad","login":"alice3","password":"s3cret-pass"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, response = post(`not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid request body", response["message"])
}

func TestHandleGetUserProfile(t *testing.T) {
	handler, service := newTestHandler()

	created, err := service.Register(context.Background(), "alice@example.com", "alice", "s3cret-pass")
	require.NoError(t, err)

	t.Run("returns the authenticated user", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/protected/profile", nil)
		req = req.WithContext(context.WithValue(req.Context(), ctxKey{}, created.ID))
		w := httptest.NewRecorder()

		handler.HandleGetUserProfile(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var response struct {
			Data map[string]interface{} `json:"data"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, created.ID, response.Data["user_id"])
		assert.Equal(t, "alice", response.Data["login"])
		assert.Equal(t, false, response.Data["2fa_enabled"])
	})

	t.Run("missing identity is unauthorized", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/protected/profile", nil)
		w := httptest.NewRecorder()

		handler.HandleGetUserProfile(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("unknown user", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/protected/profile", nil)
		req = req.WithContext(context.WithValue(req.Context(), ctxKey{}, "00000000-0000-0000-0000-000000000000"))
		w := httptest.NewRecorder()

		handler.HandleGetUserProfile(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHandleRegister_StoreFailure(t *testing.T) {
	logger, hook := test.NewNullLogger()
	service, repo := newTestService()
	repo.Err = errors.New("connection refused")
	handler := NewHandler(service, testUserIDFrom, logger)

	req := httptest.NewRequest(http.MethodPost, "/api/register",
		bytes.NewBufferString(`{"email":"carol@example.com","login":"carol","password":"s3cret-pass"}`))
	w := httptest.NewRecorder()
	handler.HandleRegister(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Could not register user")
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "could not register user", hook.LastEntry().Message)
}
