package interfaces

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/purple-water/accounting/internal/finance/domain"
	"github.com/sirupsen/logrus"
)

type CategoryServiceInterface interface {
	GetCategories(ctx context.Context, kind domain.CategoryKind, userID string) ([]domain.Category, error)
	CreateCategory(ctx context.Context, kind domain.CategoryKind, userID, name string) (*domain.Category, error)
	UpdateCategory(ctx context.Context, kind domain.CategoryKind, userID string, categoryID int64, name string) (*domain.Category, error)
	DeleteCategory(ctx context.Context, kind domain.CategoryKind, userID string, categoryID int64) error
}

// CategoryHandler serves one category kind; the router mounts one handler
// per kind.
type CategoryHandler struct {
	responder
	kind    domain.CategoryKind
	service CategoryServiceInterface
}

type categoryRequest struct {
	Name   string `json:"name"`
	UserID string `json:"user_id"`
}

func NewCategoryHandler(
	kind domain.CategoryKind,
	service CategoryServiceInterface,
	respondJSON func(w http.ResponseWriter, status int, payload interface{}),
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string),
	logger logrus.FieldLogger,
) *CategoryHandler {
	if service == nil || !kind.Valid() {
		panic("Service must not be nil and kind must be valid")
	}
	return &CategoryHandler{
		responder: newResponder(respondJSON, respondError, logger),
		kind:      kind,
		service:   service,
	}
}

func NewDefaultCategoryHandler(kind domain.CategoryKind, service CategoryServiceInterface, logger logrus.FieldLogger) *CategoryHandler {
	return NewCategoryHandler(kind, service, respondJSON, respondError, logger)
}

func (h *CategoryHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r, r.URL.Query().Get("user_id"))
	if !ok {
		return
	}

	categories, err := h.service.GetCategories(r.Context(), h.kind, userID)
	if err != nil {
		h.serviceError(w, err, "Failed to retrieve categories", logrus.Fields{"user_id": userID, "kind": h.kind})
		return
	}

	h.respondJSON(w, http.StatusOK, categories)
}

func (h *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	userID, ok := h.userID(w, r, req.UserID)
	if !ok {
		return
	}

	category, err := h.service.CreateCategory(r.Context(), h.kind, userID, req.Name)
	if err != nil {
		h.serviceError(w, err, "Failed to create category", logrus.Fields{"user_id": userID, "kind": h.kind})
		return
	}

	h.respondJSON(w, http.StatusCreated, category)
}

func (h *CategoryHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := h.pathID(w, r, h.kind.Label())
	if !ok {
		return
	}

	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	userID, ok := h.userID(w, r, req.UserID)
	if !ok {
		return
	}

	category, err := h.service.UpdateCategory(r.Context(), h.kind, userID, categoryID, req.Name)
	if err != nil {
		h.serviceError(w, err, "Failed to update category", logrus.Fields{"user_id": userID, "kind": h.kind, "category_id": categoryID})
		return
	}

	h.respondJSON(w, http.StatusOK, category)
}

func (h *CategoryHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r, r.URL.Query().Get("user_id"))
	if !ok {
		return
	}
	categoryID, ok := h.pathID(w, r, h.kind.Label())
	if !ok {
		return
	}

	if err := h.service.DeleteCategory(r.Context(), h.kind, userID, categoryID); err != nil {
		h.serviceError(w, err, "Failed to delete category", logrus.Fields{"user_id": userID, "kind": h.kind, "category_id": categoryID})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
