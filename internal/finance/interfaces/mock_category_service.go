package interfaces

import (
	"context"

	"github.com/purple-water/accounting/internal/finance/domain"
	financeErrors "github.com/purple-water/accounting/internal/finance/errors"
)

type MockCategoryService struct {
	Categories []domain.Category
	Err        error

	LastKind   domain.CategoryKind
	LastUserID string
	LastName   string
}

func (m *MockCategoryService) GetCategories(ctx context.Context, kind domain.CategoryKind, userID string) ([]domain.Category, error) {
	m.LastKind, m.LastUserID = kind, userID
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Categories, nil
}

func (m *MockCategoryService) CreateCategory(ctx context.Context, kind domain.CategoryKind, userID, name string) (*domain.Category, error) {
	m.LastKind, m.LastUserID, m.LastName = kind, userID, name
	if m.Err != nil {
		return nil, m.Err
	}
	normalized, err := domain.NormalizeCategoryName(name)
	if err != nil {
		return nil, err
	}
	category := domain.Category{ID: int64(len(m.Categories) + 1), UserID: userID, Name: normalized}
	m.Categories = append(m.Categories, category)
	return &category, nil
}

func (m *MockCategoryService) UpdateCategory(ctx context.Context, kind domain.CategoryKind, userID string, categoryID int64, name string) (*domain.Category, error) {
	m.LastKind, m.LastUserID, m.LastName = kind, userID, name
	if m.Err != nil {
		return nil, m.Err
	}
	normalized, err := domain.NormalizeCategoryName(name)
	if err != nil {
		return nil, err
	}
	for i := range m.Categories {
		if m.Categories[i].ID == categoryID {
			m.Categories[i].Name = normalized
			category := m.Categories[i]
			return &category, nil
		}
	}
	return nil, financeErrors.NewNotFoundError(kind.Label())
}

func (m *MockCategoryService) DeleteCategory(ctx context.Context, kind domain.CategoryKind, userID string, categoryID int64) error {
	m.LastKind, m.LastUserID = kind, userID
	if m.Err != nil {
		return m.Err
	}
	for i := range m.Categories {
		if m.Categories[i].ID == categoryID {
			m.Categories = append(m.Categories[:i], m.Categories[i+1:]...)
			return nil
		}
	}
	return financeErrors.NewNotFoundError(kind.Label())
}
