package infrastructure

import (
	"context"
	"sort"

	"github.com/purple-water/accounting/internal/finance/domain"
)

// MockCategoryRepository is an in-memory CategoryRepository for tests. When
// Transactions is set, deletes refuse categories that are still referenced.
type MockCategoryRepository struct {
	Categories   map[domain.CategoryKind][]domain.Category
	Transactions *MockTransactionRepository
	Err          error
	nextID       int64
}

func NewMockCategoryRepository() *MockCategoryRepository {
	return &MockCategoryRepository{Categories: make(map[domain.CategoryKind][]domain.Category)}
}

func (m *MockCategoryRepository) FindByUser(_ context.Context, kind domain.CategoryKind, userID string) ([]domain.Category, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var categories []domain.Category
	for _, c := range m.Categories[kind] {
		if c.UserID == userID {
			categories = append(categories, c)
		}
	}
	sort.SliceStable(categories, func(i, j int) bool {
		if categories[i].Name != categories[j].Name {
			return categories[i].Name < categories[j].Name
		}
		return categories[i].ID < categories[j].ID
	})
	return categories, nil
}

func (m *MockCategoryRepository) Exists(_ context.Context, kind domain.CategoryKind, userID string, categoryID int64) (bool, error) {
	if m.Err != nil {
		return false, m.Err
	}
	return m.find(kind, userID, categoryID) >= 0, nil
}

func (m *MockCategoryRepository) Create(_ context.Context, kind domain.CategoryKind, category domain.Category) (int64, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	m.nextID++
	category.ID = m.nextID
	m.Categories[kind] = append(m.Categories[kind], category)
	return category.ID, nil
}

func (m *MockCategoryRepository) Update(_ context.Context, kind domain.CategoryKind, category domain.Category) (int64, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	i := m.find(kind, category.UserID, category.ID)
	if i < 0 {
		return 0, nil
	}
	m.Categories[kind][i].Name = category.Name
	return 1, nil
}

func (m *MockCategoryRepository) DeleteUnreferenced(_ context.Context, kind domain.CategoryKind, userID string, categoryID int64) (int64, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	i := m.find(kind, userID, categoryID)
	if i < 0 {
		return 0, nil
	}
	if m.Transactions != nil && m.Transactions.IsReferenced(kind, userID, categoryID) {
		return 0, nil
	}
	m.Categories[kind] = append(m.Categories[kind][:i], m.Categories[kind][i+1:]...)
	return 1, nil
}

func (m *MockCategoryRepository) find(kind domain.CategoryKind, userID string, categoryID int64) int {
	for i, c := range m.Categories[kind] {
		if c.ID == categoryID && c.UserID == userID {
			return i
		}
	}
	return -1
}

func (m *MockCategoryRepository) name(kind domain.CategoryKind, userID string, categoryID int64) *string {
	i := m.find(kind, userID, categoryID)
	if i < 0 {
		return nil
	}
	name := m.Categories[kind][i].Name
	return &name
}
