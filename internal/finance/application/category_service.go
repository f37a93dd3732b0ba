package application

import (
	"context"

	"github.com/purple-water/accounting/internal/finance/domain"
	financeErrors "github.com/purple-water/accounting/internal/finance/errors"
	"github.com/sirupsen/logrus"
)

type CategoryService struct {
	repo   domain.CategoryRepository
	logger logrus.FieldLogger
}

func NewCategoryService(repo domain.CategoryRepository, logger logrus.FieldLogger) *CategoryService {
	return &CategoryService{repo: repo, logger: logger}
}

func (s *CategoryService) DoesCategoryExist(ctx context.Context, kind domain.CategoryKind, userID string, categoryID int64) (bool, error) {
	return s.repo.Exists(ctx, kind, userID, categoryID)
}

func (s *CategoryService) GetCategories(ctx context.Context, kind domain.CategoryKind, userID string) ([]domain.Category, error) {
	categories, err := s.repo.FindByUser(ctx, kind, userID)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		return []domain.Category{}, nil
	}
	return categories, nil
}

func (s *CategoryService) CreateCategory(ctx context.Context, kind domain.CategoryKind, userID, name string) (*domain.Category, error) {
	name, err := domain.NormalizeCategoryName(name)
	if err != nil {
		return nil, err
	}

	category := domain.Category{UserID: userID, Name: name}
	id, err := s.repo.Create(ctx, kind, category)
	if err != nil {
		return nil, err
	}
	category.ID = id

	s.logger.WithFields(logrus.Fields{
		"user_id":     userID,
		"kind":        kind,
		"category_id": id,
	}).Info("category created")
	return &category, nil
}

func (s *CategoryService) UpdateCategory(ctx context.Context, kind domain.CategoryKind, userID string, categoryID int64, name string) (*domain.Category, error) {
	name, err := domain.NormalizeCategoryName(name)
	if err != nil {
		return nil, err
	}

	category := domain.Category{ID: categoryID, UserID: userID, Name: name}
	affected, err := s.repo.Update(ctx, kind, category)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, financeErrors.NewNotFoundError(kind.Label())
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":     userID,
		"kind":        kind,
		"category_id": categoryID,
	}).Info("category renamed")
	return &category, nil
}

// DeleteCategory removes an unreferenced category. When nothing was deleted
// the category either does not exist for this user or is still in use.
func (s *CategoryService) DeleteCategory(ctx context.Context, kind domain.CategoryKind, userID string, categoryID int64) error {
	affected, err := s.repo.DeleteUnreferenced(ctx, kind, userID, categoryID)
	if err != nil {
		return err
	}

	if affected == 0 {
		exists, err := s.repo.Exists(ctx, kind, userID, categoryID)
		if err != nil {
			return err
		}
		if !exists {
			return financeErrors.NewNotFoundError(kind.Label())
		}
		return financeErrors.ErrCategoryInUse
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":     userID,
		"kind":        kind,
		"category_id": categoryID,
	}).Info("category deleted")
	return nil
}
