package application

import (
	"context"
	"testing"
	"time"

	"github.com/purple-water/accounting/internal/finance/domain"
	financeErrors "github.com/purple-water/accounting/internal/finance/errors"
	"github.com/purple-water/accounting/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryService(t *testing.T) {
	ctx := context.Background()

	t.Run("list is empty, not nil, for a new user", func(t *testing.T) {
		f := newFixture(t)
		categories, err := NewCategoryService(f.categories, logging.Discard()).GetCategories(ctx, domain.PaymentCategory, userB)
		require.NoError(t, err)
		assert.NotNil(t, categories)
		assert.Empty(t, categories)
	})

	t.Run("list is ordered by name", func(t *testing.T) {
		f := newFixture(t)
		service := NewCategoryService(f.categories, logging.Discard())
		for _, name := range []string{"Zoo", "Atlas", "Museum"} {
			_, err := service.CreateCategory(ctx, domain.PaymentCategory, userB, name)
			require.NoError(t, err)
		}

		categories, err := service.GetCategories(ctx, domain.PaymentCategory, userB)
		require.NoError(t, err)
		var names []string
		for _, c := range categories {
			names = append(names, c.Name)
		}
		assert.Equal(t, []string{"Atlas", "Museum", "Zoo"}, names)
	})

	for _, kind := range []domain.CategoryKind{domain.ItemCategory, domain.PaymentCategory} {
		t.Run(string(kind)+" lifecycle", func(t *testing.T) {
			f := newFixture(t)
			service := f.service.categoryService.(*CategoryService)

			created, err := service.CreateCategory(ctx, kind, userA, "  Travel ")
			require.NoError(t, err)
			assert.Equal(t, "Travel", created.Name)
			assert.NotZero(t, created.ID)

			renamed, err := service.UpdateCategory(ctx, kind, userA, created.ID, "Trips")
			require.NoError(t, err)
			assert.Equal(t, "Trips", renamed.Name)

			_, err = service.UpdateCategory(ctx, kind, userB, created.ID, "Stolen")
			require.Error(t, err)
			assert.True(t, financeErrors.IsNotFound(err))
			assert.Equal(t, kind.Label()+" not found", err.Error())

			categories, err := service.GetCategories(ctx, kind, userA)
			require.NoError(t, err)
			var names []string
			for _, c := range categories {
				names = append(names, c.Name)
			}
			assert.Contains(t, names, "Trips")

			require.NoError(t, service.DeleteCategory(ctx, kind, userA, created.ID))

			err = service.DeleteCategory(ctx, kind, userA, created.ID)
			assert.True(t, financeErrors.IsNotFound(err))
		})
	}

	t.Run("blank names are rejected", func(t *testing.T) {
		f := newFixture(t)
		service := NewCategoryService(f.categories, logging.Discard())

		_, err := service.CreateCategory(ctx, domain.ItemCategory, userA, "   ")
		assert.ErrorIs(t, err, financeErrors.ErrCategoryNameRequired)

		_, err = service.UpdateCategory(ctx, domain.ItemCategory, userA, f.groceries, "")
		assert.ErrorIs(t, err, financeErrors.ErrCategoryNameRequired)
	})

	t.Run("category in use cannot be deleted", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service.CreateTransaction(ctx, userA, f.input(domain.NewDate(2024, time.March, 1), "Milk", "1", f.groceries))
		require.NoError(t, err)

		service := f.service.categoryService.(*CategoryService)

		err = service.DeleteCategory(ctx, domain.ItemCategory, userA, f.groceries)
		assert.True(t, financeErrors.IsConflict(err))
		assert.ErrorIs(t, err, financeErrors.ErrCategoryInUse)

		err = service.DeleteCategory(ctx, domain.PaymentCategory, userA, f.card)
		assert.True(t, financeErrors.IsConflict(err))

		exists, err := service.DoesCategoryExist(ctx, domain.ItemCategory, userA, f.groceries)
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("another user's category is not found on delete", func(t *testing.T) {
		f := newFixture(t)
		service := f.service.categoryService.(*CategoryService)

		err := service.DeleteCategory(ctx, domain.ItemCategory, userB, f.groceries)
		assert.True(t, financeErrors.IsNotFound(err))
	})
}
