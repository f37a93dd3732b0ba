package infrastructure

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/purple-water/accounting/internal/finance/domain"
	financeErrors "github.com/purple-water/accounting/internal/finance/errors"
)

type categoryTable struct {
	name            string
	referenceColumn string
}

var categoryTables = map[domain.CategoryKind]categoryTable{
	domain.ItemCategory:    {name: "item_categories", referenceColumn: "item_category_id"},
	domain.PaymentCategory: {name: "payment_categories", referenceColumn: "payment_category_id"},
}

func tableFor(kind domain.CategoryKind) (categoryTable, error) {
	table, ok := categoryTables[kind]
	if !ok {
		return categoryTable{}, fmt.Errorf("unknown category kind %q", kind)
	}
	return table, nil
}

// CategoryRepository serves both category tables; the kind picks the table.
type CategoryRepository struct {
	db *sql.DB
}

func NewCategoryRepository(db *sql.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) FindByUser(ctx context.Context, kind domain.CategoryKind, userID string) ([]domain.Category, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT id, user_id, name FROM %s WHERE user_id = $1 ORDER BY name, id`, table.name)
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", table.name, err)
	}
	defer rows.Close()

	categories := []domain.Category{}
	for rows.Next() {
		var category domain.Category
		if err := rows.Scan(&category.ID, &category.UserID, &category.Name); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table.name, err)
		}
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", table.name, err)
	}
	return categories, nil
}

func (r *CategoryRepository) Exists(ctx context.Context, kind domain.CategoryKind, userID string, categoryID int64) (bool, error) {
	table, err := tableFor(kind)
	if err != nil {
		return false, err
	}

	var exists bool
	query := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE id = $1 AND user_id = $2)`, table.name)
	if err := r.db.QueryRowContext(ctx, query, categoryID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check %s: %w", table.name, err)
	}
	return exists, nil
}

func (r *CategoryRepository) Create(ctx context.Context, kind domain.CategoryKind, category domain.Category) (int64, error) {
	table, err := tableFor(kind)
	if err != nil {
		return 0, err
	}

	var id int64
	query := fmt.Sprintf(`INSERT INTO %s (user_id, name) VALUES ($1, $2) RETURNING id`, table.name)
	if err := r.db.QueryRowContext(ctx, query, category.UserID, category.Name).Scan(&id); err != nil {
		return 0, fmt.Errorf("create %s: %w", table.name, err)
	}
	return id, nil
}

func (r *CategoryRepository) Update(ctx context.Context, kind domain.CategoryKind, category domain.Category) (int64, error) {
	table, err := tableFor(kind)
	if err != nil {
		return 0, err
	}

	query := fmt.Sprintf(`UPDATE %s SET name = $1 WHERE id = $2 AND user_id = $3`, table.name)
	result, err := r.db.ExecContext(ctx, query, category.Name, category.ID, category.UserID)
	if err != nil {
		return 0, fmt.Errorf("update %s: %w", table.name, err)
	}
	return result.RowsAffected()
}

func (r *CategoryRepository) DeleteUnreferenced(ctx context.Context, kind domain.CategoryKind, userID string, categoryID int64) (int64, error) {
	table, err := tableFor(kind)
	if err != nil {
		return 0, err
	}

	query := fmt.Sprintf(`
		DELETE FROM %[1]s c
		WHERE c.id = $1 AND c.user_id = $2
		  AND NOT EXISTS (
		      SELECT 1 FROM transactions t
		      WHERE t.user_id = c.user_id AND t.%[2]s = c.id
		  )`, table.name, table.referenceColumn)

	result, err := r.db.ExecContext(ctx, query, categoryID, userID)
	if err != nil {
		// A transaction inserted concurrently still trips the RESTRICT key.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return 0, financeErrors.ErrCategoryInUse
		}
		return 0, fmt.Errorf("delete %s: %w", table.name, err)
	}
	return result.RowsAffected()
}
