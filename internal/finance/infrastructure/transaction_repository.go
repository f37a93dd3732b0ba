package infrastructure

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/purple-water/accounting/internal/finance/domain"
	financeErrors "github.com/purple-water/accounting/internal/finance/errors"
)

const (
	foreignKeyViolation = "23503"

	itemCategoryConstraint    = "transactions_item_category_fk"
	paymentCategoryConstraint = "transactions_payment_category_fk"
)

const selectTransactionView = `
	SELECT t.transaction_id, t.transaction_date, t.item_name, ic.name, pc.name,
	       t.amount, t.notes, t.item_category_id, t.payment_category_id
	FROM transactions t
	LEFT JOIN item_categories ic ON ic.id = t.item_category_id AND ic.user_id = t.user_id
	LEFT JOIN payment_categories pc ON pc.id = t.payment_category_id AND pc.user_id = t.user_id`

type TransactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(ctx context.Context, transaction domain.Transaction) (int64, error) {
	query := `
		INSERT INTO transactions
		    (user_id, transaction_date, item_name, amount, item_category_id, payment_category_id, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING transaction_id`

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		transaction.UserID, transaction.Date, transaction.ItemName, transaction.Amount,
		transaction.ItemCategoryID, transaction.PaymentCategoryID, transaction.Notes,
	).Scan(&id)
	if err != nil {
		return 0, mapTransactionWriteError("create transaction", err)
	}
	return id, nil
}

func (r *TransactionRepository) Update(ctx context.Context, transaction domain.Transaction) (int64, error) {
	query := `
		UPDATE transactions
		SET transaction_date = $1, item_name = $2, amount = $3,
		    item_category_id = $4, payment_category_id = $5, notes = $6, updated_at = NOW()
		WHERE transaction_id = $7 AND user_id = $8`

	result, err := r.db.ExecContext(ctx, query,
		transaction.Date, transaction.ItemName, transaction.Amount,
		transaction.ItemCategoryID, transaction.PaymentCategoryID, transaction.Notes,
		transaction.ID, transaction.UserID,
	)
	if err != nil {
		return 0, mapTransactionWriteError("update transaction", err)
	}
	return result.RowsAffected()
}

func (r *TransactionRepository) Delete(ctx context.Context, userID string, transactionID int64) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE transaction_id = $1 AND user_id = $2`,
		transactionID, userID,
	)
	if err != nil {
		return 0, fmt.Errorf("delete transaction: %w", err)
	}
	return result.RowsAffected()
}

func (r *TransactionRepository) FindViewByID(ctx context.Context, userID string, transactionID int64) (*domain.TransactionView, error) {
	query := selectTransactionView + `
	WHERE t.transaction_id = $1 AND t.user_id = $2`

	view, err := scanTransactionView(r.db.QueryRowContext(ctx, query, transactionID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, financeErrors.NewNotFoundError("Transaction")
		}
		return nil, fmt.Errorf("find transaction: %w", err)
	}
	return view, nil
}

func (r *TransactionRepository) List(ctx context.Context, userID string, filter domain.TransactionFilter) ([]domain.TransactionView, error) {
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	var sb strings.Builder
	sb.WriteString(selectTransactionView)
	fmt.Fprintf(&sb, `
	WHERE t.user_id = %s AND t.transaction_date >= %s AND t.transaction_date < %s`,
		arg(userID), arg(filter.Month.Start()), arg(filter.Month.End()))

	if term := strings.TrimSpace(filter.Search); term != "" {
		p := arg("%" + escapeLike(term) + "%")
		fmt.Fprintf(&sb, ` AND (t.item_name ILIKE %s OR t.notes ILIKE %s)`, p, p)
	}

	if len(filter.ItemCategoryIDs) > 0 {
		placeholders := make([]string, len(filter.ItemCategoryIDs))
		for i, id := range filter.ItemCategoryIDs {
			placeholders[i] = arg(id)
		}
		fmt.Fprintf(&sb, ` AND t.item_category_id IN (%s)`, strings.Join(placeholders, ", "))
	}

	sb.WriteString(`
	ORDER BY t.transaction_date DESC, t.transaction_id DESC`)

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	transactions := []domain.TransactionView{}
	for rows.Next() {
		view, err := scanTransactionView(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		transactions = append(transactions, *view)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return transactions, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTransactionView(row rowScanner) (*domain.TransactionView, error) {
	var view domain.TransactionView
	err := row.Scan(
		&view.ID, &view.Date, &view.ItemName, &view.ItemCategory, &view.PaymentCategory,
		&view.Amount, &view.Notes, &view.ItemCategoryID, &view.PaymentCategoryID,
	)
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// escapeLike makes the user's search term match literally inside ILIKE.
func escapeLike(term string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(term)
}

// mapTransactionWriteError turns composite foreign key violations into the
// validation errors the service would have reported.
func mapTransactionWriteError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
		switch pgErr.ConstraintName {
		case itemCategoryConstraint:
			return financeErrors.ErrInvalidItemCategory
		case paymentCategoryConstraint:
			return financeErrors.ErrInvalidPaymentCategory
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
