package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var ErrNoTwoFactorSecret = errors.New("no two-factor secret registered")

// TwoFactorRepository stores TOTP secrets and the users' 2FA flag.
type TwoFactorRepository interface {
	SaveTwoFactorSecret(ctx context.Context, userID, secret string) error
	GetTwoFactorSecret(ctx context.Context, userID string) (string, error)
	EnableTwoFactor(ctx context.Context, userID string) error
	DisableTwoFactor(ctx context.Context, userID string) error
}

type twoFactorRepository struct {
	db *sql.DB
}

func NewTwoFactorRepository(db *sql.DB) TwoFactorRepository {
	return &twoFactorRepository{
		db: db,
	}
}

func (r *twoFactorRepository) SaveTwoFactorSecret(ctx context.Context, userID, secret string) error {
	query := `
		INSERT INTO user_two_factor_secrets (user_id, secret, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET secret = EXCLUDED.secret,
		    created_at = NOW()
	`
	if _, err := r.db.ExecContext(ctx, query, userID, secret); err != nil {
		return fmt.Errorf("could not save two-factor secret: %w", err)
	}
	return nil
}

func (r *twoFactorRepository) GetTwoFactorSecret(ctx context.Context, userID string) (string, error) {
	var secret string
	err := r.db.QueryRowContext(ctx, `SELECT secret FROM user_two_factor_secrets WHERE user_id = $1`, userID).Scan(&secret)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNoTwoFactorSecret
		}
		return "", fmt.Errorf("could not read two-factor secret: %w", err)
	}
	return secret, nil
}

func (r *twoFactorRepository) EnableTwoFactor(ctx context.Context, userID string) error {
	query := `UPDATE users SET two_factor_enabled = TRUE, updated_at = NOW() WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("could not enable two-factor authentication: %w", err)
	}
	return nil
}

// DisableTwoFactor clears the flag and drops the secret in one transaction.
func (r *twoFactorRepository) DisableTwoFactor(ctx context.Context, userID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `UPDATE users SET two_factor_enabled = FALSE, updated_at = NOW() WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("could not disable two-factor authentication in users table: %w", err)
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM user_two_factor_secrets WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("could not delete TOTP secret: %w", err)
	}

	return tx.Commit()
}
