package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

var ErrUserNotFound = errors.New("user not found")

const uniqueViolation = "23505"

type Repository interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByID(ctx context.Context, id string) (*User, error)
	GetUserByLoginOrEmail(ctx context.Context, loginOrEmail string) (*User, error)
	UserExistsByLoginOrEmail(ctx context.Context, login, email string) (*User, error)
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) Repository {
	return &userRepository{
		db: db,
	}
}

const selectUser = `
	SELECT id, email, login, password_hash, two_factor_enabled, created_at, updated_at
	FROM users`

func (r *userRepository) CreateUser(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (id, email, login, password_hash, two_factor_enabled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query, user.ID, user.Email, user.Login, user.PasswordHash, user.TwoFactorEnabled).
		Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		// Lost a race with another registration for the same email or login.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			if pgErr.ConstraintName == "users_login_key" {
				return ErrLoginAlreadyExists
			}
			return ErrEmailAlreadyExists
		}
		return fmt.Errorf("could not create user: %w", err)
	}
	return nil
}

func (r *userRepository) GetUserByID(ctx context.Context, id string) (*User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx, selectUser+` WHERE id = $1`, id))
}

func (r *userRepository) GetUserByLoginOrEmail(ctx context.Context, loginOrEmail string) (*User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx, selectUser+` WHERE login = $1 OR email = $1`, loginOrEmail))
}

func (r *userRepository) UserExistsByLoginOrEmail(ctx context.Context, login, email string) (*User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx, selectUser+` WHERE login = $1 OR email = $2 LIMIT 1`, login, email))
}

func (r *userRepository) scanUser(row *sql.Row) (*User, error) {
	var user User
	err := row.Scan(&user.ID, &user.Email, &user.Login, &user.PasswordHash, &user.TwoFactorEnabled, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("could not find user: %w", err)
	}
	return &user, nil
}
