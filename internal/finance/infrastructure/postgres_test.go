package infrastructure

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	database "github.com/purple-water/accounting/db"
	"github.com/purple-water/accounting/internal/finance/domain"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// newTestDB starts a throwaway PostgreSQL container with the schema applied.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping PostgreSQL integration test in short mode")
	}

	ctx := context.Background()
	container, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:16-alpine"),
		postgres.WithDatabase("accounting"),
		postgres.WithUsername("accounting"),
		postgres.WithPassword("accounting"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = container.Terminate(ctx)
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sql.Open("pgx", connStr)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.PingContext(ctx))
	require.NoError(t, database.RunMigrations(db))
	return db
}

func seedUser(t *testing.T, db *sql.DB, login string) string {
	t.Helper()
	var id string
	err := db.QueryRow(
		`INSERT INTO users (email, login, password_hash) VALUES ($1, $2, 'x') RETURNING id`,
		fmt.Sprintf("%s@example.com", login), login,
	).Scan(&id)
	require.NoError(t, err)
	return id
}

func seedCategory(t *testing.T, repo *CategoryRepository, kind domain.CategoryKind, userID, name string) int64 {
	t.Helper()
	id, err := repo.Create(context.Background(), kind, domain.Category{UserID: userID, Name: name})
	require.NoError(t, err)
	return id
}
