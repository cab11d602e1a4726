// Package tests provides integration tests that exercise the service against
// a real PostgreSQL database. They run only when DATABASE_URL is set.
package tests

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/retrolist/games-service/pkg/database"
)

// setupTestDB connects to the database named by DATABASE_URL and wipes the
// games and webhooks tables. Skips the test when DATABASE_URL is unset.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()

	db, err := database.NewPostgresPool(ctx, databaseURL)
	require.NoError(t, err)

	t.Cleanup(db.Close)

	_, err = db.Exec(ctx, "TRUNCATE games, webhooks")
	require.NoError(t, err)

	return db
}
