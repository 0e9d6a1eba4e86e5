package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Integration tests for database operations. They run against a disposable
// database and wipe its tables between tests.
//
// Run with:
//   RATINGS_TEST_DB_HOST=localhost go test -v ./internal/repository/...

func setupTestDB(t *testing.T) (*Database, context.Context) {
	host := os.Getenv("RATINGS_TEST_DB_HOST")
	if host == "" {
		t.Skip("RATINGS_TEST_DB_HOST not set; skipping database integration tests")
	}

	ctx := context.Background()

	cfg := Config{
		Host:     host,
		Port:     envOr("RATINGS_TEST_DB_PORT", "5432"),
		Database: envOr("RATINGS_TEST_DB_NAME", "ratings_test"),
		User:     envOr("RATINGS_TEST_DB_USER", "ratings_user"),
		Password: envOr("RATINGS_TEST_DB_PASSWORD", "ratings_password"),
		SSLMode:  "disable",
	}

	db, err := NewDatabase(ctx, cfg)
	require.NoError(t, err, "Failed to connect to test database")

	// Start each test from empty tables
	for _, table := range []string{"game_adjustments", "pending_games", "name_overrides", "team_ratings"} {
		_, err := db.Pool.Exec(ctx, "DELETE FROM "+table)
		require.NoError(t, err, "Failed to clear table %s", table)
	}

	return db, ctx
}

func teardownTestDB(t *testing.T, db *Database) {
	db.Close()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func TestDatabaseConnection(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	err := db.Health(ctx)
	assert.NoError(t, err, "Database health check should pass")

	stats := db.PoolStats()
	assert.NotNil(t, stats, "Should return connection pool stats")
	assert.GreaterOrEqual(t, stats["max_conns"].(int32), int32(1), "Should have at least 1 max connection")
}

func TestDatabasePing(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := db.Pool.Ping(ctx)
	assert.NoError(t, err, "Should successfully ping database")
}
