package services

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// setupTestDB connects to the test database, skipping the test when no
// database is configured so the pure tests still run everywhere.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL or DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("Failed to ping test database: %v", err)
	}

	return pool
}

// cleanupTestDB removes test users; the ON DELETE CASCADE constraints take
// their metrics, goals, ledger entries and notifications with them.
func cleanupTestDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()
	_, err := pool.Exec(ctx, "DELETE FROM users WHERE clerk_id LIKE 'user_test_%'")
	if err != nil {
		t.Logf("Warning: failed to cleanup test data: %v", err)
	}
	_, err = pool.Exec(ctx, "DELETE FROM achievements WHERE name LIKE 'test_%'")
	if err != nil {
		t.Logf("Warning: failed to cleanup test achievements: %v", err)
	}
	pool.Close()
}

func testClerkID(t *testing.T) string {
	t.Helper()
	return fmt.Sprintf("user_test_%s_%d", t.Name(), time.Now().UnixNano())
}
