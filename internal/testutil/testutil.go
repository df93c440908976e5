// Package testutil provides test utilities and helpers.
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"loganalyser/internal/db"
	"loganalyser/internal/models"
)

// SQLiteStore opens a migrated SQLite store in a temporary directory.
// The store is closed when the test finishes.
func SQLiteStore(t *testing.T) db.Store {
	t.Helper()

	store, err := db.Open(context.Background(), "sqlite://"+filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	t.Cleanup(store.Close)

	return store
}

// PostgresStore connects to TEST_DATABASE_URL, applies migrations and empties
// the analyses table. The test is skipped when the variable is unset.
func PostgresStore(t *testing.T) db.Store {
	t.Helper()

	connString := os.Getenv("TEST_DATABASE_URL")
	if connString == "" {
		t.Skip("Skipping integration test: TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	store, err := db.Open(ctx, connString)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	pg, ok := store.(*db.DB)
	if !ok {
		store.Close()
		t.Fatalf("TEST_DATABASE_URL must be a postgres url, got %T store", store)
	}

	cleanup := func() {
		pg.Pool.Exec(ctx, "DELETE FROM analyses")
	}
	cleanup()
	t.Cleanup(func() {
		cleanup()
		store.Close()
	})

	return store
}

// CreateTestAnalysis stores an analysis for result and returns it.
func CreateTestAnalysis(t *testing.T, store db.Store, result models.Result) *models.Analysis {
	t.Helper()

	a := models.NewAnalysis(result)
	if err := store.CreateAnalysis(context.Background(), a); err != nil {
		t.Fatalf("failed to create test analysis: %v", err)
	}

	return a
}
