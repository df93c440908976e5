package db

import (
	"context"
	"fmt"
	"strings"

	"loganalyser/internal/models"
)

// Store is an append-only store of analyses.
type Store interface {
	CreateAnalysis(ctx context.Context, a *models.Analysis) error
	GetAnalysis(ctx context.Context, id int64) (*models.Analysis, error)
	ListAnalyses(ctx context.Context) ([]models.Analysis, error)
	SummarizeAnalyses(ctx context.Context) (models.AnalysisSummary, error)
	Ping(ctx context.Context) error
	Close()
}

var (
	_ Store = (*DB)(nil)
	_ Store = (*SQLite)(nil)
)

const sqliteScheme = "sqlite://"

// Open connects to the store named by databaseURL and applies migrations.
// postgres:// and postgresql:// URLs use PostgreSQL, sqlite://<path> uses SQLite.
func Open(ctx context.Context, databaseURL string) (Store, error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		database, err := New(ctx, databaseURL)
		if err != nil {
			return nil, err
		}
		if err := database.RunMigrations(databaseURL); err != nil {
			database.Close()
			return nil, err
		}
		return database, nil

	case strings.HasPrefix(databaseURL, sqliteScheme):
		path := strings.TrimPrefix(databaseURL, sqliteScheme)
		if path == "" {
			return nil, fmt.Errorf("%w: missing sqlite path", ErrUnsupportedBackend)
		}
		database, err := NewSQLite(ctx, path)
		if err != nil {
			return nil, err
		}
		if err := database.RunMigrations(); err != nil {
			database.Close()
			return nil, err
		}
		return database, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnsupportedBackend, redact(databaseURL))
}

// redact drops everything after the scheme so credentials are not logged.
func redact(databaseURL string) string {
	if i := strings.Index(databaseURL, "://"); i >= 0 {
		return databaseURL[:i+3] + "..."
	}
	return databaseURL
}
