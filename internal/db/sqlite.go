package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"loganalyser/internal/models"
	"loganalyser/migrations"
)

// SQLite is the SQLite store, backed by a single database file.
type SQLite struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// NewSQLite opens the SQLite database at path, creating its directory if needed.
func NewSQLite(ctx context.Context, path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection serializes writers; busy_timeout covers the migrator's own connection.
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := sqlDB.ExecContext(ctx, pragma); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("failed to execute %s: %w", pragma, err)
		}
	}

	return &SQLite{
		db:   sqlDB,
		path: path,
		now:  func() time.Time { return time.Now().UTC() },
	}, nil
}

// RunMigrations runs all embedded SQLite migrations on a dedicated
// connection to the database file. The path is used as is, never as a URL.
func (s *SQLite) RunMigrations() error {
	migrationDB, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open migration connection: %w", err)
	}

	driver, err := sqlitemigrate.WithInstance(migrationDB, &sqlitemigrate.Config{})
	if err != nil {
		_ = migrationDB.Close()
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	sourceDriver, err := iofs.New(migrations.FS, migrations.SQLiteDir)
	if err != nil {
		_ = driver.Close()
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite", driver)
	if err != nil {
		_ = driver.Close()
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	return applyMigrations(m)
}

// Ping checks that the database is reachable.
func (s *SQLite) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *SQLite) Close() {
	if err := s.db.Close(); err != nil {
		slog.Error("failed to close sqlite database", "path", s.path, "error", err)
	}
}

// CreateAnalysis inserts an analysis and fills in its ID and CreatedAt.
func (s *SQLite) CreateAnalysis(ctx context.Context, a *models.Analysis) error {
	counts, err := a.Counts.Encode()
	if err != nil {
		return fmt.Errorf("failed to encode counts: %w", err)
	}

	createdAt := s.now()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO analyses (created_at, counts, total_lines, malformed_lines)
		VALUES (?, ?, ?, ?)
	`, createdAt.Format(time.RFC3339Nano), counts, a.TotalLines, a.MalformedLines)
	if err != nil {
		return fmt.Errorf("failed to insert analysis: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read analysis id: %w", err)
	}

	a.ID = id
	a.CreatedAt = createdAt
	return nil
}

// GetAnalysis retrieves an analysis by ID.
func (s *SQLite) GetAnalysis(ctx context.Context, id int64) (*models.Analysis, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, counts, total_lines, malformed_lines
		FROM analyses WHERE id = ?
	`, id)

	a, err := scanSQLiteAnalysis(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAnalysisNotFound
	}
	if err != nil {
		return nil, err
	}

	return a, nil
}

// ListAnalyses retrieves every analysis in insertion order.
func (s *SQLite) ListAnalyses(ctx context.Context) ([]models.Analysis, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, counts, total_lines, malformed_lines
		FROM analyses ORDER BY id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	analyses := make([]models.Analysis, 0)
	for rows.Next() {
		a, err := scanSQLiteAnalysis(rows)
		if err != nil {
			return nil, err
		}
		analyses = append(analyses, *a)
	}

	return analyses, rows.Err()
}

// SummarizeAnalyses totals every stored analysis.
func (s *SQLite) SummarizeAnalyses(ctx context.Context) (models.AnalysisSummary, error) {
	var sum models.AnalysisSummary
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(json_extract(counts, '$.ERROR')), 0),
			COALESCE(SUM(json_extract(counts, '$.WARNING')), 0),
			COALESCE(SUM(json_extract(counts, '$.INFO')), 0),
			COALESCE(SUM(total_lines), 0),
			COALESCE(SUM(malformed_lines), 0)
		FROM analyses
	`).Scan(
		&sum.Analyses, &sum.Counts.Error, &sum.Counts.Warning, &sum.Counts.Info,
		&sum.TotalLines, &sum.MalformedLines,
	)
	return sum, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteAnalysis(row rowScanner) (*models.Analysis, error) {
	var a models.Analysis
	var createdAt, counts string
	if err := row.Scan(&a.ID, &createdAt, &counts, &a.TotalLines, &a.MalformedLines); err != nil {
		return nil, err
	}

	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at %q: %w", createdAt, err)
	}
	a.CreatedAt = t

	c, err := models.DecodeCounts(counts)
	if err != nil {
		return nil, err
	}
	a.Counts = c

	return &a, nil
}
