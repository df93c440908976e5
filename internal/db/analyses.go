package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"loganalyser/internal/models"
)

// CreateAnalysis inserts an analysis and fills in its ID and CreatedAt.
func (d *DB) CreateAnalysis(ctx context.Context, a *models.Analysis) error {
	counts, err := a.Counts.Encode()
	if err != nil {
		return fmt.Errorf("failed to encode counts: %w", err)
	}

	query := `
		INSERT INTO analyses (counts, total_lines, malformed_lines)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	if err := d.Pool.QueryRow(ctx, query, counts, a.TotalLines, a.MalformedLines).Scan(
		&a.ID, &a.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to insert analysis: %w", err)
	}
	a.CreatedAt = a.CreatedAt.UTC()

	return nil
}

// GetAnalysis retrieves an analysis by ID.
func (d *DB) GetAnalysis(ctx context.Context, id int64) (*models.Analysis, error) {
	query := `
		SELECT id, created_at, counts, total_lines, malformed_lines
		FROM analyses WHERE id = $1
	`

	a, err := scanAnalysis(d.Pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAnalysisNotFound
	}
	if err != nil {
		return nil, err
	}

	return a, nil
}

// ListAnalyses retrieves every analysis in insertion order.
func (d *DB) ListAnalyses(ctx context.Context) ([]models.Analysis, error) {
	query := `
		SELECT id, created_at, counts, total_lines, malformed_lines
		FROM analyses ORDER BY id ASC
	`

	rows, err := d.Pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	analyses := make([]models.Analysis, 0)
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		analyses = append(analyses, *a)
	}

	return analyses, rows.Err()
}

// SummarizeAnalyses totals every stored analysis.
func (d *DB) SummarizeAnalyses(ctx context.Context) (models.AnalysisSummary, error) {
	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM((counts::jsonb->>'ERROR')::bigint), 0)::bigint,
			COALESCE(SUM((counts::jsonb->>'WARNING')::bigint), 0)::bigint,
			COALESCE(SUM((counts::jsonb->>'INFO')::bigint), 0)::bigint,
			COALESCE(SUM(total_lines), 0),
			COALESCE(SUM(malformed_lines), 0)
		FROM analyses
	`

	var s models.AnalysisSummary
	err := d.Pool.QueryRow(ctx, query).Scan(
		&s.Analyses, &s.Counts.Error, &s.Counts.Warning, &s.Counts.Info,
		&s.TotalLines, &s.MalformedLines,
	)
	return s, err
}

// scanAnalysis reads one analyses row, decoding the counts column.
func scanAnalysis(row pgx.Row) (*models.Analysis, error) {
	var a models.Analysis
	var counts string
	if err := row.Scan(&a.ID, &a.CreatedAt, &counts, &a.TotalLines, &a.MalformedLines); err != nil {
		return nil, err
	}

	c, err := models.DecodeCounts(counts)
	if err != nil {
		return nil, err
	}
	a.Counts = c
	a.CreatedAt = a.CreatedAt.UTC()

	return &a, nil
}
