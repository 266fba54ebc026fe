package repository

import (
	"context"
	"database/sql"
	"fmt"

	"wavewall-mockups/models"
)

// RenderRecordRepository persists render-history rows in PostgreSQL.
// Implements RenderRecordRepositoryInterface.
type RenderRecordRepository struct {
	db *sql.DB
}

// NewRenderRecordRepository creates a repository over an open connection.
func NewRenderRecordRepository(db *sql.DB) *RenderRecordRepository {
	return &RenderRecordRepository{db: db}
}

// Ensure RenderRecordRepository implements RenderRecordRepositoryInterface
var _ RenderRecordRepositoryInterface = (*RenderRecordRepository)(nil)

// Insert appends one render-history row.
func (r *RenderRecordRepository) Insert(ctx context.Context, rec *models.RenderRecord) error {
	query := `
		INSERT INTO render_records (run_id, template_id, design_hash, cached, render_ms)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		rec.RunID, rec.TemplateID, rec.DesignHash, rec.Cached, rec.RenderMs,
	).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert render record: %w", err)
	}
	return nil
}

// ListRecent returns the newest render records, newest first.
func (r *RenderRecordRepository) ListRecent(ctx context.Context, limit int) ([]models.RenderRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, run_id, template_id, design_hash, cached, render_ms, created_at
		FROM render_records
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query render records: %w", err)
	}
	defer rows.Close()

	var records []models.RenderRecord
	for rows.Next() {
		var rec models.RenderRecord
		if err := rows.Scan(&rec.ID, &rec.RunID, &rec.TemplateID, &rec.DesignHash, &rec.Cached, &rec.RenderMs, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan render record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate render records: %w", err)
	}
	return records, nil
}

// CountByTemplate returns the number of recorded renders per template id.
func (r *RenderRecordRepository) CountByTemplate(ctx context.Context) (map[string]int, error) {
	query := `SELECT template_id, COUNT(*) FROM render_records GROUP BY template_id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count render records: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("failed to scan render count: %w", err)
		}
		counts[id] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate render counts: %w", err)
	}
	return counts, nil
}
