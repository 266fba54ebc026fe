package repository

import (
	"context"

	"wavewall-mockups/models"
)

// RenderRecordRepositoryInterface defines the contract for the optional
// render-history log. Generation works identically with a nil
// implementation; history is pure observability.
type RenderRecordRepositoryInterface interface {
	Insert(ctx context.Context, rec *models.RenderRecord) error
	ListRecent(ctx context.Context, limit int) ([]models.RenderRecord, error)
	CountByTemplate(ctx context.Context) (map[string]int, error)
}
