package store

import (
	"context"

	"github.com/a11yscan/a11yscan/internal/models"
)

// Store defines the persistence interface for a11yscan.
type Store interface {
	// Audit runs
	CreateAuditRun(ctx context.Context, run *models.AuditRun) error
	GetAuditRun(ctx context.Context, id string) (*models.AuditRun, error)
	ListAuditRuns(ctx context.Context, limit int) ([]*models.AuditRun, error)

	// Page results
	SavePageResults(ctx context.Context, runID string, pages []models.PageResult) error
	ListPageResults(ctx context.Context, runID string) ([]models.PageResult, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
