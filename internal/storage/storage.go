package storage

import (
	"context"

	"github.com/Epistemic-Technology/pdfsplit/models"
)

// Store defines the interface for recording split and merge runs
type Store interface {
	// RecordRun stores a run and returns its ID, generating one if the record has none
	RecordRun(ctx context.Context, run *models.RunRecord) (string, error)

	// GetRun retrieves a run and its output files by ID
	GetRun(ctx context.Context, runID string) (*models.RunRecord, error)

	// ListRuns returns the most recent runs first, at most limit of them (0 means all)
	ListRuns(ctx context.Context, limit int) ([]models.RunRecord, error)

	// DeleteRun removes a run and its output file entries
	DeleteRun(ctx context.Context, runID string) error

	// Close closes the database connection
	Close() error
}
