package storage

import (
	"context"
	"errors"

	"github.com/devtrail/idea-engine/internal/models"
)

// ErrNotFound is returned when no analysis matches the lookup
var ErrNotFound = errors.New("analysis not found")

// Repository defines the interface for analysis persistence
type Repository interface {
	// Analyses
	CreateAnalysis(ctx context.Context, rec *models.AnalysisRecord) error
	GetAnalysis(ctx context.Context, id string) (*models.AnalysisRecord, error)
	GetLatestByCompany(ctx context.Context, companyName string) (*models.AnalysisRecord, error)
	ListAnalyses(ctx context.Context, filters models.ListFilters) ([]*models.AnalysisRecord, error)
	DeleteAnalysis(ctx context.Context, id string) error

	// Health
	Ping(ctx context.Context) error
	Close() error
}
