package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/devtrail/idea-engine/internal/models"
)

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// PostgresConfig holds PostgreSQL connection configuration
type PostgresConfig struct {
	DSN          string
	MaxOpenConns int32
	MaxIdleConns int32
	MaxLifetime  time.Duration
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(ctx context.Context, cfg PostgresConfig) (*PostgresRepository, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		poolConfig.MaxConns = cfg.MaxOpenConns
	} else {
		poolConfig.MaxConns = 25
	}

	if cfg.MaxIdleConns > 0 {
		poolConfig.MinConns = cfg.MaxIdleConns
	} else {
		poolConfig.MinConns = 5
	}

	if cfg.MaxLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxLifetime
	} else {
		poolConfig.MaxConnLifetime = 30 * time.Minute
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

// Ping checks database connectivity
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the database connection pool
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

// CreateAnalysis persists one completed analysis. A missing ID or
// timestamp is filled in before the insert.
func (r *PostgresRepository) CreateAnalysis(ctx context.Context, rec *models.AnalysisRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	profileJSON, err := json.Marshal(rec.Profile)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}

	challengesJSON, err := json.Marshal(rec.Challenges)
	if err != nil {
		return fmt.Errorf("failed to marshal challenges: %w", err)
	}

	ideasJSON, err := json.Marshal(rec.Ideas)
	if err != nil {
		return fmt.Errorf("failed to marshal project ideas: %w", err)
	}

	query := `
		INSERT INTO analyses (id, company_name, profile, challenges, project_ideas, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err = r.pool.Exec(ctx, query,
		rec.ID,
		strings.ToLower(strings.TrimSpace(rec.CompanyName)),
		profileJSON,
		challengesJSON,
		ideasJSON,
		rec.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create analysis: %w", err)
	}

	return nil
}

const analysisColumns = `id, company_name, profile, challenges, project_ideas, created_at`

// GetAnalysis retrieves one analysis by ID
func (r *PostgresRepository) GetAnalysis(ctx context.Context, id string) (*models.AnalysisRecord, error) {
	query := `SELECT ` + analysisColumns + ` FROM analyses WHERE id = $1`

	rec, err := r.scanAnalysis(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}

	return rec, nil
}

// GetLatestByCompany retrieves the most recent analysis for a company.
// Matching is case-insensitive.
func (r *PostgresRepository) GetLatestByCompany(ctx context.Context, companyName string) (*models.AnalysisRecord, error) {
	query := `
		SELECT ` + analysisColumns + `
		FROM analyses
		WHERE company_name = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	rec, err := r.scanAnalysis(r.pool.QueryRow(ctx, query, strings.ToLower(strings.TrimSpace(companyName))))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get analysis for company: %w", err)
	}

	return rec, nil
}

// ListAnalyses returns analyses matching filters, newest first
func (r *PostgresRepository) ListAnalyses(ctx context.Context, filters models.ListFilters) ([]*models.AnalysisRecord, error) {
	query := `SELECT ` + analysisColumns + ` FROM analyses WHERE 1=1`
	args := make([]interface{}, 0)
	argNum := 1

	if filters.CompanyName != "" {
		query += fmt.Sprintf(" AND company_name = $%d", argNum)
		args = append(args, strings.ToLower(strings.TrimSpace(filters.CompanyName)))
		argNum++
	}

	query += " ORDER BY created_at DESC"

	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, filters.Limit)
		argNum++
	}

	if filters.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argNum)
		args = append(args, filters.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	defer rows.Close()

	var records []*models.AnalysisRecord
	for rows.Next() {
		rec, err := r.scanAnalysis(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating analyses: %w", err)
	}

	return records, nil
}

// DeleteAnalysis deletes one analysis by ID
func (r *PostgresRepository) DeleteAnalysis(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM analyses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete analysis: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PostgresRepository) scanAnalysis(row rowScanner) (*models.AnalysisRecord, error) {
	var rec models.AnalysisRecord
	var profileJSON, challengesJSON, ideasJSON []byte

	err := row.Scan(
		&rec.ID,
		&rec.CompanyName,
		&profileJSON,
		&challengesJSON,
		&ideasJSON,
		&rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(profileJSON, &rec.Profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile: %w", err)
	}
	if challengesJSON != nil {
		if err := json.Unmarshal(challengesJSON, &rec.Challenges); err != nil {
			return nil, fmt.Errorf("failed to unmarshal challenges: %w", err)
		}
	}
	if ideasJSON != nil {
		if err := json.Unmarshal(ideasJSON, &rec.Ideas); err != nil {
			return nil, fmt.Errorf("failed to unmarshal project ideas: %w", err)
		}
	}

	return &rec, nil
}
