// Package cache provides the best-effort memoization layer for completed
// analyses, keyed by company name. It is pure memoization: entries expire
// by TTL and the store is bounded, so a miss only costs a fresh model call.
package cache

import (
	"context"
	"strings"

	"github.com/devtrail/idea-engine/internal/models"
)

// Store is the cache interface the orchestrators depend on. Implementations
// must be safe for concurrent use. Errors are operational (backend down);
// a miss is (nil, false, nil).
type Store interface {
	Get(ctx context.Context, key string) (*models.AnalyzeCompanyResponse, bool, error)
	Set(ctx context.Context, key string, value *models.AnalyzeCompanyResponse) error
	Close() error
}

// Key normalizes a company name into a cache key
func Key(companyName string) string {
	return "analysis:" + strings.ToLower(strings.TrimSpace(companyName))
}
