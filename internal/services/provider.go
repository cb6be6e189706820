// Package services tracks the external dependencies the engine talks to
// and exposes their health for the readiness endpoint.
package services

import (
	"context"
)

// Provider is one external dependency whose availability gates readiness
type Provider interface {
	// Type returns the dependency type name
	Type() string

	// HealthCheck checks if the dependency is reachable
	HealthCheck(ctx context.Context) error

	// Close releases the provider's connections
	Close() error
}

// BaseProvider provides common functionality for providers
type BaseProvider struct {
	serviceType string
}

// Type returns the dependency type
func (p *BaseProvider) Type() string {
	return p.serviceType
}
