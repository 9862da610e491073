package cache

import (
	"context"

	"github.com/google/uuid"
)

// NoOpViewCache is used when no Redis address is configured. Every read is a
// miss, so views are recomputed on each request.
type NoOpViewCache struct{}

// NewNoOpViewCache creates a view cache that caches nothing.
func NewNoOpViewCache() *NoOpViewCache {
	return &NoOpViewCache{}
}

// Get always misses.
func (n *NoOpViewCache) Get(ctx context.Context, tenantID uuid.UUID, viewName string) ([]byte, bool) {
	return nil, false
}

// Set does nothing.
func (n *NoOpViewCache) Set(ctx context.Context, tenantID uuid.UUID, viewName string, value []byte) {}

// InvalidateTenant does nothing.
func (n *NoOpViewCache) InvalidateTenant(ctx context.Context, tenantID uuid.UUID) {}
