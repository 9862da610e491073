// Package usecase implements read-through derived view computation: cache
// lookup, singleflight-collapsed recompute from the decrypted latest
// snapshot, and best-effort cache fill.
package usecase

import (
	"context"

	"github.com/google/uuid"

	snapshotDomain "github.com/hash066/biavault/internal/snapshot/domain"
)

// SnapshotReader reads the tenant's latest snapshot with the payload
// decrypted. Satisfied by the snapshot use case.
type SnapshotReader interface {
	ReadLatest(ctx context.Context, tenantID uuid.UUID, actorID string) (*snapshotDomain.Snapshot, error)
}

// ViewCache is the subset of the cache layer the views consume.
type ViewCache interface {
	Get(ctx context.Context, tenantID uuid.UUID, viewName string) ([]byte, bool)
	Set(ctx context.Context, tenantID uuid.UUID, viewName string, value []byte)
}

// ViewUseCase defines the interface for derived view reads.
type ViewUseCase interface {
	// Get returns the JSON-encoded view for the tenant, serving from cache
	// when possible and recomputing from the latest snapshot otherwise.
	// Concurrent recomputes for the same (tenant, view) collapse into one.
	Get(ctx context.Context, tenantID uuid.UUID, viewName, actorID string) ([]byte, error)
}
