package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	cryptoDomain "github.com/hash066/biavault/internal/crypto/domain"
	apperrors "github.com/hash066/biavault/internal/errors"
	viewDomain "github.com/hash066/biavault/internal/view/domain"
)

// viewUseCase implements the ViewUseCase interface.
type viewUseCase struct {
	snapshots SnapshotReader
	cache     ViewCache
	group     singleflight.Group
}

// NewViewUseCase creates a new derived view use case.
func NewViewUseCase(snapshots SnapshotReader, cache ViewCache) ViewUseCase {
	return &viewUseCase{
		snapshots: snapshots,
		cache:     cache,
	}
}

func (v *viewUseCase) Get(
	ctx context.Context,
	tenantID uuid.UUID,
	viewName, actorID string,
) ([]byte, error) {
	name := viewDomain.Name(viewName)
	if !name.Valid() {
		return nil, fmt.Errorf("%w: %q", viewDomain.ErrUnknownView, viewName)
	}

	if cached, ok := v.cache.Get(ctx, tenantID, viewName); ok {
		return cached, nil
	}

	// Collapse concurrent recomputes for the same tenant and view. The
	// winner's result is shared with every waiter.
	key := fmt.Sprintf("%s:%s", tenantID, viewName)
	result, err, _ := v.group.Do(key, func() (any, error) {
		return v.compute(ctx, tenantID, name, actorID)
	})
	if err != nil {
		return nil, err
	}

	return result.([]byte), nil
}

// compute decrypts the latest snapshot, projects the requested view, and
// fills the cache best-effort.
func (v *viewUseCase) compute(
	ctx context.Context,
	tenantID uuid.UUID,
	name viewDomain.Name,
	actorID string,
) ([]byte, error) {
	snapshot, err := v.snapshots.ReadLatest(ctx, tenantID, actorID)
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(snapshot.Payload)

	var dataset viewDomain.Dataset
	if err := json.Unmarshal(snapshot.Payload, &dataset); err != nil {
		// The payload was validated as JSON at save time but may not match
		// the shape the views consume; an empty projection is still served.
		slog.Warn("snapshot payload does not match view shape", "tenant_id", tenantID, "view", name)
	}

	var projection any
	switch name {
	case viewDomain.Heatmap:
		projection = viewDomain.ComputeHeatmap(&dataset)
	case viewDomain.DependencyGraph:
		projection = viewDomain.ComputeDependencyGraph(&dataset)
	}

	encoded, err := json.Marshal(projection)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to encode view")
	}

	v.cache.Set(ctx, tenantID, string(name), encoded)
	return encoded, nil
}
