package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/hash066/biavault/internal/app"
	"github.com/hash066/biavault/internal/config"
	snapshotUseCase "github.com/hash066/biavault/internal/snapshot/usecase"
)

// RunRotateKey bumps a tenant's current key version. Existing snapshots keep
// their own key versions and stay readable; only new writes pick up the
// rotated version. Use reencrypt-snapshot afterwards to migrate old versions.
func RunRotateKey(ctx context.Context, tenantID, actorID string) error {
	id, err := uuid.Parse(tenantID)
	if err != nil {
		return fmt.Errorf("invalid tenant id: %w", err)
	}

	cfg := config.Load()
	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer closeContainer(container, logger)

	useCase, err := container.SnapshotUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize snapshot use case: %w", err)
	}

	return rotateKey(ctx, useCase, logger, os.Stdout, id, actorID)
}

func rotateKey(
	ctx context.Context,
	useCase snapshotUseCase.SnapshotUseCase,
	logger *slog.Logger,
	writer io.Writer,
	tenantID uuid.UUID,
	actorID string,
) error {
	logger.Info("rotating tenant key",
		slog.String("tenant_id", tenantID.String()),
		slog.String("actor_id", actorID),
	)

	key, err := useCase.RotateKey(ctx, tenantID, actorID)
	if err != nil {
		return fmt.Errorf("failed to rotate key: %w", err)
	}

	_, _ = fmt.Fprintf(writer, "Key rotated for tenant %s\n", key.TenantID)
	_, _ = fmt.Fprintf(writer, "Current key version: %d\n", key.KeyVersion)
	_, _ = fmt.Fprintf(writer, "Rotated at:          %s\n", key.RotatedAt.Format("2006-01-02 15:04:05"))
	return nil
}
