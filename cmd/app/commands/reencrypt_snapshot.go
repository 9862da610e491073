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

// RunReencryptSnapshot re-saves an historical snapshot version as a new head
// version encrypted under the tenant's current key version. Run after
// rotate-key to migrate data off an old key version.
//
// Requirements: Database must be migrated and the master secret loaded.
func RunReencryptSnapshot(ctx context.Context, tenantID string, version uint64, actorID string) error {
	id, err := uuid.Parse(tenantID)
	if err != nil {
		return fmt.Errorf("invalid tenant id: %w", err)
	}
	if version == 0 {
		return fmt.Errorf("version must be a positive integer")
	}

	cfg := config.Load()
	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer closeContainer(container, logger)

	useCase, err := container.SnapshotUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize snapshot use case: %w", err)
	}

	return reencryptSnapshot(ctx, useCase, logger, os.Stdout, id, version, actorID)
}

func reencryptSnapshot(
	ctx context.Context,
	useCase snapshotUseCase.SnapshotUseCase,
	logger *slog.Logger,
	writer io.Writer,
	tenantID uuid.UUID,
	version uint64,
	actorID string,
) error {
	logger.Info("re-encrypting snapshot",
		slog.String("tenant_id", tenantID.String()),
		slog.Uint64("version", version),
	)

	snapshot, err := useCase.Reencrypt(ctx, tenantID, version, actorID)
	if err != nil {
		return fmt.Errorf("failed to re-encrypt snapshot: %w", err)
	}

	_, _ = fmt.Fprintf(writer, "Snapshot version %d re-encrypted for tenant %s\n", version, tenantID)
	_, _ = fmt.Fprintf(writer, "New head version: %d\n", snapshot.Version)
	_, _ = fmt.Fprintf(writer, "Key version:      %d\n", snapshot.Envelope.KeyVersion)
	return nil
}
