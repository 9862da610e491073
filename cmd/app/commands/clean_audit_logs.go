package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/hash066/biavault/internal/app"
	auditUseCase "github.com/hash066/biavault/internal/audit/usecase"
	"github.com/hash066/biavault/internal/config"
)

// RunCleanAuditLogs drops monthly audit partitions older than the retention
// window. With months=0 the configured AUDIT_RETENTION_MONTHS applies.
// Supports both text and JSON output formats.
//
// Requirements: Database must be migrated and accessible.
func RunCleanAuditLogs(ctx context.Context, months int, format string) error {
	cfg := config.Load()
	if months == 0 {
		months = cfg.AuditRetentionMonths
	}
	if months < 0 {
		return fmt.Errorf("months must be a positive number, got: %d", months)
	}

	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer closeContainer(container, logger)

	useCase, err := container.AuditUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize audit use case: %w", err)
	}

	return cleanAuditLogs(ctx, useCase, logger, os.Stdout, months, format)
}

func cleanAuditLogs(
	ctx context.Context,
	useCase auditUseCase.AuditUseCase,
	logger *slog.Logger,
	writer io.Writer,
	months int,
	format string,
) error {
	logger.Info("cleaning audit partitions", slog.Int("retention_months", months))

	count, err := useCase.CleanPartitions(ctx, months)
	if err != nil {
		return fmt.Errorf("failed to clean audit partitions: %w", err)
	}

	if format == "json" {
		result := map[string]interface{}{
			"archived_count":   count,
			"retention_months": months,
		}
		jsonBytes, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		_, _ = fmt.Fprintln(writer, string(jsonBytes))
	} else {
		_, _ = fmt.Fprintf(writer, "Archived %d audit entry(ies) older than %d month(s)\n", count, months)
	}

	logger.Info("cleanup completed", slog.Int64("count", count))
	return nil
}
