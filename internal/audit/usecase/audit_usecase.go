package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/hash066/biavault/internal/audit/domain"
	auditService "github.com/hash066/biavault/internal/audit/service"
)

const verifyDefaultBatchSize = 500

type auditUseCase struct {
	repository AuditRepository
	signer     auditService.AuditSigner
}

// NewAuditUseCase creates a new audit trail use case.
func NewAuditUseCase(repository AuditRepository, signer auditService.AuditSigner) AuditUseCase {
	return &auditUseCase{
		repository: repository,
		signer:     signer,
	}
}

func (a *auditUseCase) Record(
	ctx context.Context,
	tenantID uuid.UUID,
	snapshotID *uuid.UUID,
	action auditDomain.Action,
	actorID string,
	details map[string]any,
) (*auditDomain.AuditEntry, error) {
	if !action.Valid() {
		return nil, fmt.Errorf("%w: %q", auditDomain.ErrInvalidAction, action)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate audit entry id: %w", err)
	}

	// Microsecond precision matches the database column, so the signed
	// timestamp survives the storage round-trip.
	now := time.Now().UTC().Truncate(time.Microsecond)
	entry := &auditDomain.AuditEntry{
		ID:           id,
		TenantID:     tenantID,
		SnapshotID:   snapshotID,
		Action:       action,
		ActorID:      actorID,
		Details:      details,
		PartitionKey: auditDomain.PartitionKeyFor(now),
		CreatedAt:    now,
	}

	signature, err := a.signer.Sign(entry)
	if err != nil {
		return nil, fmt.Errorf("failed to sign audit entry: %w", err)
	}
	entry.Signature = signature

	if err := a.repository.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to persist audit entry: %w", err)
	}

	return entry, nil
}

func (a *auditUseCase) ListByTenant(
	ctx context.Context,
	tenantID uuid.UUID,
	start, end time.Time,
	offset, limit int,
) ([]*auditDomain.AuditEntry, error) {
	return a.repository.ListByTenant(ctx, tenantID, start, end, offset, limit)
}

func (a *auditUseCase) VerifySignatures(
	ctx context.Context,
	batchSize int,
) (int, []*auditDomain.AuditEntry, error) {
	if batchSize <= 0 {
		batchSize = verifyDefaultBatchSize
	}

	checked := 0
	var invalid []*auditDomain.AuditEntry

	for offset := 0; ; offset += batchSize {
		entries, err := a.repository.List(ctx, offset, batchSize)
		if err != nil {
			return checked, invalid, fmt.Errorf("failed to list audit entries: %w", err)
		}
		if len(entries) == 0 {
			break
		}

		for _, entry := range entries {
			if err := a.signer.Verify(entry); err != nil {
				slog.Warn(
					"audit entry signature invalid",
					"entry_id", entry.ID,
					"tenant_id", entry.TenantID,
					"action", entry.Action,
				)
				invalid = append(invalid, entry)
			}
			checked++
		}

		if len(entries) < batchSize {
			break
		}
	}

	return checked, invalid, nil
}

func (a *auditUseCase) CleanPartitions(ctx context.Context, retentionMonths int) (int64, error) {
	if retentionMonths < 1 {
		retentionMonths = 1
	}

	cutoff := time.Now().UTC().AddDate(0, -retentionMonths, 0)
	partitionKey := auditDomain.PartitionKeyFor(cutoff)

	removed, err := a.repository.DeletePartitionsBefore(ctx, partitionKey)
	if err != nil {
		return 0, fmt.Errorf("failed to clean audit partitions: %w", err)
	}

	slog.Info("audit partitions cleaned", "cutoff_partition", partitionKey, "entries_removed", removed)
	return removed, nil
}
