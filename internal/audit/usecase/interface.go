// Package usecase implements the audit trail business logic: synchronous
// signed recording of snapshot-affecting actions, compliance queries, and
// retention of monthly partitions.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/hash066/biavault/internal/audit/domain"
)

// AuditRepository defines the interface for AuditEntry persistence operations.
type AuditRepository interface {
	Create(ctx context.Context, entry *auditDomain.AuditEntry) error
	ListByTenant(
		ctx context.Context,
		tenantID uuid.UUID,
		start, end time.Time,
		offset, limit int,
	) ([]*auditDomain.AuditEntry, error)
	List(ctx context.Context, offset, limit int) ([]*auditDomain.AuditEntry, error)
	DeletePartitionsBefore(ctx context.Context, partitionKey string) (int64, error)
}

// AuditUseCase defines the interface for audit trail business logic.
type AuditUseCase interface {
	// Record creates, signs, and persists an audit entry for the given action.
	// It must complete before the recorded action is reported as successful.
	Record(
		ctx context.Context,
		tenantID uuid.UUID,
		snapshotID *uuid.UUID,
		action auditDomain.Action,
		actorID string,
		details map[string]any,
	) (*auditDomain.AuditEntry, error)

	// ListByTenant returns a tenant's audit entries within [start, end),
	// newest first, with pagination.
	ListByTenant(
		ctx context.Context,
		tenantID uuid.UUID,
		start, end time.Time,
		offset, limit int,
	) ([]*auditDomain.AuditEntry, error)

	// VerifySignatures walks stored entries in batches and re-checks their
	// signatures. Returns the number checked and the invalid entries found.
	VerifySignatures(ctx context.Context, batchSize int) (int, []*auditDomain.AuditEntry, error)

	// CleanPartitions removes monthly partitions older than the retention
	// window. Returns the number of archived entries.
	CleanPartitions(ctx context.Context, retentionMonths int) (int64, error)
}
