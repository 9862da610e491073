// Package usecase implements the snapshot orchestration pipeline: payload
// validation, key derivation, envelope encryption, atomic versioned append,
// synchronous audit recording, and cache invalidation.
package usecase

import (
	"context"

	"github.com/google/uuid"

	auditDomain "github.com/hash066/biavault/internal/audit/domain"
	snapshotDomain "github.com/hash066/biavault/internal/snapshot/domain"
)

// SnapshotRepository defines the interface for Snapshot persistence operations.
type SnapshotRepository interface {
	// Append stores the snapshot under the tenant's next version and writes
	// the assigned version back into the snapshot.
	Append(ctx context.Context, snapshot *snapshotDomain.Snapshot) error
	GetLatest(ctx context.Context, tenantID uuid.UUID) (*snapshotDomain.Snapshot, error)
	GetByVersion(ctx context.Context, tenantID uuid.UUID, version uint64) (*snapshotDomain.Snapshot, error)
	List(ctx context.Context, tenantID uuid.UUID, offset, limit int) ([]*snapshotDomain.Snapshot, error)
}

// TenantKeyRepository defines the interface for tenant key version persistence.
type TenantKeyRepository interface {
	Get(ctx context.Context, tenantID uuid.UUID) (*snapshotDomain.TenantKey, error)
	Upsert(ctx context.Context, key *snapshotDomain.TenantKey) error
}

// AuditRecorder records audit entries for snapshot-affecting actions.
// Satisfied by the audit use case.
type AuditRecorder interface {
	Record(
		ctx context.Context,
		tenantID uuid.UUID,
		snapshotID *uuid.UUID,
		action auditDomain.Action,
		actorID string,
		details map[string]any,
	) (*auditDomain.AuditEntry, error)
}

// ViewInvalidator invalidates a tenant's cached derived views. Satisfied by
// cache.ViewCache; best-effort, never returns an error.
type ViewInvalidator interface {
	InvalidateTenant(ctx context.Context, tenantID uuid.UUID)
}

// SaveInput carries one snapshot save request.
type SaveInput struct {
	TenantID uuid.UUID
	// Payload is the serialized dataset. Must be a non-empty JSON document
	// within the configured size limit; its structure is otherwise opaque.
	Payload []byte
	ActorID string
	Source  snapshotDomain.Source
	// RecordCount is the number of top-level records, reported by the caller
	// for list views.
	RecordCount int
	Notes       string
}

// SnapshotUseCase defines the interface for snapshot business logic.
type SnapshotUseCase interface {
	// Save validates, encrypts, and appends the payload as the tenant's next
	// snapshot version, records a SAVE audit entry, and invalidates cached
	// views. A failure after the durable append surfaces as
	// *snapshotDomain.PartialFailure naming the orphaned version.
	Save(ctx context.Context, input SaveInput) (*snapshotDomain.Snapshot, error)

	// ReadLatest returns the tenant's newest snapshot with the payload
	// decrypted and integrity-checked.
	//
	// Security Note: The returned Snapshot contains plaintext data in the
	// Payload field. Callers MUST zero it after use (cryptoDomain.Zero).
	ReadLatest(ctx context.Context, tenantID uuid.UUID, actorID string) (*snapshotDomain.Snapshot, error)

	// ReadVersion returns a specific snapshot version with the payload
	// decrypted and integrity-checked.
	//
	// Security Note: The returned Snapshot contains plaintext data in the
	// Payload field. Callers MUST zero it after use (cryptoDomain.Zero).
	ReadVersion(ctx context.Context, tenantID uuid.UUID, version uint64, actorID string) (*snapshotDomain.Snapshot, error)

	// List returns snapshot metadata newest first. Payloads stay encrypted.
	List(ctx context.Context, tenantID uuid.UUID, offset, limit int) ([]*snapshotDomain.Snapshot, error)

	// Rollback re-saves the payload of an historical version as the new head.
	Rollback(ctx context.Context, tenantID uuid.UUID, version uint64, actorID, note string) (*snapshotDomain.Snapshot, error)

	// Approve records a reviewer accepting a snapshot version.
	Approve(ctx context.Context, tenantID uuid.UUID, version uint64, actorID, note string) error

	// Reject records a reviewer declining a snapshot version.
	Reject(ctx context.Context, tenantID uuid.UUID, version uint64, actorID, note string) error

	// RotateKey bumps the tenant's current key version. Metadata only:
	// existing snapshots keep their own key versions and stay readable.
	RotateKey(ctx context.Context, tenantID uuid.UUID, actorID string) (*snapshotDomain.TenantKey, error)

	// Reencrypt re-saves an historical version under the tenant's current key
	// version. Operator-triggered migration, exposed as a CLI command.
	Reencrypt(ctx context.Context, tenantID uuid.UUID, version uint64, actorID string) (*snapshotDomain.Snapshot, error)
}
