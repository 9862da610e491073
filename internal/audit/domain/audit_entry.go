// Package domain defines the audit trail models. Audit entries are
// append-only: they are created synchronously with the action they record and
// never mutated or deleted except by retention-driven archival of whole
// monthly partitions.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Action identifies the snapshot-affecting operation an audit entry records.
type Action string

const (
	// ActionSave records a new snapshot version being appended.
	ActionSave Action = "SAVE"
	// ActionRead records a snapshot being decrypted and returned.
	ActionRead Action = "READ"
	// ActionRollback records an historical version being re-saved as the new head.
	ActionRollback Action = "ROLLBACK"
	// ActionKeyRotate records a tenant's current key version being bumped.
	ActionKeyRotate Action = "KEY_ROTATE"
	// ActionApprove records a reviewer accepting a snapshot version.
	ActionApprove Action = "APPROVE"
	// ActionReject records a reviewer declining a snapshot version.
	ActionReject Action = "REJECT"
)

// Valid reports whether the action is one of the known values.
func (a Action) Valid() bool {
	switch a {
	case ActionSave, ActionRead, ActionRollback, ActionKeyRotate, ActionApprove, ActionReject:
		return true
	}
	return false
}

// AuditEntry records one snapshot-affecting action for a tenant.
//
// SnapshotID is nil for actions that produced no snapshot (e.g., a failed
// decrypt or a key rotation). The Signature is an HMAC over the canonical
// encoding of the entry, making after-the-fact modification of stored entries
// detectable. PartitionKey ("YYYY-MM") groups entries into monthly windows
// purely for retention; it never affects query correctness or ordering.
type AuditEntry struct {
	ID           uuid.UUID
	TenantID     uuid.UUID
	SnapshotID   *uuid.UUID
	Action       Action
	ActorID      string
	Details      map[string]any
	Signature    []byte
	PartitionKey string
	CreatedAt    time.Time
}

// PartitionKeyFor returns the monthly partition key for a timestamp.
func PartitionKeyFor(t time.Time) string {
	return t.UTC().Format("2006-01")
}
