// Package domain defines the core domain models for versioned encrypted
// snapshots. Snapshots are immutable and append-only: every save creates a
// new row with the next gapless version number for the tenant, and
// corrections are new versions, never in-place edits.
package domain

import (
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/hash066/biavault/internal/crypto/domain"
)

// Source identifies who produced a snapshot payload.
type Source string

const (
	// SourceHuman marks a dataset entered or edited by a person.
	SourceHuman Source = "HUMAN"
	// SourceAI marks a dataset produced by an automated suggestion pipeline.
	SourceAI Source = "AI"
)

// Valid reports whether the source is one of the known values.
func (s Source) Valid() bool {
	return s == SourceHuman || s == SourceAI
}

// Snapshot represents one immutable encrypted version of a tenant's dataset.
type Snapshot struct {
	// ID is the unique identifier for this specific snapshot version.
	ID uuid.UUID
	// TenantID is the owning organization. All access is partitioned by tenant.
	TenantID uuid.UUID
	// Version is the monotonically increasing, gapless version number for the
	// tenant, starting at 1.
	Version uint64
	// Envelope holds the encrypted payload with its key version, algorithm,
	// nonce, and plaintext checksum.
	Envelope cryptoDomain.Envelope
	// SavedBy is the actor id recorded for this version.
	SavedBy string
	// Source records whether the payload came from a human or an AI pipeline.
	Source Source
	// RecordCount is the number of top-level records in the payload, captured
	// at save time for list views without decryption.
	RecordCount int
	// Notes is the free-form note attached by the saving actor.
	Notes string
	// CreatedAt is the UTC timestamp when this version was created.
	CreatedAt time.Time
	// Payload holds the decrypted payload in memory only; never persisted.
	Payload []byte `json:"-"`
}

// TenantKey tracks the current key version used for a tenant's new writes.
// Rotation bumps the version without re-encrypting prior snapshots; each
// snapshot carries its own key version for decryption.
type TenantKey struct {
	TenantID   uuid.UUID
	KeyVersion int
	RotatedAt  time.Time
}
