package domain

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/hash066/biavault/internal/errors"
)

// Snapshot-specific error definitions.
var (
	// ErrSnapshotNotFound indicates no snapshot exists for the tenant or
	// requested version. Callers should treat this as a first-run state.
	ErrSnapshotNotFound = errors.Wrap(errors.ErrNotFound, "snapshot not found")

	// ErrVersionConflict indicates a version-assignment race was lost after
	// the retry budget was exhausted. The whole save may be retried.
	ErrVersionConflict = errors.Wrap(errors.ErrConflict, "snapshot version conflict")

	// ErrPayloadEmpty indicates an empty payload was submitted.
	ErrPayloadEmpty = errors.Wrap(errors.ErrInvalidInput, "payload is empty")

	// ErrPayloadTooLarge indicates the payload exceeds the configured maximum size.
	ErrPayloadTooLarge = errors.Wrap(errors.ErrInvalidInput, "payload exceeds maximum size")

	// ErrPayloadNotJSON indicates the payload is not a valid JSON document.
	ErrPayloadNotJSON = errors.Wrap(errors.ErrInvalidInput, "payload is not valid JSON")

	// ErrInvalidSource indicates an unknown snapshot source value.
	ErrInvalidSource = errors.Wrap(errors.ErrInvalidInput, "source must be HUMAN or AI")
)

// PartialFailure reports a snapshot that was durably appended without a
// corresponding audit entry. The snapshot is never deleted (the system favors
// over-retention of verifiable data over silent loss); instead the orphaned
// version is surfaced so operators can reconcile the audit trail.
type PartialFailure struct {
	TenantID uuid.UUID
	Version  uint64
	Err      error
}

// Error names the snapshot version that exists without an audit entry.
func (p *PartialFailure) Error() string {
	return fmt.Sprintf(
		"snapshot version %d for tenant %s stored without audit entry: %v",
		p.Version, p.TenantID, p.Err,
	)
}

// Unwrap makes the partial failure matchable via errors.Is(err, errors.ErrPartialFailure).
func (p *PartialFailure) Unwrap() error {
	return errors.ErrPartialFailure
}
