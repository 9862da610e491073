package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/hash066/biavault/internal/audit/domain"
	cryptoDomain "github.com/hash066/biavault/internal/crypto/domain"
	cryptoService "github.com/hash066/biavault/internal/crypto/service"
	apperrors "github.com/hash066/biavault/internal/errors"
	snapshotDomain "github.com/hash066/biavault/internal/snapshot/domain"
)

// snapshotUseCase implements the SnapshotUseCase interface.
type snapshotUseCase struct {
	snapshotRepo  SnapshotRepository
	tenantKeyRepo TenantKeyRepository
	auditRecorder AuditRecorder
	invalidator   ViewInvalidator
	keyDeriver    cryptoService.KeyDeriver
	cipher        cryptoService.EnvelopeCipher

	algorithm         cryptoDomain.Algorithm
	defaultKeyVersion int
	maxPayloadBytes   int
	retryMaxAttempts  int
	retryBaseBackoff  time.Duration
}

// Options carries the policy knobs for the snapshot use case.
type Options struct {
	// Algorithm is the AEAD used for new snapshots.
	Algorithm cryptoDomain.Algorithm
	// DefaultKeyVersion is used for tenants that have never rotated.
	DefaultKeyVersion int
	// MaxPayloadBytes is the maximum accepted payload size.
	MaxPayloadBytes int
	// RetryMaxAttempts bounds the append retry loop on version conflicts.
	RetryMaxAttempts int
	// RetryBaseBackoff is the initial conflict backoff, doubled per attempt.
	RetryBaseBackoff time.Duration
}

// NewSnapshotUseCase creates a new snapshot use case.
func NewSnapshotUseCase(
	snapshotRepo SnapshotRepository,
	tenantKeyRepo TenantKeyRepository,
	auditRecorder AuditRecorder,
	invalidator ViewInvalidator,
	keyDeriver cryptoService.KeyDeriver,
	cipher cryptoService.EnvelopeCipher,
	opts Options,
) SnapshotUseCase {
	if opts.DefaultKeyVersion < 1 {
		opts.DefaultKeyVersion = 1
	}
	if opts.RetryMaxAttempts < 1 {
		opts.RetryMaxAttempts = 1
	}
	if opts.RetryBaseBackoff <= 0 {
		opts.RetryBaseBackoff = 25 * time.Millisecond
	}

	return &snapshotUseCase{
		snapshotRepo:      snapshotRepo,
		tenantKeyRepo:     tenantKeyRepo,
		auditRecorder:     auditRecorder,
		invalidator:       invalidator,
		keyDeriver:        keyDeriver,
		cipher:            cipher,
		algorithm:         opts.Algorithm,
		defaultKeyVersion: opts.DefaultKeyVersion,
		maxPayloadBytes:   opts.MaxPayloadBytes,
		retryMaxAttempts:  opts.RetryMaxAttempts,
		retryBaseBackoff:  opts.RetryBaseBackoff,
	}
}

// validatePayload enforces the payload contract: non-empty, within the size
// limit, and a valid JSON document. The payload's structure is otherwise
// opaque to this service.
func (s *snapshotUseCase) validatePayload(payload []byte) error {
	if len(payload) == 0 {
		return snapshotDomain.ErrPayloadEmpty
	}
	if s.maxPayloadBytes > 0 && len(payload) > s.maxPayloadBytes {
		return snapshotDomain.ErrPayloadTooLarge
	}
	if !json.Valid(payload) {
		return snapshotDomain.ErrPayloadNotJSON
	}
	return nil
}

// currentKeyVersion resolves the tenant's active key version, falling back to
// the configured default for tenants that have never rotated.
func (s *snapshotUseCase) currentKeyVersion(ctx context.Context, tenantID uuid.UUID) (int, error) {
	key, err := s.tenantKeyRepo.Get(ctx, tenantID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return s.defaultKeyVersion, nil
		}
		return 0, err
	}
	return key.KeyVersion, nil
}

// Save runs the full pipeline: validate, derive, encrypt, append, audit,
// invalidate. Durable stages are never rolled back; an audit failure after
// the append surfaces the orphaned version as a PartialFailure.
func (s *snapshotUseCase) Save(
	ctx context.Context,
	input SaveInput,
) (*snapshotDomain.Snapshot, error) {
	return s.save(ctx, input, auditDomain.ActionSave, nil)
}

// save is the shared pipeline behind Save, Rollback, and Reencrypt; the
// action and extra details distinguish them in the audit trail.
func (s *snapshotUseCase) save(
	ctx context.Context,
	input SaveInput,
	action auditDomain.Action,
	extraDetails map[string]any,
) (*snapshotDomain.Snapshot, error) {
	logger := slog.With("tenant_id", input.TenantID, "action", action)

	if err := s.validatePayload(input.Payload); err != nil {
		return nil, err
	}
	if !input.Source.Valid() {
		return nil, snapshotDomain.ErrInvalidSource
	}

	// Deriving
	keyVersion, err := s.currentKeyVersion(ctx, input.TenantID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to resolve tenant key version")
	}

	key, err := s.keyDeriver.DeriveKey(input.TenantID, keyVersion)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to derive data encryption key")
	}
	defer cryptoDomain.Zero(key)
	logger.Debug("snapshot save stage complete", "stage", "deriving", "key_version", keyVersion)

	// Encrypting
	envelope, err := s.cipher.Encrypt(input.Payload, key, s.algorithm, keyVersion)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to encrypt payload")
	}
	logger.Debug("snapshot save stage complete", "stage", "encrypting", "algorithm", s.algorithm)

	// Appending, with a bounded retry loop around version-assignment races
	snapshot := &snapshotDomain.Snapshot{
		ID:          uuid.Must(uuid.NewV7()),
		TenantID:    input.TenantID,
		Envelope:    *envelope,
		SavedBy:     input.ActorID,
		Source:      input.Source,
		RecordCount: input.RecordCount,
		Notes:       input.Notes,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.appendWithRetry(ctx, snapshot); err != nil {
		return nil, err
	}
	logger.Info("snapshot save stage complete", "stage", "appending", "version", snapshot.Version)

	// Auditing. The snapshot is already durable: a failure here is reported
	// as a partial failure naming the orphaned version, never hidden by
	// deleting verifiable data.
	details := map[string]any{
		"version":      snapshot.Version,
		"source":       string(snapshot.Source),
		"record_count": snapshot.RecordCount,
	}
	for k, v := range extraDetails {
		details[k] = v
	}
	if _, err := s.auditRecorder.Record(
		ctx, input.TenantID, &snapshot.ID, action, input.ActorID, details,
	); err != nil {
		logger.Error("audit record failed after durable append", "version", snapshot.Version)
		return nil, &snapshotDomain.PartialFailure{
			TenantID: input.TenantID,
			Version:  snapshot.Version,
			Err:      err,
		}
	}
	logger.Debug("snapshot save stage complete", "stage", "auditing")

	// Invalidating, best-effort
	s.invalidator.InvalidateTenant(ctx, input.TenantID)
	logger.Info("snapshot saved", "stage", "done", "version", snapshot.Version)

	return snapshot, nil
}

// appendWithRetry retries the append on version conflicts with exponential
// backoff until the attempt budget runs out.
func (s *snapshotUseCase) appendWithRetry(
	ctx context.Context,
	snapshot *snapshotDomain.Snapshot,
) error {
	backoff := s.retryBaseBackoff

	var err error
	for attempt := 1; attempt <= s.retryMaxAttempts; attempt++ {
		err = s.snapshotRepo.Append(ctx, snapshot)
		if err == nil {
			return nil
		}
		if !apperrors.Is(err, snapshotDomain.ErrVersionConflict) {
			return apperrors.Wrap(err, "failed to append snapshot")
		}

		if attempt < s.retryMaxAttempts {
			slog.Debug(
				"snapshot version conflict, retrying",
				"tenant_id", snapshot.TenantID,
				"attempt", attempt,
			)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
			backoff *= 2
		}
	}

	return err
}

func (s *snapshotUseCase) ReadLatest(
	ctx context.Context,
	tenantID uuid.UUID,
	actorID string,
) (*snapshotDomain.Snapshot, error) {
	snapshot, err := s.snapshotRepo.GetLatest(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	return s.decryptSnapshot(ctx, snapshot, actorID)
}

func (s *snapshotUseCase) ReadVersion(
	ctx context.Context,
	tenantID uuid.UUID,
	version uint64,
	actorID string,
) (*snapshotDomain.Snapshot, error) {
	snapshot, err := s.snapshotRepo.GetByVersion(ctx, tenantID, version)
	if err != nil {
		return nil, err
	}

	return s.decryptSnapshot(ctx, snapshot, actorID)
}

// decryptSnapshot derives the snapshot's own key version, decrypts the
// envelope, and records a READ audit entry. The read itself never depends on
// the cache and the audit write is best-effort for reads.
func (s *snapshotUseCase) decryptSnapshot(
	ctx context.Context,
	snapshot *snapshotDomain.Snapshot,
	actorID string,
) (*snapshotDomain.Snapshot, error) {
	key, err := s.keyDeriver.DeriveKey(snapshot.TenantID, snapshot.Envelope.KeyVersion)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to derive data encryption key")
	}
	defer cryptoDomain.Zero(key)

	payload, err := s.cipher.Decrypt(&snapshot.Envelope, key)
	if err != nil {
		return nil, err
	}
	snapshot.Payload = payload

	if _, err := s.auditRecorder.Record(
		ctx, snapshot.TenantID, &snapshot.ID, auditDomain.ActionRead, actorID,
		map[string]any{"version": snapshot.Version},
	); err != nil {
		slog.Warn(
			"read audit record failed",
			"tenant_id", snapshot.TenantID,
			"version", snapshot.Version,
		)
	}

	return snapshot, nil
}

func (s *snapshotUseCase) List(
	ctx context.Context,
	tenantID uuid.UUID,
	offset, limit int,
) ([]*snapshotDomain.Snapshot, error) {
	return s.snapshotRepo.List(ctx, tenantID, offset, limit)
}

// Rollback re-saves an historical payload as the new head version. The
// restored payload is re-encrypted under the tenant's current key version.
func (s *snapshotUseCase) Rollback(
	ctx context.Context,
	tenantID uuid.UUID,
	version uint64,
	actorID, note string,
) (*snapshotDomain.Snapshot, error) {
	source, err := s.snapshotRepo.GetByVersion(ctx, tenantID, version)
	if err != nil {
		return nil, err
	}

	key, err := s.keyDeriver.DeriveKey(tenantID, source.Envelope.KeyVersion)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to derive data encryption key")
	}
	payload, err := s.cipher.Decrypt(&source.Envelope, key)
	cryptoDomain.Zero(key)
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(payload)

	return s.save(ctx, SaveInput{
		TenantID:    tenantID,
		Payload:     payload,
		ActorID:     actorID,
		Source:      source.Source,
		RecordCount: source.RecordCount,
		Notes:       note,
	}, auditDomain.ActionRollback, map[string]any{"rolled_back_from": version})
}

// Approve records a reviewer accepting a snapshot version. Review decisions
// live in the audit trail; the snapshot row itself is immutable.
func (s *snapshotUseCase) Approve(
	ctx context.Context,
	tenantID uuid.UUID,
	version uint64,
	actorID, note string,
) error {
	return s.review(ctx, tenantID, version, actorID, note, auditDomain.ActionApprove)
}

// Reject records a reviewer declining a snapshot version.
func (s *snapshotUseCase) Reject(
	ctx context.Context,
	tenantID uuid.UUID,
	version uint64,
	actorID, note string,
) error {
	return s.review(ctx, tenantID, version, actorID, note, auditDomain.ActionReject)
}

func (s *snapshotUseCase) review(
	ctx context.Context,
	tenantID uuid.UUID,
	version uint64,
	actorID, note string,
	action auditDomain.Action,
) error {
	snapshot, err := s.snapshotRepo.GetByVersion(ctx, tenantID, version)
	if err != nil {
		return err
	}

	_, err = s.auditRecorder.Record(
		ctx, tenantID, &snapshot.ID, action, actorID,
		map[string]any{"version": version, "note": note},
	)
	return err
}

// RotateKey bumps the tenant's current key version and records the rotation.
// Metadata only: no stored snapshot is touched, and reads keep working
// because each snapshot derives from its own stamped key version.
func (s *snapshotUseCase) RotateKey(
	ctx context.Context,
	tenantID uuid.UUID,
	actorID string,
) (*snapshotDomain.TenantKey, error) {
	current, err := s.currentKeyVersion(ctx, tenantID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to resolve tenant key version")
	}

	key := &snapshotDomain.TenantKey{
		TenantID:   tenantID,
		KeyVersion: current + 1,
		RotatedAt:  time.Now().UTC(),
	}
	if err := s.tenantKeyRepo.Upsert(ctx, key); err != nil {
		return nil, apperrors.Wrap(err, "failed to store rotated key version")
	}

	if _, err := s.auditRecorder.Record(
		ctx, tenantID, nil, auditDomain.ActionKeyRotate, actorID,
		map[string]any{"from_key_version": current, "to_key_version": key.KeyVersion},
	); err != nil {
		return nil, &snapshotDomain.PartialFailure{TenantID: tenantID, Err: err}
	}

	slog.Info(
		"tenant key rotated",
		"tenant_id", tenantID,
		"key_version", key.KeyVersion,
	)
	return key, nil
}

// Reencrypt reads an historical version and re-saves it under the tenant's
// current key version as a new head.
func (s *snapshotUseCase) Reencrypt(
	ctx context.Context,
	tenantID uuid.UUID,
	version uint64,
	actorID string,
) (*snapshotDomain.Snapshot, error) {
	source, err := s.snapshotRepo.GetByVersion(ctx, tenantID, version)
	if err != nil {
		return nil, err
	}

	key, err := s.keyDeriver.DeriveKey(tenantID, source.Envelope.KeyVersion)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to derive data encryption key")
	}
	payload, err := s.cipher.Decrypt(&source.Envelope, key)
	cryptoDomain.Zero(key)
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(payload)

	return s.save(ctx, SaveInput{
		TenantID:    tenantID,
		Payload:     payload,
		ActorID:     actorID,
		Source:      source.Source,
		RecordCount: source.RecordCount,
		Notes:       source.Notes,
	}, auditDomain.ActionSave, map[string]any{
		"reencrypted_from":   version,
		"reencrypted_reason": "key migration",
	})
}
