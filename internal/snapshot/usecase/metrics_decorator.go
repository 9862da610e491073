package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hash066/biavault/internal/metrics"
	snapshotDomain "github.com/hash066/biavault/internal/snapshot/domain"
)

// snapshotUseCaseWithMetrics decorates SnapshotUseCase with metrics instrumentation.
type snapshotUseCaseWithMetrics struct {
	next    SnapshotUseCase
	metrics metrics.BusinessMetrics
}

// NewSnapshotUseCaseWithMetrics wraps a SnapshotUseCase with metrics recording.
func NewSnapshotUseCaseWithMetrics(useCase SnapshotUseCase, m metrics.BusinessMetrics) SnapshotUseCase {
	return &snapshotUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// record emits the counter and duration for one operation.
func (s *snapshotUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	s.metrics.RecordOperation(ctx, "snapshots", operation, status)
	s.metrics.RecordDuration(ctx, "snapshots", operation, time.Since(start), status)
}

func (s *snapshotUseCaseWithMetrics) Save(
	ctx context.Context,
	input SaveInput,
) (*snapshotDomain.Snapshot, error) {
	start := time.Now()
	snapshot, err := s.next.Save(ctx, input)
	s.record(ctx, "snapshot_save", start, err)
	return snapshot, err
}

func (s *snapshotUseCaseWithMetrics) ReadLatest(
	ctx context.Context,
	tenantID uuid.UUID,
	actorID string,
) (*snapshotDomain.Snapshot, error) {
	start := time.Now()
	snapshot, err := s.next.ReadLatest(ctx, tenantID, actorID)
	s.record(ctx, "snapshot_read_latest", start, err)
	return snapshot, err
}

func (s *snapshotUseCaseWithMetrics) ReadVersion(
	ctx context.Context,
	tenantID uuid.UUID,
	version uint64,
	actorID string,
) (*snapshotDomain.Snapshot, error) {
	start := time.Now()
	snapshot, err := s.next.ReadVersion(ctx, tenantID, version, actorID)
	s.record(ctx, "snapshot_read_version", start, err)
	return snapshot, err
}

func (s *snapshotUseCaseWithMetrics) List(
	ctx context.Context,
	tenantID uuid.UUID,
	offset, limit int,
) ([]*snapshotDomain.Snapshot, error) {
	start := time.Now()
	snapshots, err := s.next.List(ctx, tenantID, offset, limit)
	s.record(ctx, "snapshot_list", start, err)
	return snapshots, err
}

func (s *snapshotUseCaseWithMetrics) Rollback(
	ctx context.Context,
	tenantID uuid.UUID,
	version uint64,
	actorID, note string,
) (*snapshotDomain.Snapshot, error) {
	start := time.Now()
	snapshot, err := s.next.Rollback(ctx, tenantID, version, actorID, note)
	s.record(ctx, "snapshot_rollback", start, err)
	return snapshot, err
}

func (s *snapshotUseCaseWithMetrics) Approve(
	ctx context.Context,
	tenantID uuid.UUID,
	version uint64,
	actorID, note string,
) error {
	start := time.Now()
	err := s.next.Approve(ctx, tenantID, version, actorID, note)
	s.record(ctx, "snapshot_approve", start, err)
	return err
}

func (s *snapshotUseCaseWithMetrics) Reject(
	ctx context.Context,
	tenantID uuid.UUID,
	version uint64,
	actorID, note string,
) error {
	start := time.Now()
	err := s.next.Reject(ctx, tenantID, version, actorID, note)
	s.record(ctx, "snapshot_reject", start, err)
	return err
}

func (s *snapshotUseCaseWithMetrics) RotateKey(
	ctx context.Context,
	tenantID uuid.UUID,
	actorID string,
) (*snapshotDomain.TenantKey, error) {
	start := time.Now()
	key, err := s.next.RotateKey(ctx, tenantID, actorID)
	s.record(ctx, "key_rotate", start, err)
	return key, err
}

func (s *snapshotUseCaseWithMetrics) Reencrypt(
	ctx context.Context,
	tenantID uuid.UUID,
	version uint64,
	actorID string,
) (*snapshotDomain.Snapshot, error) {
	start := time.Now()
	snapshot, err := s.next.Reencrypt(ctx, tenantID, version, actorID)
	s.record(ctx, "snapshot_reencrypt", start, err)
	return snapshot, err
}
