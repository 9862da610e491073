package commands

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	auditDomain "github.com/hash066/biavault/internal/audit/domain"
	snapshotDomain "github.com/hash066/biavault/internal/snapshot/domain"
	snapshotUseCase "github.com/hash066/biavault/internal/snapshot/usecase"
)

func testLogger() *slog.Logger {
	return slog.Default()
}

// mockAuditUseCase is a mock implementation of usecase.AuditUseCase.
type mockAuditUseCase struct {
	mock.Mock
}

func (m *mockAuditUseCase) Record(
	ctx context.Context,
	tenantID uuid.UUID,
	snapshotID *uuid.UUID,
	action auditDomain.Action,
	actorID string,
	details map[string]any,
) (*auditDomain.AuditEntry, error) {
	args := m.Called(ctx, tenantID, snapshotID, action, actorID, details)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auditDomain.AuditEntry), args.Error(1)
}

func (m *mockAuditUseCase) ListByTenant(
	ctx context.Context,
	tenantID uuid.UUID,
	start, end time.Time,
	offset, limit int,
) ([]*auditDomain.AuditEntry, error) {
	args := m.Called(ctx, tenantID, start, end, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*auditDomain.AuditEntry), args.Error(1)
}

func (m *mockAuditUseCase) VerifySignatures(
	ctx context.Context,
	batchSize int,
) (int, []*auditDomain.AuditEntry, error) {
	args := m.Called(ctx, batchSize)
	if args.Get(1) == nil {
		return args.Int(0), nil, args.Error(2)
	}
	return args.Int(0), args.Get(1).([]*auditDomain.AuditEntry), args.Error(2)
}

func (m *mockAuditUseCase) CleanPartitions(ctx context.Context, retentionMonths int) (int64, error) {
	args := m.Called(ctx, retentionMonths)
	return args.Get(0).(int64), args.Error(1)
}

// mockSnapshotUseCase is a mock implementation of usecase.SnapshotUseCase.
type mockSnapshotUseCase struct {
	mock.Mock
}

func (m *mockSnapshotUseCase) Save(
	ctx context.Context,
	input snapshotUseCase.SaveInput,
) (*snapshotDomain.Snapshot, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*snapshotDomain.Snapshot), args.Error(1)
}

func (m *mockSnapshotUseCase) ReadLatest(
	ctx context.Context,
	tenantID uuid.UUID,
	actorID string,
) (*snapshotDomain.Snapshot, error) {
	args := m.Called(ctx, tenantID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*snapshotDomain.Snapshot), args.Error(1)
}

func (m *mockSnapshotUseCase) ReadVersion(
	ctx context.Context,
	tenantID uuid.UUID,
	version uint64,
	actorID string,
) (*snapshotDomain.Snapshot, error) {
	args := m.Called(ctx, tenantID, version, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*snapshotDomain.Snapshot), args.Error(1)
}

func (m *mockSnapshotUseCase) List(
	ctx context.Context,
	tenantID uuid.UUID,
	offset, limit int,
) ([]*snapshotDomain.Snapshot, error) {
	args := m.Called(ctx, tenantID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*snapshotDomain.Snapshot), args.Error(1)
}

func (m *mockSnapshotUseCase) Rollback(
	ctx context.Context,
	tenantID uuid.UUID,
	version uint64,
	actorID, note string,
) (*snapshotDomain.Snapshot, error) {
	args := m.Called(ctx, tenantID, version, actorID, note)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*snapshotDomain.Snapshot), args.Error(1)
}

func (m *mockSnapshotUseCase) Approve(
	ctx context.Context,
	tenantID uuid.UUID,
	version uint64,
	actorID, note string,
) error {
	args := m.Called(ctx, tenantID, version, actorID, note)
	return args.Error(0)
}

func (m *mockSnapshotUseCase) Reject(
	ctx context.Context,
	tenantID uuid.UUID,
	version uint64,
	actorID, note string,
) error {
	args := m.Called(ctx, tenantID, version, actorID, note)
	return args.Error(0)
}

func (m *mockSnapshotUseCase) RotateKey(
	ctx context.Context,
	tenantID uuid.UUID,
	actorID string,
) (*snapshotDomain.TenantKey, error) {
	args := m.Called(ctx, tenantID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*snapshotDomain.TenantKey), args.Error(1)
}

func (m *mockSnapshotUseCase) Reencrypt(
	ctx context.Context,
	tenantID uuid.UUID,
	version uint64,
	actorID string,
) (*snapshotDomain.Snapshot, error) {
	args := m.Called(ctx, tenantID, version, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*snapshotDomain.Snapshot), args.Error(1)
}
