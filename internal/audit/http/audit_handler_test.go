package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	auditDomain "github.com/hash066/biavault/internal/audit/domain"
	"github.com/hash066/biavault/internal/audit/http/dto"
)

// MockAuditUseCase is a mock implementation of usecase.AuditUseCase.
type MockAuditUseCase struct {
	mock.Mock
}

func (m *MockAuditUseCase) Record(
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

func (m *MockAuditUseCase) ListByTenant(
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

func (m *MockAuditUseCase) VerifySignatures(ctx context.Context, batchSize int) (int, []*auditDomain.AuditEntry, error) {
	args := m.Called(ctx, batchSize)
	var invalid []*auditDomain.AuditEntry
	if args.Get(1) != nil {
		invalid = args.Get(1).([]*auditDomain.AuditEntry)
	}
	return args.Int(0), invalid, args.Error(2)
}

func (m *MockAuditUseCase) CleanPartitions(ctx context.Context, retentionMonths int) (int64, error) {
	args := m.Called(ctx, retentionMonths)
	return args.Get(0).(int64), args.Error(1)
}

func setupTestHandler(t *testing.T) (*AuditHandler, *MockAuditUseCase) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	mockUseCase := &MockAuditUseCase{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return NewAuditHandler(mockUseCase, logger), mockUseCase
}

func createTestContext(path string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, path, nil)
	return c, w
}

func testAuditEntry(tenantID uuid.UUID, action auditDomain.Action) *auditDomain.AuditEntry {
	now := time.Now().UTC()
	return &auditDomain.AuditEntry{
		ID:           uuid.Must(uuid.NewV7()),
		TenantID:     tenantID,
		Action:       action,
		ActorID:      "tester",
		Details:      map[string]any{"version": float64(1)},
		Signature:    make([]byte, 32),
		PartitionKey: auditDomain.PartitionKeyFor(now),
		CreatedAt:    now,
	}
}

func TestAuditHandler_ListByTenantHandler(t *testing.T) {
	t.Run("Success_DefaultRange", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		tenantID := uuid.Must(uuid.NewV7())
		entries := []*auditDomain.AuditEntry{
			testAuditEntry(tenantID, auditDomain.ActionSave),
			testAuditEntry(tenantID, auditDomain.ActionRead),
		}

		mockUseCase.On(
			"ListByTenant",
			mock.Anything,
			tenantID,
			time.Time{},
			mock.MatchedBy(func(end time.Time) bool { return !end.IsZero() }),
			0,
			50,
		).Return(entries, nil).Once()

		c, w := createTestContext(fmt.Sprintf("/v1/tenants/%s/audit-entries", tenantID))
		c.Params = gin.Params{{Key: "tenantID", Value: tenantID.String()}}

		handler.ListByTenantHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.ListAuditEntriesResponse
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Len(t, response.Data, 2)
		assert.Equal(t, "SAVE", response.Data[0].Action)
		assert.NotEmpty(t, response.Data[0].Signature)
	})

	t.Run("Success_ExplicitRange", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		tenantID := uuid.Must(uuid.NewV7())
		start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

		mockUseCase.On("ListByTenant", mock.Anything, tenantID, start, end, 10, 20).
			Return([]*auditDomain.AuditEntry{}, nil).Once()

		c, w := createTestContext(fmt.Sprintf(
			"/v1/tenants/%s/audit-entries?start=%s&end=%s&offset=10&limit=20",
			tenantID,
			start.Format(time.RFC3339),
			end.Format(time.RFC3339),
		))
		c.Params = gin.Params{{Key: "tenantID", Value: tenantID.String()}}

		handler.ListByTenantHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_InvalidStart", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		tenantID := uuid.Must(uuid.NewV7())
		c, w := createTestContext(fmt.Sprintf("/v1/tenants/%s/audit-entries?start=yesterday", tenantID))
		c.Params = gin.Params{{Key: "tenantID", Value: tenantID.String()}}

		handler.ListByTenantHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockUseCase.AssertNotCalled(t, "ListByTenant")
	})

	t.Run("Error_EndBeforeStart", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		tenantID := uuid.Must(uuid.NewV7())
		c, w := createTestContext(fmt.Sprintf(
			"/v1/tenants/%s/audit-entries?start=2026-02-01T00:00:00Z&end=2026-01-01T00:00:00Z",
			tenantID,
		))
		c.Params = gin.Params{{Key: "tenantID", Value: tenantID.String()}}

		handler.ListByTenantHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockUseCase.AssertNotCalled(t, "ListByTenant")
	})

	t.Run("Error_InvalidTenantID", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		c, w := createTestContext("/v1/tenants/garbage/audit-entries")
		c.Params = gin.Params{{Key: "tenantID", Value: "garbage"}}

		handler.ListByTenantHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		mockUseCase.AssertNotCalled(t, "ListByTenant")
	})
}
