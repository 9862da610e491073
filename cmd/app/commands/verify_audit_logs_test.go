package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/hash066/biavault/internal/audit/domain"
)

func TestVerifyAuditLogs(t *testing.T) {
	ctx := context.Background()
	logger := testLogger()

	t.Run("success-text", func(t *testing.T) {
		mockUseCase := &mockAuditUseCase{}
		mockUseCase.On("VerifySignatures", ctx, 500).Return(10, nil, nil)

		var out bytes.Buffer
		err := verifyAuditLogs(ctx, mockUseCase, logger, &out, 500, "text")
		require.NoError(t, err)
		require.Contains(t, out.String(), "Audit Entry Integrity Verification")
		require.Contains(t, out.String(), "Status: PASSED")
		mockUseCase.AssertExpectations(t)
	})

	t.Run("success-json", func(t *testing.T) {
		mockUseCase := &mockAuditUseCase{}
		mockUseCase.On("VerifySignatures", ctx, 500).Return(10, nil, nil)

		var out bytes.Buffer
		err := verifyAuditLogs(ctx, mockUseCase, logger, &out, 500, "json")
		require.NoError(t, err)

		var result map[string]interface{}
		err = json.Unmarshal(out.Bytes(), &result)
		require.NoError(t, err)
		require.Equal(t, float64(10), result["total_checked"])
		require.Equal(t, true, result["passed"])
		mockUseCase.AssertExpectations(t)
	})

	t.Run("no-entries", func(t *testing.T) {
		mockUseCase := &mockAuditUseCase{}
		mockUseCase.On("VerifySignatures", ctx, 500).Return(0, nil, nil)

		var out bytes.Buffer
		err := verifyAuditLogs(ctx, mockUseCase, logger, &out, 500, "text")
		require.NoError(t, err)
		require.Contains(t, out.String(), "Status: No audit entries found")
	})

	t.Run("integrity-failure", func(t *testing.T) {
		mockUseCase := &mockAuditUseCase{}
		invalid := []*auditDomain.AuditEntry{
			{ID: uuid.New()},
			{ID: uuid.New()},
		}
		mockUseCase.On("VerifySignatures", ctx, 500).Return(10, invalid, nil)

		var out bytes.Buffer
		err := verifyAuditLogs(ctx, mockUseCase, logger, &out, 500, "text")
		require.Error(t, err)
		require.Contains(t, err.Error(), "integrity check failed: 2 invalid signature(s)")
		require.Contains(t, out.String(), "Status: FAILED")
		require.Contains(t, out.String(), invalid[0].ID.String())
	})

	t.Run("invalid-batch-size", func(t *testing.T) {
		err := RunVerifyAuditLogs(ctx, 0, "text")
		require.Error(t, err)
		require.Contains(t, err.Error(), "batch size must be a positive number")
	})
}
