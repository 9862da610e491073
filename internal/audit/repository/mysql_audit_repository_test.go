package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/hash066/biavault/internal/audit/domain"
	"github.com/hash066/biavault/internal/testutil"
)

func TestMySQLAuditRepository_CreateAndList(t *testing.T) {
	db := testutil.SetupMySQLDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupMySQLDB(t, db)

	repo := NewMySQLAuditRepository(db)
	ctx := context.Background()
	tenantID := uuid.Must(uuid.NewV7())
	base := time.Now().UTC().Truncate(time.Second)

	for i := 0; i < 3; i++ {
		entry := newTestAuditEntry(t, tenantID, base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, repo.Create(ctx, entry))
	}

	entries, err := repo.ListByTenant(ctx, tenantID, base, base.Add(time.Hour), 0, 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	for i := 1; i < len(entries); i++ {
		assert.False(t, entries[i].CreatedAt.After(entries[i-1].CreatedAt))
	}
}

func TestMySQLAuditRepository_DeletePartitionsBefore(t *testing.T) {
	db := testutil.SetupMySQLDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupMySQLDB(t, db)

	repo := NewMySQLAuditRepository(db)
	ctx := context.Background()
	tenantID := uuid.Must(uuid.NewV7())
	now := time.Now().UTC()

	require.NoError(t, repo.Create(ctx, newTestAuditEntry(t, tenantID, now.AddDate(0, -2, 0))))
	require.NoError(t, repo.Create(ctx, newTestAuditEntry(t, tenantID, now)))

	deleted, err := repo.DeletePartitionsBefore(ctx, auditDomain.PartitionKeyFor(now.AddDate(0, -1, 0)))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}
