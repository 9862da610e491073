package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/hash066/biavault/internal/audit/domain"
	"github.com/hash066/biavault/internal/database"
	apperrors "github.com/hash066/biavault/internal/errors"
)

// MySQLAuditRepository implements AuditEntry persistence for MySQL.
type MySQLAuditRepository struct {
	db *sql.DB
}

// NewMySQLAuditRepository creates a new MySQL AuditEntry repository.
func NewMySQLAuditRepository(db *sql.DB) *MySQLAuditRepository {
	return &MySQLAuditRepository{db: db}
}

// Create inserts a new audit entry. Handles nil details as database NULL.
func (m *MySQLAuditRepository) Create(ctx context.Context, entry *auditDomain.AuditEntry) error {
	querier := database.GetTx(ctx, m.db)

	var detailsJSON []byte
	var err error
	if entry.Details != nil {
		detailsJSON, err = json.Marshal(entry.Details)
		if err != nil {
			return apperrors.Wrap(err, "failed to marshal audit entry details")
		}
	}

	query := `INSERT INTO audit_entries (id, tenant_id, snapshot_id, action, actor_id,
	                                     details, signature, partition_key, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		entry.ID,
		entry.TenantID,
		entry.SnapshotID,
		string(entry.Action),
		entry.ActorID,
		detailsJSON,
		entry.Signature,
		entry.PartitionKey,
		entry.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create audit entry")
	}

	return nil
}

// ListByTenant retrieves audit entries for a tenant within [start, end),
// ordered by creation time descending (newest first) with pagination.
func (m *MySQLAuditRepository) ListByTenant(
	ctx context.Context,
	tenantID uuid.UUID,
	start, end time.Time,
	offset, limit int,
) ([]*auditDomain.AuditEntry, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, tenant_id, snapshot_id, action, actor_id, details, signature, partition_key, created_at
			  FROM audit_entries
			  WHERE tenant_id = ? AND created_at >= ? AND created_at < ?
			  ORDER BY created_at DESC, id DESC
			  LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, tenantID, start, end, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit entries")
	}
	defer func() {
		_ = rows.Close()
	}()

	return collectAuditEntries(rows)
}

// List retrieves audit entries across all tenants ordered by creation time
// descending. Used by the signature verification command.
func (m *MySQLAuditRepository) List(
	ctx context.Context,
	offset, limit int,
) ([]*auditDomain.AuditEntry, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, tenant_id, snapshot_id, action, actor_id, details, signature, partition_key, created_at
			  FROM audit_entries
			  ORDER BY created_at DESC, id DESC
			  LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit entries")
	}
	defer func() {
		_ = rows.Close()
	}()

	return collectAuditEntries(rows)
}

// DeletePartitionsBefore removes whole monthly partitions older than the
// given partition key ("YYYY-MM"). Returns the number of archived entries.
func (m *MySQLAuditRepository) DeletePartitionsBefore(
	ctx context.Context,
	partitionKey string,
) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	query := `DELETE FROM audit_entries WHERE partition_key < ?`

	result, err := querier.ExecContext(ctx, query, partitionKey)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete audit partitions")
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count deleted audit entries")
	}

	return deleted, nil
}
