// Package repository implements append-only persistence for audit entries.
// Repositories support both PostgreSQL and MySQL. Entries carry a monthly
// partition key used only by retention; queries order strictly by creation
// time regardless of partition.
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

// PostgreSQLAuditRepository implements AuditEntry persistence for PostgreSQL.
type PostgreSQLAuditRepository struct {
	db *sql.DB
}

// NewPostgreSQLAuditRepository creates a new PostgreSQL AuditEntry repository.
func NewPostgreSQLAuditRepository(db *sql.DB) *PostgreSQLAuditRepository {
	return &PostgreSQLAuditRepository{db: db}
}

// Create inserts a new audit entry. Handles nil details as database NULL.
func (p *PostgreSQLAuditRepository) Create(ctx context.Context, entry *auditDomain.AuditEntry) error {
	querier := database.GetTx(ctx, p.db)

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
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

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
func (p *PostgreSQLAuditRepository) ListByTenant(
	ctx context.Context,
	tenantID uuid.UUID,
	start, end time.Time,
	offset, limit int,
) ([]*auditDomain.AuditEntry, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, tenant_id, snapshot_id, action, actor_id, details, signature, partition_key, created_at
			  FROM audit_entries
			  WHERE tenant_id = $1 AND created_at >= $2 AND created_at < $3
			  ORDER BY created_at DESC, id DESC
			  LIMIT $4 OFFSET $5`

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
func (p *PostgreSQLAuditRepository) List(
	ctx context.Context,
	offset, limit int,
) ([]*auditDomain.AuditEntry, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, tenant_id, snapshot_id, action, actor_id, details, signature, partition_key, created_at
			  FROM audit_entries
			  ORDER BY created_at DESC, id DESC
			  LIMIT $1 OFFSET $2`

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
// This is the only sanctioned delete path for audit data.
func (p *PostgreSQLAuditRepository) DeletePartitionsBefore(
	ctx context.Context,
	partitionKey string,
) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM audit_entries WHERE partition_key < $1`

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
