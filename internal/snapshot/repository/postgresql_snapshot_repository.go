// Package repository implements durable, append-only persistence for
// encrypted snapshots. Repositories support both PostgreSQL and MySQL.
// Version assignment is atomic: the insert computes MAX(version)+1 for the
// tenant in the same statement, and a unique constraint on (tenant_id,
// version) turns concurrent races into conflicts the use case retries.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/hash066/biavault/internal/database"
	apperrors "github.com/hash066/biavault/internal/errors"
	snapshotDomain "github.com/hash066/biavault/internal/snapshot/domain"
)

// pqUniqueViolation is the PostgreSQL error code for unique constraint violations.
const pqUniqueViolation = "23505"

// PostgreSQLSnapshotRepository implements Snapshot persistence for PostgreSQL databases.
type PostgreSQLSnapshotRepository struct {
	db *sql.DB
}

// NewPostgreSQLSnapshotRepository creates a new PostgreSQL Snapshot repository instance.
func NewPostgreSQLSnapshotRepository(db *sql.DB) *PostgreSQLSnapshotRepository {
	return &PostgreSQLSnapshotRepository{db: db}
}

const postgresSnapshotColumns = `id, tenant_id, version, key_version, algorithm, nonce,
			  ciphertext, checksum, record_count, source, saved_by, notes, created_at`

// Append inserts the snapshot with version = current max + 1 for the tenant,
// computed atomically within the insert statement. The assigned version is
// written back into the snapshot. Two racing writers can never both succeed
// with the same version: the loser fails the UNIQUE(tenant_id, version)
// constraint and gets ErrVersionConflict, which the caller may retry.
func (p *PostgreSQLSnapshotRepository) Append(
	ctx context.Context,
	snapshot *snapshotDomain.Snapshot,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO snapshots (id, tenant_id, version, key_version, algorithm, nonce,
	                                 ciphertext, checksum, record_count, source, saved_by, notes, created_at)
			  SELECT $1, $2, COALESCE(MAX(version), 0) + 1, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
			  FROM snapshots
			  WHERE tenant_id = $2
			  RETURNING version`

	err := querier.QueryRowContext(
		ctx,
		query,
		snapshot.ID,
		snapshot.TenantID,
		snapshot.Envelope.KeyVersion,
		string(snapshot.Envelope.Algorithm),
		snapshot.Envelope.Nonce,
		snapshot.Envelope.Ciphertext,
		snapshot.Envelope.Checksum,
		snapshot.RecordCount,
		string(snapshot.Source),
		snapshot.SavedBy,
		snapshot.Notes,
		snapshot.CreatedAt,
	).Scan(&snapshot.Version)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
			return snapshotDomain.ErrVersionConflict
		}
		return apperrors.Wrap(err, "failed to append snapshot")
	}

	return nil
}

// GetLatest retrieves the highest version snapshot for the tenant.
func (p *PostgreSQLSnapshotRepository) GetLatest(
	ctx context.Context,
	tenantID uuid.UUID,
) (*snapshotDomain.Snapshot, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + postgresSnapshotColumns + `
			  FROM snapshots
			  WHERE tenant_id = $1
			  ORDER BY version DESC
			  LIMIT 1`

	return p.scanOne(querier.QueryRowContext(ctx, query, tenantID))
}

// GetByVersion retrieves a specific snapshot version for the tenant.
func (p *PostgreSQLSnapshotRepository) GetByVersion(
	ctx context.Context,
	tenantID uuid.UUID,
	version uint64,
) (*snapshotDomain.Snapshot, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + postgresSnapshotColumns + `
			  FROM snapshots
			  WHERE tenant_id = $1 AND version = $2
			  LIMIT 1`

	return p.scanOne(querier.QueryRowContext(ctx, query, tenantID, version))
}

// List retrieves snapshots for the tenant ordered by version descending
// (newest first) with offset/limit pagination.
func (p *PostgreSQLSnapshotRepository) List(
	ctx context.Context,
	tenantID uuid.UUID,
	offset, limit int,
) ([]*snapshotDomain.Snapshot, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + postgresSnapshotColumns + `
			  FROM snapshots
			  WHERE tenant_id = $1
			  ORDER BY version DESC
			  LIMIT $2 OFFSET $3`

	rows, err := querier.QueryContext(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list snapshots")
	}
	defer func() {
		_ = rows.Close()
	}()

	// Initialize empty slice to avoid returning nil for empty results
	snapshots := make([]*snapshotDomain.Snapshot, 0)
	for rows.Next() {
		snapshot, err := scanSnapshot(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan snapshot")
		}
		snapshots = append(snapshots, snapshot)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate snapshots")
	}

	return snapshots, nil
}

// scanOne scans a single snapshot row, mapping sql.ErrNoRows to the
// not-found sentinel.
func (p *PostgreSQLSnapshotRepository) scanOne(row *sql.Row) (*snapshotDomain.Snapshot, error) {
	var snapshot snapshotDomain.Snapshot
	var algorithm, source string

	err := row.Scan(
		&snapshot.ID,
		&snapshot.TenantID,
		&snapshot.Version,
		&snapshot.Envelope.KeyVersion,
		&algorithm,
		&snapshot.Envelope.Nonce,
		&snapshot.Envelope.Ciphertext,
		&snapshot.Envelope.Checksum,
		&snapshot.RecordCount,
		&source,
		&snapshot.SavedBy,
		&snapshot.Notes,
		&snapshot.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, snapshotDomain.ErrSnapshotNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get snapshot")
	}

	snapshot.Envelope.Algorithm = algorithmFromString(algorithm)
	snapshot.Source = snapshotDomain.Source(source)
	return &snapshot, nil
}
