package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"github.com/hash066/biavault/internal/database"
	apperrors "github.com/hash066/biavault/internal/errors"
	snapshotDomain "github.com/hash066/biavault/internal/snapshot/domain"
)

// mysqlDuplicateEntry is the MySQL error number for duplicate key violations.
const mysqlDuplicateEntry = 1062

// MySQLSnapshotRepository implements Snapshot persistence for MySQL databases.
type MySQLSnapshotRepository struct {
	db *sql.DB
}

// NewMySQLSnapshotRepository creates a new MySQL Snapshot repository instance.
func NewMySQLSnapshotRepository(db *sql.DB) *MySQLSnapshotRepository {
	return &MySQLSnapshotRepository{db: db}
}

const mysqlSnapshotColumns = `id, tenant_id, version, key_version, algorithm, nonce,
			  ciphertext, checksum, record_count, source, saved_by, notes, created_at`

// Append inserts the snapshot with version = current max + 1 for the tenant.
// MySQL has no INSERT ... RETURNING, so the assigned version is read back by
// snapshot id after the insert; both statements should run inside the
// caller's transaction (database.TxManager) for a consistent read. Races on
// the UNIQUE(tenant_id, version) constraint surface as ErrVersionConflict.
func (m *MySQLSnapshotRepository) Append(
	ctx context.Context,
	snapshot *snapshotDomain.Snapshot,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO snapshots (id, tenant_id, version, key_version, algorithm, nonce,
	                                 ciphertext, checksum, record_count, source, saved_by, notes, created_at)
			  SELECT ?, ?, COALESCE(MAX(version), 0) + 1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?
			  FROM snapshots
			  WHERE tenant_id = ?`

	_, err := querier.ExecContext(
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
		snapshot.TenantID,
	)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
			return snapshotDomain.ErrVersionConflict
		}
		return apperrors.Wrap(err, "failed to append snapshot")
	}

	// Read back the assigned version
	readBack := `SELECT version FROM snapshots WHERE id = ?`
	if err := querier.QueryRowContext(ctx, readBack, snapshot.ID).Scan(&snapshot.Version); err != nil {
		return apperrors.Wrap(err, "failed to read back snapshot version")
	}

	return nil
}

// GetLatest retrieves the highest version snapshot for the tenant.
func (m *MySQLSnapshotRepository) GetLatest(
	ctx context.Context,
	tenantID uuid.UUID,
) (*snapshotDomain.Snapshot, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + mysqlSnapshotColumns + `
			  FROM snapshots
			  WHERE tenant_id = ?
			  ORDER BY version DESC
			  LIMIT 1`

	return m.scanOne(querier.QueryRowContext(ctx, query, tenantID))
}

// GetByVersion retrieves a specific snapshot version for the tenant.
func (m *MySQLSnapshotRepository) GetByVersion(
	ctx context.Context,
	tenantID uuid.UUID,
	version uint64,
) (*snapshotDomain.Snapshot, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + mysqlSnapshotColumns + `
			  FROM snapshots
			  WHERE tenant_id = ? AND version = ?
			  LIMIT 1`

	return m.scanOne(querier.QueryRowContext(ctx, query, tenantID, version))
}

// List retrieves snapshots for the tenant ordered by version descending
// (newest first) with offset/limit pagination.
func (m *MySQLSnapshotRepository) List(
	ctx context.Context,
	tenantID uuid.UUID,
	offset, limit int,
) ([]*snapshotDomain.Snapshot, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + mysqlSnapshotColumns + `
			  FROM snapshots
			  WHERE tenant_id = ?
			  ORDER BY version DESC
			  LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list snapshots")
	}
	defer func() {
		_ = rows.Close()
	}()

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

func (m *MySQLSnapshotRepository) scanOne(row *sql.Row) (*snapshotDomain.Snapshot, error) {
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
