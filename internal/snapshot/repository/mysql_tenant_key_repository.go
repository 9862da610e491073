package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/hash066/biavault/internal/database"
	apperrors "github.com/hash066/biavault/internal/errors"
	snapshotDomain "github.com/hash066/biavault/internal/snapshot/domain"
)

// MySQLTenantKeyRepository implements TenantKey persistence for MySQL.
type MySQLTenantKeyRepository struct {
	db *sql.DB
}

// NewMySQLTenantKeyRepository creates a new MySQL TenantKey repository instance.
func NewMySQLTenantKeyRepository(db *sql.DB) *MySQLTenantKeyRepository {
	return &MySQLTenantKeyRepository{db: db}
}

// Get retrieves the tenant's current key version record.
// Returns ErrNotFound when the tenant has never rotated.
func (m *MySQLTenantKeyRepository) Get(
	ctx context.Context,
	tenantID uuid.UUID,
) (*snapshotDomain.TenantKey, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT tenant_id, key_version, rotated_at
			  FROM tenant_keys
			  WHERE tenant_id = ?`

	var key snapshotDomain.TenantKey
	err := querier.QueryRowContext(ctx, query, tenantID).Scan(
		&key.TenantID,
		&key.KeyVersion,
		&key.RotatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get tenant key")
	}

	return &key, nil
}

// Upsert stores the tenant's current key version, replacing any previous record.
func (m *MySQLTenantKeyRepository) Upsert(
	ctx context.Context,
	key *snapshotDomain.TenantKey,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO tenant_keys (tenant_id, key_version, rotated_at)
			  VALUES (?, ?, ?)
			  ON DUPLICATE KEY UPDATE key_version = VALUES(key_version), rotated_at = VALUES(rotated_at)`

	_, err := querier.ExecContext(ctx, query, key.TenantID, key.KeyVersion, key.RotatedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to upsert tenant key")
	}

	return nil
}
