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

// PostgreSQLTenantKeyRepository implements TenantKey persistence for PostgreSQL.
// Tenant keys track the current key version for new writes; rotation is a
// metadata-only upsert and never touches stored snapshots.
type PostgreSQLTenantKeyRepository struct {
	db *sql.DB
}

// NewPostgreSQLTenantKeyRepository creates a new PostgreSQL TenantKey repository instance.
func NewPostgreSQLTenantKeyRepository(db *sql.DB) *PostgreSQLTenantKeyRepository {
	return &PostgreSQLTenantKeyRepository{db: db}
}

// Get retrieves the tenant's current key version record.
// Returns ErrNotFound when the tenant has never rotated.
func (p *PostgreSQLTenantKeyRepository) Get(
	ctx context.Context,
	tenantID uuid.UUID,
) (*snapshotDomain.TenantKey, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT tenant_id, key_version, rotated_at
			  FROM tenant_keys
			  WHERE tenant_id = $1`

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
func (p *PostgreSQLTenantKeyRepository) Upsert(
	ctx context.Context,
	key *snapshotDomain.TenantKey,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO tenant_keys (tenant_id, key_version, rotated_at)
			  VALUES ($1, $2, $3)
			  ON CONFLICT (tenant_id)
			  DO UPDATE SET key_version = EXCLUDED.key_version, rotated_at = EXCLUDED.rotated_at`

	_, err := querier.ExecContext(ctx, query, key.TenantID, key.KeyVersion, key.RotatedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to upsert tenant key")
	}

	return nil
}
