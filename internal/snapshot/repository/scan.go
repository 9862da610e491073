package repository

import (
	cryptoDomain "github.com/hash066/biavault/internal/crypto/domain"
	snapshotDomain "github.com/hash066/biavault/internal/snapshot/domain"
)

// rowScanner abstracts *sql.Rows for the shared multi-row scan helper.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanSnapshot scans one snapshot row from a multi-row result set.
// Column order must match postgresSnapshotColumns / mysqlSnapshotColumns.
func scanSnapshot(rows rowScanner) (*snapshotDomain.Snapshot, error) {
	var snapshot snapshotDomain.Snapshot
	var algorithm, source string

	err := rows.Scan(
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
		return nil, err
	}

	snapshot.Envelope.Algorithm = algorithmFromString(algorithm)
	snapshot.Source = snapshotDomain.Source(source)
	return &snapshot, nil
}

// algorithmFromString converts the stored column value back to the domain type.
func algorithmFromString(s string) cryptoDomain.Algorithm {
	return cryptoDomain.Algorithm(s)
}
