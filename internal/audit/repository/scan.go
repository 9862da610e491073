package repository

import (
	"database/sql"
	"encoding/json"

	auditDomain "github.com/hash066/biavault/internal/audit/domain"
	apperrors "github.com/hash066/biavault/internal/errors"
)

// collectAuditEntries scans all rows into audit entries. NULL details are
// returned as a nil map. Column order must match the repository queries.
func collectAuditEntries(rows *sql.Rows) ([]*auditDomain.AuditEntry, error) {
	// Initialize empty slice to avoid returning nil for empty results
	entries := make([]*auditDomain.AuditEntry, 0)
	for rows.Next() {
		var entry auditDomain.AuditEntry
		var action string
		var detailsJSON []byte

		err := rows.Scan(
			&entry.ID,
			&entry.TenantID,
			&entry.SnapshotID,
			&action,
			&entry.ActorID,
			&detailsJSON,
			&entry.Signature,
			&entry.PartitionKey,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan audit entry")
		}

		entry.Action = auditDomain.Action(action)

		if detailsJSON != nil {
			if err := json.Unmarshal(detailsJSON, &entry.Details); err != nil {
				return nil, apperrors.Wrap(err, "failed to unmarshal audit entry details")
			}
		}

		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate audit entries")
	}

	return entries, nil
}
