// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"time"

	auditDomain "github.com/hash066/biavault/internal/audit/domain"
)

// AuditEntryResponse represents an audit entry in API responses.
// The signature is included base64-encoded so external tooling can archive
// entries without losing tamper evidence.
type AuditEntryResponse struct {
	ID         string         `json:"id"`
	TenantID   string         `json:"tenant_id"`
	SnapshotID *string        `json:"snapshot_id,omitempty"`
	Action     string         `json:"action"`
	ActorID    string         `json:"actor_id"`
	Details    map[string]any `json:"details,omitempty"`
	Signature  []byte         `json:"signature"`
	CreatedAt  time.Time      `json:"created_at"`
}

// MapAuditEntryToResponse converts a domain audit entry to an API response.
func MapAuditEntryToResponse(entry *auditDomain.AuditEntry) AuditEntryResponse {
	response := AuditEntryResponse{
		ID:        entry.ID.String(),
		TenantID:  entry.TenantID.String(),
		Action:    string(entry.Action),
		ActorID:   entry.ActorID,
		Details:   entry.Details,
		Signature: entry.Signature,
		CreatedAt: entry.CreatedAt,
	}

	if entry.SnapshotID != nil {
		snapshotID := entry.SnapshotID.String()
		response.SnapshotID = &snapshotID
	}

	return response
}

// ListAuditEntriesResponse represents a paginated list of audit entries in API responses.
type ListAuditEntriesResponse struct {
	Data []AuditEntryResponse `json:"data"`
}

// MapAuditEntriesToListResponse converts a slice of domain audit entries to a list response.
func MapAuditEntriesToListResponse(entries []*auditDomain.AuditEntry) ListAuditEntriesResponse {
	data := make([]AuditEntryResponse, 0, len(entries))
	for _, entry := range entries {
		data = append(data, MapAuditEntryToResponse(entry))
	}

	return ListAuditEntriesResponse{
		Data: data,
	}
}
