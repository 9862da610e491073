// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"encoding/json"
	"time"

	snapshotDomain "github.com/hash066/biavault/internal/snapshot/domain"
)

// SnapshotResponse represents a snapshot in API responses.
// SECURITY: The Payload field contains plaintext and is only included in read
// responses. Must be transmitted over HTTPS in production.
type SnapshotResponse struct {
	ID          string          `json:"id"`
	TenantID    string          `json:"tenant_id"`
	Version     uint64          `json:"version"`
	KeyVersion  int             `json:"key_version"`
	Algorithm   string          `json:"algorithm"`
	Source      string          `json:"source"`
	RecordCount int             `json:"record_count"`
	SavedBy     string          `json:"saved_by"`
	Notes       string          `json:"notes,omitempty"`
	Payload     json.RawMessage `json:"payload,omitempty"` // Only included in read responses
	CreatedAt   time.Time       `json:"created_at"`
}

// MapSnapshotToMetadataResponse converts a domain snapshot to an API response
// without the payload. Used for save, rollback, and list operations.
func MapSnapshotToMetadataResponse(snapshot *snapshotDomain.Snapshot) SnapshotResponse {
	return SnapshotResponse{
		ID:          snapshot.ID.String(),
		TenantID:    snapshot.TenantID.String(),
		Version:     snapshot.Version,
		KeyVersion:  snapshot.Envelope.KeyVersion,
		Algorithm:   string(snapshot.Envelope.Algorithm),
		Source:      string(snapshot.Source),
		RecordCount: snapshot.RecordCount,
		SavedBy:     snapshot.SavedBy,
		Notes:       snapshot.Notes,
		CreatedAt:   snapshot.CreatedAt,
	}
}

// MapSnapshotToReadResponse converts a domain snapshot to an API response
// including the decrypted payload. SECURITY: Caller must zero the plaintext
// from the domain object after the response is written.
func MapSnapshotToReadResponse(snapshot *snapshotDomain.Snapshot) SnapshotResponse {
	response := MapSnapshotToMetadataResponse(snapshot)
	// Copy so zeroing the domain payload after the response is rendered does
	// not corrupt the JSON body.
	response.Payload = append(json.RawMessage(nil), snapshot.Payload...)
	return response
}

// ListSnapshotsResponse represents a paginated list of snapshots in API responses.
type ListSnapshotsResponse struct {
	Data []SnapshotResponse `json:"data"`
}

// MapSnapshotsToListResponse converts a slice of domain snapshots to a list response.
func MapSnapshotsToListResponse(snapshots []*snapshotDomain.Snapshot) ListSnapshotsResponse {
	data := make([]SnapshotResponse, 0, len(snapshots))
	for _, snapshot := range snapshots {
		data = append(data, MapSnapshotToMetadataResponse(snapshot))
	}

	return ListSnapshotsResponse{
		Data: data,
	}
}

// TenantKeyResponse represents a tenant's current key version in API responses.
type TenantKeyResponse struct {
	TenantID   string    `json:"tenant_id"`
	KeyVersion int       `json:"key_version"`
	RotatedAt  time.Time `json:"rotated_at"`
}

// MapTenantKeyToResponse converts a domain tenant key to an API response.
func MapTenantKeyToResponse(key *snapshotDomain.TenantKey) TenantKeyResponse {
	return TenantKeyResponse{
		TenantID:   key.TenantID.String(),
		KeyVersion: key.KeyVersion,
		RotatedAt:  key.RotatedAt,
	}
}
