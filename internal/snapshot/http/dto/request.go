// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"encoding/json"

	validation "github.com/jellydator/validation"

	snapshotDomain "github.com/hash066/biavault/internal/snapshot/domain"
	customValidation "github.com/hash066/biavault/internal/validation"
)

// SaveSnapshotRequest contains the parameters for saving a new snapshot
// version. The tenant is extracted from the URL parameter, not the body.
type SaveSnapshotRequest struct {
	Payload     json.RawMessage `json:"payload" binding:"required"`
	Source      string          `json:"source" binding:"required"`
	RecordCount int             `json:"record_count"`
	Notes       string          `json:"notes"`
}

// Validate checks if the save snapshot request is valid.
func (r *SaveSnapshotRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Payload,
			validation.Required,
			customValidation.JSONObject,
		),
		validation.Field(&r.Source,
			validation.Required,
			validation.In(string(snapshotDomain.SourceHuman), string(snapshotDomain.SourceAI)),
		),
		validation.Field(&r.RecordCount,
			validation.Min(0),
		),
	)
}

// RollbackRequest contains the optional note attached to a rollback.
type RollbackRequest struct {
	Note string `json:"note"`
}

// ReviewRequest contains the optional note attached to an approve or reject.
type ReviewRequest struct {
	Note string `json:"note"`
}
