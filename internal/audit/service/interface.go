// Package service provides the tamper-evidence layer for the audit trail.
package service

import (
	auditDomain "github.com/hash066/biavault/internal/audit/domain"
)

// AuditSigner signs and verifies audit entries.
type AuditSigner interface {
	// Sign computes the HMAC signature for the entry's canonical encoding.
	Sign(entry *auditDomain.AuditEntry) ([]byte, error)

	// Verify checks the entry's stored signature.
	// Returns nil if valid, ErrSignatureInvalid if the entry was modified.
	Verify(entry *auditDomain.AuditEntry) error
}
