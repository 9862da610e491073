package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	auditDomain "github.com/hash066/biavault/internal/audit/domain"
	cryptoDomain "github.com/hash066/biavault/internal/crypto/domain"
)

// auditSigningContext is the HKDF info parameter for the audit signing key.
// Versioned so a future algorithm change derives a fresh key instead of
// colliding with the data-encryption derivation namespace.
const auditSigningContext = "biavault:audit-signing:v1"

type auditSigner struct {
	masterSecret *cryptoDomain.MasterSecret
}

// NewAuditSigner creates an HMAC-based audit entry signer. The signing key is
// derived from the master secret via HKDF-SHA256 with a dedicated info
// parameter, keeping signing key usage separate from encryption key usage.
func NewAuditSigner(masterSecret *cryptoDomain.MasterSecret) AuditSigner {
	return &auditSigner{masterSecret: masterSecret}
}

// deriveSigningKey uses HKDF-SHA256 to derive a 32-byte signing key from the
// master secret.
func (a *auditSigner) deriveSigningKey() ([]byte, error) {
	reader := hkdf.New(sha256.New, a.masterSecret.Bytes(), nil, []byte(auditSigningContext))

	signingKey := make([]byte, 32)
	if _, err := io.ReadFull(reader, signingKey); err != nil {
		return nil, err
	}

	return signingKey, nil
}

// canonicalize converts an audit entry to its canonical byte representation.
// Format: id || tenant_id || snapshot_id (zero UUID when nil) || action ||
// actor_id || details JSON || created_at, with length prefixes on
// variable-length fields to prevent ambiguity.
func (a *auditSigner) canonicalize(entry *auditDomain.AuditEntry) ([]byte, error) {
	buf := make([]byte, 0, 512)

	buf = append(buf, entry.ID[:]...)
	buf = append(buf, entry.TenantID[:]...)

	if entry.SnapshotID != nil {
		buf = append(buf, entry.SnapshotID[:]...)
	} else {
		var zeroUUID [16]byte
		buf = append(buf, zeroUUID[:]...)
	}

	buf = appendLengthPrefixed(buf, []byte(string(entry.Action)))
	buf = appendLengthPrefixed(buf, []byte(entry.ActorID))

	if entry.Details != nil {
		detailsJSON, err := json.Marshal(entry.Details)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal audit details: %w", err)
		}
		buf = appendLengthPrefixed(buf, detailsJSON)
	} else {
		buf = appendLengthPrefixed(buf, nil)
	}

	// Unix nano for precision
	buf = binary.BigEndian.AppendUint64(buf, uint64(entry.CreatedAt.UnixNano()))

	return buf, nil
}

// appendLengthPrefixed adds a 4-byte big-endian length prefix followed by data.
func appendLengthPrefixed(buf, data []byte) []byte {
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(data)))
	return append(buf, data...)
}

// Sign generates the HMAC-SHA256 signature for the audit entry.
func (a *auditSigner) Sign(entry *auditDomain.AuditEntry) ([]byte, error) {
	signingKey, err := a.deriveSigningKey()
	if err != nil {
		return nil, fmt.Errorf("failed to derive signing key: %w", err)
	}
	defer cryptoDomain.Zero(signingKey)

	canonical, err := a.canonicalize(entry)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize entry: %w", err)
	}

	mac := hmac.New(sha256.New, signingKey)
	mac.Write(canonical)
	return mac.Sum(nil), nil
}

// Verify checks if the audit entry signature is valid.
// Returns nil if valid, ErrSignatureInvalid if tampered or invalid.
func (a *auditSigner) Verify(entry *auditDomain.AuditEntry) error {
	expected, err := a.Sign(entry)
	if err != nil {
		return fmt.Errorf("failed to compute expected signature: %w", err)
	}

	if !hmac.Equal(entry.Signature, expected) {
		return auditDomain.ErrSignatureInvalid
	}

	return nil
}
