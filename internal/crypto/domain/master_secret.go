// Package domain defines the core cryptographic types for per-tenant
// envelope encryption: the process-wide master secret, derived data
// encryption keys, and the encrypted envelope format.
package domain

import (
	"encoding/base64"
	"fmt"
)

// MasterSecret is the process-wide input keying material from which all
// per-tenant data encryption keys are derived.
//
// The secret is read once at process startup into immutable in-memory state
// and injected explicitly into the key deriver; there is no global or
// singleton access path. Derived keys are never persisted, so the master
// secret is load-bearing: losing it makes every stored snapshot unreadable.
//
// Security considerations:
//   - The secret must be exactly 32 bytes (256 bits).
//   - It must never be written to persistent storage or logs.
//   - In production it should be unwrapped through a KMS keeper rather than
//     supplied directly via environment variables.
type MasterSecret struct {
	key []byte
}

// NewMasterSecret creates a MasterSecret from raw key material.
// The input slice is copied; callers should zero their copy after use.
// Returns ErrInvalidKeySize if the material is not exactly 32 bytes.
func NewMasterSecret(key []byte) (*MasterSecret, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: master secret must be %d bytes, got %d", ErrInvalidKeySize, KeySize, len(key))
	}

	k := make([]byte, KeySize)
	copy(k, key)
	return &MasterSecret{key: k}, nil
}

// NewMasterSecretFromBase64 decodes a base64-encoded master secret.
// Returns ErrMasterSecretNotSet for an empty value, ErrInvalidMasterSecretBase64
// if decoding fails, or ErrInvalidKeySize if the decoded material is not 32 bytes.
func NewMasterSecretFromBase64(encoded string) (*MasterSecret, error) {
	if encoded == "" {
		return nil, ErrMasterSecretNotSet
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMasterSecretBase64, err)
	}
	defer Zero(raw)

	return NewMasterSecret(raw)
}

// Bytes returns the raw secret for use as HKDF input keying material.
// The returned slice aliases internal state and must not be modified or retained.
func (m *MasterSecret) Bytes() []byte {
	return m.key
}

// Close clears the secret from memory. The MasterSecret must not be used afterwards.
func (m *MasterSecret) Close() {
	Zero(m.key)
	m.key = nil
}
