package service

import (
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/google/uuid"
	"golang.org/x/crypto/hkdf"

	cryptoDomain "github.com/hash066/biavault/internal/crypto/domain"
)

// keyDerivationContext is the deterministic HKDF info prefix. No salt is used:
// uniqueness of derived keys comes entirely from the info parameter being
// unique per (tenant, keyVersion) pair under a given master secret. The
// version suffix in the prefix allows future derivation changes without
// colliding with existing keys.
const keyDerivationContext = "biavault:dek:v1"

// HKDFKeyDeriver derives per-tenant, per-version data encryption keys using
// HKDF-SHA256 extract-and-expand with the master secret as input keying material.
//
// Derivation is a pure function of (masterSecret, tenant, keyVersion): the
// same inputs always yield the same 32-byte key. This determinism is
// load-bearing, since derived keys are never written to persistent storage or
// logs but held in memory only for the duration of one encrypt/decrypt call.
type HKDFKeyDeriver struct {
	masterSecret *cryptoDomain.MasterSecret
}

// NewHKDFKeyDeriver creates a key deriver bound to the given master secret.
// The master secret is injected at construction time; there is no global state.
func NewHKDFKeyDeriver(masterSecret *cryptoDomain.MasterSecret) *HKDFKeyDeriver {
	return &HKDFKeyDeriver{masterSecret: masterSecret}
}

// DeriveKey returns the 32-byte DEK for (tenant, keyVersion).
//
// Returns ErrInvalidKeyVersion for key versions below 1. The caller must zero
// the returned key (cryptoDomain.Zero) as soon as the cryptographic operation
// using it completes, to bound the exposure window.
func (d *HKDFKeyDeriver) DeriveKey(tenant uuid.UUID, keyVersion int) ([]byte, error) {
	if keyVersion < 1 {
		return nil, fmt.Errorf("%w: %d", cryptoDomain.ErrInvalidKeyVersion, keyVersion)
	}

	info := fmt.Appendf(nil, "%s:%s:%d", keyDerivationContext, tenant, keyVersion)
	reader := hkdf.New(sha256.New, d.masterSecret.Bytes(), nil, info)

	key := make([]byte, cryptoDomain.KeySize)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}

	return key, nil
}
