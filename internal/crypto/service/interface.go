// Package service provides cryptographic services for snapshot encryption:
// HKDF-based per-tenant key derivation, AEAD ciphers (AES-256-GCM,
// ChaCha20-Poly1305), and the envelope cipher combining AEAD encryption with
// an independent plaintext checksum.
package service

import (
	"github.com/google/uuid"

	cryptoDomain "github.com/hash066/biavault/internal/crypto/domain"
)

// AEAD defines the interface for Authenticated Encryption with Associated Data.
type AEAD interface {
	// Encrypt encrypts plaintext with optional AAD and returns ciphertext and nonce.
	Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error)

	// Decrypt decrypts ciphertext using the provided nonce and AAD.
	Decrypt(ciphertext, nonce, aad []byte) ([]byte, error)
}

// AEADManager defines the interface for creating AEAD cipher instances.
type AEADManager interface {
	// CreateCipher creates an AEAD cipher instance for the specified algorithm.
	CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error)
}

// KeyDeriver derives per-tenant, per-version data encryption keys from the
// master secret. Derivation is deterministic and touches no I/O.
type KeyDeriver interface {
	// DeriveKey returns the 32-byte DEK for (tenant, keyVersion).
	//
	// Security Note: The returned key must be zeroed by the caller as soon as
	// the encrypt/decrypt call using it returns (cryptoDomain.Zero).
	DeriveKey(tenant uuid.UUID, keyVersion int) ([]byte, error)
}

// EnvelopeCipher encrypts and decrypts opaque payloads into envelopes.
type EnvelopeCipher interface {
	// Encrypt produces an envelope for plaintext under key, stamping the
	// caller-supplied key version and algorithm.
	Encrypt(plaintext, key []byte, alg cryptoDomain.Algorithm, keyVersion int) (*cryptoDomain.Envelope, error)

	// Decrypt recovers the plaintext from an envelope. Fails with
	// ErrAuthenticationFailed on tag mismatch and ErrIntegrityCheckFailed on
	// checksum mismatch after a successful AEAD open.
	Decrypt(envelope *cryptoDomain.Envelope, key []byte) ([]byte, error)
}
