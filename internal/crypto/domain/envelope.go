package domain

import (
	"fmt"
)

// Envelope is the authenticated, integrity-checked container for an encrypted
// snapshot payload.
//
// The ciphertext carries the 128-bit AEAD authentication tag appended by the
// cipher, so its length is always at least TagSize. The checksum is a SHA-256
// hash of the plaintext computed independently of the AEAD, allowing
// storage-layer corruption to be detected separately from key-level tampering.
//
// KeyVersion records which derivation parameters produced the data encryption
// key; the cipher itself is key-version-agnostic and the field is stamped by
// the caller. Algorithm records the AEAD in use so historical envelopes stay
// decryptable after the configured algorithm changes.
type Envelope struct {
	// KeyVersion identifies the derivation parameters of the DEK (>= 1).
	KeyVersion int
	// Algorithm is the AEAD algorithm used for this envelope.
	Algorithm Algorithm
	// Nonce is the fresh 96-bit value generated for this encryption.
	Nonce []byte
	// Ciphertext is the encrypted payload with the 128-bit tag appended.
	Ciphertext []byte
	// Checksum is the SHA-256 hash of the plaintext.
	Checksum []byte
}

// Validate rejects envelopes with mismatched field sizes before any
// decryption is attempted.
func (e *Envelope) Validate() error {
	if e.KeyVersion < 1 {
		return fmt.Errorf("%w: key version %d", ErrInvalidKeyVersion, e.KeyVersion)
	}
	if !e.Algorithm.Supported() {
		return fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, e.Algorithm)
	}
	if len(e.Nonce) != NonceSize {
		return fmt.Errorf("%w: nonce must be %d bytes, got %d", ErrInvalidEnvelope, NonceSize, len(e.Nonce))
	}
	if len(e.Ciphertext) < TagSize {
		return fmt.Errorf("%w: ciphertext shorter than authentication tag", ErrInvalidEnvelope)
	}
	if len(e.Checksum) != ChecksumSize {
		return fmt.Errorf("%w: checksum must be %d bytes, got %d", ErrInvalidEnvelope, ChecksumSize, len(e.Checksum))
	}
	return nil
}
