package service

import (
	"crypto/hmac"
	"crypto/sha256"

	cryptoDomain "github.com/hash066/biavault/internal/crypto/domain"
)

// EnvelopeCipherService implements EnvelopeCipher on top of an AEADManager.
//
// Encryption runs the configured AEAD and independently computes a SHA-256
// checksum of the plaintext. Decryption verifies the AEAD tag first and the
// checksum second, so storage-layer corruption is distinguishable from
// key-level tampering. The service is key-version-agnostic: the caller stamps
// the key version into the envelope.
type EnvelopeCipherService struct {
	aeadManager AEADManager
}

// NewEnvelopeCipher creates a new EnvelopeCipherService using the provided AEADManager.
func NewEnvelopeCipher(aeadManager AEADManager) *EnvelopeCipherService {
	return &EnvelopeCipherService{aeadManager: aeadManager}
}

// Encrypt encrypts plaintext under key with a fresh nonce and returns the
// envelope carrying ciphertext+tag, the plaintext checksum, and the
// caller-supplied algorithm and key version.
func (e *EnvelopeCipherService) Encrypt(
	plaintext, key []byte,
	alg cryptoDomain.Algorithm,
	keyVersion int,
) (*cryptoDomain.Envelope, error) {
	if keyVersion < 1 {
		return nil, cryptoDomain.ErrInvalidKeyVersion
	}

	aead, err := e.aeadManager.CreateCipher(key, alg)
	if err != nil {
		return nil, err
	}

	ciphertext, nonce, err := aead.Encrypt(plaintext, nil)
	if err != nil {
		return nil, err
	}

	checksum := sha256.Sum256(plaintext)

	return &cryptoDomain.Envelope{
		KeyVersion: keyVersion,
		Algorithm:  alg,
		Nonce:      nonce,
		Ciphertext: ciphertext,
		Checksum:   checksum[:],
	}, nil
}

// Decrypt validates the envelope's field sizes, opens the AEAD, and verifies
// the plaintext checksum.
//
// Returns ErrAuthenticationFailed when the authentication tag does not verify
// (tampered or corrupted ciphertext, or a wrong/rotated key); no partial
// plaintext is ever returned. Returns ErrIntegrityCheckFailed when the
// recomputed checksum disagrees with the stored one after a successful AEAD
// open, signalling storage-layer corruption.
func (e *EnvelopeCipherService) Decrypt(envelope *cryptoDomain.Envelope, key []byte) ([]byte, error) {
	if err := envelope.Validate(); err != nil {
		return nil, err
	}

	aead, err := e.aeadManager.CreateCipher(key, envelope.Algorithm)
	if err != nil {
		return nil, err
	}

	plaintext, err := aead.Decrypt(envelope.Ciphertext, envelope.Nonce, nil)
	if err != nil {
		return nil, cryptoDomain.ErrAuthenticationFailed
	}

	checksum := sha256.Sum256(plaintext)
	if !hmac.Equal(checksum[:], envelope.Checksum) {
		cryptoDomain.Zero(plaintext)
		return nil, cryptoDomain.ErrIntegrityCheckFailed
	}

	return plaintext, nil
}
