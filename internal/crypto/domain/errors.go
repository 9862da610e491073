package domain

import (
	"github.com/hash066/biavault/internal/errors"
)

// Cryptographic operation error definitions.
//
// These domain-specific errors wrap standard errors from internal/errors
// to provide context for cryptographic failures. All errors are mapped to
// appropriate HTTP status codes by the error handling layer. Configuration
// errors are fatal at startup and prevent the service from serving any
// encryption or decryption request.
var (
	// ErrMasterSecretNotSet indicates that no master secret source was configured.
	// Fatal at startup: without it no data encryption key can be derived.
	ErrMasterSecretNotSet = errors.New("master secret is not configured")

	// ErrInvalidMasterSecretBase64 indicates the master secret could not be base64-decoded.
	ErrInvalidMasterSecretBase64 = errors.New("master secret is not valid base64")

	// ErrInvalidKeySize indicates a key is not exactly 32 bytes (256 bits).
	// Applies to the master secret and to derived data encryption keys.
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrInvalidKeyVersion indicates a key version below 1 was requested.
	// Key versions are positive integers starting at 1.
	ErrInvalidKeyVersion = errors.Wrap(errors.ErrInvalidInput, "invalid key version")

	// ErrUnsupportedAlgorithm indicates the requested AEAD algorithm is not supported.
	//
	// Supported algorithms: AESGCM (AES-256-GCM), ChaCha20 (ChaCha20-Poly1305)
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrInvalidInput, "unsupported algorithm")

	// ErrInvalidEnvelope indicates an envelope carries fields with the wrong
	// sizes (nonce, checksum, or a ciphertext shorter than the authentication
	// tag). Such envelopes are rejected before decryption is attempted.
	ErrInvalidEnvelope = errors.Wrap(errors.ErrInvalidInput, "invalid envelope")

	// ErrAuthenticationFailed indicates the AEAD authentication tag did not verify.
	//
	// This signals tampered or corrupted ciphertext, or decryption with a
	// wrong or rotated key. For security reasons the specific cause is not
	// disclosed and no partial plaintext is ever returned.
	ErrAuthenticationFailed = errors.New("envelope authentication failed")

	// ErrIntegrityCheckFailed indicates the plaintext checksum disagreed with
	// the envelope after a successful AEAD decryption.
	//
	// This is a second line of defense against storage-layer corruption that
	// happens not to break AEAD verification. It is practically redundant with
	// the authentication tag but surfaced distinctly so operators can tell
	// storage bit-rot from key-level tampering.
	ErrIntegrityCheckFailed = errors.New("plaintext integrity check failed")
)
