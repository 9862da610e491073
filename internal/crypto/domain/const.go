package domain

// Algorithm represents the AEAD algorithm used to encrypt a snapshot envelope.
//
// Both supported algorithms provide Authenticated Encryption with Associated Data
// with a 256-bit key, a 96-bit nonce, and a 128-bit authentication tag. The
// algorithm is stamped into every envelope alongside the key version, so
// historical snapshots remain decryptable after the configured algorithm changes.
type Algorithm string

const (
	// AESGCM represents the AES-256-GCM authenticated encryption algorithm.
	// Preferred on CPUs with AES-NI hardware acceleration.
	AESGCM Algorithm = "aes-gcm"

	// ChaCha20 represents the ChaCha20-Poly1305 authenticated encryption algorithm.
	// Constant-time in software; preferred on platforms without AES-NI.
	ChaCha20 Algorithm = "chacha20-poly1305"
)

// Fixed byte sizes shared by both algorithms. Envelopes with mismatched sizes
// are rejected before any decryption is attempted.
const (
	// KeySize is the size of derived data encryption keys (256 bits).
	KeySize = 32

	// NonceSize is the AEAD nonce size (96 bits), freshly generated per encryption.
	NonceSize = 12

	// TagSize is the AEAD authentication tag size (128 bits). The tag is
	// appended to the ciphertext by the AEAD implementation.
	TagSize = 16

	// ChecksumSize is the size of the SHA-256 plaintext checksum (256 bits)
	// carried by every envelope, independent of the authentication tag.
	ChecksumSize = 32
)

// Supported reports whether the algorithm is one of the known AEAD algorithms.
func (a Algorithm) Supported() bool {
	return a == AESGCM || a == ChaCha20
}
