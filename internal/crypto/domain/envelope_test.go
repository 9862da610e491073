package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validEnvelope() *Envelope {
	return &Envelope{
		KeyVersion: 1,
		Algorithm:  AESGCM,
		Nonce:      make([]byte, NonceSize),
		Ciphertext: make([]byte, TagSize+10),
		Checksum:   make([]byte, ChecksumSize),
	}
}

func TestEnvelope_Validate(t *testing.T) {
	t.Run("valid envelope", func(t *testing.T) {
		assert.NoError(t, validEnvelope().Validate())
	})

	t.Run("key version below 1", func(t *testing.T) {
		e := validEnvelope()
		e.KeyVersion = 0
		assert.ErrorIs(t, e.Validate(), ErrInvalidKeyVersion)
	})

	t.Run("unsupported algorithm", func(t *testing.T) {
		e := validEnvelope()
		e.Algorithm = Algorithm("des")
		assert.ErrorIs(t, e.Validate(), ErrUnsupportedAlgorithm)
	})

	t.Run("wrong nonce size", func(t *testing.T) {
		e := validEnvelope()
		e.Nonce = make([]byte, 8)
		assert.ErrorIs(t, e.Validate(), ErrInvalidEnvelope)
	})

	t.Run("ciphertext shorter than tag", func(t *testing.T) {
		e := validEnvelope()
		e.Ciphertext = make([]byte, TagSize-1)
		assert.ErrorIs(t, e.Validate(), ErrInvalidEnvelope)
	})

	t.Run("wrong checksum size", func(t *testing.T) {
		e := validEnvelope()
		e.Checksum = make([]byte, 20)
		assert.ErrorIs(t, e.Validate(), ErrInvalidEnvelope)
	})
}

func TestAlgorithm_Supported(t *testing.T) {
	assert.True(t, AESGCM.Supported())
	assert.True(t, ChaCha20.Supported())
	assert.False(t, Algorithm("").Supported())
	assert.False(t, Algorithm("aes-cbc").Supported())
}

func TestZero(t *testing.T) {
	b := []byte{1, 2, 3}
	Zero(b)
	assert.Equal(t, []byte{0, 0, 0}, b)

	// nil is a no-op
	Zero(nil)
}
