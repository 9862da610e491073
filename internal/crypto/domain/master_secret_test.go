package domain

import (
	"crypto/rand"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMasterSecret(t *testing.T) {
	t.Run("accepts 32-byte material", func(t *testing.T) {
		raw := make([]byte, 32)
		_, err := rand.Read(raw)
		require.NoError(t, err)

		secret, err := NewMasterSecret(raw)
		require.NoError(t, err)
		assert.Equal(t, raw, secret.Bytes())
	})

	t.Run("copies the input", func(t *testing.T) {
		raw := make([]byte, 32)
		secret, err := NewMasterSecret(raw)
		require.NoError(t, err)

		raw[0] = 0xFF
		assert.Zero(t, secret.Bytes()[0])
	})

	t.Run("rejects wrong sizes", func(t *testing.T) {
		for _, size := range []int{0, 16, 31, 33, 64} {
			_, err := NewMasterSecret(make([]byte, size))
			assert.ErrorIs(t, err, ErrInvalidKeySize, "size %d", size)
		}
	})
}

func TestNewMasterSecretFromBase64(t *testing.T) {
	t.Run("decodes valid secret", func(t *testing.T) {
		raw := make([]byte, 32)
		_, err := rand.Read(raw)
		require.NoError(t, err)

		secret, err := NewMasterSecretFromBase64(base64.StdEncoding.EncodeToString(raw))
		require.NoError(t, err)
		assert.Equal(t, raw, secret.Bytes())
	})

	t.Run("empty value is a configuration error", func(t *testing.T) {
		_, err := NewMasterSecretFromBase64("")
		assert.ErrorIs(t, err, ErrMasterSecretNotSet)
	})

	t.Run("invalid base64", func(t *testing.T) {
		_, err := NewMasterSecretFromBase64("not-base64!!!")
		assert.ErrorIs(t, err, ErrInvalidMasterSecretBase64)
	})

	t.Run("wrong decoded size", func(t *testing.T) {
		_, err := NewMasterSecretFromBase64(base64.StdEncoding.EncodeToString(make([]byte, 16)))
		assert.ErrorIs(t, err, ErrInvalidKeySize)
	})
}

func TestMasterSecret_Close(t *testing.T) {
	raw := make([]byte, 32)
	for i := range raw {
		raw[i] = byte(i + 1)
	}

	secret, err := NewMasterSecret(raw)
	require.NoError(t, err)

	internal := secret.Bytes()
	secret.Close()

	for _, b := range internal {
		assert.Zero(t, b)
	}
	assert.Nil(t, secret.Bytes())
}
