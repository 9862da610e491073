package app

import (
	"context"
	"fmt"

	auditService "github.com/hash066/biavault/internal/audit/service"
	cryptoDomain "github.com/hash066/biavault/internal/crypto/domain"
	cryptoService "github.com/hash066/biavault/internal/crypto/service"
)

// MasterSecret returns the process-wide master secret, loading it from the
// configured source (plain base64 env value or KMS-wrapped ciphertext) on
// first access. Startup fails when no usable secret is configured.
func (c *Container) MasterSecret() (*cryptoDomain.MasterSecret, error) {
	var err error
	c.masterSecretInit.Do(func() {
		source := cryptoService.NewMasterSecretSource()
		c.masterSecret, err = source.Load(
			context.Background(),
			c.config.MasterSecret,
			c.config.KMSKeyURI,
			c.config.MasterSecretCiphertext,
		)
		if err != nil {
			c.initErrors["masterSecret"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["masterSecret"]; exists {
		return nil, storedErr
	}
	return c.masterSecret, nil
}

// KeyDeriver returns the HKDF key deriver.
func (c *Container) KeyDeriver() (cryptoService.KeyDeriver, error) {
	var err error
	c.keyDeriverInit.Do(func() {
		var secret *cryptoDomain.MasterSecret
		secret, err = c.MasterSecret()
		if err != nil {
			c.initErrors["keyDeriver"] = fmt.Errorf("failed to get master secret for key deriver: %w", err)
			return
		}
		c.keyDeriver = cryptoService.NewHKDFKeyDeriver(secret)
	})
	if err != nil {
		return nil, c.initErrors["keyDeriver"]
	}
	if storedErr, exists := c.initErrors["keyDeriver"]; exists {
		return nil, storedErr
	}
	return c.keyDeriver, nil
}

// EnvelopeCipher returns the envelope cipher service.
func (c *Container) EnvelopeCipher() cryptoService.EnvelopeCipher {
	c.cipherInit.Do(func() {
		c.cipher = cryptoService.NewEnvelopeCipher(cryptoService.NewAEADManager())
	})
	return c.cipher
}

// AuditSigner returns the HMAC audit signer.
func (c *Container) AuditSigner() (auditService.AuditSigner, error) {
	var err error
	c.auditSignerInit.Do(func() {
		var secret *cryptoDomain.MasterSecret
		secret, err = c.MasterSecret()
		if err != nil {
			c.initErrors["auditSigner"] = fmt.Errorf("failed to get master secret for audit signer: %w", err)
			return
		}
		c.auditSigner = auditService.NewAuditSigner(secret)
	})
	if err != nil {
		return nil, c.initErrors["auditSigner"]
	}
	if storedErr, exists := c.initErrors["auditSigner"]; exists {
		return nil, storedErr
	}
	return c.auditSigner, nil
}
