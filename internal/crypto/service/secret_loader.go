package service

import (
	"context"
	"encoding/base64"
	"fmt"

	"gocloud.dev/secrets"

	cryptoDomain "github.com/hash066/biavault/internal/crypto/domain"

	// Register all KMS provider drivers
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// Keeper is the subset of *secrets.Keeper used to unwrap the master secret.
type Keeper interface {
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
	Close() error
}

// MasterSecretSource loads the process-wide master secret at startup, either
// directly from a base64-encoded environment value or by unwrapping a
// KMS-encrypted ciphertext through a gocloud.dev secrets keeper.
//
// Supported keeper URIs: gcpkms://, awskms://, azurekeyvault://,
// hashivault://, base64key:// (local development).
type MasterSecretSource struct {
	openKeeper func(ctx context.Context, uri string) (Keeper, error)
}

// NewMasterSecretSource creates a master secret source using gocloud.dev/secrets.
func NewMasterSecretSource() *MasterSecretSource {
	return &MasterSecretSource{
		openKeeper: func(ctx context.Context, uri string) (Keeper, error) {
			keeper, err := secrets.OpenKeeper(ctx, uri)
			if err != nil {
				return nil, fmt.Errorf("failed to open KMS keeper: %w", err)
			}
			return keeper, nil
		},
	}
}

// Load resolves the master secret from its configured source.
//
// When kmsKeyURI is set, wrappedSecret (base64) is unwrapped through the
// keeper; otherwise plainSecret (base64) is decoded directly. A missing or
// empty source is a fatal configuration error: the service must not start
// without derivable keys.
func (s *MasterSecretSource) Load(
	ctx context.Context,
	plainSecret, kmsKeyURI, wrappedSecret string,
) (*cryptoDomain.MasterSecret, error) {
	if kmsKeyURI == "" {
		return cryptoDomain.NewMasterSecretFromBase64(plainSecret)
	}

	if wrappedSecret == "" {
		return nil, cryptoDomain.ErrMasterSecretNotSet
	}

	ciphertext, err := base64.StdEncoding.DecodeString(wrappedSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrInvalidMasterSecretBase64, err)
	}

	keeper, err := s.openKeeper(ctx, kmsKeyURI)
	if err != nil {
		return nil, err
	}
	defer func() { _ = keeper.Close() }()

	raw, err := keeper.Decrypt(ctx, ciphertext)
	if err != nil {
		return nil, fmt.Errorf("failed to unwrap master secret: %w", err)
	}
	defer cryptoDomain.Zero(raw)

	return cryptoDomain.NewMasterSecret(raw)
}
