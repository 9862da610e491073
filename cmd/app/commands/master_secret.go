package commands

import (
	"context"
	"crypto/rand"
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

// RunCreateMasterSecret generates a cryptographically secure 32-byte master secret
// used to derive all per-tenant data encryption keys. Secret material is zeroed
// from memory after encoding.
//
// Without --kms-key-uri, the secret is printed base64-encoded for direct use via
// the MASTER_SECRET environment variable. With --kms-key-uri, the secret is
// encrypted through the KMS keeper first and printed as KMS_KEY_URI plus
// MASTER_SECRET_CIPHERTEXT; the plaintext secret never leaves the process.
//
// Security: Plain mode and the base64key:// keeper are for local development only.
// Use cloud KMS providers (gcpkms, awskms, azurekeyvault, hashivault) in production.
func RunCreateMasterSecret(kmsKeyURI string) error {
	ctx := context.Background()

	// Generate a cryptographically secure 32-byte master secret
	secret := make([]byte, cryptoDomain.KeySize)
	if _, err := rand.Read(secret); err != nil {
		return fmt.Errorf("failed to generate master secret: %w", err)
	}
	defer cryptoDomain.Zero(secret)

	if kmsKeyURI == "" {
		fmt.Println("# Master Secret Configuration (Plain Mode)")
		fmt.Println("# Copy this environment variable to your .env file or secrets manager")
		fmt.Println("# WARNING: Plain mode stores the secret unwrapped. Use --kms-key-uri in production.")
		fmt.Println()
		fmt.Printf("MASTER_SECRET=\"%s\"\n", base64.StdEncoding.EncodeToString(secret))
		return nil
	}

	keeper, err := secrets.OpenKeeper(ctx, kmsKeyURI)
	if err != nil {
		return fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	defer func() {
		if closeErr := keeper.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close KMS keeper: %v\n", closeErr)
		}
	}()

	ciphertext, err := keeper.Encrypt(ctx, secret)
	if err != nil {
		return fmt.Errorf("failed to encrypt master secret with KMS: %w", err)
	}

	fmt.Println("# Master Secret Configuration (KMS Mode)")
	fmt.Println("# Copy these environment variables to your .env file or secrets manager")
	fmt.Println()
	fmt.Printf("KMS_KEY_URI=\"%s\"\n", kmsKeyURI)
	fmt.Printf("MASTER_SECRET_CIPHERTEXT=\"%s\"\n", base64.StdEncoding.EncodeToString(ciphertext))

	return nil
}
