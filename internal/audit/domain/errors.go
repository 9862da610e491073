package domain

import (
	"github.com/hash066/biavault/internal/errors"
)

// Audit-specific error definitions.
var (
	// ErrInvalidAction indicates an unknown audit action value.
	ErrInvalidAction = errors.Wrap(errors.ErrInvalidInput, "invalid audit action")

	// ErrSignatureInvalid indicates an audit entry's signature did not verify,
	// meaning the stored entry was modified after it was recorded.
	ErrSignatureInvalid = errors.New("audit entry signature is invalid")
)
