package domain

// Zero overwrites a byte slice in place. Callers zero decrypted payloads and
// derived keys as soon as they are done with them.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
