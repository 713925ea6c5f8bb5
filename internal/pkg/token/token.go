// Package token generates and hashes the opaque secrets used for refresh
// tokens and login codes. Secrets come from crypto/rand and are persisted
// only as SHA-256 hashes (refresh tokens) or compared as single-use values
// (login codes).
package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
)

const (
	// RefreshTokenBytes is the entropy of a refresh token
	RefreshTokenBytes = 48

	// LoginCodeBytes is the entropy of a web-session login code
	LoginCodeBytes = 32
)

// New returns a URL-safe random token of n random bytes
func New(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Hash returns the hex-encoded SHA-256 digest of a token
func Hash(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
