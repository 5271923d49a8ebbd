package service

import (
	"crypto/rand"
	"encoding/base64"
)

// tokenBytes gives 256 bits of entropy per code.
const tokenBytes = 32

// TokenFunc mints a new pass code.
type TokenFunc func() (string, error)

// NewToken returns a URL-safe random code suitable for embedding in a QR
// image.
func NewToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
