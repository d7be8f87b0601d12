package security

import (
	"crypto/rand"
	"encoding/base64"
)

// NewRandomString returns n random bytes base64-encoded. Reset tokens use
// n=64, matching the printable-token contract of the forgot-password flow.
func NewRandomString(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}
