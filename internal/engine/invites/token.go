package invites

import (
	"crypto/rand"
	"encoding/base64"
)

const tokenBytes = 32 // 256 bits of entropy

// GenerateToken returns an unguessable, URL-safe invitation token.
func GenerateToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
