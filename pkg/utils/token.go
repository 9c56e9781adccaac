package utils

import (
	"crypto/rand"
	"encoding/base64"
)

// GenerateRefreshToken returns 64 random bytes, base64 encoded
func GenerateRefreshToken() (string, error) {
	b := make([]byte, 64)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}
