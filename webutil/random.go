package webutil

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// GenerateRandomToken returns nBytes of crypto/rand output encoded as
// unpadded URL-safe base64.
func GenerateRandomToken(nBytes int) (string, error) {
	if nBytes <= 0 {
		return "", fmt.Errorf("token length must be positive, got %d", nBytes)
	}
	buf := make([]byte, nBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
