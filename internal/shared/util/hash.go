package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// ContentKey returns a hex SHA-256 over data followed by each extra part.
func ContentKey(data []byte, parts ...string) string {
	h := sha256.New()
	h.Write(data)
	for _, p := range parts {
		h.Write([]byte{0})
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}
