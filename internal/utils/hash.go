package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// CalculateHash returns the hex-encoded SHA-256 of body concatenated with key.
// Used by the HashSHA256 request/response integrity headers.
func CalculateHash(body []byte, key string) string {
	h := sha256.New()
	h.Write(body)
	h.Write([]byte(key))
	return hex.EncodeToString(h.Sum(nil))
}
