package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// APIKeyPrefix marks every issued key so a reader can recognize one at a
// glance and so verification can short-circuit on headers that obviously
// aren't API keys.
const APIKeyPrefix = "mcp_"

// apiKeyEntropyBytes yields well over the 32-character minimum once
// base64url-encoded (32 bytes -> 43 chars).
const apiKeyEntropyBytes = 32

// GenerateAPIKey returns a fresh "mcp_"-prefixed, URL-safe random key and
// the SHA-256 hash callers must persist instead of the key itself.
func GenerateAPIKey() (key string, hash string, err error) {
	buf := make([]byte, apiKeyEntropyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("generate api key entropy: %w", err)
	}
	key = APIKeyPrefix + base64.RawURLEncoding.EncodeToString(buf)
	return key, HashAPIKey(key), nil
}

// HashAPIKey returns the SHA-256 hash of key, hex-encoded. Only this value
// is ever persisted; the live key is shown to the caller exactly once, at
// issuance.
func HashAPIKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}
