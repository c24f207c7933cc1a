package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// HashKey joins parts with a unit separator and returns the hex SHA-256.
func HashKey(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x1f")))
	return hex.EncodeToString(sum[:])
}
