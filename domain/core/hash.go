package core

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// HashParts hashes the parts joined by a unit separator so that
// ("ab","c") and ("a","bc") never collide.
func HashParts(parts ...string) Hash {
	return NewHash([]byte(strings.Join(parts, "\x1f")))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// Short returns the first n hex characters, or the full hash if shorter.
func (h Hash) Short(n int) string {
	if len(h) <= n {
		return string(h)
	}
	return string(h[:n])
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}
