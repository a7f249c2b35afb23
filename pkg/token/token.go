package token

import (
	"crypto/rand"
	"encoding/hex"
)

// Len is the length of a session token in characters.
const Len = 32

// New returns a fresh session token: Len lowercase hex characters, no
// separators or prefixes, from a CSPRNG.
func New() string {
	b := make([]byte, Len/2)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// Valid reports whether s has the exact shape New produces. Tokens from
// untrusted headers are checked before touching the session store.
func Valid(s string) bool {
	if len(s) != Len {
		return false
	}
	for _, r := range s {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return false
		}
	}
	return true
}
