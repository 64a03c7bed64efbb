package security

import (
	"crypto/rand"
	"fmt"
)

// LookupCodeLength is the length of a chatbot's public lookup code
const LookupCodeLength = 12

const lookupAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_-"

// NewLookupCode returns a random URL-safe code. The 64-symbol alphabet makes
// the byte-to-symbol mapping unbiased.
func NewLookupCode() (string, error) {
	buf := make([]byte, LookupCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	for i, b := range buf {
		buf[i] = lookupAlphabet[b&63]
	}
	return string(buf), nil
}

// IsLookupCode reports whether s has the shape of a lookup code
func IsLookupCode(s string) bool {
	if len(s) != LookupCodeLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '_', c == '-':
		default:
			return false
		}
	}
	return true
}
