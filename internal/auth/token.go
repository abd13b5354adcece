package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
)

// Session tokens are opaque bearer credentials stored server-side only; the
// cookie carries the token, the session store maps it to a user.
const sessionTokenBytes = 32

var sessionTokenPattern = regexp.MustCompile(`^[a-f0-9]{64}$`)

// NewSessionToken generates a fresh 256-bit session token, hex encoded.
func NewSessionToken() (string, error) {
	buf := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// ValidSessionToken checks the token shape before any store lookup, so
// arbitrary cookie values never reach the session backend.
func ValidSessionToken(token string) bool {
	return sessionTokenPattern.MatchString(token)
}
