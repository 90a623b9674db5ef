// internal/game/codes.go
package game

import (
	"math/rand/v2"
	"strings"
)

// codeAlphabet deliberately omits I, O, 0 and 1 so codes survive being
// read aloud or copied from a projector.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// CodeLength is the fixed length of a session code.
const CodeLength = 6

// DefaultCodeAttempts bounds the collision-retry loop in CreateSession.
const DefaultCodeAttempts = 10

// NewCode returns a random session code. Uniqueness is enforced by the
// store's unique index, not here; CreateSession retries on collision.
func NewCode() string {
	var b strings.Builder
	b.Grow(CodeLength)
	for i := 0; i < CodeLength; i++ {
		b.WriteByte(codeAlphabet[rand.IntN(len(codeAlphabet))])
	}
	return b.String()
}

// NormalizeCode canonicalizes user input: codes are case-insensitive
// and stored uppercase.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidCode reports whether a normalized code could have been produced
// by NewCode.
func ValidCode(code string) bool {
	if len(code) != CodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		if !strings.ContainsRune(codeAlphabet, rune(code[i])) {
			return false
		}
	}
	return true
}
