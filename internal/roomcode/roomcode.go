// Package roomcode mints the short, collision-resistant room codes used by
// the Room Creation API (spec.md §4.7, §6).
package roomcode

import (
	"crypto/rand"
	"strings"
)

// Length is the fixed width of a minted room code.
const Length = 8

// alphabet excludes visually ambiguous characters (0/O, 1/I) the way the
// corpus's random-suffix generators favor unambiguous, printable output.
const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// New returns a fresh 8-character uppercase alphanumeric room code.
func New() (string, error) {
	buf := make([]byte, Length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	var sb strings.Builder
	sb.Grow(Length)
	for _, b := range buf {
		sb.WriteByte(alphabet[int(b)%len(alphabet)])
	}
	return sb.String(), nil
}

// Normalize case-folds a user-supplied code to the registry's canonical
// uppercase form (spec.md §3: "8 printable alphanumerics, case-folded on
// lookup").
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
