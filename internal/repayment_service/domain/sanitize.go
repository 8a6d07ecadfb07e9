package domain

import (
	"strings"
	"unicode"
)

// SanitizeAccount keeps only letters and digits. It is pure and idempotent:
// SanitizeAccount(SanitizeAccount(x)) == SanitizeAccount(x).
func SanitizeAccount(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
