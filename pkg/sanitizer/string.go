package sanitizer

import (
	"strings"
	"unicode"
)

func Trim(s string) string {
	return strings.TrimSpace(s)
}

func ToLower(s string) string {
	return strings.ToLower(s)
}

// RemoveControlChars drops control characters except newline and tab.
func RemoveControlChars(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			return -1
		}
		return r
	}, s)
}

// SingleLine collapses every whitespace run, newlines included, into one
// space.
func SingleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// MaxRunes cuts s to at most n runes. A non-positive n returns s unchanged.
func MaxRunes(n int) func(string) string {
	return func(s string) string {
		if n <= 0 {
			return s
		}
		count := 0
		for i := range s {
			if count == n {
				return s[:i]
			}
			count++
		}
		return s
	}
}
