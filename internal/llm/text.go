package llm

import (
	"strings"
	"unicode/utf8"
)

// DefaultMaxInputChars keeps a single embedding input under the 8192-token
// limit of the text-embedding-3 models (~3 chars per token).
const DefaultMaxInputChars = 24000

// normalizeWhitespace collapses runs of whitespace, newlines included, into
// single spaces.
func normalizeWhitespace(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		if r == ' ' || r == '\n' || r == '\r' || r == '\t' {
			if !space {
				b.WriteRune(' ')
				space = true
			}
		} else {
			b.WriteRune(r)
			space = false
		}
	}
	return b.String()
}

func truncateRunes(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
