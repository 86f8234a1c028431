package extract

import (
	"strings"
	"unicode/utf8"
)

// Chunks splits content into pieces of at most maxLen bytes, breaking on
// line boundaries and hard-splitting lines longer than maxLen on rune
// boundaries.
func Chunks(content string, maxLen int) []string {
	content = strings.TrimSpace(SanitizeUTF8(content))
	if content == "" {
		return nil
	}
	if maxLen <= 0 || len(content) <= maxLen {
		return []string{content}
	}

	var chunks []string
	var buf strings.Builder

	flush := func() {
		if buf.Len() == 0 {
			return
		}
		chunk := strings.TrimSpace(SanitizeUTF8(buf.String()))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		buf.Reset()
	}

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		for len(line) > maxLen {
			cut := runeCut(line, maxLen)
			flush()
			buf.WriteString(line[:cut])
			line = line[cut:]
			flush()
		}

		if buf.Len()+len(line)+1 > maxLen {
			flush()
		}

		buf.WriteString(line)
		buf.WriteByte('\n')
	}

	flush()
	return chunks
}

// runeCut returns the largest index <= maxLen that starts a rune. A rune
// wider than maxLen is kept whole.
func runeCut(line string, maxLen int) int {
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(line[cut]) {
		cut--
	}
	if cut == 0 {
		_, cut = utf8.DecodeRuneInString(line)
	}
	return cut
}
