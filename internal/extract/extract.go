// Package extract turns uploaded portfolio files into plain text.
package extract

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

var (
	ErrEmpty       = errors.New("file contains no text")
	ErrInvalidUTF8 = errors.New("file must be a valid UTF-8 text file")
)

// Text extracts the plain text of data, choosing a reader by the file
// extension. Unknown extensions are treated as UTF-8 text.
func Text(filename string, data []byte) (string, error) {
	var (
		text string
		err  error
	)

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		text, err = PDF(data)
	case ".docx":
		text, err = DOCX(data)
	case ".xlsx":
		text, err = XLSX(data)
	case ".html", ".htm":
		text, err = MainText(string(data)), nil
	case ".md", ".markdown":
		if !utf8.Valid(data) {
			return "", ErrInvalidUTF8
		}
		text, err = Markdown(data)
	default:
		if !utf8.Valid(data) {
			return "", ErrInvalidUTF8
		}
		text = string(data)
	}
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", filepath.Base(filename), err)
	}

	text = strings.TrimSpace(SanitizeUTF8(text))
	if text == "" {
		return "", ErrEmpty
	}
	return text, nil
}

// IsSupported reports whether path has an extension the importer reads.
func IsSupported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown", ".txt", ".html", ".htm", ".pdf", ".docx", ".xlsx":
		return true
	}
	return false
}

// SanitizeUTF8 drops invalid bytes, which Postgres rejects in TEXT columns.
func SanitizeUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		if r == utf8.RuneError && size == 1 {
			s = s[1:]
			continue
		}
		b.WriteRune(r)
		s = s[size:]
	}
	return b.String()
}
