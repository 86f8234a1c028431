package extract

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/nguyenthenguyen/docx"
	"golang.org/x/net/html"
)

var (
	docxParagraphEnd = regexp.MustCompile(`</w:p>|<w:br/>|<w:br />`)
	docxTab          = regexp.MustCompile(`<w:tab/>|<w:tab />`)
	xmlTag           = regexp.MustCompile(`<[^>]+>`)
)

// DOCX returns the paragraph text of a Word document.
func DOCX(data []byte) (string, error) {
	r, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	defer r.Close()

	return docxText(r.Editable().GetContent()), nil
}

// docxText flattens document.xml into lines, one per paragraph.
func docxText(xml string) string {
	s := docxParagraphEnd.ReplaceAllString(xml, "\n")
	s = docxTab.ReplaceAllString(s, "\t")
	s = xmlTag.ReplaceAllString(s, "")
	s = html.UnescapeString(s)

	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}
