package rag

import (
	"fmt"

	wl "github.com/abadojack/whatlanggo"
)

var languageNames = map[string]string{
	"pt": "Portuguese",
	"es": "Spanish",
	"fr": "French",
	"de": "German",
	"it": "Italian",
	"nl": "Dutch",
}

// languageHint asks the model to answer in the visitor's language when it
// is confidently not English.
func languageHint(question string) string {
	info := wl.Detect(question)
	if !info.IsReliable() {
		return ""
	}

	code := info.Lang.Iso6391()
	if code == "" || code == "en" {
		return ""
	}

	name, ok := languageNames[code]
	if !ok {
		return fmt.Sprintf("Reply in the visitor's language (ISO 639-1 %q).", code)
	}
	return fmt.Sprintf("Reply in %s, the language of the question.", name)
}
