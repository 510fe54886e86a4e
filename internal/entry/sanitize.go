package entry

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// inlinePolicy keeps only the inline markup the flashcard HTML fields can
// carry. Block markup and anything scripting-capable is stripped.
var inlinePolicy = func() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("b", "i", "u", "s", "sub", "sup", "code", "br")
	return p
}()

// SanitizeText strips disallowed markup from a single free-text field,
// keeping the permitted inline tags intact.
func SanitizeText(s string) string {
	return strings.TrimSpace(inlinePolicy.Sanitize(s))
}

func sanitizeList(items []string) []string {
	if len(items) == 0 {
		return items
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if clean := SanitizeText(item); clean != "" {
			out = append(out, clean)
		}
	}
	return out
}

// Sanitize normalizes the term and scrubs every free-text field down to the
// permitted inline-markup subset. Called once before persistence so the
// repository and the gateway only ever see clean values.
func (e *Entry) Sanitize() {
	e.Term = Normalize(SanitizeText(e.Term))
	e.Translation = SanitizeText(e.Translation)
	e.DefinitionTarget = SanitizeText(e.DefinitionTarget)
	e.DefinitionNative = SanitizeText(e.DefinitionNative)
	e.Pronunciation = SanitizeText(e.Pronunciation)
	e.Grammar = SanitizeText(e.Grammar)
	e.Etymology = SanitizeText(e.Etymology)
	e.Collocations = sanitizeList(e.Collocations)
	e.Synonyms = sanitizeList(e.Synonyms)
	e.ExamplesTarget = sanitizeList(e.ExamplesTarget)
	e.ExamplesNative = sanitizeList(e.ExamplesNative)
	e.Related = sanitizeList(e.Related)
	e.Tags = sanitizeList(e.Tags)
	if !ValidLevel(e.Level) {
		e.Level = ""
	}
	e.Score = ClampScore(e.Score)
}
