package entry

import (
	"fmt"
	"strings"
)

// RenderHTML renders an entry as the inline-HTML snippet shown to the user
// after a lookup. Only fields with content are included, so the reduced
// idiom shape renders without empty sections.
func RenderHTML(e *Entry) string {
	var lines []string

	lines = append(lines, fmt.Sprintf("<b>%s</b>", e.Term))
	if e.Translation != "" {
		lines = append(lines, fmt.Sprintf("<b>Translation:</b> %s", e.Translation))
	}
	if e.DefinitionTarget != "" || e.DefinitionNative != "" {
		def := e.DefinitionTarget
		if e.DefinitionNative != "" {
			def = fmt.Sprintf("%s (%s)", def, e.DefinitionNative)
		}
		lines = append(lines, fmt.Sprintf("<b>Definition:</b> %s", def))
	}
	if e.Pronunciation != "" {
		lines = append(lines, fmt.Sprintf("<b>Pronunciation:</b> %s", e.Pronunciation))
	}
	if e.Grammar != "" {
		lines = append(lines, fmt.Sprintf("<b>Grammar:</b> %s", e.Grammar))
	}
	if len(e.Collocations) > 0 {
		lines = append(lines, fmt.Sprintf("<b>Collocations:</b> %s", strings.Join(e.Collocations, ", ")))
	}
	if len(e.Synonyms) > 0 {
		lines = append(lines, fmt.Sprintf("<b>Synonyms:</b> %s", strings.Join(e.Synonyms, ", ")))
	}
	if e.Etymology != "" {
		lines = append(lines, fmt.Sprintf("<b>Etymology:</b> %s", e.Etymology))
	}
	if len(e.Related) > 0 {
		lines = append(lines, fmt.Sprintf("<b>Related:</b> %s", strings.Join(e.Related, ", ")))
	}
	if pairs := e.ExamplePairs(); len(pairs) > 0 {
		examples := make([]string, 0, len(pairs))
		for _, p := range pairs {
			examples = append(examples, fmt.Sprintf("%s (%s)", p.Target, p.Native))
		}
		lines = append(lines, fmt.Sprintf("<i>%s</i>", strings.Join(examples, "<br>")))
	}

	return strings.Join(lines, "\n")
}
