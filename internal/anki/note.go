package anki

import (
	"encoding/json"
	"strings"

	"github.com/mspaans/vocabsync/internal/entry"
)

// baseTag marks every note this system owns.
const baseTag = "gpt"

// Note is one remote note with its fields unwrapped to plain strings.
type Note struct {
	ID     int64
	Fields map[string]string
}

// EscapeQuery escapes a field value for interpolation into the remote
// query language: literal backslashes and double quotes must be escaped
// or they terminate the quoted value.
func EscapeQuery(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return s
}

// noteFields maps an entry onto the remote note type's field names.
func noteFields(e *entry.Entry) map[string]string {
	return map[string]string{
		"Word":             e.Term,
		"Translation":      e.Translation,
		"Definition":       e.DefinitionTarget,
		"Definition (eng)": e.DefinitionNative,
		"Pronunciation":    e.Pronunciation,
		"Grammar":          e.Grammar,
		"Collocations":     strings.Join(e.Collocations, "\n"),
		"Synonyms":         strings.Join(e.Synonyms, "\n"),
		"Examples":         strings.Join(e.ExamplesTarget, "\n"),
		"Examples (eng)":   strings.Join(e.ExamplesNative, "\n"),
		"Etymology":        e.Etymology,
		"Related":          strings.Join(e.Related, "\n"),
	}
}

// buildNote assembles an addNote payload. allowDuplicate stays false so the
// duplicate response keeps driving the update fallback.
func buildNote(e *entry.Entry, deck, model string) map[string]any {
	tags := make([]string, 0, len(e.Tags)+1)
	tags = append(tags, baseTag)
	tags = append(tags, e.Tags...)

	return map[string]any{
		"deckName":  deck,
		"modelName": model,
		"fields":    noteFields(e),
		"options": map[string]any{
			"allowDuplicate": false,
		},
		"tags": tags,
	}
}

// parseNotes decodes a notesInfo result, unwrapping each field value.
func parseNotes(result json.RawMessage) ([]Note, error) {
	var raw []struct {
		NoteID int64                      `json:"noteId"`
		Fields map[string]json.RawMessage `json:"fields"`
	}
	if err := json.Unmarshal(result, &raw); err != nil {
		return nil, err
	}

	notes := make([]Note, 0, len(raw))
	for _, n := range raw {
		fields := make(map[string]string, len(n.Fields))
		for name, value := range n.Fields {
			fields[name] = unwrapField(value)
		}
		notes = append(notes, Note{ID: n.NoteID, Fields: fields})
	}
	return notes, nil
}

// unwrapField normalizes the two shapes remote field values arrive in:
// a raw string or a {"value": "..."} wrapper. Everything past this point
// only ever sees a plain string.
func unwrapField(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var wrapped struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil {
		return wrapped.Value
	}
	return ""
}

// NoteToEntry converts a remote note into a local entry. Missing or
// malformed fields default to empty values; a partially populated note
// still imports.
func NoteToEntry(n Note) *entry.Entry {
	field := func(name string) string {
		return n.Fields[name]
	}
	e := &entry.Entry{
		Term:             field("Word"),
		Translation:      field("Translation"),
		DefinitionTarget: field("Definition"),
		DefinitionNative: field("Definition (eng)"),
		Pronunciation:    field("Pronunciation"),
		Grammar:          field("Grammar"),
		Collocations:     splitLines(field("Collocations")),
		Synonyms:         splitLines(field("Synonyms")),
		ExamplesTarget:   splitLines(field("Examples")),
		ExamplesNative:   splitLines(field("Examples (eng)")),
		Etymology:        field("Etymology"),
		Related:          splitLines(field("Related")),
	}
	return e
}

// splitLines turns a newline-joined field back into a list, dropping blanks.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	var items []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			items = append(items, line)
		}
	}
	return items
}
