package gen

import (
	"encoding/json"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/mspaans/vocabsync/internal/entry"
)

// wireEntry is the JSON shape the prompts ask the model for.
type wireEntry struct {
	Term             string   `json:"term"`
	Translation      string   `json:"translation"`
	Definition       string   `json:"definition"`
	DefinitionNative string   `json:"definition_native"`
	Pronunciation    string   `json:"pronunciation"`
	Grammar          string   `json:"grammar"`
	Collocations     []string `json:"collocations"`
	Synonyms         []string `json:"synonyms"`
	Examples         []string `json:"examples"`
	ExamplesNative   []string `json:"examples_native"`
	Etymology        string   `json:"etymology"`
	Related          []string `json:"related"`
	Level            string   `json:"level"`
	Score            int      `json:"score"`
}

type wireResult struct {
	Words   []wireEntry `json:"words"`
	Context string      `json:"context"`
}

// parseResult validates raw model output against the entry shape.
// Malformed or empty output yields an empty result with no context; a
// formatting mistake by the model must never crash a lookup.
func parseResult(raw string) *Result {
	jsonStr, ok := extractJSON(raw)
	if !ok {
		log.Warn().Msg("model output contained no JSON object")
		return &Result{}
	}

	var wire wireResult
	if err := json.Unmarshal([]byte(jsonStr), &wire); err != nil {
		log.Warn().Err(err).Msg("model output failed to parse")
		return &Result{}
	}

	result := &Result{}
	for _, w := range wire.Words {
		term := entry.Normalize(w.Term)
		if term == "" {
			continue
		}
		e := &entry.Entry{
			Term:             term,
			Translation:      w.Translation,
			DefinitionTarget: w.Definition,
			DefinitionNative: w.DefinitionNative,
			Pronunciation:    w.Pronunciation,
			Grammar:          w.Grammar,
			Collocations:     w.Collocations,
			Synonyms:         w.Synonyms,
			ExamplesTarget:   w.Examples,
			ExamplesNative:   w.ExamplesNative,
			Etymology:        w.Etymology,
			Related:          w.Related,
			Level:            strings.ToUpper(strings.TrimSpace(w.Level)),
			Score:            entry.ClampScore(w.Score),
		}
		if !entry.ValidLevel(e.Level) {
			e.Level = ""
		}
		result.Entries = append(result.Entries, e)
	}

	if len(result.Entries) > 0 {
		result.Context = strings.TrimSpace(wire.Context)
	}
	return result
}

// parseTags validates raw model output for the tags call.
func parseTags(raw string) []string {
	jsonStr, ok := extractJSON(raw)
	if !ok {
		return nil
	}

	var wire struct {
		Tags []string `json:"tags"`
	}
	if err := json.Unmarshal([]byte(jsonStr), &wire); err != nil {
		return nil
	}

	var tags []string
	for _, t := range wire.Tags {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// extractJSON finds the first complete JSON object in a string. Models
// occasionally wrap the object in prose or code fences despite the
// response-format contract.
func extractJSON(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}
