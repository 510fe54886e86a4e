package gen

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseResult(t *testing.T) {
	raw := `{
		"words": [
			{
				"term": "  Lopen ",
				"translation": "to walk",
				"definition": "zich te voet voortbewegen",
				"grammar": "verb, liep, gelopen",
				"examples": ["Hij loopt naar school."],
				"examples_native": ["He walks to school."],
				"level": "a2",
				"score": 7
			},
			{"term": "", "translation": "dropped, no term"}
		],
		"context": "  Common movement verb.  "
	}`

	result := parseResult(raw)
	require.Len(t, result.Entries, 1)

	e := result.Entries[0]
	require.Equal(t, "lopen", e.Term, "term comes back normalized")
	require.Equal(t, "to walk", e.Translation)
	require.Equal(t, "A2", e.Level, "level is uppercased")
	require.Equal(t, 7, e.Score)
	require.Equal(t, "Common movement verb.", result.Context)
}

func TestParseResult_ScoreClamped(t *testing.T) {
	result := parseResult(`{"words": [{"term": "fiets", "score": 99}]}`)
	require.Len(t, result.Entries, 1)
	require.Equal(t, 10, result.Entries[0].Score)

	result = parseResult(`{"words": [{"term": "fiets", "score": -3}]}`)
	require.Equal(t, 0, result.Entries[0].Score, "negative reads back as unset")
}

func TestParseResult_WrappedInProse(t *testing.T) {
	raw := "Here is the result:\n```json\n" +
		`{"words": [{"term": "fiets", "translation": "bicycle"}]}` +
		"\n```\nLet me know if you need more."

	result := parseResult(raw)
	require.Len(t, result.Entries, 1)
	require.Equal(t, "fiets", result.Entries[0].Term)
}

func TestParseResult_Malformed(t *testing.T) {
	for _, raw := range []string{
		"",
		"no json here",
		`{"words": "not a list"}`,
		`{broken`,
	} {
		result := parseResult(raw)
		require.True(t, result.Empty(), "raw = %q should parse to empty", raw)
		require.Empty(t, result.Context)
	}
}

func TestParseResult_InvalidLevelCleared(t *testing.T) {
	result := parseResult(`{"words": [{"term": "fiets", "level": "Z9"}]}`)
	require.Len(t, result.Entries, 1)
	require.Empty(t, result.Entries[0].Level)
}

func TestParseResult_ContextOnlyWithEntries(t *testing.T) {
	result := parseResult(`{"words": [], "context": "orphaned commentary"}`)
	require.True(t, result.Empty())
	require.Empty(t, result.Context, "context without entries is dropped")
}

func TestParseTags(t *testing.T) {
	tags := parseTags(`{"tags": [" Verb ", "MOVEMENT", "", "daily-life"]}`)
	require.Equal(t, []string{"verb", "movement", "daily-life"}, tags)

	require.Nil(t, parseTags("not json"))
	require.Nil(t, parseTags(`{"tags": []}`))
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"bare object", `{"a":1}`, `{"a":1}`, true},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`, true},
		{"prose around", `sure! {"a":1} done`, `{"a":1}`, true},
		{"no object", "nothing here", "", false},
		{"reversed braces", "} {", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractJSON(tt.input)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.want, got)
		})
	}
}
