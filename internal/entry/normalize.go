package entry

import (
	"regexp"
	"strings"
)

// whitespaceRegex matches one or more whitespace characters
var whitespaceRegex = regexp.MustCompile(`\s+`)

// Normalize produces the canonical form of a term used as the
// de-duplication key:
// 1. Trim leading/trailing whitespace
// 2. Lowercase
// 3. Collapse internal whitespace to single spaces
//
// Terms are normalized before persistence, so two inputs that normalize
// to the same string always address the same entry.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	s = whitespaceRegex.ReplaceAllString(s, " ")
	return s
}

// IsQuoted reports whether input is wrapped in matching quotes, which marks
// it as a single idiomatic unit rather than a word or loose phrase.
func IsQuoted(input string) bool {
	s := strings.TrimSpace(input)
	if len(s) < 2 {
		return false
	}
	for _, p := range quotePairs {
		if strings.HasPrefix(s, p[0]) && strings.HasSuffix(s, p[1]) {
			return true
		}
	}
	return false
}

var quotePairs = [][2]string{
	{`"`, `"`},
	{"'", "'"},
	{"“", "”"}, // curly double quotes
	{"‘", "’"}, // curly single quotes
}

// Unquote strips one layer of surrounding quotes recognized by IsQuoted.
func Unquote(input string) string {
	s := strings.TrimSpace(input)
	for _, p := range quotePairs {
		if strings.HasPrefix(s, p[0]) && strings.HasSuffix(s, p[1]) {
			inner := strings.TrimSuffix(strings.TrimPrefix(s, p[0]), p[1])
			return strings.TrimSpace(inner)
		}
	}
	return s
}
