// Package gen wraps the generative-model service that turns free-text
// input into structured lexical entries.
package gen

import (
	"context"

	"github.com/mspaans/vocabsync/internal/entry"
	"github.com/mspaans/vocabsync/internal/settings"
)

// Result is what one generation call produces: zero or more entries plus
// optional commentary for the user.
type Result struct {
	Entries []*entry.Entry
	Context string
}

// Empty reports whether generation produced nothing usable.
func (r *Result) Empty() bool {
	return r == nil || len(r.Entries) == 0
}

// Generator is the boundary to the generation service. The orchestrator
// depends on this interface; tests substitute a fake.
type Generator interface {
	// Generate maps input (a word, a phrase, or a quoted idiom) to zero or
	// more entries. Malformed model output yields an empty result, not an
	// error: "nothing found" is a user-visible outcome, not a crash.
	Generate(ctx context.Context, input string, prefs settings.Prefs) (*Result, error)

	// Tags produces free-form tags (at least a part of speech) for an
	// existing entry.
	Tags(ctx context.Context, e *entry.Entry, prefs settings.Prefs) ([]string, error)
}
