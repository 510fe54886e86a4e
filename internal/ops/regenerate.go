package ops

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/mspaans/vocabsync/internal/db"
	"github.com/mspaans/vocabsync/internal/entry"
	"github.com/mspaans/vocabsync/internal/errors"
	"github.com/mspaans/vocabsync/internal/settings"
)

// RegenerateInput contains parameters for the Regenerate operation.
type RegenerateInput struct {
	Term  string
	Prefs settings.Prefs
}

// RegenerateOutput reports the merge outcome of a regeneration.
type RegenerateOutput struct {
	OldTerm string `json:"old_term"`
	NewTerm string `json:"new_term"`
	Renamed bool   `json:"renamed"`
	Synced  bool   `json:"synced"`
}

// Regenerate re-invokes the generation client for an existing entry. If
// the model settles on a different canonical term than the one stored, the
// old entry is deleted and the new one created, so a stale key never
// lingers as a duplicate; the new entry starts with a fresh sync record.
// If the canonical term is unchanged, the entry is updated in place.
func Regenerate(ctx context.Context, d Deps, input RegenerateInput) (*RegenerateOutput, error) {
	existing, err := db.GetEntryByTerm(d.DB, input.Term)
	if err != nil {
		return nil, err
	}

	result, err := d.Gen.Generate(ctx, existing.Term, input.Prefs)
	if err != nil {
		return nil, fmt.Errorf("regenerate %q: %w", existing.Term, err)
	}
	if result.Empty() {
		return nil, errors.NewGenerationEmpty(existing.Term)
	}

	fresh := pickEntry(result.Entries, existing.Term)
	fresh.Sanitize()

	// Regeneration replaces the generated fields; labels the model does
	// not produce carry over.
	if len(fresh.Tags) == 0 {
		fresh.Tags = existing.Tags
	}
	if fresh.Score == 0 {
		fresh.Score = existing.Score
	}

	out := &RegenerateOutput{OldTerm: existing.Term, NewTerm: fresh.Term}

	if fresh.Term != existing.Term {
		out.Renamed = true
		deleted, err := Delete(ctx, d, DeleteInput{Term: existing.Term})
		if err != nil {
			return nil, err
		}
		log.Info().
			Str("old", existing.Term).
			Str("new", fresh.Term).
			Bool("remote_deleted", deleted.RemoteDeleted).
			Msg("canonical term changed, replacing entry")
	}

	created, err := Create(ctx, d, CreateInput{Entry: fresh})
	if err != nil {
		return nil, err
	}
	out.Synced = created.Synced
	return out, nil
}

// pickEntry chooses the regenerated entry matching the stored term when
// the model returned several, else the first one.
func pickEntry(entries []*entry.Entry, term string) *entry.Entry {
	for _, e := range entries {
		if entry.Normalize(e.Term) == term {
			return e
		}
	}
	return entries[0]
}
