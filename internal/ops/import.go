package ops

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/mspaans/vocabsync/internal/anki"
	"github.com/mspaans/vocabsync/internal/db"
	"github.com/mspaans/vocabsync/internal/errors"
)

// ImportInput contains parameters for the Import operation.
type ImportInput struct {
	// Deck overrides the configured deck when non-empty.
	Deck string
}

// ImportOutput accounts for every remote note considered.
type ImportOutput struct {
	Found    int      `json:"found"`
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Failed   []string `json:"failed,omitempty"`

	// StatsRefreshed counts entries whose review telemetry was updated.
	StatsRefreshed int `json:"stats_refreshed"`
}

// Import pulls every note of our note type from the remote deck into the
// local store. Each note imports independently: a malformed or empty note
// is skipped and a persistence failure recorded without stopping its
// siblings. Imported entries are marked synced with the remote note id, and
// review telemetry is refreshed for every note that reports card stats.
func Import(ctx context.Context, d Deps, input ImportInput) (*ImportOutput, error) {
	if !d.Gateway.Enabled() {
		return nil, errors.NewInvalidRequest("remote sync is disabled")
	}
	deck := input.Deck
	if deck == "" {
		deck = d.Cfg.DeckName
	}

	noteIDs, err := d.Gateway.ListNoteIDs(ctx, deck)
	if err != nil {
		return nil, fmt.Errorf("list remote notes: %w", err)
	}
	notes, err := d.Gateway.FetchNoteDetails(ctx, noteIDs)
	if err != nil {
		return nil, fmt.Errorf("fetch remote notes: %w", err)
	}

	out := &ImportOutput{Found: len(notes)}
	entryByNote := make(map[int64]int64, len(notes))

	for _, note := range notes {
		e := anki.NoteToEntry(note)
		e.Sanitize()
		if e.Term == "" {
			out.Skipped++
			continue
		}

		id, err := db.SaveEntry(d.DB, e)
		if err != nil {
			log.Warn().Err(err).Str("term", e.Term).Msg("import save failed")
			out.Failed = append(out.Failed, e.Term)
			continue
		}
		if err := db.MarkSyncedByID(d.DB, id, note.ID, deck); err != nil {
			log.Warn().Err(err).Str("term", e.Term).Msg("import sync record failed")
		}
		entryByNote[note.ID] = id
		out.Imported++
	}

	refreshStats(ctx, d, deck, entryByNote, out)

	log.Info().
		Int("found", out.Found).
		Int("imported", out.Imported).
		Int("skipped", out.Skipped).
		Int("failed", len(out.Failed)).
		Msg("import finished")
	return out, nil
}

// refreshStats pulls review telemetry and writes it onto the sync records
// of the entries just imported. Telemetry is best effort; failure here
// never fails the import.
func refreshStats(ctx context.Context, d Deps, deck string, entryByNote map[int64]int64, out *ImportOutput) {
	if len(entryByNote) == 0 {
		return
	}
	stats, err := d.Gateway.FetchCardStats(ctx, deck)
	if err != nil {
		log.Warn().Err(err).Msg("card stats unavailable, skipping telemetry refresh")
		return
	}
	for noteID, entryID := range entryByNote {
		s, ok := stats[noteID]
		if !ok {
			continue
		}
		if err := db.UpdateReviewStats(d.DB, entryID, s); err != nil {
			log.Warn().Err(err).Int64("entry_id", entryID).Msg("telemetry update failed")
			continue
		}
		out.StatsRefreshed++
	}
}
