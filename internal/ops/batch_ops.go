package ops

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/mspaans/vocabsync/internal/batch"
	"github.com/mspaans/vocabsync/internal/db"
	"github.com/mspaans/vocabsync/internal/entry"
	"github.com/mspaans/vocabsync/internal/settings"
)

// BatchInput contains parameters shared by the bulk enrichment operations.
type BatchInput struct {
	Prefs settings.Prefs

	// Force reprocesses entries that already carry the enrichment.
	Force bool

	// Width bounds the number of concurrent model calls; 0 means the
	// configured batch concurrency.
	Width int

	Progress batch.Progress
}

// BatchOutput summarizes one bulk enrichment run.
type BatchOutput struct {
	RunID     string   `json:"run_id"`
	Total     int      `json:"total"`
	Processed int      `json:"processed"`
	SkippedUp int      `json:"skipped_up_to_date"`
	Failed    []string `json:"failed,omitempty"`
}

// RegenerateAll re-runs generation for the whole store. Entries that
// already carry a proficiency level are considered up to date and skipped
// unless Force is set. Each entry regenerates independently.
func RegenerateAll(ctx context.Context, d Deps, input BatchInput) (*BatchOutput, error) {
	return runEnrichment(ctx, d, input,
		func(e *entry.Entry) bool { return e.Level != "" },
		func(ctx context.Context, e *entry.Entry) error {
			_, err := Regenerate(ctx, d, RegenerateInput{Term: e.Term, Prefs: input.Prefs})
			return err
		})
}

// GenerateTags produces tags for every entry missing them (or all entries
// with Force) and saves each enriched entry through the usual write path,
// so tag changes propagate to the remote note too.
func GenerateTags(ctx context.Context, d Deps, input BatchInput) (*BatchOutput, error) {
	return runEnrichment(ctx, d, input,
		func(e *entry.Entry) bool { return len(e.Tags) > 0 },
		func(ctx context.Context, e *entry.Entry) error {
			tags, err := d.Gen.Tags(ctx, e, input.Prefs)
			if err != nil {
				return fmt.Errorf("tags for %q: %w", e.Term, err)
			}
			if len(tags) == 0 {
				return fmt.Errorf("no tags produced for %q", e.Term)
			}
			e.Tags = tags
			_, err = Update(ctx, d, UpdateInput{Entry: e})
			return err
		})
}

// runEnrichment is the shared scaffold: select the pending subset, run the
// per-entry step with bounded parallelism, account for everything.
func runEnrichment(ctx context.Context, d Deps, input BatchInput, upToDate func(*entry.Entry) bool, step func(context.Context, *entry.Entry) error) (*BatchOutput, error) {
	entries, err := db.ListEntries(d.DB)
	if err != nil {
		return nil, err
	}

	out := &BatchOutput{Total: len(entries)}

	pending := entries[:0:0]
	for _, e := range entries {
		if !input.Force && upToDate(e) {
			out.SkippedUp++
			continue
		}
		pending = append(pending, e)
	}

	width := input.Width
	if width == 0 {
		width = d.Cfg.BatchConcurrency
	}

	result := batch.Run(ctx, pending, width, step, input.Progress)
	out.RunID = result.RunID
	out.Processed = len(result.Succeeded)
	for _, f := range result.Failed {
		log.Warn().Err(f.Err).Str("term", f.Item.Term).Msg("enrichment failed")
		out.Failed = append(out.Failed, f.Item.Term)
	}

	log.Info().
		Str("run_id", out.RunID).
		Int("total", out.Total).
		Int("processed", out.Processed).
		Int("skipped", out.SkippedUp).
		Int("failed", len(out.Failed)).
		Msg("batch enrichment finished")
	return out, nil
}
