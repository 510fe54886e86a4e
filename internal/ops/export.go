package ops

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/mspaans/vocabsync/internal/batch"
	"github.com/mspaans/vocabsync/internal/db"
	"github.com/mspaans/vocabsync/internal/entry"
	"github.com/mspaans/vocabsync/internal/errors"
)

// ExportInput contains parameters for the Export operation.
type ExportInput struct {
	// UnsyncedOnly restricts the export to entries with no successful sync.
	UnsyncedOnly bool

	// Width bounds the number of concurrent pushes; 0 means the configured
	// batch concurrency.
	Width int

	Progress batch.Progress
}

// ExportOutput summarizes a bulk push.
type ExportOutput struct {
	RunID  string   `json:"run_id"`
	Total  int      `json:"total"`
	Synced int      `json:"synced"`
	Failed []string `json:"failed,omitempty"`
}

// Export pushes local entries to the flashcard app in a bounded-width
// batch. Each entry pushes independently; one failure is recorded and its
// siblings keep going. Duplicates on the remote side resolve to in-place
// updates, so exporting is idempotent.
func Export(ctx context.Context, d Deps, input ExportInput) (*ExportOutput, error) {
	if !d.Gateway.Enabled() {
		return nil, errors.NewInvalidRequest("remote sync is disabled")
	}

	var (
		entries []*entry.Entry
		err     error
	)
	if input.UnsyncedOnly {
		entries, err = db.GetUnsynced(d.DB)
	} else {
		entries, err = db.ListEntries(d.DB)
	}
	if err != nil {
		return nil, err
	}

	width := input.Width
	if width == 0 {
		width = d.Cfg.BatchConcurrency
	}

	result := batch.Run(ctx, entries, width, func(ctx context.Context, e *entry.Entry) error {
		noteID, synced := pushRemote(ctx, d, e)
		if !synced {
			return fmt.Errorf("push %q failed", e.Term)
		}
		log.Debug().Str("term", e.Term).Int64("note_id", noteID).Msg("exported")
		return nil
	}, input.Progress)

	out := &ExportOutput{
		RunID:  result.RunID,
		Total:  result.Total,
		Synced: len(result.Succeeded),
	}
	for _, f := range result.Failed {
		out.Failed = append(out.Failed, f.Item.Term)
	}

	log.Info().
		Str("run_id", out.RunID).
		Int("total", out.Total).
		Int("synced", out.Synced).
		Int("failed", len(out.Failed)).
		Msg("export finished")
	return out, nil
}
