package ops

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/mspaans/vocabsync/internal/anki"
	"github.com/mspaans/vocabsync/internal/batch"
	"github.com/mspaans/vocabsync/internal/errors"
)

// FullSyncInput contains parameters for the FullSync operation.
type FullSyncInput struct {
	// Cloud also triggers the remote app's own collection sync after the
	// push phase.
	Cloud bool

	Progress batch.Progress
}

// FullSyncOutput reports the push phase and, when requested, the cloud
// phase.
type FullSyncOutput struct {
	Total  int      `json:"total"`
	Synced int      `json:"synced"`
	Failed []string `json:"failed,omitempty"`

	Cloud *anki.SyncResult `json:"cloud,omitempty"`
}

// FullSync pushes every unsynced entry to the flashcard app and optionally
// triggers its cloud sync afterwards. A concurrent cloud sync attempt is
// rejected, not queued; the push phase itself has no such guard because
// per-entry pushes are idempotent.
func FullSync(ctx context.Context, d Deps, input FullSyncInput) (*FullSyncOutput, error) {
	if !d.Gateway.Enabled() {
		return nil, errors.NewInvalidRequest("remote sync is disabled")
	}

	pushed, err := Export(ctx, d, ExportInput{UnsyncedOnly: true, Progress: input.Progress})
	if err != nil {
		return nil, err
	}

	out := &FullSyncOutput{
		Total:  pushed.Total,
		Synced: pushed.Synced,
		Failed: pushed.Failed,
	}

	if input.Cloud {
		cloud, err := d.Gateway.Sync(ctx)
		if err != nil {
			// The push phase already landed; surface the cloud failure
			// without undoing it.
			log.Warn().Err(err).Msg("cloud sync failed after push phase")
			return out, err
		}
		out.Cloud = cloud
	}
	return out, nil
}
