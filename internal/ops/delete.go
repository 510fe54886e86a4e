package ops

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/mspaans/vocabsync/internal/db"
	"github.com/mspaans/vocabsync/internal/errors"
)

// DeleteInput contains parameters for the Delete operation.
type DeleteInput struct {
	Term string
}

// DeleteOutput reports both halves of a delete independently. Local
// deletion succeeds or fails on its own; the remote outcome never undoes
// it.
type DeleteOutput struct {
	Deleted       bool `json:"deleted"`
	RemoteDeleted bool `json:"remote_deleted"`
}

// Delete removes an entry locally (cascading its sync record) and, if it
// was previously synced and remote sync is enabled, deletes the remote
// note too. The remote id is captured before the cascade destroys it.
func Delete(ctx context.Context, d Deps, input DeleteInput) (*DeleteOutput, error) {
	if input.Term == "" {
		return nil, errors.NewInvalidRequest("term must not be empty")
	}

	var noteID int64
	if rec, err := db.GetSyncRecord(d.DB, input.Term); err == nil && rec != nil {
		noteID = rec.NoteID
	}

	deleted, err := db.DeleteEntryByTerm(d.DB, input.Term)
	if err != nil {
		return nil, err
	}
	if !deleted {
		return &DeleteOutput{}, nil
	}
	log.Info().Str("term", input.Term).Msg("entry deleted")

	out := &DeleteOutput{Deleted: true}
	if noteID != 0 && d.Gateway.Enabled() {
		out.RemoteDeleted = d.Gateway.DeleteByID(ctx, noteID)
		if !out.RemoteDeleted {
			log.Warn().Str("term", input.Term).Int64("note_id", noteID).Msg("remote delete failed")
		}
	}
	return out, nil
}
