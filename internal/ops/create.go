package ops

import (
	"context"

	"github.com/mspaans/vocabsync/internal/entry"
)

// CreateInput contains parameters for the Create operation.
type CreateInput struct {
	Entry *entry.Entry

	// Background dispatches the remote push after the local save returns,
	// so the caller is not blocked on a slow remote. Synced is then always
	// false; check sync info later for the real outcome.
	Background bool
}

// CreateOutput reports the dual outcome of a write: durably recorded
// locally, and whether the remote push also landed. "Saved but not synced"
// is recoverable by a later export or full sync, not a failure.
type CreateOutput struct {
	ID     int64  `json:"id"`
	Term   string `json:"term"`
	Saved  bool   `json:"saved"`
	Synced bool   `json:"synced"`
	NoteID int64  `json:"note_id,omitempty"`
}

// Create persists an entry and attempts to push it to the flashcard app.
// The save is an upsert keyed on the normalized term, and the remote add
// falls back to an update on duplicates, so Create and Update are one
// code path.
func Create(ctx context.Context, d Deps, input CreateInput) (*CreateOutput, error) {
	noteID, synced, err := saveAndSync(ctx, d, input.Entry, input.Background)
	if err != nil {
		return nil, err
	}

	return &CreateOutput{
		ID:     input.Entry.ID,
		Term:   input.Entry.Term,
		Saved:  true,
		Synced: synced,
		NoteID: noteID,
	}, nil
}

// UpdateInput contains parameters for the Update operation.
type UpdateInput = CreateInput

// Update replaces all fields of an entry atomically. It shares Create's
// code path: local upsert plus remote add-with-duplicate-fallback.
func Update(ctx context.Context, d Deps, input UpdateInput) (*CreateOutput, error) {
	return Create(ctx, d, CreateInput(input))
}
