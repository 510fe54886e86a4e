package ops

import (
	"context"

	"github.com/mspaans/vocabsync/internal/db"
	"github.com/mspaans/vocabsync/internal/entry"
	"github.com/mspaans/vocabsync/internal/errors"
)

// Get retrieves a single entry together with its sync record, if any.
type GetOutput struct {
	Entry *entry.Entry      `json:"entry"`
	Sync  *entry.SyncRecord `json:"sync,omitempty"`
}

func Get(ctx context.Context, d Deps, term string) (*GetOutput, error) {
	if term == "" {
		return nil, errors.NewInvalidRequest("term must not be empty")
	}
	e, err := db.GetEntryByTerm(d.DB, term)
	if err != nil {
		return nil, err
	}
	rec, err := db.GetSyncRecord(d.DB, e.Term)
	if err != nil {
		return nil, err
	}
	return &GetOutput{Entry: e, Sync: rec}, nil
}

// Search returns entries matching a substring across term, translation and
// definitions. An empty query lists everything.
func Search(ctx context.Context, d Deps, query string) ([]*entry.Entry, error) {
	if query == "" {
		return db.ListEntries(d.DB)
	}
	return db.SearchEntries(d.DB, query)
}

// List returns all entries, newest first.
func List(ctx context.Context, d Deps) ([]*entry.Entry, error) {
	return db.ListEntries(d.DB)
}

// Stats summarizes the store against its sync state.
func Stats(ctx context.Context, d Deps) (*db.Stats, error) {
	return db.GetStats(d.DB)
}

// SyncInfo lists every synced entry with its sync record, most recent
// first.
func SyncInfo(ctx context.Context, d Deps) ([]db.SyncInfo, error) {
	return db.ListSyncInfo(d.DB)
}
