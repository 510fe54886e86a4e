// Package ops coordinates the local repository and the flashcard gateway
// into multi-step entry operations with defined partial-failure outcomes.
// Within every operation the local persistence step runs before the remote
// step, and the local outcome never depends on the remote one: the local
// store is the durable source of truth even when the remote side is flaky
// or disabled.
package ops

import (
	"context"
	"database/sql"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mspaans/vocabsync/internal/anki"
	"github.com/mspaans/vocabsync/internal/config"
	"github.com/mspaans/vocabsync/internal/db"
	"github.com/mspaans/vocabsync/internal/entry"
	"github.com/mspaans/vocabsync/internal/errors"
	"github.com/mspaans/vocabsync/internal/gen"
)

// Gateway is the slice of the flashcard client the orchestrator needs.
// Tests substitute a fake.
type Gateway interface {
	Enabled() bool
	Add(ctx context.Context, e *entry.Entry, deck string) (int64, error)
	DeleteByID(ctx context.Context, noteID int64) bool
	Sync(ctx context.Context) (*anki.SyncResult, error)
	ListNoteIDs(ctx context.Context, deck string) ([]int64, error)
	FetchNoteDetails(ctx context.Context, noteIDs []int64) ([]anki.Note, error)
	FetchCardStats(ctx context.Context, deck string) (map[int64]entry.ReviewStats, error)
}

// Deps bundles the collaborators every operation works against.
type Deps struct {
	DB      *sql.DB
	Gateway Gateway
	Gen     gen.Generator
	Cfg     *config.Config
}

// saveAndSync is the shared write path: persist locally (always, durable),
// then attempt the remote push. Only the local half can fail the call.
//
// When background is set, the remote half is dispatched on its own
// goroutine after the save returns; its outcome is then observable only
// through later sync-info queries.
func saveAndSync(ctx context.Context, d Deps, e *entry.Entry, background bool) (noteID int64, synced bool, err error) {
	e.Sanitize()
	if e.Term == "" {
		return 0, false, errors.NewInvalidRequest("term must not be empty")
	}

	if _, err := db.SaveEntry(d.DB, e); err != nil {
		return 0, false, err
	}
	log.Info().Str("term", e.Term).Int64("id", e.ID).Msg("entry saved")

	if !d.Gateway.Enabled() {
		return 0, false, nil
	}

	if background {
		detached := *e // the caller may mutate its entry after we return
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(),
				time.Duration(d.Cfg.RemoteTimeoutSeconds)*time.Second)
			defer cancel()
			pushRemote(ctx, d, &detached)
		}()
		return 0, false, nil
	}

	noteID, synced = pushRemote(ctx, d, e)
	return noteID, synced, nil
}

// pushRemote attempts the remote half of a write and records the sync on
// success. Failure degrades to "not synced"; a later export or full sync
// picks it up.
func pushRemote(ctx context.Context, d Deps, e *entry.Entry) (int64, bool) {
	noteID, err := d.Gateway.Add(ctx, e, d.Cfg.DeckName)
	if err != nil || noteID == 0 {
		log.Warn().Err(err).Str("term", e.Term).Msg("remote sync failed, entry stays unsynced")
		return 0, false
	}

	if err := db.MarkSynced(d.DB, e.Term, noteID, d.Cfg.DeckName); err != nil {
		log.Error().Err(err).Str("term", e.Term).Msg("failed to record sync")
	}
	return noteID, true
}
