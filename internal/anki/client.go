// Package anki is a resilient client for the AnkiConnect control API.
// Every operation converts transport failures into typed outcomes; nothing
// here is fatal to a caller that only needs "synced or not".
package anki

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mspaans/vocabsync/internal/config"
	"github.com/mspaans/vocabsync/internal/entry"
	"github.com/mspaans/vocabsync/internal/errors"
)

// apiVersion is the AnkiConnect protocol version.
const apiVersion = 6

// duplicateErrMsg is the substring AnkiConnect reports for duplicate notes.
// Recognized and handled via the update fallback, never surfaced as failure.
const duplicateErrMsg = "cannot create note because it is a duplicate"

// Client talks to one AnkiConnect endpoint.
type Client struct {
	url     string
	model   string
	enabled bool
	hc      *http.Client

	// syncInFlight is the single-flight guard for collection-level sync.
	syncInFlight atomic.Bool
}

// New creates a client from configuration.
func New(cfg *config.Config) *Client {
	return &Client{
		url:     cfg.AnkiConnectURL,
		model:   cfg.NoteModel,
		enabled: cfg.EnableAnkiSync,
		hc: &http.Client{
			Timeout: time.Duration(cfg.RemoteTimeoutSeconds) * time.Second,
		},
	}
}

// Enabled reports whether remote synchronization is administratively on.
func (c *Client) Enabled() bool {
	return c.enabled
}

// remoteError is an error reported by AnkiConnect itself (as opposed to a
// transport failure reaching it).
type remoteError struct {
	action string
	msg    string
}

func (e *remoteError) Error() string {
	return fmt.Sprintf("%s: %s", e.action, e.msg)
}

func isDuplicateError(err error) bool {
	re, ok := err.(*remoteError)
	return ok && strings.Contains(re.msg, duplicateErrMsg)
}

// invoke performs one AnkiConnect action. Transport failures come back as
// ErrTransport; remote-reported errors as *remoteError.
func (c *Client) invoke(ctx context.Context, action string, params any) (json.RawMessage, error) {
	payload := map[string]any{
		"action":  action,
		"version": apiVersion,
	}
	if params != nil {
		payload["params"] = params
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, errors.NewTransport(action, err)
	}
	defer resp.Body.Close()

	var envelope struct {
		Result json.RawMessage `json:"result"`
		Error  *string         `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, errors.NewTransport(action, err)
	}

	if envelope.Error != nil {
		return nil, &remoteError{action: action, msg: *envelope.Error}
	}

	return envelope.Result, nil
}

// FindByTerm looks up the remote note id holding a term. Failure to reach
// the service yields 0 ("not found") because callers only need existence.
func (c *Client) FindByTerm(ctx context.Context, term, deck string) int64 {
	query := fmt.Sprintf(`deck:"%s" Word:"%s"`, EscapeQuery(deck), EscapeQuery(term))
	result, err := c.invoke(ctx, "findNotes", map[string]any{"query": query})
	if err != nil {
		log.Debug().Err(err).Str("term", term).Msg("findNotes failed, treating as not found")
		return 0
	}

	var ids []int64
	if err := json.Unmarshal(result, &ids); err != nil || len(ids) == 0 {
		return 0
	}
	return ids[0]
}

// Add pushes an entry as a new note and returns its note id. A duplicate
// response falls back to find + update so the net effect is an upsert:
// the returned id is then the pre-existing note's id.
//
// Batch callers must call Add per entry; the bulk addNotes action aborts
// the whole batch on the first duplicate.
func (c *Client) Add(ctx context.Context, e *entry.Entry, deck string) (int64, error) {
	result, err := c.invoke(ctx, "addNote", map[string]any{
		"note": buildNote(e, deck, c.model),
	})
	if err == nil {
		var id int64
		if jsonErr := json.Unmarshal(result, &id); jsonErr != nil {
			return 0, errors.NewInternal(jsonErr)
		}
		log.Info().Str("term", e.Term).Int64("note_id", id).Msg("note added")
		return id, nil
	}

	if isDuplicateError(err) {
		existing := c.FindByTerm(ctx, e.Term, deck)
		if existing != 0 && c.UpdateByID(ctx, existing, e) {
			log.Info().Str("term", e.Term).Int64("note_id", existing).Msg("duplicate note updated in place")
			return existing, nil
		}
		return 0, errors.NewRemoteConflict(e.Term)
	}

	if errors.Is(err, errors.ErrTransport) {
		return 0, err
	}
	return 0, errors.NewTransport("addNote", err)
}

// UpdateByID overwrites the fields of an existing note.
func (c *Client) UpdateByID(ctx context.Context, noteID int64, e *entry.Entry) bool {
	_, err := c.invoke(ctx, "updateNoteFields", map[string]any{
		"note": map[string]any{
			"id":     noteID,
			"fields": noteFields(e),
		},
	})
	if err != nil {
		log.Warn().Err(err).Int64("note_id", noteID).Msg("updateNoteFields failed")
		return false
	}
	return true
}

// DeleteByID removes a note. A zero id is a no-op returning false; no
// delete is ever sent for nothing.
func (c *Client) DeleteByID(ctx context.Context, noteID int64) bool {
	if noteID == 0 {
		return false
	}
	_, err := c.invoke(ctx, "deleteNotes", map[string]any{
		"notes": []int64{noteID},
	})
	if err != nil {
		log.Warn().Err(err).Int64("note_id", noteID).Msg("deleteNotes failed")
		return false
	}
	return true
}

// SyncResult reports the outcome of a collection-level cloud sync.
type SyncResult struct {
	Triggered bool `json:"triggered"`
	Skipped   bool `json:"skipped"`
}

// Sync triggers the remote app's own cloud sync. Returns a skipped result
// when synchronization is administratively disabled, and rejects a
// concurrent invocation rather than queueing it.
func (c *Client) Sync(ctx context.Context) (*SyncResult, error) {
	if !c.enabled {
		return &SyncResult{Skipped: true}, nil
	}

	if !c.syncInFlight.CompareAndSwap(false, true) {
		return nil, errors.NewSyncInProgress()
	}
	defer c.syncInFlight.Store(false)

	if _, err := c.invoke(ctx, "sync", nil); err != nil {
		if errors.Is(err, errors.ErrTransport) {
			return nil, err
		}
		return nil, errors.NewTransport("sync", err)
	}

	log.Info().Msg("cloud sync triggered")
	return &SyncResult{Triggered: true}, nil
}

// ListNoteIDs returns the ids of all notes of our note type in a deck.
func (c *Client) ListNoteIDs(ctx context.Context, deck string) ([]int64, error) {
	query := fmt.Sprintf(`deck:"%s" note:"%s"`, EscapeQuery(deck), EscapeQuery(c.model))
	result, err := c.invoke(ctx, "findNotes", map[string]any{"query": query})
	if err != nil {
		if errors.Is(err, errors.ErrTransport) {
			return nil, err
		}
		return nil, errors.NewTransport("findNotes", err)
	}

	var ids []int64
	if err := json.Unmarshal(result, &ids); err != nil {
		return nil, errors.NewInternal(err)
	}
	return ids, nil
}

// FetchNoteDetails retrieves raw note fields for a set of note ids.
func (c *Client) FetchNoteDetails(ctx context.Context, noteIDs []int64) ([]Note, error) {
	if len(noteIDs) == 0 {
		return nil, nil
	}
	result, err := c.invoke(ctx, "notesInfo", map[string]any{"notes": noteIDs})
	if err != nil {
		if errors.Is(err, errors.ErrTransport) {
			return nil, err
		}
		return nil, errors.NewTransport("notesInfo", err)
	}
	return parseNotes(result)
}

// FetchCardStats pulls review telemetry for every card of our note type in
// a deck, keyed by note id. When a note has several cards the first one
// reported wins.
func (c *Client) FetchCardStats(ctx context.Context, deck string) (map[int64]entry.ReviewStats, error) {
	query := fmt.Sprintf(`deck:"%s" note:"%s"`, EscapeQuery(deck), EscapeQuery(c.model))
	result, err := c.invoke(ctx, "findCards", map[string]any{"query": query})
	if err != nil {
		if errors.Is(err, errors.ErrTransport) {
			return nil, err
		}
		return nil, errors.NewTransport("findCards", err)
	}

	var cardIDs []int64
	if err := json.Unmarshal(result, &cardIDs); err != nil {
		return nil, errors.NewInternal(err)
	}
	if len(cardIDs) == 0 {
		return map[int64]entry.ReviewStats{}, nil
	}

	result, err = c.invoke(ctx, "cardsInfo", map[string]any{"cards": cardIDs})
	if err != nil {
		if errors.Is(err, errors.ErrTransport) {
			return nil, err
		}
		return nil, errors.NewTransport("cardsInfo", err)
	}

	var cards []struct {
		Note     int64 `json:"note"`
		Reps     int64 `json:"reps"`
		Lapses   int64 `json:"lapses"`
		Factor   int64 `json:"factor"`
		Interval int64 `json:"interval"`
		Due      int64 `json:"due"`
	}
	if err := json.Unmarshal(result, &cards); err != nil {
		return nil, errors.NewInternal(err)
	}

	stats := make(map[int64]entry.ReviewStats, len(cards))
	for _, card := range cards {
		if _, seen := stats[card.Note]; seen {
			continue
		}
		stats[card.Note] = entry.ReviewStats{
			Reviews:    card.Reps,
			Lapses:     card.Lapses,
			EaseFactor: card.Factor,
			Interval:   card.Interval,
			Due:        card.Due,
		}
	}
	return stats, nil
}
