package ops

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mspaans/vocabsync/internal/anki"
	"github.com/mspaans/vocabsync/internal/config"
	"github.com/mspaans/vocabsync/internal/db"
	"github.com/mspaans/vocabsync/internal/entry"
	"github.com/mspaans/vocabsync/internal/gen"
	"github.com/mspaans/vocabsync/internal/settings"
)

// fakeGateway is an in-memory Gateway double recording every interaction.
type fakeGateway struct {
	mu      sync.Mutex
	enabled bool

	addErr  error
	nextID  int64
	added   map[string]int64
	deleted []int64

	notes     []anki.Note
	stats     map[int64]entry.ReviewStats
	syncCalls int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		enabled: true,
		nextID:  1000,
		added:   map[string]int64{},
	}
}

func (g *fakeGateway) Enabled() bool { return g.enabled }

func (g *fakeGateway) Add(_ context.Context, e *entry.Entry, _ string) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.addErr != nil {
		return 0, g.addErr
	}
	if id, ok := g.added[e.Term]; ok {
		return id, nil // duplicate resolves to the existing note
	}
	g.nextID++
	g.added[e.Term] = g.nextID
	return g.nextID, nil
}

func (g *fakeGateway) DeleteByID(_ context.Context, noteID int64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.deleted = append(g.deleted, noteID)
	return true
}

func (g *fakeGateway) Sync(_ context.Context) (*anki.SyncResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.syncCalls++
	return &anki.SyncResult{Triggered: true}, nil
}

func (g *fakeGateway) ListNoteIDs(_ context.Context, _ string) ([]int64, error) {
	ids := make([]int64, 0, len(g.notes))
	for _, n := range g.notes {
		ids = append(ids, n.ID)
	}
	return ids, nil
}

func (g *fakeGateway) FetchNoteDetails(_ context.Context, _ []int64) ([]anki.Note, error) {
	return g.notes, nil
}

func (g *fakeGateway) FetchCardStats(_ context.Context, _ string) (map[int64]entry.ReviewStats, error) {
	if g.stats == nil {
		return map[int64]entry.ReviewStats{}, nil
	}
	return g.stats, nil
}

// fakeGen is a canned Generator double.
type fakeGen struct {
	result  *gen.Result
	err     error
	tags    []string
	tagsErr error
}

func (f *fakeGen) Generate(_ context.Context, _ string, _ settings.Prefs) (*gen.Result, error) {
	return f.result, f.err
}

func (f *fakeGen) Tags(_ context.Context, _ *entry.Entry, _ settings.Prefs) ([]string, error) {
	return f.tags, f.tagsErr
}

// testDeps wires a temp database with fakes for both remote boundaries.
func testDeps(t *testing.T) (Deps, *fakeGateway, *fakeGen) {
	t.Helper()
	database, err := db.Init(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	gateway := newFakeGateway()
	generator := &fakeGen{}
	cfg := config.Default(t.TempDir())
	cfg.BatchConcurrency = 2

	return Deps{DB: database, Gateway: gateway, Gen: generator, Cfg: cfg}, gateway, generator
}

func testEntry(term string) *entry.Entry {
	return &entry.Entry{
		Term:        term,
		Translation: "translation of " + term,
		Grammar:     "noun",
	}
}

func genResult(terms ...string) *gen.Result {
	r := &gen.Result{}
	for _, term := range terms {
		r.Entries = append(r.Entries, testEntry(term))
	}
	return r
}
