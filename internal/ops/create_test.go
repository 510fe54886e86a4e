package ops

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mspaans/vocabsync/internal/db"
	"github.com/mspaans/vocabsync/internal/errors"
)

func TestCreate_SavedAndSynced(t *testing.T) {
	deps, gateway, _ := testDeps(t)

	out, err := Create(context.Background(), deps, CreateInput{Entry: testEntry("avontuur")})
	require.NoError(t, err)
	require.True(t, out.Saved)
	require.True(t, out.Synced)
	require.NotZero(t, out.ID)
	require.NotZero(t, out.NoteID)

	rec, err := db.GetSyncRecord(deps.DB, "avontuur")
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.Equal(t, out.NoteID, rec.NoteID)
	require.Equal(t, gateway.added["avontuur"], rec.NoteID)
}

// TestCreate_RemoteFailureKeepsLocalSave is the dual-outcome contract: a
// broken remote never loses the local write.
func TestCreate_RemoteFailureKeepsLocalSave(t *testing.T) {
	deps, gateway, _ := testDeps(t)
	gateway.addErr = fmt.Errorf("connection refused")

	out, err := Create(context.Background(), deps, CreateInput{Entry: testEntry("avontuur")})
	require.NoError(t, err, "remote failure must not fail the operation")
	require.True(t, out.Saved)
	require.False(t, out.Synced)

	// Entry is durable and visible as unsynced
	e, err := db.GetEntryByTerm(deps.DB, "avontuur")
	require.NoError(t, err)
	require.Equal(t, "avontuur", e.Term)

	unsynced, err := db.GetUnsynced(deps.DB)
	require.NoError(t, err)
	require.Len(t, unsynced, 1)
}

func TestCreate_GatewayDisabled(t *testing.T) {
	deps, gateway, _ := testDeps(t)
	gateway.enabled = false

	out, err := Create(context.Background(), deps, CreateInput{Entry: testEntry("avontuur")})
	require.NoError(t, err)
	require.True(t, out.Saved)
	require.False(t, out.Synced)
	require.Empty(t, gateway.added, "no remote call when sync is disabled")
}

func TestCreate_EmptyTerm(t *testing.T) {
	deps, _, _ := testDeps(t)

	_, err := Create(context.Background(), deps, CreateInput{Entry: testEntry("   ")})
	require.True(t, errors.Is(err, errors.ErrInvalidRequest), "error = %v", err)
}

func TestCreate_Background(t *testing.T) {
	deps, _, _ := testDeps(t)

	out, err := Create(context.Background(), deps, CreateInput{
		Entry:      testEntry("avontuur"),
		Background: true,
	})
	require.NoError(t, err)
	require.True(t, out.Saved)
	require.False(t, out.Synced, "background create reports unsynced immediately")

	// The remote half lands asynchronously
	require.Eventually(t, func() bool {
		rec, err := db.GetSyncRecord(deps.DB, "avontuur")
		return err == nil && rec != nil && rec.SyncedAt != nil
	}, 2*time.Second, 10*time.Millisecond)
}

func TestUpdate_SharesCreatePath(t *testing.T) {
	deps, _, _ := testDeps(t)

	first, err := Create(context.Background(), deps, CreateInput{Entry: testEntry("avontuur")})
	require.NoError(t, err)

	updated := testEntry("Avontuur ")
	updated.Translation = "adventure (updated)"
	second, err := Update(context.Background(), deps, UpdateInput{Entry: updated})
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID, "variant spellings address the same row")

	e, err := db.GetEntryByTerm(deps.DB, "avontuur")
	require.NoError(t, err)
	require.Equal(t, "adventure (updated)", e.Translation)
}
