package ops

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mspaans/vocabsync/internal/db"
	"github.com/mspaans/vocabsync/internal/errors"
)

// seedLocal saves entries without touching the gateway.
func seedLocal(t *testing.T, deps Deps, terms ...string) {
	t.Helper()
	for _, term := range terms {
		e := testEntry(term)
		e.Sanitize()
		_, err := db.SaveEntry(deps.DB, e)
		require.NoError(t, err)
	}
}

func TestExport(t *testing.T) {
	deps, gateway, _ := testDeps(t)
	seedLocal(t, deps, "een", "twee", "drie")

	out, err := Export(context.Background(), deps, ExportInput{})
	require.NoError(t, err)
	require.Equal(t, 3, out.Total)
	require.Equal(t, 3, out.Synced)
	require.Empty(t, out.Failed)
	require.NotEmpty(t, out.RunID)
	require.Len(t, gateway.added, 3)

	stats, err := db.GetStats(deps.DB)
	require.NoError(t, err)
	require.Equal(t, 3, stats.Synced)
}

func TestExport_UnsyncedOnly(t *testing.T) {
	deps, gateway, _ := testDeps(t)
	seedLocal(t, deps, "een", "twee")

	_, err := Create(context.Background(), deps, CreateInput{Entry: testEntry("drie")})
	require.NoError(t, err)
	require.Len(t, gateway.added, 1)

	out, err := Export(context.Background(), deps, ExportInput{UnsyncedOnly: true})
	require.NoError(t, err)
	require.Equal(t, 2, out.Total, "already-synced entry stays out of the batch")
	require.Equal(t, 2, out.Synced)
}

func TestExport_PartialFailure(t *testing.T) {
	deps, gateway, _ := testDeps(t)
	seedLocal(t, deps, "een", "twee")
	gateway.addErr = fmt.Errorf("connection refused")

	out, err := Export(context.Background(), deps, ExportInput{})
	require.NoError(t, err, "per-item failures do not fail the batch")
	require.Equal(t, 2, out.Total)
	require.Zero(t, out.Synced)
	require.Len(t, out.Failed, 2)

	stats, err := db.GetStats(deps.DB)
	require.NoError(t, err)
	require.Zero(t, stats.Synced, "failed pushes leave entries unsynced for retry")
}

func TestExport_Disabled(t *testing.T) {
	deps, gateway, _ := testDeps(t)
	gateway.enabled = false

	_, err := Export(context.Background(), deps, ExportInput{})
	require.True(t, errors.Is(err, errors.ErrInvalidRequest), "error = %v", err)
}

func TestFullSync(t *testing.T) {
	deps, gateway, _ := testDeps(t)
	seedLocal(t, deps, "een", "twee")

	out, err := FullSync(context.Background(), deps, FullSyncInput{Cloud: true})
	require.NoError(t, err)
	require.Equal(t, 2, out.Total)
	require.Equal(t, 2, out.Synced)
	require.NotNil(t, out.Cloud)
	require.True(t, out.Cloud.Triggered)
	require.Equal(t, 1, gateway.syncCalls)
}

func TestFullSync_NoCloud(t *testing.T) {
	deps, gateway, _ := testDeps(t)
	seedLocal(t, deps, "een")

	out, err := FullSync(context.Background(), deps, FullSyncInput{})
	require.NoError(t, err)
	require.Equal(t, 1, out.Synced)
	require.Nil(t, out.Cloud)
	require.Zero(t, gateway.syncCalls)
}
