package ops

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mspaans/vocabsync/internal/db"
	"github.com/mspaans/vocabsync/internal/errors"
	"github.com/mspaans/vocabsync/internal/gen"
)

func TestGenerate(t *testing.T) {
	deps, _, generator := testDeps(t)
	generator.result = genResult("lopen", "rennen")
	generator.result.Context = "Both describe movement."

	out, err := Generate(context.Background(), deps, GenerateInput{Input: "lopen en rennen"})
	require.NoError(t, err)
	require.Len(t, out.Entries, 2)
	require.Equal(t, 2, out.Saved)
	require.Equal(t, 2, out.Synced)
	require.Equal(t, "Both describe movement.", out.Context)

	entries, err := db.ListEntries(deps.DB)
	require.NoError(t, err)
	require.Len(t, entries, 2)
}

func TestGenerate_EmptyInput(t *testing.T) {
	deps, _, _ := testDeps(t)

	_, err := Generate(context.Background(), deps, GenerateInput{Input: ""})
	require.True(t, errors.Is(err, errors.ErrInvalidRequest), "error = %v", err)
}

func TestGenerate_NothingFound(t *testing.T) {
	deps, _, generator := testDeps(t)
	generator.result = &gen.Result{}

	_, err := Generate(context.Background(), deps, GenerateInput{Input: "xyzzy"})
	require.True(t, errors.Is(err, errors.ErrGenerationEmpty), "error = %v", err)

	entries, err := db.ListEntries(deps.DB)
	require.NoError(t, err)
	require.Empty(t, entries, "nothing persisted for an empty result")
}

func TestGenerate_ServiceError(t *testing.T) {
	deps, _, generator := testDeps(t)
	generator.err = fmt.Errorf("model overloaded")

	_, err := Generate(context.Background(), deps, GenerateInput{Input: "lopen"})
	require.ErrorContains(t, err, "model overloaded")
}

func TestGenerate_RemoteFailureStillSaves(t *testing.T) {
	deps, gateway, generator := testDeps(t)
	generator.result = genResult("lopen")
	gateway.addErr = fmt.Errorf("connection refused")

	out, err := Generate(context.Background(), deps, GenerateInput{Input: "lopen"})
	require.NoError(t, err)
	require.Equal(t, 1, out.Saved)
	require.Equal(t, 0, out.Synced)
}
