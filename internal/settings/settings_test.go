package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPrefs_Normalized(t *testing.T) {
	tests := []struct {
		name string
		in   Prefs
		want Prefs
	}{
		{"valid kept", Prefs{Model: "gpt-5", Effort: "high"}, Prefs{Model: "gpt-5", Effort: "high"}},
		{"unknown model", Prefs{Model: "gpt-9000", Effort: "low"}, Prefs{Model: DefaultModel, Effort: "low"}},
		{"unknown effort", Prefs{Model: "gpt-4o", Effort: "extreme"}, Prefs{Model: "gpt-4o", Effort: DefaultEffort}},
		{"empty", Prefs{}, Defaults()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.in.Normalized())
		})
	}
}

func TestFileStore_RoundTrip(t *testing.T) {
	store := NewFileStore(t.TempDir())

	// Missing file yields defaults
	p, err := store.Get(1)
	require.NoError(t, err)
	require.Equal(t, Defaults(), p)

	require.NoError(t, store.Set(1, Prefs{Model: "gpt-5-mini", Effort: "medium"}))
	p, err = store.Get(1)
	require.NoError(t, err)
	require.Equal(t, Prefs{Model: "gpt-5-mini", Effort: "medium"}, p)

	// Other users are unaffected
	p, err = store.Get(2)
	require.NoError(t, err)
	require.Equal(t, Defaults(), p)
}

func TestFileStore_NormalizesOnWrite(t *testing.T) {
	store := NewFileStore(t.TempDir())

	require.NoError(t, store.Set(1, Prefs{Model: "made-up", Effort: "extreme"}))
	p, err := store.Get(1)
	require.NoError(t, err)
	require.Equal(t, Defaults(), p)
}

func TestFileStore_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "settings.json"), []byte("{not json"), 0600))

	store := NewFileStore(dir)
	p, err := store.Get(1)
	require.NoError(t, err)
	require.Equal(t, Defaults(), p)

	// A write replaces the corrupt file
	require.NoError(t, store.Set(1, Prefs{Model: "gpt-4o", Effort: "low"}))
	p, err = store.Get(1)
	require.NoError(t, err)
	require.Equal(t, Prefs{Model: "gpt-4o", Effort: "low"}, p)
}

// countingStore wraps an in-memory store and counts backing reads.
type countingStore struct {
	prefs map[int64]Prefs
	gets  int
}

func (s *countingStore) Get(userID int64) (Prefs, error) {
	s.gets++
	p, ok := s.prefs[userID]
	if !ok {
		return Defaults(), nil
	}
	return p, nil
}

func (s *countingStore) Set(userID int64, p Prefs) error {
	s.prefs[userID] = p
	return nil
}

func TestCached_ReadThrough(t *testing.T) {
	backing := &countingStore{prefs: map[int64]Prefs{}}
	cached := NewCached(backing)

	_, err := cached.Get(1)
	require.NoError(t, err)
	_, err = cached.Get(1)
	require.NoError(t, err)
	require.Equal(t, 1, backing.gets, "second read must come from cache")
}

func TestCached_InvalidatedOnWrite(t *testing.T) {
	backing := &countingStore{prefs: map[int64]Prefs{}}
	cached := NewCached(backing)

	_, err := cached.Get(1)
	require.NoError(t, err)

	require.NoError(t, cached.Set(1, Prefs{Model: "gpt-5", Effort: "high"}))

	p, err := cached.Get(1)
	require.NoError(t, err)
	require.Equal(t, Prefs{Model: "gpt-5", Effort: "high"}, p, "stale cache entry must not survive a write")
	require.Equal(t, 2, backing.gets)
}
