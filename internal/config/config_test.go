package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("VOCABSYNC_DIR", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8765", cfg.AnkiConnectURL)
	require.True(t, cfg.EnableAnkiSync)
	require.Equal(t, "Default", cfg.DeckName)
	require.Equal(t, "GPT", cfg.NoteModel)
	require.Equal(t, 10, cfg.RemoteTimeoutSeconds)
	require.Equal(t, 10, cfg.BatchConcurrency)
	require.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("VOCABSYNC_DIR", t.TempDir())
	t.Setenv("ANKI_CONNECT_URL", "http://anki.local:8765")
	t.Setenv("ENABLE_ANKI_SYNC", "false")
	t.Setenv("DECK_NAME", "Dutch")
	t.Setenv("REMOTE_TIMEOUT_SECONDS", "30")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "http://anki.local:8765", cfg.AnkiConnectURL)
	require.False(t, cfg.EnableAnkiSync)
	require.Equal(t, "Dutch", cfg.DeckName)
	require.Equal(t, 30, cfg.RemoteTimeoutSeconds)
}

func TestLoad_ClampsNonsenseValues(t *testing.T) {
	t.Setenv("VOCABSYNC_DIR", t.TempDir())
	t.Setenv("REMOTE_TIMEOUT_SECONDS", "-1")
	t.Setenv("BATCH_CONCURRENCY", "0")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 10, cfg.RemoteTimeoutSeconds)
	require.Equal(t, 10, cfg.BatchConcurrency)
}

func TestDefault(t *testing.T) {
	cfg := Default("/tmp/base")
	require.Equal(t, "/tmp/base", cfg.BaseDir)
	require.False(t, cfg.EnableAnkiSync, "tests run with remote sync off")
}
