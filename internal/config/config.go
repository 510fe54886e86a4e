package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds application configuration, read from the environment.
type Config struct {
	// BaseDir is where the database and settings file live.
	// Defaults to ~/.vocabsync.
	BaseDir string `env:"VOCABSYNC_DIR"`

	// AnkiConnectURL is the AnkiConnect endpoint.
	AnkiConnectURL string `env:"ANKI_CONNECT_URL" env-default:"http://localhost:8765"`

	// EnableAnkiSync toggles all remote synchronization. When false, every
	// write stays local and sync operations report "skipped".
	EnableAnkiSync bool `env:"ENABLE_ANKI_SYNC" env-default:"true"`

	// DeckName is the remote collection notes are pushed to.
	DeckName string `env:"DECK_NAME" env-default:"Default"`

	// NoteModel is the note type used for our notes. Import only considers
	// notes of this model.
	NoteModel string `env:"NOTE_MODEL" env-default:"GPT"`

	// OpenAIAPIKey authenticates the generation service.
	OpenAIAPIKey string `env:"OPENAI_API_KEY"`

	// OpenAIBaseURL overrides the generation endpoint, for proxies and
	// compatible self-hosted servers. Empty means the service default.
	OpenAIBaseURL string `env:"OPENAI_BASE_URL"`

	// RemoteTimeoutSeconds bounds each remote call (AnkiConnect and the
	// generation service alike).
	RemoteTimeoutSeconds int `env:"REMOTE_TIMEOUT_SECONDS" env-default:"10"`

	// BatchConcurrency is the worker-pool width for batch operations.
	BatchConcurrency int `env:"BATCH_CONCURRENCY" env-default:"10"`

	LogLevel string `env:"LOG_LEVEL" env-default:"info"`
}

// Load reads configuration from the environment and fills in the base
// directory default.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("read config from env: %w", err)
	}

	if cfg.BaseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		cfg.BaseDir = filepath.Join(home, ".vocabsync")
	}

	if cfg.RemoteTimeoutSeconds <= 0 {
		cfg.RemoteTimeoutSeconds = 10
	}
	if cfg.BatchConcurrency <= 0 {
		cfg.BatchConcurrency = 10
	}

	return cfg, nil
}

// Default returns a configuration suitable for tests: remote sync disabled
// and everything rooted in baseDir.
func Default(baseDir string) *Config {
	return &Config{
		BaseDir:              baseDir,
		AnkiConnectURL:       "http://localhost:8765",
		EnableAnkiSync:       false,
		DeckName:             "Default",
		NoteModel:            "GPT",
		RemoteTimeoutSeconds: 10,
		BatchConcurrency:     10,
		LogLevel:             "info",
	}
}
