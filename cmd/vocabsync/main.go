package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mspaans/vocabsync/internal/anki"
	"github.com/mspaans/vocabsync/internal/config"
	"github.com/mspaans/vocabsync/internal/db"
	"github.com/mspaans/vocabsync/internal/gen"
	"github.com/mspaans/vocabsync/internal/ops"
	"github.com/mspaans/vocabsync/internal/settings"
)

// Version is set via -ldflags at build time.
var Version = "dev"

func main() {
	// A missing .env is fine; the environment alone is a full configuration.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load config: %v\n", err)
		os.Exit(1)
	}

	setupLogging(cfg.LogLevel)

	database, err := db.Init(cfg.BaseDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to initialize database: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	deps := ops.Deps{
		DB:      database,
		Gateway: anki.New(cfg),
		Gen:     gen.NewClient(cfg),
		Cfg:     cfg,
	}
	prefs := settings.NewCached(settings.NewFileStore(cfg.BaseDir))

	app := newCLIApp(deps, prefs)
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// setupLogging configures the global logger: human-readable output on
// stderr, leveled per configuration.
func setupLogging(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl)
}
