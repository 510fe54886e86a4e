package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/mspaans/vocabsync/internal/entry"
	"github.com/mspaans/vocabsync/internal/errors"
	"github.com/mspaans/vocabsync/internal/ops"
	"github.com/mspaans/vocabsync/internal/settings"
)

// cliUserID identifies the local CLI user in the settings store.
const cliUserID = 0

// newCLIApp creates the CLI application with all commands.
func newCLIApp(deps ops.Deps, prefs settings.Store) *cli.App {
	app := &cli.App{
		Name:    "vocabsync",
		Usage:   "Vocabulary store with flashcard synchronization",
		Version: Version,
		Commands: []*cli.Command{
			addCmd(deps, prefs),
			showCmd(deps),
			searchCmd(deps),
			deleteCmd(deps),
			regenerateCmd(deps, prefs),
			generateTagsCmd(deps, prefs),
			importCmd(deps),
			exportCmd(deps),
			syncCmd(deps),
			statsCmd(deps),
			syncInfoCmd(deps),
			settingsCmd(prefs),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// prefFlags are shared by every command that calls the generation service.
func prefFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "model", Aliases: []string{"m"}, Usage: "Generation model override"},
		&cli.StringFlag{Name: "effort", Aliases: []string{"e"}, Usage: "Reasoning effort override"},
	}
}

// resolvePrefs loads stored preferences and applies per-invocation overrides.
func resolvePrefs(c *cli.Context, store settings.Store) settings.Prefs {
	p, err := store.Get(cliUserID)
	if err != nil {
		p = settings.Defaults()
	}
	if m := c.String("model"); m != "" {
		p.Model = m
	}
	if e := c.String("effort"); e != "" {
		p.Effort = e
	}
	return p.Normalized()
}

// addCmd creates the add command.
func addCmd(deps ops.Deps, prefs settings.Store) *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Generate entries for a word, phrase or quoted idiom and store them",
		ArgsUsage: "<input>",
		Flags: append(prefFlags(),
			&cli.BoolFlag{Name: "background", Aliases: []string{"b"}, Usage: "Return after the local save; push to the flashcard app asynchronously"},
		),
		Action: func(c *cli.Context) error {
			input := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
			if input == "" {
				return outputError(errors.NewInvalidRequest("input is required"))
			}

			output, err := ops.Generate(c.Context, deps, ops.GenerateInput{
				Input:      input,
				Prefs:      resolvePrefs(c, prefs),
				Background: c.Bool("background"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// showCmd creates the show command.
func showCmd(deps ops.Deps) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show one entry with its sync state",
		ArgsUsage: "<term>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "html", Usage: "Print the entry as its flashcard HTML snippet"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Get(c.Context, deps, c.Args().First())
			if err != nil {
				return outputError(err)
			}
			if c.Bool("html") {
				fmt.Println(entry.RenderHTML(output.Entry))
				return nil
			}
			return outputJSON(output)
		},
	}
}

// syncInfoCmd creates the sync-info command.
func syncInfoCmd(deps ops.Deps) *cli.Command {
	return &cli.Command{
		Name:  "sync-info",
		Usage: "List synced entries with their sync records",
		Action: func(c *cli.Context) error {
			infos, err := ops.SyncInfo(c.Context, deps)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(infos)
		},
	}
}

// searchCmd creates the search command.
func searchCmd(deps ops.Deps) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search entries; with no query, list everything",
		ArgsUsage: "[query]",
		Action: func(c *cli.Context) error {
			entries, err := ops.Search(c.Context, deps, strings.Join(c.Args().Slice(), " "))
			if err != nil {
				return outputError(err)
			}
			return outputJSON(entries)
		},
	}
}

// deleteCmd creates the delete command.
func deleteCmd(deps ops.Deps) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete an entry locally and its remote note if synced",
		ArgsUsage: "<term>",
		Action: func(c *cli.Context) error {
			output, err := ops.Delete(c.Context, deps, ops.DeleteInput{Term: c.Args().First()})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// regenerateCmd creates the regenerate command.
func regenerateCmd(deps ops.Deps, prefs settings.Store) *cli.Command {
	return &cli.Command{
		Name:      "regenerate",
		Usage:     "Re-run generation for one entry, or for the whole store with --all",
		ArgsUsage: "[term]",
		Flags: append(prefFlags(),
			&cli.BoolFlag{Name: "all", Usage: "Regenerate every entry missing a proficiency level"},
			&cli.BoolFlag{Name: "force", Usage: "With --all, also regenerate up-to-date entries"},
			&cli.IntFlag{Name: "width", Usage: "Concurrent workers for --all (default: configured concurrency)"},
		),
		Action: func(c *cli.Context) error {
			p := resolvePrefs(c, prefs)

			if c.Bool("all") {
				output, err := ops.RegenerateAll(c.Context, deps, ops.BatchInput{
					Prefs:    p,
					Force:    c.Bool("force"),
					Width:    c.Int("width"),
					Progress: progressPrinter(),
				})
				if err != nil {
					return outputError(err)
				}
				return outputJSON(output)
			}

			if c.Args().First() == "" {
				return outputError(errors.NewInvalidRequest("term is required (or use --all)"))
			}
			output, err := ops.Regenerate(c.Context, deps, ops.RegenerateInput{
				Term:  c.Args().First(),
				Prefs: p,
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// generateTagsCmd creates the generate-tags command.
func generateTagsCmd(deps ops.Deps, prefs settings.Store) *cli.Command {
	return &cli.Command{
		Name:  "generate-tags",
		Usage: "Generate tags for entries missing them",
		Flags: append(prefFlags(),
			&cli.BoolFlag{Name: "force", Usage: "Also retag entries that already have tags"},
			&cli.IntFlag{Name: "width", Usage: "Concurrent workers (default: configured concurrency)"},
		),
		Action: func(c *cli.Context) error {
			output, err := ops.GenerateTags(c.Context, deps, ops.BatchInput{
				Prefs:    resolvePrefs(c, prefs),
				Force:    c.Bool("force"),
				Width:    c.Int("width"),
				Progress: progressPrinter(),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// importCmd creates the import command.
func importCmd(deps ops.Deps) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Import notes from the flashcard app into the local store",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "deck", Aliases: []string{"d"}, Usage: "Deck to import from (default: configured deck)"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Import(c.Context, deps, ops.ImportInput{Deck: c.String("deck")})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// exportCmd creates the export command.
func exportCmd(deps ops.Deps) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Push local entries to the flashcard app",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "unsynced-only", Aliases: []string{"u"}, Usage: "Only push entries never successfully synced"},
			&cli.IntFlag{Name: "width", Usage: "Concurrent workers (default: configured concurrency)"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Export(c.Context, deps, ops.ExportInput{
				UnsyncedOnly: c.Bool("unsynced-only"),
				Width:        c.Int("width"),
				Progress:     progressPrinter(),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// syncCmd creates the sync command.
func syncCmd(deps ops.Deps) *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Push unsynced entries, then trigger the flashcard app's cloud sync",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "no-cloud", Usage: "Skip the cloud sync phase"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.FullSync(c.Context, deps, ops.FullSyncInput{
				Cloud:    !c.Bool("no-cloud"),
				Progress: progressPrinter(),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// statsCmd creates the stats command.
func statsCmd(deps ops.Deps) *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Count entries by sync state",
		Action: func(c *cli.Context) error {
			output, err := ops.Stats(c.Context, deps)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// settingsCmd creates the settings command.
func settingsCmd(prefs settings.Store) *cli.Command {
	return &cli.Command{
		Name:  "settings",
		Usage: "Show or change generation preferences",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "model", Usage: "Set the generation model"},
			&cli.StringFlag{Name: "effort", Usage: "Set the reasoning effort"},
		},
		Action: func(c *cli.Context) error {
			current, err := prefs.Get(cliUserID)
			if err != nil {
				current = settings.Defaults()
			}

			if c.IsSet("model") || c.IsSet("effort") {
				if c.IsSet("model") {
					current.Model = c.String("model")
				}
				if c.IsSet("effort") {
					current.Effort = c.String("effort")
				}
				if err := prefs.Set(cliUserID, current); err != nil {
					return outputError(errors.NewInternal(err))
				}
				current = current.Normalized()
			}

			return outputJSON(current)
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if vErr, ok := err.(*errors.Error); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", vErr.Code, vErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// progressPrinter reports batch progress to stderr, away from JSON output.
func progressPrinter() func(completed, total int) {
	return func(completed, total int) {
		fmt.Fprintf(os.Stderr, "\r%d/%d", completed, total)
		if completed == total {
			fmt.Fprintln(os.Stderr)
		}
	}
}
