package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/mjessen/formpilot/internal/agent"
	"github.com/mjessen/formpilot/internal/archive"
	"github.com/mjessen/formpilot/internal/config"
	"github.com/mjessen/formpilot/internal/errors"
	"github.com/mjessen/formpilot/internal/fill"
	"github.com/mjessen/formpilot/internal/history"
	"github.com/mjessen/formpilot/internal/offline"
	"github.com/mjessen/formpilot/internal/profile"
	"github.com/mjessen/formpilot/internal/schema"
	"github.com/mjessen/formpilot/internal/token"
	"github.com/mjessen/formpilot/internal/web"
)

// appEnv bundles the initialized runtime handed to CLI commands.
// It is nil for help/version invocations that never touch the database.
type appEnv struct {
	db  *sql.DB
	cfg *config.Config
	log *zap.Logger
}

// newCLIApp creates the CLI application with all commands.
func newCLIApp(env *appEnv) *cli.App {
	app := &cli.App{
		Name:    "formpilot",
		Usage:   "Private form-filling assistant",
		Version: Version,
		Commands: []*cli.Command{
			captureCmd(env),
			fillCmd(env),
			profileCmd(env),
			capturesCmd(env),
			roadmapCmd(env),
			cacheCmd(env),
			serveCmd(env),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// captureCmd creates the capture command.
func captureCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:      "capture",
		Usage:     "Extract the form schema from a page (reads HTML from stdin or a file)",
		ArgsUsage: "[file.html]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Aliases: []string{"u"}, Required: true, Usage: "Page URL"},
		},
		Action: func(c *cli.Context) error {
			html, err := readHTML(c)
			if err != nil {
				return outputError(err)
			}

			page, err := schema.LoadPageString(c.String("url"), html)
			if err != nil {
				return outputError(err)
			}
			// Same rule as the archive itself: captured schemas only ever
			// hold tokens, so a page captured after a fill stores no
			// personal values.
			fs := agent.Redact(schema.Extract(page), profile.NewStore(env.db).Get())

			capture, err := archive.NewStore(env.db, env.cfg.CaptureListLimit).Create(c.Context, fs)
			if err != nil {
				return outputError(err)
			}

			if err := history.NewEvents(env.db, env.cfg.EventLimit).Track("form_captured", fs.URL); err != nil {
				env.log.Warn("event track failed", zap.Error(err))
			}

			return outputJSON(map[string]any{
				"id":     capture.ID,
				"schema": fs,
			})
		},
	}
}

// fillCmd creates the fill command.
func fillCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:      "fill",
		Usage:     "Fill a form from the stored profile (reads HTML from stdin or a file)",
		ArgsUsage: "[file.html]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Aliases: []string{"u"}, Required: true, Usage: "Page URL"},
			&cli.StringFlag{Name: "schema-url", Usage: "URL the mapping was planned against (defaults to --url)"},
			&cli.StringFlag{Name: "mapping", Aliases: []string{"m"}, Usage: `Field-to-token mapping as JSON, e.g. '{"vorname":"[FIRST_NAME]"}'`},
			&cli.BoolFlag{Name: "offline", Usage: "Plan the mapping locally with label heuristics instead of requiring --mapping"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Write the filled HTML to a file instead of the JSON output"},
		},
		Action: func(c *cli.Context) error {
			html, err := readHTML(c)
			if err != nil {
				return outputError(err)
			}

			page, err := schema.LoadPageString(c.String("url"), html)
			if err != nil {
				return outputError(err)
			}

			var instr token.FillInstruction
			switch {
			case c.Bool("offline"):
				fs := schema.Extract(page)
				instr, err = agent.NewHeuristicPlanner().PlanFill(c.Context, fs)
				if err != nil {
					return outputError(err)
				}
			case c.String("mapping") != "":
				var mapping map[string]token.Token
				if err := json.Unmarshal([]byte(c.String("mapping")), &mapping); err != nil {
					return outputError(errors.NewInvalidRequest("mapping must be a JSON object of field IDs to tokens"))
				}
				instr = token.FillInstruction{SchemaURL: c.String("url"), Mapping: mapping}
				if su := c.String("schema-url"); su != "" {
					instr.SchemaURL = su
				}
			default:
				return outputError(errors.NewInvalidRequest("either --mapping or --offline is required"))
			}

			rec := profile.NewStore(env.db).Get()
			values, skips := token.Resolve(instr, rec)

			report, err := fill.Apply(page, instr.SchemaURL, values)
			if err != nil {
				return outputError(err)
			}

			filled, err := page.RenderString()
			if err != nil {
				return outputError(errors.NewInternal(err))
			}

			if err := history.NewEvents(env.db, env.cfg.EventLimit).Track("fill_applied", c.String("url")); err != nil {
				env.log.Warn("event track failed", zap.Error(err))
			}

			out := map[string]any{
				"report": report,
				"skips":  skips,
			}
			if path := c.String("out"); path != "" {
				if err := os.WriteFile(path, []byte(filled), 0600); err != nil {
					return outputError(errors.NewStorage("write filled page", err))
				}
				out["written"] = path
			} else {
				out["html"] = filled
			}

			return outputJSON(out)
		},
	}
}

// profileCmd creates the profile command group.
func profileCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "profile",
		Usage: "Manage the locally stored personal data record",
		Subcommands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Print the stored record (local output only)",
				Action: func(c *cli.Context) error {
					rec := profile.NewStore(env.db).Get()
					return outputJSON(rec)
				},
			},
			{
				Name:      "set",
				Usage:     "Set one profile field",
				ArgsUsage: "<field> <value>",
				Action: func(c *cli.Context) error {
					if c.NArg() < 2 {
						return outputError(errors.NewInvalidRequest("usage: profile set <field> <value>"))
					}
					store := profile.NewStore(env.db)
					if err := store.Set(c.Args().Get(0), c.Args().Get(1)); err != nil {
						return outputError(err)
					}
					return outputJSON(map[string]any{
						"field":        c.Args().Get(0),
						"filled_count": store.FilledCount(),
					})
				},
			},
			{
				Name:  "clear",
				Usage: "Delete the entire stored record",
				Action: func(c *cli.Context) error {
					if err := profile.NewStore(env.db).Clear(); err != nil {
						return outputError(err)
					}
					return outputJSON(map[string]any{"cleared": true})
				},
			},
			{
				Name:  "demo",
				Usage: "Load the demo record for trying the assistant",
				Action: func(c *cli.Context) error {
					store := profile.NewStore(env.db)
					if err := store.LoadDemo(); err != nil {
						return outputError(err)
					}
					return outputJSON(map[string]any{
						"loaded":       true,
						"filled_count": store.FilledCount(),
					})
				},
			},
			{
				Name:  "tokens",
				Usage: "Print the placeholder token vocabulary",
				Action: func(c *cli.Context) error {
					vocabulary := make([]map[string]string, 0, len(token.All()))
					for _, tok := range token.All() {
						field, _ := tok.Field()
						vocabulary = append(vocabulary, map[string]string{
							"token": string(tok),
							"field": field,
						})
					}
					return outputJSON(map[string]any{"tokens": vocabulary})
				},
			},
		},
	}
}

// capturesCmd creates the captures command group.
func capturesCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "captures",
		Usage: "Browse and manage archived page captures",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List captures, newest first",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: archive.DefaultListLimit, Usage: "Maximum items to return"},
				},
				Action: func(c *cli.Context) error {
					items, err := archive.NewStore(env.db, env.cfg.CaptureListLimit).List(c.Context, c.Int("limit"))
					if err != nil {
						return outputError(err)
					}
					return outputJSON(map[string]any{"captures": items})
				},
			},
			{
				Name:      "show",
				Usage:     "Show one capture",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					if c.NArg() < 1 {
						return outputError(errors.NewInvalidRequest("capture ID is required"))
					}
					capture, err := archive.NewStore(env.db, env.cfg.CaptureListLimit).GetByID(c.Context, c.Args().First())
					if err != nil {
						return outputError(err)
					}
					return outputJSON(capture)
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete one capture",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					if c.NArg() < 1 {
						return outputError(errors.NewInvalidRequest("capture ID is required"))
					}
					id := c.Args().First()
					if err := archive.NewStore(env.db, env.cfg.CaptureListLimit).DeleteByID(c.Context, id); err != nil {
						return outputError(err)
					}
					return outputJSON(map[string]any{"deleted": true, "id": id})
				},
			},
			{
				Name:  "purge",
				Usage: "Delete every capture",
				Action: func(c *cli.Context) error {
					purged, err := archive.NewStore(env.db, env.cfg.CaptureListLimit).DeleteAll(c.Context)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(map[string]any{"purged": purged})
				},
			},
		},
	}
}

// roadmapCmd creates the roadmap command group.
func roadmapCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "roadmap",
		Usage: "Track bureaucratic onboarding steps",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List all steps in order",
				Action: func(c *cli.Context) error {
					steps, err := history.NewRoadmap(env.db).List()
					if err != nil {
						return outputError(err)
					}
					return outputJSON(map[string]any{"steps": steps})
				},
			},
			{
				Name:      "update",
				Usage:     "Update the status of a step",
				ArgsUsage: "<id>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "status", Aliases: []string{"s"}, Required: true, Usage: "pending|in_progress|complete"},
					&cli.StringFlag{Name: "notes", Aliases: []string{"n"}, Usage: "Free-form notes"},
				},
				Action: func(c *cli.Context) error {
					if c.NArg() < 1 {
						return outputError(errors.NewInvalidRequest("step ID is required"))
					}
					id := c.Args().First()
					if err := history.NewRoadmap(env.db).SetStatus(id, c.String("status"), c.String("notes")); err != nil {
						return outputError(err)
					}
					return outputJSON(map[string]any{"updated": true, "id": id})
				},
			},
			{
				Name:  "reset",
				Usage: "Reset all steps to pending",
				Action: func(c *cli.Context) error {
					if err := history.NewRoadmap(env.db).Reset(); err != nil {
						return outputError(err)
					}
					return outputJSON(map[string]any{"reset": true})
				},
			},
		},
	}
}

// cacheCmd creates the cache command group.
func cacheCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Manage the offline reference guide cache",
		Subcommands: []*cli.Command{
			{
				Name:  "refresh",
				Usage: "Fetch all configured guides and refresh the snapshot",
				Action: func(c *cli.Context) error {
					coord := offline.New(env.db, env.cfg, env.log)
					if err := coord.CacheOfflineData(c.Context); err != nil {
						return outputError(err)
					}
					return outputJSON(map[string]any{"fresh": coord.IsCacheFresh()})
				},
			},
			{
				Name:  "status",
				Usage: "Show cache freshness and cached guide names",
				Action: func(c *cli.Context) error {
					coord := offline.New(env.db, env.cfg, env.log)
					guides, err := coord.Guides()
					if err != nil {
						return outputError(err)
					}
					summaries := make([]map[string]any, 0, len(guides))
					for _, g := range guides {
						summaries = append(summaries, map[string]any{
							"name":       g.Name,
							"fetched_at": g.FetchedAt,
						})
					}
					return outputJSON(map[string]any{
						"fresh":  coord.IsCacheFresh(),
						"guides": summaries,
					})
				},
			},
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the local web UI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Aliases: []string{"b"}, Value: "127.0.0.1", Usage: "Bind address"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Value: 8787, Usage: "Listen port"},
		},
		Action: func(c *cli.Context) error {
			srv := web.NewServer(env.db, env.cfg, env.log, Version, c.String("bind"), c.Int("port"))
			return web.Run(srv)
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
	if pErr, ok := err.(*errors.PilotError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", pErr.Code, pErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// readHTML reads page HTML from a positional file argument or piped stdin.
func readHTML(c *cli.Context) (string, error) {
	if c.NArg() > 0 {
		data, err := os.ReadFile(c.Args().First())
		if err != nil {
			return "", errors.NewInvalidRequest(fmt.Sprintf("cannot read %s", c.Args().First()))
		}
		return string(data), nil
	}
	if !stdinHasData() {
		return "", errors.NewInvalidRequest("page HTML must be piped via stdin or given as a file")
	}
	return readStdin()
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all content from stdin.
func readStdin() (string, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", errors.NewInternal(err)
	}
	return strings.TrimSpace(string(data)), nil
}
