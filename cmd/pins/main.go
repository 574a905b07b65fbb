package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/bunchhieng/pins/internal/api"
	"github.com/bunchhieng/pins/internal/app"
	cmds "github.com/bunchhieng/pins/internal/cli"
	"github.com/bunchhieng/pins/internal/config"
	"github.com/bunchhieng/pins/internal/logging"
	"github.com/bunchhieng/pins/internal/search"
	"github.com/bunchhieng/pins/internal/tui"
	zlog "github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	var cfg *config.Config

	return &cli.App{
		Name:    "pins",
		Usage:   "a personal bookmark manager",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Value: "config.yaml", Usage: "path to YAML config file"},
			&cli.StringFlag{Name: "env-file", Value: ".env", Usage: "path to .env file"},
			&cli.StringFlag{Name: "db-path", Usage: "path to database file (default: platform config directory)"},
			&cli.StringFlag{Name: "log-level", Usage: "trace, debug, info, warn or error"},
			&cli.StringFlag{Name: "log-format", Usage: "console or json"},
		},
		Before: func(c *cli.Context) error {
			loaded, err := config.Load(c.String("config"), c.String("env-file"))
			if err != nil {
				return err
			}
			if c.IsSet("db-path") {
				loaded.Database.Path = c.String("db-path")
			}
			if c.IsSet("log-level") {
				loaded.Log.Level = c.String("log-level")
			}
			if c.IsSet("log-format") {
				loaded.Log.Format = c.String("log-format")
			}
			logging.Setup(loaded.Log.Level, loaded.Log.Format)
			cfg = loaded
			return nil
		},
		Commands: []*cli.Command{
			serveCommand(&cfg),
			importCommand(&cfg),
			exportCommand(&cfg),
			listCommand(&cfg),
			openCommand(&cfg),
			removeCommand(&cfg),
			browseCommand(&cfg),
		},
	}
}

// withApp opens the store for the duration of fn.
func withApp(cfg **config.Config, fn func(*app.App) error) error {
	a, err := app.New(*cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			zlog.Warn().Err(err).Msg("Closing storage")
		}
	}()
	return fn(a)
}

func serveCommand(cfg **config.Config) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Usage: "listen host"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "listen port"},
		},
		Action: func(c *cli.Context) error {
			server := (*cfg).Server
			if c.IsSet("host") {
				server.Host = c.String("host")
			}
			if c.IsSet("port") {
				server.Port = c.Int("port")
			}
			token := (*cfg).Auth.Token
			if token == "" {
				return errors.New("an API token is required: set PINS_TOKEN or auth.token")
			}

			return withApp(cfg, func(a *app.App) error {
				handler := api.NewHandler(a.Storage, api.Options{Token: token, Mode: server.Mode})
				return api.NewServer(server, handler).Run(c.Context)
			})
		},
	}
}

func importCommand(cfg **config.Config) *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "import bookmarks from a linkding JSON or Netscape HTML file",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "linkding or netscape (default: from file extension)"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return errors.New("usage: pins import <file> [--format linkding|netscape]")
			}
			format, err := cmds.ParseFormat(c.String("format"))
			if err != nil {
				return err
			}
			return withApp(cfg, func(a *app.App) error {
				_, err := cmds.NewCommands(a.Storage, c.App.Writer).Import(c.Context, c.Args().First(), format)
				return err
			})
		},
	}
}

func exportCommand(cfg **config.Config) *cli.Command {
	return &cli.Command{
		Name:    "export",
		Aliases: []string{"export-html"},
		Usage:   "export all bookmarks",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: string(cmds.FormatNetscape), Usage: "netscape or linkding"},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "output file (default: stdout)"},
		},
		Action: func(c *cli.Context) error {
			format, err := cmds.ParseFormat(c.String("format"))
			if err != nil {
				return err
			}
			return withApp(cfg, func(a *app.App) error {
				var w io.Writer = c.App.Writer
				if path := c.String("output"); path != "" {
					file, err := os.Create(path)
					if err != nil {
						return fmt.Errorf("create output file: %w", err)
					}
					defer file.Close()
					w = file
				}
				return cmds.NewCommands(a.Storage, c.App.ErrWriter).Export(c.Context, w, format)
			})
		},
	}
}

func listCommand(cfg **config.Config) *cli.Command {
	return &cli.Command{
		Name:      "list",
		Aliases:   []string{"ls"},
		Usage:     "list bookmarks, optionally matching a query such as \"#go async\"",
		ArgsUsage: "[query...]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "query", Aliases: []string{"q"}, Usage: "search query, e.g. \"#go async\""},
			&cli.BoolFlag{Name: "unread", Usage: "show only unread bookmarks"},
			&cli.Uint64Flag{Name: "limit", Aliases: []string{"n"}, Value: search.DefaultLimit, Usage: "maximum number of results (0 for all)"},
			&cli.Uint64Flag{Name: "offset", Usage: "number of results to skip"},
		},
		Action: func(c *cli.Context) error {
			q := c.String("query")
			if c.NArg() > 0 {
				q = strings.TrimSpace(q + " " + strings.Join(c.Args().Slice(), " "))
			}
			opts := search.Options{
				Q:          q,
				Limit:      c.Uint64("limit"),
				Offset:     c.Uint64("offset"),
				UnreadOnly: c.Bool("unread"),
			}
			return withApp(cfg, func(a *app.App) error {
				return cmds.NewCommands(a.Storage, c.App.Writer).List(c.Context, opts)
			})
		},
	}
}

func openCommand(cfg **config.Config) *cli.Command {
	return &cli.Command{
		Name:      "open",
		Usage:     "open a bookmark in the browser",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return errors.New("usage: pins open <id>")
			}
			id, err := cmds.ParseID(c.Args().First())
			if err != nil {
				return err
			}
			return withApp(cfg, func(a *app.App) error {
				return cmds.NewCommands(a.Storage, c.App.Writer).Open(c.Context, id)
			})
		},
	}
}

func removeCommand(cfg **config.Config) *cli.Command {
	return &cli.Command{
		Name:      "rm",
		Usage:     "delete one or more bookmarks",
		ArgsUsage: "<id>...",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return errors.New("usage: pins rm <id>...")
			}
			ids := make([]int64, 0, c.NArg())
			for _, arg := range c.Args().Slice() {
				id, err := cmds.ParseID(arg)
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}
			return withApp(cfg, func(a *app.App) error {
				return cmds.NewCommands(a.Storage, c.App.Writer).Remove(c.Context, ids...)
			})
		},
	}
}

func browseCommand(cfg **config.Config) *cli.Command {
	return &cli.Command{
		Name:  "browse",
		Usage: "browse bookmarks interactively",
		Action: func(c *cli.Context) error {
			return withApp(cfg, func(a *app.App) error {
				return tui.Run(a.Storage)
			})
		},
	}
}
