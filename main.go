// Package main provides the grouptabs CLI entrypoint.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/carlmjohnson/versioninfo"
	_ "github.com/joho/godotenv/autoload"
	cli "github.com/urfave/cli/v2"

	"github.com/lukemcguire/grouptabs/activity"
	"github.com/lukemcguire/grouptabs/config"
	"github.com/lukemcguire/grouptabs/store"
	"github.com/lukemcguire/grouptabs/tabs"
	"github.com/lukemcguire/grouptabs/tld"
	"github.com/lukemcguire/grouptabs/urlutil"
)

func main() {
	if err := run(os.Args); err != nil {
		slog.Error("exiting", "err", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	app := cli.App{
		Name:    "grouptabs",
		Usage:   "sort, group and tidy browser tabs in exported sessions",
		Version: versioninfo.Short(),
	}

	app.Flags = []cli.Flag{
		&cli.StringSliceFlag{
			Name:    "session",
			Aliases: []string{"s"},
			Usage:   "session file to operate on (may be repeated)",
			EnvVars: []string{"GROUPTABS_SESSION"},
		},
		&cli.BoolFlag{
			Name:    "dry-run",
			Usage:   "run the command without saving sessions back",
			EnvVars: []string{"GROUPTABS_DRY_RUN"},
		},
		&cli.StringFlag{
			Name:    "format",
			Usage:   "output format: text, json or csv",
			Value:   "text",
			EnvVars: []string{"GROUPTABS_FORMAT"},
		},
		&cli.BoolFlag{
			Name:    "tui",
			Usage:   "show live progress in a terminal UI (single session only)",
			EnvVars: []string{"GROUPTABS_TUI"},
		},
		&cli.StringFlag{
			Name:    "config",
			Usage:   "config file (default: $XDG_CONFIG_HOME/" + config.RelPath + ")",
			EnvVars: []string{"GROUPTABS_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "log verbosity level (eg: warn, info, debug)",
			EnvVars: []string{"GROUPTABS_LOG_LEVEL", "GO_LOG_LEVEL", "LOG_LEVEL"},
		},
	}

	app.Commands = []*cli.Command{
		keysCmd,
		sortCmd,
		groupCmd,
		ungroupCmd,
		dedupCmd,
		mergeCmd,
		copyURLsCmd,
		moveToWindowCmd,
		closeSelectedCmd,
		restoreCmd,
		activityCmd,
	}

	return app.Run(args)
}

func configLogger(cctx *cli.Context, cfg *config.Config, writer io.Writer) (*slog.Logger, error) {
	name := cfg.LogLevel
	if cctx.IsSet("log-level") {
		name = cctx.String("log-level")
	}
	level, err := config.ParseLevel(name)
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewTextHandler(writer, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return logger, nil
}

// env is the shared state every command is built from.
type env struct {
	cfg      *config.Config
	logger   *slog.Logger
	state    store.Store
	keyer    *urlutil.Keyer
	colors   []tabs.Color
	dryRun   bool
	format   string
	useTUI   bool
	sessions []string
}

func setup(cctx *cli.Context) (*env, error) {
	cfg, err := config.Load(cctx.String("config"))
	if err != nil {
		return nil, err
	}
	logger, err := configLogger(cctx, cfg, os.Stderr)
	if err != nil {
		return nil, err
	}

	format := cctx.String("format")
	switch format {
	case "text", "json", "csv":
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}

	colors, err := cfg.GroupColors()
	if err != nil {
		return nil, err
	}

	state := store.NewFile(cfg.StateFile)
	if cfg.StateFile == "" {
		if state, err = store.OpenDefault(); err != nil {
			return nil, err
		}
	}
	logger.Debug("using state file", "path", state.Path())

	parser, err := tld.NewCachedParser(nil, cfg.LookupCacheSize)
	if err != nil {
		return nil, err
	}

	return &env{
		cfg:      cfg,
		logger:   logger,
		state:    state,
		keyer:    urlutil.NewKeyer(parser),
		colors:   colors,
		dryRun:   cctx.Bool("dry-run"),
		format:   format,
		useTUI:   cctx.Bool("tui"),
		sessions: cctx.StringSlice("session"),
	}, nil
}

// sessionState returns the activity tracker and closed-tab history of the
// session at path. Tab and window ids only mean something inside one
// session, so each session gets its own keys in the shared state file.
func (e *env) sessionState(path string) (*activity.Tracker, *tabs.History) {
	ns := path
	if abs, err := filepath.Abs(path); err == nil {
		ns = abs
	}
	state := store.Namespace(e.state, ns)
	return activity.NewTracker(state, activity.WithLogger(e.logger)),
		tabs.NewHistory(state, e.cfg.HistoryDepth)
}

func (e *env) managerConfig(path string) tabs.Config {
	tracker, history := e.sessionState(path)
	return tabs.Config{
		Keyer:           e.keyer,
		Activity:        tracker,
		History:         history,
		Colors:          e.colors,
		GroupSingletons: e.cfg.GroupSingletons,
		HostRate:        e.cfg.HostRate,
		HostBurst:       e.cfg.HostBurst,
		Logger:          e.logger,
	}
}
