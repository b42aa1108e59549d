package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	cli "github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/lukemcguire/grouptabs/activity"
	"github.com/lukemcguire/grouptabs/result"
	"github.com/lukemcguire/grouptabs/session"
	"github.com/lukemcguire/grouptabs/tabs"
	"github.com/lukemcguire/grouptabs/tui"
	"github.com/lukemcguire/grouptabs/urlutil"
)

// maxParallelSessions bounds how many sessions are processed at once.
const maxParallelSessions = 4

// operation runs one manager command. The manager comes first so method
// expressions like (*tabs.Manager).Ungroup fit directly.
type operation func(m *tabs.Manager, ctx context.Context) (*result.Report, error)

// tabCommand builds a command that runs op against every --session.
func tabCommand(name, usage string, op operation) *cli.Command {
	return &cli.Command{
		Name:  name,
		Usage: usage,
		Action: func(cctx *cli.Context) error {
			e, err := setup(cctx)
			if err != nil {
				return err
			}
			return e.runSessions(cctx.Context, name, op)
		},
	}
}

var keysCmd = &cli.Command{
	Name:      "keys",
	Usage:     "print the grouping and duplicate keys of URLs",
	ArgsUsage: "<url>...",
	Action: func(cctx *cli.Context) error {
		if cctx.NArg() == 0 {
			return fmt.Errorf("need at least one URL")
		}
		e, err := setup(cctx)
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "URL\tDOMAIN\tAPEX\tDEDUP\tNOTE")
		for _, u := range cctx.Args().Slice() {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
				u, e.keyer.Full(u), e.keyer.Apex(u), e.keyer.Dedup(u), urlutil.SkipReason(u))
		}
		return tw.Flush()
	},
}

var sortCmd = &cli.Command{
	Name:  "sort",
	Usage: "sort the tabs of the current window",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "by",
			Usage: "sort key: url, domain, apex or recent",
			Value: "url",
		},
	},
	Action: func(cctx *cli.Context) error {
		e, err := setup(cctx)
		if err != nil {
			return err
		}
		var op operation
		switch by := cctx.String("by"); by {
		case "url":
			op = (*tabs.Manager).SortByURL
		case "domain":
			op = (*tabs.Manager).SortByDomain
		case "apex":
			op = (*tabs.Manager).SortByDomainIgnoreSubDomain
		case "recent":
			op = (*tabs.Manager).SortByLastAccessed
		default:
			return fmt.Errorf("unknown sort key %q", by)
		}
		return e.runSessions(cctx.Context, "sort", op)
	},
}

var groupCmd = &cli.Command{
	Name:  "group",
	Usage: "group the tabs of the current window",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "by",
			Usage: "group key: domain, apex or recent",
			Value: "domain",
		},
	},
	Action: func(cctx *cli.Context) error {
		e, err := setup(cctx)
		if err != nil {
			return err
		}
		var op operation
		switch by := cctx.String("by"); by {
		case "domain", "apex":
			ignoreSubdomain := by == "apex"
			op = func(m *tabs.Manager, ctx context.Context) (*result.Report, error) {
				return m.GroupByDomain(ctx, ignoreSubdomain)
			}
		case "recent":
			op = (*tabs.Manager).GroupByLastAccessed
		default:
			return fmt.Errorf("unknown group key %q", by)
		}
		return e.runSessions(cctx.Context, "group", op)
	},
}

var ungroupCmd = tabCommand("ungroup", "remove the tabs of the current window from their groups",
	(*tabs.Manager).Ungroup)

var dedupCmd = &cli.Command{
	Name:  "dedup",
	Usage: "close duplicate tabs of the current window",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "ignore-params",
			Usage: "compare URLs without query string and fragment",
		},
	},
	Action: func(cctx *cli.Context) error {
		e, err := setup(cctx)
		if err != nil {
			return err
		}
		ignoreParams := cctx.Bool("ignore-params")
		return e.runSessions(cctx.Context, "dedup", func(m *tabs.Manager, ctx context.Context) (*result.Report, error) {
			return m.RemoveDuplicates(ctx, ignoreParams)
		})
	},
}

var mergeCmd = tabCommand("merge", "move every tab into the current window",
	(*tabs.Manager).MergeAllWindows)

var copyURLsCmd = &cli.Command{
	Name:  "copy-urls",
	Usage: "copy the URLs of the current window to the clipboard",
	Action: func(cctx *cli.Context) error {
		if (tabs.SystemClipboard{}).Unsupported() {
			return fmt.Errorf("no clipboard available (install xclip, xsel or wl-clipboard)")
		}
		e, err := setup(cctx)
		if err != nil {
			return err
		}
		return e.runSessions(cctx.Context, "copy-urls", (*tabs.Manager).CopyAllURLs)
	},
}

var moveToWindowCmd = tabCommand("move-to-window", "move the selected tabs to a new window",
	(*tabs.Manager).MoveSelectedToNewWindow)

var closeSelectedCmd = tabCommand("close-selected", "close the selected tabs",
	(*tabs.Manager).CloseSelected)

var restoreCmd = &cli.Command{
	Name:  "restore",
	Usage: "reopen the most recently closed batch of tabs",
	Action: func(cctx *cli.Context) error {
		e, err := setup(cctx)
		if err != nil {
			return err
		}
		if _, err := e.oneSession("restore"); err != nil {
			return err
		}
		return e.runSessions(cctx.Context, "restore", (*tabs.Manager).RestoreLastClosed)
	},
}

var activityCmd = &cli.Command{
	Name:  "activity",
	Usage: "inspect and update tab activity data",
	Subcommands: []*cli.Command{
		{
			Name:  "init",
			Usage: "stamp every untracked tab of the sessions with the current time",
			Action: func(cctx *cli.Context) error {
				e, err := setup(cctx)
				if err != nil {
					return err
				}
				sessions, err := e.loadSessions(cctx.Context)
				if err != nil {
					return err
				}
				for _, s := range sessions {
					tracker, _ := e.sessionState(s.Path())
					added, err := tracker.InitializeExisting(cctx.Context, s.AllTabIDs())
					if err != nil {
						return fmt.Errorf("%s: %w", s.Path(), err)
					}
					fmt.Printf("%s: initialized %s\n", s.Path(), result.Plural(added, "tab"))
				}
				return nil
			},
		},
		{
			Name:      "touch",
			Usage:     "record that tabs were just used",
			ArgsUsage: "<tab-id>...",
			Action: func(cctx *cli.Context) error {
				return eachTabID(cctx, func(tracker *activity.Tracker, id int) error {
					return tracker.Record(cctx.Context, id)
				})
			},
		},
		{
			Name:      "forget",
			Usage:     "drop tabs from the activity data",
			ArgsUsage: "<tab-id>...",
			Action: func(cctx *cli.Context) error {
				return eachTabID(cctx, func(tracker *activity.Tracker, id int) error {
					return tracker.Forget(cctx.Context, id)
				})
			},
		},
		{
			Name:  "show",
			Usage: "print the activity data",
			Action: func(cctx *cli.Context) error {
				e, err := setup(cctx)
				if err != nil {
					return err
				}
				path, err := e.oneSession("activity show")
				if err != nil {
					return err
				}
				tracker, _ := e.sessionState(path)
				data, err := tracker.Snapshot(cctx.Context)
				if err != nil {
					return err
				}

				ids := make([]int, 0, len(data))
				for id := range data {
					ids = append(ids, id)
				}
				slices.Sort(ids)

				now := time.Now()
				tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "TAB\tLAST ACCESSED\tBUCKET")
				for _, id := range ids {
					at := data[id]
					fmt.Fprintf(tw, "%d\t%s\t%s\n", id, at.Format(time.RFC3339), tabs.RecencyLabel(now, at))
				}
				return tw.Flush()
			},
		},
	},
}

// eachTabID applies fn to every tab id argument, using the activity data
// of the single --session.
func eachTabID(cctx *cli.Context, fn func(tracker *activity.Tracker, id int) error) error {
	if cctx.NArg() == 0 {
		return fmt.Errorf("need at least one tab id")
	}
	e, err := setup(cctx)
	if err != nil {
		return err
	}
	path, err := e.oneSession("activity " + cctx.Command.Name)
	if err != nil {
		return err
	}
	tracker, _ := e.sessionState(path)
	for _, arg := range cctx.Args().Slice() {
		id, err := strconv.Atoi(arg)
		if err != nil || id <= 0 {
			return fmt.Errorf("invalid tab id %q", arg)
		}
		if err := fn(tracker, id); err != nil {
			return err
		}
	}
	return nil
}

// oneSession returns the only --session, for commands whose state belongs
// to a single session.
func (e *env) oneSession(command string) (string, error) {
	if len(e.sessions) != 1 {
		return "", fmt.Errorf("%s needs exactly one --session, got %d", command, len(e.sessions))
	}
	return e.sessions[0], nil
}

func (e *env) loadSessions(ctx context.Context) ([]*session.Session, error) {
	if len(e.sessions) == 0 {
		return nil, fmt.Errorf("no --session given")
	}
	return session.LoadAll(ctx, e.sessions)
}

// runSessions runs op against every session, saves the sessions back and
// writes the reports.
func (e *env) runSessions(ctx context.Context, name string, op operation) error {
	sessions, err := e.loadSessions(ctx)
	if err != nil {
		return err
	}

	if e.useTUI {
		if len(sessions) != 1 {
			return fmt.Errorf("--tui needs exactly one --session, got %d", len(sessions))
		}
		return e.runTUI(ctx, name, sessions[0], op)
	}

	reports := make([]*result.Report, len(sessions))
	errs := make([]error, len(sessions))

	var g errgroup.Group
	g.SetLimit(maxParallelSessions)
	for i, s := range sessions {
		g.Go(func() error {
			m := tabs.New(e.managerConfig(s.Path()), s, nil)
			rep, err := op(m, ctx)
			if rep != nil {
				rep.Session = s.Path()
			}
			reports[i] = rep
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", s.Path(), err)
				return nil
			}
			errs[i] = e.save(s)
			return nil
		})
	}
	_ = g.Wait()

	var done []*result.Report
	for _, rep := range reports {
		if rep != nil {
			done = append(done, rep)
		}
	}
	if err := e.write(done); err != nil {
		return err
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	return failureExit(done)
}

func (e *env) runTUI(ctx context.Context, name string, s *session.Session, op operation) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	progressCh := make(chan tabs.Event, 100)
	m := tabs.New(e.managerConfig(s.Path()), s, progressCh)
	fn := func(ctx context.Context) (*result.Report, error) {
		defer close(progressCh)
		rep, err := op(m, ctx)
		if rep != nil {
			rep.Session = s.Path()
		}
		return rep, err
	}

	finalModel, err := tea.NewProgram(tui.NewModel(ctx, cancel, name, fn, progressCh)).Run()
	if err != nil {
		return fmt.Errorf("run tui: %w", err)
	}

	final := finalModel.(tui.Model)
	if err := final.Err(); err != nil {
		return err
	}
	rep := final.Report()
	if rep == nil {
		return fmt.Errorf("%s: canceled", name)
	}
	if err := e.save(s); err != nil {
		return err
	}
	if e.format != "text" {
		if err := e.write([]*result.Report{rep}); err != nil {
			return err
		}
	}
	return failureExit([]*result.Report{rep})
}

func (e *env) save(s *session.Session) error {
	if e.dryRun {
		e.logger.Info("dry run, not saving session", "path", s.Path())
		return nil
	}
	if err := s.Save(s.Path()); err != nil {
		return fmt.Errorf("save %s: %w", s.Path(), err)
	}
	return nil
}

func (e *env) write(reports []*result.Report) error {
	switch e.format {
	case "json":
		return result.WriteJSON(os.Stdout, reports)
	case "csv":
		return result.WriteCSV(os.Stdout, reports)
	}
	for _, rep := range reports {
		result.PrintReport(os.Stdout, rep)
	}
	return nil
}

// failureExit exits non-zero when any host call failed.
func failureExit(reports []*result.Report) error {
	failed := 0
	for _, rep := range reports {
		failed += len(rep.Failures)
	}
	if failed > 0 {
		return cli.Exit(fmt.Sprintf("%s failed", result.Plural(failed, "host call")), 1)
	}
	return nil
}
