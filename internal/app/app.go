package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/atomicstack/itree/internal/backend"
	"github.com/atomicstack/itree/internal/format/treeview"
	"github.com/atomicstack/itree/internal/logging"
	"github.com/atomicstack/itree/internal/logging/events"
	"github.com/atomicstack/itree/internal/theme"
	"github.com/atomicstack/itree/internal/tree"
	"github.com/atomicstack/itree/internal/ui"
	"github.com/atomicstack/itree/internal/ui/state"
	"github.com/atomicstack/itree/internal/walk"
)

// Output formats for the non-interactive dump.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

const (
	watchInterval = 500 * time.Millisecond
	maxWatches    = 1024
)

// Config describes user-provided application options.
type Config struct {
	Root       string
	Walk       walk.Options
	Sort       tree.SortOptions
	FoldDepth  int
	NoInteract bool
	Quiet      bool
	Format     string
	Watch      bool
	Width      int
	Height     int
	ShowFooter bool
	Foreground string
	Background string
}

// Run walks the configured root and either prints it or starts the
// interactive browser.
func Run(cfg Config) error {
	return run(context.Background(), cfg, os.Stdout, term.IsTerminal(int(os.Stdout.Fd())))
}

func run(ctx context.Context, cfg Config, out io.Writer, tty bool) error {
	t, err := load(ctx, cfg)
	if err != nil {
		return err
	}
	switch {
	case cfg.Quiet:
		events.App.Mode("quiet")
		_, err = fmt.Fprintln(out, treeview.Summary(t.Counts()))
		return err
	case cfg.NoInteract || !tty || cfg.Format != FormatText:
		events.App.Mode("print:" + cfg.Format)
		return printTree(out, t, cfg.Format)
	default:
		events.App.Mode("interactive")
		return browse(t, cfg)
	}
}

// load walks the root and builds a tree from the result.
func load(ctx context.Context, cfg Config) (*tree.Tree, error) {
	start := time.Now()
	entries, err := walk.New(cfg.Walk).Walk(ctx, cfg.Root)
	if err != nil {
		events.Walk.Error(cfg.Root, err)
		return nil, fmt.Errorf("walk %s: %w", cfg.Root, err)
	}
	events.Walk.Done(cfg.Root, len(entries), time.Since(start))
	t, err := tree.Build(cfg.Root, entries, cfg.Sort)
	if err != nil {
		return nil, fmt.Errorf("build tree: %w", err)
	}
	return t, nil
}

func printTree(out io.Writer, t *tree.Tree, format string) error {
	switch format {
	case FormatJSON:
		return writeJSON(out, t)
	case FormatYAML:
		return writeYAML(out, t)
	default:
		return treeview.Print(out, t)
	}
}

func browse(t *tree.Tree, cfg Config) error {
	fold := state.NewFold(t)
	fold.CollapseBeyond(cfg.FoldDepth)
	styles := theme.New(cfg.Foreground, cfg.Background)
	opts := ui.Options{
		Width:      cfg.Width,
		Height:     cfg.Height,
		ShowFooter: cfg.ShowFooter,
		Styles:     &styles,
		Clipboard:  ui.SystemClipboard(),
		Reload: func(ctx context.Context) (*tree.Tree, error) {
			return load(ctx, cfg)
		},
	}
	if cfg.Watch {
		// TODO: re-register directories that appear after a reload.
		watcher, err := backend.NewWatcher(watchDirs(t, maxWatches), watchInterval)
		if err != nil {
			logging.Warn("watch disabled", zap.Error(err))
		} else {
			defer watcher.Stop()
			opts.Watcher = watcher
		}
	}
	model := ui.NewModel(t, fold, opts)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

// watchDirs lists readable directories breadth first, up to limit.
func watchDirs(t *tree.Tree, limit int) []string {
	dirs := make([]string, 0, 16)
	queue := []tree.ID{t.Root()}
	for len(queue) > 0 && len(dirs) < limit {
		id := queue[0]
		queue = queue[1:]
		node := t.Node(id)
		if node.Kind != tree.Directory || node.Restricted {
			continue
		}
		dirs = append(dirs, t.Path(id))
		queue = append(queue, node.Children...)
	}
	return dirs
}
