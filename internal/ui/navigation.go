package ui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/itree/internal/logging"
	"github.com/atomicstack/itree/internal/logging/events"
	"github.com/atomicstack/itree/internal/tree"
	"github.com/atomicstack/itree/internal/ui/state"
)

type treeLoadedMsg struct {
	tree *tree.Tree
	err  error
}

type copyResultMsg struct {
	path string
	err  error
}

func (m *Model) handleKeyMsg(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	m.errMsg = ""
	switch {
	case key.Matches(keyMsg, m.keys.Quit):
		m.apply(state.Quit)
		return tea.Quit
	case key.Matches(keyMsg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.syncViewport()
	case key.Matches(keyMsg, m.keys.Up):
		m.apply(state.CursorUp)
	case key.Matches(keyMsg, m.keys.Down):
		m.apply(state.CursorDown)
	case key.Matches(keyMsg, m.keys.Left):
		m.apply(state.MoveLeft)
	case key.Matches(keyMsg, m.keys.Right):
		m.apply(state.MoveRight)
	case key.Matches(keyMsg, m.keys.Toggle):
		m.apply(state.ToggleFold)
	case key.Matches(keyMsg, m.keys.Home):
		m.apply(state.Home)
	case key.Matches(keyMsg, m.keys.End):
		m.apply(state.End)
	case key.Matches(keyMsg, m.keys.PageUp):
		m.apply(state.PageUp)
	case key.Matches(keyMsg, m.keys.PageDown):
		m.apply(state.PageDown)
	case key.Matches(keyMsg, m.keys.Copy):
		return m.copyFocusedCmd()
	case key.Matches(keyMsg, m.keys.Reload):
		return m.reloadCmd()
	}
	return nil
}

// apply feeds one navigation event to the state machine and keeps the
// viewport around the cursor.
func (m *Model) apply(ev state.Event) {
	out := m.nav.Apply(ev)
	t := m.nav.Tree()
	focused := m.nav.Focused()
	path := t.RelPath(focused)
	events.Nav.Event(ev.String(), m.nav.Cursor, path)
	if out.Err != nil {
		if errors.Is(out.Err, state.ErrNotFoldable) {
			events.Nav.NotFoldable(path)
		}
		logging.Error(fmt.Errorf("%s on %s: %w", ev, path, out.Err))
	}
	if out.FoldChanged {
		events.Nav.Fold(path, m.nav.Fold().IsCollapsed(focused), m.nav.Len())
	}
	if out.Moved {
		events.Nav.Cursor(m.nav.Cursor, path)
	}
	m.syncViewport()
}

func (m *Model) syncViewport() {
	m.nav.EnsureCursorVisible(m.maxVisibleItems())
}

func (m *Model) copyFocusedCmd() tea.Cmd {
	if m.clipboard == nil {
		return nil
	}
	write := m.clipboard
	path := m.nav.Tree().Path(m.nav.Focused())
	return func() tea.Msg {
		return copyResultMsg{path: path, err: write(path)}
	}
}

func (m *Model) handleCopyResultMsg(msg tea.Msg) tea.Cmd {
	res, ok := msg.(copyResultMsg)
	if !ok {
		return nil
	}
	if res.err != nil {
		events.Action.Error(res.err)
		logging.Error(fmt.Errorf("copy %s: %w", res.path, res.err))
		m.errMsg = fmt.Sprintf("copy failed: %v", res.err)
		return nil
	}
	events.Action.Success("copied " + res.path)
	m.setInfo("Copied " + res.path)
	return nil
}

func (m *Model) reloadCmd() tea.Cmd {
	if m.reload == nil || m.loading {
		return nil
	}
	m.loading = true
	load := m.reload
	return func() tea.Msg {
		t, err := load(context.Background())
		return treeLoadedMsg{tree: t, err: err}
	}
}

func (m *Model) handleTreeLoadedMsg(msg tea.Msg) tea.Cmd {
	loaded, ok := msg.(treeLoadedMsg)
	if !ok {
		return nil
	}
	m.loading = false
	if loaded.err != nil {
		events.Action.Error(loaded.err)
		logging.Error(loaded.err)
		m.errMsg = fmt.Sprintf("reload failed: %v", loaded.err)
		return nil
	}
	m.nav = m.nav.Rebase(loaded.tree)
	m.changes = 0
	m.syncViewport()
	counts := loaded.tree.Counts()
	events.Action.Success("reloaded")
	m.setInfo(fmt.Sprintf("Reloaded: %d directories, %d files", counts.Dirs, counts.Files))
	return nil
}

// relativeToRoot shortens an absolute change path for display.
func (m *Model) relativeToRoot(path string) string {
	root := m.nav.Tree().RootPath()
	if rel, err := filepath.Rel(root, path); err == nil {
		return filepath.ToSlash(rel)
	}
	return path
}
