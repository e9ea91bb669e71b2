package ui

import (
	"context"
	"reflect"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/itree/internal/backend"
	"github.com/atomicstack/itree/internal/theme"
	"github.com/atomicstack/itree/internal/tree"
	"github.com/atomicstack/itree/internal/ui/state"
)

type msgHandler func(tea.Msg) tea.Cmd

// Loader rebuilds the tree from disk.
type Loader func(ctx context.Context) (*tree.Tree, error)

// Options configures a Model.
type Options struct {
	Width      int
	Height     int
	ShowFooter bool
	Styles     *theme.Styles
	Watcher    *backend.Watcher
	// Reload enables the reload key when set.
	Reload Loader
	// Clipboard receives the focused path on copy. Nil disables copying.
	Clipboard func(string) error
}

// Model implements the Bubble Tea model for the tree browser.
type Model struct {
	nav *state.Navigator

	keys     keyMap
	help     help.Model
	showHelp bool

	errMsg     string
	infoMsg    string
	infoExpire time.Time

	width       int
	height      int
	fixedWidth  bool
	fixedHeight bool
	showFooter  bool
	styles      *theme.Styles

	backend        *backend.Watcher
	backendLastErr string
	changes        int

	reload    Loader
	loading   bool
	clipboard func(string) error

	handlers map[reflect.Type]msgHandler
}

// NewModel prepares a session over t. fold may be nil for a fully expanded
// start.
func NewModel(t *tree.Tree, fold *state.Fold, opts Options) *Model {
	m := &Model{
		nav:        state.NewNavigator(t, fold),
		keys:       defaultKeyMap(),
		help:       help.New(),
		showFooter: opts.ShowFooter,
		styles:     opts.Styles,
		backend:    opts.Watcher,
		reload:     opts.Reload,
		clipboard:  opts.Clipboard,
	}
	if m.styles == nil {
		m.styles = theme.Default()
	}
	if opts.Width > 0 {
		m.width = opts.Width
		m.fixedWidth = true
	}
	if opts.Height > 0 {
		m.height = opts.Height
		m.fixedHeight = true
	}
	m.keys.Copy.SetEnabled(m.clipboard != nil)
	m.keys.Reload.SetEnabled(m.reload != nil)
	m.help.Styles.ShortKey = *m.styles.Footer
	m.help.Styles.ShortDesc = *m.styles.Footer
	m.syncViewport()
	m.registerHandlers()
	return m
}

// SystemClipboard returns a writer for the desktop clipboard, or nil when
// no clipboard utility is available.
func SystemClipboard() func(string) error {
	if clipboard.Unsupported {
		return nil
	}
	return clipboard.WriteAll
}

// Navigator exposes the navigation state.
func (m *Model) Navigator() *state.Navigator {
	return m.nav
}

// Init is part of the tea.Model interface.
func (m *Model) Init() tea.Cmd {
	if m.backend != nil {
		return waitForBackendEvent(m.backend)
	}
	return nil
}

// Update responds to Bubble Tea messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if handler := m.handlerFor(msg); handler != nil {
		return m, handler(msg)
	}
	return m, nil
}

func (m *Model) registerHandlers() {
	m.handlers = map[reflect.Type]msgHandler{
		reflect.TypeOf(tea.KeyMsg{}):        m.handleKeyMsg,
		reflect.TypeOf(tea.WindowSizeMsg{}): m.handleWindowSizeMsg,
		reflect.TypeOf(treeLoadedMsg{}):     m.handleTreeLoadedMsg,
		reflect.TypeOf(copyResultMsg{}):     m.handleCopyResultMsg,
		reflect.TypeOf(backendEventMsg{}):   m.handleBackendEventMsg,
		reflect.TypeOf(backendDoneMsg{}):    m.handleBackendDoneMsg,
	}
}

func (m *Model) handlerFor(msg tea.Msg) msgHandler {
	if msg == nil || m.handlers == nil {
		return nil
	}
	t := reflect.TypeOf(msg)
	if handler, ok := m.handlers[t]; ok {
		return handler
	}
	if t.Kind() == reflect.Ptr {
		if handler, ok := m.handlers[t.Elem()]; ok {
			return handler
		}
	}
	return nil
}
