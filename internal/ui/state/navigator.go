package state

import (
	"github.com/atomicstack/itree/internal/tree"
)

// Event is an abstract navigation input.
type Event int

const (
	CursorUp Event = iota
	CursorDown
	MoveLeft
	MoveRight
	ToggleFold
	Quit
	Home
	End
	PageUp
	PageDown
)

var eventNames = [...]string{
	CursorUp:   "cursor-up",
	CursorDown: "cursor-down",
	MoveLeft:   "move-left",
	MoveRight:  "move-right",
	ToggleFold: "toggle-fold",
	Quit:       "quit",
	Home:       "home",
	End:        "end",
	PageUp:     "page-up",
	PageDown:   "page-down",
}

func (e Event) String() string {
	if e >= 0 && int(e) < len(eventNames) {
		return eventNames[e]
	}
	return "unknown"
}

// Outcome describes what a single event changed.
type Outcome struct {
	Moved       bool
	FoldChanged bool
	Quit        bool
	// Err holds a swallowed, non-fatal condition such as ErrNotFoldable.
	Err error
}

// Navigator owns the fold state, the derived visible sequence and the cursor
// for one tree. Cursor is an index into Visible().
type Navigator struct {
	tree    *tree.Tree
	fold    *Fold
	visible []tree.ID
	index   map[tree.ID]int

	Cursor         int
	ViewportOffset int
	window         int
}

// NewNavigator places the cursor on the root's first visible child, or on
// the root when it has none. A nil fold starts fully expanded.
func NewNavigator(t *tree.Tree, fold *Fold) *Navigator {
	if fold == nil {
		fold = NewFold(t)
	}
	n := &Navigator{tree: t, fold: fold}
	n.rebuild()
	if len(n.visible) > 1 {
		n.Cursor = 1
	}
	return n
}

// Tree returns the navigated tree.
func (n *Navigator) Tree() *tree.Tree {
	return n.tree
}

// Fold returns the fold state.
func (n *Navigator) Fold() *Fold {
	return n.fold
}

// Visible returns the current visible sequence. The slice must not be modified.
func (n *Navigator) Visible() []tree.ID {
	return n.visible
}

// Len returns the length of the visible sequence.
func (n *Navigator) Len() int {
	return len(n.visible)
}

// Focused returns the node under the cursor.
func (n *Navigator) Focused() tree.ID {
	return n.visible[n.Cursor]
}

// IndexOf returns the visible index of id, or -1 when it is hidden.
func (n *Navigator) IndexOf(id tree.ID) int {
	if i, ok := n.index[id]; ok {
		return i
	}
	return -1
}

// Apply runs one event through the state machine.
func (n *Navigator) Apply(ev Event) Outcome {
	before := n.Focused()
	var out Outcome
	switch ev {
	case CursorUp:
		if n.Cursor > 0 {
			n.Cursor--
		}
	case CursorDown:
		if n.Cursor < len(n.visible)-1 {
			n.Cursor++
		}
	case MoveRight:
		out.FoldChanged = n.moveRight()
	case MoveLeft:
		out.FoldChanged = n.moveLeft()
	case ToggleFold:
		out.FoldChanged, out.Err = n.toggle()
	case Quit:
		out.Quit = true
	case Home:
		n.MoveCursorHome()
	case End:
		n.MoveCursorEnd()
	case PageUp:
		n.MoveCursorPageUp(n.window)
	case PageDown:
		n.MoveCursorPageDown(n.window)
	}
	out.Moved = n.Focused() != before
	return out
}

func (n *Navigator) moveRight() bool {
	id := n.Focused()
	node := n.tree.Node(id)
	if node.Kind != tree.Directory {
		return false
	}
	if n.fold.IsCollapsed(id) {
		n.fold.Expand(id)
		n.refresh(id)
		return true
	}
	if len(node.Children) > 0 {
		n.Cursor = n.index[node.Children[0]]
	}
	return false
}

// moveLeft goes to the parent and folds it. The root is never folded.
func (n *Navigator) moveLeft() bool {
	parent := n.tree.Parent(n.Focused())
	if parent == tree.None {
		return false
	}
	changed := n.fold.Collapse(parent)
	if changed {
		n.refresh(parent)
	} else {
		n.Cursor = n.index[parent]
	}
	return changed
}

func (n *Navigator) toggle() (bool, error) {
	id := n.Focused()
	if err := n.fold.Toggle(id); err != nil {
		return false, err
	}
	n.refresh(id)
	return true, nil
}

// Focus reveals id by expanding its ancestors and moves the cursor onto it.
func (n *Navigator) Focus(id tree.ID) bool {
	if !n.tree.Valid(id) {
		return false
	}
	n.fold.ExpandAncestors(id)
	n.refresh(id)
	return true
}

// Refresh recomputes the visible sequence after an external fold change,
// keeping the cursor on the focused node or its nearest visible ancestor.
func (n *Navigator) Refresh() {
	n.refresh(n.Focused())
}

func (n *Navigator) refresh(focus tree.ID) {
	n.rebuild()
	for id := focus; id != tree.None; id = n.tree.Parent(id) {
		if i, ok := n.index[id]; ok {
			n.Cursor = i
			return
		}
	}
	n.Cursor = 0
}

func (n *Navigator) rebuild() {
	n.visible = Visible(n.tree, n.fold)
	n.index = make(map[tree.ID]int, len(n.visible))
	for i, id := range n.visible {
		n.index[id] = i
	}
	if n.Cursor >= len(n.visible) {
		n.Cursor = len(n.visible) - 1
	}
}

// Rebase carries the fold state and cursor over to a rebuilt tree, matching
// nodes by their path relative to the root.
func (n *Navigator) Rebase(next *tree.Tree) *Navigator {
	fold := NewFold(next)
	for _, id := range n.fold.Collapsed() {
		if match, ok := next.Lookup(n.tree.RelPath(id)); ok {
			fold.Collapse(match)
		}
	}
	out := &Navigator{tree: next, fold: fold, window: n.window}
	out.rebuild()
	for id := n.Focused(); id != tree.None; id = n.tree.Parent(id) {
		if match, ok := next.Lookup(n.tree.RelPath(id)); ok {
			out.refresh(match)
			break
		}
	}
	out.ViewportOffset = n.ViewportOffset
	out.EnsureCursorVisible(out.window)
	return out
}
