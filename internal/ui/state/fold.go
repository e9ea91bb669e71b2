package state

import (
	"errors"
	"slices"

	"github.com/atomicstack/itree/internal/tree"
)

// ErrNotFoldable is reported when a fold is requested on something that
// cannot be collapsed: files, symlinks and the root.
var ErrNotFoldable = errors.New("node is not foldable")

// Fold is the set of collapsed directories. Absence means expanded.
// Only directory ids other than the root are ever stored.
type Fold struct {
	tree      *tree.Tree
	collapsed map[tree.ID]struct{}
}

// NewFold returns a fold state with every directory expanded.
func NewFold(t *tree.Tree) *Fold {
	return &Fold{tree: t, collapsed: make(map[tree.ID]struct{})}
}

// IsCollapsed reports whether id is collapsed.
func (f *Fold) IsCollapsed(id tree.ID) bool {
	_, ok := f.collapsed[id]
	return ok
}

// Len returns the number of collapsed directories.
func (f *Fold) Len() int {
	return len(f.collapsed)
}

// Collapsed returns the collapsed ids in ascending order.
func (f *Fold) Collapsed() []tree.ID {
	ids := make([]tree.ID, 0, len(f.collapsed))
	for id := range f.collapsed {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (f *Fold) foldable(id tree.ID) bool {
	return f.tree.Valid(id) && id != f.tree.Root() && f.tree.Node(id).Kind == tree.Directory
}

// Toggle flips the fold of a directory.
func (f *Fold) Toggle(id tree.ID) error {
	if !f.foldable(id) {
		return ErrNotFoldable
	}
	if f.IsCollapsed(id) {
		delete(f.collapsed, id)
	} else {
		f.collapsed[id] = struct{}{}
	}
	return nil
}

// Collapse folds id and reports whether anything changed.
func (f *Fold) Collapse(id tree.ID) bool {
	if !f.foldable(id) || f.IsCollapsed(id) {
		return false
	}
	f.collapsed[id] = struct{}{}
	return true
}

// Expand unfolds id and reports whether anything changed.
func (f *Fold) Expand(id tree.ID) bool {
	if !f.IsCollapsed(id) {
		return false
	}
	delete(f.collapsed, id)
	return true
}

// ExpandAncestors unfolds every ancestor of id so that it becomes visible.
func (f *Fold) ExpandAncestors(id tree.ID) bool {
	if !f.tree.Valid(id) {
		return false
	}
	changed := false
	for p := f.tree.Parent(id); p != tree.None; p = f.tree.Parent(p) {
		if f.Expand(p) {
			changed = true
		}
	}
	return changed
}

// CollapseBeyond folds every directory at depth >= depth. A depth of zero
// or less leaves everything expanded.
func (f *Fold) CollapseBeyond(depth int) {
	if depth <= 0 {
		return
	}
	for i := 0; i < f.tree.Len(); i++ {
		id := tree.ID(i)
		if f.tree.Node(id).Depth >= depth {
			f.Collapse(id)
		}
	}
}

// Visible flattens t depth-first, skipping the descendants of collapsed
// directories. The root is always the first element.
func Visible(t *tree.Tree, fold *Fold) []tree.ID {
	out := make([]tree.ID, 0, t.Len())
	stack := []tree.ID{t.Root()}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, id)
		if fold != nil && fold.IsCollapsed(id) {
			continue
		}
		children := t.Children(id)
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
	return out
}
