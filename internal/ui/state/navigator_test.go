package state

import (
	"errors"
	"testing"

	"github.com/atomicstack/itree/internal/tree"
)

func scenarioTree(t *testing.T) *tree.Tree {
	return buildTree(t, "dirA/", "dirA/f1", "dirA/f2", "dirB/")
}

func lookup(t *testing.T, tr *tree.Tree, rel string) tree.ID {
	t.Helper()
	id, ok := tr.Lookup(rel)
	if !ok {
		t.Fatalf("missing %s", rel)
	}
	return id
}

func visibleNames(n *Navigator) []string {
	out := make([]string, 0, n.Len())
	for _, id := range n.Visible() {
		out = append(out, n.Tree().Node(id).Name)
	}
	return out
}

func collapsedAtDepthOne(t *testing.T) *Navigator {
	tr := scenarioTree(t)
	fold := NewFold(tr)
	fold.CollapseBeyond(1)
	return NewNavigator(tr, fold)
}

func TestNewNavigatorStartsOnFirstChild(t *testing.T) {
	n := NewNavigator(scenarioTree(t), nil)
	if n.Cursor != 1 {
		t.Fatalf("expected cursor on first child, got %d", n.Cursor)
	}
	if got := n.Tree().Node(n.Focused()).Name; got != "dirA" {
		t.Fatalf("expected dirA focused, got %s", got)
	}

	empty := NewNavigator(buildTree(t), nil)
	if empty.Focused() != empty.Tree().Root() {
		t.Fatalf("expected root focused for an empty tree")
	}
}

func TestToggleFoldRevealsChildren(t *testing.T) {
	n := collapsedAtDepthOne(t)
	if got := visibleNames(n); len(got) != 3 || got[1] != "dirA" || got[2] != "dirB" {
		t.Fatalf("unexpected initial visible sequence %v", got)
	}
	out := n.Apply(ToggleFold)
	if !out.FoldChanged || out.Err != nil {
		t.Fatalf("expected fold change, got %#v", out)
	}
	want := []string{"root", "dirA", "f1", "f2", "dirB"}
	got := visibleNames(n)
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestMoveRightExpandsThenDescends(t *testing.T) {
	n := collapsedAtDepthOne(t)
	dirA := lookup(t, n.Tree(), "dirA")

	out := n.Apply(MoveRight)
	if !out.FoldChanged || out.Moved {
		t.Fatalf("expected expansion without movement, got %#v", out)
	}
	if n.Focused() != dirA {
		t.Fatalf("expected cursor to stay on dirA")
	}
	if n.Fold().IsCollapsed(dirA) {
		t.Fatalf("expected dirA expanded")
	}

	out = n.Apply(MoveRight)
	if !out.Moved || out.FoldChanged {
		t.Fatalf("expected movement into dirA, got %#v", out)
	}
	if n.Focused() != lookup(t, n.Tree(), "dirA/f1") {
		t.Fatalf("expected cursor on f1")
	}
}

func TestMoveLeftReturnsToParentAndCollapses(t *testing.T) {
	n := NewNavigator(scenarioTree(t), nil)
	dirA := lookup(t, n.Tree(), "dirA")
	n.Focus(lookup(t, n.Tree(), "dirA/f1"))

	out := n.Apply(MoveLeft)
	if !out.Moved || !out.FoldChanged {
		t.Fatalf("expected move and fold change, got %#v", out)
	}
	if n.Focused() != dirA {
		t.Fatalf("expected cursor on dirA")
	}
	if !n.Fold().IsCollapsed(dirA) {
		t.Fatalf("expected dirA collapsed")
	}
	for _, name := range visibleNames(n) {
		if name == "f1" || name == "f2" {
			t.Fatalf("expected children hidden, got %v", visibleNames(n))
		}
	}
}

func TestMoveLeftToRootNeverCollapsesRoot(t *testing.T) {
	n := NewNavigator(scenarioTree(t), nil)
	out := n.Apply(MoveLeft)
	if !out.Moved || out.FoldChanged {
		t.Fatalf("expected plain move to root, got %#v", out)
	}
	if n.Focused() != n.Tree().Root() {
		t.Fatalf("expected root focused")
	}
	if n.Fold().IsCollapsed(n.Tree().Root()) {
		t.Fatalf("root must never be collapsed")
	}
	if out := n.Apply(MoveLeft); out.Moved || out.FoldChanged || out.Err != nil {
		t.Fatalf("expected move-left on root to be a no-op, got %#v", out)
	}
}

func TestNoOpTransitions(t *testing.T) {
	n := NewNavigator(scenarioTree(t), nil)

	n.Cursor = 0
	if out := n.Apply(CursorUp); out.Moved || n.Cursor != 0 {
		t.Fatalf("expected cursor-up at top to clamp, cursor %d", n.Cursor)
	}
	n.Cursor = n.Len() - 1
	if out := n.Apply(CursorDown); out.Moved || n.Cursor != n.Len()-1 {
		t.Fatalf("expected cursor-down at bottom to clamp, cursor %d", n.Cursor)
	}

	dirB := lookup(t, n.Tree(), "dirB")
	if n.Focused() != dirB {
		t.Fatalf("expected dirB last")
	}
	if out := n.Apply(MoveRight); out.Moved || out.FoldChanged {
		t.Fatalf("expected move-right on empty expanded dir to be a no-op, got %#v", out)
	}

	n.Focus(lookup(t, n.Tree(), "dirA/f2"))
	if out := n.Apply(MoveRight); out.Moved || out.FoldChanged {
		t.Fatalf("expected move-right on a file to be a no-op, got %#v", out)
	}
}

func TestToggleFoldOnFileReportsNotFoldable(t *testing.T) {
	n := NewNavigator(scenarioTree(t), nil)
	n.Focus(lookup(t, n.Tree(), "dirA/f1"))
	before := n.Cursor
	out := n.Apply(ToggleFold)
	if !errors.Is(out.Err, ErrNotFoldable) {
		t.Fatalf("expected ErrNotFoldable, got %v", out.Err)
	}
	if out.FoldChanged || out.Moved || n.Cursor != before {
		t.Fatalf("expected no state change, got %#v", out)
	}

	n.Cursor = 0
	if out := n.Apply(ToggleFold); !errors.Is(out.Err, ErrNotFoldable) {
		t.Fatalf("expected root toggle to be rejected, got %v", out.Err)
	}
}

func TestEmptyDirectoryAcceptsToggle(t *testing.T) {
	n := NewNavigator(scenarioTree(t), nil)
	n.Focus(lookup(t, n.Tree(), "dirB"))
	before := n.Len()
	if out := n.Apply(ToggleFold); out.Err != nil || !out.FoldChanged {
		t.Fatalf("expected toggle on empty directory, got %#v", out)
	}
	if n.Len() != before {
		t.Fatalf("expected visible length unchanged, got %d", n.Len())
	}
}

func TestQuitEvent(t *testing.T) {
	n := NewNavigator(scenarioTree(t), nil)
	if out := n.Apply(Quit); !out.Quit {
		t.Fatalf("expected quit outcome")
	}
}

func TestFocusExpandsAncestors(t *testing.T) {
	tr := buildTree(t, "a/", "a/b/", "a/b/c.txt")
	fold := NewFold(tr)
	fold.CollapseBeyond(1)
	n := NewNavigator(tr, fold)
	target := lookup(t, tr, "a/b/c.txt")
	if n.IndexOf(target) != -1 {
		t.Fatalf("expected target hidden initially")
	}
	if !n.Focus(target) {
		t.Fatalf("expected focus to succeed")
	}
	if n.Focused() != target {
		t.Fatalf("expected cursor on target")
	}
	if fold.Len() != 0 {
		t.Fatalf("expected ancestors expanded, still collapsed: %v", fold.Collapsed())
	}
}

func TestRefreshRelocatesToVisibleAncestor(t *testing.T) {
	n := NewNavigator(scenarioTree(t), nil)
	dirA := lookup(t, n.Tree(), "dirA")
	n.Focus(lookup(t, n.Tree(), "dirA/f2"))
	n.Fold().Collapse(dirA)
	n.Refresh()
	if n.Focused() != dirA {
		t.Fatalf("expected cursor relocated to dirA, got %s", n.Tree().Node(n.Focused()).Name)
	}
}

func TestRebaseKeepsFoldAndCursorByPath(t *testing.T) {
	n := NewNavigator(buildTree(t, "a/", "a/x", "b/", "b/y"), nil)
	n.Fold().Collapse(lookup(t, n.Tree(), "a"))
	n.Refresh()
	n.Focus(lookup(t, n.Tree(), "b/y"))

	next := buildTree(t, "a/", "a/x", "b/", "b/new", "b/y")
	rebased := n.Rebase(next)
	if !rebased.Fold().IsCollapsed(lookup(t, next, "a")) {
		t.Fatalf("expected a to stay collapsed")
	}
	if rebased.Focused() != lookup(t, next, "b/y") {
		t.Fatalf("expected cursor to follow b/y")
	}

	gone := buildTree(t, "a/", "a/x", "b/")
	rebased = n.Rebase(gone)
	if rebased.Focused() != lookup(t, gone, "b") {
		t.Fatalf("expected cursor on nearest surviving ancestor")
	}
}

func TestEventString(t *testing.T) {
	if MoveLeft.String() != "move-left" {
		t.Fatalf("unexpected name %q", MoveLeft.String())
	}
	if Event(99).String() != "unknown" {
		t.Fatalf("expected unknown for out-of-range event")
	}
}
