package tree

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"pgregory.net/rapid"
)

func entry(path string, dir bool) Entry {
	return Entry{Path: filepath.Join("root", filepath.FromSlash(path)), IsDir: dir}
}

func names(t *Tree, ids []ID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = t.Node(id).Name
	}
	return out
}

func TestBuildEmptyInputYieldsRootOnly(t *testing.T) {
	tr, err := Build("root", nil, DefaultSortOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.Len() != 1 {
		t.Fatalf("expected only the root, got %d nodes", tr.Len())
	}
	root := tr.Node(tr.Root())
	if root.Kind != Directory || root.Depth != 0 || root.Parent != None {
		t.Fatalf("unexpected root %#v", root)
	}
	if len(tr.Children(tr.Root())) != 0 {
		t.Fatalf("expected root without children")
	}
	if got := tr.Counts(); got != (Counts{}) {
		t.Fatalf("expected zero counts, got %#v", got)
	}
}

func TestBuildOrdersDirectoriesFirstCaseInsensitive(t *testing.T) {
	tr, err := Build("root", []Entry{
		entry("b.txt", false),
		entry("Zeta", true),
		entry("alpha", true),
		entry("A.txt", false),
		entry("a.txt", false),
		entry("C.md", false),
	}, DefaultSortOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := fmt.Sprint(names(tr, tr.Children(tr.Root())))
	want := "[alpha Zeta A.txt a.txt b.txt C.md]"
	if got != want {
		t.Fatalf("expected order %s, got %s", want, got)
	}
}

func TestBuildCaseSensitiveAndMixedOrdering(t *testing.T) {
	tr, err := Build("root", []Entry{
		entry("b", false),
		entry("B", true),
		entry("a", false),
	}, SortOptions{CaseSensitive: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := fmt.Sprint(names(tr, tr.Children(tr.Root())))
	if got != "[B a b]" {
		t.Fatalf("expected byte-wise order without dirs-first, got %s", got)
	}
}

func TestBuildAssignsDepthAndParents(t *testing.T) {
	tr, err := Build("root", []Entry{
		entry("dirA", true),
		entry("dirA/sub", true),
		entry("dirA/sub/deep.txt", false),
		entry("dirA/f1", false),
		entry("dirB", true),
	}, DefaultSortOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	deep, ok := tr.Lookup("dirA/sub/deep.txt")
	if !ok {
		t.Fatalf("expected lookup to find deep.txt")
	}
	node := tr.Node(deep)
	if node.Depth != 3 {
		t.Fatalf("expected depth 3, got %d", node.Depth)
	}
	if got := fmt.Sprint(names(tr, tr.Ancestors(deep))); got != "[root dirA sub]" {
		t.Fatalf("unexpected ancestors %s", got)
	}
	if tr.Path(deep) != filepath.Join("root", "dirA", "sub", "deep.txt") {
		t.Fatalf("unexpected path %q", tr.Path(deep))
	}
	if tr.RelPath(deep) != "dirA/sub/deep.txt" {
		t.Fatalf("unexpected rel path %q", tr.RelPath(deep))
	}
	dirB, _ := tr.Lookup("dirB")
	if !tr.IsLastChild(dirB) {
		t.Fatalf("expected dirB to be the last child of root")
	}
	dirA, _ := tr.Lookup("dirA")
	if tr.IsLastChild(dirA) {
		t.Fatalf("expected dirA to have a following sibling")
	}
	if got := tr.Counts(); got != (Counts{Dirs: 3, Files: 2}) {
		t.Fatalf("unexpected counts %#v", got)
	}
}

func TestBuildRejectsChildBeforeParent(t *testing.T) {
	tr, err := Build("root", []Entry{
		entry("dirA/f1", false),
		entry("dirA", true),
	}, DefaultSortOptions())
	if !errors.Is(err, ErrMalformedWalkOrder) {
		t.Fatalf("expected ErrMalformedWalkOrder, got %v", err)
	}
	if tr != nil {
		t.Fatalf("expected no tree on failure")
	}
}

func TestBuildRejectsChildOfFile(t *testing.T) {
	_, err := Build("root", []Entry{
		entry("file", false),
		entry("file/child", false),
	}, DefaultSortOptions())
	if !errors.Is(err, ErrMalformedWalkOrder) {
		t.Fatalf("expected ErrMalformedWalkOrder, got %v", err)
	}
}

func TestBuildRejectsPathsOutsideRoot(t *testing.T) {
	cases := []string{
		filepath.Join("elsewhere", "x"),
		filepath.Join("root", "..", "x"),
		"root",
	}
	for _, path := range cases {
		_, err := Build("root", []Entry{{Path: path}}, DefaultSortOptions())
		if !errors.Is(err, ErrPathEscapesRoot) {
			t.Fatalf("expected ErrPathEscapesRoot for %q, got %v", path, err)
		}
	}
}

func TestBuildRejectsDuplicates(t *testing.T) {
	_, err := Build("root", []Entry{entry("a", false), entry("a", false)}, DefaultSortOptions())
	if !errors.Is(err, ErrDuplicateEntry) {
		t.Fatalf("expected ErrDuplicateEntry, got %v", err)
	}
}

func TestBuildKinds(t *testing.T) {
	tr, err := Build("root", []Entry{
		{Path: filepath.Join("root", "link"), IsSymlink: true, Target: "elsewhere"},
		{Path: filepath.Join("root", "locked"), IsDir: true, Restricted: true},
		{Path: filepath.Join("root", "plain"), Restricted: true},
	}, DefaultSortOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	link, _ := tr.Lookup("link")
	if n := tr.Node(link); n.Kind != Symlink || n.Target != "elsewhere" {
		t.Fatalf("unexpected symlink node %#v", n)
	}
	locked, _ := tr.Lookup("locked")
	if !tr.Node(locked).Restricted {
		t.Fatalf("expected restricted directory")
	}
	plain, _ := tr.Lookup("plain")
	if tr.Node(plain).Restricted {
		t.Fatalf("restricted flag only applies to directories")
	}
}

// genEntries produces a parent-before-child walk of a random hierarchy.
func genEntries(t *rapid.T) []Entry {
	count := rapid.IntRange(0, 40).Draw(t, "count")
	dirs := []string{""}
	entries := make([]Entry, 0, count)
	for i := 0; i < count; i++ {
		parent := rapid.SampledFrom(dirs).Draw(t, "parent")
		isDir := rapid.Bool().Draw(t, "isDir")
		name := fmt.Sprintf("n%d", i)
		rel := name
		if parent != "" {
			rel = parent + "/" + name
		}
		if isDir {
			dirs = append(dirs, rel)
		}
		entries = append(entries, entry(rel, isDir))
	}
	return entries
}

func TestBuildStructuralInvariants(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		entries := genEntries(rt)
		tr, err := Build("root", entries, DefaultSortOptions())
		if err != nil {
			rt.Fatalf("unexpected error: %v", err)
		}
		if tr.Len() != len(entries)+1 {
			rt.Fatalf("expected %d nodes, got %d", len(entries)+1, tr.Len())
		}
		seen := map[ID]int{}
		for i := 0; i < tr.Len(); i++ {
			id := ID(i)
			node := tr.Node(id)
			if node.ID != id {
				rt.Fatalf("node %d reports id %d", i, node.ID)
			}
			if id == tr.Root() {
				if node.Depth != 0 || node.Parent != None {
					rt.Fatalf("bad root %#v", node)
				}
				continue
			}
			parent := tr.Node(node.Parent)
			if parent.Kind != Directory {
				rt.Fatalf("node %d has non-directory parent", id)
			}
			if node.Depth != parent.Depth+1 {
				rt.Fatalf("node %d depth %d, parent depth %d", id, node.Depth, parent.Depth)
			}
			for _, child := range node.Children {
				seen[child]++
			}
		}
		for _, child := range tr.Children(tr.Root()) {
			seen[child]++
		}
		for i := 1; i < tr.Len(); i++ {
			if seen[ID(i)] != 1 {
				rt.Fatalf("node %d listed %d times as a child", i, seen[ID(i)])
			}
		}
	})
}
