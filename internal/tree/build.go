package tree

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

var (
	// ErrMalformedWalkOrder is returned when an entry arrives before its parent directory.
	ErrMalformedWalkOrder = errors.New("malformed walk order")
	// ErrPathEscapesRoot is returned for entries that are not strict descendants of the root.
	ErrPathEscapesRoot = errors.New("path escapes root")
	// ErrDuplicateEntry is returned when the same path is reported twice.
	ErrDuplicateEntry = errors.New("duplicate entry")
)

// Entry is one record produced by a walker.
type Entry struct {
	Path       string
	IsDir      bool
	IsSymlink  bool
	Target     string
	Restricted bool
	Size       int64
}

// SortOptions controls the display order of siblings.
type SortOptions struct {
	CaseSensitive bool
	DirsFirst     bool
}

// DefaultSortOptions orders directories before files, case-insensitively.
func DefaultSortOptions() SortOptions {
	return SortOptions{DirsFirst: true}
}

// Build constructs a tree rooted at root from walker entries. Entries must
// list every directory before its descendants. No tree is returned on error.
func Build(root string, entries []Entry, opts SortOptions) (*Tree, error) {
	cleanRoot := filepath.Clean(root)
	t := &Tree{
		root: cleanRoot,
		nodes: []Node{{
			ID:     0,
			Name:   cleanRoot,
			Kind:   Directory,
			Parent: None,
		}},
		rels:  []string{"."},
		index: map[string]ID{".": 0},
	}

	for _, entry := range entries {
		rel, err := relativeTo(cleanRoot, entry.Path)
		if err != nil {
			return nil, err
		}
		if _, dup := t.index[rel]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateEntry, entry.Path)
		}
		parent, ok := t.index[parentOf(rel)]
		if !ok || t.nodes[parent].Kind != Directory {
			return nil, fmt.Errorf("%w: %s arrived before its parent directory", ErrMalformedWalkOrder, entry.Path)
		}

		id := ID(len(t.nodes))
		node := Node{
			ID:     id,
			Name:   baseOf(rel),
			Kind:   kindOf(entry),
			Parent: parent,
			Depth:  t.nodes[parent].Depth + 1,
			Target: entry.Target,
			Size:   entry.Size,
		}
		if node.Kind == Directory {
			node.Restricted = entry.Restricted
			t.dirs++
		} else {
			t.files++
		}
		t.nodes = append(t.nodes, node)
		t.rels = append(t.rels, rel)
		t.index[rel] = id
		t.nodes[parent].Children = append(t.nodes[parent].Children, id)
	}

	for i := range t.nodes {
		if len(t.nodes[i].Children) > 1 {
			t.sortChildren(ID(i), opts)
		}
	}
	return t, nil
}

func (t *Tree) sortChildren(id ID, opts SortOptions) {
	slices.SortStableFunc(t.nodes[id].Children, func(a, b ID) int {
		return opts.compare(&t.nodes[a], &t.nodes[b])
	})
}

func (o SortOptions) compare(a, b *Node) int {
	if o.DirsFirst {
		ad, bd := a.Kind == Directory, b.Kind == Directory
		if ad != bd {
			if ad {
				return -1
			}
			return 1
		}
	}
	if !o.CaseSensitive {
		if c := strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
			return c
		}
	}
	return strings.Compare(a.Name, b.Name)
}

func kindOf(entry Entry) Kind {
	switch {
	case entry.IsDir:
		return Directory
	case entry.IsSymlink:
		return Symlink
	default:
		return File
	}
}

// relativeTo returns the slash-separated path of p below root.
func relativeTo(root, p string) (string, error) {
	rel, err := filepath.Rel(root, filepath.Clean(p))
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrPathEscapesRoot, p, err)
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s is not below %s", ErrPathEscapesRoot, p, root)
	}
	return filepath.ToSlash(rel), nil
}

func parentOf(rel string) string {
	idx := strings.LastIndexByte(rel, '/')
	if idx < 0 {
		return "."
	}
	return rel[:idx]
}

func baseOf(rel string) string {
	return rel[strings.LastIndexByte(rel, '/')+1:]
}
