// Package treeview projects a tree, its fold state and a cursor into display
// lines. Rendering is pure: identical inputs always give identical lines.
package treeview

import (
	"fmt"
	"io"
	"strings"

	"github.com/atomicstack/itree/internal/tree"
)

const (
	MidBranch  = "├── "
	EndBranch  = "└── "
	BarIndent  = "│   "
	Blank      = "    "
	DirMarker  = "/"
	FoldMark   = "*"
	LinkMark   = " -> "
	Restricted = " [error opening dir]"
)

// Style tags a span of a rendered line.
type Style int

const (
	StylePlain Style = iota
	StyleGuide
	StyleRoot
	StyleDirectory
	StyleSymlink
	StyleRestricted
	StyleFoldMark
)

// Span covers Text[Start:End] in bytes.
type Span struct {
	Start int
	End   int
	Style Style
}

// Line is one rendered row.
type Line struct {
	Node    tree.ID
	Text    string
	Spans   []Span
	Focused bool
}

// FoldState is the read side of the fold set.
type FoldState interface {
	IsCollapsed(id tree.ID) bool
}

type expanded struct{}

func (expanded) IsCollapsed(tree.ID) bool { return false }

// Options controls cursor highlighting. Cursor is ignored unless Interactive.
type Options struct {
	Cursor      tree.ID
	Interactive bool
}

// Render produces one line per visible node, root first. A nil fold renders
// every directory expanded.
func Render(t *tree.Tree, fold FoldState, opts Options) []Line {
	if fold == nil {
		fold = expanded{}
	}
	lines := make([]Line, 0, t.Len())
	// guides[d] is the indent contributed by the ancestor at depth d+1.
	guides := make([]string, 0, 8)
	var walk func(id tree.ID)
	walk = func(id tree.ID) {
		lines = append(lines, renderLine(t, fold, id, guides, opts))
		if fold.IsCollapsed(id) {
			return
		}
		node := t.Node(id)
		if node.Depth > 0 {
			if t.IsLastChild(id) {
				guides = append(guides, Blank)
			} else {
				guides = append(guides, BarIndent)
			}
		}
		for _, child := range node.Children {
			walk(child)
		}
		if node.Depth > 0 {
			guides = guides[:len(guides)-1]
		}
	}
	walk(t.Root())
	return lines
}

func renderLine(t *tree.Tree, fold FoldState, id tree.ID, guides []string, opts Options) Line {
	node := t.Node(id)
	var b strings.Builder
	var spans []Span
	add := func(text string, style Style) {
		if text == "" {
			return
		}
		start := b.Len()
		b.WriteString(text)
		spans = append(spans, Span{Start: start, End: b.Len(), Style: style})
	}

	if node.Depth == 0 {
		add(node.Name, StyleRoot)
	} else {
		branch := MidBranch
		if t.IsLastChild(id) {
			branch = EndBranch
		}
		add(strings.Join(guides, "")+branch, StyleGuide)
		switch node.Kind {
		case tree.Directory:
			add(node.Name+DirMarker, StyleDirectory)
			if node.Target != "" {
				add(LinkMark+node.Target, StyleSymlink)
			}
			if node.Restricted {
				add(Restricted, StyleRestricted)
			} else if fold.IsCollapsed(id) && len(node.Children) > 0 {
				add(FoldMark, StyleFoldMark)
			}
		case tree.Symlink:
			add(node.Name, StyleSymlink)
			add(LinkMark+node.Target, StyleSymlink)
		default:
			add(node.Name, StylePlain)
		}
	}
	return Line{
		Node:    id,
		Text:    b.String(),
		Spans:   spans,
		Focused: opts.Interactive && opts.Cursor == id,
	}
}

// Window returns at most height lines starting at offset. A height of zero or
// less returns everything from offset.
func Window(lines []Line, offset, height int) []Line {
	if offset < 0 {
		offset = 0
	}
	if offset > len(lines) {
		offset = len(lines)
	}
	end := len(lines)
	if height > 0 && offset+height < end {
		end = offset + height
	}
	return lines[offset:end]
}

// Summary formats directory and file totals.
func Summary(c tree.Counts) string {
	return fmt.Sprintf("%d %s, %d %s",
		c.Dirs, plural(c.Dirs, "directory", "directories"),
		c.Files, plural(c.Files, "file", "files"))
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// Print writes the fully expanded tree without a cursor, then the summary.
func Print(w io.Writer, t *tree.Tree) error {
	for _, line := range Render(t, nil, Options{}) {
		if _, err := fmt.Fprintln(w, line.Text); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "\n%s\n", Summary(t.Counts()))
	return err
}
