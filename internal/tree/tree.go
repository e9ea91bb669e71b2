package tree

import "path/filepath"

// ID identifies a node within a Tree. IDs are arena indices and are never reused.
type ID int

// None marks the absent parent of the root.
const None ID = -1

// Kind is the closed set of entry variants.
type Kind int

const (
	File Kind = iota
	Directory
	Symlink
)

func (k Kind) String() string {
	switch k {
	case Directory:
		return "directory"
	case Symlink:
		return "symlink"
	default:
		return "file"
	}
}

// Node is one filesystem entry. Children is only populated for directories
// and is already in display order.
type Node struct {
	ID         ID
	Name       string
	Kind       Kind
	Parent     ID
	Children   []ID
	Depth      int
	Target     string
	Restricted bool
	Size       int64
}

// IsDir reports whether the node can hold children.
func (n Node) IsDir() bool {
	return n.Kind == Directory
}

// Tree is an immutable arena of nodes rooted at ID 0.
type Tree struct {
	root  string
	nodes []Node
	rels  []string
	index map[string]ID
	dirs  int
	files int
}

// Root returns the root node ID.
func (t *Tree) Root() ID {
	return 0
}

// RootPath returns the directory the tree was built from.
func (t *Tree) RootPath() string {
	return t.root
}

// Len returns the number of nodes including the root.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Node returns a copy of the node with the given id.
func (t *Tree) Node(id ID) Node {
	return t.nodes[id]
}

// Valid reports whether id refers to a node of t.
func (t *Tree) Valid(id ID) bool {
	return id >= 0 && int(id) < len(t.nodes)
}

// Children returns the ordered children of id. The slice must not be modified.
func (t *Tree) Children(id ID) []ID {
	return t.nodes[id].Children
}

// Parent returns the parent of id, or None for the root.
func (t *Tree) Parent(id ID) ID {
	return t.nodes[id].Parent
}

// IsLastChild reports whether id is the final child of its parent. The root
// counts as a last child.
func (t *Tree) IsLastChild(id ID) bool {
	parent := t.nodes[id].Parent
	if parent == None {
		return true
	}
	siblings := t.nodes[parent].Children
	return len(siblings) > 0 && siblings[len(siblings)-1] == id
}

// Ancestors returns the chain from the root down to the parent of id.
func (t *Tree) Ancestors(id ID) []ID {
	depth := t.nodes[id].Depth
	if depth == 0 {
		return nil
	}
	chain := make([]ID, depth)
	for p := t.nodes[id].Parent; p != None; p = t.nodes[p].Parent {
		depth--
		chain[depth] = p
	}
	return chain
}

// RelPath returns the slash-separated path of id relative to the root.
// The root itself is ".".
func (t *Tree) RelPath(id ID) string {
	return t.rels[id]
}

// Path returns the filesystem path of id joined onto the root.
func (t *Tree) Path(id ID) string {
	if id == t.Root() {
		return t.root
	}
	return filepath.Join(t.root, filepath.FromSlash(t.rels[id]))
}

// Lookup finds a node by its path relative to the root.
func (t *Tree) Lookup(rel string) (ID, bool) {
	key := filepath.ToSlash(filepath.Clean(rel))
	id, ok := t.index[key]
	return id, ok
}

// Counts returns the number of directories and non-directory entries below
// the root. Symlinks count as files.
func (t *Tree) Counts() Counts {
	return Counts{Dirs: t.dirs, Files: t.files}
}

// Counts summarises the entries of a tree.
type Counts struct {
	Dirs  int `json:"directories" yaml:"directories"`
	Files int `json:"files" yaml:"files"`
}
