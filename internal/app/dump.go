package app

import (
	"io"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/atomicstack/itree/internal/tree"
)

type dumpNode struct {
	Name     string     `json:"name" yaml:"name"`
	Type     string     `json:"type" yaml:"type"`
	Target   string     `json:"target,omitempty" yaml:"target,omitempty"`
	Size     int64      `json:"size,omitempty" yaml:"size,omitempty"`
	Error    string     `json:"error,omitempty" yaml:"error,omitempty"`
	Contents []dumpNode `json:"contents,omitempty" yaml:"contents,omitempty"`
}

type dump struct {
	Root   dumpNode    `json:"root" yaml:"root"`
	Report tree.Counts `json:"report" yaml:"report"`
}

func newDump(t *tree.Tree) dump {
	return dump{Root: dumpOf(t, t.Root()), Report: t.Counts()}
}

func dumpOf(t *tree.Tree, id tree.ID) dumpNode {
	node := t.Node(id)
	out := dumpNode{Name: node.Name, Type: node.Kind.String(), Target: node.Target}
	if node.Kind != tree.Directory {
		out.Size = node.Size
	}
	if node.Restricted {
		out.Error = "error opening dir"
	}
	for _, child := range node.Children {
		out.Contents = append(out.Contents, dumpOf(t, child))
	}
	return out
}

func writeJSON(w io.Writer, t *tree.Tree) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(newDump(t))
}

func writeYAML(w io.Writer, t *tree.Tree) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(newDump(t)); err != nil {
		return err
	}
	return enc.Close()
}
