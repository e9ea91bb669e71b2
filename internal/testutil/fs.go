package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteTree materialises paths below root. Paths ending in "/" become
// directories; everything else becomes a file containing its own name.
func WriteTree(t *testing.T, root string, paths ...string) {
	t.Helper()
	for _, p := range paths {
		full := filepath.Join(root, filepath.FromSlash(strings.TrimSuffix(p, "/")))
		if strings.HasSuffix(p, "/") {
			if err := os.MkdirAll(full, 0o755); err != nil {
				t.Fatalf("mkdir %s: %v", full, err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", filepath.Dir(full), err)
		}
		if err := os.WriteFile(full, []byte(filepath.Base(full)), 0o644); err != nil {
			t.Fatalf("write %s: %v", full, err)
		}
	}
}

// FixtureTree creates a fresh temporary directory populated by WriteTree.
func FixtureTree(t *testing.T, paths ...string) string {
	t.Helper()
	root := t.TempDir()
	WriteTree(t, root, paths...)
	return root
}
