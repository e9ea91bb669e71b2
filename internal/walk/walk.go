// Package walk enumerates a directory hierarchy for tree construction. Reads
// run concurrently level by level, but entries are always returned depth
// first with every directory ahead of its descendants.
package walk

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/atomicstack/itree/internal/tree"
	ignore "github.com/sabhiram/go-gitignore"
	"github.com/sourcegraph/conc/pool"
)

var (
	ErrNotDirectory = errors.New("root is not a directory")
	ErrRootMissing  = errors.New("root does not exist")
)

var ignoreFileNames = []string{".gitignore", ".ignore"}

// Options mirrors the enumeration flags.
type Options struct {
	Hidden      bool
	NoIgnore    bool
	NoExclude   bool
	Custom      []string
	MaxDepth    int
	FollowLinks bool
	MaxFileSize uint64
	OnlyDirs    bool
	Workers     int
}

// Walker reads a directory hierarchy.
type Walker struct {
	opts Options
}

// New returns a walker for opts.
func New(opts Options) *Walker {
	return &Walker{opts: opts}
}

type matcher struct {
	base string
	gi   *ignore.GitIgnore
}

type dirTask struct {
	path     string
	depth    int
	matchers []matcher
	// chain holds the resolved paths of this directory and its ancestors.
	chain []string
}

type dirResult struct {
	children []tree.Entry
	err      error
}

// Walk enumerates root. Unreadable subdirectories are reported as restricted
// entries rather than errors; only problems with root itself fail the walk.
func (w *Walker) Walk(ctx context.Context, root string) ([]tree.Entry, error) {
	root = filepath.Clean(root)
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrRootMissing, root)
		}
		return nil, fmt.Errorf("stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, root)
	}

	results := make(map[string]*dirResult)
	var mu sync.Mutex
	level := []dirTask{{path: root, matchers: w.rootMatchers(root), chain: []string{resolve(root)}}}
	for len(level) > 0 {
		var next []dirTask
		p := pool.New().WithMaxGoroutines(w.workers()).WithContext(ctx)
		for _, task := range level {
			p.Go(func(ctx context.Context) error {
				if err := ctx.Err(); err != nil {
					return err
				}
				res, children := w.readDir(task)
				mu.Lock()
				results[task.path] = res
				next = append(next, children...)
				mu.Unlock()
				return nil
			})
		}
		if err := p.Wait(); err != nil {
			return nil, err
		}
		level = next
	}

	if res := results[root]; res != nil && res.err != nil {
		return nil, fmt.Errorf("read %s: %w", root, res.err)
	}
	out := make([]tree.Entry, 0, 64)
	return emit(out, root, results), nil
}

func emit(out []tree.Entry, dir string, results map[string]*dirResult) []tree.Entry {
	res := results[dir]
	if res == nil {
		return out
	}
	for _, child := range res.children {
		if child.IsDir {
			if sub, ok := results[child.Path]; ok && sub.err != nil {
				child.Restricted = true
			}
		}
		out = append(out, child)
		if child.IsDir {
			out = emit(out, child.Path, results)
		}
	}
	return out
}

func (w *Walker) workers() int {
	if w.opts.Workers > 0 {
		return w.opts.Workers
	}
	return runtime.GOMAXPROCS(0)
}

func (w *Walker) rootMatchers(root string) []matcher {
	var ms []matcher
	if len(w.opts.Custom) > 0 {
		ms = append(ms, matcher{base: root, gi: ignore.CompileIgnoreLines(w.opts.Custom...)})
	}
	if !w.opts.NoExclude {
		if gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".git", "info", "exclude")); err == nil {
			ms = append(ms, matcher{base: root, gi: gi})
		}
	}
	return ms
}

// dirMatchers extends inherited with the ignore files found in dir.
func (w *Walker) dirMatchers(dir string, inherited []matcher) []matcher {
	if w.opts.NoIgnore {
		return inherited
	}
	ms := inherited
	for _, name := range ignoreFileNames {
		gi, err := ignore.CompileIgnoreFile(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		if len(ms) == len(inherited) {
			ms = append(make([]matcher, 0, len(inherited)+2), inherited...)
		}
		ms = append(ms, matcher{base: dir, gi: gi})
	}
	return ms
}

func ignored(ms []matcher, path string, isDir bool) bool {
	for _, m := range ms {
		rel, err := filepath.Rel(m.base, path)
		if err != nil || strings.HasPrefix(rel, "..") {
			continue
		}
		rel = filepath.ToSlash(rel)
		if m.gi.MatchesPath(rel) {
			return true
		}
		if isDir && m.gi.MatchesPath(rel+"/") {
			return true
		}
	}
	return false
}

func (w *Walker) readDir(task dirTask) (*dirResult, []dirTask) {
	dirents, err := os.ReadDir(task.path)
	if err != nil {
		return &dirResult{err: err}, nil
	}
	matchers := w.dirMatchers(task.path, task.matchers)
	depth := task.depth + 1
	res := &dirResult{children: make([]tree.Entry, 0, len(dirents))}
	var subdirs []dirTask
	for _, de := range dirents {
		name := de.Name()
		if !w.opts.Hidden && strings.HasPrefix(name, ".") {
			continue
		}
		path := filepath.Join(task.path, name)
		entry, ok := w.classify(path, de)
		if !ok || ignored(matchers, path, entry.IsDir) {
			continue
		}
		if w.opts.OnlyDirs && !entry.IsDir {
			continue
		}
		res.children = append(res.children, entry)
		if !entry.IsDir || (w.opts.MaxDepth > 0 && depth >= w.opts.MaxDepth) {
			continue
		}
		chain := task.chain
		if w.opts.FollowLinks {
			resolved := resolve(path)
			if slices.Contains(task.chain, resolved) {
				continue
			}
			chain = append(slices.Clip(task.chain), resolved)
		}
		subdirs = append(subdirs, dirTask{path: path, depth: depth, matchers: matchers, chain: chain})
	}
	return res, subdirs
}

// classify turns a directory entry into a tree entry. ok is false when the
// entry is filtered out entirely.
func (w *Walker) classify(path string, de fs.DirEntry) (tree.Entry, bool) {
	entry := tree.Entry{Path: path}
	switch {
	case de.Type()&fs.ModeSymlink != 0:
		entry.IsSymlink = true
		entry.Target, _ = os.Readlink(path)
		if !w.opts.FollowLinks {
			return entry, true
		}
		info, err := os.Stat(path)
		if err != nil {
			return entry, true
		}
		if info.IsDir() {
			entry.IsDir = true
			return entry, true
		}
		return w.sized(entry, info.Size())
	case de.IsDir():
		entry.IsDir = true
		return entry, true
	default:
		info, err := de.Info()
		if err != nil {
			return entry, true
		}
		return w.sized(entry, info.Size())
	}
}

func (w *Walker) sized(entry tree.Entry, size int64) (tree.Entry, bool) {
	entry.Size = size
	if w.opts.MaxFileSize > 0 && uint64(size) > w.opts.MaxFileSize {
		return entry, false
	}
	return entry, true
}

func resolve(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved
	}
	return path
}
