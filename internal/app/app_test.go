package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/atomicstack/itree/internal/testutil"
	"github.com/atomicstack/itree/internal/tree"
	"github.com/atomicstack/itree/internal/walk"
)

func fixtureConfig(t *testing.T) Config {
	t.Helper()
	root := testutil.FixtureTree(t, "src/main.go", "src/util/strings.go", "README.md", "build/out.bin")
	require.NoError(t, os.WriteFile(filepath.Join(root, ".gitignore"), []byte("build/\n"), 0o644))
	return Config{
		Root:   root,
		Sort:   tree.DefaultSortOptions(),
		Format: FormatText,
	}
}

func TestRunPrintsTreeWhenNotInteractive(t *testing.T) {
	cfg := fixtureConfig(t)
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), cfg, &out, false))

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Equal(t, []string{
		filepath.Clean(cfg.Root),
		"├── src/",
		"│   ├── util/",
		"│   │   └── strings.go",
		"│   └── main.go",
		"└── README.md",
		"",
		"2 directories, 3 files",
	}, lines)
}

func TestRunNoInteractOnTerminal(t *testing.T) {
	cfg := fixtureConfig(t)
	cfg.NoInteract = true
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), cfg, &out, true))
	require.Contains(t, out.String(), "2 directories, 3 files")
}

func TestRunQuietPrintsSummaryOnly(t *testing.T) {
	cfg := fixtureConfig(t)
	cfg.Quiet = true
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), cfg, &out, true))
	require.Equal(t, "2 directories, 3 files\n", out.String())
}

func TestRunJSONDump(t *testing.T) {
	cfg := fixtureConfig(t)
	cfg.Format = FormatJSON
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), cfg, &out, true))

	var got dump
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	require.Equal(t, tree.Counts{Dirs: 2, Files: 3}, got.Report)
	require.Equal(t, "directory", got.Root.Type)
	require.Len(t, got.Root.Contents, 2)
	src := got.Root.Contents[0]
	require.Equal(t, "src", src.Name)
	require.Equal(t, "util", src.Contents[0].Name)
	require.Equal(t, "main.go", src.Contents[1].Name)
	require.Equal(t, int64(len("main.go")), src.Contents[1].Size)
}

func TestRunYAMLDump(t *testing.T) {
	cfg := fixtureConfig(t)
	cfg.Format = FormatYAML
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), cfg, &out, false))

	var got dump
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &got))
	require.Equal(t, 3, got.Report.Files)
	require.Equal(t, "README.md", got.Root.Contents[1].Name)
	require.Equal(t, "file", got.Root.Contents[1].Type)
}

func TestRunHonoursWalkOptions(t *testing.T) {
	cfg := fixtureConfig(t)
	cfg.Walk = walk.Options{NoIgnore: true, OnlyDirs: true}
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), cfg, &out, false))
	require.Contains(t, out.String(), "build/")
	require.Contains(t, out.String(), "3 directories, 0 files")
}

func TestRunMissingRoot(t *testing.T) {
	cfg := Config{Root: filepath.Join(t.TempDir(), "missing"), Format: FormatText}
	err := run(context.Background(), cfg, &bytes.Buffer{}, false)
	require.ErrorIs(t, err, walk.ErrRootMissing)
}

func TestWatchDirsSkipsFilesAndHonoursLimit(t *testing.T) {
	cfg := fixtureConfig(t)
	tr, err := load(context.Background(), cfg)
	require.NoError(t, err)

	root := filepath.Clean(cfg.Root)
	require.Equal(t, []string{
		root,
		filepath.Join(root, "src"),
		filepath.Join(root, "src", "util"),
	}, watchDirs(tr, 10))
	require.Len(t, watchDirs(tr, 2), 2)
}
