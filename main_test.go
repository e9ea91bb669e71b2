package main

import (
	"os"
	"os/exec"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/atomicstack/itree/internal/app"
	"github.com/atomicstack/itree/internal/config"
	"github.com/atomicstack/itree/internal/testutil"
	"github.com/atomicstack/itree/internal/walk"
)

func TestCollectTTYDetailsIncludesStandardDescriptors(t *testing.T) {
	info := collectTTYDetails()
	if len(info.Probes) != 3 {
		t.Fatalf("expected 3 probe entries, got %d", len(info.Probes))
	}
	expected := []string{"stdin", "stdout", "stderr"}
	for i, name := range expected {
		if info.Probes[i].Name != name {
			t.Fatalf("expected probe %d name %q, got %q", i, name, info.Probes[i].Name)
		}
	}
}

func TestStartupTracePayloadIncludesFlags(t *testing.T) {
	cfg := config.Config{
		App: app.Config{
			Root:       "src",
			Walk:       walk.Options{MaxDepth: 2, Custom: []string{"*.log"}},
			Width:      80,
			Height:     24,
			ShowFooter: true,
			Format:     app.FormatText,
		},
		Logging: config.Logging{
			FilePath: "trace.log",
			Trace:    true,
		},
		Flags: map[string]string{
			"max-level": "2",
			"width":     "80",
			"height":    "24",
			"footer":    "true",
			"ignore":    "*.log",
		},
		Args: []string{"-L", "2", "src"},
	}

	payload := startupTracePayload(cfg)

	flagsValue, ok := payload["flags"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected flags map in payload")
	}
	if flagsValue["max-level"] != "2" {
		t.Fatalf("expected max-level 2, got %v", flagsValue["max-level"])
	}
	if flagsValue["width"] != "80" {
		t.Fatalf("expected width 80, got %v", flagsValue["width"])
	}
	if flagsValue["height"] != "24" {
		t.Fatalf("expected height 24, got %v", flagsValue["height"])
	}
	if flagsValue["footer"] != "true" {
		t.Fatalf("expected footer flag true, got %v", flagsValue["footer"])
	}
	if flagsValue["ignore"] != "*.log" {
		t.Fatalf("expected ignore patterns, got %v", flagsValue["ignore"])
	}
	if flagsValue["trace"] != true {
		t.Fatalf("expected trace flag true, got %v", flagsValue["trace"])
	}
	if flagsValue["logFile"] != "trace.log" {
		t.Fatalf("expected log file trace.log, got %v", flagsValue["logFile"])
	}

	if _, ok := payload["tty"].(ttyDetails); !ok {
		t.Fatalf("expected tty details in payload")
	}
	if cfgValue, ok := payload["config"].(config.Config); !ok {
		t.Fatalf("expected config in payload")
	} else if !reflect.DeepEqual(cfgValue.App, cfg.App) {
		t.Fatalf("expected app config %#v, got %#v", cfg.App, cfgValue.App)
	}
}

func TestBinaryPrintsTreeWithoutInteraction(t *testing.T) {
	bin := testutil.BuildBinary(t)
	root := testutil.FixtureTree(t, "docs/api/index.md", "docs/guide.md", "cmd/", "main.go", "README.md", "notes.log")
	if err := os.WriteFile(filepath.Join(root, ".gitignore"), []byte("*.log\n"), 0o644); err != nil {
		t.Fatalf("write .gitignore: %v", err)
	}

	cmd := exec.Command(bin, "--no-interact", ".")
	cmd.Dir = root
	cmd.Env = append(os.Environ(), "ITREE_LOG_FILE="+filepath.Join(t.TempDir(), "itree.log"))
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("itree failed: %v\n%s", err, out)
	}
	testutil.AssertGolden(t, "cli_no_interact.golden", string(out))
}

func TestBinaryRejectsInvalidConfiguration(t *testing.T) {
	bin := testutil.BuildBinary(t)
	cmd := exec.Command(bin, "--format", "xml", t.TempDir())
	err := cmd.Run()
	exitErr, ok := err.(*exec.ExitError)
	if !ok || exitErr.ExitCode() != 2 {
		t.Fatalf("expected exit code 2, got %v", err)
	}
}
