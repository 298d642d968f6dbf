package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/polarcoaster/pkg/cache"
	"github.com/matzehuels/polarcoaster/pkg/errors"
)

const testTrace = `{
  "depths": [0, 1, 2, 1, 2],
  "events": [
    {"Query": {"term": "ancestor(X, Y) and parent(X, Y)"}},
    {"Rule": {"rule": "ancestor(X, Y) if parent(X, Y);"}},
    {"Query": {"term": "parent(X, Y)"}},
    {"Rule": {"rule": "ancestor(X, Y) if parent(X, Z) and ancestor(Z, Y);"}},
    {"Query": {"term": "parent(X, Z)"}}
  ]
}`

// runCLI executes the root command with an isolated config and cache.
func runCLI(t *testing.T, args ...string) error {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	c := New(&bytes.Buffer{}, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	return root.ExecuteContext(context.Background())
}

func writeTestTrace(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ancestor.json")
	if err := os.WriteFile(path, []byte(testTrace), 0o644); err != nil {
		t.Fatalf("write trace: %v", err)
	}
	return path
}

func TestRenderCommand(t *testing.T) {
	input := writeTestTrace(t)
	base := filepath.Join(t.TempDir(), "ride")

	if err := runCLI(t, "render", input, "-f", "svg,json,dot", "--at", "2s", "--text", "-o", base); err != nil {
		t.Fatalf("render error: %v", err)
	}

	svg, err := os.ReadFile(base + ".svg")
	if err != nil {
		t.Fatalf("read svg: %v", err)
	}
	if !strings.Contains(string(svg), `class="cart"`) || !strings.Contains(string(svg), "frame-text") {
		t.Error("svg is missing the cart or the text")
	}

	data, err := os.ReadFile(base + ".json")
	if err != nil {
		t.Fatalf("read json: %v", err)
	}
	if !json.Valid(data) {
		t.Error("json artifact is not valid JSON")
	}

	dot, err := os.ReadFile(base + ".dot")
	if err != nil {
		t.Fatalf("read dot: %v", err)
	}
	if !strings.Contains(string(dot), "n0 -> n1") {
		t.Errorf("dot missing root edge:\n%s", dot)
	}
}

func TestLayoutThenVisualize(t *testing.T) {
	input := writeTestTrace(t)
	layoutFile := filepath.Join(t.TempDir(), "ancestor.layout.json")

	if err := runCLI(t, "layout", input, "-o", layoutFile, "--width", "400", "--height", "300"); err != nil {
		t.Fatalf("layout error: %v", err)
	}
	if _, err := os.Stat(layoutFile); err != nil {
		t.Fatalf("layout not written: %v", err)
	}

	if err := runCLI(t, "visualize", layoutFile); err != nil {
		t.Fatalf("visualize error: %v", err)
	}
	svgPath := strings.TrimSuffix(layoutFile, ".layout.json") + ".svg"
	svg, err := os.ReadFile(svgPath)
	if err != nil {
		t.Fatalf("read %s: %v", svgPath, err)
	}
	if !strings.Contains(string(svg), `width="400"`) {
		t.Errorf("svg does not use the layout viewport")
	}
}

func TestCommandErrors(t *testing.T) {
	input := writeTestTrace(t)

	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"missing trace", []string{"render", filepath.Join(t.TempDir(), "nope.json")}, errors.ErrCodeFileNotFound},
		{"bad width", []string{"layout", input, "--width=-5"}, errors.ErrCodeInvalidViewport},
		{"bad format", []string{"render", input, "-f", "gif"}, errors.ErrCodeInvalidFormat},
		{"missing config", []string{"--config", filepath.Join(t.TempDir(), "none.toml"), "layout", input}, errors.ErrCodeFileNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := runCLI(t, tt.args...)
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want %v", err, tt.code)
			}
		})
	}
}

func TestConfigFlagsOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	data := "[cache]\ndir = \"" + filepath.Join(dir, "cache") + "\"\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	c := New(&bytes.Buffer{}, LogInfo)
	c.configPath = path
	c.noCache = true
	if err := c.loadConfig(context.Background()); err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	if !c.cfg.Cache.Disabled {
		t.Error("--no-cache not applied")
	}
	if c.cfg.Cache.Dir != filepath.Join(dir, "cache") {
		t.Errorf("Cache.Dir = %q", c.cfg.Cache.Dir)
	}

	store, err := c.newCache(context.Background())
	if err != nil {
		t.Fatalf("newCache() error: %v", err)
	}
	if _, ok := store.(*cache.NullCache); !ok {
		t.Errorf("newCache() = %T, want *cache.NullCache", store)
	}
}

func TestCacheClearCommand(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cacheHome := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", cacheHome)

	c := New(&bytes.Buffer{}, LogInfo)
	store, err := c.newCache(context.Background())
	if err != nil {
		t.Fatalf("newCache() error: %v", err)
	}
	ctx := context.Background()
	for _, key := range []string{"layout:a", "artifact:b"} {
		if err := store.Set(ctx, key, []byte("x"), 0); err != nil {
			t.Fatalf("Set() error: %v", err)
		}
	}
	store.Close()

	root := c.RootCommand()
	root.SetArgs([]string{"cache", "clear"})
	if err := root.ExecuteContext(ctx); err != nil {
		t.Fatalf("cache clear error: %v", err)
	}

	store, err = c.newCache(ctx)
	if err != nil {
		t.Fatalf("newCache() error: %v", err)
	}
	defer store.Close()
	if _, ok, _ := store.Get(ctx, "layout:a"); ok {
		t.Error("entry survived cache clear")
	}
}
