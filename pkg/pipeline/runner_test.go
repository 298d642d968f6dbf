package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/polarcoaster/pkg/cache"
	"github.com/matzehuels/polarcoaster/pkg/errors"
	"github.com/matzehuels/polarcoaster/pkg/observability"
	"github.com/matzehuels/polarcoaster/pkg/scene"
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

func writeTrace(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write trace: %v", err)
	}
	return path
}

func newTestRunner(t *testing.T) *Runner {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error: %v", err)
	}
	r := NewRunner(c, nil, log.NewWithOptions(&bytes.Buffer{}, log.Options{}))
	t.Cleanup(func() { r.Close() })
	return r
}

func TestExecute(t *testing.T) {
	r := newTestRunner(t)
	path := writeTrace(t, "trace.json", testTrace)
	ctx := context.Background()

	opts := Options{Formats: []string{FormatSVG, FormatJSON, FormatDOT}, ShowCart: true, At: 3375 * time.Millisecond, Text: true}
	result, err := r.Execute(ctx, path, opts)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	if result.Stats.NodeCount != 5 || result.Stats.PathLength != 8 {
		t.Errorf("Stats = %+v", result.Stats)
	}
	if result.TraceHash == "" {
		t.Error("TraceHash is empty")
	}
	if result.CacheInfo.BuildHit || result.CacheInfo.RenderHit {
		t.Errorf("first run CacheInfo = %+v, want misses", result.CacheInfo)
	}

	svg := string(result.Artifacts[FormatSVG])
	if !strings.Contains(svg, `class="cart"`) || !strings.Contains(svg, "parent(X, Y)") {
		t.Errorf("svg missing cart or text:\n%s", svg)
	}
	if !strings.Contains(string(result.Artifacts[FormatDOT]), "n0 -> n1;") {
		t.Errorf("dot missing edge:\n%s", result.Artifacts[FormatDOT])
	}

	var doc struct {
		CartPath []int       `json:"cart_path"`
		Frame    scene.Frame `json:"frame"`
	}
	if err := json.Unmarshal(result.Artifacts[FormatJSON], &doc); err != nil {
		t.Fatalf("json artifact: %v", err)
	}
	// 2.25 hops along [0 1 2 1 0 3 4 3] lands a quarter of the way from 2 to 1.
	if doc.Frame.From != 2 || doc.Frame.To != 1 {
		t.Errorf("frame = %+v, want 2 -> 1", doc.Frame)
	}

	again, err := r.Execute(ctx, path, opts)
	if err != nil {
		t.Fatalf("second Execute() error: %v", err)
	}
	if !again.CacheInfo.BuildHit || !again.CacheInfo.RenderHit {
		t.Errorf("second run CacheInfo = %+v, want hits", again.CacheInfo)
	}
	if !bytes.Equal(again.Artifacts[FormatSVG], result.Artifacts[FormatSVG]) {
		t.Error("cached svg differs from rendered svg")
	}
}

func TestExecuteYAML(t *testing.T) {
	r := newTestRunner(t)
	path := writeTrace(t, "trace.yaml", `
depths: [0, 1, 1]
events:
  - Query: {term: "a and b"}
  - Rule: {rule: "a;"}
  - Rule: {rule: "b;"}
`)
	result, err := r.Execute(context.Background(), path, Options{Formats: []string{FormatJSON}})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if got := len(result.Layout.Edges); got != 2 {
		t.Errorf("edges = %d, want 2", got)
	}
}

func TestExecuteErrors(t *testing.T) {
	r := newTestRunner(t)
	ctx := context.Background()

	_, err := r.Execute(ctx, filepath.Join(t.TempDir(), "missing.json"), Options{})
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file error = %v, want %s", err, errors.ErrCodeFileNotFound)
	}

	bad := writeTrace(t, "bad.json", `{"depths": [0, 2], "events": [{"Rule": {"rule": "a"}}, {"Rule": {"rule": "b"}}]}`)
	_, err = r.Execute(ctx, bad, Options{})
	if !errors.Is(err, errors.ErrCodeMalformedTrace) {
		t.Errorf("depth jump error = %v, want %s", err, errors.ErrCodeMalformedTrace)
	}

	good := writeTrace(t, "good.json", testTrace)
	_, err = r.Execute(ctx, good, Options{Formats: []string{"gif"}})
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("bad format error = %v, want %s", err, errors.ErrCodeInvalidFormat)
	}
}

func TestBuildLayoutKeyedByOptions(t *testing.T) {
	r := newTestRunner(t)
	ctx := context.Background()
	tr, err := r.LoadTrace(ctx, writeTrace(t, "trace.json", testTrace))
	if err != nil {
		t.Fatalf("LoadTrace() error: %v", err)
	}

	small, hit, err := r.BuildWithCacheInfo(ctx, tr, Options{Width: 200, Height: 100})
	if err != nil || hit {
		t.Fatalf("BuildWithCacheInfo() = hit %v, err %v", hit, err)
	}
	large, hit, err := r.BuildWithCacheInfo(ctx, tr, Options{Width: 2000, Height: 1000})
	if err != nil || hit {
		t.Fatalf("BuildWithCacheInfo(large) = hit %v, err %v", hit, err)
	}
	if small.Viewport == large.Viewport {
		t.Error("different viewports share a cached layout")
	}
	if _, hit, _ := r.BuildWithCacheInfo(ctx, tr, Options{Width: 200, Height: 100}); !hit {
		t.Error("repeated build missed the cache")
	}
}

func TestRenderNodelink(t *testing.T) {
	r := newTestRunner(t)
	ctx := context.Background()
	tr, err := r.LoadTrace(ctx, writeTrace(t, "trace.json", testTrace))
	if err != nil {
		t.Fatalf("LoadTrace() error: %v", err)
	}
	l, err := r.Build(ctx, tr, Options{})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	artifacts, err := r.RenderArtifacts(ctx, l, Options{VizType: VizTypeNodelink, Formats: []string{FormatDOT, FormatJSON}, Detailed: true})
	if err != nil {
		t.Fatalf("RenderArtifacts() error: %v", err)
	}
	dot := string(artifacts[FormatDOT])
	if !strings.Contains(dot, "digraph") || !strings.Contains(dot, "n3 -> n4;") {
		t.Errorf("dot output:\n%s", dot)
	}
	if _, err := scene.UnmarshalLayout(artifacts[FormatJSON]); err != nil {
		t.Errorf("json artifact is not a layout: %v", err)
	}
}

func TestRenderDecodedLayout(t *testing.T) {
	r := newTestRunner(t)
	ctx := context.Background()
	tr, err := r.LoadTrace(ctx, writeTrace(t, "trace.json", testTrace))
	if err != nil {
		t.Fatalf("LoadTrace() error: %v", err)
	}
	l, err := r.Build(ctx, tr, Options{})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	data, err := scene.MarshalLayout(l)
	if err != nil {
		t.Fatalf("MarshalLayout() error: %v", err)
	}

	opts := Options{}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	decoded, err := scene.UnmarshalLayout(data)
	if err != nil {
		t.Fatalf("UnmarshalLayout() error: %v", err)
	}
	artifacts, err := Render(decoded, opts)
	if err != nil {
		t.Fatalf("Render(decoded) error: %v", err)
	}
	direct, err := Render(l, opts)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if !bytes.Equal(artifacts[FormatSVG], direct[FormatSVG]) {
		t.Error("decoded layout renders differently")
	}
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	observability.NoopCacheHooks

	mu     sync.Mutex
	events []string
}

func (h *recordingHooks) record(s string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, s)
}

func (h *recordingHooks) OnLoadComplete(_ context.Context, _ string, _ int, _ time.Duration, _ error) {
	h.record("load")
}

func (h *recordingHooks) OnBuildComplete(_ context.Context, _ int, _ time.Duration, _ error) {
	h.record("build")
}

func (h *recordingHooks) OnRenderComplete(_ context.Context, _ string, _ []string, _ time.Duration, _ error) {
	h.record("render")
}

func (h *recordingHooks) OnCacheHit(_ context.Context, keyType string) { h.record("hit:" + keyType) }

func (h *recordingHooks) OnCacheMiss(_ context.Context, keyType string) { h.record("miss:" + keyType) }

func TestExecuteHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetPipelineHooks(hooks)
	observability.SetCacheHooks(hooks)
	t.Cleanup(observability.Reset)

	r := newTestRunner(t)
	path := writeTrace(t, "trace.json", testTrace)
	for i := 0; i < 2; i++ {
		if _, err := r.Execute(context.Background(), path, Options{}); err != nil {
			t.Fatalf("Execute() error: %v", err)
		}
	}

	want := []string{
		"load", "miss:layout", "build", "miss:artifact", "render",
		"load", "hit:layout", "hit:artifact",
	}
	if strings.Join(hooks.events, ",") != strings.Join(want, ",") {
		t.Errorf("events = %v, want %v", hooks.events, want)
	}
}
