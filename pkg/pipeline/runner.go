package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/polarcoaster/pkg/cache"
	"github.com/matzehuels/polarcoaster/pkg/observability"
	"github.com/matzehuels/polarcoaster/pkg/scene"
	"github.com/matzehuels/polarcoaster/pkg/trace"
)

// Cache key types reported to [observability.CacheHooks].
const (
	keyTypeLayout   = "layout"
	keyTypeArtifact = "artifact"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → build → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, path string, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Load
	loadStart := time.Now()
	t, err := r.LoadTrace(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Trace = t
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.NodeCount = t.Len()
	if h, err := TraceHash(t); err == nil {
		result.TraceHash = h
	}

	r.Logger.Info("loaded trace",
		"nodes", t.Len(),
		"max_depth", t.MaxDepth,
		"duration", result.Stats.LoadTime)

	// Stage 2: Build
	buildStart := time.Now()
	l, buildHit, err := r.BuildWithCacheInfo(ctx, t, opts)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	result.Layout = l
	result.Stats.BuildTime = time.Since(buildStart)
	result.Stats.PathLength = len(l.CartPath)
	result.CacheInfo.BuildHit = buildHit

	r.Logger.Info("built scene",
		"edges", len(l.Edges),
		"path", len(l.CartPath),
		"cached", buildHit,
		"duration", result.Stats.BuildTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, l, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// LoadTrace decodes the trace file at path. Files ending in .yaml or .yml
// are read as YAML, everything else as JSON.
func (r *Runner) LoadTrace(ctx context.Context, path string) (*trace.Trace, error) {
	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, path)
	start := time.Now()

	t, err := trace.ImportFile(path)
	n := 0
	if t != nil {
		n = t.Len()
	}
	hooks.OnLoadComplete(ctx, path, n, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	r.Logger.Debug("decoded trace", "path", path, "nodes", n)
	return t, nil
}

// TraceHash returns the content hash of t's canonical JSON encoding.
func TraceHash(t *trace.Trace) (string, error) {
	data, err := t.MarshalJSON()
	if err != nil {
		return "", err
	}
	return cache.Hash(data), nil
}

// BuildWithCacheInfo builds the scene for t with caching and returns cache hit info.
func (r *Runner) BuildWithCacheInfo(ctx context.Context, t *trace.Trace, opts Options) (scene.Layout, bool, error) {
	if err := opts.ValidateForBuild(); err != nil {
		return scene.Layout{}, false, err
	}
	r.applyLogger(&opts)

	traceHash, err := TraceHash(t)
	if err != nil {
		return scene.Layout{}, false, fmt.Errorf("hash trace: %w", err)
	}
	cacheKey := r.Keyer.LayoutKey(traceHash, opts.LayoutKeyOpts())
	cacheHooks := observability.Cache()

	// Try cache first
	if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
		cached, err := scene.UnmarshalLayout(data)
		if err == nil {
			cacheHooks.OnCacheHit(ctx, keyTypeLayout)
			return cached, true, nil // Cache hit
		}
		// If deserialization fails, fall through to recompute
		r.Logger.Warn("discarding unreadable cached layout", "error", err)
	}
	cacheHooks.OnCacheMiss(ctx, keyTypeLayout)

	hooks := observability.Pipeline()
	hooks.OnBuildStart(ctx, t.Len())
	start := time.Now()
	sc, err := scene.Build(t, opts.SceneOptions())
	hooks.OnBuildComplete(ctx, t.Len(), time.Since(start), err)
	if err != nil {
		return scene.Layout{}, false, err
	}
	l := sc.Export()

	// Cache the result
	if data, err := scene.MarshalLayout(l); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout); err != nil {
			r.Logger.Warn("failed to cache layout", "error", err)
		} else {
			cacheHooks.OnCacheSet(ctx, keyTypeLayout, len(data))
		}
	}

	return l, false, nil // Cache miss
}

// Build is a convenience wrapper that calls BuildWithCacheInfo and discards the cache hit info.
func (r *Runner) Build(ctx context.Context, t *trace.Trace, opts Options) (scene.Layout, error) {
	l, _, err := r.BuildWithCacheInfo(ctx, t, opts)
	return l, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, l scene.Layout, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	// Compute cache key from layout data
	layoutData, err := scene.MarshalLayout(l)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(layoutData)
	cacheHooks := observability.Cache()

	// Try to get all formats from cache
	allCached := true
	artifacts := make(map[string][]byte)

	for _, format := range opts.Formats {
		cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			artifacts[format] = data
		} else {
			allCached = false
			break
		}
	}

	if allCached && len(artifacts) == len(opts.Formats) {
		cacheHooks.OnCacheHit(ctx, keyTypeArtifact)
		return artifacts, true, nil // All artifacts from cache
	}
	cacheHooks.OnCacheMiss(ctx, keyTypeArtifact)

	// Render all formats
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.VizType, opts.Formats)
	start := time.Now()
	rendered, err := Render(l, opts)
	hooks.OnRenderComplete(ctx, opts.VizType, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	// Cache each format
	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact); err == nil {
			cacheHooks.OnCacheSet(ctx, keyTypeArtifact, len(data))
		}
	}

	return rendered, false, nil // Cache miss
}

// RenderArtifacts is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) RenderArtifacts(ctx context.Context, l scene.Layout, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, l, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
