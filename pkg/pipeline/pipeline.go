// Package pipeline provides the load → build → render pipeline for polarcoaster.
//
// This package implements the complete pipeline used by both the CLI and
// the HTTP server. By centralizing this logic, both entry points share
// defaults, validation and caching.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Decode a trace file (JSON or YAML)
//  2. Build: Reconstruct the tree, lay it out and build the track
//  3. Render: Generate output in various formats (SVG, PNG, PDF, JSON, DOT)
//
// Build results are cached as [scene.Layout] documents keyed by the trace's
// content hash and the layout options; rendered artifacts are cached by the
// layout's hash and the render options.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{Formats: []string{"svg", "png"}, ShowCart: true, At: 3 * time.Second}
//	result, err := runner.Execute(ctx, "coaster.json", opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	t, err := runner.LoadTrace(ctx, "coaster.json")
//	layout, err := runner.Build(ctx, t, opts)
//	artifacts, err := runner.Render(ctx, layout, opts)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/polarcoaster/pkg/cache"
	"github.com/matzehuels/polarcoaster/pkg/cart"
	"github.com/matzehuels/polarcoaster/pkg/errors"
	"github.com/matzehuels/polarcoaster/pkg/layout"
	"github.com/matzehuels/polarcoaster/pkg/scene"
	"github.com/matzehuels/polarcoaster/pkg/trace"
	"github.com/matzehuels/polarcoaster/pkg/track"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultWidth is the default viewport width in pixels.
	DefaultWidth = 960.0

	// DefaultHeight is the default viewport height in pixels.
	DefaultHeight = 540.0
)

// Visualization types.
const (
	// VizTypeCoaster draws the track, the nodes and the cart.
	VizTypeCoaster = "coaster"
	// VizTypeNodelink draws the tree with Graphviz.
	VizTypeNodelink = "nodelink"
)

// DefaultVizType is the default visualization type.
const DefaultVizType = VizTypeCoaster

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
	FormatDOT  = "dot"
)

// Formats lists the supported output formats.
var Formats = []string{FormatSVG, FormatPNG, FormatPDF, FormatJSON, FormatDOT}

// VizTypes lists the supported visualization types.
var VizTypes = []string{VizTypeCoaster, VizTypeNodelink}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for server requests.
type Options struct {
	// Layout options
	Width          float64       `json:"width,omitempty"`
	Height         float64       `json:"height,omitempty"`
	FillX          float64       `json:"fill_x,omitempty"`
	FillY          float64       `json:"fill_y,omitempty"`
	Gauge          float64       `json:"gauge,omitempty"`
	Thickness      float64       `json:"thickness,omitempty"`
	Ties           []float64     `json:"ties,omitempty"`
	Color          string        `json:"color,omitempty"`
	HitRadius      float64       `json:"hit_radius,omitempty"`
	TimePerSegment time.Duration `json:"time_per_segment,omitempty"`

	// Render options
	VizType    string        `json:"viz_type,omitempty"`
	Formats    []string      `json:"formats,omitempty"`
	ShowCart   bool          `json:"show_cart,omitempty"`
	At         time.Duration `json:"at,omitempty"` // cart snapshot time, used with ShowCart
	Text       bool          `json:"text,omitempty"`
	Labels     bool          `json:"labels,omitempty"`
	Detailed   bool          `json:"detailed,omitempty"` // nodelink labels
	Background string        `json:"background,omitempty"`
	Scale      float64       `json:"scale,omitempty"` // PNG scale

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Trace is the decoded input.
	Trace *trace.Trace

	// TraceHash is the content hash of the trace.
	TraceHash string

	// Layout is the built scene in serialized form.
	Layout scene.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	PathLength int
	LoadTime   time.Duration
	BuildTime  time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	BuildHit  bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	return errors.ValidateFormat(format, Formats)
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateVizType checks that a visualization type is valid.
func ValidateVizType(vizType string) error {
	for _, v := range VizTypes {
		if v == vizType {
			return nil
		}
	}
	return errors.New(errors.ErrCodeInvalidVizType, "invalid viz_type: %q (must be one of: coaster, nodelink)", vizType)
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults applies defaults and validates for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForBuild(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetLayoutDefaults sets default values for building a scene.
func (o *Options) SetLayoutDefaults() {
	d := scene.DefaultOptions()
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.FillX == 0 {
		o.FillX = layout.DefaultFillX
	}
	if o.FillY == 0 {
		o.FillY = layout.DefaultFillY
	}
	if o.Gauge == 0 {
		o.Gauge = d.Track.Gauge
	}
	if o.Thickness == 0 {
		o.Thickness = d.Track.Thickness
	}
	if o.Ties == nil {
		o.Ties = d.Track.Ties
	}
	if o.Color == "" {
		o.Color = string(d.Track.Color)
	}
	if o.HitRadius == 0 {
		o.HitRadius = d.HitRadius
	}
	if o.TimePerSegment == 0 {
		o.TimePerSegment = cart.DefaultTimePerSegment
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForBuild validates and sets defaults for building a scene.
func (o *Options) ValidateForBuild() error {
	o.SetLayoutDefaults()
	if err := errors.ValidateViewport(o.Width, o.Height); err != nil {
		return err
	}
	if err := errors.ValidateFraction("fill_x", o.FillX); err != nil {
		return err
	}
	if err := errors.ValidateFraction("fill_y", o.FillY); err != nil {
		return err
	}
	for _, f := range o.Ties {
		if f < 0 || f > 1 {
			return errors.New(errors.ErrCodeInvalidConfig, "tie position %g outside [0, 1]", f)
		}
	}
	if o.TimePerSegment < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "time per segment must be positive, got %s", o.TimePerSegment)
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if o.VizType == "" {
		o.VizType = DefaultVizType
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateVizType(o.VizType); err != nil {
		return err
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.At < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "snapshot time must not be negative, got %s", o.At)
	}
	return nil
}

// IsNodelink returns true if this is a nodelink visualization.
func (o *Options) IsNodelink() bool {
	return o.VizType == VizTypeNodelink
}

// SceneOptions converts the layout options for [scene.Build].
func (o *Options) SceneOptions() scene.Options {
	return scene.Options{
		Viewport: layout.Viewport{Width: o.Width, Height: o.Height},
		Layout:   layout.Options{FillX: o.FillX, FillY: o.FillY},
		Track: track.Style{
			Gauge:     o.Gauge,
			Thickness: o.Thickness,
			Ties:      o.Ties,
			Color:     track.Color(o.Color),
		},
		HitRadius:      o.HitRadius,
		TimePerSegment: o.TimePerSegment,
	}
}

// CartState returns the animation state at the snapshot time, or nil when
// the cart is not shown.
func (o *Options) CartState(l scene.Layout) *cart.State {
	if !o.ShowCart {
		return nil
	}
	a := l.Animator()
	st := a.Advance(a.Start(), o.At)
	return &st
}

// LayoutKeyOpts returns cache key options for building a scene.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Width:          o.Width,
		Height:         o.Height,
		FillX:          o.FillX,
		FillY:          o.FillY,
		Gauge:          o.Gauge,
		Thickness:      o.Thickness,
		Ties:           o.Ties,
		Color:          o.Color,
		HitRadius:      o.HitRadius,
		TimePerSegment: o.TimePerSegment.Milliseconds(),
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	at := int64(-1)
	if o.ShowCart {
		at = o.At.Milliseconds()
	}
	return cache.ArtifactKeyOpts{
		Format:     format,
		VizType:    o.VizType,
		At:         at,
		Text:       o.Text,
		Labels:     o.Labels,
		Detailed:   o.Detailed,
		Background: o.Background,
		Scale:      o.Scale,
	}
}
