// Package scene assembles a trace into everything a frame loop needs.
//
// # Overview
//
// [Build] runs the engine once per trace: it reconstructs the tree, lays the
// nodes out in a viewport, builds the rail geometry and prepares the cart
// animator. The result is an immutable [Scene]; the only thing that changes
// between frames is the [cart.State] the caller threads through it.
//
//	sc, err := scene.Build(tr, scene.DefaultOptions())
//	st := sc.Animator().Start()
//	for each frame {
//	    st = sc.Animator().Sample(st, elapsed)
//	    f := sc.Frame(st, &pointer)
//	    draw(sc.Track(), sc.Positions(), f.Cart, f.Text)
//	}
//
// # Export
//
// [Scene.Export] flattens a scene into a [Layout], the serializable form
// consumed by the renderers and written by the layout command. A Layout can
// be rendered without the original trace.
package scene

import (
	"time"

	"github.com/matzehuels/polarcoaster/pkg/cart"
	"github.com/matzehuels/polarcoaster/pkg/geom"
	"github.com/matzehuels/polarcoaster/pkg/layout"
	"github.com/matzehuels/polarcoaster/pkg/trace"
	"github.com/matzehuels/polarcoaster/pkg/track"
	"github.com/matzehuels/polarcoaster/pkg/tree"
)

// DefaultHitRadius is the pointer distance within which a node counts as
// hovered.
const DefaultHitRadius = 4.0

// DefaultViewport is the drawing area used when none is given.
var DefaultViewport = layout.Viewport{Width: 960, Height: 540}

// Options configures [Build]. Zero fields take their defaults.
type Options struct {
	Viewport       layout.Viewport
	Layout         layout.Options
	Track          track.Style
	HitRadius      float64
	TimePerSegment time.Duration
}

// DefaultOptions returns the options [Build] falls back to.
func DefaultOptions() Options {
	return Options{
		Viewport:       DefaultViewport,
		Layout:         layout.Options{FillX: layout.DefaultFillX, FillY: layout.DefaultFillY},
		Track:          track.DefaultStyle(),
		HitRadius:      DefaultHitRadius,
		TimePerSegment: cart.DefaultTimePerSegment,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Viewport == (layout.Viewport{}) {
		o.Viewport = d.Viewport
	}
	if o.Track.Gauge == 0 && o.Track.Thickness == 0 && o.Track.Ties == nil && o.Track.Color == "" {
		o.Track = d.Track
	}
	if o.Track.Color == "" {
		o.Track.Color = d.Track.Color
	}
	if o.HitRadius <= 0 {
		o.HitRadius = d.HitRadius
	}
	if o.TimePerSegment <= 0 {
		o.TimePerSegment = d.TimePerSegment
	}
	return o
}

// Scene is a fully prepared trace. All accessors return copies; a Scene is
// safe for concurrent use.
type Scene struct {
	trace     *trace.Trace
	tree      *tree.Tree
	layout    *layout.Layout
	track     []track.Segment
	labels    []string
	animator  *cart.Animator
	hitRadius float64
	opts      Options
}

// Build validates t and computes its tree, layout, track and cart walk.
// Malformed traces and unusable options are reported with the error codes
// of the step that rejected them; no partial scene is returned.
func Build(t *trace.Trace, opts Options) (*Scene, error) {
	opts = opts.withDefaults()
	if err := t.Validate(); err != nil {
		return nil, err
	}

	tr, err := tree.Reconstruct(t.Depths)
	if err != nil {
		return nil, err
	}
	l, err := layout.Compute(t.Depths, t.MaxDepth, opts.Viewport, opts.Layout)
	if err != nil {
		return nil, err
	}

	labels := make([]string, t.Len())
	for i := range labels {
		labels[i] = t.Text(i)
	}

	return &Scene{
		trace:     t,
		tree:      tr,
		layout:    l,
		track:     track.Build(tr.Edges(), l.Positions, opts.Track),
		labels:    labels,
		animator:  cart.New(tr.CartPath(), opts.TimePerSegment),
		hitRadius: opts.HitRadius,
		opts:      opts,
	}, nil
}

// Options returns the options the scene was built with, defaults applied.
func (s *Scene) Options() Options { return s.opts }

// Trace returns the trace the scene was built from.
func (s *Scene) Trace() *trace.Trace { return s.trace }

// Tree returns the reconstructed tree.
func (s *Scene) Tree() *tree.Tree { return s.tree }

// Layout returns the computed node placement.
func (s *Scene) Layout() *layout.Layout { return s.layout }

// Len returns the number of nodes.
func (s *Scene) Len() int { return len(s.labels) }

// Track returns the static rail geometry.
func (s *Scene) Track() []track.Segment { return append([]track.Segment(nil), s.track...) }

// Positions returns the viewport position of every node.
func (s *Scene) Positions() []geom.Point { return append([]geom.Point(nil), s.layout.Positions...) }

// Animator returns the cart animator over the scene's walk.
func (s *Scene) Animator() *cart.Animator { return s.animator }

// Text returns the display text of node i.
func (s *Scene) Text(i int) string { return s.labels[i] }

// Nearest returns the node under p, if any.
func (s *Scene) Nearest(p geom.Point) (int, bool) {
	return track.Nearest(s.layout.Positions, p, s.hitRadius)
}

// Frame is everything that changes from one frame to the next.
type Frame struct {
	// From and To are the node indices the cart travels between.
	From     int        `json:"from"`
	To       int        `json:"to"`
	Progress float64    `json:"progress"`
	Cart     geom.Point `json:"cart"`
	// Hover is the node under the pointer, or -1.
	Hover int    `json:"hover"`
	Text  string `json:"text"`
}

// Frame resolves st into a drawable frame. pointer may be nil when there is
// no pointer. The text is the hovered node's when the pointer is within the
// hit radius of one, otherwise the text of the node the cart last left.
func (s *Scene) Frame(st cart.State, pointer *geom.Point) Frame {
	return resolveFrame(s.animator, s.layout.Positions, s.labels, s.hitRadius, st, pointer)
}

func resolveFrame(a *cart.Animator, positions []geom.Point, labels []string, radius float64, st cart.State, pointer *geom.Point) Frame {
	from, to := a.Nodes(st)
	f := Frame{
		From:     from,
		To:       to,
		Progress: st.Progress,
		Cart:     a.Position(st, positions),
		Hover:    -1,
	}
	if pointer != nil {
		if i, ok := track.Nearest(positions, *pointer, radius); ok {
			f.Hover = i
		}
	}
	if f.Hover >= 0 {
		f.Text = labels[f.Hover]
	} else {
		f.Text = labels[from]
	}
	return f
}
