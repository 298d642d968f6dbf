package scene

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/matzehuels/polarcoaster/pkg/cart"
	"github.com/matzehuels/polarcoaster/pkg/errors"
	"github.com/matzehuels/polarcoaster/pkg/geom"
	"github.com/matzehuels/polarcoaster/pkg/layout"
	"github.com/matzehuels/polarcoaster/pkg/track"
	"github.com/matzehuels/polarcoaster/pkg/tree"
)

// =============================================================================
// Layout - Serialized Scene
// =============================================================================

// Layout is the serialization format of a [Scene]. It carries everything
// needed to draw any frame: node placement, edges, the cart walk, the track
// and the node labels.
type Layout struct {
	Viewport layout.Viewport `json:"viewport"`
	Scale    geom.Point      `json:"scale"`
	Offset   geom.Point      `json:"offset"`
	MaxDepth int             `json:"max_depth"`

	Nodes    []Node          `json:"nodes"`
	Edges    []tree.Edge     `json:"edges"`
	CartPath []int           `json:"cart_path"`
	Track    []track.Segment `json:"track"`

	HitRadius        float64 `json:"hit_radius"`
	TimePerSegmentMS int64   `json:"time_per_segment_ms"`
}

// Node is one placed trace step.
type Node struct {
	Index    int        `json:"index"`
	Depth    int        `json:"depth"`
	Kind     string     `json:"kind"`
	Label    string     `json:"label"`
	Grid     geom.Point `json:"grid"`
	Position geom.Point `json:"position"`
}

// Export flattens the scene into a [Layout].
func (s *Scene) Export() Layout {
	nodes := make([]Node, s.Len())
	for i := range nodes {
		nodes[i] = Node{
			Index:    i,
			Depth:    s.trace.Depths[i],
			Kind:     s.trace.Events[i].Kind.String(),
			Label:    s.labels[i],
			Grid:     s.layout.Grid[i],
			Position: s.layout.Positions[i],
		}
	}
	return Layout{
		Viewport:         s.layout.Viewport,
		Scale:            s.layout.Scale,
		Offset:           s.layout.Offset,
		MaxDepth:         s.layout.MaxDepth,
		Nodes:            nodes,
		Edges:            s.tree.Edges(),
		CartPath:         s.tree.CartPath(),
		Track:            s.Track(),
		HitRadius:        s.hitRadius,
		TimePerSegmentMS: s.animator.TimePerSegment().Milliseconds(),
	}
}

// Len returns the number of nodes.
func (l Layout) Len() int { return len(l.Nodes) }

// Positions returns the viewport position of every node.
func (l Layout) Positions() []geom.Point {
	ps := make([]geom.Point, len(l.Nodes))
	for i, n := range l.Nodes {
		ps[i] = n.Position
	}
	return ps
}

// Labels returns the display text of every node.
func (l Layout) Labels() []string {
	ls := make([]string, len(l.Nodes))
	for i, n := range l.Nodes {
		ls[i] = n.Label
	}
	return ls
}

// Animator returns a cart animator over the layout's walk.
func (l Layout) Animator() *cart.Animator {
	return cart.New(l.CartPath, time.Duration(l.TimePerSegmentMS)*time.Millisecond)
}

// Frame resolves st against the layout the same way [Scene.Frame] does.
func (l Layout) Frame(st cart.State, pointer *geom.Point) Frame {
	radius := l.HitRadius
	if radius <= 0 {
		radius = DefaultHitRadius
	}
	return resolveFrame(l.Animator(), l.Positions(), l.Labels(), radius, st, pointer)
}

// Validate checks that the layout is internally consistent: at least one
// node, node indices in order, and edges and walk entries that refer to
// existing nodes.
func (l Layout) Validate() error {
	if len(l.Nodes) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "layout has no nodes")
	}
	if len(l.CartPath) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "layout has no cart path")
	}
	n := len(l.Nodes)
	for i, node := range l.Nodes {
		if node.Index != i {
			return errors.New(errors.ErrCodeInvalidInput, "node %d has index %d", i, node.Index)
		}
	}
	for _, e := range l.Edges {
		if e.From < 0 || e.From >= n || e.To < 0 || e.To >= n {
			return errors.New(errors.ErrCodeInvalidInput, "edge %d -> %d refers to a missing node", e.From, e.To)
		}
	}
	for i, v := range l.CartPath {
		if v < 0 || v >= n {
			return errors.New(errors.ErrCodeInvalidInput, "cart path entry %d refers to missing node %d", i, v)
		}
	}
	return nil
}

// =============================================================================
// Layout Serialization API
// =============================================================================

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes JSON bytes into a Layout and validates it.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "unmarshal layout")
	}
	if err := l.Validate(); err != nil {
		return Layout{}, err
	}
	return l, nil
}

// WriteLayoutFile writes a Layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Layout{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "layout file %s", path)
		}
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}
