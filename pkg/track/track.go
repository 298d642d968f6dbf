// Package track builds the static rail geometry drawn under the cart and
// answers pointer hit-tests against node markers.
package track

import (
	"github.com/matzehuels/polarcoaster/pkg/geom"
	"github.com/matzehuels/polarcoaster/pkg/tree"
)

// Color is a named or hex color understood by the renderers.
type Color string

// Style controls the rail geometry.
type Style struct {
	// Gauge is the distance from the edge's center line to each rail.
	Gauge float64
	// Thickness is the stroke width of rails and ties.
	Thickness float64
	// Ties are the fractions along each edge where a cross-tie is drawn.
	Ties  []float64
	Color Color
}

// DefaultStyle returns a narrow black track with three ties per edge.
func DefaultStyle() Style {
	return Style{
		Gauge:     3,
		Thickness: 2,
		Ties:      []float64{0.25, 0.5, 0.75},
		Color:     "black",
	}
}

// Segment is one straight stroke of track.
type Segment struct {
	From      geom.Point `json:"from"`
	To        geom.Point `json:"to"`
	Thickness float64    `json:"thickness"`
	Color     Color      `json:"color"`
}

// Build returns the track for every edge: two rails parallel to the edge,
// one on each side at s.Gauge, plus a tie across them at each of s.Ties.
// Segments are grouped per edge in edge order, rails first.
func Build(edges []tree.Edge, positions []geom.Point, s Style) []Segment {
	segs := make([]Segment, 0, len(edges)*(2+len(s.Ties)))
	for _, e := range edges {
		from, to := positions[e.From], positions[e.To]
		path := to.Sub(from)
		offset := path.Normalized().Perp().Scale(s.Gauge)

		segs = append(segs,
			Segment{From: from.Add(offset), To: to.Add(offset), Thickness: s.Thickness, Color: s.Color},
			Segment{From: from.Sub(offset), To: to.Sub(offset), Thickness: s.Thickness, Color: s.Color},
		)
		for _, f := range s.Ties {
			p := from.Add(path.Scale(f))
			segs = append(segs, Segment{From: p.Sub(offset), To: p.Add(offset), Thickness: s.Thickness, Color: s.Color})
		}
	}
	return segs
}

// Nearest returns the node closest to p among those within radius of it.
// Ties go to the lower index. ok is false when no node is close enough.
func Nearest(positions []geom.Point, p geom.Point, radius float64) (node int, ok bool) {
	best := radius
	node = -1
	for i, q := range positions {
		if d := q.Dist(p); d <= best && (node < 0 || d < best) {
			best, node = d, i
		}
	}
	return node, node >= 0
}
