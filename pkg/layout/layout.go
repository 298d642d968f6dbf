package layout

import (
	"github.com/matzehuels/polarcoaster/pkg/errors"
	"github.com/matzehuels/polarcoaster/pkg/geom"
)

// Default fill fractions: the share of the viewport the grid may occupy on
// each axis.
const (
	DefaultFillX = 0.6
	DefaultFillY = 0.8
)

// Viewport is the target drawing area in pixels (or any other unit the
// renderer uses; terminal cells for the player).
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Options controls how the grid is fitted into the viewport.
type Options struct {
	// FillX and FillY are the fractions of the viewport width and height the
	// grid's extent is scaled to. Zero values use DefaultFillX/DefaultFillY.
	FillX, FillY float64
}

func (o Options) withDefaults() Options {
	if o.FillX == 0 {
		o.FillX = DefaultFillX
	}
	if o.FillY == 0 {
		o.FillY = DefaultFillY
	}
	return o
}

// Layout is the computed placement of every node: its grid cell and its
// final viewport position, plus the transform relating the two
// (Positions[i] = Grid[i]*Scale + Offset).
type Layout struct {
	Viewport  Viewport
	Width     int   // node count of the widest level
	MaxDepth  int   // deepest level
	Levels    []int // node count per depth
	Grid      []geom.Point
	Positions []geom.Point
	Scale     geom.Point
	Offset    geom.Point
}

// Len returns the number of placed nodes.
func (l *Layout) Len() int { return len(l.Positions) }

// Unscale maps a viewport position back to grid coordinates.
func (l *Layout) Unscale(p geom.Point) geom.Point {
	return geom.Pt((p.X-l.Offset.X)/l.Scale.X, (p.Y-l.Offset.Y)/l.Scale.Y)
}

// Compute places every node of a trace whose node i sits at depths[i].
//
// Nodes are laid out on a grid with one row per depth. Within a row nodes
// keep trace order and the row is centered under the widest row. The grid is
// then scaled independently on each axis so its extent covers opts.FillX of
// the viewport width and opts.FillY of its height, and centered.
//
// A grid with a single column or a single row has zero extent on that axis;
// the scale for that axis is computed as though the extent were one so the
// nodes land on the viewport center line instead of dividing by zero.
func Compute(depths []int, maxDepth int, vp Viewport, opts Options) (*Layout, error) {
	if err := errors.ValidateViewport(vp.Width, vp.Height); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()
	if err := errors.ValidateFraction("fill x", opts.FillX); err != nil {
		return nil, err
	}
	if err := errors.ValidateFraction("fill y", opts.FillY); err != nil {
		return nil, err
	}
	if len(depths) == 0 {
		return nil, errors.New(errors.ErrCodeMalformedTrace, "no nodes to lay out")
	}
	for i, d := range depths {
		if d < 0 || d > maxDepth {
			return nil, errors.New(errors.ErrCodeMalformedTrace, "node %d has depth %d outside [0, %d]", i, d, maxDepth)
		}
	}

	levels, width := CountLevels(depths, maxDepth)
	grid := Grid(depths, levels, width)

	l := &Layout{
		Viewport: vp,
		Width:    width,
		MaxDepth: maxDepth,
		Levels:   levels,
		Grid:     grid,
	}
	l.Scale, l.Offset = Fit(float64(width-1), float64(maxDepth), vp, opts)

	l.Positions = make([]geom.Point, len(grid))
	for i, g := range grid {
		l.Positions[i] = g.Mul(l.Scale).Add(l.Offset)
	}
	return l, nil
}

// CountLevels returns the number of nodes at each depth and the size of the
// most populated level.
func CountLevels(depths []int, maxDepth int) (levels []int, width int) {
	levels = make([]int, maxDepth+1)
	for _, d := range depths {
		levels[d]++
		width = max(width, levels[d])
	}
	return levels, width
}

// Grid assigns each node a (column, row) cell. Row is the depth. Columns
// number a level's nodes in trace order, shifted so the level is centered
// within the widest level; a level narrower than the widest by an odd count
// lands on half columns.
func Grid(depths []int, levels []int, width int) []geom.Point {
	grid := make([]geom.Point, len(depths))
	seen := make([]int, len(levels))
	for i, d := range depths {
		offset := float64(width-1-(levels[d]-1)) / 2
		grid[i] = geom.Pt(float64(seen[d])+offset, float64(d))
		seen[d]++
	}
	return grid
}

// Fit returns the per-axis scale and offset that map a grid spanning
// spanX columns and spanY rows into vp. A zero span is scaled as a span of
// one and centered.
func Fit(spanX, spanY float64, vp Viewport, opts Options) (scale, offset geom.Point) {
	opts = opts.withDefaults()
	scale = geom.Pt(
		vp.Width*opts.FillX/max(spanX, 1),
		vp.Height*opts.FillY/max(spanY, 1),
	)
	offset = geom.Pt(
		(vp.Width-spanX*scale.X)/2,
		(vp.Height-spanY*scale.Y)/2,
	)
	return scale, offset
}
