// Package geom provides the 2-D vector type shared by layout, track and
// animation code.
package geom

import "math"

// Point is a 2-D position or displacement. The Y axis grows downward, matching
// screen and SVG coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Scale multiplies both components by s.
func (p Point) Scale(s float64) Point { return Point{p.X * s, p.Y * s} }

// Mul multiplies component-wise, used for per-axis scale factors.
func (p Point) Mul(q Point) Point { return Point{p.X * q.X, p.Y * q.Y} }

// Len returns the Euclidean length of p.
func (p Point) Len() float64 { return math.Hypot(p.X, p.Y) }

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 { return q.Sub(p).Len() }

// Normalized returns the unit vector in the direction of p.
// The zero vector is returned unchanged.
func (p Point) Normalized() Point {
	l := p.Len()
	if l == 0 {
		return p
	}
	return Point{p.X / l, p.Y / l}
}

// Perp returns p rotated a quarter turn: (y, -x).
func (p Point) Perp() Point { return Point{p.Y, -p.X} }

// Lerp returns the point a fraction t of the way from p to q.
func (p Point) Lerp(q Point, t float64) Point {
	return p.Add(q.Sub(p).Scale(t))
}
