// Package cart animates a marker along a cyclic walk of nodes.
//
// The animation is a single Traveling state: the cart is always between two
// consecutive entries of the walk, From and To, at fractional Progress. Time
// moves it forward at a fixed duration per hop regardless of how far apart
// the two nodes are drawn, and after the last hop it wraps to the start.
//
// State is a plain value. The owner of the frame loop keeps it and threads
// it through [Animator.Advance] (or [Animator.Sample]) once per frame:
//
//	a := cart.New(path, 1500*time.Millisecond)
//	s := a.Start()
//	for frame := range frames {
//	    s = a.Sample(s, frame.Elapsed)
//	    draw(a.Position(s, positions))
//	}
package cart

import (
	"time"

	"github.com/matzehuels/polarcoaster/pkg/geom"
)

// DefaultTimePerSegment is the time the cart takes to travel one hop.
const DefaultTimePerSegment = 1500 * time.Millisecond

// State is the animation state. From and To index into the walk (not into
// the node list) and may exceed its length; they are reduced modulo the
// walk length whenever they are read.
type State struct {
	From     int           `json:"from"`
	To       int           `json:"to"`
	Progress float64       `json:"progress"`
	Last     time.Duration `json:"last"` // clock reading at the previous sample
}

// Animator holds the immutable inputs of the animation: the walk and the
// duration of one hop. The zero Animator is not usable; construct with [New].
type Animator struct {
	path           []int
	timePerSegment time.Duration
}

// New returns an animator over path. path must be non-empty. A non-positive
// timePerSegment selects DefaultTimePerSegment.
func New(path []int, timePerSegment time.Duration) *Animator {
	if len(path) == 0 {
		panic("cart: empty path")
	}
	if timePerSegment <= 0 {
		timePerSegment = DefaultTimePerSegment
	}
	return &Animator{path: path, timePerSegment: timePerSegment}
}

// TimePerSegment returns the duration of one hop.
func (a *Animator) TimePerSegment() time.Duration { return a.timePerSegment }

// Len returns the length of the walk.
func (a *Animator) Len() int { return len(a.path) }

// Start returns the initial state: on the first hop with no progress.
func (a *Animator) Start() State { return State{From: 0, To: 1} }

// Reset moves the cart back to the first hop. The clock reading is kept so
// the next Sample measures from the last frame, not from zero.
func (a *Animator) Reset(s State) State {
	return State{From: 0, To: 1, Progress: 0, Last: s.Last}
}

// Advance moves the cart forward by dt. Progress is measured in hops; each
// whole hop completed moves From and To one entry further along the walk,
// so a single large dt can cross several hops. Negative dt is ignored.
func (a *Animator) Advance(s State, dt time.Duration) State {
	if dt > 0 {
		s.Progress += float64(dt) / float64(a.timePerSegment)
	}
	n := len(a.path)
	for s.Progress >= 1 {
		s.From = (s.From + 1) % n
		s.To = (s.To + 1) % n
		s.Progress--
	}
	return s
}

// Sample advances the cart to clock reading now, using the reading stored
// by the previous sample to compute the elapsed time.
func (a *Animator) Sample(s State, now time.Duration) State {
	dt := now - s.Last
	s.Last = now
	return a.Advance(s, dt)
}

// Nodes returns the node indices the cart is travelling between.
func (a *Animator) Nodes(s State) (from, to int) {
	n := len(a.path)
	return a.path[mod(s.From, n)], a.path[mod(s.To, n)]
}

// Position interpolates the cart's position between the positions of its
// two current nodes.
func (a *Animator) Position(s State, positions []geom.Point) geom.Point {
	from, to := a.Nodes(s)
	return positions[from].Lerp(positions[to], s.Progress)
}

func mod(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}
