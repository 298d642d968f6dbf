package tree

import (
	"slices"

	"github.com/matzehuels/polarcoaster/pkg/errors"
)

// Root is the parent recorded for node 0, which has none.
const Root = -1

// Edge is a directed parent → child link between two trace nodes,
// identified by their index in the trace.
type Edge struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// Tree is the structure recovered from a depth sequence: one parent per
// non-root node plus the cart walk over those parents. A Tree is immutable;
// accessors return copies.
type Tree struct {
	parents []int
	edges   []Edge
	path    []int
}

// Reconstruct recovers the tree and cart path implied by depths.
//
// depths must be the pre-order depths of a depth-first walk: depths[0] is 0,
// no later node is at depth 0, and each depth is at most one more than the
// one before it. Any violation is reported as an [errors.ErrCodeMalformedTrace]
// error and no partial tree is returned. depths is not modified.
func Reconstruct(depths []int) (*Tree, error) {
	parents, err := Parents(depths)
	if err != nil {
		return nil, err
	}
	path, err := Walk(parents)
	if err != nil {
		return nil, err
	}

	edges := make([]Edge, 0, len(parents)-1)
	for child, parent := range parents[1:] {
		edges = append(edges, Edge{From: parent, To: child + 1})
	}
	return &Tree{parents: parents, edges: edges, path: path}, nil
}

// Len returns the number of nodes.
func (t *Tree) Len() int { return len(t.parents) }

// Parent returns the parent index of node i, or [Root] for node 0.
func (t *Tree) Parent(i int) int { return t.parents[i] }

// Parents returns the parent of every node; entry 0 is [Root].
func (t *Tree) Parents() []int { return slices.Clone(t.parents) }

// Edges returns the N-1 edges ordered by child index.
func (t *Tree) Edges() []Edge { return slices.Clone(t.edges) }

// CartPath returns the walk the cart follows: every node in trace order with
// the retrace back up to the branching ancestor inserted at each backtrack,
// then the climb home. Consecutive entries are always joined by an edge, as
// are the last entry and the first.
func (t *Tree) CartPath() []int { return slices.Clone(t.path) }

// Adjacent reports whether a and b are joined by an edge in either direction.
func (t *Tree) Adjacent(a, b int) bool {
	if a < 0 || b < 0 || a >= len(t.parents) || b >= len(t.parents) {
		return false
	}
	return t.parents[a] == b || t.parents[b] == a
}

// Validate checks the structural invariant [Reconstruct] relies on.
func Validate(depths []int) error {
	if len(depths) == 0 {
		return errors.New(errors.ErrCodeMalformedTrace, "trace is empty")
	}
	if depths[0] != 0 {
		return errors.New(errors.ErrCodeMalformedTrace, "first node must be the root at depth 0, got depth %d", depths[0])
	}
	for i := 1; i < len(depths); i++ {
		d, prev := depths[i], depths[i-1]
		switch {
		case d < 0:
			return errors.New(errors.ErrCodeMalformedTrace, "node %d has negative depth %d", i, d)
		case d == 0:
			return errors.New(errors.ErrCodeMalformedTrace, "node %d is a second root at depth 0", i)
		case d > prev+1:
			return errors.New(errors.ErrCodeMalformedTrace, "node %d jumps from depth %d to %d", i, prev, d)
		}
	}
	return nil
}

// Parents computes the parent of every node from its depth.
//
// Moving to the same depth attaches the node to the previous node at that
// depth, moving one level deeper attaches it to the node just processed, and
// moving shallower attaches it to the most recent node one level above the
// new depth.
func Parents(depths []int) ([]int, error) {
	if err := Validate(depths); err != nil {
		return nil, err
	}

	parents := make([]int, len(depths))
	parents[0] = Root

	// lastInLevel[d] is the most recent node seen at depth d.
	lastInLevel := []int{0}
	current := 0
	for i := 1; i < len(depths); i++ {
		d := depths[i]
		switch {
		case d == current:
			parents[i] = lastInLevel[d]
		case d == current+1:
			parents[i] = lastInLevel[current]
		default:
			parents[i] = lastInLevel[d-1]
		}

		if d == len(lastInLevel) {
			lastInLevel = append(lastInLevel, i)
		} else {
			lastInLevel[d] = i
		}
		current = d
	}
	return parents, nil
}

// Walk replays the cart's depth-first walk over a parent array produced by
// [Parents]. Nodes are visited in index order; when the next node's parent is
// not the node just visited, the walk first climbs back through each
// ancestor up to and including that parent.
//
// After the last node the walk climbs back toward the root, stopping one
// hop short of it. The walk is closed: the hop from its last entry back to
// its first is an edge too, so a cart looping over it never leaves the tree.
func Walk(parents []int) ([]int, error) {
	if len(parents) == 0 {
		return nil, errors.New(errors.ErrCodeMalformedTrace, "trace is empty")
	}

	path := make([]int, 1, len(parents))
	stack := newAncestorStack(len(parents))
	stack.push(0)

	for i := 1; i < len(parents); i++ {
		p := parents[i]
		if p < 0 || p >= i {
			return nil, errors.New(errors.ErrCodeMalformedTrace, "node %d has invalid parent %d", i, p)
		}
		if stack.top() != p {
			// The node being left is already on the path.
			stack.pop()
			for !stack.empty() && stack.top() != p {
				path = append(path, stack.pop())
			}
			if stack.empty() {
				return nil, errors.New(errors.ErrCodeMalformedTrace, "node %d: parent %d is not an ancestor of node %d", i, p, i-1)
			}
			path = append(path, p)
		}
		stack.push(i)
		path = append(path, i)
	}

	stack.pop()
	for !stack.empty() && stack.top() != 0 {
		path = append(path, stack.pop())
	}
	return path, nil
}
