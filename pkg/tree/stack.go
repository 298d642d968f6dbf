package tree

// ancestorStack holds the path from the root to the node the walk is
// currently at. Invariant: entries are ordered root first, each entry is the
// parent of the one above it, and the top is the deepest active node.
type ancestorStack struct {
	nodes []int
}

func newAncestorStack(capacity int) *ancestorStack {
	return &ancestorStack{nodes: make([]int, 0, capacity)}
}

func (s *ancestorStack) push(i int) { s.nodes = append(s.nodes, i) }

func (s *ancestorStack) pop() int {
	n := len(s.nodes) - 1
	top := s.nodes[n]
	s.nodes = s.nodes[:n]
	return top
}

// top returns the deepest active node, or Root when the stack is empty.
func (s *ancestorStack) top() int {
	if len(s.nodes) == 0 {
		return Root
	}
	return s.nodes[len(s.nodes)-1]
}

func (s *ancestorStack) empty() bool { return len(s.nodes) == 0 }
