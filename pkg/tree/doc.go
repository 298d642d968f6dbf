// Package tree recovers an execution tree and its traversal walk from the
// depth annotations of a pre-order trace.
//
// # Reconstruction
//
// A trace records each step of a depth-first execution as a depth. Given
// only those depths, [Parents] recovers the edge that brought the execution
// to each step:
//
//	depth unchanged   → edge from the previous node at that depth
//	one level deeper  → edge from the node just processed
//	shallower         → edge from the latest node one level above
//
// Every depth-first step moves along exactly one such edge, so the result
// has N-1 edges and every non-root node is the target of exactly one.
//
// # Cart Walk
//
// [Walk] replays the traversal a cart would make over those edges. Moving
// forward is a single hop. On a backtrack the cart climbs back through each
// node between where it is and the ancestor the next node hangs from, so the
// walk revisits those nodes explicitly:
//
//	depths [0 1 2 1 2]
//	edges  0→1 1→2 0→3 3→4
//	walk   0 1 2 1 0 3 4 3
//
// The walk ends by climbing back to a child of the root, so the cart's hop
// from the last entry to the first also follows an edge.
//
// [Reconstruct] runs both passes and returns an immutable [Tree].
package tree
