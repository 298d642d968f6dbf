// Package layout places the nodes of a reconstructed trace tree in 2-D.
//
// Layout happens in two stages. [Grid] gives every node an unscaled
// (column, row) cell: the row is the node's depth and each level is centered
// within the widest level, so levels stack top to bottom like the rows of a
// tower. [Fit] then derives a per-axis scale and centering offset that fit
// the grid into a [Viewport]. [Compute] runs both and returns a [Layout]
// holding the grid, the final positions and the transform between them.
//
// Layouts are deterministic: the same depths and viewport always produce the
// same positions.
package layout
