package tree

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/matzehuels/polarcoaster/pkg/errors"
)

func TestReconstructBacktrack(t *testing.T) {
	tr, err := Reconstruct([]int{0, 1, 2, 1, 2})
	if err != nil {
		t.Fatalf("Reconstruct() error: %v", err)
	}

	wantEdges := []Edge{{0, 1}, {1, 2}, {0, 3}, {3, 4}}
	if got := tr.Edges(); !slices.Equal(got, wantEdges) {
		t.Errorf("Edges() = %v, want %v", got, wantEdges)
	}

	wantPath := []int{0, 1, 2, 1, 0, 3, 4, 3}
	if got := tr.CartPath(); !slices.Equal(got, wantPath) {
		t.Errorf("CartPath() = %v, want %v", got, wantPath)
	}
}

func TestReconstruct(t *testing.T) {
	tests := []struct {
		name      string
		depths    []int
		wantEdges []Edge
		wantPath  []int
	}{
		{
			name:     "root only",
			depths:   []int{0},
			wantPath: []int{0},
		},
		{
			name:      "chain",
			depths:    []int{0, 1, 2, 3},
			wantEdges: []Edge{{0, 1}, {1, 2}, {2, 3}},
			wantPath:  []int{0, 1, 2, 3, 2, 1},
		},
		{
			name:      "siblings ride from the previous sibling",
			depths:    []int{0, 1, 1, 1},
			wantEdges: []Edge{{0, 1}, {1, 2}, {2, 3}},
			wantPath:  []int{0, 1, 2, 3, 2, 1},
		},
		{
			name:      "backtrack through siblings",
			depths:    []int{0, 1, 2, 2, 1},
			wantEdges: []Edge{{0, 1}, {1, 2}, {2, 3}, {0, 4}},
			wantPath:  []int{0, 1, 2, 3, 2, 1, 0, 4},
		},
		{
			name:      "single child",
			depths:    []int{0, 1},
			wantEdges: []Edge{{0, 1}},
			wantPath:  []int{0, 1},
		},
		{
			name:      "backtrack by two levels",
			depths:    []int{0, 1, 2, 3, 2},
			wantEdges: []Edge{{0, 1}, {1, 2}, {2, 3}, {1, 4}},
			wantPath:  []int{0, 1, 2, 3, 2, 1, 4, 1},
		},
		{
			name:      "backtrack by one level",
			depths:    []int{0, 1, 2, 3, 3, 2, 3},
			wantEdges: []Edge{{0, 1}, {1, 2}, {2, 3}, {3, 4}, {1, 5}, {5, 6}},
			wantPath:  []int{0, 1, 2, 3, 4, 3, 2, 1, 5, 6, 5, 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := Reconstruct(tt.depths)
			if err != nil {
				t.Fatalf("Reconstruct() error: %v", err)
			}
			if got := tr.Edges(); !slices.Equal(got, tt.wantEdges) {
				t.Errorf("Edges() = %v, want %v", got, tt.wantEdges)
			}
			if got := tr.CartPath(); !slices.Equal(got, tt.wantPath) {
				t.Errorf("CartPath() = %v, want %v", got, tt.wantPath)
			}
		})
	}
}

func TestReconstructMalformed(t *testing.T) {
	tests := []struct {
		name   string
		depths []int
	}{
		{"empty", nil},
		{"root not at zero", []int{1, 2}},
		{"forward jump", []int{0, 1, 3}},
		{"second root", []int{0, 1, 0}},
		{"negative depth", []int{0, -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := Reconstruct(tt.depths)
			if err == nil {
				t.Fatalf("Reconstruct(%v) = %v, want error", tt.depths, tr)
			}
			if !errors.Is(err, errors.ErrCodeMalformedTrace) {
				t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeMalformedTrace)
			}
		})
	}
}

func TestReconstructDoesNotMutateInput(t *testing.T) {
	depths := []int{0, 1, 2, 1, 2}
	orig := slices.Clone(depths)
	if _, err := Reconstruct(depths); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(depths, orig) {
		t.Errorf("input mutated: %v, want %v", depths, orig)
	}
}

func TestWalkRejectsNonAncestorParent(t *testing.T) {
	// Node 3 hangs from node 1, which the walk left when it moved to node 2.
	_, err := Walk([]int{Root, 0, 0, 1})
	if !errors.Is(err, errors.ErrCodeMalformedTrace) {
		t.Errorf("Walk() error = %v, want MALFORMED_TRACE", err)
	}
}

// randomDepths returns a valid pre-order depth sequence of length n.
func randomDepths(r *rand.Rand, n int) []int {
	depths := make([]int, n)
	for i := 1; i < n; i++ {
		depths[i] = 1 + r.IntN(depths[i-1]+1)
	}
	return depths
}

func TestReconstructProperties(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))

	for iter := 0; iter < 200; iter++ {
		depths := randomDepths(r, 1+r.IntN(60))
		tr, err := Reconstruct(depths)
		if err != nil {
			t.Fatalf("Reconstruct(%v) error: %v", depths, err)
		}

		edges := tr.Edges()
		if len(edges) != len(depths)-1 {
			t.Fatalf("len(Edges()) = %d, want %d", len(edges), len(depths)-1)
		}

		targets := make(map[int]bool, len(edges))
		for _, e := range edges {
			if targets[e.To] {
				t.Fatalf("node %d has two parent edges in %v", e.To, depths)
			}
			targets[e.To] = true
			if e.From >= e.To {
				t.Fatalf("edge %v points backwards in %v", e, depths)
			}
		}

		path := tr.CartPath()
		if path[0] != 0 {
			t.Fatalf("CartPath()[0] = %d, want 0", path[0])
		}
		for i := 1; i < len(path); i++ {
			if !tr.Adjacent(path[i-1], path[i]) {
				t.Fatalf("path step %d -> %d is not an edge (depths %v, path %v)", path[i-1], path[i], depths, path)
			}
		}
		if last := path[len(path)-1]; len(path) > 1 && !tr.Adjacent(last, path[0]) {
			t.Fatalf("wrap step %d -> %d is not an edge (depths %v, path %v)", last, path[0], depths, path)
		}

		// First visits occur in trace order.
		seen := make([]bool, len(depths))
		next := 0
		for _, n := range path {
			if !seen[n] {
				if n != next {
					t.Fatalf("node %d first visited before node %d in %v", n, next, path)
				}
				seen[n] = true
				next++
			}
		}
		if next != len(depths) {
			t.Fatalf("path visits %d of %d nodes", next, len(depths))
		}
	}
}

func TestAncestorStack(t *testing.T) {
	s := newAncestorStack(4)
	if !s.empty() || s.top() != Root {
		t.Fatalf("new stack top = %d, want Root", s.top())
	}
	s.push(0)
	s.push(3)
	if s.top() != 3 {
		t.Errorf("top() = %d, want 3", s.top())
	}
	if got := s.pop(); got != 3 {
		t.Errorf("pop() = %d, want 3", got)
	}
	if s.top() != 0 {
		t.Errorf("top() = %d, want 0", s.top())
	}
}
