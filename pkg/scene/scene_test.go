package scene

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/matzehuels/polarcoaster/pkg/errors"
	"github.com/matzehuels/polarcoaster/pkg/geom"
	"github.com/matzehuels/polarcoaster/pkg/layout"
	"github.com/matzehuels/polarcoaster/pkg/trace"
	"github.com/matzehuels/polarcoaster/pkg/tree"
)

func sampleTrace(t *testing.T) *trace.Trace {
	t.Helper()
	tr, err := trace.New([]int{0, 1, 2, 1, 2}, []trace.Event{
		trace.Query("ancestor(X, Y) and parent(X, Y)"),
		trace.Rule("ancestor(X, Y) if parent(X, Y)"),
		trace.Query("parent(X, Y)"),
		trace.Rule("ancestor(X, Y) if parent(X, Z) and ancestor(Z, Y)"),
		trace.Query("parent(X, Z)"),
	})
	if err != nil {
		t.Fatalf("trace.New() error: %v", err)
	}
	return tr
}

func TestBuild(t *testing.T) {
	sc, err := Build(sampleTrace(t), Options{})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	if sc.Len() != 5 {
		t.Errorf("Len() = %d, want 5", sc.Len())
	}
	wantEdges := []tree.Edge{{From: 0, To: 1}, {From: 1, To: 2}, {From: 0, To: 3}, {From: 3, To: 4}}
	if got := sc.Tree().Edges(); !slices.Equal(got, wantEdges) {
		t.Errorf("Edges() = %v, want %v", got, wantEdges)
	}
	if got, want := len(sc.Track()), 4*5; got != want {
		t.Errorf("len(Track()) = %d, want %d", got, want)
	}
	if got := len(sc.Positions()); got != 5 {
		t.Errorf("len(Positions()) = %d, want 5", got)
	}
	if sc.Animator().TimePerSegment() != 1500*time.Millisecond {
		t.Errorf("TimePerSegment() = %v", sc.Animator().TimePerSegment())
	}
	if sc.Layout().Viewport != DefaultViewport {
		t.Errorf("Viewport = %v, want %v", sc.Layout().Viewport, DefaultViewport)
	}
	if got := sc.Text(0); got != "ancestor(X, Y)\n  and parent(X, Y)" {
		t.Errorf("Text(0) = %q", got)
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name  string
		trace *trace.Trace
		opts  Options
		code  errors.Code
	}{
		{
			name:  "depth jump",
			trace: &trace.Trace{MaxDepth: 2, Depths: []int{0, 2}, Events: []trace.Event{trace.Rule("a"), trace.Rule("b")}},
			code:  errors.ErrCodeMalformedTrace,
		},
		{
			name:  "missing events",
			trace: &trace.Trace{MaxDepth: 1, Depths: []int{0, 1}, Events: []trace.Event{trace.Rule("a")}},
			code:  errors.ErrCodeMalformedTrace,
		},
		{
			name:  "negative viewport",
			trace: &trace.Trace{Depths: []int{0}, Events: []trace.Event{trace.Rule("a")}},
			opts:  Options{Viewport: layout.Viewport{Width: -1, Height: 10}},
			code:  errors.ErrCodeInvalidViewport,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc, err := Build(tt.trace, tt.opts)
			if sc != nil {
				t.Error("Build() returned a partial scene")
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("Build() error = %v, want %v", err, tt.code)
			}
		})
	}
}

func TestFrame(t *testing.T) {
	sc, err := Build(sampleTrace(t), Options{})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	a := sc.Animator()
	pos := sc.Positions()

	t.Run("start without pointer", func(t *testing.T) {
		f := sc.Frame(a.Start(), nil)
		if f.From != 0 || f.To != 1 || f.Hover != -1 {
			t.Errorf("Frame() = %+v", f)
		}
		if f.Cart != pos[0] {
			t.Errorf("Cart = %v, want %v", f.Cart, pos[0])
		}
		if f.Text != sc.Text(0) {
			t.Errorf("Text = %q, want root text", f.Text)
		}
	})

	t.Run("hovered node wins", func(t *testing.T) {
		p := pos[3].Add(geom.Pt(1, 1))
		f := sc.Frame(a.Start(), &p)
		if f.Hover != 3 || f.Text != sc.Text(3) {
			t.Errorf("Frame() hover = %d text = %q, want node 3", f.Hover, f.Text)
		}
	})

	t.Run("pointer away from nodes", func(t *testing.T) {
		p := geom.Pt(-100, -100)
		f := sc.Frame(a.Start(), &p)
		if f.Hover != -1 || f.Text != sc.Text(0) {
			t.Errorf("Frame() = %+v, want cart text", f)
		}
	})

	t.Run("retrace", func(t *testing.T) {
		// Walk is [0 1 2 1 0 3 4 3]; the fourth hop runs 1 -> 0.
		st := a.Advance(a.Start(), 3*1500*time.Millisecond+750*time.Millisecond)
		f := sc.Frame(st, nil)
		if f.From != 1 || f.To != 0 {
			t.Errorf("From, To = %d, %d, want 1, 0", f.From, f.To)
		}
		if f.Text != sc.Text(1) {
			t.Errorf("Text = %q, want node 1 text", f.Text)
		}
		if want := pos[1].Lerp(pos[0], 0.5); f.Cart != want {
			t.Errorf("Cart = %v, want %v", f.Cart, want)
		}
	})

	t.Run("wrap", func(t *testing.T) {
		// Walk is [0 1 2 1 0 3 4 3]; the eighth hop closes the loop 3 -> 0.
		st := a.Advance(a.Start(), 7*1500*time.Millisecond+750*time.Millisecond)
		f := sc.Frame(st, nil)
		if f.From != 3 || f.To != 0 {
			t.Errorf("From, To = %d, %d, want 3, 0", f.From, f.To)
		}
		if want := pos[3].Lerp(pos[0], 0.5); f.Cart != want {
			t.Errorf("Cart = %v, want %v", f.Cart, want)
		}
	})

	t.Run("every hop follows the track", func(t *testing.T) {
		tr := sc.Tree()
		st := a.Start()
		for step := 0; step < 3*len(tr.CartPath()); step++ {
			f := sc.Frame(st, nil)
			if !tr.Adjacent(f.From, f.To) {
				t.Fatalf("step %d: cart between %d and %d, which share no edge", step, f.From, f.To)
			}
			st = a.Advance(st, 500*time.Millisecond)
		}
	})
}

func TestExportRoundTrip(t *testing.T) {
	sc, err := Build(sampleTrace(t), Options{TimePerSegment: 2 * time.Second})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	data, err := MarshalLayout(sc.Export())
	if err != nil {
		t.Fatalf("MarshalLayout() error: %v", err)
	}
	l, err := UnmarshalLayout(data)
	if err != nil {
		t.Fatalf("UnmarshalLayout() error: %v", err)
	}

	if l.Len() != sc.Len() {
		t.Fatalf("Len() = %d, want %d", l.Len(), sc.Len())
	}
	if !slices.Equal(l.CartPath, sc.Tree().CartPath()) {
		t.Errorf("CartPath = %v, want %v", l.CartPath, sc.Tree().CartPath())
	}
	if l.Nodes[3].Kind != "Rule" || l.Nodes[3].Depth != 1 {
		t.Errorf("Nodes[3] = %+v", l.Nodes[3])
	}
	if l.Animator().TimePerSegment() != 2*time.Second {
		t.Errorf("TimePerSegment() = %v, want 2s", l.Animator().TimePerSegment())
	}

	// A decoded layout resolves frames exactly like the scene.
	a := sc.Animator()
	p := sc.Positions()[4]
	for _, dt := range []time.Duration{0, 900 * time.Millisecond, 7 * time.Second, 13 * time.Second} {
		st := a.Advance(a.Start(), dt)
		if got, want := l.Frame(st, &p), sc.Frame(st, &p); got != want {
			t.Errorf("Frame(%v) = %+v, want %+v", dt, got, want)
		}
		if got, want := l.Frame(st, nil), sc.Frame(st, nil); got != want {
			t.Errorf("Frame(%v, nil) = %+v, want %+v", dt, got, want)
		}
	}
}

func TestUnmarshalLayoutErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `{`},
		{"no nodes", `{"nodes": [], "cart_path": [0]}`},
		{"no path", `{"nodes": [{"index": 0}]}`},
		{"bad index", `{"nodes": [{"index": 1}], "cart_path": [0]}`},
		{"dangling edge", `{"nodes": [{"index": 0}], "edges": [{"from": 0, "to": 1}], "cart_path": [0]}`},
		{"dangling path", `{"nodes": [{"index": 0}], "cart_path": [0, 2]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalLayout([]byte(tt.data))
			if !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("UnmarshalLayout() error = %v, want %v", err, errors.ErrCodeInvalidInput)
			}
		})
	}
}

func TestLayoutFile(t *testing.T) {
	sc, err := Build(sampleTrace(t), Options{})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	path := filepath.Join(t.TempDir(), "coaster.layout.json")
	if err := WriteLayoutFile(sc.Export(), path); err != nil {
		t.Fatalf("WriteLayoutFile() error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("layout file not written: %v", err)
	}

	l, err := ReadLayoutFile(path)
	if err != nil {
		t.Fatalf("ReadLayoutFile() error: %v", err)
	}
	if l.Len() != 5 {
		t.Errorf("Len() = %d, want 5", l.Len())
	}

	_, err = ReadLayoutFile(filepath.Join(t.TempDir(), "missing.json"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("ReadLayoutFile(missing) error = %v, want %v", err, errors.ErrCodeFileNotFound)
	}
}
