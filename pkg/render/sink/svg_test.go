package sink

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/polarcoaster/pkg/cart"
	"github.com/matzehuels/polarcoaster/pkg/scene"
	"github.com/matzehuels/polarcoaster/pkg/trace"
)

func testLayout(t *testing.T) scene.Layout {
	t.Helper()
	tr, err := trace.New([]int{0, 1, 2, 1}, []trace.Event{
		trace.Query("a(X) and b(X)"),
		trace.Rule("a(X) if b(X)"),
		trace.Query("x < y"),
		trace.Rule("b(1)"),
	})
	if err != nil {
		t.Fatalf("trace.New() error: %v", err)
	}
	sc, err := scene.Build(tr, scene.Options{})
	if err != nil {
		t.Fatalf("scene.Build() error: %v", err)
	}
	return sc.Export()
}

func TestRenderSVG_Basic(t *testing.T) {
	l := testLayout(t)
	svg := string(RenderSVG(l))

	if !strings.HasPrefix(svg, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 960.0 540.0" width="960" height="540">`) {
		t.Errorf("RenderSVG() header = %q", strings.SplitN(svg, "\n", 2)[0])
	}
	if got, want := strings.Count(svg, "<line "), len(l.Track); got != want {
		t.Errorf("RenderSVG() has %d track lines, want %d", got, want)
	}
	if got := strings.Count(svg, `class="node"`); got != l.Len() {
		t.Errorf("RenderSVG() has %d node markers, want %d", got, l.Len())
	}
	if strings.Contains(svg, `class="cart"`) {
		t.Error("RenderSVG() drew a cart without WithCart")
	}
	if strings.Contains(svg, "<text") {
		t.Error("RenderSVG() drew text without WithText")
	}
	if !strings.HasSuffix(svg, "</svg>\n") {
		t.Error("RenderSVG() output not closed")
	}
}

func TestRenderSVG_Cart(t *testing.T) {
	l := testLayout(t)
	a := l.Animator()
	st := a.Advance(a.Start(), 750*time.Millisecond)

	svg := string(RenderSVG(l, WithCart(st)))

	pos := l.Frame(st, nil).Cart
	want := fmt.Sprintf(`<circle class="cart" cx="%.2f" cy="%.2f" r="6.0" fill="red"/>`, pos.X, pos.Y)
	if !strings.Contains(svg, want) {
		t.Errorf("RenderSVG() missing cart %q", want)
	}
	// Cart is drawn over the nodes.
	if strings.Index(svg, `class="cart"`) < strings.LastIndex(svg, `class="node"`) {
		t.Error("cart drawn before nodes")
	}
}

func TestRenderSVG_Text(t *testing.T) {
	l := testLayout(t)

	svg := string(RenderSVG(l, WithText()))
	if !strings.Contains(svg, `x="12.0" y="12.0"`) || !strings.Contains(svg, `font-size="18"`) {
		t.Errorf("RenderSVG() text not placed at (12, 12) size 18")
	}
	if !strings.Contains(svg, `<tspan x="12.0" dy="0">a(X)</tspan><tspan x="12.0" dy="1.2em">  and b(X)</tspan>`) {
		t.Errorf("RenderSVG() query text not split into lines:\n%s", svg)
	}

	// Hovering node 2 shows its (escaped) text instead.
	p := l.Nodes[2].Position
	svg = string(RenderSVG(l, WithText(), WithPointer(p)))
	if !strings.Contains(svg, "x &lt; y") {
		t.Errorf("RenderSVG() missing hovered text")
	}
}

func TestRenderSVG_LabelsAndBackground(t *testing.T) {
	l := testLayout(t)
	svg := string(RenderSVG(l, WithLabels(), WithBackground("white")))

	if got := strings.Count(svg, "<title>"); got != l.Len() {
		t.Errorf("RenderSVG() has %d titles, want %d", got, l.Len())
	}
	if !strings.Contains(svg, "<title>a(X) if b(X)</title>") {
		t.Error("RenderSVG() missing rule tooltip")
	}
	if !strings.Contains(svg, `fill="white"`) {
		t.Error("RenderSVG() missing background")
	}
	if strings.Index(svg, `fill="white"`) > strings.Index(svg, "<line ") {
		t.Error("background drawn over the track")
	}
}

func TestRenderJSON(t *testing.T) {
	l := testLayout(t)

	data, err := RenderJSON(l)
	if err != nil {
		t.Fatalf("RenderJSON() error: %v", err)
	}
	back, err := scene.UnmarshalLayout(data)
	if err != nil {
		t.Fatalf("UnmarshalLayout() error: %v", err)
	}
	if back.Len() != l.Len() || len(back.Track) != len(l.Track) {
		t.Errorf("round trip lost data: %d nodes, %d segments", back.Len(), len(back.Track))
	}
	if strings.Contains(string(data), `"frame"`) {
		t.Error("RenderJSON() emitted a frame without WithJSONFrame")
	}
}

func TestRenderJSON_Frame(t *testing.T) {
	l := testLayout(t)

	data, err := RenderJSON(l, WithJSONFrame(cart.State{From: 2, To: 3, Progress: 0.5}))
	if err != nil {
		t.Fatalf("RenderJSON() error: %v", err)
	}

	var out struct {
		Frame *scene.Frame `json:"frame"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("json.Unmarshal() error: %v", err)
	}
	if out.Frame == nil {
		t.Fatal("RenderJSON() frame missing")
	}
	// Walk is [0 1 2 1 0 3]; entries 2 and 3 are nodes 2 and 1.
	if out.Frame.From != 2 || out.Frame.To != 1 || out.Frame.Progress != 0.5 {
		t.Errorf("frame = %+v", *out.Frame)
	}
}
