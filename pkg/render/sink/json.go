package sink

import (
	"encoding/json"

	"github.com/matzehuels/polarcoaster/pkg/cart"
	"github.com/matzehuels/polarcoaster/pkg/scene"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	state *cart.State
}

// WithJSONFrame adds the frame resolved at st to the output, so a consumer
// can place the cart without replaying the animation.
func WithJSONFrame(st cart.State) JSONOption {
	return func(r *jsonRenderer) { r.state = &st }
}

type jsonOutput struct {
	scene.Layout
	Frame *scene.Frame `json:"frame,omitempty"`
}

// RenderJSON exports the layout as a pretty-printed JSON document. Without
// options the output is exactly [scene.MarshalLayout]'s and can be read back
// with [scene.UnmarshalLayout]; [WithJSONFrame] adds a "frame" member that
// the decoder ignores.
func RenderJSON(l scene.Layout, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	out := jsonOutput{Layout: l}
	if r.state != nil {
		f := l.Frame(*r.state, nil)
		out.Frame = &f
	}
	return json.MarshalIndent(out, "", "  ")
}
