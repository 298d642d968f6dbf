package trace

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/polarcoaster/pkg/errors"
	"github.com/matzehuels/polarcoaster/pkg/tree"
)

// Trace is an ordered sequence of (depth, event) steps recorded from a
// depth-first execution. Depths[i] and Events[i] describe step i; MaxDepth
// caches the largest depth present.
type Trace struct {
	MaxDepth int
	Depths   []int
	Events   []Event
}

// New builds a trace from parallel depth and event slices, computing
// MaxDepth. The result is validated.
func New(depths []int, events []Event) (*Trace, error) {
	t := &Trace{
		MaxDepth: maxOf(depths),
		Depths:   depths,
		Events:   events,
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Len returns the number of steps.
func (t *Trace) Len() int { return len(t.Depths) }

// Text returns the formatted payload of step i.
func (t *Trace) Text(i int) string { return Format(t.Events[i]) }

// Validate checks the trace against the structural invariant the engine
// relies on: equal-length depths and events, a single root at depth 0,
// depth increases of at most one per step, and a MaxDepth that matches the
// depths. Violations are [errors.ErrCodeMalformedTrace] errors.
func (t *Trace) Validate() error {
	if len(t.Depths) != len(t.Events) {
		return errors.New(errors.ErrCodeMalformedTrace, "trace has %d depths but %d events", len(t.Depths), len(t.Events))
	}
	if err := tree.Validate(t.Depths); err != nil {
		return err
	}
	if got := maxOf(t.Depths); got != t.MaxDepth {
		return errors.New(errors.ErrCodeMalformedTrace, "max_depth is %d but deepest node is at depth %d", t.MaxDepth, got)
	}
	for i, e := range t.Events {
		if e.Kind != KindQuery && e.Kind != KindRule {
			return errors.New(errors.ErrCodeMalformedTrace, "event %d has unknown kind %d", i, int(e.Kind))
		}
	}
	return nil
}

func maxOf(depths []int) int {
	if len(depths) == 0 {
		return 0
	}
	return slices.Max(depths)
}

// =============================================================================
// Serialization
// =============================================================================

// wireTrace is the on-disk shape:
//
//	{
//	  "max_depth": 2,
//	  "depths": [0, 1, 2],
//	  "events": [{"Query": {"term": "f(1)"}}, {"Rule": {"rule": "f(x) if g(x);"}}, ...]
//	}
//
// max_depth may be omitted, in which case it is computed.
type wireTrace struct {
	MaxDepth *int    `json:"max_depth,omitempty" yaml:"max_depth,omitempty"`
	Depths   []int   `json:"depths" yaml:"depths"`
	Events   []Event `json:"events" yaml:"events"`
}

func (w wireTrace) toTrace() (*Trace, error) {
	t := &Trace{Depths: w.Depths, Events: w.Events}
	if w.MaxDepth != nil {
		t.MaxDepth = *w.MaxDepth
	} else {
		t.MaxDepth = maxOf(w.Depths)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// MarshalJSON implements json.Marshaler.
func (t *Trace) MarshalJSON() ([]byte, error) {
	md := t.MaxDepth
	return json.Marshal(wireTrace{MaxDepth: &md, Depths: t.Depths, Events: t.Events})
}

// ReadJSON decodes and validates a JSON trace from r.
//
// Decoding failures are reported as [errors.ErrCodeInvalidTrace]; a trace
// that decodes but violates the structural invariant is reported as
// [errors.ErrCodeMalformedTrace]. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*Trace, error) {
	var w wireTrace
	if err := json.NewDecoder(r).Decode(&w); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidTrace, err, "decode JSON trace")
	}
	return w.toTrace()
}

// ReadYAML decodes and validates a YAML trace with the same shape as the
// JSON form. ReadYAML does not close r.
func ReadYAML(r io.Reader) (*Trace, error) {
	var w wireTrace
	if err := yaml.NewDecoder(r).Decode(&w); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidTrace, err, "decode YAML trace")
	}
	return w.toTrace()
}

// ImportFile reads the trace at path. Files ending in .yaml or .yml are
// decoded as YAML; everything else as JSON.
func ImportFile(path string) (*Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ReadYAML(f)
	default:
		return ReadJSON(f)
	}
}
