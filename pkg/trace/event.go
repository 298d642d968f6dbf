package trace

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind identifies which variant an [Event] holds.
type Kind int

const (
	// KindQuery is a query issued during execution.
	KindQuery Kind = iota + 1
	// KindRule is a rule invoked during execution.
	KindRule
)

// String returns the wire tag of the kind ("Query" or "Rule").
func (k Kind) String() string {
	switch k {
	case KindQuery:
		return "Query"
	case KindRule:
		return "Rule"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Event is the payload recorded for one trace step. It is a closed variant:
// build values with [Query] or [Rule] and switch on Kind to consume them.
// Events carry no structural information; position in the tree comes from
// the depth recorded alongside them.
type Event struct {
	Kind Kind
	// Text is the query term for KindQuery and the rule for KindRule.
	Text string
}

// Query returns a query event for term.
func Query(term string) Event { return Event{Kind: KindQuery, Text: term} }

// Rule returns a rule event for rule.
func Rule(rule string) Event { return Event{Kind: KindRule, Text: rule} }

// conjunction separates the goals of a query term.
const conjunction = " and "

// Format renders the event for display. Queries are broken onto one line per
// conjunct with continuation lines indented; rules are shown verbatim.
func Format(e Event) string {
	switch e.Kind {
	case KindQuery:
		return strings.Join(strings.Split(e.Text, conjunction), "\n  and ")
	case KindRule:
		return e.Text
	default:
		return ""
	}
}

// String implements fmt.Stringer using [Format].
func (e Event) String() string { return Format(e) }

// =============================================================================
// Wire format
// =============================================================================

// Events are externally tagged on the wire:
//
//	{"Query": {"term": "f(x) and g(x)"}}
//	{"Rule": {"rule": "f(x) if g(x);"}}
type wireEvent struct {
	Query *struct {
		Term string `json:"term" yaml:"term"`
	} `json:"Query,omitempty" yaml:"Query,omitempty"`
	Rule *struct {
		Rule string `json:"rule" yaml:"rule"`
	} `json:"Rule,omitempty" yaml:"Rule,omitempty"`
}

func (e Event) toWire() (wireEvent, error) {
	var w wireEvent
	switch e.Kind {
	case KindQuery:
		w.Query = &struct {
			Term string `json:"term" yaml:"term"`
		}{Term: e.Text}
	case KindRule:
		w.Rule = &struct {
			Rule string `json:"rule" yaml:"rule"`
		}{Rule: e.Text}
	default:
		return w, fmt.Errorf("unknown event kind %d", int(e.Kind))
	}
	return w, nil
}

func (w wireEvent) toEvent() (Event, error) {
	switch {
	case w.Query != nil && w.Rule != nil:
		return Event{}, fmt.Errorf("event has both Query and Rule tags")
	case w.Query != nil:
		return Query(w.Query.Term), nil
	case w.Rule != nil:
		return Rule(w.Rule.Rule), nil
	default:
		return Event{}, fmt.Errorf("event must be tagged Query or Rule")
	}
}

// MarshalJSON implements json.Marshaler.
func (e Event) MarshalJSON() ([]byte, error) {
	w, err := e.toWire()
	if err != nil {
		return nil, err
	}
	return json.Marshal(w)
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *Event) UnmarshalJSON(data []byte) error {
	var w wireEvent
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	ev, err := w.toEvent()
	if err != nil {
		return err
	}
	*e = ev
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (e Event) MarshalYAML() (any, error) {
	return e.toWire()
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (e *Event) UnmarshalYAML(value *yaml.Node) error {
	var w wireEvent
	if err := value.Decode(&w); err != nil {
		return err
	}
	ev, err := w.toEvent()
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*e = ev
	return nil
}
