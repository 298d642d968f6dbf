// Package trace defines the execution trace that polarcoaster visualizes and
// decodes it from JSON or YAML.
//
// A [Trace] is a flat list of steps, each a depth plus an [Event]. Events are
// a closed variant of two kinds, queries and rules; [Format] turns either
// into display text.
//
// Decoding always validates: a trace whose depths could not have come from a
// depth-first walk is rejected with [errors.ErrCodeMalformedTrace] before any
// layout work starts.
//
//	t, err := trace.ImportFile("coaster.json")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(t.Text(0))
//
// [errors.ErrCodeMalformedTrace]: github.com/matzehuels/polarcoaster/pkg/errors
package trace
