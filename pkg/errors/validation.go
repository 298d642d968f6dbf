package errors

import (
	"math"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// ValidateViewport validates a target viewport size.
// Both dimensions must be finite and strictly positive; a zero-sized
// viewport would collapse every node onto the same point.
func ValidateViewport(width, height float64) error {
	for _, v := range []struct {
		name string
		val  float64
	}{{"width", width}, {"height", height}} {
		if math.IsNaN(v.val) || math.IsInf(v.val, 0) {
			return New(ErrCodeInvalidViewport, "viewport %s must be finite", v.name)
		}
		if v.val <= 0 {
			return New(ErrCodeInvalidViewport, "viewport %s must be positive, got %g", v.name, v.val)
		}
	}
	return nil
}

// ValidateFraction validates a fill fraction such as the horizontal or
// vertical share of the viewport a layout may occupy.
func ValidateFraction(name string, f float64) error {
	if math.IsNaN(f) || f <= 0 || f > 1 {
		return New(ErrCodeInvalidConfig, "%s must be in (0, 1], got %g", name, f)
	}
	return nil
}

// ValidateFormat checks that format is one of the allowed names.
// Matching is case-sensitive; callers normalize input first.
func ValidateFormat(format string, allowed []string) error {
	if format == "" {
		return New(ErrCodeInvalidFormat, "format cannot be empty")
	}
	if !slices.Contains(allowed, format) {
		return New(ErrCodeInvalidFormat, "unsupported format %q (valid: %s)", format, strings.Join(allowed, ", "))
	}
	return nil
}

// ValidateSessionID validates an animation session identifier.
// Session IDs are UUIDs issued by the server; anything else is rejected
// before a lookup is attempted.
func ValidateSessionID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "session id cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return Wrap(ErrCodeInvalidInput, err, "invalid session id %q", id)
	}
	return nil
}
