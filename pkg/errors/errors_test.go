package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeMalformedTrace, "node %d jumps to depth %d", 3, 5)

	if err.Code != ErrCodeMalformedTrace {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeMalformedTrace)
	}

	if err.Message != "node 3 jumps to depth 5" {
		t.Errorf("Message = %v, want %v", err.Message, "node 3 jumps to depth 5")
	}

	expected := "MALFORMED_TRACE: node 3 jumps to depth 5"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("unexpected EOF")
	err := Wrap(ErrCodeInvalidTrace, cause, "decode coaster.json")

	if err.Code != ErrCodeInvalidTrace {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidTrace)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	if unwrapped := errors.Unwrap(err); unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}

	want := "INVALID_TRACE: decode coaster.json: unexpected EOF"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeMalformedTrace, "test"),
			code:     ErrCodeMalformedTrace,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeMalformedTrace, "test"),
			code:     ErrCodeFileNotFound,
			expected: false,
		},
		{
			name:     "outermost code wins",
			err:      Wrap(ErrCodeInvalidTrace, New(ErrCodeMalformedTrace, "inner"), "outer"),
			code:     ErrCodeInvalidTrace,
			expected: true,
		},
		{
			name:     "fmt wrapped",
			err:      fmt.Errorf("load: %w", New(ErrCodeMalformedTrace, "inner")),
			code:     ErrCodeMalformedTrace,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeInvalidInput,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInvalidInput,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Code
	}{
		{"Error type", New(ErrCodeSessionNotFound, "test"), ErrCodeSessionNotFound},
		{"plain error", errors.New("plain"), ""},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.expected {
				t.Errorf("GetCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(New(ErrCodeInvalidViewport, "width must be positive")); got != "width must be positive" {
		t.Errorf("UserMessage() = %q", got)
	}
	if got := UserMessage(errors.New("boom")); got != "boom" {
		t.Errorf("UserMessage() = %q, want boom", got)
	}
}

func TestKind(t *testing.T) {
	tests := []struct {
		err  error
		want Kind
	}{
		{New(ErrCodeMalformedTrace, "x"), KindInput},
		{New(ErrCodeInvalidViewport, "x"), KindInput},
		{fmt.Errorf("open: %w", New(ErrCodeFileNotFound, "x")), KindNotFound},
		{New(ErrCodeSessionNotFound, "x"), KindNotFound},
		{New(ErrCodeSessionLimit, "x"), KindCapacity},
		{New(ErrCodeUnsupported, "x"), KindUnsupported},
		{New(ErrCodeInternal, "x"), KindInternal},
		{errors.New("plain"), KindInternal},
		{New(Code("SOMETHING_NEW"), "x"), KindInternal},
	}

	for _, tt := range tests {
		if got := KindOf(tt.err); got != tt.want {
			t.Errorf("KindOf(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
