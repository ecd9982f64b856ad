package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidInput, "test message: %s", "value")

	if err.Code != ErrCodeInvalidInput {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidInput)
	}

	if err.Message != "test message: value" {
		t.Errorf("Message = %v, want %v", err.Message, "test message: value")
	}

	expected := "INVALID_INPUT: test message: value"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("unexpected EOF")
	err := Wrap(ErrCodeImageDecode, cause, "decode photo-3")

	if err.Code != ErrCodeImageDecode {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeImageDecode)
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

	want := "IMAGE_DECODE: decode photo-3: unexpected EOF"
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
			err:      New(ErrCodeEmptyScene, "nothing to export"),
			code:     ErrCodeEmptyScene,
			expected: true,
		},
		{
			name:     "different code",
			err:      New(ErrCodeEmptyScene, "nothing to export"),
			code:     ErrCodeRasterization,
			expected: false,
		},
		{
			name:     "wrapped by fmt",
			err:      fmt.Errorf("export: %w", New(ErrCodeRasterization, "canvas too large")),
			code:     ErrCodeRasterization,
			expected: true,
		},
		{
			name:     "plain error",
			err:      errors.New("boom"),
			code:     ErrCodeInternal,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInternal,
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
	if got := GetCode(New(ErrCodeExportInProgress, "busy")); got != ErrCodeExportInProgress {
		t.Errorf("GetCode() = %v, want %v", got, ErrCodeExportInProgress)
	}
	if got := GetCode(errors.New("plain")); got != "" {
		t.Errorf("GetCode(plain) = %q, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"structured", New(ErrCodeEmptyScene, "add a photo before exporting"), "add a photo before exporting"},
		{"rasterization hides cause", Wrap(ErrCodeRasterization, errors.New("alloc"), "draw"), "the image could not be rendered, please try again"},
		{"internal hides cause", New(ErrCodeInternal, "nil pointer"), "export failed unexpectedly, please try again"},
		{"plain", errors.New("plain failure"), "plain failure"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.want {
				t.Errorf("UserMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRetryable(t *testing.T) {
	if !Retryable(New(ErrCodeRasterization, "x")) {
		t.Error("rasterization should be retryable")
	}
	if !Retryable(New(ErrCodeExportInProgress, "x")) {
		t.Error("export in progress should be retryable")
	}
	if Retryable(New(ErrCodeEmptyScene, "x")) {
		t.Error("empty scene should not be retryable")
	}
	if Retryable(errors.New("plain")) {
		t.Error("plain errors should not be retryable")
	}
}
