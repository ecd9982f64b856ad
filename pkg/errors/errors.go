// Package errors defines the coded errors shared by the engine, the CLI and
// the export service.
//
// Codes are grouped by origin: INVALID_* for rejected input, EMPTY_SCENE,
// IMAGE_DECODE, RASTERIZATION and CONTAINER_LAYOUT for engine failures, and
// INTERNAL_ERROR for everything unexpected. Layout geometry never fails;
// only decode, rasterize and encode stages return errors, each scoped to one
// photo or one export attempt.
//
//	err := errors.Wrap(errors.ErrCodeImageDecode, cause, "decode %s", id)
//	if errors.Is(err, errors.ErrCodeImageDecode) {
//	    // skip the photo, keep the rest
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidTemplate Code = "INVALID_TEMPLATE"
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"
	ErrCodeInvalidColor    Code = "INVALID_COLOR"

	// Engine errors
	ErrCodeEmptyScene       Code = "EMPTY_SCENE"
	ErrCodeImageDecode      Code = "IMAGE_DECODE"
	ErrCodeRasterization    Code = "RASTERIZATION"
	ErrCodeContainerLayout  Code = "CONTAINER_LAYOUT"
	ErrCodeExportInProgress Code = "EXPORT_IN_PROGRESS"

	// Resource errors
	ErrCodeNotFound Code = "NOT_FOUND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error carries a Code, a message safe to show users, and an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an Error with a formatted message and no cause.
func New(code Code, format string, args ...any) *Error {
	return Wrap(code, nil, format, args...)
}

// Wrap returns an Error around cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether the first *Error in err's chain carries code.
func Is(err error, code Code) bool {
	e, ok := asError(err)
	return ok && e.Code == code
}

// GetCode returns the code of the first *Error in err's chain, or "".
func GetCode(err error) Code {
	if e, ok := asError(err); ok {
		return e.Code
	}
	return ""
}

func asError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// UserMessage returns the text shown to users: the message without the code
// prefix. Rasterization and internal failures get a generic message because
// their causes belong in logs. Uncoded errors are returned as-is.
func UserMessage(err error) string {
	if e, ok := asError(err); ok {
		switch e.Code {
		case ErrCodeRasterization:
			return "the image could not be rendered, please try again"
		case ErrCodeInternal, ErrCodeContainerLayout:
			return "export failed unexpectedly, please try again"
		}
		return e.Message
	}
	return err.Error()
}

// Retryable reports whether the user may simply retry the failed operation.
func Retryable(err error) bool {
	switch GetCode(err) {
	case ErrCodeRasterization, ErrCodeExportInProgress, ErrCodeContainerLayout:
		return true
	}
	return false
}
