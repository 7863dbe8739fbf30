// Package errors provides structured error types for markstack.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI, batch runner and HTTP API
//   - Machine-readable error codes for per-image failure records
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Codes fall in two groups. Recoverable codes describe a condition the
// pipeline works around and only logs:
//   - INVALID_COLOR: unknown color token, black is used instead
//   - FONT_UNAVAILABLE: a font source failed, the next one (or the
//     embedded default) is used
//   - NO_NUMBER: the file name holds no number, the numeric mark is skipped
//
// Fatal codes stop either a single image or the whole run:
//   - IMAGE_DECODE / IMAGE_ENCODE: the image is marked failed, the batch
//     continues
//   - MISSING_MARK_SOURCE: neither a graphic nor a text mark is configured;
//     nothing is processed
//
// # Usage
//
//	err := errors.New(errors.ErrCodeMissingMarkSource, "no graphic or text mark configured")
//	if errors.Is(err, errors.ErrCodeMissingMarkSource) {
//	    // Abort before processing
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeImageDecode, origErr, "decode %s", path)
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
	ErrCodeInvalidColor    Code = "INVALID_COLOR"
	ErrCodeInvalidPosition Code = "INVALID_POSITION"
	ErrCodeInvalidPattern  Code = "INVALID_PATTERN"
	ErrCodeInvalidPreset   Code = "INVALID_PRESET"
	ErrCodeInvalidPath     Code = "INVALID_PATH"

	// Mark configuration errors
	ErrCodeMissingMarkSource Code = "MISSING_MARK_SOURCE"
	ErrCodeNoNumber          Code = "NO_NUMBER"

	// Image codec errors
	ErrCodeImageDecode Code = "IMAGE_DECODE"
	ErrCodeImageEncode Code = "IMAGE_ENCODE"

	// Font errors
	ErrCodeFontUnavailable Code = "FONT_UNAVAILABLE"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Network errors
	ErrCodeNetwork Code = "NETWORK_ERROR"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return fmt.Sprintf("%s: %v", e.Message, e.Cause)
		}
		return e.Message
	}
	return err.Error()
}

// Recoverable reports whether err carries a code the pipeline works around
// (fallback color, fallback font, skipped numeric mark).
func Recoverable(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidColor, ErrCodeFontUnavailable, ErrCodeNoNumber:
		return true
	}
	return false
}
