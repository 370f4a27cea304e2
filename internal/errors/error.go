package errors

import (
	stderrors "errors"
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryRuntime     Category = "runtime"
	CategoryConfig      Category = "config"
	CategoryInterpreter Category = "interpreter"
	CategoryDecode      Category = "decode"
	CategoryCLI         Category = "cli"
)

// VelaError is a structured error with an explanation and a fix suggestion.
type VelaError struct {
	// Code is a unique error identifier (e.g., "E101").
	Code string

	// Category is the error type (config, interpreter, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *VelaError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *VelaError) Unwrap() error {
	return e.Wrapped
}

// WithSuggestion adds a fix suggestion to the error.
func (e *VelaError) WithSuggestion(s string) *VelaError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *VelaError) WithDetail(d string) *VelaError {
	e.Detail = d
	return e
}

// WithDetailf adds a formatted explanation to the error.
func (e *VelaError) WithDetailf(format string, args ...any) *VelaError {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

// Wrap wraps another error.
func (e *VelaError) Wrap(err error) *VelaError {
	e.Wrapped = err
	return e
}

// New creates a VelaError from a registered error code.
func New(code string) *VelaError {
	template, ok := registry[code]
	if !ok {
		return &VelaError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &VelaError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
	}
}

// Newf creates a new VelaError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *VelaError {
	return &VelaError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a VelaError.
func FromError(err error, code string) *VelaError {
	if err == nil {
		return nil
	}
	var ve *VelaError
	if stderrors.As(err, &ve) {
		return ve
	}
	return New(code).Wrap(err)
}

// HasCode reports whether err, or any error it wraps, is a VelaError with
// the given code.
func HasCode(err error, code string) bool {
	var ve *VelaError
	for stderrors.As(err, &ve) {
		if ve.Code == code {
			return true
		}
		err = ve.Wrapped
	}
	return false
}
