// Package parseerr holds the error kinds returned by the DID document,
// verification method, credential and presentation parsers.
package parseerr

import (
	"errors"
	"fmt"
)

// Error kinds. Match them with errors.Is.
var (
	// ErrMalformedJSON is returned for empty input or text that is not JSON.
	ErrMalformedJSON = errors.New("malformed JSON")
	// ErrMissingField is returned when a required property is absent or null.
	ErrMissingField = errors.New("missing required field")
	// ErrInvalidShape is returned when a property is present with the wrong JSON type or content.
	ErrInvalidShape = errors.New("invalid field shape")
	// ErrDuplicateID is returned when two verification methods share an id.
	ErrDuplicateID = errors.New("duplicate id")
	// ErrUnsupportedKey is returned when a key encoding is present but not supported.
	ErrUnsupportedKey = errors.New("unsupported key format")
	// ErrMalformedKey is returned when key material cannot be decoded.
	ErrMalformedKey = errors.New("malformed key encoding")
	// ErrNoUsableKey is returned when a verification method carries no key material.
	ErrNoUsableKey = errors.New("no usable public key")
	// ErrInvalidArgument is returned by constructors called with invalid arguments.
	ErrInvalidArgument = errors.New("invalid argument")
)

// Error is the single error type produced by the parsers. Its message is meant
// to be shown to people; Kind tells callers which class of failure occurred.
type Error struct {
	Kind  error
	Msg   string
	Cause error
}

// New creates an Error of the given kind with a formatted message.
func New(kind error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error of the given kind that wraps cause.
func Wrap(kind error, cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Cause: cause}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Msg + ": " + e.Cause.Error()
	}
	return e.Msg
}

// Is reports whether target is the kind of this error.
func (e *Error) Is(target error) bool {
	return e.Kind != nil && target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// KindOf returns the kind of err, or nil if err is not (or does not wrap) an *Error.
func KindOf(err error) error {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return nil
}
