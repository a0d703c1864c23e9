// Package errs classifies failures by kind so callers and tests can tell a bad
// configuration from a store failure, a local I/O failure or invalid input.
package errs

import (
	"errors"
	"fmt"
)

// Kind is a string code for a class of error.
type Kind string

const (
	KindConfig  Kind = "INVALID_CONFIGURATION"
	KindStore   Kind = "STORE_ERROR"
	KindIO      Kind = "IO_ERROR"
	KindInput   Kind = "INVALID_INPUT"
	KindUnknown Kind = "UNKNOWN"
)

// ErrNotFound is matched by store errors for missing objects or buckets.
var ErrNotFound = errors.New("not found")

// Error carries the operation, the object key (if any) and the kind of a failure.
type Error struct {
	Op   string
	Kind Kind
	Key  string
	Err  error
}

func (e *Error) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, op string, err error) *Error {
	return &Error{Op: op, Kind: kind, Err: err}
}

func (e *Error) WithKey(key string) *Error {
	e.Key = key
	return e
}

func Config(op string, err error) *Error { return New(KindConfig, op, err) }
func Store(op string, err error) *Error  { return New(KindStore, op, err) }
func IO(op string, err error) *Error     { return New(KindIO, op, err) }
func Input(op string, err error) *Error  { return New(KindInput, op, err) }

// KindOf returns the kind of the outermost *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// notFoundError marks a store error as a missing object while keeping the SDK error.
type notFoundError struct {
	err error
}

func (n notFoundError) Error() string { return n.err.Error() }

func (n notFoundError) Unwrap() []error { return []error{n.err, ErrNotFound} }

// NotFound wraps err so that errors.Is(err, ErrNotFound) holds.
func NotFound(err error) error {
	if err == nil {
		return nil
	}
	return notFoundError{err: err}
}
