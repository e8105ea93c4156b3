// Package apperr classifies failures so callers can pick exit codes and
// decide whether a failure is fatal.
package apperr

import (
	"errors"
	"fmt"
)

// Kind is the failure category.
type Kind int

const (
	Unknown Kind = iota
	Usage
	NotFound
	DependencyMissing
	Transcription
	Download
	Capture
)

func (k Kind) String() string {
	switch k {
	case Usage:
		return "usage"
	case NotFound:
		return "not_found"
	case DependencyMissing:
		return "dependency_missing"
	case Transcription:
		return "transcription"
	case Download:
		return "download"
	case Capture:
		return "capture"
	default:
		return "unknown"
	}
}

// Error wraps an underlying error with its Kind. Msg, when set, replaces the
// wrapped error's text in Error().
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	case e.Msg != "":
		return e.Msg
	case e.Err != nil:
		return e.Err.Error()
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Err }

// New returns an Error of kind k with a formatted message.
func New(k Kind, format string, args ...any) error {
	return &Error{Kind: k, Msg: fmt.Sprintf(format, args...)}
}

// Wrap tags err with kind k. A nil err stays nil.
func Wrap(k Kind, err error, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: k, Msg: msg, Err: err}
}

// KindOf returns the outermost Kind found in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

// Is reports whether err carries kind k.
func Is(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}
