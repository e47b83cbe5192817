// Package cherr provides the structured error taxonomy used across the
// analysis pipeline. Errors carry a kind and severity so callers can decide
// between failing fast, degrading, and reporting a neutral outcome.
package cherr

import (
	"errors"
	"fmt"
)

// Kind categorizes an error by which boundary it crossed.
type Kind int

const (
	// KindConfig - missing or invalid configuration, always fatal
	KindConfig Kind = iota
	// KindInput - bad user input such as a path that is not a repository
	KindInput
	// KindCache - cache read or write failures, never fatal
	KindCache
	// KindExternal - LLM, GitHub, or notification service failures
	KindExternal
	// KindInternal - unexpected internal state
	KindInternal
)

// Severity represents how the pipeline should react to an error.
type Severity int

const (
	// SeverityLow - log and continue
	SeverityLow Severity = iota
	// SeverityMedium - degrade the affected feature, continue the run
	SeverityMedium
	// SeverityHigh - the current operation fails, others may proceed
	SeverityHigh
	// SeverityCritical - stop execution
	SeverityCritical
)

// ErrNoCommits signals an empty history: the pipeline reports a neutral
// result instead of failing.
var ErrNoCommits = errors.New("no commits found in the requested range")

// Error is a categorized error with an optional cause.
type Error struct {
	Kind     Kind
	Severity Severity
	Message  string
	Cause    error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches on kind so errors.Is can test categories.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// IsFatal reports whether execution should stop.
func (e *Error) IsFatal() bool {
	return e.Severity == SeverityCritical
}

// New creates a categorized error.
func New(kind Kind, severity Severity, message string) *Error {
	return &Error{Kind: kind, Severity: severity, Message: message}
}

// Wrap attaches a kind and severity to an existing error.
func Wrap(err error, kind Kind, severity Severity, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Severity: severity, Message: message, Cause: err}
}

// Config creates a fatal configuration error.
func Config(format string, args ...any) *Error {
	return New(KindConfig, SeverityCritical, fmt.Sprintf(format, args...))
}

// Input creates an invalid-input error.
func Input(format string, args ...any) *Error {
	return New(KindInput, SeverityHigh, fmt.Sprintf(format, args...))
}

// Cachef wraps a cache failure. Cache errors never abort a run.
func Cachef(err error, format string, args ...any) *Error {
	return Wrap(err, KindCache, SeverityLow, fmt.Sprintf(format, args...))
}

// External wraps a failure from an outside service.
func External(err error, format string, args ...any) *Error {
	return Wrap(err, KindExternal, SeverityMedium, fmt.Sprintf(format, args...))
}

// Internal creates an unexpected-state error.
func Internal(format string, args ...any) *Error {
	return New(KindInternal, SeverityCritical, fmt.Sprintf(format, args...))
}

// IsFatal reports whether err should stop execution.
func IsFatal(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.IsFatal()
	}
	return false
}

// KindOf returns the kind of err, or KindInternal for uncategorized errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
