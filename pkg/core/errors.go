package core

import (
	"errors"
	"fmt"
)

// Kind classifies failures surfaced to tool callers.
type Kind int

// Error kinds.
const (
	KindUnknown Kind = iota
	// KindInvalidArgument is a missing or empty required input. It never reaches the data layer.
	KindInvalidArgument
	// KindRejectedQuery is input that does not start with SELECT.
	KindRejectedQuery
	// KindQueryExecutionFailed is a failure reported by the data store while running a statement.
	KindQueryExecutionFailed
	// KindDataUnavailable is a connection-level failure.
	KindDataUnavailable
)

// String returns the snake_case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid_argument"
	case KindRejectedQuery:
		return "rejected_query"
	case KindQueryExecutionFailed:
		return "query_execution_failed"
	case KindDataUnavailable:
		return "data_unavailable"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is checks against a kind.
var (
	ErrInvalidArgument      = &Error{Kind: KindInvalidArgument}
	ErrRejectedQuery        = &Error{Kind: KindRejectedQuery}
	ErrQueryExecutionFailed = &Error{Kind: KindQueryExecutionFailed}
	ErrDataUnavailable      = &Error{Kind: KindDataUnavailable}
)

// Error is a classified failure.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

// Errorf builds a classified error with a formatted message.
func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap classifies err under kind with msg as context.
// An error that already carries a kind keeps it.
func Wrap(kind Kind, err error, msg string) error {
	if err == nil {
		return nil
	}
	if k := KindOf(err); k != KindUnknown {
		kind = k
	}
	return &Error{Kind: kind, Msg: msg, Err: err}
}

func (e *Error) Error() string {
	switch {
	case e.Msg == "" && e.Err == nil:
		return e.Kind.String()
	case e.Msg == "":
		return e.Err.Error()
	case e.Err == nil:
		return e.Msg
	default:
		return e.Msg + ": " + e.Err.Error()
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Msg == "" && t.Err == nil && t.Kind == e.Kind
}

// KindOf returns the kind of the outermost classified error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
