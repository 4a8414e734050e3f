// Package fault defines the error taxonomy shared by every collaborator
// boundary. Provider, store and model failures are translated into one of
// the kinds below exactly once, where they happen; callers only ever branch
// on the kind.
package fault

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure for the caller.
type Kind string

const (
	InvalidArgument      Kind = "invalid_argument"
	NotFound             Kind = "not_found"
	Upstream             Kind = "upstream_error"
	UpstreamMissingField Kind = "upstream_missing_field"
	StoreUnavailable     Kind = "store_unavailable"
	ModelUnavailable     Kind = "model_unavailable"
)

// Error carries a kind, a human-readable message and an optional cause.
// The message must never contain credentials or raw upstream bodies.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates an error of the given kind with formatting.
func Newf(kind Kind, format string, a ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, a...)}
}

// Wrap attributes a cause to a new error of the given kind.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the kind from an error chain. The second return value is
// false when the chain contains no *Error.
func KindOf(err error) (Kind, bool) {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind, true
	}
	return "", false
}

// Is reports whether the error chain carries the given kind.
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// StatusCode maps an error to the HTTP status returned to the caller.
// Unclassified errors are treated as internal.
func StatusCode(err error) int {
	kind, ok := KindOf(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch kind {
	case InvalidArgument:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case Upstream, UpstreamMissingField:
		return http.StatusBadGateway
	case StoreUnavailable, ModelUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
