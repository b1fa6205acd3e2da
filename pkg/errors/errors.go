// Package errors defines the failure kinds surfaced by the plugin.
//
// Every error that leaves a package boundary carries a Kind so that the host
// (and the action handlers) can tell configuration problems apart from
// extraction, precondition and remote-service failures.
package errors

import (
	stdErrors "errors"
	"fmt"
)

// Kind classifies an error.
type Kind string

const (
	KindUnknown        Kind = "unknown"
	KindConfiguration  Kind = "configuration"
	KindInitialization Kind = "initialization"
	KindExtraction     Kind = "extraction"
	KindPrecondition   Kind = "precondition"
	KindRemoteService  Kind = "remote_service"
)

// Fatal reports whether errors of this kind should stop the plugin from loading.
func (k Kind) Fatal() bool {
	return k == KindConfiguration || k == KindInitialization
}

// Error is a classified error. Message is what users see; the wrapped cause is
// kept for errors.Is / errors.As. A remote-service message is shown verbatim,
// without its cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Kind == KindRemoteService && e.Message != "" {
		return e.Message
	}
	if e.Message == "" && e.Cause != nil {
		return e.Cause.Error()
	}
	if e.Cause != nil && e.Message != e.Cause.Error() {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches any *Error of the same kind, so errors.Is(err, &Error{Kind: k}) works.
func (e *Error) Is(target error) bool {
	var t *Error
	if !stdErrors.As(target, &t) {
		return false
	}
	return t.Message == "" && t.Cause == nil && t.Kind == e.Kind
}

// New creates an error of the given kind.
func New(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies err. A nil err stays nil.
func Wrap(err error, kind Kind, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: message, Cause: err}
}

// KindOf returns the kind of the outermost classified error in the chain.
func KindOf(err error) Kind {
	var e *Error
	if stdErrors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind anywhere in its chain.
func Is(err error, kind Kind) bool {
	return stdErrors.Is(err, &Error{Kind: kind})
}

// Configuration reports a missing or invalid mandatory setting.
func Configuration(format string, args ...any) error {
	return New(KindConfiguration, format, args...)
}

// Precondition reports an unmet domain requirement.
func Precondition(format string, args ...any) error {
	return New(KindPrecondition, format, args...)
}

// Remote wraps a failure reported by the swap service. The service message is
// kept verbatim as the user-facing message.
func Remote(message string, cause error) error {
	return &Error{Kind: KindRemoteService, Message: message, Cause: cause}
}
