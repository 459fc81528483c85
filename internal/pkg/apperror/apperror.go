package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies an application error for transport mapping.
type Kind int

const (
	// KindValidation marks bad caller input (empty label, negative timestamp).
	KindValidation Kind = iota
	// KindAuthorization marks ownership failures. It is always surfaced with
	// the same message as a missing row so callers cannot probe existence.
	KindAuthorization
	// KindProvider marks a failed call to an external collaborator (AI,
	// storage, mail, captcha).
	KindProvider
	// KindState marks an operation that is invalid for the entity's current
	// state, e.g. cancelling a completed job.
	KindState
)

// AuthorizationMessage is the uniform not-found/denied text.
const AuthorizationMessage = "not found or access denied"

// Error is a classified application error.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Msg == "" {
		return e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Validation creates a validation error.
func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

// Authorization creates an ownership error with the uniform message.
func Authorization() *Error {
	return &Error{Kind: KindAuthorization, Msg: AuthorizationMessage}
}

// Provider wraps an external-collaborator failure.
func Provider(err error) *Error {
	return &Error{Kind: KindProvider, Err: err}
}

// State creates an invalid-state error.
func State(format string, args ...interface{}) *Error {
	return &Error{Kind: KindState, Msg: fmt.Sprintf(format, args...)}
}

// KindOf returns the Kind of err, or (0, false) if err is not an *Error.
func KindOf(err error) (Kind, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind, true
	}
	return 0, false
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
