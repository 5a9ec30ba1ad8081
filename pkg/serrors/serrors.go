// Package serrors carries semantic error kinds across package boundaries so
// transports can map failures to responses without knowing their origin.
package serrors

import (
	"errors"
	"fmt"
)

// Kind is implemented by every sentinel created with NewKind.
type Kind interface {
	error
	isKind()
}

type kind struct{ s string }

func (k kind) Error() string { return k.s }
func (k kind) isKind()       {}

// NewKind returns a new comparable kind sentinel named name.
func NewKind(name string) Kind { return kind{s: name} }

// Kinds surfaced by a contact lookup.
var (
	// ErrBadRequest means the caller supplied an unusable company name.
	ErrBadRequest = NewKind("BAD_REQUEST")
	// ErrNotFound means no domain could be resolved for the company.
	ErrNotFound = NewKind("NOT_FOUND")
	// ErrRetrievalFailed means the resolved website could not be fetched.
	ErrRetrievalFailed = NewKind("RETRIEVAL_FAILED")
	// ErrInternal covers every other failure.
	ErrInternal = NewKind("INTERNAL")
)

// Error binds a kind to an optional message and an optional cause.
//
// errors.Is and errors.As match against the kind as well as the cause chain.
// The string form is "<msg>: <cause>", falling back to whichever part is set
// and finally to the kind name.
type Error struct {
	kind Kind
	err  error
	msg  string
}

// With returns an error of kind k with a formatted message.
func With(k Kind, msgFmt string, args ...any) *Error {
	return &Error{kind: k, msg: fmt.Sprintf(msgFmt, args...)}
}

// Wrap returns an error of kind k wrapping err with a formatted message.
func Wrap(k Kind, err error, msgFmt string, args ...any) *Error {
	return &Error{kind: k, err: err, msg: fmt.Sprintf(msgFmt, args...)}
}

// KindOnly returns an error that carries nothing but k.
func KindOnly(k Kind) *Error { return &Error{kind: k} }

// KindOf returns the first kind found in err's chain, or nil.
func KindOf(err error) Kind {
	var k Kind
	if errors.As(err, &k) {
		return k
	}

	return nil
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return "<nil>"
	case e.msg != "" && e.err != nil:
		return e.msg + ": " + e.err.Error()
	case e.msg != "":
		return e.msg
	case e.err != nil:
		return e.err.Error()
	case e.kind != nil:
		return e.kind.Error()
	default:
		return "unknown error"
	}
}

func (e *Error) Unwrap() error { return e.err }

// Is matches target against the kind first, then the cause chain.
func (e *Error) Is(target error) bool {
	if e == nil || target == nil {
		return e == nil && target == nil
	}
	if e.kind != nil && errors.Is(e.kind, target) {
		return true
	}

	return e.err != nil && errors.Is(e.err, target)
}

// As assigns the kind or a matching cause to target.
func (e *Error) As(target any) bool {
	if e == nil || target == nil {
		return false
	}
	if e.kind != nil && errors.As(e.kind, target) {
		return true
	}

	return e.err != nil && errors.As(e.err, target)
}

// Kind returns the kind sentinel, or nil.
func (e *Error) Kind() Kind { return e.kind }

// Message returns the attached message.
func (e *Error) Message() string { return e.msg }

// Cause returns the wrapped cause, or nil.
func (e *Error) Cause() error { return e.err }
