// internal/errors/errors.go
package appErrors

import (
	"errors"
	"fmt"
)

// Kind classifies every error the services hand back to the boundary.
type Kind int

const (
	KindUnauthorized Kind = iota + 1
	KindNotFound
	KindConflict
	KindInvalidTransition
	KindValidation
	KindStorage
)

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Helper constructors

func NewUnauthorized() error {
	return &Error{Kind: KindUnauthorized, Msg: "missing or invalid owner context"}
}

// NewNotFound answers both "absent" and "owned by someone else" so callers
// cannot probe for other owners' entities.
func NewNotFound(resource string) error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf("%s not found", resource)}
}

func NewConflict(msg string) error {
	return &Error{Kind: KindConflict, Msg: msg}
}

func NewInvalidTransition(from, to string) error {
	return &Error{Kind: KindInvalidTransition, Msg: fmt.Sprintf("illegal delivery transition %s -> %s", from, to)}
}

func NewValidation(msg string) error {
	return &Error{Kind: KindValidation, Msg: msg}
}

// NewStorage wraps a datastore failure; the only kind callers may retry.
func NewStorage(err error) error {
	return &Error{Kind: KindStorage, Msg: "storage failure", Err: err}
}

func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func IsNotFound(err error) bool          { return KindOf(err) == KindNotFound }
func IsConflict(err error) bool          { return KindOf(err) == KindConflict }
func IsUnauthorized(err error) bool      { return KindOf(err) == KindUnauthorized }
func IsInvalidTransition(err error) bool { return KindOf(err) == KindInvalidTransition }
func IsValidation(err error) bool        { return KindOf(err) == KindValidation }
func IsStorage(err error) bool           { return KindOf(err) == KindStorage }
