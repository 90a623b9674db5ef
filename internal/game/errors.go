// internal/game/errors.go
package game

import (
	"errors"
	"fmt"
)

// ErrorKind is a stable machine-readable classification carried by
// every recoverable game error. HTTP and websocket surfaces map kinds
// to status codes / error payloads without parsing messages.
type ErrorKind string

const (
	KindNotFound        ErrorKind = "not_found"
	KindUnauthorized    ErrorKind = "unauthorized"
	KindInvalidState    ErrorKind = "invalid_state"
	KindAlreadyAnswered ErrorKind = "already_answered"
	KindValidation      ErrorKind = "validation_error"
	KindEmptyPack       ErrorKind = "empty_pack"
	KindExhausted       ErrorKind = "exhausted"
)

// Error is a recoverable, caller-visible game error. Two Errors match
// under errors.Is when their kinds are equal, so callers can test
// against the exported sentinels below regardless of message.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is checks.
var (
	ErrNotFound        = &Error{Kind: KindNotFound, Message: "not found"}
	ErrUnauthorized    = &Error{Kind: KindUnauthorized, Message: "unauthorized"}
	ErrInvalidState    = &Error{Kind: KindInvalidState, Message: "invalid session state"}
	ErrAlreadyAnswered = &Error{Kind: KindAlreadyAnswered, Message: "already answered"}
	ErrValidation      = &Error{Kind: KindValidation, Message: "validation error"}
	ErrEmptyPack       = &Error{Kind: KindEmptyPack, Message: "question pack has no questions"}
	ErrExhausted       = &Error{Kind: KindExhausted, Message: "retries exhausted"}
)

// ErrCodeTaken signals a session code collision between the store and
// the code-generation retry loop. It never escapes CreateSession.
var ErrCodeTaken = errors.New("session code taken")

// NewError builds an Error with a formatted message.
func NewError(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the error kind, or "" for non-game errors.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
