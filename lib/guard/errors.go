package guard

import (
	"errors"
	"fmt"
)

// Rejection reasons for SafeSolve. Match with errors.Is.
var (
	ErrPromptRejected   = errors.New("prompt failed validation")
	ErrAnswerEmpty      = errors.New("model returned an empty answer")
	ErrAnswerTooLong    = errors.New("answer too long")
	ErrAnswerSuspicious = errors.New("answer contains suspicious content")
)

// Error is a tagged solve failure: Reason is one of the sentinels above,
// Detail says what specifically tripped it. Details never echo hostile
// prompt or answer content back to logs.
type Error struct {
	Reason error
	Detail string
}

func (e *Error) Error() string {
	return fmt.Sprintf("guard: %v: %s", e.Reason, e.Detail)
}

func (e *Error) Unwrap() error { return e.Reason }

func newError(reason error, format string, args ...any) *Error {
	return &Error{Reason: reason, Detail: fmt.Sprintf(format, args...)}
}
