// Package apperr defines the error kinds the service surfaces to callers.
package apperr

import (
	"fmt"

	"github.com/pkg/errors"
)

type Kind string

const (
	Validation   Kind = "validation"
	NotFound     Kind = "not_found"
	Transport    Kind = "transport"
	ImportRecord Kind = "import_record"
)

// Error carries a kind, a message that is safe to show the caller and,
// optionally, the underlying cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func Validationf(format string, args ...interface{}) error {
	return &Error{Kind: Validation, Message: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...interface{}) error {
	return &Error{Kind: NotFound, Message: fmt.Sprintf(format, args...)}
}

// Wrap marks err as a transport failure. The message stays generic; the
// cause is kept for logs only.
func Wrap(err error, context string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: Transport, Message: "internal failure", Err: errors.Wrap(err, context)}
}

func ImportRecordf(format string, args ...interface{}) error {
	return &Error{Kind: ImportRecord, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of the first *Error in the chain. Unknown errors
// count as transport failures.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Transport
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// Message returns the caller-facing message for err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal failure"
}
