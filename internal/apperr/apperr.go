// Package apperr holds the closed set of error kinds surfaced by the photo
// services. Collaborator errors (gorm, minio, jwt) are mapped onto one of
// these kinds at the boundary and never leak as untyped values.
package apperr

import (
	"fmt"

	"github.com/pkg/errors"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindStorage
	KindDb
	KindNotAuthenticated
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "ValidationError"
	case KindStorage:
		return "StorageError"
	case KindDb:
		return "DbError"
	case KindNotAuthenticated:
		return "NotAuthenticatedError"
	case KindNotFound:
		return "NotFoundError"
	default:
		return "UnknownError"
	}
}

// Error is a classified failure. Message is safe to show to the end user;
// Err keeps the collaborator cause for logging.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, err error, msg string) *Error {
	if err != nil {
		err = errors.WithStack(err)
	}
	return &Error{Kind: kind, Message: msg, Err: err}
}

func Validation(msg string) error {
	return newError(KindValidation, nil, msg)
}

func Validationf(format string, args ...interface{}) error {
	return newError(KindValidation, nil, fmt.Sprintf(format, args...))
}

func Storage(err error, msg string) error {
	return newError(KindStorage, err, msg)
}

func Db(err error, msg string) error {
	return newError(KindDb, err, msg)
}

func NotAuthenticated() error {
	return newError(KindNotAuthenticated, nil, "authentication required")
}

func NotFound(msg string) error {
	return newError(KindNotFound, nil, msg)
}

// KindOf reports the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Message returns the user-facing message for err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "an unexpected error occurred"
}
