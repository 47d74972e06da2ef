package store

import (
	"fmt"

	apperrors "github.com/mybglist/mybglist-server/internal/errors"
)

// Error is a persistence failure tagged with the entity it concerns.
type Error struct {
	Code   apperrors.Code
	Entity string // "board game", "domain", "mechanic", "user"
	Err    error  // Underlying driver error (optional)
}

func (e *Error) Error() string {
	msg := e.message()
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) message() string {
	subject := e.Entity
	if subject == "" {
		subject = "record"
	}
	switch e.Code {
	case apperrors.CodeNotFound:
		return subject + " not found"
	case apperrors.CodeAlreadyExists:
		return subject + " already exists"
	default:
		return subject + " storage error"
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any store error with the same code, whatever the entity.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// AppError converts the store error into a domain error the HTTP layer can render.
// The driver cause is kept for logging but not exposed in the message.
func (e *Error) AppError() *apperrors.Error {
	return apperrors.Wrap(e.Err, e.Code, e.message())
}

// WithEntity returns a copy naming the entity.
func (e *Error) WithEntity(entity string) *Error {
	return &Error{Code: e.Code, Entity: entity, Err: e.Err}
}

// WithCause returns a copy wrapping err.
func (e *Error) WithCause(err error) *Error {
	return &Error{Code: e.Code, Entity: e.Entity, Err: err}
}

// Sentinel errors.
var (
	ErrNotFound      = &Error{Code: apperrors.CodeNotFound}
	ErrAlreadyExists = &Error{Code: apperrors.CodeAlreadyExists}
)
