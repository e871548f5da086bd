// Package apperr classifies errors so the HTTP layer can pick a status code.
package apperr

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrInvalid       = errors.New("invalid input")
	ErrConflict      = errors.New("conflict")
	ErrUnprocessable = errors.New("unprocessable")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
)

// Error carries a client-facing message and the kind it belongs to.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.Kind }

func newf(kind error, format string, args ...interface{}) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...interface{}) error {
	return newf(ErrNotFound, format, args...)
}

func Invalidf(format string, args ...interface{}) error {
	return newf(ErrInvalid, format, args...)
}

func Conflictf(format string, args ...interface{}) error {
	return newf(ErrConflict, format, args...)
}

func Unprocessablef(format string, args ...interface{}) error {
	return newf(ErrUnprocessable, format, args...)
}

func Unauthorizedf(format string, args ...interface{}) error {
	return newf(ErrUnauthorized, format, args...)
}

func Forbiddenf(format string, args ...interface{}) error {
	return newf(ErrForbidden, format, args...)
}

// PostgreSQL error codes we translate.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
)

// FromDB translates driver errors for the entity named by what.
// Errors it does not recognise are returned unchanged.
func FromDB(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return NotFoundf("%s not found", what)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case codeUniqueViolation:
			return Conflictf("%s already exists", what)
		case codeForeignKeyViolation:
			return Invalidf("%s references a record that does not exist or is still in use", what)
		case codeCheckViolation:
			return Unprocessablef("%s violates constraint %s", what, pqErr.Constraint)
		}
	}
	return err
}
