package domain

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Error taxonomy. Every failure leaving a usecase matches exactly one of
// these with errors.Is; the transport layer maps them to status codes.
var (
	ErrValidation      = errors.New("validation failed")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrUpstream        = errors.New("upstream service unavailable")
)

// FieldError names the offending field of a validation failure or conflict.
type FieldError struct {
	Kind  error // ErrValidation or ErrConflict
	Field string
	Msg   string
}

func (e *FieldError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

func (e *FieldError) Is(target error) bool {
	return target == e.Kind
}

func Invalid(field, format string, args ...any) error {
	return errors.WithStack(&FieldError{Kind: ErrValidation, Field: field, Msg: fmt.Sprintf(format, args...)})
}

func Conflict(field, format string, args ...any) error {
	return errors.WithStack(&FieldError{Kind: ErrConflict, Field: field, Msg: fmt.Sprintf(format, args...)})
}

// Upstream marks err as a failure of an external collaborator
// (email, geocoder, file store) while keeping the cause inspectable.
func Upstream(err error, service string) error {
	return errors.Mark(errors.Wrapf(err, "%s", service), ErrUpstream)
}
