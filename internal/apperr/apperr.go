// Package apperr defines the error taxonomy shared by the request handlers.
package apperr

import (
	"errors"
	"fmt"
)

// ErrUnauthorized is returned when the admin credential is missing, wrong,
// or the server has no secret configured.
var ErrUnauthorized = errors.New("unauthorized")

// ErrNotFound is returned when a record addressed by id does not exist.
var ErrNotFound = errors.New("not found")

// ValidationError reports a missing or malformed request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Required builds a ValidationError for an absent field.
func Required(field string) error {
	return &ValidationError{Field: field, Message: "is required"}
}

// Invalid builds a ValidationError with a free-form message.
func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// UpstreamError wraps a failure of the metadata store or object storage.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Upstream wraps err as an UpstreamError. A nil err yields nil.
func Upstream(op string, err error) error {
	if err == nil {
		return nil
	}
	return &UpstreamError{Op: op, Err: err}
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsUpstream reports whether err carries an UpstreamError.
func IsUpstream(err error) bool {
	var u *UpstreamError
	return errors.As(err, &u)
}
