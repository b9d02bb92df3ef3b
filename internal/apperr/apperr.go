// Package apperr defines the error taxonomy shared by services and handlers:
// validation failures, missing entities, and upstream dependency faults.
// Handlers map these onto 400, 404 and 500 responses.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError reports missing or malformed caller input. Fields, when
// set, lists the offending field names verbatim for the caller.
type ValidationError struct {
	Message string
	Fields  []string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("%s: %s", e.Message, strings.Join(e.Fields, ", "))
	}
	return e.Message
}

// Validation builds a ValidationError with a plain message.
func Validation(msg string) error {
	return &ValidationError{Message: msg}
}

// Validationf builds a ValidationError with a formatted message.
func Validationf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// MissingFields builds a ValidationError naming every absent required field.
func MissingFields(fields ...string) error {
	return &ValidationError{Message: "missing required fields", Fields: fields}
}

// NotFoundError reports that a referenced entity does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// NotFound builds a NotFoundError for the given resource and identifier.
func NotFound(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// DependencyError reports a failure in a backing dependency (storage, blob
// store, mail provider). The original cause is preserved for diagnostics.
type DependencyError struct {
	Op  string
	Err error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *DependencyError) Unwrap() error {
	return e.Err
}

// Dependency wraps err as a DependencyError for the named operation.
func Dependency(op string, err error) error {
	return &DependencyError{Op: op, Err: err}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
