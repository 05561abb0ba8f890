package errors

import (
	"errors"
	"fmt"
	"time"
)

// Basic error check functions from standard library
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
)

// ErrorCode represents a unique identifier for each error kind.
type ErrorCode string

// AppError is one variant of the application error taxonomy. Code and
// StatusCode are fixed by the constructor that produced the value and are
// never changed afterwards.
type AppError struct {
	Code        ErrorCode
	StatusCode  int
	Message     string
	Operational bool
	Details     map[string]any
	Timestamp   time.Time
	Err         error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// ValidationErrors returns the field-to-messages mapping carried by a
// Validation variant, or nil for every other kind.
func (e *AppError) ValidationErrors() map[string][]string {
	if e.Code != CodeValidation || e.Details == nil {
		return nil
	}
	ve, _ := e.Details["validationErrors"].(map[string][]string)
	return ve
}

func newError(code ErrorCode, message string, details map[string]any) *AppError {
	if message == "" {
		message = GetErrorMessage(code)
	}
	return &AppError{
		Code:        code,
		StatusCode:  StatusForCode(code),
		Message:     message,
		Operational: true,
		Details:     details,
		Timestamp:   time.Now().UTC(),
	}
}

// NewValidation constructs a Validation variant. validationErrors maps field
// names to ordered per-field messages; nil is normalized to an empty map.
func NewValidation(message string, validationErrors map[string][]string) *AppError {
	if validationErrors == nil {
		validationErrors = map[string][]string{}
	}
	return newError(CodeValidation, message, map[string]any{
		"validationErrors": validationErrors,
	})
}

// NewNotFound constructs a NotFound variant. The message is folded from the
// resource type and, when given, the identifier:
//
//	NewNotFound("Project", 123) => "Project with identifier 123 not found"
//	NewNotFound("User")         => "User not found"
func NewNotFound(resource string, identifier ...any) *AppError {
	msg := resource + " not found"
	if len(identifier) > 0 && identifier[0] != nil {
		msg = fmt.Sprintf("%s with identifier %v not found", resource, identifier[0])
	}
	return newError(CodeNotFound, msg, nil)
}

// NewAuthentication constructs an Authentication variant.
func NewAuthentication(message string) *AppError {
	return newError(CodeAuthentication, message, nil)
}

// NewAuthorization constructs an Authorization variant.
func NewAuthorization(message string) *AppError {
	return newError(CodeAuthorization, message, nil)
}

// NewConflict constructs a Conflict variant.
func NewConflict(message string) *AppError {
	return newError(CodeConflict, message, nil)
}

// NewServiceUnavailable constructs a ServiceUnavailable variant for the named
// collaborator service.
func NewServiceUnavailable(serviceName string) *AppError {
	return newError(CodeServiceUnavailable, serviceName+" service is unavailable", nil)
}

// NewDatabase constructs a Database variant for a failed storage operation.
// The underlying driver error, when given, is kept for Unwrap.
func NewDatabase(operation string, err error) *AppError {
	e := newError(CodeDatabase, "Database operation failed: "+operation, nil)
	e.Err = err
	return e
}

// NewAPI constructs an Api variant with a caller-supplied status code.
// A non-positive status falls back to 500.
func NewAPI(message string, statusCode int, details map[string]any) *AppError {
	e := newError(CodeAPI, message, details)
	if statusCode > 0 {
		e.StatusCode = statusCode
	}
	return e
}
