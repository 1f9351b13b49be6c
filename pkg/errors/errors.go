package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports whether target carries the same code, so clones match their sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrConnectivity        = New("CONNECTIVITY_ERROR", http.StatusServiceUnavailable, "record store unreachable")
	ErrNotFound            = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrRoleMismatch        = New("ROLE_MISMATCH", http.StatusConflict, "stored role does not match the requested role")
	ErrUnknownRoleKind     = New("UNKNOWN_ROLE_KIND", http.StatusInternalServerError, "unknown role discriminator")
	ErrSchemaProvisioning  = New("SCHEMA_PROVISIONING_ERROR", http.StatusServiceUnavailable, "schema provisioning failed")
	ErrValidation          = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrConflict            = New("CONFLICT", http.StatusConflict, "conflict")
	ErrCapacityExceeded    = New("CAPACITY_EXCEEDED", http.StatusConflict, "class section is full")
	ErrReferenceRestricted = New("REFERENCE_RESTRICTED", http.StatusConflict, "resource is still referenced")
	ErrUnauthorized        = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrForbidden           = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrInternal            = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrCacheMiss           = New("CACHE_MISS", http.StatusNotFound, "cache miss")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// WrapAs clones the sentinel and attaches cause.
func WrapAs(sentinel *Error, cause error, message string) *Error {
	e := Clone(sentinel, message)
	e.Err = cause
	return e
}

// Is is a shorthand for errors.Is against one of the sentinels above.
func Is(err error, sentinel *Error) bool {
	return errors.Is(err, sentinel)
}
