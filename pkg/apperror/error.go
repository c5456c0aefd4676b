package apperror

import (
	"errors"
	"net/http"
)

// Kind classifies an AppError for the handler boundary
type Kind string

const (
	KindValidation Kind = "validation"
	KindAuth       Kind = "auth"
	KindPermission Kind = "permission"
	KindNotFound   Kind = "not_found"
	KindInternal   Kind = "internal"
)

type AppError struct {
	Kind    Kind              `json:"kind"`
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
	Err     error             `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code int, message string, err error) *AppError {
	return &AppError{
		Kind:    kindFor(code),
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func BadRequest(message string) *AppError {
	return New(http.StatusBadRequest, message, nil)
}

// Validation reports field-level input errors; fields maps the json field name to its message.
func Validation(message string, fields map[string]string) *AppError {
	return &AppError{
		Kind:    KindValidation,
		Code:    http.StatusUnprocessableEntity,
		Message: message,
		Fields:  fields,
	}
}

// FieldError is a Validation error for a single field
func FieldError(field, message string) *AppError {
	return Validation(message, map[string]string{field: message})
}

// Conflict is a uniqueness violation, still a validation failure from the caller's view
func Conflict(field, message string) *AppError {
	return &AppError{
		Kind:    KindValidation,
		Code:    http.StatusConflict,
		Message: message,
		Fields:  map[string]string{field: message},
	}
}

func Unauthorized(message string) *AppError {
	return New(http.StatusUnauthorized, message, nil)
}

func Forbidden(message string) *AppError {
	return New(http.StatusForbidden, message, nil)
}

func NotFound(message string) *AppError {
	return New(http.StatusNotFound, message, nil)
}

func Internal(err error) *AppError {
	return New(http.StatusInternalServerError, "Internal Server Error", err)
}

// IsKind reports whether err (or anything it wraps) is an AppError of the given kind
func IsKind(err error, kind Kind) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}

func kindFor(code int) Kind {
	switch code {
	case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
		return KindValidation
	case http.StatusUnauthorized:
		return KindAuth
	case http.StatusForbidden:
		return KindPermission
	case http.StatusNotFound:
		return KindNotFound
	default:
		return KindInternal
	}
}
