package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies a failure so callers can tell "retry me" from "do not retry".
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindNotFound   ErrorKind = "not_found"
	KindConflict   ErrorKind = "conflict"
	KindForbidden  ErrorKind = "forbidden"
	KindInvalidOTP ErrorKind = "invalid_otp"
	KindInternal   ErrorKind = "internal"
	// KindUnauthenticated is raised by the HTTP layer only; services trust the caller.
	KindUnauthenticated ErrorKind = "unauthenticated"
)

// HTTPStatus maps a kind onto the status code returned by the API.
func (k ErrorKind) HTTPStatus() int {
	switch k {
	case KindValidation, KindInvalidOTP:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindForbidden:
		return http.StatusForbidden
	case KindUnauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Retryable reports whether the caller may correct its input and try again.
func (k ErrorKind) Retryable() bool {
	return k == KindValidation || k == KindInvalidOTP
}

// AppError is the error type returned by every service operation.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewValidationError(msg string) error {
	return &AppError{Kind: KindValidation, Message: msg}
}

func NewNotFoundError(msg string) error {
	return &AppError{Kind: KindNotFound, Message: msg}
}

func NewConflictError(msg string) error {
	return &AppError{Kind: KindConflict, Message: msg}
}

func NewForbiddenError(msg string) error {
	return &AppError{Kind: KindForbidden, Message: msg}
}

func NewInvalidOTPError(msg string) error {
	return &AppError{Kind: KindInvalidOTP, Message: msg}
}

func NewUnauthenticatedError(msg string) error {
	return &AppError{Kind: KindUnauthenticated, Message: msg}
}

func NewInternalError(msg string, err error) error {
	return &AppError{Kind: KindInternal, Message: msg, Err: err}
}

// KindOf extracts the kind of err, treating unknown errors as internal.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// MessageOf returns the human readable part of err that is safe to show to callers.
func MessageOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "Server Error"
}
