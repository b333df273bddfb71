package errors

import (
	"fmt"
	"net/http"
)

// AppError is the standard application error shape.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // original cause, for logs only
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

// New creates an AppError.
func New(status int, code, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status}
}

// FromError converts a generic error into an AppError, defaulting to a
// generic internal error that keeps the original cause for logs.
func FromError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return ErrInternal.WithCause(err)
}

// WithDetail returns a copy with extra detail. Copying keeps the
// predefined errors immutable.
func (e *AppError) WithDetail(detail string) *AppError {
	out := *e
	out.Detail = detail
	return &out
}

// WithCause returns a copy wrapping the original error.
func (e *AppError) WithCause(err error) *AppError {
	out := *e
	out.Err = err
	return &out
}

var (
	ErrBadRequest       = New(http.StatusBadRequest, "bad_request", "invalid request")
	ErrUnauthorized     = New(http.StatusUnauthorized, "unauthorized", "authentication required")
	ErrForbidden        = New(http.StatusForbidden, "forbidden", "not allowed")
	ErrNotFound         = New(http.StatusNotFound, "not_found", "resource not found")
	ErrMethodNotAllowed = New(http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	ErrConflict         = New(http.StatusConflict, "conflict", "resource already exists")
	ErrLinkExpired      = New(http.StatusGone, "link_expired", "onboarding link expired")
	ErrTooManyRequests  = New(http.StatusTooManyRequests, "rate_limited", "too many requests")
	ErrInternal         = New(http.StatusInternalServerError, "internal_error", "internal server error")
)
