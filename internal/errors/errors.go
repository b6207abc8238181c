// Package errors defines the service error type mapped onto HTTP responses.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ServiceError carries an error code, a caller-facing message and the HTTP
// status it maps to.
type ServiceError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	cause      error
}

func (e *ServiceError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the wrapped cause to errors.Is/As.
func (e *ServiceError) Unwrap() error { return e.cause }

// WithCause attaches an underlying error.
func (e *ServiceError) WithCause(err error) *ServiceError {
	clone := *e
	clone.cause = err
	return &clone
}

// Validation returns a 400 error for rejected input.
func Validation(format string, args ...interface{}) *ServiceError {
	return &ServiceError{Code: "validation_failed", Message: fmt.Sprintf(format, args...), HTTPStatus: http.StatusBadRequest}
}

// NotFound returns a 404 error for a missing resource.
func NotFound(resource, id string) *ServiceError {
	return &ServiceError{Code: "not_found", Message: fmt.Sprintf("%s %s not found", resource, id), HTTPStatus: http.StatusNotFound}
}

// Conflict returns a 409 error for uniqueness or state conflicts.
func Conflict(format string, args ...interface{}) *ServiceError {
	return &ServiceError{Code: "conflict", Message: fmt.Sprintf(format, args...), HTTPStatus: http.StatusConflict}
}

// Unauthorized returns a 401 error.
func Unauthorized(message string) *ServiceError {
	return &ServiceError{Code: "unauthorized", Message: message, HTTPStatus: http.StatusUnauthorized}
}

// Forbidden returns a 403 error.
func Forbidden(message string) *ServiceError {
	return &ServiceError{Code: "forbidden", Message: message, HTTPStatus: http.StatusForbidden}
}

// RateLimitExceeded returns a 429 error describing the applied limit.
func RateLimitExceeded(limit int, window string) *ServiceError {
	return &ServiceError{
		Code:       "rate_limit_exceeded",
		Message:    fmt.Sprintf("rate limit of %d requests per %s exceeded", limit, window),
		HTTPStatus: http.StatusTooManyRequests,
	}
}

// Internal returns a 500 error. The cause is logged, not surfaced.
func Internal(message string) *ServiceError {
	return &ServiceError{Code: "internal_error", Message: message, HTTPStatus: http.StatusInternalServerError}
}

// Upstream returns a 502 error for backend proxy failures.
func Upstream(message string) *ServiceError {
	return &ServiceError{Code: "upstream_error", Message: message, HTTPStatus: http.StatusBadGateway}
}

// HTTPStatusOf maps an error to its HTTP status, defaulting to 500.
func HTTPStatusOf(err error) int {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.HTTPStatus
	}
	return http.StatusInternalServerError
}
