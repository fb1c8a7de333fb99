package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for the storefront error taxonomy.
var (
	ErrNotFound        = errors.New("resource not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrConflict        = errors.New("conflict")
	ErrInternal        = errors.New("internal error")
	ErrServiceUnavail  = errors.New("service unavailable")
	ErrEmptyCart       = errors.New("cart is empty")
	ErrUnresolvedLines = errors.New("cart contains unresolved lines")
	ErrOrderSubmission = errors.New("order submission failed")
	ErrFetchFailed     = errors.New("catalog fetch failed")
)

// AppError is a structured application error with an HTTP status mapping.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound creates a 404 error.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s with id %s not found", resource, id),
		Status:  http.StatusNotFound,
		Err:     ErrNotFound,
	}
}

// InvalidInput creates a 400 error.
func InvalidInput(message string) *AppError {
	return &AppError{
		Code:    "INVALID_INPUT",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidInput,
	}
}

// Unauthorized creates a 401 error.
func Unauthorized(message string) *AppError {
	return &AppError{
		Code:    "UNAUTHORIZED",
		Message: message,
		Status:  http.StatusUnauthorized,
		Err:     ErrUnauthorized,
	}
}

// Forbidden creates a 403 error.
func Forbidden(message string) *AppError {
	return &AppError{
		Code:    "FORBIDDEN",
		Message: message,
		Status:  http.StatusForbidden,
		Err:     ErrForbidden,
	}
}

// Conflict creates a 409 error.
func Conflict(message string) *AppError {
	return &AppError{
		Code:    "CONFLICT",
		Message: message,
		Status:  http.StatusConflict,
		Err:     ErrConflict,
	}
}

// Internal creates a 500 error.
func Internal(err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// ServiceUnavailable creates a 503 error.
func ServiceUnavailable(message string) *AppError {
	return &AppError{
		Code:    "SERVICE_UNAVAILABLE",
		Message: message,
		Status:  http.StatusServiceUnavailable,
		Err:     ErrServiceUnavail,
	}
}

// EmptyCart creates a 422 error for a checkout attempt with no cart lines.
func EmptyCart() *AppError {
	return &AppError{
		Code:    "EMPTY_CART",
		Message: "cart is empty",
		Status:  http.StatusUnprocessableEntity,
		Err:     ErrEmptyCart,
	}
}

// UnresolvedLines creates a 409 error for a checkout attempt while some cart
// lines cannot be resolved against the current catalog.
func UnresolvedLines() *AppError {
	return &AppError{
		Code:    "UNRESOLVED_LINES",
		Message: "some items are no longer available",
		Status:  http.StatusConflict,
		Err:     ErrUnresolvedLines,
	}
}

// OrderSubmissionFailed creates a 502 error for a rejected or failed order
// submission. The cart is retained so the user can retry.
func OrderSubmissionFailed(err error) *AppError {
	return &AppError{
		Code:    "ORDER_SUBMISSION_FAILED",
		Message: "order could not be submitted, please retry",
		Status:  http.StatusBadGateway,
		Err:     fmt.Errorf("%w: %w", ErrOrderSubmission, err),
	}
}

// CatalogUnavailable creates a 503 error for reads of a catalog kind that has
// never been loaded successfully.
func CatalogUnavailable(kind string) *AppError {
	return &AppError{
		Code:    "CATALOG_UNAVAILABLE",
		Message: fmt.Sprintf("%s catalog is not available, please retry", kind),
		Status:  http.StatusServiceUnavailable,
		Err:     ErrFetchFailed,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// HTTPStatus returns the HTTP status code for the given error.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrEmptyCart):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrUnresolvedLines):
		return http.StatusConflict
	case errors.Is(err, ErrOrderSubmission):
		return http.StatusBadGateway
	case errors.Is(err, ErrServiceUnavail), errors.Is(err, ErrFetchFailed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
