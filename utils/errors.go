package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError represents an application error
type AppError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Err     error       `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap implements the unwrap interface
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// BadRequestError creates a 400 Bad Request error
func BadRequestError(message string, err error) *AppError {
	return NewAppError(http.StatusBadRequest, message, err)
}

// UnauthenticatedError is returned when no signed-in user attempts a mutation.
func UnauthenticatedError(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, message, nil)
}

// NotFoundError creates a 404 Not Found error
func NotFoundError(message string, err error) *AppError {
	return NewAppError(http.StatusNotFound, message, err)
}

// ValidationFailed creates a 422 error carrying per-field messages.
func ValidationFailed(message string, fields []FieldValidationError) *AppError {
	e := NewAppError(http.StatusUnprocessableEntity, message, nil)
	if len(fields) > 0 {
		e.Details = map[string]interface{}{"fields": fields}
	}
	return e
}

// GatewayUnavailableError is returned when the payment gateway cannot create an order.
func GatewayUnavailableError(message string, err error) *AppError {
	return NewAppError(http.StatusBadGateway, message, err)
}

// GatewayRejectedError is returned when a payment fails verification.
func GatewayRejectedError(message string, err error) *AppError {
	e := NewAppError(http.StatusPaymentRequired, message, err)
	e.Details = map[string]interface{}{"retry": true}
	return e
}

// PersistenceFailureError is returned when a document write fails.
func PersistenceFailureError(message string, err error) *AppError {
	return NewAppError(http.StatusInternalServerError, message, err)
}

// GetAppError returns the AppError in err's chain, if any
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

func hasCode(err error, code int) bool {
	if appErr := GetAppError(err); appErr != nil {
		return appErr.Code == code
	}
	return false
}

// IsNotFoundError checks if an error is a "not found" error
func IsNotFoundError(err error) bool { return hasCode(err, http.StatusNotFound) }

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool { return hasCode(err, http.StatusUnprocessableEntity) }

// IsUnauthenticatedError checks if an error is an unauthenticated error
func IsUnauthenticatedError(err error) bool { return hasCode(err, http.StatusUnauthorized) }

// IsGatewayUnavailableError checks if the gateway could not be reached
func IsGatewayUnavailableError(err error) bool { return hasCode(err, http.StatusBadGateway) }

// IsGatewayRejectedError checks if a payment failed verification
func IsGatewayRejectedError(err error) bool { return hasCode(err, http.StatusPaymentRequired) }

// IsPersistenceFailureError checks if a write failed
func IsPersistenceFailureError(err error) bool {
	return hasCode(err, http.StatusInternalServerError)
}
