// Package apperrors defines the error kinds shared by the API layer and the
// client: network, validation, not-found and AI-service failures, all built
// on a common APIError shape.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes carried on the wire.
const (
	CodeValidation = "VALIDATION_ERROR"
	CodeNotFound   = "NOT_FOUND"
	CodeAIService  = "AI_SERVICE_ERROR"
	CodeNetwork    = "NETWORK_ERROR"
)

// APIError is the common shape of every typed error.
type APIError struct {
	Message string
	Status  int
	Code    string
	Details interface{}
	Cause   error
}

func (e *APIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Cause
}

// StatusCode returns the HTTP status, 500 when none was set.
func (e *APIError) StatusCode() int {
	if e.Status == 0 {
		return http.StatusInternalServerError
	}
	return e.Status
}

// NetworkError is a transport failure reaching the API or a provider.
type NetworkError struct{ APIError }

// ValidationError is caller-supplied data that was rejected.
type ValidationError struct{ APIError }

// NotFoundError is a reference to a recipe or resource that does not exist.
type NotFoundError struct{ APIError }

// AIServiceError is a failed or unusable response from the language model.
type AIServiceError struct{ APIError }

func (e *NetworkError) Unwrap() error    { return &e.APIError }
func (e *ValidationError) Unwrap() error { return &e.APIError }
func (e *NotFoundError) Unwrap() error   { return &e.APIError }
func (e *AIServiceError) Unwrap() error  { return &e.APIError }

// New builds a plain APIError.
func New(message string, status int, code string, details interface{}) *APIError {
	return &APIError{Message: message, Status: status, Code: code, Details: details}
}

func NewNetworkError(message string, cause error) *NetworkError {
	if message == "" {
		message = "Network error occurred"
	}
	return &NetworkError{APIError{Message: message, Code: CodeNetwork, Cause: cause}}
}

func NewValidationError(message string, details interface{}) *ValidationError {
	return &ValidationError{APIError{
		Message: message,
		Status:  http.StatusBadRequest,
		Code:    CodeValidation,
		Details: details,
	}}
}

func NewNotFoundError(resource string) *NotFoundError {
	return &NotFoundError{APIError{
		Message: resource + " not found",
		Status:  http.StatusNotFound,
		Code:    CodeNotFound,
	}}
}

func NewAIServiceError(message string, cause error) *AIServiceError {
	e := &AIServiceError{APIError{
		Message: message,
		Status:  http.StatusInternalServerError,
		Code:    CodeAIService,
		Cause:   cause,
	}}
	if cause != nil {
		e.Details = cause.Error()
	}
	return e
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsAIService(err error) bool {
	var target *AIServiceError
	return errors.As(err, &target)
}

func IsNetwork(err error) bool {
	var target *NetworkError
	return errors.As(err, &target)
}

// StatusOf maps any error to the HTTP status the API responds with.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode()
	}
	return http.StatusInternalServerError
}

// DetailsOf returns the structured details of a typed error, or the error
// text for untyped ones.
func DetailsOf(err error) interface{} {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Details != nil {
			return apiErr.Details
		}
		if apiErr.Cause != nil {
			return apiErr.Cause.Error()
		}
		return nil
	}
	return err.Error()
}

// CodeOf returns the machine code of a typed error, or "".
func CodeOf(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return ""
}
