// Package errors provides structured error handling for the application
// Following enterprise patterns for error management and observability
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/alchemorsel/mealguard/internal/domain/generation"
)

// ErrorCode represents an error code
type ErrorCode string

// Common error codes following RESTful API conventions
const (
	// Client errors (4xx)
	CodeBadRequest       ErrorCode = "BAD_REQUEST"
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	CodeTooManyRequests  ErrorCode = "TOO_MANY_REQUESTS"
	CodeRequestCanceled  ErrorCode = "REQUEST_CANCELED"

	// Server errors (5xx)
	CodeInternal             ErrorCode = "INTERNAL_ERROR"
	CodeServiceUnavailable   ErrorCode = "SERVICE_UNAVAILABLE"
	CodeExternalServiceError ErrorCode = "EXTERNAL_SERVICE_ERROR"
	CodeGenerationTimeout    ErrorCode = "GENERATION_TIMEOUT"
	CodeInvalidOutput        ErrorCode = "INVALID_GENERATED_OUTPUT"

	// Pipeline safety and domain errors
	CodeAllergenBlocked  ErrorCode = "ALLERGEN_BLOCKED"
	CodeAllergenLeak     ErrorCode = "ALLERGEN_LEAK"
	CodeCalorieOutOfBand ErrorCode = "CALORIE_OUT_OF_BAND"
	CodeSessionNotFound  ErrorCode = "SESSION_NOT_FOUND"
)

// StatusClientClosedRequest is reported when the caller went away mid-generation
const StatusClientClosedRequest = 499

// AppError represents an application error with structured information
type AppError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	Cause      error                  `json:"-"`
	StackTrace string                 `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// StatusCode returns the appropriate HTTP status code
func (e *AppError) StatusCode() int {
	switch e.Code {
	case CodeBadRequest, CodeValidationFailed:
		return http.StatusBadRequest
	case CodeNotFound, CodeSessionNotFound:
		return http.StatusNotFound
	case CodeAllergenBlocked, CodeAllergenLeak, CodeCalorieOutOfBand:
		return http.StatusUnprocessableEntity
	case CodeTooManyRequests:
		return http.StatusTooManyRequests
	case CodeRequestCanceled:
		return StatusClientClosedRequest
	case CodeExternalServiceError, CodeInvalidOutput:
		return http.StatusBadGateway
	case CodeServiceUnavailable:
		return http.StatusServiceUnavailable
	case CodeGenerationTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// WithMetadata adds metadata to the error
func (e *AppError) WithMetadata(key string, value interface{}) *AppError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// WithCause adds a cause error
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// NewAppError creates a new application error
func NewAppError(code ErrorCode, message, details string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		Details:    details,
		StackTrace: getStackTrace(),
	}
}

// Predefined error constructors for common scenarios

// NewBadRequestError creates a bad request error
func NewBadRequestError(message string) *AppError {
	return NewAppError(CodeBadRequest, message, "")
}

// NewValidationError creates a validation error
func NewValidationError(details string) *AppError {
	return NewAppError(CodeValidationFailed, "Validation failed", details)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	message := "Resource not found"
	if resource != "" {
		message = fmt.Sprintf("%s not found", resource)
	}
	return NewAppError(CodeNotFound, message, "")
}

// NewSessionNotFoundError creates a session not found error
func NewSessionNotFoundError(sessionID string) *AppError {
	return NewAppError(
		CodeSessionNotFound,
		"Session not found",
		fmt.Sprintf("Session %s does not exist or has expired", sessionID),
	).WithMetadata("session_id", sessionID)
}

// NewTooManyRequestsError creates a rate limit error
func NewTooManyRequestsError() *AppError {
	return NewAppError(CodeTooManyRequests, "Too many requests", "Slow down and retry shortly")
}

// NewInternalError creates an internal server error
func NewInternalError(message string) *AppError {
	if message == "" {
		message = "An unexpected error occurred"
	}
	return NewAppError(CodeInternal, message, "")
}

// FromFailure maps a pipeline failure onto an API error. The failure class
// and reason are always present in the metadata.
func FromFailure(f *generation.Failure) *AppError {
	var e *AppError
	switch f.Reason {
	case generation.ReasonBlocked:
		e = NewAppError(CodeAllergenBlocked, "Input matches a declared allergy", f.Detail).
			WithMetadata("allergen", f.Allergen).
			WithMetadata("token", f.Token)
	case generation.ReasonInvalidRequest:
		e = NewAppError(CodeBadRequest, "Invalid generation request", f.Detail)
	case generation.ReasonAllergenLeak:
		e = NewAppError(CodeAllergenLeak, "Generated content contained a declared allergen", f.Detail).
			WithMetadata("allergen", f.Allergen)
	case generation.ReasonCalorieOutOfBand:
		e = NewAppError(CodeCalorieOutOfBand, "Generated recipes missed the calorie band", f.Detail).
			WithMetadata("rejected", f.Rejected)
	case generation.ReasonTimeout:
		e = NewAppError(CodeGenerationTimeout, "Generation timed out", f.Detail)
	case generation.ReasonCanceled:
		e = NewAppError(CodeRequestCanceled, "Request canceled", f.Detail)
	case generation.ReasonNetwork, generation.ReasonServiceError, generation.ReasonEmpty:
		e = NewAppError(CodeExternalServiceError, "Generation service unavailable", f.Detail)
	default:
		e = NewAppError(CodeInvalidOutput, "Generation service returned invalid output", f.Detail)
		if f.Field != "" {
			e.WithMetadata("field", f.Field)
		}
		if f.Expected > 0 {
			e.WithMetadata("expected", f.Expected).WithMetadata("got", f.Got)
		}
	}
	if f.Record >= 0 {
		e.WithMetadata("record", f.Record)
	}
	return e.
		WithMetadata("class", string(f.Class)).
		WithMetadata("reason", string(f.Reason)).
		WithCause(f)
}

// Utility functions

// Wrap wraps an error as an internal error if it's not already an AppError.
// Pipeline failures anywhere in the chain are mapped with FromFailure.
func Wrap(err error, message string) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	if f, ok := generation.AsFailure(err); ok {
		return FromFailure(f)
	}

	return NewInternalError(message).WithCause(err)
}

// getStackTrace captures the current stack trace
func getStackTrace() string {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	var builder strings.Builder
	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.File, "pkg/errors") {
			builder.WriteString(fmt.Sprintf("%s:%d %s\n", frame.File, frame.Line, frame.Function))
		}
		if !more {
			break
		}
	}

	return builder.String()
}

// ValidationError represents a field validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Value   interface{} `json:"value"`
	Tag     string      `json:"tag"`
	Message string      `json:"message"`
}

// ValidationErrors represents multiple validation errors
type ValidationErrors []ValidationError

// Error implements the error interface
func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "validation failed"
	}

	if len(v) == 1 {
		return v[0].Message
	}

	var messages []string
	for _, err := range v {
		messages = append(messages, err.Message)
	}

	return strings.Join(messages, "; ")
}

// NewValidationErrors creates validation errors from validator errors
func NewValidationErrors(errors []ValidationError) *AppError {
	validationErrs := ValidationErrors(errors)

	return NewAppError(
		CodeValidationFailed,
		"Validation failed",
		validationErrs.Error(),
	).WithMetadata("validation_errors", validationErrs)
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error ErrorDetails `json:"error"`
}

// ErrorDetails represents the error details in API responses
type ErrorDetails struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
	Timestamp string                 `json:"timestamp"`
}

// ToErrorResponse converts an AppError to an API error response
func ToErrorResponse(err *AppError, requestID string) ErrorResponse {
	return ErrorResponse{
		Error: ErrorDetails{
			Code:      err.Code,
			Message:   err.Message,
			Details:   err.Details,
			Metadata:  err.Metadata,
			RequestID: requestID,
			Timestamp: fmt.Sprintf("%d", time.Now().Unix()),
		},
	}
}
