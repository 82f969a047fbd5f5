package errors

import (
	"fmt"
	"net/http"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if resubmitting a new run can be expected to help.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the recommended HTTP status code for this error.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// --- Definition Error Constructors ---

// Definition creates a new AppError for an invalid pipeline definition.
// Definition errors are always rejected before any stage is dispatched.
func Definition(pipeline, reason string) *AppError {
	return &AppError{
		Code: ErrCodeDefinition, Message: fmt.Sprintf("Invalid pipeline definition %q: %s", pipeline, reason),
		HTTPStatus: http.StatusUnprocessableEntity, Retryable: false,
		Details: map[string]any{"pipeline": pipeline},
	}
}

// UnknownAction creates a new AppError for an unregistered action reference.
func UnknownAction(stage, action string) *AppError {
	return &AppError{
		Code: ErrCodeUnknownAction, Message: fmt.Sprintf("Stage %q references unregistered action %q.", stage, action),
		HTTPStatus: http.StatusUnprocessableEntity, Retryable: false,
		Details: map[string]any{"stage": stage, "action": action},
	}
}

// UnknownPipeline creates a new AppError for an unresolvable nested pipeline reference.
func UnknownPipeline(stage, pipeline string) *AppError {
	return &AppError{
		Code: ErrCodeUnknownPipeline, Message: fmt.Sprintf("Stage %q references unknown pipeline %q.", stage, pipeline),
		HTTPStatus: http.StatusUnprocessableEntity, Retryable: false,
		Details: map[string]any{"stage": stage, "pipeline": pipeline},
	}
}

// ProtectedTarget creates a new AppError for a destructive run against a
// protected parameter value.
func ProtectedTarget(param, value string) *AppError {
	return &AppError{
		Code: ErrCodeProtectedTarget, Message: fmt.Sprintf("Destructive runs are not allowed against protected %s %q.", param, value),
		HTTPStatus: http.StatusForbidden, Retryable: false,
		Details: map[string]any{"param": param, "value": value},
	}
}

// --- Stage Failure Constructors ---

// LockTimeout creates a new AppError for a resource-lock acquisition that
// exceeded its timeout. The waiter never held the lock.
func LockTimeout(name string, timeout string) *AppError {
	return &AppError{
		Code: ErrCodeLockTimeout, Message: fmt.Sprintf("Could not acquire lock %q within %s.", name, timeout),
		HTTPStatus: http.StatusConflict, Retryable: true,
		Details: map[string]any{"lock": name, "timeout": timeout},
	}
}

// ActionFailure creates a new AppError wrapping an opaque external action failure.
func ActionFailure(stage string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeActionFailure, Message: fmt.Sprintf("Stage %q action failed.", stage),
		HTTPStatus: http.StatusInternalServerError, Retryable: false,
		Details: map[string]any{"stage": stage}, Cause: cause,
	}
}

// ActionTimeout creates a new AppError for a stage action that exceeded its
// timeout and was cancelled.
func ActionTimeout(stage string, timeout string) *AppError {
	return &AppError{
		Code: ErrCodeActionTimeout, Message: fmt.Sprintf("Stage %q exceeded its %s timeout and was cancelled.", stage, timeout),
		HTTPStatus: http.StatusGatewayTimeout, Retryable: false,
		Details: map[string]any{"stage": stage, "timeout": timeout},
	}
}

// RunCancelled creates a new AppError for a run cancelled by its caller.
func RunCancelled(runID string) *AppError {
	return &AppError{
		Code: ErrCodeRunCancelled, Message: "The run was cancelled.",
		HTTPStatus: http.StatusConflict, Retryable: false,
		Details: map[string]any{"run_id": runID},
	}
}

// --- Common Constructors ---

// NotFound creates a new AppError for a resource that was not found.
func NotFound(resource, id string) *AppError {
	details := map[string]any{"resource": resource}
	if id != "" {
		details["id"] = id
	}
	return &AppError{
		Code: ErrCodeNotFound, Message: fmt.Sprintf("The requested %s was not found.", resource),
		HTTPStatus: http.StatusNotFound, Retryable: false, Details: details,
	}
}

// InvalidInput creates a new AppError for invalid input.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("Invalid input: %s", reason),
		HTTPStatus: http.StatusBadRequest, Retryable: false, Details: details,
	}
}

// Validation creates a new AppError for validation errors.
func Validation(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidInput, Message: message,
		HTTPStatus: http.StatusBadRequest, Retryable: false,
	}
}

// Conflict creates a new AppError for a conflict with the current state of the resource.
func Conflict(reason string) *AppError {
	return &AppError{
		Code: ErrCodeConflict, Message: reason,
		HTTPStatus: http.StatusConflict, Retryable: false,
	}
}

// Internal creates a new AppError for an internal error.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred.",
		HTTPStatus: http.StatusInternalServerError, Retryable: false, Cause: cause,
	}
}

// LockBackend creates a new AppError for a lock backend failure.
func LockBackend(backend string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeLockBackend, Message: fmt.Sprintf("The %s lock backend encountered an error.", backend),
		HTTPStatus: http.StatusServiceUnavailable, Retryable: true,
		Details: map[string]any{"backend": backend}, Cause: cause,
	}
}
