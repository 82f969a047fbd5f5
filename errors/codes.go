package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Definition errors (fatal, rejected before any stage is dispatched)
const (
	// ErrCodeDefinition indicates an invalid pipeline definition
	// (cyclic or dangling dependency, duplicate stage name, bad condition).
	ErrCodeDefinition ErrorCode = "DEFINITION_ERROR"
	// ErrCodeUnknownAction indicates a stage references an action that is
	// not registered.
	ErrCodeUnknownAction ErrorCode = "UNKNOWN_ACTION"
	// ErrCodeUnknownPipeline indicates a stage references a nested pipeline
	// that the loader cannot resolve.
	ErrCodeUnknownPipeline ErrorCode = "UNKNOWN_PIPELINE"
	// ErrCodeProtectedTarget indicates a destructive run was requested
	// against a protected parameter value.
	ErrCodeProtectedTarget ErrorCode = "PROTECTED_TARGET"
)

// Stage-level failures (local to one subtree, sibling branches keep running)
const (
	// ErrCodeLockTimeout indicates a resource-lock acquisition exceeded
	// its timeout. The waiting stage fails; it never held the lock.
	ErrCodeLockTimeout ErrorCode = "LOCK_ACQUISITION_TIMEOUT"
	// ErrCodeActionFailure indicates an external stage action reported
	// failure. The detail is opaque to the orchestrator.
	ErrCodeActionFailure ErrorCode = "ACTION_FAILURE"
	// ErrCodeActionTimeout indicates a stage action exceeded its timeout
	// and was cancelled.
	ErrCodeActionTimeout ErrorCode = "ACTION_TIMEOUT"
	// ErrCodeRunCancelled indicates the run was cancelled by its caller.
	ErrCodeRunCancelled ErrorCode = "RUN_CANCELLED"
)

// Resource errors (reporting API)
const (
	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeConflict indicates a conflict with the current state of the resource.
	ErrCodeConflict ErrorCode = "CONFLICT"
)

// Infrastructure errors
const (
	// ErrCodeInternal indicates an internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
	// ErrCodeLockBackend indicates the lock backend failed.
	ErrCodeLockBackend ErrorCode = "LOCK_BACKEND_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeLockTimeout: true,
	ErrCodeLockBackend: true,
}

// IsRetryableCode reports whether resubmitting a new run may succeed for the
// given code. The orchestrator itself never retries anything.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
