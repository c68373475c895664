package apperrors

import "fmt"

// ValidationError reports malformed or incomplete input. The caller can fix the
// input and retry. Requirement names the unmet rule when one applies (e.g.
// "pictures", "minimum_amount").
type ValidationError struct {
	Requirement string
	Message     string
}

func (e *ValidationError) Error() string {
	if e.Requirement != "" {
		return fmt.Sprintf("validation failed (%s): %s", e.Requirement, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// NewValidationError builds a ValidationError for a named requirement.
func NewValidationError(requirement, format string, args ...interface{}) *ValidationError {
	return &ValidationError{
		Requirement: requirement,
		Message:     fmt.Sprintf(format, args...),
	}
}

// StateConflictError reports a transition that is not legal from the record's
// current status, including a concurrent double-release. Recoverable by
// re-fetching state.
type StateConflictError struct {
	Entity   string
	ID       string
	Current  string
	Required string
	Message  string
}

func (e *StateConflictError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("state conflict on %s %s: %s", e.Entity, e.ID, e.Message)
	}
	return fmt.Sprintf("state conflict on %s %s: status is %q, requires %q", e.Entity, e.ID, e.Current, e.Required)
}

// NewStateConflictError reports an illegal transition from Current when
// Required was needed.
func NewStateConflictError(entity, id, current, required string) *StateConflictError {
	return &StateConflictError{Entity: entity, ID: id, Current: current, Required: required}
}

// NewReleaseConflictError is the double-release variant: the record is already
// being released or has been released.
func NewReleaseConflictError(entity, id string) *StateConflictError {
	return &StateConflictError{Entity: entity, ID: id, Message: "release already in progress or completed"}
}

// GatewayError wraps a distributed-ledger gateway failure. Retryable, but the
// caller must re-check the transfer outcome before resubmitting.
type GatewayError struct {
	Op  string
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("ledger gateway %s failed: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// NewGatewayError wraps err as a gateway failure for the named operation.
func NewGatewayError(op string, err error) *GatewayError {
	return &GatewayError{Op: op, Err: err}
}

// AuthorizationError reports a caller whose role does not permit the requested
// operation. Not retryable without a role change.
type AuthorizationError struct {
	Role     string
	Required string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("role %q is not permitted, requires %q", e.Role, e.Required)
}

// NewAuthorizationError reports that role lacks the required permission.
func NewAuthorizationError(role, required string) *AuthorizationError {
	return &AuthorizationError{Role: role, Required: required}
}
