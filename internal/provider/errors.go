package provider

import (
	"errors"
	"fmt"
)

// ContractError represents a capability-contract violation detected while
// resolving or invoking a connector.
//
// Contract errors include:
//   - Unknown provider: a caller named an ID that is not registered
//   - Unsupported operation: a connector was asked for an operation,
//     token, or level outside its declared sets
//   - Not ready: a connector was invoked before a successful Init
//
// ContractError includes structured fields so callers can branch on the
// kind without parsing messages.
type ContractError struct {
	// Code identifies the error category.
	Code ContractErrorCode

	// Message is a human-readable description.
	Message string

	// ProviderID identifies the connector involved, when known.
	ProviderID string

	// Op identifies the operation involved (for unsupported-operation).
	Op Operation
}

// ContractErrorCode categorizes contract errors.
type ContractErrorCode string

const (
	// ErrCodeNotFound indicates the named provider is not registered.
	ErrCodeNotFound ContractErrorCode = "PROVIDER_NOT_FOUND"

	// ErrCodeUnsupported indicates the operation/token/level is outside
	// the connector's declared sets.
	ErrCodeUnsupported ContractErrorCode = "UNSUPPORTED_OPERATION"

	// ErrCodeNotReady indicates the connector has not completed Init.
	ErrCodeNotReady ContractErrorCode = "NOT_READY"
)

// Error implements the error interface.
func (e *ContractError) Error() string {
	if e.ProviderID != "" {
		return fmt.Sprintf("%s: %s (provider=%s)", e.Code, e.Message, e.ProviderID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsNotFound returns true if the error is a provider-not-found error.
// Uses errors.As to handle wrapped errors.
func IsNotFound(err error) bool {
	var ce *ContractError
	if errors.As(err, &ce) {
		return ce.Code == ErrCodeNotFound
	}
	return false
}

// IsUnsupported returns true if the error is an unsupported-operation error.
// Uses errors.As to handle wrapped errors.
func IsUnsupported(err error) bool {
	var ce *ContractError
	if errors.As(err, &ce) {
		return ce.Code == ErrCodeUnsupported
	}
	return false
}

// NewNotFoundError creates a ContractError for an unregistered provider ID.
func NewNotFoundError(id string) *ContractError {
	return &ContractError{
		Code:       ErrCodeNotFound,
		Message:    "provider is not registered",
		ProviderID: id,
	}
}

// NewUnsupportedError creates a ContractError for an undeclared
// operation/token/level combination.
func NewUnsupportedError(id string, op Operation, token string, level PrivacyLevel) *ContractError {
	return &ContractError{
		Code:       ErrCodeUnsupported,
		Message:    fmt.Sprintf("operation %s not declared for token=%s level=%s", op, token, level),
		ProviderID: id,
		Op:         op,
	}
}

// NewNotReadyError creates a ContractError for a connector invoked before
// a successful Init.
func NewNotReadyError(id string) *ContractError {
	return &ContractError{
		Code:       ErrCodeNotReady,
		Message:    "provider has not been initialized",
		ProviderID: id,
	}
}
