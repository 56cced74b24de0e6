// Package service provides application-level services that orchestrate the
// domain engines, the stores, and transactions.
package service

import (
	"errors"
	"fmt"
)

// Common service errors - sentinel errors used across service implementations.
// These represent expected conditions that callers check for with errors.Is().
//
// Error handling principles:
// 1. Service methods return sentinel errors for expected error conditions
// 2. Unexpected errors are wrapped in ServiceError
// 3. Callers use errors.Is/errors.As to check for specific conditions
// 4. The API layer maps service errors to appropriate HTTP status codes
var (
	// ErrNotOwned indicates a resource is owned by a different parent account
	// than the one making the request.
	// API layer should map this to HTTP 403 Forbidden.
	ErrNotOwned = errors.New("resource is owned by another account")

	// ErrDailyLimitReached indicates the child has used up the free tier's
	// daily activity allowance.
	// API layer should map this to HTTP 403 Forbidden.
	ErrDailyLimitReached = errors.New("daily activity limit reached")

	// ErrNoCelebrationPending indicates a celebration acknowledgement was
	// sent for an achievement that has no unacknowledged earn event.
	// API layer should map this to HTTP 409 Conflict.
	ErrNoCelebrationPending = errors.New("no celebration pending")
)

// ServiceError wraps unexpected errors from a service with operation context.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "start_trial", "record_attempt")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}
