package services

import "fmt"

// Messages shown to customers verbatim.
const (
	MsgOrderInFlight       = "Your last order must be completed."
	MsgAddressRequired     = "Address is required."
	MsgInvalidOrderDetails = "Invalid order details."
	MsgRestaurantNotFound  = "Restaurant not found."
	MsgAuthRequired        = "Authentication credentials were not provided or have expired."
)

// AuthError means the caller could not be authenticated and has to log in again.
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AuthError) Unwrap() error { return e.Err }

// ValidationError means the request input is malformed and must be corrected.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Field, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// ConflictError means the request clashes with current state. The caller
// may retry once the state changes.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// NotFoundError means the addressed resource does not exist for the caller.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// PersistenceError means a storage write failed. Nothing was committed, so
// the whole request can be retried.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
