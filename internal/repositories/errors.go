package repositories

import "errors"

var (
	// ErrNotFound is returned when a looked up record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique column already holds the value.
	ErrDuplicate = errors.New("record already exists")
	// ErrOpenOrderExists is returned when the customer already has an
	// undelivered order.
	ErrOpenOrderExists = errors.New("customer already has an undelivered order")
	// ErrStaleStatus is returned when an order status changed between read and update.
	ErrStaleStatus = errors.New("order status changed concurrently")
)
