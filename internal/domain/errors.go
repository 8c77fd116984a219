package domain

import "errors"

// Replenishment domain errors
var (
	// ErrInvalidQuantity is returned when a stock change would drive on-hand negative
	ErrInvalidQuantity = errors.New("resulting quantity on hand cannot be negative")

	// ErrInsufficientAvailable is returned when a reservation exceeds available stock
	ErrInsufficientAvailable = errors.New("insufficient available stock to reserve")

	// ErrInvalidArgument is returned when an operation receives an out-of-range argument
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrMissingInputData is returned when a forecast or lead time profile is unavailable
	ErrMissingInputData = errors.New("missing forecast or lead time input data")

	// ErrMinimumOrderUnreachable is returned when no line increment can satisfy the supplier minimum
	ErrMinimumOrderUnreachable = errors.New("supplier minimum order cannot be reached")

	// ErrEmptyOrder is returned when an order without items is submitted for approval
	ErrEmptyOrder = errors.New("purchase order has no items")

	// ErrInvalidTransition is returned when a status change is not an edge of the lifecycle graph
	ErrInvalidTransition = errors.New("invalid purchase order status transition")

	// ErrOrderLocked is returned when mutating order fields outside of DRAFT
	ErrOrderLocked = errors.New("purchase order is locked for modification")

	// ErrConcurrentModification is returned when an optimistic version check fails
	ErrConcurrentModification = errors.New("purchase order was modified concurrently")

	// ErrNotFound is returned when a keyed lookup has no value
	ErrNotFound = errors.New("not found")

	// ErrDuplicateOrderNumber is returned when an order number collides on create
	ErrDuplicateOrderNumber = errors.New("purchase order number already exists")
)
