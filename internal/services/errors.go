package services

import "errors"

// Domain error taxonomy. Every mutating operation returns one of these (or
// wraps a storage error); a failed operation never leaves a partial write
// behind because all writes happen inside a single transaction.
var (
	// ErrInvalidQuantity is returned when a quantity must be positive (or,
	// for physical counts, non-negative) and is not.
	ErrInvalidQuantity = errors.New("invalid quantity")

	// ErrInsufficientStock is returned when available stock at the source
	// location is less than the requested quantity.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrSameLocation is returned on a transfer where source and destination
	// are the same location.
	ErrSameLocation = errors.New("cannot transfer to the same location")

	// ErrDuplicateTag is returned when registering a lot whose tag already
	// identifies a live lot.
	ErrDuplicateTag = errors.New("tag already registered")

	// ErrInvalidInput is returned for malformed requests that are not
	// quantity problems, such as a missing name or an unknown location type.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict is returned when a unique identifier, such as an item
	// code, is already taken.
	ErrConflict = errors.New("already exists")

	// ErrNotFound is returned for an unknown item, location, lot or order.
	ErrNotFound = errors.New("not found")

	// ErrInvariantViolation indicates the aggregate counter and the live lot
	// count disagree. It signals a bug, not a user error.
	ErrInvariantViolation = errors.New("aggregate and lot counts disagree")

	// ErrTransferRestricted is returned when a transfer violates a configured
	// restriction (quantity cap, missing reference on a large transfer).
	ErrTransferRestricted = errors.New("transfer restricted by configuration")
)
