package slots

import "errors"

// Sentinel errors returned by slots operations.
//
// Callers should use [errors.Is] to check error types:
//
//	if errors.Is(err, slots.ErrCapacityExceeded) {
//	    // drop the value or take something out first
//	}
//
// Panics raised for programmer errors carry an error wrapping one of these
// sentinels, so a recovered value can be inspected the same way.
var (
	// ErrCapacityExceeded indicates Store was called on a full collection.
	//
	// The collection is unchanged. Recovery: take a value out first.
	ErrCapacityExceeded = errors.New("slots: capacity exceeded")

	// ErrNotFound indicates a key or index does not address a stored value:
	// the slot is empty, out of range, or now holds a different value.
	ErrNotFound = errors.New("slots: not found")

	// ErrForeignKey indicates a strict key was presented to a collection
	// that did not mint it.
	//
	// This is a programming error. Fallible accessors report it together
	// with [ErrNotFound].
	ErrForeignKey = errors.New("slots: foreign key")

	// ErrKeyConsumed indicates a strict key was used after Take consumed it.
	//
	// This is a programming error.
	ErrKeyConsumed = errors.New("slots: key consumed")

	// ErrInvalidInput indicates invalid arguments, such as a negative
	// capacity or a nil key.
	//
	// This is a programming error.
	ErrInvalidInput = errors.New("slots: invalid input")
)
