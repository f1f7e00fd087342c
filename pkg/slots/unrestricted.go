package slots

import (
	"fmt"
	"iter"
)

// UnrestrictedSlots is a fixed-capacity collection addressed by bare
// indices.
//
// Nothing ties an [Index] to the collection that returned it, and nothing
// tells a value apart from a later one stored in the same slot. Accessors
// only check bounds and occupancy. Callers that use this type must already
// know their indices are correct; misuse is a silent logic error.
type UnrestrictedSlots[T any] struct {
	raw storage[T]
}

// NewUnrestricted creates an empty unrestricted collection.
// It panics with [ErrInvalidInput] if capacity is negative.
func NewUnrestricted[T any](capacity int) *UnrestrictedSlots[T] {
	return &UnrestrictedSlots[T]{raw: newStorage[T](capacity)}
}

// Capacity returns the number of slots.
func (s *UnrestrictedSlots[T]) Capacity() int { return s.raw.capacity() }

// Count returns the number of occupied slots.
func (s *UnrestrictedSlots[T]) Count() int { return s.raw.count }

// IsFull reports whether the next Store will fail.
func (s *UnrestrictedSlots[T]) IsFull() bool { return s.raw.isFull() }

// Store puts v in a free slot and returns its index.
// Returns [ErrCapacityExceeded] if every slot is occupied.
func (s *UnrestrictedSlots[T]) Store(v T) (Index, error) {
	idx, ok := s.raw.allocate(v)
	if !ok {
		return noNext, fmt.Errorf("store into %d slots: %w", s.raw.capacity(), ErrCapacityExceeded)
	}

	return Index(idx), nil
}

// Read calls fn with the value in slot i and reports whether it did.
func (s *UnrestrictedSlots[T]) Read(i Index, fn func(v *T)) bool {
	v := s.raw.lookup(int(i))
	if v == nil {
		return false
	}

	fn(v)

	return true
}

// Get returns a copy of the value in slot i.
func (s *UnrestrictedSlots[T]) Get(i Index) (T, bool) {
	v := s.raw.lookup(int(i))
	if v == nil {
		var zero T
		return zero, false
	}

	return *v, true
}

// Modify calls fn with mutable access to the value in slot i and reports
// whether it did.
func (s *UnrestrictedSlots[T]) Modify(i Index, fn func(v *T)) bool {
	return s.Read(i, fn)
}

// Take removes the value in slot i and frees the slot.
func (s *UnrestrictedSlots[T]) Take(i Index) (T, bool) {
	if s.raw.lookup(int(i)) == nil {
		var zero T
		return zero, false
	}

	return s.raw.deallocate(int(i)), true
}

// Update calls fn for every occupied slot in storage order with mutable
// access to its value. fn must not store or take.
func (s *UnrestrictedSlots[T]) Update(fn func(i Index, v *T)) {
	for i := range s.raw.cells {
		if s.raw.cells[i].occupied {
			fn(Index(i), &s.raw.cells[i].value)
		}
	}
}

// Clear empties every slot.
func (s *UnrestrictedSlots[T]) Clear() {
	s.raw.clear()
}

// All yields every occupied slot with a copy of its value, in storage order.
func (s *UnrestrictedSlots[T]) All() iter.Seq2[Index, T] {
	return s.raw.all()
}

// Values yields copies of the stored values in storage order.
func (s *UnrestrictedSlots[T]) Values() iter.Seq[T] {
	return s.raw.values()
}
