package slots

import (
	"fmt"
	"iter"
)

// RelaxedKey is the copyable key of a [RelaxedSlots] collection.
//
// Copies may outlive the value they were minted for. Every access
// re-validates the owner id, occupancy and the slot generation, so a stale
// copy reports not found rather than reading a later occupant of the slot.
//
// The zero value is foreign to every collection.
type RelaxedKey[T any] struct {
	index int
	owner InstanceID
	gen   uint64
}

// Index returns the slot the key addresses.
func (k RelaxedKey[T]) Index() Index {
	return Index(k.index)
}

func (k RelaxedKey[T]) String() string {
	return fmt.Sprintf("key(slot=%d owner=%s gen=%d)", k.index, k.owner, k.gen)
}

// RelaxedSlots is a fixed-capacity collection whose keys can be copied.
//
// Nothing panics on a bad key: all accessors report not found instead.
type RelaxedSlots[T any] struct {
	id  InstanceID
	raw storage[T]
}

// NewRelaxed creates an empty relaxed collection using the default registry.
// It panics with [ErrInvalidInput] if capacity is negative.
func NewRelaxed[T any](capacity int) *RelaxedSlots[T] {
	return NewRelaxedWithOptions[T](capacity, Options{})
}

// NewRelaxedWithOptions is like [NewRelaxed] with explicit options.
// [Options.Checks] is ignored; relaxed keys are always verified.
func NewRelaxedWithOptions[T any](capacity int, opts Options) *RelaxedSlots[T] {
	raw := newStorage[T](capacity)

	return &RelaxedSlots[T]{
		id:  opts.registry().Next(),
		raw: raw,
	}
}

// ID returns the collection's instance id.
func (s *RelaxedSlots[T]) ID() InstanceID { return s.id }

// Capacity returns the number of slots.
func (s *RelaxedSlots[T]) Capacity() int { return s.raw.capacity() }

// Count returns the number of occupied slots.
func (s *RelaxedSlots[T]) Count() int { return s.raw.count }

// IsFull reports whether the next Store will fail.
func (s *RelaxedSlots[T]) IsFull() bool { return s.raw.isFull() }

// Store puts v in a free slot and returns a key for it.
// Returns [ErrCapacityExceeded] if every slot is occupied.
func (s *RelaxedSlots[T]) Store(v T) (RelaxedKey[T], error) {
	idx, ok := s.raw.allocate(v)
	if !ok {
		return RelaxedKey[T]{}, fmt.Errorf("store into %d slots: %w", s.raw.capacity(), ErrCapacityExceeded)
	}

	return RelaxedKey[T]{index: idx, owner: s.id, gen: s.raw.generation(idx)}, nil
}

// Contains reports whether k still addresses its value.
func (s *RelaxedSlots[T]) Contains(k RelaxedKey[T]) bool {
	return s.lookup(k) != nil
}

// Read calls fn with the value behind k and reports whether it did.
// fn must not retain the pointer.
func (s *RelaxedSlots[T]) Read(k RelaxedKey[T], fn func(v *T)) bool {
	v := s.lookup(k)
	if v == nil {
		return false
	}

	fn(v)

	return true
}

// Get returns a copy of the value behind k.
func (s *RelaxedSlots[T]) Get(k RelaxedKey[T]) (T, bool) {
	v := s.lookup(k)
	if v == nil {
		var zero T
		return zero, false
	}

	return *v, true
}

// Modify calls fn with mutable access to the value behind k and reports
// whether it did.
func (s *RelaxedSlots[T]) Modify(k RelaxedKey[T], fn func(v *T)) bool {
	return s.Read(k, fn)
}

// Take removes the value behind k and frees its slot. Every copy of k is
// stale afterwards.
func (s *RelaxedSlots[T]) Take(k RelaxedKey[T]) (T, bool) {
	if s.lookup(k) == nil {
		var zero T
		return zero, false
	}

	return s.raw.deallocate(k.index), true
}

// TryRead calls fn with the value in slot i, if any, and reports whether it
// did. No key is involved, so the value may belong to any generation.
func (s *RelaxedSlots[T]) TryRead(i Index, fn func(v *T)) bool {
	v := s.raw.lookup(int(i))
	if v == nil {
		return false
	}

	fn(v)

	return true
}

// TryGet returns a copy of the value in slot i, if any.
func (s *RelaxedSlots[T]) TryGet(i Index) (T, bool) {
	v := s.raw.lookup(int(i))
	if v == nil {
		var zero T
		return zero, false
	}

	return *v, true
}

// All yields every occupied slot with a copy of its value, in storage order.
func (s *RelaxedSlots[T]) All() iter.Seq2[Index, T] {
	return s.raw.all()
}

// Values yields copies of the stored values in storage order.
func (s *RelaxedSlots[T]) Values() iter.Seq[T] {
	return s.raw.values()
}

func (s *RelaxedSlots[T]) lookup(k RelaxedKey[T]) *T {
	if k.owner != s.id {
		return nil
	}

	v := s.raw.lookup(k.index)
	if v == nil || s.raw.generation(k.index) != k.gen {
		return nil
	}

	return v
}
