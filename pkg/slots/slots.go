package slots

import (
	"fmt"
	"iter"
)

// Key is the strict-mode capability for one stored value.
//
// Keys are only created by [Slots.Store] and are handled by pointer. A key
// must only be used with the collection that minted it. [Slots.Take]
// consumes the key: every pointer to it is spent afterwards, and using a
// spent key panics with [ErrKeyConsumed]. A struct copy of a key (*k) is
// consumed as well once its value has been taken.
type Key[T any] struct {
	index int
	owner InstanceID
	gen   uint64
	spent bool
}

// Index returns the slot the key addresses. The index may be used with
// [Slots.TryRead] and [Slots.TryGet], which make no validity promises.
func (k *Key[T]) Index() Index {
	return Index(k.index)
}

// Spent reports whether the key has been consumed by [Slots.Take].
func (k *Key[T]) Spent() bool {
	return k.spent
}

func (k *Key[T]) String() string {
	if k.spent {
		return fmt.Sprintf("key(slot=%d owner=%s spent)", k.index, k.owner)
	}

	return fmt.Sprintf("key(slot=%d owner=%s)", k.index, k.owner)
}

// Slots is a fixed-capacity collection with strict access control.
//
// Values can be read by index by anyone, but only modified or removed
// through the [Key] returned when they were stored. Accessors that take a
// key assume it is valid and panic otherwise: a live key is supposed to
// guarantee its value exists. Use the Try variants to tolerate bad keys.
//
// The zero value is not usable; create collections with [New] or
// [NewWithOptions].
type Slots[T any] struct {
	id    InstanceID
	check ownerCheck
	raw   storage[T]
}

// New creates an empty strict collection with the given number of slots,
// using the default registry and the build's runtime check default.
//
// New panics with [ErrInvalidInput] if capacity is negative.
func New[T any](capacity int) *Slots[T] {
	return NewWithOptions[T](capacity, Options{})
}

// NewWithOptions is like [New] with explicit options.
func NewWithOptions[T any](capacity int, opts Options) *Slots[T] {
	raw := newStorage[T](capacity)

	return &Slots[T]{
		id:    opts.registry().Next(),
		check: opts.Checks.ownerCheck(),
		raw:   raw,
	}
}

// ID returns the collection's instance id.
func (s *Slots[T]) ID() InstanceID {
	return s.id
}

// ChecksEnabled reports whether keys are verified against the owner id.
func (s *Slots[T]) ChecksEnabled() bool {
	_, on := s.check.(verifyOwner)

	return on
}

// Capacity returns the number of slots.
func (s *Slots[T]) Capacity() int {
	return s.raw.capacity()
}

// Count returns the number of occupied slots.
func (s *Slots[T]) Count() int {
	return s.raw.count
}

// IsFull reports whether the next Store will fail.
func (s *Slots[T]) IsFull() bool {
	return s.raw.isFull()
}

// Store puts v in a free slot and returns the key for it.
//
// Returns [ErrCapacityExceeded] if every slot is occupied; the collection
// is left unchanged.
func (s *Slots[T]) Store(v T) (*Key[T], error) {
	idx, ok := s.raw.allocate(v)
	if !ok {
		return nil, fmt.Errorf("store into %d slots: %w", s.raw.capacity(), ErrCapacityExceeded)
	}

	return &Key[T]{index: idx, owner: s.id, gen: s.raw.generation(idx)}, nil
}

// Read calls fn with the value behind k. fn must not retain the pointer.
//
// Read panics if k is nil, spent, foreign (checks on) or does not address a
// stored value.
func (s *Slots[T]) Read(k *Key[T], fn func(v *T)) {
	fn(s.mustLookup(k))
}

// Get returns a copy of the value behind k. It panics like [Slots.Read].
func (s *Slots[T]) Get(k *Key[T]) T {
	return *s.mustLookup(k)
}

// Modify calls fn with mutable access to the value behind k. The slot stays
// occupied. It panics like [Slots.Read].
func (s *Slots[T]) Modify(k *Key[T], fn func(v *T)) {
	fn(s.mustLookup(k))
}

// Take removes the value behind k, frees its slot and consumes k.
// It panics like [Slots.Read].
func (s *Slots[T]) Take(k *Key[T]) T {
	s.mustLookup(k)

	k.spent = true

	return s.raw.deallocate(k.index)
}

// TryRead calls fn with the value in slot i, if any, and reports whether it
// did. The slot may hold a different value than the one whose key the index
// came from.
func (s *Slots[T]) TryRead(i Index, fn func(v *T)) bool {
	v := s.raw.lookup(int(i))
	if v == nil {
		return false
	}

	fn(v)

	return true
}

// TryGet returns a copy of the value in slot i, if any.
func (s *Slots[T]) TryGet(i Index) (T, bool) {
	v := s.raw.lookup(int(i))
	if v == nil {
		var zero T
		return zero, false
	}

	return *v, true
}

// TryModify is the fallible form of [Slots.Modify]. fn is not called when
// an error is returned. A foreign key yields an error matching both
// [ErrNotFound] and [ErrForeignKey].
func (s *Slots[T]) TryModify(k *Key[T], fn func(v *T)) error {
	v, err := s.lookupKey(k)
	if err != nil {
		return err
	}

	fn(v)

	return nil
}

// TryTake is the fallible form of [Slots.Take]. On error the collection and
// k are unchanged.
func (s *Slots[T]) TryTake(k *Key[T]) (T, error) {
	_, err := s.lookupKey(k)
	if err != nil {
		var zero T
		return zero, err
	}

	k.spent = true

	return s.raw.deallocate(k.index), nil
}

// All yields every occupied slot with a copy of its value, in storage
// order. No key is required. Do not store or take while ranging.
func (s *Slots[T]) All() iter.Seq2[Index, T] {
	return s.raw.all()
}

// Values yields copies of the stored values in storage order.
func (s *Slots[T]) Values() iter.Seq[T] {
	return s.raw.values()
}

func (s *Slots[T]) mustLookup(k *Key[T]) *T {
	v, err := s.lookupKey(k)
	if err != nil {
		panic(err)
	}

	return v
}

func (s *Slots[T]) lookupKey(k *Key[T]) (*T, error) {
	if k == nil {
		return nil, fmt.Errorf("nil key: %w", ErrInvalidInput)
	}

	// The spent marker stands in for move semantics; it is not a runtime
	// check and stays on when owner verification is off.
	if k.spent {
		return nil, fmt.Errorf("slot %d: %w", k.index, ErrKeyConsumed)
	}

	err := s.check.verify(k.owner, s.id)
	if err != nil {
		return nil, fmt.Errorf("slot %d: %w: %w", k.index, ErrNotFound, err)
	}

	v := s.raw.lookup(k.index)
	if v == nil {
		return nil, fmt.Errorf("slot %d of %d: %w", k.index, s.raw.capacity(), ErrNotFound)
	}

	// A copy of a taken key is not marked spent; the generation catches it
	// once the slot has been refilled. Foreign keys with checks off address
	// the slot like an index and skip this.
	if k.owner == s.id && s.raw.generation(k.index) != k.gen {
		return nil, fmt.Errorf("slot %d refilled since key was minted: %w", k.index, ErrKeyConsumed)
	}

	return v, nil
}
