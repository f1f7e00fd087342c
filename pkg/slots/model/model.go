// Package model provides a deliberately simple, in-memory state model of
// the observable behavior of slots collections.
//
// The model is intentionally easy to audit: the free list is an explicit
// slice used as a stack instead of a chain threaded through empty cells, and
// keys are plain handles compared field by field.
package model

import (
	"slices"

	"github.com/calvinalkan/slots/pkg/slots"
)

// Cell is one slot of the model.
type Cell[T any] struct {
	Occupied   bool
	Value      T
	Generation uint64
}

// Handle identifies a value as a relaxed key would: slot plus the
// generation the slot had when the value was stored.
type Handle struct {
	Slot       int
	Generation uint64
}

// Entry is an occupied slot as observed through iteration.
type Entry[T any] struct {
	Index slots.Index
	Value T
}

// Slots is the reference state.
//
// Free is a stack; its last element is the next slot handed out. A new model
// pushes N-1 last so that the first store lands in the highest slot.
type Slots[T any] struct {
	Cells []Cell[T]
	Free  []int
}

// New returns an empty model with capacity slots.
func New[T any](capacity int) (*Slots[T], error) {
	if capacity < 0 {
		return nil, slots.ErrInvalidInput
	}

	free := make([]int, capacity)
	for i := range free {
		free[i] = i
	}

	return &Slots[T]{
		Cells: make([]Cell[T], capacity),
		Free:  free,
	}, nil
}

// Clone makes a deep copy of the slot table. Values are copied shallowly.
func (m *Slots[T]) Clone() *Slots[T] {
	if m == nil {
		return nil
	}

	return &Slots[T]{
		Cells: slices.Clone(m.Cells),
		Free:  slices.Clone(m.Free),
	}
}

// Capacity returns the number of slots.
func (m *Slots[T]) Capacity() int {
	return len(m.Cells)
}

// Count returns the number of occupied slots.
func (m *Slots[T]) Count() int {
	n := 0

	for _, c := range m.Cells {
		if c.Occupied {
			n++
		}
	}

	return n
}

// Store pops the free stack. Returns [slots.ErrCapacityExceeded] when empty.
func (m *Slots[T]) Store(v T) (Handle, error) {
	if len(m.Free) == 0 {
		return Handle{}, slots.ErrCapacityExceeded
	}

	slot := m.Free[len(m.Free)-1]
	m.Free = m.Free[:len(m.Free)-1]

	c := &m.Cells[slot]
	c.Occupied = true
	c.Value = v
	c.Generation++

	return Handle{Slot: slot, Generation: c.Generation}, nil
}

// Live reports whether h still addresses its value.
func (m *Slots[T]) Live(h Handle) bool {
	if h.Slot < 0 || h.Slot >= len(m.Cells) {
		return false
	}

	c := m.Cells[h.Slot]

	return c.Occupied && c.Generation == h.Generation
}

// Get returns the value behind h if it is live.
func (m *Slots[T]) Get(h Handle) (T, bool) {
	if !m.Live(h) {
		var zero T
		return zero, false
	}

	return m.Cells[h.Slot].Value, true
}

// At returns whatever occupies slot i, ignoring generations.
func (m *Slots[T]) At(i slots.Index) (T, bool) {
	if i < 0 || int(i) >= len(m.Cells) || !m.Cells[i].Occupied {
		var zero T
		return zero, false
	}

	return m.Cells[i].Value, true
}

// Set replaces the value behind h if it is live.
func (m *Slots[T]) Set(h Handle, v T) bool {
	if !m.Live(h) {
		return false
	}

	m.Cells[h.Slot].Value = v

	return true
}

// Take removes the value behind h if it is live and pushes its slot on the
// free stack.
func (m *Slots[T]) Take(h Handle) (T, bool) {
	v, ok := m.Get(h)
	if !ok {
		return v, false
	}

	var zero T

	m.Cells[h.Slot].Occupied = false
	m.Cells[h.Slot].Value = zero
	m.Free = append(m.Free, h.Slot)

	return v, true
}

// Entries returns the occupied slots in storage order.
func (m *Slots[T]) Entries() []Entry[T] {
	var out []Entry[T]

	for i, c := range m.Cells {
		if c.Occupied {
			out = append(out, Entry[T]{Index: slots.Index(i), Value: c.Value})
		}
	}

	return out
}
