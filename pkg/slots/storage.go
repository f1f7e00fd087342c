package slots

import (
	"fmt"
	"iter"
)

// Index addresses a slot. Valid indices are 0 <= i < capacity.
type Index int

// noNext terminates the free chain.
const noNext = -1

// cell is one slot. next links empty cells into the free chain and is
// meaningless while the cell is occupied.
//
// gen counts how many times the cell has been filled. Keys carry it so that
// a key or copy outliving a Take does not match a later occupant. At 64 bits
// it does not wrap in practice.
type cell[T any] struct {
	value    T
	next     int
	gen      uint64
	occupied bool
}

// storage is the fixed array of cells shared by all access modes.
//
// The free chain is a stack threaded through the empty cells, so a freed
// slot is the next one allocated. Invariant: count plus the length of the
// free chain equals len(cells), and no index is both free and occupied.
type storage[T any] struct {
	cells    []cell[T]
	nextFree int
	count    int
}

func newStorage[T any](capacity int) storage[T] {
	if capacity < 0 {
		panic(fmt.Errorf("capacity must be >= 0, got %d: %w", capacity, ErrInvalidInput))
	}

	cells := make([]cell[T], capacity)

	// Cell i links to i-1, so the chain starts at the last cell.
	for i := range cells {
		cells[i].next = i - 1
	}

	return storage[T]{
		cells:    cells,
		nextFree: capacity - 1, // noNext when capacity is 0
	}
}

func (s *storage[T]) capacity() int {
	return len(s.cells)
}

func (s *storage[T]) isFull() bool {
	return s.nextFree == noNext
}

// allocate pops the head of the free chain and stores v there.
// Returns false if no slot is free.
func (s *storage[T]) allocate(v T) (int, bool) {
	idx := s.nextFree
	if idx == noNext {
		return noNext, false
	}

	c := &s.cells[idx]
	if c.occupied {
		panic(fmt.Sprintf("slots: occupied cell %d behind free chain", idx))
	}

	s.nextFree = c.next

	c.value = v
	c.next = noNext
	c.gen++
	c.occupied = true

	s.count++

	return idx, true
}

// deallocate empties an occupied cell, pushes it on the free chain and
// returns its value. Callers must have verified occupancy.
func (s *storage[T]) deallocate(idx int) T {
	c := &s.cells[idx]
	if !c.occupied {
		panic(fmt.Errorf("deallocate empty slot %d: %w", idx, ErrNotFound))
	}

	v := c.value

	var zero T

	c.value = zero
	c.occupied = false
	c.next = s.nextFree

	s.nextFree = idx
	s.count--

	return v
}

// lookup returns the value in slot idx, or nil if idx is out of range or
// the slot is empty.
func (s *storage[T]) lookup(idx int) *T {
	if idx < 0 || idx >= len(s.cells) {
		return nil
	}

	c := &s.cells[idx]
	if !c.occupied {
		return nil
	}

	return &c.value
}

// generation returns the fill count of slot idx, or 0 if out of range.
func (s *storage[T]) generation(idx int) uint64 {
	if idx < 0 || idx >= len(s.cells) {
		return 0
	}

	return s.cells[idx].gen
}

// clear empties every cell and rebuilds the free chain. Generations are
// kept so that relaxed keys minted before the clear stay stale.
func (s *storage[T]) clear() {
	var zero T

	for i := range s.cells {
		s.cells[i].value = zero
		s.cells[i].occupied = false
		s.cells[i].next = i - 1
	}

	s.nextFree = len(s.cells) - 1
	s.count = 0
}

// all yields occupied slots in storage order. The sequence is restartable;
// each range re-scans from slot 0. Callers must not mutate the storage
// while ranging.
func (s *storage[T]) all() iter.Seq2[Index, T] {
	return func(yield func(Index, T) bool) {
		for i := range s.cells {
			if !s.cells[i].occupied {
				continue
			}

			if !yield(Index(i), s.cells[i].value) {
				return
			}
		}
	}
}

func (s *storage[T]) values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, v := range s.all() {
			if !yield(v) {
				return
			}
		}
	}
}

// freeChain returns the indices on the free chain, head first.
func (s *storage[T]) freeChain() []int {
	var out []int

	for idx := s.nextFree; idx != noNext; idx = s.cells[idx].next {
		if len(out) > len(s.cells) {
			panic("slots: free chain cycle")
		}

		out = append(out, idx)
	}

	return out
}
