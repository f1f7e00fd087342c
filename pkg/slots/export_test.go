package slots

// Export internal functions for testing.
// This file is only compiled during tests.

// FreeChainForTesting returns the free chain of s, head first.
func FreeChainForTesting[T any](s *UnrestrictedSlots[T]) []int {
	return s.raw.freeChain()
}

// StrictFreeChainForTesting returns the free chain of s, head first.
func StrictFreeChainForTesting[T any](s *Slots[T]) []int {
	return s.raw.freeChain()
}

// GenerationForTesting returns the fill count of slot i.
func GenerationForTesting[T any](s *RelaxedSlots[T], i Index) uint64 {
	return s.raw.generation(int(i))
}

// NewRelaxedKeyForTesting forges a relaxed key.
func NewRelaxedKeyForTesting[T any](index Index, owner InstanceID, gen uint64) RelaxedKey[T] {
	return RelaxedKey[T]{index: int(index), owner: owner, gen: gen}
}
