package slots_test

import (
	"errors"
	"testing"
)

// mustPanicWith runs fn and fails the test unless it panics with an error
// matching target. Returns the recovered error.
func mustPanicWith(t *testing.T, target error, fn func()) error {
	t.Helper()

	var recovered any

	func() {
		defer func() { recovered = recover() }()

		fn()
	}()

	if recovered == nil {
		t.Fatalf("expected panic matching %v", target)
	}

	err, ok := recovered.(error)
	if !ok {
		t.Fatalf("panic=%T (%v), want error", recovered, recovered)
	}

	if !errors.Is(err, target) {
		t.Fatalf("panic=%v, want %v", err, target)
	}

	return err
}

func identity[T any](dst *T) func(*T) {
	return func(v *T) { *dst = *v }
}
