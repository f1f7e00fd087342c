package testutil

import "testing"

// DefaultMaxOps bounds a single behavior run.
const DefaultMaxOps = 400

// BehaviorRunConfig configures a model-vs-real behavior test run.
type BehaviorRunConfig struct {
	// MaxOps is the maximum number of operations to execute.
	MaxOps int

	// CompareEntriesEveryN runs a full iteration comparison every N
	// operations. Set to 0 to only compare on OpIter and at the end.
	CompareEntriesEveryN int
}

// RunBehavior executes a deterministic stream of operations against the
// model and all three collections of the given capacity.
func RunBehavior(tb testing.TB, capacity int, src OpSource, cfg BehaviorRunConfig) *Harness {
	tb.Helper()

	if cfg.MaxOps <= 0 {
		tb.Fatalf("RunBehavior requires MaxOps > 0")
	}

	h := NewHarness(tb, capacity)

	var last Operation = OpIter{}

	for opIndex := 1; opIndex <= cfg.MaxOps; opIndex++ {
		op := src.NextOp(h)
		last = op

		h.Apply(op)
		h.CompareCounts(op)

		if cfg.CompareEntriesEveryN > 0 && opIndex%cfg.CompareEntriesEveryN == 0 {
			h.CompareEntries(op)
		}
	}

	h.CompareEntries(last)

	return h
}
