package testutil

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/calvinalkan/slots/pkg/slots"
	"github.com/calvinalkan/slots/pkg/slots/model"
)

// Minted holds the keys every collection returned for one Store.
type Minted struct {
	Handle  model.Handle
	Strict  *slots.Key[int64]
	Relaxed slots.RelaxedKey[int64]
	Index   slots.Index
}

// Harness owns the model and one real collection per access mode, all with
// the same capacity. Every collection allocates slots the same way, so a
// store must land in the same slot everywhere.
type Harness struct {
	tb testing.TB

	Model        *model.Slots[int64]
	Strict       *slots.Slots[int64]
	Relaxed      *slots.RelaxedSlots[int64]
	Unrestricted *slots.UnrestrictedSlots[int64]

	Minted []Minted
}

// NewHarness creates empty collections of the given capacity. Strict keys
// are always owner-checked, independent of build tags.
func NewHarness(tb testing.TB, capacity int) *Harness {
	tb.Helper()

	m, err := model.New[int64](capacity)
	if err != nil {
		tb.Fatalf("model.New(%d): %v", capacity, err)
	}

	opts := slots.Options{Registry: slots.NewRegistry(), Checks: slots.ChecksOn}

	return &Harness{
		tb:           tb,
		Model:        m,
		Strict:       slots.NewWithOptions[int64](capacity, opts),
		Relaxed:      slots.NewRelaxedWithOptions[int64](capacity, opts),
		Unrestricted: slots.NewUnrestricted[int64](capacity),
	}
}

// Apply runs op against the model and every collection and fails the test
// on the first divergence.
func (h *Harness) Apply(op Operation) {
	h.tb.Helper()

	switch op := op.(type) {
	case OpStore:
		h.applyStore(op)
	case OpGet:
		h.applyGet(op)
	case OpModify:
		h.applyModify(op)
	case OpTake:
		h.applyTake(op)
	case OpPeek:
		h.applyPeek(op)
	case OpIter:
		h.CompareEntries(op)
	default:
		h.tb.Fatalf("unknown operation %T", op)
	}
}

// CompareCounts checks the light invariants: count, capacity and fullness.
func (h *Harness) CompareCounts(op Operation) {
	h.tb.Helper()

	want := h.Model.Count()

	if got := h.Strict.Count(); got != want {
		h.tb.Fatalf("after %s: strict Count=%d, model=%d", op, got, want)
	}

	if got := h.Relaxed.Count(); got != want {
		h.tb.Fatalf("after %s: relaxed Count=%d, model=%d", op, got, want)
	}

	if got := h.Unrestricted.Count(); got != want {
		h.tb.Fatalf("after %s: unrestricted Count=%d, model=%d", op, got, want)
	}

	wantFull := want == h.Model.Capacity()
	if h.Strict.IsFull() != wantFull || h.Relaxed.IsFull() != wantFull || h.Unrestricted.IsFull() != wantFull {
		h.tb.Fatalf("after %s: IsFull disagrees with model (want %v)", op, wantFull)
	}
}

// CompareEntries checks that iteration yields exactly the model's entries.
func (h *Harness) CompareEntries(op Operation) {
	h.tb.Helper()

	want := h.Model.Entries()

	for name, seq := range map[string]func(func(slots.Index, int64) bool){
		"strict":       h.Strict.All(),
		"relaxed":      h.Relaxed.All(),
		"unrestricted": h.Unrestricted.All(),
	} {
		var got []model.Entry[int64]

		for i, v := range seq {
			got = append(got, model.Entry[int64]{Index: i, Value: v})
		}

		if diff := cmp.Diff(want, got); diff != "" {
			h.tb.Fatalf("after %s: %s entries mismatch (-model +real):\n%s", op, name, diff)
		}
	}
}

func (h *Harness) applyStore(op OpStore) {
	h.tb.Helper()

	handle, wantErr := h.Model.Store(op.Value)

	strictKey, strictErr := h.Strict.Store(op.Value)
	relaxedKey, relaxedErr := h.Relaxed.Store(op.Value)
	index, unrestrictedErr := h.Unrestricted.Store(op.Value)

	if wantErr != nil {
		for name, err := range map[string]error{"strict": strictErr, "relaxed": relaxedErr, "unrestricted": unrestrictedErr} {
			if !errors.Is(err, wantErr) {
				h.tb.Fatalf("%s: %s err=%v, want %v", op, name, err, wantErr)
			}
		}

		return
	}

	if strictErr != nil || relaxedErr != nil || unrestrictedErr != nil {
		h.tb.Fatalf("%s: unexpected errors strict=%v relaxed=%v unrestricted=%v", op, strictErr, relaxedErr, unrestrictedErr)
	}

	want := slots.Index(handle.Slot)
	if strictKey.Index() != want || relaxedKey.Index() != want || index != want {
		h.tb.Fatalf("%s: slots strict=%d relaxed=%d unrestricted=%d, model=%d",
			op, strictKey.Index(), relaxedKey.Index(), index, want)
	}

	h.Minted = append(h.Minted, Minted{
		Handle:  handle,
		Strict:  strictKey,
		Relaxed: relaxedKey,
		Index:   index,
	})
}

func (h *Harness) applyGet(op OpGet) {
	h.tb.Helper()

	m := h.Minted[op.Ref]
	want, live := h.Model.Get(m.Handle)

	if live {
		if got := h.Strict.Get(m.Strict); got != want {
			h.tb.Fatalf("%s: strict=%d, model=%d", op, got, want)
		}
	} else {
		h.expectSpent(op, m)
	}

	got, ok := h.Relaxed.Get(m.Relaxed)
	if ok != live || got != want {
		h.tb.Fatalf("%s: relaxed=(%d,%v), model=(%d,%v)", op, got, ok, want, live)
	}

	h.compareAt(op, m.Index)
}

func (h *Harness) applyModify(op OpModify) {
	h.tb.Helper()

	m := h.Minted[op.Ref]
	old, live := h.Model.Get(m.Handle)

	add := func(v *int64) { *v += op.Delta }

	if !live {
		h.expectSpent(op, m)

		if h.Relaxed.Modify(m.Relaxed, add) {
			h.tb.Fatalf("%s: relaxed modified through a stale key", op)
		}

		// An unrestricted index cannot tell the new occupant apart, so a
		// stale index is only read.
		h.compareAt(op, m.Index)

		return
	}

	h.Model.Set(m.Handle, old+op.Delta)
	h.Strict.Modify(m.Strict, add)

	if !h.Relaxed.Modify(m.Relaxed, add) {
		h.tb.Fatalf("%s: relaxed refused a live key", op)
	}

	if !h.Unrestricted.Modify(m.Index, add) {
		h.tb.Fatalf("%s: unrestricted refused a live index", op)
	}

	got := h.Strict.Get(m.Strict)
	if got != old+op.Delta {
		h.tb.Fatalf("%s: strict=%d after modify, want %d", op, got, old+op.Delta)
	}

	h.compareAt(op, m.Index)
}

func (h *Harness) applyTake(op OpTake) {
	h.tb.Helper()

	m := h.Minted[op.Ref]
	want, live := h.Model.Take(m.Handle)

	if !live {
		h.expectSpent(op, m)

		if _, ok := h.Relaxed.Take(m.Relaxed); ok {
			h.tb.Fatalf("%s: relaxed took through a stale key", op)
		}

		h.compareAt(op, m.Index)

		return
	}

	if got := h.Strict.Take(m.Strict); got != want {
		h.tb.Fatalf("%s: strict=%d, model=%d", op, got, want)
	}

	if !m.Strict.Spent() {
		h.tb.Fatalf("%s: strict key not spent after take", op)
	}

	if got, ok := h.Relaxed.Take(m.Relaxed); !ok || got != want {
		h.tb.Fatalf("%s: relaxed=(%d,%v), model=%d", op, got, ok, want)
	}

	if got, ok := h.Unrestricted.Take(m.Index); !ok || got != want {
		h.tb.Fatalf("%s: unrestricted=(%d,%v), model=%d", op, got, ok, want)
	}
}

func (h *Harness) applyPeek(op OpPeek) {
	h.tb.Helper()

	h.compareAt(op, op.Index)
}

// compareAt checks raw index access, which ignores key validity.
func (h *Harness) compareAt(op Operation, i slots.Index) {
	h.tb.Helper()

	want, wantOK := h.Model.At(i)

	got, ok := h.Strict.TryGet(i)
	if ok != wantOK || got != want {
		h.tb.Fatalf("%s: strict TryGet(%d)=(%d,%v), model=(%d,%v)", op, i, got, ok, want, wantOK)
	}

	got, ok = h.Unrestricted.Get(i)
	if ok != wantOK || got != want {
		h.tb.Fatalf("%s: unrestricted Get(%d)=(%d,%v), model=(%d,%v)", op, i, got, ok, want, wantOK)
	}
}

// expectSpent checks the strict side of a dead handle. The only way a value
// leaves the collection is a take through its own key, so the key must be
// spent and every fallible accessor must say so.
func (h *Harness) expectSpent(op Operation, m Minted) {
	h.tb.Helper()

	if !m.Strict.Spent() {
		h.tb.Fatalf("%s: model says dead but strict key is not spent", op)
	}

	err := h.Strict.TryModify(m.Strict, func(*int64) {
		h.tb.Fatalf("%s: strict modified through a spent key", op)
	})
	if !errors.Is(err, slots.ErrKeyConsumed) {
		h.tb.Fatalf("%s: strict TryModify err=%v, want %v", op, err, slots.ErrKeyConsumed)
	}

	if _, err := h.Strict.TryTake(m.Strict); !errors.Is(err, slots.ErrKeyConsumed) {
		h.tb.Fatalf("%s: strict TryTake err=%v, want %v", op, err, slots.ErrKeyConsumed)
	}
}
