package testutil

import "github.com/calvinalkan/slots/pkg/slots"

// OpSource produces operations for RunBehavior.
type OpSource interface {
	NextOp(h *Harness) Operation
}

// OpGenConfig holds the percentage weights of each operation kind.
// Weights need not sum to 100; they are scaled by their total.
type OpGenConfig struct {
	StoreWeight  int
	GetWeight    int
	ModifyWeight int
	TakeWeight   int
	PeekWeight   int
	IterWeight   int
}

// DefaultOpGenConfig keeps the collection hovering around half full, with
// enough takes to exercise stale keys and slot reuse.
func DefaultOpGenConfig() OpGenConfig {
	return OpGenConfig{
		StoreWeight:  35,
		GetWeight:    20,
		ModifyWeight: 15,
		TakeWeight:   20,
		PeekWeight:   7,
		IterWeight:   3,
	}
}

// NearCapOpGenConfig favors stores so runs spend most of their time full.
func NearCapOpGenConfig() OpGenConfig {
	return OpGenConfig{
		StoreWeight:  60,
		GetWeight:    10,
		ModifyWeight: 10,
		TakeWeight:   12,
		PeekWeight:   5,
		IterWeight:   3,
	}
}

// OpGenerator derives operations from a byte stream.
type OpGenerator struct {
	stream *ByteStream
	cfg    OpGenConfig
	total  int
}

// NewOpGenerator returns a generator reading from data.
func NewOpGenerator(data []byte, cfg OpGenConfig) *OpGenerator {
	total := cfg.StoreWeight + cfg.GetWeight + cfg.ModifyWeight + cfg.TakeWeight + cfg.PeekWeight + cfg.IterWeight
	if total <= 0 {
		cfg = DefaultOpGenConfig()
		total = 100
	}

	return &OpGenerator{stream: NewByteStream(data), cfg: cfg, total: total}
}

// HasMore reports whether the underlying stream still has bytes.
func (g *OpGenerator) HasMore() bool {
	return g.stream.HasMore()
}

// NextOp returns the next operation. Key-based operations fall back to a
// store while nothing has been minted yet.
func (g *OpGenerator) NextOp(h *Harness) Operation {
	pick := int(g.stream.NextByte()) % g.total

	if pick < g.cfg.StoreWeight {
		return g.store()
	}

	pick -= g.cfg.StoreWeight

	if pick < g.cfg.GetWeight {
		ref, ok := g.ref(h)
		if !ok {
			return g.store()
		}

		return OpGet{Ref: ref}
	}

	pick -= g.cfg.GetWeight

	if pick < g.cfg.ModifyWeight {
		ref, ok := g.ref(h)
		if !ok {
			return g.store()
		}

		return OpModify{Ref: ref, Delta: int64(g.stream.NextInt8())}
	}

	pick -= g.cfg.ModifyWeight

	if pick < g.cfg.TakeWeight {
		ref, ok := g.ref(h)
		if !ok {
			return g.store()
		}

		return OpTake{Ref: ref}
	}

	pick -= g.cfg.TakeWeight

	if pick < g.cfg.PeekWeight {
		// Spread over [-2, capacity+2) to hit both ends of the bounds check.
		span := h.Model.Capacity() + 4
		idx := int(g.stream.NextByte())%span - 2

		return OpPeek{Index: slots.Index(idx)}
	}

	return OpIter{}
}

func (g *OpGenerator) store() Operation {
	return OpStore{Value: int64(g.stream.NextUint32())}
}

// ref picks a minted key. Recent keys are favored so that live values are
// hit more often than long-dead ones.
func (g *OpGenerator) ref(h *Harness) (int, bool) {
	n := len(h.Minted)
	if n == 0 {
		return 0, false
	}

	b := g.stream.NextByte()
	if b&1 == 0 {
		window := min(n, 8)
		return n - 1 - int(b>>1)%window, true
	}

	return int(b>>1) % n, true
}
