package slots

import (
	"strconv"
	"sync/atomic"
)

// InstanceID identifies one collection. Strict and relaxed keys carry the id
// of the collection that minted them.
//
// Zero is never issued, so a zero-value key is foreign to every collection.
type InstanceID uint64

func (id InstanceID) String() string {
	return "#" + strconv.FormatUint(uint64(id), 10)
}

// Registry issues instance ids. It is safe for concurrent use.
//
// Ids are unique per registry only. Collections that may see each other's
// keys must draw from the same registry; the zero value is ready to use.
type Registry struct {
	last atomic.Uint64
}

// NewRegistry returns a registry whose first id is 1.
func NewRegistry() *Registry {
	return &Registry{}
}

// Next returns a fresh id. It never blocks and never fails; the counter
// wraps only after 2^64 collections.
func (r *Registry) Next() InstanceID {
	id := r.last.Add(1)
	if id == 0 {
		// wrapped; skip the reserved zero id
		id = r.last.Add(1)
	}

	return InstanceID(id)
}

var defaultRegistry Registry

// DefaultRegistry returns the process-wide registry used when
// [Options.Registry] is nil.
func DefaultRegistry() *Registry {
	return &defaultRegistry
}
