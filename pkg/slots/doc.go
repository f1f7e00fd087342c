// Package slots provides fixed-capacity slot collections with constant time
// operations.
//
// A collection reserves storage for exactly N values when it is created and
// never grows. Storing a value claims a free slot and returns a key; the key
// is the capability used to read, modify, or take the value later. Slots are
// unordered: a freed slot is the next one handed out.
//
// # Access modes
//
// Three collection types share the same storage and differ in what a key is
// and what gets verified:
//
//   - [Slots] (strict): [Slots.Store] returns a *[Key]. A key is proof the slot was
//     occupied when it was minted. [Slots.Take] consumes the key; any later use
//     of it is a programmer error. Keys presented to a collection that did not
//     mint them are rejected with [ErrForeignKey] while runtime checks are on.
//   - [RelaxedSlots]: [RelaxedKey] is a plain comparable value that may be
//     copied freely. Because a copy can outlive its value, every accessor is
//     fallible and re-validates owner, occupancy and slot generation.
//   - [UnrestrictedSlots]: keys are bare [Index] values. Only bounds and
//     occupancy are checked. Presenting an index to the wrong collection is a
//     silent logic error that the caller must rule out.
//
// # Basic usage
//
//	s := slots.New[string](4)
//
//	k, err := s.Store("hello")
//	if errors.Is(err, slots.ErrCapacityExceeded) {
//	    // all 4 slots are occupied
//	}
//
//	s.Modify(k, func(v *string) { *v += " world" })
//	fmt.Println(s.Get(k)) // hello world
//
//	v := s.Take(k) // k is spent from here on
//
// # Runtime checks
//
// Strict-mode owner verification is on by default. Building with the
// slots_nochecks tag turns it off for every collection created with
// [ChecksDefault]; [Options.Checks] overrides the build default per
// collection. With checks off a strict collection behaves like an
// unrestricted one for foreign keys. Bounds checking is never disabled.
//
// # Concurrency
//
// Collections perform no locking. Mutating calls (Store, Take, Modify) need
// exclusive access; concurrent readers are fine if the caller synchronizes
// with writers. Only instance id allocation through a [Registry] is safe for
// concurrent use.
package slots
