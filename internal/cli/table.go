package cli

import (
	"errors"
	"fmt"
	"iter"
	"strconv"
	"strings"

	"github.com/calvinalkan/slots/pkg/slots"
)

// table adapts one of the three access modes to string-addressed shell
// commands. A ref is a slot number, optionally followed by @n to pick a
// relaxed key copy.
type table interface {
	mode() string
	describe() string
	capacity() int
	count() int
	store(v string) (slots.Index, error)
	get(ref string) (string, error)
	modify(ref, v string) error
	take(ref string) (string, error)
	peek(i slots.Index) (string, bool)
	dup(ref string) (string, error)
	entries() iter.Seq2[slots.Index, string]
}

func newTable(cfg Config) table {
	opts := slots.Options{Checks: cfg.Checks()}

	switch cfg.Mode {
	case ModeRelaxed:
		return &relaxedTable{s: slots.NewRelaxedWithOptions[string](cfg.Capacity, opts), keys: map[slots.Index][]slots.RelaxedKey[string]{}}
	case ModeUnrestricted:
		return &unrestrictedTable{s: slots.NewUnrestricted[string](cfg.Capacity)}
	default:
		return &strictTable{s: slots.NewWithOptions[string](cfg.Capacity, opts), keys: map[slots.Index]*slots.Key[string]{}}
	}
}

func parseRef(ref string) (slots.Index, int, error) {
	slotPart, copyPart, hasCopy := strings.Cut(ref, "@")

	slot, err := strconv.Atoi(slotPart)
	if err != nil || slot < 0 {
		return 0, 0, fmt.Errorf("%w: %q", ErrBadSlot, ref)
	}

	if !hasCopy {
		return slots.Index(slot), -1, nil
	}

	n, err := strconv.Atoi(copyPart)
	if err != nil || n < 0 {
		return 0, 0, fmt.Errorf("%w: %q", ErrBadSlot, ref)
	}

	return slots.Index(slot), n, nil
}

// plainRef rejects @n suffixes for modes without key copies.
func plainRef(ref string) (slots.Index, error) {
	slot, n, err := parseRef(ref)
	if err != nil {
		return 0, err
	}

	if n >= 0 {
		return 0, ErrCopiesUnsupported
	}

	return slot, nil
}

type strictTable struct {
	s    *slots.Slots[string]
	keys map[slots.Index]*slots.Key[string]
}

func (t *strictTable) mode() string { return ModeStrict }

func (t *strictTable) describe() string {
	checks := "off"
	if t.s.ChecksEnabled() {
		checks = "on"
	}

	return fmt.Sprintf("id=%s checks=%s", t.s.ID(), checks)
}

func (t *strictTable) capacity() int { return t.s.Capacity() }
func (t *strictTable) count() int    { return t.s.Count() }

func (t *strictTable) store(v string) (slots.Index, error) {
	k, err := t.s.Store(v)
	if err != nil {
		return 0, err
	}

	t.keys[k.Index()] = k

	return k.Index(), nil
}

func (t *strictTable) key(ref string) (*slots.Key[string], error) {
	slot, err := plainRef(ref)
	if err != nil {
		return nil, err
	}

	k, ok := t.keys[slot]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNoKeyHeld, slot)
	}

	return k, nil
}

func (t *strictTable) get(ref string) (string, error) {
	k, err := t.key(ref)
	if err != nil {
		return "", err
	}

	return t.s.Get(k), nil
}

func (t *strictTable) modify(ref, v string) error {
	k, err := t.key(ref)
	if err != nil {
		return err
	}

	return t.s.TryModify(k, func(cur *string) { *cur = v })
}

func (t *strictTable) take(ref string) (string, error) {
	k, err := t.key(ref)
	if err != nil {
		return "", err
	}

	v, err := t.s.TryTake(k)
	if err != nil {
		return "", err
	}

	delete(t.keys, k.Index())

	return v, nil
}

func (t *strictTable) peek(i slots.Index) (string, bool) { return t.s.TryGet(i) }

func (t *strictTable) dup(string) (string, error) { return "", ErrCopiesUnsupported }

func (t *strictTable) entries() iter.Seq2[slots.Index, string] { return t.s.All() }

type relaxedTable struct {
	s *slots.RelaxedSlots[string]
	// keys[i] lists the key minted for the current occupant of slot i and
	// its copies; the last one is what a bare slot ref resolves to. Storing
	// into the slot again drops the old, stale list.
	keys map[slots.Index][]slots.RelaxedKey[string]
}

func (t *relaxedTable) mode() string     { return ModeRelaxed }
func (t *relaxedTable) describe() string { return "id=" + t.s.ID().String() }
func (t *relaxedTable) capacity() int    { return t.s.Capacity() }
func (t *relaxedTable) count() int       { return t.s.Count() }

func (t *relaxedTable) store(v string) (slots.Index, error) {
	k, err := t.s.Store(v)
	if err != nil {
		return 0, err
	}

	t.keys[k.Index()] = []slots.RelaxedKey[string]{k}

	return k.Index(), nil
}

func (t *relaxedTable) key(ref string) (slots.RelaxedKey[string], error) {
	slot, n, err := parseRef(ref)
	if err != nil {
		return slots.RelaxedKey[string]{}, err
	}

	held := t.keys[slot]
	if len(held) == 0 {
		return slots.RelaxedKey[string]{}, fmt.Errorf("%w: %d", ErrNoKeyHeld, slot)
	}

	if n < 0 {
		return held[len(held)-1], nil
	}

	if n >= len(held) {
		return slots.RelaxedKey[string]{}, fmt.Errorf("%w: %s", ErrNoSuchCopy, ref)
	}

	return held[n], nil
}

func (t *relaxedTable) get(ref string) (string, error) {
	k, err := t.key(ref)
	if err != nil {
		return "", err
	}

	v, ok := t.s.Get(k)
	if !ok {
		return "", fmt.Errorf("%s: %w", ref, slots.ErrNotFound)
	}

	return v, nil
}

func (t *relaxedTable) modify(ref, v string) error {
	k, err := t.key(ref)
	if err != nil {
		return err
	}

	if !t.s.Modify(k, func(cur *string) { *cur = v }) {
		return fmt.Errorf("%s: %w", ref, slots.ErrNotFound)
	}

	return nil
}

func (t *relaxedTable) take(ref string) (string, error) {
	k, err := t.key(ref)
	if err != nil {
		return "", err
	}

	v, ok := t.s.Take(k)
	if !ok {
		return "", fmt.Errorf("%s: %w", ref, slots.ErrNotFound)
	}

	return v, nil
}

func (t *relaxedTable) peek(i slots.Index) (string, bool) { return t.s.TryGet(i) }

func (t *relaxedTable) dup(ref string) (string, error) {
	k, err := t.key(ref)
	if err != nil {
		return "", err
	}

	t.keys[k.Index()] = append(t.keys[k.Index()], k)

	return fmt.Sprintf("%d@%d", k.Index(), len(t.keys[k.Index()])-1), nil
}

func (t *relaxedTable) entries() iter.Seq2[slots.Index, string] { return t.s.All() }

type unrestrictedTable struct {
	s *slots.UnrestrictedSlots[string]
}

func (t *unrestrictedTable) mode() string     { return ModeUnrestricted }
func (t *unrestrictedTable) describe() string { return "keys=indices" }
func (t *unrestrictedTable) capacity() int    { return t.s.Capacity() }
func (t *unrestrictedTable) count() int       { return t.s.Count() }

func (t *unrestrictedTable) store(v string) (slots.Index, error) {
	return t.s.Store(v)
}

func (t *unrestrictedTable) get(ref string) (string, error) {
	i, err := plainRef(ref)
	if err != nil {
		return "", err
	}

	v, ok := t.s.Get(i)
	if !ok {
		return "", fmt.Errorf("%w: %d", ErrEmptySlot, i)
	}

	return v, nil
}

func (t *unrestrictedTable) modify(ref, v string) error {
	i, err := plainRef(ref)
	if err != nil {
		return err
	}

	if !t.s.Modify(i, func(cur *string) { *cur = v }) {
		return fmt.Errorf("%w: %d", ErrEmptySlot, i)
	}

	return nil
}

func (t *unrestrictedTable) take(ref string) (string, error) {
	i, err := plainRef(ref)
	if err != nil {
		return "", err
	}

	v, ok := t.s.Take(i)
	if !ok {
		return "", fmt.Errorf("%w: %d", ErrEmptySlot, i)
	}

	return v, nil
}

func (t *unrestrictedTable) peek(i slots.Index) (string, bool) { return t.s.Get(i) }

func (t *unrestrictedTable) dup(string) (string, error) { return "", ErrCopiesUnsupported }

func (t *unrestrictedTable) entries() iter.Seq2[slots.Index, string] { return t.s.All() }

// isCapacityError reports whether err is the store-into-full-collection case.
func isCapacityError(err error) bool {
	return errors.Is(err, slots.ErrCapacityExceeded)
}
