package slots_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/slots/pkg/slots"
)

func Test_Store_Returns_Unique_Keys_When_Filled_To_Capacity(t *testing.T) {
	t.Parallel()

	for capacity := range 9 {
		t.Run(fmt.Sprintf("capacity=%d", capacity), func(t *testing.T) {
			t.Parallel()

			s := slots.New[int](capacity)
			seen := make(map[slots.Index]bool)

			for i := range capacity {
				k, err := s.Store(i)
				require.NoError(t, err, "store %d of %d", i+1, capacity)

				idx := k.Index()
				assert.GreaterOrEqual(t, int(idx), 0)
				assert.Less(t, int(idx), capacity)
				assert.False(t, seen[idx], "index %d handed out twice", idx)

				seen[idx] = true
			}

			assert.True(t, s.IsFull())
			assert.Equal(t, capacity, s.Count())

			_, err := s.Store(-1)
			require.ErrorIs(t, err, slots.ErrCapacityExceeded)
			assert.Equal(t, capacity, s.Count(), "failed store must not change the count")
		})
	}
}

func Test_Slots_Reuses_Freed_Slot_When_Full_Collection_Is_Taken_From(t *testing.T) {
	t.Parallel()

	s := slots.New[int](4)

	k1, err := s.Store(10)
	require.NoError(t, err)
	k2, err := s.Store(20)
	require.NoError(t, err)
	_, err = s.Store(30)
	require.NoError(t, err)
	_, err = s.Store(40)
	require.NoError(t, err)

	_, err = s.Store(50)
	require.ErrorIs(t, err, slots.ErrCapacityExceeded)

	freed := k2.Index()
	assert.Equal(t, 20, s.Take(k2))
	assert.Equal(t, 3, s.Count())

	k6, err := s.Store(60)
	require.NoError(t, err)
	assert.Equal(t, freed, k6.Index(), "store should reuse the freed slot")

	var got int

	s.Read(k1, identity(&got))
	assert.Equal(t, 10, got)
}

func Test_Store_Fills_Last_Slot_First_When_Collection_Is_Empty(t *testing.T) {
	t.Parallel()

	s := slots.New[string](3)

	var indices []slots.Index

	for _, v := range []string{"a", "b", "c"} {
		k, err := s.Store(v)
		require.NoError(t, err)

		indices = append(indices, k.Index())
	}

	assert.Equal(t, []slots.Index{2, 1, 0}, indices)
}

func Test_Read_Returns_Stored_Value_When_Called_Repeatedly(t *testing.T) {
	t.Parallel()

	s := slots.New[string](2)

	k, err := s.Store("value")
	require.NoError(t, err)

	for range 5 {
		var got string

		s.Read(k, identity(&got))
		assert.Equal(t, "value", got)
		assert.Equal(t, "value", s.Get(k))
	}

	assert.Equal(t, "value", s.Take(k))
}

func Test_Take_Returns_Value_Unchanged_When_Round_Tripped(t *testing.T) {
	t.Parallel()

	type point struct {
		X, Y int
		Tags []string
	}

	ints := slots.New[int](1)
	k1, err := ints.Store(42)
	require.NoError(t, err)
	assert.Equal(t, 42, ints.Take(k1))

	structs := slots.New[point](1)
	p := point{X: 1, Y: -2, Tags: []string{"a"}}
	k2, err := structs.Store(p)
	require.NoError(t, err)
	assert.Equal(t, p, structs.Take(k2))

	ptrs := slots.New[*point](1)
	k3, err := ptrs.Store(&p)
	require.NoError(t, err)
	assert.Same(t, &p, ptrs.Take(k3))

	assert.Zero(t, ints.Count())
	assert.Zero(t, structs.Count())
	assert.Zero(t, ptrs.Count())
}

func Test_Modify_Changes_Value_When_Key_Is_Live(t *testing.T) {
	t.Parallel()

	s := slots.New[int](2)

	k, err := s.Store(5)
	require.NoError(t, err)

	var result int

	s.Modify(k, func(v *int) {
		*v += 2
		result = *v
	})

	assert.Equal(t, 7, result)
	assert.Equal(t, 7, s.Get(k))
	assert.Equal(t, 1, s.Count(), "modify must keep the slot occupied")
}

func Test_Take_Consumes_Key_When_Called(t *testing.T) {
	t.Parallel()

	s := slots.New[int](2)

	k, err := s.Store(1)
	require.NoError(t, err)

	alias := k

	assert.Equal(t, 1, s.Take(k))
	assert.True(t, k.Spent())
	assert.True(t, alias.Spent(), "aliases share the spent marker")

	mustPanicWith(t, slots.ErrKeyConsumed, func() { s.Take(alias) })
	mustPanicWith(t, slots.ErrKeyConsumed, func() { s.Get(alias) })
	mustPanicWith(t, slots.ErrKeyConsumed, func() { s.Modify(alias, func(*int) {}) })
}

func Test_Spent_Key_Does_Not_Reach_New_Occupant_When_Slot_Is_Reused(t *testing.T) {
	t.Parallel()

	s := slots.New[int](1)

	k1, err := s.Store(1)
	require.NoError(t, err)
	s.Take(k1)

	k2, err := s.Store(2)
	require.NoError(t, err)
	require.Equal(t, k1.Index(), k2.Index())

	_, err = s.TryTake(k1)
	require.ErrorIs(t, err, slots.ErrKeyConsumed)
	assert.Equal(t, 2, s.Get(k2))
}

func Test_Copied_Key_Does_Not_Reach_New_Occupant_When_Original_Taken(t *testing.T) {
	t.Parallel()

	for _, checks := range []slots.Checks{slots.ChecksOn, slots.ChecksOff} {
		t.Run(checks.String(), func(t *testing.T) {
			t.Parallel()

			s := slots.NewWithOptions[string](1, slots.Options{Registry: slots.NewRegistry(), Checks: checks})

			k, err := s.Store("a")
			require.NoError(t, err)

			stale := *k

			assert.Equal(t, "a", s.Take(k))

			_, err = s.TryTake(&stale)
			require.ErrorIs(t, err, slots.ErrNotFound, "slot is empty")

			k2, err := s.Store("b")
			require.NoError(t, err)
			require.Equal(t, k.Index(), k2.Index())

			_, err = s.TryTake(&stale)
			require.ErrorIs(t, err, slots.ErrKeyConsumed)

			err = s.TryModify(&stale, func(*string) { t.Fatal("callback must not run") })
			require.ErrorIs(t, err, slots.ErrKeyConsumed)

			mustPanicWith(t, slots.ErrKeyConsumed, func() { s.Get(&stale) })

			assert.False(t, stale.Spent(), "failed take must not mark the copy")
			assert.Equal(t, 1, s.Count())
			assert.Equal(t, "b", s.Get(k2))
		})
	}
}

func Test_TryTake_Returns_Value_When_Key_Is_Live(t *testing.T) {
	t.Parallel()

	s := slots.New[int](2)

	k, err := s.Store(9)
	require.NoError(t, err)

	got, err := s.TryTake(k)
	require.NoError(t, err)
	assert.Equal(t, 9, got)
	assert.True(t, k.Spent())
	assert.Zero(t, s.Count())
}

func Test_Accessors_Panic_With_ErrForeignKey_When_Key_From_Other_Instance(t *testing.T) {
	t.Parallel()

	registry := slots.NewRegistry()
	opts := slots.Options{Registry: registry, Checks: slots.ChecksOn}

	a := slots.NewWithOptions[int](2, opts)
	b := slots.NewWithOptions[int](2, opts)

	ka, err := a.Store(1)
	require.NoError(t, err)

	_, err = b.Store(99)
	require.NoError(t, err)

	mustPanicWith(t, slots.ErrForeignKey, func() { b.Get(ka) })
	mustPanicWith(t, slots.ErrForeignKey, func() { b.Read(ka, func(*int) { t.Fatal("callback must not run") }) })
	mustPanicWith(t, slots.ErrForeignKey, func() { b.Modify(ka, func(*int) { t.Fatal("callback must not run") }) })
	mustPanicWith(t, slots.ErrForeignKey, func() { b.Take(ka) })

	assert.False(t, ka.Spent(), "failed take must not consume the key")
	assert.Equal(t, 1, b.Count())
	assert.Equal(t, 1, a.Get(ka))
}

func Test_Try_Accessors_Return_NotFound_When_Key_From_Other_Instance(t *testing.T) {
	t.Parallel()

	opts := slots.Options{Registry: slots.NewRegistry(), Checks: slots.ChecksOn}

	a := slots.NewWithOptions[int](2, opts)
	b := slots.NewWithOptions[int](2, opts)

	ka, err := a.Store(1)
	require.NoError(t, err)

	_, err = b.Store(2)
	require.NoError(t, err)

	err = b.TryModify(ka, func(*int) { t.Fatal("callback must not run") })
	require.ErrorIs(t, err, slots.ErrNotFound)
	require.ErrorIs(t, err, slots.ErrForeignKey)

	_, err = b.TryTake(ka)
	require.ErrorIs(t, err, slots.ErrNotFound)
	require.ErrorIs(t, err, slots.ErrForeignKey)

	assert.False(t, ka.Spent())
}

func Test_Foreign_Key_Addresses_Index_When_Checks_Off(t *testing.T) {
	t.Parallel()

	opts := slots.Options{Registry: slots.NewRegistry(), Checks: slots.ChecksOff}

	a := slots.NewWithOptions[string](2, opts)
	b := slots.NewWithOptions[string](2, opts)

	assert.False(t, a.ChecksEnabled())

	ka, err := a.Store("from a")
	require.NoError(t, err)

	_, err = b.Store("from b")
	require.NoError(t, err)

	// Both collections filled their last slot first, so the foreign key
	// lands on b's value. This is the documented cost of disabling checks.
	assert.Equal(t, "from b", b.Get(ka))
}

func Test_Foreign_Key_Is_Bounds_Checked_When_Checks_Off(t *testing.T) {
	t.Parallel()

	opts := slots.Options{Registry: slots.NewRegistry(), Checks: slots.ChecksOff}

	big := slots.NewWithOptions[int](8, opts)
	small := slots.NewWithOptions[int](2, opts)

	k, err := big.Store(1)
	require.NoError(t, err)
	require.Equal(t, slots.Index(7), k.Index())

	err = small.TryModify(k, func(*int) { t.Fatal("callback must not run") })
	require.ErrorIs(t, err, slots.ErrNotFound)

	mustPanicWith(t, slots.ErrNotFound, func() { small.Get(k) })
}

func Test_Accessors_Panic_With_ErrInvalidInput_When_Key_Is_Nil(t *testing.T) {
	t.Parallel()

	s := slots.New[int](1)

	mustPanicWith(t, slots.ErrInvalidInput, func() { s.Get(nil) })

	_, err := s.TryTake(nil)
	require.ErrorIs(t, err, slots.ErrInvalidInput)
}

func Test_Zero_Key_Is_Foreign_When_Checks_On(t *testing.T) {
	t.Parallel()

	s := slots.NewWithOptions[int](1, slots.Options{Checks: slots.ChecksOn})

	_, err := s.Store(1)
	require.NoError(t, err)

	mustPanicWith(t, slots.ErrForeignKey, func() { s.Get(new(slots.Key[int])) })
}

func Test_TryRead_Returns_False_When_Index_Is_Empty_Or_Out_Of_Range(t *testing.T) {
	t.Parallel()

	s := slots.New[int](4)

	k, err := s.Store(5)
	require.NoError(t, err)

	idx := k.Index()

	var got int

	assert.True(t, s.TryRead(idx, identity(&got)))
	assert.Equal(t, 5, got)

	for _, bad := range []slots.Index{-1, 0, 4, 1 << 20} {
		called := false
		assert.False(t, s.TryRead(bad, func(*int) { called = true }), "index %d", bad)
		assert.False(t, called, "callback must not run for index %d", bad)

		_, ok := s.TryGet(bad)
		assert.False(t, ok, "index %d", bad)
	}

	s.Take(k)

	_, ok := s.TryGet(idx)
	assert.False(t, ok, "taken slot must read as empty")
}

func Test_New_Panics_With_ErrInvalidInput_When_Capacity_Negative(t *testing.T) {
	t.Parallel()

	mustPanicWith(t, slots.ErrInvalidInput, func() { slots.New[int](-1) })
	mustPanicWith(t, slots.ErrInvalidInput, func() { slots.NewRelaxed[int](-1) })
	mustPanicWith(t, slots.ErrInvalidInput, func() { slots.NewUnrestricted[int](-1) })
}

func Test_ChecksEnabled_Follows_Options_When_Set(t *testing.T) {
	t.Parallel()

	assert.True(t, slots.NewWithOptions[int](1, slots.Options{Checks: slots.ChecksOn}).ChecksEnabled())
	assert.False(t, slots.NewWithOptions[int](1, slots.Options{Checks: slots.ChecksOff}).ChecksEnabled())
	assert.Equal(t, slots.RuntimeChecksDefault(), slots.New[int](1).ChecksEnabled())
}

func Test_Key_String_Reports_State_When_Formatted(t *testing.T) {
	t.Parallel()

	s := slots.NewWithOptions[int](1, slots.Options{Registry: slots.NewRegistry()})

	k, err := s.Store(1)
	require.NoError(t, err)

	assert.Equal(t, "key(slot=0 owner=#1)", k.String())

	s.Take(k)

	assert.Equal(t, "key(slot=0 owner=#1 spent)", k.String())
}
