package cell_test

import (
	"testing"
	"time"

	"github.com/delaneyj/sinew/cell"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreGetSet(t *testing.T) {
	rs := newSystem(t)
	st := cell.NewStore(rs, map[string]any{
		"name": "nic",
		"age":  41,
	})

	assert.Equal(t, "nic", st.Get("name"))
	assert.Equal(t, 41, st.Get("age"))
	assert.Nil(t, st.Get("missing"))

	st.Set("age", 42)
	assert.Equal(t, 42, st.Get("age"))

	assert.True(t, st.Has("name"))
	assert.False(t, st.Has("nope"))
	assert.Equal(t, []string{"age", "missing", "name"}, st.Keys())
}

func TestStorePropertyIsReactive(t *testing.T) {
	rs := newSystem(t)
	st := cell.NewStore(rs, map[string]any{"count": 1})

	seen := []any{}
	cell.Effect(rs, func() (cell.Cleanup, error) {
		seen = append(seen, st.Get("count"))
		return nil, nil
	})

	st.Set("count", 2)
	st.Set("count", 2)
	st.Set("count", 3)

	assert.Equal(t, []any{1, 2, 3}, seen)
}

func TestStoreUntouchedKeyDoesNotTrigger(t *testing.T) {
	rs := newSystem(t)
	st := cell.NewStore(rs, map[string]any{"a": 1, "b": 2})

	runs := 0
	cell.Effect(rs, func() (cell.Cleanup, error) {
		st.Get("a")
		runs++
		return nil, nil
	})

	st.Set("b", 20)
	assert.Equal(t, 1, runs)

	st.Set("a", 10)
	assert.Equal(t, 2, runs)
}

func TestStoreWrapsNestedMaps(t *testing.T) {
	rs := newSystem(t)
	st := cell.NewStore(rs, map[string]any{
		"user": map[string]any{"name": "nic"},
	})

	inner, ok := st.Get("user").(*cell.Store)
	require.True(t, ok)
	assert.Equal(t, "nic", inner.Get("name"))

	// repeated reads hand back the same wrapped reference
	again, ok := st.Get("user").(*cell.Store)
	require.True(t, ok)
	assert.Same(t, inner, again)

	runs := 0
	cell.Effect(rs, func() (cell.Cleanup, error) {
		inner.Get("name")
		runs++
		return nil, nil
	})

	inner.Set("name", "delaney")
	assert.Equal(t, 2, runs)
	assert.Equal(t, "delaney", inner.Get("name"))
}

func TestStoreWrapsSliceElements(t *testing.T) {
	rs := newSystem(t)
	st := cell.NewStore(rs, map[string]any{
		"rows": []any{
			map[string]any{"id": 1},
			"plain",
		},
	})

	rows, ok := st.Get("rows").(cell.WrappedSlice)
	require.True(t, ok)
	require.Len(t, rows, 2)

	_, ok = rows[0].(*cell.Store)
	assert.True(t, ok)
	assert.Equal(t, "plain", rows[1])
}

func TestWrapIdempotent(t *testing.T) {
	rs := newSystem(t)
	st := cell.NewStore(rs, map[string]any{"x": 1})

	assert.Same(t, st, cell.Wrap(rs, st))
}

func TestWrapIdempotentForSlices(t *testing.T) {
	rs := newSystem(t)

	once, ok := cell.Wrap(rs, []any{map[string]any{"a": 1}, 2}).(cell.WrappedSlice)
	require.True(t, ok)

	twice, ok := cell.Wrap(rs, once).(cell.WrappedSlice)
	require.True(t, ok)
	assert.Same(t, &once[0], &twice[0])
}

func TestStoreSetGetRoundTripKeepsReference(t *testing.T) {
	rs := newSystem(t)
	st := cell.NewStore(rs, map[string]any{
		"rows": []any{map[string]any{"id": 1}},
	})

	first, ok := st.Get("rows").(cell.WrappedSlice)
	require.True(t, ok)

	// writing back a value read from the store keeps the wrapped reference
	st.Set("rows", st.Get("rows"))
	after, ok := st.Get("rows").(cell.WrappedSlice)
	require.True(t, ok)
	assert.Same(t, &first[0], &after[0])
}

func TestWrapPassesThroughNonPlainValues(t *testing.T) {
	rs := newSystem(t)
	now := time.Now()

	assert.Equal(t, now, cell.Wrap(rs, now))
	assert.Equal(t, 42, cell.Wrap(rs, 42))
	assert.Equal(t, "s", cell.Wrap(rs, "s"))

	type custom struct{ A int }
	c := custom{A: 1}
	assert.Equal(t, c, cell.Wrap(rs, c))
}

func TestStoreSetWrapsIncomingMap(t *testing.T) {
	rs := newSystem(t)
	st := cell.NewStore(rs, map[string]any{})

	st.Set("cfg", map[string]any{"debug": true})
	cfg, ok := st.Get("cfg").(*cell.Store)
	require.True(t, ok)
	assert.Equal(t, true, cfg.Get("debug"))
}

func TestStoreSnapshot(t *testing.T) {
	rs := newSystem(t)
	st := cell.NewStore(rs, map[string]any{"a": 1})
	st.Set("b", 2)

	snap := st.Snapshot()
	assert.Equal(t, 1, snap["a"])
	assert.Equal(t, 2, snap["b"])

	// mutating the snapshot does not touch the store
	snap["a"] = 100
	assert.Equal(t, 1, st.Get("a"))
}
