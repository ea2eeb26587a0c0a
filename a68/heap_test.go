package a68

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeapRows(t *testing.T) {
	var h Heap
	h.Initialize()

	hdl := h.AllocRow(ModeInt, 1, 3, 2)
	require.Equal(t, int64(1), hdl)
	row := h.Row(hdl)
	require.NotNil(t, row)
	assert.Equal(t, 3, row.Len())
	assert.Equal(t, 3*WordSize, len(row.Store))
	assert.Equal(t, 2, row.Scope)

	empty := h.Row(h.AllocRow(ModeInt, 1, 0, 0))
	assert.Equal(t, 0, empty.Len())
	assert.Empty(t, empty.Store)

	assert.Nil(t, h.Row(0))
	assert.Nil(t, h.Row(99))
}

func TestHeapLocales(t *testing.T) {
	var h Heap
	h.Initialize()
	modes := []*Mode{ModeInt, ModeReal}

	hdl := h.AllocLocale(modes)
	l := h.Locale(hdl)
	require.NotNil(t, l)
	assert.Equal(t, 2*WordSize, len(l.Store))
	assert.False(t, l.FullyBound())
	assert.Equal(t, WordSize, l.SlotOffset(1))

	putWord(l.Slot(0), 0, 7)
	l.Bound[0] = true
	cp := l.Copy()
	cp.Bound[1] = true
	putWord(cp.Slot(0), 0, 9)

	// The original must not observe the copy's bindings.
	assert.False(t, l.Bound[1])
	assert.Equal(t, int64(7), getWord(l.Slot(0), 0))
	assert.Equal(t, int64(9), getWord(cp.Slot(0), 0))
	assert.True(t, cp.FullyBound())

	adopted := h.Adopt(cp)
	assert.Same(t, cp, h.Locale(adopted))
}

func TestHeapScalars(t *testing.T) {
	var h Heap
	h.Initialize()
	hdl := h.AllocScalar(ModeInt)
	sc := h.Scalar(hdl)
	require.NotNil(t, sc)
	assert.Equal(t, WordSize, len(sc.Store))
	assert.False(t, sc.Init)
	assert.Nil(t, h.Locale(hdl))
}

func TestFindOperator(t *testing.T) {
	op, result, ok := FindOperator("+", []*Mode{ModeInt, ModeInt})
	require.True(t, ok)
	assert.Equal(t, ModeInt, result)
	assert.Equal(t, []*Mode{ModeInt, ModeInt}, OperandModes(op))

	_, result, ok = FindOperator("/", []*Mode{ModeInt, ModeInt})
	require.True(t, ok)
	assert.Equal(t, ModeReal, result)

	_, _, ok = FindOperator("+", []*Mode{ModeBool, ModeBool})
	assert.False(t, ok)

	_, result, ok = FindOperator("-", []*Mode{ModeInt})
	require.True(t, ok)
	assert.Equal(t, ModeInt, result)
}
