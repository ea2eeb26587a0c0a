package a68

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueStackPushPop(t *testing.T) {
	var s ValueStack
	s.Initialize(0)
	require.NoError(t, s.PushInt(5))
	require.NoError(t, s.PushInt(7))
	assert.Equal(t, int64(7), s.PopInt())
	assert.Equal(t, int64(5), s.PopInt())
	assert.Equal(t, 0, s.Len())

	require.NoError(t, s.PushReal(2.5))
	assert.Equal(t, 2.5, s.PopReal())
	require.NoError(t, s.PushBool(true))
	assert.True(t, s.PopBool())
}

func TestValueStackMarkReset(t *testing.T) {
	var s ValueStack
	s.Initialize(0)
	require.NoError(t, s.PushInt(1))
	mark := s.Mark()
	require.NoError(t, s.PushInt(2))
	require.NoError(t, s.PushInt(3))
	s.Reset(mark)
	assert.Equal(t, mark, s.Len())
	assert.Equal(t, int64(1), s.PopInt())
}

func TestValueStackBytes(t *testing.T) {
	var s ValueStack
	s.Initialize(0)
	require.NoError(t, s.PushInt(11))
	require.NoError(t, s.PushInt(22))
	assert.Equal(t, int64(11), getWord(s.Bytes(0, WordSize), 0))
	assert.Equal(t, int64(22), getWord(s.Top(WordSize), 0))
}

func TestValueStackStats(t *testing.T) {
	var s ValueStack
	s.Initialize(0)
	require.NoError(t, s.PushInt(1))
	require.NoError(t, s.PushInt(2))
	s.Pop(WordSize)
	require.NoError(t, s.PushInt(3))
	assert.Equal(t, 2*WordSize, s.MaxDepth)
	assert.Equal(t, 3, s.NumPush)
}

func TestValueStackLimit(t *testing.T) {
	var s ValueStack
	s.Initialize(2 * WordSize)
	require.NoError(t, s.PushInt(1))
	require.NoError(t, s.PushInt(2))
	assert.Error(t, s.PushInt(3))
}

func TestValueStackZeroedPush(t *testing.T) {
	var s ValueStack
	s.Initialize(0)
	b, err := s.Push(2 * WordSize)
	require.NoError(t, err)
	for i, c := range b {
		assert.Zero(t, c, "byte %d", i)
	}
}
