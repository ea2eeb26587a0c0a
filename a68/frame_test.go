package a68

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameStackOpenClose(t *testing.T) {
	var s FrameStack
	s.Initialize(0)
	blk := &Node{Kind: NSerial}

	p0, err := s.Open(-1, blk, 16)
	require.NoError(t, err)
	assert.Equal(t, 0, p0)
	p1, err := s.Open(p0, blk, 8)
	require.NoError(t, err)
	assert.Equal(t, 1, p1)
	assert.Equal(t, 2, s.Depth())
	assert.Equal(t, p0, s.frame(p1).static)

	s.Close()
	assert.Equal(t, 1, s.Depth())
	assert.True(t, s.live(p0))
	assert.False(t, s.live(p1))
	assert.Equal(t, 2, s.MaxDepth)
	assert.Equal(t, 2, s.NumOpen)
}

func TestFrameStackTruncate(t *testing.T) {
	var s FrameStack
	s.Initialize(0)
	blk := &Node{Kind: NSerial}
	for i := 0; i < 4; i++ {
		_, err := s.Open(i-1, blk, 0)
		require.NoError(t, err)
	}
	s.Truncate(1)
	assert.Equal(t, 2, s.Depth())
	assert.True(t, s.live(1))
	assert.False(t, s.live(2))
}

func TestFrameStackLimit(t *testing.T) {
	var s FrameStack
	s.Initialize(2)
	blk := &Node{Kind: NSerial}
	_, err := s.Open(-1, blk, 0)
	require.NoError(t, err)
	_, err = s.Open(0, blk, 0)
	require.NoError(t, err)
	_, err = s.Open(1, blk, 0)
	assert.Error(t, err)
}

func TestFrameInitTracking(t *testing.T) {
	var s FrameStack
	s.Initialize(0)
	blk := &Node{Kind: NSerial}
	pos, err := s.Open(-1, blk, 2*WordSize)
	require.NoError(t, err)
	f := s.frame(pos)

	assert.False(t, f.initialized(0))
	f.markInit(0, WordSize)
	assert.True(t, f.initialized(0))
	assert.False(t, f.initialized(WordSize))

	putWord(f.locals, 0, 42)
	f.reinit()
	assert.False(t, f.initialized(0))
	assert.Equal(t, int64(0), getWord(f.locals, 0))
}
