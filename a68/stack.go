package a68

import (
	"encoding/binary"
	"errors"
	"math"
)

var errStackOverflow = errors.New("value stack overflow")

// DefaultStackLimit bounds value stack growth unless a Genie is configured
// otherwise.
const DefaultStackLimit = 1 << 24

// ValueStack is a growable LIFO byte buffer holding transient expression
// results.  Values are untyped bytes interpreted per the producing node's
// mode.  Index 0 is the bottom of the stack.
type ValueStack struct {
	buf   []byte
	limit int

	MaxDepth int
	NumPush  int
}

// Initialize purges any existing contents and applies the given growth
// limit.  A zero limit selects DefaultStackLimit.
func (s *ValueStack) Initialize(limit int) {
	if limit <= 0 {
		limit = DefaultStackLimit
	}
	s.buf = s.buf[:0]
	s.limit = limit
	s.MaxDepth = 0
	s.NumPush = 0
}

// Len returns the current depth in bytes.
func (s *ValueStack) Len() int {
	return len(s.buf)
}

// Mark returns the current stack pointer for a later Reset.
func (s *ValueStack) Mark() int {
	return len(s.buf)
}

// Reset rewinds the stack pointer to a previous Mark, discarding everything
// pushed since.
func (s *ValueStack) Reset(mark int) {
	if mark < 0 || mark > len(s.buf) {
		panic("reset beyond stack bounds")
	}
	s.buf = s.buf[:mark]
}

// Push extends the stack by n zeroed bytes and returns the new region.
func (s *ValueStack) Push(n int) ([]byte, error) {
	if s.limit == 0 {
		s.limit = DefaultStackLimit
	}
	if len(s.buf)+n > s.limit {
		return nil, errStackOverflow
	}
	s.buf = append(s.buf, make([]byte, n)...)
	if len(s.buf) > s.MaxDepth {
		s.MaxDepth = len(s.buf)
	}
	s.NumPush++
	return s.buf[len(s.buf)-n:], nil
}

// PushBytes pushes a copy of b.
func (s *ValueStack) PushBytes(b []byte) error {
	dst, err := s.Push(len(b))
	if err != nil {
		return err
	}
	copy(dst, b)
	return nil
}

// Pop removes the top n bytes and returns them.  The returned slice is only
// valid until the next Push.
func (s *ValueStack) Pop(n int) []byte {
	if n > len(s.buf) {
		panic("pop called past the bottom of the stack")
	}
	b := s.buf[len(s.buf)-n:]
	s.buf = s.buf[:len(s.buf)-n]
	return b
}

// Top returns the top n bytes without popping them.
func (s *ValueStack) Top(n int) []byte {
	if n > len(s.buf) {
		panic("top called past the bottom of the stack")
	}
	return s.buf[len(s.buf)-n:]
}

// Bytes returns the n bytes starting at offset off.
func (s *ValueStack) Bytes(off, n int) []byte {
	return s.buf[off : off+n]
}

// PushInt pushes a word holding x.
func (s *ValueStack) PushInt(x int64) error {
	dst, err := s.Push(WordSize)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(dst, uint64(x))
	return nil
}

// PopInt pops a word as a signed integer.
func (s *ValueStack) PopInt() int64 {
	return int64(binary.LittleEndian.Uint64(s.Pop(WordSize)))
}

// PushReal pushes a word holding x.
func (s *ValueStack) PushReal(x float64) error {
	return s.PushInt(int64(math.Float64bits(x)))
}

// PopReal pops a word as a real.
func (s *ValueStack) PopReal() float64 {
	return math.Float64frombits(uint64(s.PopInt()))
}

// PushBool pushes a word holding b.
func (s *ValueStack) PushBool(b bool) error {
	if b {
		return s.PushInt(1)
	}
	return s.PushInt(0)
}

// PopBool pops a word as a boolean.
func (s *ValueStack) PopBool() bool {
	return s.PopInt() != 0
}

// Word helpers used wherever mode-derived layouts are packed and unpacked.

func getWord(b []byte, i int) int64 {
	return int64(binary.LittleEndian.Uint64(b[i*WordSize:]))
}

func putWord(b []byte, i int, w int64) {
	binary.LittleEndian.PutUint64(b[i*WordSize:], uint64(w))
}

func getReal(b []byte, i int) float64 {
	return math.Float64frombits(uint64(getWord(b, i)))
}

func putReal(b []byte, i int, x float64) {
	putWord(b, i, int64(math.Float64bits(x)))
}
