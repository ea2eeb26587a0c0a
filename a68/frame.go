package a68

import "errors"

var errFrameOverflow = errors.New("frame stack overflow")

// DefaultFrameLimit bounds frame stack depth unless a Genie is configured
// otherwise.
const DefaultFrameLimit = 1 << 16

// frame is one activation record.  Its position in the frame stack is its
// scope boundary: references into the frame carry that position and the
// scope checker rejects any attempt to move such a reference somewhere
// longer lived.
type frame struct {
	static int   // position of the lexically enclosing frame, -1 at the bottom
	block  *Node // declaration table: the clause whose locals live here
	locals []byte
	init   []bool
}

// reinit clears a reused frame's locals in place.  Loop bodies reuse one
// frame across iterations and re-initialize it between them.
func (f *frame) reinit() {
	for i := range f.locals {
		f.locals[i] = 0
	}
	for i := range f.init {
		f.init[i] = false
	}
}

// markInit records that the byte range [off, off+n) holds a value.
func (f *frame) markInit(off, n int) {
	for i := off; i < off+n; i++ {
		f.init[i] = true
	}
}

// initialized reports whether the byte range starting at off was ever
// assigned.
func (f *frame) initialized(off int) bool {
	return off < len(f.init) && f.init[off]
}

// FrameStack is the stack of activation records.  Closing a frame is a
// constant-time rewind with no per-slot destruction; lifetime correctness is
// the scope checker's job, not the frame stack's.
type FrameStack struct {
	frames []frame
	limit  int

	MaxDepth int
	NumOpen  int
}

// Initialize purges all frames and applies the given depth limit.  A zero
// limit selects DefaultFrameLimit.
func (s *FrameStack) Initialize(limit int) {
	if limit <= 0 {
		limit = DefaultFrameLimit
	}
	s.frames = s.frames[:0]
	s.limit = limit
	s.MaxDepth = 0
	s.NumOpen = 0
}

// Depth returns the number of open frames.
func (s *FrameStack) Depth() int {
	return len(s.frames)
}

// Open pushes a frame with the given static link and declaration table and
// returns its position.  The position is the frame's scope boundary; the
// scope checker compares boundaries directly, so nothing further is
// recorded.
func (s *FrameStack) Open(static int, block *Node, size int) (int, error) {
	if s.limit == 0 {
		s.limit = DefaultFrameLimit
	}
	if len(s.frames) >= s.limit {
		return 0, errFrameOverflow
	}
	pos := len(s.frames)
	s.frames = append(s.frames, frame{
		static: static,
		block:  block,
		locals: make([]byte, size),
		init:   make([]bool, size),
	})
	if len(s.frames) > s.MaxDepth {
		s.MaxDepth = len(s.frames)
	}
	s.NumOpen++
	return pos, nil
}

// Close discards the newest frame.
func (s *FrameStack) Close() {
	if len(s.frames) == 0 {
		panic("close called on an empty frame stack")
	}
	s.frames[len(s.frames)-1] = frame{}
	s.frames = s.frames[:len(s.frames)-1]
}

// Truncate discards every frame above position pos.  Non-local jumps unwind
// with it.
func (s *FrameStack) Truncate(pos int) {
	if pos < 0 || pos >= len(s.frames) {
		panic("truncate beyond frame stack bounds")
	}
	for i := pos + 1; i < len(s.frames); i++ {
		s.frames[i] = frame{}
	}
	s.frames = s.frames[:pos+1]
}

// frame returns the record at position pos.
func (s *FrameStack) frame(pos int) *frame {
	return &s.frames[pos]
}

// live reports whether position pos denotes an open frame.
func (s *FrameStack) live(pos int) bool {
	return pos >= 0 && pos < len(s.frames)
}
