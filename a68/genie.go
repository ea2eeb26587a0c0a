package a68

import (
	"io"
	"os"
	"time"
)

// Monitor receives debugger hooks at frame transitions and jump targets.
// All methods may be called very frequently; implementations should be
// cheap.
type Monitor interface {
	FrameOpen(pos int, block *Node)
	FrameClose(pos int)
	JumpTo(label *Label, pos int)
}

// Genie is the execution engine: the evaluation context threaded through
// every stack and frame operation.  A Genie is single threaded; the value
// and frame stacks are exclusively owned by the evaluating goroutine.
type Genie struct {
	Prog *Program

	VS   ValueStack
	FS   FrameStack
	Heap Heap

	// GC receives pin/unpin/collect hooks.  Defaults to NopCollector.
	GC Collector

	// Out receives transput output.  Defaults to os.Stdout.
	Out io.Writer

	// Deadline, when nonzero, is a wall-clock execution budget checked
	// cooperatively at call entry and loop-iteration boundaries.
	Deadline time.Time

	// Unoptimised forces the generic dispatch path on every node, bypassing
	// cached propagators entirely.  Used by differential tests.
	Unoptimised bool

	// Monitor, when non-nil, receives debugger hooks.
	Monitor Monitor

	// StackLimit and FrameLimit override the default stack bounds when
	// positive.
	StackLimit int
	FrameLimit int

	fp int // current frame position
}

// New returns a Genie ready to run prog.
func New(prog *Program) *Genie {
	return &Genie{
		Prog: prog,
		GC:   NopCollector{},
		Out:  os.Stdout,
	}
}

// Run executes the program from a fresh machine state.  Any error returned
// is fatal to the run; the engine performs no internal recovery.
func (g *Genie) Run() error {
	g.VS.Initialize(g.StackLimit)
	g.FS.Initialize(g.FrameLimit)
	g.Heap.Initialize()
	if g.GC == nil {
		g.GC = NopCollector{}
	}
	if g.Out == nil {
		g.Out = os.Stdout
	}

	root := g.Prog.Root
	pos, err := g.openFrame(-1, root, root.Locals)
	if err != nil {
		return err
	}
	g.fp = pos
	err = g.execSerial(root)
	if js, ok := err.(*jumpSignal); ok {
		err = g.errorf(ErrControl, nil, "jump to %s escaped the program", js.label.Name)
	}
	if err != nil {
		return err
	}
	g.closeTo(pos)
	return nil
}

// openFrame opens an activation record and fires the monitor hook.
func (g *Genie) openFrame(static int, block *Node, size int) (int, error) {
	pos, err := g.FS.Open(static, block, size)
	if err != nil {
		return 0, g.errorf(ErrResource, block, "%v", err)
	}
	if g.Monitor != nil {
		g.Monitor.FrameOpen(pos, block)
	}
	return pos, nil
}

// closeTo closes every frame at or above position pos.  Evaluators call it
// on both normal and unwinding exits; a jump that already truncated below
// pos makes it a no-op.
func (g *Genie) closeTo(pos int) {
	for g.FS.Depth() > pos {
		if g.Monitor != nil {
			g.Monitor.FrameClose(g.FS.Depth() - 1)
		}
		g.FS.Close()
	}
}

// framePos resolves a static level to a frame position by walking static
// links up from the current frame.
func (g *Genie) framePos(level int) int {
	pos := g.fp
	for i := 0; i < level; i++ {
		pos = g.FS.frame(pos).static
	}
	return pos
}

// scopeOf returns the scope boundary carried by a reference.
func (g *Genie) scopeOf(r ref) int {
	switch r.seg {
	case segFrame:
		return int(r.base)
	case segHeap:
		if row := g.Heap.Row(r.base); row != nil {
			return row.Scope
		}
		return 0
	}
	return 0
}

// load copies out the n bytes a reference designates, validating that the
// reference is non-nil and the storage was initialized.
func (g *Genie) load(p *Node, r ref, n int) ([]byte, error) {
	switch r.seg {
	case segFrame:
		if !g.FS.live(int(r.base)) {
			return nil, g.errorf(ErrScope, p, "reference into a closed frame")
		}
		f := g.FS.frame(int(r.base))
		if !f.initialized(int(r.off)) {
			return nil, g.errorf(ErrInit, p, "value read before assignment")
		}
		return f.locals[r.off : r.off+int64(n)], nil
	case segHeap:
		if row := g.Heap.Row(r.base); row != nil {
			idx := int(r.off) / row.Elem.Size()
			if idx >= len(row.Init) || !row.Init[idx] {
				return nil, g.errorf(ErrInit, p, "row element read before assignment")
			}
			return row.Store[r.off : r.off+int64(n)], nil
		}
		if sc := g.Heap.Scalar(r.base); sc != nil {
			if !sc.Init {
				return nil, g.errorf(ErrInit, p, "value read before assignment")
			}
			return sc.Store[r.off : r.off+int64(n)], nil
		}
		return nil, g.errorf(ErrInit, p, "reference to reclaimed storage")
	}
	return nil, g.errorf(ErrInit, p, "NIL dereferenced")
}

// store writes a value of mode m through a reference: scope check first,
// then a structural deep copy when the mode carries rows, then the flat
// write, then the initialization mark.
func (g *Genie) store(p *Node, r ref, m *Mode, src []byte) error {
	if r.seg == segNil {
		return g.errorf(ErrInit, p, "assignment through NIL")
	}
	dest := g.scopeOf(r)
	if m.HasScope() {
		if err := g.scopeCheck(p, m, src, dest); err != nil {
			return err
		}
	}
	dst, marker, err := g.storage(p, r, m.Size())
	if err != nil {
		return err
	}
	if err := g.copyInto(p, dst, m, src, dest); err != nil {
		return err
	}
	marker()
	return nil
}

// storage resolves a reference to its backing bytes plus a function that
// marks the range initialized.
func (g *Genie) storage(p *Node, r ref, n int) ([]byte, func(), error) {
	switch r.seg {
	case segFrame:
		if !g.FS.live(int(r.base)) {
			return nil, nil, g.errorf(ErrScope, p, "reference into a closed frame")
		}
		f := g.FS.frame(int(r.base))
		off := int(r.off)
		return f.locals[off : off+n], func() { f.markInit(off, n) }, nil
	case segHeap:
		if row := g.Heap.Row(r.base); row != nil {
			idx := int(r.off) / row.Elem.Size()
			if idx < 0 || idx >= len(row.Init) {
				return nil, nil, g.errorf(ErrBounds, p, "row store out of bounds")
			}
			return row.Store[r.off : r.off+int64(n)], func() { row.Init[idx] = true }, nil
		}
		if sc := g.Heap.Scalar(r.base); sc != nil {
			return sc.Store[r.off : r.off+int64(n)], func() { sc.Init = true }, nil
		}
	}
	return nil, nil, g.errorf(ErrInit, p, "assignment through NIL")
}

// safepoint runs the cooperative checks permitted at call entry and
// loop-iteration boundaries: the wall-clock budget and opportunistic
// collection.
func (g *Genie) safepoint(p *Node) error {
	if !g.Deadline.IsZero() && time.Now().After(g.Deadline) {
		return g.errorf(ErrResource, p, "time budget exceeded")
	}
	g.GC.Collect()
	return nil
}
