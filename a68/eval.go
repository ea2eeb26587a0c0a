package a68

// denotUnit evaluates a literal denotation.  Denotations are compile-time
// constants, so the first execution memoizes the stack image.
func (g *Genie) denotUnit(p *Node) error {
	switch p.Mode.Kind {
	case MInt, MBool, MChar:
		if err := g.VS.PushInt(p.Int); err != nil {
			return g.errorf(ErrResource, p, "%v", err)
		}
	case MReal:
		if err := g.VS.PushReal(p.Real); err != nil {
			return g.errorf(ErrResource, p, "%v", err)
		}
	case MRow:
		// String denotation: one shared row of characters.  Assignment
		// deep-copies, so sharing the backing row is safe.
		h := g.Heap.AllocRow(ModeChar, 1, int64(len(p.Str)), 0)
		row := g.Heap.Row(h)
		for i, c := range []rune(p.Str) {
			if i >= row.Len() {
				break
			}
			putWord(row.Store, i, int64(c))
			row.Init[i] = true
		}
		if err := g.VS.PushInt(h); err != nil {
			return g.errorf(ErrResource, p, "%v", err)
		}
	default:
		return g.errorf(ErrCoerce, p, "denotation of mode %s", p.Mode)
	}
	g.installConst(p, g.VS.Top(p.Mode.Size()))
	return nil
}

// identUnit evaluates an applied identifier generically and installs the
// matching specialization: builtin procedure, local or captured name, local
// or captured identity value.
func (g *Genie) identUnit(p *Node) error {
	if p.Builtin > 0 {
		b, err := g.VS.Push(ProcSize)
		if err != nil {
			return g.errorf(ErrResource, p, "%v", err)
		}
		packProc(b, procval{flavor: procBuiltin, body: int64(p.Builtin - 1), env: -1})
		g.installConst(p, b)
		return nil
	}
	if p.Identity {
		if p.Level == 0 {
			g.install(p, identLocalValueUnit, nil)
		} else {
			g.install(p, identValueUnit, nil)
		}
		return identValueUnit(g, p)
	}
	if p.Level == 0 {
		g.install(p, identLocalRefUnit, nil)
	} else {
		g.install(p, identRefUnit, nil)
	}
	return identRefUnit(g, p)
}

// identRefUnit pushes the name an identifier denotes: a reference into the
// frame declared for it.
func identRefUnit(g *Genie, p *Node) error {
	b, err := g.VS.Push(RefSize)
	if err != nil {
		return g.errorf(ErrResource, p, "%v", err)
	}
	packRef(b, ref{seg: segFrame, base: int64(g.framePos(p.Level)), off: int64(p.Offset)})
	return nil
}

// identLocalRefUnit is identRefUnit specialized for names in the current
// frame.
func identLocalRefUnit(g *Genie, p *Node) error {
	b, err := g.VS.Push(RefSize)
	if err != nil {
		return g.errorf(ErrResource, p, "%v", err)
	}
	packRef(b, ref{seg: segFrame, base: int64(g.fp), off: int64(p.Offset)})
	return nil
}

// identValueUnit reads an identity binding (formal parameter, identity
// declaration, loop counter or conformity binding) out of its frame.
func identValueUnit(g *Genie, p *Node) error {
	f := g.FS.frame(g.framePos(p.Level))
	if !f.initialized(p.Offset) {
		return g.errorf(ErrInit, p, "%s read before binding", p.Sym)
	}
	n := p.Mode.Size()
	if err := g.VS.PushBytes(f.locals[p.Offset : p.Offset+n]); err != nil {
		return g.errorf(ErrResource, p, "%v", err)
	}
	return nil
}

func identLocalValueUnit(g *Genie, p *Node) error {
	f := g.FS.frame(g.fp)
	if !f.initialized(p.Offset) {
		return g.errorf(ErrInit, p, "%s read before binding", p.Sym)
	}
	n := p.Mode.Size()
	if err := g.VS.PushBytes(f.locals[p.Offset : p.Offset+n]); err != nil {
		return g.errorf(ErrResource, p, "%v", err)
	}
	return nil
}

// declUnit executes a declaration: evaluate the source, if any, and bind it
// to the freshly allocated local.  A bounded row variable first gets a fresh
// row of the declared bounds.  Declarations yield no value.
func (g *Genie) declUnit(p *Node) error {
	if p.From != nil && !p.Identity {
		if err := g.exec(p.From); err != nil {
			return err
		}
		lwb := g.VS.PopInt()
		if err := g.exec(p.To); err != nil {
			return err
		}
		upb := g.VS.PopInt()
		h := g.Heap.AllocRow(p.Mode.Sub, lwb, upb, g.fp)
		f := g.FS.frame(g.fp)
		putWord(f.locals[p.Offset:p.Offset+WordSize], 0, h)
		f.markInit(p.Offset, WordSize)
	}
	src := p.Child(0)
	if src == nil {
		return nil // uninitialized variable; reads fault until assigned
	}
	if err := g.exec(src); err != nil {
		return err
	}
	val := g.VS.Pop(p.Mode.Size())
	return g.store(p, ref{seg: segFrame, base: int64(g.fp), off: int64(p.Offset)}, p.Mode, val)
}

// assignUnit evaluates an assignation: destination name, then source value,
// then the checked store.  The assignation's own value is the name.
func (g *Genie) assignUnit(p *Node) error {
	dest := p.Kids[0]
	if dest.Kind == NIdent && !dest.Identity && dest.Level == 0 {
		g.install(p, assignLocalUnit, dest)
		return assignLocalUnit(g, p)
	}
	if err := g.exec(dest); err != nil {
		return err
	}
	return g.assignTail(p)
}

// assignLocalUnit is assignUnit specialized for a direct local destination:
// the name is built without re-dispatching the destination subtree.
func assignLocalUnit(g *Genie, p *Node) error {
	dest := p.prop.source
	if dest == nil {
		dest = p.Kids[0]
	}
	b, err := g.VS.Push(RefSize)
	if err != nil {
		return g.errorf(ErrResource, p, "%v", err)
	}
	packRef(b, ref{seg: segFrame, base: int64(g.fp), off: int64(dest.Offset)})
	return g.assignTail(p)
}

func (g *Genie) assignTail(p *Node) error {
	src := p.Kids[1]
	if err := g.exec(src); err != nil {
		return err
	}
	m := src.Mode
	val := g.VS.Pop(m.Size())
	r := unpackRef(g.VS.Top(RefSize))
	return g.store(p, r, m, val)
}

// genUnit evaluates a generator, yielding a reference to fresh,
// uninitialized storage: frame storage for LOC, collected storage for HEAP.
func (g *Genie) genUnit(p *Node) error {
	b, err := g.VS.Push(RefSize)
	if err != nil {
		return g.errorf(ErrResource, p, "%v", err)
	}
	if p.Heap {
		h := g.Heap.AllocScalar(p.Mode.Deref())
		packRef(b, ref{seg: segHeap, base: h})
		return nil
	}
	packRef(b, ref{seg: segFrame, base: int64(g.fp), off: int64(p.Offset)})
	return nil
}

func (g *Genie) nilUnit(p *Node) error {
	b, err := g.VS.Push(RefSize)
	if err != nil {
		return g.errorf(ErrResource, p, "%v", err)
	}
	packRef(b, ref{seg: segNil})
	return nil
}

// skipUnit pushes the undefined placeholder of the required mode.  This is a
// documented no-op value, not an error.  A procedure-mode placeholder must
// stay callable, so it carries the skip flavor rather than undefined bytes.
func (g *Genie) skipUnit(p *Node) error {
	b, err := g.VS.Push(p.Mode.Size())
	if err != nil {
		return g.errorf(ErrResource, p, "%v", err)
	}
	if p.Mode.Kind == MProc {
		packProc(b, procval{flavor: procSkip, env: -1})
	}
	return nil
}

// routineUnit yields a procedure value capturing the current frame as its
// lexical environment.
func (g *Genie) routineUnit(p *Node) error {
	b, err := g.VS.Push(ProcSize)
	if err != nil {
		return g.errorf(ErrResource, p, "%v", err)
	}
	packProc(b, procval{
		flavor: procInterp,
		body:   g.Prog.Register(p),
		env:    int64(g.fp),
	})
	return nil
}

// jumpUnit locates the live frame of the block declaring the target label by
// walking static-link ancestry, then unwinds to it via a jump signal.
func (g *Genie) jumpUnit(p *Node) error {
	return g.raiseJump(p, p.Label, g.fp)
}

// raiseJump resolves label starting from frame position from and returns the
// signal that unwinds to it.
func (g *Genie) raiseJump(p *Node, label *Label, from int) error {
	pos := from
	for g.FS.live(pos) {
		f := g.FS.frame(pos)
		if f.block == label.Block {
			if g.Monitor != nil {
				g.Monitor.JumpTo(label, pos)
			}
			return &jumpSignal{label: label, target: pos}
		}
		pos = f.static
	}
	return g.errorf(ErrControl, p, "jump to %s: enclosing frame has exited", label.Name)
}

// jumpProcUnit wraps a jump found in a strong procedure position into a
// non-invoking procedure value.
func (g *Genie) jumpProcUnit(p *Node) error {
	b, err := g.VS.Push(ProcSize)
	if err != nil {
		return g.errorf(ErrResource, p, "%v", err)
	}
	packProc(b, procval{
		flavor: procJump,
		body:   g.Prog.Register(p.Kids[0]),
		env:    int64(g.fp),
	})
	return nil
}
