package a68

// argval describes one evaluated actual parameter sitting on the value
// stack.  pos is the parameter position at the call site, counting empty
// slots.
type argval struct {
	mode *Mode
	off  int
	pos  int
}

// callUnit evaluates a call: the callee, then the present actual parameters
// left to right, then dispatch.  Empty actual-parameter slots mark a partial
// parametrization.  A callee that is itself a constant (builtin identifier
// or routine denotation) lets the whole call site skip dynamic resolution on
// later visits, which generic dispatch achieves by caching the callee's own
// propagator; nothing further is needed here.
func (g *Genie) callUnit(p *Node) error {
	callee := p.Kids[0]
	if err := g.exec(callee); err != nil {
		return err
	}
	pv := unpackProc(g.VS.Pop(ProcSize))
	argMark := g.VS.Mark()
	var args []argval
	for i, kid := range p.Kids[1:] {
		if kid.Kind == NEmptyArg {
			continue
		}
		off := g.VS.Mark()
		if err := g.exec(kid); err != nil {
			return err
		}
		args = append(args, argval{mode: kid.Mode, off: off, pos: i})
	}
	return g.callProc(p, callee.Mode, pv, args, argMark)
}

// callProc is the call dispatcher.  Given a procedure value, evaluated
// arguments above argMark, and the callee's static mode it invokes builtins
// directly, substitutes placeholders for skip procedures, raises wrapped
// jumps, extends locales for partial parametrizations, and opens a frame for
// full calls to interpreted bodies.
func (g *Genie) callProc(p *Node, procMode *Mode, pv procval, args []argval, argMark int) error {
	switch pv.flavor {
	case procBuiltin:
		b := g.Prog.Builtins[pv.body]
		in := make([]Arg, len(args))
		for i, a := range args {
			in[i] = Arg{Mode: a.mode, Off: a.off}
		}
		res, err := b.Fn(g, p, in)
		if err != nil {
			return err
		}
		g.VS.Reset(argMark)
		if len(res) > 0 {
			if err := g.VS.PushBytes(res); err != nil {
				return g.errorf(ErrResource, p, "%v", err)
			}
		}
		return nil

	case procSkip:
		// Error-recovery continuation: discard the arguments and yield an
		// arbitrary well-typed placeholder.
		g.VS.Reset(argMark)
		if _, err := g.VS.Push(procMode.Sub.Size()); err != nil {
			return g.errorf(ErrResource, p, "%v", err)
		}
		return nil

	case procJump:
		g.VS.Reset(argMark)
		jump := g.Prog.Node(pv.body)
		return g.raiseJump(p, jump.Label, int(pv.env))
	}

	routine := g.Prog.Node(pv.body)
	if routine == nil {
		return g.errorf(ErrCoerce, p, "call of an uninitialized procedure value")
	}
	params := routine.Params

	if pv.locale != 0 || len(args) < len(params) {
		return g.bindLocale(p, procMode, pv, routine, args, argMark)
	}
	return g.fullCall(p, procMode, pv, routine, args, nil, argMark)
}

// bindLocale copy-extends the procedure's locale with the supplied
// arguments, binding unbound slots left to right and skipping slots already
// bound.  A fully bound locale proceeds to the call; otherwise a new
// procedure value with the extended locale is the result.
func (g *Genie) bindLocale(p *Node, procMode *Mode, pv procval, routine *Node, args []argval, argMark int) error {
	var nl *Locale
	if old := g.Heap.Locale(pv.locale); old != nil {
		nl = old.Copy()
	} else {
		modes := make([]*Mode, len(routine.Params))
		for i, prm := range routine.Params {
			modes[i] = prm.Mode
		}
		nl = &Locale{
			Modes: modes,
			Bound: make([]bool, len(modes)),
			Store: make([]byte, localeSize(modes)),
		}
	}

	var unbound []int
	for i, b := range nl.Bound {
		if !b {
			unbound = append(unbound, i)
		}
	}
	for _, a := range args {
		if a.pos >= len(unbound) {
			return g.errorf(ErrCoerce, p, "too many actual parameters")
		}
		slot := unbound[a.pos]
		src := g.VS.Bytes(a.off, a.mode.Size())
		if err := g.copyInto(p, nl.Slot(slot), nl.Modes[slot], src, 0); err != nil {
			return err
		}
		nl.Bound[slot] = true
	}
	g.VS.Reset(argMark)

	if nl.FullyBound() {
		return g.fullCall(p, procMode, pv, routine, nil, nl, argMark)
	}
	b, err := g.VS.Push(ProcSize)
	if err != nil {
		return g.errorf(ErrResource, p, "%v", err)
	}
	packProc(b, procval{
		flavor: procInterp,
		body:   pv.body,
		env:    pv.env,
		locale: g.Heap.Adopt(nl),
	})
	return nil
}

func localeSize(modes []*Mode) int {
	n := 0
	for _, m := range modes {
		n += m.Size()
	}
	return n
}

// fullCall executes an interpreted body: open a frame whose static link is
// the procedure's captured environment (not the caller's frame; that is
// what makes closures work without display copying), copy the arguments to
// their frame offsets in declaration order, run the body, close the frame,
// and scope-check the result against the caller's boundary.
func (g *Genie) fullCall(p *Node, procMode *Mode, pv procval, routine *Node, args []argval, locale *Locale, argMark int) error {
	if err := g.safepoint(p); err != nil {
		return err
	}
	body := routine.Kids[0]
	pos, err := g.openFrame(int(pv.env), body, body.Locals)
	if err != nil {
		return err
	}
	f := g.FS.frame(pos)

	if locale != nil {
		for i, prm := range routine.Params {
			dst := f.locals[prm.Offset : prm.Offset+prm.Mode.Size()]
			if err := g.copyInto(p, dst, prm.Mode, locale.Slot(i), pos); err != nil {
				g.closeTo(pos)
				return err
			}
			f.markInit(prm.Offset, prm.Mode.Size())
		}
	} else {
		for i, prm := range routine.Params {
			src := g.VS.Bytes(args[i].off, prm.Mode.Size())
			dst := f.locals[prm.Offset : prm.Offset+prm.Mode.Size()]
			if err := g.copyInto(p, dst, prm.Mode, src, pos); err != nil {
				g.closeTo(pos)
				return err
			}
			f.markInit(prm.Offset, prm.Mode.Size())
		}
	}
	g.VS.Reset(argMark)

	saved := g.fp
	g.fp = pos
	err = g.execSerial(body)
	g.fp = saved
	g.closeTo(pos)
	if err != nil {
		return err
	}

	result := procMode.Sub
	if result.HasScope() {
		return g.scopeCheck(p, result, g.VS.Top(result.Size()), saved)
	}
	return nil
}
