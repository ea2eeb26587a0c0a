package a68

// execSerial runs a serial clause in the current frame.  Every non-final
// unit's result is voided before the next unit runs; the final unit's result
// is the clause's value.  The entry stack position doubles as the clause's
// resumption point: a jump signal targeting this frame resets the value
// stack to it and resumes after the label.
func (g *Genie) execSerial(p *Node) error {
	mark := g.VS.Mark()
	i := 0
	for i < len(p.Kids) {
		err := g.exec(p.Kids[i])
		if err != nil {
			js, ok := err.(*jumpSignal)
			if !ok || js.target != g.fp || js.label.Block != p {
				return err
			}
			g.FS.Truncate(js.target)
			g.VS.Reset(mark)
			i = js.label.Index
			continue
		}
		if i < len(p.Kids)-1 {
			g.VS.Reset(mark) // voiding
		}
		i++
	}
	return nil
}

// closedUnit opens one frame, runs the enclosed serial clause, and closes
// it.
func (g *Genie) closedUnit(p *Node) error {
	serial := p.Kids[0]
	pos, err := g.openFrame(g.fp, serial, serial.Locals)
	if err != nil {
		return err
	}
	saved := g.fp
	g.fp = pos
	err = g.execSerial(serial)
	g.fp = saved
	g.closeTo(pos)
	return err
}

// collateralUnit evaluates constituent units left to right (sequentially;
// the parallel clause is outside this core) and assembles the results.  A
// row display collapses into a fresh heap row; a structure display is
// already its own stack image; a void collateral discards every result.
func (g *Genie) collateralUnit(p *Node) error {
	mark := g.VS.Mark()
	switch p.Mode.Kind {
	case MRow:
		elem := p.Mode.Sub
		esz := elem.Size()
		for _, kid := range p.Kids {
			if err := g.exec(kid); err != nil {
				return err
			}
		}
		h := g.Heap.AllocRow(elem, 1, int64(len(p.Kids)), g.fp)
		g.GC.Pin(h)
		defer g.GC.Unpin(h)
		row := g.Heap.Row(h)
		for i := range p.Kids {
			src := g.VS.Bytes(mark+i*esz, esz)
			if err := g.copyInto(p, row.Store[i*esz:(i+1)*esz], elem, src, row.Scope); err != nil {
				return err
			}
			row.Init[i] = true
		}
		g.VS.Reset(mark)
		if err := g.VS.PushInt(h); err != nil {
			return g.errorf(ErrResource, p, "%v", err)
		}
		return nil
	case MStruct:
		for _, kid := range p.Kids {
			if err := g.exec(kid); err != nil {
				return err
			}
		}
		return nil
	default:
		for _, kid := range p.Kids {
			if err := g.exec(kid); err != nil {
				return err
			}
			g.VS.Reset(mark)
		}
		return nil
	}
}

// condUnit evaluates the enquiry and dispatches to the chosen branch,
// pushing an undefined placeholder when a needed branch is absent.
func (g *Genie) condUnit(p *Node) error {
	if err := g.exec(p.Kids[0]); err != nil {
		return err
	}
	branch := p.Child(1)
	if !g.VS.PopBool() {
		branch = p.Child(2)
	}
	if branch == nil {
		if _, err := g.VS.Push(p.Mode.Size()); err != nil {
			return g.errorf(ErrResource, p, "%v", err)
		}
		return nil
	}
	return g.exec(branch)
}

// caseIntUnit dispatches on index equality: branch i for discriminant i,
// counting from one, then the out branch, then an undefined placeholder.
func (g *Genie) caseIntUnit(p *Node) error {
	if err := g.exec(p.Kids[0]); err != nil {
		return err
	}
	idx := g.VS.PopInt()
	if idx >= 1 && idx <= int64(len(p.Kids)-1) {
		return g.exec(p.Kids[int(idx)])
	}
	if p.Out != nil {
		return g.exec(p.Out)
	}
	if _, err := g.VS.Push(p.Mode.Size()); err != nil {
		return g.errorf(ErrResource, p, "%v", err)
	}
	return nil
}

// caseUnionUnit dispatches on the united value's runtime tag: branches are
// tested in order and the first whose declared mode matches the tag wins,
// binding the payload in the branch's own frame.
func (g *Genie) caseUnionUnit(p *Node) error {
	if err := g.exec(p.Kids[0]); err != nil {
		return err
	}
	united := g.VS.Pop(p.Kids[0].Mode.Size())
	tag := g.Prog.Modes.Mode(getWord(united, 0))
	if tag == nil {
		return g.errorf(ErrCoerce, p, "united value carries an unknown tag")
	}
	payload := make([]byte, tag.Size())
	copy(payload, united[WordSize:WordSize+tag.Size()])

	for _, branch := range p.Kids[1:] {
		if branch.Variant != tag {
			continue
		}
		return g.conformityBranch(branch, tag, payload)
	}
	if p.Out != nil {
		return g.exec(p.Out)
	}
	if _, err := g.VS.Push(p.Mode.Size()); err != nil {
		return g.errorf(ErrResource, p, "%v", err)
	}
	return nil
}

// conformityBranch runs a conformity branch with the matched payload bound
// at the base of the branch's frame.
func (g *Genie) conformityBranch(branch *Node, tag *Mode, payload []byte) error {
	serial := branch.Kids[0]
	pos, err := g.openFrame(g.fp, serial, serial.Locals)
	if err != nil {
		return err
	}
	if branch.Sym != "" {
		f := g.FS.frame(pos)
		if err := g.copyInto(branch, f.locals[:tag.Size()], tag, payload, pos); err != nil {
			g.closeTo(pos)
			return err
		}
		f.markInit(0, tag.Size())
	}
	saved := g.fp
	g.fp = pos
	err = g.execSerial(serial)
	g.fp = saved
	g.closeTo(pos)
	return err
}

// loopUnit runs a loop clause.  The counter lives in a small loop frame;
// the body reuses one frame across iterations, explicitly re-initialized
// when the body block declares storage that must be rebuilt.  The counter
// advances only when an explicit bound part exists, so unbounded loops
// never wrap around.
func (g *Genie) loopUnit(p *Node) error {
	mark := g.VS.Mark()
	saved := g.fp
	lpos, err := g.openFrame(g.fp, p, p.Locals)
	if err != nil {
		return err
	}
	fail := func(err error) error {
		g.fp = saved
		g.closeTo(lpos)
		return err
	}
	g.fp = lpos

	counter := p.Sym != "" || p.From != nil || p.By != nil || p.To != nil
	k, by, to := int64(1), int64(1), int64(0)
	if p.From != nil {
		if err := g.exec(p.From); err != nil {
			return fail(err)
		}
		k = g.VS.PopInt()
	}
	if p.By != nil {
		if err := g.exec(p.By); err != nil {
			return fail(err)
		}
		by = g.VS.PopInt()
	}
	hasTo := p.To != nil
	if hasTo {
		if err := g.exec(p.To); err != nil {
			return fail(err)
		}
		to = g.VS.PopInt()
	}
	if p.Sym != "" {
		f := g.FS.frame(lpos)
		putWord(f.locals, 0, k)
		f.markInit(0, WordSize)
	}

	bpos, err := g.openFrame(lpos, p.Body, p.Body.Locals)
	if err != nil {
		return fail(err)
	}
	first := true
	for {
		if err := g.safepoint(p); err != nil {
			return fail(err)
		}
		if hasTo && ((by >= 0 && k > to) || (by < 0 && k < to)) {
			break
		}
		if p.While != nil {
			g.fp = lpos
			if err := g.exec(p.While); err != nil {
				return fail(err)
			}
			if !g.VS.PopBool() {
				break
			}
		}
		if !first && p.Body.Rebuild {
			g.FS.frame(bpos).reinit()
		}
		g.fp = bpos
		if err := g.execSerial(p.Body); err != nil {
			return fail(err)
		}
		g.VS.Reset(mark)
		if p.Until != nil {
			if err := g.exec(p.Until); err != nil {
				return fail(err)
			}
			if g.VS.PopBool() {
				break
			}
		}
		first = false
		if counter {
			if hasTo {
				// Stop before the advance that would pass the bound, so a
				// bound at the counter's maximum terminates without
				// wraparound.
				if by >= 0 && k > to-by {
					break
				}
				if by < 0 && k < to-by {
					break
				}
			}
			k += by
			if p.Sym != "" {
				f := g.FS.frame(lpos)
				putWord(f.locals, 0, k)
			}
		}
	}
	g.fp = saved
	g.closeTo(lpos)
	g.VS.Reset(mark)
	return nil
}
