package a68

// The coercion units execute implicit conversions the front end already
// materialized as nodes.  Any pairing without a unit here is a front-end
// defect and faults as a coercion error rather than undefined behavior.

// derefUnit dereferences a name: validate, copy out the pointee bytes.  The
// first execution inspects the producer of the reference and installs a
// specialization that skips validation the producer already performed.
func (g *Genie) derefUnit(p *Node) error {
	kid := p.Kids[0]
	if err := g.exec(kid); err != nil {
		return err
	}
	if !g.Unoptimised {
		switch {
		case kid.Kind == NIdent && !kid.Identity && kid.Level == 0:
			p.prop.opSeq = kid.prop.seq
			g.install(p, derefLocalUnit, kid)
		case kid.Kind == NIndex:
			p.prop.opSeq = kid.prop.seq
			g.install(p, derefIndexedUnit, kid)
		case kid.Kind == NSelect:
			p.prop.opSeq = kid.prop.seq
			g.install(p, derefSelectedUnit, kid)
		}
	}
	return g.derefTail(p)
}

func (g *Genie) derefTail(p *Node) error {
	r := unpackRef(g.VS.Pop(RefSize))
	b, err := g.load(p, r, p.Mode.Size())
	if err != nil {
		return err
	}
	if err := g.VS.PushBytes(b); err != nil {
		return g.errorf(ErrResource, p, "%v", err)
	}
	return nil
}

// derefLocalUnit reads a local name directly, skipping the reference
// round-trip: the producer was a local identifier, so the frame is the
// current one by construction and needs no liveness validation.
func derefLocalUnit(g *Genie, p *Node) error {
	kid := p.prop.source
	if kid.prop.seq != p.prop.opSeq {
		// The producer respecialized; re-derive rather than trust a stale
		// assumption about it.
		return g.derefUnit(p)
	}
	f := g.FS.frame(g.fp)
	if !f.initialized(kid.Offset) {
		return g.errorf(ErrInit, p, "%s used before assignment", kid.Sym)
	}
	n := p.Mode.Size()
	if err := g.VS.PushBytes(f.locals[kid.Offset : kid.Offset+n]); err != nil {
		return g.errorf(ErrResource, p, "%v", err)
	}
	return nil
}

// derefIndexedUnit dereferences a reference produced by a subscript.  The
// subscript already bounds-checked the row, so only the element
// initialization check remains.
func derefIndexedUnit(g *Genie, p *Node) error {
	kid := p.prop.source
	if kid.prop.seq != p.prop.opSeq {
		return g.derefUnit(p)
	}
	if err := g.exec(kid); err != nil {
		return err
	}
	r := unpackRef(g.VS.Pop(RefSize))
	row := g.Heap.Row(r.base)
	idx := int(r.off) / row.Elem.Size()
	if !row.Init[idx] {
		return g.errorf(ErrInit, p, "row element used before assignment")
	}
	n := p.Mode.Size()
	if err := g.VS.PushBytes(row.Store[r.off : r.off+int64(n)]); err != nil {
		return g.errorf(ErrResource, p, "%v", err)
	}
	return nil
}

// derefSelectedUnit dereferences a reference produced by field selection.
// The selection validated the base name, so the load skips re-dispatching
// on the segment.
func derefSelectedUnit(g *Genie, p *Node) error {
	kid := p.prop.source
	if kid.prop.seq != p.prop.opSeq {
		return g.derefUnit(p)
	}
	if err := g.exec(kid); err != nil {
		return err
	}
	return g.derefTail(p)
}

// widenUnit upgrades an integer to a real.  A constant source re-memoizes
// the widened result as a constant.
func (g *Genie) widenUnit(p *Node) error {
	kid := p.Kids[0]
	if err := g.exec(kid); err != nil {
		return err
	}
	x := g.VS.PopInt()
	if err := g.VS.PushReal(float64(x)); err != nil {
		return g.errorf(ErrResource, p, "%v", err)
	}
	if !g.Unoptimised && kid.prop.constant != nil {
		g.installConst(p, g.VS.Top(WordSize))
	}
	return nil
}

// uniteUnit pairs a value with the tag identifying its runtime mode within
// a union.
func (g *Genie) uniteUnit(p *Node) error {
	kid := p.Kids[0]
	if err := g.exec(kid); err != nil {
		return err
	}
	n := kid.Mode.Size()
	// The union image is pushed over the bytes the payload occupied, so the
	// payload must be copied out before the tag word lands.
	payload := append([]byte(nil), g.VS.Pop(n)...)
	dst, err := g.VS.Push(p.Mode.Size())
	if err != nil {
		return g.errorf(ErrResource, p, "%v", err)
	}
	putWord(dst, 0, int64(kid.Mode.ID))
	copy(dst[WordSize:], payload)
	return nil
}

// rowingUnit promotes a value into a heap-allocated row of one element.
func (g *Genie) rowingUnit(p *Node) error {
	kid := p.Kids[0]
	if err := g.exec(kid); err != nil {
		return err
	}
	elem := p.Mode.Sub
	val := g.VS.Pop(elem.Size())
	h := g.Heap.AllocRow(elem, 1, 1, g.fp)
	g.GC.Pin(h)
	defer g.GC.Unpin(h)
	row := g.Heap.Row(h)
	if err := g.copyInto(p, row.Store, elem, val, row.Scope); err != nil {
		return err
	}
	row.Init[0] = true
	if err := g.VS.PushInt(h); err != nil {
		return g.errorf(ErrResource, p, "%v", err)
	}
	return nil
}

// deprocUnit invokes a niladic procedure found where a plain value is
// required and substitutes its result.
func (g *Genie) deprocUnit(p *Node) error {
	kid := p.Kids[0]
	if err := g.exec(kid); err != nil {
		return err
	}
	pv := unpackProc(g.VS.Pop(ProcSize))
	return g.callProc(p, kid.Mode, pv, nil, g.VS.Mark())
}
