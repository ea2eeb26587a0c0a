package a68

// indexUnit evaluates a subscript.  Applied to a row name it yields a
// reference to the element; applied to a row value it copies the element
// out.  A constant subscript is cached after the first execution.
func (g *Genie) indexUnit(p *Node) error {
	src, sub := p.Kids[0], p.Kids[1]
	if err := g.exec(src); err != nil {
		return err
	}
	if err := g.exec(sub); err != nil {
		return err
	}
	if !g.Unoptimised && sub.prop.constant != nil {
		p.prop.opSeq = sub.prop.seq
		g.install(p, indexConstUnit, sub)
		// Cache the subscript so later visits skip its dispatch.  The node's
		// own constant slot stays empty; the subscript node is constant, the
		// subscripted element is not.
		p.prop.subscript = sub.prop.constant
	}
	return g.indexTail(p, g.VS.PopInt())
}

// indexConstUnit is indexUnit with the subscript taken from the propagator
// cell instead of re-evaluating a constant operand.
func indexConstUnit(g *Genie, p *Node) error {
	sub := p.prop.source
	if sub.prop.seq != p.prop.opSeq {
		return g.indexUnit(p)
	}
	if err := g.exec(p.Kids[0]); err != nil {
		return err
	}
	return g.indexTail(p, getWord(p.prop.subscript, 0))
}

func (g *Genie) indexTail(p *Node, idx int64) error {
	src := p.Kids[0]
	if src.Mode.Kind == MRef {
		r := unpackRef(g.VS.Pop(RefSize))
		hb, err := g.load(p, r, RowSize)
		if err != nil {
			return err
		}
		row := g.Heap.Row(getWord(hb, 0))
		if row == nil {
			return g.errorf(ErrInit, p, "subscript of an empty row name")
		}
		if idx < row.Lwb || idx > row.Upb {
			return g.errorf(ErrBounds, p, "subscript %d outside [%d:%d]", idx, row.Lwb, row.Upb)
		}
		b, err := g.VS.Push(RefSize)
		if err != nil {
			return g.errorf(ErrResource, p, "%v", err)
		}
		packRef(b, ref{
			seg:  segHeap,
			base: getWord(hb, 0),
			off:  (idx - row.Lwb) * int64(row.Elem.Size()),
		})
		return nil
	}
	row := g.Heap.Row(g.VS.PopInt())
	if row == nil {
		return g.errorf(ErrInit, p, "subscript of an empty row")
	}
	if idx < row.Lwb || idx > row.Upb {
		return g.errorf(ErrBounds, p, "subscript %d outside [%d:%d]", idx, row.Lwb, row.Upb)
	}
	i := int(idx - row.Lwb)
	if !row.Init[i] {
		return g.errorf(ErrInit, p, "row element read before assignment")
	}
	esz := row.Elem.Size()
	if err := g.VS.PushBytes(row.Store[i*esz : (i+1)*esz]); err != nil {
		return g.errorf(ErrResource, p, "%v", err)
	}
	return nil
}

// selectUnit evaluates a field selection.  Applied to a structure name it
// yields a reference to the field; applied to a structure value it copies
// the field out.
func (g *Genie) selectUnit(p *Node) error {
	src := p.Kids[0]
	if err := g.exec(src); err != nil {
		return err
	}
	if src.Mode.Kind == MRef {
		f := src.Mode.Sub.Fields[p.Field]
		r := unpackRef(g.VS.Pop(RefSize))
		if r.seg == segNil {
			return g.errorf(ErrInit, p, "selection from NIL")
		}
		b, err := g.VS.Push(RefSize)
		if err != nil {
			return g.errorf(ErrResource, p, "%v", err)
		}
		packRef(b, ref{seg: r.seg, base: r.base, off: r.off + int64(f.Offset)})
		return nil
	}
	f := src.Mode.Fields[p.Field]
	val := g.VS.Pop(src.Mode.Size())
	field := val[f.Offset : f.Offset+f.Mode.Size()]
	if err := g.VS.PushBytes(field); err != nil {
		return g.errorf(ErrResource, p, "%v", err)
	}
	return nil
}
