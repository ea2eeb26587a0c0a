package a68

// scopeCheck validates that no scope boundary carried inside the value b of
// mode m is narrower than dest, the boundary of the location about to hold
// it.  It recurses into variant payloads, row elements, structure fields and
// a procedure value's captured frame and bound locale slots.  A violation is
// fatal: the alternative is a dangling reference.
func (g *Genie) scopeCheck(p *Node, m *Mode, b []byte, dest int) error {
	switch m.Kind {
	case MRef:
		r := unpackRef(b)
		if r.seg == segNil {
			return nil
		}
		if s := g.scopeOf(r); s > dest {
			return g.errorf(ErrScope, p,
				"%s value refers to storage newer than its destination", m)
		}
	case MProc:
		pv := unpackProc(b)
		if pv.flavor == procBuiltin || pv.flavor == procSkip {
			return nil
		}
		if int(pv.env) > dest {
			return g.errorf(ErrScope, p,
				"%s value captures a frame newer than its destination", m)
		}
		if l := g.Heap.Locale(pv.locale); l != nil {
			for i, bound := range l.Bound {
				if !bound || !l.Modes[i].HasScope() {
					continue
				}
				if err := g.scopeCheck(p, l.Modes[i], l.Slot(i), dest); err != nil {
					return err
				}
			}
		}
	case MRow:
		if !m.Sub.HasScope() {
			return nil
		}
		row := g.Heap.Row(getWord(b, 0))
		if row == nil {
			return nil
		}
		esz := row.Elem.Size()
		for i := 0; i < row.Len(); i++ {
			if !row.Init[i] {
				continue
			}
			if err := g.scopeCheck(p, row.Elem, row.Store[i*esz:(i+1)*esz], dest); err != nil {
				return err
			}
		}
	case MStruct:
		for _, f := range m.Fields {
			if !f.Mode.HasScope() {
				continue
			}
			if err := g.scopeCheck(p, f.Mode, b[f.Offset:f.Offset+f.Mode.Size()], dest); err != nil {
				return err
			}
		}
	case MUnion:
		tag := g.Prog.Modes.Mode(getWord(b, 0))
		if tag == nil || !tag.HasScope() {
			return nil
		}
		return g.scopeCheck(p, tag, b[WordSize:WordSize+tag.Size()], dest)
	}
	return nil
}
