package a68

// copyInto writes a value of mode m into dst.  Aggregate-free modes take the
// flat whole-record copy; any mode transitively containing a row takes a
// structural deep copy, because rows are descriptor-plus-store pairs and
// value semantics forbid aliasing on copy.  Fresh rows are owned by the
// destination, so they record its scope boundary.
func (g *Genie) copyInto(p *Node, dst []byte, m *Mode, src []byte, scope int) error {
	if !m.HasRows() {
		copy(dst, src)
		return nil
	}
	switch m.Kind {
	case MRow:
		h, err := g.copyRow(p, getWord(src, 0), scope)
		if err != nil {
			return err
		}
		putWord(dst, 0, h)
	case MStruct:
		for _, f := range m.Fields {
			end := f.Offset + f.Mode.Size()
			if err := g.copyInto(p, dst[f.Offset:end], f.Mode, src[f.Offset:end], scope); err != nil {
				return err
			}
		}
	case MUnion:
		tag := g.Prog.Modes.Mode(getWord(src, 0))
		if tag == nil {
			return g.errorf(ErrCoerce, p, "united value carries an unknown tag")
		}
		putWord(dst, 0, getWord(src, 0))
		// Recurse only into the active payload; the padding is dead bytes.
		n := tag.Size()
		return g.copyInto(p, dst[WordSize:WordSize+n], tag, src[WordSize:WordSize+n], scope)
	default:
		copy(dst, src)
	}
	return nil
}

// copyRow clones a row's descriptor and backing store, recursing per element
// by mode.  The new row is pinned during construction so an opportunistic
// collection cannot reclaim it mid-build.
func (g *Genie) copyRow(p *Node, handle int64, scope int) (int64, error) {
	src := g.Heap.Row(handle)
	if src == nil {
		return 0, nil // NIL-ish row placeholder copies as itself
	}
	h := g.Heap.AllocRow(src.Elem, src.Lwb, src.Upb, scope)
	g.GC.Pin(h)
	defer g.GC.Unpin(h)
	dst := g.Heap.Row(h)
	esz := src.Elem.Size()
	if !src.Elem.HasRows() {
		copy(dst.Store, src.Store)
		copy(dst.Init, src.Init)
		return h, nil
	}
	for i := 0; i < src.Len(); i++ {
		if !src.Init[i] {
			continue
		}
		err := g.copyInto(p, dst.Store[i*esz:(i+1)*esz], src.Elem, src.Store[i*esz:(i+1)*esz], scope)
		if err != nil {
			return 0, err
		}
		dst.Init[i] = true
	}
	return h, nil
}
