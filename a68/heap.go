package a68

// Collector is the engine's view of the external garbage collector.  The
// engine pins any handle reachable only through an untracked pointer during
// a multi-step operation and triggers opportunistic collection at safe
// points (call entry, loop-iteration boundary).  Mark and sweep themselves
// live outside this core.
type Collector interface {
	Pin(handle int64)
	Unpin(handle int64)
	Collect()
}

// NopCollector ignores every hook.  It is the default collector.
type NopCollector struct{}

func (NopCollector) Pin(int64)   {}
func (NopCollector) Unpin(int64) {}
func (NopCollector) Collect()    {}

// Row is the backing of a row value: a descriptor plus store.  The 8-byte
// handle on the stack refers to a Row through the heap; copying the handle
// aliases, assignment deep-copies.
type Row struct {
	Elem  *Mode
	Lwb   int64
	Upb   int64
	Store []byte
	Init  []bool // per element
	Scope int    // boundary of the allocating frame, 0 for HEAP and denotations
}

// Len returns the number of elements.
func (r *Row) Len() int {
	if r.Upb < r.Lwb {
		return 0
	}
	return int(r.Upb - r.Lwb + 1)
}

// Locale is the partial-application argument buffer of a curried procedure
// value: one bound flag and one packed slot per formal parameter.  Locales
// are copy-extended on every partial binding, never mutated in place, so
// procedure values may share them safely.
type Locale struct {
	Modes []*Mode
	Bound []bool
	Store []byte
}

// SlotOffset returns the byte offset of parameter slot i within the packed
// store.
func (l *Locale) SlotOffset(i int) int {
	off := 0
	for j := 0; j < i; j++ {
		off += l.Modes[j].Size()
	}
	return off
}

// Slot returns the bytes of parameter slot i.
func (l *Locale) Slot(i int) []byte {
	off := l.SlotOffset(i)
	return l.Store[off : off+l.Modes[i].Size()]
}

// Copy returns an independent copy of l.
func (l *Locale) Copy() *Locale {
	cp := &Locale{
		Modes: l.Modes,
		Bound: make([]bool, len(l.Bound)),
		Store: make([]byte, len(l.Store)),
	}
	copy(cp.Bound, l.Bound)
	copy(cp.Store, l.Store)
	return cp
}

// FullyBound reports whether every slot is bound.
func (l *Locale) FullyBound() bool {
	for _, b := range l.Bound {
		if !b {
			return false
		}
	}
	return true
}

// Scalar is a single heap-allocated value produced by a HEAP generator.
type Scalar struct {
	Mode  *Mode
	Store []byte
	Init  bool
}

// heapCell is one tracked heap object.  Exactly one member is non-nil.
type heapCell struct {
	row    *Row
	locale *Locale
	scalar *Scalar
}

// Heap tracks every engine-allocated object behind integer handles.  Handle
// 0 is nil.  The external collector owns reclamation; the heap here only
// allocates and resolves.
type Heap struct {
	cells []heapCell
}

// Initialize purges all cells.
func (h *Heap) Initialize() {
	h.cells = h.cells[:0]
}

// AllocRow allocates a row of elem values with the given bounds and owner
// scope and returns its handle.
func (h *Heap) AllocRow(elem *Mode, lwb, upb int64, scope int) int64 {
	n := 0
	if upb >= lwb {
		n = int(upb - lwb + 1)
	}
	r := &Row{
		Elem:  elem,
		Lwb:   lwb,
		Upb:   upb,
		Store: make([]byte, n*elem.Size()),
		Init:  make([]bool, n),
		Scope: scope,
	}
	h.cells = append(h.cells, heapCell{row: r})
	return int64(len(h.cells))
}

// AllocLocale allocates an empty locale for the given parameter modes.
func (h *Heap) AllocLocale(modes []*Mode) int64 {
	size := 0
	for _, m := range modes {
		size += m.Size()
	}
	l := &Locale{
		Modes: modes,
		Bound: make([]bool, len(modes)),
		Store: make([]byte, size),
	}
	h.cells = append(h.cells, heapCell{locale: l})
	return int64(len(h.cells))
}

// Adopt places an existing locale behind a fresh handle.
func (h *Heap) Adopt(l *Locale) int64 {
	h.cells = append(h.cells, heapCell{locale: l})
	return int64(len(h.cells))
}

// AllocScalar allocates storage for one HEAP-generated value.
func (h *Heap) AllocScalar(m *Mode) int64 {
	h.cells = append(h.cells, heapCell{scalar: &Scalar{
		Mode:  m,
		Store: make([]byte, m.Size()),
	}})
	return int64(len(h.cells))
}

// Row resolves a row handle, or nil.
func (h *Heap) Row(handle int64) *Row {
	if handle < 1 || handle > int64(len(h.cells)) {
		return nil
	}
	return h.cells[handle-1].row
}

// Locale resolves a locale handle, or nil.
func (h *Heap) Locale(handle int64) *Locale {
	if handle < 1 || handle > int64(len(h.cells)) {
		return nil
	}
	return h.cells[handle-1].locale
}

// Scalar resolves a scalar handle, or nil.
func (h *Heap) Scalar(handle int64) *Scalar {
	if handle < 1 || handle > int64(len(h.cells)) {
		return nil
	}
	return h.cells[handle-1].scalar
}
