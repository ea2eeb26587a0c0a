package a68

// Reference segments.  A reference is three words: segment, base and byte
// offset.  Frame references use the frame-stack position as base; their
// scope boundary is that position.  Heap references use a handle; their
// boundary is recorded on the heap cell.
const (
	segNil = iota
	segFrame
	segHeap
)

type ref struct {
	seg  int64
	base int64
	off  int64
}

func unpackRef(b []byte) ref {
	return ref{seg: getWord(b, 0), base: getWord(b, 1), off: getWord(b, 2)}
}

func packRef(dst []byte, r ref) {
	putWord(dst, 0, r.seg)
	putWord(dst, 1, r.base)
	putWord(dst, 2, r.off)
}

// Procedure flavors.  A procedure value is four words: flavor, body,
// environment and locale.  Body is a registered node ID for interpreted
// bodies and jumps, or a builtin index.  Environment is the frame-stack
// position of the captured frame (-1 for none).  Locale is a heap handle (0
// for none).
const (
	procInterp = iota
	procBuiltin
	procSkip
	procJump
)

type procval struct {
	flavor int64
	body   int64
	env    int64
	locale int64
}

func unpackProc(b []byte) procval {
	return procval{
		flavor: getWord(b, 0),
		body:   getWord(b, 1),
		env:    getWord(b, 2),
		locale: getWord(b, 3),
	}
}

func packProc(dst []byte, pv procval) {
	putWord(dst, 0, pv.flavor)
	putWord(dst, 1, pv.body)
	putWord(dst, 2, pv.env)
	putWord(dst, 3, pv.locale)
}
