package a68

import (
	"bytes"
	"fmt"
)

// ModeKind discriminates the structural kind of a mode.
type ModeKind uint

// Possible ModeKind values.
const (
	MInvalid ModeKind = iota
	MVoid
	MInt
	MReal
	MBool
	MChar
	MRef
	MProc
	MRow
	MStruct
	MUnion

	numModeKinds
)

var modeKindStrings = [numModeKinds]string{
	MInvalid: "INVALID",
	MVoid:    "VOID",
	MInt:     "INT",
	MReal:    "REAL",
	MBool:    "BOOL",
	MChar:    "CHAR",
	MRef:     "REF",
	MProc:    "PROC",
	MRow:     "ROW",
	MStruct:  "STRUCT",
	MUnion:   "UNION",
}

func (k ModeKind) String() string {
	if k >= numModeKinds {
		return modeKindStrings[MInvalid]
	}
	return modeKindStrings[k]
}

// Field is one field of a structured mode.  Offset is the field's byte
// offset within the structure's stack image.
type Field struct {
	Name   string
	Mode   *Mode
	Offset int
}

// Mode is a static type of the interpreted language.  Modes are built by the
// front end and interned in a ModeTable so that equal modes are pointer
// identical by the time the engine sees them.  The engine reads modes but
// never constructs new ones.
type Mode struct {
	Kind ModeKind

	// ID is the mode's index in its ModeTable.  Union values embed the ID of
	// their active variant as a runtime tag.
	ID int

	Sub      *Mode   // REF target, ROW element or PROC result
	Params   []*Mode // PROC parameter modes in declaration order
	Fields   []Field // STRUCT fields in declaration order
	Variants []*Mode // UNION variant modes in declaration order

	size   int
	scoped int8 // 0 unknown, 1 no, 2 yes
	deep   int8 // 0 unknown, 1 no, 2 yes
}

// Stack image sizes.  Every scalar occupies a full word so that frame
// offsets assigned by the front end stay word aligned.
const (
	WordSize = 8
	RefSize  = 3 * WordSize // segment, base, offset
	ProcSize = 4 * WordSize // flavor, body, environment, locale
	RowSize  = WordSize     // heap handle
)

// Size returns the number of bytes a value of mode m occupies on the value
// stack or inside a frame.
func (m *Mode) Size() int {
	if m.size > 0 || m.Kind == MVoid {
		return m.size
	}
	m.size = m.computeSize()
	return m.size
}

func (m *Mode) computeSize() int {
	switch m.Kind {
	case MVoid:
		return 0
	case MInt, MReal, MBool, MChar:
		return WordSize
	case MRef:
		return RefSize
	case MProc:
		return ProcSize
	case MRow:
		return RowSize
	case MStruct:
		n := 0
		for _, f := range m.Fields {
			n += f.Mode.Size()
		}
		return n
	case MUnion:
		max := 0
		for _, v := range m.Variants {
			if s := v.Size(); s > max {
				max = s
			}
		}
		return WordSize + max
	}
	return 0
}

// HasScope reports whether a value of mode m can transitively carry a scope
// boundary (a reference or a procedure).  Values of scope-free modes never
// need checking before a store.
func (m *Mode) HasScope() bool {
	if m.scoped == 0 {
		m.scoped = 1
		if m.computeHasScope() {
			m.scoped = 2
		}
	}
	return m.scoped == 2
}

func (m *Mode) computeHasScope() bool {
	switch m.Kind {
	case MRef, MProc:
		return true
	case MRow:
		return m.Sub.HasScope()
	case MStruct:
		for _, f := range m.Fields {
			if f.Mode.HasScope() {
				return true
			}
		}
	case MUnion:
		for _, v := range m.Variants {
			if v.HasScope() {
				return true
			}
		}
	}
	return false
}

// HasRows reports whether a value of mode m transitively contains a row
// component.  Assignment of such values requires a structural deep copy;
// everything else is a flat byte copy.
func (m *Mode) HasRows() bool {
	if m.deep == 0 {
		m.deep = 1
		if m.computeHasRows() {
			m.deep = 2
		}
	}
	return m.deep == 2
}

func (m *Mode) computeHasRows() bool {
	switch m.Kind {
	case MRow:
		return true
	case MStruct:
		for _, f := range m.Fields {
			if f.Mode.HasRows() {
				return true
			}
		}
	case MUnion:
		for _, v := range m.Variants {
			if v.HasRows() {
				return true
			}
		}
	}
	return false
}

// Deref returns the mode obtained by dereferencing m.
func (m *Mode) Deref() *Mode {
	if m.Kind != MRef {
		return nil
	}
	return m.Sub
}

// VariantIndex returns the position of variant v within union m, or -1.
func (m *Mode) VariantIndex(v *Mode) int {
	for i, u := range m.Variants {
		if u == v {
			return i
		}
	}
	return -1
}

func (m *Mode) String() string {
	if m == nil {
		return "NOMODE"
	}
	switch m.Kind {
	case MRef:
		return "REF " + m.Sub.String()
	case MRow:
		return "[] " + m.Sub.String()
	case MProc:
		if len(m.Params) == 0 {
			return "PROC " + m.Sub.String()
		}
		var buf bytes.Buffer
		buf.WriteString("PROC (")
		for i, p := range m.Params {
			if i > 0 {
				buf.WriteString(", ")
			}
			buf.WriteString(p.String())
		}
		buf.WriteString(") ")
		buf.WriteString(m.Sub.String())
		return buf.String()
	case MStruct:
		var buf bytes.Buffer
		buf.WriteString("STRUCT (")
		for i, f := range m.Fields {
			if i > 0 {
				buf.WriteString(", ")
			}
			fmt.Fprintf(&buf, "%s %s", f.Mode, f.Name)
		}
		buf.WriteString(")")
		return buf.String()
	case MUnion:
		var buf bytes.Buffer
		buf.WriteString("UNION (")
		for i, v := range m.Variants {
			if i > 0 {
				buf.WriteString(", ")
			}
			buf.WriteString(v.String())
		}
		buf.WriteString(")")
		return buf.String()
	default:
		return m.Kind.String()
	}
}

// ModeTable interns modes so that structural equality coincides with pointer
// identity.  A Program owns exactly one table; the well-known primitive modes
// occupy fixed low indexes.
type ModeTable struct {
	Modes []*Mode
}

// Well-known modes, shared by every table.
var (
	ModeVoid   = &Mode{Kind: MVoid, ID: 0}
	ModeInt    = &Mode{Kind: MInt, ID: 1}
	ModeReal   = &Mode{Kind: MReal, ID: 2}
	ModeBool   = &Mode{Kind: MBool, ID: 3}
	ModeChar   = &Mode{Kind: MChar, ID: 4}
	ModeString = &Mode{Kind: MRow, ID: 5, Sub: ModeChar}
)

// NewModeTable returns a table seeded with the primitive modes.
func NewModeTable() *ModeTable {
	return &ModeTable{Modes: []*Mode{
		ModeVoid, ModeInt, ModeReal, ModeBool, ModeChar, ModeString,
	}}
}

// Intern returns the canonical instance of m, adding it to the table when no
// structurally equal mode exists yet.  The components of m must already be
// canonical.
func (t *ModeTable) Intern(m *Mode) *Mode {
	for _, u := range t.Modes {
		if u.equal(m) {
			return u
		}
	}
	m.ID = len(t.Modes)
	t.Modes = append(t.Modes, m)
	return m
}

// Mode returns the mode with the given ID, or nil if the ID is out of range.
// Union tags store IDs, so the engine resolves tags through here.
func (t *ModeTable) Mode(id int64) *Mode {
	if id < 0 || id >= int64(len(t.Modes)) {
		return nil
	}
	return t.Modes[int(id)]
}

// equal compares modes structurally.  Component modes are assumed canonical
// so one level of field comparison suffices.
func (m *Mode) equal(o *Mode) bool {
	if m.Kind != o.Kind || m.Sub != o.Sub {
		return false
	}
	if len(m.Params) != len(o.Params) || len(m.Fields) != len(o.Fields) || len(m.Variants) != len(o.Variants) {
		return false
	}
	for i := range m.Params {
		if m.Params[i] != o.Params[i] {
			return false
		}
	}
	for i := range m.Fields {
		if m.Fields[i].Name != o.Fields[i].Name || m.Fields[i].Mode != o.Fields[i].Mode {
			return false
		}
	}
	for i := range m.Variants {
		if m.Variants[i] != o.Variants[i] {
			return false
		}
	}
	return true
}
