package a68

import (
	"bytes"
	"fmt"
	"strconv"
)

// FormatValue renders a value's stack image for transput and the REPL.
// Formatting is deliberately plain: decimal integers, Go 'g' reals, TRUE
// and FALSE, character rows as strings.
func (g *Genie) FormatValue(m *Mode, b []byte) string {
	switch m.Kind {
	case MVoid:
		return "EMPTY"
	case MInt:
		return strconv.FormatInt(getWord(b, 0), 10)
	case MReal:
		return strconv.FormatFloat(getReal(b, 0), 'g', -1, 64)
	case MBool:
		if getWord(b, 0) != 0 {
			return "TRUE"
		}
		return "FALSE"
	case MChar:
		return string(rune(getWord(b, 0)))
	case MRow:
		row := g.Heap.Row(getWord(b, 0))
		if row == nil {
			return "()"
		}
		if m.Sub == ModeChar {
			var buf bytes.Buffer
			for i := 0; i < row.Len(); i++ {
				buf.WriteRune(rune(getWord(row.Store, i)))
			}
			return buf.String()
		}
		var buf bytes.Buffer
		buf.WriteString("(")
		esz := m.Sub.Size()
		for i := 0; i < row.Len(); i++ {
			if i > 0 {
				buf.WriteString(", ")
			}
			if !row.Init[i] {
				buf.WriteString("SKIP")
				continue
			}
			buf.WriteString(g.FormatValue(m.Sub, row.Store[i*esz:(i+1)*esz]))
		}
		buf.WriteString(")")
		return buf.String()
	case MStruct:
		var buf bytes.Buffer
		buf.WriteString("(")
		for i, f := range m.Fields {
			if i > 0 {
				buf.WriteString(", ")
			}
			buf.WriteString(g.FormatValue(f.Mode, b[f.Offset:f.Offset+f.Mode.Size()]))
		}
		buf.WriteString(")")
		return buf.String()
	case MUnion:
		tag := g.Prog.Modes.Mode(getWord(b, 0))
		if tag == nil {
			return "SKIP"
		}
		return g.FormatValue(tag, b[WordSize:WordSize+tag.Size()])
	case MRef:
		r := unpackRef(b)
		if r.seg == segNil {
			return "NIL"
		}
		return fmt.Sprintf("REF(%d+%d)", r.base, r.off)
	case MProc:
		return fmt.Sprintf("PROC(%s)", m.Sub)
	}
	return "SKIP"
}
