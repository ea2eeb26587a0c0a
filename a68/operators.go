package a68

// Operators are engine-resolved native routines.  The front end selects an
// operator index per formula from the table below; the engine applies it to
// already-evaluated operands on the value stack.  Statically resolving the
// operator here is what lets formula nodes skip dynamic dispatch.

type opImpl struct {
	name    string
	operand []*Mode // operand modes, one entry for monadic forms
	result  *Mode
	fn      func(g *Genie, p *Node) error
}

// FindOperator resolves an operator symbol against operand modes, returning
// the operator index and result mode.
func FindOperator(name string, operands []*Mode) (int, *Mode, bool) {
	for i, op := range opTab {
		if op.name != name || len(op.operand) != len(operands) {
			continue
		}
		match := true
		for j := range operands {
			if op.operand[j] != operands[j] {
				match = false
				break
			}
		}
		if match {
			return i, op.result, true
		}
	}
	return 0, nil, false
}

// OperandModes returns the declared operand modes of operator op.
func OperandModes(op int) []*Mode {
	return opTab[op].operand
}

// formulaUnit evaluates operands left to right and applies the resolved
// operator.
func (g *Genie) formulaUnit(p *Node) error {
	for _, kid := range p.Kids {
		if err := g.exec(kid); err != nil {
			return err
		}
	}
	return opTab[p.Op].fn(g, p)
}

func push2Int(g *Genie, p *Node, x int64) error {
	if err := g.VS.PushInt(x); err != nil {
		return g.errorf(ErrResource, p, "%v", err)
	}
	return nil
}

func push2Real(g *Genie, p *Node, x float64) error {
	if err := g.VS.PushReal(x); err != nil {
		return g.errorf(ErrResource, p, "%v", err)
	}
	return nil
}

func push2Bool(g *Genie, p *Node, b bool) error {
	if err := g.VS.PushBool(b); err != nil {
		return g.errorf(ErrResource, p, "%v", err)
	}
	return nil
}

var ii = []*Mode{ModeInt, ModeInt}
var rr = []*Mode{ModeReal, ModeReal}
var bb = []*Mode{ModeBool, ModeBool}
var cc = []*Mode{ModeChar, ModeChar}

var opTab = []opImpl{
	// Integer dyadics.
	{"+", ii, ModeInt, func(g *Genie, p *Node) error {
		b := g.VS.PopInt()
		return push2Int(g, p, g.VS.PopInt()+b)
	}},
	{"-", ii, ModeInt, func(g *Genie, p *Node) error {
		b := g.VS.PopInt()
		return push2Int(g, p, g.VS.PopInt()-b)
	}},
	{"*", ii, ModeInt, func(g *Genie, p *Node) error {
		b := g.VS.PopInt()
		return push2Int(g, p, g.VS.PopInt()*b)
	}},
	{"OVER", ii, ModeInt, func(g *Genie, p *Node) error {
		b := g.VS.PopInt()
		a := g.VS.PopInt()
		if b == 0 {
			return g.errorf(ErrBounds, p, "division by zero")
		}
		return push2Int(g, p, a/b)
	}},
	{"MOD", ii, ModeInt, func(g *Genie, p *Node) error {
		b := g.VS.PopInt()
		a := g.VS.PopInt()
		if b == 0 {
			return g.errorf(ErrBounds, p, "division by zero")
		}
		m := a % b
		if m < 0 {
			if b > 0 {
				m += b
			} else {
				m -= b
			}
		}
		return push2Int(g, p, m)
	}},
	{"/", ii, ModeReal, func(g *Genie, p *Node) error {
		b := g.VS.PopInt()
		a := g.VS.PopInt()
		if b == 0 {
			return g.errorf(ErrBounds, p, "division by zero")
		}
		return push2Real(g, p, float64(a)/float64(b))
	}},
	{"=", ii, ModeBool, func(g *Genie, p *Node) error {
		b := g.VS.PopInt()
		return push2Bool(g, p, g.VS.PopInt() == b)
	}},
	{"/=", ii, ModeBool, func(g *Genie, p *Node) error {
		b := g.VS.PopInt()
		return push2Bool(g, p, g.VS.PopInt() != b)
	}},
	{"<", ii, ModeBool, func(g *Genie, p *Node) error {
		b := g.VS.PopInt()
		return push2Bool(g, p, g.VS.PopInt() < b)
	}},
	{"<=", ii, ModeBool, func(g *Genie, p *Node) error {
		b := g.VS.PopInt()
		return push2Bool(g, p, g.VS.PopInt() <= b)
	}},
	{">", ii, ModeBool, func(g *Genie, p *Node) error {
		b := g.VS.PopInt()
		return push2Bool(g, p, g.VS.PopInt() > b)
	}},
	{">=", ii, ModeBool, func(g *Genie, p *Node) error {
		b := g.VS.PopInt()
		return push2Bool(g, p, g.VS.PopInt() >= b)
	}},

	// Real dyadics.
	{"+", rr, ModeReal, func(g *Genie, p *Node) error {
		b := g.VS.PopReal()
		return push2Real(g, p, g.VS.PopReal()+b)
	}},
	{"-", rr, ModeReal, func(g *Genie, p *Node) error {
		b := g.VS.PopReal()
		return push2Real(g, p, g.VS.PopReal()-b)
	}},
	{"*", rr, ModeReal, func(g *Genie, p *Node) error {
		b := g.VS.PopReal()
		return push2Real(g, p, g.VS.PopReal()*b)
	}},
	{"/", rr, ModeReal, func(g *Genie, p *Node) error {
		b := g.VS.PopReal()
		a := g.VS.PopReal()
		if b == 0 {
			return g.errorf(ErrBounds, p, "division by zero")
		}
		return push2Real(g, p, a/b)
	}},
	{"=", rr, ModeBool, func(g *Genie, p *Node) error {
		b := g.VS.PopReal()
		return push2Bool(g, p, g.VS.PopReal() == b)
	}},
	{"/=", rr, ModeBool, func(g *Genie, p *Node) error {
		b := g.VS.PopReal()
		return push2Bool(g, p, g.VS.PopReal() != b)
	}},
	{"<", rr, ModeBool, func(g *Genie, p *Node) error {
		b := g.VS.PopReal()
		return push2Bool(g, p, g.VS.PopReal() < b)
	}},
	{"<=", rr, ModeBool, func(g *Genie, p *Node) error {
		b := g.VS.PopReal()
		return push2Bool(g, p, g.VS.PopReal() <= b)
	}},
	{">", rr, ModeBool, func(g *Genie, p *Node) error {
		b := g.VS.PopReal()
		return push2Bool(g, p, g.VS.PopReal() > b)
	}},
	{">=", rr, ModeBool, func(g *Genie, p *Node) error {
		b := g.VS.PopReal()
		return push2Bool(g, p, g.VS.PopReal() >= b)
	}},

	// Boolean dyadics.  Operands are evaluated before application, so these
	// do not short-circuit; ALGOL 68 leaves that unspecified anyway.
	{"AND", bb, ModeBool, func(g *Genie, p *Node) error {
		b := g.VS.PopBool()
		return push2Bool(g, p, g.VS.PopBool() && b)
	}},
	{"OR", bb, ModeBool, func(g *Genie, p *Node) error {
		b := g.VS.PopBool()
		return push2Bool(g, p, g.VS.PopBool() || b)
	}},
	{"=", bb, ModeBool, func(g *Genie, p *Node) error {
		b := g.VS.PopBool()
		return push2Bool(g, p, g.VS.PopBool() == b)
	}},

	// Character comparison.
	{"=", cc, ModeBool, func(g *Genie, p *Node) error {
		b := g.VS.PopInt()
		return push2Bool(g, p, g.VS.PopInt() == b)
	}},
	{"/=", cc, ModeBool, func(g *Genie, p *Node) error {
		b := g.VS.PopInt()
		return push2Bool(g, p, g.VS.PopInt() != b)
	}},

	// String concatenation.
	{"+", []*Mode{ModeString, ModeString}, ModeString, func(g *Genie, p *Node) error {
		rb := g.Heap.Row(g.VS.PopInt())
		ra := g.Heap.Row(g.VS.PopInt())
		n := 0
		if ra != nil {
			n += ra.Len()
		}
		if rb != nil {
			n += rb.Len()
		}
		h := g.Heap.AllocRow(ModeChar, 1, int64(n), g.fp)
		g.GC.Pin(h)
		defer g.GC.Unpin(h)
		row := g.Heap.Row(h)
		i := 0
		for _, src := range []*Row{ra, rb} {
			if src == nil {
				continue
			}
			for j := 0; j < src.Len(); j++ {
				putWord(row.Store, i, getWord(src.Store, j))
				row.Init[i] = src.Init[j]
				i++
			}
		}
		return push2Int(g, p, h)
	}},

	// Monadics.
	{"-", []*Mode{ModeInt}, ModeInt, func(g *Genie, p *Node) error {
		return push2Int(g, p, -g.VS.PopInt())
	}},
	{"-", []*Mode{ModeReal}, ModeReal, func(g *Genie, p *Node) error {
		return push2Real(g, p, -g.VS.PopReal())
	}},
	{"NOT", []*Mode{ModeBool}, ModeBool, func(g *Genie, p *Node) error {
		return push2Bool(g, p, !g.VS.PopBool())
	}},
	{"ABS", []*Mode{ModeInt}, ModeInt, func(g *Genie, p *Node) error {
		x := g.VS.PopInt()
		if x < 0 {
			x = -x
		}
		return push2Int(g, p, x)
	}},
	{"ABS", []*Mode{ModeReal}, ModeReal, func(g *Genie, p *Node) error {
		x := g.VS.PopReal()
		if x < 0 {
			x = -x
		}
		return push2Real(g, p, x)
	}},
	{"ODD", []*Mode{ModeInt}, ModeBool, func(g *Genie, p *Node) error {
		x := g.VS.PopInt()
		if x < 0 {
			x = -x
		}
		return push2Bool(g, p, x%2 == 1)
	}},
}
