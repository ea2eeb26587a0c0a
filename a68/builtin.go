package a68

// Arg locates one evaluated actual parameter on the value stack.
type Arg struct {
	Mode *Mode
	Off  int
}

// BuiltinFn is a native routine.  It reads its arguments through the same
// stack primitives interpreted code uses and returns the result's stack
// image (nil for VOID).  Builtins run without a frame and own their stack
// discipline; they may re-enter the call dispatcher through the Genie.
type BuiltinFn func(g *Genie, p *Node, args []Arg) ([]byte, error)

// Builtin is a native procedure the front end can bind identifiers to.
type Builtin struct {
	Name     string
	Params   []*Mode
	Result   *Mode
	Variadic bool // accepts any number of arguments of any mode
	Fn       BuiltinFn
}

// Int reads an integer argument.
func (g *Genie) Int(a Arg) int64 {
	return getWord(g.VS.Bytes(a.Off, WordSize), 0)
}

// Real reads a real argument.
func (g *Genie) Real(a Arg) float64 {
	return getReal(g.VS.Bytes(a.Off, WordSize), 0)
}

// Bool reads a boolean argument.
func (g *Genie) Bool(a Arg) bool {
	return g.Int(a) != 0
}

// Bytes reads an argument's whole stack image.
func (g *Genie) ArgBytes(a Arg) []byte {
	return g.VS.Bytes(a.Off, a.Mode.Size())
}

// CallValue re-enters the call dispatcher on a procedure value, invoking it
// with no arguments and returning the result's stack image.  Builtins use
// it to run user-supplied handlers.
func (g *Genie) CallValue(p *Node, procMode *Mode, b []byte) ([]byte, error) {
	pv := unpackProc(b)
	mark := g.VS.Mark()
	if err := g.callProc(p, procMode, pv, nil, mark); err != nil {
		return nil, err
	}
	n := procMode.Sub.Size()
	res := make([]byte, n)
	copy(res, g.VS.Top(n))
	g.VS.Reset(mark)
	return res, nil
}
