package syntax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a68go/a68go/a68"
)

func mustResolve(t *testing.T, src string) *a68.Program {
	t.Helper()
	prog, err := Compile("test", src, nil)
	require.NoError(t, err)
	return prog
}

func TestResolveWiden(t *testing.T) {
	prog := mustResolve(t, "REAL r := 1")
	src := prog.Root.Kids[0].Kids[0]
	require.Equal(t, a68.NWiden, src.Kind)
	assert.Equal(t, a68.ModeReal, src.Mode)
	assert.Equal(t, a68.NDenot, src.Kids[0].Kind)
}

func TestResolveDerefOperand(t *testing.T) {
	prog := mustResolve(t, "INT i := 1; i + 2")
	formula := prog.Root.Kids[1]
	require.Equal(t, a68.NFormula, formula.Kind)
	lhs := formula.Kids[0]
	require.Equal(t, a68.NDeref, lhs.Kind)
	assert.Equal(t, a68.ModeInt, lhs.Mode)
	ident := lhs.Kids[0]
	require.Equal(t, a68.NIdent, ident.Kind)
	assert.Equal(t, a68.MRef, ident.Mode.Kind)
	assert.Equal(t, 0, ident.Level)
}

func TestResolveOperatorAssignation(t *testing.T) {
	prog := mustResolve(t, "INT i := 1; i +:= 2")
	n := prog.Root.Kids[1]
	require.Equal(t, a68.NAssign, n.Kind)
	formula := n.Kids[1]
	require.Equal(t, a68.NFormula, formula.Kind)
	assert.Equal(t, "+", formula.Sym)
	lhs := formula.Kids[0]
	require.Equal(t, a68.NDeref, lhs.Kind)
	// The left operand reuses the destination subtree.
	assert.Same(t, n.Kids[0], lhs.Kids[0])
}

func TestResolveIdentLevels(t *testing.T) {
	prog := mustResolve(t, "INT i := 1; BEGIN INT j := i; j END")
	closed := prog.Root.Kids[1]
	require.Equal(t, a68.NClosed, closed.Kind)
	serial := closed.Kids[0]

	decl := serial.Kids[0]
	outer := decl.Kids[0]
	require.Equal(t, a68.NDeref, outer.Kind)
	assert.Equal(t, 1, outer.Kids[0].Level)

	last := serial.Kids[1]
	require.Equal(t, a68.NIdent, last.Kind)
	assert.Equal(t, 0, last.Level)
	assert.Equal(t, a68.MRef, last.Mode.Kind)
}

func TestResolveStatementDeproc(t *testing.T) {
	prog := mustResolve(t, "PROC p = VOID: SKIP; p; SKIP")
	n := prog.Root.Kids[1]
	require.Equal(t, a68.NDeproc, n.Kind)
	assert.Equal(t, a68.ModeVoid, n.Mode)
	assert.Equal(t, a68.NIdent, n.Kids[0].Kind)
}

func TestResolvePartialCallMode(t *testing.T) {
	prog := mustResolve(t, "PROC add = (INT a, INT b) INT: a + b; add(1, )")
	call := prog.Root.Kids[1]
	require.Equal(t, a68.NCall, call.Kind)
	require.Equal(t, a68.MProc, call.Mode.Kind)
	require.Len(t, call.Mode.Params, 1)
	assert.Equal(t, a68.ModeInt, call.Mode.Params[0])
	assert.Equal(t, a68.ModeInt, call.Mode.Sub)
}

func TestResolveBalancing(t *testing.T) {
	prog := mustResolve(t, "IF TRUE THEN 1 ELSE 2.0 FI")
	cond := prog.Root.Kids[0]
	assert.Equal(t, a68.ModeReal, cond.Mode)
	assert.Equal(t, a68.NWiden, cond.Kids[1].Kind)

	prog = mustResolve(t, "IF TRUE THEN 1 FI")
	cond = prog.Root.Kids[0]
	assert.Equal(t, a68.ModeVoid, cond.Mode)
}

func TestResolveJumpProc(t *testing.T) {
	prog := mustResolve(t, "PROC VOID p; done: p := GOTO done")
	n := prog.Root.Kids[1]
	require.Equal(t, a68.NAssign, n.Kind)
	src := n.Kids[1]
	require.Equal(t, a68.NJumpProc, src.Kind)
	assert.Equal(t, a68.MProc, src.Mode.Kind)
}

func TestResolveRowDisplay(t *testing.T) {
	prog := mustResolve(t, "[1:3] INT a := (1, 2, 3)")
	src := prog.Root.Kids[0].Kids[0]
	require.Equal(t, a68.NCollateral, src.Kind)
	require.Equal(t, a68.MRow, src.Mode.Kind)
	assert.Equal(t, a68.ModeInt, src.Mode.Sub)
}

func TestResolveRowing(t *testing.T) {
	prog := mustResolve(t, "[1:1] INT a := 7")
	src := prog.Root.Kids[0].Kids[0]
	require.Equal(t, a68.NRowing, src.Kind)
	assert.Equal(t, a68.MRow, src.Mode.Kind)
}

func TestResolveUnite(t *testing.T) {
	prog := mustResolve(t, "UNION (INT, REAL) u := 1")
	src := prog.Root.Kids[0].Kids[0]
	require.Equal(t, a68.NUnite, src.Kind)
	assert.Equal(t, a68.MUnion, src.Mode.Kind)
	assert.Equal(t, a68.NDenot, src.Kids[0].Kind)
}

func TestResolveCharDenotation(t *testing.T) {
	prog := mustResolve(t, `CHAR c := "x"`)
	src := prog.Root.Kids[0].Kids[0]
	require.Equal(t, a68.NDenot, src.Kind)
	assert.Equal(t, a68.ModeChar, src.Mode)
	assert.Equal(t, int64('x'), src.Int)
}

func TestResolveLoopCounter(t *testing.T) {
	prog := mustResolve(t, "FOR k TO 3 DO k OD")
	loop := prog.Root.Kids[0]
	require.Equal(t, a68.NLoop, loop.Kind)
	assert.Equal(t, a68.WordSize, loop.Locals)
	counter := loop.Body.Kids[0]
	require.Equal(t, a68.NIdent, counter.Kind)
	assert.Equal(t, 1, counter.Level)
	assert.Equal(t, a68.ModeInt, counter.Mode)
}

func TestResolveVariadicBuiltin(t *testing.T) {
	builtins := []*a68.Builtin{{Name: "show", Variadic: true}}
	prog, err := Compile("test", "INT i := 1; show((i, 2))", builtins)
	require.NoError(t, err)
	call := prog.Root.Kids[1]
	require.Equal(t, a68.NCall, call.Kind)
	assert.Equal(t, a68.ModeVoid, call.Mode)
	// The display argument is flattened into the argument list and names
	// are dereferenced.
	require.Len(t, call.Kids, 3)
	assert.Equal(t, a68.NDeref, call.Kids[1].Kind)
	assert.Equal(t, a68.NDenot, call.Kids[2].Kind)
	assert.Equal(t, 1, call.Kids[0].Builtin)
}

func TestResolveConformityBinding(t *testing.T) {
	prog := mustResolve(t, "UNION (INT, REAL) u := 1; CASE u IN (INT i): i + 1, (REAL r): 2 ESAC")
	n := prog.Root.Kids[1]
	require.Equal(t, a68.NCaseUnion, n.Kind)
	assert.Equal(t, a68.ModeInt, n.Mode)
	branch := n.Kids[1]
	formula := branch.Kids[0].Kids[0]
	require.Equal(t, a68.NFormula, formula.Kind)
	ident := formula.Kids[0]
	require.Equal(t, a68.NIdent, ident.Kind)
	assert.Equal(t, 0, ident.Level)
	assert.Equal(t, 0, ident.Offset)
	assert.True(t, ident.Identity)
}

func TestResolveErrors(t *testing.T) {
	for _, tc := range []struct {
		src string
		msg string
	}{
		{"nowhere", "undeclared identifier"},
		{"(1, 2)", "a display needs a strong context"},
		{`IF TRUE THEN 1 ELSE "x" FI`, "branches do not balance"},
		{"1 := 2", "must be a name"},
		{"INT i := 1; i(2)", "call of a non-procedure"},
		{"PROC one = (INT a) INT: a; one(1, 2)", "actual parameters"},
		{"INT i := NIL", "reference context"},
		{"INT i := 1; INT i := 2", "declared twice"},
		{"GOTO nowhere", "undeclared label"},
		{"BOOL b := 1", "cannot coerce"},
	} {
		_, err := Compile("test", tc.src, nil)
		require.Error(t, err, "source %q", tc.src)
		assert.Contains(t, err.Error(), tc.msg, "source %q", tc.src)
	}
}
