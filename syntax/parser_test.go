package syntax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a68go/a68go/a68"
)

func mustParse(t *testing.T, src string) *Tree {
	t.Helper()
	tree, err := Parse("test", src)
	require.NoError(t, err)
	return tree
}

func TestParseDeclarations(t *testing.T) {
	tree := mustParse(t, "INT i := 1; REAL x; INT n = 42, m = 7")
	kids := tree.Root.Kids
	require.Len(t, kids, 4)

	assert.Equal(t, a68.NDecl, kids[0].Kind)
	assert.Equal(t, "i", kids[0].Sym)
	assert.False(t, kids[0].Identity)
	require.Len(t, kids[0].Kids, 1)

	assert.Equal(t, "x", kids[1].Sym)
	assert.Empty(t, kids[1].Kids)
	assert.Equal(t, a68.ModeReal, kids[1].Mode)

	assert.True(t, kids[2].Identity)
	assert.True(t, kids[3].Identity)
	assert.Equal(t, "m", kids[3].Sym)
}

func TestParseProcDeclaration(t *testing.T) {
	tree := mustParse(t, "PROC add = (INT a, INT b) INT: a + b")
	decl := tree.Root.Kids[0]
	require.Equal(t, a68.NDecl, decl.Kind)
	assert.True(t, decl.Identity)
	assert.Equal(t, "add", decl.Sym)

	routine := decl.Kids[0]
	require.Equal(t, a68.NRoutine, routine.Kind)
	require.Len(t, routine.Params, 2)
	assert.Equal(t, "a", routine.Params[0].Name)
	assert.Equal(t, a68.ModeInt, routine.Params[1].Mode)
	assert.Equal(t, a68.MProc, routine.Mode.Kind)
	assert.Equal(t, a68.NSerial, routine.Kids[0].Kind)
}

func TestParseFormulaPriority(t *testing.T) {
	tree := mustParse(t, "1 + 2 * 3")
	add := tree.Root.Kids[0]
	require.Equal(t, a68.NFormula, add.Kind)
	assert.Equal(t, "+", add.Sym)
	mul := add.Kids[1]
	require.Equal(t, a68.NFormula, mul.Kind)
	assert.Equal(t, "*", mul.Sym)
}

func TestParseOperatorAssignation(t *testing.T) {
	tree := mustParse(t, "i +:= 2")
	n := tree.Root.Kids[0]
	require.Equal(t, a68.NAssign, n.Kind)
	assert.Equal(t, "+", n.Sym)
}

func TestParseLoopParts(t *testing.T) {
	tree := mustParse(t, "FOR k FROM 2 BY 3 TO 11 WHILE TRUE DO SKIP OD")
	loop := tree.Root.Kids[0]
	require.Equal(t, a68.NLoop, loop.Kind)
	assert.Equal(t, "k", loop.Sym)
	assert.NotNil(t, loop.From)
	assert.NotNil(t, loop.By)
	assert.NotNil(t, loop.To)
	assert.NotNil(t, loop.While)
	assert.Nil(t, loop.Until)
	require.NotNil(t, loop.Body)
	assert.Equal(t, a68.NSerial, loop.Body.Kind)

	tree = mustParse(t, "DO SKIP UNTIL TRUE OD")
	loop = tree.Root.Kids[0]
	assert.Equal(t, "", loop.Sym)
	assert.NotNil(t, loop.Until)
}

func TestParseLabels(t *testing.T) {
	tree := mustParse(t, "again: SKIP; GOTO again")
	root := tree.Root
	require.Len(t, root.Labels, 1)
	assert.Equal(t, "again", root.Labels[0].Name)
	assert.Equal(t, 0, root.Labels[0].Index)
	assert.Same(t, root, root.Labels[0].Block)
	assert.Equal(t, a68.NJump, root.Kids[1].Kind)
}

func TestParseParenForms(t *testing.T) {
	tree := mustParse(t, "(1, 2, 3)")
	coll := tree.Root.Kids[0]
	require.Equal(t, a68.NCollateral, coll.Kind)
	assert.Len(t, coll.Kids, 3)

	tree = mustParse(t, "(INT t := 3; t)")
	closed := tree.Root.Kids[0]
	require.Equal(t, a68.NClosed, closed.Kind)
	assert.Len(t, closed.Kids[0].Kids, 2)
}

func TestParseConformityBacktrack(t *testing.T) {
	tree := mustParse(t, "CASE u IN (INT i): 1, (REAL r): 2 OUT 3 ESAC")
	n := tree.Root.Kids[0]
	require.Equal(t, a68.NCaseUnion, n.Kind)
	require.Len(t, n.Kids, 3)
	assert.Equal(t, a68.ModeInt, n.Kids[1].Variant)
	assert.Equal(t, "r", n.Kids[2].Sym)
	assert.NotNil(t, n.Out)

	tree = mustParse(t, "CASE i IN (1 + 2), 9 ESAC")
	n = tree.Root.Kids[0]
	assert.Equal(t, a68.NCaseInt, n.Kind)
	require.Len(t, n.Kids, 3)
}

func TestParseRoutineTextUnit(t *testing.T) {
	tree := mustParse(t, "p := VOID: GOTO stop")
	n := tree.Root.Kids[0]
	require.Equal(t, a68.NAssign, n.Kind)
	rt := n.Kids[1]
	require.Equal(t, a68.NRoutine, rt.Kind)
	assert.Empty(t, rt.Params)
	assert.Equal(t, a68.ModeVoid, rt.Mode.Sub)

	tree = mustParse(t, "q := (INT n) INT: n * n")
	rt = tree.Root.Kids[0].Kids[1]
	require.Equal(t, a68.NRoutine, rt.Kind)
	require.Len(t, rt.Params, 1)
}

func TestParsePartialCall(t *testing.T) {
	tree := mustParse(t, "f(1, )")
	call := tree.Root.Kids[0]
	require.Equal(t, a68.NCall, call.Kind)
	require.Len(t, call.Kids, 3)
	assert.Equal(t, a68.NEmptyArg, call.Kids[2].Kind)

	tree = mustParse(t, "f(, 2)")
	call = tree.Root.Kids[0]
	assert.Equal(t, a68.NEmptyArg, call.Kids[1].Kind)
}

func TestParseModeDecl(t *testing.T) {
	tree := mustParse(t, "MODE PAIR = STRUCT (INT left, INT right); PAIR p")
	require.Len(t, tree.Root.Kids, 1)
	decl := tree.Root.Kids[0]
	require.Equal(t, a68.NDecl, decl.Kind)
	require.Equal(t, a68.MStruct, decl.Mode.Kind)
	require.Len(t, decl.Mode.Fields, 2)
	assert.Equal(t, "right", decl.Mode.Fields[1].Name)
	assert.Equal(t, a68.WordSize, decl.Mode.Fields[1].Offset)
}

func TestParseBoundedRowDecl(t *testing.T) {
	tree := mustParse(t, "[1:3] INT a")
	decl := tree.Root.Kids[0]
	require.Equal(t, a68.NDecl, decl.Kind)
	require.Equal(t, a68.MRow, decl.Mode.Kind)
	assert.NotNil(t, decl.From)
	assert.NotNil(t, decl.To)
}

func TestParseSelection(t *testing.T) {
	tree := mustParse(t, "left OF p")
	n := tree.Root.Kids[0]
	require.Equal(t, a68.NSelect, n.Kind)
	assert.Equal(t, "left", n.Sym)
	assert.Equal(t, a68.NIdent, n.Kids[0].Kind)
}

func TestParseErrors(t *testing.T) {
	for _, src := range []string{
		"IF TRUE THEN 1",
		"BEGIN 1; END",
		"INT := 3",
		"1 +",
		"MODE INT = REAL",
	} {
		_, err := Parse("test", src)
		assert.Error(t, err, "source %q", src)
	}
}
