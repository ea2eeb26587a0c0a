package a68

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intDenot(v int64) *Node {
	return &Node{Kind: NDenot, Mode: ModeInt, Int: v}
}

func testProgram(kids ...*Node) *Program {
	root := &Node{Kind: NSerial, Kids: kids}
	if len(kids) > 0 {
		root.Mode = kids[len(kids)-1].Mode
	}
	return &Program{Modes: NewModeTable(), Root: root}
}

func TestGenieFormula(t *testing.T) {
	lhs, rhs := intDenot(20), intDenot(22)
	op, result, ok := FindOperator("+", []*Mode{ModeInt, ModeInt})
	require.True(t, ok)
	formula := &Node{Kind: NFormula, Sym: "+", Op: op, Mode: result, Kids: []*Node{lhs, rhs}}
	prog := testProgram(formula)

	g := New(prog)
	g.Out = io.Discard
	require.NoError(t, g.Run())
	assert.Equal(t, int64(42), getWord(g.VS.Top(WordSize), 0))

	// Denotations memoize their stack image on first execution.
	assert.NotNil(t, lhs.prop.constant)
	assert.Equal(t, int64(20), getWord(lhs.prop.constant, 0))

	// The generic path must agree with the cached one.
	g2 := New(prog)
	g2.Out = io.Discard
	g2.Unoptimised = true
	require.NoError(t, g2.Run())
	assert.Equal(t, int64(42), getWord(g2.VS.Top(WordSize), 0))
}

func TestGenieDivisionByZero(t *testing.T) {
	op, _, ok := FindOperator("OVER", []*Mode{ModeInt, ModeInt})
	require.True(t, ok)
	formula := &Node{Kind: NFormula, Sym: "OVER", Op: op, Mode: ModeInt, Kids: []*Node{intDenot(1), intDenot(0)}}
	g := New(testProgram(formula))
	g.Out = io.Discard
	err := g.Run()
	require.Error(t, err)
	re, ok := err.(*RuntimeError)
	require.True(t, ok)
	assert.Equal(t, ErrBounds, re.Kind)
}

func TestGenieJumpWithoutLiveFrame(t *testing.T) {
	detached := &Node{Kind: NSerial}
	label := &Label{Name: "nowhere", Block: detached}
	jump := &Node{Kind: NJump, Sym: "nowhere", Label: label, Mode: ModeVoid}
	g := New(testProgram(jump))
	g.Out = io.Discard
	err := g.Run()
	require.Error(t, err)
	re, ok := err.(*RuntimeError)
	require.True(t, ok)
	assert.Equal(t, ErrControl, re.Kind)
}

func TestGenieStackLimit(t *testing.T) {
	g := New(testProgram(intDenot(1)))
	g.Out = io.Discard
	g.StackLimit = 1
	err := g.Run()
	require.Error(t, err)
	re, ok := err.(*RuntimeError)
	require.True(t, ok)
	assert.Equal(t, ErrResource, re.Kind)
}
