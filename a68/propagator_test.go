package a68_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a68go/a68go/a68"
	"github.com/a68go/a68go/syntax"
	"github.com/a68go/a68go/transput"
)

func runOnce(t *testing.T, prog *a68.Program, unoptimised bool) (string, []byte) {
	t.Helper()
	var out bytes.Buffer
	g := a68.New(prog)
	g.Out = &out
	g.Unoptimised = unoptimised
	require.NoError(t, g.Run())
	var top []byte
	if m := prog.Root.Mode; m != nil && m.Size() > 0 {
		top = append(top, g.VS.Top(m.Size())...)
	}
	return out.String(), top
}

// TestDispatchAgreement runs each program three times over one shared tree:
// once with the cache bypassed, once installing specializations and once
// hitting them.  Output and the yielded value bytes must agree throughout.
func TestDispatchAgreement(t *testing.T) {
	sources := []struct{ name, src string }{
		{"reads", "INT a := 3; INT b = 4; a * b + a"},
		{"captured", "BEGIN INT i := 1; BEGIN i := i + 2; print(i) END; i * 1 END"},
		{"call", "PROC sq = (INT n) INT: n * n; sq(7) + sq(2)"},
		{"subscript", "[1:3] INT v := (10, 20, 30); v[2] + 0"},
		{"widen", "REAL r := 1; r + 0.5"},
		{"loop", "INT s := 0; FOR k TO 4 DO s := s + k OD; s + 0"},
	}
	for _, tc := range sources {
		t.Run(tc.name, func(t *testing.T) {
			prog, err := syntax.Compile(tc.name, tc.src, transput.Builtins())
			require.NoError(t, err)
			refOut, refTop := runOnce(t, prog, true)
			for pass := 0; pass < 2; pass++ {
				out, top := runOnce(t, prog, false)
				assert.Equal(t, refOut, out)
				assert.Equal(t, refTop, top)
			}
		})
	}
}
