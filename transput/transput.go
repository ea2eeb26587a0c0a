// Package transput provides the engine-facing slice of the standard
// prelude: native routines that format values onto the Genie's output.  The
// wider transput subsystem (files, events, formatted transput) lives outside
// this core; these builtins exercise the same interface boundary it would.
package transput

import (
	"fmt"

	"github.com/a68go/a68go/a68"
)

// Builtins returns the standard prelude routines in a stable order.  The
// front end resolves identifiers against this table and the same table must
// be installed in the Program the Genie runs.
func Builtins() []*a68.Builtin {
	return []*a68.Builtin{
		{
			Name:     "print",
			Result:   a68.ModeVoid,
			Variadic: true,
			Fn:       builtinPrint,
		},
		{
			Name:   "newline",
			Result: a68.ModeVoid,
			Fn: func(g *a68.Genie, p *a68.Node, args []a68.Arg) ([]byte, error) {
				_, err := fmt.Fprintln(g.Out)
				return nil, err
			},
		},
		{
			Name:   "space",
			Result: a68.ModeVoid,
			Fn: func(g *a68.Genie, p *a68.Node, args []a68.Arg) ([]byte, error) {
				_, err := fmt.Fprint(g.Out, " ")
				return nil, err
			},
		},
	}
}

func builtinPrint(g *a68.Genie, p *a68.Node, args []a68.Arg) ([]byte, error) {
	for _, a := range args {
		if a.Mode.Kind == a68.MProc && len(a.Mode.Params) == 0 && a.Mode.Sub == a68.ModeVoid {
			// Layout routine: run it at its position in the list.
			if _, err := g.CallValue(p, a.Mode, g.ArgBytes(a)); err != nil {
				return nil, err
			}
			continue
		}
		if a.Mode.Size() == 0 {
			continue
		}
		if _, err := fmt.Fprint(g.Out, g.FormatValue(a.Mode, g.ArgBytes(a))); err != nil {
			return nil, err
		}
	}
	return nil, nil
}
