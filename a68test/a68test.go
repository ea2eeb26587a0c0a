// Package a68test runs source programs through the front end and the
// engine, comparing output against expectations.  Every program runs twice,
// once with the self-optimizing dispatch enabled and once with it bypassed,
// and the two runs must agree.
package a68test

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/a68go/a68go/a68"
	"github.com/a68go/a68go/syntax"
	"github.com/a68go/a68go/transput"
)

// Runner configures program execution for a test suite.
type Runner struct {
	// Builtins overrides the standard prelude when non-nil.
	Builtins []*a68.Builtin

	// StackLimit and FrameLimit bound the machine when positive.
	StackLimit int
	FrameLimit int
}

func (r *Runner) builtins() []*a68.Builtin {
	if r.Builtins != nil {
		return r.Builtins
	}
	return transput.Builtins()
}

// Run compiles and executes source, returning the program's output.
func (r *Runner) Run(name, source string, unoptimised bool) (string, error) {
	prog, err := syntax.Compile(name, source, r.builtins())
	if err != nil {
		return "", err
	}
	var out bytes.Buffer
	g := a68.New(prog)
	g.Out = &out
	g.Unoptimised = unoptimised
	g.StackLimit = r.StackLimit
	g.FrameLimit = r.FrameLimit
	err = g.Run()
	return out.String(), err
}

// TestProgram is one source program with its expected behavior.  Output is
// compared exactly.  Error, when non-empty, must be a substring of the
// run's error text; output produced before the error is still compared.
type TestProgram struct {
	Name   string `yaml:"name"`
	Source string `yaml:"source"`
	Output string `yaml:"output"`
	Error  string `yaml:"error"`
}

// TestSuite is a named set of test programs.
type TestSuite []TestProgram

// RunTestSuite runs every program in the suite on a fresh machine, in both
// dispatch configurations.
func RunTestSuite(t *testing.T, r *Runner, tests TestSuite) {
	t.Helper()
	for i, test := range tests {
		name := test.Name
		if name == "" {
			name = fmt.Sprintf("program%d", i)
		}
		t.Run(name, func(t *testing.T) {
			var outputs [2]string
			for pass, unoptimised := range []bool{false, true} {
				out, err := r.Run(name, test.Source, unoptimised)
				outputs[pass] = out
				if test.Error == "" {
					if err != nil {
						t.Errorf("unoptimised=%v: unexpected error: %v", unoptimised, err)
						return
					}
				} else {
					if err == nil {
						t.Errorf("unoptimised=%v: expected an error containing %q", unoptimised, test.Error)
						return
					}
					if !strings.Contains(err.Error(), test.Error) {
						t.Errorf("unoptimised=%v: error %q does not contain %q", unoptimised, err, test.Error)
						return
					}
				}
				if out != test.Output {
					t.Errorf("unoptimised=%v: output %q, expected %q", unoptimised, out, test.Output)
					return
				}
			}
			if outputs[0] != outputs[1] {
				t.Errorf("optimised output %q differs from unoptimised %q", outputs[0], outputs[1])
			}
		})
	}
}

// RunTestFile loads a yaml test suite and runs it.
func RunTestFile(t *testing.T, r *Runner, path string) {
	t.Helper()
	source, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("unable to read test file: %v", err)
	}
	var tests TestSuite
	if err := yaml.Unmarshal(source, &tests); err != nil {
		t.Fatalf("unable to parse test file %s: %v", path, err)
	}
	RunTestSuite(t, r, tests)
}
