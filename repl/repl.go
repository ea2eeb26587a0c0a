// Package repl implements an interactive read-run loop: each entered
// program is compiled and executed on a fresh machine, and its value, if
// any, is printed.
package repl

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"

	"github.com/a68go/a68go/a68"
	"github.com/a68go/a68go/syntax"
	"github.com/a68go/a68go/transput"
)

// RunRepl runs a simple repl reading programs from the terminal.
func RunRepl(prompt string) {
	rl, err := readline.New(prompt)
	if err != nil {
		panic(err)
	}
	contPrompt := strings.Repeat(" ", len(prompt)) // prompt had better be ascii...

	var buf []byte
	for {
		var line []byte
		line, err = rl.ReadSlice()
		if err != nil && err != readline.ErrInterrupt {
			break
		}
		if err == readline.ErrInterrupt {
			buf = nil
			rl.SetPrompt(prompt)
			continue
		}
		if len(buf) != 0 {
			buf = append(buf, '\n')
			line = append(buf, line...)
			buf = nil
			rl.SetPrompt(prompt)
		}
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}
		if incomplete(string(line)) {
			buf = line
			rl.SetPrompt(contPrompt)
			continue
		}
		runProgram(string(line))
	}
	if err != io.EOF {
		errln(err)
		return
	}
	errln("done")
}

// incomplete reports whether the text so far ends inside an open clause, in
// which case the repl keeps reading lines.
func incomplete(src string) bool {
	_, err := syntax.Parse("repl", src)
	return err != nil && strings.Contains(err.Error(), "EOF")
}

func runProgram(src string) {
	prog, err := syntax.Compile("repl", src, transput.Builtins())
	if err != nil {
		errln(err)
		return
	}
	g := a68.New(prog)
	g.Out = os.Stdout
	if err := g.Run(); err != nil {
		errln(err)
		return
	}
	m := prog.Root.Mode
	if m != nil && m.Size() > 0 {
		fmt.Println(g.FormatValue(m, g.VS.Top(m.Size())))
	}
}

func errln(v ...interface{}) {
	fmt.Fprintln(os.Stderr, v...)
}
