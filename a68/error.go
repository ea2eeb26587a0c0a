package a68

import (
	"bytes"
	"fmt"
)

// ErrorKind classifies fatal runtime conditions.  Every kind unwinds to the
// top-level driver; the engine performs no internal recovery.
type ErrorKind uint

// Possible ErrorKind values.
const (
	ErrScope    ErrorKind = iota // reference escapes its lifetime
	ErrInit                      // read of never-assigned storage
	ErrCoerce                    // unconvertible type pairing (front-end defect)
	ErrBounds                    // index, range or arithmetic violation
	ErrControl                   // malformed jump
	ErrResource                  // stack overflow or time budget exceeded

	numErrorKinds
)

var errorKindStrings = [numErrorKinds]string{
	ErrScope:    "scope error",
	ErrInit:     "initialization error",
	ErrCoerce:   "coercion error",
	ErrBounds:   "bounds error",
	ErrControl:  "control error",
	ErrResource: "resource error",
}

func (k ErrorKind) String() string {
	if k >= numErrorKinds {
		return "runtime error"
	}
	return errorKindStrings[k]
}

// RuntimeError is a fatal diagnostic raised during execution.  Node is the
// construct that faulted, when known.
type RuntimeError struct {
	Kind ErrorKind
	Node *Node
	Msg  string
}

func (e *RuntimeError) Error() string {
	var buf bytes.Buffer
	if e.Node != nil && e.Node.Line > 0 {
		fmt.Fprintf(&buf, "%d:%d: ", e.Node.Line, e.Node.Col)
	}
	buf.WriteString(e.Kind.String())
	if e.Node != nil {
		fmt.Fprintf(&buf, " in %s", e.Node.Kind)
		if e.Node.Mode != nil && e.Node.Mode.Kind != MVoid {
			fmt.Fprintf(&buf, " (%s)", e.Node.Mode)
		}
	}
	if e.Msg != "" {
		buf.WriteString(": ")
		buf.WriteString(e.Msg)
	}
	return buf.String()
}

func (g *Genie) errorf(kind ErrorKind, p *Node, format string, v ...interface{}) error {
	return &RuntimeError{Kind: kind, Node: p, Msg: fmt.Sprintf(format, v...)}
}

// jumpSignal propagates a non-local jump up through clause evaluators until
// the serial clause owning the target frame catches it.  It implements error
// so jumps ride the ordinary unwinding path, but it is not a diagnostic.
type jumpSignal struct {
	label  *Label
	target int // frame-stack position of the serial clause to resume
}

func (s *jumpSignal) Error() string {
	return fmt.Sprintf("uncaught jump to %s", s.label.Name)
}
