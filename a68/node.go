package a68

// NodeKind is the syntactic kind of a Node.
type NodeKind uint

// Possible NodeKind values.  Coercion kinds are materialized by the front
// end; the engine executes coercions but never inserts them.
const (
	NInvalid NodeKind = iota

	NDenot    // literal denotation
	NIdent    // applied identifier
	NDecl     // variable or identity declaration
	NAssign   // destination := source
	NGen      // LOC or HEAP generator
	NNil      // NIL
	NSkip     // SKIP: undefined placeholder of the required mode
	NFormula  // monadic or dyadic operator application
	NCall     // procedure call, possibly partially parametrized
	NEmptyArg // unbound actual-parameter slot in a partial call
	NRoutine  // routine text yielding a procedure value
	NJump     // GOTO label

	NClosed     // closed clause
	NSerial     // serial clause
	NCollateral // row or structure display
	NCond       // conditional clause
	NCaseInt    // integer case clause
	NCaseUnion  // conformity case clause
	NLoop       // loop clause

	NDeref    // dereference coercion
	NWiden    // widening coercion
	NUnite    // uniting coercion
	NRowing   // rowing coercion
	NDeproc   // deproceduring coercion
	NJumpProc // jump in a strong procedure position: wrap, do not invoke

	NIndex  // subscripted row
	NSelect // field selection

	numNodeKinds
)

var nodeKindStrings = [numNodeKinds]string{
	NInvalid:    "invalid",
	NDenot:      "denotation",
	NIdent:      "identifier",
	NDecl:       "declaration",
	NAssign:     "assignation",
	NGen:        "generator",
	NNil:        "NIL",
	NSkip:       "SKIP",
	NFormula:    "formula",
	NCall:       "call",
	NEmptyArg:   "empty actual parameter",
	NRoutine:    "routine text",
	NJump:       "jump",
	NClosed:     "closed clause",
	NSerial:     "serial clause",
	NCollateral: "collateral clause",
	NCond:       "conditional clause",
	NCaseInt:    "case clause",
	NCaseUnion:  "conformity clause",
	NLoop:       "loop clause",
	NDeref:      "dereference",
	NWiden:      "widening",
	NUnite:      "uniting",
	NRowing:     "rowing",
	NDeproc:     "deproceduring",
	NJumpProc:   "jump procedure",
	NIndex:      "subscript",
	NSelect:     "selection",
}

func (k NodeKind) String() string {
	if k >= numNodeKinds {
		return nodeKindStrings[NInvalid]
	}
	return nodeKindStrings[k]
}

// Label is a resumption target declared in a serial clause.  Block is the
// serial clause node whose frame holds the resumption point and Index is the
// position of the labelled unit within that clause.
type Label struct {
	Name  string
	Block *Node
	Index int
}

// Param is one formal parameter of a routine text.  Offset is the
// frame-relative byte offset the argument is copied to.
type Param struct {
	Name   string
	Mode   *Mode
	Offset int
}

// Node is one construct of a finalized program tree.  The front end resolves
// every node's mode, assigns identifier levels and offsets, and materializes
// implicit coercions before the engine ever sees the tree.  The engine
// mutates only the embedded propagator cell.
type Node struct {
	Kind NodeKind
	Mode *Mode // resolved result mode
	Kids []*Node

	// Source position for diagnostics.
	Line int
	Col  int

	// Denotation payload.  Int doubles as the BOOL and CHAR payload.
	Int  int64
	Real float64
	Str  string

	// Identifier binding: Level static links up from the current frame,
	// Offset bytes into the target frame.  Builtin is the native procedure
	// index plus one for identifiers bound to builtins, 0 otherwise.
	Sym     string
	Level   int
	Offset  int
	Builtin int

	// Identity declarations bind a value; variable declarations bind a name.
	Identity bool

	// Block bookkeeping for serial clauses (and loop counter frames).
	Locals  int
	Rebuild bool
	Labels  []*Label

	// Operator index for formulas.
	Op int

	// Routine texts.
	Params []Param

	// Jumps.
	Label *Label

	// Conformity case: the variant matched by a branch closed clause.
	Variant *Mode

	// Case clauses: the out branch, if any.
	Out *Node

	// Loop parts, any of which may be nil.  Body is a serial clause run in a
	// frame reused across iterations.  Heap marks HEAP generators.
	From  *Node
	By    *Node
	To    *Node
	While *Node
	Until *Node
	Body  *Node
	Heap  bool

	// Selection: resolved field index within the selected structure.
	Field int

	regID int64
	prop  prop
}

// Child returns the i-th child or nil.
func (p *Node) Child(i int) *Node {
	if i < 0 || i >= len(p.Kids) {
		return nil
	}
	return p.Kids[i]
}

// FindLabel returns the label declared directly in serial clause p with the
// given name, or nil.
func (p *Node) FindLabel(name string) *Label {
	for _, l := range p.Labels {
		if l.Name == name {
			return l
		}
	}
	return nil
}

// Program is a finalized tree plus the tables the engine needs to execute
// it: the interned mode table, the node registry used to embed routine
// bodies and jump targets in procedure values, and the native procedures the
// front end resolved identifiers against.
type Program struct {
	Modes    *ModeTable
	Root     *Node // top-level serial clause
	Nodes    []*Node
	Builtins []*Builtin

	// File is the source name used in diagnostics.
	File string
}

// Register assigns p a stable ID so it can be embedded in a procedure
// value's stack image.  Registering a node twice returns the same ID.
func (prog *Program) Register(p *Node) int64 {
	if p.regID != 0 {
		return p.regID
	}
	prog.Nodes = append(prog.Nodes, p)
	p.regID = int64(len(prog.Nodes))
	return p.regID
}

// Node resolves a registered node ID.
func (prog *Program) Node(id int64) *Node {
	if id < 1 || id > int64(len(prog.Nodes)) {
		return nil
	}
	return prog.Nodes[id-1]
}
