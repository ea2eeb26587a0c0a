package a68

// unitFunc evaluates one node, leaving the node's value on the value stack.
type unitFunc func(g *Genie, p *Node) error

// prop is the per-node memoization cell written lazily by the first
// execution: a specialized evaluation action plus the source node the
// specialization was derived from.  Caching is pure optimization; a cached
// unit's observable stack effects equal the generic path's.
type prop struct {
	unit      unitFunc
	source    *Node
	constant  []byte // the node's own value image, set only by installConst
	subscript []byte // a constant operand image cached by indexUnit
	seq       uint32 // bumped on every install; wrappers re-derive on change
	opSeq     uint32 // operand seq a wrapper specialized against
}

// exec evaluates p through its cached propagator, falling back to (and
// installing) the generic kind dispatch on first execution.  With
// Unoptimised set the cache is bypassed entirely.
func (g *Genie) exec(p *Node) error {
	if g.Unoptimised || p.prop.unit == nil {
		return g.generic(p)
	}
	return p.prop.unit(g, p)
}

// install memoizes a specialized unit for p.  Source records the node the
// specialization peels through, when any.
func (g *Genie) install(p *Node, u unitFunc, source *Node) {
	if g.Unoptimised {
		return
	}
	p.prop.unit = u
	p.prop.source = source
	p.prop.seq++
}

// installConst memoizes p as a compile-time constant with cached bytes.
func (g *Genie) installConst(p *Node, b []byte) {
	if g.Unoptimised {
		return
	}
	cached := make([]byte, len(b))
	copy(cached, b)
	p.prop.constant = cached
	p.prop.unit = constUnit
	p.prop.source = nil
	p.prop.seq++
}

func constUnit(g *Genie, p *Node) error {
	if err := g.VS.PushBytes(p.prop.constant); err != nil {
		return g.errorf(ErrResource, p, "%v", err)
	}
	return nil
}

// generic is the kind dispatch every node starts with.  Each arm both
// produces the node's value and, where a safe specialization exists,
// installs it for later visits.  A node whose arm never installs anything
// permanently stays generic, which is always correct.
func (g *Genie) generic(p *Node) error {
	switch p.Kind {
	case NDenot:
		return g.denotUnit(p)
	case NIdent:
		return g.identUnit(p)
	case NDecl:
		return g.declUnit(p)
	case NAssign:
		return g.assignUnit(p)
	case NGen:
		return g.genUnit(p)
	case NNil:
		return g.nilUnit(p)
	case NSkip:
		return g.skipUnit(p)
	case NFormula:
		return g.formulaUnit(p)
	case NCall:
		return g.callUnit(p)
	case NRoutine:
		return g.routineUnit(p)
	case NJump:
		return g.jumpUnit(p)
	case NClosed:
		return g.closedUnit(p)
	case NSerial:
		return g.execSerial(p)
	case NCollateral:
		return g.collateralUnit(p)
	case NCond:
		return g.condUnit(p)
	case NCaseInt:
		return g.caseIntUnit(p)
	case NCaseUnion:
		return g.caseUnionUnit(p)
	case NLoop:
		return g.loopUnit(p)
	case NDeref:
		return g.derefUnit(p)
	case NWiden:
		return g.widenUnit(p)
	case NUnite:
		return g.uniteUnit(p)
	case NRowing:
		return g.rowingUnit(p)
	case NDeproc:
		return g.deprocUnit(p)
	case NJumpProc:
		return g.jumpProcUnit(p)
	case NIndex:
		return g.indexUnit(p)
	case NSelect:
		return g.selectUnit(p)
	case NEmptyArg:
		return g.errorf(ErrCoerce, p, "empty actual parameter evaluated directly")
	}
	return g.errorf(ErrCoerce, p, "no evaluation rule for %s", p.Kind)
}
