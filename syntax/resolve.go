package syntax

import (
	"fmt"

	"github.com/a68go/a68go/a68"
)

// Compile parses and resolves source text against a builtin table.
func Compile(file, src string, builtins []*a68.Builtin) (*a68.Program, error) {
	t, err := Parse(file, src)
	if err != nil {
		return nil, err
	}
	return Resolve(t, builtins)
}

// Resolve binds identifiers, assigns frame offsets and static levels,
// selects operators and materializes every implicit coercion, producing the
// finalized program the engine executes.
func Resolve(t *Tree, builtins []*a68.Builtin) (*a68.Program, error) {
	r := &resolver{
		tree:     t,
		file:     t.File,
		builtins: map[string]int{},
	}
	r.builtinTab = builtins
	r.builtinModes = make([]*a68.Mode, len(builtins))
	for i, b := range builtins {
		r.builtins[b.Name] = i
		result := b.Result
		if result == nil {
			result = a68.ModeVoid
		}
		r.builtinModes[i] = t.Modes.Intern(&a68.Mode{
			Kind:   a68.MProc,
			Sub:    result,
			Params: b.Params,
		})
	}

	r.push()
	if err := r.resolveSerial(t.Root); err != nil {
		return nil, err
	}
	t.Root.Locals = r.top().size
	r.pop()

	return &a68.Program{
		Modes:    t.Modes,
		Root:     t.Root,
		Builtins: builtins,
		File:     t.File,
	}, nil
}

type binding struct {
	mode     *a68.Mode // slot mode; nil for labels
	offset   int
	identity bool
	label    *a68.Label
}

// scope mirrors one runtime frame: the resolver's scope stack at any point
// matches the static-link chain the engine will walk, so the stack distance
// to a binding is exactly the identifier's static level.
type scope struct {
	names map[string]*binding
	size  int
}

func (sc *scope) alloc(m *a68.Mode) int {
	off := sc.size
	sc.size += m.Size()
	return off
}

type resolver struct {
	tree         *Tree
	file         string
	scopes       []*scope
	builtins     map[string]int
	builtinTab   []*a68.Builtin
	builtinModes []*a68.Mode
}

func (r *resolver) push() *scope {
	sc := &scope{names: map[string]*binding{}}
	r.scopes = append(r.scopes, sc)
	return sc
}

func (r *resolver) pop() {
	r.scopes = r.scopes[:len(r.scopes)-1]
}

func (r *resolver) top() *scope {
	return r.scopes[len(r.scopes)-1]
}

func (r *resolver) lookup(name string) (*binding, int) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if b, ok := r.scopes[i].names[name]; ok {
			return b, len(r.scopes) - 1 - i
		}
	}
	return nil, 0
}

func (r *resolver) errf(n *a68.Node, format string, v ...interface{}) error {
	msg := fmt.Sprintf(format, v...)
	if n == nil {
		return fmt.Errorf("%s: %s", r.file, msg)
	}
	return fmt.Errorf("%s:%d:%d: %s", r.file, n.Line, n.Col, msg)
}

// intern builds a derived mode in the program's table.
func (r *resolver) intern(m *a68.Mode) *a68.Mode {
	return r.tree.Modes.Intern(m)
}

// declare registers a name in the innermost scope.
func (r *resolver) declare(n *a68.Node, name string, b *binding) error {
	sc := r.top()
	if _, ok := sc.names[name]; ok {
		return r.errf(n, "%s declared twice in one range", name)
	}
	sc.names[name] = b
	return nil
}

// scanSerial pre-registers the declarations and labels of a serial clause
// so applied occurrences may precede their declaration, which mutually
// recursive procedures and backward jumps require.
func (r *resolver) scanSerial(serial *a68.Node) error {
	for _, l := range serial.Labels {
		if err := r.declare(serial, l.Name, &binding{label: l}); err != nil {
			return err
		}
	}
	for _, kid := range serial.Kids {
		if kid.Kind != a68.NDecl {
			continue
		}
		off := r.top().alloc(kid.Mode)
		kid.Offset = off
		if err := r.declare(kid, kid.Sym, &binding{
			mode:     kid.Mode,
			offset:   off,
			identity: kid.Identity,
		}); err != nil {
			return err
		}
	}
	return nil
}

// resolveSerial resolves the items of a serial clause inside the scope its
// caller pushed.  The clause's mode is its final unit's mode.
func (r *resolver) resolveSerial(serial *a68.Node) error {
	if err := r.scanSerial(serial); err != nil {
		return err
	}
	for i, kid := range serial.Kids {
		rk, err := r.resolveUnit(kid)
		if err != nil {
			return err
		}
		if rk.Kind == a68.NCollateral && rk.Mode == nil {
			return r.errf(rk, "a display needs a strong context")
		}
		if i < len(serial.Kids)-1 {
			rk = r.deprocVoid(rk)
		}
		serial.Kids[i] = rk
	}
	serial.Mode = a68.ModeVoid
	if len(serial.Kids) > 0 {
		last := serial.Kids[len(serial.Kids)-1]
		if last.Mode == nil {
			last.Mode = a68.ModeVoid
		}
		if last.Kind != a68.NDecl {
			serial.Mode = last.Mode
		}
	}
	return nil
}

func (r *resolver) resolveUnit(n *a68.Node) (*a68.Node, error) {
	switch n.Kind {
	case a68.NDenot, a68.NNil, a68.NSkip, a68.NCollateral:
		return n, nil
	case a68.NIdent:
		return n, r.resolveIdent(n)
	case a68.NDecl:
		return n, r.resolveDecl(n)
	case a68.NAssign:
		return n, r.resolveAssign(n)
	case a68.NGen:
		if !n.Heap {
			n.Offset = r.top().alloc(n.Mode.Deref())
		}
		return n, nil
	case a68.NFormula:
		return n, r.resolveFormula(n)
	case a68.NCall:
		return n, r.resolveCall(n)
	case a68.NRoutine:
		return n, r.resolveRoutine(n)
	case a68.NJump:
		b, _ := r.lookup(n.Sym)
		if b == nil || b.label == nil {
			return nil, r.errf(n, "jump to undeclared label %s", n.Sym)
		}
		n.Label = b.label
		return n, nil
	case a68.NClosed:
		serial := n.Kids[0]
		sc := r.push()
		err := r.resolveSerial(serial)
		serial.Locals = sc.size
		r.pop()
		if err != nil {
			return nil, err
		}
		n.Mode = serial.Mode
		return n, nil
	case a68.NCond:
		return n, r.resolveCond(n)
	case a68.NCaseInt:
		return n, r.resolveCaseInt(n)
	case a68.NCaseUnion:
		return n, r.resolveCaseUnion(n)
	case a68.NLoop:
		return n, r.resolveLoop(n)
	case a68.NIndex:
		return n, r.resolveIndex(n)
	case a68.NSelect:
		return n, r.resolveSelect(n)
	}
	return nil, r.errf(n, "cannot resolve %s", n.Kind)
}

func (r *resolver) resolveIdent(n *a68.Node) error {
	if b, level := r.lookup(n.Sym); b != nil {
		if b.label != nil {
			return r.errf(n, "label %s used as a value", n.Sym)
		}
		n.Level = level
		n.Offset = b.offset
		n.Identity = b.identity
		if b.identity {
			n.Mode = b.mode
		} else {
			n.Mode = r.intern(&a68.Mode{Kind: a68.MRef, Sub: b.mode})
		}
		return nil
	}
	if i, ok := r.builtins[n.Sym]; ok {
		n.Builtin = i + 1
		n.Mode = r.builtinModes[i]
		return nil
	}
	return r.errf(n, "undeclared identifier %s", n.Sym)
}

func (r *resolver) resolveDecl(n *a68.Node) error {
	if n.From != nil {
		if err := r.resolveMeekInt(&n.From); err != nil {
			return err
		}
		if err := r.resolveMeekInt(&n.To); err != nil {
			return err
		}
	}
	if len(n.Kids) == 0 {
		return nil
	}
	src, err := r.resolveUnit(n.Kids[0])
	if err != nil {
		return err
	}
	src, err = r.strongTo(src, n.Mode)
	if err != nil {
		return err
	}
	n.Kids[0] = src
	return nil
}

func (r *resolver) resolveMeekInt(np **a68.Node) error {
	u, err := r.resolveUnit(*np)
	if err != nil {
		return err
	}
	u, err = r.weaken(u)
	if err != nil {
		return err
	}
	if u.Mode != a68.ModeInt {
		return r.errf(u, "expected INT, found %s", u.Mode)
	}
	*np = u
	return nil
}

func (r *resolver) resolveMeekBool(np **a68.Node) error {
	u, err := r.resolveUnit(*np)
	if err != nil {
		return err
	}
	u, err = r.weaken(u)
	if err != nil {
		return err
	}
	if u.Mode != a68.ModeBool {
		return r.errf(u, "expected BOOL, found %s", u.Mode)
	}
	*np = u
	return nil
}

func (r *resolver) resolveAssign(n *a68.Node) error {
	dest, err := r.resolveUnit(n.Kids[0])
	if err != nil {
		return err
	}
	if dest.Mode == nil || dest.Mode.Kind != a68.MRef {
		return r.errf(n, "destination of an assignation must be a name")
	}
	n.Kids[0] = dest
	elem := dest.Mode.Sub

	src, err := r.resolveUnit(n.Kids[1])
	if err != nil {
		return err
	}
	if n.Sym != "" {
		// Operator assignation: the destination's current value is the
		// left operand.  Sharing the destination subtree is safe; the
		// wrapped occurrence only dereferences it.
		lhs, err := r.weaken(r.wrap(a68.NDeref, dest, elem))
		if err != nil {
			return err
		}
		src, err = r.weaken(src)
		if err != nil {
			return err
		}
		formula := &a68.Node{
			Kind: a68.NFormula,
			Sym:  n.Sym,
			Line: n.Line,
			Col:  n.Col,
			Kids: []*a68.Node{lhs, src},
		}
		if err := r.selectOperator(formula); err != nil {
			return err
		}
		src = formula
	}
	src, err = r.strongTo(src, elem)
	if err != nil {
		return err
	}
	n.Kids[1] = src
	n.Mode = dest.Mode
	return nil
}

func (r *resolver) resolveFormula(n *a68.Node) error {
	for i, kid := range n.Kids {
		rk, err := r.resolveUnit(kid)
		if err != nil {
			return err
		}
		rk, err = r.weaken(rk)
		if err != nil {
			return err
		}
		n.Kids[i] = rk
	}
	return r.selectOperator(n)
}

// selectOperator resolves a formula's operator against its already-weakened
// operand modes, trying widened integer operands when no exact
// implementation exists.
func (r *resolver) selectOperator(n *a68.Node) error {
	modes := make([]*a68.Mode, len(n.Kids))
	for i, kid := range n.Kids {
		modes[i] = kid.Mode
	}
	if op, result, ok := a68.FindOperator(n.Sym, modes); ok {
		n.Op = op
		n.Mode = result
		return nil
	}
	for mask := 1; mask < 1<<len(modes); mask++ {
		widened := make([]*a68.Mode, len(modes))
		ok := true
		for i, m := range modes {
			widened[i] = m
			if mask&(1<<i) != 0 {
				if m != a68.ModeInt {
					ok = false
					break
				}
				widened[i] = a68.ModeReal
			}
		}
		if !ok {
			continue
		}
		op, result, found := a68.FindOperator(n.Sym, widened)
		if !found {
			continue
		}
		for i := range n.Kids {
			if mask&(1<<i) != 0 {
				n.Kids[i] = r.wrap(a68.NWiden, n.Kids[i], a68.ModeReal)
			}
		}
		n.Op = op
		n.Mode = result
		return nil
	}
	if len(modes) == 1 {
		return r.errf(n, "no operator %s for %s", n.Sym, modes[0])
	}
	return r.errf(n, "no operator %s for %s and %s", n.Sym, modes[0], modes[1])
}

func (r *resolver) resolveCall(n *a68.Node) error {
	callee, err := r.resolveUnit(n.Kids[0])
	if err != nil {
		return err
	}
	if callee.Kind == a68.NIdent && callee.Builtin > 0 && r.builtinTab[callee.Builtin-1].Variadic {
		n.Kids[0] = callee
		return r.resolveVariadicCall(n)
	}
	for callee.Mode != nil && callee.Mode.Kind == a68.MRef {
		callee = r.wrap(a68.NDeref, callee, callee.Mode.Sub)
	}
	if callee.Mode == nil || callee.Mode.Kind != a68.MProc {
		return r.errf(n, "call of a non-procedure")
	}
	n.Kids[0] = callee

	params := callee.Mode.Params
	actuals := n.Kids[1:]
	if len(actuals) != len(params) {
		return r.errf(n, "%d actual parameters for %d formals", len(actuals), len(params))
	}
	var unfilled []*a68.Mode
	for i, a := range actuals {
		if a.Kind == a68.NEmptyArg {
			a.Mode = a68.ModeVoid
			unfilled = append(unfilled, params[i])
			continue
		}
		ra, err := r.resolveUnit(a)
		if err != nil {
			return err
		}
		ra, err = r.strongTo(ra, params[i])
		if err != nil {
			return err
		}
		n.Kids[i+1] = ra
	}
	if len(unfilled) > 0 {
		n.Mode = r.intern(&a68.Mode{
			Kind:   a68.MProc,
			Sub:    callee.Mode.Sub,
			Params: unfilled,
		})
		return nil
	}
	n.Mode = callee.Mode.Sub
	return nil
}

// resolveVariadicCall resolves a call of a variadic builtin: every actual is
// weakened instead of matched against a formal, and a single display
// argument contributes its elements one by one.
func (r *resolver) resolveVariadicCall(n *a68.Node) error {
	args := n.Kids[1:]
	if len(args) == 1 && args[0].Kind == a68.NCollateral {
		args = args[0].Kids
	}
	resolved := n.Kids[:1]
	for _, a := range args {
		if a.Kind == a68.NEmptyArg {
			return r.errf(a, "empty actual parameter in a call of %s", n.Kids[0].Sym)
		}
		ra, err := r.resolveUnit(a)
		if err != nil {
			return err
		}
		// Names are dereferenced but procedures stay procedure values:
		// a layout routine such as newline must run at its position in
		// the argument list, which the builtin arranges by invoking it.
		for ra.Mode == nil || ra.Mode.Kind == a68.MRef {
			if ra.Mode == nil {
				return r.errf(ra, "%s needs a strong context", ra.Kind)
			}
			ra = r.wrap(a68.NDeref, ra, ra.Mode.Sub)
		}
		resolved = append(resolved, ra)
	}
	n.Kids = resolved
	n.Mode = r.builtinTab[n.Kids[0].Builtin-1].Result
	if n.Mode == nil {
		n.Mode = a68.ModeVoid
	}
	return nil
}

func (r *resolver) resolveRoutine(n *a68.Node) error {
	body := n.Kids[0]
	sc := r.push()
	for i := range n.Params {
		prm := &n.Params[i]
		prm.Offset = sc.alloc(prm.Mode)
		if err := r.declare(n, prm.Name, &binding{
			mode:     prm.Mode,
			offset:   prm.Offset,
			identity: true,
		}); err != nil {
			r.pop()
			return err
		}
	}
	err := r.resolveSerial(body)
	if err == nil {
		err = r.coerceEnclosedSerial(body, n.Mode.Sub)
	}
	body.Locals = sc.size
	r.pop()
	return err
}

func (r *resolver) resolveCond(n *a68.Node) error {
	if err := r.resolveMeekBool(&n.Kids[0]); err != nil {
		return err
	}
	for i := 1; i < len(n.Kids); i++ {
		rk, err := r.resolveUnit(n.Kids[i])
		if err != nil {
			return err
		}
		n.Kids[i] = rk
	}
	branches := make([]*a68.Node, 0, 2)
	branches = append(branches, n.Kids[1])
	withDefault := len(n.Kids) < 3
	if !withDefault {
		branches = append(branches, n.Kids[2])
	}
	target, err := r.balanceTarget(n, branches, withDefault)
	if err != nil {
		return err
	}
	for i := 1; i < len(n.Kids); i++ {
		b, err := r.strongTo(n.Kids[i], target)
		if err != nil {
			return err
		}
		n.Kids[i] = b
	}
	n.Mode = target
	return nil
}

func (r *resolver) resolveCaseInt(n *a68.Node) error {
	if err := r.resolveMeekInt(&n.Kids[0]); err != nil {
		return err
	}
	for i := 1; i < len(n.Kids); i++ {
		rk, err := r.resolveUnit(n.Kids[i])
		if err != nil {
			return err
		}
		n.Kids[i] = rk
	}
	if n.Out != nil {
		out, err := r.resolveUnit(n.Out)
		if err != nil {
			return err
		}
		n.Out = out
	}
	branches := append([]*a68.Node{}, n.Kids[1:]...)
	if n.Out != nil {
		branches = append(branches, n.Out)
	}
	// An absent out part does not void the clause: an out-of-range
	// discriminant falls through to an undefined placeholder of the balanced
	// mode.
	target, err := r.balanceTarget(n, branches, false)
	if err != nil {
		return err
	}
	for i := 1; i < len(n.Kids); i++ {
		b, err := r.strongTo(n.Kids[i], target)
		if err != nil {
			return err
		}
		n.Kids[i] = b
	}
	if n.Out != nil {
		out, err := r.strongTo(n.Out, target)
		if err != nil {
			return err
		}
		n.Out = out
	}
	n.Mode = target
	return nil
}

func (r *resolver) resolveCaseUnion(n *a68.Node) error {
	disc, err := r.resolveUnit(n.Kids[0])
	if err != nil {
		return err
	}
	disc, err = r.weaken(disc)
	if err != nil {
		return err
	}
	if disc.Mode.Kind != a68.MUnion {
		return r.errf(n, "conformity on a non-united value of mode %s", disc.Mode)
	}
	n.Kids[0] = disc

	for _, branch := range n.Kids[1:] {
		if disc.Mode.VariantIndex(branch.Variant) < 0 {
			return r.errf(branch, "%s is not a variant of %s", branch.Variant, disc.Mode)
		}
		serial := branch.Kids[0]
		sc := r.push()
		if branch.Sym != "" {
			sc.size = branch.Variant.Size()
			if err := r.declare(branch, branch.Sym, &binding{
				mode:     branch.Variant,
				identity: true,
			}); err != nil {
				r.pop()
				return err
			}
		}
		err := r.resolveSerial(serial)
		serial.Locals = sc.size
		r.pop()
		if err != nil {
			return err
		}
		branch.Mode = serial.Mode
	}

	if n.Out != nil {
		out, err := r.resolveUnit(n.Out)
		if err != nil {
			return err
		}
		n.Out = out
	}
	branches := append([]*a68.Node{}, n.Kids[1:]...)
	if n.Out != nil {
		branches = append(branches, n.Out)
	}
	// As with the integer case, no out part means an unmatched tag falls
	// through to an undefined placeholder, not a void clause.
	target, err := r.balanceTarget(n, branches, false)
	if err != nil {
		return err
	}
	// Conformity branches are dispatched by variant tag, so the coercion
	// lands on the branch's final unit rather than wrapping the branch.
	for _, branch := range n.Kids[1:] {
		if err := r.coerceEnclosedSerial(branch.Kids[0], target); err != nil {
			return err
		}
		branch.Mode = target
	}
	if n.Out != nil {
		out, err := r.strongTo(n.Out, target)
		if err != nil {
			return err
		}
		n.Out = out
	}
	n.Mode = target
	return nil
}

func (r *resolver) resolveLoop(n *a68.Node) error {
	sc := r.push()
	defer r.pop()
	if n.Sym != "" {
		sc.size = a68.WordSize
		if err := r.declare(n, n.Sym, &binding{
			mode:     a68.ModeInt,
			identity: true,
		}); err != nil {
			return err
		}
	}
	if n.From != nil {
		if err := r.resolveMeekInt(&n.From); err != nil {
			return err
		}
	}
	if n.By != nil {
		if err := r.resolveMeekInt(&n.By); err != nil {
			return err
		}
	}
	if n.To != nil {
		if err := r.resolveMeekInt(&n.To); err != nil {
			return err
		}
	}
	if n.While != nil {
		if err := r.resolveMeekBool(&n.While); err != nil {
			return err
		}
	}
	n.Locals = sc.size

	body := n.Body
	bsc := r.push()
	err := r.resolveSerial(body)
	if err == nil && n.Until != nil {
		err = r.resolveMeekBool(&n.Until)
	}
	body.Locals = bsc.size
	body.Rebuild = bsc.size > 0
	r.pop()
	if err != nil {
		return err
	}
	n.Mode = a68.ModeVoid
	return nil
}

func (r *resolver) resolveIndex(n *a68.Node) error {
	src, err := r.resolveUnit(n.Kids[0])
	if err != nil {
		return err
	}
	for src.Mode != nil && src.Mode.Kind == a68.MProc && len(src.Mode.Params) == 0 {
		src = r.wrap(a68.NDeproc, src, src.Mode.Sub)
	}
	for src.Mode != nil && src.Mode.Kind == a68.MRef && src.Mode.Sub.Kind != a68.MRow {
		src = r.wrap(a68.NDeref, src, src.Mode.Sub)
	}
	if src.Mode == nil {
		return r.errf(n, "subscripting needs a value")
	}
	n.Kids[0] = src
	if err := r.resolveMeekInt(&n.Kids[1]); err != nil {
		return err
	}
	switch {
	case src.Mode.Kind == a68.MRow:
		n.Mode = src.Mode.Sub
	case src.Mode.Kind == a68.MRef && src.Mode.Sub.Kind == a68.MRow:
		n.Mode = r.intern(&a68.Mode{Kind: a68.MRef, Sub: src.Mode.Sub.Sub})
	default:
		return r.errf(n, "subscripting a value of mode %s", src.Mode)
	}
	return nil
}

func (r *resolver) resolveSelect(n *a68.Node) error {
	src, err := r.resolveUnit(n.Kids[0])
	if err != nil {
		return err
	}
	for src.Mode != nil && src.Mode.Kind == a68.MProc && len(src.Mode.Params) == 0 {
		src = r.wrap(a68.NDeproc, src, src.Mode.Sub)
	}
	for src.Mode != nil && src.Mode.Kind == a68.MRef && src.Mode.Sub.Kind != a68.MStruct {
		src = r.wrap(a68.NDeref, src, src.Mode.Sub)
	}
	if src.Mode == nil {
		return r.errf(n, "selection needs a value")
	}
	n.Kids[0] = src
	var st *a68.Mode
	isRef := false
	switch {
	case src.Mode.Kind == a68.MStruct:
		st = src.Mode
	case src.Mode.Kind == a68.MRef && src.Mode.Sub.Kind == a68.MStruct:
		st = src.Mode.Sub
		isRef = true
	default:
		return r.errf(n, "selection from a value of mode %s", src.Mode)
	}
	for i, f := range st.Fields {
		if f.Name == n.Sym {
			n.Field = i
			if isRef {
				n.Mode = r.intern(&a68.Mode{Kind: a68.MRef, Sub: f.Mode})
			} else {
				n.Mode = f.Mode
			}
			return nil
		}
	}
	return r.errf(n, "%s has no field %s", st, n.Sym)
}

// wrap inserts a coercion node around kid.
func (r *resolver) wrap(kind a68.NodeKind, kid *a68.Node, m *a68.Mode) *a68.Node {
	return &a68.Node{
		Kind: kind,
		Mode: m,
		Kids: []*a68.Node{kid},
		Line: kid.Line,
		Col:  kid.Col,
	}
}

// weaken dereferences names and deprocedures parameterless procedures until
// a plain value remains.  This is the coercion strength of operands,
// enquiries, subscripts and bounds.
func (r *resolver) weaken(n *a68.Node) (*a68.Node, error) {
	for {
		if n.Mode == nil {
			return nil, r.errf(n, "%s needs a strong context", n.Kind)
		}
		switch {
		case n.Mode.Kind == a68.MRef:
			n = r.wrap(a68.NDeref, n, n.Mode.Sub)
		case n.Mode.Kind == a68.MProc && len(n.Mode.Params) == 0:
			n = r.wrap(a68.NDeproc, n, n.Mode.Sub)
		default:
			return n, nil
		}
	}
}

// strongTo coerces n to mode m, materializing the full implicit-coercion
// pipeline: deproceduring, dereferencing, widening, uniting and rowing,
// plus the context-dependent meanings of SKIP, NIL, jumps and displays.
func (r *resolver) strongTo(n *a68.Node, m *a68.Mode) (*a68.Node, error) {
	if n.Mode == m {
		return n, nil
	}
	switch n.Kind {
	case a68.NSkip:
		if n.Mode == nil {
			n.Mode = m
			return n, nil
		}
	case a68.NNil:
		if n.Mode == nil {
			if m.Kind != a68.MRef {
				return nil, r.errf(n, "NIL needs a reference context, not %s", m)
			}
			n.Mode = m
			return n, nil
		}
	case a68.NJump:
		// A jump never yields; in a strong procedure position it becomes
		// a procedure that jumps when called, anywhere else it simply
		// assumes the required mode.
		if m.Kind == a68.MProc {
			return r.wrap(a68.NJumpProc, n, m), nil
		}
		n.Mode = m
		return n, nil
	case a68.NCollateral:
		if n.Mode == nil {
			return n, r.resolveDisplay(n, m)
		}
	case a68.NDenot:
		if m == a68.ModeChar && n.Mode == a68.ModeString {
			runes := []rune(n.Str)
			if len(runes) == 1 {
				n.Mode = a68.ModeChar
				n.Int = int64(runes[0])
				return n, nil
			}
		}
	}
	if n.Mode == nil {
		return nil, r.errf(n, "%s needs a strong context", n.Kind)
	}
	if m.Kind == a68.MVoid {
		return r.voidify(r.deprocVoid(n)), nil
	}
	if m.Kind == a68.MUnion && m.VariantIndex(n.Mode) >= 0 {
		return r.wrap(a68.NUnite, n, m), nil
	}
	if n.Mode.Kind == a68.MProc && len(n.Mode.Params) == 0 && m.Kind != a68.MProc {
		return r.strongTo(r.wrap(a68.NDeproc, n, n.Mode.Sub), m)
	}
	if n.Mode.Kind == a68.MRef {
		return r.strongTo(r.wrap(a68.NDeref, n, n.Mode.Sub), m)
	}
	if n.Mode == a68.ModeInt && (m == a68.ModeReal || m.Kind == a68.MUnion && m.VariantIndex(a68.ModeReal) >= 0) {
		return r.strongTo(r.wrap(a68.NWiden, n, a68.ModeReal), m)
	}
	if m.Kind == a68.MRow {
		elem, err := r.strongTo(n, m.Sub)
		if err == nil {
			return r.wrap(a68.NRowing, elem, m), nil
		}
	}
	return nil, r.errf(n, "cannot coerce %s to %s", n.Mode, m)
}

// resolveDisplay resolves a collateral clause against the strong context
// that gives its elements their modes.
func (r *resolver) resolveDisplay(n *a68.Node, m *a68.Mode) error {
	switch m.Kind {
	case a68.MRow:
		for i, kid := range n.Kids {
			rk, err := r.resolveUnit(kid)
			if err != nil {
				return err
			}
			rk, err = r.strongTo(rk, m.Sub)
			if err != nil {
				return err
			}
			n.Kids[i] = rk
		}
	case a68.MStruct:
		if len(n.Kids) != len(m.Fields) {
			return r.errf(n, "%d units in a display for %s", len(n.Kids), m)
		}
		for i, kid := range n.Kids {
			rk, err := r.resolveUnit(kid)
			if err != nil {
				return err
			}
			rk, err = r.strongTo(rk, m.Fields[i].Mode)
			if err != nil {
				return err
			}
			n.Kids[i] = rk
		}
	default:
		return r.errf(n, "a display cannot yield %s", m)
	}
	n.Mode = m
	return nil
}

// deprocVoid applies the deproceduring a void context performs: a name or
// value of a parameterless procedure mode in statement position is invoked,
// not discarded.
func (r *resolver) deprocVoid(n *a68.Node) *a68.Node {
	// A voided declaration pushes nothing, and a voided assignation keeps
	// the held procedure uninvoked.
	if n.Kind == a68.NDecl || n.Kind == a68.NAssign {
		return n
	}
	m := n.Mode
	if m == nil {
		return n
	}
	base := m
	for base.Kind == a68.MRef {
		base = base.Sub
	}
	if base.Kind != a68.MProc || len(base.Params) != 0 {
		return n
	}
	for n.Mode.Kind == a68.MRef {
		n = r.wrap(a68.NDeref, n, n.Mode.Sub)
	}
	return r.wrap(a68.NDeproc, n, n.Mode.Sub)
}

// voidify discards a unit's value by running it as the non-final item of a
// synthesized serial clause.
func (r *resolver) voidify(n *a68.Node) *a68.Node {
	if n.Mode == nil || n.Mode.Kind == a68.MVoid || n.Kind == a68.NDecl {
		if n.Mode == nil {
			n.Mode = a68.ModeVoid
		}
		return n
	}
	skip := &a68.Node{Kind: a68.NSkip, Mode: a68.ModeVoid, Line: n.Line, Col: n.Col}
	return &a68.Node{
		Kind: a68.NSerial,
		Mode: a68.ModeVoid,
		Kids: []*a68.Node{n, skip},
		Line: n.Line,
		Col:  n.Col,
	}
}

// coerceEnclosedSerial coerces the final unit of an already-resolved serial
// clause to the target mode, in place.  Routine bodies and conformity
// branches need the coercion inside the clause because the engine holds a
// reference to the clause node itself.
func (r *resolver) coerceEnclosedSerial(serial *a68.Node, m *a68.Mode) error {
	if len(serial.Kids) == 0 {
		if m.Kind != a68.MVoid {
			return r.errf(serial, "an empty clause cannot yield %s", m)
		}
		serial.Mode = a68.ModeVoid
		return nil
	}
	last := serial.Kids[len(serial.Kids)-1]
	if last.Kind == a68.NDecl {
		if m.Kind != a68.MVoid {
			return r.errf(last, "a declaration cannot yield %s", m)
		}
		serial.Mode = a68.ModeVoid
		return nil
	}
	cl, err := r.strongTo(last, m)
	if err != nil {
		return err
	}
	serial.Kids[len(serial.Kids)-1] = cl
	serial.Mode = m
	return nil
}

// coercibleMode reports whether a strong coercion path from one mode to
// another exists, without building nodes.  Balancing uses it to pick the
// target mode of a multi-branch clause.
func coercibleMode(from, to *a68.Mode) bool {
	if from == to {
		return true
	}
	if from == nil || to == nil {
		return false
	}
	if to.Kind == a68.MVoid {
		return true
	}
	if to.Kind == a68.MUnion && to.VariantIndex(from) >= 0 {
		return true
	}
	switch from.Kind {
	case a68.MRef:
		return coercibleMode(from.Sub, to)
	case a68.MProc:
		if len(from.Params) == 0 && coercibleMode(from.Sub, to) {
			return true
		}
	}
	if from == a68.ModeInt && coercibleMode(a68.ModeReal, to) {
		return true
	}
	if to.Kind == a68.MRow && coercibleMode(from, to.Sub) {
		return true
	}
	return false
}

// balanceTarget picks the mode every branch of a choice clause coerces to.
// A conditional with an elided else part is void (withDefault), as is any
// clause with a void branch.  Otherwise the first branch mode every other
// branch coerces to wins.
func (r *resolver) balanceTarget(n *a68.Node, branches []*a68.Node, withDefault bool) (*a68.Mode, error) {
	if withDefault {
		return a68.ModeVoid, nil
	}
	for _, b := range branches {
		if b.Mode == nil {
			continue
		}
		if b.Mode.Kind == a68.MVoid {
			return a68.ModeVoid, nil
		}
	}
	for _, cand := range branches {
		m := cand.Mode
		if m == nil {
			continue
		}
		if m.Kind == a68.MRef {
			// A name branch balances against value branches only after
			// dereferencing, so the dereferenced mode is also a
			// candidate.
			if r.allCoercible(branches, m.Sub) {
				return m.Sub, nil
			}
		}
		if r.allCoercible(branches, m) {
			return m, nil
		}
	}
	return nil, r.errf(n, "branches do not balance")
}

func (r *resolver) allCoercible(branches []*a68.Node, m *a68.Mode) bool {
	for _, b := range branches {
		if b.Mode == nil {
			continue
		}
		if !coercibleMode(b.Mode, m) {
			return false
		}
	}
	return true
}
