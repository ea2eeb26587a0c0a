// Package syntax turns source text into a finalized program tree: scanning,
// parsing, mode construction, identifier binding and coercion insertion all
// happen here, so the execution engine only ever sees resolved trees.
package syntax

import (
	"fmt"
	"strconv"

	"github.com/a68go/a68go/a68"
	"github.com/a68go/a68go/syntax/token"
)

// Tree is a parsed but unresolved program.
type Tree struct {
	Root  *a68.Node
	Modes *a68.ModeTable
	File  string
}

// Parse scans and parses upper-stropped source text.  Declarers are
// constructed and interned during the parse; identifier binding and coercion
// insertion happen in Resolve.
func Parse(file, src string) (*Tree, error) {
	s := token.NewScanner(file, src)
	var toks []token.Token
	for {
		tok := s.Scan()
		if tok.Type == token.ERROR {
			return nil, fmt.Errorf("%s: %s", tok.Source, tok.Text)
		}
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	p := &parser{
		toks:    toks,
		modes:   a68.NewModeTable(),
		aliases: map[string]*a68.Mode{},
		file:    file,
	}
	root, err := p.parseSerial()
	if err != nil {
		return nil, err
	}
	if p.peek().Type != token.EOF {
		return nil, p.errorf("unexpected %s after program", p.peek().Type)
	}
	return &Tree{Root: root, Modes: p.modes, File: file}, nil
}

type parser struct {
	toks    []token.Token
	pos     int
	modes   *a68.ModeTable
	aliases map[string]*a68.Mode
	file    string
}

func (p *parser) peek() token.Token {
	return p.toks[p.pos]
}

func (p *parser) peekAt(i int) token.Token {
	if p.pos+i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+i]
}

func (p *parser) next() token.Token {
	tok := p.toks[p.pos]
	if tok.Type != token.EOF {
		p.pos++
	}
	return tok
}

func (p *parser) accept(typ token.Type) bool {
	if p.peek().Type == typ {
		p.next()
		return true
	}
	return false
}

func (p *parser) acceptBold(word string) bool {
	if p.peekBold(word) {
		p.next()
		return true
	}
	return false
}

func (p *parser) peekBold(word string) bool {
	tok := p.peek()
	return tok.Type == token.BOLD && tok.Text == word
}

func (p *parser) expect(typ token.Type) (token.Token, error) {
	tok := p.peek()
	if tok.Type != typ {
		return tok, p.errorf("expected %s, found %s", typ, p.describe(tok))
	}
	return p.next(), nil
}

func (p *parser) expectBold(word string) error {
	if !p.acceptBold(word) {
		return p.errorf("expected %s, found %s", word, p.describe(p.peek()))
	}
	return nil
}

func (p *parser) describe(tok token.Token) string {
	switch tok.Type {
	case token.BOLD, token.IDENT, token.OPERATOR:
		return fmt.Sprintf("%q", tok.Text)
	}
	return tok.Type.String()
}

func (p *parser) errorf(format string, v ...interface{}) error {
	loc := p.peek().Source
	return fmt.Errorf("%s: %s", loc, fmt.Sprintf(format, v...))
}

func (p *parser) node(kind a68.NodeKind, tok token.Token) *a68.Node {
	return &a68.Node{Kind: kind, Line: tok.Source.Line, Col: tok.Source.Col}
}

// serialEnders are the bold words that terminate an open serial clause.
var serialEnders = map[string]bool{
	"END": true, "FI": true, "ESAC": true, "OD": true,
	"THEN": true, "ELSE": true, "ELIF": true, "IN": true,
	"OUT": true, "UNTIL": true,
}

func (p *parser) atSerialEnd() bool {
	tok := p.peek()
	switch tok.Type {
	case token.EOF, token.PAREN_R:
		return true
	case token.BOLD:
		return serialEnders[tok.Text]
	}
	return false
}

// parseSerial parses semicolon-separated serial items up to a closing
// bracket, attaching label declarations to the clause node.
func (p *parser) parseSerial() (*a68.Node, error) {
	serial := p.node(a68.NSerial, p.peek())
	for {
		if err := p.parseSerialInto(serial); err != nil {
			return nil, err
		}
		if !p.accept(token.SEMI) {
			break
		}
	}
	if len(serial.Kids) == 0 && !p.atSerialEnd() {
		return nil, p.errorf("expected a unit, found %s", p.describe(p.peek()))
	}
	return serial, nil
}

// parseSerialInto parses one serial item: any number of label declarations
// followed by a declaration or unit.  Mode declarations register an alias
// and contribute no item.
func (p *parser) parseSerialInto(serial *a68.Node) error {
	for p.peek().Type == token.IDENT && p.peekAt(1).Type == token.COLON {
		name := p.next().Text
		p.next()
		serial.Labels = append(serial.Labels, &a68.Label{
			Name:  name,
			Block: serial,
			Index: len(serial.Kids),
		})
	}
	if p.peekBold("MODE") {
		return p.parseModeDecl()
	}
	if p.atDeclarationStart() {
		decls, err := p.parseDeclaration()
		if err != nil {
			return err
		}
		serial.Kids = append(serial.Kids, decls...)
		return nil
	}
	unit, err := p.parseUnit()
	if err != nil {
		return err
	}
	serial.Kids = append(serial.Kids, unit)
	return nil
}

// declarerStarters begin a declarer in declaration position.  HEAP and LOC
// are absent: a generator is a unit, not a declaration.
var declarerStarters = map[string]bool{
	"INT": true, "REAL": true, "BOOL": true, "CHAR": true,
	"STRING": true, "VOID": true, "REF": true, "PROC": true,
	"STRUCT": true, "UNION": true,
}

func (p *parser) atDeclarationStart() bool {
	tok := p.peek()
	if tok.Type == token.BRACK_L {
		return true
	}
	if tok.Type != token.BOLD {
		return false
	}
	if !declarerStarters[tok.Text] {
		_, ok := p.aliases[tok.Text]
		return ok
	}
	return true
}

func (p *parser) parseModeDecl() error {
	if err := p.expectBold("MODE"); err != nil {
		return err
	}
	tok := p.peek()
	if tok.Type != token.BOLD {
		return p.errorf("expected a mode indication, found %s", p.describe(tok))
	}
	name := p.next().Text
	if declarerStarters[name] {
		return p.errorf("cannot redeclare %s", name)
	}
	if _, err := p.expect(token.EQUALS); err != nil {
		return err
	}
	m, _, _, err := p.parseDeclarer()
	if err != nil {
		return err
	}
	p.aliases[name] = m
	return nil
}

// parseDeclaration parses an identity or variable declaration, possibly
// declaring several identifiers of one declarer.
func (p *parser) parseDeclaration() ([]*a68.Node, error) {
	// PROC f = routine text
	if p.peekBold("PROC") && p.peekAt(1).Type == token.IDENT {
		tok := p.next()
		name, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.EQUALS); err != nil {
			return nil, err
		}
		routine, err := p.parseRoutineText()
		if err != nil {
			return nil, err
		}
		decl := p.node(a68.NDecl, tok)
		decl.Sym = name.Text
		decl.Identity = true
		decl.Mode = routine.Mode
		decl.Kids = []*a68.Node{routine}
		return []*a68.Node{decl}, nil
	}

	declarer, from, to, err := p.parseDeclarer()
	if err != nil {
		return nil, err
	}
	var decls []*a68.Node
	for {
		name, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		decl := p.node(a68.NDecl, name)
		decl.Sym = name.Text
		decl.Mode = declarer
		decl.From, decl.To = from, to
		switch p.peek().Type {
		case token.EQUALS:
			p.next()
			decl.Identity = true
			src, err := p.parseUnit()
			if err != nil {
				return nil, err
			}
			decl.Kids = []*a68.Node{src}
		case token.ASSIGN:
			p.next()
			src, err := p.parseUnit()
			if err != nil {
				return nil, err
			}
			decl.Kids = []*a68.Node{src}
		}
		decls = append(decls, decl)
		if !p.accept(token.COMMA) {
			break
		}
	}
	return decls, nil
}

// parseDeclarer parses a declarer, returning the interned mode and, for a
// bounded row declarer, the bound expressions of the outermost row.
func (p *parser) parseDeclarer() (*a68.Mode, *a68.Node, *a68.Node, error) {
	tok := p.peek()
	if tok.Type == token.BRACK_L {
		p.next()
		var from, to *a68.Node
		if p.peek().Type != token.BRACK_R {
			var err error
			from, err = p.parseUnit()
			if err != nil {
				return nil, nil, nil, err
			}
			if _, err := p.expect(token.COLON); err != nil {
				return nil, nil, nil, err
			}
			to, err = p.parseUnit()
			if err != nil {
				return nil, nil, nil, err
			}
		}
		if _, err := p.expect(token.BRACK_R); err != nil {
			return nil, nil, nil, err
		}
		elem, _, _, err := p.parseDeclarer()
		if err != nil {
			return nil, nil, nil, err
		}
		m := p.modes.Intern(&a68.Mode{Kind: a68.MRow, Sub: elem})
		return m, from, to, nil
	}
	if tok.Type != token.BOLD {
		return nil, nil, nil, p.errorf("expected a declarer, found %s", p.describe(tok))
	}
	switch tok.Text {
	case "INT":
		p.next()
		return a68.ModeInt, nil, nil, nil
	case "REAL":
		p.next()
		return a68.ModeReal, nil, nil, nil
	case "BOOL":
		p.next()
		return a68.ModeBool, nil, nil, nil
	case "CHAR":
		p.next()
		return a68.ModeChar, nil, nil, nil
	case "STRING":
		p.next()
		return a68.ModeString, nil, nil, nil
	case "VOID":
		p.next()
		return a68.ModeVoid, nil, nil, nil
	case "REF":
		p.next()
		sub, _, _, err := p.parseDeclarer()
		if err != nil {
			return nil, nil, nil, err
		}
		return p.modes.Intern(&a68.Mode{Kind: a68.MRef, Sub: sub}), nil, nil, nil
	case "PROC":
		p.next()
		return p.parseProcDeclarer()
	case "STRUCT":
		p.next()
		return p.parseStructDeclarer()
	case "UNION":
		p.next()
		return p.parseUnionDeclarer()
	}
	if m, ok := p.aliases[tok.Text]; ok {
		p.next()
		return m, nil, nil, nil
	}
	return nil, nil, nil, p.errorf("unknown mode indication %q", tok.Text)
}

func (p *parser) parseProcDeclarer() (*a68.Mode, *a68.Node, *a68.Node, error) {
	var params []*a68.Mode
	if p.accept(token.PAREN_L) {
		for {
			m, _, _, err := p.parseDeclarer()
			if err != nil {
				return nil, nil, nil, err
			}
			params = append(params, m)
			if !p.accept(token.COMMA) {
				break
			}
		}
		if _, err := p.expect(token.PAREN_R); err != nil {
			return nil, nil, nil, err
		}
	}
	result, _, _, err := p.parseDeclarer()
	if err != nil {
		return nil, nil, nil, err
	}
	m := p.modes.Intern(&a68.Mode{Kind: a68.MProc, Sub: result, Params: params})
	return m, nil, nil, nil
}

func (p *parser) parseStructDeclarer() (*a68.Mode, *a68.Node, *a68.Node, error) {
	if _, err := p.expect(token.PAREN_L); err != nil {
		return nil, nil, nil, err
	}
	var fields []a68.Field
	offset := 0
	for {
		m, _, _, err := p.parseDeclarer()
		if err != nil {
			return nil, nil, nil, err
		}
		for {
			name, err := p.expect(token.IDENT)
			if err != nil {
				return nil, nil, nil, err
			}
			fields = append(fields, a68.Field{Name: name.Text, Mode: m, Offset: offset})
			offset += m.Size()
			// INT a, b shares one declarer; a following declarer starts
			// a new field group.
			if p.peek().Type != token.COMMA || p.peekAt(1).Type != token.IDENT {
				break
			}
			p.next()
		}
		if !p.accept(token.COMMA) {
			break
		}
	}
	if _, err := p.expect(token.PAREN_R); err != nil {
		return nil, nil, nil, err
	}
	m := p.modes.Intern(&a68.Mode{Kind: a68.MStruct, Fields: fields})
	return m, nil, nil, nil
}

func (p *parser) parseUnionDeclarer() (*a68.Mode, *a68.Node, *a68.Node, error) {
	if _, err := p.expect(token.PAREN_L); err != nil {
		return nil, nil, nil, err
	}
	var variants []*a68.Mode
	for {
		m, _, _, err := p.parseDeclarer()
		if err != nil {
			return nil, nil, nil, err
		}
		variants = append(variants, m)
		if !p.accept(token.COMMA) {
			break
		}
	}
	if _, err := p.expect(token.PAREN_R); err != nil {
		return nil, nil, nil, err
	}
	m := p.modes.Intern(&a68.Mode{Kind: a68.MUnion, Variants: variants})
	return m, nil, nil, nil
}

// parseRoutineText parses [ "(" formals ")" ] declarer ":" unit.  The body
// is normalized to a serial clause; a closed-clause body contributes its own
// serial directly so labels declared in it stay jumpable.
func (p *parser) parseRoutineText() (*a68.Node, error) {
	tok := p.peek()
	routine := p.node(a68.NRoutine, tok)
	if p.accept(token.PAREN_L) {
		for {
			m, _, _, err := p.parseDeclarer()
			if err != nil {
				return nil, err
			}
			for {
				name, err := p.expect(token.IDENT)
				if err != nil {
					return nil, err
				}
				routine.Params = append(routine.Params, a68.Param{Name: name.Text, Mode: m})
				if p.peek().Type != token.COMMA || p.peekAt(1).Type != token.IDENT {
					break
				}
				p.next()
			}
			if !p.accept(token.COMMA) {
				break
			}
		}
		if _, err := p.expect(token.PAREN_R); err != nil {
			return nil, err
		}
	}
	result, _, _, err := p.parseDeclarer()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.COLON); err != nil {
		return nil, err
	}
	body, err := p.parseUnit()
	if err != nil {
		return nil, err
	}
	if body.Kind == a68.NClosed {
		routine.Kids = []*a68.Node{body.Kids[0]}
	} else {
		serial := p.node(a68.NSerial, tok)
		serial.Kids = []*a68.Node{body}
		routine.Kids = []*a68.Node{serial}
	}
	var params []*a68.Mode
	for _, prm := range routine.Params {
		params = append(params, prm.Mode)
	}
	routine.Mode = p.modes.Intern(&a68.Mode{Kind: a68.MProc, Sub: result, Params: params})
	return routine, nil
}

// parseUnit parses one unit: an assignation or anything weaker.
func (p *parser) parseUnit() (*a68.Node, error) {
	return p.parseAssignation()
}

func (p *parser) parseAssignation() (*a68.Node, error) {
	dest, err := p.parseFormula(0)
	if err != nil {
		return nil, err
	}
	var op string
	switch p.peek().Type {
	case token.ASSIGN:
	case token.PLUSAB:
		op = "+"
	case token.MINUSAB:
		op = "-"
	case token.TIMESAB:
		op = "*"
	case token.DIVAB:
		op = "/"
	default:
		return dest, nil
	}
	tok := p.next()
	src, err := p.parseAssignation()
	if err != nil {
		return nil, err
	}
	n := p.node(a68.NAssign, tok)
	n.Sym = op
	n.Kids = []*a68.Node{dest, src}
	return n, nil
}

// dyadicPriority maps dyadic operator spellings to their priority.  Zero
// means the spelling is not a dyadic operator.
func dyadicPriority(tok token.Token) (string, int) {
	switch tok.Type {
	case token.EQUALS:
		return "=", 3
	case token.OPERATOR:
		switch tok.Text {
		case "/=":
			return "/=", 3
		case "<", "<=", ">", ">=":
			return tok.Text, 4
		case "+", "-":
			return tok.Text, 5
		case "*", "/":
			return tok.Text, 6
		}
	case token.BOLD:
		switch tok.Text {
		case "OR":
			return "OR", 1
		case "AND":
			return "AND", 2
		case "OVER", "MOD":
			return tok.Text, 6
		}
	}
	return "", 0
}

// parseFormula implements priority climbing over dyadic operators.
func (p *parser) parseFormula(min int) (*a68.Node, error) {
	lhs, err := p.parseMonadic()
	if err != nil {
		return nil, err
	}
	for {
		name, prio := dyadicPriority(p.peek())
		if prio == 0 || prio < min {
			return lhs, nil
		}
		tok := p.next()
		rhs, err := p.parseFormula(prio + 1)
		if err != nil {
			return nil, err
		}
		n := p.node(a68.NFormula, tok)
		n.Sym = name
		n.Kids = []*a68.Node{lhs, rhs}
		lhs = n
	}
}

func (p *parser) parseMonadic() (*a68.Node, error) {
	tok := p.peek()
	var name string
	switch {
	case tok.Type == token.OPERATOR && tok.Text == "-":
		name = "-"
	case tok.Type == token.BOLD && (tok.Text == "NOT" || tok.Text == "ABS" || tok.Text == "ODD"):
		name = tok.Text
	default:
		return p.parseSecondary()
	}
	p.next()
	operand, err := p.parseMonadic()
	if err != nil {
		return nil, err
	}
	n := p.node(a68.NFormula, tok)
	n.Sym = name
	n.Kids = []*a68.Node{operand}
	return n, nil
}

// parseSecondary parses selections: field OF secondary.
func (p *parser) parseSecondary() (*a68.Node, error) {
	if p.peek().Type == token.IDENT && p.peekAt(1).Type == token.BOLD && p.peekAt(1).Text == "OF" {
		field := p.next()
		p.next()
		base, err := p.parseSecondary()
		if err != nil {
			return nil, err
		}
		n := p.node(a68.NSelect, field)
		n.Sym = field.Text
		n.Kids = []*a68.Node{base}
		return n, nil
	}
	return p.parsePostfix()
}

// parsePostfix parses a primary followed by call and subscript chains.
func (p *parser) parsePostfix() (*a68.Node, error) {
	prim, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.peek().Type {
		case token.PAREN_L:
			// A parenthesis directly after a value is a parameter pack
			// only when the value can be called; calls on enclosed
			// clauses are rare and a display would be ambiguous, so the
			// chain is limited to callable primaries.
			if !callablePrimary(prim) {
				return prim, nil
			}
			tok := p.next()
			call := p.node(a68.NCall, tok)
			call.Kids = []*a68.Node{prim}
			if err := p.parseActuals(call); err != nil {
				return nil, err
			}
			prim = call
		case token.BRACK_L:
			tok := p.next()
			sub, err := p.parseUnit()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.BRACK_R); err != nil {
				return nil, err
			}
			n := p.node(a68.NIndex, tok)
			n.Kids = []*a68.Node{prim, sub}
			prim = n
		default:
			return prim, nil
		}
	}
}

func callablePrimary(n *a68.Node) bool {
	switch n.Kind {
	case a68.NIdent, a68.NCall, a68.NIndex, a68.NSelect:
		return true
	}
	return false
}

// tryRoutineText speculatively parses a routine text in expression
// position, as in a procedure assigned to a variable.  The parenthesized
// formal part is indistinguishable from a collateral or closed clause until
// the result declarer appears, so failure backtracks silently.
func (p *parser) tryRoutineText() (*a68.Node, bool) {
	tok := p.peek()
	isDeclarer := tok.Type == token.BOLD && (declarerStarters[tok.Text] || p.aliases[tok.Text] != nil)
	if tok.Type != token.PAREN_L && !isDeclarer {
		return nil, false
	}
	saved := p.pos
	rt, err := p.parseRoutineText()
	if err != nil {
		p.pos = saved
		return nil, false
	}
	return rt, true
}

// parseActuals parses a parameter pack after the opening parenthesis.
// Omitted actuals become empty-parameter nodes marking a partial call.
func (p *parser) parseActuals(call *a68.Node) error {
	if p.accept(token.PAREN_R) {
		return nil
	}
	for {
		tok := p.peek()
		if tok.Type == token.COMMA || tok.Type == token.PAREN_R {
			call.Kids = append(call.Kids, p.node(a68.NEmptyArg, tok))
		} else {
			arg, err := p.parseUnit()
			if err != nil {
				return err
			}
			call.Kids = append(call.Kids, arg)
		}
		if p.accept(token.COMMA) {
			continue
		}
		_, err := p.expect(token.PAREN_R)
		return err
	}
}

func (p *parser) parsePrimary() (*a68.Node, error) {
	if rt, ok := p.tryRoutineText(); ok {
		return rt, nil
	}
	tok := p.peek()
	switch tok.Type {
	case token.INT:
		p.next()
		v, err := strconv.ParseInt(tok.Text, 10, 64)
		if err != nil {
			return nil, p.errorf("bad integer denotation %q", tok.Text)
		}
		n := p.node(a68.NDenot, tok)
		n.Mode = a68.ModeInt
		n.Int = v
		return n, nil
	case token.REAL:
		p.next()
		v, err := strconv.ParseFloat(tok.Text, 64)
		if err != nil {
			return nil, p.errorf("bad real denotation %q", tok.Text)
		}
		n := p.node(a68.NDenot, tok)
		n.Mode = a68.ModeReal
		n.Real = v
		return n, nil
	case token.STRING:
		p.next()
		n := p.node(a68.NDenot, tok)
		n.Mode = a68.ModeString
		n.Str = tok.Text
		return n, nil
	case token.IDENT:
		p.next()
		n := p.node(a68.NIdent, tok)
		n.Sym = tok.Text
		return n, nil
	case token.PAREN_L:
		return p.parseParen()
	case token.BOLD:
		return p.parseBoldPrimary()
	}
	return nil, p.errorf("expected a unit, found %s", p.describe(tok))
}

func (p *parser) parseBoldPrimary() (*a68.Node, error) {
	tok := p.peek()
	switch tok.Text {
	case "TRUE", "FALSE":
		p.next()
		n := p.node(a68.NDenot, tok)
		n.Mode = a68.ModeBool
		if tok.Text == "TRUE" {
			n.Int = 1
		}
		return n, nil
	case "SKIP":
		p.next()
		return p.node(a68.NSkip, tok), nil
	case "NIL":
		p.next()
		return p.node(a68.NNil, tok), nil
	case "BEGIN":
		p.next()
		serial, err := p.parseSerial()
		if err != nil {
			return nil, err
		}
		if err := p.expectBold("END"); err != nil {
			return nil, err
		}
		n := p.node(a68.NClosed, tok)
		n.Kids = []*a68.Node{serial}
		return n, nil
	case "IF":
		p.next()
		return p.parseConditional(tok)
	case "CASE":
		p.next()
		return p.parseCase(tok)
	case "FOR", "FROM", "BY", "TO", "WHILE", "DO":
		return p.parseLoop()
	case "GOTO":
		p.next()
		name, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		n := p.node(a68.NJump, tok)
		n.Sym = name.Text
		return n, nil
	case "HEAP", "LOC":
		p.next()
		declarer, _, _, err := p.parseDeclarer()
		if err != nil {
			return nil, err
		}
		n := p.node(a68.NGen, tok)
		n.Heap = tok.Text == "HEAP"
		n.Mode = p.modes.Intern(&a68.Mode{Kind: a68.MRef, Sub: declarer})
		return n, nil
	}
	return nil, p.errorf("expected a unit, found %q", tok.Text)
}

// parseParen parses a parenthesized enclosed clause: a collateral when the
// opening item is followed by a comma, a closed clause otherwise.
func (p *parser) parseParen() (*a68.Node, error) {
	tok, err := p.expect(token.PAREN_L)
	if err != nil {
		return nil, err
	}
	serial := p.node(a68.NSerial, tok)
	if err := p.parseSerialInto(serial); err != nil {
		return nil, err
	}
	if len(serial.Kids) == 1 && p.peek().Type == token.COMMA {
		coll := p.node(a68.NCollateral, tok)
		coll.Kids = serial.Kids
		for p.accept(token.COMMA) {
			unit, err := p.parseUnit()
			if err != nil {
				return nil, err
			}
			coll.Kids = append(coll.Kids, unit)
		}
		if _, err := p.expect(token.PAREN_R); err != nil {
			return nil, err
		}
		return coll, nil
	}
	for p.accept(token.SEMI) {
		if err := p.parseSerialInto(serial); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.PAREN_R); err != nil {
		return nil, err
	}
	n := p.node(a68.NClosed, tok)
	n.Kids = []*a68.Node{serial}
	return n, nil
}

// parseConditional parses the part after IF or ELIF.
func (p *parser) parseConditional(tok token.Token) (*a68.Node, error) {
	cond := p.node(a68.NCond, tok)
	enquiry, err := p.parseUnit()
	if err != nil {
		return nil, err
	}
	if err := p.expectBold("THEN"); err != nil {
		return nil, err
	}
	then, err := p.parseClosedSerial()
	if err != nil {
		return nil, err
	}
	cond.Kids = []*a68.Node{enquiry, then}
	switch {
	case p.peekBold("ELIF"):
		elifTok := p.next()
		nested, err := p.parseConditional(elifTok)
		if err != nil {
			return nil, err
		}
		cond.Kids = append(cond.Kids, nested)
		return cond, nil
	case p.acceptBold("ELSE"):
		alt, err := p.parseClosedSerial()
		if err != nil {
			return nil, err
		}
		cond.Kids = append(cond.Kids, alt)
	}
	if err := p.expectBold("FI"); err != nil {
		return nil, err
	}
	return cond, nil
}

func (p *parser) parseClosedSerial() (*a68.Node, error) {
	tok := p.peek()
	serial, err := p.parseSerial()
	if err != nil {
		return nil, err
	}
	n := p.node(a68.NClosed, tok)
	n.Kids = []*a68.Node{serial}
	return n, nil
}

// parseCase parses both case forms.  A branch opening with a parenthesized
// declarer marks a conformity clause; the speculative parse backtracks when
// the branch turns out to be an ordinary unit.
func (p *parser) parseCase(tok token.Token) (*a68.Node, error) {
	disc, err := p.parseUnit()
	if err != nil {
		return nil, err
	}
	if err := p.expectBold("IN"); err != nil {
		return nil, err
	}
	if branch, ok := p.tryConformityBranch(); ok {
		n := p.node(a68.NCaseUnion, tok)
		n.Kids = []*a68.Node{disc, branch}
		for p.accept(token.COMMA) {
			branch, ok := p.tryConformityBranch()
			if !ok {
				return nil, p.errorf("expected a conformity branch, found %s", p.describe(p.peek()))
			}
			n.Kids = append(n.Kids, branch)
		}
		if err := p.parseCaseTail(n); err != nil {
			return nil, err
		}
		return n, nil
	}
	n := p.node(a68.NCaseInt, tok)
	n.Kids = []*a68.Node{disc}
	for {
		branch, err := p.parseUnit()
		if err != nil {
			return nil, err
		}
		n.Kids = append(n.Kids, branch)
		if !p.accept(token.COMMA) {
			break
		}
	}
	if err := p.parseCaseTail(n); err != nil {
		return nil, err
	}
	return n, nil
}

func (p *parser) parseCaseTail(n *a68.Node) error {
	if p.acceptBold("OUT") {
		out, err := p.parseClosedSerial()
		if err != nil {
			return err
		}
		n.Out = out
	}
	return p.expectBold("ESAC")
}

// tryConformityBranch speculatively parses "(" declarer [ident] ")" ":"
// unit.  On failure the token position is restored and the branch is parsed
// as an ordinary unit by the caller.
func (p *parser) tryConformityBranch() (*a68.Node, bool) {
	saved := p.pos
	tok := p.peek()
	if !p.accept(token.PAREN_L) {
		return nil, false
	}
	variant, _, _, err := p.parseDeclarer()
	if err != nil {
		p.pos = saved
		return nil, false
	}
	sym := ""
	if p.peek().Type == token.IDENT {
		sym = p.next().Text
	}
	if !p.accept(token.PAREN_R) || !p.accept(token.COLON) {
		p.pos = saved
		return nil, false
	}
	unit, err := p.parseUnit()
	if err != nil {
		p.pos = saved
		return nil, false
	}
	serial := p.node(a68.NSerial, tok)
	serial.Kids = []*a68.Node{unit}
	branch := p.node(a68.NClosed, tok)
	branch.Variant = variant
	branch.Sym = sym
	branch.Kids = []*a68.Node{serial}
	return branch, true
}

// parseLoop parses loop parts in their fixed order.  Every part except the
// loop body is optional.
func (p *parser) parseLoop() (*a68.Node, error) {
	tok := p.peek()
	loop := p.node(a68.NLoop, tok)
	var err error
	if p.acceptBold("FOR") {
		name, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		loop.Sym = name.Text
	}
	if p.acceptBold("FROM") {
		if loop.From, err = p.parseUnit(); err != nil {
			return nil, err
		}
	}
	if p.acceptBold("BY") {
		if loop.By, err = p.parseUnit(); err != nil {
			return nil, err
		}
	}
	if p.acceptBold("TO") {
		if loop.To, err = p.parseUnit(); err != nil {
			return nil, err
		}
	}
	if p.acceptBold("WHILE") {
		if loop.While, err = p.parseUnit(); err != nil {
			return nil, err
		}
	}
	if err := p.expectBold("DO"); err != nil {
		return nil, err
	}
	if loop.Body, err = p.parseSerial(); err != nil {
		return nil, err
	}
	if p.acceptBold("UNTIL") {
		if loop.Until, err = p.parseUnit(); err != nil {
			return nil, err
		}
	}
	if err := p.expectBold("OD"); err != nil {
		return nil, err
	}
	return loop, nil
}
