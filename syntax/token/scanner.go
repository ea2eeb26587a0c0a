package token

import (
	"fmt"
	"strings"
)

// Scanner produces the token stream for a source text.  Comments are
// consumed silently.
type Scanner struct {
	file string
	src  string
	pos  int
	line int
	col  int
}

// NewScanner initializes a scanner for src.  The file name is only used
// in token locations.
func NewScanner(file, src string) *Scanner {
	return &Scanner{
		file: file,
		src:  src,
		line: 1,
		col:  1,
	}
}

// Scan returns the next token.  After the source is exhausted every
// call returns an EOF token.
func (s *Scanner) Scan() Token {
	for {
		s.skipSpace()
		if s.eof() {
			return s.token(EOF, "")
		}
		c := s.src[s.pos]
		switch {
		case c >= 'a' && c <= 'z':
			return s.scanIdent()
		case c >= 'A' && c <= 'Z':
			tok, comment := s.scanBold()
			if comment {
				continue
			}
			return tok
		case c >= '0' && c <= '9':
			return s.scanNumber()
		case c == '"':
			return s.scanString()
		case c == '#':
			s.skipHashComment()
			continue
		}
		return s.scanSymbol()
	}
}

func (s *Scanner) eof() bool {
	return s.pos >= len(s.src)
}

func (s *Scanner) loc() Location {
	return Location{File: s.file, Line: s.line, Col: s.col}
}

func (s *Scanner) token(typ Type, text string) Token {
	return Token{Type: typ, Text: text, Source: s.loc()}
}

func (s *Scanner) advance(n int) {
	for i := 0; i < n && s.pos < len(s.src); i++ {
		if s.src[s.pos] == '\n' {
			s.line++
			s.col = 1
		} else {
			s.col++
		}
		s.pos++
	}
}

func (s *Scanner) skipSpace() {
	for !s.eof() {
		switch s.src[s.pos] {
		case ' ', '\t', '\r', '\n':
			s.advance(1)
		default:
			return
		}
	}
}

func (s *Scanner) skipHashComment() {
	s.advance(1)
	for !s.eof() && s.src[s.pos] != '#' {
		s.advance(1)
	}
	s.advance(1)
}

func isLower(c byte) bool  { return c >= 'a' && c <= 'z' }
func isUpper(c byte) bool  { return c >= 'A' && c <= 'Z' }
func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
func isIdentC(c byte) bool { return isLower(c) || isDigit(c) || c == '_' }

func (s *Scanner) scanIdent() Token {
	tok := s.token(IDENT, "")
	start := s.pos
	for !s.eof() && isIdentC(s.src[s.pos]) {
		s.advance(1)
	}
	tok.Text = s.src[start:s.pos]
	return tok
}

// scanBold reads an upper-case word.  CO and COMMENT open bracketed
// comments which are skipped entirely, indicated by the second return.
func (s *Scanner) scanBold() (Token, bool) {
	tok := s.token(BOLD, "")
	start := s.pos
	for !s.eof() && isUpper(s.src[s.pos]) {
		s.advance(1)
	}
	tok.Text = s.src[start:s.pos]
	if tok.Text == "CO" || tok.Text == "COMMENT" {
		s.skipBoldComment(tok.Text)
		return Token{}, true
	}
	return tok, false
}

func (s *Scanner) skipBoldComment(open string) {
	rest := s.src[s.pos:]
	i := strings.Index(rest, open)
	if i < 0 {
		s.advance(len(rest))
		return
	}
	s.advance(i + len(open))
}

func (s *Scanner) scanNumber() Token {
	tok := s.token(INT, "")
	start := s.pos
	for !s.eof() && isDigit(s.src[s.pos]) {
		s.advance(1)
	}
	if !s.eof() && s.src[s.pos] == '.' && s.pos+1 < len(s.src) && isDigit(s.src[s.pos+1]) {
		tok.Type = REAL
		s.advance(1)
		for !s.eof() && isDigit(s.src[s.pos]) {
			s.advance(1)
		}
	}
	if !s.eof() && (s.src[s.pos] == 'e' || s.src[s.pos] == 'E') {
		j := s.pos + 1
		if j < len(s.src) && (s.src[j] == '+' || s.src[j] == '-') {
			j++
		}
		if j < len(s.src) && isDigit(s.src[j]) {
			tok.Type = REAL
			s.advance(j - s.pos)
			for !s.eof() && isDigit(s.src[s.pos]) {
				s.advance(1)
			}
		}
	}
	tok.Text = s.src[start:s.pos]
	return tok
}

func (s *Scanner) scanString() Token {
	tok := s.token(STRING, "")
	s.advance(1)
	var b strings.Builder
	for {
		if s.eof() {
			tok.Type = ERROR
			tok.Text = "unterminated string"
			return tok
		}
		c := s.src[s.pos]
		if c == '"' {
			s.advance(1)
			if !s.eof() && s.src[s.pos] == '"' {
				b.WriteByte('"')
				s.advance(1)
				continue
			}
			break
		}
		b.WriteByte(c)
		s.advance(1)
	}
	tok.Text = b.String()
	return tok
}

func (s *Scanner) scanSymbol() Token {
	tok := s.token(INVALID, "")
	two := ""
	if s.pos+1 < len(s.src) {
		two = s.src[s.pos : s.pos+2]
	}
	three := ""
	if s.pos+2 < len(s.src) {
		three = s.src[s.pos : s.pos+3]
	}
	switch three {
	case "+:=":
		tok.Type, tok.Text = PLUSAB, three
	case "-:=":
		tok.Type, tok.Text = MINUSAB, three
	case "*:=":
		tok.Type, tok.Text = TIMESAB, three
	case "/:=":
		tok.Type, tok.Text = DIVAB, three
	}
	if tok.Type != INVALID {
		s.advance(3)
		return tok
	}
	switch two {
	case ":=":
		tok.Type, tok.Text = ASSIGN, two
	case "<=", ">=", "/=":
		tok.Type, tok.Text = OPERATOR, two
	}
	if tok.Type != INVALID {
		s.advance(2)
		return tok
	}
	c := s.src[s.pos]
	switch c {
	case '(':
		tok.Type = PAREN_L
	case ')':
		tok.Type = PAREN_R
	case '[':
		tok.Type = BRACK_L
	case ']':
		tok.Type = BRACK_R
	case ',':
		tok.Type = COMMA
	case ';':
		tok.Type = SEMI
	case ':':
		tok.Type = COLON
	case '+', '-', '*', '/', '<', '>', '=':
		tok.Type = OPERATOR
	default:
		tok.Type = ERROR
		tok.Text = fmt.Sprintf("unexpected character %q", c)
		s.advance(1)
		return tok
	}
	tok.Text = string(c)
	if c == '=' {
		tok.Type = EQUALS
	}
	s.advance(1)
	return tok
}
