package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scanAll(src string) []Token {
	s := NewScanner("test", src)
	var toks []Token
	for {
		tok := s.Scan()
		toks = append(toks, tok)
		if tok.Type == EOF || tok.Type == ERROR {
			return toks
		}
	}
}

func types(toks []Token) []Type {
	ts := make([]Type, len(toks))
	for i, tok := range toks {
		ts[i] = tok.Type
	}
	return ts
}

func TestScanBasic(t *testing.T) {
	toks := scanAll("INT i := 42;")
	assert.Equal(t, []Type{BOLD, IDENT, ASSIGN, INT, SEMI, EOF}, types(toks))
	assert.Equal(t, "INT", toks[0].Text)
	assert.Equal(t, "i", toks[1].Text)
	assert.Equal(t, "42", toks[3].Text)
}

func TestScanNumbers(t *testing.T) {
	toks := scanAll("1 3.14 2e10 1.5e-3")
	assert.Equal(t, []Type{INT, REAL, REAL, REAL, EOF}, types(toks))

	// A trailing period is not a fraction part.
	toks = scanAll("1.x")
	assert.Equal(t, INT, toks[0].Type)
}

func TestScanOperators(t *testing.T) {
	toks := scanAll("+ +:= := <= /= < = -:=")
	assert.Equal(t, []Type{OPERATOR, PLUSAB, ASSIGN, OPERATOR, OPERATOR, OPERATOR, EQUALS, MINUSAB, EOF}, types(toks))
}

func TestScanStrings(t *testing.T) {
	toks := scanAll(`"hello" "a""b"`)
	require.Equal(t, []Type{STRING, STRING, EOF}, types(toks))
	assert.Equal(t, "hello", toks[0].Text)
	assert.Equal(t, `a"b`, toks[1].Text)

	toks = scanAll(`"open`)
	assert.Equal(t, ERROR, toks[0].Type)
}

func TestScanComments(t *testing.T) {
	toks := scanAll("1 # middle # 2 CO bold CO 3 COMMENT long COMMENT 4")
	assert.Equal(t, []Type{INT, INT, INT, INT, EOF}, types(toks))
}

func TestScanLocations(t *testing.T) {
	toks := scanAll("a;\n  b")
	require.Equal(t, []Type{IDENT, SEMI, IDENT, EOF}, types(toks))
	assert.Equal(t, 1, toks[0].Source.Line)
	assert.Equal(t, 1, toks[0].Source.Col)
	assert.Equal(t, 2, toks[2].Source.Line)
	assert.Equal(t, 3, toks[2].Source.Col)
	assert.Equal(t, "test:2:3", toks[2].Source.String())
}
