package token

import "fmt"

// Token is one lexeme of upper-stropped source text.
type Token struct {
	Type   Type
	Text   string
	Source Location
}

type Type uint

// Type constants used by the scanner and parser.
const (
	INVALID Type = iota
	ERROR
	EOF

	BOLD  // upper-case word: declarers, clause brackets, bold operators
	IDENT // lower-case identifier
	INT
	REAL
	STRING

	COMMENT

	ASSIGN   // :=
	PLUSAB   // +:=
	MINUSAB  // -:=
	TIMESAB  // *:=
	DIVAB    // /:=
	EQUALS   // =
	OPERATOR // + - * / < <= > >= /=

	PAREN_L
	PAREN_R
	BRACK_L
	BRACK_R
	COMMA
	SEMI
	COLON

	numTokenTypes
)

func (typ Type) String() string {
	typeStrings := [numTokenTypes]string{
		INVALID:  "invalid",
		ERROR:    "error",
		EOF:      "EOF",
		BOLD:     "bold word",
		IDENT:    "identifier",
		INT:      "integer",
		REAL:     "real",
		STRING:   "string",
		COMMENT:  "comment",
		ASSIGN:   ":=",
		PLUSAB:   "+:=",
		MINUSAB:  "-:=",
		TIMESAB:  "*:=",
		DIVAB:    "/:=",
		EQUALS:   "=",
		OPERATOR: "operator",
		PAREN_L:  "(",
		PAREN_R:  ")",
		BRACK_L:  "[",
		BRACK_R:  "]",
		COMMA:    ",",
		SEMI:     ";",
		COLON:    ":",
	}
	if typ >= numTokenTypes {
		return typeStrings[INVALID]
	}
	return typeStrings[typ]
}

// Location is a position in source text.
type Location struct {
	File string
	Line int
	Col  int
}

func (loc Location) String() string {
	if loc.File == "" {
		return fmt.Sprintf("%d:%d", loc.Line, loc.Col)
	}
	return fmt.Sprintf("%s:%d:%d", loc.File, loc.Line, loc.Col)
}
