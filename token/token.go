package token

import (
	"fmt"
	"strconv"
)

type TokenType int

const (
	ILLEGAL TokenType = iota
	EOF

	literal_beg
	IDENT  // x, foo
	INT    // 42
	FLOAT  // 1.5
	IMAG   // 1.5i
	CHAR   // 'a'
	STRING // "abc"
	literal_end

	operator_beg
	ADD  // +
	SUB  // -
	MUL  // *
	QUO  // /
	REM  // %
	POW  // ^^
	AND  // &
	OR   // |
	XOR  // ^
	SHL  // <<
	SHR  // >>
	USHR // >>>
	CAT  // ~

	ANDAND // &&
	OROR   // ||
	NOT    // !
	COM    // ~ (unary)
	NEG    // - (unary)

	ASSIGN    // =
	CONSTRUCT // = (initialization)
	BLIT      // = (bitwise copy)

	ADD_ASSIGN  // +=
	SUB_ASSIGN  // -=
	MUL_ASSIGN  // *=
	QUO_ASSIGN  // /=
	REM_ASSIGN  // %=
	POW_ASSIGN  // ^^=
	AND_ASSIGN  // &=
	OR_ASSIGN   // |=
	XOR_ASSIGN  // ^=
	SHL_ASSIGN  // <<=
	SHR_ASSIGN  // >>=
	USHR_ASSIGN // >>>=
	CAT_ASSIGN  // ~=

	INC // ++
	DEC // --

	LPAREN // (
	RPAREN // )
	LBRACK // [
	RBRACK // ]
	COLON  // :
	operator_end

	comparison_beg
	EQL          // ==
	NEQ          // !=
	IDENTITY     // is
	NOT_IDENTITY // !is
	LSS          // <
	LEQ          // <=
	GTR          // >
	GEQ          // >=
	UE           // !<>
	LG           // <>
	ULE          // !>
	UL           // !>=
	UGE          // !<
	UG           // !<=
	LEG          // <>=
	UNORD        // !<>=
	comparison_end
)

var tokens = [...]string{
	ILLEGAL: "ILLEGAL",
	EOF:     "EOF",

	IDENT:  "IDENT",
	INT:    "INT",
	FLOAT:  "FLOAT",
	IMAG:   "IMAG",
	CHAR:   "CHAR",
	STRING: "STRING",

	ADD:  "+",
	SUB:  "-",
	MUL:  "*",
	QUO:  "/",
	REM:  "%",
	POW:  "^^",
	AND:  "&",
	OR:   "|",
	XOR:  "^",
	SHL:  "<<",
	SHR:  ">>",
	USHR: ">>>",
	CAT:  "~",

	ANDAND: "&&",
	OROR:   "||",
	NOT:    "!",
	COM:    "~@",
	NEG:    "-@",

	ASSIGN:    "=",
	CONSTRUCT: "=:",
	BLIT:      "=!",

	ADD_ASSIGN:  "+=",
	SUB_ASSIGN:  "-=",
	MUL_ASSIGN:  "*=",
	QUO_ASSIGN:  "/=",
	REM_ASSIGN:  "%=",
	POW_ASSIGN:  "^^=",
	AND_ASSIGN:  "&=",
	OR_ASSIGN:   "|=",
	XOR_ASSIGN:  "^=",
	SHL_ASSIGN:  "<<=",
	SHR_ASSIGN:  ">>=",
	USHR_ASSIGN: ">>>=",
	CAT_ASSIGN:  "~=",

	INC: "++",
	DEC: "--",

	LPAREN: "(",
	RPAREN: ")",
	LBRACK: "[",
	RBRACK: "]",
	COLON:  ":",

	EQL:          "==",
	NEQ:          "!=",
	IDENTITY:     "is",
	NOT_IDENTITY: "!is",
	LSS:          "<",
	LEQ:          "<=",
	GTR:          ">",
	GEQ:          ">=",
	UE:           "!<>",
	LG:           "<>",
	ULE:          "!>",
	UL:           "!>=",
	UGE:          "!<",
	UG:           "!<=",
	LEG:          "<>=",
	UNORD:        "!<>=",
}

// binOpOf maps a compound assignment to the binary operator it applies.
var binOpOf = map[TokenType]TokenType{
	ADD_ASSIGN:  ADD,
	SUB_ASSIGN:  SUB,
	MUL_ASSIGN:  MUL,
	QUO_ASSIGN:  QUO,
	REM_ASSIGN:  REM,
	POW_ASSIGN:  POW,
	AND_ASSIGN:  AND,
	OR_ASSIGN:   OR,
	XOR_ASSIGN:  XOR,
	SHL_ASSIGN:  SHL,
	SHR_ASSIGN:  SHR,
	USHR_ASSIGN: USHR,
	CAT_ASSIGN:  CAT,
}

var lookup = func() map[string]TokenType {
	m := make(map[string]TokenType)
	for i := operator_beg + 1; i < comparison_end; i++ {
		if tokens[i] != "" {
			m[tokens[i]] = i
		}
	}
	return m
}()

// Lookup returns the operator spelled s, or ILLEGAL.
func Lookup(s string) TokenType {
	if t, ok := lookup[s]; ok {
		return t
	}
	return ILLEGAL
}

type Token struct {
	Type     TokenType
	Literal  string
	FileName string
	Line     int
	Column   int
}

func (t Token) IsComparison() bool {
	return comparison_beg < t.Type && comparison_end > t.Type
}

func (t Token) String() string {
	return t.Type.String()
}

// Pos renders the source position as file:line:col.
func (t Token) Pos() string {
	return fmt.Sprintf("%s:%d:%d", t.FileName, t.Line, t.Column)
}

func (tokenType TokenType) String() string {
	s := ""
	if 0 <= tokenType && tokenType < TokenType(len(tokens)) {
		s = tokens[tokenType]
	}

	if s == "" {
		s = "token(" + strconv.Itoa(int(tokenType)) + ")"
	}

	return s
}

// IsOpAssign reports whether tokenType is a compound assignment such as +=.
func (tokenType TokenType) IsOpAssign() bool {
	_, ok := binOpOf[tokenType]
	return ok
}

// BinaryOp returns the binary operator applied by a compound assignment.
// It panics for tokens that are not compound assignments.
func (tokenType TokenType) BinaryOp() TokenType {
	op, ok := binOpOf[tokenType]
	if !ok {
		panic("internal: " + tokenType.String() + " is not a compound assignment")
	}
	return op
}

// CompileError is a user-facing diagnostic with the position it applies to.
type CompileError struct {
	Token Token
	Msg   string
}

func (ce *CompileError) Error() string {
	return ce.Token.Pos() + ":" + ce.Msg
}
