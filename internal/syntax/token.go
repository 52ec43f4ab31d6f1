// Package syntax implements lexical and syntactic analysis for Mila.
package syntax

import "fmt"

// Token represents the type of a lexical token.
type Token uint

const (
	// Special tokens
	_EOF       Token = iota // end of input
	_Undefined              // character sequence the scanner cannot classify

	// Payload tokens
	_Name   // identifier; text via Ident
	_Number // integer literal; value via Number

	// Keywords
	_Begin
	_End
	_Const
	_Procedure
	_Forward
	_Function
	_If
	_Then
	_Else
	_Program
	_While
	_Exit
	_Var
	_Integer
	_Double
	_For
	_Do
	_To
	_Downto
	_Array
	_Of
	_Writeln
	_Write
	_Readln
	_Break

	// Operators
	_Or  // or
	_And // and
	_Xor // xor
	_Eql // =
	_Neq // <>
	_Lss // <
	_Gtr // >
	_Leq // <=
	_Geq // >=
	_Add // +
	_Sub // -
	_Mul // *
	_Div // div
	_Mod // mod
	_Not // not

	// Delimiters
	_Assign // :=
	_Semi   // ;
	_Dot    // .
	_Comma  // ,
	_Colon  // :
	_Lparen // (
	_Rparen // )
	_Lbrack // [
	_Rbrack // ]

	tokenCount
)

var tokenNames = [...]string{
	_EOF:       "EOF",
	_Undefined: "UNDEFINED",

	_Name:   "NAME",
	_Number: "NUMBER",

	_Begin:     "begin",
	_End:       "end",
	_Const:     "const",
	_Procedure: "procedure",
	_Forward:   "forward",
	_Function:  "function",
	_If:        "if",
	_Then:      "then",
	_Else:      "else",
	_Program:   "program",
	_While:     "while",
	_Exit:      "exit",
	_Var:       "var",
	_Integer:   "integer",
	_Double:    "double",
	_For:       "for",
	_Do:        "do",
	_To:        "to",
	_Downto:    "downto",
	_Array:     "array",
	_Of:        "of",
	_Writeln:   "writeln",
	_Write:     "write",
	_Readln:    "readln",
	_Break:     "break",

	_Or:  "or",
	_And: "and",
	_Xor: "xor",
	_Eql: "=",
	_Neq: "<>",
	_Lss: "<",
	_Gtr: ">",
	_Leq: "<=",
	_Geq: ">=",
	_Add: "+",
	_Sub: "-",
	_Mul: "*",
	_Div: "div",
	_Mod: "mod",
	_Not: "not",

	_Assign: ":=",
	_Semi:   ";",
	_Dot:    ".",
	_Comma:  ",",
	_Colon:  ":",
	_Lparen: "(",
	_Rparen: ")",
	_Lbrack: "[",
	_Rbrack: "]",
}

// String returns the string representation of the token.
func (t Token) String() string {
	if t < tokenCount {
		return tokenNames[t]
	}
	return fmt.Sprintf("token(%d)", t)
}

// Precedence returns the binding tier of a binary operator, loosest first.
// Returns 0 for tokens that are not binary operators.
//
//	1: or and xor
//	2: = <>
//	3: < > <= >=
//	4: + -
//	5: * div mod
func (t Token) Precedence() int {
	switch t {
	case _Or, _And, _Xor:
		return 1
	case _Eql, _Neq:
		return 2
	case _Lss, _Gtr, _Leq, _Geq:
		return 3
	case _Add, _Sub:
		return 4
	case _Mul, _Div, _Mod:
		return 5
	}
	return 0
}

// IsKeyword reports whether t is a reserved word.
func (t Token) IsKeyword() bool {
	return t >= _Begin && t <= _Break ||
		t == _Or || t == _And || t == _Xor || t == _Div || t == _Mod || t == _Not
}

// IsOperator reports whether t is an expression operator.
func (t Token) IsOperator() bool {
	return t >= _Or && t <= _Not
}

// IsEOF reports whether t is the EOF token.
func (t Token) IsEOF() bool {
	return t == _EOF
}

// Operator tokens for packages that inspect Operation.Op.
const (
	Or  Token = _Or
	And Token = _And
	Xor Token = _Xor
	Eql Token = _Eql
	Neq Token = _Neq
	Lss Token = _Lss
	Gtr Token = _Gtr
	Leq Token = _Leq
	Geq Token = _Geq
	Add Token = _Add
	Sub Token = _Sub
	Mul Token = _Mul
	Div Token = _Div
	Mod Token = _Mod
	Not Token = _Not
)

// keywords maps reserved words to their token type. Mila keywords are
// lower case and case-sensitive.
var keywords = map[string]Token{
	"begin":     _Begin,
	"end":       _End,
	"const":     _Const,
	"procedure": _Procedure,
	"forward":   _Forward,
	"function":  _Function,
	"if":        _If,
	"then":      _Then,
	"else":      _Else,
	"program":   _Program,
	"while":     _While,
	"exit":      _Exit,
	"var":       _Var,
	"integer":   _Integer,
	"double":    _Double,
	"for":       _For,
	"do":        _Do,
	"to":        _To,
	"downto":    _Downto,
	"array":     _Array,
	"of":        _Of,
	"writeln":   _Writeln,
	"write":     _Write,
	"readln":    _Readln,
	"break":     _Break,
	"or":        _Or,
	"and":       _And,
	"xor":       _Xor,
	"div":       _Div,
	"mod":       _Mod,
	"not":       _Not,
}

// LookupKeyword returns the keyword token for ident, or _Name.
func LookupKeyword(ident string) Token {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return _Name
}
