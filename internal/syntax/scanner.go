package syntax

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// TokenSource is the pull-based token stream the parser consumes.
// Ident is valid only after Next returned a name, Number only after it
// returned a number.
type TokenSource interface {
	Next() Token
	Ident() string
	Number() int64
	Pos() Pos
}

// Scanner performs lexical analysis on Mila source code.
type Scanner struct {
	source

	tok    Token
	lit    string // source text of the token
	num    int64  // value of a _Number token
	tokPos Pos

	litBuf strings.Builder
}

var _ TokenSource = (*Scanner)(nil)

// NewScanner creates a new Scanner for the given source.
// The errh function is called for each lexical error; if nil, errors are silently ignored.
func NewScanner(filename string, src io.Reader, errh func(line, col uint32, msg string)) *Scanner {
	return &Scanner{source: *newSource(filename, src, errh)}
}

// Next advances to the next token and returns it.
func (s *Scanner) Next() Token {
redo:
	for isWhitespace(s.ch) {
		s.nextch()
	}

	s.tokPos = s.pos()
	s.num = 0

	switch {
	case s.ch < 0:
		s.tok = _EOF
		s.lit = ""

	case isLetter(s.ch):
		s.scanIdent()

	case isDigit(s.ch):
		s.scanNumber(10, "")

	case s.ch == '&':
		s.nextch()
		s.scanNumber(8, "&")

	case s.ch == '$':
		s.nextch()
		s.scanNumber(16, "$")

	case s.ch == '{':
		if s.skipComment() {
			goto redo
		}
		s.tok = _EOF
		s.lit = ""

	default:
		s.scanOperator()
	}
	return s.tok
}

// Token returns the current token type.
func (s *Scanner) Token() Token { return s.tok }

// Literal returns the source text of the current token.
func (s *Scanner) Literal() string { return s.lit }

// Ident returns the text of the current identifier token.
func (s *Scanner) Ident() string { return s.lit }

// Number returns the value of the current number token.
func (s *Scanner) Number() int64 { return s.num }

// Pos returns the current token's start position.
func (s *Scanner) Pos() Pos { return s.tokPos }

func (s *Scanner) scanIdent() {
	s.litBuf.Reset()
	for isLetter(s.ch) || isDigit(s.ch) {
		s.litBuf.WriteRune(s.ch)
		s.nextch()
	}
	s.lit = s.litBuf.String()
	s.tok = LookupKeyword(s.lit)
}

// scanNumber scans the digits of a number in the given base. prefix is
// the already consumed base marker ("&" octal, "$" hex, "" decimal).
func (s *Scanner) scanNumber(base int, prefix string) {
	valid := isDigit
	switch base {
	case 8:
		valid = isOctalDigit
	case 16:
		valid = isHexDigit
	}

	s.litBuf.Reset()
	s.litBuf.WriteString(prefix)
	for valid(s.ch) {
		s.litBuf.WriteRune(s.ch)
		s.nextch()
	}
	s.lit = s.litBuf.String()

	digits := s.lit[len(prefix):]
	if digits == "" {
		s.errorAt(s.tokPos, fmt.Sprintf("%q prefix without digits", prefix))
		s.tok = _Undefined
		return
	}
	n, err := strconv.ParseInt(digits, base, 64)
	if err != nil {
		s.errorAt(s.tokPos, "number literal "+s.lit+" out of range")
		s.tok = _Undefined
		return
	}
	s.num = n
	s.tok = _Number
}

// skipComment skips a { ... } comment. It reports false if the input
// ended before the closing brace.
func (s *Scanner) skipComment() bool {
	start := s.pos()
	for s.ch >= 0 && s.ch != '}' {
		s.nextch()
	}
	if s.ch < 0 {
		s.errorAt(start, "comment not terminated")
		return false
	}
	s.nextch()
	return true
}

func (s *Scanner) scanOperator() {
	ch := s.ch
	s.nextch()

	switch ch {
	case '+':
		s.tok = _Add
	case '-':
		s.tok = _Sub
	case '*':
		s.tok = _Mul
	case '=':
		s.tok = _Eql
	case '<':
		switch s.ch {
		case '>':
			s.nextch()
			s.tok = _Neq
		case '=':
			s.nextch()
			s.tok = _Leq
		default:
			s.tok = _Lss
		}
	case '>':
		if s.ch == '=' {
			s.nextch()
			s.tok = _Geq
		} else {
			s.tok = _Gtr
		}
	case ':':
		if s.ch == '=' {
			s.nextch()
			s.tok = _Assign
		} else {
			s.tok = _Colon
		}
	case ';':
		s.tok = _Semi
	case '.':
		s.tok = _Dot
	case ',':
		s.tok = _Comma
	case '(':
		s.tok = _Lparen
	case ')':
		s.tok = _Rparen
	case '[':
		s.tok = _Lbrack
	case ']':
		s.tok = _Rbrack
	default:
		s.tok = _Undefined
		s.lit = string(ch)
		return
	}
	s.lit = s.tok.String()
}

func (s *Scanner) errorAt(pos Pos, msg string) {
	if s.errh != nil {
		s.errh(pos.line, pos.col, msg)
	}
}
