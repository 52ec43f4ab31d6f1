package syntax

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/you-not-fish/mila/internal/symtab"
	"github.com/you-not-fish/mila/internal/types"
)

// Mode controls optional parser behavior.
type Mode uint

const (
	// LegacyBreak hoists a bare break that forms the whole body of a
	// for or while loop into the enclosing statement list, ahead of the
	// loop, and leaves the loop body empty.
	LegacyBreak Mode = 1 << iota
)

// bailout carries the first error out of the recursive descent.
type bailout struct {
	err error
}

// Parser performs syntax analysis on Mila source code. It stops at the
// first error.
type Parser struct {
	src  TokenSource
	env  *symtab.Env
	mode Mode

	// Current token info (cached from src)
	tok Token
	pos Pos
}

// NewParser creates a Parser reading tokens from src. Declarations are
// installed into env as they are parsed; a nil env gets a fresh one.
func NewParser(src TokenSource, env *symtab.Env, mode Mode) *Parser {
	if env == nil {
		env = symtab.New()
	}
	return &Parser{src: src, env: env, mode: mode}
}

// Env returns the environment the parser declares into.
func (p *Parser) Env() *symtab.Env { return p.env }

// Parse parses a whole program. The returned error is a *SyntaxError or
// a *SemanticError.
func (p *Parser) Parse() (prog *Program, err error) {
	defer func() {
		if r := recover(); r != nil {
			b, ok := r.(bailout)
			if !ok {
				panic(r)
			}
			prog, err = nil, b.err
		}
	}()
	p.next()
	return p.program(), nil
}

// Parse scans and parses the program read from src.
// Lexical errors are reported as *SyntaxError.
func Parse(filename string, src io.Reader, env *symtab.Env, mode Mode) (prog *Program, err error) {
	defer func() {
		if r := recover(); r != nil {
			b, ok := r.(bailout)
			if !ok {
				panic(r)
			}
			prog, err = nil, b.err
		}
	}()
	errh := func(line, col uint32, msg string) {
		panic(bailout{&SyntaxError{Pos: NewPos(filename, line, col), Msg: msg}})
	}
	return NewParser(NewScanner(filename, src, errh), env, mode).Parse()
}

// ----------------------------------------------------------------------------
// Token navigation

// next advances to the next token.
func (p *Parser) next() {
	p.tok = p.src.Next()
	p.pos = p.src.Pos()
}

// got reports whether the current token is tok.
// If so, it consumes the token and returns true.
func (p *Parser) got(tok Token) bool {
	if p.tok == tok {
		p.next()
		return true
	}
	return false
}

// want consumes the current token if it matches tok.
// Otherwise, reports an error.
func (p *Parser) want(tok Token) {
	if !p.got(tok) {
		p.syntaxError("expected " + tok.String())
	}
}

// ----------------------------------------------------------------------------
// Error handling

// syntaxError reports an unexpected current token and aborts.
func (p *Parser) syntaxError(msg string) {
	p.errorAt(p.pos, "unexpected "+p.tokDesc()+", "+msg)
}

// errorAt reports a syntax error at pos and aborts.
func (p *Parser) errorAt(pos Pos, msg string) {
	panic(bailout{&SyntaxError{Pos: pos, Msg: msg}})
}

// semanticError reports a declaration or usage error at pos and aborts.
func (p *Parser) semanticError(pos Pos, code Code, format string, args ...interface{}) {
	panic(bailout{SemanticErrorf(pos, code, format, args...)})
}

// tokDesc describes the current token for error messages.
func (p *Parser) tokDesc() string {
	switch p.tok {
	case _EOF:
		return "EOF"
	case _Name:
		return "name " + p.src.Ident()
	case _Number:
		return "number " + strconv.FormatInt(p.src.Number(), 10)
	case _Undefined:
		if l, ok := p.src.(interface{ Literal() string }); ok && l.Literal() != "" {
			return strconv.Quote(l.Literal())
		}
		return "invalid token"
	}
	if p.tok.IsKeyword() {
		return "keyword " + p.tok.String()
	}
	return p.tok.String()
}

// ----------------------------------------------------------------------------
// Symbols

func (p *Parser) declare(name *Name, shape symtab.Shape) {
	if _, err := p.env.Declare(name.Value, shape); err != nil {
		p.semanticError(name.pos, Duplicate, "duplicate declaration of %s", name.Value)
	}
}

func (p *Parser) lookup(name *Name) *symtab.Symbol {
	sym := p.env.Lookup(name.Value)
	if sym == nil {
		p.semanticError(name.pos, Undeclared, "undeclared name %s", name.Value)
	}
	return sym
}

// ----------------------------------------------------------------------------
// Declarations

// Program = "program" name ";" [ConstSection] {VarSection}
//
//	"begin" {Stmt} "end" "." .
func (p *Parser) program() *Program {
	prog := new(Program)
	prog.pos = p.pos
	p.want(_Program)
	prog.Name = p.name()
	p.want(_Semi)

	var list []Stmt
	if p.got(_Const) {
		for {
			list = append(list, p.constDecl())
			if p.tok != _Name {
				break
			}
		}
	}
	for p.got(_Var) {
		for {
			list = p.varDecl(list)
			if p.tok != _Name {
				break
			}
		}
	}

	p.want(_Begin)
	list = p.stmtList(list)
	p.want(_End)
	p.want(_Dot)
	if p.tok != _EOF {
		p.syntaxError("expected EOF after end of program")
	}
	prog.Stmts = list
	return prog
}

// ConstDecl = name "=" ["-"] number ";" .
func (p *Parser) constDecl() *ConstDecl {
	d := new(ConstDecl)
	d.pos = p.pos
	d.Name = p.name()
	p.want(_Eql)
	d.Value = p.signedLit()
	p.want(_Semi)
	p.declare(d.Name, symtab.ScalarShape(symtab.Const, types.Typ[types.Int]))
	return d
}

// VarDecl = name {"," name} ":" Type ";" .
// Type    = "integer" | "double" | "array" "[" Bound ".." Bound "]" "of" BasicType .
func (p *Parser) varDecl(list []Stmt) []Stmt {
	names := []*Name{p.name()}
	for p.got(_Comma) {
		names = append(names, p.name())
	}
	p.want(_Colon)

	if p.tok != _Array {
		typ := p.basicType()
		p.want(_Semi)
		for _, n := range names {
			p.declare(n, symtab.ScalarShape(symtab.Var, typ))
			d := &VarDecl{Name: n, Type: typ}
			d.pos = n.pos
			list = append(list, d)
		}
		return list
	}

	p.next()
	p.want(_Lbrack)
	lo := p.signedLit()
	p.want(_Dot)
	p.want(_Dot)
	hi := p.signedLit()
	p.want(_Rbrack)
	p.want(_Of)
	elem := p.basicType()
	p.want(_Semi)
	if hi.Value < lo.Value {
		p.semanticError(hi.pos, BadBounds, "array upper bound %d is below lower bound %d", hi.Value, lo.Value)
	}
	for _, n := range names {
		p.declare(n, symtab.ArrayShape(elem, lo.Value, hi.Value))
		d := &ArrayDecl{Name: n, Elem: elem, Lo: lo.Value, Hi: hi.Value}
		d.pos = n.pos
		list = append(list, d)
	}
	return list
}

func (p *Parser) basicType() *types.Basic {
	switch p.tok {
	case _Integer:
		p.next()
		return types.Typ[types.Int]
	case _Double:
		p.next()
		return types.Typ[types.Double]
	}
	p.syntaxError("expected integer or double")
	return nil
}

// signedLit parses ["-"] number.
func (p *Parser) signedLit() *BasicLit {
	pos := p.pos
	neg := p.got(_Sub)
	if p.tok != _Number {
		p.syntaxError("expected number")
	}
	return p.number(pos, neg)
}

// ----------------------------------------------------------------------------
// Statements

// stmtList parses statements up to the closing "end" and appends them
// to list.
func (p *Parser) stmtList(list []Stmt) []Stmt {
	for p.tok != _End {
		list = p.stmt(list)
	}
	return list
}

// stmt parses one statement and appends it to list. A for or while loop
// may append more than one node in LegacyBreak mode.
func (p *Parser) stmt(list []Stmt) []Stmt {
	switch p.tok {
	case _Name:
		return append(list, p.assignStmt())
	case _For:
		return p.forStmt(list)
	case _While:
		return p.whileStmt(list)
	case _If:
		return append(list, p.ifStmt())
	case _Writeln, _Write:
		return append(list, p.writeStmt())
	case _Readln:
		return append(list, p.readStmt())
	case _Break:
		return append(list, p.breakStmt())
	case _Begin:
		return append(list, p.blockStmt())
	}
	p.syntaxError("expected statement")
	return list
}

// body parses the body of a loop or an if arm: either begin ... end ";"
// or a single statement.
func (p *Parser) body(outer *[]Stmt, loop bool) []Stmt {
	if p.got(_Begin) {
		stmts := p.stmtList(nil)
		p.want(_End)
		p.want(_Semi)
		return stmts
	}
	if loop && p.tok == _Break && p.mode&LegacyBreak != 0 {
		*outer = append(*outer, p.breakStmt())
		return nil
	}
	return p.stmt(nil)
}

// AssignStmt = Ref ":=" Expr ";" .
func (p *Parser) assignStmt() *AssignStmt {
	s := new(AssignStmt)
	s.pos = p.pos
	s.LHS = p.target()
	p.want(_Assign)
	s.RHS = p.expr()
	p.want(_Semi)
	return s
}

// ForStmt = "for" name ":=" Expr ("to" | "downto") Expr "do" Body .
func (p *Parser) forStmt(list []Stmt) []Stmt {
	s := new(ForStmt)
	s.pos = p.pos
	p.want(_For)

	v := p.name()
	sym := p.lookup(v)
	switch {
	case sym.Shape.Kind == symtab.Const:
		p.semanticError(v.pos, ConstAssign, "cannot use constant %s as loop variable", v.Value)
	case sym.Shape.IsArray():
		p.semanticError(v.pos, NotScalar, "cannot use array %s as loop variable", v.Value)
	case !types.IsInt(sym.Shape.Type):
		p.semanticError(v.pos, FloatingPoint, "loop variable %s must be integer", v.Value)
	}

	p.want(_Assign)
	start := p.expr()
	switch p.tok {
	case _To:
	case _Downto:
		s.Down = true
	default:
		p.syntaxError("expected to or downto")
	}
	p.next()
	bound := p.expr()
	p.want(_Do)

	s.Init = &AssignStmt{LHS: v, RHS: start}
	s.Init.pos = s.pos

	cond := &Operation{Op: _Neq, X: p.nameAt(v), Y: bound}
	cond.pos = v.pos
	s.Cond = cond

	step := _Add
	if s.Down {
		step = _Sub
	}
	one := &BasicLit{Value: 1}
	one.pos = v.pos
	incr := &Operation{Op: step, X: p.nameAt(v), Y: one}
	incr.pos = v.pos
	s.Incr = &AssignStmt{LHS: p.nameAt(v), RHS: incr}
	s.Incr.pos = v.pos

	s.Body = p.body(&list, true)
	return append(list, s)
}

// WhileStmt = "while" Expr "do" Body .
func (p *Parser) whileStmt(list []Stmt) []Stmt {
	s := new(WhileStmt)
	s.pos = p.pos
	p.want(_While)
	s.Cond = p.expr()
	p.want(_Do)
	s.Body = p.body(&list, true)
	return append(list, s)
}

// IfStmt = "if" Expr "then" Body ["else" Body] .
func (p *Parser) ifStmt() *IfStmt {
	s := new(IfStmt)
	s.pos = p.pos
	p.want(_If)
	s.Cond = p.expr()
	p.want(_Then)
	s.Then = p.body(nil, false)
	if p.got(_Else) {
		s.Else = p.body(nil, false)
	}
	return s
}

// writeStmt parses writeln(Expr); or write(Expr); .
func (p *Parser) writeStmt() *CallStmt {
	s := new(CallStmt)
	s.pos = p.pos
	s.Fun = &Name{Value: p.tok.String()}
	s.Fun.pos = p.pos
	p.next()
	p.want(_Lparen)
	s.Args = []Expr{p.expr()}
	p.want(_Rparen)
	p.want(_Semi)
	return s
}

// readStmt parses readln(Ref); .
func (p *Parser) readStmt() *CallStmt {
	s := new(CallStmt)
	s.pos = p.pos
	s.Fun = &Name{Value: p.tok.String()}
	s.Fun.pos = p.pos
	p.want(_Readln)
	p.want(_Lparen)
	s.Refs = []Ref{p.target()}
	p.want(_Rparen)
	p.want(_Semi)
	return s
}

func (p *Parser) breakStmt() *BreakStmt {
	s := new(BreakStmt)
	s.pos = p.pos
	p.want(_Break)
	p.want(_Semi)
	return s
}

// BlockStmt = "begin" {Stmt} "end" ";" .
func (p *Parser) blockStmt() *BlockStmt {
	s := new(BlockStmt)
	s.pos = p.pos
	p.want(_Begin)
	s.Stmts = p.stmtList(nil)
	p.want(_End)
	p.want(_Semi)
	return s
}

// ----------------------------------------------------------------------------
// References

func (p *Parser) name() *Name {
	if p.tok != _Name {
		p.syntaxError("expected name")
	}
	n := &Name{Value: p.src.Ident()}
	n.pos = p.pos
	p.next()
	return n
}

// nameAt returns a fresh reference to the same name as n.
func (p *Parser) nameAt(n *Name) *Name {
	c := &Name{Value: n.Value}
	c.pos = n.pos
	return c
}

// target parses a Ref that is written to.
func (p *Parser) target() Ref {
	pos := p.pos
	r, sym := p.ref()
	if sym.Shape.Kind == symtab.Const {
		p.semanticError(pos, ConstAssign, "cannot assign to constant %s", sym.Name)
	}
	return r
}

// ref parses name or name "[" Expr "]".
func (p *Parser) ref() (Ref, *symtab.Symbol) {
	n := p.name()
	sym := p.lookup(n)
	if p.tok != _Lbrack {
		if sym.Shape.IsArray() {
			p.semanticError(n.pos, NotScalar, "array %s used without index", n.Value)
		}
		return n, sym
	}
	if !sym.Shape.IsArray() {
		p.semanticError(p.pos, NotArray, "cannot index %s (%s)", n.Value, sym.Shape)
	}
	p.next()
	x := &IndexExpr{X: n}
	x.pos = n.pos
	x.Index = normalizeIndex(p.expr(), sym.Shape.Base)
	p.want(_Rbrack)
	return x, sym
}

// normalizeIndex rebases a source index to zero: literals fold,
// anything else becomes index - base.
func normalizeIndex(index Expr, base int64) Expr {
	if lit, ok := index.(*BasicLit); ok {
		n := &BasicLit{Value: lit.Value - base}
		n.pos = lit.pos
		return n
	}
	b := &BasicLit{Value: base}
	b.pos = index.Pos()
	op := &Operation{Op: _Sub, X: index, Y: b}
	op.pos = index.Pos()
	return op
}

// number consumes the current number token. pos is where the literal
// starts, which is the minus sign when neg is set.
func (p *Parser) number(pos Pos, neg bool) *BasicLit {
	v := p.src.Number()
	p.next()
	if neg {
		v = -v
	}
	if v < math.MinInt32 || v > math.MaxInt32 {
		p.errorAt(pos, fmt.Sprintf("integer literal %d overflows 32 bits", v))
	}
	lit := &BasicLit{Value: v}
	lit.pos = pos
	return lit
}
