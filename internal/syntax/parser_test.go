package syntax

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/you-not-fish/mila/internal/symtab"
	"github.com/you-not-fish/mila/internal/types"
)

// ----------------------------------------------------------------------------
// Test helpers

func parseProgram(t *testing.T, src string, mode Mode) (*Program, *symtab.Env) {
	t.Helper()
	env := symtab.New()
	prog, err := Parse("test.mila", strings.NewReader(src), env, mode)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return prog, env
}

func parseError(t *testing.T, src string) error {
	t.Helper()
	prog, err := Parse("test.mila", strings.NewReader(src), nil, 0)
	if err == nil {
		t.Fatalf("Parse succeeded, want error")
	}
	if prog != nil {
		t.Errorf("Parse returned a program alongside error %v", err)
	}
	return err
}

// body wraps statements in a program declaring the usual test variables.
func body(stmts string) string {
	return `program t;
const c = 10;
var x, y: integer;
    d: double;
    a: array [-3 .. 3] of integer;
    z: array [0 .. 4] of integer;
begin
` + stmts + `
end.`
}

// bodyStmts returns the statements that follow the declarations of body.
func bodyStmts(t *testing.T, stmts string, mode Mode) []Stmt {
	t.Helper()
	prog, _ := parseProgram(t, body(stmts), mode)
	for i, s := range prog.Stmts {
		switch s.(type) {
		case *ConstDecl, *VarDecl, *ArrayDecl:
			continue
		}
		return prog.Stmts[i:]
	}
	return nil
}

func rhs(t *testing.T, expr string) string {
	t.Helper()
	stmts := bodyStmts(t, "x := "+expr+";", 0)
	if len(stmts) != 1 {
		t.Fatalf("got %d statements, want 1", len(stmts))
	}
	return ExprString(stmts[0].(*AssignStmt).RHS)
}

// ----------------------------------------------------------------------------
// Programs and declarations

func TestParseProgram(t *testing.T) {
	src := `program demo;
const n = 5; m = -2;
var i, j: integer;
var v: array [1 .. 5] of double;
begin
  i := n;
  writeln(i);
end.`
	prog, env := parseProgram(t, src, 0)
	if prog.Name.Value != "demo" {
		t.Errorf("Name = %q, want %q", prog.Name.Value, "demo")
	}

	wantKinds := []string{"*syntax.ConstDecl", "*syntax.ConstDecl", "*syntax.VarDecl", "*syntax.VarDecl",
		"*syntax.ArrayDecl", "*syntax.AssignStmt", "*syntax.CallStmt"}
	if len(prog.Stmts) != len(wantKinds) {
		t.Fatalf("len(Stmts) = %d, want %d", len(prog.Stmts), len(wantKinds))
	}
	for i, s := range prog.Stmts {
		if got := fmt.Sprintf("%T", s); got != wantKinds[i] {
			t.Errorf("Stmts[%d] = %s, want %s", i, got, wantKinds[i])
		}
	}

	if got := ExprString(prog.Stmts[1].(*ConstDecl).Value); got != "-2" {
		t.Errorf("const m = %s, want -2", got)
	}
	if env.Len() != 5 {
		t.Errorf("env.Len() = %d, want 5", env.Len())
	}
}

func TestParseDeclaresShapes(t *testing.T) {
	_, env := parseProgram(t, body(""), 0)

	tests := []struct {
		name string
		want symtab.Shape
	}{
		{"c", symtab.ScalarShape(symtab.Const, types.Typ[types.Int])},
		{"x", symtab.ScalarShape(symtab.Var, types.Typ[types.Int])},
		{"y", symtab.ScalarShape(symtab.Var, types.Typ[types.Int])},
		{"d", symtab.ScalarShape(symtab.Var, types.Typ[types.Double])},
		{"a", symtab.ArrayShape(types.Typ[types.Int], -3, 3)},
		{"z", symtab.ArrayShape(types.Typ[types.Int], 0, 4)},
	}
	for _, tt := range tests {
		sym := env.Lookup(tt.name)
		if sym == nil {
			t.Errorf("%s not declared", tt.name)
			continue
		}
		if sym.Shape != tt.want {
			t.Errorf("%s shape = %v, want %v", tt.name, sym.Shape, tt.want)
		}
		if sym.Resolved() {
			t.Errorf("%s resolved after parsing", tt.name)
		}
	}

	names := make([]string, 0, env.Len())
	for _, sym := range env.Symbols() {
		names = append(names, sym.Name)
	}
	if got := strings.Join(names, " "); got != "c x y d a z" {
		t.Errorf("declaration order = %q, want %q", got, "c x y d a z")
	}
}

// ----------------------------------------------------------------------------
// Expressions

func TestParseExpressions(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want string
	}{
		{"literal", "42", "42"},
		{"octal_hex", "&10 + $a", "(8 + 10)"},
		{"mul_over_add", "1 + 2 * 3", "(1 + (2 * 3))"},
		{"left_assoc_sub", "1 - 2 - 3", "((1 - 2) - 3)"},
		{"left_assoc_div", "x div 2 mod 3", "((x div 2) mod 3)"},
		{"parens", "(1 + 2) * 3", "((1 + 2) * 3)"},
		{"relational_over_equality", "x < 1 = y > 2", "((x < 1) = (y > 2))"},
		{"equality_over_logic", "x = 1 or y <> 2", "((x = 1) or (y <> 2))"},
		{"logic_left_assoc", "x and y xor x", "((x and y) xor x)"},
		{"not_binds_primary", "not x and y", "(not x and y)"},
		{"not_paren", "not (x and y)", "not (x and y)"},
		{"leading_minus", "-5 + x", "(-5 + x)"},
		{"minus_in_parens", "x * (-5)", "(x * -5)"},
		{"min_int", "-2147483648", "-2147483648"},
		{"max_int", "2147483647", "2147483647"},
		{"const_ref", "c + x", "(c + x)"},
		{"double_var", "d * 2", "(d * 2)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rhs(t, tt.expr); got != tt.want {
				t.Errorf("ExprString = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestParseIndexNormalization(t *testing.T) {
	tests := []struct {
		name string
		stmt string
		want string
	}{
		{"lower_bound", "a[-3] := 1;", "a[0]"},
		{"upper_bound", "a[3] := 1;", "a[6]"},
		{"variable", "a[x] := 1;", "a[(x - -3)]"},
		{"expression", "a[x + 1] := 1;", "a[((x + 1) - -3)]"},
		{"zero_base_variable", "z[x] := 1;", "z[(x - 0)]"},
		{"zero_base_literal", "z[4] := 1;", "z[4]"},
		{"parenthesized_literal", "a[(2)] := 1;", "a[5]"},
		{"readln_target", "readln(a[0]);", "a[3]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmts := bodyStmts(t, tt.stmt, 0)
			var ref Ref
			switch s := stmts[0].(type) {
			case *AssignStmt:
				ref = s.LHS
			case *CallStmt:
				ref = s.Refs[0]
			}
			if got := ExprString(ref); got != tt.want {
				t.Errorf("ref = %s, want %s", got, tt.want)
			}
		})
	}

	// Index expressions inside other expressions are normalized too.
	if got := rhs(t, "a[x] + z[1]"); got != "(a[(x - -3)] + z[1])" {
		t.Errorf("rhs = %s, want %s", got, "(a[(x - -3)] + z[1])")
	}
}

// ----------------------------------------------------------------------------
// Statements

func TestParseForDesugar(t *testing.T) {
	tests := []struct {
		name     string
		stmt     string
		wantInit string
		wantCond string
		wantIncr string
		wantDown bool
	}{
		{"to", "for x := 1 to 5 do writeln(x);", "1", "(x <> 5)", "(x + 1)", false},
		{"downto", "for x := 10 downto y + 1 do writeln(x);", "10", "(x <> (y + 1))", "(x - 1)", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmts := bodyStmts(t, tt.stmt, 0)
			f, ok := stmts[0].(*ForStmt)
			if !ok {
				t.Fatalf("got %T, want *ForStmt", stmts[0])
			}
			if got := ExprString(f.Init.LHS); got != "x" {
				t.Errorf("Init.LHS = %s, want x", got)
			}
			if got := ExprString(f.Init.RHS); got != tt.wantInit {
				t.Errorf("Init.RHS = %s, want %s", got, tt.wantInit)
			}
			if got := ExprString(f.Cond); got != tt.wantCond {
				t.Errorf("Cond = %s, want %s", got, tt.wantCond)
			}
			if got := ExprString(f.Incr.RHS); got != tt.wantIncr {
				t.Errorf("Incr.RHS = %s, want %s", got, tt.wantIncr)
			}
			if f.Down != tt.wantDown {
				t.Errorf("Down = %v, want %v", f.Down, tt.wantDown)
			}
			if len(f.Body) != 1 {
				t.Errorf("len(Body) = %d, want 1", len(f.Body))
			}

			// Each use of the control variable is its own node.
			cond := f.Cond.(*Operation)
			if Node(cond.X) == Node(f.Init.LHS) || Node(f.Incr.LHS) == Node(f.Init.LHS) {
				t.Error("control variable nodes are shared")
			}
		})
	}
}

func TestParseStatementKinds(t *testing.T) {
	src := `
while x < 10 do x := x + 1;
while x > 0 do begin x := x - 1; writeln(x); end;
if x = 1 then writeln(1); else begin write(2); writeln(3); end;
if x then y := 1;
begin readln(x); end;
`
	stmts := bodyStmts(t, src, 0)
	want := []string{"*syntax.WhileStmt", "*syntax.WhileStmt", "*syntax.IfStmt", "*syntax.IfStmt", "*syntax.BlockStmt"}
	if len(stmts) != len(want) {
		t.Fatalf("got %d statements, want %d", len(stmts), len(want))
	}
	for i, s := range stmts {
		if got := fmt.Sprintf("%T", s); got != want[i] {
			t.Errorf("stmt %d = %s, want %s", i, got, want[i])
		}
	}

	if n := len(stmts[1].(*WhileStmt).Body); n != 2 {
		t.Errorf("while body has %d statements, want 2", n)
	}
	ifs := stmts[2].(*IfStmt)
	if len(ifs.Then) != 1 || len(ifs.Else) != 2 {
		t.Errorf("if arms = %d/%d, want 1/2", len(ifs.Then), len(ifs.Else))
	}
	if stmts[3].(*IfStmt).Else != nil {
		t.Error("if without else has Else arm")
	}
	call := stmts[4].(*BlockStmt).Stmts[0].(*CallStmt)
	if call.Fun.Value != "readln" || len(call.Refs) != 1 || call.Args != nil {
		t.Errorf("readln call = %s refs=%d args=%v", call.Fun.Value, len(call.Refs), call.Args)
	}
}

func TestParseDanglingElse(t *testing.T) {
	stmts := bodyStmts(t, "if x then if y then x := 1; else x := 2;", 0)
	outer := stmts[0].(*IfStmt)
	if outer.Else != nil {
		t.Fatal("else bound to outer if")
	}
	inner := outer.Then[0].(*IfStmt)
	if len(inner.Else) != 1 {
		t.Errorf("inner else has %d statements, want 1", len(inner.Else))
	}
}

func TestParseBreakPlacement(t *testing.T) {
	tests := []struct {
		name     string
		stmt     string
		mode     Mode
		want     []string
		wantBody int
	}{
		{"while_default", "while x < 3 do break;", 0, []string{"*syntax.WhileStmt"}, 1},
		{"while_legacy", "while x < 3 do break;", LegacyBreak, []string{"*syntax.BreakStmt", "*syntax.WhileStmt"}, 0},
		{"for_default", "for x := 1 to 3 do break;", 0, []string{"*syntax.ForStmt"}, 1},
		{"for_legacy", "for x := 1 to 3 do break;", LegacyBreak, []string{"*syntax.BreakStmt", "*syntax.ForStmt"}, 0},
		{"block_legacy", "while x < 3 do begin break; end;", LegacyBreak, []string{"*syntax.WhileStmt"}, 1},
		{"if_arm_legacy", "while x < 3 do if x = 1 then break;", LegacyBreak, []string{"*syntax.WhileStmt"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmts := bodyStmts(t, tt.stmt, tt.mode)
			if len(stmts) != len(tt.want) {
				t.Fatalf("got %d statements, want %d", len(stmts), len(tt.want))
			}
			for i, s := range stmts {
				if got := fmt.Sprintf("%T", s); got != tt.want[i] {
					t.Errorf("stmt %d = %s, want %s", i, got, tt.want[i])
				}
			}
			var loopBody []Stmt
			switch l := stmts[len(stmts)-1].(type) {
			case *WhileStmt:
				loopBody = l.Body
			case *ForStmt:
				loopBody = l.Body
			}
			if len(loopBody) != tt.wantBody {
				t.Errorf("len(Body) = %d, want %d", len(loopBody), tt.wantBody)
			}
		})
	}

	// The if arm keeps its break in legacy mode.
	stmts := bodyStmts(t, "while x < 3 do if x = 1 then break;", LegacyBreak)
	ifs := stmts[0].(*WhileStmt).Body[0].(*IfStmt)
	if _, ok := ifs.Then[0].(*BreakStmt); !ok {
		t.Errorf("if arm = %T, want *BreakStmt", ifs.Then[0])
	}
}

// ----------------------------------------------------------------------------
// Errors

func TestParseSyntaxErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantMsg string
	}{
		{"missing_semi", "program p begin end.", "unexpected keyword begin, expected ;"},
		{"missing_program", "begin end.", "unexpected keyword begin, expected program"},
		{"stmt_missing_semi", body("x := 1"), "unexpected keyword end, expected ;"},
		{"trailing", "program p; begin end. x", "expected EOF after end of program"},
		{"missing_dot", "program p; begin end", "unexpected EOF, expected ."},
		{"unclosed_body", "program p; var x: integer; begin x := 1;", "unexpected EOF, expected statement"},
		{"minus_mid_expr", body("x := 1 + -2;"), "unexpected -, expected expression"},
		{"minus_before_name", body("x := -y;"), "expected number after -"},
		{"overflow", body("x := 2147483648;"), "overflows 32 bits"},
		{"negative_overflow", body("x := -2147483649;"), "overflows 32 bits"},
		{"bad_char", body("x := 1 # 2;"), `unexpected "#", expected ;`},
		{"missing_direction", body("for x := 1 do x := 2;"), "expected to or downto"},
		{"bad_type", "program p; var x: string; begin end.", "expected integer or double"},
		{"missing_paren", body("writeln(x;"), "unexpected ;, expected )"},
		{"bad_statement", body(":= 1;"), "unexpected :=, expected statement"},
		{"const_needs_number", "program p; const c = x; begin end.", "unexpected name x, expected number"},
		{"open_comment", "program p; { oops", "comment not terminated"},
		{"bad_hex", "program p; const c = $; begin end.", "prefix without digits"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := parseError(t, tt.src)
			var se *SyntaxError
			if !errors.As(err, &se) {
				t.Fatalf("error %v (%T) is not a *SyntaxError", err, err)
			}
			if !strings.Contains(se.Msg, tt.wantMsg) {
				t.Errorf("Msg = %q, want it to contain %q", se.Msg, tt.wantMsg)
			}
		})
	}
}

func TestParseErrorPosition(t *testing.T) {
	err := parseError(t, "program p;\nbegin\n  writeln(1)\nend.")
	var se *SyntaxError
	if !errors.As(err, &se) {
		t.Fatalf("error %v is not a *SyntaxError", err)
	}
	if got := se.Error(); got != "test.mila:4:1: unexpected keyword end, expected ;" {
		t.Errorf("Error() = %q", got)
	}
}

func TestParseSemanticErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
	}{
		{"duplicate_var", "program p; var x: integer; x: integer; begin end.", ErrDuplicate},
		{"duplicate_in_run", "program p; var x, x: integer; begin end.", ErrDuplicate},
		{"duplicate_const_var", "program p; const x = 1; var x: integer; begin end.", ErrDuplicate},
		{"duplicate_array", "program p; var a: integer; a: array [1 .. 2] of integer; begin end.", ErrDuplicate},
		{"undeclared_target", body("w := 1;"), ErrUndeclared},
		{"undeclared_operand", body("x := w + 1;"), ErrUndeclared},
		{"undeclared_loop_var", body("for w := 1 to 2 do x := 1;"), ErrUndeclared},
		{"index_scalar", body("x[1] := 1;"), ErrNotArray},
		{"index_scalar_operand", body("x := y[0];"), ErrNotArray},
		{"array_without_index", body("a := 1;"), ErrNotScalar},
		{"array_operand", body("x := a + 1;"), ErrNotScalar},
		{"array_loop_var", body("for a := 1 to 2 do x := 1;"), ErrNotScalar},
		{"bad_bounds", "program p; var a: array [5 .. 1] of integer; begin end.", ErrBadBounds},
		{"assign_const", body("c := 2;"), ErrConstAssign},
		{"readln_const", body("readln(c);"), ErrConstAssign},
		{"const_loop_var", body("for c := 1 to 2 do x := 1;"), ErrConstAssign},
		{"double_loop_var", body("for d := 1 to 2 do x := 1;"), ErrFloatingPoint},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := parseError(t, tt.src)
			var se *SemanticError
			if !errors.As(err, &se) {
				t.Fatalf("error %v (%T) is not a *SemanticError", err, err)
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("error %v (code %v), want %v", err, se.Code, tt.want)
			}
		})
	}
}

func TestParseDuplicateBeforeBody(t *testing.T) {
	// The duplicate is reported even though the body never parses.
	err := parseError(t, "program p; var x: integer; var x: double; begin")
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("error = %v, want duplicate declaration", err)
	}
}

// ----------------------------------------------------------------------------
// Token sources

// sliceSource replays a fixed token stream.
type sliceSource struct {
	toks []Token
	vals []interface{}
	i    int
}

func (s *sliceSource) Next() Token {
	s.i++
	if s.i > len(s.toks) {
		return _EOF
	}
	return s.toks[s.i-1]
}

func (s *sliceSource) Ident() string {
	v, _ := s.vals[s.i-1].(string)
	return v
}

func (s *sliceSource) Number() int64 {
	v, _ := s.vals[s.i-1].(int64)
	return v
}

func (s *sliceSource) Pos() Pos { return NewPos("", 1, uint32(s.i)) }

func TestParserTokenSource(t *testing.T) {
	src := &sliceSource{
		toks: []Token{_Program, _Name, _Semi, _Begin, _Writeln, _Lparen, _Number, _Rparen, _Semi, _End, _Dot},
		vals: []interface{}{nil, "p", nil, nil, nil, nil, int64(7), nil, nil, nil, nil},
	}
	prog, err := NewParser(src, nil, 0).Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if prog.Name.Value != "p" {
		t.Errorf("Name = %q, want p", prog.Name.Value)
	}
	call := prog.Stmts[0].(*CallStmt)
	if got := ExprString(call.Args[0]); got != "7" {
		t.Errorf("writeln arg = %s, want 7", got)
	}
	if got := call.Pos().Col(); got != 5 {
		t.Errorf("call column = %d, want 5", got)
	}
}
