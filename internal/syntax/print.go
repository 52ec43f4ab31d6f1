package syntax

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Fprint writes a textual representation of the AST to w.
func Fprint(w io.Writer, node Node) {
	p := &printer{w: w}
	p.print(node)
}

// Sprint returns the textual representation of the AST.
func Sprint(node Node) string {
	var sb strings.Builder
	Fprint(&sb, node)
	return sb.String()
}

type printer struct {
	w      io.Writer
	indent int
}

func (p *printer) printf(format string, args ...interface{}) {
	fmt.Fprintf(p.w, "%s%s", strings.Repeat("  ", p.indent), fmt.Sprintf(format, args...))
}

// field prints a labelled child node one level deeper.
func (p *printer) field(label string, n Node) {
	p.printf("%s:\n", label)
	p.indent++
	p.print(n)
	p.indent--
}

func (p *printer) list(label string, stmts []Stmt) {
	p.printf("%s:\n", label)
	p.indent++
	for _, s := range stmts {
		p.print(s)
	}
	p.indent--
}

func (p *printer) print(node Node) {
	if node == nil {
		return
	}

	switch n := node.(type) {
	case *Program:
		p.printf("Program %s %s\n", n.pos, n.Name.Value)
		p.indent++
		for _, s := range n.Stmts {
			p.print(s)
		}
		p.indent--

	case *ConstDecl:
		p.printf("ConstDecl %s %s = %s\n", n.pos, n.Name.Value, ExprString(n.Value))

	case *VarDecl:
		p.printf("VarDecl %s %s %s\n", n.pos, n.Name.Value, n.Type)

	case *ArrayDecl:
		p.printf("ArrayDecl %s %s [%d..%d] %s\n", n.pos, n.Name.Value, n.Lo, n.Hi, n.Elem)

	case *BlockStmt:
		p.printf("BlockStmt %s\n", n.pos)
		p.indent++
		for _, s := range n.Stmts {
			p.print(s)
		}
		p.indent--

	case *IfStmt:
		p.printf("IfStmt %s\n", n.pos)
		p.indent++
		p.field("Cond", n.Cond)
		p.list("Then", n.Then)
		if n.Else != nil {
			p.list("Else", n.Else)
		}
		p.indent--

	case *WhileStmt:
		p.printf("WhileStmt %s\n", n.pos)
		p.indent++
		p.field("Cond", n.Cond)
		p.list("Body", n.Body)
		p.indent--

	case *ForStmt:
		dir := "to"
		if n.Down {
			dir = "downto"
		}
		p.printf("ForStmt %s %s\n", n.pos, dir)
		p.indent++
		p.field("Init", n.Init)
		p.field("Cond", n.Cond)
		p.field("Incr", n.Incr)
		p.list("Body", n.Body)
		p.indent--

	case *BreakStmt:
		p.printf("BreakStmt %s\n", n.pos)

	case *AssignStmt:
		p.printf("AssignStmt %s\n", n.pos)
		p.indent++
		p.field("LHS", n.LHS)
		p.field("RHS", n.RHS)
		p.indent--

	case *CallStmt:
		p.printf("CallStmt %s %s\n", n.pos, n.Fun.Value)
		p.indent++
		for _, a := range n.Args {
			p.print(a)
		}
		for _, r := range n.Refs {
			p.print(r)
		}
		p.indent--

	case *Name:
		p.printf("Name %s %q\n", n.pos, n.Value)

	case *BasicLit:
		p.printf("BasicLit %s %d\n", n.pos, n.Value)

	case *UnaryExpr:
		p.printf("UnaryOp %s %s\n", n.pos, n.Op)
		p.indent++
		p.print(n.X)
		p.indent--

	case *Operation:
		p.printf("BinaryOp %s %s\n", n.pos, n.Op)
		p.indent++
		p.field("X", n.X)
		p.field("Y", n.Y)
		p.indent--

	case *IndexExpr:
		p.printf("IndexExpr %s\n", n.pos)
		p.indent++
		p.field("X", n.X)
		p.field("Index", n.Index)
		p.indent--

	default:
		p.printf("<%T>\n", node)
	}
}

// ExprString returns a one-line, fully parenthesized rendering of e.
func ExprString(e Expr) string {
	var sb strings.Builder
	writeExpr(&sb, e)
	return sb.String()
}

func writeExpr(sb *strings.Builder, e Expr) {
	switch x := e.(type) {
	case nil:
		sb.WriteString("<nil>")
	case *Name:
		sb.WriteString(x.Value)
	case *BasicLit:
		sb.WriteString(strconv.FormatInt(x.Value, 10))
	case *UnaryExpr:
		sb.WriteString(x.Op.String())
		sb.WriteByte(' ')
		writeExpr(sb, x.X)
	case *Operation:
		sb.WriteByte('(')
		writeExpr(sb, x.X)
		sb.WriteByte(' ')
		sb.WriteString(x.Op.String())
		sb.WriteByte(' ')
		writeExpr(sb, x.Y)
		sb.WriteByte(')')
	case *IndexExpr:
		writeExpr(sb, x.X)
		sb.WriteByte('[')
		writeExpr(sb, x.Index)
		sb.WriteByte(']')
	default:
		fmt.Fprintf(sb, "<%T>", e)
	}
}
