package syntax

import "github.com/you-not-fish/mila/internal/types"

// ----------------------------------------------------------------------------
// Interfaces
//
// Nodes come in two closed families, expressions and statements. The
// marker methods keep implementations inside this package, so a type
// switch over a family can list every case.

// Node is the interface implemented by all AST nodes.
type Node interface {
	Pos() Pos // position of the first token belonging to the node
	aNode()
}

// Expr is the interface for all expression nodes.
type Expr interface {
	Node
	aExpr()
}

// Stmt is the interface for all statement nodes, declarations included.
type Stmt interface {
	Node
	aStmt()
}

// Ref is an expression that denotes storage: *Name or *IndexExpr.
type Ref interface {
	Expr
	aRef()
}

// ----------------------------------------------------------------------------
// Base node types

type node struct {
	pos Pos
}

func (n *node) Pos() Pos { return n.pos }
func (n *node) aNode()   {}

type expr struct{ node }

func (*expr) aExpr() {}

type stmt struct{ node }

func (*stmt) aStmt() {}

// ----------------------------------------------------------------------------
// Program

// Program is the root: constants, then variables, then body statements.
type Program struct {
	node
	Name  *Name
	Stmts []Stmt
}

// ----------------------------------------------------------------------------
// Expressions

// Name is a variable reference, or the name in a declaration.
type Name struct {
	expr
	Value string
}

func (*Name) aRef() {}

// BasicLit is a signed integer literal.
type BasicLit struct {
	expr
	Value int64
}

// Operation is a binary operation X Op Y.
type Operation struct {
	expr
	Op Token
	X  Expr
	Y  Expr
}

// UnaryExpr is a prefix operation; Op is always _Not.
type UnaryExpr struct {
	expr
	Op Token
	X  Expr
}

// IndexExpr is an array element reference. Index is zero-based: the
// parser has already subtracted the array's lower bound.
type IndexExpr struct {
	expr
	X     *Name
	Index Expr
}

func (*IndexExpr) aRef() {}

// ----------------------------------------------------------------------------
// Statements

// AssignStmt is LHS := RHS.
type AssignStmt struct {
	stmt
	LHS Ref
	RHS Expr
}

// IfStmt is if Cond then Then [else Else]. Else is nil without an else arm.
type IfStmt struct {
	stmt
	Cond Expr
	Then []Stmt
	Else []Stmt
}

// WhileStmt is while Cond do Body.
type WhileStmt struct {
	stmt
	Cond Expr
	Body []Stmt
}

// ForStmt is a desugared for loop: Init runs once, Body repeats, and the
// loop ends after the iteration in which Cond (v <> bound) is false.
// Incr steps the control variable by one in the loop direction.
type ForStmt struct {
	stmt
	Init *AssignStmt
	Cond Expr
	Incr *AssignStmt
	Body []Stmt
	Down bool // downto
}

// BreakStmt leaves the innermost enclosing loop.
type BreakStmt struct {
	stmt
}

// BlockStmt is a nested begin ... end.
type BlockStmt struct {
	stmt
	Stmts []Stmt
}

// CallStmt calls a built-in routine. Output routines take Args (values),
// the input routine takes Refs (storage); exactly one of them is set.
type CallStmt struct {
	stmt
	Fun  *Name
	Args []Expr
	Refs []Ref
}

// ----------------------------------------------------------------------------
// Declarations

// ConstDecl is const Name = Value.
type ConstDecl struct {
	stmt
	Name  *Name
	Value Expr
}

// VarDecl is var Name : Type.
type VarDecl struct {
	stmt
	Name *Name
	Type *types.Basic
}

// ArrayDecl is var Name : array [Lo .. Hi] of Elem.
type ArrayDecl struct {
	stmt
	Name *Name
	Elem *types.Basic
	Lo   int64
	Hi   int64
}

// Len returns the number of elements.
func (d *ArrayDecl) Len() int64 { return d.Hi - d.Lo + 1 }
