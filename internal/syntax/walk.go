package syntax

// Visitor is called for each node during Walk.
// If it returns false, the children of the node are not visited.
type Visitor func(node Node) bool

// Walk traverses an AST in depth-first order.
// If visitor returns false, children are not visited.
func Walk(node Node, v Visitor) {
	if node == nil || !v(node) {
		return
	}

	switch n := node.(type) {
	case *Program:
		Walk(n.Name, v)
		walkList(n.Stmts, v)

	case *ConstDecl:
		Walk(n.Name, v)
		Walk(n.Value, v)

	case *VarDecl:
		Walk(n.Name, v)

	case *ArrayDecl:
		Walk(n.Name, v)

	case *BlockStmt:
		walkList(n.Stmts, v)

	case *IfStmt:
		Walk(n.Cond, v)
		walkList(n.Then, v)
		walkList(n.Else, v)

	case *WhileStmt:
		Walk(n.Cond, v)
		walkList(n.Body, v)

	case *ForStmt:
		Walk(n.Init, v)
		Walk(n.Cond, v)
		Walk(n.Incr, v)
		walkList(n.Body, v)

	case *AssignStmt:
		Walk(n.LHS, v)
		Walk(n.RHS, v)

	case *CallStmt:
		Walk(n.Fun, v)
		for _, a := range n.Args {
			Walk(a, v)
		}
		for _, r := range n.Refs {
			Walk(r, v)
		}

	case *UnaryExpr:
		Walk(n.X, v)

	case *Operation:
		Walk(n.X, v)
		Walk(n.Y, v)

	case *IndexExpr:
		Walk(n.X, v)
		Walk(n.Index, v)

	// Leaf nodes: Name, BasicLit, BreakStmt
	// No children to visit
	}
}

func walkList(list []Stmt, v Visitor) {
	for _, s := range list {
		Walk(s, v)
	}
}

// Inspect traverses an AST and calls f for each node.
// Convenience wrapper around Walk.
func Inspect(node Node, f func(Node) bool) {
	Walk(node, Visitor(f))
}
