package syntax

import (
	"encoding/json"
	"io"
)

// FprintJSON writes a JSON representation of the AST to w.
func FprintJSON(w io.Writer, node Node) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(toJSON(node))
}

func toJSON(node Node) interface{} {
	if node == nil {
		return nil
	}

	switch n := node.(type) {
	case *Program:
		return map[string]interface{}{
			"type":  "Program",
			"pos":   n.pos.String(),
			"name":  n.Name.Value,
			"stmts": mapSlice(n.Stmts, stmtJSON),
		}

	case *ConstDecl:
		return map[string]interface{}{
			"type":  "ConstDecl",
			"pos":   n.pos.String(),
			"name":  n.Name.Value,
			"value": toJSON(n.Value),
		}

	case *VarDecl:
		return map[string]interface{}{
			"type":    "VarDecl",
			"pos":     n.pos.String(),
			"name":    n.Name.Value,
			"vartype": n.Type.String(),
		}

	case *ArrayDecl:
		return map[string]interface{}{
			"type": "ArrayDecl",
			"pos":  n.pos.String(),
			"name": n.Name.Value,
			"elem": n.Elem.String(),
			"lo":   n.Lo,
			"hi":   n.Hi,
		}

	case *BlockStmt:
		return map[string]interface{}{
			"type":  "BlockStmt",
			"pos":   n.pos.String(),
			"stmts": mapSlice(n.Stmts, stmtJSON),
		}

	case *IfStmt:
		m := map[string]interface{}{
			"type": "IfStmt",
			"pos":  n.pos.String(),
			"cond": toJSON(n.Cond),
			"then": mapSlice(n.Then, stmtJSON),
		}
		if n.Else != nil {
			m["else"] = mapSlice(n.Else, stmtJSON)
		}
		return m

	case *WhileStmt:
		return map[string]interface{}{
			"type": "WhileStmt",
			"pos":  n.pos.String(),
			"cond": toJSON(n.Cond),
			"body": mapSlice(n.Body, stmtJSON),
		}

	case *ForStmt:
		return map[string]interface{}{
			"type":   "ForStmt",
			"pos":    n.pos.String(),
			"init":   toJSON(n.Init),
			"cond":   toJSON(n.Cond),
			"incr":   toJSON(n.Incr),
			"body":   mapSlice(n.Body, stmtJSON),
			"downto": n.Down,
		}

	case *BreakStmt:
		return map[string]interface{}{
			"type": "BreakStmt",
			"pos":  n.pos.String(),
		}

	case *AssignStmt:
		return map[string]interface{}{
			"type": "AssignStmt",
			"pos":  n.pos.String(),
			"lhs":  toJSON(n.LHS),
			"rhs":  toJSON(n.RHS),
		}

	case *CallStmt:
		m := map[string]interface{}{
			"type": "CallStmt",
			"pos":  n.pos.String(),
			"fun":  n.Fun.Value,
		}
		if n.Args != nil {
			m["args"] = mapSlice(n.Args, func(e Expr) interface{} { return toJSON(e) })
		}
		if n.Refs != nil {
			m["refs"] = mapSlice(n.Refs, func(r Ref) interface{} { return toJSON(r) })
		}
		return m

	case *Name:
		return map[string]interface{}{
			"type":  "Name",
			"pos":   n.pos.String(),
			"value": n.Value,
		}

	case *BasicLit:
		return map[string]interface{}{
			"type":  "BasicLit",
			"pos":   n.pos.String(),
			"value": n.Value,
		}

	case *UnaryExpr:
		return map[string]interface{}{
			"type": "UnaryExpr",
			"pos":  n.pos.String(),
			"op":   n.Op.String(),
			"x":    toJSON(n.X),
		}

	case *Operation:
		return map[string]interface{}{
			"type": "Operation",
			"pos":  n.pos.String(),
			"op":   n.Op.String(),
			"x":    toJSON(n.X),
			"y":    toJSON(n.Y),
		}

	case *IndexExpr:
		return map[string]interface{}{
			"type":  "IndexExpr",
			"pos":   n.pos.String(),
			"x":     toJSON(n.X),
			"index": toJSON(n.Index),
		}

	default:
		return map[string]interface{}{
			"type": "Unknown",
		}
	}
}

func stmtJSON(s Stmt) interface{} { return toJSON(s) }

func mapSlice[T any](s []T, f func(T) interface{}) []interface{} {
	result := make([]interface{}, len(s))
	for i, v := range s {
		result[i] = f(v)
	}
	return result
}
