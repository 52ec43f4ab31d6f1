package lower

import (
	"fmt"

	"github.com/you-not-fish/mila/internal/ir"
	"github.com/you-not-fish/mila/internal/rtabi"
	"github.com/you-not-fish/mila/internal/symtab"
	"github.com/you-not-fish/mila/internal/syntax"
	"github.com/you-not-fish/mila/internal/types"
)

// stmts lowers a statement list. A break result branches to the innermost
// loop exit and ends the list.
func (b *builder) stmts(list []syntax.Stmt) {
	for _, s := range list {
		if b.b == nil {
			// Unreachable code after a break.
			return
		}
		switch r := b.stmt(s); r.Kind {
		case Void, Value:
		case Break:
			if len(b.loops) == 0 {
				b.errorf(s.Pos(), syntax.BreakOutsideLoop, "break outside loop")
			}
			b.jump(b.loops[len(b.loops)-1])
			b.b = nil
			return
		}
	}
}

// stmt dispatches a statement to the appropriate lowering method.
func (b *builder) stmt(s syntax.Stmt) Result {
	switch s := s.(type) {
	case *syntax.ConstDecl:
		b.constDecl(s)
	case *syntax.VarDecl:
		b.varDecl(s)
	case *syntax.ArrayDecl:
		b.arrayDecl(s)
	case *syntax.AssignStmt:
		return b.assignStmt(s)
	case *syntax.IfStmt:
		b.ifStmt(s)
	case *syntax.WhileStmt:
		b.whileStmt(s)
	case *syntax.ForStmt:
		b.forStmt(s)
	case *syntax.BreakStmt:
		return Result{Kind: Break}
	case *syntax.BlockStmt:
		b.stmts(s.Stmts)
	case *syntax.CallStmt:
		b.callStmt(s)
	default:
		panic(fmt.Sprintf("lower.builder.stmt: unhandled %T", s))
	}
	return void
}

// assignStmt evaluates the right-hand side, then stores it into the
// target. The stored value is the result.
func (b *builder) assignStmt(s *syntax.AssignStmt) Result {
	val := b.expr(s.RHS)
	if sym := b.targetSymbol(s.LHS); sym.Shape.Kind == symtab.Const {
		b.errorf(s.LHS.Pos(), syntax.ConstAssign, "cannot assign to constant %s", sym.Name)
	}
	ptr, elem := b.addr(s.LHS)
	val = b.convert(val, elem, s.RHS.Pos())
	b.fn.NewValue(b.b, ir.OpStore, nil, ptr, val)
	return Result{Kind: Value, Val: val}
}

func (b *builder) targetSymbol(ref syntax.Ref) *symtab.Symbol {
	switch r := ref.(type) {
	case *syntax.Name:
		return b.lookup(r)
	case *syntax.IndexExpr:
		return b.lookup(r.X)
	}
	panic(fmt.Sprintf("lower.builder.targetSymbol: unhandled %T", ref))
}

// ifStmt lowers to then, else and after blocks. The else block exists
// even without an else arm.
func (b *builder) ifStmt(s *syntax.IfStmt) {
	cond := b.cond(s.Cond)

	bThen := b.newBlock("then")
	bElse := b.newBlock("else")
	bAfter := b.newBlock("after")
	b.branch(cond, bThen, bElse)

	b.b = bThen
	b.stmts(s.Then)
	if b.b != nil {
		b.jump(bAfter)
	}

	b.b = bElse
	b.stmts(s.Else)
	if b.b != nil {
		b.jump(bAfter)
	}

	if len(bAfter.Preds) == 0 {
		// Both arms break.
		b.fn.RemoveBlock(bAfter)
		b.b = nil
		return
	}
	b.b = bAfter
}

// whileStmt lowers to cond, body and after blocks.
func (b *builder) whileStmt(s *syntax.WhileStmt) {
	bCond := b.newBlock("cond")
	bBody := b.newBlock("body")
	bAfter := b.newBlock("after")

	b.jump(bCond)
	b.b = bCond
	b.branch(b.cond(s.Cond), bBody, bAfter)

	b.b = bBody
	b.loops = append(b.loops, bAfter)
	b.stmts(s.Body)
	b.loops = b.loops[:len(b.loops)-1]
	if b.b != nil {
		b.jump(bCond)
	}

	b.b = bAfter
}

// forStmt lowers to init, cond, body and after blocks. The body runs
// first; cond tests the control variable against the bound, steps it and
// loops back while they differed, so the last iteration is the one in
// which the variable equals the bound.
func (b *builder) forStmt(s *syntax.ForStmt) {
	bInit := b.newBlock("init")
	bCond := b.newBlock("cond")
	bBody := b.newBlock("body")
	bAfter := b.newBlock("after")

	b.jump(bInit)
	b.b = bInit
	b.assignStmt(s.Init)
	b.jump(bBody)

	b.b = bBody
	b.loops = append(b.loops, bAfter)
	b.stmts(s.Body)
	b.loops = b.loops[:len(b.loops)-1]
	if b.b != nil {
		b.jump(bCond)
	}

	b.b = bCond
	more := b.cond(s.Cond)
	b.assignStmt(s.Incr)
	b.branch(more, bBody, bAfter)

	b.b = bAfter
}

// callStmt lowers a call to one of the declared routines. The input
// routine receives storage addresses, the output routines values.
func (b *builder) callStmt(s *syntax.CallStmt) {
	ext := b.mod.Extern(s.Fun.Value)
	if ext == nil {
		b.errorf(s.Fun.Pos(), syntax.UnknownCall, "call to unknown routine %s", s.Fun.Value)
	}
	if sig, _ := rtabi.Lookup(ext.Name); sig.ByRef != (s.Refs != nil) {
		panic(fmt.Sprintf("lower.builder.callStmt: %s called with the wrong argument shape", ext.Name))
	}

	var args []*ir.Value
	for _, a := range s.Args {
		v := b.expr(a)
		if types.IsBool(v.Type) {
			v = b.widen(v)
		}
		args = append(args, v)
	}
	for _, r := range s.Refs {
		sym := b.targetSymbol(r)
		if sym.Shape.Kind == symtab.Const {
			b.errorf(r.Pos(), syntax.ConstAssign, "cannot read into constant %s", sym.Name)
		}
		ptr, _ := b.addr(r)
		args = append(args, ptr)
	}

	call := b.fn.NewValue(b.b, ir.OpCall, nil, args...)
	call.Aux = ext
}
