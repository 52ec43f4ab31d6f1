package lower

import (
	"fmt"

	"github.com/you-not-fish/mila/internal/ir"
	"github.com/you-not-fish/mila/internal/syntax"
	"github.com/you-not-fish/mila/internal/types"
)

// expr lowers an expression to a value of type integer, double or bool.
func (b *builder) expr(e syntax.Expr) *ir.Value {
	switch e := e.(type) {
	case *syntax.BasicLit:
		return b.constInt(e.Value)

	case *syntax.Name:
		ptr, elem := b.addr(e)
		return b.fn.NewValue(b.b, ir.OpLoad, elem, ptr)

	case *syntax.IndexExpr:
		ptr, elem := b.addr(e)
		return b.fn.NewValue(b.b, ir.OpLoad, elem, ptr)

	case *syntax.UnaryExpr:
		return b.unaryExpr(e)

	case *syntax.Operation:
		return b.binaryExpr(e)

	default:
		panic(fmt.Sprintf("lower.builder.expr: unhandled %T", e))
	}
}

func (b *builder) constInt(n int64) *ir.Value {
	v := b.fn.NewValue(b.b, ir.OpConst32, types.Typ[types.Int])
	v.AuxInt = n
	return v
}

// cond lowers a branch condition to a bool. Integers test against zero.
func (b *builder) cond(e syntax.Expr) *ir.Value {
	v := b.expr(e)
	switch {
	case types.IsBool(v.Type):
		return v
	case types.IsDouble(v.Type):
		b.errorf(e.Pos(), syntax.FloatingPoint, "double used as condition")
	}
	return b.fn.NewValue(b.b, ir.OpNeq, types.Typ[types.Bool], v, b.constInt(0))
}

// widen turns a bool into an integer 0 or 1.
func (b *builder) widen(v *ir.Value) *ir.Value {
	if !types.IsBool(v.Type) {
		return v
	}
	return b.fn.NewValue(b.b, ir.OpZeroExt, types.Typ[types.Int], v)
}

// toDouble promotes an integer or bool to double.
func (b *builder) toDouble(v *ir.Value) *ir.Value {
	if types.IsDouble(v.Type) {
		return v
	}
	return b.fn.NewValue(b.b, ir.OpIntToFloat, types.Typ[types.Double], b.widen(v))
}

// convert adapts v for storage in a slot of type to.
func (b *builder) convert(v *ir.Value, to *types.Basic, pos syntax.Pos) *ir.Value {
	if types.IsDouble(to) {
		return b.toDouble(v)
	}
	if types.IsDouble(v.Type) {
		b.errorf(pos, syntax.FloatingPoint, "cannot store double in %s", to)
	}
	return b.widen(v)
}

func (b *builder) unaryExpr(e *syntax.UnaryExpr) *ir.Value {
	x := b.expr(e.X)
	if e.Op != syntax.Not {
		panic(fmt.Sprintf("lower.builder.unaryExpr: unhandled operator %s", e.Op))
	}
	if types.IsDouble(x.Type) {
		b.errorf(e.Pos(), syntax.FloatingPoint, "operator not applied to double")
	}
	return b.fn.NewValue(b.b, ir.OpNot, x.Type, x)
}

// Integer forms of the binary operators, and the double forms where one
// exists.
var (
	intOps = map[syntax.Token]ir.Op{
		syntax.Add: ir.OpAdd,
		syntax.Sub: ir.OpSub,
		syntax.Mul: ir.OpMul,
		syntax.Div: ir.OpDiv,
		syntax.Mod: ir.OpMod,
		syntax.Eql: ir.OpEq,
		syntax.Neq: ir.OpNeq,
		syntax.Lss: ir.OpLt,
		syntax.Leq: ir.OpLeq,
		syntax.Gtr: ir.OpGt,
		syntax.Geq: ir.OpGeq,
		syntax.And: ir.OpAnd,
		syntax.Or:  ir.OpOr,
		syntax.Xor: ir.OpXor,
	}
	floatOps = map[syntax.Token]ir.Op{
		syntax.Add: ir.OpAddF,
		syntax.Sub: ir.OpSubF,
		syntax.Mul: ir.OpMulF,
		syntax.Div: ir.OpDivF,
		syntax.Eql: ir.OpEqF,
	}
)

// binaryExpr lowers X op Y. A double on either side promotes both
// operands; operators without a double form reject it.
func (b *builder) binaryExpr(e *syntax.Operation) *ir.Value {
	x := b.expr(e.X)
	y := b.expr(e.Y)

	if types.IsDouble(x.Type) || types.IsDouble(y.Type) {
		op, ok := floatOps[e.Op]
		if !ok {
			b.errorf(e.Pos(), syntax.FloatingPoint, "operator %s not defined on double", e.Op)
		}
		x, y = b.toDouble(x), b.toDouble(y)
		return b.fn.NewValue(b.b, op, resultType(op, types.Typ[types.Double]), x, y)
	}

	op, ok := intOps[e.Op]
	if !ok {
		panic(fmt.Sprintf("lower.builder.binaryExpr: unhandled operator %s", e.Op))
	}
	switch op {
	case ir.OpAnd, ir.OpOr, ir.OpXor:
		if types.IsBool(x.Type) && types.IsBool(y.Type) {
			return b.fn.NewValue(b.b, op, types.Typ[types.Bool], x, y)
		}
	}
	x, y = b.widen(x), b.widen(y)
	return b.fn.NewValue(b.b, op, resultType(op, types.Typ[types.Int]), x, y)
}

func resultType(op ir.Op, operand *types.Basic) *types.Basic {
	if op.IsCompare() {
		return types.Typ[types.Bool]
	}
	return operand
}
