package passes

import (
	"github.com/you-not-fish/mila/internal/ir"
	"github.com/you-not-fish/mila/internal/types"
)

// ConstFold rewrites integer and bool operations whose operands are all
// constants into constants. Arithmetic wraps at 32 bits; division and
// modulo by a constant zero are left for run time.
func ConstFold(f *ir.Func) {
	for _, b := range f.Blocks {
		for _, v := range b.Values {
			foldValue(v)
		}
	}
}

func foldValue(v *ir.Value) {
	if len(v.Args) == 0 {
		return
	}
	for _, a := range v.Args {
		if a.Op != ir.OpConst32 && a.Op != ir.OpConstBool {
			return
		}
	}
	x := int32(v.Args[0].AuxInt)
	var y int32
	if len(v.Args) > 1 {
		y = int32(v.Args[1].AuxInt)
	}

	var n int32
	switch v.Op {
	case ir.OpAdd:
		n = x + y
	case ir.OpSub:
		n = x - y
	case ir.OpMul:
		n = x * y
	case ir.OpDiv:
		if y == 0 {
			return
		}
		n = x / y
	case ir.OpMod:
		if y == 0 {
			return
		}
		n = x % y
	case ir.OpNeg:
		n = -x
	case ir.OpAnd:
		n = x & y
	case ir.OpOr:
		n = x | y
	case ir.OpXor:
		n = x ^ y
	case ir.OpNot:
		if types.IsBool(v.Type) {
			n = 1 - x
		} else {
			n = ^x
		}
	case ir.OpZeroExt:
		n = x
	case ir.OpEq:
		n = b2i(x == y)
	case ir.OpNeq:
		n = b2i(x != y)
	case ir.OpLt:
		n = b2i(x < y)
	case ir.OpLeq:
		n = b2i(x <= y)
	case ir.OpGt:
		n = b2i(x > y)
	case ir.OpGeq:
		n = b2i(x >= y)
	default:
		return
	}

	for _, a := range v.Args {
		a.Uses--
	}
	v.Args = nil
	v.AuxInt = int64(n)
	if types.IsBool(v.Type) {
		v.Op = ir.OpConstBool
	} else {
		v.Op = ir.OpConst32
	}
}

func b2i(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

// DeadCode removes pure values that nothing uses, repeating until no
// more can be removed.
func DeadCode(f *ir.Func) {
	for changed := true; changed; {
		changed = false
		for _, b := range f.Blocks {
			live := b.Values[:0]
			for _, v := range b.Values {
				if v.Uses == 0 && v.Op.IsPure() {
					for _, a := range v.Args {
						a.Uses--
					}
					changed = true
					continue
				}
				live = append(live, v)
			}
			for i := len(live); i < len(b.Values); i++ {
				b.Values[i] = nil
			}
			b.Values = live
		}
	}
}
