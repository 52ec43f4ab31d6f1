package codegen

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/you-not-fish/mila/internal/ir"
	"github.com/you-not-fish/mila/internal/rtabi"
	"github.com/you-not-fish/mila/internal/types"
)

// lowerFunc emits the LLVM IR for a single IR function.
func (g *generator) lowerFunc(fn *ir.Func) {
	name := fn.Name
	if name == "main" {
		name = rtabi.EntryName
	}
	g.e.emit("define %s @%s() {", llvmReturnType(fn.Result), name)
	for _, b := range fn.Blocks {
		g.lowerBlock(b)
	}
	g.e.emit("}")
}

// lowerBlock emits the LLVM IR for a single basic block.
func (g *generator) lowerBlock(b *ir.Block) {
	g.e.emitLabel(b)
	for _, v := range b.Values {
		g.lowerValue(v)
	}
	g.lowerTerminator(b)
}

// lowerValue emits the LLVM IR for a single IR value.
func (g *generator) lowerValue(v *ir.Value) {
	switch v.Op {
	// Constants and global addresses are inlined at use sites.
	case ir.OpConst32, ir.OpConstFloat, ir.OpConstBool, ir.OpGlobalAddr:
		return

	// Integer arithmetic
	case ir.OpAdd:
		g.emitBinOp("add", v)
	case ir.OpSub:
		g.emitBinOp("sub", v)
	case ir.OpMul:
		g.emitBinOp("mul", v)
	case ir.OpDiv:
		g.emitBinOp("sdiv", v)
	case ir.OpMod:
		g.emitBinOp("srem", v)
	case ir.OpNeg:
		g.e.emitInst("%s = sub i32 0, %s", valueName(v), g.operand(v.Args[0]))

	// Double arithmetic
	case ir.OpAddF:
		g.emitBinOp("fadd", v)
	case ir.OpSubF:
		g.emitBinOp("fsub", v)
	case ir.OpMulF:
		g.emitBinOp("fmul", v)
	case ir.OpDivF:
		g.emitBinOp("fdiv", v)

	// Comparison
	case ir.OpEq:
		g.emitICmp("eq", v)
	case ir.OpNeq:
		g.emitICmp("ne", v)
	case ir.OpLt:
		g.emitICmp("slt", v)
	case ir.OpLeq:
		g.emitICmp("sle", v)
	case ir.OpGt:
		g.emitICmp("sgt", v)
	case ir.OpGeq:
		g.emitICmp("sge", v)
	case ir.OpEqF:
		g.e.emitInst("%s = fcmp oeq double %s, %s", valueName(v), g.operand(v.Args[0]), g.operand(v.Args[1]))

	// Bitwise on i32, logical on i1
	case ir.OpAnd:
		g.emitBinOp("and", v)
	case ir.OpOr:
		g.emitBinOp("or", v)
	case ir.OpXor:
		g.emitBinOp("xor", v)
	case ir.OpNot:
		ones := "-1"
		if types.IsBool(v.Type) {
			ones = "true"
		}
		g.e.emitInst("%s = xor %s %s, %s", valueName(v), llvmType(v.Type), g.operand(v.Args[0]), ones)

	// Conversion
	case ir.OpZeroExt:
		g.e.emitInst("%s = zext i1 %s to i32", valueName(v), g.operand(v.Args[0]))
	case ir.OpIntToFloat:
		g.e.emitInst("%s = sitofp i32 %s to double", valueName(v), g.operand(v.Args[0]))

	// Memory
	case ir.OpAlloca:
		elem := types.Elem(v.Type)
		align := llvmType(elem)
		if arr, ok := elem.(*types.Array); ok {
			align = llvmType(arr.Elem())
		}
		g.e.emitInst("%s = alloca %s, align %d", valueName(v), llvmType(elem), rtabi.Align(align))
	case ir.OpLoad:
		g.e.emitInst("%s = load %s, ptr %s", valueName(v), llvmType(v.Type), g.operand(v.Args[0]))
	case ir.OpStore:
		g.e.emitInst("store %s %s, ptr %s", llvmType(v.Args[1].Type), g.operand(v.Args[1]), g.operand(v.Args[0]))
	case ir.OpArrayIndexPtr:
		g.e.emitInst("%s = getelementptr %s, ptr %s, %s 0, i32 %s",
			valueName(v), pointee(v.Args[0].Type), g.operand(v.Args[0]), rtabi.LLVMTypeIndex, g.operand(v.Args[1]))

	// Calls
	case ir.OpCall:
		g.lowerCall(v)

	default:
		panic(fmt.Sprintf("codegen: unhandled op %s", v.Op))
	}
}

// lowerTerminator emits the block terminator instruction.
func (g *generator) lowerTerminator(b *ir.Block) {
	switch b.Kind {
	case ir.BlockPlain:
		if len(b.Succs) > 0 {
			g.e.emitInst("br label %%%s", blockName(b.Succs[0]))
		} else {
			g.e.emitInst("unreachable")
		}
	case ir.BlockIf:
		g.e.emitInst("br i1 %s, label %%%s, label %%%s",
			g.operand(b.Controls[0]), blockName(b.Succs[0]), blockName(b.Succs[1]))
	case ir.BlockReturn:
		if len(b.Controls) > 0 && b.Controls[0] != nil {
			ret := b.Controls[0]
			g.e.emitInst("ret %s %s", llvmType(ret.Type), g.operand(ret))
		} else {
			g.e.emitInst("ret void")
		}
	default:
		g.e.emitInst("unreachable")
	}
}

// operand returns the LLVM IR operand string for an IR value.
// Constants are inlined, others use their %vN name.
func (g *generator) operand(v *ir.Value) string {
	switch v.Op {
	case ir.OpConst32:
		return strconv.FormatInt(v.AuxInt, 10)
	case ir.OpConstFloat:
		return formatFloat(v.AuxFloat)
	case ir.OpConstBool:
		if v.AuxInt != 0 {
			return "true"
		}
		return "false"
	case ir.OpGlobalAddr:
		if gl, ok := v.Aux.(*ir.Global); ok {
			return "@" + gl.Name
		}
	}
	return valueName(v)
}

// emitBinOp emits a binary operation typed by its first operand.
func (g *generator) emitBinOp(inst string, v *ir.Value) {
	g.e.emitInst("%s = %s %s %s, %s", valueName(v), inst, llvmType(v.Args[0].Type),
		g.operand(v.Args[0]), g.operand(v.Args[1]))
}

// emitICmp emits an integer comparison.
func (g *generator) emitICmp(cond string, v *ir.Value) {
	g.e.emitInst("%s = icmp %s i32 %s, %s", valueName(v), cond, g.operand(v.Args[0]), g.operand(v.Args[1]))
}

// lowerCall emits a call to a runtime routine. All routines are variadic,
// so the call names the function type explicitly.
func (g *generator) lowerCall(v *ir.Value) {
	ext, ok := v.Aux.(*ir.Extern)
	if !ok {
		panic(fmt.Sprintf("codegen: call %s without target", v))
	}
	args := make([]string, len(v.Args))
	for i, a := range v.Args {
		args[i] = fmt.Sprintf("%s %s", llvmType(a.Type), g.operand(a))
	}
	fnType := llvmReturnType(ext.Result)
	if ext.Variadic {
		fnType += " (...)"
	}
	g.e.emitInst("call %s @%s(%s)", fnType, ext.Name, strings.Join(args, ", "))
}

// formatFloat formats a float64 as an LLVM IR floating-point literal.
// LLVM accepts the exact bit pattern in hex for every double.
func formatFloat(f float64) string {
	if math.IsInf(f, 1) {
		return "0x7FF0000000000000"
	}
	if math.IsInf(f, -1) {
		return "0xFFF0000000000000"
	}
	if math.IsNaN(f) {
		return "0x7FF8000000000000"
	}
	return fmt.Sprintf("0x%016X", math.Float64bits(f))
}
