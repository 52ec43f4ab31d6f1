package ir

import (
	"fmt"
	"strings"

	"github.com/you-not-fish/mila/internal/types"
)

// Verify checks the structural integrity of a function.
// It returns an error describing all violations found, or nil if valid.
func Verify(f *Func) error {
	var errs []string

	add := func(format string, args ...interface{}) {
		errs = append(errs, fmt.Sprintf(format, args...))
	}

	if f.Entry == nil || len(f.Blocks) == 0 {
		add("func %s: no entry block", f.Name)
		return combineErrors(errs)
	}
	if f.Blocks[0] != f.Entry {
		add("func %s: Blocks[0] is not the entry block", f.Name)
	}
	if len(f.Entry.Preds) != 0 {
		add("func %s: entry block %s has %d predecessors, want 0",
			f.Name, f.Entry, len(f.Entry.Preds))
	}

	blockSet := make(map[*Block]bool, len(f.Blocks))
	for _, b := range f.Blocks {
		blockSet[b] = true
	}
	valueSet := make(map[*Value]bool)
	for _, b := range f.Blocks {
		for _, v := range b.Values {
			valueSet[v] = true
		}
	}

	for _, b := range f.Blocks {
		if b.Func != f {
			add("func %s, %s: block Func pointer mismatch", f.Name, b)
		}

		for _, v := range b.Values {
			if v.Block != b {
				add("func %s, %s, %s: value Block pointer is %s, want %s",
					f.Name, b, v, v.Block, b)
			}
			if !v.Op.IsVoid() && v.Type == nil {
				add("func %s, %s, %s (%s): non-void value has nil Type", f.Name, b, v, v.Op)
			}
			for i, arg := range v.Args {
				switch {
				case arg == nil:
					add("func %s, %s, %s: arg[%d] is nil", f.Name, b, v, i)
				case !valueSet[arg]:
					add("func %s, %s, %s: arg[%d] (%s) not found in function", f.Name, b, v, i, arg)
				}
			}
			if msg := checkOperands(v); msg != "" {
				add("func %s, %s, %s (%s): %s", f.Name, b, v, v.Op, msg)
			}
		}

		// Exactly one terminator per block.
		switch b.Kind {
		case BlockPlain:
			if len(b.Succs) != 1 {
				add("func %s, %s: plain block has %d succs, want 1", f.Name, b, len(b.Succs))
			}
		case BlockIf:
			if len(b.Controls) != 1 || b.Controls[0] == nil {
				add("func %s, %s: if block needs one control", f.Name, b)
			} else if !types.IsBool(b.Controls[0].Type) {
				add("func %s, %s: if control %s has type %v, want bool",
					f.Name, b, b.Controls[0], b.Controls[0].Type)
			}
			if len(b.Succs) != 2 {
				add("func %s, %s: if block has %d succs, want 2", f.Name, b, len(b.Succs))
			}
		case BlockReturn:
			if len(b.Succs) != 0 {
				add("func %s, %s: return block has %d succs, want 0", f.Name, b, len(b.Succs))
			}
			if f.Result != nil {
				if len(b.Controls) != 1 || b.Controls[0] == nil {
					add("func %s, %s: return block needs a value", f.Name, b)
				} else if !types.Identical(b.Controls[0].Type, f.Result) {
					add("func %s, %s: returns %v, want %v", f.Name, b, b.Controls[0].Type, f.Result)
				}
			}
		default:
			add("func %s, %s: block has invalid kind", f.Name, b)
		}

		for _, succ := range b.Succs {
			if !blockSet[succ] {
				add("func %s, %s: successor %s not in function", f.Name, b, succ)
				continue
			}
			if !containsBlock(succ.Preds, b) {
				add("func %s, %s: successor %s does not have %s as predecessor", f.Name, b, succ, b)
			}
		}
		for _, pred := range b.Preds {
			if !blockSet[pred] {
				add("func %s, %s: predecessor %s not in function", f.Name, b, pred)
				continue
			}
			if !containsBlock(pred.Succs, b) {
				add("func %s, %s: predecessor %s does not have %s as successor", f.Name, b, pred, b)
			}
		}
		for i, c := range b.Controls {
			if c != nil && !valueSet[c] {
				add("func %s, %s: control[%d] (%s) not found in function", f.Name, b, i, c)
			}
		}
	}

	return combineErrors(errs)
}

// VerifyModule verifies every function of m and checks that each call
// targets a routine declared in the module.
func VerifyModule(m *Module) error {
	var errs []string
	for _, f := range m.Funcs {
		if err := Verify(f); err != nil {
			errs = append(errs, err.Error())
		}
		for _, b := range f.Blocks {
			for _, v := range b.Values {
				if v.Op != OpCall {
					continue
				}
				ext, ok := v.Aux.(*Extern)
				if !ok || m.Extern(ext.Name) != ext {
					errs = append(errs, fmt.Sprintf("func %s, %s, %s: call to undeclared routine %v",
						f.Name, b, v, v.Aux))
				}
			}
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%s", strings.Join(errs, "\n"))
}

// checkOperands returns a description of a type mismatch in v's operands,
// or "" if the operands are well typed.
func checkOperands(v *Value) string {
	for _, a := range v.Args {
		if a == nil {
			return ""
		}
	}
	arity := func(n int) string {
		if len(v.Args) != n {
			return fmt.Sprintf("has %d args, want %d", len(v.Args), n)
		}
		return ""
	}
	switch v.Op {
	case OpAdd, OpSub, OpMul, OpDiv, OpMod,
		OpEq, OpNeq, OpLt, OpLeq, OpGt, OpGeq:
		if msg := arity(2); msg != "" {
			return msg
		}
		if !types.IsInt(v.Args[0].Type) || !types.IsInt(v.Args[1].Type) {
			return fmt.Sprintf("operands %v, %v, want integer", v.Args[0].Type, v.Args[1].Type)
		}
	case OpAddF, OpSubF, OpMulF, OpDivF, OpEqF:
		if msg := arity(2); msg != "" {
			return msg
		}
		if !types.IsDouble(v.Args[0].Type) || !types.IsDouble(v.Args[1].Type) {
			return fmt.Sprintf("operands %v, %v, want double", v.Args[0].Type, v.Args[1].Type)
		}
	case OpAnd, OpOr, OpXor:
		if msg := arity(2); msg != "" {
			return msg
		}
		if !types.Identical(v.Args[0].Type, v.Args[1].Type) || types.IsDouble(v.Args[0].Type) {
			return fmt.Sprintf("operands %v, %v, want matching integer or bool", v.Args[0].Type, v.Args[1].Type)
		}
	case OpNeg, OpNot, OpZeroExt, OpIntToFloat, OpLoad:
		return arity(1)
	case OpStore:
		if msg := arity(2); msg != "" {
			return msg
		}
		if !types.Identical(types.Elem(v.Args[0].Type), v.Args[1].Type) {
			return fmt.Sprintf("stores %v through %v", v.Args[1].Type, v.Args[0].Type)
		}
	case OpArrayIndexPtr:
		if msg := arity(2); msg != "" {
			return msg
		}
		if _, ok := types.Elem(v.Args[0].Type).(*types.Array); !ok {
			return fmt.Sprintf("base has type %v, want pointer to array", v.Args[0].Type)
		}
		if !types.IsInt(v.Args[1].Type) {
			return fmt.Sprintf("index has type %v, want integer", v.Args[1].Type)
		}
	}
	return ""
}

// containsBlock checks whether bs contains b.
func containsBlock(bs []*Block, b *Block) bool {
	for _, x := range bs {
		if x == b {
			return true
		}
	}
	return false
}

// combineErrors creates an error from a list of error strings, or returns nil.
func combineErrors(errs []string) error {
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("IR verification failed:\n  %s", strings.Join(errs, "\n  "))
}
