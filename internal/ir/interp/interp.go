// Package interp executes IR modules directly. It is the reference
// semantics for the IR: 32-bit wrapping integers, float64 doubles and one
// memory object per storage slot.
package interp

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/you-not-fish/mila/internal/ir"
	"github.com/you-not-fish/mila/internal/types"
)

// DefaultMaxSteps bounds execution when Machine.MaxSteps is zero.
const DefaultMaxSteps = 10_000_000

var (
	// ErrStepLimit is returned when a run exceeds its step budget.
	ErrStepLimit = errors.New("step limit exceeded")
	// ErrDivideByZero is returned for integer div or mod by zero.
	ErrDivideByZero = errors.New("integer divide by zero")
	// ErrIndexRange is returned for an array index outside the array.
	ErrIndexRange = errors.New("index out of range")
)

// RuntimeError reports a failure while executing a value.
type RuntimeError struct {
	Func  string
	Value string // printed form of the failing instruction
	Err   error
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Func, e.Value, e.Err)
}

func (e *RuntimeError) Unwrap() error { return e.Err }

// Machine runs IR against an input and an output stream.
type Machine struct {
	In       io.Reader
	Out      io.Writer
	MaxSteps int64 // 0 means DefaultMaxSteps

	in      *bufio.Reader
	globals map[*ir.Global]*object
	steps   int64
}

// Run executes the main function of mod and returns its exit status.
func Run(mod *ir.Module, in io.Reader, out io.Writer) (int32, error) {
	m := &Machine{In: in, Out: out}
	return m.Run(mod)
}

// object is the memory behind one Alloca or Global.
type object struct {
	cells []cell
}

// ref addresses one cell of an object.
type ref struct {
	obj *object
	idx int
}

// cell is a runtime value: i for integers and bools, f for doubles, p for
// addresses.
type cell struct {
	i int32
	f float64
	p ref
}

// Run executes the main function of mod.
func (m *Machine) Run(mod *ir.Module) (int32, error) {
	fn := mod.Func("main")
	if fn == nil {
		return 0, fmt.Errorf("module %s has no main function", mod.Name)
	}
	m.in = nil
	switch in := m.In.(type) {
	case nil:
	case *bufio.Reader:
		// Shared with later runs; wrapping it again would lose buffered input.
		m.in = in
	default:
		m.in = bufio.NewReader(in)
	}
	if m.Out == nil {
		m.Out = io.Discard
	}
	m.globals = make(map[*ir.Global]*object)
	m.steps = 0

	limit := m.MaxSteps
	if limit <= 0 {
		limit = DefaultMaxSteps
	}

	regs := make(map[*ir.Value]cell, fn.NumValues())
	blk := fn.Entry
	for {
		for _, v := range blk.Values {
			m.steps++
			if m.steps > limit {
				return 0, ErrStepLimit
			}
			c, err := m.eval(v, regs)
			if err != nil {
				return 0, &RuntimeError{Func: fn.Name, Value: v.LongString(), Err: err}
			}
			regs[v] = c
		}

		m.steps++
		if m.steps > limit {
			return 0, ErrStepLimit
		}
		switch blk.Kind {
		case ir.BlockPlain:
			blk = blk.Succs[0]
		case ir.BlockIf:
			if regs[blk.Controls[0]].i != 0 {
				blk = blk.Succs[0]
			} else {
				blk = blk.Succs[1]
			}
		case ir.BlockReturn:
			if len(blk.Controls) == 0 {
				return 0, nil
			}
			return regs[blk.Controls[0]].i, nil
		default:
			return 0, fmt.Errorf("%s: block %s has invalid kind", fn.Name, blk)
		}
	}
}

// Steps returns the number of steps taken by the last run.
func (m *Machine) Steps() int64 { return m.steps }

func boolCell(b bool) cell {
	if b {
		return cell{i: 1}
	}
	return cell{}
}

func (m *Machine) eval(v *ir.Value, regs map[*ir.Value]cell) (cell, error) {
	arg := func(i int) cell { return regs[v.Args[i]] }

	switch v.Op {
	case ir.OpConst32, ir.OpConstBool:
		return cell{i: int32(v.AuxInt)}, nil
	case ir.OpConstFloat:
		return cell{f: v.AuxFloat}, nil

	case ir.OpAdd:
		return cell{i: arg(0).i + arg(1).i}, nil
	case ir.OpSub:
		return cell{i: arg(0).i - arg(1).i}, nil
	case ir.OpMul:
		return cell{i: arg(0).i * arg(1).i}, nil
	case ir.OpDiv:
		if arg(1).i == 0 {
			return cell{}, ErrDivideByZero
		}
		return cell{i: arg(0).i / arg(1).i}, nil
	case ir.OpMod:
		if arg(1).i == 0 {
			return cell{}, ErrDivideByZero
		}
		return cell{i: arg(0).i % arg(1).i}, nil
	case ir.OpNeg:
		return cell{i: -arg(0).i}, nil

	case ir.OpAddF:
		return cell{f: arg(0).f + arg(1).f}, nil
	case ir.OpSubF:
		return cell{f: arg(0).f - arg(1).f}, nil
	case ir.OpMulF:
		return cell{f: arg(0).f * arg(1).f}, nil
	case ir.OpDivF:
		return cell{f: arg(0).f / arg(1).f}, nil

	case ir.OpEq:
		return boolCell(arg(0).i == arg(1).i), nil
	case ir.OpNeq:
		return boolCell(arg(0).i != arg(1).i), nil
	case ir.OpLt:
		return boolCell(arg(0).i < arg(1).i), nil
	case ir.OpLeq:
		return boolCell(arg(0).i <= arg(1).i), nil
	case ir.OpGt:
		return boolCell(arg(0).i > arg(1).i), nil
	case ir.OpGeq:
		return boolCell(arg(0).i >= arg(1).i), nil
	case ir.OpEqF:
		return boolCell(arg(0).f == arg(1).f), nil

	// Bools are 0 or 1, so the bitwise forms are also the logical ones.
	case ir.OpAnd:
		return cell{i: arg(0).i & arg(1).i}, nil
	case ir.OpOr:
		return cell{i: arg(0).i | arg(1).i}, nil
	case ir.OpXor:
		return cell{i: arg(0).i ^ arg(1).i}, nil
	case ir.OpNot:
		if types.IsBool(v.Type) {
			return cell{i: 1 - arg(0).i}, nil
		}
		return cell{i: ^arg(0).i}, nil

	case ir.OpZeroExt:
		return cell{i: arg(0).i}, nil
	case ir.OpIntToFloat:
		return cell{f: float64(arg(0).i)}, nil

	case ir.OpAlloca:
		n := 1
		if a, ok := types.Elem(v.Type).(*types.Array); ok {
			n = int(a.Len())
		}
		return cell{p: ref{obj: &object{cells: make([]cell, n)}}}, nil
	case ir.OpGlobalAddr:
		g, ok := v.Aux.(*ir.Global)
		if !ok {
			return cell{}, fmt.Errorf("global address without global")
		}
		return cell{p: ref{obj: m.global(g)}}, nil
	case ir.OpArrayIndexPtr:
		base, idx := arg(0).p, int(arg(1).i)
		if idx < 0 || idx >= len(base.obj.cells) {
			return cell{}, fmt.Errorf("%w: index %d, length %d", ErrIndexRange, idx, len(base.obj.cells))
		}
		return cell{p: ref{obj: base.obj, idx: idx}}, nil
	case ir.OpLoad:
		p := arg(0).p
		return p.obj.cells[p.idx], nil
	case ir.OpStore:
		p := arg(0).p
		p.obj.cells[p.idx] = arg(1)
		return cell{}, nil

	case ir.OpCall:
		return cell{}, m.call(v, regs)
	}
	return cell{}, fmt.Errorf("unknown op %s", v.Op)
}

func (m *Machine) global(g *ir.Global) *object {
	obj := m.globals[g]
	if obj == nil {
		c := cell{i: int32(g.Int)}
		if types.IsDouble(g.Type) {
			c = cell{f: g.Float}
		}
		obj = &object{cells: []cell{c}}
		m.globals[g] = obj
	}
	return obj
}

// call runs one of the built-in routines.
func (m *Machine) call(v *ir.Value, regs map[*ir.Value]cell) error {
	ext, ok := v.Aux.(*ir.Extern)
	if !ok {
		return fmt.Errorf("call without target")
	}
	switch ext.Name {
	case "write", "writeln":
		for _, a := range v.Args {
			if _, err := io.WriteString(m.Out, format(a.Type, regs[a])); err != nil {
				return err
			}
		}
		if ext.Name == "writeln" {
			_, err := io.WriteString(m.Out, "\n")
			return err
		}
		return nil

	case "readln":
		for _, a := range v.Args {
			if err := m.read(types.Elem(a.Type), regs[a].p); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("call to undefined routine %s", ext.Name)
}

func format(t types.Type, c cell) string {
	if types.IsDouble(t) {
		return strconv.FormatFloat(c.f, 'g', -1, 64)
	}
	return strconv.FormatInt(int64(c.i), 10)
}

// read scans one whitespace-separated number into the cell at p.
func (m *Machine) read(t types.Type, p ref) error {
	if m.in == nil {
		return fmt.Errorf("readln: %w", io.EOF)
	}
	if types.IsDouble(t) {
		var f float64
		if _, err := fmt.Fscan(m.in, &f); err != nil {
			return fmt.Errorf("readln: %w", err)
		}
		p.obj.cells[p.idx] = cell{f: f}
		return nil
	}
	var n int64
	if _, err := fmt.Fscan(m.in, &n); err != nil {
		return fmt.Errorf("readln: %w", err)
	}
	p.obj.cells[p.idx] = cell{i: int32(n)}
	return nil
}
