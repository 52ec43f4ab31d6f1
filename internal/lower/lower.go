// Package lower translates a parsed Mila program into the basic-block IR.
//
// Lowering is a single depth-first walk over the AST. Declarations allocate
// storage and resolve the matching symbols; statements and expressions emit
// typed instructions into the current block. The first semantic error
// aborts the walk.
package lower

import (
	"fmt"

	"github.com/you-not-fish/mila/internal/ir"
	"github.com/you-not-fish/mila/internal/rtabi"
	"github.com/you-not-fish/mila/internal/symtab"
	"github.com/you-not-fish/mila/internal/syntax"
	"github.com/you-not-fish/mila/internal/types"
)

// ResultKind tells a statement list what lowering a statement produced.
type ResultKind uint8

const (
	Void  ResultKind = iota // nothing
	Value                   // Result.Val holds the value written
	Break                   // control leaves the innermost loop
)

func (k ResultKind) String() string {
	switch k {
	case Void:
		return "void"
	case Value:
		return "value"
	case Break:
		return "break"
	}
	return fmt.Sprintf("ResultKind(%d)", k)
}

// Result is the outcome of lowering one statement.
type Result struct {
	Kind ResultKind
	Val  *ir.Value
}

var void = Result{Kind: Void}

// bailout carries the first error out of the walk.
type bailout struct {
	err error
}

// builder holds the state for lowering one program.
type builder struct {
	mod *ir.Module
	env *symtab.Env
	fn  *ir.Func
	b   *ir.Block // current block (nil = unreachable)

	loops []*ir.Block // exit blocks of the enclosing loops, innermost last
}

// Program lowers prog into a new module named after the program. Symbols
// already declared in env by the parser are resolved to their storage;
// declarations missing from env are added. The returned error is a
// *syntax.SemanticError.
func Program(prog *syntax.Program, env *symtab.Env) (mod *ir.Module, err error) {
	defer func() {
		if r := recover(); r != nil {
			bo, ok := r.(bailout)
			if !ok {
				panic(r)
			}
			mod, err = nil, bo.err
		}
	}()

	if env == nil {
		env = symtab.New()
	}
	mod = ir.NewModule(prog.Name.Value)
	mod.Source = prog.Pos().Filename()
	for _, fn := range rtabi.RuntimeFunctions() {
		mod.DeclareExtern(fn.Name, nil, fn.Variadic)
	}

	fn := mod.NewFunc("main", types.Typ[types.Int])
	b := &builder{
		mod: mod,
		env: env,
		fn:  fn,
		b:   fn.Entry,
	}
	b.stmts(prog.Stmts)

	if b.b != nil {
		ret := b.constInt(0)
		b.b.Kind = ir.BlockReturn
		b.b.SetControl(ret)
	}
	b.prune()
	return mod, nil
}

// errorf aborts lowering with a semantic error.
func (b *builder) errorf(pos syntax.Pos, code syntax.Code, format string, args ...interface{}) {
	panic(bailout{syntax.SemanticErrorf(pos, code, format, args...)})
}

// ----------------------------------------------------------------------------
// Blocks

func (b *builder) newBlock(hint string) *ir.Block {
	return b.fn.NewBlock(ir.BlockPlain, hint)
}

// jump ends the current block with an unconditional branch to to.
func (b *builder) jump(to *ir.Block) {
	b.b.AddSucc(to)
}

// branch ends the current block with a conditional branch.
func (b *builder) branch(cond *ir.Value, yes, no *ir.Block) {
	b.b.Kind = ir.BlockIf
	b.b.SetControl(cond)
	b.b.AddSucc(yes)
	b.b.AddSucc(no)
}

// prune removes every non-entry block that cannot be reached.
func (b *builder) prune() {
	for changed := true; changed; {
		changed = false
		for _, blk := range b.fn.Blocks {
			if blk != b.fn.Entry && len(blk.Preds) == 0 {
				b.fn.RemoveBlock(blk)
				changed = true
				break
			}
		}
	}
}

// ----------------------------------------------------------------------------
// Declarations

// entryAlloca creates a storage slot for typ in the entry block.
func (b *builder) entryAlloca(typ types.Type, name string) *ir.Value {
	v := b.fn.NewValue(b.fn.Entry, ir.OpAlloca, types.NewPointer(typ))
	v.Aux = name
	return v
}

// declare finds or installs the symbol for a declaration and attaches
// storage to it.
func (b *builder) declare(name *syntax.Name, shape symtab.Shape) *ir.Value {
	sym := b.env.Lookup(name.Value)
	if sym == nil {
		var err error
		if sym, err = b.env.Declare(name.Value, shape); err != nil {
			b.errorf(name.Pos(), syntax.Duplicate, "duplicate declaration of %s", name.Value)
		}
	}
	if sym.Resolved() || sym.Shape != shape {
		b.errorf(name.Pos(), syntax.Duplicate, "duplicate declaration of %s", name.Value)
	}
	slot := b.entryAlloca(shape.StorageType(), name.Value)
	if err := b.env.Resolve(name.Value, slot); err != nil {
		b.errorf(name.Pos(), syntax.Duplicate, "duplicate declaration of %s", name.Value)
	}
	return slot
}

func (b *builder) varDecl(d *syntax.VarDecl) {
	b.declare(d.Name, symtab.ScalarShape(symtab.Var, d.Type))
}

func (b *builder) arrayDecl(d *syntax.ArrayDecl) {
	if d.Hi < d.Lo {
		b.errorf(d.Pos(), syntax.BadBounds, "array upper bound %d is below lower bound %d", d.Hi, d.Lo)
	}
	b.declare(d.Name, symtab.ArrayShape(d.Elem, d.Lo, d.Hi))
}

// constDecl materializes the value as a module constant and keeps a
// local copy that is read like any variable.
func (b *builder) constDecl(d *syntax.ConstDecl) {
	lit, ok := d.Value.(*syntax.BasicLit)
	if !ok {
		b.errorf(d.Value.Pos(), syntax.NotConstant, "initializer of %s is not a constant", d.Name.Value)
	}
	g := b.mod.NewGlobal(d.Name.Value, types.Typ[types.Int])
	g.Int = lit.Value

	slot := b.declare(d.Name, symtab.ScalarShape(symtab.Const, types.Typ[types.Int]))
	addr := b.fn.NewValue(b.b, ir.OpGlobalAddr, types.NewPointer(g.Type))
	addr.Aux = g
	copied := b.fn.NewValue(b.b, ir.OpLoad, g.Type, addr)
	b.fn.NewValue(b.b, ir.OpStore, nil, slot, copied)
}

// ----------------------------------------------------------------------------
// Symbols

// lookup returns the resolved symbol for name.
func (b *builder) lookup(name *syntax.Name) *symtab.Symbol {
	sym := b.env.Lookup(name.Value)
	if sym == nil || !sym.Resolved() {
		b.errorf(name.Pos(), syntax.Undeclared, "undeclared name %s", name.Value)
	}
	return sym
}

// addr returns the address of the storage ref denotes and the scalar
// type stored there.
func (b *builder) addr(ref syntax.Ref) (*ir.Value, *types.Basic) {
	switch r := ref.(type) {
	case *syntax.Name:
		sym := b.lookup(r)
		if sym.Shape.IsArray() {
			b.errorf(r.Pos(), syntax.NotScalar, "array %s used without index", r.Value)
		}
		return sym.Storage, sym.Shape.Type

	case *syntax.IndexExpr:
		sym := b.lookup(r.X)
		if !sym.Shape.IsArray() {
			b.errorf(r.Pos(), syntax.NotArray, "cannot index %s (%s)", r.X.Value, sym.Shape)
		}
		idx := b.expr(r.Index)
		switch {
		case types.IsDouble(idx.Type):
			b.errorf(r.Index.Pos(), syntax.FloatingPoint, "array index of %s is double", r.X.Value)
		case types.IsBool(idx.Type):
			idx = b.widen(idx)
		}
		elem := sym.Shape.Type
		ptr := b.fn.NewValue(b.b, ir.OpArrayIndexPtr, types.NewPointer(elem), sym.Storage, idx)
		return ptr, elem
	}
	panic(fmt.Sprintf("lower.builder.addr: unhandled %T", ref))
}
