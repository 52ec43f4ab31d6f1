package ir

import "github.com/you-not-fish/mila/internal/types"

// Func is an IR function: a control flow graph of Blocks.
type Func struct {
	Name string

	// Result is the return type; nil for void.
	Result types.Type

	// Blocks is the list of basic blocks. Blocks[0] is always the entry block.
	Blocks []*Block

	Entry *Block

	// Module is the module the function belongs to, if any.
	Module *Module

	nextValueID ID
	nextBlockID ID
}

// NewFunc creates a parameterless function with an entry block.
func NewFunc(name string, result types.Type) *Func {
	f := &Func{
		Name:   name,
		Result: result,
	}
	f.Entry = f.NewBlock(BlockPlain, "")
	return f
}

// NewBlock creates a new basic block and appends it to the function.
func (f *Func) NewBlock(kind BlockKind, hint string) *Block {
	b := &Block{
		ID:   f.nextBlockID,
		Kind: kind,
		Hint: hint,
		Func: f,
	}
	f.nextBlockID++
	f.Blocks = append(f.Blocks, b)
	return b
}

// NewValue creates a new Value at the end of block b.
func (f *Func) NewValue(b *Block, op Op, typ types.Type, args ...*Value) *Value {
	v := &Value{
		ID:    f.nextValueID,
		Op:    op,
		Type:  typ,
		Block: b,
	}
	f.nextValueID++
	for _, arg := range args {
		v.AddArg(arg)
	}
	b.Values = append(b.Values, v)
	return v
}

// RemoveBlock drops a block that has no predecessors from the function,
// unlinking it from its successors and releasing the uses its values and
// controls hold on their arguments.
func (f *Func) RemoveBlock(dead *Block) {
	for _, v := range dead.Values {
		for _, a := range v.Args {
			a.Uses--
		}
	}
	for _, c := range dead.Controls {
		if c != nil {
			c.Uses--
		}
	}
	dead.Controls = nil
	for _, s := range dead.Succs {
		for i, p := range s.Preds {
			if p == dead {
				s.Preds = append(s.Preds[:i], s.Preds[i+1:]...)
				break
			}
		}
	}
	dead.Succs = nil
	for i, blk := range f.Blocks {
		if blk == dead {
			f.Blocks = append(f.Blocks[:i], f.Blocks[i+1:]...)
			return
		}
	}
}

// NumValues returns the total number of values across all blocks.
func (f *Func) NumValues() int {
	n := 0
	for _, b := range f.Blocks {
		n += len(b.Values)
	}
	return n
}
