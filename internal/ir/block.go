package ir

import "fmt"

// BlockKind describes how a basic block terminates.
type BlockKind int

const (
	BlockInvalid BlockKind = iota
	BlockPlain             // unconditional jump to Succs[0]
	BlockIf                // if Controls[0] then Succs[0] else Succs[1]
	BlockReturn            // function return; Controls[0] = return value
)

var blockKindNames = [...]string{
	BlockInvalid: "invalid",
	BlockPlain:   "plain",
	BlockIf:      "if",
	BlockReturn:  "ret",
}

// String returns the string representation of the block kind.
func (k BlockKind) String() string {
	if k >= 0 && int(k) < len(blockKindNames) {
		return blockKindNames[k]
	}
	return "unknown"
}

// Block is a basic block: straight-line Values followed by the terminator
// described by Kind, Controls and Succs.
type Block struct {
	ID ID

	Kind BlockKind

	// Hint names the block's role in the construct that created it
	// ("init", "cond", "body", "after", "then", "else"). Empty for entry.
	Hint string

	// Controls holds the terminator's operand values.
	Controls []*Value

	Succs []*Block
	Preds []*Block

	Values []*Value

	Func *Func
}

// String returns a short string representation (e.g., "b3").
func (b *Block) String() string {
	return fmt.Sprintf("b%d", b.ID)
}

// Label returns the name used for the block in printed output.
func (b *Block) Label() string {
	if b.Func != nil && b == b.Func.Entry {
		return "entry"
	}
	if b.Hint != "" {
		return fmt.Sprintf("%s%d", b.Hint, b.ID)
	}
	return b.String()
}

// AddSucc adds a successor block, updating both Succs and the successor's Preds.
func (b *Block) AddSucc(succ *Block) {
	b.Succs = append(b.Succs, succ)
	succ.Preds = append(succ.Preds, b)
}

// SetControl sets the branch/return control value.
func (b *Block) SetControl(v *Value) {
	b.Controls = []*Value{v}
	if v != nil {
		v.Uses++
	}
}

// Terminated reports whether the block already has its terminator.
func (b *Block) Terminated() bool {
	switch b.Kind {
	case BlockPlain:
		return len(b.Succs) > 0
	case BlockIf, BlockReturn:
		return true
	}
	return false
}
