package passes

import "github.com/you-not-fish/mila/internal/ir"

// DeadBlocks turns If blocks with a constant condition into Plain jumps
// and then removes every block the entry can no longer reach. Lowering
// leaves such blocks behind a break and after "while 1" style loops.
func DeadBlocks(f *ir.Func) {
	for _, b := range f.Blocks {
		if b.Kind != ir.BlockIf || len(b.Controls) == 0 || b.Controls[0].Op != ir.OpConstBool {
			continue
		}
		keep, drop := b.Succs[0], b.Succs[1]
		if b.Controls[0].AuxInt == 0 {
			keep, drop = drop, keep
		}
		unlinkPred(drop, b)
		b.Controls[0].Uses--
		b.Controls = nil
		b.Kind = ir.BlockPlain
		b.Succs = []*ir.Block{keep}
	}

	live := ir.Reachable(f)
	for _, b := range append([]*ir.Block(nil), f.Blocks...) {
		if !live[b] {
			f.RemoveBlock(b)
		}
	}
}

// unlinkPred removes one occurrence of pred from b.Preds.
func unlinkPred(b, pred *ir.Block) {
	for i, p := range b.Preds {
		if p == pred {
			b.Preds = append(b.Preds[:i], b.Preds[i+1:]...)
			return
		}
	}
}
