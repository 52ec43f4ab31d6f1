// Package passes runs optional transformations over IR functions.
package passes

import (
	"fmt"
	"io"

	"github.com/you-not-fish/mila/internal/ir"
)

// Pass describes a single IR transformation.
type Pass struct {
	Name string
	Fn   func(f *ir.Func)
}

// Config controls pass execution behavior.
type Config struct {
	DumpBefore string    // dump IR before this pass ("*" for all)
	DumpAfter  string    // dump IR after this pass ("*" for all)
	Verify     bool      // verify IR before/after each pass
	DumpFunc   string    // restrict dumps to this function name
	Out        io.Writer // destination of dumps; nil disables them
}

// Optimize is the pipeline behind milac -O.
var Optimize = []Pass{
	{Name: "constfold", Fn: ConstFold},
	{Name: "deadblocks", Fn: DeadBlocks},
	{Name: "deadcode", Fn: DeadCode},
}

// Run executes the given passes on f in order.
func Run(f *ir.Func, passes []Pass, cfg Config) error {
	for _, p := range passes {
		if cfg.Out != nil && shouldDump(cfg.DumpBefore, p.Name) && matchFunc(cfg.DumpFunc, f.Name) {
			fmt.Fprintf(cfg.Out, "--- before %s (%s) ---\n", p.Name, f.Name)
			ir.Fprint(cfg.Out, f)
			fmt.Fprintln(cfg.Out)
		}

		if cfg.Verify {
			if err := ir.Verify(f); err != nil {
				return fmt.Errorf("verify before %s: %w", p.Name, err)
			}
		}

		p.Fn(f)

		if cfg.Verify {
			if err := ir.Verify(f); err != nil {
				return fmt.Errorf("verify after %s: %w", p.Name, err)
			}
		}

		if cfg.Out != nil && shouldDump(cfg.DumpAfter, p.Name) && matchFunc(cfg.DumpFunc, f.Name) {
			fmt.Fprintf(cfg.Out, "--- after %s (%s) ---\n", p.Name, f.Name)
			ir.Fprint(cfg.Out, f)
			fmt.Fprintln(cfg.Out)
		}
	}
	return nil
}

// RunModule runs the passes over every function of m.
func RunModule(m *ir.Module, passes []Pass, cfg Config) error {
	for _, f := range m.Funcs {
		if err := Run(f, passes, cfg); err != nil {
			return fmt.Errorf("%s: %w", f.Name, err)
		}
	}
	return nil
}

func shouldDump(pattern, name string) bool {
	return pattern == "*" || pattern == name
}

func matchFunc(filter, name string) bool {
	return filter == "" || filter == name
}
