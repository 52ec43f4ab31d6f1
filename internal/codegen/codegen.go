// Package codegen translates IR modules into textual LLVM IR.
//
// Each IR value with a result becomes one LLVM instruction named %vN, each
// block a label named as in the IR dump. Constants and global addresses are
// folded into their uses. The output targets opaque pointers (LLVM 15+).
package codegen

import (
	"fmt"
	"io"

	"github.com/you-not-fish/mila/internal/ir"
	"github.com/you-not-fish/mila/internal/rtabi"
)

// Options configures the module header.
type Options struct {
	// TargetTriple is written as the module's target triple when set.
	TargetTriple string
	// DataLayout is written as the module's data layout when set.
	DataLayout string
}

// generator holds the state for emitting one module.
type generator struct {
	e    emitter
	mod  *ir.Module
	opts Options
}

// Generate writes mod to w as LLVM IR. It returns the first write error,
// or an error if the module calls a routine the runtime does not provide.
func Generate(w io.Writer, mod *ir.Module, opts *Options) error {
	g := &generator{e: emitter{w: w}, mod: mod}
	if opts != nil {
		g.opts = *opts
	}
	for _, ext := range mod.Externs {
		if _, ok := rtabi.Lookup(ext.Name); !ok {
			return fmt.Errorf("codegen: module %s declares unknown routine %s", mod.Name, ext.Name)
		}
	}

	g.header()
	if len(mod.Globals) > 0 {
		g.e.emitLine()
		for _, gl := range mod.Globals {
			g.global(gl)
		}
	}
	if len(mod.Externs) > 0 {
		g.e.emitLine()
		for _, ext := range mod.Externs {
			g.declare(ext)
		}
	}
	for _, fn := range mod.Funcs {
		g.e.emitLine()
		g.lowerFunc(fn)
	}
	return g.e.err
}

func (g *generator) header() {
	g.e.emit("; ModuleID = '%s'", g.mod.Name)
	if g.mod.Source != "" {
		g.e.emit("source_filename = %q", g.mod.Source)
	}
	if g.opts.DataLayout != "" {
		g.e.emit("target datalayout = %q", g.opts.DataLayout)
	}
	if g.opts.TargetTriple != "" {
		g.e.emit("target triple = %q", g.opts.TargetTriple)
	}
}

// global emits a module constant.
func (g *generator) global(gl *ir.Global) {
	val := fmt.Sprint(gl.Int)
	if llvmType(gl.Type) == rtabi.LLVMTypeDouble {
		val = formatFloat(gl.Float)
	}
	g.e.emit("@%s = internal constant %s %s", gl.Name, llvmType(gl.Type), val)
}

// declare emits the declaration of a runtime routine.
func (g *generator) declare(ext *ir.Extern) {
	params := ""
	if ext.Variadic {
		params = "..."
	}
	g.e.emit("declare %s @%s(%s)", llvmReturnType(ext.Result), ext.Name, params)
}
