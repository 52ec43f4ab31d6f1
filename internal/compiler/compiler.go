// Package compiler runs the Mila front end as one session: parse into a
// fresh symbol environment, lower to IR, then optionally verify and
// optimize. Sessions share no state, so separate files may be compiled
// concurrently.
package compiler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/you-not-fish/mila/internal/codegen"
	"github.com/you-not-fish/mila/internal/ir"
	"github.com/you-not-fish/mila/internal/ir/interp"
	"github.com/you-not-fish/mila/internal/ir/passes"
	"github.com/you-not-fish/mila/internal/lower"
	"github.com/you-not-fish/mila/internal/symtab"
	"github.com/you-not-fish/mila/internal/syntax"
)

// Unit is the result of compiling one source file.
type Unit struct {
	Filename string
	Program  *syntax.Program
	Env      *symtab.Env
	Module   *ir.Module // nil after Parse
}

// Parse parses src into a new Unit without lowering it.
func Parse(filename string, src io.Reader, opts *Options) (*Unit, error) {
	o := opts.normalize()
	return parse(filename, src, o)
}

func parse(filename string, src io.Reader, o Options) (*Unit, error) {
	u := &Unit{Filename: filename, Env: symtab.New()}
	err := phase(o.Logger, filename, "parse", func() error {
		var err error
		u.Program, err = syntax.Parse(filename, src, u.Env, o.mode())
		return err
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Compile parses and lowers src. It returns the first error and no Unit
// if any phase fails.
func Compile(filename string, src io.Reader, opts *Options) (*Unit, error) {
	o := opts.normalize()
	u, err := parse(filename, src, o)
	if err != nil {
		return nil, err
	}

	err = phase(o.Logger, filename, "lower", func() error {
		var err error
		u.Module, err = lower.Program(u.Program, u.Env)
		return err
	})
	if err != nil {
		return nil, err
	}
	if o.ModuleName != "" {
		u.Module.Name = o.ModuleName
	}

	if o.Verify {
		err = phase(o.Logger, filename, "verify", func() error {
			return ir.VerifyModule(u.Module)
		})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filename, err)
		}
	}

	if o.Optimize {
		cfg := passes.Config{
			DumpBefore: o.DumpBefore,
			DumpAfter:  o.DumpAfter,
			Verify:     o.Verify,
			Out:        o.DumpOut,
		}
		err = phase(o.Logger, filename, "optimize", func() error {
			return passes.RunModule(u.Module, passes.Optimize, cfg)
		})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filename, err)
		}
	}
	return u, nil
}

// EmitLLVM writes the unit's module as LLVM IR.
func (u *Unit) EmitLLVM(w io.Writer, opts *codegen.Options) error {
	if u.Module == nil {
		return fmt.Errorf("%s: not compiled", u.Filename)
	}
	return codegen.Generate(w, u.Module, opts)
}

// Run interprets the unit's module and returns the program's exit status.
func (u *Unit) Run(in io.Reader, out io.Writer) (int32, error) {
	if u.Module == nil {
		return 0, fmt.Errorf("%s: not compiled", u.Filename)
	}
	return interp.Run(u.Module, in, out)
}

// phase runs fn and logs its duration.
func phase(logger *slog.Logger, filename, name string, fn func() error) error {
	start := time.Now()
	err := fn()
	logger.LogAttrs(context.Background(), slog.LevelDebug, "phase",
		slog.String("file", filename),
		slog.String("phase", name),
		slog.Duration("elapsed", time.Since(start)),
		slog.Bool("ok", err == nil),
	)
	return err
}
