package compiler

import (
	"io"
	"log/slog"

	"github.com/you-not-fish/mila/internal/syntax"
)

// Options controls one compilation session.
type Options struct {
	// LegacyBreakPlacement hoists a bare break forming a whole loop body
	// in front of the loop, as early Mila compilers did.
	LegacyBreakPlacement bool
	// Verify checks the IR after lowering and around every pass.
	Verify bool
	// Optimize runs the passes.Optimize pipeline after lowering.
	Optimize bool
	// ModuleName overrides the module name taken from the program header.
	ModuleName string

	// DumpBefore and DumpAfter name a pass ("*" for all) whose input or
	// output IR is written to DumpOut.
	DumpBefore string
	DumpAfter  string
	DumpOut    io.Writer

	// Logger receives one debug record per phase with its duration.
	// Nil disables tracing.
	Logger *slog.Logger
}

// normalize normalizes the Options.
func (o *Options) normalize() Options {
	if o == nil {
		return Options{Logger: discardLogger}
	}

	out := *o
	if out.Logger == nil {
		out.Logger = discardLogger
	}
	return out
}

func (o Options) mode() syntax.Mode {
	var m syntax.Mode
	if o.LegacyBreakPlacement {
		m |= syntax.LegacyBreak
	}
	return m
}

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))
