// Package main implements the Mila compiler entry point.
package main

import (
	"bufio"
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/you-not-fish/mila/internal/codegen"
	"github.com/you-not-fish/mila/internal/compiler"
	"github.com/you-not-fish/mila/internal/ir"
	"github.com/you-not-fish/mila/internal/syntax"
)

// Compiler flags
var (
	emitTokens  = flag.Bool("emit-tokens", false, "Output token stream")
	emitAST     = flag.Bool("emit-ast", false, "Output AST")
	astFormat   = flag.String("ast-format", "text", "AST output format (text or json)")
	emitIR      = flag.Bool("emit-ir", false, "Output IR")
	emitLL      = flag.Bool("emit-ll", false, "Output LLVM IR (the default action)")
	runProg     = flag.Bool("run", false, "Interpret the program, reading stdin and writing stdout")
	output      = flag.String("o", "", "Output file (single input only)")
	legacyBreak = flag.Bool("legacy-break", false, "Hoist a bare break loop body in front of the loop")
	irVerify    = flag.Bool("ir-verify", false, "Verify IR after lowering and each pass")
	optimize    = flag.Bool("O", false, "Run the optimization passes")
	dumpBefore  = flag.String("dump-before", "", "Dump IR before pass (name or \"*\")")
	dumpAfter   = flag.String("dump-after", "", "Dump IR after pass (name or \"*\")")
	target      = flag.String("target", "", "LLVM target triple written into the module")
	jobs        = flag.Int("j", runtime.NumCPU(), "Number of files compiled concurrently")
	trace       = flag.Bool("trace", false, "Output timing trace")
	version     = flag.Bool("version", false, "Print version")
)

// Version information
const Version = "0.1.0-dev"

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Mila Compiler %s\n\n", Version)
		fmt.Fprintf(os.Stderr, "Usage: milac [options] <file.mila>...\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if *version {
		fmt.Printf("milac version %s\n", Version)
		fmt.Printf("go version %s\n", runtime.Version())
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "error: no input file")
		fmt.Fprintln(os.Stderr, "usage: milac [options] <file.mila>...")
		os.Exit(1)
	}

	if *emitTokens {
		code := 0
		for _, filename := range args {
			code = max(code, runEmitTokens(filename))
		}
		os.Exit(code)
	}

	os.Exit(runFiles(args))
}

// runEmitTokens scans the input file and prints all tokens with positions.
func runEmitTokens(filename string) int {
	f, err := os.Open(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	defer f.Close()

	var errs []string
	errh := func(line, col uint32, msg string) {
		errs = append(errs, fmt.Sprintf("%s: %s", syntax.NewPos(filename, line, col), msg))
	}

	s := syntax.NewScanner(filename, f, errh)

	fmt.Printf("%-20s %-12s %s\n", "POSITION", "TOKEN", "LITERAL")
	fmt.Printf("%-20s %-12s %s\n", strings.Repeat("-", 20), strings.Repeat("-", 12), strings.Repeat("-", 20))

	for {
		tok := s.Next()
		fmt.Printf("%-20s %-12s %q\n", s.Pos(), tok, s.Literal())
		if tok.IsEOF() {
			break
		}
	}

	if len(errs) > 0 {
		fmt.Println()
		fmt.Println("Errors:")
		for _, e := range errs {
			fmt.Printf("  %s\n", e)
		}
		return 1
	}
	return 0
}

// result holds the buffered output of one file.
type result struct {
	stdout bytes.Buffer
	stderr bytes.Buffer
	code   int
}

// runFiles processes every file in its own compilation session, at most
// -j at a time, and prints the outputs in argument order.
func runFiles(files []string) int {
	if *output != "" && len(files) > 1 {
		fmt.Fprintln(os.Stderr, "error: -o requires a single input file")
		return 1
	}

	var logger *slog.Logger
	if *trace {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	limit := *jobs
	if *runProg || limit < 1 {
		// Programs share stdin.
		limit = 1
	}
	stdin := bufio.NewReader(os.Stdin)

	results := make([]result, len(files))
	var g errgroup.Group
	g.SetLimit(limit)
	for i, filename := range files {
		i, filename := i, filename
		g.Go(func() error {
			r := &results[i]
			r.code = processFile(filename, logger, stdin, &r.stdout, &r.stderr)
			return nil
		})
	}
	// Failures are reported per file through results, never through the group.
	_ = g.Wait()

	code := 0
	for i := range results {
		r := &results[i]
		os.Stdout.Write(r.stdout.Bytes())
		os.Stderr.Write(r.stderr.Bytes())
		code = max(code, r.code)
	}
	return code
}

// processFile compiles one file and performs the selected action.
func processFile(filename string, logger *slog.Logger, stdin io.Reader, stdout, stderr io.Writer) int {
	f, err := os.Open(filename)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	defer f.Close()

	var dumps bytes.Buffer
	opts := &compiler.Options{
		LegacyBreakPlacement: *legacyBreak,
		Verify:               *irVerify,
		Optimize:             *optimize,
		DumpBefore:           *dumpBefore,
		DumpAfter:            *dumpAfter,
		DumpOut:              &dumps,
		Logger:               logger,
	}

	if *emitAST {
		u, err := compiler.Parse(filename, f, opts)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		return writeOutput(stdout, stderr, func(w io.Writer) error {
			if *astFormat == "json" {
				return syntax.FprintJSON(w, u.Program)
			}
			syntax.Fprint(w, u.Program)
			return nil
		})
	}

	u, err := compiler.Compile(filename, f, opts)
	stderr.Write(dumps.Bytes())
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	switch {
	case *runProg:
		status, err := u.Run(stdin, stdout)
		if err != nil {
			fmt.Fprintf(stderr, "%s: runtime error: %v\n", filename, err)
			return 2
		}
		return int(status)

	case *emitIR:
		return writeOutput(stdout, stderr, func(w io.Writer) error {
			ir.FprintModule(w, u.Module)
			return nil
		})

	default:
		return writeOutput(stdout, stderr, func(w io.Writer) error {
			return u.EmitLLVM(w, &codegen.Options{TargetTriple: *target})
		})
	}
}

// writeOutput sends the output to the -o file if one was given, otherwise
// to stdout.
func writeOutput(stdout, stderr io.Writer, emit func(w io.Writer) error) int {
	if *output == "" {
		if err := emit(stdout); err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return 1
		}
		return 0
	}

	out, err := os.Create(*output)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	err = emit(out)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", errors.Join(err, os.Remove(*output)))
		return 1
	}
	return 0
}
