package main

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const factorial = `program fact;
var n, i, r: integer;
begin
  n := 5;
  r := 1;
  for i := 2 to n do r := r * i;
  writeln(r);
end.
`

func TestRunFilesDefaultEmitsLLVM(t *testing.T) {
	filename := writeTempMilaFile(t, factorial)
	code, out, errOut := captureOutput(t, func() int {
		return runFiles([]string{filename})
	})

	if code != 0 {
		t.Fatalf("runFiles exit=%d\nstderr:\n%s", code, errOut)
	}
	for _, want := range []string{"; ModuleID = 'fact'", "declare void @writeln(...)", "define i32 @main() {"} {
		if !strings.Contains(out, want) {
			t.Fatalf("LLVM output missing %q:\n%s", want, out)
		}
	}
}

func TestRunFilesTarget(t *testing.T) {
	setFlag(t, target, "x86_64-pc-linux-gnu")
	filename := writeTempMilaFile(t, factorial)
	_, out, _ := captureOutput(t, func() int {
		return runFiles([]string{filename})
	})
	if !strings.Contains(out, `target triple = "x86_64-pc-linux-gnu"`) {
		t.Fatalf("LLVM output missing target triple:\n%s", out)
	}
}

func TestRunFilesRun(t *testing.T) {
	setFlag(t, runProg, true)
	filename := writeTempMilaFile(t, factorial)
	code, out, errOut := captureOutput(t, func() int {
		return runFiles([]string{filename})
	})

	if code != 0 {
		t.Fatalf("runFiles exit=%d\nstderr:\n%s", code, errOut)
	}
	if out != "120\n" {
		t.Fatalf("output = %q, want %q", out, "120\n")
	}
}

func TestRunFilesRunSharesStdin(t *testing.T) {
	setFlag(t, runProg, true)
	src := "program echo; var x: integer; begin readln(x); writeln(x); end."
	a := writeTempMilaFile(t, src)
	b := writeTempMilaFile(t, src)
	withStdin(t, "3\n4\n")

	code, out, errOut := captureOutput(t, func() int {
		return runFiles([]string{a, b})
	})
	if code != 0 {
		t.Fatalf("runFiles exit=%d\nstderr:\n%s", code, errOut)
	}
	if out != "3\n4\n" {
		t.Fatalf("output = %q, want %q", out, "3\n4\n")
	}
}

func TestRunFilesRuntimeError(t *testing.T) {
	setFlag(t, runProg, true)
	filename := writeTempMilaFile(t, "program p; var x: integer; begin x := 0; writeln(1 div x); end.")
	code, _, errOut := captureOutput(t, func() int {
		return runFiles([]string{filename})
	})

	if code != 2 {
		t.Fatalf("runFiles exit=%d, want 2", code)
	}
	if !strings.Contains(errOut, "runtime error") {
		t.Fatalf("stderr missing runtime error:\n%s", errOut)
	}
}

func TestRunFilesEmitIR(t *testing.T) {
	setFlag(t, emitIR, true)
	filename := writeTempMilaFile(t, factorial)
	code, out, errOut := captureOutput(t, func() int {
		return runFiles([]string{filename})
	})

	if code != 0 {
		t.Fatalf("runFiles exit=%d\nstderr:\n%s", code, errOut)
	}
	if !strings.HasPrefix(out, "module fact\n") {
		t.Fatalf("IR output missing module header:\n%s", out)
	}
	if !strings.Contains(out, "func main() integer:") {
		t.Fatalf("IR output missing main:\n%s", out)
	}
}

func TestRunFilesOptimizeDumps(t *testing.T) {
	setFlag(t, emitIR, true)
	setFlag(t, optimize, true)
	setFlag(t, dumpAfter, "constfold")
	filename := writeTempMilaFile(t, "program p; var x: integer; begin x := 3 + 4; end.")
	code, out, errOut := captureOutput(t, func() int {
		return runFiles([]string{filename})
	})

	if code != 0 {
		t.Fatalf("runFiles exit=%d\nstderr:\n%s", code, errOut)
	}
	if !strings.Contains(errOut, "constfold") {
		t.Fatalf("stderr missing pass dump:\n%s", errOut)
	}
	if !strings.Contains(out, "Const32 <integer> [7]") {
		t.Fatalf("IR output not folded:\n%s", out)
	}
}

func TestRunFilesKeepsArgumentOrder(t *testing.T) {
	setFlag(t, emitIR, true)
	setFlag(t, jobs, 4)

	var files []string
	for _, name := range []string{"a", "b", "c", "d"} {
		files = append(files, writeTempMilaFile(t, "program "+name+"; begin writeln(1); end."))
	}
	code, out, errOut := captureOutput(t, func() int {
		return runFiles(files)
	})

	if code != 0 {
		t.Fatalf("runFiles exit=%d\nstderr:\n%s", code, errOut)
	}
	last := -1
	for _, name := range []string{"a", "b", "c", "d"} {
		i := strings.Index(out, "module "+name+"\n")
		if i <= last {
			t.Fatalf("module %s out of order:\n%s", name, out)
		}
		last = i
	}
}

func TestRunFilesReportsEveryFile(t *testing.T) {
	good := writeTempMilaFile(t, factorial)
	bad := writeTempMilaFile(t, "program p begin end.")
	code, out, errOut := captureOutput(t, func() int {
		return runFiles([]string{bad, good})
	})

	if code != 1 {
		t.Fatalf("runFiles exit=%d, want 1", code)
	}
	if !strings.Contains(errOut, bad+":1:11: ") {
		t.Fatalf("stderr missing positioned syntax error:\n%s", errOut)
	}
	if !strings.Contains(out, "define i32 @main()") {
		t.Fatalf("valid file not compiled:\n%s", out)
	}
}

func TestRunFilesSemanticError(t *testing.T) {
	filename := writeTempMilaFile(t, "program p; begin x := 1; end.")
	code, _, errOut := captureOutput(t, func() int {
		return runFiles([]string{filename})
	})

	if code != 1 {
		t.Fatalf("runFiles exit=%d, want 1", code)
	}
	if !strings.Contains(errOut, "x") || !strings.Contains(errOut, filename+":1:") {
		t.Fatalf("stderr missing undeclared x:\n%s", errOut)
	}
}

func TestRunFilesMissingFile(t *testing.T) {
	code, _, errOut := captureOutput(t, func() int {
		return runFiles([]string{filepath.Join(t.TempDir(), "missing.mila")})
	})
	if code != 1 || !strings.HasPrefix(errOut, "error: ") {
		t.Fatalf("runFiles exit=%d stderr=%q, want open error", code, errOut)
	}
}

func TestRunFilesOutputFile(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out.ll")
	setFlag(t, output, dest)
	filename := writeTempMilaFile(t, factorial)
	code, out, errOut := captureOutput(t, func() int {
		return runFiles([]string{filename})
	})

	if code != 0 {
		t.Fatalf("runFiles exit=%d\nstderr:\n%s", code, errOut)
	}
	if out != "" {
		t.Fatalf("unexpected stdout with -o:\n%s", out)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(data), "define i32 @main()") {
		t.Fatalf("output file missing main:\n%s", data)
	}
}

func TestRunFilesOutputNeedsSingleInput(t *testing.T) {
	setFlag(t, output, filepath.Join(t.TempDir(), "out.ll"))
	a := writeTempMilaFile(t, factorial)
	b := writeTempMilaFile(t, factorial)
	code, _, errOut := captureOutput(t, func() int {
		return runFiles([]string{a, b})
	})
	if code != 1 || !strings.Contains(errOut, "-o requires a single input file") {
		t.Fatalf("runFiles exit=%d stderr=%q, want -o error", code, errOut)
	}
}

func TestRunFilesEmitAST(t *testing.T) {
	setFlag(t, emitAST, true)
	filename := writeTempMilaFile(t, factorial)
	code, out, errOut := captureOutput(t, func() int {
		return runFiles([]string{filename})
	})

	if code != 0 {
		t.Fatalf("runFiles exit=%d\nstderr:\n%s", code, errOut)
	}
	if !strings.HasPrefix(out, "Program ") || !strings.Contains(out, "fact") {
		t.Fatalf("AST output missing program node:\n%s", out)
	}
}

func TestRunFilesEmitASTJSON(t *testing.T) {
	setFlag(t, emitAST, true)
	setFlag(t, astFormat, "json")
	filename := writeTempMilaFile(t, factorial)
	code, out, errOut := captureOutput(t, func() int {
		return runFiles([]string{filename})
	})

	if code != 0 {
		t.Fatalf("runFiles exit=%d\nstderr:\n%s", code, errOut)
	}
	var doc struct {
		Type string `json:"type"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("AST output is not JSON: %v\n%s", err, out)
	}
	if doc.Type != "Program" || doc.Name != "fact" {
		t.Fatalf("AST root = %+v, want Program fact", doc)
	}
}

func TestRunFilesTrace(t *testing.T) {
	setFlag(t, trace, true)
	filename := writeTempMilaFile(t, factorial)
	code, _, errOut := captureOutput(t, func() int {
		return runFiles([]string{filename})
	})

	if code != 0 {
		t.Fatalf("runFiles exit=%d\nstderr:\n%s", code, errOut)
	}
	for _, p := range []string{"phase=parse", "phase=lower"} {
		if !strings.Contains(errOut, p) {
			t.Fatalf("trace missing %s:\n%s", p, errOut)
		}
	}
}

func TestRunEmitTokens(t *testing.T) {
	filename := writeTempMilaFile(t, "program p;\nbegin x := $1F end.")
	code, out, errOut := captureOutput(t, func() int {
		return runEmitTokens(filename)
	})

	if code != 0 {
		t.Fatalf("runEmitTokens exit=%d\nstderr:\n%s", code, errOut)
	}
	if !strings.Contains(out, "POSITION") {
		t.Fatalf("token output missing header:\n%s", out)
	}
	if !strings.Contains(out, filename+":2:12") {
		t.Fatalf("token output missing number position:\n%s", out)
	}
	if !strings.Contains(out, "EOF") {
		t.Fatalf("token output missing EOF:\n%s", out)
	}
}

func setFlag[T any](t *testing.T, p *T, v T) {
	t.Helper()
	old := *p
	*p = v
	t.Cleanup(func() { *p = old })
}

func withStdin(t *testing.T, input string) {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe stdin: %v", err)
	}
	if _, err := w.WriteString(input); err != nil {
		t.Fatalf("write stdin: %v", err)
	}
	_ = w.Close()

	old := os.Stdin
	os.Stdin = r
	t.Cleanup(func() {
		os.Stdin = old
		_ = r.Close()
	})
}

func writeTempMilaFile(t *testing.T, src string) string {
	t.Helper()
	dir := t.TempDir()
	filename := filepath.Join(dir, "input.mila")
	if err := os.WriteFile(filename, []byte(src), 0o600); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return filename
}

func captureOutput(t *testing.T, fn func() int) (code int, stdout string, stderr string) {
	t.Helper()

	oldStdout := os.Stdout
	oldStderr := os.Stderr

	rOut, wOut, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe stdout: %v", err)
	}
	rErr, wErr, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe stderr: %v", err)
	}

	os.Stdout = wOut
	os.Stderr = wErr

	code = fn()

	_ = wOut.Close()
	_ = wErr.Close()
	os.Stdout = oldStdout
	os.Stderr = oldStderr

	outBytes, _ := io.ReadAll(rOut)
	errBytes, _ := io.ReadAll(rErr)
	_ = rOut.Close()
	_ = rErr.Close()

	return code, string(outBytes), string(errBytes)
}
