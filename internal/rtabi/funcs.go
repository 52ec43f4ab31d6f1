package rtabi

// Runtime routine names (must match the runtime library's exported symbols)
const (
	FnWrite   = "write"
	FnWriteln = "writeln"
	FnReadln  = "readln"
)

// EntryName is the symbol of the program's main function. The runtime does
// not wrap it; the generated function is the process entry point.
const EntryName = "main"

// FuncSignature describes a runtime routine's signature for code generation.
type FuncSignature struct {
	Name       string   // routine name
	ReturnType string   // LLVM return type
	ParamTypes []string // fixed LLVM parameter types
	Variadic   bool
	ByRef      bool // arguments are storage addresses
}

// RuntimeFunctions returns the signatures of all runtime routines. The
// output routines take values, readln takes addresses; all are variadic
// so one declaration serves every argument type.
func RuntimeFunctions() []FuncSignature {
	return []FuncSignature{
		{Name: FnWriteln, ReturnType: "void", Variadic: true},
		{Name: FnWrite, ReturnType: "void", Variadic: true},
		{Name: FnReadln, ReturnType: "void", Variadic: true, ByRef: true},
	}
}

// Lookup returns the signature of the named runtime routine.
func Lookup(name string) (FuncSignature, bool) {
	for _, fn := range RuntimeFunctions() {
		if fn.Name == name {
			return fn, true
		}
	}
	return FuncSignature{}, false
}
