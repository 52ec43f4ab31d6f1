// Package ir implements the basic-block intermediate representation that the
// Mila front end hands to a backend: a module of functions, each a list of
// blocks of typed instructions ending in exactly one terminator.
package ir

// Op represents an IR operation code.
type Op int

const (
	OpInvalid Op = iota

	// Constants
	OpConst32    // integer constant; AuxInt = value
	OpConstFloat // double constant; AuxFloat = value
	OpConstBool  // bool constant; AuxInt = 0 or 1

	// Integer arithmetic
	OpAdd // int + int
	OpSub // int - int
	OpMul // int * int
	OpDiv // int div int (signed)
	OpMod // int mod int (signed remainder)
	OpNeg // -int

	// Double arithmetic
	OpAddF // double + double
	OpSubF // double - double
	OpMulF // double * double
	OpDivF // double / double

	// Integer comparison; result is bool
	OpEq
	OpNeq
	OpLt
	OpLeq
	OpGt
	OpGeq

	// Double comparison; only equality has a floating form
	OpEqF

	// Bitwise on int, logical on bool; operands share one type
	OpAnd
	OpOr
	OpXor
	OpNot

	// Conversion
	OpZeroExt    // bool → int
	OpIntToFloat // int → double

	// Memory
	OpAlloca        // storage slot; Type = *T; Aux = variable name
	OpLoad          // Args[0] = ptr
	OpStore         // Args[0] = ptr, Args[1] = val; void
	OpArrayIndexPtr // &a[i]; Args[0] = array ptr, Args[1] = zero-based index
	OpGlobalAddr    // address of a module global; Aux = *Global

	// Calls
	OpCall // Aux = *Extern; Args = arguments; void

	opCount // sentinel; must be last
)

// OpInfo holds metadata about an IR operation.
type OpInfo struct {
	Name   string // human-readable name
	IsPure bool   // no side effects
	IsVoid bool   // produces no value
}

var opInfoTable = [opCount]OpInfo{
	OpInvalid: {Name: "Invalid"},

	OpConst32:    {Name: "Const32", IsPure: true},
	OpConstFloat: {Name: "ConstFloat", IsPure: true},
	OpConstBool:  {Name: "ConstBool", IsPure: true},

	OpAdd: {Name: "Add", IsPure: true},
	OpSub: {Name: "Sub", IsPure: true},
	OpMul: {Name: "Mul", IsPure: true},
	OpDiv: {Name: "Div"}, // traps on zero
	OpMod: {Name: "Mod"}, // traps on zero
	OpNeg: {Name: "Neg", IsPure: true},

	OpAddF: {Name: "AddF", IsPure: true},
	OpSubF: {Name: "SubF", IsPure: true},
	OpMulF: {Name: "MulF", IsPure: true},
	OpDivF: {Name: "DivF", IsPure: true},

	OpEq:  {Name: "Eq", IsPure: true},
	OpNeq: {Name: "Neq", IsPure: true},
	OpLt:  {Name: "Lt", IsPure: true},
	OpLeq: {Name: "Leq", IsPure: true},
	OpGt:  {Name: "Gt", IsPure: true},
	OpGeq: {Name: "Geq", IsPure: true},

	OpEqF: {Name: "EqF", IsPure: true},

	OpAnd: {Name: "And", IsPure: true},
	OpOr:  {Name: "Or", IsPure: true},
	OpXor: {Name: "Xor", IsPure: true},
	OpNot: {Name: "Not", IsPure: true},

	OpZeroExt:    {Name: "ZeroExt", IsPure: true},
	OpIntToFloat: {Name: "IntToFloat", IsPure: true},

	OpAlloca:        {Name: "Alloca"},
	OpLoad:          {Name: "Load"},
	OpStore:         {Name: "Store", IsVoid: true},
	OpArrayIndexPtr: {Name: "ArrayIndexPtr", IsPure: true},
	OpGlobalAddr:    {Name: "GlobalAddr", IsPure: true},

	OpCall: {Name: "Call", IsVoid: true},
}

// String returns the human-readable name of the op.
func (o Op) String() string {
	return o.Info().Name
}

// Info returns the OpInfo for this op.
func (o Op) Info() OpInfo {
	if o >= 0 && o < opCount {
		return opInfoTable[o]
	}
	return OpInfo{Name: "unknown"}
}

// IsPure reports whether this op has no side effects.
func (o Op) IsPure() bool { return o.Info().IsPure }

// IsVoid reports whether this op produces no value.
func (o Op) IsVoid() bool { return o.Info().IsVoid }

// IsConst reports whether this op is a constant.
func (o Op) IsConst() bool {
	return o == OpConst32 || o == OpConstFloat || o == OpConstBool
}

// IsCompare reports whether this op yields a bool from two operands.
func (o Op) IsCompare() bool {
	return o >= OpEq && o <= OpEqF
}
