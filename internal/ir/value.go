package ir

import (
	"fmt"

	"github.com/you-not-fish/mila/internal/types"
)

// ID is a unique identifier for Values and Blocks within a Func.
type ID int32

// Value is a single typed instruction.
type Value struct {
	ID ID

	Op Op

	// Type is the result type. Nil for void operations.
	Type types.Type

	Args []*Value

	// Block is the basic block that contains this value.
	Block *Block

	// AuxInt holds a constant integer or bool.
	AuxInt int64

	// AuxFloat holds a constant double.
	AuxFloat float64

	// Aux holds a variable name (Alloca), *Global or *Extern.
	Aux interface{}

	// Uses counts references from other values and block controls.
	Uses int32
}

// String returns a short string representation of the value (e.g., "v5").
func (v *Value) String() string {
	return fmt.Sprintf("v%d", v.ID)
}

// LongString returns a detailed string representation including op, type, and args.
func (v *Value) LongString() string {
	return formatValue(v)
}

// AddArg appends a value to the argument list and increments the arg's use count.
func (v *Value) AddArg(arg *Value) {
	v.Args = append(v.Args, arg)
	arg.Uses++
}

// IsConst reports whether v is a constant.
func (v *Value) IsConst() bool {
	return v.Op.IsConst()
}
