// Package rtabi defines the ABI shared between generated code and the Mila
// runtime library that provides the I/O routines.
package rtabi

// LLVM type names for code generation
const (
	LLVMTypeInt    = "i32"
	LLVMTypeDouble = "double"
	LLVMTypeBool   = "i1" // comparison results only; never stored
	LLVMTypePtr    = "ptr" // opaque pointer (LLVM 15+)
	LLVMTypeIndex  = "i64" // first GEP index into an array slot
)

// Basic type sizes in bytes
const (
	SizeInt    = 4
	SizeDouble = 8
)

// Basic type alignments in bytes
const (
	AlignInt    = 4
	AlignDouble = 8
)

// Align returns the alloca alignment for an element of the given LLVM type.
func Align(llvmType string) int {
	if llvmType == LLVMTypeDouble {
		return AlignDouble
	}
	return AlignInt
}
