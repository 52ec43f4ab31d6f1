package codegen

import (
	"fmt"

	"github.com/you-not-fish/mila/internal/rtabi"
	"github.com/you-not-fish/mila/internal/types"
)

// llvmType maps a Mila type to its LLVM IR type string.
func llvmType(t types.Type) string {
	switch u := t.Underlying().(type) {
	case *types.Basic:
		return llvmBasicType(u)
	case *types.Pointer:
		return rtabi.LLVMTypePtr
	case *types.Array:
		return fmt.Sprintf("[%d x %s]", u.Len(), llvmType(u.Elem()))
	}
	return "void"
}

// llvmBasicType maps a basic type to LLVM IR.
func llvmBasicType(b *types.Basic) string {
	switch b.Kind() {
	case types.Int:
		return rtabi.LLVMTypeInt
	case types.Double:
		return rtabi.LLVMTypeDouble
	case types.Bool:
		return rtabi.LLVMTypeBool
	}
	return "void"
}

// llvmReturnType returns the LLVM return type for a result type, "void"
// for nil.
func llvmReturnType(t types.Type) string {
	if t == nil {
		return "void"
	}
	return llvmType(t)
}

// pointee returns the LLVM type of the slot a pointer value addresses.
func pointee(t types.Type) string {
	if elem := types.Elem(t); elem != nil {
		return llvmType(elem)
	}
	return "i8"
}
