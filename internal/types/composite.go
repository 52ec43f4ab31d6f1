package types

import "fmt"

// Array represents a fixed-length array type of Len elements.
type Array struct {
	typ
	len  int64
	elem Type
}

// NewArray creates a new array type with the given length and element type.
func NewArray(len int64, elem Type) *Array {
	return &Array{len: len, elem: elem}
}

// Len returns the array length.
func (a *Array) Len() int64 {
	return a.len
}

// Elem returns the array element type.
func (a *Array) Elem() Type {
	return a.elem
}

// Underlying implements Type.
func (a *Array) Underlying() Type {
	return a
}

// String implements Type.
func (a *Array) String() string {
	return fmt.Sprintf("[%d]%s", a.len, a.elem)
}

// Pointer represents the address of a storage slot holding an Elem.
type Pointer struct {
	typ
	elem Type
}

// NewPointer creates a new pointer type.
func NewPointer(elem Type) *Pointer {
	return &Pointer{elem: elem}
}

// Elem returns the pointee type.
func (p *Pointer) Elem() Type {
	return p.elem
}

// Underlying implements Type.
func (p *Pointer) Underlying() Type {
	return p
}

// String implements Type.
func (p *Pointer) String() string {
	return "*" + p.elem.String()
}
