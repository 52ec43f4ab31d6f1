// Package types implements the value types shared by the Mila AST and IR.
// It has no dependencies on the rest of the compiler.
package types

// Type is the interface implemented by all types.
type Type interface {
	// Underlying returns the underlying type. All Mila types are their own
	// underlying type; the method keeps the shape of a richer type system.
	Underlying() Type

	// String returns a human-readable representation of the type.
	String() string

	// aType is a marker method to restrict implementations to this package.
	aType()
}

// typ is a base struct for all type implementations.
type typ struct{}

func (typ) aType() {}
