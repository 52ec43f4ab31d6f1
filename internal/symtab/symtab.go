// Package symtab implements the Mila symbol environment: one flat scope
// mapping each declared name to its declared shape and, once lowered, to
// its storage.
package symtab

import (
	"errors"
	"fmt"

	"github.com/you-not-fish/mila/internal/ir"
	"github.com/you-not-fish/mila/internal/types"
)

var (
	// ErrDuplicate is returned when a name is declared twice.
	ErrDuplicate = errors.New("duplicate declaration")
	// ErrUndeclared is returned when a name has no declaration.
	ErrUndeclared = errors.New("undeclared name")
	// ErrResolved is returned when storage is attached to a symbol twice.
	ErrResolved = errors.New("storage already resolved")
)

// Kind classifies a declaration.
type Kind uint8

const (
	Var Kind = iota
	Const
	Array
)

var kindNames = [...]string{
	Var:   "var",
	Const: "const",
	Array: "array",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Shape is what a declaration says about a name. It is known as soon as
// the declaration has been parsed.
type Shape struct {
	Kind Kind
	Type *types.Basic // scalar type, or element type for arrays
	Len  int64        // 1 for scalars, hi-lo+1 for arrays
	Base int64        // declared lower bound; 0 for scalars
}

// ScalarShape returns the shape of a scalar variable or constant.
func ScalarShape(kind Kind, typ *types.Basic) Shape {
	return Shape{Kind: kind, Type: typ, Len: 1}
}

// ArrayShape returns the shape of an array declared with bounds lo..hi.
func ArrayShape(elem *types.Basic, lo, hi int64) Shape {
	return Shape{Kind: Array, Type: elem, Len: hi - lo + 1, Base: lo}
}

// IsArray reports whether the shape describes an array.
func (s Shape) IsArray() bool { return s.Kind == Array }

// StorageType returns the type of the slot that holds the declaration.
func (s Shape) StorageType() types.Type {
	if s.IsArray() {
		return types.NewArray(s.Len, s.Type)
	}
	return s.Type
}

func (s Shape) String() string {
	if s.IsArray() {
		return fmt.Sprintf("array[%d..%d] of %s", s.Base, s.Base+s.Len-1, s.Type)
	}
	return fmt.Sprintf("%s %s", s.Kind, s.Type)
}

// Symbol is one entry of the environment.
type Symbol struct {
	Name  string
	Shape Shape

	// Storage is the slot allocated by lowering; nil until resolved.
	Storage *ir.Value
}

// Resolved reports whether storage has been attached.
func (s *Symbol) Resolved() bool { return s.Storage != nil }

// Env is the symbol environment of one compilation session.
// Entries are only ever added; there are no nested scopes.
type Env struct {
	syms  map[string]*Symbol
	order []*Symbol
}

// New returns an empty environment.
func New() *Env {
	return &Env{syms: make(map[string]*Symbol)}
}

// Declare inserts name with the given shape.
func (e *Env) Declare(name string, shape Shape) (*Symbol, error) {
	if _, dup := e.syms[name]; dup {
		return nil, fmt.Errorf("%w: %s", ErrDuplicate, name)
	}
	sym := &Symbol{Name: name, Shape: shape}
	e.syms[name] = sym
	e.order = append(e.order, sym)
	return sym, nil
}

// Lookup returns the symbol for name, or nil.
func (e *Env) Lookup(name string) *Symbol {
	return e.syms[name]
}

// Resolve attaches storage to a declared name.
func (e *Env) Resolve(name string, storage *ir.Value) error {
	sym := e.syms[name]
	if sym == nil {
		return fmt.Errorf("%w: %s", ErrUndeclared, name)
	}
	if sym.Storage != nil {
		return fmt.Errorf("%w: %s", ErrResolved, name)
	}
	sym.Storage = storage
	return nil
}

// Symbols returns all symbols in declaration order.
func (e *Env) Symbols() []*Symbol {
	return e.order
}

// Len returns the number of declared names.
func (e *Env) Len() int {
	return len(e.order)
}
