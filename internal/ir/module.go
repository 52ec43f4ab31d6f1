package ir

import "github.com/you-not-fish/mila/internal/types"

// Module is the unit handed to a backend: constant globals, declarations of
// externally linked routines, and function definitions.
type Module struct {
	Name string

	// Source is the name of the file the module was compiled from.
	Source string

	Globals []*Global
	Externs []*Extern
	Funcs   []*Func
}

// Global is an immutable module-level value.
type Global struct {
	Name  string
	Type  *types.Basic
	Int   int64   // value when Type is integer
	Float float64 // value when Type is double
}

// String returns the global's name.
func (g *Global) String() string { return "@" + g.Name }

// Extern is a routine the module calls but does not define.
type Extern struct {
	Name     string
	Result   types.Type // nil for void
	Variadic bool
}

// String returns the routine's name.
func (e *Extern) String() string { return "@" + e.Name }

// NewModule creates an empty module.
func NewModule(name string) *Module {
	return &Module{Name: name}
}

// DeclareExtern adds an external routine declaration and returns it.
// Declaring an existing name returns the earlier declaration.
func (m *Module) DeclareExtern(name string, result types.Type, variadic bool) *Extern {
	if e := m.Extern(name); e != nil {
		return e
	}
	e := &Extern{Name: name, Result: result, Variadic: variadic}
	m.Externs = append(m.Externs, e)
	return e
}

// Extern returns the declared routine with the given name, or nil.
func (m *Module) Extern(name string) *Extern {
	for _, e := range m.Externs {
		if e.Name == name {
			return e
		}
	}
	return nil
}

// NewGlobal adds a constant global.
func (m *Module) NewGlobal(name string, typ *types.Basic) *Global {
	g := &Global{Name: name, Type: typ}
	m.Globals = append(m.Globals, g)
	return g
}

// Global returns the global with the given name, or nil.
func (m *Module) Global(name string) *Global {
	for _, g := range m.Globals {
		if g.Name == name {
			return g
		}
	}
	return nil
}

// NewFunc creates a function owned by the module.
func (m *Module) NewFunc(name string, result types.Type) *Func {
	f := NewFunc(name, result)
	f.Module = m
	m.Funcs = append(m.Funcs, f)
	return f
}

// Func returns the function with the given name, or nil.
func (m *Module) Func(name string) *Func {
	for _, f := range m.Funcs {
		if f.Name == name {
			return f
		}
	}
	return nil
}
