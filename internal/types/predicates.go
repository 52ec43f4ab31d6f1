package types

// Identical reports whether x and y are identical types.
func Identical(x, y Type) bool {
	if x == y {
		return true
	}
	if x == nil || y == nil {
		return false
	}
	switch x := x.(type) {
	case *Basic:
		if y, ok := y.(*Basic); ok {
			return x.kind == y.kind
		}
	case *Array:
		if y, ok := y.(*Array); ok {
			return x.len == y.len && Identical(x.elem, y.elem)
		}
	case *Pointer:
		if y, ok := y.(*Pointer); ok {
			return Identical(x.elem, y.elem)
		}
	}
	return false
}

// isKind reports whether t is the basic type of kind k.
func isKind(t Type, k BasicKind) bool {
	if t == nil {
		return false
	}
	b, ok := t.Underlying().(*Basic)
	return ok && b.kind == k
}

// IsInt reports whether t is the integer type.
func IsInt(t Type) bool { return isKind(t, Int) }

// IsDouble reports whether t is the double type.
func IsDouble(t Type) bool { return isKind(t, Double) }

// IsBool reports whether t is the bool type.
func IsBool(t Type) bool { return isKind(t, Bool) }

// IsScalar reports whether t can live in a single storage slot.
func IsScalar(t Type) bool {
	_, ok := t.(*Basic)
	return ok
}

// Elem returns the element type of a pointer or array type, or nil.
func Elem(t Type) Type {
	switch t := t.(type) {
	case *Pointer:
		return t.elem
	case *Array:
		return t.elem
	}
	return nil
}
