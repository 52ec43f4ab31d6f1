package syntax

import (
	"errors"
	"fmt"
)

// SyntaxError reports a token that does not fit the grammar.
type SyntaxError struct {
	Pos Pos
	Msg string
}

func (e *SyntaxError) Error() string {
	return e.Pos.String() + ": " + e.Msg
}

// Code classifies a SemanticError.
type Code uint8

const (
	_ Code = iota
	Duplicate
	Undeclared
	NotArray
	NotScalar
	BadBounds
	FloatingPoint
	UnknownCall
	BreakOutsideLoop
	NotConstant
	ConstAssign
)

var codeNames = [...]string{
	Duplicate:        "duplicate declaration",
	Undeclared:       "undeclared name",
	NotArray:         "not an array",
	NotScalar:        "not a scalar",
	BadBounds:        "invalid array bounds",
	FloatingPoint:    "floating-point operand",
	UnknownCall:      "unknown call target",
	BreakOutsideLoop: "break outside loop",
	NotConstant:      "not a constant",
	ConstAssign:      "assignment to constant",
}

func (c Code) String() string {
	if int(c) < len(codeNames) && codeNames[c] != "" {
		return codeNames[c]
	}
	return fmt.Sprintf("Code(%d)", c)
}

// Sentinel errors matched by SemanticError.Is.
var (
	ErrDuplicate        = errors.New(Duplicate.String())
	ErrUndeclared       = errors.New(Undeclared.String())
	ErrNotArray         = errors.New(NotArray.String())
	ErrNotScalar        = errors.New(NotScalar.String())
	ErrBadBounds        = errors.New(BadBounds.String())
	ErrFloatingPoint    = errors.New(FloatingPoint.String())
	ErrUnknownCall      = errors.New(UnknownCall.String())
	ErrBreakOutsideLoop = errors.New(BreakOutsideLoop.String())
	ErrNotConstant      = errors.New(NotConstant.String())
	ErrConstAssign      = errors.New(ConstAssign.String())
)

var codeErrors = map[Code]error{
	Duplicate:        ErrDuplicate,
	Undeclared:       ErrUndeclared,
	NotArray:         ErrNotArray,
	NotScalar:        ErrNotScalar,
	BadBounds:        ErrBadBounds,
	FloatingPoint:    ErrFloatingPoint,
	UnknownCall:      ErrUnknownCall,
	BreakOutsideLoop: ErrBreakOutsideLoop,
	NotConstant:      ErrNotConstant,
	ConstAssign:      ErrConstAssign,
}

// SemanticError reports a well-formed construct that violates a
// declaration or typing rule. It is raised by both the parser and the
// lowering pass.
type SemanticError struct {
	Pos  Pos
	Code Code
	Msg  string
}

// SemanticErrorf builds a SemanticError with a formatted message.
func SemanticErrorf(pos Pos, code Code, format string, args ...interface{}) *SemanticError {
	return &SemanticError{Pos: pos, Code: code, Msg: fmt.Sprintf(format, args...)}
}

func (e *SemanticError) Error() string {
	return e.Pos.String() + ": " + e.Msg
}

// Is lets errors.Is match e against the sentinel for its code.
func (e *SemanticError) Is(target error) bool {
	return target != nil && codeErrors[e.Code] == target
}
