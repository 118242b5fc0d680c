package types

import (
	"fmt"
	"strings"
)

type Kind int

const (
	VoidKind Kind = iota
	BoolKind
	IntKind
	FloatKind
	ComplexKind
	PointerKind
	StaticArrayKind
	DynArrayKind
	AssocArrayKind
	StructKind
	ClassKind
	DelegateKind
	FunctionKind
	VectorKind
	NullKind
)

// Type is the interface for all static types reaching the lowering stage.
type Type interface {
	String() string
	Kind() Kind
	// Size is the storage size in bytes on the target.
	Size() uint64
}

// PtrSize is the size of pointers and size_t on the target.
const PtrSize = 8

type Void struct{}

func (Void) Kind() Kind     { return VoidKind }
func (Void) String() string { return "void" }
func (Void) Size() uint64   { return 1 }

type Bool struct{}

func (Bool) Kind() Kind     { return BoolKind }
func (Bool) String() string { return "bool" }
func (Bool) Size() uint64   { return 1 }

// Int represents integral types, including the character types.
type Int struct {
	Width    uint32 // 8, 16, 32 or 64
	Unsigned bool
	Char     bool // char, wchar or dchar
}

func (i Int) Kind() Kind   { return IntKind }
func (i Int) Size() uint64 { return uint64(i.Width / 8) }

func (i Int) String() string {
	if i.Char {
		switch i.Width {
		case 8:
			return "char"
		case 16:
			return "wchar"
		default:
			return "dchar"
		}
	}
	var name string
	switch i.Width {
	case 8:
		name = "byte"
	case 16:
		name = "short"
	case 32:
		name = "int"
	case 64:
		name = "long"
	default:
		return fmt.Sprintf("int%d", i.Width)
	}
	if i.Unsigned {
		if name == "byte" {
			return "ubyte"
		}
		return "u" + name
	}
	return name
}

// Float represents real and imaginary floating point types.
type Float struct {
	Width     uint32 // 32, 64 or 80
	Imaginary bool
}

func (f Float) Kind() Kind { return FloatKind }

func (f Float) Size() uint64 {
	if f.Width == 80 {
		return 16
	}
	return uint64(f.Width / 8)
}

func (f Float) String() string {
	var name string
	switch f.Width {
	case 32:
		name = "float"
	case 64:
		name = "double"
	default:
		name = "real"
	}
	if f.Imaginary {
		return "i" + name
	}
	return name
}

// Complex holds two Float components of Width bits each.
type Complex struct {
	Width uint32
}

func (c Complex) Kind() Kind     { return ComplexKind }
func (c Complex) Size() uint64   { return 2 * c.Component().Size() }
func (c Complex) String() string { return "c" + c.Component().String() }

// Component is the real type of each half.
func (c Complex) Component() Float { return Float{Width: c.Width} }

type Pointer struct {
	Elem Type
}

func (p Pointer) Kind() Kind     { return PointerKind }
func (p Pointer) Size() uint64   { return PtrSize }
func (p Pointer) String() string { return p.Elem.String() + "*" }

type StaticArray struct {
	Elem Type
	Dim  uint64
}

func (a StaticArray) Kind() Kind     { return StaticArrayKind }
func (a StaticArray) Size() uint64   { return a.Elem.Size() * a.Dim }
func (a StaticArray) String() string { return fmt.Sprintf("%s[%d]", a.Elem, a.Dim) }

type DynArray struct {
	Elem Type
}

func (a DynArray) Kind() Kind     { return DynArrayKind }
func (a DynArray) Size() uint64   { return 2 * PtrSize }
func (a DynArray) String() string { return a.Elem.String() + "[]" }

type AssocArray struct {
	Key   Type
	Value Type
}

func (a AssocArray) Kind() Kind     { return AssocArrayKind }
func (a AssocArray) Size() uint64   { return PtrSize }
func (a AssocArray) String() string { return fmt.Sprintf("%s[%s]", a.Value, a.Key) }

type Struct struct {
	Decl *StructDecl
}

func (s Struct) Kind() Kind     { return StructKind }
func (s Struct) Size() uint64   { return s.Decl.SizeOf }
func (s Struct) String() string { return s.Decl.Name }

// Class is a reference to an instance of Decl.
type Class struct {
	Decl *ClassDecl
}

func (c Class) Kind() Kind     { return ClassKind }
func (c Class) Size() uint64   { return PtrSize }
func (c Class) String() string { return c.Decl.Name }

type Function struct {
	Params   []Type
	Result   Type
	Ref      bool // returns by hidden reference
	Variadic bool
}

func (f Function) Kind() Kind   { return FunctionKind }
func (f Function) Size() uint64 { return 1 }

func (f Function) String() string {
	ref := ""
	if f.Ref {
		ref = "ref "
	}
	return fmt.Sprintf("%s%s function(%s)", ref, f.Result, typesStr(f.Params))
}

type Delegate struct {
	Func Function
}

func (d Delegate) Kind() Kind   { return DelegateKind }
func (d Delegate) Size() uint64 { return 2 * PtrSize }

func (d Delegate) String() string {
	return fmt.Sprintf("%s delegate(%s)", d.Func.Result, typesStr(d.Func.Params))
}

type Vector struct {
	Elem Type
	Dim  uint64
}

func (v Vector) Kind() Kind     { return VectorKind }
func (v Vector) Size() uint64   { return v.Elem.Size() * v.Dim }
func (v Vector) String() string { return fmt.Sprintf("__vector(%s[%d])", v.Elem, v.Dim) }

// Null is the type of the null literal before it is given a context.
type Null struct{}

func (Null) Kind() Kind     { return NullKind }
func (Null) String() string { return "typeof(null)" }
func (Null) Size() uint64   { return PtrSize }

func typesStr(ts []Type) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.String()
	}
	return strings.Join(parts, ", ")
}

// Elem returns the element type of pointers, arrays and vectors, or nil.
func Elem(t Type) Type {
	switch tt := t.(type) {
	case Pointer:
		return tt.Elem
	case StaticArray:
		return tt.Elem
	case DynArray:
		return tt.Elem
	case Vector:
		return tt.Elem
	}
	return nil
}

// BaseElem strips all static array dimensions from t.
func BaseElem(t Type) Type {
	for t.Kind() == StaticArrayKind {
		t = t.(StaticArray).Elem
	}
	return t
}

func IsArray(t Type) bool {
	return t.Kind() == StaticArrayKind || t.Kind() == DynArrayKind
}

// IsIntegral reports integer, character and boolean types.
func IsIntegral(t Type) bool {
	return t.Kind() == IntKind || t.Kind() == BoolKind
}

func IsFloating(t Type) bool {
	return t.Kind() == FloatKind || t.Kind() == ComplexKind
}

func IsReal(t Type) bool {
	f, ok := t.(Float)
	return ok && !f.Imaginary
}

func IsImaginary(t Type) bool {
	f, ok := t.(Float)
	return ok && f.Imaginary
}

func IsUnsigned(t Type) bool {
	switch tt := t.(type) {
	case Int:
		return tt.Unsigned || tt.Char
	case Bool:
		return true
	}
	return false
}

// IsZeroInit reports whether the default initializer of t is all zero bits.
func IsZeroInit(t Type) bool {
	switch tt := t.(type) {
	case Int:
		// char types default to an invalid code unit
		return !tt.Char
	case Float, Complex:
		return false
	case StaticArray:
		return IsZeroInit(tt.Elem)
	case Vector:
		return IsZeroInit(tt.Elem)
	case Struct:
		return tt.Decl.ZeroInit
	}
	return true
}

// NeedsPostblit reports whether copying t runs a struct postblit.
func NeedsPostblit(t Type) bool {
	s, ok := BaseElem(t).(Struct)
	return ok && s.Decl.Postblit != nil
}

// HasDtor reports whether destroying t runs a struct destructor.
func HasDtor(t Type) bool {
	s, ok := BaseElem(t).(Struct)
	return ok && s.Decl.Dtor != nil
}
