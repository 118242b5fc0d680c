package ir

import (
	"fmt"
	"strings"
)

// Type is the machine-level type of an IR value.
type Type interface {
	String() string
	Size() uint64
}

type Void struct{}

func (Void) String() string { return "void" }
func (Void) Size() uint64   { return 0 }

type Bool struct{}

func (Bool) String() string { return "bool" }
func (Bool) Size() uint64   { return 1 }

type Int struct {
	Bits     uint32
	Unsigned bool
}

func (i Int) String() string {
	if i.Unsigned {
		return fmt.Sprintf("u%d", i.Bits)
	}
	return fmt.Sprintf("i%d", i.Bits)
}

func (i Int) Size() uint64 { return uint64(i.Bits / 8) }

type Float struct {
	Bits uint32 // 32, 64 or 80
}

func (f Float) String() string { return fmt.Sprintf("f%d", f.Bits) }

func (f Float) Size() uint64 {
	if f.Bits == 80 {
		return 16
	}
	return uint64(f.Bits / 8)
}

// Complex is a pair of Float components.
type Complex struct {
	Bits uint32
}

func (c Complex) String() string { return fmt.Sprintf("c%d", c.Bits) }
func (c Complex) Size() uint64   { return 2 * c.Part().Size() }
func (c Complex) Part() Float    { return Float{Bits: c.Bits} }

// Pointer with a nil Elem is an untyped (void) pointer.
type Pointer struct {
	Elem Type
}

func (p Pointer) String() string {
	if p.Elem == nil {
		return "ptr"
	}
	return p.Elem.String() + "*"
}

func (p Pointer) Size() uint64 { return 8 }

// Array is a fixed length aggregate of Elem.
type Array struct {
	Elem Type
	Len  uint64
}

func (a Array) String() string { return fmt.Sprintf("[%d x %s]", a.Len, a.Elem) }
func (a Array) Size() uint64   { return a.Len * a.Elem.Size() }

// Slice is a dynamic array value laid out as {length, ptr}.
type Slice struct {
	Elem Type
}

func (s Slice) String() string { return "{" + s.Elem.String() + "}" }
func (s Slice) Size() uint64   { return 16 }

// Field is a member of a Struct.
type Field struct {
	Name   string
	Type   Type
	Offset uint64
}

// Struct is a record type. Records are created once and referenced by
// pointer so that self-referential layouts terminate.
type Struct struct {
	Name   string
	Fields []Field
	SizeOf uint64
	Union  bool
}

func (s *Struct) String() string { return "%" + s.Name }
func (s *Struct) Size() uint64   { return s.SizeOf }

// FieldIndex returns the index of the named field, or -1.
func (s *Struct) FieldIndex(name string) int {
	for i, f := range s.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

type Func struct {
	Params   []Type
	Result   Type
	Variadic bool
}

func (f *Func) String() string {
	parts := make([]string, len(f.Params))
	for i, p := range f.Params {
		parts[i] = p.String()
	}
	if f.Variadic {
		parts = append(parts, "...")
	}
	return fmt.Sprintf("%s(%s)", f.Result, strings.Join(parts, ", "))
}

func (f *Func) Size() uint64 { return 0 }

// Delegate is a {object, funcptr} pair.
type Delegate struct {
	Func *Func
}

func (d Delegate) String() string { return "delegate " + d.Func.String() }
func (d Delegate) Size() uint64   { return 16 }

// AssocArray is the opaque runtime handle of an associative array.
type AssocArray struct{}

func (AssocArray) String() string { return "aa" }
func (AssocArray) Size() uint64   { return 8 }

type Vector struct {
	Elem Type
	Len  uint64
}

func (v Vector) String() string { return fmt.Sprintf("<%d x %s>", v.Len, v.Elem) }
func (v Vector) Size() uint64   { return v.Len * v.Elem.Size() }

// Common types.
var (
	VoidType  Type = Void{}
	BoolType  Type = Bool{}
	ByteType  Type = Int{Bits: 8, Unsigned: true}
	I32       Type = Int{Bits: 32}
	U32       Type = Int{Bits: 32, Unsigned: true}
	I64       Type = Int{Bits: 64}
	SizeT     Type = Int{Bits: 64, Unsigned: true}
	F32       Type = Float{Bits: 32}
	F64       Type = Float{Bits: 64}
	F80       Type = Float{Bits: 80}
	VoidPtr   Type = Pointer{}
	VoidSlice Type = Slice{Elem: ByteType}
	AAType    Type = AssocArray{}
)

// SameType compares IR types structurally. Records compare by identity.
func SameType(a, b Type) bool {
	switch at := a.(type) {
	case Pointer:
		bt, ok := b.(Pointer)
		if !ok {
			return false
		}
		if at.Elem == nil || bt.Elem == nil {
			return at.Elem == nil && bt.Elem == nil
		}
		return SameType(at.Elem, bt.Elem)
	case Array:
		bt, ok := b.(Array)
		return ok && at.Len == bt.Len && SameType(at.Elem, bt.Elem)
	case Slice:
		bt, ok := b.(Slice)
		return ok && SameType(at.Elem, bt.Elem)
	case Vector:
		bt, ok := b.(Vector)
		return ok && at.Len == bt.Len && SameType(at.Elem, bt.Elem)
	case *Func:
		bt, ok := b.(*Func)
		if !ok || len(at.Params) != len(bt.Params) || at.Variadic != bt.Variadic {
			return false
		}
		for i := range at.Params {
			if !SameType(at.Params[i], bt.Params[i]) {
				return false
			}
		}
		return SameType(at.Result, bt.Result)
	case Delegate:
		bt, ok := b.(Delegate)
		return ok && SameType(at.Func, bt.Func)
	case *Struct:
		bt, ok := b.(*Struct)
		return ok && at == bt
	default:
		return a == b
	}
}

// IsInteger reports integer and boolean types.
func IsInteger(t Type) bool {
	switch t.(type) {
	case Int, Bool:
		return true
	}
	return false
}

func IsUnsigned(t Type) bool {
	switch tt := t.(type) {
	case Int:
		return tt.Unsigned
	case Bool:
		return true
	}
	return false
}

func IsFloat(t Type) bool {
	_, ok := t.(Float)
	return ok
}

func IsPointer(t Type) bool {
	_, ok := t.(Pointer)
	return ok
}

// IsAggregate reports types that live in memory rather than registers.
func IsAggregate(t Type) bool {
	switch t.(type) {
	case Array, *Struct:
		return true
	}
	return false
}

// PointerTo returns the pointer type to t.
func PointerTo(t Type) Pointer { return Pointer{Elem: t} }

// SliceFields returns the layout of a slice value.
func SliceFields(s Slice) []Field {
	return []Field{
		{Name: "length", Type: SizeT, Offset: 0},
		{Name: "ptr", Type: Pointer{Elem: s.Elem}, Offset: 8},
	}
}

// DelegateFields returns the layout of a delegate value.
func DelegateFields(d Delegate) []Field {
	return []Field{
		{Name: "object", Type: VoidPtr, Offset: 0},
		{Name: "funcptr", Type: Pointer{Elem: d.Func}, Offset: 8},
	}
}

// FieldsOf returns the fields of any aggregate-like type, or nil.
func FieldsOf(t Type) []Field {
	switch tt := t.(type) {
	case *Struct:
		return tt.Fields
	case Slice:
		return SliceFields(tt)
	case Delegate:
		return DelegateFields(tt)
	case AssocArray:
		return []Field{{Name: "ptr", Type: VoidPtr}}
	case Complex:
		return []Field{{Name: "re", Type: tt.Part()}, {Name: "im", Type: tt.Part(), Offset: tt.Part().Size()}}
	}
	return nil
}
