package types

import "fmt"

// Equal performs structural equality on types with a dispatcher by Kind.
// Aggregates are equal when they share a declaration.
func Equal(a, b Type) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	cmp := typeComparer(a.Kind())
	return cmp(a, b)
}

func typeComparer(k Kind) func(a, b Type) bool {
	switch k {
	case VoidKind, BoolKind, NullKind:
		return eqTrivial
	case IntKind:
		return eqInt
	case FloatKind:
		return eqFloat
	case ComplexKind:
		return eqComplex
	case PointerKind:
		return eqPointer
	case StaticArrayKind:
		return eqStaticArray
	case DynArrayKind:
		return eqDynArray
	case AssocArrayKind:
		return eqAssocArray
	case StructKind:
		return eqStruct
	case ClassKind:
		return eqClass
	case FunctionKind:
		return eqFunction
	case DelegateKind:
		return eqDelegate
	case VectorKind:
		return eqVector
	default:
		return func(a, b Type) bool { panic(fmt.Sprintf("Equal: unhandled kind %v", k)) }
	}
}

func eqTrivial(a, b Type) bool { return true }

func eqInt(a, b Type) bool {
	return a.(Int) == b.(Int)
}

func eqFloat(a, b Type) bool {
	return a.(Float) == b.(Float)
}

func eqComplex(a, b Type) bool {
	return a.(Complex) == b.(Complex)
}

func eqPointer(a, b Type) bool {
	return Equal(a.(Pointer).Elem, b.(Pointer).Elem)
}

func eqStaticArray(a, b Type) bool {
	as, bs := a.(StaticArray), b.(StaticArray)
	return as.Dim == bs.Dim && Equal(as.Elem, bs.Elem)
}

func eqDynArray(a, b Type) bool {
	return Equal(a.(DynArray).Elem, b.(DynArray).Elem)
}

func eqAssocArray(a, b Type) bool {
	aa, ba := a.(AssocArray), b.(AssocArray)
	return Equal(aa.Key, ba.Key) && Equal(aa.Value, ba.Value)
}

func eqStruct(a, b Type) bool {
	return a.(Struct).Decl == b.(Struct).Decl
}

func eqClass(a, b Type) bool {
	return a.(Class).Decl == b.(Class).Decl
}

func eqFunction(a, b Type) bool {
	af, bf := a.(Function), b.(Function)
	if af.Ref != bf.Ref || af.Variadic != bf.Variadic {
		return false
	}
	if !Equal(af.Result, bf.Result) {
		return false
	}
	return equalTypeSlices(af.Params, bf.Params)
}

func eqDelegate(a, b Type) bool {
	return eqFunction(a.(Delegate).Func, b.(Delegate).Func)
}

func eqVector(a, b Type) bool {
	av, bv := a.(Vector), b.(Vector)
	return av.Dim == bv.Dim && Equal(av.Elem, bv.Elem)
}

func equalTypeSlices(xs, ys []Type) bool {
	if len(xs) != len(ys) {
		return false
	}
	for i := range xs {
		if !Equal(xs[i], ys[i]) {
			return false
		}
	}
	return true
}
