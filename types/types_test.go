package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEqual(t *testing.T) {
	s1 := &StructDecl{Name: "S", SizeOf: 4}
	s2 := &StructDecl{Name: "S", SizeOf: 4}
	fn := Function{Params: []Type{TInt, TString}, Result: TVoid}

	tests := []struct {
		name string
		a, b Type
		want bool
	}{
		{"same basic", TInt, Int{Width: 32}, true},
		{"signedness", TInt, TUint, false},
		{"char is not ubyte", TChar, TUbyte, false},
		{"dynamic arrays", DynArray{Elem: TInt}, DynArray{Elem: TInt}, true},
		{"static dims", StaticArray{Elem: TInt, Dim: 2}, StaticArray{Elem: TInt, Dim: 3}, false},
		{"static vs dynamic", StaticArray{Elem: TInt, Dim: 2}, DynArray{Elem: TInt}, false},
		{"assoc arrays", AssocArray{Key: TString, Value: TInt}, AssocArray{Key: TString, Value: TInt}, true},
		{"assoc key", AssocArray{Key: TString, Value: TInt}, AssocArray{Key: TInt, Value: TInt}, false},
		{"same struct decl", s1.Type(), s1.Type(), true},
		{"struct decls with one name", s1.Type(), s2.Type(), false},
		{"functions", fn, Function{Params: []Type{TInt, TString}, Result: TVoid}, true},
		{"function arity", fn, Function{Params: []Type{TInt}, Result: TVoid}, false},
		{"delegates", Delegate{Func: fn}, Delegate{Func: fn}, true},
		{"vectors", Vector{Elem: TFloat, Dim: 4}, Vector{Elem: TFloat, Dim: 8}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Equal(tt.a, tt.b))
			assert.Equal(t, tt.want, Equal(tt.b, tt.a))
		})
	}
}

func TestStringAndSize(t *testing.T) {
	s := &StructDecl{Name: "Pair", SizeOf: 8}
	tests := []struct {
		typ  Type
		str  string
		size uint64
	}{
		{TInt, "int", 4},
		{TDchar, "dchar", 4},
		{TReal, "real", 16},
		{TString, "char[]", 16},
		{StaticArray{Elem: TInt, Dim: 3}, "int[3]", 12},
		{AssocArray{Key: TString, Value: TInt}, "int[char[]]", PtrSize},
		{Pointer{Elem: TDouble}, "double*", PtrSize},
		{s.Type(), "Pair", 8},
		{Vector{Elem: TFloat, Dim: 4}, "__vector(float[4])", 16},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.str, tt.typ.String())
		assert.Equal(t, tt.size, tt.typ.Size(), tt.str)
	}
}

func TestBuiltin(t *testing.T) {
	typ, ok := Builtin("wchar")
	require.True(t, ok)
	assert.Equal(t, TWchar, typ)
	assert.True(t, IsReservedTypeName("cdouble"))
	assert.False(t, IsReservedTypeName("string"))
}
