package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thiremani/exprlower/types"
)

func TestMangleIdent(t *testing.T) {
	tests := []struct {
		ident    string
		expected string
	}{
		{"x", "1x"},
		{"foo", "3foo"},
		{"TypeInfo_Ai", "11TypeInfo_Ai"},
		{"__init", "6__init"},
	}
	for _, tt := range tests {
		t.Run(tt.ident, func(t *testing.T) {
			assert.Equal(t, tt.expected, MangleIdent(tt.ident))
		})
	}
}

func TestMangleType(t *testing.T) {
	sd := &types.StructDecl{Name: "Point"}
	cd := &types.ClassDecl{Name: "Object"}

	tests := []struct {
		name     string
		typ      types.Type
		expected string
	}{
		{"int", types.TInt, "i"},
		{"char", types.TChar, "a"},
		{"dchar", types.TDchar, "w"},
		{"real", types.TReal, "e"},
		{"idouble", types.Float{Width: 64, Imaginary: true}, "p"},
		{"cfloat", types.Complex{Width: 32}, "q"},
		{"string", types.TString, "Aa"},
		{"pointer to pointer", types.Pointer{Elem: types.Pointer{Elem: types.TVoid}}, "PPv"},
		{"static array", types.StaticArray{Elem: types.TUbyte, Dim: 16}, "G16h"},
		{"nested arrays", types.DynArray{Elem: types.StaticArray{Elem: types.TInt, Dim: 2}}, "AG2i"},
		{"associative array", types.AssocArray{Key: types.TString, Value: types.TLong}, "HAal"},
		{"struct", sd.Type(), "S5Point"},
		{"class", cd.Type(), "C6Object"},
		{"function", types.Function{Params: []types.Type{types.TInt, types.TDouble}, Result: types.TBool}, "FidZb"},
		{"ref function", types.Function{Result: types.TInt, Ref: true}, "FNcZi"},
		{"variadic", types.Function{Params: []types.Type{types.TString}, Result: types.TVoid, Variadic: true}, "FAaYv"},
		{"delegate", types.Delegate{Func: types.Function{Result: types.TVoid}}, "DFZv"},
		{"vector", types.Vector{Elem: types.TFloat, Dim: 4}, "NhG4f"},
		{"null", types.Null{}, "n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MangleType(tt.typ))

			back, err := DemangleType(tt.expected)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, MangleType(back))
			assert.Equal(t, tt.typ.String(), back.String())
		})
	}
}

func TestRuntimeSymbols(t *testing.T) {
	assert.Equal(t, "_D11TypeInfo_Aa6__initZ", typeInfoSymbol(types.TString))
	assert.Equal(t, "_D6Object7__ClassZ", classInfoSymbol(&types.ClassDecl{Name: "Object"}))
	assert.Equal(t, "_D5Point6__initZ", initSymbolName("Point"))
}

func TestTypeInfoType(t *testing.T) {
	for _, typ := range []types.Type{
		types.TInt,
		types.TString,
		types.AssocArray{Key: types.TInt, Value: types.DynArray{Elem: types.TDouble}},
	} {
		got, err := TypeInfoType(typeInfoSymbol(typ))
		require.NoError(t, err, typ.String())
		assert.True(t, types.Equal(typ, got), typ.String())
	}
}

func TestDemangleErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		msg   string
	}{
		{"empty", "", "type expected"},
		{"unknown code", "X", "unknown type code"},
		{"trailing", "ii", "trailing characters"},
		{"array without length", "Gi", "static array missing length"},
		{"short identifier", "S9Point", "out of range"},
		{"open parameter list", "Fi", "unterminated parameter list"},
		{"bad qualifier", "Nxi", "unknown qualifier"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DemangleType(tt.input)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}

	_, err := TypeInfoType("_D5Point6__initZ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a type descriptor symbol")
}
