package types

var builtinTypes = map[string]Type{
	"void":    Void{},
	"bool":    Bool{},
	"byte":    Int{Width: 8},
	"ubyte":   Int{Width: 8, Unsigned: true},
	"short":   Int{Width: 16},
	"ushort":  Int{Width: 16, Unsigned: true},
	"int":     Int{Width: 32},
	"uint":    Int{Width: 32, Unsigned: true},
	"long":    Int{Width: 64},
	"ulong":   Int{Width: 64, Unsigned: true},
	"char":    Int{Width: 8, Unsigned: true, Char: true},
	"wchar":   Int{Width: 16, Unsigned: true, Char: true},
	"dchar":   Int{Width: 32, Unsigned: true, Char: true},
	"float":   Float{Width: 32},
	"double":  Float{Width: 64},
	"real":    Float{Width: 80},
	"ifloat":  Float{Width: 32, Imaginary: true},
	"idouble": Float{Width: 64, Imaginary: true},
	"ireal":   Float{Width: 80, Imaginary: true},
	"cfloat":  Complex{Width: 32},
	"cdouble": Complex{Width: 64},
	"creal":   Complex{Width: 80},
}

// Common types for readability.
var (
	TVoid   = builtinTypes["void"]
	TBool   = builtinTypes["bool"]
	TInt    = builtinTypes["int"]
	TUint   = builtinTypes["uint"]
	TLong   = builtinTypes["long"]
	TSizeT  = builtinTypes["ulong"]
	TUbyte  = builtinTypes["ubyte"]
	TChar   = builtinTypes["char"]
	TWchar  = builtinTypes["wchar"]
	TDchar  = builtinTypes["dchar"]
	TFloat  = builtinTypes["float"]
	TDouble = builtinTypes["double"]
	TReal   = builtinTypes["real"]
	TString = DynArray{Elem: TChar}
)

// Builtin returns the basic type spelled name.
func Builtin(name string) (Type, bool) {
	t, ok := builtinTypes[name]
	return t, ok
}

// IsReservedTypeName reports whether name is a built-in type keyword.
func IsReservedTypeName(name string) bool {
	_, ok := builtinTypes[name]
	return ok
}
