package compiler

import (
	"strconv"
	"strings"

	"github.com/thiremani/exprlower/types"
)

// MangleIdent prefixes an identifier with its length, e.g. foo -> 3foo.
func MangleIdent(name string) string {
	return strconv.Itoa(len(name)) + name
}

var basicMangle = map[string]string{
	"void":    "v",
	"bool":    "b",
	"byte":    "g",
	"ubyte":   "h",
	"short":   "s",
	"ushort":  "t",
	"int":     "i",
	"uint":    "k",
	"long":    "l",
	"ulong":   "m",
	"char":    "a",
	"wchar":   "u",
	"dchar":   "w",
	"float":   "f",
	"double":  "d",
	"real":    "e",
	"ifloat":  "o",
	"idouble": "p",
	"ireal":   "j",
	"cfloat":  "q",
	"cdouble": "r",
	"creal":   "c",
}

// MangleType returns the type signature used in runtime symbol names.
func MangleType(t types.Type) string {
	var sb strings.Builder
	mangleTypeTo(&sb, t)
	return sb.String()
}

func mangleTypeTo(sb *strings.Builder, t types.Type) {
	switch tt := t.(type) {
	case types.Pointer:
		sb.WriteByte('P')
		mangleTypeTo(sb, tt.Elem)
	case types.StaticArray:
		sb.WriteByte('G')
		sb.WriteString(strconv.FormatUint(tt.Dim, 10))
		mangleTypeTo(sb, tt.Elem)
	case types.DynArray:
		sb.WriteByte('A')
		mangleTypeTo(sb, tt.Elem)
	case types.AssocArray:
		sb.WriteByte('H')
		mangleTypeTo(sb, tt.Key)
		mangleTypeTo(sb, tt.Value)
	case types.Struct:
		sb.WriteByte('S')
		sb.WriteString(MangleIdent(tt.Decl.Name))
	case types.Class:
		sb.WriteByte('C')
		sb.WriteString(MangleIdent(tt.Decl.Name))
	case types.Function:
		mangleFuncTo(sb, tt)
	case types.Delegate:
		sb.WriteByte('D')
		mangleFuncTo(sb, tt.Func)
	case types.Vector:
		sb.WriteString("NhG")
		sb.WriteString(strconv.FormatUint(tt.Dim, 10))
		mangleTypeTo(sb, tt.Elem)
	case types.Null:
		sb.WriteByte('n')
	default:
		m, ok := basicMangle[t.String()]
		if !ok {
			panic("internal: cannot mangle type " + t.String())
		}
		sb.WriteString(m)
	}
}

func mangleFuncTo(sb *strings.Builder, f types.Function) {
	sb.WriteByte('F')
	if f.Ref {
		sb.WriteString("Nc")
	}
	for _, p := range f.Params {
		mangleTypeTo(sb, p)
	}
	if f.Variadic {
		sb.WriteByte('Y')
	} else {
		sb.WriteByte('Z')
	}
	mangleTypeTo(sb, f.Result)
}

// typeInfoSymbol names the type descriptor of t, e.g. _D11TypeInfo_Aa6__initZ.
func typeInfoSymbol(t types.Type) string {
	return "_D" + MangleIdent("TypeInfo_"+MangleType(t)) + "6__initZ"
}

func classInfoSymbol(cd *types.ClassDecl) string {
	return "_D" + MangleIdent(cd.Name) + "7__ClassZ"
}

func initSymbolName(name string) string {
	return "_D" + MangleIdent(name) + "6__initZ"
}
