package compiler

import (
	"fmt"

	"github.com/thiremani/exprlower/ir"
)

// Libcall identifies a runtime library helper.
type Libcall int

const (
	// Array concatenation and append
	ArrayCatT Libcall = iota
	ArrayCatNTX
	ArrayAppendT
	ArrayAppendCTX
	ArrayAppendCD
	ArrayAppendWD

	// Array copy and assignment
	ArrayCopy
	ArrayCtor
	ArrayAssign
	ArrayAssignL
	ArrayAssignR
	ArraySetCtor
	ArraySetAssign
	ArraySetLengthT
	ArraySetLengthIT

	// Associative arrays
	AAGetY
	AAGetRvalueX
	AADelX
	AAEqual
	AAInX
	AssocArrayLiteralTX

	ArrayLiteralTX
	AdEq2
	AdCmp2

	// Allocation
	NewClass
	NewItemT
	NewItemIT
	NewArrayT
	NewArrayIT
	NewArrayMTX
	NewArrayMITX

	// Deallocation
	DelClass
	DelInterface
	DelArrayT
	DelStruct
	DelMemory
	CallFinalizer
	CallInterfaceFinalizer

	// Casts
	InterfaceCast

	// Contracts
	Invariant
	Assert
	AssertMsg
	Unittest
	UnittestMsg
	ArrayBounds

	NumLibcalls
)

// argKind is the contract of one helper parameter.
type argKind int

const (
	argTypeInfo argKind = iota // address of a type or class descriptor
	argPtr                     // any pointer
	argArray                   // any dynamic array
	argSize                    // size_t
	argAA                      // associative array handle
	argUint                    // 32 bit unsigned, also dchar
)

var argNames = [...]string{
	argTypeInfo: "TypeInfo",
	argPtr:      "void*",
	argArray:    "void[]",
	argSize:     "size_t",
	argAA:       "AA",
	argUint:     "uint",
}

func (k argKind) String() string { return argNames[k] }

// irType is the declared parameter type.
func (k argKind) irType() ir.Type {
	switch k {
	case argTypeInfo:
		return typeInfoPtr
	case argPtr:
		return ir.VoidPtr
	case argArray:
		return ir.VoidSlice
	case argSize:
		return ir.SizeT
	case argAA:
		return ir.AAType
	case argUint:
		return ir.U32
	}
	panic("internal: unknown argument kind")
}

// accepts reports whether x can be passed for a parameter of kind k.
func (k argKind) accepts(x ir.Node) bool {
	t := x.Type()
	switch k {
	case argTypeInfo:
		return ir.SameType(t, typeInfoPtr)
	case argPtr:
		return ir.IsPointer(t)
	case argArray:
		_, ok := t.(ir.Slice)
		return ok
	case argSize, argUint:
		return ir.IsInteger(t)
	case argAA:
		_, ok := t.(ir.AssocArray)
		return ok
	}
	return false
}

func (k argKind) coerce(x ir.Node) ir.Node {
	switch k {
	case argPtr:
		return ir.NopTo(ir.VoidPtr, x)
	case argArray:
		return ir.ViewAs(ir.VoidSlice, x)
	case argSize:
		return ir.ConvertTo(ir.SizeT, x)
	case argUint:
		return ir.ConvertTo(ir.U32, x)
	}
	return x
}

type libcallInfo struct {
	Name   string
	Params []argKind
	Result ir.Type
}

var libcalls = [NumLibcalls]libcallInfo{
	ArrayCatT:      {"_d_arraycatT", []argKind{argTypeInfo, argArray, argArray}, ir.VoidSlice},
	ArrayCatNTX:    {"_d_arraycatnTX", []argKind{argTypeInfo, argArray}, ir.VoidSlice},
	ArrayAppendT:   {"_d_arrayappendT", []argKind{argTypeInfo, argPtr, argArray}, ir.VoidSlice},
	ArrayAppendCTX: {"_d_arrayappendcTX", []argKind{argTypeInfo, argPtr, argSize}, ir.VoidSlice},
	ArrayAppendCD:  {"_d_arrayappendcd", []argKind{argPtr, argUint}, ir.VoidSlice},
	ArrayAppendWD:  {"_d_arrayappendwd", []argKind{argPtr, argUint}, ir.VoidSlice},

	ArrayCopy:        {"_d_arraycopy", []argKind{argSize, argArray, argArray}, ir.VoidSlice},
	ArrayCtor:        {"_d_arrayctor", []argKind{argTypeInfo, argArray, argArray}, ir.VoidSlice},
	ArrayAssign:      {"_d_arrayassign", []argKind{argTypeInfo, argArray, argArray}, ir.VoidSlice},
	ArrayAssignL:     {"_d_arrayassign_l", []argKind{argTypeInfo, argArray, argArray, argPtr}, ir.VoidSlice},
	ArrayAssignR:     {"_d_arrayassign_r", []argKind{argTypeInfo, argArray, argArray, argPtr}, ir.VoidSlice},
	ArraySetCtor:     {"_d_arraysetctor", []argKind{argPtr, argPtr, argSize, argTypeInfo}, ir.VoidPtr},
	ArraySetAssign:   {"_d_arraysetassign", []argKind{argPtr, argPtr, argSize, argTypeInfo}, ir.VoidPtr},
	ArraySetLengthT:  {"_d_arraysetlengthT", []argKind{argTypeInfo, argSize, argPtr}, ir.VoidSlice},
	ArraySetLengthIT: {"_d_arraysetlengthiT", []argKind{argTypeInfo, argSize, argPtr}, ir.VoidSlice},

	AAGetY:              {"_aaGetY", []argKind{argPtr, argTypeInfo, argSize, argPtr}, ir.VoidPtr},
	AAGetRvalueX:        {"_aaGetRvalueX", []argKind{argAA, argTypeInfo, argSize, argPtr}, ir.VoidPtr},
	AADelX:              {"_aaDelX", []argKind{argAA, argTypeInfo, argPtr}, ir.BoolType},
	AAEqual:             {"_aaEqual", []argKind{argTypeInfo, argAA, argAA}, ir.I32},
	AAInX:               {"_aaInX", []argKind{argAA, argTypeInfo, argPtr}, ir.VoidPtr},
	AssocArrayLiteralTX: {"_d_assocarrayliteralTX", []argKind{argTypeInfo, argArray, argArray}, ir.AAType},

	ArrayLiteralTX: {"_d_arrayliteralTX", []argKind{argTypeInfo, argSize}, ir.VoidPtr},
	AdEq2:          {"_adEq2", []argKind{argArray, argArray, argTypeInfo}, ir.I32},
	AdCmp2:         {"_adCmp2", []argKind{argArray, argArray, argTypeInfo}, ir.I32},

	NewClass:     {"_d_newclass", []argKind{argTypeInfo}, ir.VoidPtr},
	NewItemT:     {"_d_newitemT", []argKind{argTypeInfo}, ir.VoidPtr},
	NewItemIT:    {"_d_newitemiT", []argKind{argTypeInfo}, ir.VoidPtr},
	NewArrayT:    {"_d_newarrayT", []argKind{argTypeInfo, argSize}, ir.VoidSlice},
	NewArrayIT:   {"_d_newarrayiT", []argKind{argTypeInfo, argSize}, ir.VoidSlice},
	NewArrayMTX:  {"_d_newarraymTX", []argKind{argTypeInfo, argArray}, ir.VoidSlice},
	NewArrayMITX: {"_d_newarraymiTX", []argKind{argTypeInfo, argArray}, ir.VoidSlice},

	DelClass:               {"_d_delclass", []argKind{argPtr}, ir.VoidType},
	DelInterface:           {"_d_delinterface", []argKind{argPtr}, ir.VoidType},
	DelArrayT:              {"_d_delarray_t", []argKind{argPtr, argTypeInfo}, ir.VoidType},
	DelStruct:              {"_d_delstruct", []argKind{argPtr, argTypeInfo}, ir.VoidType},
	DelMemory:              {"_d_delmemory", []argKind{argPtr}, ir.VoidType},
	CallFinalizer:          {"_d_callfinalizer", []argKind{argPtr}, ir.VoidType},
	CallInterfaceFinalizer: {"_d_callinterfacefinalizer", []argKind{argPtr}, ir.VoidType},

	InterfaceCast: {"_d_interface_cast", []argKind{argPtr, argPtr}, ir.VoidPtr},

	Invariant:   {"_d_invariant", []argKind{argPtr}, ir.VoidType},
	Assert:      {"_d_assert", []argKind{argArray, argUint}, ir.VoidType},
	AssertMsg:   {"_d_assert_msg", []argKind{argArray, argArray, argUint}, ir.VoidType},
	Unittest:    {"_d_unittest", []argKind{argArray, argUint}, ir.VoidType},
	UnittestMsg: {"_d_unittest_msg", []argKind{argArray, argArray, argUint}, ir.VoidType},
	ArrayBounds: {"_d_arraybounds", []argKind{argArray, argUint}, ir.VoidType},
}

func (lc Libcall) String() string { return libcalls[lc].Name }

// Signature returns the declared function type of the helper.
func (lc Libcall) Signature() *ir.Func {
	info := libcalls[lc]
	params := make([]ir.Type, len(info.Params))
	for i, k := range info.Params {
		params[i] = k.irType()
	}
	return &ir.Func{Params: params, Result: info.Result}
}

// LibcallNamed returns the helper with the given symbol name.
func LibcallNamed(name string) (Libcall, bool) {
	for i, info := range libcalls {
		if info.Name == name {
			return Libcall(i), true
		}
	}
	return 0, false
}

// libcall builds a call to a runtime helper. The arguments are checked
// against the helper's contract and converted to its declared types.
func libcall(lc Libcall, args ...ir.Node) *ir.Call {
	info := libcalls[lc]
	if len(args) != len(info.Params) {
		panic(fmt.Sprintf("internal: %s takes %d arguments, got %d", info.Name, len(info.Params), len(args)))
	}
	conv := make([]ir.Node, len(args))
	for i, a := range args {
		k := info.Params[i]
		if !k.accepts(a) {
			panic(fmt.Sprintf("internal: %s argument %d: want %s, got %s", info.Name, i, k, a.Type()))
		}
		conv[i] = k.coerce(a)
	}
	callee := ir.FuncAddr(info.Name, lc.Signature(), ir.RuntimeFunc)
	return ir.CallOf(callee, nil, conv)
}
