package llvmgen

import (
	"github.com/thiremani/exprlower/ir"
	"tinygo.org/x/go-llvm"
)

func (g *Generator) toBool(v llvm.Value, t ir.Type) llvm.Value {
	if _, ok := t.(ir.Bool); ok {
		return v
	}
	return g.nonZero(v, t)
}

// nonZero tests a scalar against zero.
func (g *Generator) nonZero(v llvm.Value, t ir.Type) llvm.Value {
	switch tt := t.(type) {
	case ir.Float:
		return g.builder.CreateFCmp(llvm.FloatUNE, v, llvm.ConstNull(v.Type()), "tobool")
	case ir.Complex:
		part := g.floatType(tt.Part())
		zero := llvm.ConstNull(part)
		re := g.builder.CreateFCmp(llvm.FloatUNE, g.builder.CreateExtractValue(v, 0, ""), zero, "")
		im := g.builder.CreateFCmp(llvm.FloatUNE, g.builder.CreateExtractValue(v, 1, ""), zero, "")
		return g.builder.CreateOr(re, im, "tobool")
	case ir.Int, ir.Pointer, ir.AssocArray:
		return g.builder.CreateICmp(llvm.IntNE, v, llvm.ConstNull(v.Type()), "tobool")
	}
	g.fail("no truth value for %s", t)
	return llvm.Value{}
}

// convert changes the value of a scalar from one type to another.
func (g *Generator) convert(v llvm.Value, from, to ir.Type) llvm.Value {
	if ir.SameType(from, to) {
		return v
	}
	lt := g.llvmType(to)
	switch tt := to.(type) {
	case ir.Bool:
		return g.nonZero(v, from)
	case ir.Int:
		switch ft := from.(type) {
		case ir.Int, ir.Bool:
			return g.resize(v, from, lt)
		case ir.Float:
			if tt.Unsigned {
				return g.builder.CreateFPToUI(v, lt, "conv")
			}
			return g.builder.CreateFPToSI(v, lt, "conv")
		case ir.Complex:
			return g.convert(g.builder.CreateExtractValue(v, 0, "re"), ft.Part(), to)
		case ir.Pointer, ir.AssocArray:
			return g.builder.CreatePtrToInt(v, lt, "conv")
		}
	case ir.Float:
		switch ft := from.(type) {
		case ir.Int, ir.Bool:
			if ir.IsUnsigned(from) {
				return g.builder.CreateUIToFP(v, lt, "conv")
			}
			return g.builder.CreateSIToFP(v, lt, "conv")
		case ir.Float:
			if ft.Bits < tt.Bits {
				return g.builder.CreateFPExt(v, lt, "conv")
			}
			return g.builder.CreateFPTrunc(v, lt, "conv")
		case ir.Complex:
			return g.convert(g.builder.CreateExtractValue(v, 0, "re"), ft.Part(), to)
		}
	case ir.Complex:
		part := tt.Part()
		switch ft := from.(type) {
		case ir.Complex:
			re := g.convert(g.builder.CreateExtractValue(v, 0, ""), ft.Part(), part)
			im := g.convert(g.builder.CreateExtractValue(v, 1, ""), ft.Part(), part)
			return g.aggregate(tt, re, im)
		case ir.Int, ir.Bool, ir.Float:
			re := g.convert(v, from, part)
			return g.aggregate(tt, re, llvm.ConstNull(g.floatType(part)))
		}
	case ir.Pointer:
		switch from.(type) {
		case ir.Int, ir.Bool:
			return g.builder.CreateIntToPtr(g.resize(v, from, g.Context.Int64Type()), lt, "conv")
		case ir.Pointer, ir.AssocArray:
			return v
		}
	}
	return g.view(v, from, to)
}

// resize truncates or extends an integer, extending by the signedness of
// the source.
func (g *Generator) resize(v llvm.Value, from ir.Type, lt llvm.Type) llvm.Value {
	have := v.Type().IntTypeWidth()
	want := lt.IntTypeWidth()
	switch {
	case have > want:
		return g.builder.CreateTrunc(v, lt, "conv")
	case have < want && ir.IsUnsigned(from):
		return g.builder.CreateZExt(v, lt, "conv")
	case have < want:
		return g.builder.CreateSExt(v, lt, "conv")
	}
	return v
}

// view reinterprets the bits of v as type to. Values that LLVM cannot
// bitcast directly go through a stack slot.
func (g *Generator) view(v llvm.Value, from, to ir.Type) llvm.Value {
	if ir.SameType(from, to) {
		return v
	}
	lt := g.llvmType(to)
	if v.Type() == lt {
		return v
	}
	fromPtr := ir.IsPointer(from) || from == ir.AAType
	toPtr := ir.IsPointer(to) || to == ir.AAType
	switch {
	case fromPtr && toPtr:
		return v
	case fromPtr && ir.IsInteger(to):
		return g.builder.CreatePtrToInt(v, lt, "view")
	case ir.IsInteger(from) && toPtr:
		return g.builder.CreateIntToPtr(v, lt, "view")
	case scalarBits(from) && scalarBits(to) && from.Size() == to.Size():
		return g.builder.CreateBitCast(v, lt, "view")
	}

	size := from.Size()
	slotType := from
	if to.Size() > size {
		slotType = to
	}
	slot := g.entryAlloca(g.llvmType(slotType), "view")
	if slotType != from {
		g.builder.CreateStore(llvm.ConstNull(g.llvmType(slotType)), slot)
	}
	g.builder.CreateStore(v, slot)
	return g.builder.CreateLoad(lt, slot, "view")
}

func scalarBits(t ir.Type) bool {
	switch tt := t.(type) {
	case ir.Int, ir.Vector:
		return true
	case ir.Float:
		return tt.Bits != 80
	}
	return false
}
