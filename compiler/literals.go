package compiler

import (
	"encoding/binary"
	"fmt"
	"slices"
	"unicode/utf16"

	"github.com/thiremani/exprlower/ast"
	"github.com/thiremani/exprlower/ir"
	"github.com/thiremani/exprlower/types"
)

func lowerInteger(c *Compiler, e *ast.Integer) ir.Node {
	t := c.irType(e.T)
	if ir.IsInteger(t) {
		return ir.IntOf(t, e.Value)
	}
	return ir.ConvertTo(t, ir.IntOf(ir.I64, e.Value))
}

func lowerReal(c *Compiler, e *ast.Real) ir.Node {
	t := c.irType(e.T)
	if ct, ok := t.(ir.Complex); ok {
		return ir.ComplexOf(ct, e.Value, 0)
	}
	return ir.FloatOf(t, e.Value)
}

func lowerComplex(c *Compiler, e *ast.Complex) ir.Node {
	ct, ok := c.irType(e.T).(ir.Complex)
	if !ok {
		panic("internal: complex literal of type " + e.T.String())
	}
	return ir.ComplexOf(ct, e.Re, e.Im)
}

// encodeString encodes s in code units of the given width, little endian.
func encodeString(s string, width uint32) ([]byte, uint64) {
	switch width {
	case 8:
		return []byte(s), uint64(len(s))
	case 16:
		units := utf16.Encode([]rune(s))
		buf := make([]byte, 0, 2*len(units))
		for _, u := range units {
			buf = binary.LittleEndian.AppendUint16(buf, u)
		}
		return buf, uint64(len(units))
	case 32:
		runes := []rune(s)
		buf := make([]byte, 0, 4*len(runes))
		for _, r := range runes {
			buf = binary.LittleEndian.AppendUint32(buf, uint32(r))
		}
		return buf, uint64(len(runes))
	}
	panic(fmt.Sprintf("internal: string of %d bit code units", width))
}

// lowerString places the encoded text in a read-only buffer. Dynamic
// arrays and pointers see a zero terminated buffer; static arrays are
// the buffer itself, padded or cut to their length.
func lowerString(c *Compiler, e *ast.String) ir.Node {
	et, ok := types.Elem(e.T).(types.Int)
	if !ok {
		return c.errorf(e, "Invalid type for string constant: %s", e.T)
	}
	data, n := encodeString(e.Value, et.Width)
	unit := uint64(et.Width / 8)
	elem := c.irType(et)

	switch e.T.Kind() {
	case types.StaticArrayKind:
		at := c.irType(e.T).(ir.Array)
		size := at.Len * unit
		if uint64(len(data)) > size {
			data = data[:size]
		}
		data = append(data, make([]byte, size-uint64(len(data)))...)
		return ir.StringOf(at, data)
	case types.DynArrayKind, types.PointerKind:
		data = append(data, make([]byte, unit)...)
		buf := ir.StringOf(ir.Array{Elem: elem, Len: n + 1}, data)
		ptr := ir.NopTo(ir.PointerTo(elem), ir.AddrOf(buf))
		if e.T.Kind() == types.PointerKind {
			return ptr
		}
		return ir.SliceOf(c.irType(e.T).(ir.Slice), ir.SizeOf(n), ptr)
	}
	return c.errorf(e, "Invalid type for string constant: %s", e.T)
}

// lowerNull is the zero value of the literal's type: a null pointer, an
// empty array, a null delegate or an empty associative array.
func lowerNull(c *Compiler, e *ast.Null) ir.Node {
	return ir.ZeroOf(c.irType(e.T))
}

// literalElem is the element type of an array literal; void elements are
// stored as bytes.
func literalElem(t types.Type) types.Type {
	et := types.Elem(t)
	if et.Kind() == types.VoidKind {
		return types.TUbyte
	}
	return et
}

// arrayCtor builds the fixed array holding elements. Zero elements are
// left to the constructor's zero fill.
func (c *Compiler) arrayCtor(etype types.Type, elements []ast.Expression) *ir.Ctor {
	at := ir.Array{Elem: c.irType(etype), Len: uint64(len(elements))}
	elems := make([]ir.CtorElem, 0, len(elements))
	for i, el := range elements {
		x := c.Lower(el)
		if ir.IsIntZero(x) {
			continue
		}
		elems = append(elems, ir.CtorElem{Index: i, Value: c.convertExpr(x, el.Type(), etype)})
	}
	return ir.CtorOf(at, elems)
}

// lowerArrayLiteral builds static arrays in place. Dynamic arrays and
// pointers get a heap block from the runtime, filled from a constructed
// buffer.
func lowerArrayLiteral(c *Compiler, e *ast.ArrayLiteral) ir.Node {
	tk := e.T.Kind()
	if tk != types.StaticArrayKind && tk != types.DynArrayKind && tk != types.PointerKind {
		panic("internal: array literal of type " + e.T.String())
	}
	etype := literalElem(e.T)
	n := uint64(len(e.Elements))

	if n == 0 {
		if tk == types.StaticArrayKind {
			return ir.CtorOf(c.irType(e.T), nil)
		}
		return ir.ZeroOf(c.irType(e.T))
	}

	ctor := c.arrayCtor(etype, e.Elements)
	if tk == types.StaticArrayKind {
		return ir.ViewAs(c.irType(e.T), ctor)
	}

	ti := c.typeInfo(types.DynArray{Elem: etype})
	mem := ir.SaveOf(ir.NopTo(ir.PointerTo(c.irType(etype)), libcall(ArrayLiteralTX, ti, ir.SizeOf(n))))
	size := ir.SizeOf(n * etype.Size())
	result := ir.Seq(ir.CallBuiltin(ir.Memcpy, mem, addressOf(ctor), size), mem)
	if tk == types.PointerKind {
		return ir.NopTo(c.irType(e.T), result)
	}
	return ir.SliceOf(c.irType(e.T).(ir.Slice), ir.SizeOf(n), result)
}

// lowerAssocArrayLiteral passes the keys and values to the runtime as two
// parallel arrays.
func lowerAssocArrayLiteral(c *Compiler, e *ast.AssocArrayLiteral) ir.Node {
	aat, ok := e.T.(types.AssocArray)
	if !ok {
		panic("internal: associative array literal of type " + e.T.String())
	}
	if len(e.Keys) == 0 {
		return ir.ZeroOf(ir.AAType)
	}
	if len(e.Keys) != len(e.Values) {
		panic("internal: associative array literal with unmatched keys")
	}

	n := ir.SizeOf(uint64(len(e.Keys)))
	keys := c.arrayCtor(aat.Key, e.Keys)
	values := c.arrayCtor(aat.Value, e.Values)
	ks := ir.SliceOf(ir.Slice{Elem: c.irType(aat.Key)}, n, addressOf(keys))
	vs := ir.SliceOf(ir.Slice{Elem: c.irType(aat.Value)}, n, addressOf(values))
	return libcall(AssocArrayLiteralTX, c.typeInfo(aat), ks, vs)
}

// fieldValue converts a struct literal element to its field. A static
// array field given a single element is filled with copies of it.
func (c *Compiler) fieldValue(f *types.Field, el ast.Expression) ir.Node {
	ft, ok := f.Type.(types.StaticArray)
	if !ok || types.Equal(el.Type(), ft) {
		return c.convertExpr(c.Lower(el), el.Type(), f.Type)
	}
	base := types.BaseElem(ft)
	tmp := ir.NewTemp(c.irType(ft), "fill")
	ptr := ir.NopTo(ir.PointerTo(c.irType(base)), ir.AddrOf(tmp))
	value := c.convertExpr(c.Lower(el), el.Type(), base)
	return ir.Seq(c.arraySet(ptr, ir.SizeOf(ft.Size()/base.Size()), value), tmp)
}

// structCtor builds the fields of sd from elements, which may be shorter
// than the field list. Nested structs not given all their fields get the
// outer context.
func (c *Compiler) structCtor(sd *types.StructDecl, elements []ast.Expression) *ir.Ctor {
	if len(elements) > len(sd.Fields) {
		panic("internal: struct literal with too many elements for " + sd.Name)
	}
	rec := c.structRecord(sd)
	elems := make([]ir.CtorElem, 0, len(elements)+1)
	for i, el := range elements {
		if el == nil {
			continue
		}
		f := sd.Fields[i]
		elems = append(elems, ir.CtorElem{Index: fieldIndex(rec, f), Value: c.fieldValue(f, el)})
	}
	if sd.Nested() && len(elements) != len(sd.Fields) {
		elems = append(elems, ir.CtorElem{Index: rec.FieldIndex(sd.VThis.Name), Value: c.vthisOf(sd)})
	}
	return ir.CtorOf(rec, elems)
}

// structInto constructs sd in the storage ptr points to and yields ptr.
func (c *Compiler) structInto(sd *types.StructDecl, elements []ast.Expression, ptr ir.Node) ir.Node {
	ptr = ir.SaveOf(ptr)
	dst := ir.DerefOf(ir.NopTo(ir.PointerTo(c.structRecord(sd)), ptr))
	return ir.Seq(ir.InitTo(dst, c.structCtor(sd, elements)), ptr)
}

// lowerStructLiteral uses the static initializer image when the literal
// has one. Literals with their own symbol are built in it; union literals
// are built over zeroed storage so that padding is clear.
func lowerStructLiteral(c *Compiler, e *ast.StructLiteral) ir.Node {
	sd := e.Decl
	rec := c.structRecord(sd)
	if len(sd.Fields) == 0 {
		return ir.CtorOf(rec, nil)
	}
	if e.StaticInit {
		return c.initSymbol(sd.Name, rec)
	}

	if e.Sym != "" {
		sym := ir.NewGlobal(e.Sym, rec)
		return ir.Seq(ir.AssignTo(sym, c.structCtor(sd, e.Elements)), sym)
	}
	ctor := c.structCtor(sd, e.Elements)
	if sd.Union {
		tmp := ir.NewTemp(rec, "union")
		clear := ir.CallBuiltin(ir.Memset, ir.AddrOf(tmp), ir.IntOf(ir.I32, 0), ir.SizeOf(sd.SizeOf))
		return ir.Seq(ir.Seq(clear, ir.InitTo(tmp, ctor)), tmp)
	}
	return ctor
}

// staticLiteral is the static symbol a literal was folded from. The
// literal is recorded so that its symbol is emitted.
func (c *Compiler) staticLiteral(lit *ast.StructLiteral) ir.Node {
	origin := lit
	if lit.Origin != nil {
		origin = lit.Origin
	}
	if origin.Sym == "" {
		panic("internal: struct literal of " + origin.Decl.Name + " has no static symbol")
	}
	if !slices.Contains(c.Statics, origin) {
		c.Statics = append(c.Statics, origin)
	}
	return ir.NewGlobal(origin.Sym, c.structRecord(origin.Decl))
}

// lowerClassReference is the address of a statically built instance.
func lowerClassReference(c *Compiler, e *ast.ClassReference) ir.Node {
	rec := c.classRecord(e.Decl)
	return ir.NopTo(c.irType(e.T), ir.AddrOf(ir.NewGlobal(e.Sym, rec)))
}
