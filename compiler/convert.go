package compiler

import (
	"github.com/thiremani/exprlower/ast"
	"github.com/thiremani/exprlower/ir"
	"github.com/thiremani/exprlower/token"
	"github.com/thiremani/exprlower/types"
)

// convertExpr converts x from one static type to another.
func (c *Compiler) convertExpr(x ir.Node, from, to types.Type) ir.Node {
	if types.Equal(from, to) {
		return x
	}
	switch {
	case to.Kind() == types.VoidKind:
		return ir.Seq(x, ir.Nothing())
	case from.Kind() == types.NullKind:
		return ir.Seq(sideEffectsOf(x), ir.ZeroOf(c.irType(to)))
	case to.Kind() == types.BoolKind:
		return c.conditionOf(x, from)
	}

	switch ft := from.(type) {
	case types.StaticArray:
		switch tt := to.(type) {
		case types.DynArray:
			return c.arrayView(c.toDynamic(x, from), ft.Elem, tt.Elem)
		case types.Pointer:
			return ir.NopTo(c.irType(to), c.arrayPtr(x, from))
		case types.StaticArray, types.Vector:
			return ir.ViewAs(c.irType(to), x)
		}
	case types.DynArray:
		switch tt := to.(type) {
		case types.DynArray:
			return c.arrayView(x, ft.Elem, tt.Elem)
		case types.Pointer:
			return ir.NopTo(c.irType(to), ir.SlicePtr(x))
		case types.StaticArray:
			return ir.DerefOf(ir.NopTo(ir.PointerTo(c.irType(to)), ir.SlicePtr(x)))
		}
	case types.Vector:
		if to.Kind() == types.StaticArrayKind || to.Kind() == types.VectorKind {
			return ir.ViewAs(c.irType(to), x)
		}
	case types.Float:
		return c.convertFloat(x, ft, to)
	case types.Complex:
		return c.convertComplex(x, ft, to)
	case types.Delegate:
		return ir.ViewAs(c.irType(to), x)
	}

	t := c.irType(to)
	if ir.IsPointer(t) && ir.IsPointer(x.Type()) {
		return ir.NopTo(t, x)
	}
	return ir.ConvertTo(t, x)
}

// convertFloat handles conversions out of real and imaginary types.
// A real viewed as imaginary, or the reverse, is zero.
func (c *Compiler) convertFloat(x ir.Node, from types.Float, to types.Type) ir.Node {
	switch tt := to.(type) {
	case types.Complex:
		ct := ir.Complex{Bits: tt.Width}
		zero := ir.FloatOf(ct.Part(), 0)
		if from.Imaginary {
			return ir.ComplexFrom(ct, zero, x)
		}
		return ir.ComplexFrom(ct, x, zero)
	case types.Float:
		if tt.Imaginary != from.Imaginary {
			return ir.Seq(sideEffectsOf(x), ir.FloatOf(c.irType(to), 0))
		}
	}
	return ir.ConvertTo(c.irType(to), x)
}

func (c *Compiler) convertComplex(x ir.Node, from types.Complex, to types.Type) ir.Node {
	switch tt := to.(type) {
	case types.Complex:
		ct := ir.Complex{Bits: tt.Width}
		x = ir.SaveOf(x)
		return ir.ComplexFrom(ct, ir.Part(ir.RealPart, x), ir.Part(ir.ImagPart, x))
	case types.Float:
		if tt.Imaginary {
			return ir.ConvertTo(c.irType(to), ir.Part(ir.ImagPart, x))
		}
	}
	return ir.ConvertTo(c.irType(to), ir.Part(ir.RealPart, x))
}

// arrayView reinterprets a dynamic array of from elements as one of to
// elements, rescaling the length when the element sizes differ.
func (c *Compiler) arrayView(x ir.Node, from, to types.Type) ir.Node {
	st := ir.Slice{Elem: c.irType(to)}
	fsize, tsize := from.Size(), to.Size()
	if fsize == tsize {
		return ir.ViewAs(st, x)
	}
	x = ir.SaveOf(x)
	length := ir.Binop(ir.Mul, ir.SizeT, ir.SliceLen(x), ir.SizeOf(fsize))
	length = ir.Binop(ir.Div, ir.SizeT, length, ir.SizeOf(tsize))
	return ir.SliceOf(st, length, ir.SlicePtr(x))
}

// conditionOf converts x of type t to a boolean condition.
func (c *Compiler) conditionOf(x ir.Node, t types.Type) ir.Node {
	switch t.Kind() {
	case types.BoolKind:
		return x
	case types.DynArrayKind:
		x = ir.SaveOf(x)
		length := ir.Compare(ir.Ne, ir.SliceLen(x), ir.SizeOf(0))
		ptr := ir.SlicePtr(x)
		return ir.OrIfOf(length, ir.Compare(ir.Ne, ptr, ir.Null(ptr.Type())))
	case types.StaticArrayKind:
		return ir.Seq(sideEffectsOf(x), ir.BoolOf(t.(types.StaticArray).Dim != 0))
	case types.AssocArrayKind:
		ptr := ir.FieldOf(x, 0)
		return ir.Compare(ir.Ne, ptr, ir.Null(ptr.Type()))
	case types.DelegateKind:
		x = ir.SaveOf(x)
		obj, fn := ir.DelegateObject(x), ir.DelegateFunc(x)
		return ir.OrIfOf(
			ir.Compare(ir.Ne, obj, ir.Null(obj.Type())),
			ir.Compare(ir.Ne, fn, ir.Null(fn.Type())),
		)
	case types.ComplexKind:
		x = ir.SaveOf(x)
		re, im := ir.Part(ir.RealPart, x), ir.Part(ir.ImagPart, x)
		return ir.OrIfOf(
			ir.Compare(ir.Ne, re, ir.ZeroOf(re.Type())),
			ir.Compare(ir.Ne, im, ir.ZeroOf(im.Type())),
		)
	}
	return ir.Compare(ir.Ne, x, ir.ZeroOf(x.Type()))
}

// sideEffectsOf keeps x only for its side effects.
func sideEffectsOf(x ir.Node) ir.Node {
	if x.SideEffects() {
		return x
	}
	return nil
}

func lowerCast(c *Compiler, e *ast.Cast) ir.Node {
	x := c.Lower(e.X)
	if e.T.Kind() == types.VoidKind {
		return ir.Seq(x, ir.Nothing())
	}
	return c.convertExpr(x, e.X.Type(), e.T)
}

// lowerAddr takes the address of an lvalue. Struct literals with static
// storage yield their symbol; other values are spilled first.
func lowerAddr(c *Compiler, e *ast.Addr) ir.Node {
	switch x := e.X.(type) {
	case *ast.StructLiteral:
		if x.Origin != nil || x.Sym != "" {
			return ir.NopTo(c.irType(e.T), ir.AddrOf(c.staticLiteral(x)))
		}
	case *ast.Var:
		if x.Func != nil {
			return ir.NopTo(c.irType(e.T), c.funcAddr(x.Func))
		}
	}
	return ir.NopTo(c.irType(e.T), addressOf(c.Lower(e.X)))
}

// lowerPtr dereferences a pointer. *(&rec + n) and *(&var + n) select
// the field of a struct at offset n directly when its type matches.
func lowerPtr(c *Compiler, e *ast.Ptr) ir.Node {
	var base ast.Expression
	var baseVar *ast.VarDecl
	var offset uint64
	switch x := e.X.(type) {
	case *ast.Binary:
		addr, ok := x.Left.(*ast.Addr)
		lit, isInt := x.Right.(*ast.Integer)
		if x.Operator == token.ADD && ok && isInt {
			base, offset = addr.X, uint64(lit.Value)
		}
	case *ast.SymOff:
		if !x.Decl.IsRef() {
			baseVar, offset = x.Decl, x.Offset
		}
	}

	var rt types.Type
	if base != nil {
		rt = base.Type()
	} else if baseVar != nil {
		rt = baseVar.Type
	}
	if st, ok := rt.(types.Struct); ok {
		for _, f := range st.Decl.Fields {
			if f.Offset > offset {
				break
			}
			if f.Offset != offset || !types.Equal(f.Type, e.T) {
				continue
			}
			var rec ir.Node
			if base != nil {
				rec = c.Lower(base)
			} else {
				rec = c.readVar(baseVar)
			}
			if _, bad := rec.(*ir.Error); bad {
				return rec
			}
			return ir.FieldOf(rec, fieldIndex(c.structRecord(st.Decl), f))
		}
	}
	return c.indirect(e.T, c.Lower(e.X))
}

// indirect loads a value of type t through ptr.
func (c *Compiler) indirect(t types.Type, ptr ir.Node) ir.Node {
	return ir.DerefOf(ir.NopTo(ir.PointerTo(c.irType(t)), ptr))
}

func lowerDelegatePtr(c *Compiler, e *ast.DelegatePtr) ir.Node {
	return ir.NopTo(c.irType(e.T), ir.DelegateObject(c.Lower(e.X)))
}

func lowerDelegateFuncptr(c *Compiler, e *ast.DelegateFuncptr) ir.Node {
	return ir.NopTo(c.irType(e.T), ir.DelegateFunc(c.Lower(e.X)))
}

// lowerVector builds a vector from an array literal, a static array or a
// single value broadcast to every lane.
func lowerVector(c *Compiler, e *ast.Vector) ir.Node {
	vt := c.irType(e.T).(ir.Vector)
	if lit, ok := e.X.(*ast.ArrayLiteral); ok {
		elems := make([]ir.CtorElem, len(lit.Elements))
		et := types.Elem(e.T)
		for i, el := range lit.Elements {
			elems[i] = ir.CtorElem{Index: i, Value: c.convertExpr(c.Lower(el), el.Type(), et)}
		}
		return ir.CtorOf(vt, elems)
	}
	if e.X.Type().Kind() == types.StaticArrayKind {
		return c.convertExpr(c.Lower(e.X), e.X.Type(), e.T)
	}
	return ir.SplatOf(vt, c.convertExpr(c.Lower(e.X), e.X.Type(), types.Elem(e.T)))
}
