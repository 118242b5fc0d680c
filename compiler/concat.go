package compiler

import (
	"slices"

	"github.com/thiremani/exprlower/ast"
	"github.com/thiremani/exprlower/ir"
	"github.com/thiremani/exprlower/types"
)

// catElem is the element type of a concatenation. One operand may be a
// single element rather than an array.
func catElem(e *ast.Cat) types.Type {
	if types.IsArray(e.Left.Type()) {
		return types.Elem(e.Left.Type())
	}
	return types.Elem(e.Right.Type())
}

// catLeaves flattens the left leaning chain ((a ~ b) ~ c) ~ d into its
// operands, left to right.
func catLeaves(e *ast.Cat) []ast.Expression {
	var leaves []ast.Expression
	var x ast.Expression = e
	for {
		cat, ok := x.(*ast.Cat)
		if !ok {
			leaves = append(leaves, x)
			break
		}
		leaves = append(leaves, cat.Right)
		x = cat.Left
	}
	slices.Reverse(leaves)
	return leaves
}

// lowerCat concatenates two arrays with one runtime call. A chain of
// concatenations is collected into a byte[][n] temporary and passed to
// the n-ary helper, so no intermediate arrays are allocated.
func lowerCat(c *Compiler, e *ast.Cat) ir.Node {
	elem := catElem(e)
	rt := c.irType(e.T)

	if _, chained := e.Left.(*ast.Cat); !chained {
		x := c.arrayOperand(elem, e.Left)
		y := c.arrayOperand(elem, e.Right)
		return ir.ViewAs(rt, libcall(ArrayCatT, c.typeInfo(e.T), x, y))
	}

	leaves := catLeaves(e)
	n := uint64(len(leaves))
	argType := ir.Slice{Elem: ir.ByteType}
	bufType := ir.Array{Elem: argType, Len: n}

	elems := make([]ir.CtorElem, len(leaves))
	for i, leaf := range leaves {
		elems[i] = ir.CtorElem{Index: i, Value: ir.ViewAs(argType, c.arrayOperand(elem, leaf))}
	}
	buf := ir.NewTemp(bufType, "cat")
	args := ir.SliceOf(ir.Slice{Elem: argType}, ir.SizeOf(n), ir.AddrOf(buf))
	call := libcall(ArrayCatNTX, c.typeInfo(e.T), args)
	return ir.Seq(ir.InitTo(buf, ir.CtorOf(bufType, elems)), ir.ViewAs(rt, call))
}

// lowerCatAssign appends to a dynamic array in place and yields the
// grown array.
func lowerCatAssign(c *Compiler, e *ast.CatAssign) ir.Node {
	t1, t2 := e.Left.Type(), e.Right.Type()
	elem := types.Elem(t1)
	rt := c.irType(e.T)

	// a dchar appended to char[] or wchar[] is encoded by the runtime
	if t1.Kind() == types.DynArrayKind && types.Equal(t2, types.TDchar) &&
		(types.Equal(elem, types.TChar) || types.Equal(elem, types.TWchar)) {
		lc := ArrayAppendCD
		if types.Equal(elem, types.TWchar) {
			lc = ArrayAppendWD
		}
		call := libcall(lc, ir.AddrOf(c.Lower(e.Left)), c.Lower(e.Right))
		return ir.ViewAs(rt, call)
	}

	if types.IsArray(t2) && types.Equal(elem, types.Elem(t2)) {
		arr := ir.AddrOf(c.Lower(e.Left))
		call := libcall(ArrayAppendT, c.typeInfo(e.T), arr, c.toDynamic(c.Lower(e.Right), t2))
		return ir.ViewAs(rt, call)
	}

	if !types.Equal(elem, t2) {
		panic("internal: appending " + t2.String() + " to " + t1.String())
	}

	// Grow by one, then store the value into the new last slot. The
	// value is evaluated before the array grows.
	grown := libcall(ArrayAppendCTX, c.typeInfo(e.T), ir.AddrOf(c.Lower(e.Left)), ir.SizeOf(1))
	r := ir.SaveOf(ir.ViewAs(rt, grown))
	last := ir.MaybeSave(ir.Binop(ir.Sub, ir.SizeT, ir.SliceLen(r), ir.SizeOf(1)))
	value := ir.MaybeSave(c.Lower(e.Right))
	store := ir.AssignTo(ir.IndexOf(ir.SlicePtr(r), last), value)
	return ir.Seq(ir.Seq(sideEffectsOf(value), store), r)
}
