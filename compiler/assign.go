package compiler

import (
	"github.com/thiremani/exprlower/ast"
	"github.com/thiremani/exprlower/ir"
	"github.com/thiremani/exprlower/token"
	"github.com/thiremani/exprlower/types"
)

// isLvalue reports source expressions that denote storage.
func isLvalue(e ast.Expression) bool {
	switch x := e.(type) {
	case *ast.Var:
		return x.Decl != nil
	case *ast.Ptr, *ast.Index, *ast.Slice, *ast.This, *ast.Assign, *ast.BinAssign:
		return true
	case *ast.DotVar:
		if x.Field == nil {
			return x.Var != nil
		}
		return x.X.Type().Kind() == types.ClassKind || isLvalue(x.X)
	case *ast.Comma:
		return isLvalue(x.Right)
	case *ast.Cond:
		return isLvalue(x.Then) && isLvalue(x.Else)
	}
	return false
}

// copiesLvalue reports a right hand side whose elements are copied out of
// existing storage, which then needs postblits.
func copiesLvalue(e ast.Expression) bool {
	switch x := e.(type) {
	case *ast.Slice:
		return isLvalue(x.X)
	case *ast.Cast:
		return isLvalue(x.X)
	}
	return isLvalue(e)
}

// store assigns src to dst, initializing dst when op constructs.
func store(op token.TokenType, dst, src ir.Node) ir.Node {
	if op == token.CONSTRUCT {
		return ir.InitTo(dst, src)
	}
	return ir.AssignTo(dst, src)
}

// returnSlot lets a constructing call build its result in place.
func returnSlot(op token.TokenType, src ir.Node) {
	if call, ok := src.(*ir.Call); ok && op == token.CONSTRUCT && ir.IsAggregate(call.T) {
		call.ReturnSlot = true
	}
}

func lowerAssign(c *Compiler, e *ast.Assign) ir.Node {
	switch lhs := e.Left.(type) {
	case *ast.ArrayLength:
		return c.assignLength(e, lhs)
	case *ast.Slice:
		if e.MemSet {
			return c.assignBroadcast(e, lhs)
		}
		return c.assignSliceCopy(e, lhs)
	case *ast.Var:
		if e.Operator == token.CONSTRUCT && lhs.Decl != nil && lhs.Decl.IsRef() {
			// bind the reference itself
			slot := c.varOf(lhs.Decl)
			return ir.DerefOf(ir.InitTo(slot, addressOf(c.Lower(e.Right))))
		}
	}

	switch lt := e.Left.Type().(type) {
	case types.Struct:
		return c.assignStruct(e, lt.Decl)
	case types.StaticArray:
		return c.assignStaticArray(e, lt)
	}

	dst := c.Lower(e.Left)
	src := c.convertExpr(c.Lower(e.Right), e.Right.Type(), e.Left.Type())
	return store(e.Operator, dst, src)
}

// assignLength resizes a dynamic array and yields the new length.
func (c *Compiler) assignLength(e *ast.Assign, lhs *ast.ArrayLength) ir.Node {
	at := lhs.X.Type()
	lc := ArraySetLengthIT
	if types.IsZeroInit(types.Elem(at)) {
		lc = ArraySetLengthT
	}
	length := c.convertExpr(c.Lower(e.Right), e.Right.Type(), types.TSizeT)
	call := libcall(lc, c.typeInfo(at), length, ir.AddrOf(c.Lower(lhs.X)))
	return ir.ConvertTo(c.irType(e.T), ir.SliceLen(call))
}

// assignBroadcast stores one value into every element of a slice.
func (c *Compiler) assignBroadcast(e *ast.Assign, lhs *ast.Slice) ir.Node {
	st := e.Left.Type()
	elem := types.Elem(lhs.X.Type())
	postblit := types.NeedsPostblit(elem) && copiesLvalue(e.Right)

	arr := ir.MaybeSave(c.Lower(e.Left))
	value := c.Lower(e.Right)
	ptr := c.arrayPtr(arr, st)
	length := c.arrayLength(arr, st)

	var fill ir.Node
	switch {
	case postblit && e.Operator != token.BLIT:
		lc := ArraySetAssign
		if e.Operator == token.CONSTRUCT {
			lc = ArraySetCtor
		}
		fill = libcall(lc, ptr, addressOf(value), length, c.typeInfo(elem))
	case ir.IsIntZero(value):
		size := ir.Binop(ir.Mul, ir.SizeT, ir.ConvertTo(ir.SizeT, length), ir.SizeOf(elem.Size()))
		fill = ir.CallBuiltin(ir.Memset, ptr, ir.IntOf(ir.I32, 0), size)
	default:
		fill = c.arraySet(ptr, length, c.convertExpr(value, e.Right.Type(), elem))
	}
	return ir.Seq(fill, arr)
}

// assignSliceCopy copies the elements of one array into a slice.
func (c *Compiler) assignSliceCopy(e *ast.Assign, lhs *ast.Slice) ir.Node {
	lt, rt := e.Left.Type(), e.Right.Type()
	if rt.Kind() == types.PointerKind {
		panic("internal: slice assignment from a pointer")
	}
	elem := types.Elem(lhs.X.Type())
	postblit := types.NeedsPostblit(elem) && copiesLvalue(e.Right)

	if !postblit && !c.Ctx.BoundsCheck {
		dst := ir.MaybeSave(c.toDynamic(c.Lower(e.Left), lt))
		src := c.toDynamic(c.Lower(e.Right), rt)
		size := ir.Binop(ir.Mul, ir.SizeT, ir.SliceLen(dst), ir.SizeOf(elem.Size()))
		copied := ir.CallBuiltin(ir.Memcpy, ir.SlicePtr(dst), ir.SlicePtr(src), size)
		return ir.Seq(copied, c.fromDynamic(dst, e.T))
	}

	dst := ir.MaybeSave(c.toDynamic(c.Lower(e.Left), lt))
	src := ir.MaybeSave(c.toDynamic(c.Lower(e.Right), rt))
	var call *ir.Call
	if postblit && e.Operator != token.BLIT {
		lc := ArrayAssign
		if e.Operator == token.CONSTRUCT {
			lc = ArrayCtor
		}
		call = libcall(lc, c.typeInfo(elem), src, dst)
	} else {
		// the runtime checks that the lengths match and do not overlap
		call = libcall(ArrayCopy, ir.SizeOf(elem.Size()), src, dst)
	}
	// the destination is evaluated before the source
	return ir.Seq(sideEffectsOf(dst), c.fromDynamic(call, e.T))
}

// assignStruct copies a struct value. Assigning the literal 0 clears the
// whole struct and restores the context pointer of nested structs.
func (c *Compiler) assignStruct(e *ast.Assign, sd *types.StructDecl) ir.Node {
	dst := c.Lower(e.Left)

	if _, ok := e.Right.(*ast.Integer); ok {
		dst = ir.Stabilize(dst)
		result := ir.Node(ir.CallBuiltin(ir.Memset, ir.AddrOf(dst), c.Lower(e.Right), ir.SizeOf(sd.SizeOf)))
		if sd.Nested() {
			vthis := ir.FieldNamed(dst, sd.VThis.Name)
			result = ir.Seq(result, ir.AssignTo(vthis, c.vthisOf(sd)))
		}
		return ir.Seq(result, dst)
	}

	src := c.convertExpr(c.Lower(e.Right), e.Right.Type(), e.Left.Type())
	returnSlot(e.Operator, src)
	return store(e.Operator, dst, src)
}

// assignStaticArray copies a static array. Elements with a postblit are
// copied by the runtime unless the source is a temporary being moved.
func (c *Compiler) assignStaticArray(e *ast.Assign, lt types.StaticArray) ir.Node {
	rt := e.Right.Type()
	if rt.Kind() != types.StaticArrayKind {
		panic("internal: static array assigned from " + rt.String())
	}
	elem := lt.Elem
	postblit := types.NeedsPostblit(elem)
	lvalue := copiesLvalue(e.Right)

	if !postblit || (e.Operator == token.CONSTRUCT && !lvalue) ||
		e.Operator == token.BLIT || lt.Size() == 0 {
		dst := c.Lower(e.Left)
		src := c.convertExpr(c.Lower(e.Right), rt, lt)
		returnSlot(e.Operator, src)
		return store(e.Operator, dst, src)
	}

	dst := ir.Stabilize(c.Lower(e.Left))
	src := c.toDynamic(c.Lower(e.Right), rt)
	if e.Operator == token.CONSTRUCT {
		call := libcall(ArrayCtor, c.typeInfo(elem), src, c.toDynamic(dst, lt))
		return ir.Seq(call, dst)
	}

	lc := ArrayAssignR
	if lvalue {
		lc = ArrayAssignL
	}
	buf := ir.NewTemp(c.irType(elem), "elembuf")
	call := libcall(lc, c.typeInfo(elem), src, c.toDynamic(dst, lt), ir.AddrOf(buf))
	return ir.Seq(call, dst)
}

// lowerBinAssign applies a compound assignment with the destination
// evaluated once. The operation is done in the type of the left operand,
// then stored through any casts wrapped around the destination.
func lowerBinAssign(c *Compiler, e *ast.BinAssign) ir.Node {
	op := e.Operator.BinaryOp()
	if op == token.CAT {
		panic("internal: ~= lowered as a compound assignment")
	}

	target := e.Left
	for {
		cast, ok := target.(*ast.Cast)
		if !ok {
			break
		}
		target = cast.X
	}
	tt, lt := target.Type(), e.Left.Type()

	dst := ir.Stabilize(c.Lower(target))
	x := c.convertExpr(dst, tt, lt)
	y := c.Lower(e.Right)

	var value ir.Node
	if op == token.POW {
		value = c.powValue(e, lt, e.Right.Type(), x, y)
	} else {
		value = c.binaryValue(op, lt, e.Right.Type(), lt, x, y)
	}
	result := ir.AssignTo(dst, c.convertExpr(value, lt, tt))
	return c.convertExpr(result, tt, e.T)
}

// lowerPost increments or decrements in place, yielding the old value.
// Pointers step by the size of their element.
func lowerPost(c *Compiler, e *ast.Post) ir.Node {
	op := ir.PostInc
	if e.Operator == token.DEC {
		op = ir.PostDec
	}
	t := e.X.Type()
	var step ir.Node
	switch tt := t.(type) {
	case types.Pointer:
		size := uint64(1)
		if tt.Elem.Kind() != types.VoidKind {
			size = tt.Elem.Size()
		}
		step = ir.IntOf(ir.I64, int64(size))
	case types.Float:
		step = ir.FloatOf(c.irType(t), 1)
	case types.Complex:
		step = ir.ComplexOf(c.irType(t).(ir.Complex), 1, 0)
	default:
		step = ir.IntOf(c.irType(t), 1)
	}
	return ir.Binop(op, c.irType(e.T), c.Lower(e.X), step)
}
