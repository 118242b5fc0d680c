package compiler

import (
	"github.com/thiremani/exprlower/ast"
	"github.com/thiremani/exprlower/ir"
	"github.com/thiremani/exprlower/token"
	"github.com/thiremani/exprlower/types"
)

// eqCode maps == and is to Eq, != and !is to Ne.
func eqCode(op token.TokenType) ir.BinaryOp {
	switch op {
	case token.EQL, token.IDENTITY:
		return ir.Eq
	case token.NEQ, token.NOT_IDENTITY:
		return ir.Ne
	}
	panic("internal: not an equality operator: " + op.String())
}

// compareValues applies a primitive comparison. Aggregates that live in
// registers compare member by member.
func compareValues(op ir.BinaryOp, x, y ir.Node) ir.Node {
	switch x.Type().(type) {
	case ir.Slice, ir.Delegate, ir.Complex:
		if op != ir.Eq && op != ir.Ne {
			break
		}
		x, y = ir.SaveOf(x), ir.SaveOf(y)
		a := ir.Compare(op, ir.FieldOf(x, 0), ir.FieldOf(y, 0))
		b := ir.Compare(op, ir.FieldOf(x, 1), ir.FieldOf(y, 1))
		return joinCompare(op, a, b)
	}
	return ir.Compare(op, x, y)
}

func lowerEqual(c *Compiler, e *ast.Equal) ir.Node {
	op := eqCode(e.Operator)
	t1, t2 := e.Left.Type(), e.Right.Type()

	switch {
	case types.IsArray(t1) && types.IsArray(t2):
		return c.arrayEquality(e, op)
	case t1.Kind() == types.StructKind:
		sd := t1.(types.Struct).Decl
		return c.structComparison(op, sd, c.Lower(e.Left), c.Lower(e.Right))
	case t1.Kind() == types.AssocArrayKind && t2.Kind() == types.AssocArrayKind:
		call := libcall(AAEqual, c.typeInfo(t1), c.Lower(e.Left), c.Lower(e.Right))
		result := ir.ConvertTo(ir.BoolType, call)
		if op == ir.Ne {
			return ir.Not(result)
		}
		return result
	}
	return compareValues(op, c.Lower(e.Left), c.Lower(e.Right))
}

// arrayEquality compares two arrays. Elements whose equality is their
// bytes compare with memcmp behind a length check:
//
//	e1.length == e2.length && (e1.length == 0 || memcmp(...) == 0)
//
// Other elements go through the runtime.
func (c *Compiler) arrayEquality(e *ast.Equal, op ir.BinaryOp) ir.Node {
	t1, t2 := e.Left.Type(), e.Right.Type()
	e1, e2 := types.Elem(t1), types.Elem(t2)

	if !memcmpComparable(e1) || e1.Kind() != e2.Kind() {
		call := libcall(AdEq2,
			c.toDynamic(c.Lower(e.Left), t1),
			c.toDynamic(c.Lower(e.Right), t2),
			c.typeInfo(types.DynArray{Elem: e1}))
		result := ir.ConvertTo(ir.BoolType, call)
		if op == ir.Ne {
			return ir.Not(result)
		}
		return result
	}

	x := c.toDynamic(c.Lower(e.Left), t1)
	y := c.toDynamic(c.Lower(e.Right), t2)
	xs, ys := ir.SaveOf(x), ir.SaveOf(y)
	len1, len2 := ir.SliceLen(xs), ir.SliceLen(ys)
	ptr1, ptr2 := ir.SlicePtr(xs), ir.SlicePtr(ys)

	var result ir.Node
	if sd, ok := e1.(types.Struct); ok && !identityComparable(sd.Decl) {
		result = c.arrayStructComparison(op, sd.Decl, len1, ptr1, ptr2)
	} else {
		size := ir.Binop(ir.Mul, ir.SizeT, len1, ir.SizeOf(e1.Size()))
		cmp := ir.CallBuiltin(ir.Memcmp, ptr1, ptr2, size)
		result = ir.Compare(op, cmp, ir.IntOf(ir.I32, 0))
	}

	empty := ir.Compare(op, len1, ir.SizeOf(0))
	if op == ir.Eq {
		result = ir.OrIfOf(empty, result)
	} else {
		result = ir.AndIfOf(empty, result)
	}

	if t1.Kind() == types.StaticArrayKind && t2.Kind() == types.StaticArrayKind {
		if t1.Size() != t2.Size() {
			panic("internal: comparing static arrays of different sizes")
		}
	} else {
		sameLen := ir.Compare(op, len1, len2)
		if op == ir.Eq {
			result = ir.AndIfOf(sameLen, result)
		} else {
			result = ir.OrIfOf(sameLen, result)
		}
	}

	// force left to right evaluation of the operands
	if y.SideEffects() {
		result = ir.Seq(ys, result)
	}
	if x.SideEffects() {
		result = ir.Seq(xs, result)
	}
	return result
}

// memcmpComparable reports element types whose arrays may be compared
// without calling a user equality.
func memcmpComparable(t types.Type) bool {
	switch tt := t.(type) {
	case types.Void:
		return true
	case types.Struct:
		return !tt.Decl.UserEq
	}
	return types.IsIntegral(t)
}

func lowerIdentity(c *Compiler, e *ast.Identity) ir.Node {
	op := eqCode(e.Operator)
	t1, t2 := e.Left.Type(), e.Right.Type()

	switch {
	case types.IsArray(t1) && types.IsArray(t2):
		x := c.toDynamic(c.Lower(e.Left), t1)
		y := c.toDynamic(c.Lower(e.Right), t2)
		return compareValues(op, x, ir.ViewAs(x.Type(), y))
	case t1.Kind() == types.FloatKind:
		return floatIdentity(op, c.Lower(e.Left), c.Lower(e.Right))
	case t1.Kind() == types.ComplexKind:
		x, y := ir.SaveOf(c.Lower(e.Left)), ir.SaveOf(c.Lower(e.Right))
		re := floatIdentity(op, ir.Part(ir.RealPart, x), ir.Part(ir.RealPart, y))
		im := floatIdentity(op, ir.Part(ir.ImagPart, x), ir.Part(ir.ImagPart, y))
		return joinCompare(op, re, im)
	case t1.Kind() == types.StructKind:
		sd := t1.(types.Struct).Decl
		return c.structComparison(op, sd, c.Lower(e.Left), c.Lower(e.Right))
	}
	return compareValues(op, c.Lower(e.Left), c.Lower(e.Right))
}

// cmpCode picks the IR comparison for a relational operator. The
// unordered forms only keep their meaning between floating operands.
func cmpCode(op token.TokenType, floating bool) ir.BinaryOp {
	switch op {
	case token.LSS:
		return ir.Lt
	case token.LEQ:
		return ir.Le
	case token.GTR:
		return ir.Gt
	case token.GEQ:
		return ir.Ge
	case token.LEG:
		return ir.Ordered
	case token.UNORD:
		return ir.Unordered
	}
	if !floating {
		switch op {
		case token.UE:
			return ir.Eq
		case token.LG:
			return ir.Ne
		case token.ULE:
			return ir.Le
		case token.UL:
			return ir.Lt
		case token.UGE:
			return ir.Ge
		case token.UG:
			return ir.Gt
		}
	}
	switch op {
	case token.UE:
		return ir.UnEq
	case token.LG:
		return ir.LtGt
	case token.ULE:
		return ir.UnLe
	case token.UL:
		return ir.UnLt
	case token.UGE:
		return ir.UnGe
	case token.UG:
		return ir.UnGt
	}
	panic("internal: not a relational operator: " + op.String())
}

func lowerCmp(c *Compiler, e *ast.Cmp) ir.Node {
	t1, t2 := e.Left.Type(), e.Right.Type()
	code := cmpCode(e.Operator, types.IsFloating(t1) && types.IsFloating(t2))

	if types.IsArray(t1) && types.IsArray(t2) {
		call := libcall(AdCmp2,
			c.toDynamic(c.Lower(e.Left), t1),
			c.toDynamic(c.Lower(e.Right), t2),
			c.typeInfo(types.DynArray{Elem: types.Elem(t1)}))
		switch code {
		case ir.Ordered:
			return ir.Seq(call, ir.BoolOf(true))
		case ir.Unordered:
			return ir.Seq(call, ir.BoolOf(false))
		}
		return ir.Compare(code, call, ir.IntOf(ir.I32, 0))
	}

	x, y := c.Lower(e.Left), c.Lower(e.Right)
	if !types.IsFloating(t1) || !types.IsFloating(t2) {
		switch code {
		case ir.Ordered:
			return ir.Seq(ir.Seq(sideEffectsOf(x), sideEffectsOf(y)), ir.BoolOf(true))
		case ir.Unordered:
			return ir.Seq(ir.Seq(sideEffectsOf(x), sideEffectsOf(y)), ir.BoolOf(false))
		}
	}
	return ir.Compare(code, x, y)
}

// lowerIn looks up a key, yielding a pointer to the value or null.
func lowerIn(c *Compiler, e *ast.In) ir.Node {
	aat := e.AA.Type().(types.AssocArray)
	key := c.convertExpr(c.Lower(e.Key), e.Key.Type(), aat.Key)
	call := libcall(AAInX, c.Lower(e.AA), c.typeInfo(aat.Key), addressOf(key))
	return ir.NopTo(c.irType(e.T), call)
}
