package compiler

import (
	"github.com/thiremani/exprlower/ast"
	"github.com/thiremani/exprlower/ir"
	"github.com/thiremani/exprlower/types"
)

// lowerSlice lowers x[lwr .. upr]. Both bounds are evaluated once, lwr
// first, and checked against the length unless already known in range.
func lowerSlice(c *Compiler, e *ast.Slice) ir.Node {
	t := e.X.Type()
	if e.Lower == nil {
		if e.Upper != nil {
			panic("internal: slice with an upper bound only")
		}
		return c.convertExpr(c.Lower(e.X), t, e.T)
	}
	if e.Upper == nil {
		panic("internal: slice with a lower bound only")
	}

	array := ir.MaybeSave(c.Lower(e.X))
	ptr := c.arrayPtr(array, t)
	var length ir.Node
	if t.Kind() != types.PointerKind {
		length = c.arrayLength(array, t)
	} else if e.Dollar != nil {
		panic("internal: $ inside a pointer slice")
	}
	if e.Dollar != nil {
		c.dollars[e.Dollar] = length
	}

	lwr := ir.MaybeSave(c.Lower(e.Lower))
	if ir.IsIntZero(lwr) {
		lwr = nil
	} else {
		ptr = ir.ElemPtr(ptr, lwr)
	}

	if e.T.Kind() == types.StaticArrayKind {
		return ir.Seq(sideEffectsOf(array), c.indirect(e.T, ptr))
	}

	upr := ir.MaybeSave(c.Lower(e.Upper))
	newLength := upr
	if !e.UpperInBounds && length != nil {
		newLength = c.boundsCondition(e.Upper.Tok(), upr, length, true)
	}

	if lwr != nil {
		if !e.LowerLEUpper && c.Ctx.BoundsCheck {
			// upr <= length holds already, so lwr <= upr bounds lwr too
			check := c.boundsCondition(e.Lower.Tok(), lwr, upr, true)
			newLength = ir.Seq(check, newLength)
		}
		// (lwr, upr) - lwr: lwr is evaluated before upr
		newLength = ir.Binop(ir.Sub, ir.SizeT, ir.ConvertTo(ir.SizeT, ir.Seq(lwr, newLength)), ir.ConvertTo(ir.SizeT, lwr))
	}

	result := ir.SliceOf(c.irType(e.T).(ir.Slice), newLength, ptr)
	return ir.Seq(sideEffectsOf(array), result)
}
