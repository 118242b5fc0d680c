package compiler

import (
	"github.com/thiremani/exprlower/ast"
	"github.com/thiremani/exprlower/ir"
	"github.com/thiremani/exprlower/types"
)

func lowerIndex(c *Compiler, e *ast.Index) ir.Node {
	if aat, ok := e.X.Type().(types.AssocArray); ok {
		return c.indexAA(e, aat)
	}

	t := e.X.Type()
	array := ir.MaybeSave(c.Lower(e.X))
	ptr := c.arrayPtr(array, t)

	var length ir.Node
	if t.Kind() != types.PointerKind {
		length = c.arrayLength(array, t)
	} else if e.Dollar != nil {
		panic("internal: $ inside a pointer index")
	}
	if e.Dollar != nil {
		c.dollars[e.Dollar] = length
	}

	index := c.Lower(e.Index)
	if length != nil && !e.InBounds {
		index = c.boundsCondition(e.Index.Tok(), index, length, false)
	}
	return ir.IndexOf(ptr, index)
}

// indexAA looks up a key. In a modifiable context a missing key is
// inserted; otherwise a missing key fails the bounds check.
func (c *Compiler) indexAA(e *ast.Index, aat types.AssocArray) ir.Node {
	aa := c.Lower(e.X)
	key := c.convertExpr(c.Lower(e.Index), e.Index.Type(), aat.Key)
	valueSize := ir.SizeOf(aat.Value.Size())

	var slot ir.Node
	if e.Modifiable {
		slot = libcall(AAGetY, ir.AddrOf(aa), c.typeInfo(aat), valueSize, addressOf(key))
	} else {
		slot = libcall(AAGetRvalueX, aa, c.typeInfo(aat.Key), valueSize, addressOf(key))
	}

	if !e.InBounds && c.Ctx.BoundsCheck {
		slot = ir.SaveOf(slot)
		found := ir.Compare(ir.Ne, slot, ir.Null(slot.Type()))
		slot = ir.Condition(slot.Type(), found, slot, c.boundsFailure(e.Tok(), slot.Type()))
	}
	return c.indirect(e.T, slot)
}

func lowerArrayLength(c *Compiler, e *ast.ArrayLength) ir.Node {
	if e.X.Type().Kind() != types.DynArrayKind {
		return c.errorf(e, "unexpected type for array length: %s", e.T)
	}
	return ir.ConvertTo(c.irType(e.T), ir.SliceLen(c.Lower(e.X)))
}
