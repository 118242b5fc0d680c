package compiler

import (
	"github.com/thiremani/exprlower/ast"
	"github.com/thiremani/exprlower/ir"
	"github.com/thiremani/exprlower/types"
)

// arrayAccess reads the data pointer and length of an indexable value.
// Len is nil for pointers, which carry no length.
type arrayAccess struct {
	Ptr func(c *Compiler, x ir.Node, t types.Type) ir.Node
	Len func(c *Compiler, x ir.Node, t types.Type) ir.Node
}

var arrayAccesses = map[types.Kind]arrayAccess{
	types.StaticArrayKind: {
		Ptr: func(c *Compiler, x ir.Node, t types.Type) ir.Node {
			return ir.NopTo(ir.PointerTo(c.irType(types.Elem(t))), ir.AddrOf(x))
		},
		Len: func(c *Compiler, x ir.Node, t types.Type) ir.Node {
			return ir.SizeOf(t.(types.StaticArray).Dim)
		},
	},
	types.DynArrayKind: {
		Ptr: func(c *Compiler, x ir.Node, t types.Type) ir.Node { return ir.SlicePtr(x) },
		Len: func(c *Compiler, x ir.Node, t types.Type) ir.Node { return ir.SliceLen(x) },
	},
	types.PointerKind: {
		Ptr: func(c *Compiler, x ir.Node, t types.Type) ir.Node { return x },
	},
}

func accessFor(t types.Type) arrayAccess {
	a, ok := arrayAccesses[t.Kind()]
	if !ok {
		panic("internal: not an array: " + t.String())
	}
	return a
}

func (c *Compiler) arrayPtr(x ir.Node, t types.Type) ir.Node {
	return accessFor(t).Ptr(c, x, t)
}

func (c *Compiler) arrayLength(x ir.Node, t types.Type) ir.Node {
	a := accessFor(t)
	if a.Len == nil {
		panic("internal: length of " + t.String())
	}
	return a.Len(c, x, t)
}

// toDynamic views a static array value as a dynamic array. Dynamic arrays
// are returned unchanged.
func (c *Compiler) toDynamic(x ir.Node, t types.Type) ir.Node {
	sa, ok := t.(types.StaticArray)
	if !ok {
		return x
	}
	st := ir.Slice{Elem: c.irType(sa.Elem)}
	return ir.SliceOf(st, ir.SizeOf(sa.Dim), ir.AddrOf(x))
}

// arrayOperand lowers e as a dynamic array. Operands that are not arrays
// of elem, such as single elements, become one element arrays.
func (c *Compiler) arrayOperand(elem types.Type, e ast.Expression) ir.Node {
	t := e.Type()
	if types.IsArray(t) && !types.Equal(t, elem) {
		return c.toDynamic(c.Lower(e), t)
	}
	st := ir.Slice{Elem: c.irType(elem)}
	x := c.convertExpr(c.Lower(e), t, elem)
	return ir.SliceOf(st, ir.SizeOf(1), addressOf(x))
}

// addressOf takes the address of x. Values that are not stored anywhere
// are first copied into a temporary.
func addressOf(x ir.Node) ir.Node {
	if ir.IsLvalue(x) {
		return ir.AddrOf(x)
	}
	tmp := ir.NewTemp(x.Type(), "tmp")
	return ir.Seq(ir.InitTo(tmp, x), ir.AddrOf(tmp))
}

// fromDynamic turns a dynamic array back into a value of type t, which
// may be a static array of the same length.
func (c *Compiler) fromDynamic(x ir.Node, t types.Type) ir.Node {
	if t.Kind() != types.StaticArrayKind {
		return ir.ViewAs(c.irType(t), x)
	}
	return c.indirect(t, ir.SlicePtr(x))
}

// arraySet stores value into count elements starting at ptr. The pointer
// and value are evaluated once, before the loop.
func (c *Compiler) arraySet(ptr, count, value ir.Node) ir.Node {
	ptr = ir.SaveOf(ptr)
	value = ir.SaveOf(value)
	count = ir.SaveOf(ir.ConvertTo(ir.SizeT, count))
	i := ir.NewTemp(ir.SizeT, "i")
	loop := ir.LoopOf(i, count, nil, ir.AssignTo(ir.IndexOf(ptr, i), value))
	return ir.Seq(ir.Seq(ir.Seq(ptr, value), count), loop)
}

// elemCount is the number of base elements in t, looking through nested
// static arrays.
func elemCount(t types.Type) uint64 {
	n := uint64(1)
	for {
		sa, ok := t.(types.StaticArray)
		if !ok {
			return n
		}
		n *= sa.Dim
		t = sa.Elem
	}
}
