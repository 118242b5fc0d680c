package compiler

import (
	"github.com/thiremani/exprlower/ir"
	"github.com/thiremani/exprlower/types"
)

// identityComparable reports whether two instances of sd are equal exactly
// when their bytes are: fields are contiguous, nested structs qualify in
// turn, no field is floating point and there is no trailing padding.
// Unions always compare bytewise.
func identityComparable(sd *types.StructDecl) bool {
	if sd.Union {
		return true
	}
	offset := uint64(0)
	for _, f := range sd.Fields {
		switch ft := f.Type.(type) {
		case types.Struct:
			if !identityComparable(ft.Decl) {
				return false
			}
		case types.Float, types.Complex:
			return false
		}
		if offset <= f.Offset {
			if offset != f.Offset {
				return false
			}
			offset += f.Type.Size()
		}
	}
	return offset >= sd.SizeOf
}

// structComparison compares two struct values field by field. op is Eq or
// Ne. Both operands are evaluated once.
func (c *Compiler) structComparison(op ir.BinaryOp, sd *types.StructDecl, x, y ir.Node) ir.Node {
	x = ir.SaveOf(x)
	y = ir.SaveOf(y)
	return c.compareFields(op, sd, x, y)
}

func (c *Compiler) compareFields(op ir.BinaryOp, sd *types.StructDecl, x, y ir.Node) ir.Node {
	if len(sd.Fields) == 0 {
		return ir.Seq(ir.Seq(sideEffectsOf(x), sideEffectsOf(y)), ir.BoolOf(op == ir.Eq))
	}
	if sd.Union {
		return memcmpCompare(op, x, y, sd.SizeOf)
	}

	rec := c.structRecord(sd)
	var result ir.Node
	for _, f := range sd.Fields {
		i := fieldIndex(rec, f)
		xf, yf := ir.FieldOf(x, i), ir.FieldOf(y, i)
		var cmp ir.Node
		switch ft := f.Type.(type) {
		case types.Struct:
			cmp = c.compareFields(op, ft.Decl, xf, yf)
		case types.Float:
			cmp = floatIdentity(op, xf, yf)
		case types.Complex:
			re := floatIdentity(op, ir.Part(ir.RealPart, xf), ir.Part(ir.RealPart, yf))
			im := floatIdentity(op, ir.Part(ir.ImagPart, xf), ir.Part(ir.ImagPart, yf))
			cmp = joinCompare(op, re, im)
		default:
			if types.IsIntegral(f.Type) {
				cmp = ir.Compare(op, xf, yf)
			} else {
				cmp = bitsCompare(op, xf, yf, f.Type.Size())
			}
		}
		if result == nil {
			result = cmp
		} else {
			result = joinCompare(op, result, cmp)
		}
	}
	return result
}

// joinCompare combines two field results: both equal, or either unequal.
func joinCompare(op ir.BinaryOp, a, b ir.Node) ir.Node {
	if op == ir.Eq {
		return ir.AndIfOf(a, b)
	}
	return ir.OrIfOf(a, b)
}

// bitsCompare compares two values of size bytes as an integer of the same
// width when there is one, or with memcmp otherwise.
func bitsCompare(op ir.BinaryOp, x, y ir.Node, size uint64) ir.Node {
	switch size {
	case 1, 2, 4, 8:
		it := ir.Int{Bits: uint32(size * 8), Unsigned: true}
		return ir.Compare(op, ir.ViewAs(it, x), ir.ViewAs(it, y))
	}
	return memcmpCompare(op, x, y, size)
}

func memcmpCompare(op ir.BinaryOp, x, y ir.Node, size uint64) ir.Node {
	cmp := ir.CallBuiltin(ir.Memcmp, ir.AddrOf(x), ir.AddrOf(y), ir.SizeOf(size))
	return ir.Compare(op, cmp, ir.IntOf(ir.I32, 0))
}

// floatIdentity compares the bytes of two floating point values, so that
// identical NaNs are identical and zeros of different sign are not.
func floatIdentity(op ir.BinaryOp, x, y ir.Node) ir.Node {
	size := x.Type().Size()
	if f, ok := x.Type().(ir.Float); ok && f.Bits == 80 {
		size = 10
	}
	return memcmpCompare(op, x, y, size)
}

// arrayStructComparison compares count structs at p1 and p2 element by
// element, stopping at the first element deciding the result.
func (c *Compiler) arrayStructComparison(op ir.BinaryOp, sd *types.StructDecl, count, p1, p2 ir.Node) ir.Node {
	init := ir.BoolOf(op == ir.Eq)
	result := ir.NewTemp(ir.BoolType, "cmp")
	count = ir.SaveOf(count)
	p1 = ir.SaveOf(p1)
	p2 = ir.SaveOf(p2)

	i := ir.NewTemp(ir.SizeT, "i")
	undecided := ir.Compare(ir.Eq, result, init)
	body := ir.AssignTo(result, c.structComparison(op, sd, ir.IndexOf(p1, i), ir.IndexOf(p2, i)))
	loop := ir.LoopOf(i, count, undecided, body)

	setup := ir.Seq(ir.InitTo(result, init), ir.Seq(ir.Seq(count, p1), p2))
	return ir.Seq(ir.Seq(setup, loop), result)
}
