package compiler

import (
	"github.com/thiremani/exprlower/ir"
	"github.com/thiremani/exprlower/token"
)

// boundsCondition yields index after checking index < length, or
// index <= length when inclusive. A failed check calls the bounds helper.
// Without bounds checking index is returned as is.
func (c *Compiler) boundsCondition(tok token.Token, index, length ir.Node, inclusive bool) ir.Node {
	if !c.Ctx.BoundsCheck {
		return index
	}
	index = ir.SaveOf(index)
	op := ir.Lt
	if inclusive {
		op = ir.Le
	}
	ok := ir.Compare(op, ir.ConvertTo(ir.SizeT, index), ir.ConvertTo(ir.SizeT, length))
	return ir.Condition(index.Type(), ok, index, c.boundsFailure(tok, index.Type()))
}

// boundsFailure calls the bounds helper and stands in for a value of type t
// on the path that does not return.
func (c *Compiler) boundsFailure(tok token.Token, t ir.Type) ir.Node {
	call := libcall(ArrayBounds, c.fileName(tok), lineOf(tok))
	if t == ir.VoidType {
		return call
	}
	return ir.Seq(call, ir.ZeroOf(t))
}

// fileName is the source file of tok as a string value.
func (c *Compiler) fileName(tok token.Token) ir.Node {
	return stringValue(tok.FileName)
}

func lineOf(tok token.Token) ir.Node {
	return ir.IntOf(ir.U32, int64(tok.Line))
}

// stringValue is a char[] slice over a read-only copy of s.
func stringValue(s string) ir.Node {
	data := append([]byte(s), 0)
	buf := ir.StringOf(ir.Array{Elem: ir.ByteType, Len: uint64(len(data))}, data)
	return ir.SliceOf(ir.Slice{Elem: ir.ByteType}, ir.SizeOf(uint64(len(s))), ir.AddrOf(buf))
}
