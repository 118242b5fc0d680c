package compiler

import (
	"github.com/thiremani/exprlower/ast"
	"github.com/thiremani/exprlower/ir"
	"github.com/thiremani/exprlower/types"
)

// assertFailure calls the helper reporting a failed assert. Unittest bodies
// use their own pair of helpers.
func (c *Compiler) assertFailure(e *ast.Assert) ir.Node {
	unittest := c.Ctx.Func != nil && c.Ctx.Func.Unittest
	file, line := c.fileName(e.Tok()), lineOf(e.Tok())
	if e.Msg == nil {
		if unittest {
			return libcall(Unittest, file, line)
		}
		return libcall(Assert, file, line)
	}
	msg := c.convertExpr(c.LowerDtor(e.Msg), e.Msg.Type(), types.TString)
	if unittest {
		return libcall(UnittestMsg, msg, file, line)
	}
	return libcall(AssertMsg, msg, file, line)
}

// lowerAssert checks the operand and calls the failure helper when the
// check fails. Class references must be non-null and pass their invariant;
// pointers to structs with an invariant call it directly.
func lowerAssert(c *Compiler, e *ast.Assert) ir.Node {
	if !c.Ctx.Asserts {
		return ir.Nothing()
	}
	fail := c.assertFailure(e)

	switch t := e.X.Type().(type) {
	case types.Class:
		cd := t.Decl
		arg := c.Lower(e.X)
		if cd.COM {
			nonNull := ir.Compare(ir.Ne, arg, ir.Null(arg.Type()))
			return ir.Condition(ir.VoidType, nonNull, ir.Nothing(), fail)
		}
		if cd.Interface {
			// the invariant helper takes the object an interface points into
			arg = libcall(InterfaceCast, arg, c.classInfo(rootObject))
		}
		var check ir.Node = ir.Nothing()
		if c.Ctx.Invariants && !cd.CPP {
			arg = ir.MaybeSave(arg)
			check = libcall(Invariant, arg)
		}
		nonNull := ir.Compare(ir.Ne, arg, ir.Null(arg.Type()))
		return ir.Condition(ir.VoidType, nonNull, check, fail)

	case types.Pointer:
		x := c.Lower(e.X)
		var check ir.Node = ir.Nothing()
		if st, ok := t.Elem.(types.Struct); ok && c.Ctx.Invariants && st.Decl.Invariant != nil {
			x = ir.MaybeSave(x)
			check = ir.CallOf(c.funcAddr(st.Decl.Invariant), x, nil)
		}
		return ir.Condition(ir.VoidType, c.conditionOf(x, t), check, fail)
	}

	x := c.Lower(e.X)
	return ir.Condition(ir.VoidType, c.conditionOf(x, e.X.Type()), ir.Nothing(), fail)
}
