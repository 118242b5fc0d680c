package compiler

import (
	"github.com/thiremani/exprlower/ast"
	"github.com/thiremani/exprlower/ir"
	"github.com/thiremani/exprlower/types"
)

func lowerVar(c *Compiler, e *ast.Var) ir.Node {
	if e.Func != nil {
		return c.funcAddr(e.Func)
	}
	vd := e.Decl
	if vd.NeedsThis {
		return c.errorf(e, "need 'this' to access member %s", vd.Name)
	}
	// __ctfe is always false at run time
	if vd.Ctfe {
		return ir.ConvertTo(c.irType(e.T), ir.BoolOf(false))
	}
	if length, ok := c.dollars[vd]; ok {
		return ir.ConvertTo(c.irType(e.T), length)
	}

	x := c.readVar(vd)
	if !types.Equal(vd.Type, e.T) {
		return ir.ViewAs(c.irType(e.T), x)
	}
	return x
}

// lowerSymOff is the address of a variable plus a byte offset.
func lowerSymOff(c *Compiler, e *ast.SymOff) ir.Node {
	var addr ir.Node = c.varOf(e.Decl)
	if !e.Decl.IsRef() {
		addr = ir.AddrOf(addr)
	}
	if e.Offset == 0 {
		return ir.NopTo(c.irType(e.T), addr)
	}
	return ir.NopTo(c.irType(e.T), ir.Offset(addr, ir.IntOf(ir.I64, int64(e.Offset))))
}

// lowerDotVar reads a field through a struct value or a class or struct
// reference. Other members are plain variables.
func lowerDotVar(c *Compiler, e *ast.DotVar) ir.Node {
	switch {
	case e.Var != nil:
		return c.readVar(e.Var)
	case e.Func != nil:
		return c.errorf(e, "%s is not a field, but a function", e.Func.Name)
	}

	object := c.Lower(e.X)
	var rec *ir.Struct
	switch t := e.X.Type().(type) {
	case types.Struct:
		rec = c.structRecord(t.Decl)
	case types.Class:
		rec = c.classRecord(t.Decl)
		object = ir.DerefOf(object)
	case types.Pointer:
		st, ok := t.Elem.(types.Struct)
		if !ok {
			panic("internal: field access through " + t.String())
		}
		rec = c.structRecord(st.Decl)
		object = ir.DerefOf(object)
	default:
		panic("internal: field access on " + t.String())
	}
	return ir.FieldOf(object, fieldIndex(rec, e.Field))
}

func lowerThis(c *Compiler, e *ast.This) ir.Node {
	var this ir.Node
	if e.Var != nil {
		this = c.varOf(e.Var)
	} else {
		t := c.irType(e.T)
		if e.T.Kind() == types.StructKind {
			t = ir.PointerTo(t)
		}
		this = c.thisVar(t)
	}
	if e.T.Kind() == types.StructKind && ir.IsPointer(this.Type()) {
		return ir.DerefOf(this)
	}
	return this
}

func lowerDotType(c *Compiler, e *ast.DotType) ir.Node {
	return c.Lower(e.X)
}

func lowerScope(c *Compiler, e *ast.Scope) ir.Node {
	return c.errorf(e, "%s is not an expression", e.String())
}

func lowerTypeExpr(c *Compiler, e *ast.TypeExpr) ir.Node {
	return c.errorf(e, "type %s is not an expression", e.String())
}
