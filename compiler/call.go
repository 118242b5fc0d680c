package compiler

import (
	"github.com/thiremani/exprlower/ast"
	"github.com/thiremani/exprlower/ir"
	"github.com/thiremani/exprlower/types"
)

// callee is a resolved call target.
type callee struct {
	Fn     ir.Node // pointer to function
	Object ir.Node // hidden first argument, or nil
	Type   types.Function
}

// staticDispatch reports member calls that bypass the virtual table:
// super.f() and T.f(), possibly behind casts.
func staticDispatch(x ast.Expression) bool {
	for {
		switch v := x.(type) {
		case *ast.This:
			return v.Super
		case *ast.DotType:
			return true
		case *ast.Cast:
			x = v.X
			continue
		}
		return false
	}
}

// objectRef is the reference passed as 'this': class references and
// pointers as they are, struct values by address.
func (c *Compiler) objectRef(x ast.Expression) ir.Node {
	obj := c.Lower(x)
	switch x.Type().Kind() {
	case types.ClassKind, types.PointerKind:
		return obj
	}
	if staticInitLiteral(x) {
		// every default construction copies the initializer image, so the
		// method works on a copy of it
		tmp := ir.NewTemp(obj.Type(), "sinit")
		return ir.Seq(ir.InitTo(tmp, obj), ir.AddrOf(tmp))
	}
	return addressOf(obj)
}

// staticInitLiteral reports struct literals, possibly behind casts, that
// lower to the static initializer image of their type.
func staticInitLiteral(x ast.Expression) bool {
	for {
		switch v := x.(type) {
		case *ast.Cast:
			x = v.X
			continue
		case *ast.StructLiteral:
			return v.StaticInit && len(v.Decl.Fields) > 0
		}
		return false
	}
}

// methodCallee resolves a call through a member access.
func (c *Compiler) methodCallee(dv *ast.DotVar) callee {
	fd := dv.Func
	if !fd.NeedsThis {
		return callee{Fn: c.funcAddr(fd), Type: fd.Type}
	}
	obj := c.objectRef(dv.X)
	if fd.Virtual && !fd.Final && !staticDispatch(dv.X) {
		obj = ir.SaveOf(obj)
		fnptr := ir.PointerTo(c.irFunc(fd.Type))
		return callee{Fn: ir.VirtualSlot(obj, fd.VtblIndex, fnptr), Object: obj, Type: fd.Type}
	}
	return callee{Fn: c.funcAddr(fd), Object: obj, Type: fd.Type}
}

// functionOf is the function type called through a value of type t.
func functionOf(t types.Type) types.Function {
	switch tt := t.(type) {
	case types.Function:
		return tt
	case types.Pointer:
		if f, ok := tt.Elem.(types.Function); ok {
			return f
		}
	case types.Delegate:
		return tt.Func
	}
	panic("internal: call through " + t.String())
}

func lowerCall(c *Compiler, e *ast.Call) ir.Node {
	target := e.Func
	var prefix ir.Node

	// (tmp = ..., fn)(args)
	if comma, ok := target.(*ast.Comma); ok {
		fv, isVar := comma.Right.(*ast.Var)
		if !isVar || fv.Func == nil || fv.Func.NeedsThis {
			panic("internal: call through a comma expression")
		}
		prefix = c.Lower(comma.Left)
		target = comma.Right
	}

	var ce callee
	switch fn := target.(type) {
	case *ast.DotVar:
		if fn.Func != nil && fn.T.Kind() != types.DelegateKind {
			ce = c.methodCallee(fn)
			break
		}
		ce = c.valueCallee(target)
	case *ast.Var:
		if fn.Func == nil {
			ce = c.valueCallee(target)
			break
		}
		fd := fn.Func
		ce = callee{Fn: c.funcAddr(fd), Type: fd.Type}
		if fd.Nested {
			ce.Object = c.contextFor(fd)
		} else if fd.NeedsThis {
			c.errorf(fn, "need 'this' to access member %s", fd.Name)
			ce.Object = ir.Null(ir.VoidPtr)
		}
	default:
		ce = c.valueCallee(target)
	}

	var result ir.Node = ir.CallOf(ce.Fn, ce.Object, c.lowerArgs(ce.Type, e.Args))
	if ce.Type.Ref {
		result = ir.DerefOf(result)
	}
	switch t := c.irType(e.T); {
	case t == ir.VoidType:
	case ir.IsInteger(t) || ir.IsFloat(t):
		result = ir.ConvertTo(t, result)
	default:
		result = ir.ViewAs(t, result)
	}
	return ir.Seq(prefix, result)
}

// lowerArgs lowers call arguments left to right, converting each to its
// parameter type. Variadic arguments keep their own types.
func (c *Compiler) lowerArgs(ft types.Function, args []ast.Expression) []ir.Node {
	out := make([]ir.Node, len(args))
	for i, arg := range args {
		x := c.Lower(arg)
		if i < len(ft.Params) {
			x = c.convertExpr(x, arg.Type(), ft.Params[i])
		}
		out[i] = x
	}
	return out
}

// valueCallee calls through a function pointer or delegate value. A
// delegate is evaluated once for both its context and its function.
func (c *Compiler) valueCallee(x ast.Expression) callee {
	ft := functionOf(x.Type())
	fn := c.Lower(x)
	if x.Type().Kind() != types.DelegateKind {
		return callee{Fn: fn, Type: ft}
	}
	dg := ir.SaveOf(fn)
	fnptr := ir.NopTo(ir.PointerTo(c.irFunc(ft)), ir.DelegateFunc(dg))
	return callee{Fn: fnptr, Object: ir.DelegateObject(dg), Type: ft}
}

// lowerDelegate binds a method to an object, or a nested function to
// the frame it was declared in.
func lowerDelegate(c *Compiler, e *ast.Delegate) ir.Node {
	fd := e.Func
	c.deferFunc(fd)
	dt := c.irType(e.T).(ir.Delegate)

	if fd.Nested {
		var object ir.Node
		if e.X != nil && e.X.Kind() == ast.NullKind {
			object = c.Lower(e.X)
		} else {
			object = c.contextFor(fd)
		}
		return ir.DelegateOf(dt, object, c.funcAddr(fd))
	}
	if !fd.NeedsThis {
		return c.errorf(e, "delegates are only for non-static functions")
	}

	object := c.objectRef(e.X)
	var fn ir.Node = c.funcAddr(fd)
	if fd.Virtual && !fd.Final && !staticDispatch(e.X) {
		object = ir.SaveOf(object)
		fn = ir.VirtualSlot(object, fd.VtblIndex, fn.Type())
	}
	return ir.DelegateOf(dt, object, fn)
}

// lowerFuncLiteral refers to a function literal, whose body is emitted
// after the current function. Nested literals become delegates over the
// current frame.
func lowerFuncLiteral(c *Compiler, e *ast.Func) ir.Node {
	fd := e.Decl
	c.deferFunc(fd)
	if fd.Nested {
		dt, ok := c.irType(e.T).(ir.Delegate)
		if !ok {
			dt = ir.Delegate{Func: c.irFunc(fd.Type)}
		}
		return ir.DelegateOf(dt, c.contextFor(fd), c.funcAddr(fd))
	}
	return ir.NopTo(c.irType(e.T), c.funcAddr(fd))
}

func lowerHalt(c *Compiler, e *ast.Halt) ir.Node {
	return ir.CallBuiltin(ir.Trap)
}
