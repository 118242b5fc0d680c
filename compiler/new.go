package compiler

import (
	"github.com/thiremani/exprlower/ast"
	"github.com/thiremani/exprlower/ir"
	"github.com/thiremani/exprlower/types"
)

func lowerNew(c *Compiler, e *ast.New) ir.Node {
	var result ir.Node
	switch t := e.T.(type) {
	case types.Class:
		result = c.newClass(e)
	case types.DynArray:
		result = c.newArray(e, t)
	case types.Pointer:
		if st, ok := e.NewType.(types.Struct); ok {
			result = c.newStruct(e, st.Decl)
		} else {
			result = c.newItem(e, t)
		}
	default:
		panic("internal: new of " + e.T.String())
	}
	if e.ArgPrefix != nil {
		result = ir.Seq(c.Lower(e.ArgPrefix), result)
	}
	return result
}

// allocate calls the custom allocator of a new expression.
func (c *Compiler) allocate(e *ast.New) ir.Node {
	fd := e.Allocator
	return ir.CallOf(c.funcAddr(fd), nil, c.lowerArgs(fd.Type, e.NewArgs))
}

// construct runs the constructor on the new instance obj and yields it.
func (c *Compiler) construct(e *ast.New, obj ir.Node) ir.Node {
	if e.Ctor == nil {
		return obj
	}
	fd := e.Ctor
	obj = ir.SaveOf(obj)
	call := ir.CallOf(c.funcAddr(fd), obj, c.lowerArgs(fd.Type, e.Args))
	if call.T == ir.VoidType {
		return ir.Seq(call, obj)
	}
	// constructors return their instance
	return ir.NopTo(obj.Type(), call)
}

// classVThis is the outer reference stored in a new instance of the nested
// class cd when no outer object is given.
func (c *Compiler) classVThis(cd *types.ClassDecl) ir.Node {
	if cd.OuterFunc != nil {
		return c.frameOf(cd.OuterFunc)
	}
	return c.thisVar(c.irType(cd.Outer.Type()))
}

// newClass allocates an instance in the frame, through a custom allocator
// or through the runtime, which also copies in the initial state.
func (c *Compiler) newClass(e *ast.New) ir.Node {
	ct, ok := e.NewType.(types.Class)
	if !ok {
		panic("internal: new class of " + e.NewType.String())
	}
	cd := ct.Decl
	rec := c.classRecord(cd)
	ref := c.irType(ct)

	var obj, setup ir.Node
	switch {
	case e.OnStack:
		buf := ir.NewTemp(rec, "stack")
		obj = ir.AddrOf(buf)
		setup = ir.InitTo(buf, c.initSymbol(cd.Name, rec))
	case e.Allocator != nil:
		obj = ir.SaveOf(c.allocate(e))
		setup = ir.AssignTo(ir.DerefOf(ir.NopTo(ir.PointerTo(rec), obj)), c.initSymbol(cd.Name, rec))
	default:
		obj = libcall(NewClass, c.classInfo(cd))
	}
	obj = ir.NopTo(ref, obj)

	if cd.Nested() {
		var outer ir.Node
		if e.ThisExp != nil {
			outer = c.Lower(e.ThisExp)
			if cd.Outer != nil {
				outer = c.convertExpr(outer, e.ThisExp.Type(), cd.Outer.Type())
			}
		} else {
			outer = c.classVThis(cd)
		}
		obj = ir.SaveOf(obj)
		vthis := ir.FieldNamed(ir.DerefOf(obj), cd.VThis.Name)
		setup = ir.Seq(setup, ir.AssignTo(vthis, ir.NopTo(ir.VoidPtr, outer)))
	}
	return c.construct(e, ir.Seq(setup, obj))
}

// newStruct allocates a struct and either runs its constructor or
// initializes its fields from the arguments. Opaque structs cannot be
// allocated and yield null.
func (c *Compiler) newStruct(e *ast.New, sd *types.StructDecl) ir.Node {
	pt := c.irType(e.T)
	if sd.SizeOf == 0 {
		return ir.Null(pt)
	}
	if e.OnStack {
		panic("internal: struct allocated on the stack by new")
	}

	var mem ir.Node
	if e.Allocator != nil {
		mem = c.allocate(e)
	} else {
		lc := NewItemIT
		if sd.ZeroInit {
			lc = NewItemT
		}
		mem = libcall(lc, c.typeInfo(e.NewType))
	}
	ptr := ir.SaveOf(ir.NopTo(pt, mem))

	if e.Ctor == nil && e.Args != nil {
		return c.structInto(sd, e.Args, ptr)
	}
	if sd.Nested() {
		vthis := ir.FieldNamed(ir.DerefOf(ptr), sd.VThis.Name)
		ptr = ir.Seq(ir.AssignTo(vthis, c.vthisOf(sd)), ptr)
	}
	return c.construct(e, ptr)
}

// newArray allocates a dynamic array. Several dimensions are passed to the
// runtime as an array of lengths.
func (c *Compiler) newArray(e *ast.New, at types.DynArray) ir.Node {
	if e.Allocator != nil {
		panic("internal: custom allocator for an array")
	}
	if len(e.Args) == 0 {
		panic("internal: new array without a length")
	}
	st := c.irType(e.T)

	if len(e.Args) == 1 {
		if at.Elem.Size() == 0 {
			return ir.ZeroOf(st)
		}
		lc := NewArrayIT
		if types.IsZeroInit(at.Elem) {
			lc = NewArrayT
		}
		length := c.convertExpr(c.Lower(e.Args[0]), e.Args[0].Type(), types.TSizeT)
		return ir.ViewAs(st, libcall(lc, c.typeInfo(e.T), length))
	}

	var elem types.Type = at
	lengths := make([]ir.CtorElem, len(e.Args))
	for i, arg := range e.Args {
		da, ok := elem.(types.DynArray)
		if !ok {
			panic("internal: too many dimensions for " + at.String())
		}
		elem = da.Elem
		lengths[i] = ir.CtorElem{Index: i, Value: c.convertExpr(c.Lower(arg), arg.Type(), types.TSizeT)}
	}
	n := uint64(len(e.Args))
	dims := ir.NewTemp(ir.Array{Elem: ir.SizeT, Len: n}, "dims")
	init := ir.InitTo(dims, ir.CtorOf(dims.T, lengths))

	lc := NewArrayMITX
	if types.IsZeroInit(elem) {
		lc = NewArrayMTX
	}
	dimSlice := ir.SliceOf(ir.Slice{Elem: ir.SizeT}, ir.SizeOf(n), ir.AddrOf(dims))
	return ir.Seq(init, ir.ViewAs(st, libcall(lc, c.typeInfo(e.T), dimSlice)))
}

// newItem allocates a single value, storing the initial value if given.
func (c *Compiler) newItem(e *ast.New, pt types.Pointer) ir.Node {
	if pt.Elem.Size() == 0 {
		return ir.Null(c.irType(e.T))
	}
	lc := NewItemIT
	if types.IsZeroInit(pt.Elem) {
		lc = NewItemT
	}
	result := ir.NopTo(c.irType(e.T), libcall(lc, c.typeInfo(e.NewType)))
	if len(e.Args) != 1 {
		return result
	}
	result = ir.SaveOf(result)
	value := c.convertExpr(c.Lower(e.Args[0]), e.Args[0].Type(), pt.Elem)
	return ir.Seq(ir.InitTo(ir.DerefOf(result), value), result)
}
