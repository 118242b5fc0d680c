package compiler

import (
	"fmt"

	"github.com/thiremani/exprlower/ast"
	"github.com/thiremani/exprlower/ir"
	"github.com/thiremani/exprlower/types"
)

// typeInfoRecord is the opaque layout behind every type descriptor symbol.
var typeInfoRecord = &ir.Struct{Name: "TypeInfo"}

var typeInfoPtr = ir.PointerTo(typeInfoRecord)

func (c *Compiler) irType(t types.Type) ir.Type {
	switch t.Kind() {
	case types.VoidKind:
		return ir.VoidType
	case types.BoolKind:
		return ir.BoolType
	case types.IntKind:
		it := t.(types.Int)
		return ir.Int{Bits: it.Width, Unsigned: types.IsUnsigned(it)}
	case types.FloatKind:
		return ir.Float{Bits: t.(types.Float).Width}
	case types.ComplexKind:
		return ir.Complex{Bits: t.(types.Complex).Width}
	case types.PointerKind:
		elem := t.(types.Pointer).Elem
		if elem.Kind() == types.VoidKind {
			return ir.VoidPtr
		}
		return ir.PointerTo(c.irType(elem))
	case types.StaticArrayKind:
		sa := t.(types.StaticArray)
		return ir.Array{Elem: c.irType(sa.Elem), Len: sa.Dim}
	case types.DynArrayKind:
		return ir.Slice{Elem: c.irType(t.(types.DynArray).Elem)}
	case types.AssocArrayKind:
		return ir.AAType
	case types.StructKind:
		return c.structRecord(t.(types.Struct).Decl)
	case types.ClassKind:
		return ir.PointerTo(c.classRecord(t.(types.Class).Decl))
	case types.DelegateKind:
		return ir.Delegate{Func: c.irFunc(t.(types.Delegate).Func)}
	case types.FunctionKind:
		return c.irFunc(t.(types.Function))
	case types.VectorKind:
		v := t.(types.Vector)
		return ir.Vector{Elem: c.irType(v.Elem), Len: v.Dim}
	case types.NullKind:
		return ir.VoidPtr
	default:
		panic("internal: unknown type in irType: " + t.String())
	}
}

// irFunc maps a function type. Functions returning by reference return a
// pointer to their result.
func (c *Compiler) irFunc(f types.Function) *ir.Func {
	params := make([]ir.Type, len(f.Params))
	for i, p := range f.Params {
		params[i] = c.irType(p)
	}
	result := c.irType(f.Result)
	if f.Ref {
		result = ir.PointerTo(result)
	}
	return &ir.Func{Params: params, Result: result, Variadic: f.Variadic}
}

func (c *Compiler) structRecord(sd *types.StructDecl) *ir.Struct {
	if rec, ok := c.records[sd]; ok {
		return rec
	}
	rec := &ir.Struct{Name: sd.Name, SizeOf: sd.SizeOf, Union: sd.Union}
	// registered before the fields so self references terminate
	c.records[sd] = rec
	for _, f := range sd.Fields {
		rec.Fields = append(rec.Fields, ir.Field{Name: f.Name, Type: c.irType(f.Type), Offset: f.Offset})
	}
	if sd.VThis != nil {
		rec.Fields = append(rec.Fields, ir.Field{Name: sd.VThis.Name, Type: ir.VoidPtr, Offset: sd.VThis.Offset})
	}
	return rec
}

// classRecord is the instance layout: the vtable and monitor slots, then
// the fields of the class and its bases.
func (c *Compiler) classRecord(cd *types.ClassDecl) *ir.Struct {
	if rec, ok := c.records[cd]; ok {
		return rec
	}
	rec := &ir.Struct{Name: cd.Name, SizeOf: cd.SizeOf}
	c.records[cd] = rec
	rec.Fields = append(rec.Fields,
		ir.Field{Name: "__vptr", Type: ir.VoidPtr, Offset: 0},
		ir.Field{Name: "__monitor", Type: ir.VoidPtr, Offset: types.PtrSize},
	)
	for _, f := range cd.Fields {
		rec.Fields = append(rec.Fields, ir.Field{Name: f.Name, Type: c.irType(f.Type), Offset: f.Offset})
	}
	if cd.VThis != nil {
		rec.Fields = append(rec.Fields, ir.Field{Name: cd.VThis.Name, Type: ir.VoidPtr, Offset: cd.VThis.Offset})
	}
	return rec
}

// fieldIndex finds the record index of a declared field.
func fieldIndex(rec *ir.Struct, f *types.Field) int {
	i := rec.FieldIndex(f.Name)
	if i < 0 {
		panic(fmt.Sprintf("internal: no field %s in %s", f.Name, rec.Name))
	}
	return i
}

// typeInfo is the address of the runtime type descriptor of t.
func (c *Compiler) typeInfo(t types.Type) ir.Node {
	return ir.AddrOf(ir.NewGlobal(typeInfoSymbol(t), typeInfoRecord))
}

// rootObject is the class every class derives from.
var rootObject = &types.ClassDecl{Name: "Object", SizeOf: 2 * types.PtrSize}

// classInfo is the address of the runtime class descriptor of cd.
func (c *Compiler) classInfo(cd *types.ClassDecl) ir.Node {
	return ir.AddrOf(ir.NewGlobal(classInfoSymbol(cd), typeInfoRecord))
}

// initSymbol is the static default initializer image of an aggregate.
func (c *Compiler) initSymbol(name string, rec *ir.Struct) ir.Node {
	return ir.NewGlobal(initSymbolName(name), rec)
}

// varOf returns the storage of vd. Reference variables store the address
// of their referent.
func (c *Compiler) varOf(vd *ast.VarDecl) *ir.Var {
	if v, ok := c.vars[vd]; ok {
		return v
	}
	t := c.irType(vd.Type)
	if vd.IsRef() {
		t = ir.PointerTo(t)
	}
	v := ir.NewVar(vd.Name, t)
	v.Global = vd.IsGlobal()
	c.vars[vd] = v
	return v
}

// Param returns the IR variable a driver binds the parameter vd to.
func (c *Compiler) Param(vd *ast.VarDecl) *ir.Var {
	return c.varOf(vd)
}

// readVar is the lvalue named by vd.
func (c *Compiler) readVar(vd *ast.VarDecl) ir.Node {
	v := c.varOf(vd)
	if vd.IsRef() {
		return ir.DerefOf(v)
	}
	return v
}

func (c *Compiler) funcAddr(fd *types.FuncDecl) *ir.FuncRef {
	return ir.FuncAddr(fd.Name, c.irFunc(fd.Type), ir.UserFunc)
}

// frameOf returns the address of the frame that functions nested in fd
// take as their context. Frames of functions other than the one being
// lowered are reached through its static chain.
func (c *Compiler) frameOf(fd *types.FuncDecl) ir.Node {
	if fd == nil {
		return ir.Null(ir.VoidPtr)
	}
	if c.Ctx.Func != nil && c.Ctx.Func != fd {
		return ir.NewVar("__chain", ir.VoidPtr)
	}
	v, ok := c.frames[fd]
	if !ok {
		v = ir.NewVar("__frame", &ir.Struct{Name: "frame." + fd.Name})
		c.frames[fd] = v
	}
	return ir.NopTo(ir.VoidPtr, ir.AddrOf(v))
}

// contextFor is the hidden context argument of the nested function fd.
func (c *Compiler) contextFor(fd *types.FuncDecl) ir.Node {
	return c.frameOf(fd.Outer)
}

// thisVar is the hidden object parameter of the function being lowered.
func (c *Compiler) thisVar(t ir.Type) ir.Node {
	return ir.NewVar("this", t)
}

// vthisOf returns the outer context a nested struct instance records.
func (c *Compiler) vthisOf(sd *types.StructDecl) ir.Node {
	if sd.Outer != nil {
		return c.frameOf(sd.Outer)
	}
	return ir.NopTo(ir.VoidPtr, c.thisVar(ir.VoidPtr))
}
