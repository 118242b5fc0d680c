package compiler

import (
	"github.com/thiremani/exprlower/ast"
	"github.com/thiremani/exprlower/ir"
	"github.com/thiremani/exprlower/types"
)

// lowerDelete destroys and frees what X refers to. Class instances
// allocated in the frame are only finalized.
func lowerDelete(c *Compiler, e *ast.Delete) ir.Node {
	x := c.Lower(e.X)
	switch t := e.X.Type().(type) {
	case types.Class:
		iface := t.Decl.Interface
		if v, ok := e.X.(*ast.Var); ok && v.Decl != nil && v.Decl.OnStack {
			if iface {
				return libcall(CallInterfaceFinalizer, x)
			}
			return libcall(CallFinalizer, x)
		}
		if iface {
			return libcall(DelInterface, addressOf(x))
		}
		return libcall(DelClass, addressOf(x))

	case types.DynArray:
		var ti ir.Node = ir.Null(typeInfoPtr)
		if types.HasDtor(t.Elem) {
			ti = c.typeInfo(t.Elem)
		}
		return libcall(DelArrayT, addressOf(x), ti)

	case types.Pointer:
		if st, ok := t.Elem.(types.Struct); ok && st.Decl.Dtor != nil {
			return libcall(DelStruct, addressOf(x), c.typeInfo(st))
		}
		return libcall(DelMemory, addressOf(x))
	}
	return c.errorf(e, "don't know how to delete %s", e.X)
}

// lowerRemove deletes a key from an associative array.
func lowerRemove(c *Compiler, e *ast.Remove) ir.Node {
	aat, ok := e.AA.Type().(types.AssocArray)
	if !ok {
		return c.errorf(e, "%s is not an associative array", e.AA)
	}
	aa := c.Lower(e.AA)
	key := c.convertExpr(c.Lower(e.Key), e.Key.Type(), aat.Key)
	removed := libcall(AADelX, aa, c.typeInfo(aat.Key), addressOf(key))
	if e.T == nil || e.T.Kind() == types.VoidKind {
		return discard(removed)
	}
	return c.convertExpr(removed, types.TBool, e.T)
}
