package compiler

import (
	"github.com/thiremani/exprlower/ast"
	"github.com/thiremani/exprlower/ir"
)

// LowerDtor lowers e and destroys the scoped variables declared while
// lowering it, last declared first, once its value has been computed.
//
// When the value comes from a call or new expression the cleanup runs in
// a protected region, so it also runs if the call exits abnormally.
func (c *Compiler) LowerDtor(e ast.Expression) ir.Node {
	start := c.Ledger.Len()
	value := c.Lower(e)
	scoped := c.Ledger.Consume(start, c.Ledger.Len())
	if len(scoped) == 0 {
		return value
	}

	var dtors ir.Node
	for _, vd := range scoped {
		dtors = ir.Seq(dtors, discard(c.Lower(vd.Edtor)))
	}

	last := e
	if comma, ok := e.(*ast.Comma); ok {
		last = comma.Right
	}

	switch last.Kind() {
	case ast.CallKind, ast.NewKind:
		if constructsDeclared(e) {
			break
		}
		if value.Type() == ir.VoidType {
			return ir.Protect(value, dtors)
		}
		value = ir.SaveOf(value)
		return ir.Seq(ir.Protect(value, dtors), value)
	case ast.VarKind:
		// (lhs, var): run the cleanups before reading var
		if seq, ok := value.(*ir.Compound); ok && e.Kind() == ast.CommaKind {
			return ir.Seq(ir.Seq(seq.First, dtors), seq.Second)
		}
	}

	if value.Type() == ir.VoidType {
		return ir.Seq(value, dtors)
	}
	value = ir.SaveOf(value)
	return ir.Seq(ir.Seq(value, dtors), value)
}

// constructsDeclared reports a constructor call on a variable declared
// in the same expression, (T tmp, tmp).this(...). If the constructor
// fails the variable was never constructed and must not be destroyed.
func constructsDeclared(e ast.Expression) bool {
	call, ok := e.(*ast.Call)
	if !ok {
		return false
	}
	dv, ok := call.Func.(*ast.DotVar)
	if !ok || dv.Func == nil || !dv.Func.Ctor {
		return false
	}
	comma, ok := dv.X.(*ast.Comma)
	if !ok {
		return false
	}
	return comma.Left.Kind() == ast.DeclarationKind && comma.Right.Kind() == ast.VarKind
}

// lowerDeclaration initializes a local and, when it has a destructor,
// records it for destruction at the end of the enclosing scope.
func lowerDeclaration(c *Compiler, e *ast.Declaration) ir.Node {
	vd := e.Var
	if vd.IsGlobal() {
		return ir.Nothing()
	}
	if vd.Edtor != nil && !vd.NoScope {
		c.Ledger.Push(vd)
	}
	if vd.Init == nil {
		return ir.Nothing()
	}

	v := c.varOf(vd)
	init := c.Lower(vd.Init)
	if vd.IsRef() {
		return discard(ir.InitTo(v, ir.AddrOf(init)))
	}
	return discard(ir.InitTo(v, c.convertExpr(init, vd.Init.Type(), vd.Type)))
}
