package llvmgen

import (
	"github.com/thiremani/exprlower/ir"
	"tinygo.org/x/go-llvm"
)

// effect evaluates n for its side effects only.
func (g *Generator) effect(n ir.Node) {
	g.value(n)
}

// value emits n and returns its value. Void nodes return a nil value.
func (g *Generator) value(n ir.Node) llvm.Value {
	switch v := n.(type) {
	case *ir.IntConst:
		return llvm.ConstInt(g.llvmType(v.T), uint64(v.Val), !ir.IsUnsigned(v.T))
	case *ir.FloatConst:
		return llvm.ConstFloat(g.llvmType(v.T), v.Val)
	case *ir.ComplexConst:
		part := g.floatType(v.T.Part())
		return g.aggregate(v.T, llvm.ConstFloat(part, v.Re), llvm.ConstFloat(part, v.Im))
	case *ir.StringConst:
		return g.load(v.T, g.stringGlobal(v.Data), "str")
	case *ir.Zero:
		if _, ok := v.T.(ir.Void); ok {
			return llvm.Value{}
		}
		return llvm.ConstNull(g.llvmType(v.T))
	case *ir.Empty:
		return llvm.Value{}
	case *ir.Var, *ir.Temp, *ir.Index:
		return g.load(n.Type(), g.addr(n), "")
	case *ir.FuncRef:
		fn, _ := g.declare(v)
		return fn
	case *ir.Unary:
		return g.unary(v)
	case *ir.Binary:
		return g.binary(v)
	case *ir.Cond:
		return g.cond(v)
	case *ir.Compound:
		g.effect(v.First)
		return g.value(v.Second)
	case *ir.Save:
		return g.save(v)
	case *ir.Call:
		return g.call(v)
	case *ir.Assign:
		return g.load(v.Dst.Type(), g.assign(v), "")
	case *ir.FieldRef:
		return g.field(v)
	case *ir.Ctor:
		return g.ctor(v)
	case *ir.Splat:
		x := g.value(v.X)
		out := llvm.Undef(g.llvmType(v.T))
		for i := uint64(0); i < v.T.Len; i++ {
			lane := llvm.ConstInt(g.Context.Int32Type(), i, false)
			out = g.builder.CreateInsertElement(out, x, lane, "splat")
		}
		return out
	case *ir.Loop:
		g.loop(v)
		return llvm.Value{}
	case *ir.TryFinally:
		// no unwinding support: the cleanup runs on the normal path
		g.effect(v.Body)
		g.effect(v.Cleanup)
		return llvm.Value{}
	case *ir.VirtualRef:
		obj := g.value(v.Object)
		vtbl := g.builder.CreateLoad(g.ptrType(), obj, "vtbl")
		slot := llvm.ConstInt(g.Context.Int64Type(), uint64(v.Slot), false)
		entry := g.builder.CreateInBoundsGEP(g.ptrType(), vtbl, []llvm.Value{slot}, "vslot")
		return g.builder.CreateLoad(g.ptrType(), entry, "vfn")
	case *ir.Error:
		g.fail("%v", ErrDiagnosed)
	}
	g.fail("cannot emit %T", n)
	return llvm.Value{}
}

// save evaluates the operand of s at its first use. The value lives in a
// stack slot so that later uses in other blocks still see it.
func (g *Generator) save(s *ir.Save) llvm.Value {
	t := s.Type()
	if slot, ok := g.saves[s]; ok {
		if _, void := t.(ir.Void); void {
			return llvm.Value{}
		}
		return g.load(t, slot, "saved")
	}
	val := g.value(s.X)
	if _, void := t.(ir.Void); void {
		g.saves[s] = llvm.Value{}
		return val
	}
	g.saveSlot(s, val)
	return val
}

func (g *Generator) saveSlot(s *ir.Save, val llvm.Value) llvm.Value {
	slot := g.spill(val, s.Type(), "save")
	g.saves[s] = slot
	return slot
}

// aggregate builds a two field value of type t.
func (g *Generator) aggregate(t ir.Type, first, second llvm.Value) llvm.Value {
	out := llvm.Undef(g.llvmType(t))
	out = g.builder.CreateInsertValue(out, first, 0, "")
	return g.builder.CreateInsertValue(out, second, 1, "")
}

func (g *Generator) field(f *ir.FieldRef) llvm.Value {
	xt := f.X.Type()
	if _, ok := xt.(ir.AssocArray); ok {
		return g.value(f.X)
	}
	if ir.IsLvalue(f.X) {
		return g.load(f.T, g.addr(f), "")
	}
	if pairFields(xt) {
		return g.builder.CreateExtractValue(g.value(f.X), f.Index, "")
	}
	base := g.spill(g.value(f.X), xt, "agg")
	return g.load(f.T, g.fieldAddr(base, xt, f.Index), "")
}

// ctor builds an aggregate. Records go through memory so that fields land
// at their offsets; everything else is assembled in registers.
func (g *Generator) ctor(c *ir.Ctor) llvm.Value {
	lt := g.llvmType(c.T)
	switch t := c.T.(type) {
	case *ir.Struct:
		slot := g.entryAlloca(lt, "ctor")
		g.builder.CreateStore(llvm.ConstNull(lt), slot)
		for _, e := range c.Elems {
			val := g.value(e.Value)
			g.builder.CreateStore(val, g.fieldAddr(slot, t, e.Index))
		}
		return g.builder.CreateLoad(lt, slot, "record")
	case ir.Vector:
		out := llvm.ConstNull(lt)
		for _, e := range c.Elems {
			lane := llvm.ConstInt(g.Context.Int32Type(), uint64(e.Index), false)
			out = g.builder.CreateInsertElement(out, g.value(e.Value), lane, "")
		}
		return out
	case ir.AssocArray:
		if len(c.Elems) == 0 {
			return llvm.ConstNull(lt)
		}
		return g.value(c.Elems[0].Value)
	}
	out := llvm.ConstNull(lt)
	for _, e := range c.Elems {
		out = g.builder.CreateInsertValue(out, g.value(e.Value), e.Index, "")
	}
	return out
}

// assign stores the source into the destination and returns the
// destination address. The destination is evaluated first.
func (g *Generator) assign(a *ir.Assign) llvm.Value {
	dst := g.addr(a.Dst)
	src := g.value(a.Src)
	if !src.IsNil() {
		g.builder.CreateStore(src, dst)
	}
	return dst
}

// branch emits "if c then a else b" and merges the results with a phi of
// type t. A void t produces no phi.
func (g *Generator) branch(c ir.Node, t llvm.Type, name string, then, els func() llvm.Value) llvm.Value {
	cond := g.truth(c)
	thenBlock := g.Context.AddBasicBlock(g.fn, name+".then")
	elseBlock := g.Context.AddBasicBlock(g.fn, name+".else")
	endBlock := g.Context.AddBasicBlock(g.fn, name+".end")
	g.builder.CreateCondBr(cond, thenBlock, elseBlock)

	g.builder.SetInsertPointAtEnd(thenBlock)
	thenVal := then()
	thenEnd := g.builder.GetInsertBlock()
	g.builder.CreateBr(endBlock)

	g.builder.SetInsertPointAtEnd(elseBlock)
	elseVal := els()
	elseEnd := g.builder.GetInsertBlock()
	g.builder.CreateBr(endBlock)

	g.builder.SetInsertPointAtEnd(endBlock)
	if t.TypeKind() == llvm.VoidTypeKind || thenVal.IsNil() || elseVal.IsNil() {
		return llvm.Value{}
	}
	phi := g.builder.CreatePHI(t, name)
	phi.AddIncoming([]llvm.Value{thenVal, elseVal}, []llvm.BasicBlock{thenEnd, elseEnd})
	return phi
}

func (g *Generator) cond(c *ir.Cond) llvm.Value {
	return g.branch(c.C, g.llvmType(c.T), "cond",
		func() llvm.Value { return g.value(c.Then) },
		func() llvm.Value { return g.value(c.Else) })
}

// logical emits a short circuit && or ||.
func (g *Generator) logical(b *ir.Binary) llvm.Value {
	i1 := g.Context.Int1Type()
	lhs := g.truth(b.X)
	lhsEnd := g.builder.GetInsertBlock()
	rhsBlock := g.Context.AddBasicBlock(g.fn, b.Op.String()+".rhs")
	endBlock := g.Context.AddBasicBlock(g.fn, b.Op.String()+".end")

	var short llvm.Value
	if b.Op == ir.AndIf {
		g.builder.CreateCondBr(lhs, rhsBlock, endBlock)
		short = llvm.ConstInt(i1, 0, false)
	} else {
		g.builder.CreateCondBr(lhs, endBlock, rhsBlock)
		short = llvm.ConstInt(i1, 1, false)
	}

	g.builder.SetInsertPointAtEnd(rhsBlock)
	rhs := g.truth(b.Y)
	rhsEnd := g.builder.GetInsertBlock()
	g.builder.CreateBr(endBlock)

	g.builder.SetInsertPointAtEnd(endBlock)
	phi := g.builder.CreatePHI(i1, b.Op.String())
	phi.AddIncoming([]llvm.Value{short, rhs}, []llvm.BasicBlock{lhsEnd, rhsEnd})
	return phi
}

// truth evaluates n as an i1 condition.
func (g *Generator) truth(n ir.Node) llvm.Value {
	val := g.value(n)
	if _, ok := n.Type().(ir.Bool); ok {
		return val
	}
	return g.nonZero(val, n.Type())
}

// loop counts Index from zero up to Count, leaving early once Cond fails.
func (g *Generator) loop(l *ir.Loop) {
	count := g.value(l.Count)
	index := g.tempSlot(l.Index)
	g.builder.CreateStore(llvm.ConstNull(g.llvmType(l.Index.T)), index)

	headBlock := g.Context.AddBasicBlock(g.fn, "loop.head")
	bodyBlock := g.Context.AddBasicBlock(g.fn, "loop.body")
	endBlock := g.Context.AddBasicBlock(g.fn, "loop.end")
	g.builder.CreateBr(headBlock)

	g.builder.SetInsertPointAtEnd(headBlock)
	i := g.load(l.Index.T, index, "i")
	more := g.builder.CreateICmp(llvm.IntULT, i, g.convert(count, l.Count.Type(), l.Index.T), "more")
	if l.Cond != nil {
		checkBlock := g.Context.AddBasicBlock(g.fn, "loop.cond")
		g.builder.CreateCondBr(more, checkBlock, endBlock)
		g.builder.SetInsertPointAtEnd(checkBlock)
		more = g.truth(l.Cond)
	}
	g.builder.CreateCondBr(more, bodyBlock, endBlock)

	g.builder.SetInsertPointAtEnd(bodyBlock)
	g.effect(l.Body)
	i = g.load(l.Index.T, index, "i")
	next := g.builder.CreateAdd(i, llvm.ConstInt(g.llvmType(l.Index.T), 1, false), "next")
	g.builder.CreateStore(next, index)
	g.builder.CreateBr(headBlock)

	g.builder.SetInsertPointAtEnd(endBlock)
}

func (g *Generator) call(c *ir.Call) llvm.Value {
	var fn llvm.Value
	var fnType llvm.Type
	if ref, ok := c.Callee.(*ir.FuncRef); ok {
		fn, fnType = g.declare(ref)
	} else {
		p, ok := c.Callee.Type().(ir.Pointer)
		sig, isFunc := p.Elem.(*ir.Func)
		if !ok || !isFunc {
			g.fail("call through %s", c.Callee.Type())
		}
		fn = g.value(c.Callee)
		fnType = g.funcType(sig)
	}

	var args []llvm.Value
	if c.This != nil {
		args = append(args, g.value(c.This))
	}
	for _, a := range c.Args {
		args = append(args, g.value(a))
	}
	name := ""
	if _, void := c.T.(ir.Void); !void {
		name = "call"
	}
	result := g.builder.CreateCall(fnType, fn, args, name)
	if name == "" {
		return llvm.Value{}
	}
	return result
}
