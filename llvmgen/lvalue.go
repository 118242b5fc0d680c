package llvmgen

import (
	"github.com/thiremani/exprlower/ir"
	"tinygo.org/x/go-llvm"
)

// addr returns the address of n. Values without storage are spilled to a
// fresh stack slot.
func (g *Generator) addr(n ir.Node) llvm.Value {
	switch v := n.(type) {
	case *ir.Var:
		if v.Global {
			return g.global(v)
		}
		slot, ok := g.vars[v.Name]
		if !ok {
			slot = g.entryAlloca(g.llvmType(v.T), v.Name)
			g.vars[v.Name] = slot
		}
		return slot
	case *ir.Temp:
		return g.tempSlot(v)
	case *ir.StringConst:
		return g.stringGlobal(v.Data)
	case *ir.Unary:
		if v.Op == ir.Deref {
			return g.value(v.X)
		}
	case *ir.Index:
		ptr := g.value(v.Ptr)
		idx := g.value(v.Idx)
		return g.builder.CreateInBoundsGEP(g.llvmType(v.T), ptr, []llvm.Value{idx}, "elem")
	case *ir.FieldRef:
		if _, ok := v.X.Type().(ir.AssocArray); ok {
			return g.addr(v.X)
		}
		return g.fieldAddr(g.addr(v.X), v.X.Type(), v.Index)
	case *ir.Assign:
		return g.assign(v)
	case *ir.Compound:
		g.effect(v.First)
		return g.addr(v.Second)
	case *ir.Save:
		if slot, ok := g.saves[v]; ok {
			return slot
		}
		if ir.IsLvalue(v.X) {
			slot := g.addr(v.X)
			g.saves[v] = slot
			return slot
		}
		val := g.value(v.X)
		slot := g.saveSlot(v, val)
		return slot
	case *ir.Cond:
		if ir.IsLvalue(v.Then) && ir.IsLvalue(v.Else) {
			return g.branch(v.C, g.ptrType(), "cond.addr",
				func() llvm.Value { return g.addr(v.Then) },
				func() llvm.Value { return g.addr(v.Else) })
		}
	}
	return g.spill(g.value(n), n.Type(), "tmp")
}

func (g *Generator) tempSlot(t *ir.Temp) llvm.Value {
	slot, ok := g.temps[t]
	if !ok {
		hint := t.Hint
		if hint == "" {
			hint = "tmp"
		}
		slot = g.entryAlloca(g.llvmType(t.T), hint)
		g.temps[t] = slot
	}
	return slot
}

// spill stores val into a new stack slot of type t.
func (g *Generator) spill(val llvm.Value, t ir.Type, name string) llvm.Value {
	slot := g.entryAlloca(g.llvmType(t), name)
	g.builder.CreateStore(val, slot)
	return slot
}

// fieldAddr returns the address of field i of the aggregate at base.
func (g *Generator) fieldAddr(base llvm.Value, t ir.Type, i int) llvm.Value {
	if pairFields(t) {
		return g.builder.CreateStructGEP(g.llvmType(t), base, i, "field")
	}
	fields := ir.FieldsOf(t)
	if i < 0 || i >= len(fields) {
		g.fail("field %d of %s", i, t)
	}
	if fields[i].Offset == 0 {
		return base
	}
	off := llvm.ConstInt(g.Context.Int64Type(), fields[i].Offset, false)
	return g.builder.CreateInBoundsGEP(g.Context.Int8Type(), base, []llvm.Value{off}, fields[i].Name)
}

// load reads a value of type t from ptr.
func (g *Generator) load(t ir.Type, ptr llvm.Value, name string) llvm.Value {
	return g.builder.CreateLoad(g.llvmType(t), ptr, name)
}
