package llvmgen

import (
	"github.com/thiremani/exprlower/ir"
	"tinygo.org/x/go-llvm"
)

func (g *Generator) unary(u *ir.Unary) llvm.Value {
	switch u.Op {
	case ir.Addr:
		return g.addr(u.X)
	case ir.Deref:
		return g.load(u.T, g.value(u.X), "")
	case ir.Convert:
		return g.convert(g.value(u.X), u.X.Type(), u.T)
	case ir.ViewConv, ir.Nop:
		return g.view(g.value(u.X), u.X.Type(), u.T)
	case ir.RealPart:
		return g.builder.CreateExtractValue(g.value(u.X), 0, "re")
	case ir.ImagPart:
		return g.builder.CreateExtractValue(g.value(u.X), 1, "im")
	}

	x := g.value(u.X)
	switch u.Op {
	case ir.Neg:
		switch t := u.T.(type) {
		case ir.Float:
			return g.builder.CreateFNeg(x, "neg")
		case ir.Complex:
			re := g.builder.CreateFNeg(g.builder.CreateExtractValue(x, 0, ""), "neg.re")
			im := g.builder.CreateFNeg(g.builder.CreateExtractValue(x, 1, ""), "neg.im")
			return g.aggregate(t, re, im)
		case ir.Vector:
			if ir.IsFloat(t.Elem) {
				return g.builder.CreateFNeg(x, "neg")
			}
		}
		return g.builder.CreateNeg(x, "neg")
	case ir.BitNot:
		return g.builder.CreateNot(x, "not")
	case ir.TruthNot:
		return g.builder.CreateNot(g.toBool(x, u.X.Type()), "lnot")
	}
	g.fail("unsupported unary %s", u.Op)
	return llvm.Value{}
}

func (g *Generator) binary(b *ir.Binary) llvm.Value {
	switch {
	case b.Op == ir.AndIf || b.Op == ir.OrIf:
		return g.logical(b)
	case b.Op == ir.PostInc || b.Op == ir.PostDec:
		return g.post(b)
	case b.Op.IsComparison():
		return g.compare(b)
	}

	x := g.value(b.X)
	y := g.value(b.Y)
	switch b.Op {
	case ir.PtrAdd:
		return g.builder.CreateGEP(g.Context.Int8Type(), x, []llvm.Value{y}, "ptradd")
	case ir.MakeComplex:
		return g.aggregate(b.T, x, y)
	}
	if c, ok := b.T.(ir.Complex); ok {
		return g.complexArith(b.Op, c, x, y)
	}
	return g.arith(b.Op, b.T, x, y)
}

// arith applies a scalar or vector operator.
func (g *Generator) arith(op ir.BinaryOp, t ir.Type, x, y llvm.Value) llvm.Value {
	elem := t
	if v, ok := t.(ir.Vector); ok {
		elem = v.Elem
	}
	if ir.IsFloat(elem) {
		switch op {
		case ir.Add:
			return g.builder.CreateFAdd(x, y, "fadd")
		case ir.Sub:
			return g.builder.CreateFSub(x, y, "fsub")
		case ir.Mul:
			return g.builder.CreateFMul(x, y, "fmul")
		case ir.RDiv, ir.Div:
			return g.builder.CreateFDiv(x, y, "fdiv")
		case ir.FMod, ir.Mod:
			return g.builder.CreateFRem(x, y, "frem")
		}
		g.fail("unsupported float operator %s", op)
	}

	unsigned := ir.IsUnsigned(elem)
	switch op {
	case ir.Add:
		return g.builder.CreateAdd(x, y, "add")
	case ir.Sub:
		return g.builder.CreateSub(x, y, "sub")
	case ir.Mul:
		return g.builder.CreateMul(x, y, "mul")
	case ir.Div, ir.RDiv:
		if unsigned {
			return g.builder.CreateUDiv(x, y, "div")
		}
		return g.builder.CreateSDiv(x, y, "div")
	case ir.Mod, ir.FMod:
		if unsigned {
			return g.builder.CreateURem(x, y, "rem")
		}
		return g.builder.CreateSRem(x, y, "rem")
	case ir.And:
		return g.builder.CreateAnd(x, y, "and")
	case ir.Or:
		return g.builder.CreateOr(x, y, "or")
	case ir.Xor:
		return g.builder.CreateXor(x, y, "xor")
	case ir.Shl:
		return g.builder.CreateShl(x, g.shiftCount(y, x), "shl")
	case ir.Shr:
		if unsigned {
			return g.builder.CreateLShr(x, g.shiftCount(y, x), "shr")
		}
		return g.builder.CreateAShr(x, g.shiftCount(y, x), "shr")
	case ir.UShr:
		return g.builder.CreateLShr(x, g.shiftCount(y, x), "ushr")
	}
	g.fail("unsupported integer operator %s", op)
	return llvm.Value{}
}

// shiftCount brings the shift amount to the width of the shifted value.
func (g *Generator) shiftCount(count, x llvm.Value) llvm.Value {
	ct, xt := count.Type(), x.Type()
	if ct.TypeKind() != llvm.IntegerTypeKind || xt.TypeKind() != llvm.IntegerTypeKind {
		return count
	}
	switch {
	case ct.IntTypeWidth() > xt.IntTypeWidth():
		return g.builder.CreateTrunc(count, xt, "shamt")
	case ct.IntTypeWidth() < xt.IntTypeWidth():
		return g.builder.CreateZExt(count, xt, "shamt")
	}
	return count
}

func (g *Generator) complexArith(op ir.BinaryOp, t ir.Complex, x, y llvm.Value) llvm.Value {
	a := g.builder.CreateExtractValue(x, 0, "a")
	b := g.builder.CreateExtractValue(x, 1, "b")
	c := g.builder.CreateExtractValue(y, 0, "c")
	d := g.builder.CreateExtractValue(y, 1, "d")
	switch op {
	case ir.Add:
		return g.aggregate(t, g.builder.CreateFAdd(a, c, "re"), g.builder.CreateFAdd(b, d, "im"))
	case ir.Sub:
		return g.aggregate(t, g.builder.CreateFSub(a, c, "re"), g.builder.CreateFSub(b, d, "im"))
	case ir.Mul:
		// (a+bi)(c+di) = (ac-bd) + (ad+bc)i
		re := g.builder.CreateFSub(g.builder.CreateFMul(a, c, ""), g.builder.CreateFMul(b, d, ""), "re")
		im := g.builder.CreateFAdd(g.builder.CreateFMul(a, d, ""), g.builder.CreateFMul(b, c, ""), "im")
		return g.aggregate(t, re, im)
	case ir.RDiv, ir.Div:
		denom := g.builder.CreateFAdd(g.builder.CreateFMul(c, c, ""), g.builder.CreateFMul(d, d, ""), "denom")
		re := g.builder.CreateFAdd(g.builder.CreateFMul(a, c, ""), g.builder.CreateFMul(b, d, ""), "")
		im := g.builder.CreateFSub(g.builder.CreateFMul(b, c, ""), g.builder.CreateFMul(a, d, ""), "")
		return g.aggregate(t, g.builder.CreateFDiv(re, denom, "re"), g.builder.CreateFDiv(im, denom, "im"))
	}
	g.fail("unsupported complex operator %s", op)
	return llvm.Value{}
}

// post increments or decrements the lvalue X by Y and yields the old
// value. Pointers step by Y bytes.
func (g *Generator) post(b *ir.Binary) llvm.Value {
	ptr := g.addr(b.X)
	old := g.load(b.X.Type(), ptr, "old")
	step := g.value(b.Y)

	var next llvm.Value
	if _, ok := b.X.Type().(ir.Pointer); ok {
		if b.Op == ir.PostDec {
			step = g.builder.CreateNeg(step, "step")
		}
		next = g.builder.CreateGEP(g.Context.Int8Type(), old, []llvm.Value{step}, "next")
	} else {
		op := ir.Add
		if b.Op == ir.PostDec {
			op = ir.Sub
		}
		if c, ok := b.X.Type().(ir.Complex); ok {
			next = g.complexArith(op, c, old, step)
		} else {
			next = g.arith(op, b.X.Type(), old, step)
		}
	}
	g.builder.CreateStore(next, ptr)
	return old
}

var (
	signedPreds = map[ir.BinaryOp]llvm.IntPredicate{
		ir.Eq: llvm.IntEQ, ir.Ne: llvm.IntNE,
		ir.Lt: llvm.IntSLT, ir.Le: llvm.IntSLE, ir.Gt: llvm.IntSGT, ir.Ge: llvm.IntSGE,
		ir.UnEq: llvm.IntEQ, ir.LtGt: llvm.IntNE,
		ir.UnLt: llvm.IntSLT, ir.UnLe: llvm.IntSLE, ir.UnGt: llvm.IntSGT, ir.UnGe: llvm.IntSGE,
	}
	unsignedPreds = map[ir.BinaryOp]llvm.IntPredicate{
		ir.Eq: llvm.IntEQ, ir.Ne: llvm.IntNE,
		ir.Lt: llvm.IntULT, ir.Le: llvm.IntULE, ir.Gt: llvm.IntUGT, ir.Ge: llvm.IntUGE,
		ir.UnEq: llvm.IntEQ, ir.LtGt: llvm.IntNE,
		ir.UnLt: llvm.IntULT, ir.UnLe: llvm.IntULE, ir.UnGt: llvm.IntUGT, ir.UnGe: llvm.IntUGE,
	}
	floatPreds = map[ir.BinaryOp]llvm.FloatPredicate{
		ir.Eq: llvm.FloatOEQ, ir.Ne: llvm.FloatUNE,
		ir.Lt: llvm.FloatOLT, ir.Le: llvm.FloatOLE, ir.Gt: llvm.FloatOGT, ir.Ge: llvm.FloatOGE,
		ir.UnEq: llvm.FloatUEQ, ir.LtGt: llvm.FloatONE,
		ir.UnLt: llvm.FloatULT, ir.UnLe: llvm.FloatULE, ir.UnGt: llvm.FloatUGT, ir.UnGe: llvm.FloatUGE,
		ir.Ordered: llvm.FloatORD, ir.Unordered: llvm.FloatUNO,
	}
)

func (g *Generator) compare(b *ir.Binary) llvm.Value {
	x := g.value(b.X)
	y := g.value(b.Y)
	i1 := g.Context.Int1Type()
	t := b.X.Type()

	switch tt := t.(type) {
	case ir.Float:
		return g.builder.CreateFCmp(floatPreds[b.Op], x, y, b.Op.String())
	case ir.Complex:
		pred, ok := floatPreds[b.Op]
		if !ok || (b.Op != ir.Eq && b.Op != ir.Ne) {
			g.fail("unsupported complex comparison %s", b.Op)
		}
		re := g.builder.CreateFCmp(pred, g.builder.CreateExtractValue(x, 0, ""), g.builder.CreateExtractValue(y, 0, ""), "")
		im := g.builder.CreateFCmp(pred, g.builder.CreateExtractValue(x, 1, ""), g.builder.CreateExtractValue(y, 1, ""), "")
		if b.Op == ir.Eq {
			return g.builder.CreateAnd(re, im, "eq")
		}
		return g.builder.CreateOr(re, im, "ne")
	case ir.Vector:
		g.fail("vector comparison of %s", tt)
	}

	// operands of integral type are always ordered
	switch b.Op {
	case ir.Ordered:
		return llvm.ConstInt(i1, 1, false)
	case ir.Unordered:
		return llvm.ConstInt(i1, 0, false)
	}
	preds := signedPreds
	if ir.IsUnsigned(t) || ir.IsPointer(t) {
		preds = unsignedPreds
	}
	pred, ok := preds[b.Op]
	if !ok {
		g.fail("unsupported comparison %s of %s", b.Op, t)
	}
	return g.builder.CreateICmp(pred, x, y, b.Op.String())
}
