package compiler

import (
	"github.com/thiremani/exprlower/ast"
	"github.com/thiremani/exprlower/ir"
	"github.com/thiremani/exprlower/token"
	"github.com/thiremani/exprlower/types"
)

// opClass separates the integer and floating point forms of an operator.
type opClass int

const (
	intOps opClass = iota
	floatOps
)

// opKey is used as the key for binary operator lookups.
type opKey struct {
	Operator token.TokenType
	Class    opClass
}

// binaryOps maps a source operator and operand class to the IR operator.
// Bitwise and shift operators only exist for integers.
var binaryOps = map[opKey]ir.BinaryOp{
	{token.ADD, intOps}:   ir.Add,
	{token.ADD, floatOps}: ir.Add,
	{token.SUB, intOps}:   ir.Sub,
	{token.SUB, floatOps}: ir.Sub,
	{token.MUL, intOps}:   ir.Mul,
	{token.MUL, floatOps}: ir.Mul,
	{token.QUO, intOps}:   ir.Div,
	{token.QUO, floatOps}: ir.RDiv,
	{token.REM, intOps}:   ir.Mod,
	{token.REM, floatOps}: ir.FMod,

	{token.AND, intOps}:  ir.And,
	{token.OR, intOps}:   ir.Or,
	{token.XOR, intOps}:  ir.Xor,
	{token.SHL, intOps}:  ir.Shl,
	{token.SHR, intOps}:  ir.Shr,
	{token.USHR, intOps}: ir.UShr,
}

func classOf(t types.Type) opClass {
	if types.IsFloating(t) {
		return floatOps
	}
	return intOps
}

// binaryOp looks up the IR operator for op applied to a left operand of
// type t.
func binaryOp(op token.TokenType, t types.Type) ir.BinaryOp {
	code, ok := binaryOps[opKey{op, classOf(t)}]
	if !ok {
		panic("internal: no operator " + op.String() + " for " + t.String())
	}
	return code
}

func lowerBinary(c *Compiler, e *ast.Binary) ir.Node {
	x, y := c.Lower(e.Left), c.Lower(e.Right)
	return c.binaryValue(e.Operator, e.Left.Type(), e.Right.Type(), e.T, x, y)
}

// binaryValue applies op to lowered operands of types t1 and t2, giving
// a value of type rt.
func (c *Compiler) binaryValue(op token.TokenType, t1, t2, rt types.Type, x, y ir.Node) ir.Node {
	if op == token.ADD || op == token.SUB {
		if t1.Kind() == types.PointerKind || t2.Kind() == types.PointerKind {
			return c.pointerArith(op, t1, t2, rt, x, y)
		}
		if isMixedComplex(t1, t2) {
			return c.mixedComplex(op, t1, rt, x, y)
		}
	}
	return ir.Binop(binaryOp(op, t1), c.irType(rt), x, y)
}

// pointerArith handles pointer plus or minus an integer, whose byte
// offset is already scaled, and the difference of two pointers.
func (c *Compiler) pointerArith(op token.TokenType, t1, t2, rt types.Type, x, y ir.Node) ir.Node {
	it := c.irType(rt)
	switch {
	case t1.Kind() == types.PointerKind && t2.Kind() == types.PointerKind:
		if op != token.SUB {
			panic("internal: adding two pointers")
		}
		diff := ir.Binop(ir.Sub, ir.I64, ir.ConvertTo(ir.I64, x), ir.ConvertTo(ir.I64, y))
		return ir.ConvertTo(it, diff)
	case t1.Kind() == types.PointerKind:
		off := ir.ConvertTo(ir.I64, y)
		if op == token.SUB {
			off = ir.Negate(off)
		}
		return ir.NopTo(it, ir.Offset(x, off))
	}
	if op == token.SUB {
		panic("internal: subtracting a pointer from an integer")
	}
	// integer + pointer: keep the integer evaluated first
	xs := ir.MaybeSave(x)
	sum := ir.NopTo(it, ir.Offset(y, ir.ConvertTo(ir.I64, xs)))
	return ir.Seq(sideEffectsOf(xs), sum)
}

func isMixedComplex(t1, t2 types.Type) bool {
	return (types.IsReal(t1) && types.IsImaginary(t2)) ||
		(types.IsImaginary(t1) && types.IsReal(t2))
}

// mixedComplex builds the complex value re + im*i from one real and one
// imaginary operand. For subtraction the right operand is negated.
func (c *Compiler) mixedComplex(op token.TokenType, t1, rt types.Type, x, y ir.Node) ir.Node {
	ct, ok := c.irType(rt).(ir.Complex)
	if !ok {
		panic("internal: real and imaginary operands with non-complex result " + rt.String())
	}
	part := ct.Part()
	x = ir.ConvertTo(part, x)
	y = ir.ConvertTo(part, y)
	if op == token.SUB {
		y = ir.Negate(y)
	}
	if types.IsReal(t1) {
		return ir.ComplexFrom(ct, x, y)
	}
	xs := ir.MaybeSave(x)
	return ir.Seq(sideEffectsOf(xs), ir.ComplexFrom(ct, y, xs))
}

// powBuiltins picks the math builtin for a real operand width.
var powBuiltins = map[uint32]ir.Builtin{
	32: ir.Powf,
	64: ir.Pow,
	80: ir.Powl,
}

func lowerPow(c *Compiler, e *ast.Pow) ir.Node {
	x, y := c.Lower(e.Left), c.Lower(e.Right)
	return c.powValue(e, e.Left.Type(), e.Right.Type(), x, y)
}

// powValue calls the pow builtin of the operand width. Integral operands
// are raised in double precision.
func (c *Compiler) powValue(e ast.Expression, t1, t2 types.Type, x, y ir.Node) ir.Node {
	rt := e.Type()
	if types.IsArray(rt) {
		return c.errorf(e, "Array operation %s not implemented", e.String())
	}

	powType := rt
	if types.IsIntegral(powType) {
		powType = types.TDouble
	}
	ft, ok := powType.(types.Float)
	if !ok || ft.Imaginary {
		return c.errorf(e, "%s ^^ %s is not supported", t1, t2)
	}
	fn := powBuiltins[ft.Width]

	x = c.convertExpr(x, t1, powType)
	y = c.convertExpr(y, t2, powType)
	return c.convertExpr(ir.CallBuiltin(fn, x, y), powType, rt)
}
