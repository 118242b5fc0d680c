package compiler

import (
	"github.com/thiremani/exprlower/ast"
	"github.com/thiremani/exprlower/ir"
	"github.com/thiremani/exprlower/types"
)

// discard evaluates x for its side effects only.
func discard(x ir.Node) ir.Node {
	if x.Type() == ir.VoidType {
		return x
	}
	return ir.Seq(x, ir.Nothing())
}

// lowerAndAnd short circuits. With a void right operand it is a
// conditional statement: if (left) right.
func lowerAndAnd(c *Compiler, e *ast.AndAnd) ir.Node {
	cond := c.conditionOf(c.Lower(e.Left), e.Left.Type())
	if e.Right.Type().Kind() == types.VoidKind {
		return ir.Condition(ir.VoidType, cond, discard(c.LowerDtor(e.Right)), ir.Nothing())
	}
	rhs := c.conditionOf(c.Lower(e.Right), e.Right.Type())
	return ir.ConvertTo(c.irType(e.T), ir.AndIfOf(cond, rhs))
}

// lowerOrOr short circuits. With a void right operand it is a
// conditional statement: if (!left) right.
func lowerOrOr(c *Compiler, e *ast.OrOr) ir.Node {
	cond := c.conditionOf(c.Lower(e.Left), e.Left.Type())
	if e.Right.Type().Kind() == types.VoidKind {
		return ir.Condition(ir.VoidType, ir.Not(cond), discard(c.LowerDtor(e.Right)), ir.Nothing())
	}
	rhs := c.conditionOf(c.Lower(e.Right), e.Right.Type())
	return ir.ConvertTo(c.irType(e.T), ir.OrIfOf(cond, rhs))
}

func lowerNot(c *Compiler, e *ast.Not) ir.Node {
	cond := c.conditionOf(c.Lower(e.X), e.X.Type())
	return ir.ConvertTo(c.irType(e.T), ir.Not(cond))
}

func lowerBool(c *Compiler, e *ast.Bool) ir.Node {
	return c.convertExpr(c.Lower(e.X), e.X.Type(), e.T)
}

func lowerNeg(c *Compiler, e *ast.Neg) ir.Node {
	return ir.Negate(c.Lower(e.X))
}

func lowerCom(c *Compiler, e *ast.Com) ir.Node {
	return ir.Complement(c.Lower(e.X))
}

// lowerCond lowers both arms with their own cleanups, so temporaries
// created in one arm are destroyed on that arm only.
func lowerCond(c *Compiler, e *ast.Cond) ir.Node {
	cond := c.conditionOf(c.Lower(e.Cond), e.Cond.Type())
	then := c.LowerDtor(e.Then)
	els := c.LowerDtor(e.Else)
	if e.T.Kind() == types.VoidKind {
		return ir.Condition(ir.VoidType, cond, discard(then), discard(els))
	}
	then = c.convertExpr(then, e.Then.Type(), e.T)
	els = c.convertExpr(els, e.Else.Type(), e.T)
	return ir.Condition(c.irType(e.T), cond, then, els)
}

func lowerComma(c *Compiler, e *ast.Comma) ir.Node {
	return ir.Seq(c.Lower(e.Left), c.Lower(e.Right))
}

// lowerTuple evaluates the prefix and then each element, yielding the
// last one.
func lowerTuple(c *Compiler, e *ast.Tuple) ir.Node {
	var result ir.Node
	if e.Prefix != nil {
		result = c.Lower(e.Prefix)
	}
	for _, el := range e.Elements {
		result = ir.Seq(result, c.Lower(el))
	}
	if result == nil {
		return ir.Nothing()
	}
	return result
}
