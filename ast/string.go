package ast

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/thiremani/exprlower/token"
)

func printVec(a []Expression) string {
	parts := make([]string, len(a))
	for i, e := range a {
		if e == nil {
			parts[i] = "_"
			continue
		}
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}

func infix(left Expression, op string, right Expression) string {
	var out bytes.Buffer
	out.WriteString("(")
	out.WriteString(left.String())
	out.WriteString(" " + op + " ")
	out.WriteString(right.String())
	out.WriteString(")")
	return out.String()
}

func (e *Integer) String() string { return strconv.FormatInt(e.Value, 10) }
func (e *Real) String() string    { return strconv.FormatFloat(e.Value, 'g', -1, 64) }

func (e *Complex) String() string {
	return fmt.Sprintf("(%g%+gi)", e.Re, e.Im)
}

func (e *String) String() string            { return strconv.Quote(e.Value) }
func (e *Null) String() string              { return "null" }
func (e *ArrayLiteral) String() string      { return "[" + printVec(e.Elements) + "]" }
func (e *ClassReference) String() string    { return e.Decl.Name }
func (e *Halt) String() string              { return "halt" }
func (e *Scope) String() string             { return e.Name }
func (e *TypeExpr) String() string          { return e.T.String() }
func (e *Func) String() string              { return e.Decl.Name }
func (e *Declaration) String() string       { return e.Var.Type.String() + " " + e.Var.Name }
func (e *DotType) String() string           { return e.X.String() }
func (e *DelegatePtr) String() string       { return e.X.String() + ".ptr" }
func (e *DelegateFuncptr) String() string   { return e.X.String() + ".funcptr" }
func (e *ArrayLength) String() string       { return e.X.String() + ".length" }
func (e *Vector) String() string            { return "cast(" + e.T.String() + ")" + e.X.String() }
func (e *Cast) String() string              { return "cast(" + e.T.String() + ")" + e.X.String() }
func (e *Addr) String() string              { return "&" + e.X.String() }
func (e *Ptr) String() string               { return "*" + e.X.String() }
func (e *Not) String() string               { return "!" + e.X.String() }
func (e *Bool) String() string              { return "cast(bool)" + e.X.String() }
func (e *Neg) String() string               { return "-" + e.X.String() }
func (e *Com) String() string               { return "~" + e.X.String() }
func (e *Delete) String() string            { return "delete " + e.X.String() }
func (e *Remove) String() string            { return e.AA.String() + ".remove(" + e.Key.String() + ")" }
func (e *In) String() string                { return infix(e.Key, "in", e.AA) }
func (e *Pow) String() string               { return infix(e.Left, "^^", e.Right) }
func (e *Cat) String() string               { return infix(e.Left, "~", e.Right) }
func (e *AndAnd) String() string            { return infix(e.Left, "&&", e.Right) }
func (e *OrOr) String() string              { return infix(e.Left, "||", e.Right) }
func (e *Comma) String() string             { return infix(e.Left, ",", e.Right) }
func (e *CatAssign) String() string         { return infix(e.Left, "~=", e.Right) }
func (e *Binary) String() string            { return infix(e.Left, e.Operator.String(), e.Right) }
func (e *Equal) String() string             { return infix(e.Left, e.Operator.String(), e.Right) }
func (e *Identity) String() string          { return infix(e.Left, e.Operator.String(), e.Right) }
func (e *Cmp) String() string               { return infix(e.Left, e.Operator.String(), e.Right) }
func (e *BinAssign) String() string         { return infix(e.Left, e.Operator.String(), e.Right) }
func (e *Post) String() string              { return e.X.String() + e.Operator.String() }
func (e *Index) String() string             { return e.X.String() + "[" + e.Index.String() + "]" }
func (e *Call) String() string              { return e.Func.String() + "(" + printVec(e.Args) + ")" }
func (e *Delegate) String() string          { return "&" + e.X.String() + "." + e.Func.Name }
func (e *AssocArrayLiteral) String() string { return "[" + e.pairs() + "]" }

func (e *AssocArrayLiteral) pairs() string {
	parts := make([]string, len(e.Keys))
	for i := range e.Keys {
		parts[i] = e.Keys[i].String() + ": " + e.Values[i].String()
	}
	return strings.Join(parts, ", ")
}

func (e *StructLiteral) String() string {
	return e.Decl.Name + "(" + printVec(e.Elements) + ")"
}

func (e *Assign) String() string {
	op := "="
	if e.Operator == token.CONSTRUCT {
		op = "=:"
	}
	return infix(e.Left, op, e.Right)
}

func (e *Cond) String() string {
	return "(" + e.Cond.String() + " ? " + e.Then.String() + " : " + e.Else.String() + ")"
}

func (e *Tuple) String() string {
	if e.Prefix != nil {
		return "tuple(" + e.Prefix.String() + "; " + printVec(e.Elements) + ")"
	}
	return "tuple(" + printVec(e.Elements) + ")"
}

func (e *Slice) String() string {
	if e.Lower == nil {
		return e.X.String() + "[]"
	}
	return e.X.String() + "[" + e.Lower.String() + " .. " + e.Upper.String() + "]"
}

func (e *DotVar) String() string {
	switch {
	case e.Field != nil:
		return e.X.String() + "." + e.Field.Name
	case e.Func != nil:
		return e.X.String() + "." + e.Func.Name
	default:
		return e.X.String() + "." + e.Var.Name
	}
}

func (e *Var) String() string {
	if e.Func != nil {
		return e.Func.Name
	}
	return e.Decl.Name
}

func (e *SymOff) String() string {
	if e.Offset == 0 {
		return "&" + e.Decl.Name
	}
	return fmt.Sprintf("(&%s + %d)", e.Decl.Name, e.Offset)
}

func (e *This) String() string {
	if e.Super {
		return "super"
	}
	return "this"
}

func (e *New) String() string {
	var out bytes.Buffer
	out.WriteString("new ")
	out.WriteString(e.NewType.String())
	if len(e.Args) > 0 {
		out.WriteString("(" + printVec(e.Args) + ")")
	}
	return out.String()
}

func (e *Assert) String() string {
	if e.Msg != nil {
		return "assert(" + e.X.String() + ", " + e.Msg.String() + ")"
	}
	return "assert(" + e.X.String() + ")"
}
