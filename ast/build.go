package ast

import (
	"github.com/thiremani/exprlower/token"
	"github.com/thiremani/exprlower/types"
)

// Builders for drivers that assemble typed trees directly.

func typed(t types.Type) Typed { return Typed{T: t} }

// Local declares a frame variable.
func Local(name string, t types.Type) *VarDecl {
	return &VarDecl{Name: name, Type: t}
}

// Read references a variable.
func Read(vd *VarDecl) *Var {
	return &Var{Typed: typed(vd.Type), Decl: vd}
}

// FuncVar references a function by name.
func FuncVar(fd *types.FuncDecl) *Var {
	return &Var{Typed: typed(fd.Type), Func: fd}
}

func Int(v int64, t types.Type) *Integer {
	return &Integer{Typed: typed(t), Value: v}
}

func Float(v float64, t types.Type) *Real {
	return &Real{Typed: typed(t), Value: v}
}

func Str(s string, t types.Type) *String {
	return &String{Typed: typed(t), Value: s}
}

func Bin(op token.TokenType, l, r Expression, t types.Type) *Binary {
	return &Binary{Typed: typed(t), Operator: op, Left: l, Right: r}
}

// Eq builds == or != between l and r.
func Eq(op token.TokenType, l, r Expression) *Equal {
	return &Equal{Typed: typed(types.TBool), Operator: op, Left: l, Right: r}
}

func Compare(op token.TokenType, l, r Expression) *Cmp {
	return &Cmp{Typed: typed(types.TBool), Operator: op, Left: l, Right: r}
}

func Concat(l, r Expression, t types.Type) *Cat {
	return &Cat{Typed: typed(t), Left: l, Right: r}
}

// At indexes an array, pointer or associative array.
func At(x, index Expression) *Index {
	var t types.Type
	if aa, ok := x.Type().(types.AssocArray); ok {
		t = aa.Value
	} else {
		t = types.Elem(x.Type())
	}
	return &Index{Typed: typed(t), X: x, Index: index}
}

// SliceOf slices x between lwr and upr; both nil slices the whole array.
func SliceOf(x, lwr, upr Expression) *Slice {
	return &Slice{Typed: typed(types.DynArray{Elem: types.Elem(x.Type())}), X: x, Lower: lwr, Upper: upr}
}

// CallFunc calls fd directly.
func CallFunc(fd *types.FuncDecl, args ...Expression) *Call {
	return &Call{Typed: typed(fd.Type.Result), Func: FuncVar(fd), Args: args}
}

// CallMethod calls fd on the object x.
func CallMethod(x Expression, fd *types.FuncDecl, args ...Expression) *Call {
	dv := &DotVar{Typed: typed(fd.Type), X: x, Func: fd}
	return &Call{Typed: typed(fd.Type.Result), Func: dv, Args: args}
}

func AssignTo(l, r Expression) *Assign {
	return &Assign{Typed: typed(l.Type()), Operator: token.ASSIGN, Left: l, Right: r}
}

func Declare(vd *VarDecl) *Declaration {
	return &Declaration{Typed: typed(types.TVoid), Var: vd}
}

func Sequence(l, r Expression) *Comma {
	return &Comma{Typed: typed(r.Type()), Left: l, Right: r}
}
