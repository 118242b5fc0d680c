package main

import (
	"github.com/thiremani/exprlower/ast"
	"github.com/thiremani/exprlower/token"
	"github.com/thiremani/exprlower/types"
)

// Sample is a typed expression lowered and emitted as the body of a
// function taking Params.
type Sample struct {
	Name   string
	Doc    string
	Params []*ast.VarDecl
	Expr   ast.Expression
}

var (
	intArray  = types.DynArray{Elem: types.TInt}
	intLookup = types.AssocArray{Key: types.TInt, Value: types.TInt}
)

func at(file string, line int) token.Token {
	return token.Token{FileName: file, Line: line}
}

// samples builds the catalog afresh, so every run lowers trees no other
// compiler has seen.
func samples() []Sample {
	var out []Sample
	add := func(s Sample) { out = append(out, s) }

	{
		a, b := ast.Local("a", types.TInt), ast.Local("b", types.TInt)
		sum := ast.Bin(token.ADD, ast.Read(a), ast.Read(b), types.TInt)
		add(Sample{
			Name:   "arith",
			Doc:    "(a + b) * b on int",
			Params: []*ast.VarDecl{a, b},
			Expr:   ast.Bin(token.MUL, sum, ast.Read(b), types.TInt),
		})
	}
	{
		x, y := ast.Local("x", types.TDouble), ast.Local("y", types.TDouble)
		add(Sample{
			Name:   "unordered",
			Doc:    "x !<>= y on double",
			Params: []*ast.VarDecl{x, y},
			Expr:   ast.Compare(token.UNORD, ast.Read(x), ast.Read(y)),
		})
	}
	{
		arr, i := ast.Local("arr", intArray), ast.Local("i", types.TSizeT)
		idx := ast.At(ast.Read(arr), ast.Read(i))
		idx.Token = at("index.d", 3)
		add(Sample{
			Name:   "index",
			Doc:    "arr[i] with bounds checking",
			Params: []*ast.VarDecl{arr, i},
			Expr:   idx,
		})
	}
	{
		arr := ast.Local("arr", intArray)
		lo, hi := ast.Local("lo", types.TSizeT), ast.Local("hi", types.TSizeT)
		add(Sample{
			Name:   "slice",
			Doc:    "arr[lo .. hi] with bounds checking",
			Params: []*ast.VarDecl{arr, lo, hi},
			Expr:   ast.SliceOf(ast.Read(arr), ast.Read(lo), ast.Read(hi)),
		})
	}
	{
		arr, i, v := ast.Local("arr", intArray), ast.Local("i", types.TSizeT), ast.Local("v", types.TInt)
		add(Sample{
			Name:   "store",
			Doc:    "arr[i] = v",
			Params: []*ast.VarDecl{arr, i, v},
			Expr:   ast.AssignTo(ast.At(ast.Read(arr), ast.Read(i)), ast.Read(v)),
		})
	}
	{
		s, t := ast.Local("s", types.TString), ast.Local("t", types.TString)
		add(Sample{
			Name:   "concat",
			Doc:    "s ~ t on strings",
			Params: []*ast.VarDecl{s, t},
			Expr:   ast.Concat(ast.Read(s), ast.Read(t), types.TString),
		})
	}
	{
		m, k := ast.Local("m", intLookup), ast.Local("k", types.TInt)
		add(Sample{
			Name:   "lookup",
			Doc:    "m[k] on int[int]",
			Params: []*ast.VarDecl{m, k},
			Expr:   ast.At(ast.Read(m), ast.Read(k)),
		})
	}
	{
		p, n := ast.Local("p", types.Pointer{Elem: types.TInt}), ast.Local("n", types.TInt)
		nonNull := ast.Eq(token.NEQ, ast.Read(p), &ast.Null{Typed: ast.Typed{T: p.Type}})
		positive := ast.Compare(token.GTR, ast.Read(n), ast.Int(0, types.TInt))
		add(Sample{
			Name:   "guard",
			Doc:    "p != null && n > 0",
			Params: []*ast.VarDecl{p, n},
			Expr:   &ast.AndAnd{Typed: ast.Typed{T: types.TBool}, Left: nonNull, Right: positive},
		})
	}
	{
		scale := &types.FuncDecl{Name: "scale", Type: types.Function{
			Params: []types.Type{types.TDouble, types.TInt},
			Result: types.TDouble,
		}}
		x := ast.Local("x", types.TDouble)
		add(Sample{
			Name:   "call",
			Doc:    "scale(x, 3)",
			Params: []*ast.VarDecl{x},
			Expr:   ast.CallFunc(scale, ast.Read(x), ast.Int(3, types.TInt)),
		})
	}
	return out
}

// lookupSamples returns the named samples, or all of them for no names.
func lookupSamples(names []string) ([]Sample, []string) {
	all := samples()
	if len(names) == 0 {
		return all, nil
	}
	var found []Sample
	var missing []string
	for _, name := range names {
		ok := false
		for _, s := range all {
			if s.Name == name {
				found = append(found, s)
				ok = true
				break
			}
		}
		if !ok {
			missing = append(missing, name)
		}
	}
	return found, missing
}
