package compiler

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/thiremani/exprlower/ast"
	"github.com/thiremani/exprlower/ir"
	"github.com/thiremani/exprlower/token"
	"github.com/thiremani/exprlower/types"
)

func topOp(t *testing.T, n ir.Node) ir.BinaryOp {
	t.Helper()
	b, ok := n.(*ir.Binary)
	require.True(t, ok, ir.Dump(n))
	return b.Op
}

func hasLoop(n ir.Node) bool {
	found := false
	ir.Inspect(n, func(n ir.Node) bool {
		if _, ok := n.(*ir.Loop); ok {
			found = true
		}
		return !found
	})
	return found
}

func TestArrayEqualityLengthTerm(t *testing.T) {
	int4 := types.StaticArray{Elem: types.TInt, Dim: 4}
	tests := []struct {
		name string
		typ  types.Type
		op   token.TokenType
		want ir.BinaryOp
	}{
		{"static eq", int4, token.EQL, ir.OrIf},
		{"static ne", int4, token.NEQ, ir.AndIf},
		{"dynamic eq", intArr, token.EQL, ir.AndIf},
		{"dynamic ne", intArr, token.NEQ, ir.OrIf},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCompiler(Options{})
			n := c.Lower(ast.Eq(tt.op, local("a", tt.typ), local("b", tt.typ)))
			require.Equal(t, []string{"memcmp"}, callees(n))
			require.Equal(t, tt.want, topOp(t, n))
			require.Equal(t, ir.BoolType, n.Type())
		})
	}
}

func TestDynamicEqualityGuardsLength(t *testing.T) {
	c := newTestCompiler(Options{})
	n := c.Lower(ast.Eq(token.EQL, local("a", intArr), local("b", intArr)))
	b := n.(*ir.Binary)
	sameLen, ok := b.X.(*ir.Binary)
	require.True(t, ok)
	require.Equal(t, ir.Eq, sameLen.Op)
	require.Equal(t, ir.OrIf, topOp(t, b.Y))
}

func TestArrayEqualityEvaluatesOperandsOnce(t *testing.T) {
	f := &types.FuncDecl{Name: "f", Type: types.Function{Result: intArr}}
	g := &types.FuncDecl{Name: "g", Type: types.Function{Result: intArr}}
	c := newTestCompiler(Options{})
	n := c.Lower(ast.Eq(token.EQL, ast.CallFunc(f), ast.CallFunc(g)))
	require.Equal(t, []string{"f", "g", "memcmp"}, callees(n))
}

func TestStructArrayEquality(t *testing.T) {
	floats := &types.StructDecl{Name: "F", SizeOf: 4, Fields: []*types.Field{{Name: "x", Type: types.TFloat}}}
	custom := &types.StructDecl{Name: "U", SizeOf: 4, UserEq: true, Fields: []*types.Field{{Name: "x", Type: types.TInt}}}
	plain := &types.StructDecl{Name: "P", SizeOf: 4, Fields: []*types.Field{{Name: "x", Type: types.TInt}}}

	tests := []struct {
		name    string
		decl    *types.StructDecl
		callees []string
		loop    bool
	}{
		{"floating fields", floats, []string{"memcmp"}, true},
		{"user equality", custom, []string{"_adEq2"}, false},
		{"bitwise", plain, []string{"memcmp"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			arr := types.DynArray{Elem: tt.decl.Type()}
			c := newTestCompiler(Options{})
			n := c.Lower(ast.Eq(token.EQL, local("a", arr), local("b", arr)))
			if tt.callees == nil {
				require.Empty(t, callees(n))
			} else {
				require.Equal(t, tt.callees, callees(n))
			}
			require.Equal(t, tt.loop, hasLoop(n))
		})
	}
}

func TestSliceBoundsEvaluationOrder(t *testing.T) {
	lo := &types.FuncDecl{Name: "lo", Type: types.Function{Result: types.TSizeT}}
	hi := &types.FuncDecl{Name: "hi", Type: types.Function{Result: types.TSizeT}}

	for _, check := range []bool{false, true} {
		c := newTestCompiler(Options{BoundsCheck: check})
		n := c.Lower(ast.SliceOf(local("a", intArr), ast.CallFunc(lo), ast.CallFunc(hi)))
		got := callees(n)
		require.GreaterOrEqual(t, len(got), 2)
		require.Equal(t, []string{"lo", "hi"}, got[:2])
		if !check {
			require.Len(t, got, 2)
		}
	}
}

func TestSliceBroadcast(t *testing.T) {
	pb := &types.StructDecl{
		Name:     "B",
		SizeOf:   4,
		Fields:   []*types.Field{{Name: "x", Type: types.TInt}},
		Postblit: &types.FuncDecl{Name: "B.__postblit", Type: voidFn},
	}
	pbArr := types.DynArray{Elem: pb.Type()}

	tests := []struct {
		name    string
		array   types.Type
		value   ast.Expression
		callees []string
		loop    bool
	}{
		{"zero", intArr, ast.Int(0, types.TInt), []string{"memset"}, false},
		{"non zero", intArr, ast.Int(7, types.TInt), nil, true},
		{"postblit", pbArr, local("s", pb.Type()), []string{"_d_arraysetassign"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCompiler(Options{})
			e := ast.AssignTo(ast.SliceOf(local("a", tt.array), nil, nil), tt.value)
			e.MemSet = true
			n := c.Lower(e)
			if tt.callees == nil {
				require.Empty(t, callees(n))
			} else {
				require.Equal(t, tt.callees, callees(n))
			}
			require.Equal(t, tt.loop, hasLoop(n))
		})
	}
}

func TestCatAssignElementStoresOnce(t *testing.T) {
	next := &types.FuncDecl{Name: "next", Type: intFn}
	c := newTestCompiler(Options{})
	e := &ast.CatAssign{Typed: ast.Typed{T: intArr}, Left: local("a", intArr), Right: ast.CallFunc(next)}
	n := c.Lower(e)
	require.Equal(t, []string{"next", "_d_arrayappendcTX"}, callees(n))
}

func TestLoweringIsRepeatable(t *testing.T) {
	int4 := types.StaticArray{Elem: types.TInt, Dim: 4}
	idx := ast.At(local("a", intArr), local("i", types.TSizeT))
	exprs := map[string]ast.Expression{
		"static eq":  ast.Eq(token.EQL, local("a", int4), local("b", int4)),
		"dynamic ne": ast.Eq(token.NEQ, local("a", intArr), local("b", intArr)),
		"concat":     ast.Concat(ast.Concat(local("a", intArr), local("b", intArr), intArr), local("c", intArr), intArr),
		"slice":      ast.SliceOf(local("a", intArr), local("lo", types.TSizeT), local("hi", types.TSizeT)),
		"index":      idx,
	}
	for name, e := range exprs {
		t.Run(name, func(t *testing.T) {
			first := ir.Dump(newTestCompiler(Options{BoundsCheck: true}).Lower(e))
			second := ir.Dump(newTestCompiler(Options{BoundsCheck: true}).Lower(e))
			require.Equal(t, first, second)
		})
	}
}

func TestRelationalComparisons(t *testing.T) {
	tick := &types.FuncDecl{Name: "tick", Type: intFn}
	tests := []struct {
		name    string
		left    ast.Expression
		right   ast.Expression
		op      token.TokenType
		callees []string
		want    ir.BinaryOp
	}{
		{"array less", local("a", intArr), local("b", intArr), token.LSS, []string{"_adCmp2"}, ir.Lt},
		{"float unordered less", local("x", types.TDouble), local("y", types.TDouble), token.UL, nil, ir.UnLt},
		{"int unordered less", local("i", types.TInt), local("j", types.TInt), token.UL, nil, ir.Lt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCompiler(Options{})
			n := c.Lower(ast.Compare(tt.op, tt.left, tt.right))
			if tt.callees == nil {
				require.Empty(t, callees(n))
			} else {
				require.Equal(t, tt.callees, callees(n))
			}
			require.Equal(t, tt.want, topOp(t, n))
		})
	}

	t.Run("ordered arrays keep the call", func(t *testing.T) {
		c := newTestCompiler(Options{})
		n := c.Lower(ast.Compare(token.LEG, local("a", intArr), local("b", intArr)))
		require.Equal(t, []string{"_adCmp2"}, callees(n))
		seq, ok := n.(*ir.Compound)
		require.True(t, ok)
		require.Equal(t, ir.BoolOf(true), seq.Second)
	})

	t.Run("unordered integers keep side effects", func(t *testing.T) {
		c := newTestCompiler(Options{})
		n := c.Lower(ast.Compare(token.UNORD, ast.CallFunc(tick), local("j", types.TInt)))
		require.Equal(t, []string{"tick"}, callees(n))
		seq, ok := n.(*ir.Compound)
		require.True(t, ok)
		require.Equal(t, ir.BoolOf(false), seq.Second)
	})
}

func TestInAssocArray(t *testing.T) {
	c := newTestCompiler(Options{})
	e := &ast.In{Typed: ast.Typed{T: types.Pointer{Elem: types.TInt}}, Key: ast.Int(3, types.TInt), AA: local("aa", intAA)}
	n := c.Lower(e)
	require.Equal(t, []string{"_aaInX"}, callees(n))
	require.Equal(t, c.irType(e.T), n.Type())
}
