package compiler

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/thiremani/exprlower/ast"
	"github.com/thiremani/exprlower/ir"
	"github.com/thiremani/exprlower/token"
	"github.com/thiremani/exprlower/types"
)

func assignOp(op token.TokenType, l, r ast.Expression) *ast.Assign {
	e := ast.AssignTo(l, r)
	e.Operator = op
	return e
}

func postblitStruct() *types.StructDecl {
	return &types.StructDecl{
		Name:     "B",
		SizeOf:   4,
		Fields:   []*types.Field{{Name: "x", Type: types.TInt}},
		Postblit: &types.FuncDecl{Name: "B.__postblit", Type: voidFn},
	}
}

func TestSliceCopy(t *testing.T) {
	pbArr := types.DynArray{Elem: postblitStruct().Type()}
	tests := []struct {
		name    string
		array   types.Type
		op      token.TokenType
		bounds  bool
		callees []string
	}{
		{"unchecked", intArr, token.ASSIGN, false, []string{"memcpy"}},
		{"checked", intArr, token.ASSIGN, true, []string{"_d_arraycopy"}},
		{"postblit assign", pbArr, token.ASSIGN, false, []string{"_d_arrayassign"}},
		{"postblit construct", pbArr, token.CONSTRUCT, false, []string{"_d_arrayctor"}},
		{"postblit blit", pbArr, token.BLIT, false, []string{"_d_arraycopy"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCompiler(Options{BoundsCheck: tt.bounds})
			dst := ast.SliceOf(local("a", tt.array), nil, nil)
			n := c.Lower(assignOp(tt.op, dst, local("b", tt.array)))
			require.Equal(t, tt.callees, callees(n))
			require.Equal(t, c.irType(tt.array), n.Type())
			require.Empty(t, c.Errors)
		})
	}
}

func TestAssignLength(t *testing.T) {
	chars := types.DynArray{Elem: types.TChar}
	tests := []struct {
		name  string
		array types.Type
		want  string
	}{
		{"zero init", intArr, "_d_arraysetlengthT"},
		{"non zero init", chars, "_d_arraysetlengthiT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCompiler(Options{})
			length := &ast.ArrayLength{Typed: ast.Typed{T: types.TSizeT}, X: local("a", tt.array)}
			n := c.Lower(ast.AssignTo(length, ast.Int(8, types.TSizeT)))
			require.Equal(t, []string{tt.want}, callees(n))
			require.Equal(t, ir.SizeT, n.Type())
		})
	}
}

func TestAssignStaticArray(t *testing.T) {
	pb := types.StaticArray{Elem: postblitStruct().Type(), Dim: 2}
	plain := types.StaticArray{Elem: types.TInt, Dim: 2}
	make2 := &types.FuncDecl{Name: "make2", Type: types.Function{Result: pb}}

	tests := []struct {
		name    string
		typ     types.Type
		op      token.TokenType
		right   ast.Expression
		callees []string
		elembuf bool
	}{
		{"plain move", plain, token.ASSIGN, local("b", plain), nil, false},
		{"postblit construct", pb, token.CONSTRUCT, local("b", pb), []string{"_d_arrayctor"}, false},
		{"postblit from lvalue", pb, token.ASSIGN, local("b", pb), []string{"_d_arrayassign_l"}, true},
		{"postblit from rvalue", pb, token.ASSIGN, ast.CallFunc(make2), []string{"make2", "_d_arrayassign_r"}, true},
		{"construct from rvalue", pb, token.CONSTRUCT, ast.CallFunc(make2), []string{"make2"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCompiler(Options{})
			n := c.Lower(assignOp(tt.op, local("a", tt.typ), tt.right))
			if tt.callees == nil {
				require.Empty(t, callees(n))
			} else {
				require.Equal(t, tt.callees, callees(n))
			}

			elembuf := false
			ir.Inspect(n, func(x ir.Node) bool {
				if tmp, ok := x.(*ir.Temp); ok && tmp.Hint == "elembuf" {
					elembuf = true
				}
				return true
			})
			require.Equal(t, tt.elembuf, elembuf)
		})
	}
}

func TestConstructBindsReference(t *testing.T) {
	ref := ast.Local("r", types.TInt)
	ref.Storage = ast.Ref

	c := newTestCompiler(Options{})
	n := c.Lower(assignOp(token.CONSTRUCT, ast.Read(ref), local("x", types.TInt)))

	deref, ok := n.(*ir.Unary)
	require.True(t, ok, ir.Dump(n))
	require.Equal(t, ir.Deref, deref.Op)
	bind, ok := deref.X.(*ir.Assign)
	require.True(t, ok)
	require.True(t, bind.Init)
	require.Same(t, c.varOf(ref), bind.Dst)
	src, ok := bind.Src.(*ir.Unary)
	require.True(t, ok)
	require.Equal(t, ir.Addr, src.Op)
	require.Equal(t, ir.PointerTo(c.irType(types.TInt)), bind.Dst.Type())
}
