package compiler

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/thiremani/exprlower/ast"
	"github.com/thiremani/exprlower/ir"
	"github.com/thiremani/exprlower/token"
	"github.com/thiremani/exprlower/types"
)

var (
	intArr  = types.DynArray{Elem: types.TInt}
	intPtr  = types.Pointer{Elem: types.TInt}
	intAA   = types.AssocArray{Key: types.TInt, Value: types.TInt}
	voidFn  = types.Function{Result: types.TVoid}
	intFn   = types.Function{Result: types.TInt}
	tIdoubl = types.Float{Width: 64, Imaginary: true}
	tCdoubl = types.Complex{Width: 64}
)

func newTestCompiler(opts Options) *Compiler {
	return NewCompiler(Context{Options: opts})
}

func local(name string, t types.Type) *ast.Var {
	return ast.Read(ast.Local(name, t))
}

// callees lists the direct calls of n in the order they are made.
func callees(n ir.Node) []string {
	var names []string
	for _, call := range ir.Calls(n) {
		names = append(names, ir.Callee(call))
	}
	return names
}

func errorMessages(c *Compiler) []string {
	msgs := make([]string, len(c.Errors))
	for i, e := range c.Errors {
		msgs[i] = e.Msg
	}
	return msgs
}

func classType(name string) types.Class {
	return types.Class{Decl: &types.ClassDecl{Name: name, SizeOf: 16}}
}

func TestLowerersCoverEveryKind(t *testing.T) {
	for k := ast.ExprKind(0); k < ast.NumKinds; k++ {
		require.NotNil(t, lowerers[k], k.String())
	}
}

func TestLibcallTable(t *testing.T) {
	for lc := Libcall(0); lc < NumLibcalls; lc++ {
		name := lc.String()
		require.NotEmpty(t, name)
		got, ok := LibcallNamed(name)
		require.True(t, ok, name)
		require.Equal(t, lc, got)
		require.Len(t, lc.Signature().Params, len(libcalls[lc].Params), name)
	}
	_, ok := LibcallNamed("_d_nonexistent")
	require.False(t, ok)
}

func TestLibcallRejectsBadArguments(t *testing.T) {
	require.Panics(t, func() { libcall(Assert) })
	require.Panics(t, func() { libcall(ArrayBounds, ir.IntOf(ir.U32, 1), ir.IntOf(ir.U32, 2)) })
	require.NotPanics(t, func() { libcall(ArrayBounds, stringValue("a.d"), ir.IntOf(ir.I32, 3)) })
}

func TestNumericLiterals(t *testing.T) {
	c := newTestCompiler(Options{})
	require.Equal(t, &ir.IntConst{T: ir.I32, Val: 7}, c.Lower(ast.Int(7, types.TInt)))
	require.Equal(t, &ir.FloatConst{T: ir.F64, Val: 1.5}, c.Lower(ast.Float(1.5, types.TDouble)))

	cplx := &ast.Complex{Typed: ast.Typed{T: tCdoubl}, Re: 1, Im: 2}
	require.Equal(t, &ir.ComplexConst{T: ir.Complex{Bits: 64}, Re: 1, Im: 2}, c.Lower(cplx))
	require.Empty(t, c.Errors)
}

func TestStringLiterals(t *testing.T) {
	tests := []struct {
		name     string
		typ      types.Type
		value    string
		wantData string
		wantLen  int64 // -1 when the result carries no length
	}{
		{"char slice", types.DynArray{Elem: types.TChar}, "hé", "h\xc3\xa9\x00", 3},
		{"wchar slice", types.DynArray{Elem: types.TWchar}, "hé", "h\x00\xe9\x00\x00\x00", 2},
		{"dchar pointer", types.Pointer{Elem: types.TDchar}, "a", "a\x00\x00\x00\x00\x00\x00\x00", -1},
		{"static padded", types.StaticArray{Elem: types.TChar, Dim: 5}, "abc", "abc\x00\x00", -1},
		{"static cut", types.StaticArray{Elem: types.TChar, Dim: 2}, "abc", "ab", -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCompiler(Options{})
			n := c.Lower(ast.Str(tt.value, tt.typ))
			require.Empty(t, c.Errors)

			var buf *ir.StringConst
			ir.Inspect(n, func(x ir.Node) bool {
				if s, ok := x.(*ir.StringConst); ok {
					buf = s
				}
				return true
			})
			require.NotNil(t, buf)
			require.Equal(t, tt.wantData, string(buf.Data))

			if tt.wantLen >= 0 {
				ctor, ok := n.(*ir.Ctor)
				require.True(t, ok)
				require.Equal(t, &ir.IntConst{T: ir.SizeT, Val: tt.wantLen}, ctor.Elems[0].Value)
			}
		})
	}
}

func TestStringLiteralOfBadType(t *testing.T) {
	c := newTestCompiler(Options{})
	n := c.Lower(ast.Str("x", types.TInt))
	require.IsType(t, &ir.Error{}, n)
	require.Contains(t, errorMessages(c)[0], "Invalid type for string constant")
}

func TestNullLiteralIsZeroOfType(t *testing.T) {
	c := newTestCompiler(Options{})
	for _, typ := range []types.Type{intArr, intAA, intPtr, types.Delegate{Func: voidFn}} {
		n := c.Lower(&ast.Null{Typed: ast.Typed{T: typ}})
		require.Equal(t, &ir.Zero{T: c.irType(typ)}, n, typ.String())
	}
}

func TestBinaryOperatorSelection(t *testing.T) {
	tests := []struct {
		op   token.TokenType
		typ  types.Type
		want ir.BinaryOp
	}{
		{token.ADD, types.TInt, ir.Add},
		{token.ADD, types.TDouble, ir.Add},
		{token.QUO, types.TInt, ir.Div},
		{token.QUO, types.TDouble, ir.RDiv},
		{token.REM, types.TInt, ir.Mod},
		{token.REM, types.TDouble, ir.FMod},
		{token.USHR, types.TInt, ir.UShr},
		{token.SHR, types.TInt, ir.Shr},
		{token.XOR, types.TLong, ir.Xor},
	}
	for _, tt := range tests {
		t.Run(tt.op.String()+" "+tt.typ.String(), func(t *testing.T) {
			c := newTestCompiler(Options{})
			n := c.Lower(ast.Bin(tt.op, local("x", tt.typ), local("y", tt.typ), tt.typ))
			bin, ok := n.(*ir.Binary)
			require.True(t, ok)
			require.Equal(t, tt.want, bin.Op)
			require.Equal(t, c.irType(tt.typ), bin.T)
		})
	}
}

func TestBitwiseOperatorOnFloatPanics(t *testing.T) {
	c := newTestCompiler(Options{})
	require.Panics(t, func() {
		c.Lower(ast.Bin(token.AND, local("x", types.TDouble), local("y", types.TDouble), types.TDouble))
	})
}

func TestIntegerPlusPointerEvaluatesIntegerFirst(t *testing.T) {
	c := newTestCompiler(Options{})
	f := &types.FuncDecl{Name: "f", Type: intFn}
	n := c.Lower(ast.Bin(token.ADD, ast.CallFunc(f), local("p", intPtr), intPtr))

	seq, ok := n.(*ir.Compound)
	require.True(t, ok)
	require.IsType(t, &ir.Save{}, seq.First)
	require.Equal(t, []string{"f"}, callees(n))
}

func TestRealPlusImaginaryBuildsComplex(t *testing.T) {
	c := newTestCompiler(Options{})
	n := c.Lower(ast.Bin(token.ADD, local("re", types.TDouble), local("im", tIdoubl), tCdoubl))
	bin, ok := n.(*ir.Binary)
	require.True(t, ok)
	require.Equal(t, ir.MakeComplex, bin.Op)
	require.Equal(t, ir.Complex{Bits: 64}, bin.T)
}

func TestPow(t *testing.T) {
	tests := []struct {
		name string
		typ  types.Type
		want string
	}{
		{"float", types.TFloat, "powf"},
		{"double", types.TDouble, "pow"},
		{"real", types.TReal, "powl"},
		{"int promoted to double", types.TInt, "pow"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCompiler(Options{})
			e := &ast.Pow{Typed: ast.Typed{T: tt.typ}, Left: local("x", tt.typ), Right: local("y", tt.typ)}
			n := c.Lower(e)
			require.Empty(t, c.Errors)
			require.Equal(t, []string{tt.want}, callees(n))
			require.Equal(t, c.irType(tt.typ), n.Type())
		})
	}

	c := newTestCompiler(Options{})
	e := &ast.Pow{Typed: ast.Typed{T: intArr}, Left: local("a", intArr), Right: local("b", intArr)}
	require.IsType(t, &ir.Error{}, c.Lower(e))
	require.Contains(t, errorMessages(c)[0], "Array operation")
}

func TestIndexBoundsCheck(t *testing.T) {
	idx := func() *ast.Index { return ast.At(local("a", intArr), local("i", types.TSizeT)) }

	c := newTestCompiler(Options{BoundsCheck: true})
	n := c.Lower(idx())
	require.Equal(t, []string{"_d_arraybounds"}, callees(n))

	c = newTestCompiler(Options{})
	n = c.Lower(idx())
	require.Empty(t, callees(n))
	require.IsType(t, &ir.Index{}, n)

	c = newTestCompiler(Options{BoundsCheck: true})
	e := idx()
	e.InBounds = true
	require.Empty(t, callees(c.Lower(e)))
}

func TestAssocArrayIndex(t *testing.T) {
	tests := []struct {
		name       string
		opts       Options
		modifiable bool
		want       []string
	}{
		{"insert", Options{}, true, []string{"_aaGetY"}},
		{"read", Options{}, false, []string{"_aaGetRvalueX"}},
		{"checked read", Options{BoundsCheck: true}, false, []string{"_aaGetRvalueX", "_d_arraybounds"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCompiler(tt.opts)
			e := ast.At(local("aa", intAA), local("k", types.TInt))
			e.Modifiable = tt.modifiable
			n := c.Lower(e)
			require.Equal(t, tt.want, callees(n))
			require.Equal(t, ir.I32, n.Type())
		})
	}
}

func TestSliceBounds(t *testing.T) {
	c := newTestCompiler(Options{BoundsCheck: true})
	e := ast.SliceOf(local("a", intArr), local("lo", types.TSizeT), local("hi", types.TSizeT))
	n := c.Lower(e)
	require.Equal(t, []string{"_d_arraybounds", "_d_arraybounds"}, callees(n))
	require.Equal(t, c.irType(intArr), n.Type())

	c = newTestCompiler(Options{BoundsCheck: true})
	e = ast.SliceOf(local("a", intArr), ast.Int(0, types.TSizeT), local("hi", types.TSizeT))
	e.UpperInBounds = true
	require.Empty(t, callees(c.Lower(e)))
}

func TestConcatenation(t *testing.T) {
	c := newTestCompiler(Options{})
	ab := ast.Concat(local("a", intArr), local("b", intArr), intArr)
	require.Equal(t, []string{"_d_arraycatT"}, callees(c.Lower(ab)))

	abc := ast.Concat(ast.Concat(local("a", intArr), local("b", intArr), intArr), local("c", intArr), intArr)
	n := c.Lower(abc)
	require.Equal(t, []string{"_d_arraycatnTX"}, callees(n))
	require.Equal(t, c.irType(intArr), n.Type())
	require.Len(t, catLeaves(abc), 3)
}

func TestCatAssign(t *testing.T) {
	str := types.DynArray{Elem: types.TChar}
	tests := []struct {
		name  string
		left  *ast.Var
		right ast.Expression
		want  string
	}{
		{"element", local("a", intArr), local("i", types.TInt), "_d_arrayappendcTX"},
		{"array", local("a", intArr), local("b", intArr), "_d_arrayappendT"},
		{"dchar to char[]", local("s", str), local("d", types.TDchar), "_d_arrayappendcd"},
		{"dchar to wchar[]", local("w", types.DynArray{Elem: types.TWchar}), local("d", types.TDchar), "_d_arrayappendwd"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCompiler(Options{})
			e := &ast.CatAssign{Typed: ast.Typed{T: tt.left.T}, Left: tt.left, Right: tt.right}
			n := c.Lower(e)
			require.Equal(t, []string{tt.want}, callees(n))
			require.Equal(t, c.irType(tt.left.T), n.Type())
		})
	}
}

func TestLowerDtorProtectsCalls(t *testing.T) {
	c := newTestCompiler(Options{})
	dtor := &types.FuncDecl{Name: "destroy", Type: voidFn}
	vd := ast.Local("s", types.TInt)
	vd.Edtor = ast.CallFunc(dtor)
	f := &types.FuncDecl{Name: "f", Type: intFn}

	n := c.LowerDtor(ast.Sequence(ast.Declare(vd), ast.CallFunc(f)))
	seq, ok := n.(*ir.Compound)
	require.True(t, ok)
	region, ok := seq.First.(*ir.TryFinally)
	require.True(t, ok)
	require.Equal(t, []string{"destroy"}, callees(region.Cleanup))
	require.Equal(t, []string{"f", "destroy"}, callees(n))
	require.Empty(t, c.Ledger.Pending())
	require.NotPanics(t, c.Finish)
}

func TestLowerDtorRunsInReverseOrder(t *testing.T) {
	c := newTestCompiler(Options{})
	first := ast.Local("a", types.TInt)
	first.Edtor = ast.CallFunc(&types.FuncDecl{Name: "destroyA", Type: voidFn})
	second := ast.Local("b", types.TInt)
	second.Edtor = ast.CallFunc(&types.FuncDecl{Name: "destroyB", Type: voidFn})

	e := ast.Sequence(ast.Sequence(ast.Declare(first), ast.Declare(second)), ast.Int(1, types.TInt))
	n := c.LowerDtor(e)
	require.Equal(t, []string{"destroyB", "destroyA"}, callees(n))
	require.NotPanics(t, c.Finish)
}

func TestFinishReportsPendingScopes(t *testing.T) {
	c := newTestCompiler(Options{})
	vd := ast.Local("s", types.TInt)
	vd.Edtor = ast.CallFunc(&types.FuncDecl{Name: "destroy", Type: voidFn})
	c.Lower(ast.Declare(vd))
	require.Len(t, c.Ledger.Pending(), 1)
	require.Panics(t, c.Finish)
}

func TestNoScopeVariablesAreNotDestroyed(t *testing.T) {
	c := newTestCompiler(Options{})
	vd := ast.Local("s", types.TInt)
	vd.Edtor = ast.CallFunc(&types.FuncDecl{Name: "destroy", Type: voidFn})
	vd.NoScope = true
	c.Lower(ast.Declare(vd))
	require.Empty(t, c.Ledger.Pending())
}

func TestAssert(t *testing.T) {
	cond := func() ast.Expression { return local("ok", types.TBool) }
	assert := func(x, msg ast.Expression) *ast.Assert {
		return &ast.Assert{Typed: ast.Typed{T: types.TVoid}, X: x, Msg: msg}
	}

	c := newTestCompiler(Options{})
	require.IsType(t, &ir.Empty{}, c.Lower(assert(cond(), nil)))

	c = newTestCompiler(Options{Asserts: true})
	n := c.Lower(assert(cond(), nil))
	require.IsType(t, &ir.Cond{}, n)
	require.Equal(t, []string{"_d_assert"}, callees(n))

	n = c.Lower(assert(cond(), ast.Str("boom", types.TString)))
	require.Equal(t, []string{"_d_assert_msg"}, callees(n))

	c = NewCompiler(Context{Func: &types.FuncDecl{Name: "__unittest", Unittest: true}, Options: Options{Asserts: true}})
	require.Equal(t, []string{"_d_unittest"}, callees(c.Lower(assert(cond(), nil))))
	require.Equal(t, []string{"_d_unittest_msg"}, callees(c.Lower(assert(cond(), ast.Str("boom", types.TString)))))
}

func TestAssertClassInvariant(t *testing.T) {
	assert := func(x ast.Expression) *ast.Assert {
		return &ast.Assert{Typed: ast.Typed{T: types.TVoid}, X: x}
	}
	ct := classType("C")

	c := newTestCompiler(Options{Asserts: true, Invariants: true})
	require.Equal(t, []string{"_d_invariant", "_d_assert"}, callees(c.Lower(assert(local("obj", ct)))))

	c = newTestCompiler(Options{Asserts: true})
	require.Equal(t, []string{"_d_assert"}, callees(c.Lower(assert(local("obj", ct)))))

	com := classType("I")
	com.Decl.COM = true
	c = newTestCompiler(Options{Asserts: true, Invariants: true})
	require.Equal(t, []string{"_d_assert"}, callees(c.Lower(assert(local("obj", com)))))

	iface := classType("J")
	iface.Decl.Interface = true
	n := c.Lower(assert(local("obj", iface)))
	require.Equal(t, []string{"_d_interface_cast", "_d_invariant", "_d_assert"}, callees(n))
	require.Contains(t, ir.Dump(n), "@_D6Object7__ClassZ")

	inv := &types.FuncDecl{Name: "S.__invariant", Type: voidFn, NeedsThis: true}
	sd := &types.StructDecl{Name: "S", SizeOf: 4, Fields: []*types.Field{{Name: "x", Type: types.TInt}}, Invariant: inv}
	n = c.Lower(assert(local("p", types.Pointer{Elem: sd.Type()})))
	require.Equal(t, []string{"S.__invariant", "_d_assert"}, callees(n))
}

func TestNew(t *testing.T) {
	ct := classType("C")
	ctor := &types.FuncDecl{Name: "C.this", Type: types.Function{Result: ct}, NeedsThis: true, Ctor: true}
	sd := &types.StructDecl{Name: "S", SizeOf: 4, ZeroInit: true, Fields: []*types.Field{{Name: "x", Type: types.TInt}}}
	opaque := &types.StructDecl{Name: "Opaque"}
	matrix := types.DynArray{Elem: intArr}
	chars := types.DynArray{Elem: types.TChar}

	tests := []struct {
		name string
		e    *ast.New
		want []string
	}{
		{"class", &ast.New{Typed: ast.Typed{T: ct}, NewType: ct}, []string{"_d_newclass"}},
		{"class with constructor", &ast.New{Typed: ast.Typed{T: ct}, NewType: ct, Ctor: ctor}, []string{"_d_newclass", "C.this"}},
		{"class on stack", &ast.New{Typed: ast.Typed{T: ct}, NewType: ct, OnStack: true}, nil},
		{"zero init array", &ast.New{Typed: ast.Typed{T: intArr}, NewType: intArr, Args: []ast.Expression{ast.Int(4, types.TSizeT)}}, []string{"_d_newarrayT"}},
		{"char array", &ast.New{Typed: ast.Typed{T: chars}, NewType: chars, Args: []ast.Expression{ast.Int(4, types.TSizeT)}}, []string{"_d_newarrayiT"}},
		{"two dimensions", &ast.New{Typed: ast.Typed{T: matrix}, NewType: matrix, Args: []ast.Expression{ast.Int(2, types.TSizeT), ast.Int(3, types.TSizeT)}}, []string{"_d_newarraymTX"}},
		{"struct", &ast.New{Typed: ast.Typed{T: types.Pointer{Elem: sd.Type()}}, NewType: sd.Type()}, []string{"_d_newitemT"}},
		{"opaque struct", &ast.New{Typed: ast.Typed{T: types.Pointer{Elem: opaque.Type()}}, NewType: opaque.Type()}, nil},
		{"item", &ast.New{Typed: ast.Typed{T: intPtr}, NewType: types.TInt, Args: []ast.Expression{ast.Int(9, types.TInt)}}, []string{"_d_newitemT"}},
		{"float item", &ast.New{Typed: ast.Typed{T: types.Pointer{Elem: types.TDouble}}, NewType: types.TDouble}, []string{"_d_newitemiT"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCompiler(Options{})
			n := c.Lower(tt.e)
			require.Empty(t, c.Errors)
			require.Equal(t, tt.want, callees(n))
			require.Equal(t, c.irType(tt.e.T), n.Type())
		})
	}
}

func TestNewItemStoresInitialValue(t *testing.T) {
	c := newTestCompiler(Options{})
	e := &ast.New{Typed: ast.Typed{T: intPtr}, NewType: types.TInt, Args: []ast.Expression{ast.Int(9, types.TInt)}}
	seq, ok := c.Lower(e).(*ir.Compound)
	require.True(t, ok)
	store, ok := seq.First.(*ir.Assign)
	require.True(t, ok)
	require.Equal(t, &ir.IntConst{T: ir.I32, Val: 9}, store.Src)
}

func TestNewStructFromArguments(t *testing.T) {
	sd := &types.StructDecl{Name: "S", SizeOf: 8, Fields: []*types.Field{
		{Name: "x", Type: types.TInt},
		{Name: "y", Type: types.TInt, Offset: 4},
	}}
	c := newTestCompiler(Options{})
	e := &ast.New{
		Typed:   ast.Typed{T: types.Pointer{Elem: sd.Type()}},
		NewType: sd.Type(),
		Args:    []ast.Expression{ast.Int(1, types.TInt), ast.Int(2, types.TInt)},
	}
	n := c.Lower(e)
	require.Equal(t, []string{"_d_newitemiT"}, callees(n))

	var ctor *ir.Ctor
	ir.Inspect(n, func(x ir.Node) bool {
		if v, ok := x.(*ir.Ctor); ok && ctor == nil {
			ctor = v
		}
		return true
	})
	require.NotNil(t, ctor)
	require.Len(t, ctor.Elems, 2)
}

func TestDelete(t *testing.T) {
	ct := classType("C")
	iface := classType("I")
	iface.Decl.Interface = true
	withDtor := &types.StructDecl{Name: "D", SizeOf: 4, Dtor: &types.FuncDecl{Name: "D.~this", Type: voidFn}}

	onStack := ast.Local("scoped", ct)
	onStack.OnStack = true

	tests := []struct {
		name string
		x    ast.Expression
		want string
	}{
		{"class", local("obj", ct), "_d_delclass"},
		{"interface", local("obj", iface), "_d_delinterface"},
		{"class on stack", ast.Read(onStack), "_d_callfinalizer"},
		{"array", local("a", intArr), "_d_delarray_t"},
		{"pointer", local("p", intPtr), "_d_delmemory"},
		{"struct with destructor", local("p", types.Pointer{Elem: withDtor.Type()}), "_d_delstruct"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCompiler(Options{})
			n := c.Lower(&ast.Delete{Typed: ast.Typed{T: types.TVoid}, X: tt.x})
			require.Empty(t, c.Errors)
			require.Equal(t, []string{tt.want}, callees(n))
		})
	}

	c := newTestCompiler(Options{})
	n := c.Lower(&ast.Delete{Typed: ast.Typed{T: types.TVoid}, X: local("i", types.TInt)})
	require.IsType(t, &ir.Error{}, n)
	require.Equal(t, []string{"don't know how to delete i"}, errorMessages(c))
}

func TestRemove(t *testing.T) {
	c := newTestCompiler(Options{})
	e := &ast.Remove{Typed: ast.Typed{T: types.TBool}, AA: local("aa", intAA), Key: local("k", types.TInt)}
	require.Equal(t, []string{"_aaDelX"}, callees(c.Lower(e)))

	e = &ast.Remove{Typed: ast.Typed{T: types.TBool}, AA: local("a", intArr), Key: local("k", types.TInt)}
	require.IsType(t, &ir.Error{}, c.Lower(e))
	require.Equal(t, []string{"a is not an associative array"}, errorMessages(c))
}

func TestNotAnExpression(t *testing.T) {
	c := newTestCompiler(Options{})
	c.Lower(&ast.Scope{Typed: ast.Typed{T: types.TVoid}, Name: "std"})
	c.Lower(&ast.TypeExpr{Typed: ast.Typed{T: types.TInt}})
	require.Equal(t, []string{"std is not an expression", "type int is not an expression"}, errorMessages(c))
}

func TestMethodDispatch(t *testing.T) {
	ct := classType("C")
	method := func(final bool) *types.FuncDecl {
		return &types.FuncDecl{Name: "C.m", Type: voidFn, NeedsThis: true, Virtual: true, Final: final, VtblIndex: 3}
	}

	c := newTestCompiler(Options{})
	call, ok := c.Lower(ast.CallMethod(local("obj", ct), method(false))).(*ir.Call)
	require.True(t, ok)
	slot, ok := call.Callee.(*ir.VirtualRef)
	require.True(t, ok)
	require.Equal(t, 3, slot.Slot)
	require.NotNil(t, call.This)

	call, ok = c.Lower(ast.CallMethod(local("obj", ct), method(true))).(*ir.Call)
	require.True(t, ok)
	require.IsType(t, &ir.FuncRef{}, call.Callee)

	super := &ast.This{Typed: ast.Typed{T: ct}, Var: ast.Local("this", ct), Super: true}
	call, ok = c.Lower(ast.CallMethod(super, method(false))).(*ir.Call)
	require.True(t, ok)
	require.IsType(t, &ir.FuncRef{}, call.Callee)
}

func TestMethodOnStaticInitLiteralCopiesImage(t *testing.T) {
	sd := &types.StructDecl{Name: "S", SizeOf: 4, Fields: []*types.Field{{Name: "x", Type: types.TInt}}}
	bump := &types.FuncDecl{Name: "S.bump", Type: voidFn, NeedsThis: true}
	lit := &ast.StructLiteral{Typed: ast.Typed{T: sd.Type()}, Decl: sd, StaticInit: true}

	c := newTestCompiler(Options{})
	call, ok := c.Lower(ast.CallMethod(lit, bump)).(*ir.Call)
	require.True(t, ok)
	require.Equal(t, "S.bump", ir.Callee(call))

	this, ok := call.This.(*ir.Compound)
	require.True(t, ok, ir.Dump(call))
	init, ok := this.First.(*ir.Assign)
	require.True(t, ok)
	require.True(t, init.Init)
	require.IsType(t, &ir.Temp{}, init.Dst)
	image, ok := init.Src.(*ir.Var)
	require.True(t, ok)
	require.Equal(t, "_D1S6__initZ", image.Name)

	addr, ok := this.Second.(*ir.Unary)
	require.True(t, ok)
	require.Equal(t, ir.Addr, addr.Op)
	require.Same(t, init.Dst, addr.X)
}

func TestCallThroughDelegateEvaluatesItOnce(t *testing.T) {
	c := newTestCompiler(Options{})
	getDg := &types.FuncDecl{Name: "getDg", Type: types.Function{Result: types.Delegate{Func: voidFn}}}
	n := c.Lower(&ast.Call{Typed: ast.Typed{T: types.TVoid}, Func: ast.CallFunc(getDg)})
	call, ok := n.(*ir.Call)
	require.True(t, ok)
	require.Equal(t, []string{"getDg", ""}, callees(n))

	var saves []*ir.Save
	ir.Inspect(call, func(x ir.Node) bool {
		if s, ok := x.(*ir.Save); ok {
			saves = append(saves, s)
		}
		return true
	})
	require.Len(t, saves, 2)
	require.Same(t, saves[0], saves[1])
}

func TestMemberCallWithoutThis(t *testing.T) {
	c := newTestCompiler(Options{})
	m := &types.FuncDecl{Name: "m", Type: voidFn, NeedsThis: true}
	c.Lower(ast.CallFunc(m))
	require.Equal(t, []string{"need 'this' to access member m"}, errorMessages(c))
}

func TestDelegatesRecordDeferredBodies(t *testing.T) {
	outer := &types.FuncDecl{Name: "outer", Type: voidFn, HasBody: true, Local: true}
	nested := &types.FuncDecl{Name: "outer.inner", Type: voidFn, Nested: true, Outer: outer, HasBody: true, Local: true}
	dt := types.Delegate{Func: voidFn}

	c := NewCompiler(Context{Func: outer})
	n := c.Lower(&ast.Delegate{Typed: ast.Typed{T: dt}, Func: nested})
	require.IsType(t, &ir.Ctor{}, n)
	c.Lower(&ast.Func{Typed: ast.Typed{T: dt}, Decl: nested})
	require.Equal(t, []*types.FuncDecl{nested}, c.Deferred)

	static := &types.FuncDecl{Name: "free", Type: voidFn}
	c.Lower(&ast.Delegate{Typed: ast.Typed{T: dt}, Func: static})
	require.Equal(t, []string{"delegates are only for non-static functions"}, errorMessages(c))
}

func TestArrayLiterals(t *testing.T) {
	elems := func() []ast.Expression {
		return []ast.Expression{ast.Int(1, types.TInt), ast.Int(0, types.TInt), ast.Int(2, types.TInt)}
	}
	c := newTestCompiler(Options{})

	static := types.StaticArray{Elem: types.TInt, Dim: 3}
	n := c.Lower(&ast.ArrayLiteral{Typed: ast.Typed{T: static}, Elements: elems()})
	ctor, ok := n.(*ir.Ctor)
	require.True(t, ok)
	require.Len(t, ctor.Elems, 2)
	require.Equal(t, 2, ctor.Elems[1].Index)

	n = c.Lower(&ast.ArrayLiteral{Typed: ast.Typed{T: intArr}, Elements: elems()})
	require.Equal(t, []string{"_d_arrayliteralTX", "memcpy"}, callees(n))
	require.Equal(t, c.irType(intArr), n.Type())

	n = c.Lower(&ast.ArrayLiteral{Typed: ast.Typed{T: intArr}})
	require.Equal(t, &ir.Zero{T: c.irType(intArr)}, n)
}

func TestAssocArrayLiteral(t *testing.T) {
	c := newTestCompiler(Options{})
	e := &ast.AssocArrayLiteral{
		Typed:  ast.Typed{T: intAA},
		Keys:   []ast.Expression{ast.Int(1, types.TInt), ast.Int(2, types.TInt)},
		Values: []ast.Expression{ast.Int(10, types.TInt), ast.Int(20, types.TInt)},
	}
	n := c.Lower(e)
	require.Equal(t, []string{"_d_assocarrayliteralTX"}, callees(n))
	require.Equal(t, ir.AAType, n.Type())
}

func TestStructLiterals(t *testing.T) {
	union := &types.StructDecl{Name: "U", SizeOf: 8, Union: true, Fields: []*types.Field{
		{Name: "i", Type: types.TInt},
		{Name: "d", Type: types.TDouble},
	}}
	c := newTestCompiler(Options{})
	n := c.Lower(&ast.StructLiteral{Typed: ast.Typed{T: union.Type()}, Decl: union, Elements: []ast.Expression{ast.Int(1, types.TInt)}})
	require.Equal(t, []string{"memset"}, callees(n))

	nested := &types.StructDecl{
		Name:   "N",
		SizeOf: 16,
		Fields: []*types.Field{{Name: "x", Type: types.TInt}, {Name: "y", Type: types.TInt, Offset: 4}},
		VThis:  &types.Field{Name: "this", Type: types.Pointer{Elem: types.TVoid}, Offset: 8},
	}
	n = c.Lower(&ast.StructLiteral{Typed: ast.Typed{T: nested.Type()}, Decl: nested, Elements: []ast.Expression{ast.Int(1, types.TInt)}})
	ctor, ok := n.(*ir.Ctor)
	require.True(t, ok)
	require.Len(t, ctor.Elems, 2)
	require.Equal(t, 2, ctor.Elems[1].Index)

	n = c.Lower(&ast.StructLiteral{Typed: ast.Typed{T: nested.Type()}, Decl: nested, StaticInit: true})
	global, ok := n.(*ir.Var)
	require.True(t, ok)
	require.True(t, global.Global)
}

func TestAddressOfStaticStructLiteral(t *testing.T) {
	sd := &types.StructDecl{Name: "S", SizeOf: 4, Fields: []*types.Field{{Name: "x", Type: types.TInt}}}
	origin := &ast.StructLiteral{Typed: ast.Typed{T: sd.Type()}, Decl: sd, Sym: "_D1S6__litZ"}
	lit := &ast.StructLiteral{Typed: ast.Typed{T: sd.Type()}, Decl: sd, Origin: origin}

	c := newTestCompiler(Options{})
	addr := &ast.Addr{Typed: ast.Typed{T: types.Pointer{Elem: sd.Type()}}, X: lit}
	c.Lower(addr)
	c.Lower(addr)
	require.Equal(t, []*ast.StructLiteral{origin}, c.Statics)
}

func TestPostIncrementPointerStepsByElementSize(t *testing.T) {
	c := newTestCompiler(Options{})
	n := c.Lower(&ast.Post{Typed: ast.Typed{T: intPtr}, Operator: token.INC, X: local("p", intPtr)})
	bin, ok := n.(*ir.Binary)
	require.True(t, ok)
	require.Equal(t, ir.PostInc, bin.Op)
	require.Equal(t, &ir.IntConst{T: ir.I64, Val: 4}, bin.Y)
}

func TestCtfeReadsFalse(t *testing.T) {
	c := newTestCompiler(Options{})
	vd := ast.Local("__ctfe", types.TBool)
	vd.Ctfe = true
	require.Equal(t, ir.BoolOf(false), c.Lower(ast.Read(vd)))
}

func TestCompoundAssignEvaluatesTargetOnce(t *testing.T) {
	c := newTestCompiler(Options{})
	f := &types.FuncDecl{Name: "f", Type: types.Function{Result: intPtr}}
	target := &ast.Ptr{Typed: ast.Typed{T: types.TInt}, X: ast.CallFunc(f)}
	e := &ast.BinAssign{Typed: ast.Typed{T: types.TInt}, Operator: token.ADD_ASSIGN, Left: target, Right: ast.Int(1, types.TInt)}
	n := c.Lower(e)
	require.Equal(t, []string{"f"}, callees(n))
	require.IsType(t, &ir.Assign{}, n)
}

func TestArrayLengthOfStaticArray(t *testing.T) {
	c := newTestCompiler(Options{})
	sa := types.StaticArray{Elem: types.TInt, Dim: 4}
	c.Lower(&ast.ArrayLength{Typed: ast.Typed{T: types.TSizeT}, X: local("a", sa)})
	require.Equal(t, []string{"unexpected type for array length: ulong"}, errorMessages(c))
}
