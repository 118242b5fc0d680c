package ir

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func userCall(name string, result Type, args ...Node) *Call {
	fn := &Func{Result: result}
	for _, a := range args {
		fn.Params = append(fn.Params, a.Type())
	}
	return CallOf(FuncAddr(name, fn, UserFunc), nil, args)
}

func calleeNames(n Node) []string {
	var names []string
	for _, c := range Calls(n) {
		names = append(names, Callee(c))
	}
	return names
}

func TestCallsFollowEvaluationOrder(t *testing.T) {
	f := SaveOf(userCall("f", I32))
	g := userCall("g", I32)
	sum := Binop(Add, I32, f, g)
	outer := userCall("h", I32, sum, f)

	assert.Equal(t, []string{"f", "g", "h"}, calleeNames(outer))
}

func TestInspectVisitsSaveOnce(t *testing.T) {
	f := SaveOf(userCall("f", I32))
	n := Binop(Mul, I32, f, f)

	calls := 0
	Inspect(n, func(n Node) bool {
		if _, ok := n.(*Call); ok {
			calls++
		}
		return true
	})
	assert.Equal(t, 1, calls)

	dump := Dump(n)
	assert.Equal(t, 1, strings.Count(dump, "(save$0 "), dump)
	assert.Contains(t, dump, " $0)")
}

func TestSaveOfInvariant(t *testing.T) {
	v := NewVar("x", I32)
	assert.Same(t, v, SaveOf(v))

	c := IntOf(I32, 3)
	assert.Same(t, c, SaveOf(c))

	call := userCall("f", I32)
	s, ok := SaveOf(call).(*Save)
	require.True(t, ok)
	assert.Same(t, s, SaveOf(s))
	assert.True(t, s.SideEffects())

	pure := Binop(Add, I32, v, c)
	assert.Same(t, pure, MaybeSave(pure))
}

func TestSeqSkipsNothing(t *testing.T) {
	v := NewVar("x", I32)
	assert.Same(t, v, Seq(nil, v))
	assert.Same(t, v, Seq(v, nil))
	assert.Same(t, v, Seq(Nothing(), v))

	call := userCall("f", VoidType)
	seq, ok := Seq(call, v).(*Compound)
	require.True(t, ok)
	assert.True(t, seq.SideEffects())
}

func TestDumpNumbersTemporaries(t *testing.T) {
	build := func() Node {
		i := NewTemp(SizeT, "i")
		return LoopOf(i, SizeOf(4), nil, AssignTo(NewVar("sum", SizeT), i))
	}
	first, second := Dump(build()), Dump(build())
	assert.Equal(t, first, second)
	assert.Contains(t, first, "(loop %t0 ")
}

func TestBuiltinArity(t *testing.T) {
	b, ok := BuiltinNamed("memset")
	require.True(t, ok)
	assert.Panics(t, func() { CallBuiltin(b, NewVar("p", VoidPtr)) })

	_, ok = BuiltinNamed("strlen")
	assert.False(t, ok)
}
