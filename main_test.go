package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thiremani/exprlower/compiler"
	"github.com/thiremani/exprlower/ir"
)

func lowerAll(t *testing.T, opts compiler.Options) []lowered {
	t.Helper()
	var ls []lowered
	for _, s := range samples() {
		l := lowerSample(opts, s)
		require.Empty(t, l.Errors, s.Name)
		ls = append(ls, l)
	}
	return ls
}

func TestSampleNamesUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, s := range samples() {
		require.False(t, seen[s.Name], s.Name)
		seen[s.Name] = true
		require.NotEmpty(t, s.Doc, s.Name)
	}
}

func TestLookupSamples(t *testing.T) {
	all, missing := lookupSamples(nil)
	assert.Len(t, all, len(samples()))
	assert.Empty(t, missing)

	found, missing := lookupSamples([]string{"index", "nope", "arith"})
	require.Len(t, found, 2)
	assert.Equal(t, "index", found[0].Name)
	assert.Equal(t, "arith", found[1].Name)
	assert.Equal(t, []string{"nope"}, missing)
}

func TestEmitSamples(t *testing.T) {
	for _, opts := range []compiler.Options{{}, {BoundsCheck: true}} {
		ll, err := emitSamples(lowerAll(t, opts))
		require.NoError(t, err)
		for _, s := range samples() {
			if !strings.Contains(ll, "@"+funcName(s)+"(") {
				t.Errorf("IR does not define %s:\n%s", funcName(s), ll)
			}
		}
	}
}

func TestBoundsChecksFollowOptions(t *testing.T) {
	index, _ := lookupSamples([]string{"index"})

	checked := lowerSample(compiler.Options{BoundsCheck: true}, index[0])
	assert.Contains(t, runtimeSymbols(checked.Tree), "_d_arraybounds")
	assert.Contains(t, ir.Dump(checked.Tree), "index.d")

	unchecked := lowerSample(compiler.Options{}, index[0])
	assert.NotContains(t, runtimeSymbols(unchecked.Tree), "_d_arraybounds")
}

func TestSymbolListing(t *testing.T) {
	lookup, _ := lookupSamples([]string{"lookup"})
	ls := []lowered{lowerSample(compiler.Options{}, lookup[0])}

	syms := runtimeSymbols(ls[0].Tree)
	assert.Contains(t, syms, "_aaGetRvalueX")
	assert.Contains(t, syms, "_D10TypeInfo_i6__initZ")

	listing := symbolListing(ls)
	assert.True(t, strings.HasPrefix(listing, "lookup:\n"), listing)
	assert.Contains(t, listing, "typeinfo int")
	assert.Contains(t, listing, "runtime ")
}

func TestDescribeSymbol(t *testing.T) {
	assert.Equal(t, "typeinfo char[]", describeSymbol("_D11TypeInfo_Aa6__initZ"))
	assert.True(t, strings.HasPrefix(describeSymbol("memcpy"), "builtin "))
	assert.True(t, strings.HasPrefix(describeSymbol("_d_arraybounds"), "runtime "))
	assert.Equal(t, "symbol", describeSymbol("_D6Object7__ClassZ"))
}
