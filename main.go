package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/thiremani/exprlower/compiler"
	"github.com/thiremani/exprlower/ir"
	"github.com/thiremani/exprlower/llvmgen"
	"github.com/thiremani/exprlower/token"
)

const MODULE_NAME = "samples"

// lowered is one sample after lowering.
type lowered struct {
	Sample Sample
	Params []*ir.Var
	Tree   ir.Node
	Errors []*token.CompileError
}

func lowerSample(opts compiler.Options, s Sample) lowered {
	c := compiler.NewCompiler(compiler.Context{Options: opts})
	params := make([]*ir.Var, len(s.Params))
	for i, vd := range s.Params {
		params[i] = c.Param(vd)
	}
	tree := c.LowerDtor(s.Expr)
	c.Finish()
	return lowered{Sample: s, Params: params, Tree: tree, Errors: c.Errors}
}

func funcName(s Sample) string {
	return "sample_" + s.Name
}

// emitSamples emits every lowered sample as a function of one module and
// returns the verified LLVM IR.
func emitSamples(ls []lowered) (string, error) {
	g := llvmgen.NewGenerator(MODULE_NAME)
	defer g.Dispose()

	for _, l := range ls {
		if err := g.EmitFunction(funcName(l.Sample), l.Params, l.Tree); err != nil {
			return "", err
		}
	}
	if err := g.Verify(); err != nil {
		return "", err
	}
	return g.GenerateIR(), nil
}

// runtimeSymbols lists the runtime helpers and global symbols tree refers
// to, sorted and without duplicates.
func runtimeSymbols(tree ir.Node) []string {
	seen := make(map[string]bool)
	ir.Inspect(tree, func(n ir.Node) bool {
		switch v := n.(type) {
		case *ir.FuncRef:
			if v.Linkage != ir.UserFunc {
				seen[v.Name] = true
			}
		case *ir.Var:
			if v.Global {
				seen[v.Name] = true
			}
		}
		return true
	})
	syms := make([]string, 0, len(seen))
	for name := range seen {
		syms = append(syms, name)
	}
	sort.Strings(syms)
	return syms
}

// describeSymbol explains a symbol: the signature of a runtime helper or
// builtin, or the type a type descriptor stands for.
func describeSymbol(name string) string {
	if lc, ok := compiler.LibcallNamed(name); ok {
		return "runtime " + lc.Signature().String()
	}
	if b, ok := ir.BuiltinNamed(name); ok {
		return "builtin " + b.Signature().String()
	}
	if t, err := compiler.TypeInfoType(name); err == nil {
		return "typeinfo " + t.String()
	}
	return "symbol"
}

func symbolListing(ls []lowered) string {
	var sb strings.Builder
	for _, l := range ls {
		fmt.Fprintf(&sb, "%s:\n", l.Sample.Name)
		for _, sym := range runtimeSymbols(l.Tree) {
			fmt.Fprintf(&sb, "  %-40s %s\n", sym, describeSymbol(sym))
		}
	}
	return sb.String()
}

func main() {
	bounds := flag.Bool("bounds", true, "insert array bounds checks")
	asserts := flag.Bool("asserts", true, "lower assert expressions")
	invariants := flag.Bool("invariants", false, "call invariants from asserts")
	list := flag.Bool("list", false, "list the sample catalog and exit")
	symbols := flag.Bool("symbols", false, "print the runtime symbols each sample references")
	stdout := flag.Bool("stdout", false, "print the LLVM IR instead of writing it to the cache")
	version := flag.Bool("version", false, "print version information and exit")
	flag.Parse()

	if *version {
		printVersion()
		return
	}

	all := samples()
	if *list {
		for _, s := range all {
			fmt.Printf("%-10s %s\n", s.Name, s.Doc)
		}
		return
	}

	selected, missing := lookupSamples(flag.Args())
	if len(missing) > 0 {
		fmt.Printf("unknown samples: %s (see -list)\n", strings.Join(missing, ", "))
		os.Exit(2)
	}

	opts := compiler.Options{BoundsCheck: *bounds, Asserts: *asserts, Invariants: *invariants}
	var ls []lowered
	failed := false
	for _, s := range selected {
		l := lowerSample(opts, s)
		for _, e := range l.Errors {
			fmt.Printf("%s: %s\n", s.Name, e)
			failed = true
		}
		ls = append(ls, l)
	}
	if failed {
		os.Exit(1)
	}

	if *symbols {
		fmt.Print(symbolListing(ls))
		return
	}

	ll, err := emitSamples(ls)
	if err != nil {
		fmt.Printf("Error emitting LLVM IR: %v\n", err)
		os.Exit(1)
	}
	if *stdout {
		fmt.Print(ll)
		return
	}

	files := map[string][]byte{
		MODULE_NAME + LL_SUFFIX:   []byte(ll),
		MODULE_NAME + SYMS_SUFFIX: []byte(symbolListing(ls)),
	}
	names := make([]string, len(ls))
	for i, l := range ls {
		names[i] = l.Sample.Name
		files[l.Sample.Name+IR_SUFFIX] = []byte(ir.Dump(l.Tree) + "\n")
	}

	cacheDir := defaultCacheDir()
	fmt.Printf("Using %s: %s\n", cacheEnv, cacheDir)
	shortHash, fullHash := outputKey(opts, names)
	dir, reused, err := writeOutputs(cacheDir, shortHash, fullHash, files)
	if err != nil {
		fmt.Printf("Error writing outputs: %v\n", err)
		os.Exit(1)
	}
	if reused {
		fmt.Printf("Outputs unchanged: %s\n", dir)
		return
	}
	fmt.Printf("✅ Wrote %d samples to %s\n", len(ls), dir)
}
