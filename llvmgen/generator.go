// Package llvmgen emits lowered IR trees as LLVM functions.
package llvmgen

import (
	"errors"
	"fmt"

	"github.com/thiremani/exprlower/ir"
	"tinygo.org/x/go-llvm"
)

// ErrDiagnosed is returned when a tree still holds error placeholders.
var ErrDiagnosed = errors.New("tree contains diagnosed errors")

type Generator struct {
	Context llvm.Context
	Module  llvm.Module
	builder llvm.Builder
	name    string

	records map[*ir.Struct]llvm.Type
	fnTypes map[string]llvm.Type

	// per function state
	fn     llvm.Value
	vars   map[string]llvm.Value
	temps  map[*ir.Temp]llvm.Value
	saves  map[*ir.Save]llvm.Value
	strNum int
}

// emitError carries a failure out of the recursive emitters.
type emitError struct {
	err error
}

func NewGenerator(name string) *Generator {
	ctx := llvm.NewContext()
	return &Generator{
		Context: ctx,
		Module:  ctx.NewModule(name),
		builder: ctx.NewBuilder(),
		name:    name,
		records: make(map[*ir.Struct]llvm.Type),
		fnTypes: make(map[string]llvm.Type),
	}
}

func (g *Generator) Dispose() {
	g.builder.Dispose()
	g.Module.Dispose()
	g.Context.Dispose()
}

func (g *Generator) fail(format string, args ...any) {
	panic(emitError{fmt.Errorf(format, args...)})
}

// EmitFunction defines name with the given parameters, returning the value
// of body. A failed function is removed from the module again.
func (g *Generator) EmitFunction(name string, params []*ir.Var, body ir.Node) (err error) {
	if !g.Module.NamedFunction(name).IsNil() {
		return fmt.Errorf("function %s already defined", name)
	}
	if hasErrors(body) {
		return fmt.Errorf("%s: %w", name, ErrDiagnosed)
	}

	sig := &ir.Func{Result: body.Type()}
	for _, p := range params {
		sig.Params = append(sig.Params, p.T)
	}
	fnType := g.funcType(sig)
	fn := llvm.AddFunction(g.Module, name, fnType)
	g.fnTypes[name] = fnType

	g.fn = fn
	g.vars = make(map[string]llvm.Value)
	g.temps = make(map[*ir.Temp]llvm.Value)
	g.saves = make(map[*ir.Save]llvm.Value)

	defer func() {
		if r := recover(); r != nil {
			e, ok := r.(emitError)
			if !ok {
				panic(r)
			}
			fn.EraseFromParentAsFunction()
			delete(g.fnTypes, name)
			err = fmt.Errorf("%s: %w", name, e.err)
		}
	}()

	entry := g.Context.AddBasicBlock(fn, "entry")
	g.builder.SetInsertPointAtEnd(entry)

	for i, p := range params {
		arg := fn.Param(i)
		arg.SetName(p.Name)
		slot := g.builder.CreateAlloca(g.llvmType(p.T), p.Name+".addr")
		g.builder.CreateStore(arg, slot)
		g.vars[p.Name] = slot
	}

	result := g.value(body)
	if _, ok := sig.Result.(ir.Void); ok || result.IsNil() {
		g.builder.CreateRetVoid()
	} else {
		g.builder.CreateRet(result)
	}
	return nil
}

func hasErrors(n ir.Node) bool {
	found := false
	ir.Inspect(n, func(n ir.Node) bool {
		if _, ok := n.(*ir.Error); ok {
			found = true
		}
		return !found
	})
	return found
}

// Verify checks the module for malformed IR.
func (g *Generator) Verify() error {
	if err := llvm.VerifyModule(g.Module, llvm.ReturnStatusAction); err != nil {
		return fmt.Errorf("verify %s: %w", g.name, err)
	}
	return nil
}

// GenerateIR returns the textual LLVM IR of the module.
func (g *Generator) GenerateIR() string {
	return g.Module.String()
}

// declare returns the function name, adding a declaration on first use.
func (g *Generator) declare(ref *ir.FuncRef) (llvm.Value, llvm.Type) {
	name := ref.Name
	if ref.Linkage == ir.BuiltinFunc && name == ir.Trap.String() {
		name = "llvm.trap"
	}
	if fn := g.Module.NamedFunction(name); !fn.IsNil() {
		return fn, g.fnTypes[name]
	}
	fnType := g.funcType(ref.Func)
	fn := llvm.AddFunction(g.Module, name, fnType)
	fn.SetLinkage(llvm.ExternalLinkage)
	g.fnTypes[name] = fnType
	return fn, fnType
}

// global returns the module level variable name, declaring it external
// when it is not defined here.
func (g *Generator) global(v *ir.Var) llvm.Value {
	if gv := g.Module.NamedGlobal(v.Name); !gv.IsNil() {
		return gv
	}
	gv := llvm.AddGlobal(g.Module, g.llvmType(v.T), v.Name)
	gv.SetLinkage(llvm.ExternalLinkage)
	return gv
}

// stringGlobal places data in a private constant and returns its address.
func (g *Generator) stringGlobal(data []byte) llvm.Value {
	name := fmt.Sprintf("str_%d", g.strNum)
	g.strNum++
	i8 := g.Context.Int8Type()
	bytes := make([]llvm.Value, len(data))
	for i, b := range data {
		bytes[i] = llvm.ConstInt(i8, uint64(b), false)
	}
	init := llvm.ConstArray(i8, bytes)
	arrType := llvm.ArrayType(i8, len(data))
	gv := llvm.AddGlobal(g.Module, arrType, name)
	gv.SetInitializer(init)
	gv.SetGlobalConstant(true)
	gv.SetLinkage(llvm.PrivateLinkage)
	gv.SetUnnamedAddr(true)
	return gv
}

// entryAlloca reserves a stack slot in the entry block of the current
// function.
func (g *Generator) entryAlloca(ty llvm.Type, name string) llvm.Value {
	current := g.builder.GetInsertBlock()
	entry := g.fn.EntryBasicBlock()
	first := entry.FirstInstruction()

	if first.IsNil() {
		g.builder.SetInsertPointAtEnd(entry)
	} else {
		g.builder.SetInsertPointBefore(first)
	}

	alloca := g.builder.CreateAlloca(ty, name)
	g.builder.SetInsertPointAtEnd(current)
	return alloca
}
