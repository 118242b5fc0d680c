package compiler

import (
	"fmt"

	"github.com/thiremani/exprlower/ast"
	"github.com/thiremani/exprlower/ir"
	"github.com/thiremani/exprlower/token"
	"github.com/thiremani/exprlower/types"
)

// Options are the code generation switches that change what lowering emits.
type Options struct {
	BoundsCheck bool // insert array bounds checks
	Asserts     bool // lower assert expressions
	Invariants  bool // call class and struct invariants from asserts
}

// Context is the read-only state lowering consults for one function.
type Context struct {
	// Func is the function whose body is being lowered, nil at module level.
	Func *types.FuncDecl
	Options
}

// Compiler lowers the typed expressions of one function. It is not safe
// for concurrent use; drivers create one Compiler per function.
type Compiler struct {
	Ctx    Context
	Ledger *Ledger
	Errors []*token.CompileError
	// Deferred lists the local function bodies that delegates and function
	// literals refer to, in the order they were first referenced.
	Deferred []*types.FuncDecl
	// Statics lists the struct literals whose static symbols were
	// referenced, for the driver to emit with their initializers.
	Statics []*ast.StructLiteral

	vars    map[*ast.VarDecl]*ir.Var
	dollars map[*ast.VarDecl]ir.Node
	records map[any]*ir.Struct
	frames  map[*types.FuncDecl]*ir.Var
}

func NewCompiler(ctx Context) *Compiler {
	return &Compiler{
		Ctx:      ctx,
		Ledger:   &Ledger{},
		Errors:   []*token.CompileError{},
		Deferred: []*types.FuncDecl{},
		Statics:  []*ast.StructLiteral{},
		vars:     make(map[*ast.VarDecl]*ir.Var),
		dollars:  make(map[*ast.VarDecl]ir.Node),
		records:  make(map[any]*ir.Struct),
		frames:   make(map[*types.FuncDecl]*ir.Var),
	}
}

// Lower translates e into IR. User errors are recorded in c.Errors and
// lower to an error placeholder of the expression's type.
func (c *Compiler) Lower(e ast.Expression) ir.Node {
	return lowerers[e.Kind()](c, e)
}

// Finish checks that every scoped variable pushed while lowering the
// function was destroyed by an enclosing LowerDtor.
func (c *Compiler) Finish() {
	if pending := c.Ledger.Pending(); len(pending) > 0 {
		panic(fmt.Sprintf("internal: %d scoped variables never destroyed, first %s", len(pending), pending[0].Name))
	}
}

// errorf records a diagnostic at e and returns the placeholder for e.
func (c *Compiler) errorf(e ast.Expression, format string, args ...any) ir.Node {
	c.Errors = append(c.Errors, &token.CompileError{
		Token: e.Tok(),
		Msg:   fmt.Sprintf(format, args...),
	})
	if e.Type() == nil {
		return ir.ErrorOf(ir.VoidType)
	}
	return ir.ErrorOf(c.irType(e.Type()))
}

// deferFunc records fd for emission when its body is local to the unit.
func (c *Compiler) deferFunc(fd *types.FuncDecl) {
	if !fd.HasBody || !fd.Local {
		return
	}
	for _, d := range c.Deferred {
		if d == fd {
			return
		}
	}
	c.Deferred = append(c.Deferred, fd)
}

type ruleFunc func(*Compiler, ast.Expression) ir.Node

// lowerers holds one rule per expression kind. It is filled in init since
// the rules recurse through Lower.
var lowerers [ast.NumKinds]ruleFunc

func rule[T ast.Expression](f func(*Compiler, T) ir.Node) ruleFunc {
	return func(c *Compiler, e ast.Expression) ir.Node {
		return f(c, e.(T))
	}
}

func init() {
	lowerers = [ast.NumKinds]ruleFunc{
		ast.IntegerKind:           rule(lowerInteger),
		ast.RealKind:              rule(lowerReal),
		ast.ComplexKind:           rule(lowerComplex),
		ast.StringKind:            rule(lowerString),
		ast.NullKind:              rule(lowerNull),
		ast.ArrayLiteralKind:      rule(lowerArrayLiteral),
		ast.AssocArrayLiteralKind: rule(lowerAssocArrayLiteral),
		ast.StructLiteralKind:     rule(lowerStructLiteral),
		ast.ClassReferenceKind:    rule(lowerClassReference),

		ast.BinaryKind: rule(lowerBinary),
		ast.PowKind:    rule(lowerPow),
		ast.CatKind:    rule(lowerCat),

		ast.AndAndKind: rule(lowerAndAnd),
		ast.OrOrKind:   rule(lowerOrOr),
		ast.NotKind:    rule(lowerNot),
		ast.BoolKind:   rule(lowerBool),
		ast.NegKind:    rule(lowerNeg),
		ast.ComKind:    rule(lowerCom),
		ast.CondKind:   rule(lowerCond),
		ast.CommaKind:  rule(lowerComma),
		ast.TupleKind:  rule(lowerTuple),

		ast.EqualKind:    rule(lowerEqual),
		ast.IdentityKind: rule(lowerIdentity),
		ast.CmpKind:      rule(lowerCmp),
		ast.InKind:       rule(lowerIn),

		ast.AssignKind:    rule(lowerAssign),
		ast.BinAssignKind: rule(lowerBinAssign),
		ast.CatAssignKind: rule(lowerCatAssign),
		ast.PostKind:      rule(lowerPost),

		ast.IndexKind:       rule(lowerIndex),
		ast.SliceKind:       rule(lowerSlice),
		ast.ArrayLengthKind: rule(lowerArrayLength),

		ast.CastKind:            rule(lowerCast),
		ast.AddrKind:            rule(lowerAddr),
		ast.PtrKind:             rule(lowerPtr),
		ast.DelegatePtrKind:     rule(lowerDelegatePtr),
		ast.DelegateFuncptrKind: rule(lowerDelegateFuncptr),
		ast.VectorKind:          rule(lowerVector),

		ast.CallKind:     rule(lowerCall),
		ast.DotVarKind:   rule(lowerDotVar),
		ast.VarKind:      rule(lowerVar),
		ast.SymOffKind:   rule(lowerSymOff),
		ast.ThisKind:     rule(lowerThis),
		ast.DelegateKind: rule(lowerDelegate),
		ast.FuncKind:     rule(lowerFuncLiteral),
		ast.HaltKind:     rule(lowerHalt),
		ast.DotTypeKind:  rule(lowerDotType),

		ast.NewKind:         rule(lowerNew),
		ast.DeleteKind:      rule(lowerDelete),
		ast.RemoveKind:      rule(lowerRemove),
		ast.AssertKind:      rule(lowerAssert),
		ast.DeclarationKind: rule(lowerDeclaration),
		ast.ScopeKind:       rule(lowerScope),
		ast.TypeExprKind:    rule(lowerTypeExpr),
	}
	for k, f := range lowerers {
		if f == nil {
			panic("internal: no lowering rule for " + ast.ExprKind(k).String())
		}
	}
}
