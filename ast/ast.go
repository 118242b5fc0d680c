package ast

import (
	"github.com/thiremani/exprlower/token"
	"github.com/thiremani/exprlower/types"
)

// ExprKind tags every expression variant. The set is closed.
type ExprKind int

const (
	IntegerKind ExprKind = iota
	RealKind
	ComplexKind
	StringKind
	NullKind
	ArrayLiteralKind
	AssocArrayLiteralKind
	StructLiteralKind
	ClassReferenceKind

	BinaryKind
	PowKind
	CatKind

	AndAndKind
	OrOrKind
	NotKind
	BoolKind
	NegKind
	ComKind
	CondKind
	CommaKind
	TupleKind

	EqualKind
	IdentityKind
	CmpKind
	InKind

	AssignKind
	BinAssignKind
	CatAssignKind
	PostKind

	IndexKind
	SliceKind
	ArrayLengthKind

	CastKind
	AddrKind
	PtrKind
	DelegatePtrKind
	DelegateFuncptrKind
	VectorKind

	CallKind
	DotVarKind
	VarKind
	SymOffKind
	ThisKind
	DelegateKind
	FuncKind
	HaltKind
	DotTypeKind

	NewKind
	DeleteKind
	RemoveKind
	AssertKind
	DeclarationKind
	ScopeKind
	TypeExprKind

	NumKinds
)

var kindNames = [NumKinds]string{
	IntegerKind:           "Integer",
	RealKind:              "Real",
	ComplexKind:           "Complex",
	StringKind:            "String",
	NullKind:              "Null",
	ArrayLiteralKind:      "ArrayLiteral",
	AssocArrayLiteralKind: "AssocArrayLiteral",
	StructLiteralKind:     "StructLiteral",
	ClassReferenceKind:    "ClassReference",
	BinaryKind:            "Binary",
	PowKind:               "Pow",
	CatKind:               "Cat",
	AndAndKind:            "AndAnd",
	OrOrKind:              "OrOr",
	NotKind:               "Not",
	BoolKind:              "Bool",
	NegKind:               "Neg",
	ComKind:               "Com",
	CondKind:              "Cond",
	CommaKind:             "Comma",
	TupleKind:             "Tuple",
	EqualKind:             "Equal",
	IdentityKind:          "Identity",
	CmpKind:               "Cmp",
	InKind:                "In",
	AssignKind:            "Assign",
	BinAssignKind:         "BinAssign",
	CatAssignKind:         "CatAssign",
	PostKind:              "Post",
	IndexKind:             "Index",
	SliceKind:             "Slice",
	ArrayLengthKind:       "ArrayLength",
	CastKind:              "Cast",
	AddrKind:              "Addr",
	PtrKind:               "Ptr",
	DelegatePtrKind:       "DelegatePtr",
	DelegateFuncptrKind:   "DelegateFuncptr",
	VectorKind:            "Vector",
	CallKind:              "Call",
	DotVarKind:            "DotVar",
	VarKind:               "Var",
	SymOffKind:            "SymOff",
	ThisKind:              "This",
	DelegateKind:          "Delegate",
	FuncKind:              "Func",
	HaltKind:              "Halt",
	DotTypeKind:           "DotType",
	NewKind:               "New",
	DeleteKind:            "Delete",
	RemoveKind:            "Remove",
	AssertKind:            "Assert",
	DeclarationKind:       "Declaration",
	ScopeKind:             "Scope",
	TypeExprKind:          "TypeExpr",
}

func (k ExprKind) String() string {
	if k < 0 || k >= NumKinds {
		return "ExprKind(?)"
	}
	return kindNames[k]
}

// Expression is a fully typed expression node. Nodes are immutable once
// they reach lowering and exclusively own their operands.
type Expression interface {
	Tok() token.Token
	String() string
	Kind() ExprKind
	Type() types.Type
}

// Typed carries the source token and the resolved static type.
type Typed struct {
	Token token.Token
	T     types.Type
}

func (t *Typed) Tok() token.Token  { return t.Token }
func (t *Typed) Type() types.Type { return t.T }

type StorageClass uint32

const (
	Ref StorageClass = 1 << iota
	Out
	Static
	Manifest
	Extern
	TLS
	Shared
)

// VarDecl is a resolved variable: a local, a parameter or a global.
type VarDecl struct {
	Name    string
	Type    types.Type
	Storage StorageClass
	Init    Expression
	// Edtor destroys the variable when its scope ends.
	Edtor   Expression
	NoScope bool
	// OnStack marks class instances allocated in the frame.
	OnStack bool
	// Ctfe marks the compile time evaluation flag variable.
	Ctfe bool
	// NeedsThis marks members that cannot be read without an instance.
	NeedsThis bool
}

// IsRef reports ref and out variables, which hold the address of their
// referent.
func (vd *VarDecl) IsRef() bool { return vd.Storage&(Ref|Out) != 0 }

// IsGlobal reports variables that are not allocated in a frame.
func (vd *VarDecl) IsGlobal() bool {
	return vd.Storage&(Static|Manifest|Extern|TLS|Shared) != 0
}

// Literals

type Integer struct {
	Typed
	Value int64
}

type Real struct {
	Typed
	Value float64
}

type Complex struct {
	Typed
	Re, Im float64
}

// String holds the literal text; it is encoded to the element width of
// its type when lowered.
type String struct {
	Typed
	Value string
}

type Null struct {
	Typed
}

type ArrayLiteral struct {
	Typed
	Elements []Expression
}

type AssocArrayLiteral struct {
	Typed
	Keys   []Expression
	Values []Expression
}

type StructLiteral struct {
	Typed
	Decl *types.StructDecl
	// Elements holds one entry per field; nil entries are default
	// initialized.
	Elements []Expression
	// StaticInit selects the precomputed initializer image.
	StaticInit bool
	// Origin is the literal whose static symbol this literal was folded from.
	Origin *StructLiteral
	// Sym names the static symbol of a literal with static storage.
	Sym string
}

type ClassReference struct {
	Typed
	Decl *types.ClassDecl
	Sym  string
}

// Operators

// Binary covers + - * / % & | ^ << >> >>>.
type Binary struct {
	Typed
	Operator token.TokenType
	Left     Expression
	Right    Expression
}

type Pow struct {
	Typed
	Left, Right Expression
}

type Cat struct {
	Typed
	Left, Right Expression
}

type AndAnd struct {
	Typed
	Left, Right Expression
}

type OrOr struct {
	Typed
	Left, Right Expression
}

type Not struct {
	Typed
	X Expression
}

// Bool converts its operand to bool.
type Bool struct {
	Typed
	X Expression
}

type Neg struct {
	Typed
	X Expression
}

type Com struct {
	Typed
	X Expression
}

type Cond struct {
	Typed
	Cond, Then, Else Expression
}

type Comma struct {
	Typed
	Left, Right Expression
}

type Tuple struct {
	Typed
	Prefix   Expression
	Elements []Expression
}

// Equal covers == and !=.
type Equal struct {
	Typed
	Operator token.TokenType
	Left     Expression
	Right    Expression
}

// Identity covers is and !is.
type Identity struct {
	Typed
	Operator token.TokenType
	Left     Expression
	Right    Expression
}

// Cmp covers the ordering comparisons, including the unordered forms.
type Cmp struct {
	Typed
	Operator token.TokenType
	Left     Expression
	Right    Expression
}

// In tests Key for membership in the associative array AA.
type In struct {
	Typed
	Key, AA Expression
}

// Assign covers =, initialization and blit. MemSet marks a slice
// assignment broadcasting a single value.
type Assign struct {
	Typed
	Operator token.TokenType
	Left     Expression
	Right    Expression
	MemSet   bool
}

// BinAssign covers the compound assignments other than ~=.
type BinAssign struct {
	Typed
	Operator token.TokenType
	Left     Expression
	Right    Expression
}

type CatAssign struct {
	Typed
	Left, Right Expression
}

// Post covers x++ and x--.
type Post struct {
	Typed
	Operator token.TokenType
	X        Expression
}

// Arrays

type Index struct {
	Typed
	X, Index Expression
	// Modifiable selects get-or-insert for associative arrays.
	Modifiable bool
	InBounds   bool
	// Dollar is the $ variable standing for the length inside Index.
	Dollar *VarDecl
}

type Slice struct {
	Typed
	X             Expression
	Lower, Upper  Expression
	UpperInBounds bool
	LowerLEUpper  bool
	Dollar        *VarDecl
}

type ArrayLength struct {
	Typed
	X Expression
}

// Conversions

// Cast converts X to the node's type.
type Cast struct {
	Typed
	X Expression
}

type Addr struct {
	Typed
	X Expression
}

// Ptr dereferences X.
type Ptr struct {
	Typed
	X Expression
}

type DelegatePtr struct {
	Typed
	X Expression
}

type DelegateFuncptr struct {
	Typed
	X Expression
}

type Vector struct {
	Typed
	X Expression
}

// Symbols and calls

type Call struct {
	Typed
	Func Expression
	Args []Expression
}

// DotVar selects Field, Func or Var through X.
type DotVar struct {
	Typed
	X     Expression
	Field *types.Field
	Func  *types.FuncDecl
	Var   *VarDecl
}

// Var reads a variable, or names a function when Func is set.
type Var struct {
	Typed
	Decl *VarDecl
	Func *types.FuncDecl
}

// SymOff is the address of Decl plus Offset bytes.
type SymOff struct {
	Typed
	Decl   *VarDecl
	Offset uint64
}

type This struct {
	Typed
	Var   *VarDecl
	Super bool
}

// Delegate binds Func to the object X, or to a frame when Func is nested.
type Delegate struct {
	Typed
	X    Expression
	Func *types.FuncDecl
}

// Func is a function literal.
type Func struct {
	Typed
	Decl *types.FuncDecl
}

type Halt struct {
	Typed
}

// DotType is a type-qualified access; it lowers to X.
type DotType struct {
	Typed
	X Expression
}

type New struct {
	Typed
	NewType   types.Type
	ThisExp   Expression
	Allocator *types.FuncDecl
	NewArgs   []Expression
	Ctor      *types.FuncDecl
	Args      []Expression
	ArgPrefix Expression
	OnStack   bool
}

type Delete struct {
	Typed
	X Expression
}

type Remove struct {
	Typed
	AA, Key Expression
}

type Assert struct {
	Typed
	X, Msg Expression
}

type Declaration struct {
	Typed
	Var *VarDecl
}

// Scope names a symbol that is not a value.
type Scope struct {
	Typed
	Name string
}

type TypeExpr struct {
	Typed
}

func (*Integer) Kind() ExprKind           { return IntegerKind }
func (*Real) Kind() ExprKind              { return RealKind }
func (*Complex) Kind() ExprKind           { return ComplexKind }
func (*String) Kind() ExprKind            { return StringKind }
func (*Null) Kind() ExprKind              { return NullKind }
func (*ArrayLiteral) Kind() ExprKind      { return ArrayLiteralKind }
func (*AssocArrayLiteral) Kind() ExprKind { return AssocArrayLiteralKind }
func (*StructLiteral) Kind() ExprKind     { return StructLiteralKind }
func (*ClassReference) Kind() ExprKind    { return ClassReferenceKind }
func (*Binary) Kind() ExprKind            { return BinaryKind }
func (*Pow) Kind() ExprKind               { return PowKind }
func (*Cat) Kind() ExprKind               { return CatKind }
func (*AndAnd) Kind() ExprKind            { return AndAndKind }
func (*OrOr) Kind() ExprKind              { return OrOrKind }
func (*Not) Kind() ExprKind               { return NotKind }
func (*Bool) Kind() ExprKind              { return BoolKind }
func (*Neg) Kind() ExprKind               { return NegKind }
func (*Com) Kind() ExprKind               { return ComKind }
func (*Cond) Kind() ExprKind              { return CondKind }
func (*Comma) Kind() ExprKind             { return CommaKind }
func (*Tuple) Kind() ExprKind             { return TupleKind }
func (*Equal) Kind() ExprKind             { return EqualKind }
func (*Identity) Kind() ExprKind          { return IdentityKind }
func (*Cmp) Kind() ExprKind               { return CmpKind }
func (*In) Kind() ExprKind                { return InKind }
func (*Assign) Kind() ExprKind            { return AssignKind }
func (*BinAssign) Kind() ExprKind         { return BinAssignKind }
func (*CatAssign) Kind() ExprKind         { return CatAssignKind }
func (*Post) Kind() ExprKind              { return PostKind }
func (*Index) Kind() ExprKind             { return IndexKind }
func (*Slice) Kind() ExprKind             { return SliceKind }
func (*ArrayLength) Kind() ExprKind       { return ArrayLengthKind }
func (*Cast) Kind() ExprKind              { return CastKind }
func (*Addr) Kind() ExprKind              { return AddrKind }
func (*Ptr) Kind() ExprKind               { return PtrKind }
func (*DelegatePtr) Kind() ExprKind       { return DelegatePtrKind }
func (*DelegateFuncptr) Kind() ExprKind   { return DelegateFuncptrKind }
func (*Vector) Kind() ExprKind            { return VectorKind }
func (*Call) Kind() ExprKind              { return CallKind }
func (*DotVar) Kind() ExprKind            { return DotVarKind }
func (*Var) Kind() ExprKind               { return VarKind }
func (*SymOff) Kind() ExprKind            { return SymOffKind }
func (*This) Kind() ExprKind              { return ThisKind }
func (*Delegate) Kind() ExprKind          { return DelegateKind }
func (*Func) Kind() ExprKind              { return FuncKind }
func (*Halt) Kind() ExprKind              { return HaltKind }
func (*DotType) Kind() ExprKind           { return DotTypeKind }
func (*New) Kind() ExprKind               { return NewKind }
func (*Delete) Kind() ExprKind            { return DeleteKind }
func (*Remove) Kind() ExprKind            { return RemoveKind }
func (*Assert) Kind() ExprKind            { return AssertKind }
func (*Declaration) Kind() ExprKind       { return DeclarationKind }
func (*Scope) Kind() ExprKind             { return ScopeKind }
func (*TypeExpr) Kind() ExprKind          { return TypeExprKind }
