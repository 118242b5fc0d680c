package ir

// Node is a lowered, typed IR value. Nodes are built through the
// constructors in build.go; fields are exported for walkers and backends.
type Node interface {
	Type() Type
	// SideEffects reports whether evaluating the node more than once, or
	// out of order, is observable.
	SideEffects() bool
	irNode()
}

type UnaryOp int

const (
	Neg UnaryOp = iota
	BitNot
	TruthNot
	Deref
	Addr
	Convert  // value conversion between scalar types
	ViewConv // reinterpret the bits of the operand
	Nop      // type change only, e.g. between pointer types
	RealPart
	ImagPart
)

var unaryNames = [...]string{
	Neg:      "neg",
	BitNot:   "bitnot",
	TruthNot: "not",
	Deref:    "deref",
	Addr:     "addr",
	Convert:  "convert",
	ViewConv: "view",
	Nop:      "nop",
	RealPart: "re",
	ImagPart: "im",
}

func (op UnaryOp) String() string { return unaryNames[op] }

type BinaryOp int

const (
	Add BinaryOp = iota
	Sub
	Mul
	Div  // truncating integer division
	RDiv // floating point division
	Mod  // truncating integer remainder
	FMod
	And
	Or
	Xor
	Shl
	Shr  // arithmetic for signed operands
	UShr // always logical
	PtrAdd
	MakeComplex
	PostInc
	PostDec

	Eq
	Ne
	Lt
	Le
	Gt
	Ge
	UnEq
	LtGt
	UnLt
	UnLe
	UnGt
	UnGe
	Ordered
	Unordered

	AndIf
	OrIf
)

var binaryNames = [...]string{
	Add:         "add",
	Sub:         "sub",
	Mul:         "mul",
	Div:         "div",
	RDiv:        "rdiv",
	Mod:         "mod",
	FMod:        "fmod",
	And:         "and",
	Or:          "or",
	Xor:         "xor",
	Shl:         "shl",
	Shr:         "shr",
	UShr:        "ushr",
	PtrAdd:      "ptradd",
	MakeComplex: "complex",
	PostInc:     "postinc",
	PostDec:     "postdec",
	Eq:          "eq",
	Ne:          "ne",
	Lt:          "lt",
	Le:          "le",
	Gt:          "gt",
	Ge:          "ge",
	UnEq:        "uneq",
	LtGt:        "ltgt",
	UnLt:        "unlt",
	UnLe:        "unle",
	UnGt:        "ungt",
	UnGe:        "unge",
	Ordered:     "ord",
	Unordered:   "unord",
	AndIf:       "andif",
	OrIf:        "orif",
}

func (op BinaryOp) String() string { return binaryNames[op] }

func (op BinaryOp) IsComparison() bool { return op >= Eq && op <= Unordered }

type IntConst struct {
	T   Type
	Val int64
}

type FloatConst struct {
	T   Type
	Val float64
}

type ComplexConst struct {
	T      Complex
	Re, Im float64
}

// StringConst is a read-only buffer of encoded code units.
type StringConst struct {
	T    Array
	Data []byte
}

// Zero is the all-zero value of T: null pointers, empty arrays, null
// delegates and associative arrays.
type Zero struct {
	T Type
}

// Empty is the void no-op.
type Empty struct{}

// Var is a named declaration: a local, a parameter or a global symbol.
type Var struct {
	Name   string
	T      Type
	Global bool
}

// Temp is a compiler generated local. Temps are identified by pointer.
type Temp struct {
	T    Type
	Hint string
}

type Linkage int

const (
	UserFunc Linkage = iota
	RuntimeFunc
	BuiltinFunc
)

// FuncRef is the address of a function.
type FuncRef struct {
	Name    string
	Func    *Func
	Linkage Linkage
}

type Unary struct {
	Op UnaryOp
	X  Node
	T  Type
}

type Binary struct {
	Op   BinaryOp
	X, Y Node
	T    Type
}

type Cond struct {
	C, Then, Else Node
	T             Type
}

// Compound evaluates First for its side effects and yields Second.
type Compound struct {
	First, Second Node
}

// Save evaluates X once, at its first use in evaluation order; later uses
// of the same *Save reuse the value.
type Save struct {
	X Node
}

type Call struct {
	Callee Node
	This   Node // object or context argument, passed first
	Args   []Node
	T      Type
	// ReturnSlot lets the callee construct its result in the destination.
	ReturnSlot bool
}

// Assign stores Src into Dst and yields Dst.
type Assign struct {
	Dst, Src Node
	Init     bool
}

// Index is the element lvalue Ptr[Idx].
type Index struct {
	Ptr, Idx Node
	T        Type
}

// FieldRef selects field Index of the aggregate X.
type FieldRef struct {
	X     Node
	Index int
	T     Type
}

type CtorElem struct {
	Index int
	Value Node
}

// Ctor builds an aggregate; missing elements are zero.
type Ctor struct {
	T     Type
	Elems []CtorElem
}

// Splat broadcasts a scalar into every lane of a vector.
type Splat struct {
	X Node
	T Vector
}

// Loop runs Body with Index counting from zero while Index < Count and
// Cond (when set) holds.
type Loop struct {
	Index *Temp
	Count Node
	Cond  Node
	Body  Node
}

// TryFinally runs Cleanup after Body, also when Body exits abnormally.
type TryFinally struct {
	Body, Cleanup Node
}

// VirtualRef loads the function pointer at Slot of Object's vtable.
type VirtualRef struct {
	Object Node
	Slot   int
	T      Type
}

// Error stands in for a value whose lowering was diagnosed.
type Error struct {
	T Type
}

func (n *IntConst) Type() Type     { return n.T }
func (n *FloatConst) Type() Type   { return n.T }
func (n *ComplexConst) Type() Type { return n.T }
func (n *StringConst) Type() Type  { return n.T }
func (n *Zero) Type() Type         { return n.T }
func (n *Empty) Type() Type        { return VoidType }
func (n *Var) Type() Type          { return n.T }
func (n *Temp) Type() Type         { return n.T }
func (n *FuncRef) Type() Type      { return Pointer{Elem: n.Func} }
func (n *Unary) Type() Type        { return n.T }
func (n *Binary) Type() Type       { return n.T }
func (n *Cond) Type() Type         { return n.T }
func (n *Compound) Type() Type     { return n.Second.Type() }
func (n *Save) Type() Type         { return n.X.Type() }
func (n *Call) Type() Type         { return n.T }
func (n *Assign) Type() Type       { return n.Dst.Type() }
func (n *Index) Type() Type        { return n.T }
func (n *FieldRef) Type() Type     { return n.T }
func (n *Ctor) Type() Type         { return n.T }
func (n *Splat) Type() Type        { return n.T }
func (n *Loop) Type() Type         { return VoidType }
func (n *TryFinally) Type() Type   { return VoidType }
func (n *VirtualRef) Type() Type   { return n.T }
func (n *Error) Type() Type        { return n.T }

func (n *IntConst) SideEffects() bool     { return false }
func (n *FloatConst) SideEffects() bool   { return false }
func (n *ComplexConst) SideEffects() bool { return false }
func (n *StringConst) SideEffects() bool  { return false }
func (n *Zero) SideEffects() bool         { return false }
func (n *Empty) SideEffects() bool        { return false }
func (n *Var) SideEffects() bool          { return false }
func (n *Temp) SideEffects() bool         { return false }
func (n *FuncRef) SideEffects() bool      { return false }
func (n *Save) SideEffects() bool         { return n.X.SideEffects() }
func (n *Call) SideEffects() bool         { return true }
func (n *Assign) SideEffects() bool       { return true }
func (n *Loop) SideEffects() bool         { return true }
func (n *TryFinally) SideEffects() bool   { return true }
func (n *Error) SideEffects() bool        { return false }

func (n *Unary) SideEffects() bool { return n.X.SideEffects() }

func (n *Binary) SideEffects() bool {
	if n.Op == PostInc || n.Op == PostDec {
		return true
	}
	return n.X.SideEffects() || n.Y.SideEffects()
}

func (n *Cond) SideEffects() bool {
	return n.C.SideEffects() || n.Then.SideEffects() || n.Else.SideEffects()
}

func (n *Compound) SideEffects() bool {
	return n.First.SideEffects() || n.Second.SideEffects()
}

func (n *Index) SideEffects() bool    { return n.Ptr.SideEffects() || n.Idx.SideEffects() }
func (n *FieldRef) SideEffects() bool { return n.X.SideEffects() }
func (n *Splat) SideEffects() bool    { return n.X.SideEffects() }

func (n *Ctor) SideEffects() bool {
	for _, e := range n.Elems {
		if e.Value.SideEffects() {
			return true
		}
	}
	return false
}

func (n *VirtualRef) SideEffects() bool { return n.Object.SideEffects() }

func (*IntConst) irNode()     {}
func (*FloatConst) irNode()   {}
func (*ComplexConst) irNode() {}
func (*StringConst) irNode()  {}
func (*Zero) irNode()         {}
func (*Empty) irNode()        {}
func (*Var) irNode()          {}
func (*Temp) irNode()         {}
func (*FuncRef) irNode()      {}
func (*Unary) irNode()        {}
func (*Binary) irNode()       {}
func (*Cond) irNode()         {}
func (*Compound) irNode()     {}
func (*Save) irNode()         {}
func (*Call) irNode()         {}
func (*Assign) irNode()       {}
func (*Index) irNode()        {}
func (*FieldRef) irNode()     {}
func (*Ctor) irNode()         {}
func (*Splat) irNode()        {}
func (*Loop) irNode()         {}
func (*TryFinally) irNode()   {}
func (*VirtualRef) irNode()   {}
func (*Error) irNode()        {}
