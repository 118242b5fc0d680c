package ir

import "fmt"

func IntOf(t Type, v int64) *IntConst { return &IntConst{T: t, Val: v} }

// SizeOf returns a size_t constant.
func SizeOf(v uint64) *IntConst { return &IntConst{T: SizeT, Val: int64(v)} }

func BoolOf(b bool) *IntConst {
	if b {
		return &IntConst{T: BoolType, Val: 1}
	}
	return &IntConst{T: BoolType, Val: 0}
}

func FloatOf(t Type, v float64) *FloatConst { return &FloatConst{T: t, Val: v} }

func ComplexOf(t Complex, re, im float64) *ComplexConst {
	return &ComplexConst{T: t, Re: re, Im: im}
}

func StringOf(t Array, data []byte) *StringConst { return &StringConst{T: t, Data: data} }

func ZeroOf(t Type) *Zero { return &Zero{T: t} }

// Null returns the null pointer of type t.
func Null(t Type) *Zero {
	if !IsPointer(t) {
		panic("internal: null of non-pointer type " + t.String())
	}
	return &Zero{T: t}
}

func Nothing() *Empty { return &Empty{} }

func NewVar(name string, t Type) *Var { return &Var{Name: name, T: t} }

func NewGlobal(name string, t Type) *Var { return &Var{Name: name, T: t, Global: true} }

func NewTemp(t Type, hint string) *Temp { return &Temp{T: t, Hint: hint} }

func FuncAddr(name string, fn *Func, linkage Linkage) *FuncRef {
	return &FuncRef{Name: name, Func: fn, Linkage: linkage}
}

func ErrorOf(t Type) *Error { return &Error{T: t} }

// IsConstant reports literal nodes.
func IsConstant(n Node) bool {
	switch n.(type) {
	case *IntConst, *FloatConst, *ComplexConst, *StringConst, *Zero:
		return true
	}
	return false
}

// IsIntZero reports an integer constant equal to zero.
func IsIntZero(n Node) bool {
	switch v := n.(type) {
	case *IntConst:
		return v.Val == 0
	case *Zero:
		return IsInteger(v.T)
	}
	return false
}

// IsInvariant reports nodes that can be referenced more than once
// without a temporary.
func IsInvariant(n Node) bool {
	switch v := n.(type) {
	case *IntConst, *FloatConst, *ComplexConst, *StringConst, *Zero, *Empty,
		*Var, *Temp, *FuncRef, *Save, *Error:
		return true
	case *Unary:
		if v.Op == Addr {
			return IsInvariant(v.X)
		}
	}
	return false
}

// Unop builds a unary node of type t.
func Unop(op UnaryOp, t Type, x Node) Node {
	switch op {
	case Deref:
		return DerefOf(x)
	case Addr:
		return AddrOf(x)
	}
	return &Unary{Op: op, X: x, T: t}
}

func Negate(x Node) Node {
	if c, ok := x.(*IntConst); ok {
		return IntOf(c.T, -c.Val)
	}
	if c, ok := x.(*FloatConst); ok {
		return FloatOf(c.T, -c.Val)
	}
	return &Unary{Op: Neg, X: x, T: x.Type()}
}

func Complement(x Node) Node {
	if c, ok := x.(*IntConst); ok {
		return IntOf(c.T, ^c.Val)
	}
	return &Unary{Op: BitNot, X: x, T: x.Type()}
}

// Not negates a boolean condition.
func Not(x Node) Node {
	if c, ok := x.(*IntConst); ok && c.T == BoolType {
		return BoolOf(c.Val == 0)
	}
	if u, ok := x.(*Unary); ok && u.Op == TruthNot {
		return u.X
	}
	return &Unary{Op: TruthNot, X: x, T: BoolType}
}

// DerefOf loads through a pointer. *&x folds to x.
func DerefOf(x Node) Node {
	p, ok := x.Type().(Pointer)
	if !ok || p.Elem == nil {
		panic(fmt.Sprintf("internal: dereference of %s", x.Type()))
	}
	if u, ok := x.(*Unary); ok && u.Op == Addr && SameType(u.X.Type(), p.Elem) {
		return u.X
	}
	return &Unary{Op: Deref, X: x, T: p.Elem}
}

// AddrOf takes the address of an lvalue. &*p folds to p.
func AddrOf(x Node) Node {
	if u, ok := x.(*Unary); ok && u.Op == Deref {
		return u.X
	}
	return &Unary{Op: Addr, X: x, T: Pointer{Elem: x.Type()}}
}

// ConvertTo converts scalar x to t.
func ConvertTo(t Type, x Node) Node {
	if SameType(x.Type(), t) {
		return x
	}
	if c, ok := x.(*IntConst); ok && IsInteger(t) {
		return &IntConst{T: t, Val: truncate(t, c.Val)}
	}
	if c, ok := x.(*IntConst); ok && IsFloat(t) {
		return FloatOf(t, float64(c.Val))
	}
	if z, ok := x.(*Zero); ok && !IsAggregate(z.T) && !IsAggregate(t) {
		return ZeroOf(t)
	}
	return &Unary{Op: Convert, X: x, T: t}
}

func truncate(t Type, v int64) int64 {
	switch tt := t.(type) {
	case Bool:
		if v != 0 {
			return 1
		}
		return 0
	case Int:
		if tt.Bits >= 64 {
			return v
		}
		mask := int64(1)<<tt.Bits - 1
		v &= mask
		if !tt.Unsigned && v&(int64(1)<<(tt.Bits-1)) != 0 {
			v -= int64(1) << tt.Bits
		}
	}
	return v
}

// ViewAs reinterprets the bits of x as t.
func ViewAs(t Type, x Node) Node {
	if SameType(x.Type(), t) {
		return x
	}
	return &Unary{Op: ViewConv, X: x, T: t}
}

// NopTo changes the type of x without changing its value.
func NopTo(t Type, x Node) Node {
	if SameType(x.Type(), t) {
		return x
	}
	if _, ok := x.(*Zero); ok {
		return ZeroOf(t)
	}
	return &Unary{Op: Nop, X: x, T: t}
}

// Part extracts the real or imaginary half of a complex value.
func Part(op UnaryOp, x Node) Node {
	c, ok := x.Type().(Complex)
	if !ok {
		panic("internal: component of non-complex " + x.Type().String())
	}
	return &Unary{Op: op, X: x, T: c.Part()}
}

// Binop builds a binary node of type t.
func Binop(op BinaryOp, t Type, x, y Node) Node {
	if op.IsComparison() {
		return Compare(op, x, y)
	}
	if op == AndIf || op == OrIf {
		return logical(op, x, y)
	}
	return &Binary{Op: op, X: x, Y: y, T: t}
}

// Compare yields a bool.
func Compare(op BinaryOp, x, y Node) Node {
	if !op.IsComparison() {
		panic("internal: " + op.String() + " is not a comparison")
	}
	return &Binary{Op: op, X: x, Y: y, T: BoolType}
}

func AndIfOf(x, y Node) Node { return logical(AndIf, x, y) }
func OrIfOf(x, y Node) Node  { return logical(OrIf, x, y) }

func logical(op BinaryOp, x, y Node) Node {
	return &Binary{Op: op, X: x, Y: y, T: BoolType}
}

// ComplexFrom builds a complex value from its parts.
func ComplexFrom(t Complex, re, im Node) Node {
	return &Binary{Op: MakeComplex, X: ConvertTo(t.Part(), re), Y: ConvertTo(t.Part(), im), T: t}
}

// Offset adds a byte offset to a pointer.
func Offset(ptr, bytes Node) Node {
	if IsIntZero(bytes) {
		return ptr
	}
	return &Binary{Op: PtrAdd, X: ptr, Y: bytes, T: ptr.Type()}
}

// ElemPtr returns the address of ptr[idx].
func ElemPtr(ptr, idx Node) Node {
	return AddrOf(IndexOf(ptr, idx))
}

// IndexOf is the element lvalue ptr[idx].
func IndexOf(ptr, idx Node) Node {
	p, ok := ptr.Type().(Pointer)
	if !ok || p.Elem == nil {
		panic(fmt.Sprintf("internal: index of %s", ptr.Type()))
	}
	return &Index{Ptr: ptr, Idx: ConvertTo(SizeT, idx), T: p.Elem}
}

func Condition(t Type, c, then, els Node) Node {
	return &Cond{C: c, Then: then, Else: els, T: t}
}

// Seq evaluates first then yields second. Either may be nil.
func Seq(first, second Node) Node {
	if first == nil {
		return second
	}
	if second == nil {
		return first
	}
	if _, ok := first.(*Empty); ok {
		return second
	}
	return &Compound{First: first, Second: second}
}

// SaveOf makes x single-evaluation unless it is already invariant.
func SaveOf(x Node) Node {
	if IsInvariant(x) {
		return x
	}
	return &Save{X: x}
}

// MaybeSave saves x only when it has side effects.
func MaybeSave(x Node) Node {
	if !x.SideEffects() {
		return x
	}
	return SaveOf(x)
}

// Stabilize returns an lvalue equivalent to x whose operands are
// evaluated once, so that it can be both read and written.
func Stabilize(x Node) Node {
	switch v := x.(type) {
	case *Var, *Temp, *Save:
		return x
	case *Index:
		return &Index{Ptr: SaveOf(v.Ptr), Idx: SaveOf(v.Idx), T: v.T}
	case *FieldRef:
		return &FieldRef{X: Stabilize(v.X), Index: v.Index, T: v.T}
	case *Unary:
		if v.Op == Deref {
			return &Unary{Op: Deref, X: SaveOf(v.X), T: v.T}
		}
	}
	return SaveOf(x)
}

// CallOf calls callee, a pointer to function. This may be nil.
func CallOf(callee, this Node, args []Node) *Call {
	fn := funcOf(callee.Type())
	return &Call{Callee: callee, This: this, Args: args, T: fn.Result}
}

// CallBuiltin calls an intrinsic.
func CallBuiltin(b Builtin, args ...Node) *Call {
	sig := b.Signature()
	if len(args) != len(sig.Params) {
		panic(fmt.Sprintf("internal: %s takes %d arguments, got %d", b, len(sig.Params), len(args)))
	}
	conv := make([]Node, len(args))
	for i, a := range args {
		conv[i] = coerce(sig.Params[i], a)
	}
	return &Call{Callee: b.Ref(), Args: conv, T: sig.Result}
}

// coerce adapts pointer and integer arguments to a parameter type.
func coerce(t Type, x Node) Node {
	switch {
	case IsPointer(t) && IsPointer(x.Type()):
		return NopTo(t, x)
	case IsInteger(t) && IsInteger(x.Type()):
		return ConvertTo(t, x)
	}
	return x
}

func funcOf(t Type) *Func {
	p, ok := t.(Pointer)
	if ok {
		if fn, ok := p.Elem.(*Func); ok {
			return fn
		}
	}
	panic("internal: call through non-function " + t.String())
}

func AssignTo(dst, src Node) *Assign { return &Assign{Dst: dst, Src: src} }

func InitTo(dst, src Node) *Assign { return &Assign{Dst: dst, Src: src, Init: true} }

// FieldOf selects field i of an aggregate value or lvalue.
func FieldOf(x Node, i int) Node {
	fields := FieldsOf(x.Type())
	if i < 0 || i >= len(fields) {
		panic(fmt.Sprintf("internal: field %d of %s", i, x.Type()))
	}
	if c, ok := x.(*Ctor); ok && !c.SideEffects() {
		for _, e := range c.Elems {
			if e.Index == i {
				return e.Value
			}
		}
	}
	return &FieldRef{X: x, Index: i, T: fields[i].Type}
}

// FieldNamed selects a field by name.
func FieldNamed(x Node, name string) Node {
	for i, f := range FieldsOf(x.Type()) {
		if f.Name == name {
			return FieldOf(x, i)
		}
	}
	panic(fmt.Sprintf("internal: no field %s in %s", name, x.Type()))
}

func SliceLen(x Node) Node { return FieldOf(x, 0) }
func SlicePtr(x Node) Node { return FieldOf(x, 1) }

// SliceOf builds a {length, ptr} value; length is evaluated first.
func SliceOf(t Slice, length, ptr Node) *Ctor {
	return &Ctor{T: t, Elems: []CtorElem{
		{Index: 0, Value: ConvertTo(SizeT, length)},
		{Index: 1, Value: NopTo(Pointer{Elem: t.Elem}, ptr)},
	}}
}

func DelegateOf(t Delegate, object, fn Node) *Ctor {
	return &Ctor{T: t, Elems: []CtorElem{
		{Index: 0, Value: NopTo(VoidPtr, object)},
		{Index: 1, Value: NopTo(Pointer{Elem: t.Func}, fn)},
	}}
}

func DelegateObject(x Node) Node { return FieldOf(x, 0) }
func DelegateFunc(x Node) Node   { return FieldOf(x, 1) }

func CtorOf(t Type, elems []CtorElem) *Ctor { return &Ctor{T: t, Elems: elems} }

func SplatOf(t Vector, x Node) *Splat { return &Splat{X: ConvertTo(t.Elem, x), T: t} }

func LoopOf(index *Temp, count, cond, body Node) *Loop {
	return &Loop{Index: index, Count: count, Cond: cond, Body: body}
}

func Protect(body, cleanup Node) *TryFinally {
	return &TryFinally{Body: body, Cleanup: cleanup}
}

// VirtualSlot loads slot from the vtable of object as fnptr.
func VirtualSlot(object Node, slot int, fnptr Type) *VirtualRef {
	return &VirtualRef{Object: object, Slot: slot, T: fnptr}
}

// IsLvalue reports nodes that denote storage.
func IsLvalue(n Node) bool {
	switch v := n.(type) {
	case *Var, *Temp, *Index:
		return true
	case *FieldRef:
		return IsLvalue(v.X)
	case *Unary:
		return v.Op == Deref
	case *Assign:
		return IsLvalue(v.Dst)
	}
	return false
}
