package ir

// Builtin names the compiler intrinsics the lowering may call.
type Builtin int

const (
	Memcmp Builtin = iota
	Memcpy
	Memset
	Pow
	Powf
	Powl
	Trap
	NumBuiltins
)

type builtinInfo struct {
	Name string
	Func *Func
}

var builtins = [NumBuiltins]builtinInfo{
	Memcmp: {"memcmp", &Func{Params: []Type{VoidPtr, VoidPtr, SizeT}, Result: I32}},
	Memcpy: {"memcpy", &Func{Params: []Type{VoidPtr, VoidPtr, SizeT}, Result: VoidPtr}},
	Memset: {"memset", &Func{Params: []Type{VoidPtr, I32, SizeT}, Result: VoidPtr}},
	Pow:    {"pow", &Func{Params: []Type{F64, F64}, Result: F64}},
	Powf:   {"powf", &Func{Params: []Type{F32, F32}, Result: F32}},
	Powl:   {"powl", &Func{Params: []Type{F80, F80}, Result: F80}},
	Trap:   {"__builtin_trap", &Func{Result: VoidType}},
}

func (b Builtin) String() string { return builtins[b].Name }

// Signature returns the function type of the builtin.
func (b Builtin) Signature() *Func { return builtins[b].Func }

// Ref returns the address of the builtin.
func (b Builtin) Ref() *FuncRef {
	info := builtins[b]
	return &FuncRef{Name: info.Name, Func: info.Func, Linkage: BuiltinFunc}
}

// BuiltinNamed returns the builtin spelled name.
func BuiltinNamed(name string) (Builtin, bool) {
	for i, info := range builtins {
		if info.Name == name {
			return Builtin(i), true
		}
	}
	return 0, false
}
