package types

// Field is a data member of a struct or class.
type Field struct {
	Name   string
	Type   Type
	Offset uint64
}

// StructDecl describes a struct or union after semantic analysis.
type StructDecl struct {
	Name     string
	Fields   []*Field
	SizeOf   uint64
	Union    bool
	ZeroInit bool // default initializer is all zero bits

	Postblit  *FuncDecl
	Dtor      *FuncDecl
	Invariant *FuncDecl
	UserEq    bool // declares its own equality

	// VThis is the hidden context field of nested structs. It is not part
	// of Fields.
	VThis *Field
	// Outer is the function whose frame a nested struct refers to. A nil
	// Outer with a non-nil VThis means the enclosing instance is 'this'.
	Outer *FuncDecl
}

func (sd *StructDecl) Nested() bool { return sd.VThis != nil }

// Opaque reports a forward declared struct whose layout is unknown.
func (sd *StructDecl) Opaque() bool { return sd.SizeOf == 0 && len(sd.Fields) == 0 }

func (sd *StructDecl) Type() Struct { return Struct{Decl: sd} }

// ClassDecl describes a class or interface.
type ClassDecl struct {
	Name      string
	Base      *ClassDecl
	Fields    []*Field
	SizeOf    uint64 // instance size, including the vtable and monitor slots
	Interface bool
	COM       bool
	CPP       bool

	Invariant *FuncDecl
	Vtbl      []*FuncDecl

	// VThis is the hidden outer reference of nested classes.
	VThis *Field
	// Outer is the class enclosing a nested class, when there is one.
	Outer *ClassDecl
	// OuterFunc is the function enclosing a class nested in a function.
	OuterFunc *FuncDecl
}

func (cd *ClassDecl) Nested() bool { return cd.VThis != nil }

func (cd *ClassDecl) Type() Class { return Class{Decl: cd} }

// IsBaseOf reports whether cd is other or one of its ancestors.
func (cd *ClassDecl) IsBaseOf(other *ClassDecl) bool {
	for c := other; c != nil; c = c.Base {
		if c == cd {
			return true
		}
	}
	return false
}

// FuncDecl is a resolved function symbol.
type FuncDecl struct {
	Name string
	Type Function

	NeedsThis bool // member function taking a hidden this
	Virtual   bool
	Final     bool
	VtblIndex int

	// Nested functions take the frame of Outer as their context.
	Nested bool
	Outer  *FuncDecl

	Ctor     bool
	Unittest bool
	HasBody  bool
	// Local is set when the body belongs to the unit being compiled.
	Local bool
}

// Static reports whether calls bypass the virtual table.
func (fd *FuncDecl) Static() bool {
	return !fd.Virtual || fd.Final
}
