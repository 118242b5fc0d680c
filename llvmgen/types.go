package llvmgen

import (
	"github.com/thiremani/exprlower/ir"
	"tinygo.org/x/go-llvm"
)

func (g *Generator) ptrType() llvm.Type {
	return llvm.PointerType(g.Context.Int8Type(), 0)
}

func (g *Generator) llvmType(t ir.Type) llvm.Type {
	switch tt := t.(type) {
	case ir.Void:
		return g.Context.VoidType()
	case ir.Bool:
		return g.Context.Int1Type()
	case ir.Int:
		return g.Context.IntType(int(tt.Bits))
	case ir.Float:
		return g.floatType(tt)
	case ir.Complex:
		part := g.floatType(tt.Part())
		return g.Context.StructType([]llvm.Type{part, part}, false)
	case ir.Pointer, ir.AssocArray:
		return g.ptrType()
	case ir.Array:
		return llvm.ArrayType(g.llvmType(tt.Elem), int(tt.Len))
	case ir.Slice:
		return g.Context.StructType([]llvm.Type{g.Context.Int64Type(), g.ptrType()}, false)
	case ir.Delegate:
		return g.Context.StructType([]llvm.Type{g.ptrType(), g.ptrType()}, false)
	case ir.Vector:
		return llvm.VectorType(g.llvmType(tt.Elem), int(tt.Len))
	case *ir.Struct:
		return g.recordType(tt)
	case *ir.Func:
		return g.funcType(tt)
	}
	g.fail("no LLVM type for %s", t)
	return llvm.Type{}
}

func (g *Generator) floatType(f ir.Float) llvm.Type {
	switch f.Bits {
	case 32:
		return g.Context.FloatType()
	case 64:
		return g.Context.DoubleType()
	case 80:
		return g.Context.X86FP80Type()
	}
	g.fail("unsupported float width: %d", f.Bits)
	return llvm.Type{}
}

func (g *Generator) funcType(f *ir.Func) llvm.Type {
	params := make([]llvm.Type, len(f.Params))
	for i, p := range f.Params {
		params[i] = g.llvmType(p)
	}
	return llvm.FunctionType(g.llvmType(f.Result), params, f.Variadic)
}

// recordType lays out a record as a packed struct, padding between fields
// so that every field sits at its declared offset. Fields are addressed by
// byte offset, so unions become a plain byte buffer.
func (g *Generator) recordType(s *ir.Struct) llvm.Type {
	if t, ok := g.records[s]; ok {
		return t
	}
	st := g.Context.StructCreateNamed(s.Name)
	g.records[s] = st

	i8 := g.Context.Int8Type()
	var body []llvm.Type
	var at uint64
	if !s.Union {
		for _, f := range s.Fields {
			if f.Offset < at {
				// overlapping fields; fall back to bytes
				body, at = nil, 0
				break
			}
			if f.Offset > at {
				body = append(body, llvm.ArrayType(i8, int(f.Offset-at)))
			}
			body = append(body, g.llvmType(f.Type))
			at = f.Offset + f.Type.Size()
		}
	}
	if at < s.SizeOf {
		body = append(body, llvm.ArrayType(i8, int(s.SizeOf-at)))
	}
	st.StructSetBody(body, true)
	return st
}

// pairFields reports the types laid out as a two element LLVM struct.
func pairFields(t ir.Type) bool {
	switch t.(type) {
	case ir.Slice, ir.Delegate, ir.Complex:
		return true
	}
	return false
}
