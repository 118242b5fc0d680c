package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// Dump renders n as an s-expression. Temporaries and saved values are
// numbered in order of first appearance, so two structurally identical
// trees dump identically.
func Dump(n Node) string {
	p := &printer{
		saves: make(map[*Save]int),
		temps: make(map[*Temp]int),
	}
	p.print(n)
	return p.sb.String()
}

type printer struct {
	sb    strings.Builder
	saves map[*Save]int
	temps map[*Temp]int
}

func (p *printer) printf(format string, args ...any) {
	fmt.Fprintf(&p.sb, format, args...)
}

func (p *printer) temp(t *Temp) string {
	id, ok := p.temps[t]
	if !ok {
		id = len(p.temps)
		p.temps[t] = id
	}
	return "%t" + strconv.Itoa(id)
}

func (p *printer) list(nodes []Node) {
	for _, n := range nodes {
		p.sb.WriteByte(' ')
		p.print(n)
	}
}

func (p *printer) print(n Node) {
	switch v := n.(type) {
	case nil:
		p.sb.WriteString("<nil>")
	case *IntConst:
		p.printf("%d:%s", v.Val, v.T)
	case *FloatConst:
		p.printf("%g:%s", v.Val, v.T)
	case *ComplexConst:
		p.printf("(%g%+gi):%s", v.Re, v.Im, v.T)
	case *StringConst:
		p.printf("%q:%s", v.Data, v.T)
	case *Zero:
		p.printf("zero:%s", v.T)
	case *Empty:
		p.sb.WriteString("empty")
	case *Var:
		if v.Global {
			p.sb.WriteByte('@')
		}
		p.sb.WriteString(v.Name)
	case *Temp:
		p.sb.WriteString(p.temp(v))
	case *FuncRef:
		p.printf("&%s", v.Name)
	case *Unary:
		p.printf("(%s:%s ", v.Op, v.T)
		p.print(v.X)
		p.sb.WriteByte(')')
	case *Binary:
		p.printf("(%s:%s ", v.Op, v.T)
		p.print(v.X)
		p.sb.WriteByte(' ')
		p.print(v.Y)
		p.sb.WriteByte(')')
	case *Cond:
		p.printf("(cond:%s", v.T)
		p.list([]Node{v.C, v.Then, v.Else})
		p.sb.WriteByte(')')
	case *Compound:
		p.sb.WriteString("(seq")
		p.list([]Node{v.First, v.Second})
		p.sb.WriteByte(')')
	case *Save:
		if id, ok := p.saves[v]; ok {
			p.printf("$%d", id)
			return
		}
		id := len(p.saves)
		p.saves[v] = id
		p.printf("(save$%d ", id)
		p.print(v.X)
		p.sb.WriteByte(')')
	case *Call:
		p.printf("(call:%s ", v.T)
		if v.ReturnSlot {
			p.sb.WriteString("retslot ")
		}
		p.print(v.Callee)
		if v.This != nil {
			p.sb.WriteString(" this=")
			p.print(v.This)
		}
		p.list(v.Args)
		p.sb.WriteByte(')')
	case *Assign:
		op := "set"
		if v.Init {
			op = "init"
		}
		p.printf("(%s ", op)
		p.print(v.Dst)
		p.sb.WriteByte(' ')
		p.print(v.Src)
		p.sb.WriteByte(')')
	case *Index:
		p.printf("(index:%s ", v.T)
		p.print(v.Ptr)
		p.sb.WriteByte(' ')
		p.print(v.Idx)
		p.sb.WriteByte(')')
	case *FieldRef:
		p.printf("(field.%s ", FieldsOf(v.X.Type())[v.Index].Name)
		p.print(v.X)
		p.sb.WriteByte(')')
	case *Ctor:
		p.printf("(ctor:%s", v.T)
		for _, e := range v.Elems {
			p.printf(" [%d]=", e.Index)
			p.print(e.Value)
		}
		p.sb.WriteByte(')')
	case *Splat:
		p.printf("(splat:%s ", v.T)
		p.print(v.X)
		p.sb.WriteByte(')')
	case *Loop:
		p.printf("(loop %s ", p.temp(v.Index))
		p.print(v.Count)
		if v.Cond != nil {
			p.sb.WriteString(" while ")
			p.print(v.Cond)
		}
		p.sb.WriteByte(' ')
		p.print(v.Body)
		p.sb.WriteByte(')')
	case *TryFinally:
		p.sb.WriteString("(try ")
		p.print(v.Body)
		p.sb.WriteString(" finally ")
		p.print(v.Cleanup)
		p.sb.WriteByte(')')
	case *VirtualRef:
		p.printf("(vtbl[%d] ", v.Slot)
		p.print(v.Object)
		p.sb.WriteByte(')')
	case *Error:
		p.printf("error:%s", v.T)
	default:
		panic(fmt.Sprintf("internal: Dump: unhandled node %T", n))
	}
}
