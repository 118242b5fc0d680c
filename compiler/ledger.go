package compiler

import "github.com/thiremani/exprlower/ast"

// Ledger records the scoped variables of a function awaiting destruction,
// in declaration order. Consumed entries are cleared in place, so indices
// handed out by Len stay valid.
type Ledger struct {
	vars []*ast.VarDecl
}

func (l *Ledger) Push(vd *ast.VarDecl) {
	l.vars = append(l.vars, vd)
}

func (l *Ledger) Len() int { return len(l.vars) }

// Consume takes the live entries in [start, end) and returns them last
// declared first.
func (l *Ledger) Consume(start, end int) []*ast.VarDecl {
	if start < 0 || end > len(l.vars) || start > end {
		panic("internal: ledger range out of bounds")
	}
	var out []*ast.VarDecl
	for i := end - 1; i >= start; i-- {
		if l.vars[i] == nil {
			continue
		}
		out = append(out, l.vars[i])
		l.vars[i] = nil
	}
	return out
}

// Pending returns the entries not yet consumed.
func (l *Ledger) Pending() []*ast.VarDecl {
	var out []*ast.VarDecl
	for _, vd := range l.vars {
		if vd != nil {
			out = append(out, vd)
		}
	}
	return out
}
