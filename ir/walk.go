package ir

// Children returns the operands of n in evaluation order.
func Children(n Node) []Node {
	switch v := n.(type) {
	case *Unary:
		return []Node{v.X}
	case *Binary:
		return []Node{v.X, v.Y}
	case *Cond:
		return []Node{v.C, v.Then, v.Else}
	case *Compound:
		return []Node{v.First, v.Second}
	case *Save:
		return []Node{v.X}
	case *Call:
		out := []Node{v.Callee}
		if v.This != nil {
			out = append(out, v.This)
		}
		return append(out, v.Args...)
	case *Assign:
		return []Node{v.Dst, v.Src}
	case *Index:
		return []Node{v.Ptr, v.Idx}
	case *FieldRef:
		return []Node{v.X}
	case *Ctor:
		out := make([]Node, len(v.Elems))
		for i, e := range v.Elems {
			out[i] = e.Value
		}
		return out
	case *Splat:
		return []Node{v.X}
	case *Loop:
		out := []Node{v.Index, v.Count}
		if v.Cond != nil {
			out = append(out, v.Cond)
		}
		return append(out, v.Body)
	case *TryFinally:
		return []Node{v.Body, v.Cleanup}
	case *VirtualRef:
		return []Node{v.Object}
	}
	return nil
}

// Inspect traverses n in evaluation order, calling f before visiting the
// children of each node. If f returns false the children are skipped.
// The operand of a Save is visited only at its first use.
func Inspect(n Node, f func(Node) bool) {
	seen := make(map[*Save]bool)
	var walk func(Node)
	walk = func(n Node) {
		if !f(n) {
			return
		}
		if s, ok := n.(*Save); ok {
			if seen[s] {
				return
			}
			seen[s] = true
		}
		for _, c := range Children(n) {
			walk(c)
		}
	}
	walk(n)
}

// Calls returns the calls of n in the order they are made: a call comes
// after the calls computing its operands.
func Calls(n Node) []*Call {
	var out []*Call
	seen := make(map[*Save]bool)
	var walk func(Node)
	walk = func(n Node) {
		if s, ok := n.(*Save); ok {
			if seen[s] {
				return
			}
			seen[s] = true
		}
		for _, c := range Children(n) {
			walk(c)
		}
		if c, ok := n.(*Call); ok {
			out = append(out, c)
		}
	}
	walk(n)
	return out
}

// Callee returns the name of a direct call's target, or "".
func Callee(c *Call) string {
	if f, ok := c.Callee.(*FuncRef); ok {
		return f.Name
	}
	return ""
}
