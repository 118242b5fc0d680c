package compiler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/thiremani/exprlower/types"
)

// basicDemangle inverts basicMangle.
var basicDemangle = func() map[byte]types.Type {
	m := make(map[byte]types.Type, len(basicMangle))
	for name, code := range basicMangle {
		t, ok := types.Builtin(name)
		if !ok {
			panic("internal: no builtin type " + name)
		}
		m[code[0]] = t
	}
	return m
}()

// DemangleType decodes a type signature produced by MangleType. Structs
// and classes come back as declarations carrying only their name.
func DemangleType(s string) (types.Type, error) {
	t, next, err := parseTypeFrom(s, 0)
	if err != nil {
		return nil, err
	}
	if next != len(s) {
		return nil, fmt.Errorf("trailing characters at %d in %q", next, s)
	}
	return t, nil
}

// TypeInfoType recovers the type a type descriptor symbol describes, e.g.
// _D11TypeInfo_Ai6__initZ gives int[].
func TypeInfoType(sym string) (types.Type, error) {
	const prefix, suffix, info = "_D", "6__initZ", "TypeInfo_"
	if !strings.HasPrefix(sym, prefix) || !strings.HasSuffix(sym, suffix) ||
		len(sym) < len(prefix)+len(suffix) {
		return nil, fmt.Errorf("%q is not a type descriptor symbol", sym)
	}
	body := sym[len(prefix) : len(sym)-len(suffix)]
	ident, next, err := readIdent(body, 0)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", sym, err)
	}
	if next != len(body) || !strings.HasPrefix(ident, info) {
		return nil, fmt.Errorf("%q is not a type descriptor symbol", sym)
	}
	t, err := DemangleType(ident[len(info):])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", sym, err)
	}
	return t, nil
}

// parseTypeFrom parses the type starting at pos and returns it with the
// index just past it.
func parseTypeFrom(s string, pos int) (types.Type, int, error) {
	if pos >= len(s) {
		return nil, pos, fmt.Errorf("parse error: type expected at %d", pos)
	}
	switch s[pos] {
	case 'P':
		elem, next, err := parseTypeFrom(s, pos+1)
		if err != nil {
			return nil, next, err
		}
		return types.Pointer{Elem: elem}, next, nil
	case 'A':
		elem, next, err := parseTypeFrom(s, pos+1)
		if err != nil {
			return nil, next, err
		}
		return types.DynArray{Elem: elem}, next, nil
	case 'G':
		dim, npos, err := readCount(s, pos+1)
		if err != nil {
			return nil, npos, fmt.Errorf("static array missing length: %w", err)
		}
		elem, next, err := parseTypeFrom(s, npos)
		if err != nil {
			return nil, next, err
		}
		return types.StaticArray{Elem: elem, Dim: uint64(dim)}, next, nil
	case 'H':
		key, npos, err := parseTypeFrom(s, pos+1)
		if err != nil {
			return nil, npos, err
		}
		value, next, err := parseTypeFrom(s, npos)
		if err != nil {
			return nil, next, err
		}
		return types.AssocArray{Key: key, Value: value}, next, nil
	case 'S':
		name, next, err := readIdent(s, pos+1)
		if err != nil {
			return nil, next, err
		}
		return types.Struct{Decl: &types.StructDecl{Name: name}}, next, nil
	case 'C':
		name, next, err := readIdent(s, pos+1)
		if err != nil {
			return nil, next, err
		}
		return types.Class{Decl: &types.ClassDecl{Name: name}}, next, nil
	case 'F':
		return parseFunc(s, pos)
	case 'D':
		f, next, err := parseFunc(s, pos+1)
		if err != nil {
			return nil, next, err
		}
		return types.Delegate{Func: f.(types.Function)}, next, nil
	case 'N':
		if !strings.HasPrefix(s[pos:], "NhG") {
			return nil, pos, fmt.Errorf("parse error: unknown qualifier at %d", pos)
		}
		dim, npos, err := readCount(s, pos+3)
		if err != nil {
			return nil, npos, fmt.Errorf("vector missing length: %w", err)
		}
		elem, next, err := parseTypeFrom(s, npos)
		if err != nil {
			return nil, next, err
		}
		return types.Vector{Elem: elem, Dim: uint64(dim)}, next, nil
	case 'n':
		return types.Null{}, pos + 1, nil
	}
	if t, ok := basicDemangle[s[pos]]; ok {
		return t, pos + 1, nil
	}
	return nil, pos, fmt.Errorf("parse error: unknown type code %q at %d", s[pos], pos)
}

// parseFunc parses F [Nc] params (Z|Y) result, with s[pos] == 'F'.
func parseFunc(s string, pos int) (types.Type, int, error) {
	if pos >= len(s) || s[pos] != 'F' {
		return nil, pos, fmt.Errorf("parse error: function expected at %d", pos)
	}
	var f types.Function
	pos++
	if strings.HasPrefix(s[pos:], "Nc") {
		f.Ref = true
		pos += 2
	}
	for {
		if pos >= len(s) {
			return nil, pos, fmt.Errorf("parse error: unterminated parameter list")
		}
		if s[pos] == 'Z' || s[pos] == 'Y' {
			f.Variadic = s[pos] == 'Y'
			pos++
			break
		}
		p, next, err := parseTypeFrom(s, pos)
		if err != nil {
			return nil, next, err
		}
		f.Params = append(f.Params, p)
		pos = next
	}
	result, next, err := parseTypeFrom(s, pos)
	if err != nil {
		return nil, next, err
	}
	f.Result = result
	return f, next, nil
}

// readCount reads the decimal number at pos.
func readCount(s string, pos int) (int, int, error) {
	j := pos
	for j < len(s) && s[j] >= '0' && s[j] <= '9' {
		j++
	}
	if j == pos {
		return 0, pos, fmt.Errorf("expected digits at %d", pos)
	}
	n, err := strconv.Atoi(s[pos:j])
	if err != nil {
		return 0, pos, err
	}
	return n, j, nil
}

// readIdent reads a length prefixed identifier.
func readIdent(s string, pos int) (string, int, error) {
	n, next, err := readCount(s, pos)
	if err != nil {
		return "", pos, fmt.Errorf("identifier missing length: %w", err)
	}
	if n == 0 || next+n > len(s) {
		return "", next, fmt.Errorf("identifier length %d out of range at %d", n, pos)
	}
	return s[next : next+n], next + n, nil
}
