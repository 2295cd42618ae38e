package metadata

import (
	"fmt"
	"strings"

	"github.com/yourorg/packetdoc/pkg/types"
)

var keywords = map[string]types.Primitive{
	"byte":    types.Byte,
	"sbyte":   types.SByte,
	"short":   types.Int16,
	"ushort":  types.UInt16,
	"int":     types.Int32,
	"uint":    types.UInt32,
	"long":    types.Int64,
	"ulong":   types.UInt64,
	"float":   types.Single,
	"double":  types.Double,
	"decimal": types.Decimal,
	"object":  types.Object,
	"bool":    types.Boolean,
	"char":    types.Char,
	"string":  types.String,
	"void":    types.Void,
}

// primitiveByName accepts a keyword ("uint", "uint?") or a runtime name
// ("System.UInt32").
func primitiveByName(s string) (types.Primitive, bool, bool) {
	s = strings.TrimSpace(s)
	nullable := strings.HasSuffix(s, "?")
	s = strings.TrimSuffix(s, "?")
	if p, ok := keywords[s]; ok {
		return p, nullable && isValueKind(p), true
	}
	if name, ok := strings.CutPrefix(s, "System."); ok {
		for p := types.Byte; p <= types.Void; p++ {
			if p.String() == name {
				return p, nullable && isValueKind(p), true
			}
		}
	}
	return types.PrimitiveNone, false, false
}

// isValueKind reports whether p has a Nullable<T> form. string, object
// and void are references: a "?" on them only annotates nullability.
func isValueKind(p types.Primitive) bool {
	switch p {
	case types.String, types.Object, types.Void:
		return false
	}
	return true
}

type resolver struct {
	byFull   map[string]*types.Type
	bySimple map[string][]*types.Type
	opaque   map[string]*types.Type
	structs  map[*types.Type]bool // declared with kind "struct"
}

// ref resolves a type reference: a primitive, "Name<Arg, ...>", a
// declared type by full or unique simple name, or an opaque name. A
// trailing "?" marks a nullable value.
func (r *resolver) ref(s string) (*types.Type, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty type reference")
	}

	if p, nullable, ok := primitiveByName(s); ok {
		return primitive(p, nullable), nil
	}

	if strings.HasSuffix(s, "?") {
		inner, err := r.ref(strings.TrimSuffix(s, "?"))
		if err != nil {
			return nil, err
		}
		return r.nullableOf(inner), nil
	}

	if i := strings.Index(s, "<"); i >= 0 {
		if !strings.HasSuffix(s, ">") {
			return nil, fmt.Errorf("unbalanced generic reference %q", s)
		}
		parts, err := splitArgs(s[i+1 : len(s)-1])
		if err != nil {
			return nil, fmt.Errorf("%q: %w", s, err)
		}
		args := make([]*types.Type, 0, len(parts))
		for _, p := range parts {
			a, err := r.ref(p)
			if err != nil {
				return nil, err
			}
			args = append(args, a)
		}
		name := strings.TrimSpace(s[:i])
		if base := strings.TrimPrefix(name, "System."); base == "Nullable" && len(args) == 1 {
			return r.nullableOf(args[0]), nil
		}
		ns, simple := splitName(name)
		if decl, err := r.lookup(name); err != nil {
			return nil, err
		} else if decl != nil {
			ns, simple = decl.Namespace, decl.Name
		}
		return &types.Type{Name: simple, Namespace: ns, Kind: types.KindGeneric, Args: args}, nil
	}

	decl, err := r.lookup(s)
	if err != nil {
		return nil, err
	}
	if decl != nil {
		return decl, nil
	}
	if t, ok := r.opaque[s]; ok {
		return t, nil
	}
	ns, simple := splitName(s)
	t := &types.Type{Name: simple, Namespace: ns, Kind: types.KindOther}
	r.opaque[s] = t
	return t, nil
}

func (r *resolver) lookup(name string) (*types.Type, error) {
	if t, ok := r.byFull[name]; ok {
		return t, nil
	}
	if strings.Contains(name, ".") {
		return nil, nil
	}
	switch cands := r.bySimple[name]; len(cands) {
	case 0:
		return nil, nil
	case 1:
		return cands[0], nil
	default:
		return nil, fmt.Errorf("ambiguous type name %q, use the full name", name)
	}
}

func primitive(p types.Primitive, nullable bool) *types.Type {
	return &types.Type{Name: p.String(), Namespace: "System", Kind: types.KindPrimitive, Primitive: p, Nullable: nullable}
}

// nullableOf marks value primitives nullable and wraps the other value
// types (enums, declared structs, opaque types) in Nullable<T>, which is
// how the runtime spells them. Reference types, including constructed
// generics, are returned unchanged.
func (r *resolver) nullableOf(t *types.Type) *types.Type {
	switch {
	case t.Kind == types.KindPrimitive:
		if t.Nullable || !isValueKind(t.Primitive) {
			return t
		}
		return primitive(t.Primitive, true)
	case t.Kind == types.KindEnum, t.Kind == types.KindOther, r.structs[t]:
		return &types.Type{Name: "Nullable", Namespace: "System", Kind: types.KindGeneric, Args: []*types.Type{t}}
	}
	return t
}

func splitName(full string) (string, string) {
	if i := strings.LastIndex(full, "."); i >= 0 {
		return full[:i], full[i+1:]
	}
	return "", full
}

// splitArgs splits a generic argument list on top-level commas.
func splitArgs(s string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var out []string
	depth, start := 0, 0
	for i, c := range s {
		switch c {
		case '<':
			depth++
		case '>':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("unbalanced '>'")
			}
		case ',':
			if depth == 0 {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("unbalanced '<'")
	}
	return append(out, s[start:]), nil
}
