// Package typesig renders human-readable signatures for packet field types.
package typesig

import (
	"strings"

	"github.com/yourorg/packetdoc/pkg/types"
)

type aliasKey struct {
	kind     types.Primitive
	nullable bool
}

// aliases is the closed table of primitive spellings. Reference kinds
// (object, string, void) have no nullable form.
var aliases = map[aliasKey]string{
	{types.Byte, false}:    "byte",
	{types.SByte, false}:   "sbyte",
	{types.Int16, false}:   "short",
	{types.UInt16, false}:  "ushort",
	{types.Int32, false}:   "int",
	{types.UInt32, false}:  "uint",
	{types.Int64, false}:   "long",
	{types.UInt64, false}:  "ulong",
	{types.Single, false}:  "float",
	{types.Double, false}:  "double",
	{types.Decimal, false}: "decimal",
	{types.Object, false}:  "object",
	{types.Boolean, false}: "bool",
	{types.Char, false}:    "char",
	{types.String, false}:  "string",
	{types.Void, false}:    "void",
	{types.Byte, true}:     "byte?",
	{types.SByte, true}:    "sbyte?",
	{types.Int16, true}:    "short?",
	{types.UInt16, true}:   "ushort?",
	{types.Int32, true}:    "int?",
	{types.UInt32, true}:   "uint?",
	{types.Int64, true}:    "long?",
	{types.UInt64, true}:   "ulong?",
	{types.Single, true}:   "float?",
	{types.Double, true}:   "double?",
	{types.Decimal, true}:  "decimal?",
	{types.Boolean, true}:  "bool?",
	{types.Char, true}:     "char?",
}

// Vector3 has two computed members that are not sent on the wire.
const (
	vector3Name      = "Vector3"
	vector3Signature = "Vector3<float, float, float>"
)

// Alias returns the fixed spelling of a primitive kind.
func Alias(p types.Primitive, nullable bool) (string, bool) {
	a, ok := aliases[aliasKey{p, nullable}]
	return a, ok
}

// Render returns the signature of t. It recurses through generic
// arguments and class fields and does not terminate on cyclic graphs;
// run Check first when the graph comes from untrusted metadata.
func Render(t *types.Type) string {
	if t == nil {
		return ""
	}
	if t.Kind == types.KindPrimitive {
		if a, ok := Alias(t.Primitive, t.Nullable); ok {
			return a
		}
	}

	switch t.Kind {
	case types.KindEnum:
		underlying := t.Underlying
		if underlying == types.PrimitiveNone {
			underlying = types.Int32
		}
		if a, ok := Alias(underlying, false); ok {
			return a
		}
		return t.Name
	case types.KindGeneric:
		return t.Name + "<" + join(t.Args) + ">"
	case types.KindClass:
		if t.Name == vector3Name {
			return vector3Signature
		}
		fieldTypes := make([]*types.Type, len(t.Fields))
		for i, f := range t.Fields {
			fieldTypes[i] = f.Type
		}
		return t.Name + "<" + join(fieldTypes) + ">"
	}
	return t.Name
}

func join(ts []*types.Type) string {
	b := &strings.Builder{}
	for i, t := range ts {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(Render(t))
	}
	return b.String()
}
