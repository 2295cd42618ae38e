package typesig

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/packetdoc/pkg/types"
)

func prim(p types.Primitive) *types.Type {
	return &types.Type{Name: p.String(), Namespace: "System", Kind: types.KindPrimitive, Primitive: p}
}

func nullable(p types.Primitive) *types.Type {
	t := prim(p)
	t.Nullable = true
	return t
}

func TestRenderPrimitiveAliases(t *testing.T) {
	cases := map[types.Primitive]string{
		types.Byte:    "byte",
		types.SByte:   "sbyte",
		types.Int16:   "short",
		types.UInt16:  "ushort",
		types.Int32:   "int",
		types.UInt32:  "uint",
		types.Int64:   "long",
		types.UInt64:  "ulong",
		types.Single:  "float",
		types.Double:  "double",
		types.Decimal: "decimal",
		types.Object:  "object",
		types.Boolean: "bool",
		types.Char:    "char",
		types.String:  "string",
		types.Void:    "void",
	}
	for p, want := range cases {
		assert.Equal(t, want, Render(prim(p)), p.String())
	}
}

func TestRenderNullableAliases(t *testing.T) {
	for _, p := range []types.Primitive{
		types.Byte, types.SByte, types.Int16, types.UInt16, types.Int32, types.UInt32,
		types.Int64, types.UInt64, types.Single, types.Double, types.Decimal, types.Boolean, types.Char,
	} {
		plain, ok := Alias(p, false)
		require.True(t, ok)
		assert.Equal(t, plain+"?", Render(nullable(p)))
	}
}

func TestRenderUnknownPrimitiveFallsThrough(t *testing.T) {
	// string has no nullable form, so the table misses and the name is used.
	assert.Equal(t, "String", Render(nullable(types.String)))
	assert.Equal(t, "IntPtr", Render(&types.Type{Name: "IntPtr", Kind: types.KindPrimitive}))
}

func TestRenderEnumUsesUnderlyingKind(t *testing.T) {
	e := &types.Type{Name: "AuthenticationResult", Kind: types.KindEnum, Underlying: types.Byte}
	assert.Equal(t, "byte", Render(e))

	def := &types.Type{Name: "ObjectType", Kind: types.KindEnum}
	assert.Equal(t, "int", Render(def))
}

func TestRenderGeneric(t *testing.T) {
	dict := &types.Type{
		Name: "Dictionary",
		Kind: types.KindGeneric,
		Args: []*types.Type{prim(types.Int32), prim(types.String)},
	}
	assert.Equal(t, "Dictionary<int, string>", Render(dict))

	list := &types.Type{Name: "List", Kind: types.KindGeneric, Args: []*types.Type{dict}}
	assert.Equal(t, "List<Dictionary<int, string>>", Render(list))

	empty := &types.Type{Name: "Lazy", Kind: types.KindGeneric}
	assert.Equal(t, "Lazy<>", Render(empty))
}

func TestRenderClassKeepsFieldOrder(t *testing.T) {
	item := &types.Type{
		Name: "ItemDescriptor",
		Kind: types.KindClass,
		Fields: []types.Field{
			{Name: "Id", Type: prim(types.Int32)},
			{Name: "Name", Type: prim(types.String)},
		},
	}
	assert.Equal(t, "ItemDescriptor<int, string>", Render(item))

	item.Fields[0], item.Fields[1] = item.Fields[1], item.Fields[0]
	assert.Equal(t, "ItemDescriptor<string, int>", Render(item))

	assert.Equal(t, "Marker<>", Render(&types.Type{Name: "Marker", Kind: types.KindClass}))
}

func TestRenderVector3ShortCircuit(t *testing.T) {
	v := &types.Type{
		Name: "Vector3",
		Kind: types.KindClass,
		Fields: []types.Field{
			{Name: "X", Type: prim(types.Double)},
			{Name: "Length", Type: prim(types.Double)},
		},
	}
	assert.Equal(t, "Vector3<float, float, float>", Render(v))

	holder := &types.Type{Name: "Spawn", Kind: types.KindClass, Fields: []types.Field{{Name: "Position", Type: v}}}
	assert.Equal(t, "Spawn<Vector3<float, float, float>>", Render(holder))
}

func TestRenderFallbackName(t *testing.T) {
	assert.Equal(t, "DateTime", Render(&types.Type{Name: "DateTime", Namespace: "System"}))
	assert.Equal(t, "", Render(nil))
}

func TestCheckAcceptsAcyclicGraph(t *testing.T) {
	shared := &types.Type{Name: "Slot", Kind: types.KindClass, Fields: []types.Field{{Name: "Id", Type: prim(types.Int32)}}}
	inv := &types.Type{
		Name: "Inventory",
		Kind: types.KindClass,
		Fields: []types.Field{
			{Name: "Left", Type: shared},
			{Name: "Right", Type: shared},
		},
	}
	require.NoError(t, Check(inv))
}

func TestCheckRejectsCycle(t *testing.T) {
	node := &types.Type{Name: "Node", Namespace: "Game", Kind: types.KindClass}
	list := &types.Type{Name: "List", Kind: types.KindGeneric, Args: []*types.Type{node}}
	node.Fields = []types.Field{{Name: "Children", Type: list}}

	err := Check(node)
	var cycle *CycleError
	require.True(t, errors.As(err, &cycle))
	assert.Equal(t, []string{"Game.Node", "List", "Game.Node"}, cycle.Path)
}

func TestCheckIgnoresVector3Members(t *testing.T) {
	v := &types.Type{Name: "Vector3", Kind: types.KindClass}
	v.Fields = []types.Field{{Name: "Normalized", Type: v}}
	assert.NoError(t, Check(v))
}
