package describe

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/packetdoc/internal/docindex"
	"github.com/yourorg/packetdoc/internal/typesig"
	"github.com/yourorg/packetdoc/pkg/types"
)

func handshake() *types.Type {
	return &types.Type{
		Name:      "Handshake",
		Namespace: "Rhisis.Network.Packets.Login",
		Kind:      types.KindClass,
		Fields: []types.Field{
			{Name: "sessionId", Type: &types.Type{Name: "UInt32", Kind: types.KindPrimitive, Primitive: types.UInt32}},
			{Name: "version", Type: &types.Type{Name: "String", Kind: types.KindPrimitive, Primitive: types.String}},
		},
	}
}

func TestRowsEndToEnd(t *testing.T) {
	idx := docindex.New()
	idx.Set("P:Rhisis.Network.Packets.Login.Handshake.sessionId", "Unique session identifier")

	rows, err := New(idx).Rows(handshake())
	require.NoError(t, err)
	assert.Equal(t, []types.Row{
		{TypeSignature: "uint", FieldName: "sessionId", Summary: "Unique session identifier"},
		{TypeSignature: "string", FieldName: "version", Summary: "(Empty)"},
	}, rows)
}

func TestDescribeTypeSummary(t *testing.T) {
	idx := docindex.New()
	idx.Set("T:Rhisis.Network.Packets.Login.Handshake", "First packet of a session.")

	p, err := New(idx).Describe(handshake())
	require.NoError(t, err)
	assert.Equal(t, "Handshake", p.Name)
	assert.Equal(t, "Rhisis.Network.Packets.Login.Handshake", p.FullName)
	assert.Equal(t, "First packet of a session.", p.Summary)
	assert.Len(t, p.Rows, 2)

	p, err = New(docindex.New()).Describe(handshake())
	require.NoError(t, err)
	assert.Empty(t, p.Summary)
}

func TestRowsWithoutIndex(t *testing.T) {
	rows, err := New(nil).Rows(handshake())
	require.NoError(t, err)
	for _, r := range rows {
		assert.Equal(t, docindex.Empty, r.Summary)
	}
}

func TestRowsRejectsCycles(t *testing.T) {
	node := &types.Type{Name: "Node", Namespace: "Game", Kind: types.KindClass}
	node.Fields = []types.Field{{Name: "Next", Type: node}}
	packet := &types.Type{Name: "Tree", Namespace: "Game", Kind: types.KindClass, Fields: []types.Field{{Name: "Root", Type: node}}}

	_, err := New(nil).Rows(packet)
	var cycle *typesig.CycleError
	assert.True(t, errors.As(err, &cycle))

	_, err = New(nil).Rows(nil)
	assert.Error(t, err)
}
