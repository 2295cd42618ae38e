package docindex

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadSample(t *testing.T) *Index {
	t.Helper()
	idx, err := Load(filepath.Join("testdata", "Rhisis.Network.xml"))
	require.NoError(t, err)
	return idx
}

func TestLoadReadsMembers(t *testing.T) {
	idx := loadSample(t)
	assert.Equal(t, "Rhisis.Network", idx.Assembly())
	assert.Equal(t, 5, idx.Len())
}

func TestSummaryTrimsText(t *testing.T) {
	idx := loadSample(t)
	got := idx.Summary(PropertyKey("Rhisis.Network.Packets.Login.CertifyPacket", "Username"))
	assert.Equal(t, "Gets the account name.", got)
}

func TestSummaryMissingAndEmpty(t *testing.T) {
	idx := loadSample(t)
	assert.Equal(t, Empty, idx.Summary("P:Does.Not.Exist"))
	assert.Equal(t, Empty, idx.Summary(PropertyKey("Rhisis.Network.Packets.Login.CertifyPacket", "Password")))
}

func TestPlainSummaryDropsCrefTargets(t *testing.T) {
	idx := loadSample(t)
	got := idx.Summary(TypeKey("Rhisis.Network.Packets.Login.CertifyPacket"))
	assert.True(t, strings.HasPrefix(got, "Login request sent by the client. See"))
	assert.True(t, strings.HasSuffix(got, "for failures."))
	assert.NotContains(t, got, "ErrorPacket")
}

func TestRichSummaryResolvesCref(t *testing.T) {
	idx := loadSample(t)
	got := idx.RichSummary(TypeKey("Rhisis.Network.Packets.Login.CertifyPacket"))
	assert.Equal(t, "Login request sent by the client. See ErrorPacket for failures.", got)
}

func TestRichSummaryUnresolvedCrefFallsBack(t *testing.T) {
	idx := loadSample(t)
	got := idx.RichSummary(TypeKey("Rhisis.Network.Packets.World.MoveStatePacket"))
	assert.Equal(t, "Movement update.\n\nUses the legacy layout.", got)
}

func TestRichSummaryParamref(t *testing.T) {
	idx := loadSample(t)
	got := idx.RichSummary("M:Rhisis.Network.Packets.Login.CertifyPacket.Deserialize(Rhisis.Network.INetPacketStream)")
	assert.Equal(t, "Reads packet into this instance.", got)
}

func TestSetAndMerge(t *testing.T) {
	idx := loadSample(t)
	extra := New()
	extra.Set(PropertyKey("Rhisis.Network.Packets.Login.CertifyPacket", "Username"), "overridden")
	extra.Set(PropertyKey("Rhisis.Network.Packets.Login.CertifyPacket", "BuildVersion"), "  Client build.  ")

	idx.Merge(extra)
	assert.Equal(t, "Gets the account name.", idx.Summary(PropertyKey("Rhisis.Network.Packets.Login.CertifyPacket", "Username")))
	assert.Equal(t, "Client build.", idx.Summary(PropertyKey("Rhisis.Network.Packets.Login.CertifyPacket", "BuildVersion")))
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "missing.xml"))
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err))

	bad := filepath.Join(t.TempDir(), "bad.xml")
	require.NoError(t, os.WriteFile(bad, []byte("<doc><members>"), 0o644))
	_, err = Load(bad)
	assert.Error(t, err)
}

func TestCrefShortName(t *testing.T) {
	cases := map[string]string{
		"T:Rhisis.Core.Structures.Vector3":                   "Vector3",
		"M:Rhisis.Network.Packet.Read(System.Int32)":         "Read",
		"T:System.Collections.Generic.List`1":                "List",
		"P:Rhisis.Network.Packets.Login.CertifyPacket.Build": "Build",
		"!:Unknown":                                          "",
		"":                                                   "",
	}
	for in, want := range cases {
		assert.Equal(t, want, crefShortName(in), in)
	}
}
