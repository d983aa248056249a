package ebg_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/butterfly-osm/butterfly-route-core/ebg"
	"github.com/butterfly-osm/butterfly-route-core/fileio"
	"github.com/butterfly-osm/butterfly-route-core/ids"
	"github.com/butterfly-osm/butterfly-route-core/profile"
)

func buildSampleEBG(t *testing.T) *ebg.Graph {
	t.Helper()
	g := threeNodePath()
	var wayAccess [ids.NumModes]ebg.WayAccess
	for m := range wayAccess {
		wayAccess[m] = allAccessible
	}
	var turnRules [ids.NumModes][]profile.TurnRule
	return ebg.Build(g, wayAccess, turnRules, ebg.DefaultUTurnRestricted)
}

func TestNodes_EncodeDecodeRoundTrip(t *testing.T) {
	eg := buildSampleEBG(t)
	body := ebg.EncodeNodes(eg.Nodes)
	decoded, err := ebg.DecodeNodes(body)
	require.NoError(t, err)
	assert.Equal(t, eg.Nodes, decoded)
}

func TestEBGCSR_EncodeDecodeRoundTrip(t *testing.T) {
	eg := buildSampleEBG(t)
	body := ebg.EncodeCSR(eg)
	offsets, heads, turnIdx, err := ebg.DecodeCSR(body)
	require.NoError(t, err)
	assert.Equal(t, eg.Offsets, offsets)
	assert.Equal(t, eg.Heads, heads)
	assert.Equal(t, eg.TurnIdx, turnIdx)
}

func TestTurnTable_EncodeDecodeRoundTrip(t *testing.T) {
	eg := buildSampleEBG(t)
	body := ebg.EncodeTurnTable(eg.TurnTable)
	decoded, err := ebg.DecodeTurnTable(body)
	require.NoError(t, err)
	assert.Equal(t, eg.TurnTable, decoded)
}

func TestEBGWriteRead_RoundTrip(t *testing.T) {
	eg := buildSampleEBG(t)
	dir := t.TempDir()
	inputHash := fileio.HashBytes([]byte("test-input"))

	_, _, _, err := ebg.Write(dir, eg, inputHash)
	require.NoError(t, err)

	got, err := ebg.Read(dir)
	require.NoError(t, err)
	assert.Equal(t, eg.Nodes, got.Nodes)
	assert.Equal(t, eg.Offsets, got.Offsets)
	assert.Equal(t, eg.Heads, got.Heads)
	assert.Equal(t, eg.TurnIdx, got.TurnIdx)
	assert.Equal(t, eg.TurnTable, got.TurnTable)
}
