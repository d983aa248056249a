package osmingest_test

import (
	"path/filepath"
	"testing"

	"github.com/paulmach/osm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/butterfly-osm/butterfly-route-core/fileio"
	"github.com/butterfly-osm/butterfly-route-core/ids"
	"github.com/butterfly-osm/butterfly-route-core/osmingest"
)

func sampleNodes() []osmingest.Node {
	return []osmingest.Node{
		{ID: 300, Lat: 50.85, Lon: 4.35},
		{ID: 100, Lat: 50.80, Lon: 4.30},
		{ID: 200, Lat: 50.82, Lon: 4.32},
	}
}

func TestSortNodes_Ascending(t *testing.T) {
	sorted := osmingest.SortNodes(sampleNodes())
	require.Len(t, sorted, 3)
	assert.Equal(t, osm.NodeID(100), sorted[0].ID)
	assert.Equal(t, osm.NodeID(200), sorted[1].ID)
	assert.Equal(t, osm.NodeID(300), sorted[2].ID)
}

func TestNodesSA_EncodeDecodeRoundTrip(t *testing.T) {
	sorted := osmingest.SortNodes(sampleNodes())
	body := osmingest.EncodeNodesSA(sorted)
	decoded, err := osmingest.DecodeNodesSA(body)
	require.NoError(t, err)
	require.Len(t, decoded, 3)
	for i := range sorted {
		assert.Equal(t, sorted[i].ID, decoded[i].ID)
		assert.InDelta(t, sorted[i].Lat, decoded[i].Lat, 1e-6)
		assert.InDelta(t, sorted[i].Lon, decoded[i].Lon, 1e-6)
	}
}

func TestSparseIndex_LookupFindsWindow(t *testing.T) {
	var nodes []osmingest.Node
	for i := int64(0); i < 10000; i += 2 {
		nodes = append(nodes, osmingest.Node{ID: osm.NodeID(i), Lat: 50.0, Lon: 4.0})
	}
	sorted := osmingest.SortNodes(nodes)
	idx := osmingest.BuildSparseIndex(sorted)

	start, end, ok := idx.Lookup(int64(5000))
	require.True(t, ok)
	assert.LessOrEqual(t, sorted[start].ID, osm.NodeID(5000))
	assert.Less(t, start, end)
}

func TestWriteNodes_ContentAddressed(t *testing.T) {
	dir := t.TempDir()
	in := fileio.HashBytes([]byte("pbf-bytes"))
	saHash, siHash, err := osmingest.WriteNodes(dir, sampleNodes(), in)
	require.NoError(t, err)
	assert.NotZero(t, saHash)
	assert.NotZero(t, siHash)

	header, body, err := fileio.Read(filepath.Join(dir, "nodes.sa"), "NODS")
	require.NoError(t, err)
	assert.Equal(t, []uint64{3}, header.Counts)
	decoded, err := osmingest.DecodeNodesSA(body)
	require.NoError(t, err)
	assert.Len(t, decoded, 3)
}

func TestWays_EncodeDecodeRoundTrip(t *testing.T) {
	ways := []osmingest.Way{
		{ID: 10, NodeRefs: []osm.NodeID{1, 2, 3}, Tags: map[string]string{"highway": "primary", "oneway": "yes"}},
		{ID: 5, NodeRefs: []osm.NodeID{4, 5}, Tags: map[string]string{"highway": "residential"}},
	}
	sorted := osmingest.SortWays(ways)
	assert.Equal(t, osm.WayID(5), sorted[0].ID)

	body := osmingest.EncodeWaysRaw(sorted)
	decoded, err := osmingest.DecodeWaysRaw(body)
	require.NoError(t, err)
	require.Len(t, decoded, 2)
	assert.Equal(t, "residential", decoded[0].Tags["highway"])
	assert.Equal(t, "primary", decoded[1].Tags["highway"])
	assert.Equal(t, "yes", decoded[1].Tags["oneway"])
}

func TestRelations_EncodeDecodeRoundTrip(t *testing.T) {
	rels := []osmingest.Relation{
		{ID: 1, Via: 42, From: 10, To: 20, Kind: ids.TurnBan, ModeMask: ids.ModeCar.Bit()},
		{ID: 2, Via: 42, From: 10, To: 30, Kind: ids.TurnOnly, ModeMask: ids.AllModes()},
	}
	sorted := osmingest.SortRelations(rels)
	body := osmingest.EncodeRelationsRaw(sorted)
	decoded, err := osmingest.DecodeRelationsRaw(body)
	require.NoError(t, err)
	require.Len(t, decoded, 2)
	assert.Equal(t, ids.TurnBan, decoded[0].Kind)
	assert.Equal(t, ids.TurnOnly, decoded[1].Kind)
}

func TestExpandViaWay(t *testing.T) {
	wayNodes := []osm.NodeID{1, 2, 3, 4}
	nextID := osm.RelationID(100)
	rels := osmingest.ExpandViaWay(50, wayNodes, 10, 20, ids.TurnBan, ids.ModeCar.Bit(), func() osm.RelationID {
		nextID++
		return nextID
	})
	require.Len(t, rels, 4)
	for i, n := range wayNodes {
		assert.Equal(t, n, rels[i].Via)
		assert.Equal(t, osm.WayID(10), rels[i].From)
		assert.Equal(t, osm.WayID(20), rels[i].To)
	}
}

func TestValidateWay_RejectsTooFewNodes(t *testing.T) {
	err := osmingest.ValidateWay(osmingest.Way{ID: 1, NodeRefs: []osm.NodeID{1}})
	assert.Error(t, err)
}
