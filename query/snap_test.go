package query_test

import (
	"testing"

	"github.com/paulmach/osm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/butterfly-osm/butterfly-route-core/ebg"
	"github.com/butterfly-osm/butterfly-route-core/ids"
	"github.com/butterfly-osm/butterfly-route-core/internal/bitset"
	"github.com/butterfly-osm/butterfly-route-core/nbg"
	"github.com/butterfly-osm/butterfly-route-core/query"
	"github.com/butterfly-osm/butterfly-route-core/weights"
)

// twoNodeGraph builds a one-edge NBG (node 0 at (0,0), node 1 at
// (0, 0.001) degrees) and its two directed EBG nodes.
func twoNodeGraph() (*nbg.Graph, *ebg.Graph) {
	physical := &nbg.Graph{
		NodeOSMID: []osm.NodeID{1, 2},
		NodeLat:   []int32{0, 10000},
		NodeLon:   []int32{0, 0},
		Edges: []nbg.Edge{
			{A: 0, B: 1, LengthMM: 1000},
		},
	}
	g := &ebg.Graph{
		Nodes: []ebg.Node{
			{TailNBG: 0, HeadNBG: 1, GeomIdx: 0, LengthMM: 1000},
			{TailNBG: 1, HeadNBG: 0, GeomIdx: 0, LengthMM: 1000},
		},
	}
	return physical, g
}

func TestBuildSpatialIndex_IndexesBothDirectedNodes(t *testing.T) {
	physical, g := twoNodeGraph()
	idx := query.BuildSpatialIndex(physical, g)

	mask := bitset.New(2)
	mask.Set(0)
	mask.Set(1)

	got := idx.Nearest(0.0, 0.0005, mask, 2)
	assert.Len(t, got, 2)
}

func TestSnap_SkipsNodesOutsideMask(t *testing.T) {
	physical, g := twoNodeGraph()
	idx := query.BuildSpatialIndex(physical, g)

	filtered := &weights.Filtered{
		FilteredToOriginal: []ids.EBGNode{0},
		OriginalToFiltered: []ids.FilteredNode{0, ids.FilteredNode(ids.Invalid)},
	}
	mask := bitset.New(2)
	mask.Set(0)
	mw := weights.ModeWeights{Mask: mask}

	fid, err := query.Snap(idx, filtered, mw, ids.ModeCar, 0.0, 0.0005)
	require.NoError(t, err)
	assert.Equal(t, ids.FilteredNode(0), fid)
}
