package weights_test

import (
	"testing"

	"github.com/paulmach/osm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/butterfly-osm/butterfly-route-core/ebg"
	"github.com/butterfly-osm/butterfly-route-core/ids"
	"github.com/butterfly-osm/butterfly-route-core/nbg"
	"github.com/butterfly-osm/butterfly-route-core/profile"
	"github.com/butterfly-osm/butterfly-route-core/weights"
)

// physicalPath builds a 3-node, 2-edge NBG: way 1 spans node0->node1
// (10000mm), way 2 spans node1->node2 (5000mm). Node OSM ids 10/11/12.
func physicalPath() *nbg.Graph {
	g := &nbg.Graph{
		NodeOSMID: []osm.NodeID{10, 11, 12},
		NodeLat:   []int32{0, 0, 0},
		NodeLon:   []int32{0, 0, 0},
		Edges: []nbg.Edge{
			{A: 0, B: 1, LengthMM: 10000, FirstOSMWayID: 1},
			{A: 1, B: 2, LengthMM: 5000, FirstOSMWayID: 2},
		},
	}
	g.Offsets = []uint32{0, 1, 3, 4}
	g.Heads = []ids.NBGNode{1, 0, 2, 1}
	g.EdgeIdx = []ids.NBGEdge{0, 0, 1, 1}
	return g
}

func allAccessible(way osm.WayID) bool { return true }

// wayAttrsFixture: way 1 is fast and bidirectionally accessible; way 2
// has no recorded base speed, so it must end up inaccessible (mask=0,
// weight=0) regardless of turn/way-access filtering upstream.
func wayAttrsFixture() []profile.WayAttrs {
	return []profile.WayAttrs{
		{WayID: 1, Flags: 0b11, BaseSpeedMMPS: 10000},
		{WayID: 2, Flags: 0, BaseSpeedMMPS: 0},
	}
}

func buildEBGFixture(t *testing.T, turnRules [ids.NumModes][]profile.TurnRule) (*nbg.Graph, *ebg.Graph) {
	t.Helper()
	g := physicalPath()
	var wayAccess [ids.NumModes]ebg.WayAccess
	for m := range wayAccess {
		wayAccess[m] = allAccessible
	}
	eg := ebg.Build(g, wayAccess, turnRules, ebg.DefaultUTurnRestricted)
	return g, eg
}

func TestBuild_AccessibleWayGetsWeight(t *testing.T) {
	g, eg := buildEBGFixture(t, [ids.NumModes][]profile.TurnRule{})
	mw := weights.Build(eg, g, ids.ModeCar, wayAttrsFixture())

	// EBG nodes 0 and 1 are the two directions of way 1 (10000mm @
	// 10000mm/s => 10 ds travel, no penalties).
	assert.Equal(t, uint32(10), mw.NodeWeightDS[0])
	assert.Equal(t, uint32(10), mw.NodeWeightDS[1])
	assert.True(t, mw.Mask.Test(0))
	assert.True(t, mw.Mask.Test(1))
}

func TestBuild_InaccessibleWayGetsZeroWeightAndMask(t *testing.T) {
	g, eg := buildEBGFixture(t, [ids.NumModes][]profile.TurnRule{})
	mw := weights.Build(eg, g, ids.ModeCar, wayAttrsFixture())

	// EBG nodes 2 and 3 are the two directions of way 2 (base speed 0).
	assert.Equal(t, uint32(0), mw.NodeWeightDS[2])
	assert.Equal(t, uint32(0), mw.NodeWeightDS[3])
	assert.False(t, mw.Mask.Test(2))
	assert.False(t, mw.Mask.Test(3))
}

func TestBuild_ArcPenaltyAppliesOnlyToItsMode(t *testing.T) {
	var turnRules [ids.NumModes][]profile.TurnRule
	turnRules[ids.ModeCar] = []profile.TurnRule{
		{Via: 11, From: 1, To: 2, Kind: ids.TurnPenalty, PenaltyDS: 7},
	}
	g, eg := buildEBGFixture(t, turnRules)

	carWeights := weights.Build(eg, g, ids.ModeCar, wayAttrsFixture())
	bikeWeights := weights.Build(eg, g, ids.ModeBike, wayAttrsFixture())

	heads, _ := eg.Neighbors(0) // EBG node 0 = (tail=0, head=1), on way 1
	var arcPos = -1
	for i, h := range heads {
		if eg.Nodes[h].HeadNBG == 2 { // the turn onto way 2 at node 11
			arcPos = int(offsetOf(eg, 0)) + i
		}
	}
	require.GreaterOrEqual(t, arcPos, 0, "expected to find the turn arc from way 1 onto way 2")

	assert.Equal(t, uint32(7), carWeights.ArcPenaltyDS[arcPos])
	assert.Equal(t, uint32(0), bikeWeights.ArcPenaltyDS[arcPos])
}

func offsetOf(eg *ebg.Graph, node ids.EBGNode) uint32 {
	return eg.Offsets[node]
}
