package ebg_test

import (
	"testing"

	"github.com/paulmach/osm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/butterfly-osm/butterfly-route-core/ebg"
	"github.com/butterfly-osm/butterfly-route-core/ids"
	"github.com/butterfly-osm/butterfly-route-core/nbg"
	"github.com/butterfly-osm/butterfly-route-core/profile"
)

// threeNodePath builds a path of 3 NBG nodes and 2 edges, with the
// middle node a junction of degree 2 so U-turns there are subject to
// the non-dead-end policy.
func threeNodePath() *nbg.Graph {
	g := &nbg.Graph{
		NodeOSMID: []osm.NodeID{10, 11, 12},
		NodeLat:   []int32{0, 0, 0},
		NodeLon:   []int32{0, 0, 0},
		Edges: []nbg.Edge{
			{A: 0, B: 1, LengthMM: 10000, FirstOSMWayID: 1},
			{A: 1, B: 2, LengthMM: 10000, FirstOSMWayID: 2},
		},
	}
	// CSR: node0 -> [node1 via edge0]; node1 -> [node0 via edge0, node2 via edge1]; node2 -> [node1 via edge1]
	g.Offsets = []uint32{0, 1, 3, 4}
	g.Heads = []ids.NBGNode{1, 0, 2, 1}
	g.EdgeIdx = []ids.NBGEdge{0, 0, 1, 1}
	return g
}

func allAccessible(way osm.WayID) bool { return true }

func TestEnumerateNodes_TwoPerUndirectedEdge(t *testing.T) {
	g := threeNodePath()
	nodes := ebg.EnumerateNodes(g)
	assert.Len(t, nodes, 4)
	assert.Equal(t, ids.NBGNode(0), nodes[0].TailNBG)
	assert.Equal(t, ids.NBGNode(1), nodes[0].HeadNBG)
	assert.Equal(t, ids.NBGNode(1), nodes[1].TailNBG)
	assert.Equal(t, ids.NBGNode(0), nodes[1].HeadNBG)
}

// TestBuild_UTurnForbiddenForCarAtJunction covers the case where, at a
// junction of outdegree 2, car may not U-turn, but the through arcs
// remain legal for every mode.
func TestBuild_UTurnForbiddenForCarAtJunction(t *testing.T) {
	g := threeNodePath()
	var wayAccess [ids.NumModes]ebg.WayAccess
	for m := range wayAccess {
		wayAccess[m] = allAccessible
	}
	var turnRules [ids.NumModes][]profile.TurnRule

	eg := ebg.Build(g, wayAccess, turnRules, ebg.DefaultUTurnRestricted)
	assert.Equal(t, 4, eg.NumNodes())

	// EBG node 1 is (tail=1,head=0): arriving at NBG node 0, a dead end
	// (outdeg 1), so U-turn policy does not apply there. EBG node 2 is
	// (tail=1,head=2) and EBG node 0 is (tail=0,head=1): both arrive at
	// or pass through NBG node 1, which has outdegree 2 (not a dead
	// end), so the U-turn from EBG node 0 (arrives at node1, came from
	// node0) back to the arc returning to node0 must drop car.
	var uturnEntryAt1 *ebg.TurnEntry
	heads, turnIdx := eg.Neighbors(0) // EBG node 0 = (tail=0, head=1)
	for i, h := range heads {
		if eg.Nodes[h].HeadNBG == 0 { // turning back toward node 0: a U-turn
			uturnEntryAt1 = &eg.TurnTable[turnIdx[i]]
		}
	}
	require.NotNil(t, uturnEntryAt1, "expected a U-turn arc back toward node 0")
	assert.False(t, uturnEntryAt1.ModeMask.Has(ids.ModeCar))
	assert.True(t, uturnEntryAt1.ModeMask.Has(ids.ModeBike))
	assert.True(t, uturnEntryAt1.ModeMask.Has(ids.ModeFoot))
}

func TestBuild_ThroughArcsLegalForEveryMode(t *testing.T) {
	g := threeNodePath()
	var wayAccess [ids.NumModes]ebg.WayAccess
	for m := range wayAccess {
		wayAccess[m] = allAccessible
	}
	var turnRules [ids.NumModes][]profile.TurnRule

	eg := ebg.Build(g, wayAccess, turnRules, ebg.DefaultUTurnRestricted)

	heads, turnIdx := eg.Neighbors(0) // EBG node 0 = (tail=0, head=1)
	var throughFound bool
	for i, h := range heads {
		if eg.Nodes[h].HeadNBG == 2 { // continuing straight to node 2
			throughFound = true
			entry := eg.TurnTable[turnIdx[i]]
			assert.Equal(t, ids.AllModes(), entry.ModeMask)
		}
	}
	assert.True(t, throughFound)
}

func TestBuild_BanTurnRemovesArc(t *testing.T) {
	g := threeNodePath()
	var wayAccess [ids.NumModes]ebg.WayAccess
	for m := range wayAccess {
		wayAccess[m] = allAccessible
	}
	var turnRules [ids.NumModes][]profile.TurnRule
	turnRules[ids.ModeCar] = []profile.TurnRule{
		{Via: 11, From: 1, To: 2, Kind: ids.TurnBan},
	}

	eg := ebg.Build(g, wayAccess, turnRules, ebg.DefaultUTurnRestricted)
	heads, turnIdx := eg.Neighbors(0)
	for i, h := range heads {
		if eg.Nodes[h].HeadNBG == 2 {
			entry := eg.TurnTable[turnIdx[i]]
			assert.False(t, entry.ModeMask.Has(ids.ModeCar))
			assert.True(t, entry.ModeMask.Has(ids.ModeBike))
		}
	}
}

func TestBuild_OnlyRuleProducesImplicitBans(t *testing.T) {
	// A third way out of node 11 (OSM id) that the Only rule should ban.
	g := threeNodePath()
	g.Edges = append(g.Edges, nbg.Edge{A: 1, B: 2, LengthMM: 5000, FirstOSMWayID: 3})
	g.Offsets = []uint32{0, 1, 4, 6}
	g.Heads = []ids.NBGNode{1, 0, 2, 2, 1, 1}
	g.EdgeIdx = []ids.NBGEdge{0, 0, 1, 2, 1, 2}

	var wayAccess [ids.NumModes]ebg.WayAccess
	for m := range wayAccess {
		wayAccess[m] = allAccessible
	}
	var turnRules [ids.NumModes][]profile.TurnRule
	turnRules[ids.ModeCar] = []profile.TurnRule{
		{Via: 11, From: 1, To: 2, Kind: ids.TurnOnly},
	}

	eg := ebg.Build(g, wayAccess, turnRules, ebg.DefaultUTurnRestricted)
	heads, turnIdx := eg.Neighbors(0) // EBG node 0 = (tail=0, head=1), from way 1
	for i, h := range heads {
		toWay := g.Edges[eg.Nodes[h].GeomIdx].FirstOSMWayID
		entry := eg.TurnTable[turnIdx[i]]
		if toWay == 2 {
			assert.True(t, entry.ModeMask.Has(ids.ModeCar), "the only-permitted to-way stays open for car")
		} else if toWay == 3 {
			assert.False(t, entry.ModeMask.Has(ids.ModeCar), "to-way 3 must be implicitly banned for car")
		}
	}
}
