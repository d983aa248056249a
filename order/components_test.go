package order

import (
	"testing"

	"github.com/paulmach/osm"
	"github.com/stretchr/testify/assert"

	"github.com/butterfly-osm/butterfly-route-core/ids"
	"github.com/butterfly-osm/butterfly-route-core/nbg"
)

// twoComponents builds a 6-node graph with two disjoint paths: 0-1-2-3
// (size 4) and 4-5 (size 2).
func twoComponents() *nbg.Graph {
	g := &nbg.Graph{
		NodeOSMID: make([]osm.NodeID, 6),
		NodeLat:   make([]int32, 6),
		NodeLon:   make([]int32, 6),
		Edges:     []nbg.Edge{{A: 0, B: 1}, {A: 1, B: 2}, {A: 2, B: 3}, {A: 4, B: 5}},
	}
	g.Offsets = []uint32{0, 1, 3, 5, 6, 7, 8}
	g.Heads = []ids.NBGNode{1, 0, 2, 1, 3, 2, 5, 4}
	g.EdgeIdx = make([]ids.NBGEdge, 8)
	return g
}

func TestConnectedComponents_LargestFirst(t *testing.T) {
	g := twoComponents()
	components := connectedComponents(g)

	assert.Len(t, components, 2)
	assert.Len(t, components[0], 4)
	assert.Len(t, components[1], 2)

	assert.ElementsMatch(t, []ids.NBGNode{0, 1, 2, 3}, components[0])
	assert.ElementsMatch(t, []ids.NBGNode{4, 5}, components[1])
}
