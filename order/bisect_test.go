package order

import (
	"testing"

	"github.com/paulmach/osm"
	"github.com/stretchr/testify/assert"

	"github.com/butterfly-osm/butterfly-route-core/ids"
	"github.com/butterfly-osm/butterfly-route-core/nbg"
)

// linePath builds a colinear path graph 0-1-...-n-1 along the
// longitude axis, so the principal axis is unambiguously (1,0) and the
// median-cut projection order matches node id order.
func linePath(n int) *nbg.Graph {
	g := &nbg.Graph{
		NodeOSMID: make([]osm.NodeID, n),
		NodeLat:   make([]int32, n),
		NodeLon:   make([]int32, n),
	}
	for i := 0; i < n; i++ {
		g.NodeLon[i] = int32(i)
	}

	var offsets []uint32
	var heads []ids.NBGNode
	offsets = append(offsets, 0)
	for i := 0; i < n; i++ {
		if i > 0 {
			heads = append(heads, ids.NBGNode(i-1))
		}
		if i < n-1 {
			heads = append(heads, ids.NBGNode(i+1))
		}
		offsets = append(offsets, uint32(len(heads)))
	}
	g.Offsets = offsets
	g.Heads = heads
	g.EdgeIdx = make([]ids.NBGEdge, len(heads))
	return g
}

func allNodes(n int) []ids.NBGNode {
	nodes := make([]ids.NBGNode, n)
	for i := range nodes {
		nodes[i] = ids.NBGNode(i)
	}
	return nodes
}

func TestBisect_FallsBackToMedianSplitWhenSeparatorTooLarge(t *testing.T) {
	g := linePath(6)
	c := extractCoords(g)

	// Without the fallback, the straddling separator {2,3} is 2/6 =
	// 33% of the subproblem, over the 20% cap, so bisect must fall
	// back to a pure positional median split with no separator.
	left, right, separator := bisect(g, c, allNodes(6))

	assert.Empty(t, separator)
	assert.Equal(t, []ids.NBGNode{0, 1, 2}, left)
	assert.Equal(t, []ids.NBGNode{3, 4, 5}, right)
}

func TestBisect_SingleNodeIsItsOwnSeparator(t *testing.T) {
	g := linePath(1)
	c := extractCoords(g)

	left, right, separator := bisect(g, c, allNodes(1))
	assert.Empty(t, left)
	assert.Empty(t, right)
	assert.Equal(t, []ids.NBGNode{0}, separator)
}
