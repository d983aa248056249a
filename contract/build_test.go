package contract_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/butterfly-osm/butterfly-route-core/contract"
	"github.com/butterfly-osm/butterfly-route-core/ids"
	"github.com/butterfly-osm/butterfly-route-core/order"
	"github.com/butterfly-osm/butterfly-route-core/weights"
)

// pathFiltered builds a 3-node directed filtered EBG: 0->1->2.
func pathFiltered() *weights.Filtered {
	return &weights.Filtered{
		NOriginalNodes:     3,
		Offsets:            []uint32{0, 1, 2, 2},
		Heads:              []ids.FilteredNode{1, 2},
		OriginalArcIdx:     []uint32{0, 1},
		FilteredToOriginal: []ids.EBGNode{0, 1, 2},
		OriginalToFiltered: []ids.FilteredNode{0, 1, 2},
	}
}

// pathOrdering contracts node 1 first (rank 0), then node 0 (rank 1),
// then node 2 (rank 2); node 1 is the only one whose two neighbors
// both outrank it, so it's the sole source of a shortcut.
func pathOrdering() *order.FilteredOrdering {
	return &order.FilteredOrdering{
		Perm:    []ids.Rank{1, 0, 2},
		InvPerm: []ids.FilteredNode{1, 0, 2},
	}
}

func TestBuild_ContractingMiddleNodeProducesShortcut(t *testing.T) {
	topo := contract.Build(pathFiltered(), pathOrdering())

	require.Equal(t, 3, topo.NNodes)
	// Node 1 is contracted first with predecessor 0 (arc 0->1) and
	// successor 2 (arc 1->2), both outranking it: one directed shortcut
	// 0->2 via middle 1. No other node ever has both a predecessor and
	// a successor of higher rank on this directed path, so this is the
	// only shortcut.
	assert.Equal(t, 1, topo.NShortcuts)

	upHeads, upIsShortcut, upMiddle := topo.UpNeighbors(0)
	require.Equal(t, []ids.FilteredNode{2}, upHeads)
	assert.True(t, upIsShortcut[0])
	assert.Equal(t, ids.FilteredNode(1), upMiddle[0])

	downHeads, downIsShortcut, _ := topo.DownNeighbors(0)
	require.Equal(t, []ids.FilteredNode{1}, downHeads)
	assert.False(t, downIsShortcut[0])

	upHeads1, upIsShortcut1, _ := topo.UpNeighbors(1)
	require.Equal(t, []ids.FilteredNode{2}, upHeads1)
	assert.False(t, upIsShortcut1[0])

	downHeads1, _, _ := topo.DownNeighbors(1)
	assert.Empty(t, downHeads1)

	// Node 2 has no outgoing filtered arcs at all (it's the path's end),
	// so it gets neither an UP nor a DOWN row.
	upHeads2, _, _ := topo.UpNeighbors(2)
	assert.Empty(t, upHeads2)
	downHeads2, _, _ := topo.DownNeighbors(2)
	assert.Empty(t, downHeads2)
}

func TestBuild_LeafPathHasNoShortcuts(t *testing.T) {
	// Contracting in order 0,1,2: node 0 has no predecessor, node 2 has
	// no successor, and node 1's only predecessor (node 0) is contracted
	// before it, so no node ever has both a higher-ranked predecessor and
	// a higher-ranked successor on a 3-node path contracted end-to-end.
	filtered := pathFiltered()
	ord := &order.FilteredOrdering{
		Perm:    []ids.Rank{0, 1, 2},
		InvPerm: []ids.FilteredNode{0, 1, 2},
	}

	topo := contract.Build(filtered, ord)
	assert.Equal(t, 0, topo.NShortcuts)
}
