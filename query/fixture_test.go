package query_test

import (
	"github.com/butterfly-osm/butterfly-route-core/contract"
	"github.com/butterfly-osm/butterfly-route-core/customize"
	"github.com/butterfly-osm/butterfly-route-core/ids"
	"github.com/butterfly-osm/butterfly-route-core/internal/bitset"
	"github.com/butterfly-osm/butterfly-route-core/order"
	"github.com/butterfly-osm/butterfly-route-core/weights"
)

// pathFiltered builds a 3-node directed filtered EBG: 0->1->2 (same
// fixture contract/build_test.go and customize/build_test.go use).
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

// pathOrdering contracts node 1 first, producing the single shortcut
// 0->2 via middle 1.
func pathOrdering() *order.FilteredOrdering {
	return &order.FilteredOrdering{
		Perm:    []ids.Rank{1, 0, 2},
		InvPerm: []ids.FilteredNode{1, 0, 2},
	}
}

// pathModeWeights gives node 0 weight 5ds, node 1 weight 3ds, node 2
// weight 7ds, and turn penalties 2ds on arc 0->1, 4ds on arc 1->2.
func pathModeWeights() weights.ModeWeights {
	mask := bitset.New(3)
	mask.Set(0)
	mask.Set(1)
	mask.Set(2)
	return weights.ModeWeights{
		NodeWeightDS: []uint32{5, 3, 7},
		Mask:         mask,
		ArcPenaltyDS: []uint32{2, 4},
	}
}

// buildPathTopo assembles the full Stage 7/8 pipeline over the path
// fixture: weight(0->1 orig)=3+2=5, weight(1->2 orig)=7+4=11,
// weight(0->2 shortcut via 1)=5+11=16.
func buildPathTopo() (*contract.Topo, *customize.Weights) {
	filtered := pathFiltered()
	topo := contract.Build(filtered, pathOrdering())
	w := customize.Build(topo, pathOrdering(), filtered, pathModeWeights())
	return topo, w
}
