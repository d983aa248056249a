package validate_test

import (
	"github.com/butterfly-osm/butterfly-route-core/contract"
	"github.com/butterfly-osm/butterfly-route-core/customize"
	"github.com/butterfly-osm/butterfly-route-core/ids"
	"github.com/butterfly-osm/butterfly-route-core/internal/bitset"
	"github.com/butterfly-osm/butterfly-route-core/order"
	"github.com/butterfly-osm/butterfly-route-core/weights"
)

// pathFiltered is a 3-node path 0->1->2, shared with the query
// package's own fixture (node weights 5/3/7, arc penalties 2/4, so
// 0->1 costs 3+2=5 and 1->2 costs 7+4=11; matches query/fixture_test.go exactly so the
// two packages' expectations agree on the same tiny graph).
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

func pathOrdering() *order.FilteredOrdering {
	return &order.FilteredOrdering{
		Perm:    []ids.Rank{1, 0, 2},
		InvPerm: []ids.FilteredNode{1, 0, 2},
	}
}

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

func buildPathTopo() (*contract.Topo, *customize.Weights) {
	filtered := pathFiltered()
	topo := contract.Build(filtered, pathOrdering())
	w := customize.Build(topo, pathOrdering(), filtered, pathModeWeights())
	return topo, w
}
