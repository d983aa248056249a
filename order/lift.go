package order

import (
	"sort"

	"github.com/butterfly-osm/butterfly-route-core/ebg"
	"github.com/butterfly-osm/butterfly-route-core/ids"
	"github.com/butterfly-osm/butterfly-route-core/weights"
)

// LiftToFilteredEBG derives a mode's filtered-EBG elimination order from
// the physical ordering: sort filtered nodes by (rank of their
// underlying NBG edge's head node, filtered node id), then assign
// ranks by sorted position.
//
// head_nbg, not tail_nbg, is the sort key: an EBG node's head_nbg is
// the physical junction its turns fan out from, so grouping by head
// keeps nodes that will be contracted as part of the same physical
// separator adjacent in filtered rank space. tail_nbg would instead
// correlate with the predecessor junction.
func LiftToFilteredEBG(phys *PhysicalOrdering, g *ebg.Graph, filtered *weights.Filtered) *FilteredOrdering {
	n := filtered.NumNodes()
	keys := make([]ids.FilteredNode, n)
	for i := 0; i < n; i++ {
		keys[i] = ids.FilteredNode(i)
	}

	headRank := func(fid ids.FilteredNode) ids.Rank {
		origID := filtered.ToOriginal(fid)
		headNBG := g.Nodes[origID].HeadNBG
		return phys.Perm[headNBG]
	}

	sort.Slice(keys, func(i, j int) bool {
		ri, rj := headRank(keys[i]), headRank(keys[j])
		if ri != rj {
			return ri < rj
		}
		return keys[i] < keys[j]
	})

	perm := make([]ids.Rank, n)
	invPerm := make([]ids.FilteredNode, n)
	for rank, fid := range keys {
		perm[fid] = ids.Rank(rank)
		invPerm[rank] = fid
	}

	return &FilteredOrdering{Perm: perm, InvPerm: invPerm}
}
