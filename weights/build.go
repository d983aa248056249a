package weights

import (
	"sort"

	"github.com/paulmach/osm"

	"github.com/butterfly-osm/butterfly-route-core/ebg"
	"github.com/butterfly-osm/butterfly-route-core/ids"
	"github.com/butterfly-osm/butterfly-route-core/internal/bitset"
	"github.com/butterfly-osm/butterfly-route-core/nbg"
	"github.com/butterfly-osm/butterfly-route-core/profile"
	"github.com/butterfly-osm/butterfly-route-core/satmath"
)

// Build computes a single mode's node weights, accessibility mask and
// arc penalties from the unfiltered EBG, the physical NBG it was
// expanded from, and that mode's sorted way attributes.
func Build(g *ebg.Graph, physical *nbg.Graph, mode ids.Mode, wayAttrs []profile.WayAttrs) ModeWeights {
	return ModeWeights{
		NodeWeightDS: buildNodeWeightsDS(g, physical, wayAttrs, nil),
		Mask:         buildMask(g, physical, wayAttrs),
		ArcPenaltyDS: buildArcPenaltiesDS(g, mode),
	}
}

// buildMask recomputes accessibility as its own pass rather than
// deriving it from buildNodeWeightsDS's zero sentinel, so the two
// stay independently checkable; buildNodeWeightsDS accepts an
// optional mask to fill in-place. Build above does not combine them: it
// computes weights with a nil mask and then calls buildMask, so the
// per-node pass runs twice.
func buildMask(g *ebg.Graph, physical *nbg.Graph, wayAttrs []profile.WayAttrs) *bitset.Set {
	mask := bitset.New(g.NumNodes())
	buildNodeWeightsDS(g, physical, wayAttrs, mask)
	return mask
}

// buildNodeWeightsDS implements the per-node formula. If mask
// is non-nil, bit id is set whenever node id is accessible.
func buildNodeWeightsDS(g *ebg.Graph, physical *nbg.Graph, wayAttrs []profile.WayAttrs, mask *bitset.Set) []uint32 {
	w := make([]uint32, g.NumNodes())
	for id, node := range g.Nodes {
		attrs, ok := lookupWayAttrs(wayAttrs, node.PrimaryWay)
		if !ok || attrs.BaseSpeedMMPS == 0 {
			continue
		}
		if !accessibleForDirection(physical, node, attrs) {
			continue
		}

		travelDS := satmath.CeilDiv(uint64(node.LengthMM)*10, uint64(attrs.BaseSpeedMMPS))
		perKM := satmath.CeilDiv(uint64(node.LengthMM)*uint64(attrs.PerKmPenaltyDS), 1_000_000)
		wv := satmath.Add3(uint32(travelDS), uint32(perKM), attrs.ConstPenaltyDS)
		if wv < 1 {
			wv = 1
		}
		w[id] = wv
		if mask != nil {
			mask.Set(id)
		}
	}
	return w
}

// accessibleForDirection resolves direction from tail==u and head==v:
// an EBG node's direction along its underlying NBG edge is forward
// when it walks A->B in storage order, backward when it walks B->A.
func accessibleForDirection(physical *nbg.Graph, node ebg.Node, attrs profile.WayAttrs) bool {
	edge := physical.Edges[node.GeomIdx]
	forward := node.TailNBG == edge.A && node.HeadNBG == edge.B
	if forward {
		return attrs.AccessForward()
	}
	return attrs.AccessBackward()
}

// buildArcPenaltiesDS implements the per-arc formula.
func buildArcPenaltiesDS(g *ebg.Graph, mode ids.Mode) []uint32 {
	t := make([]uint32, g.NumArcs())
	for i, ti := range g.TurnIdx {
		entry := g.TurnTable[ti]
		if !entry.ModeMask.Has(mode) {
			t[i] = 0
			continue
		}
		if entry.Kind == ids.TurnPenalty {
			t[i] = entry.PenaltyDS[mode]
		}
	}
	return t
}

// lookupWayAttrs binary-searches sorted (by WayID, per
// profile.ComputeWayAttrs) attribute rows.
func lookupWayAttrs(sorted []profile.WayAttrs, way osm.WayID) (profile.WayAttrs, bool) {
	i := sort.Search(len(sorted), func(i int) bool { return sorted[i].WayID >= way })
	if i < len(sorted) && sorted[i].WayID == way {
		return sorted[i], true
	}
	return profile.WayAttrs{}, false
}
