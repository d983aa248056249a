package customize

import (
	"sort"

	"github.com/butterfly-osm/butterfly-route-core/contract"
	"github.com/butterfly-osm/butterfly-route-core/ids"
	"github.com/butterfly-osm/butterfly-route-core/order"
	"github.com/butterfly-osm/butterfly-route-core/satmath"
	"github.com/butterfly-osm/butterfly-route-core/weights"
)

// Build computes up_w[]/down_w[] for topo by sweeping nodes in
// ascending rank: original edges cost
// sat_add(node_weight[target], turn_penalty[arc]); shortcuts via m
// cost sat_add(weight(u->m), weight(m->v)). weight(m->v) is always
// already computed, since rank(m) < rank(v) places it in an earlier
// node's own iteration. weight(u->m) is different: m has lower rank
// than u too, so u->m is one of u's own DOWN edges and is only
// computed within this same node's iteration, not a prior one. Each
// node's DOWN row is therefore resolved before its UP row, and within
// a row, entries are visited in ascending rank-of-head order (not CSR
// head-id order) so a shortcut whose middle shares this same row is
// always resolved before the entry that depends on it.
func Build(topo *contract.Topo, ord *order.FilteredOrdering, filtered *weights.Filtered, mw weights.ModeWeights) *Weights {
	upW := make([]uint32, topo.NumUpEdges())
	downW := make([]uint32, topo.NumDownEdges())

	for rank := 0; rank < len(ord.InvPerm); rank++ {
		u := ord.InvPerm[rank]

		downStart, downEnd := topo.DownOffsets[u], topo.DownOffsets[u+1]
		for _, i := range rankOrder(topo.DownHeads[downStart:downEnd], ord.Perm, downStart) {
			v := topo.DownHeads[i]
			if !topo.DownIsShortcut[i] {
				downW[i] = originalEdgeWeight(filtered, mw, u, v)
				continue
			}
			m := topo.DownMiddle[i]
			wUM := findEdgeWeight(topo.DownOffsets, topo.DownHeads, downW, u, m)
			wMV := findEdgeWeight(topo.UpOffsets, topo.UpHeads, upW, m, v)
			downW[i] = satmath.Add(wUM, wMV)
		}

		upStart, upEnd := topo.UpOffsets[u], topo.UpOffsets[u+1]
		for _, i := range rankOrder(topo.UpHeads[upStart:upEnd], ord.Perm, upStart) {
			v := topo.UpHeads[i]
			if !topo.UpIsShortcut[i] {
				upW[i] = originalEdgeWeight(filtered, mw, u, v)
				continue
			}
			m := topo.UpMiddle[i]
			wUM := findEdgeWeight(topo.DownOffsets, topo.DownHeads, downW, u, m)
			wMV := findEdgeWeight(topo.UpOffsets, topo.UpHeads, upW, m, v)
			upW[i] = satmath.Add(wUM, wMV)
		}
	}

	return &Weights{UpW: upW, DownW: downW}
}

// rankOrder returns row's absolute CSR indices (row starts at
// rowStart) sorted by ascending rank of head. A shortcut's middle
// always has lower rank than every other entry sharing its row, so
// visiting a row in this order guarantees a middle is resolved before
// any entry that looks it up.
func rankOrder(row []ids.FilteredNode, perm []ids.Rank, rowStart uint32) []uint32 {
	idx := make([]int, len(row))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool {
		return perm[row[idx[a]]] < perm[row[idx[b]]]
	})
	abs := make([]uint32, len(idx))
	for i, v := range idx {
		abs[i] = rowStart + uint32(v)
	}
	return abs
}

// originalEdgeWeight computes an original (non-shortcut) CCH edge's
// cost: the target filtered node's traversal weight plus the turn
// penalty of the specific filtered-EBG arc u→v, found by binary search
// on u's filtered adjacency row (sorted by head). NoPath propagates
// when the target is inaccessible to this mode.
func originalEdgeWeight(filtered *weights.Filtered, mw weights.ModeWeights, u, v ids.FilteredNode) uint32 {
	origV := filtered.ToOriginal(v)
	wv := mw.NodeWeightDS[origV]
	if wv == 0 {
		return satmath.NoPath
	}

	start, end := filtered.Offsets[u], filtered.Offsets[u+1]
	row := filtered.Heads[start:end]
	pos := sort.Search(len(row), func(i int) bool { return row[i] >= v })
	if pos == len(row) || row[pos] != v {
		return satmath.NoPath
	}
	arcIdx := filtered.OriginalArcIdx[uint32(pos)+start]
	return satmath.Add(wv, mw.ArcPenaltyDS[arcIdx])
}

// findEdgeWeight looks up the already-computed weight of edge u→v in a
// topology side's CSR via binary search on its sorted-by-head row.
func findEdgeWeight(offsets []uint32, heads []ids.FilteredNode, ws []uint32, u, v ids.FilteredNode) uint32 {
	start, end := offsets[u], offsets[u+1]
	if start >= end {
		return satmath.NoPath
	}
	row := heads[start:end]
	pos := sort.Search(len(row), func(i int) bool { return row[i] >= v })
	if pos == len(row) || row[pos] != v {
		return satmath.NoPath
	}
	return ws[start+uint32(pos)]
}
