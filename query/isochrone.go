package query

import (
	"github.com/google/uuid"

	"github.com/butterfly-osm/butterfly-route-core/ids"
	"github.com/butterfly-osm/butterfly-route-core/satmath"
	"github.com/butterfly-osm/butterfly-route-core/weights"
)

// edgeVisit records one edge relaxed out of a settled node during the
// isochrone sweep, kept regardless of whether it falls inside the
// largest threshold, so every smaller band can still test it for a
// frontier crossing.
type edgeVisit struct {
	tail   ids.FilteredNode
	arcIdx uint32
	dTail  uint32
	w      uint32
	nd     uint32
}

// ComputeIsochrone runs a single forward-only Dijkstra over the
// filtered EBG itself (not the CCH hierarchy: distinguishes
// isochrone's direct-graph traversal from the CCH-accelerated
// P2P/matrix queries, since an isochrone needs every node within the
// threshold rather than a single pair's shortest path, for which the
// CCH gives no speed advantage), out to the largest of thresholdsDS,
// and partitions the one sweep into one IsochroneBand per threshold.
func ComputeIsochrone(filtered *weights.Filtered, mw weights.ModeWeights, state *SearchState, source ids.FilteredNode, thresholdsDS []uint32) *IsochroneResult {
	maxThreshold := uint32(0)
	for _, t := range thresholdsDS {
		if t > maxThreshold {
			maxThreshold = t
		}
	}

	state.Reset()
	state.setDist(source, 0, source, invalidEdge)
	state.Push(source, 0)

	var nodes []ids.FilteredNode
	var durations []uint32
	var edges []edgeVisit

	for {
		node, d, ok := state.Pop()
		if !ok {
			break
		}
		if d > state.Dist(node) || d > maxThreshold {
			continue
		}
		nodes = append(nodes, node)
		durations = append(durations, d)

		start, end := filtered.Offsets[node], filtered.Offsets[node+1]
		for i := start; i < end; i++ {
			v := filtered.Heads[i]
			origV := filtered.ToOriginal(v)
			wv := mw.NodeWeightDS[origV]
			if wv == 0 {
				continue
			}
			arcIdx := filtered.OriginalArcIdx[i]
			w := satmath.Add(wv, mw.ArcPenaltyDS[arcIdx])
			if w == satmath.NoPath {
				continue
			}
			nd := satmath.Add(d, w)
			edges = append(edges, edgeVisit{tail: node, arcIdx: i, dTail: d, w: w, nd: nd})
			if nd > maxThreshold {
				continue
			}
			if nd < state.Dist(v) {
				state.setDist(v, nd, node, i)
				state.Push(v, nd)
			}
		}
	}

	bands := make([]IsochroneBand, len(thresholdsDS))
	for bi, threshold := range thresholdsDS {
		band := IsochroneBand{ThresholdDS: threshold}
		for i, d := range durations {
			if d <= threshold {
				band.Nodes = append(band.Nodes, nodes[i])
				band.DurationDS = append(band.DurationDS, d)
			}
		}
		for _, e := range edges {
			if e.dTail <= threshold && e.nd > threshold {
				band.Frontier = append(band.Frontier, FrontierSegment{
					Tail:     e.tail,
					ArcIdx:   e.arcIdx,
					Position: float64(threshold-e.dTail) / float64(e.w),
				})
			}
		}
		bands[bi] = band
	}

	return &IsochroneResult{RequestID: uuid.New(), Bands: bands}
}
