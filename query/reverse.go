package query

import (
	"github.com/butterfly-osm/butterfly-route-core/contract"
	"github.com/butterfly-osm/butterfly-route-core/ids"
)

// DownReverse is the reverse adjacency of a CCH topology's DOWN graph:
// for node y, Sources[Offsets[y]:Offsets[y+1]] lists every x with a DOWN edge
// x->y, and EdgeIdx holds that edge's position in topo.DownHeads so
// its weight/shortcut data can be looked up directly. Backward search
// walks this to relax "incoming" DOWN edges without a linear scan.
type DownReverse struct {
	Offsets []uint32
	Sources []ids.FilteredNode
	EdgeIdx []uint32
}

// BuildDownReverse computes topo's reverse DOWN adjacency via the same
// counting-sort CSR assembly used throughout the pipeline.
func BuildDownReverse(topo *contract.Topo) *DownReverse {
	n := topo.NNodes
	nDown := topo.NumDownEdges()

	counts := make([]uint32, n+1)
	for _, target := range topo.DownHeads {
		counts[target+1]++
	}
	for i := 1; i <= n; i++ {
		counts[i] += counts[i-1]
	}

	sources := make([]ids.FilteredNode, nDown)
	edgeIdx := make([]uint32, nDown)
	cursor := append([]uint32(nil), counts[:n]...)

	for u := 0; u < n; u++ {
		start, end := topo.DownOffsets[u], topo.DownOffsets[u+1]
		for i := start; i < end; i++ {
			target := topo.DownHeads[i]
			pos := cursor[target]
			sources[pos] = ids.FilteredNode(u)
			edgeIdx[pos] = i
			cursor[target]++
		}
	}

	return &DownReverse{Offsets: counts, Sources: sources, EdgeIdx: edgeIdx}
}

// Neighbors returns the (source, downEdgeIdx) pairs for node y: every
// x such that x->y is a DOWN edge.
func (r *DownReverse) Neighbors(y ids.FilteredNode) (sources []ids.FilteredNode, edgeIdx []uint32) {
	start, end := r.Offsets[y], r.Offsets[y+1]
	return r.Sources[start:end], r.EdgeIdx[start:end]
}
