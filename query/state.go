package query

import (
	"container/heap"

	"github.com/butterfly-osm/butterfly-route-core/ids"
	"github.com/butterfly-osm/butterfly-route-core/satmath"
)

// SearchState is a reusable, version-stamped single-direction search
// buffer: distances are stamped with the current search version, so
// resetting between queries is version++ rather than an O(n) clear.
type SearchState struct {
	dist    []uint32
	version []uint32
	curVer  uint32

	predNode []ids.FilteredNode
	predEdge []uint32

	pq nodePQ
}

// NewSearchState allocates a search buffer sized for n filtered nodes.
// Reuse one instance across many queries; call Reset before each.
func NewSearchState(n int) *SearchState {
	return &SearchState{
		dist:     make([]uint32, n),
		version:  make([]uint32, n),
		predNode: make([]ids.FilteredNode, n),
		predEdge: make([]uint32, n),
		pq:       make(nodePQ, 0, 64),
	}
}

// Reset invalidates every previous distance in O(1) via version
// stamping rather than clearing the distance arrays.
func (s *SearchState) Reset() {
	s.curVer++
	if s.curVer == 0 {
		for i := range s.version {
			s.version[i] = 0
		}
		s.curVer = 1
	}
	s.pq = s.pq[:0]
}

// Dist returns node's current tentative distance, or satmath.NoPath
// if unvisited this version.
func (s *SearchState) Dist(node ids.FilteredNode) uint32 {
	if s.version[node] != s.curVer {
		return satmath.NoPath
	}
	return s.dist[node]
}

// Visited reports whether node has a tentative (possibly not yet
// finalized) distance this version.
func (s *SearchState) Visited(node ids.FilteredNode) bool {
	return s.version[node] == s.curVer
}

// setDist records a new best-known distance for node and its
// predecessor edge, stamping it with the current version.
func (s *SearchState) setDist(node ids.FilteredNode, d uint32, pred ids.FilteredNode, edge uint32) {
	s.dist[node] = d
	s.version[node] = s.curVer
	s.predNode[node] = pred
	s.predEdge[node] = edge
}

// Push seeds the heap with (node, dist); used for the search source.
func (s *SearchState) Push(node ids.FilteredNode, d uint32) {
	heap.Push(&s.pq, heapItem{node: node, dist: d})
}

// Pop removes and returns the minimum-distance heap item, and true if
// one existed.
func (s *SearchState) Pop() (ids.FilteredNode, uint32, bool) {
	if s.pq.Len() == 0 {
		return 0, 0, false
	}
	item := heap.Pop(&s.pq).(heapItem)
	return item.node, item.dist, true
}

// PeekDist returns the current heap minimum, or satmath.NoPath if
// empty; used for the bidirectional termination bound.
func (s *SearchState) PeekDist() uint32 {
	if len(s.pq) == 0 {
		return satmath.NoPath
	}
	return s.pq[0].dist
}

type heapItem struct {
	node ids.FilteredNode
	dist uint32
}

// nodePQ is a lazy-decrease-key min-heap over (node, dist) pairs,
// keyed on ids.FilteredNode with uint32 distances.
type nodePQ []heapItem

func (pq nodePQ) Len() int            { return len(pq) }
func (pq nodePQ) Less(i, j int) bool  { return pq[i].dist < pq[j].dist }
func (pq nodePQ) Swap(i, j int)       { pq[i], pq[j] = pq[j], pq[i] }
func (pq *nodePQ) Push(x interface{}) { *pq = append(*pq, x.(heapItem)) }
func (pq *nodePQ) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}
