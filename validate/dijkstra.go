package validate

import (
	"container/heap"

	"github.com/butterfly-osm/butterfly-route-core/ids"
	"github.com/butterfly-osm/butterfly-route-core/satmath"
	"github.com/butterfly-osm/butterfly-route-core/weights"
)

// PlainDijkstra is the independent reference implementation
// CheckQueryCorrectness checks the CCH query engine against: an
// ordinary single-source Dijkstra search directly over the
// mode-filtered EBG, using the same sat_add node-weight-plus-arc-penalty
// formula as query.ComputeIsochrone, with none of the hierarchy
// shortcuts the CCH query takes.
func PlainDijkstra(filtered *weights.Filtered, mw weights.ModeWeights, source ids.FilteredNode) []uint32 {
	dist := make([]uint32, filtered.NumNodes())
	for i := range dist {
		dist[i] = satmath.NoPath
	}
	dist[source] = 0

	pq := make(refPQ, 0, 64)
	heap.Push(&pq, refItem{node: source, dist: 0})

	for pq.Len() > 0 {
		item := heap.Pop(&pq).(refItem)
		u, d := item.node, item.dist
		if d > dist[u] {
			continue
		}

		start, end := filtered.Offsets[u], filtered.Offsets[u+1]
		for i := start; i < end; i++ {
			v := filtered.Heads[i]
			origV := filtered.ToOriginal(v)
			wv := mw.NodeWeightDS[origV]
			if wv == 0 {
				continue
			}
			w := satmath.Add(wv, mw.ArcPenaltyDS[filtered.OriginalArcIdx[i]])
			if w == satmath.NoPath {
				continue
			}
			nd := satmath.Add(d, w)
			if nd < dist[v] {
				dist[v] = nd
				heap.Push(&pq, refItem{node: v, dist: nd})
			}
		}
	}

	return dist
}

type refItem struct {
	node ids.FilteredNode
	dist uint32
}

type refPQ []refItem

func (pq refPQ) Len() int            { return len(pq) }
func (pq refPQ) Less(i, j int) bool  { return pq[i].dist < pq[j].dist }
func (pq refPQ) Swap(i, j int)       { pq[i], pq[j] = pq[j], pq[i] }
func (pq *refPQ) Push(x interface{}) { *pq = append(*pq, x.(refItem)) }
func (pq *refPQ) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}
