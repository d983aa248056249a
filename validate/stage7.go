package validate

import (
	"hash/fnv"
	"sort"

	"github.com/butterfly-osm/butterfly-route-core/contract"
	"github.com/butterfly-osm/butterfly-route-core/customize"
	"github.com/butterfly-osm/butterfly-route-core/ids"
	"github.com/butterfly-osm/butterfly-route-core/query"
	"github.com/butterfly-osm/butterfly-route-core/satmath"
	"github.com/butterfly-osm/butterfly-route-core/weights"
)

// SamplePairCount is the number of (source, target) pairs the
// query-correctness checks sample per mode.
const SamplePairCount = 100

// samplePairs deterministically derives SamplePairCount (source,
// target) pairs from n by hashing an incrementing counter, which keeps
// the sample reproducible across runs without any runtime randomness.
func samplePairs(n int) [][2]ids.FilteredNode {
	if n == 0 {
		return nil
	}
	pairs := make([][2]ids.FilteredNode, 0, SamplePairCount)
	for i := 0; i < SamplePairCount; i++ {
		h := fnv.New64a()
		var buf [8]byte
		for j := range buf {
			buf[j] = byte(i >> (8 * j))
		}
		h.Write(buf[:])
		s := int(h.Sum64() % uint64(n))
		h.Write([]byte{0xff})
		t := int(h.Sum64() % uint64(n))
		pairs = append(pairs, [2]ids.FilteredNode{ids.FilteredNode(s), ids.FilteredNode(t)})
	}
	return pairs
}

// CheckQueryCorrectness is the critical customization-correctness
// check: for a sample of node pairs, the CCH
// bidirectional query's distance must equal plain Dijkstra's distance
// over the same mode-filtered EBG. A reachability-only variant (BFS
// vs. unweighted CCH hop count) is cheaper but cannot catch a
// customization bug that yields a wrong-but-finite distance, so this
// is the primary check; CheckReachability below is the cheaper
// secondary check.
func CheckQueryCorrectness(topo *contract.Topo, w *customize.Weights, filtered *weights.Filtered, mw weights.ModeWeights) *Result {
	r := &Result{}

	down := query.BuildDownReverse(topo)
	fwdState := query.NewSearchState(topo.NNodes)
	bwdState := query.NewSearchState(topo.NNodes)

	mismatches := 0
	checked := 0
	for _, pair := range samplePairs(topo.NNodes) {
		s, t := pair[0], pair[1]
		ref := PlainDijkstra(filtered, mw, s)[t]

		route, err := query.ComputeRoute(topo, w, down, fwdState, bwdState, s, t)
		var got uint32
		if err != nil {
			got = satmath.NoPath
		} else {
			got = route.DurationDS
		}

		checked++
		if got != ref {
			mismatches++
		}
	}

	if mismatches == 0 {
		r.pass()
	} else {
		r.fail("%d/%d sampled pairs disagree between CCH query and plain Dijkstra", mismatches, checked)
	}
	return r
}

// CheckReachability is the cheaper secondary check: a BFS-vs-CCH
// comparison that checks only whether a pair is reachable at all, not
// the exact distance, so it is suitable for graphs too large for
// CheckQueryCorrectness's repeated full Dijkstra but cannot catch a
// wrong-but-finite distance bug.
func CheckReachability(topo *contract.Topo, w *customize.Weights, filtered *weights.Filtered, adjacency func(u ids.FilteredNode) []ids.FilteredNode) *Result {
	r := &Result{}

	down := query.BuildDownReverse(topo)
	fwdState := query.NewSearchState(topo.NNodes)
	bwdState := query.NewSearchState(topo.NNodes)

	mismatches := 0
	checked := 0
	for _, pair := range samplePairs(topo.NNodes) {
		s, t := pair[0], pair[1]
		bfsReachable := bfsReaches(adjacency, filtered.NumNodes(), s, t)

		_, err := query.ComputeRoute(topo, w, down, fwdState, bwdState, s, t)
		cchReachable := err == nil

		checked++
		if bfsReachable != cchReachable {
			mismatches++
		}
	}

	if mismatches == 0 {
		r.pass()
	} else {
		r.fail("%d/%d sampled pairs disagree on reachability between BFS and CCH", mismatches, checked)
	}
	return r
}

func bfsReaches(adjacency func(u ids.FilteredNode) []ids.FilteredNode, n int, s, t ids.FilteredNode) bool {
	if s == t {
		return true
	}
	visited := make([]bool, n)
	visited[s] = true
	queue := []ids.FilteredNode{s}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for _, v := range adjacency(u) {
			if v == t {
				return true
			}
			if !visited[v] {
				visited[v] = true
				queue = append(queue, v)
			}
		}
	}
	return false
}

// CheckUnpackSoundness verifies that the FilteredPath a Route unpacks
// to is a real walk in the mode-filtered EBG whose consecutive-arc
// weights saturating-add up to exactly the CCH distance the
// bidirectional search reported.
func CheckUnpackSoundness(filtered *weights.Filtered, mw weights.ModeWeights, route *query.Route) *Result {
	r := &Result{}

	total := uint32(0)
	broken := false
	for i := 0; i+1 < len(route.FilteredPath); i++ {
		u, v := route.FilteredPath[i], route.FilteredPath[i+1]
		w, ok := findArcWeight(filtered, mw, u, v)
		if !ok {
			r.fail("unpacked path has no arc %d->%d in the filtered EBG", u, v)
			broken = true
			break
		}
		total = satmath.Add(total, w)
	}

	if !broken {
		if total == route.DurationDS {
			r.pass()
		} else {
			r.fail("unpacked path sums to %d, route reports %d", total, route.DurationDS)
		}
	}
	return r
}

func findArcWeight(filtered *weights.Filtered, mw weights.ModeWeights, u, v ids.FilteredNode) (uint32, bool) {
	start, end := filtered.Offsets[u], filtered.Offsets[u+1]
	heads := filtered.Heads[start:end]
	i := sort.Search(len(heads), func(i int) bool { return heads[i] >= v })
	if i >= len(heads) || heads[i] != v {
		return 0, false
	}
	origV := filtered.ToOriginal(v)
	wv := mw.NodeWeightDS[origV]
	arcIdx := filtered.OriginalArcIdx[start+uint32(i)]
	return satmath.Add(wv, mw.ArcPenaltyDS[arcIdx]), true
}

// CheckTriangleInequality verifies, over a CCH topology's own
// shortcuts, that for every UP shortcut u->w via middle m,
// up_w[u->w] must be <= sat_add(weight(u->m), weight(m->w)) (equality
// is the normal case; saturating arithmetic can only ever make the
// direct sum larger or equal, never smaller).
func CheckTriangleInequality(topo *contract.Topo, w *customize.Weights) *Result {
	r := &Result{}

	violations := 0
	for u := 0; u < topo.NNodes; u++ {
		node := ids.FilteredNode(u)
		heads, isShortcut, middle := topo.UpNeighbors(node)
		start := topo.UpOffsets[node]
		for i, wHead := range heads {
			if !isShortcut[i] {
				continue
			}
			edge := start + uint32(i)
			m := middle[i]

			um, ok := findEdgeIndex(topo, node, m)
			if !ok {
				continue
			}
			mw_, ok := findEdgeIndex(topo, m, wHead)
			if !ok {
				continue
			}
			viaSum := satmath.Add(um.weight(w), mw_.weight(w))
			direct := w.UpWeight(int(edge))
			if direct > viaSum {
				violations++
			}
		}
	}

	if violations == 0 {
		r.pass()
	} else {
		r.fail("%d shortcuts violate up_w[u->w] <= sat_add(weight(u->m), weight(m->w))", violations)
	}
	return r
}

// topoEdgeRef identifies one CSR row unambiguously: UpHeads and
// DownHeads are separate arrays, so an index alone is not enough to
// know which weight table (UpWeight/DownWeight) it indexes into.
type topoEdgeRef struct {
	idx  uint32
	isUp bool
}

func (e topoEdgeRef) weight(w *customize.Weights) uint32 {
	if e.isUp {
		return w.UpWeight(int(e.idx))
	}
	return w.DownWeight(int(e.idx))
}

// findEdgeIndex locates the CSR position of the UP or DOWN edge from
// u to v, whichever direction holds it (every CCH edge is stored once,
// on the lower-ranked endpoint's UP row or the higher-ranked
// endpoint's DOWN row).
func findEdgeIndex(topo *contract.Topo, u, v ids.FilteredNode) (topoEdgeRef, bool) {
	start, end := topo.UpOffsets[u], topo.UpOffsets[u+1]
	for i := start; i < end; i++ {
		if topo.UpHeads[i] == v {
			return topoEdgeRef{idx: i, isUp: true}, true
		}
	}
	start, end = topo.DownOffsets[u], topo.DownOffsets[u+1]
	for i := start; i < end; i++ {
		if topo.DownHeads[i] == v {
			return topoEdgeRef{idx: i, isUp: false}, true
		}
	}
	return topoEdgeRef{}, false
}
