package validate

import (
	"github.com/butterfly-osm/butterfly-route-core/contract"
	"github.com/butterfly-osm/butterfly-route-core/ids"
	"github.com/butterfly-osm/butterfly-route-core/order"
	"github.com/butterfly-osm/butterfly-route-core/weights"
)

// hierarchySampleCap bounds the number of nodes the hierarchy-property
// check walks to the first 10,000 nodes on large graphs instead of
// walking every row.
const hierarchySampleCap = 10000

// CheckCSRStructure verifies a CCH topology's CSR arrays are
// internally consistent: offsets are monotonically non-decreasing,
// the final offset matches the head-array length, and node counts
// line up across the topology and its filtered EBG and ordering.
func CheckCSRStructure(topo *contract.Topo, filtered *weights.Filtered, ord *order.FilteredOrdering) *Result {
	r := &Result{}

	if topo.NNodes == filtered.NumNodes() && topo.NNodes == len(ord.Perm) {
		r.pass()
	} else {
		r.fail("node counts disagree: topo=%d filtered=%d ordering=%d",
			topo.NNodes, filtered.NumNodes(), len(ord.Perm))
	}

	if checkOffsetsMonotonic(topo.UpOffsets, topo.NumUpEdges()) {
		r.pass()
	} else {
		r.fail("UP CSR offsets are not monotonic or length-consistent")
	}
	if checkOffsetsMonotonic(topo.DownOffsets, topo.NumDownEdges()) {
		r.pass()
	} else {
		r.fail("DOWN CSR offsets are not monotonic or length-consistent")
	}

	return r
}

func checkOffsetsMonotonic(offsets []uint32, nEdges int) bool {
	if len(offsets) == 0 {
		return nEdges == 0
	}
	if offsets[0] != 0 || int(offsets[len(offsets)-1]) != nEdges {
		return false
	}
	for i := 1; i < len(offsets); i++ {
		if offsets[i] < offsets[i-1] {
			return false
		}
	}
	return true
}

// CheckHierarchyProperty verifies that every UP edge strictly
// increases rank, every DOWN edge strictly decreases rank, and every
// shortcut's middle node outranks neither endpoint (rank(m) <
// min(rank(u), rank(w))), sampled to hierarchySampleCap nodes.
func CheckHierarchyProperty(topo *contract.Topo, ord *order.FilteredOrdering) *Result {
	r := &Result{}

	n := topo.NNodes
	if n > hierarchySampleCap {
		n = hierarchySampleCap
	}

	upViolations, downViolations, middleViolations := 0, 0, 0

	for u := 0; u < n; u++ {
		node := ids.FilteredNode(u)
		heads, isShortcut, middle := topo.UpNeighbors(node)
		for i, v := range heads {
			if ord.Perm[v] <= ord.Perm[node] {
				upViolations++
			}
			if isShortcut[i] {
				m := middle[i]
				if !(ord.Perm[m] < ord.Perm[node] && ord.Perm[m] < ord.Perm[v]) {
					middleViolations++
				}
			}
		}

		heads, isShortcut, middle = topo.DownNeighbors(node)
		for i, v := range heads {
			if ord.Perm[v] >= ord.Perm[node] {
				downViolations++
			}
			if isShortcut[i] {
				m := middle[i]
				if !(ord.Perm[m] < ord.Perm[node] && ord.Perm[m] < ord.Perm[v]) {
					middleViolations++
				}
			}
		}
	}

	if upViolations == 0 {
		r.pass()
	} else {
		r.fail("%d UP edges fail perm[v] > perm[u]", upViolations)
	}
	if downViolations == 0 {
		r.pass()
	} else {
		r.fail("%d DOWN edges fail perm[v] < perm[u]", downViolations)
	}
	if middleViolations == 0 {
		r.pass()
	} else {
		r.fail("%d shortcuts fail rank(m) < min(rank(u), rank(w))", middleViolations)
	}

	if n < topo.NNodes {
		r.warn("hierarchy check sampled %d of %d nodes", n, topo.NNodes)
	}

	return r
}

// CheckEdgePreservation verifies that contraction did not drop or
// duplicate any original (non-shortcut) arc: the count of non-shortcut
// rows across both UP and DOWN CSRs, plus self-loops filtered out by
// contraction, must equal the filtered EBG's own arc count.
func CheckEdgePreservation(topo *contract.Topo, filtered *weights.Filtered) *Result {
	r := &Result{}

	original := 0
	for i := range topo.UpIsShortcut {
		if !topo.UpIsShortcut[i] {
			original++
		}
	}
	for i := range topo.DownIsShortcut {
		if !topo.DownIsShortcut[i] {
			original++
		}
	}

	selfLoops := 0
	for u := 0; u < filtered.NumNodes(); u++ {
		start, end := filtered.Offsets[u], filtered.Offsets[u+1]
		for i := start; i < end; i++ {
			if int(filtered.Heads[i]) == u {
				selfLoops++
			}
		}
	}

	want := filtered.NumArcs() - selfLoops
	if original == want {
		r.pass()
	} else {
		r.fail("non-shortcut CCH edges=%d, want filtered arcs minus self-loops=%d", original, want)
	}

	return r
}
