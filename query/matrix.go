package query

import (
	"sort"

	"github.com/google/uuid"

	"github.com/butterfly-osm/butterfly-route-core/contract"
	"github.com/butterfly-osm/butterfly-route-core/customize"
	"github.com/butterfly-osm/butterfly-route-core/ids"
	"github.com/butterfly-osm/butterfly-route-core/satmath"
)

// bucketEntry is one (node, source index, distance) triple dropped
// into the flat bucket list during the forward phase.
type bucketEntry struct {
	node   ids.FilteredNode
	srcIdx int
	dist   uint32
}

type buckets struct {
	items []bucketEntry
}

func (b *buckets) add(node ids.FilteredNode, srcIdx int, dist uint32) {
	b.items = append(b.items, bucketEntry{node: node, srcIdx: srcIdx, dist: dist})
}

// sortByNode sorts the flat bucket list once so per-node slices can be
// found by binary search during the backward phase.
func (b *buckets) sortByNode() {
	sort.Slice(b.items, func(i, j int) bool {
		if b.items[i].node != b.items[j].node {
			return b.items[i].node < b.items[j].node
		}
		return b.items[i].srcIdx < b.items[j].srcIdx
	})
}

// at returns the slice of bucket entries for node, via binary search
// on the node-sorted flat list.
func (b *buckets) at(node ids.FilteredNode) []bucketEntry {
	lo := sort.Search(len(b.items), func(i int) bool { return b.items[i].node >= node })
	hi := sort.Search(len(b.items), func(i int) bool { return b.items[i].node > node })
	return b.items[lo:hi]
}

// computeForwardBuckets runs phase 1 of the bucket M2M algorithm: an
// UP-only forward search from every source, recording a
// (node, source index, distance) triple at every node visited.
func computeForwardBuckets(topo *contract.Topo, w *customize.Weights, state *SearchState, sources []ids.FilteredNode) *buckets {
	b := &buckets{}
	for i, src := range sources {
		state.Reset()
		state.setDist(src, 0, src, invalidEdge)
		state.Push(src, 0)
		for {
			node, d, ok := state.Pop()
			if !ok {
				break
			}
			if d > state.Dist(node) {
				continue
			}
			b.add(node, i, d)
			relaxUpOnly(topo, w, state, node, d)
		}
	}
	b.sortByNode()
	return b
}

func relaxUpOnly(topo *contract.Topo, w *customize.Weights, state *SearchState, u ids.FilteredNode, du uint32) {
	heads, _, _ := topo.UpNeighbors(u)
	start := topo.UpOffsets[u]
	for i, v := range heads {
		edge := start + uint32(i)
		weight := w.UpWeight(int(edge))
		if weight == satmath.NoPath {
			continue
		}
		nd := satmath.Add(du, weight)
		if nd < state.Dist(v) {
			state.setDist(v, nd, u, edge)
			state.Push(v, nd)
		}
	}
}

// ComputeMatrix answers a one-to-many/many-to-many bucket query:
// phase 1 runs an UP-only forward search from every source,
// dropping (node, source index, distance) triples into a flat bucket
// list; phase 2 runs a DOWN-reverse backward search from every target,
// joining against each visited node's bucket slice via binary search.
func ComputeMatrix(topo *contract.Topo, w *customize.Weights, down *DownReverse, fwdState, bwdState *SearchState, sources, targets []ids.FilteredNode) *Matrix {
	nSrc, nTgt := len(sources), len(targets)
	out := &Matrix{
		RequestID:   uuid.New(),
		NSources:    nSrc,
		NTargets:    nTgt,
		DurationsDS: make([]uint32, nSrc*nTgt),
	}
	for i := range out.DurationsDS {
		out.DurationsDS[i] = satmath.NoPath
	}

	b := computeForwardBuckets(topo, w, fwdState, sources)

	for j, tgt := range targets {
		bwdState.Reset()
		bwdState.setDist(tgt, 0, tgt, invalidEdge)
		bwdState.Push(tgt, 0)
		for {
			node, d, ok := bwdState.Pop()
			if !ok {
				break
			}
			if d > bwdState.Dist(node) {
				continue
			}
			for _, entry := range b.at(node) {
				cand := satmath.Add(entry.dist, d)
				idx := entry.srcIdx*nTgt + j
				if cand < out.DurationsDS[idx] {
					out.DurationsDS[idx] = cand
				}
			}
			relaxDownReverseOnly(down, w, bwdState, node, d)
		}
	}

	return out
}

func relaxDownReverseOnly(down *DownReverse, w *customize.Weights, state *SearchState, y ids.FilteredNode, dy uint32) {
	sources, edgeIdx := down.Neighbors(y)
	for i, x := range sources {
		edge := edgeIdx[i]
		weight := w.DownWeight(int(edge))
		if weight == satmath.NoPath {
			continue
		}
		nd := satmath.Add(dy, weight)
		if nd < state.Dist(x) {
			state.setDist(x, nd, y, edge)
			state.Push(x, nd)
		}
	}
}
