package query

import (
	"github.com/butterfly-osm/butterfly-route-core/contract"
	"github.com/butterfly-osm/butterfly-route-core/customize"
	"github.com/butterfly-osm/butterfly-route-core/ids"
	"github.com/butterfly-osm/butterfly-route-core/satmath"
)

// bidiSearch runs a bidirectional CCH search: a forward search relaxes
// only UP edges out of source, a backward search relaxes only DOWN
// edges into target (via down reverse adjacency). Both sides only
// ever move to higher-ranked nodes along UP, meaning they are
// guaranteed to meet at the node of highest rank on the shortest
// up-down path, per standard CH query theory.
//
// Meeting-candidate tracking updates at every pop (finalize) by
// checking the other side's current tentative distance to that node,
// valid because Dijkstra's tentative distances are always upper bounds
// and never increase, so this only tightens the bound. The search stops
// once each side's own heap minimum is >= best; the sum-of-minimums
// rule of plain bidirectional Dijkstra does not hold here, because both
// sides only climb in rank and cannot cross into each other's region.
type bidiSearch struct {
	topo    *contract.Topo
	weights *customize.Weights
	down    *DownReverse

	fwd *SearchState
	bwd *SearchState
}

func newBidiSearch(topo *contract.Topo, w *customize.Weights, down *DownReverse, fwd, bwd *SearchState) *bidiSearch {
	return &bidiSearch{topo: topo, weights: w, down: down, fwd: fwd, bwd: bwd}
}

// run executes the bidirectional search from source to target and
// returns the shortest distance and the meeting node, or
// (satmath.NoPath, 0) if unreachable.
func (b *bidiSearch) run(source, target ids.FilteredNode) (uint32, ids.FilteredNode) {
	b.fwd.Reset()
	b.bwd.Reset()
	b.fwd.setDist(source, 0, source, invalidEdge)
	b.bwd.setDist(target, 0, target, invalidEdge)
	b.fwd.Push(source, 0)
	b.bwd.Push(target, 0)

	best := satmath.NoPath
	var meeting ids.FilteredNode

	for {
		fwdTop := b.fwd.PeekDist()
		bwdTop := b.bwd.PeekDist()
		if fwdTop == satmath.NoPath && bwdTop == satmath.NoPath {
			break
		}
		if best != satmath.NoPath && fwdTop >= best && bwdTop >= best {
			break
		}

		if fwdTop != satmath.NoPath && (bwdTop == satmath.NoPath || fwdTop <= bwdTop) {
			node, d, ok := b.fwd.Pop()
			if !ok || d > b.fwd.Dist(node) {
				continue
			}
			if cand := satmath.Add(d, b.bwd.Dist(node)); cand < best {
				best, meeting = cand, node
			}
			b.relaxForward(node, d)
		} else if bwdTop != satmath.NoPath {
			node, d, ok := b.bwd.Pop()
			if !ok || d > b.bwd.Dist(node) {
				continue
			}
			if cand := satmath.Add(d, b.fwd.Dist(node)); cand < best {
				best, meeting = cand, node
			}
			b.relaxBackward(node, d)
		} else {
			break
		}
	}

	return best, meeting
}

const invalidEdge = ^uint32(0)

func (b *bidiSearch) relaxForward(u ids.FilteredNode, du uint32) {
	heads, _, _ := b.topo.UpNeighbors(u)
	start := b.topo.UpOffsets[u]
	for i, v := range heads {
		edge := start + uint32(i)
		w := b.weights.UpWeight(int(edge))
		if w == satmath.NoPath {
			continue
		}
		nd := satmath.Add(du, w)
		if nd < b.fwd.Dist(v) {
			b.fwd.setDist(v, nd, u, edge)
			b.fwd.Push(v, nd)
		}
	}
}

func (b *bidiSearch) relaxBackward(y ids.FilteredNode, dy uint32) {
	sources, edgeIdx := b.down.Neighbors(y)
	for i, x := range sources {
		edge := edgeIdx[i]
		w := b.weights.DownWeight(int(edge))
		if w == satmath.NoPath {
			continue
		}
		nd := satmath.Add(dy, w)
		if nd < b.bwd.Dist(x) {
			b.bwd.setDist(x, nd, y, edge)
			b.bwd.Push(x, nd)
		}
	}
}
