package query

import (
	"github.com/butterfly-osm/butterfly-route-core/contract"
	"github.com/butterfly-osm/butterfly-route-core/ids"
)

// unpacker expands CCH UP/DOWN edges into original filtered-EBG arcs
// by recursively splitting each shortcut at its middle node.
type unpacker struct {
	topo *contract.Topo
}

// unpackRoute builds the full filtered-node path from a bidirectional
// search's forward and backward predecessor chains, meeting at
// meeting.
//
// The forward portion is built by walking fwd.predNode/predEdge
// backward from meeting to source, then reversing, giving
// source..meeting in order. The backward portion is built by walking
// bwd.predNode/predEdge *forward* from meeting toward target: each
// step's predEdge[cur] is the DOWN-CSR index of the edge cur->
// bwd.predNode[cur], so appending as we go already yields
// meeting..target in order directly, with no separate reversal pass
// needed for the backward half.
func (u *unpacker) unpackRoute(fwd, bwd *SearchState, source, target, meeting ids.FilteredNode) []ids.FilteredNode {
	var fwdEdges []uint32
	cur := meeting
	for cur != source {
		fwdEdges = append(fwdEdges, fwd.predEdge[cur])
		cur = fwd.predNode[cur]
	}
	// fwdEdges is meeting->...->source order; reverse to source->meeting.
	for i, j := 0, len(fwdEdges)-1; i < j; i, j = i+1, j-1 {
		fwdEdges[i], fwdEdges[j] = fwdEdges[j], fwdEdges[i]
	}

	path := []ids.FilteredNode{source}
	for _, e := range fwdEdges {
		path = append(path, u.unpackUp(e)...)
	}

	var bwdEdges []uint32
	cur = meeting
	for cur != target {
		bwdEdges = append(bwdEdges, bwd.predEdge[cur])
		cur = bwd.predNode[cur]
	}
	for _, e := range bwdEdges {
		path = append(path, u.unpackDown(e)...)
	}

	return path
}

// unpackUp expands topology UP-row index e into the sequence of
// filtered-node ids it visits after its tail (exclusive of the tail,
// inclusive of the final target), recursing via down-then-up on
// shortcuts: a shortcut p->s via middle m decomposes into the DOWN
// edge p->m followed by the UP edge m->s. Contraction only ever
// produces a shortcut between nodes both ranked above the contracted
// middle, so p->m is necessarily a DOWN step and m->s an UP step from
// m's perspective.
func (u *unpacker) unpackUp(e uint32) []ids.FilteredNode {
	target := u.topo.UpHeads[e]
	if !u.topo.UpIsShortcut[e] {
		return []ids.FilteredNode{target}
	}
	middle := u.topo.UpMiddle[e]
	tail := u.tailOfUp(e)
	downEdge := u.findDown(tail, middle)
	upEdge := u.findUp(middle, target)
	out := u.unpackDown(downEdge)
	out = append(out, u.unpackUp(upEdge)...)
	return out
}

// unpackDown is unpackUp's mirror for DOWN-row index e.
func (u *unpacker) unpackDown(e uint32) []ids.FilteredNode {
	target := u.topo.DownHeads[e]
	if !u.topo.DownIsShortcut[e] {
		return []ids.FilteredNode{target}
	}
	middle := u.topo.DownMiddle[e]
	tail := u.tailOfDown(e)
	downEdge := u.findDown(tail, middle)
	upEdge := u.findUp(middle, target)
	out := u.unpackDown(downEdge)
	out = append(out, u.unpackUp(upEdge)...)
	return out
}

// tailOfUp finds the node owning UP-row index e via binary search on
// the monotonically increasing UpOffsets.
func (u *unpacker) tailOfUp(e uint32) ids.FilteredNode {
	return rowOwner(u.topo.UpOffsets, e)
}

func (u *unpacker) tailOfDown(e uint32) ids.FilteredNode {
	return rowOwner(u.topo.DownOffsets, e)
}

func rowOwner(offsets []uint32, e uint32) ids.FilteredNode {
	lo, hi := 0, len(offsets)-2
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if offsets[mid] <= e {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return ids.FilteredNode(lo)
}

// findUp binary-searches from's sorted UP row for the entry pointing
// at to, returning its CSR index.
func (u *unpacker) findUp(from, to ids.FilteredNode) uint32 {
	start, end := u.topo.UpOffsets[from], u.topo.UpOffsets[from+1]
	return findInRow(u.topo.UpHeads, start, end, to)
}

// findDown is findUp's DOWN-row mirror.
func (u *unpacker) findDown(from, to ids.FilteredNode) uint32 {
	start, end := u.topo.DownOffsets[from], u.topo.DownOffsets[from+1]
	return findInRow(u.topo.DownHeads, start, end, to)
}

func findInRow(heads []ids.FilteredNode, start, end uint32, target ids.FilteredNode) uint32 {
	lo, hi := int(start), int(end)
	for lo < hi {
		mid := (lo + hi) / 2
		if heads[mid] < target {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return uint32(lo)
}
