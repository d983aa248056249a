package ebg

import (
	"sort"

	"github.com/paulmach/osm"

	"github.com/butterfly-osm/butterfly-route-core/ids"
	"github.com/butterfly-osm/butterfly-route-core/nbg"
	"github.com/butterfly-osm/butterfly-route-core/profile"
)

// WayAccess reports whether a way is usable, in either direction, for
// one mode — the accessibility test Stage 4 applies per arc endpoint
// (the "per-mode way attributes... per-direction access").
type WayAccess func(way osm.WayID) bool

// DefaultUTurnRestricted is the mode mask Stage 4 forbids U-turns for
// at non-dead-end junctions: car forbids them except at dead ends,
// bike and foot allow them. Callers may pass a different mask to
// Build.
var DefaultUTurnRestricted = ids.ModeCar.Bit()

// EnumerateNodes emits two EBG nodes per undirected NBG edge — forward
// (u→v) then reverse (v→u) — in ascending geom-index order. The
// resulting slice index is the node's ids.EBGNode id.
func EnumerateNodes(g *nbg.Graph) []Node {
	out := make([]Node, 0, g.NumEdges()*2)
	for i, e := range g.Edges {
		out = append(out,
			Node{TailNBG: e.A, HeadNBG: e.B, GeomIdx: ids.NBGEdge(i), LengthMM: e.LengthMM, ClassBits: e.Class, PrimaryWay: e.FirstOSMWayID},
			Node{TailNBG: e.B, HeadNBG: e.A, GeomIdx: ids.NBGEdge(i), LengthMM: e.LengthMM, ClassBits: e.Class, PrimaryWay: e.FirstOSMWayID},
		)
	}
	return out
}

// Build constructs the full Stage-4 EBG: node enumeration, canonical
// turn-rule merging (including Only->Ban conversion), arc enumeration
// with mode-mask filtering, turn-table deduplication and CSR assembly.
//
// wayAccess[m] reports mode m's accessibility for a way; turnRules[m]
// is mode m's canonicalized turn rules from Stage 2. uturnRestricted is
// the mode mask that forbids U-turns except at dead ends.
func Build(g *nbg.Graph, wayAccess [ids.NumModes]WayAccess, turnRules [ids.NumModes][]profile.TurnRule, uturnRestricted ids.ModeMask) *Graph {
	nodes := EnumerateNodes(g)
	canon := BuildCanonicalTurnRules(turnRules, g)

	incomingByNBG := make([][]ids.EBGNode, g.NumNodes())
	outgoingByNBG := make([][]ids.EBGNode, g.NumNodes())
	for i, n := range nodes {
		outgoingByNBG[n.TailNBG] = append(outgoingByNBG[n.TailNBG], ids.EBGNode(i))
		incomingByNBG[n.HeadNBG] = append(incomingByNBG[n.HeadNBG], ids.EBGNode(i))
	}

	type rawArc struct {
		from ids.EBGNode
		to   ids.EBGNode
		turn TurnEntry
	}
	var arcs []rawArc

	for nbgNode := 0; nbgNode < g.NumNodes(); nbgNode++ {
		viaOSM := g.NodeOSMID[nbgNode]
		incoming := incomingByNBG[nbgNode]
		outgoing := outgoingByNBG[nbgNode]

		for _, aID := range incoming {
			a := nodes[aID]
			for _, bID := range outgoing {
				b := nodes[bID]
				if a.HeadNBG != b.TailNBG {
					// Defensive: incoming/outgoing are already keyed by
					// this NBG node on both sides, so this never fires.
					continue
				}

				isUTurn := a.TailNBG == b.HeadNBG
				isDeadEnd := len(outgoing) == 1

				fromWay := g.Edges[a.GeomIdx].FirstOSMWayID
				toWay := g.Edges[b.GeomIdx].FirstOSMWayID

				rule, hasRule := canon[CanonicalKey{Via: viaOSM, From: fromWay, To: toWay}]

				mask := ids.AllModes()
				if hasRule {
					switch rule.Kind {
					case ids.TurnBan:
						mask &^= rule.ModeMask
					case ids.TurnOnly:
						mask &= rule.ModeMask
					}
				}
				mask &= wayModeMask(fromWay, wayAccess)
				mask &= wayModeMask(toWay, wayAccess)

				if isUTurn && !isDeadEnd {
					mask &^= uturnRestricted
				}
				if mask.Empty() {
					continue
				}

				entry := TurnEntry{ModeMask: mask}
				if hasRule {
					entry.Kind = rule.Kind
					entry.PenaltyDS = rule.PenaltyDS
					entry.TimeDep = rule.TimeDep
				}
				arcs = append(arcs, rawArc{from: aID, to: bID, turn: entry})
			}
		}
	}

	turnTable := make([]TurnEntry, 0)
	turnIndex := make(map[TurnEntry]ids.TurnEntryIndex)
	adjacency := make([][]struct {
		head ids.EBGNode
		turn ids.TurnEntryIndex
	}, len(nodes))

	for _, a := range arcs {
		idx, ok := turnIndex[a.turn]
		if !ok {
			idx = ids.TurnEntryIndex(len(turnTable))
			turnTable = append(turnTable, a.turn)
			turnIndex[a.turn] = idx
		}
		adjacency[a.from] = append(adjacency[a.from], struct {
			head ids.EBGNode
			turn ids.TurnEntryIndex
		}{a.to, idx})
	}

	// Deterministic adjacency order: sort each node's arcs by head id.
	for i := range adjacency {
		sort.Slice(adjacency[i], func(x, y int) bool { return adjacency[i][x].head < adjacency[i][y].head })
	}

	offsets := make([]uint32, len(nodes)+1)
	var total uint32
	for i, adj := range adjacency {
		offsets[i] = total
		total += uint32(len(adj))
	}
	offsets[len(nodes)] = total

	heads := make([]ids.EBGNode, total)
	turnIdx := make([]ids.TurnEntryIndex, total)
	cursor := uint32(0)
	for _, adj := range adjacency {
		for _, e := range adj {
			heads[cursor] = e.head
			turnIdx[cursor] = e.turn
			cursor++
		}
	}

	return &Graph{
		Nodes:     nodes,
		Offsets:   offsets,
		Heads:     heads,
		TurnIdx:   turnIdx,
		TurnTable: turnTable,
	}
}

func wayModeMask(way osm.WayID, wayAccess [ids.NumModes]WayAccess) ids.ModeMask {
	var mm ids.ModeMask
	for m := 0; m < ids.NumModes; m++ {
		if wayAccess[m] != nil && wayAccess[m](way) {
			mm = mm.With(ids.Mode(m))
		}
	}
	return mm
}
