// Package ebg implements Stage 4: turning the node-based graph into
// the edge-based (turn-expanded) graph whose vertices are directed
// NBG edges and whose arcs are legal turns.
//
// The pipeline shape is enumerate-nodes / build-canonical-turn-rules /
// build-adjacency / materialize-CSR. Intermediate lookups (canonical
// turn rules, the turn-table index) are maps, but every emission loop
// walks NBG nodes, EBG nodes and sorted keys rather than map ranges, so
// the CSR this package emits does not depend on map iteration order.
// CSR assembly itself follows the same offset/head pattern nbg uses.
package ebg

import (
	"github.com/paulmach/osm"

	"github.com/butterfly-osm/butterfly-route-core/ids"
	"github.com/butterfly-osm/butterfly-route-core/nbg"
)

// Node is one EBG node: a directed NBG edge, carrying (tail_nbg,
// head_nbg, geom_idx, length_mm, class_bits, primary_way).
type Node struct {
	TailNBG    ids.NBGNode
	HeadNBG    ids.NBGNode
	GeomIdx    ids.NBGEdge // index into the source nbg.Graph.Edges
	LengthMM   uint32
	ClassBits  nbg.ClassBits
	PrimaryWay osm.WayID
}

// TurnEntry is a deduplicated turn-table row: (mode_mask: u8, kind,
// penalty_ds_{car,bike,foot}: u32, has_time_dep: bool).
type TurnEntry struct {
	ModeMask  ids.ModeMask
	Kind      ids.TurnKind
	PenaltyDS [ids.NumModes]uint32
	TimeDep   bool
}

// Graph is the Stage-4 output: EBG nodes plus a turn-expanded CSR
// adjacency over them.
type Graph struct {
	Nodes []Node // indexed by ids.EBGNode

	// Offsets/Heads/TurnIdx form the directed CSR: node a's outgoing
	// arcs are Heads[Offsets[a]:Offsets[a+1]], each referencing a row
	// in TurnTable via the matching TurnIdx entry.
	Offsets []uint32
	Heads   []ids.EBGNode
	TurnIdx []ids.TurnEntryIndex

	TurnTable []TurnEntry
}

// NumNodes returns the EBG node count.
func (g *Graph) NumNodes() int { return len(g.Nodes) }

// NumArcs returns the total directed arc count.
func (g *Graph) NumArcs() int { return len(g.Heads) }

// Neighbors returns EBG node a's outgoing arcs: the head EBG nodes and
// their turn-table indices.
func (g *Graph) Neighbors(a ids.EBGNode) (heads []ids.EBGNode, turnIdx []ids.TurnEntryIndex) {
	start, end := g.Offsets[a], g.Offsets[a+1]
	return g.Heads[start:end], g.TurnIdx[start:end]
}

// OutDegree returns EBG node a's outgoing arc count.
func (g *Graph) OutDegree(a ids.EBGNode) int {
	return int(g.Offsets[a+1] - g.Offsets[a])
}
