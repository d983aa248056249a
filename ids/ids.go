// Package ids defines the compact identifier types shared by every
// pipeline stage: OSM-scoped ids reuse paulmach/osm's
// NodeID/WayID/RelationID (grounded on azybler/map_router's osm
// ingest package, which is built directly on paulmach/osm), while the
// core's own compact ids (NBG node, EBG node, rank, arc index) are
// plain fixed-width integers sized to their CSR column widths.
package ids

import "github.com/paulmach/osm"

// OSM-scoped identifiers. These are the types the (external) PBF
// parser hands to Stage 1; the core never constructs them, only reads
// and re-sorts them.
type (
	OSMNodeID     = osm.NodeID
	OSMWayID      = osm.WayID
	OSMRelationID = osm.RelationID
)

// NBGNode is a compact node id in the node-based graph, assigned in
// ascending-OSM-id order during Stage 3 for determinism.
type NBGNode uint32

// NBGEdge is the index of an undirected NBG edge in CSR order.
type NBGEdge uint32

// EBGNode is a compact id for a directed NBG edge: exactly two EBG
// nodes per undirected NBG edge. Stable within one mode's unfiltered
// EBG; Stage 5 companion filtering renumbers into a separate
// FilteredNode space.
type EBGNode uint32

// ArcIndex indexes into the EBG's CSR arc arrays (heads/turn_idx),
// i.e. a directed (EBGNode -> EBGNode) turn.
type ArcIndex uint32

// TurnEntryIndex indexes into the deduplicated global turn table.
type TurnEntryIndex uint32

// FilteredNode is a compact id in a single mode's filtered EBG,
// renumbered contiguously from the subset of EBGNodes with mask=1.
type FilteredNode uint32

// Rank is a node's position in the elimination order:
// perm[FilteredNode] = Rank.
type Rank uint32

// Invalid is the sentinel "no id" value shared by every id type above;
// callers compare against it explicitly rather than relying on the
// zero value, since 0 is itself a valid compact id.
const Invalid uint32 = ^uint32(0)

// Mode enumerates the three transport modes the core answers queries
// for. It is small enough to index directly into fixed-size [3]T
// arrays throughout the pipeline instead of maps.
type Mode uint8

const (
	ModeCar Mode = iota
	ModeBike
	ModeFoot
	numModes
)

// NumModes is the fixed cardinality of Mode, used to size per-mode
// arrays ([NumModes]T) without a map.
const NumModes = int(numModes)

// String implements fmt.Stringer for Mode, matching the <mode> path
// segment used throughout the file-naming table.
func (m Mode) String() string {
	switch m {
	case ModeCar:
		return "car"
	case ModeBike:
		return "bike"
	case ModeFoot:
		return "foot"
	default:
		return "unknown"
	}
}

// Bit returns this mode's bit position within a ModeMask.
func (m Mode) Bit() ModeMask {
	return ModeMask(1) << ModeMask(m)
}

// ParseMode maps a file-path mode segment back to a Mode.
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "car":
		return ModeCar, true
	case "bike":
		return ModeBike, true
	case "foot":
		return ModeFoot, true
	default:
		return 0, false
	}
}

// ModeMask is a bitset over Mode, matching the turn table's mode_mask
// column (u8). Only the low NumModes bits are ever meaningful.
type ModeMask uint8

// Has reports whether m includes mode.
func (mm ModeMask) Has(mode Mode) bool {
	return mm&mode.Bit() != 0
}

// With returns mm with mode added.
func (mm ModeMask) With(mode Mode) ModeMask {
	return mm | mode.Bit()
}

// Without returns mm with mode removed.
func (mm ModeMask) Without(mode Mode) ModeMask {
	return mm &^ mode.Bit()
}

// Empty reports whether no mode is set ("Arcs with
// mode_mask = 0 are dropped").
func (mm ModeMask) Empty() bool {
	return mm == 0
}

// AllModes is the mask with every defined mode set.
func AllModes() ModeMask {
	var mm ModeMask
	for m := Mode(0); int(m) < NumModes; m++ {
		mm = mm.With(m)
	}
	return mm
}

// TurnKind is the tagged variant over turn kinds: {None, Ban, Only,
// Penalty}, stored as a single byte.
type TurnKind uint8

const (
	TurnNone TurnKind = iota
	TurnBan
	TurnOnly
	TurnPenalty
)

// String implements fmt.Stringer for TurnKind.
func (k TurnKind) String() string {
	switch k {
	case TurnNone:
		return "none"
	case TurnBan:
		return "ban"
	case TurnOnly:
		return "only"
	case TurnPenalty:
		return "penalty"
	default:
		return "unknown"
	}
}
