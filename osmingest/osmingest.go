// Package osmingest implements Stage 1. The core never parses PBF
// bytes itself, that is left to an external collaborator, but it
// owns turning that external parser's already-decoded
// nodes/ways/relations into the sorted, indexed, content-addressed
// artifacts every later stage depends on.
//
// Grounded on azybler/map_router's pkg/osm, which performs the same
// two-pass "collect referenced ids, then resolve coordinates" shape
// this package's WriteNodes/WriteWays split follows, generalized from
// car-only to mode-agnostic (Stage 2 does the per-mode filtering).
package osmingest

import (
	"fmt"
	"sort"

	"github.com/paulmach/osm"

	"github.com/butterfly-osm/butterfly-route-core/ids"
)

// Node is the external parser's decoded OSM node.
type Node struct {
	ID  osm.NodeID
	Lat float64
	Lon float64
}

// Way is the external parser's decoded OSM way.
type Way struct {
	ID       osm.WayID
	NodeRefs []osm.NodeID
	Tags     map[string]string
}

// RestrictionKind mirrors ids.TurnKind for the raw relation record,
// before Stage 2 resolves it into mode-specific turn rules.
type RestrictionKind = ids.TurnKind

// Relation is a decoded turn-restriction relation:
// (via_node_id, from_way_id, to_way_id, kind, mode_mask). Via-way
// restrictions are expanded by the external parser (or by
// ExpandViaWay below) into one Relation per node along the via-way
// before reaching this package, so Stage 1 only ever stores
// via=node rules.
type Relation struct {
	ID       osm.RelationID
	Via      osm.NodeID
	From     osm.WayID
	To       osm.WayID
	Kind     RestrictionKind
	ModeMask ids.ModeMask
}

// LatLonFixedPoint converts a float64 degree value to the 1e-7 degree
// fixed-point representation used throughout the on-disk formats
// (nodes.sa, nbg.geo).
func LatLonFixedPoint(deg float64) int32 {
	return int32(deg * 1e7)
}

// FixedPointToLatLon is the inverse of LatLonFixedPoint.
func FixedPointToLatLon(fxp int32) float64 {
	return float64(fxp) / 1e7
}

// SortNodes returns nodes sorted ascending by OSM id: compact node ids
// are assigned in this order so two runs over the same input agree.
func SortNodes(nodes []Node) []Node {
	out := make([]Node, len(nodes))
	copy(out, nodes)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// SortWays returns ways sorted ascending by OSM id.
func SortWays(ways []Way) []Way {
	out := make([]Way, len(ways))
	copy(out, ways)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// SortRelations returns relations sorted by (Via, From, To), the
// canonical key Stage 4's "group turn rules by (via, from)" pass
// relies on.
func SortRelations(rels []Relation) []Relation {
	out := make([]Relation, len(rels))
	copy(out, rels)
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Via != b.Via {
			return a.Via < b.Via
		}
		if a.From != b.From {
			return a.From < b.From
		}
		return a.To < b.To
	})
	return out
}

// ExpandViaWay materializes a family of via=node restrictions covering
// every node along a via-way. wayNodeRefs is the via-way's node
// sequence.
func ExpandViaWay(viaWay osm.WayID, wayNodeRefs []osm.NodeID, from, to osm.WayID, kind RestrictionKind, mask ids.ModeMask, nextRelID func() osm.RelationID) []Relation {
	out := make([]Relation, 0, len(wayNodeRefs))
	for _, n := range wayNodeRefs {
		out = append(out, Relation{
			ID:       nextRelID(),
			Via:      n,
			From:     from,
			To:       to,
			Kind:     kind,
			ModeMask: mask,
		})
	}
	return out
}

// ValidateWay checks the structural precondition every downstream
// stage assumes: at least two node refs, no out-of-range dictionary
// reference (a Way's tags here are already decoded as strings, so the
// only check is that the way has at least two node refs).
func ValidateWay(w Way) error {
	if len(w.NodeRefs) < 2 {
		return fmt.Errorf("osmingest: way %d has %d node refs, need >= 2", w.ID, len(w.NodeRefs))
	}
	return nil
}
