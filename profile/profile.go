// Package profile turns raw OSM way tags and turn-restriction
// relations into per-mode way attributes and canonicalized turn rules.
//
// The actual tag-to-attribute decision logic ("does this highway=*
// allow bikes, at what speed") is an opaque external collaborator:
// (tags) -> {access, speed, penalties}. This package defines the
// shape of that function (Func) and consumes its output; it does not
// hardcode routing policy. DefaultCarProfile/DefaultBikeProfile/
// DefaultFootProfile below are reference implementations (grounded on
// azybler/map_router's pkg/osm tag predicates) provided so the
// pipeline is runnable end-to-end and testable without an external
// profile plugin, not as a fixed, non-overridable policy.
package profile

import (
	"sort"

	"github.com/paulmach/osm"

	"github.com/butterfly-osm/butterfly-route-core/ids"
	"github.com/butterfly-osm/butterfly-route-core/osmingest"
)

// Access describes per-direction accessibility for one mode along a
// way, in the way's stored node order ("per-direction
// access").
type Access struct {
	Forward  bool
	Backward bool
}

// Any reports whether the way is usable in either direction.
func (a Access) Any() bool { return a.Forward || a.Backward }

// WayResult is a single mode's evaluation of one way's tags: speed in
// mm/s, per-km penalty in ds, const penalty in ds, per-direction
// access.
type WayResult struct {
	Access         Access
	BaseSpeedMMPS  uint32
	HighwayClass   uint8
	SurfaceClass   uint8
	PerKmPenaltyDS uint32
	ConstPenaltyDS uint32
}

// Func is the opaque per-mode tag evaluator. ok=false means the way is
// not included for this mode at all. A way is "included" overall once
// some mode's Func reports ok across at least one direction.
type Func func(tags map[string]string) (WayResult, bool)

// WayAttrs is the Stage-2 output row, matching the
// way_attrs.<mode>.bin columns exactly: (way_id, flags,
// base_speed_mmps, highway_class, surface_class, per_km_penalty_ds,
// const_penalty_ds).
type WayAttrs struct {
	WayID          osm.WayID
	Flags          uint8 // bit0: forward access, bit1: backward access
	BaseSpeedMMPS  uint32
	HighwayClass   uint8
	SurfaceClass   uint8
	PerKmPenaltyDS uint32
	ConstPenaltyDS uint32
}

const (
	flagForward  uint8 = 1 << 0
	flagBackward uint8 = 1 << 1
)

// AccessForward reports the forward-direction access bit.
func (w WayAttrs) AccessForward() bool { return w.Flags&flagForward != 0 }

// AccessBackward reports the backward-direction access bit.
func (w WayAttrs) AccessBackward() bool { return w.Flags&flagBackward != 0 }

func flagsFor(a Access) uint8 {
	var f uint8
	if a.Forward {
		f |= flagForward
	}
	if a.Backward {
		f |= flagBackward
	}
	return f
}

// ComputeWayAttrs evaluates fn over every way and returns the rows for
// ways where fn reports inclusion, sorted by way id so the result is
// deterministic across runs.
func ComputeWayAttrs(ways []osmingest.Way, fn Func) []WayAttrs {
	out := make([]WayAttrs, 0, len(ways))
	for _, w := range ways {
		res, ok := fn(w.Tags)
		if !ok || !res.Access.Any() {
			continue
		}
		out = append(out, WayAttrs{
			WayID:          w.ID,
			Flags:          flagsFor(res.Access),
			BaseSpeedMMPS:  res.BaseSpeedMMPS,
			HighwayClass:   res.HighwayClass,
			SurfaceClass:   res.SurfaceClass,
			PerKmPenaltyDS: res.PerKmPenaltyDS,
			ConstPenaltyDS: res.ConstPenaltyDS,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WayID < out[j].WayID })
	return out
}

// IsIncludedAnyMode reports whether way is included by at least one
// of the given per-mode functions, in at least one direction: the
// precise test Stage 3 uses to decide whether a way contributes
// decision nodes/edges to the NBG at all.
func IsIncludedAnyMode(tags map[string]string, fns [ids.NumModes]Func) bool {
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		if res, ok := fn(tags); ok && res.Access.Any() {
			return true
		}
	}
	return false
}

// TurnRule is the Stage-2 canonicalized, per-mode turn-restriction
// record, matching the turn_rules.<mode>.bin columns:
// "(via_node, from_way, to_way, kind, penalty_ds, time_dep_flag)".
type TurnRule struct {
	Via       osm.NodeID
	From      osm.WayID
	To        osm.WayID
	Kind      ids.TurnKind
	PenaltyDS uint32
	TimeDep   bool
}

// DeriveModeTurnRules filters the canonicalized (mode-mask-carrying)
// relations down to the rules applicable to a single mode, deriving
// each rule's PenaltyDS and TimeDep from the supplied callbacks. Stage
// 2 operates on the pre-merge, already-per-mode osmingest.Relation
// list here, one list per mode, so every Relation already belongs to
// exactly the modes in its mask.
func DeriveModeTurnRules(rels []osmingest.Relation, mode ids.Mode, penaltyDS func(osmingest.Relation) uint32, timeDep func(osmingest.Relation) bool) []TurnRule {
	out := make([]TurnRule, 0, len(rels))
	for _, r := range rels {
		if !r.ModeMask.Has(mode) {
			continue
		}
		var pds uint32
		var td bool
		if penaltyDS != nil {
			pds = penaltyDS(r)
		}
		if timeDep != nil {
			td = timeDep(r)
		}
		out = append(out, TurnRule{
			Via:       r.Via,
			From:      r.From,
			To:        r.To,
			Kind:      r.Kind,
			PenaltyDS: pds,
			TimeDep:   td,
		})
	}
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
