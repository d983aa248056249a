package ebg

import (
	"sort"

	"github.com/paulmach/osm"

	"github.com/butterfly-osm/butterfly-route-core/ids"
	"github.com/butterfly-osm/butterfly-route-core/nbg"
	"github.com/butterfly-osm/butterfly-route-core/profile"
)

// CanonicalKey identifies one (via, from-way, to-way) turn, the
// dedup/merge key turn rules from every mode collapse onto.
type CanonicalKey struct {
	Via  osm.NodeID
	From osm.WayID
	To   osm.WayID
}

// CanonicalRule is the merged, mode-mask-carrying turn rule one
// CanonicalKey resolves to (grounded on ebg::CanonicalTurnRule).
type CanonicalRule struct {
	ModeMask  ids.ModeMask
	Kind      ids.TurnKind
	PenaltyDS [ids.NumModes]uint32
	TimeDep   bool
}

// BuildCanonicalTurnRules merges each mode's per-mode turn rules into a
// single table keyed by (via, from, to), then converts every Only rule
// into the implicit Bans it entails. g, whose NodeOSMID column is
// ascending-sorted as nbg.Build produces it, is needed only for the
// Only→Ban step, which must find every other way leaving the via
// intersection.
func BuildCanonicalTurnRules(rulesByMode [ids.NumModes][]profile.TurnRule, g *nbg.Graph) map[CanonicalKey]*CanonicalRule {
	out := make(map[CanonicalKey]*CanonicalRule)
	for m := 0; m < ids.NumModes; m++ {
		mode := ids.Mode(m)
		for _, r := range rulesByMode[m] {
			addCanonicalRule(out, CanonicalKey{Via: r.Via, From: r.From, To: r.To}, mode, r.Kind, r.PenaltyDS, r.TimeDep)
		}
	}
	convertOnlyToBans(out, g)
	return out
}

func addCanonicalRule(rules map[CanonicalKey]*CanonicalRule, key CanonicalKey, mode ids.Mode, kind ids.TurnKind, penaltyDS uint32, timeDep bool) {
	existing, ok := rules[key]
	if !ok {
		rules[key] = &CanonicalRule{ModeMask: mode.Bit(), Kind: kind, TimeDep: timeDep}
		rules[key].PenaltyDS[mode] = penaltyDS
		return
	}
	// Merging into an existing entry widens the mode mask and records
	// this mode's penalty, but the kind established at first insertion
	// wins: two modes disagreeing on kind for the same (via, from, to)
	// is not a case the source data produces.
	existing.ModeMask = existing.ModeMask.With(mode)
	existing.PenaltyDS[mode] = penaltyDS
	existing.TimeDep = existing.TimeDep || timeDep
}

// convertOnlyToBans implements Only->Ban conversion: for each (via,
// from) intersection with an Only rule for some mode, every to-way not
// named by that mode's Only rules becomes an implicit Ban for that
// mode.
func convertOnlyToBans(rules map[CanonicalKey]*CanonicalRule, g *nbg.Graph) {
	type groupKey struct {
		Via  osm.NodeID
		From osm.WayID
	}
	onlyGroups := make(map[groupKey][]CanonicalKey)
	for key, rule := range rules {
		if rule.Kind != ids.TurnOnly {
			continue
		}
		gk := groupKey{Via: key.Via, From: key.From}
		onlyGroups[gk] = append(onlyGroups[gk], key)
	}

	// Deterministic iteration: sort group keys.
	gks := make([]groupKey, 0, len(onlyGroups))
	for gk := range onlyGroups {
		gks = append(gks, gk)
	}
	sort.Slice(gks, func(i, j int) bool {
		if gks[i].Via != gks[j].Via {
			return gks[i].Via < gks[j].Via
		}
		return gks[i].From < gks[j].From
	})

	for _, gk := range gks {
		viaCompact, ok := findCompactNode(g, gk.Via)
		if !ok {
			continue
		}
		toWays := outgoingWaysExcept(g, viaCompact, gk.From)

		allowedByMode := [ids.NumModes]map[osm.WayID]bool{}
		for m := range allowedByMode {
			allowedByMode[m] = make(map[osm.WayID]bool)
		}
		for _, key := range onlyGroups[gk] {
			rule := rules[key]
			for m := 0; m < ids.NumModes; m++ {
				if rule.ModeMask.Has(ids.Mode(m)) {
					allowedByMode[m][key.To] = true
				}
			}
		}

		for _, toWay := range toWays {
			for m := 0; m < ids.NumModes; m++ {
				allowed := allowedByMode[m]
				if len(allowed) == 0 {
					continue // this mode has no Only rule at this intersection
				}
				if allowed[toWay] {
					continue
				}
				addCanonicalRule(rules, CanonicalKey{Via: gk.Via, From: gk.From, To: toWay}, ids.Mode(m), ids.TurnBan, 0, false)
			}
		}
	}
}

// findCompactNode binary-searches g's ascending-sorted NodeOSMID column
// for osmID.
func findCompactNode(g *nbg.Graph, osmID osm.NodeID) (ids.NBGNode, bool) {
	i := sort.Search(len(g.NodeOSMID), func(i int) bool { return g.NodeOSMID[i] >= osmID })
	if i < len(g.NodeOSMID) && g.NodeOSMID[i] == osmID {
		return ids.NBGNode(i), true
	}
	return 0, false
}

// outgoingWaysExcept returns the distinct FirstOSMWayID of every NBG
// edge touching via, excluding fromWay (the way the turn arrives on),
// in ascending way-id order for determinism.
func outgoingWaysExcept(g *nbg.Graph, via ids.NBGNode, fromWay osm.WayID) []osm.WayID {
	_, edgeIdx := g.Neighbors(via)
	seen := make(map[osm.WayID]bool)
	for _, ei := range edgeIdx {
		w := g.Edges[ei].FirstOSMWayID
		if w == fromWay {
			continue
		}
		seen[w] = true
	}
	out := make([]osm.WayID, 0, len(seen))
	for w := range seen {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
