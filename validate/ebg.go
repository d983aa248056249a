package validate

import (
	"github.com/paulmach/osm"

	"github.com/butterfly-osm/butterfly-route-core/ebg"
	"github.com/butterfly-osm/butterfly-route-core/ids"
	"github.com/butterfly-osm/butterfly-route-core/nbg"
	"github.com/butterfly-osm/butterfly-route-core/profile"
)

// CheckEBGStructure verifies two structural properties of an
// already-built EBG: every arc's tail-side node must end at the
// physical junction its head-side node starts from, and the EBG node
// count must be exactly twice the physical edge count (one EBG node
// per direction per NBG edge).
func CheckEBGStructure(physical *nbg.Graph, g *ebg.Graph) *Result {
	r := &Result{}

	if got, want := g.NumNodes(), 2*len(physical.Edges); got == want {
		r.pass()
	} else {
		r.fail("n_ebg_nodes=%d, want 2*n_nbg_edges=%d", got, want)
	}

	mismatches := 0
	for a := range g.Nodes {
		heads, _ := g.Neighbors(ids.EBGNode(a))
		for _, b := range heads {
			if g.Nodes[a].HeadNBG != g.Nodes[b].TailNBG {
				mismatches++
			}
		}
	}
	if mismatches == 0 {
		r.pass()
	} else {
		r.fail("%d arcs violate head_nbg(A) == tail_nbg(B)", mismatches)
	}

	return r
}

type wayPair struct {
	via  osm.NodeID
	from osm.WayID
}

// CheckTurnRestrictions verifies, for one mode's canonicalized turn
// rules against the EBG's turn table, that a Ban
// rule must leave no surviving arc through its via node between the
// banned from/to way pair, and an Only rule's surviving arcs through
// (from, via) must all land on a to-way named by some Only rule for
// that same (from, via) pair.
func CheckTurnRestrictions(physical *nbg.Graph, g *ebg.Graph, mode ids.Mode, rules []profile.TurnRule) *Result {
	r := &Result{}

	onlyTargets := make(map[wayPair]map[osm.WayID]bool)
	for _, rule := range rules {
		if rule.Kind != ids.TurnOnly {
			continue
		}
		key := wayPair{via: rule.Via, from: rule.From}
		if onlyTargets[key] == nil {
			onlyTargets[key] = make(map[osm.WayID]bool)
		}
		onlyTargets[key][rule.To] = true
	}

	banViolations := 0
	onlyViolations := 0

	for a := range g.Nodes {
		nodeA := g.Nodes[a]
		viaOSM := physical.NodeOSMID[nodeA.HeadNBG]
		heads, turnIdx := g.Neighbors(ids.EBGNode(a))
		for i, b := range heads {
			entry := g.TurnTable[turnIdx[i]]
			if !entry.ModeMask.Has(mode) {
				continue
			}
			nodeB := g.Nodes[b]

			for _, rule := range rules {
				if rule.Via != viaOSM || rule.From != nodeA.PrimaryWay {
					continue
				}
				switch rule.Kind {
				case ids.TurnBan:
					if nodeB.PrimaryWay == rule.To {
						banViolations++
					}
				case ids.TurnOnly:
					key := wayPair{via: rule.Via, from: rule.From}
					if !onlyTargets[key][nodeB.PrimaryWay] {
						onlyViolations++
					}
				}
			}
		}
	}

	if banViolations == 0 {
		r.pass()
	} else {
		r.fail("%d arcs violate a Ban restriction for mode %s", banViolations, mode)
	}
	if onlyViolations == 0 {
		r.pass()
	} else {
		r.fail("%d arcs violate an Only restriction for mode %s", onlyViolations, mode)
	}

	return r
}
