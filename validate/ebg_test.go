package validate_test

import (
	"testing"

	"github.com/paulmach/osm"
	"github.com/stretchr/testify/assert"

	"github.com/butterfly-osm/butterfly-route-core/ebg"
	"github.com/butterfly-osm/butterfly-route-core/ids"
	"github.com/butterfly-osm/butterfly-route-core/nbg"
	"github.com/butterfly-osm/butterfly-route-core/profile"
	"github.com/butterfly-osm/butterfly-route-core/validate"
)

// junctionGraph builds the S2 scenario: two ways (A: 0-1, B: 1-2)
// sharing middle node 1, all modes accessible, no turn restrictions.
func junctionGraph() (*nbg.Graph, *ebg.Graph) {
	physical := &nbg.Graph{
		NodeOSMID: []osm.NodeID{10, 11, 12},
		NodeLat:   []int32{0, 0, 0},
		NodeLon:   []int32{0, 1000, 2000},
		Edges: []nbg.Edge{
			{A: 0, B: 1, LengthMM: 1000, FirstOSMWayID: 100},
			{A: 1, B: 2, LengthMM: 1000, FirstOSMWayID: 200},
		},
	}

	allAccess := func(osm.WayID) bool { return true }
	wayAccess := [ids.NumModes]ebg.WayAccess{allAccess, allAccess, allAccess}
	var turnRules [ids.NumModes][]profile.TurnRule

	g := ebg.Build(physical, wayAccess, turnRules, ebg.DefaultUTurnRestricted)
	return physical, g
}

func TestCheckEBGStructure_PassesOnJunctionGraph(t *testing.T) {
	physical, g := junctionGraph()

	r := validate.CheckEBGStructure(physical, g)

	assert.True(t, r.Passed(), r.Errors)
}

func TestCheckTurnRestrictions_CatchesSurvivingBannedArc(t *testing.T) {
	physical, g := junctionGraph()
	// A real Ban rule would already have removed this arc from g's turn
	// table; simulate a rule that ebg.Build somehow failed to apply, so
	// the check must flag it rather than trust the artifact blindly.
	rules := []profile.TurnRule{
		{Via: physical.NodeOSMID[1], From: 100, To: 200, Kind: ids.TurnBan},
	}

	r := validate.CheckTurnRestrictions(physical, g, ids.ModeCar, rules)

	assert.False(t, r.Passed())
}

func TestCheckTurnRestrictions_PassesWithNoRestrictions(t *testing.T) {
	physical, g := junctionGraph()

	r := validate.CheckTurnRestrictions(physical, g, ids.ModeCar, nil)

	assert.True(t, r.Passed(), r.Errors)
}
