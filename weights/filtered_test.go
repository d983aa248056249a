package weights_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/butterfly-osm/butterfly-route-core/ids"
	"github.com/butterfly-osm/butterfly-route-core/profile"
	"github.com/butterfly-osm/butterfly-route-core/weights"
)

func TestBuildFiltered_DropsInaccessibleNodesAndArcs(t *testing.T) {
	g, eg := buildEBGFixture(t, [ids.NumModes][]profile.TurnRule{})
	mw := weights.Build(eg, g, ids.ModeCar, wayAttrsFixture())

	filtered := weights.BuildFiltered(eg, ids.ModeCar, mw.Mask)

	// Only EBG nodes 0 and 1 (way 1's two directions) are car-accessible.
	assert.Equal(t, 2, filtered.NumNodes())
	assert.Equal(t, eg.NumNodes(), filtered.NOriginalNodes)

	orig0, ok := filtered.ToFiltered(0)
	assert.True(t, ok)
	orig1, ok := filtered.ToFiltered(1)
	assert.True(t, ok)
	assert.NotEqual(t, orig0, orig1)

	_, ok = filtered.ToFiltered(2)
	assert.False(t, ok, "way 2's EBG nodes must not survive filtering")
	_, ok = filtered.ToFiltered(3)
	assert.False(t, ok)

	// Of the two arcs connecting nodes 0 and 1, only the one through the
	// dead-end at NBG node 0 survives for car; the other is a U-turn at
	// the non-dead-end junction (NBG node 1), forbidden for car.
	assert.Equal(t, 1, filtered.NumArcs())
}

func TestBuildFiltered_BikeRetainsBothUTurnArcs(t *testing.T) {
	g, eg := buildEBGFixture(t, [ids.NumModes][]profile.TurnRule{})
	mw := weights.Build(eg, g, ids.ModeBike, wayAttrsFixture())

	filtered := weights.BuildFiltered(eg, ids.ModeBike, mw.Mask)
	assert.Equal(t, 2, filtered.NumNodes())
	assert.Equal(t, 2, filtered.NumArcs(), "bike keeps both U-turns between way 1's two directions")
}
