package query_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/butterfly-osm/butterfly-route-core/ids"
	"github.com/butterfly-osm/butterfly-route-core/query"
)

func TestComputeIsochrone_StopsAtThreshold(t *testing.T) {
	filtered := pathFiltered()
	mw := pathModeWeights()
	state := query.NewSearchState(filtered.NumNodes())

	result := query.ComputeIsochrone(filtered, mw, state, 0, []uint32{10})

	band := result.Bands[0]
	assert.Equal(t, []ids.FilteredNode{0, 1}, band.Nodes)
	assert.Equal(t, []uint32{0, 5}, band.DurationDS)
}

func TestComputeIsochrone_ReachesEveryNodeWithinLargerThreshold(t *testing.T) {
	filtered := pathFiltered()
	mw := pathModeWeights()
	state := query.NewSearchState(filtered.NumNodes())

	result := query.ComputeIsochrone(filtered, mw, state, 0, []uint32{20})

	band := result.Bands[0]
	assert.Equal(t, []ids.FilteredNode{0, 1, 2}, band.Nodes)
	assert.Equal(t, []uint32{0, 5, 16}, band.DurationDS)
}

// TestComputeIsochrone_EmitsFrontierSegment checks the edge 1->2
// (tail dist 5, weight 11, reaching 16) is cut at its fractional
// crossing of a threshold that falls strictly between those two
// values, per the pathFiltered/pathModeWeights fixture.
func TestComputeIsochrone_EmitsFrontierSegment(t *testing.T) {
	filtered := pathFiltered()
	mw := pathModeWeights()
	state := query.NewSearchState(filtered.NumNodes())

	result := query.ComputeIsochrone(filtered, mw, state, 0, []uint32{10})

	band := result.Bands[0]
	if assert.Len(t, band.Frontier, 1) {
		seg := band.Frontier[0]
		assert.Equal(t, ids.FilteredNode(1), seg.Tail)
		assert.InDelta(t, float64(10-5)/11, seg.Position, 1e-9)
	}
}

// TestComputeIsochrone_MultipleBandsFromOneSweep checks that
// requesting several thresholds at once yields one band per
// threshold, each consistent with what a single-threshold call would
// have produced, without re-running the search.
func TestComputeIsochrone_MultipleBandsFromOneSweep(t *testing.T) {
	filtered := pathFiltered()
	mw := pathModeWeights()
	state := query.NewSearchState(filtered.NumNodes())

	result := query.ComputeIsochrone(filtered, mw, state, 0, []uint32{10, 20})

	assert.Equal(t, []ids.FilteredNode{0, 1}, result.Bands[0].Nodes)
	assert.Len(t, result.Bands[0].Frontier, 1)

	assert.Equal(t, []ids.FilteredNode{0, 1, 2}, result.Bands[1].Nodes)
	assert.Empty(t, result.Bands[1].Frontier)
}
