package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/butterfly-osm/butterfly-route-core/ids"
	"github.com/butterfly-osm/butterfly-route-core/query"
	"github.com/butterfly-osm/butterfly-route-core/validate"
)

func TestCheckQueryCorrectness_AgreesWithPlainDijkstraOnTinyGraph(t *testing.T) {
	topo, w := buildPathTopo()
	filtered := pathFiltered()
	mw := pathModeWeights()

	r := validate.CheckQueryCorrectness(topo, w, filtered, mw)

	assert.True(t, r.Passed(), r.Errors)
}

func TestCheckReachability_AgreesWithBFSOnTinyGraph(t *testing.T) {
	topo, w := buildPathTopo()
	filtered := pathFiltered()

	adjacency := func(u ids.FilteredNode) []ids.FilteredNode {
		start, end := filtered.Offsets[u], filtered.Offsets[u+1]
		return filtered.Heads[start:end]
	}

	r := validate.CheckReachability(topo, w, filtered, adjacency)

	assert.True(t, r.Passed(), r.Errors)
}

func TestCheckUnpackSoundness_PassesOnRealRoute(t *testing.T) {
	topo, w := buildPathTopo()
	filtered := pathFiltered()
	mw := pathModeWeights()
	down := query.BuildDownReverse(topo)
	fwd := query.NewSearchState(topo.NNodes)
	bwd := query.NewSearchState(topo.NNodes)

	route, err := query.ComputeRoute(topo, w, down, fwd, bwd, 0, 2)
	assert.NoError(t, err)

	r := validate.CheckUnpackSoundness(filtered, mw, route)

	assert.True(t, r.Passed(), r.Errors)
}

func TestCheckTriangleInequality_PassesOnContractedTopo(t *testing.T) {
	topo, w := buildPathTopo()

	r := validate.CheckTriangleInequality(topo, w)

	assert.True(t, r.Passed(), r.Errors)
}
