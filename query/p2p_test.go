package query_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/butterfly-osm/butterfly-route-core/ids"
	"github.com/butterfly-osm/butterfly-route-core/query"
)

func TestComputeRoute_UnpacksShortcutIntoOriginalPath(t *testing.T) {
	topo, w := buildPathTopo()
	down := query.BuildDownReverse(topo)
	fwd := query.NewSearchState(topo.NNodes)
	bwd := query.NewSearchState(topo.NNodes)

	route, err := query.ComputeRoute(topo, w, down, fwd, bwd, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, uint32(16), route.DurationDS)
	assert.Equal(t, []ids.FilteredNode{0, 1, 2}, route.FilteredPath)
}

func TestComputeRoute_SameSourceAndTargetIsZeroLength(t *testing.T) {
	topo, w := buildPathTopo()
	down := query.BuildDownReverse(topo)
	fwd := query.NewSearchState(topo.NNodes)
	bwd := query.NewSearchState(topo.NNodes)

	route, err := query.ComputeRoute(topo, w, down, fwd, bwd, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), route.DurationDS)
	assert.Equal(t, []ids.FilteredNode{1}, route.FilteredPath)
}

func TestComputeRoute_UnreachableTargetReturnsNoPathError(t *testing.T) {
	topo, w := buildPathTopo()
	down := query.BuildDownReverse(topo)
	fwd := query.NewSearchState(topo.NNodes)
	bwd := query.NewSearchState(topo.NNodes)

	// Node 2 has no outgoing UP/DOWN edges, so it cannot reach node 0.
	_, err := query.ComputeRoute(topo, w, down, fwd, bwd, 2, 0)
	assert.Error(t, err)
}

func TestComputeRoute_ReusesSearchStateAcrossQueries(t *testing.T) {
	topo, w := buildPathTopo()
	down := query.BuildDownReverse(topo)
	fwd := query.NewSearchState(topo.NNodes)
	bwd := query.NewSearchState(topo.NNodes)

	first, err := query.ComputeRoute(topo, w, down, fwd, bwd, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, uint32(5), first.DurationDS)

	second, err := query.ComputeRoute(topo, w, down, fwd, bwd, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, uint32(16), second.DurationDS)
}
