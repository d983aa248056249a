package query_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/butterfly-osm/butterfly-route-core/ids"
	"github.com/butterfly-osm/butterfly-route-core/query"
)

// TestComputeRoute_PathNeverSkipsTheContractedMiddleNode exercises the
// unpacker indirectly through ComputeRoute: the 0->2 shortcut found by
// the bidirectional search must expand back to [0,1,2], never the bare
// [0,2] shortcut endpoints.
func TestComputeRoute_PathNeverSkipsTheContractedMiddleNode(t *testing.T) {
	topo, w := buildPathTopo()
	down := query.BuildDownReverse(topo)
	fwd := query.NewSearchState(topo.NNodes)
	bwd := query.NewSearchState(topo.NNodes)

	route, err := query.ComputeRoute(topo, w, down, fwd, bwd, 0, 2)
	require.NoError(t, err)
	require.Len(t, route.FilteredPath, 3)
	assert.Equal(t, ids.FilteredNode(1), route.FilteredPath[1])
}
