package query_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/butterfly-osm/butterfly-route-core/ids"
	"github.com/butterfly-osm/butterfly-route-core/query"
)

func TestBuildDownReverse_FindsSourceOfDownEdge(t *testing.T) {
	topo, _ := buildPathTopo()
	down := query.BuildDownReverse(topo)

	// The only DOWN edge in the path fixture is 0->1.
	sources, edgeIdx := down.Neighbors(1)
	assert.Equal(t, []ids.FilteredNode{0}, sources)
	assert.Len(t, edgeIdx, 1)

	sourcesFor0, _ := down.Neighbors(0)
	assert.Empty(t, sourcesFor0)
	sourcesFor2, _ := down.Neighbors(2)
	assert.Empty(t, sourcesFor2)
}
