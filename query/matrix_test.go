package query_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/butterfly-osm/butterfly-route-core/ids"
	"github.com/butterfly-osm/butterfly-route-core/query"
)

func TestComputeMatrix_OneSourceTwoTargets(t *testing.T) {
	topo, w := buildPathTopo()
	down := query.BuildDownReverse(topo)
	fwdState := query.NewSearchState(topo.NNodes)
	bwdState := query.NewSearchState(topo.NNodes)

	m := query.ComputeMatrix(topo, w, down, fwdState, bwdState,
		[]ids.FilteredNode{0}, []ids.FilteredNode{1, 2})

	assert.Equal(t, uint32(5), m.At(0, 0))
	assert.Equal(t, uint32(16), m.At(0, 1))
}

func TestComputeMatrix_UnreachablePairIsNoPath(t *testing.T) {
	topo, w := buildPathTopo()
	down := query.BuildDownReverse(topo)
	fwdState := query.NewSearchState(topo.NNodes)
	bwdState := query.NewSearchState(topo.NNodes)

	m := query.ComputeMatrix(topo, w, down, fwdState, bwdState,
		[]ids.FilteredNode{2}, []ids.FilteredNode{0})

	assert.True(t, m.At(0, 0) == ^uint32(0))
}
