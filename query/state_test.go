package query_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/butterfly-osm/butterfly-route-core/ids"
	"github.com/butterfly-osm/butterfly-route-core/query"
	"github.com/butterfly-osm/butterfly-route-core/satmath"
)

func TestSearchState_UnvisitedNodeReturnsNoPath(t *testing.T) {
	s := query.NewSearchState(5)
	assert.Equal(t, satmath.NoPath, s.Dist(3))
	assert.False(t, s.Visited(3))
}

func TestSearchState_ResetInvalidatesPriorDistancesInO1(t *testing.T) {
	s := query.NewSearchState(5)
	s.Push(ids.FilteredNode(2), 10)
	node, d, ok := s.Pop()
	assert.True(t, ok)
	assert.Equal(t, ids.FilteredNode(2), node)
	assert.Equal(t, uint32(10), d)

	s.Reset()
	assert.Equal(t, satmath.NoPath, s.Dist(2))
	_, _, ok = s.Pop()
	assert.False(t, ok)
}

func TestSearchState_PeekDistReflectsHeapMinimum(t *testing.T) {
	s := query.NewSearchState(5)
	assert.Equal(t, satmath.NoPath, s.PeekDist())
	s.Push(ids.FilteredNode(0), 20)
	s.Push(ids.FilteredNode(1), 5)
	assert.Equal(t, uint32(5), s.PeekDist())
}
