package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/butterfly-osm/butterfly-route-core/satmath"
	"github.com/butterfly-osm/butterfly-route-core/validate"
)

func TestPlainDijkstra_MatchesKnownPathDistances(t *testing.T) {
	filtered := pathFiltered()
	mw := pathModeWeights()

	dist := validate.PlainDijkstra(filtered, mw, 0)

	assert.Equal(t, uint32(0), dist[0])
	assert.Equal(t, uint32(5), dist[1])
	assert.Equal(t, uint32(16), dist[2])
}

func TestPlainDijkstra_UnreachableNodeIsNoPath(t *testing.T) {
	filtered := pathFiltered()
	mw := pathModeWeights()

	dist := validate.PlainDijkstra(filtered, mw, 2)

	assert.Equal(t, satmath.NoPath, dist[0])
	assert.Equal(t, satmath.NoPath, dist[1])
}
