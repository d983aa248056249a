package customize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/butterfly-osm/butterfly-route-core/contract"
	"github.com/butterfly-osm/butterfly-route-core/customize"
	"github.com/butterfly-osm/butterfly-route-core/fileio"
	"github.com/butterfly-osm/butterfly-route-core/ids"
)

func buildWeights() (*contract.Topo, *customize.Weights) {
	filtered := pathFiltered()
	topo := contract.Build(filtered, pathOrdering())
	w := customize.Build(topo, pathOrdering(), filtered, pathModeWeights())
	return topo, w
}

func TestWeights_EncodeDecodeRoundTrip(t *testing.T) {
	topo, w := buildWeights()

	body := customize.EncodeWeights(w)
	decoded, err := customize.DecodeWeights(body, uint64(topo.NumUpEdges()), uint64(topo.NumDownEdges()))
	require.NoError(t, err)
	assert.Equal(t, w, decoded)
}

func TestWriteRead_RoundTrip(t *testing.T) {
	_, w := buildWeights()
	dir := t.TempDir()
	inputHash := fileio.HashBytes([]byte("test-input"))

	_, err := customize.Write(dir, ids.ModeCar, w, inputHash)
	require.NoError(t, err)

	got, err := customize.Read(dir, ids.ModeCar)
	require.NoError(t, err)
	assert.Equal(t, w, got)
}
