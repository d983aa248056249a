package contract_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/butterfly-osm/butterfly-route-core/contract"
	"github.com/butterfly-osm/butterfly-route-core/fileio"
	"github.com/butterfly-osm/butterfly-route-core/ids"
)

func TestTopo_EncodeDecodeRoundTrip(t *testing.T) {
	topo := contract.Build(pathFiltered(), pathOrdering())

	body := contract.EncodeTopo(topo)
	decoded, err := contract.DecodeTopo(body)
	require.NoError(t, err)
	assert.Equal(t, topo, decoded)
}

func TestWriteRead_RoundTrip(t *testing.T) {
	topo := contract.Build(pathFiltered(), pathOrdering())
	dir := t.TempDir()
	inputHash := fileio.HashBytes([]byte("test-input"))

	_, err := contract.Write(dir, ids.ModeCar, topo, inputHash)
	require.NoError(t, err)

	got, err := contract.Read(dir, ids.ModeCar)
	require.NoError(t, err)
	assert.Equal(t, topo, got)
}
