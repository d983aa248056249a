package satmath_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/butterfly-osm/butterfly-route-core/satmath"
)

func TestAdd_Basic(t *testing.T) {
	assert.Equal(t, uint32(7), satmath.Add(3, 4))
	assert.Equal(t, uint32(0), satmath.Add(0, 0))
}

func TestAdd_NoPathIsAbsorbing(t *testing.T) {
	assert.Equal(t, satmath.NoPath, satmath.Add(satmath.NoPath, 5))
	assert.Equal(t, satmath.NoPath, satmath.Add(5, satmath.NoPath))
	assert.Equal(t, satmath.NoPath, satmath.Add(satmath.NoPath, satmath.NoPath))
}

func TestAdd_SaturatesBelowSentinel(t *testing.T) {
	got := satmath.Add(satmath.SaturationFloor, 10)
	assert.Equal(t, satmath.SaturationFloor, got)
	assert.NotEqual(t, satmath.NoPath, got)
}

func TestAdd3(t *testing.T) {
	assert.Equal(t, uint32(6), satmath.Add3(1, 2, 3))
	assert.Equal(t, satmath.NoPath, satmath.Add3(1, satmath.NoPath, 3))
}

func TestWithinSanityBound(t *testing.T) {
	assert.True(t, satmath.WithinSanityBound(satmath.NoPath))
	assert.True(t, satmath.WithinSanityBound(satmath.SanityBound))
	assert.False(t, satmath.WithinSanityBound(satmath.SanityBound+1))
}

func TestCeilDiv(t *testing.T) {
	assert.Equal(t, uint64(4), satmath.CeilDiv(10, 3))
	assert.Equal(t, uint64(0), satmath.CeilDiv(10, 0))
	assert.Equal(t, uint64(0), satmath.CeilDiv(0, 5))
}
