package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/butterfly-osm/butterfly-route-core/fileio"
	"github.com/butterfly-osm/butterfly-route-core/validate"
)

func TestCheckMaskCount_PassesWhenPopcountMatchesLock(t *testing.T) {
	mw := pathModeWeights() // 3 bits set

	lock := fileio.NewLock("stage5")
	lock.SetCount("accessible_nodes.car", 3)

	r := validate.CheckMaskCount(mw, lock, "accessible_nodes.car")

	assert.True(t, r.Passed(), r.Errors)
}

func TestCheckMaskCount_FailsOnMismatch(t *testing.T) {
	mw := pathModeWeights()

	lock := fileio.NewLock("stage5")
	lock.SetCount("accessible_nodes.car", 2)

	r := validate.CheckMaskCount(mw, lock, "accessible_nodes.car")

	assert.False(t, r.Passed())
}

func TestCheckMaskCount_FailsWhenCountMissing(t *testing.T) {
	mw := pathModeWeights()
	lock := fileio.NewLock("stage5")

	r := validate.CheckMaskCount(mw, lock, "accessible_nodes.car")

	assert.False(t, r.Passed())
}
