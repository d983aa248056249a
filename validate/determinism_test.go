package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/butterfly-osm/butterfly-route-core/validate"
)

func TestCheckDeterminism_PassesOnIdenticalBytes(t *testing.T) {
	a := []byte{1, 2, 3}
	b := []byte{1, 2, 3}

	r := validate.CheckDeterminism(a, b, "contract.topo")

	assert.True(t, r.Passed(), r.Errors)
}

func TestCheckDeterminism_FailsOnDivergentBytes(t *testing.T) {
	a := []byte{1, 2, 3}
	b := []byte{1, 2, 4}

	r := validate.CheckDeterminism(a, b, "contract.topo")

	assert.False(t, r.Passed())
}
