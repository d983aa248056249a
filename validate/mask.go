package validate

import (
	"fmt"

	"github.com/butterfly-osm/butterfly-route-core/fileio"
	"github.com/butterfly-osm/butterfly-route-core/weights"
)

// CheckMaskCount verifies that the popcount of a mode's accessibility
// mask equals the accessible-node count the weights-stage lock
// recorded under countKey (conventionally "accessible_nodes.<mode>").
func CheckMaskCount(mw weights.ModeWeights, lock *fileio.Lock, countKey string) *Result {
	r := &Result{}

	want, ok := lock.Counts[countKey]
	if !ok {
		r.fail("lock has no count %q to compare against", countKey)
		return r
	}

	got := uint64(mw.Mask.Count())
	if got == want {
		r.pass()
	} else {
		r.fail("mask popcount=%d, lock %s=%d", got, countKey, want)
	}
	return r
}

// String renders r as a one-line human summary.
func (r *Result) String() string {
	return fmt.Sprintf("checks: %d run, %d passed, %d errors, %d warnings",
		r.ChecksRun, r.ChecksPassed, len(r.Errors), len(r.Warnings))
}
