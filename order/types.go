// Package order implements Stage 6: a nested-dissection elimination
// order computed on the physical NBG by recursive inertial bisection,
// then lifted into the filtered EBG's id space.
//
// The pipeline: connected components via BFS, centroid/covariance/
// principal-axis bisection, median split with neighbor-straddle
// separator classification, a 20%-separator fallback, and parallel
// left/right recursion. The principal axis is found via gonum's
// symmetric eigensolver rather than a closed-form 2x2 quadratic
// (mathematically equivalent, since a 2x2 real symmetric matrix always
// has two real eigenvalues), and parallel recursion uses
// golang.org/x/sync/errgroup.
package order

import "github.com/butterfly-osm/butterfly-route-core/ids"

// LeafThreshold is the default subproblem size below which recursion
// stops and nodes are assigned consecutive ranks by id.
const LeafThreshold = 64

// SeparatorFallbackNumerator/Denominator express the 20% separator
// cap ("If the separator exceeds 20% of the subproblem,
// fall back to a pure median split with no separator") without
// floating point.
const (
	SeparatorFallbackNumerator   = 1
	SeparatorFallbackDenominator = 5
)

// PhysicalOrdering is Stage 6's output over the physical NBG's node
// id space.
type PhysicalOrdering struct {
	Perm        []ids.Rank    // NBG node id -> rank
	InvPerm     []ids.NBGNode // rank -> NBG node id
	NComponents int
	MaxDepth    int
}

// FilteredOrdering is Stage 6's output lifted into one mode's filtered
// EBG id space.
type FilteredOrdering struct {
	Perm    []ids.Rank          // filtered node id -> rank
	InvPerm []ids.FilteredNode // rank -> filtered node id
}
