// Package query implements Stage 9: the online query engine answering
// point-to-point, one-to-many (bucket matrix), and isochrone requests
// against a mode's CCH hierarchy, plus the spatial snap that maps a
// raw coordinate to an accessible EBG node.
//
// Grounded on a nearest-accessible-neighbor spatial snap, a
// version-stamped bucket many-to-many engine generalized from the
// physical NBG to a per-mode CCH, recursive shortcut expansion for
// path unpacking, a reverse DOWN adjacency for the bucket backward
// sweep, and a lazy-decrease-key min-heap runner discipline
// generalized here to run two simultaneous searches over uint32 node
// ids instead of one over string-keyed vertices.
package query

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/butterfly-osm/butterfly-route-core/coreerr"
	"github.com/butterfly-osm/butterfly-route-core/ids"
)

// Route is the result of a point-to-point query.
type Route struct {
	// RequestID is a fresh UUID per query result, for correlating this
	// route with server logs.
	RequestID uuid.UUID

	// DurationDS is the total travel cost in deciseconds.
	DurationDS uint32

	// FilteredPath is the sequence of filtered-EBG node ids visited,
	// source to target inclusive, after shortcut unpacking.
	FilteredPath []ids.FilteredNode
}

// Matrix is the result of a one-to-many (bucket M2M) query:
// DurationsDS[i*len(targets)+j] is the cost from sources[i] to
// targets[j], or satmath.NoPath if unreachable.
type Matrix struct {
	RequestID   uuid.UUID
	NSources    int
	NTargets    int
	DurationsDS []uint32
}

// At returns the duration from source i to target j.
func (m *Matrix) At(i, j int) uint32 { return m.DurationsDS[i*m.NTargets+j] }

// IsochroneResult is the result of a forward-only reachability query,
// one IsochroneBand per requested threshold, computed from a single
// sweep out to the largest threshold. Turning a band's nodes and
// frontier segments into a polygon is left to an external geometry
// layer.
type IsochroneResult struct {
	RequestID uuid.UUID
	Bands     []IsochroneBand
}

// IsochroneBand is the reachability set for one threshold: every
// filtered-EBG node reached within it, with its reaching duration,
// plus every frontier segment: an edge that starts within the
// threshold and ends beyond it.
type IsochroneBand struct {
	ThresholdDS uint32
	Nodes       []ids.FilteredNode
	DurationDS  []uint32
	Frontier    []FrontierSegment
}

// FrontierSegment is an edge crossing a band's threshold: it is
// reached at ArcIdx's tail within the threshold, but its full cost
// would carry the search past it. Position is the fractional distance
// along the edge, from Tail, at which the threshold is actually
// crossed: (threshold - dist_at_tail) / edge_weight, always in [0,1).
type FrontierSegment struct {
	Tail     ids.FilteredNode
	ArcIdx   uint32
	Position float64
}

var (
	// ErrEmptyGraph guards against queries against an unloaded mode.
	ErrEmptyGraph = errors.New("query: empty graph")
)

// errUnreachable wraps coreerr.ErrUnreachableEndpoint with the failing
// coordinate, for snap failures.
func errUnreachable(lon, lat float64, mode ids.Mode) error {
	return fmt.Errorf("query: snap(%.5f,%.5f) mode=%s: %w", lon, lat, mode, coreerr.ErrUnreachableEndpoint)
}

// errNoPath wraps coreerr.ErrNoPath for a source/target pair with no
// finite route.
func errNoPath(s, t ids.FilteredNode) error {
	return fmt.Errorf("query: no path %d->%d: %w", s, t, coreerr.ErrNoPath)
}
