package query

import (
	"github.com/google/uuid"

	"github.com/butterfly-osm/butterfly-route-core/contract"
	"github.com/butterfly-osm/butterfly-route-core/customize"
	"github.com/butterfly-osm/butterfly-route-core/ids"
	"github.com/butterfly-osm/butterfly-route-core/satmath"
)

// ComputeRoute answers a point-to-point query between two
// already-snapped filtered-EBG nodes, via bidirectional CCH search
// followed by shortcut unpacking.
func ComputeRoute(topo *contract.Topo, w *customize.Weights, down *DownReverse, fwdState, bwdState *SearchState, source, target ids.FilteredNode) (*Route, error) {
	if source == target {
		return &Route{RequestID: uuid.New(), DurationDS: 0, FilteredPath: []ids.FilteredNode{source}}, nil
	}

	search := newBidiSearch(topo, w, down, fwdState, bwdState)
	dist, meeting := search.run(source, target)
	if dist == satmath.NoPath {
		return nil, errNoPath(source, target)
	}

	u := &unpacker{topo: topo}
	path := u.unpackRoute(fwdState, bwdState, source, target, meeting)

	return &Route{
		RequestID:    uuid.New(),
		DurationDS:   dist,
		FilteredPath: path,
	}, nil
}
