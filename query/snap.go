package query

import (
	"github.com/butterfly-osm/butterfly-route-core/ebg"
	"github.com/butterfly-osm/butterfly-route-core/ids"
	"github.com/butterfly-osm/butterfly-route-core/internal/rtree"
	"github.com/butterfly-osm/butterfly-route-core/nbg"
	"github.com/butterfly-osm/butterfly-route-core/weights"
)

// fxpToDeg converts a 1e-7-degree fixed-point coordinate to degrees.
func fxpToDeg(v int32) float64 { return float64(v) / 1e7 }

// BuildSpatialIndex indexes every EBG node's representative coordinate
// ("the midpoint of every EBG node's polyline"), shared
// across all modes; per-mode accessibility is applied at query time
// via each mode's bitset.Set mask, not baked into the index.
//
// The representative point is the vertex at index len/2 of the
// underlying NBG edge's full vertex sequence (A, the polyline's
// intermediate points, B) in storage order, not a length-interpolated
// midpoint, and not adjusted for the EBG node's own tail->head
// direction: the two opposite-direction EBG nodes over one NBG edge
// share this same representative point.
func BuildSpatialIndex(physical *nbg.Graph, g *ebg.Graph) *rtree.Index {
	points := make([]rtree.Point, 0, g.NumNodes())
	for id, node := range g.Nodes {
		lon, lat := ebgNodeMidpoint(physical, node)
		points = append(points, rtree.Point{ID: ids.EBGNode(id), Lon: lon, Lat: lat})
	}
	return rtree.Build(points)
}

func ebgNodeMidpoint(physical *nbg.Graph, node ebg.Node) (lon, lat float64) {
	edge := physical.Edges[node.GeomIdx]

	n := len(edge.Polyline) + 2
	mid := n / 2
	switch {
	case mid == 0:
		return fxpToDeg(physical.NodeLon[edge.A]), fxpToDeg(physical.NodeLat[edge.A])
	case mid == n-1:
		return fxpToDeg(physical.NodeLon[edge.B]), fxpToDeg(physical.NodeLat[edge.B])
	default:
		p := edge.Polyline[mid-1]
		return fxpToDeg(p.LonFxp), fxpToDeg(p.LatFxp)
	}
}

// Snap finds the filtered-node id nearest (lon, lat) that this mode's
// weights make accessible. Returns an error wrapping coreerr's
// unreachable sentinel if no accessible node exists within the index.
func Snap(index *rtree.Index, filtered *weights.Filtered, mw weights.ModeWeights, mode ids.Mode, lon, lat float64) (ids.FilteredNode, error) {
	candidates := index.Nearest(lon, lat, mw.Mask, 1)
	for _, ebgID := range candidates {
		if fid, ok := filtered.ToFiltered(ebgID); ok {
			return fid, nil
		}
	}
	return 0, errUnreachable(lon, lat, mode)
}
