// Package nbg implements Stage 3: building the node-based routing
// graph from included OSM ways, as a CSR-layout undirected graph with
// geometry.
//
// Grounded on an adjacency-list-then-CSR discipline and an
// offset/head assembly pattern, generalized from a string-keyed
// mutable graph to a compact uint32-indexed, contiguous-array layout:
// every array is allocated once up front rather than grown per node.
package nbg

import (
	"github.com/paulmach/osm"

	"github.com/butterfly-osm/butterfly-route-core/ids"
)

// ClassBits flags an NBG edge's special road classes: ferry, bridge,
// tunnel, roundabout, ford.
type ClassBits uint8

const (
	ClassFerry ClassBits = 1 << iota
	ClassBridge
	ClassTunnel
	ClassRoundabout
	ClassFord
)

// BearingNA is the "not applicable" sentinel for Edge.BearingDeciDeg
// ("0-3599 or 65535 = N/A"), used when an edge endpoint has no
// coordinate.
const BearingNA uint16 = 65535

// MinLengthMM and MaxLengthMM are the saturation bounds for NBG edge
// length: saturated to >=1000 mm, max 500 km.
const (
	MinLengthMM uint32 = 1000
	MaxLengthMM uint32 = 500 * 1000 * 1000
)

// Point is a fixed-point (1e-7 degree) coordinate, the polyline
// vertex representation.
type Point struct {
	LatFxp int32
	LonFxp int32
}

// Edge is one undirected NBG edge: the maximal polyline between two
// decision nodes along a single way.
type Edge struct {
	A, B           ids.NBGNode
	LengthMM       uint32
	BearingDeciDeg uint16
	Polyline       []Point // intermediate coordinates only, A/B excluded
	FirstOSMWayID  osm.WayID
	Class          ClassBits
}

// Graph is the CSR-layout node-based graph Stage 3 produces: offsets
// of length n+1, heads, and a parallel edge-index array.
type Graph struct {
	// NodeOSMID[i] and coordinates are aligned with compact id i,
	// assigned in ascending OSM-id order.
	NodeOSMID []osm.NodeID
	NodeLat   []int32 // fixed-point 1e-7 deg
	NodeLon   []int32

	Edges []Edge // indexed by ids.NBGEdge

	// Offsets/Heads/EdgeIdx form the adjacency CSR: for node u, its
	// neighbors are Heads[Offsets[u]:Offsets[u+1]] and the edge
	// serving each neighbor entry is EdgeIdx at the same position.
	Offsets []uint32
	Heads   []ids.NBGNode
	EdgeIdx []ids.NBGEdge
}

// NumNodes returns the node count.
func (g *Graph) NumNodes() int { return len(g.NodeOSMID) }

// NumEdges returns the undirected edge count.
func (g *Graph) NumEdges() int { return len(g.Edges) }

// Neighbors returns node u's adjacency-list slice bounds into Heads/EdgeIdx.
func (g *Graph) Neighbors(u ids.NBGNode) (heads []ids.NBGNode, edgeIdx []ids.NBGEdge) {
	start, end := g.Offsets[u], g.Offsets[u+1]
	return g.Heads[start:end], g.EdgeIdx[start:end]
}

// Degree returns node u's adjacency count.
func (g *Graph) Degree(u ids.NBGNode) int {
	return int(g.Offsets[u+1] - g.Offsets[u])
}

// Other returns the endpoint of edge e that is not u (u must be one of
// e's endpoints).
func (e Edge) Other(u ids.NBGNode) ids.NBGNode {
	if e.A == u {
		return e.B
	}
	return e.A
}

// SaturateLength clamps a raw length in millimeters to [MinLengthMM,
// MaxLengthMM], the saturation rule.
func SaturateLength(mm uint64) uint32 {
	if mm < uint64(MinLengthMM) {
		return MinLengthMM
	}
	if mm > uint64(MaxLengthMM) {
		return MaxLengthMM
	}
	return uint32(mm)
}

// EncodeBearing converts a bearing in degrees [0,360) to the
// deci-degree fixed-point column, range [0, 3599].
func EncodeBearing(deg float64) uint16 {
	d := uint16(deg*10) % 3600
	return d
}
