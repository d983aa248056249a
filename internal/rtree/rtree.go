// Package rtree implements a static, bulk-loaded grid spatial index
// for snapping a query coordinate to the nearest EBG node accessible
// to a given mode: nearest-neighbor search over candidate cells, then
// filtering by accessibility bit.
//
// No pack example carries an R-tree or k-d tree library, so the index
// itself is a uniform grid bucketed with the same counting-sort CSR
// assembly nbg/contract/order all share, rather than a hand-rolled
// balanced tree: a uniform grid gives the same expected
// O(1)-cells-per-query behavior as an R-tree for the
// roughly-uniformly-distributed road-node coordinates this index
// holds, with a much smaller, easier-to-verify implementation. This
// choice is a stdlib-only component and is documented as such in
// DESIGN.md.
package rtree

import (
	"math"
	"sort"

	"github.com/butterfly-osm/butterfly-route-core/ids"
	"github.com/butterfly-osm/butterfly-route-core/internal/bitset"
)

// Point is one indexed location: an EBG node id and its representative
// (lon, lat) coordinate (the midpoint of its polyline, . 8).
type Point struct {
	ID  ids.EBGNode
	Lon float64
	Lat float64
}

// Index is a bulk-loaded uniform grid over a fixed set of points.
type Index struct {
	minLon, minLat   float64
	cellLon, cellLat float64
	cols, rows       int

	// CSR bucketing points by grid cell, built once at Build time.
	offsets []uint32
	ids     []ids.EBGNode
	lons    []float64
	lats    []float64
}

// Build indexes points into a grid sized for roughly 2 points per cell.
func Build(points []Point) *Index {
	idx := &Index{}
	if len(points) == 0 {
		idx.offsets = []uint32{0}
		idx.cols, idx.rows = 1, 1
		idx.cellLon, idx.cellLat = 1, 1
		return idx
	}

	minLon, maxLon := points[0].Lon, points[0].Lon
	minLat, maxLat := points[0].Lat, points[0].Lat
	for _, p := range points[1:] {
		minLon = math.Min(minLon, p.Lon)
		maxLon = math.Max(maxLon, p.Lon)
		minLat = math.Min(minLat, p.Lat)
		maxLat = math.Max(maxLat, p.Lat)
	}

	target := int(math.Sqrt(float64(len(points)) / 2))
	if target < 1 {
		target = 1
	}
	idx.cols, idx.rows = target, target
	idx.minLon, idx.minLat = minLon, minLat
	idx.cellLon = spanOrOne(maxLon - minLon) / float64(idx.cols)
	idx.cellLat = spanOrOne(maxLat - minLat) / float64(idx.rows)

	n := len(points)
	cellOf := make([]int, n)
	counts := make([]uint32, idx.cols*idx.rows+1)
	for i, p := range points {
		c := idx.cellID(p.Lon, p.Lat)
		cellOf[i] = c
		counts[c+1]++
	}
	for i := 1; i < len(counts); i++ {
		counts[i] += counts[i-1]
	}

	idx.offsets = counts
	idx.ids = make([]ids.EBGNode, n)
	idx.lons = make([]float64, n)
	idx.lats = make([]float64, n)
	cursor := append([]uint32(nil), counts[:len(counts)-1]...)
	for i, p := range points {
		c := cellOf[i]
		pos := cursor[c]
		idx.ids[pos] = p.ID
		idx.lons[pos] = p.Lon
		idx.lats[pos] = p.Lat
		cursor[c]++
	}
	return idx
}

func spanOrOne(span float64) float64 {
	if span <= 0 {
		return 1
	}
	return span
}

func (idx *Index) cellOf(lon, lat float64) (int, int) {
	cx := int((lon - idx.minLon) / idx.cellLon)
	cy := int((lat - idx.minLat) / idx.cellLat)
	if cx < 0 {
		cx = 0
	}
	if cx >= idx.cols {
		cx = idx.cols - 1
	}
	if cy < 0 {
		cy = 0
	}
	if cy >= idx.rows {
		cy = idx.rows - 1
	}
	return cx, cy
}

func (idx *Index) cellID(lon, lat float64) int {
	cx, cy := idx.cellOf(lon, lat)
	return cy*idx.cols + cx
}

type candidate struct {
	id   ids.EBGNode
	dist float64
}

// Nearest returns up to k ids with mask bit set, nearest to (lon, lat),
// sorted by ascending distance. Returns fewer than k (possibly zero) if
// not enough accessible points exist.
func (idx *Index) Nearest(lon, lat float64, mask *bitset.Set, k int) []ids.EBGNode {
	if k <= 0 || len(idx.ids) == 0 {
		return nil
	}

	r := math.Max(idx.cellLon, idx.cellLat)
	maxRadius := math.Max(float64(idx.cols)*idx.cellLon, float64(idx.rows)*idx.cellLat) * 2
	for {
		cands := idx.collect(lon, lat, r, mask)
		sort.Slice(cands, func(i, j int) bool { return cands[i].dist < cands[j].dist })
		if len(cands) >= k && cands[k-1].dist <= r*r {
			out := make([]ids.EBGNode, k)
			for i := 0; i < k; i++ {
				out[i] = cands[i].id
			}
			return out
		}
		if r >= maxRadius {
			out := make([]ids.EBGNode, len(cands))
			for i, c := range cands {
				out[i] = c.id
			}
			if len(out) > k {
				out = out[:k]
			}
			return out
		}
		r *= 2
	}
}

func (idx *Index) collect(lon, lat, radius float64, mask *bitset.Set) []candidate {
	minCx, minCy := idx.cellOf(lon-radius, lat-radius)
	maxCx, maxCy := idx.cellOf(lon+radius, lat+radius)

	var out []candidate
	for cy := minCy; cy <= maxCy; cy++ {
		for cx := minCx; cx <= maxCx; cx++ {
			c := cy*idx.cols + cx
			start, end := idx.offsets[c], idx.offsets[c+1]
			for i := start; i < end; i++ {
				id := idx.ids[i]
				if mask != nil && !mask.Test(int(id)) {
					continue
				}
				dx := idx.lons[i] - lon
				dy := idx.lats[i] - lat
				out = append(out, candidate{id: id, dist: dx*dx + dy*dy})
			}
		}
	}
	return out
}
