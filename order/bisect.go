package order

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/butterfly-osm/butterfly-route-core/ids"
	"github.com/butterfly-osm/butterfly-route-core/nbg"
)

// coords holds lon/lat (x then y) for every physical NBG node,
// extracted once per Build call.
type coords struct {
	x []float64
	y []float64
}

func extractCoords(g *nbg.Graph) coords {
	n := g.NumNodes()
	x := make([]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x[i] = float64(g.NodeLon[i]) * 1e-7
		y[i] = float64(g.NodeLat[i]) * 1e-7
	}
	return coords{x: x, y: y}
}

// principalAxis returns the centroid and dominant-eigenvector axis of
// the 2x2 covariance matrix of nodes' coordinates, using gonum's
// symmetric eigensolver rather than a closed-form quadratic solution;
// equivalent for a 2x2 real symmetric matrix, which always has two
// real eigenvalues.
func principalAxis(c coords, nodes []ids.NBGNode) (cx, cy, ax, ay float64) {
	n := float64(len(nodes))
	var sumX, sumY float64
	for _, node := range nodes {
		sumX += c.x[node]
		sumY += c.y[node]
	}
	cx, cy = sumX/n, sumY/n

	var cxx, cyy, cxy float64
	for _, node := range nodes {
		dx := c.x[node] - cx
		dy := c.y[node] - cy
		cxx += dx * dx
		cyy += dy * dy
		cxy += dx * dy
	}

	if cxx == 0 && cyy == 0 && cxy == 0 {
		return cx, cy, 1, 0
	}

	sym := mat.NewSymDense(2, []float64{cxx, cxy, cxy, cyy})
	var eig mat.EigenSym
	if !eig.Factorize(sym, true) {
		if cxx >= cyy {
			return cx, cy, 1, 0
		}
		return cx, cy, 0, 1
	}
	var vecs mat.Dense
	eig.VectorsTo(&vecs)
	// gonum returns eigenvalues ascending; the dominant axis is the
	// last column.
	return cx, cy, vecs.At(0, 1), vecs.At(1, 1)
}

type projection struct {
	node ids.NBGNode
	proj float64
}

// bisect partitions nodes by projecting onto the principal axis and
// splitting at the median, classifying straddling nodes into a
// separator, falling back to a pure median split when the separator
// exceeds 20% of the subproblem.
func bisect(g *nbg.Graph, c coords, nodes []ids.NBGNode) (left, right, separator []ids.NBGNode) {
	if len(nodes) <= 1 {
		return nil, nil, append([]ids.NBGNode(nil), nodes...)
	}

	cx, cy, ax, ay := principalAxis(c, nodes)

	projections := make([]projection, len(nodes))
	for i, node := range nodes {
		dx := c.x[node] - cx
		dy := c.y[node] - cy
		projections[i] = projection{node: node, proj: dx*ax + dy*ay}
	}
	sort.Slice(projections, func(i, j int) bool { return projections[i].proj < projections[j].proj })

	cutIdx := len(nodes) / 2
	cutValue := projections[cutIdx].proj

	inSet := make(map[ids.NBGNode]bool, len(nodes))
	projOf := make(map[ids.NBGNode]float64, len(nodes))
	for _, p := range projections {
		inSet[p.node] = true
		projOf[p.node] = p.proj
	}

	for _, p := range projections {
		hasLeft, hasRight := false, false
		heads, _ := g.Neighbors(p.node)
		for _, neighbor := range heads {
			if !inSet[neighbor] {
				continue
			}
			if projOf[neighbor] < cutValue {
				hasLeft = true
			} else {
				hasRight = true
			}
		}
		switch {
		case hasLeft && hasRight:
			separator = append(separator, p.node)
		case p.proj < cutValue:
			left = append(left, p.node)
		default:
			right = append(right, p.node)
		}
	}

	if len(separator)*SeparatorFallbackDenominator > len(nodes)*SeparatorFallbackNumerator {
		left, right, separator = nil, nil, nil
		for i, p := range projections {
			if i < cutIdx {
				left = append(left, p.node)
			} else {
				right = append(right, p.node)
			}
		}
	}
	return left, right, separator
}
