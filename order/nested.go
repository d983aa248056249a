package order

import (
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/butterfly-osm/butterfly-route-core/ids"
	"github.com/butterfly-osm/butterfly-route-core/nbg"
)

// nestedDissect recursively bisects nodes, returning them in
// elimination order: left subtree, then right subtree, then the
// separator nodes last, in any stable order. Leaf subproblems
// (len(nodes) <= leaf) are returned as-is, ordered by ascending node
// id for determinism.
func nestedDissect(g *nbg.Graph, c coords, nodes []ids.NBGNode, leaf int, depth int) (order []ids.NBGNode, maxDepth int) {
	if len(nodes) <= leaf {
		sorted := append([]ids.NBGNode(nil), nodes...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
		return sorted, depth
	}

	left, right, separator := bisect(g, c, nodes)

	var leftOrder, rightOrder []ids.NBGNode
	var leftDepth, rightDepth int

	if len(left) == 0 || len(right) == 0 {
		sorted := append([]ids.NBGNode(nil), nodes...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
		return sorted, depth
	}

	var g2 errgroup.Group
	g2.Go(func() error {
		leftOrder, leftDepth = nestedDissect(g, c, left, leaf, depth+1)
		return nil
	})
	g2.Go(func() error {
		rightOrder, rightDepth = nestedDissect(g, c, right, leaf, depth+1)
		return nil
	})
	_ = g2.Wait()

	sort.Slice(separator, func(i, j int) bool { return separator[i] < separator[j] })

	combined := make([]ids.NBGNode, 0, len(nodes))
	combined = append(combined, leftOrder...)
	combined = append(combined, rightOrder...)
	combined = append(combined, separator...)

	maxDepth = leftDepth
	if rightDepth > maxDepth {
		maxDepth = rightDepth
	}
	return combined, maxDepth
}

// BuildPhysical computes the nested-dissection elimination order over
// g's node id space: connected components largest-first, each
// recursively bisected in parallel, then concatenated and numbered by
// position to form perm/inv_perm.
func BuildPhysical(g *nbg.Graph, leafThreshold int) *PhysicalOrdering {
	c := extractCoords(g)
	components := connectedComponents(g)

	orders := make([][]ids.NBGNode, len(components))
	depths := make([]int, len(components))

	var eg errgroup.Group
	for i, component := range components {
		i, component := i, component
		eg.Go(func() error {
			orders[i], depths[i] = nestedDissect(g, c, component, leafThreshold, 0)
			return nil
		})
	}
	_ = eg.Wait()

	n := g.NumNodes()
	perm := make([]ids.Rank, n)
	invPerm := make([]ids.NBGNode, 0, n)
	maxDepth := 0
	for i, o := range orders {
		if depths[i] > maxDepth {
			maxDepth = depths[i]
		}
		for _, node := range o {
			perm[node] = ids.Rank(len(invPerm))
			invPerm = append(invPerm, node)
		}
	}

	return &PhysicalOrdering{
		Perm:        perm,
		InvPerm:     invPerm,
		NComponents: len(components),
		MaxDepth:    maxDepth,
	}
}
