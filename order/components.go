package order

import (
	"sort"

	"github.com/butterfly-osm/butterfly-route-core/ids"
	"github.com/butterfly-osm/butterfly-route-core/nbg"
)

// connectedComponents finds g's connected components via BFS over the
// undirected NBG CSR (step 1), largest first so the parallel
// recursion over components starts its biggest units of work earliest.
func connectedComponents(g *nbg.Graph) [][]ids.NBGNode {
	n := g.NumNodes()
	visited := make([]bool, n)
	var components [][]ids.NBGNode

	for start := 0; start < n; start++ {
		if visited[start] {
			continue
		}
		var component []ids.NBGNode
		queue := []ids.NBGNode{ids.NBGNode(start)}
		visited[start] = true

		for len(queue) > 0 {
			node := queue[0]
			queue = queue[1:]
			component = append(component, node)

			heads, _ := g.Neighbors(node)
			for _, neighbor := range heads {
				if !visited[neighbor] {
					visited[neighbor] = true
					queue = append(queue, neighbor)
				}
			}
		}
		components = append(components, component)
	}

	sort.SliceStable(components, func(i, j int) bool {
		return len(components[i]) > len(components[j])
	})
	return components
}
