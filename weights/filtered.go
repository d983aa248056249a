package weights

import (
	"github.com/butterfly-osm/butterfly-route-core/ebg"
	"github.com/butterfly-osm/butterfly-route-core/ids"
	"github.com/butterfly-osm/butterfly-route-core/internal/bitset"
)

// BuildFiltered constructs the Stage-5-companion mode-filtered EBG:
// retain nodes with mask=1, renumber them contiguously, and retain
// only the arcs whose turn mode mask includes mode and whose endpoints
// are both retained.
func BuildFiltered(g *ebg.Graph, mode ids.Mode, mask *bitset.Set) *Filtered {
	n := g.NumNodes()

	filteredToOriginal := make([]ids.EBGNode, 0, n)
	originalToFiltered := make([]ids.FilteredNode, n)
	for i := range originalToFiltered {
		originalToFiltered[i] = ids.FilteredNode(ids.Invalid)
	}
	for id := 0; id < n; id++ {
		if !mask.Test(id) {
			continue
		}
		originalToFiltered[id] = ids.FilteredNode(len(filteredToOriginal))
		filteredToOriginal = append(filteredToOriginal, ids.EBGNode(id))
	}
	nFiltered := len(filteredToOriginal)

	offsets := make([]uint32, nFiltered+1)
	var heads []ids.FilteredNode
	var originalArcIdx []uint32

	for fu, origU := range filteredToOriginal {
		offsets[fu] = uint32(len(heads))

		start, end := g.Offsets[origU], g.Offsets[origU+1]
		for arcPos := start; arcPos < end; arcPos++ {
			origV := g.Heads[arcPos]
			if !mask.Test(int(origV)) {
				continue
			}
			turn := g.TurnTable[g.TurnIdx[arcPos]]
			if !turn.ModeMask.Has(mode) {
				continue
			}
			heads = append(heads, originalToFiltered[origV])
			originalArcIdx = append(originalArcIdx, arcPos)
		}
	}
	offsets[nFiltered] = uint32(len(heads))

	return &Filtered{
		Mode:               mode,
		NOriginalNodes:     n,
		Offsets:            offsets,
		Heads:              heads,
		OriginalArcIdx:     originalArcIdx,
		FilteredToOriginal: filteredToOriginal,
		OriginalToFiltered: originalToFiltered,
	}
}
