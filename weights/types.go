// Package weights implements Stage 5: per-mode EBG node weights,
// per-arc turn penalties, the node accessibility mask those weights
// imply, and the mode-filtered EBG subgraph derived from the mask. The
// sat-add shortcut-weight idiom this package's node/arc formulas
// follow at a smaller scope, and the filtered subgraph's
// index-array-only (no maps) layout, carry directly over.
package weights

import (
	"github.com/butterfly-osm/butterfly-route-core/ids"
	"github.com/butterfly-osm/butterfly-route-core/internal/bitset"
)

// ModeWeights is Stage 5's full per-mode output.
type ModeWeights struct {
	// NodeWeightDS[id] is the traversal cost of EBG node id in
	// deciseconds; 0 means the node is inaccessible to this mode.
	NodeWeightDS []uint32

	// Mask reports, per EBG node id, whether this mode may occupy it,
	// the same bit NodeWeightDS[id]==0 implies, kept as its own bitset
	// since Stage 5's companion (filtered EBG) and Stage 6 consume the
	// mask directly without recomputing it from the weights.
	Mask *bitset.Set

	// ArcPenaltyDS[arcPos] is the turn penalty for the EBG arc at CSR
	// position arcPos, in deciseconds.
	ArcPenaltyDS []uint32
}

// Filtered is the Stage-5-companion mode-filtered EBG: the subgraph of
// nodes with mask=1 and arcs whose turn mode mask includes this mode,
// renumbered into a contiguous id space.
type Filtered struct {
	Mode           ids.Mode
	NOriginalNodes int

	// CSR in filtered-node space.
	Offsets []uint32
	Heads   []ids.FilteredNode

	// OriginalArcIdx[arcPos] is the CSR position of this filtered arc
	// in the original (unfiltered) EBG's arc arrays, so Stage 8's
	// weight customization can look up w/t by the original index.
	OriginalArcIdx []uint32

	FilteredToOriginal []ids.EBGNode
	OriginalToFiltered []ids.FilteredNode // ids.Invalid if not retained
}

// NumNodes returns the filtered node count.
func (f *Filtered) NumNodes() int { return len(f.FilteredToOriginal) }

// NumArcs returns the filtered arc count.
func (f *Filtered) NumArcs() int { return len(f.Heads) }

// ToOriginal maps a filtered node id back to its EBG node id.
func (f *Filtered) ToOriginal(id ids.FilteredNode) ids.EBGNode {
	return f.FilteredToOriginal[id]
}

// ToFiltered maps an EBG node id to its filtered id, if retained.
func (f *Filtered) ToFiltered(id ids.EBGNode) (ids.FilteredNode, bool) {
	fid := f.OriginalToFiltered[id]
	if uint32(fid) == ids.Invalid {
		return 0, false
	}
	return fid, true
}
