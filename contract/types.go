// Package contract implements Stage 7: batched parallel contraction of
// a mode's filtered EBG into a metric-independent CCH topology, which
// shortcuts exist, not their weights (weights are Stage 8's job).
//
// Grounded on the batched, witness-free contraction shape (adjacency
// seeded from original arcs, rank-ordered batches, U-neighbor pairwise
// shortcut generation merged back into shared adjacency, final UP/DOWN
// split with per-neighbor dedup) and azybler/map_router's
// pkg/ch/contractor.go for the counting-sort CSR assembly idiom (also
// used by nbg.assembleCSR), preferred here over a naive
// push-then-convert loop.
package contract

import "github.com/butterfly-osm/butterfly-route-core/ids"

// BatchSize is the number of ranks contracted "simultaneously" per
// round ("batches of ~50K for parallelism").
const BatchSize = 50000

// Topo is Stage 7's output: UP and DOWN CSR adjacency over a mode's
// filtered EBG id space, each edge tagged as original or
// shortcut-with-middle.
type Topo struct {
	NNodes int

	UpOffsets    []uint32
	UpHeads      []ids.FilteredNode
	UpIsShortcut []bool
	UpMiddle     []ids.FilteredNode // ids.Invalid for originals

	DownOffsets    []uint32
	DownHeads      []ids.FilteredNode
	DownIsShortcut []bool
	DownMiddle     []ids.FilteredNode

	// NShortcuts counts shortcut CSR rows across both UP and DOWN.
	// Each directed shortcut p->s is stored once, in p's UP or DOWN
	// row, so this equals the distinct-shortcut count.
	NShortcuts int
}

// NumUpEdges returns the UP CSR's total row count.
func (t *Topo) NumUpEdges() int { return len(t.UpHeads) }

// NumDownEdges returns the DOWN CSR's total row count.
func (t *Topo) NumDownEdges() int { return len(t.DownHeads) }

// UpNeighbors returns u's UP adjacency: higher-ranked neighbors plus
// their shortcut tag and middle node.
func (t *Topo) UpNeighbors(u ids.FilteredNode) (heads []ids.FilteredNode, isShortcut []bool, middle []ids.FilteredNode) {
	s, e := t.UpOffsets[u], t.UpOffsets[u+1]
	return t.UpHeads[s:e], t.UpIsShortcut[s:e], t.UpMiddle[s:e]
}

// DownNeighbors returns u's DOWN adjacency: lower-or-equal-ranked
// neighbors plus their shortcut tag and middle node.
func (t *Topo) DownNeighbors(u ids.FilteredNode) (heads []ids.FilteredNode, isShortcut []bool, middle []ids.FilteredNode) {
	s, e := t.DownOffsets[u], t.DownOffsets[u+1]
	return t.DownHeads[s:e], t.DownIsShortcut[s:e], t.DownMiddle[s:e]
}
