// Package customize implements Stage 8: applying one mode's per-node
// weights and per-arc turn penalties to a metric-independent CCH
// topology, producing up_w[]/down_w[] by a bottom-up rank-order sweep.
//
// Nodes are processed in ascending rank, computing each UP/DOWN edge's
// weight as either w[target]+turn_penalty (an original edge) or
// sat_add(weight(u->m), weight(m->v)) (a shortcut via m, both
// constituent weights already computed because m has lower rank than
// both u and v), with the original edge's arc looked up by binary
// search on the sorted-by-head adjacency row, the same CSR-lookup
// discipline nbg's own assembly uses.
package customize

// Weights is Stage 8's output (cch.w.<mode>.u32): one weight per CCH
// topology edge, index-aligned with the topology's UP/DOWN CSR rows.
type Weights struct {
	UpW   []uint32
	DownW []uint32
}

// UpWeight returns the customized weight of topology UP-row i.
func (w *Weights) UpWeight(i int) uint32 { return w.UpW[i] }

// DownWeight returns the customized weight of topology DOWN-row i.
func (w *Weights) DownWeight(i int) uint32 { return w.DownW[i] }
