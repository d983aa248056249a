package contract

import (
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/butterfly-osm/butterfly-route-core/ids"
	"github.com/butterfly-osm/butterfly-route-core/order"
	"github.com/butterfly-osm/butterfly-route-core/weights"
)

// adjEntry is one mutable-adjacency row during contraction: a neighbor
// id plus whether it arrived as an original filtered-EBG arc or a
// shortcut, and (for shortcuts) the contracted middle node.
type adjEntry struct {
	to         ids.FilteredNode
	isShortcut bool
	middle     ids.FilteredNode
}

type shortcutCandidate struct {
	pred, succ ids.FilteredNode
	middle     ids.FilteredNode
}

// Build contracts filtered's nodes in ord's rank order, in batches of
// BatchSize, producing a metric-independent CCH topology.
//
// The filtered EBG is directed (turn legality is not reversible), so
// contraction here generalizes the classic undirected unordered-pair
// shortcut rule to directed predecessor/successor pairs: contracting u
// with predecessor p (p->u) and successor s (u->s) of strictly higher
// rank than u produces one directed shortcut p->s, the directed
// specialization of "for each unordered pair (a,b) of U-neighbors, a
// shortcut a<->b exists" when a node's neighbor set is split into those
// it is reached from and those it reaches.
func Build(filtered *weights.Filtered, ord *order.FilteredOrdering) *Topo {
	n := filtered.NumNodes()
	outAdj, inAdj := seedAdjacency(filtered, n)

	for batchStart := 0; batchStart < n; batchStart += BatchSize {
		batchEnd := batchStart + BatchSize
		if batchEnd > n {
			batchEnd = n
		}

		results := make([][]shortcutCandidate, batchEnd-batchStart)
		var eg errgroup.Group
		for i := batchStart; i < batchEnd; i++ {
			i := i
			eg.Go(func() error {
				node := ord.InvPerm[i]
				results[i-batchStart] = shortcutsFor(outAdj, inAdj, ord, node)
				return nil
			})
		}
		_ = eg.Wait()

		for _, candidates := range results {
			for _, c := range candidates {
				outAdj[c.pred] = append(outAdj[c.pred], adjEntry{to: c.succ, isShortcut: true, middle: c.middle})
				inAdj[c.succ] = append(inAdj[c.succ], adjEntry{to: c.pred, isShortcut: true, middle: c.middle})
			}
		}
	}

	return splitUpDown(outAdj, ord)
}

// seedAdjacency initializes outAdj/inAdj from the filtered EBG's
// directed arcs (step 1): arc u→v is recorded as an outgoing
// entry at u and an incoming entry at v, kept separate since the
// filtered EBG's arcs do not imply their own reverse.
func seedAdjacency(filtered *weights.Filtered, n int) (outAdj, inAdj [][]adjEntry) {
	outAdj = make([][]adjEntry, n)
	inAdj = make([][]adjEntry, n)
	invalid := ids.FilteredNode(ids.Invalid)

	for u := 0; u < n; u++ {
		start, end := filtered.Offsets[u], filtered.Offsets[u+1]
		for _, v := range filtered.Heads[start:end] {
			outAdj[u] = append(outAdj[u], adjEntry{to: v, middle: invalid})
			inAdj[v] = append(inAdj[v], adjEntry{to: ids.FilteredNode(u), middle: invalid})
		}
	}
	return outAdj, inAdj
}

// shortcutsFor finds node's U-predecessors and U-successors (adjacency
// entries of strictly higher rank) against a snapshot of outAdj/inAdj
// taken before this batch's merge, and returns one directed shortcut
// candidate per (predecessor, successor) pair (step 2).
func shortcutsFor(outAdj, inAdj [][]adjEntry, ord *order.FilteredOrdering, node ids.FilteredNode) []shortcutCandidate {
	rank := ord.Perm[node]

	var preds, succs []ids.FilteredNode
	for _, e := range inAdj[node] {
		if ord.Perm[e.to] > rank {
			preds = append(preds, e.to)
		}
	}
	for _, e := range outAdj[node] {
		if ord.Perm[e.to] > rank {
			succs = append(succs, e.to)
		}
	}
	if len(preds) == 0 || len(succs) == 0 {
		return nil
	}

	var candidates []shortcutCandidate
	for _, p := range preds {
		for _, s := range succs {
			if p == s {
				continue
			}
			candidates = append(candidates, shortcutCandidate{pred: p, succ: s, middle: node})
		}
	}
	return candidates
}

// splitUpDown deduplicates each node's final outgoing adjacency by
// target id: originals are preferred over shortcuts, and among
// shortcuts the smallest middle id wins, both purely a function of id
// so re-runs are byte-identical; it then splits into UP/DOWN CSR via
// the counting-sort idiom shared with nbg.assembleCSR.
func splitUpDown(outAdj [][]adjEntry, ord *order.FilteredOrdering) *Topo {
	n := len(outAdj)
	deduped := make([][]adjEntry, n)
	upCount := make([]uint32, n+1)
	downCount := make([]uint32, n+1)

	for u := 0; u < n; u++ {
		entries := append([]adjEntry(nil), outAdj[u]...)
		sort.Slice(entries, func(i, j int) bool {
			if entries[i].to != entries[j].to {
				return entries[i].to < entries[j].to
			}
			if entries[i].isShortcut != entries[j].isShortcut {
				return !entries[i].isShortcut
			}
			return entries[i].middle < entries[j].middle
		})

		var rows []adjEntry
		for i, e := range entries {
			if i == 0 || e.to != entries[i-1].to {
				rows = append(rows, e)
			}
		}
		deduped[u] = rows

		uRank := ord.Perm[ids.FilteredNode(u)]
		for _, e := range rows {
			if ord.Perm[e.to] > uRank {
				upCount[u+1]++
			} else {
				downCount[u+1]++
			}
		}
	}

	for i := 1; i <= n; i++ {
		upCount[i] += upCount[i-1]
		downCount[i] += downCount[i-1]
	}

	upHeads := make([]ids.FilteredNode, upCount[n])
	upIsShortcut := make([]bool, upCount[n])
	upMiddle := make([]ids.FilteredNode, upCount[n])
	downHeads := make([]ids.FilteredNode, downCount[n])
	downIsShortcut := make([]bool, downCount[n])
	downMiddle := make([]ids.FilteredNode, downCount[n])

	upCursor := append([]uint32(nil), upCount[:n]...)
	downCursor := append([]uint32(nil), downCount[:n]...)
	invalid := ids.FilteredNode(ids.Invalid)

	nShortcuts := 0
	for u := 0; u < n; u++ {
		uRank := ord.Perm[ids.FilteredNode(u)]
		for _, e := range deduped[u] {
			middle := invalid
			if e.isShortcut {
				middle = e.middle
				nShortcuts++
			}
			if ord.Perm[e.to] > uRank {
				p := upCursor[u]
				upHeads[p] = e.to
				upIsShortcut[p] = e.isShortcut
				upMiddle[p] = middle
				upCursor[u]++
			} else {
				p := downCursor[u]
				downHeads[p] = e.to
				downIsShortcut[p] = e.isShortcut
				downMiddle[p] = middle
				downCursor[u]++
			}
		}
	}

	return &Topo{
		NNodes:         n,
		UpOffsets:      upCount,
		UpHeads:        upHeads,
		UpIsShortcut:   upIsShortcut,
		UpMiddle:       upMiddle,
		DownOffsets:    downCount,
		DownHeads:      downHeads,
		DownIsShortcut: downIsShortcut,
		DownMiddle:     downMiddle,
		NShortcuts:     nShortcuts,
	}
}
