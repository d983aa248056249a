package nbg

import (
	"context"
	"fmt"
	"runtime"
	"sort"

	"github.com/paulmach/osm"
	"golang.org/x/sync/errgroup"

	"github.com/butterfly-osm/butterfly-route-core/coreerr"
	"github.com/butterfly-osm/butterfly-route-core/ids"
	"github.com/butterfly-osm/butterfly-route-core/internal/geo"
	"github.com/butterfly-osm/butterfly-route-core/osmingest"
)

// Included decides whether a way contributes to the NBG at all: an
// included way is one whose per-mode attributes show access in at
// least one mode in at least one direction. Callers typically pass
// profile.IsIncludedAnyMode bound to a mode-profile table.
type Included func(tags map[string]string) bool

// ClassOf derives an edge's ClassBits from a way's tags. A nil ClassOf
// leaves every edge's Class at zero.
type ClassOf func(tags map[string]string) ClassBits

// BuildStats reports counters useful for the Stage-3 lock.json.
type BuildStats struct {
	WaysConsidered    int
	WaysIncluded      int
	EdgesSkippedNoCoord int
	DecisionNodes     int
}

// Build constructs the NBG from ways and node coordinates. ways need
// not be pre-filtered; Build applies included itself. nodeCoord must
// have an entry for every node referenced by an included way that
// Build is expected to resolve; missing coordinates cause the
// containing edge to be skipped, not the whole build to fail.
func Build(ways []osmingest.Way, nodeCoord map[osm.NodeID]osmingest.Node, included Included, classOf ClassOf) (*Graph, BuildStats, error) {
	var stats BuildStats
	stats.WaysConsidered = len(ways)

	includedWays := make([]osmingest.Way, 0, len(ways))
	for _, w := range ways {
		if err := osmingest.ValidateWay(w); err != nil {
			continue
		}
		if included(w.Tags) {
			includedWays = append(includedWays, w)
		}
	}
	stats.WaysIncluded = len(includedWays)

	// Decision-node identification: endpoint of any included way, or
	// referenced by >=2 distinct included ways.
	refWayOf := make(map[osm.NodeID]osm.WayID, len(includedWays)*2)
	multiRef := make(map[osm.NodeID]bool)
	decision := make(map[osm.NodeID]bool)

	for _, w := range includedWays {
		decision[w.NodeRefs[0]] = true
		decision[w.NodeRefs[len(w.NodeRefs)-1]] = true
		seenInThisWay := make(map[osm.NodeID]bool, len(w.NodeRefs))
		for _, n := range w.NodeRefs {
			if seenInThisWay[n] {
				continue
			}
			seenInThisWay[n] = true
			if prevWay, ok := refWayOf[n]; ok {
				if prevWay != w.ID {
					multiRef[n] = true
				}
			} else {
				refWayOf[n] = w.ID
			}
		}
	}
	for n := range multiRef {
		decision[n] = true
	}
	stats.DecisionNodes = len(decision)

	// Assign compact ids to decision nodes in ascending OSM-id order
	// so the result is deterministic across runs.
	decisionIDs := make([]osm.NodeID, 0, len(decision))
	for n := range decision {
		decisionIDs = append(decisionIDs, n)
	}
	sort.Slice(decisionIDs, func(i, j int) bool { return decisionIDs[i] < decisionIDs[j] })

	compactOf := make(map[osm.NodeID]ids.NBGNode, len(decisionIDs))
	for i, n := range decisionIDs {
		compactOf[n] = ids.NBGNode(i)
	}

	// Edge emission runs in parallel over ways, using an in-process
	// worker pool for Stage 3's parallel regions.
	rawEdges, err := emitEdgesParallel(includedWays, nodeCoord, compactOf, classOf, &stats)
	if err != nil {
		return nil, stats, err
	}

	// Deterministic order before CSR assembly ("iteration over
	// any hash-map during emission must be replaced by a sort on a
	// canonical key before writing").
	sort.Slice(rawEdges, func(i, j int) bool {
		a, b := rawEdges[i], rawEdges[j]
		if a.A != b.A {
			return a.A < b.A
		}
		if a.B != b.B {
			return a.B < b.B
		}
		return a.FirstOSMWayID < b.FirstOSMWayID
	})

	g := &Graph{
		NodeOSMID: decisionIDs,
		NodeLat:   make([]int32, len(decisionIDs)),
		NodeLon:   make([]int32, len(decisionIDs)),
		Edges:     rawEdges,
	}
	for i, n := range decisionIDs {
		c := nodeCoord[n]
		g.NodeLat[i] = osmingest.LatLonFixedPoint(c.Lat)
		g.NodeLon[i] = osmingest.LatLonFixedPoint(c.Lon)
	}

	assembleCSR(g)
	return g, stats, nil
}

// emitEdgesParallel walks each included way's node sequence and emits
// one Edge per decision-node-to-decision-node span. Ways are
// independent, so the walk fans out over errgroup workers; each
// worker appends to its own slice to avoid contention, and results are
// concatenated (order is re-established by the caller's sort, so
// worker interleaving does not affect determinism).
func emitEdgesParallel(ways []osmingest.Way, nodeCoord map[osm.NodeID]osmingest.Node, compactOf map[osm.NodeID]ids.NBGNode, classOf ClassOf, stats *BuildStats) ([]Edge, error) {
	workers := runtime.GOMAXPROCS(0)
	if workers < 1 {
		workers = 1
	}
	if workers > len(ways) && len(ways) > 0 {
		workers = len(ways)
	}
	if workers == 0 {
		return nil, nil
	}

	partials := make([][]Edge, workers)
	skipped := make([]int, workers)

	g, _ := errgroup.WithContext(context.Background())
	chunk := (len(ways) + workers - 1) / workers
	for w := 0; w < workers; w++ {
		w := w
		start := w * chunk
		end := start + chunk
		if start > len(ways) {
			start = len(ways)
		}
		if end > len(ways) {
			end = len(ways)
		}
		g.Go(func() error {
			local := make([]Edge, 0, (end-start)*2)
			for _, way := range ways[start:end] {
				edges, nSkipped := emitWayEdges(way, nodeCoord, compactOf, classOf)
				local = append(local, edges...)
				skipped[w] += nSkipped
			}
			partials[w] = local
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("nbg: parallel edge emission: %w", err)
	}

	var total int
	for _, p := range partials {
		total += len(p)
	}
	for _, s := range skipped {
		stats.EdgesSkippedNoCoord += s
	}
	out := make([]Edge, 0, total)
	for _, p := range partials {
		out = append(out, p...)
	}
	return out, nil
}

func emitWayEdges(way osmingest.Way, nodeCoord map[osm.NodeID]osmingest.Node, compactOf map[osm.NodeID]ids.NBGNode, classOf ClassOf) ([]Edge, int) {
	var edges []Edge
	var skipped int

	var class ClassBits
	if classOf != nil {
		class = classOf(way.Tags)
	}

	segStart := 0 // index into way.NodeRefs of the current span's start decision node
	var polyline []Point
	var lengthM float64
	haveAllCoords := true

	for i := 1; i < len(way.NodeRefs); i++ {
		cur := way.NodeRefs[i]
		prev := way.NodeRefs[i-1]

		prevCoord, prevOK := nodeCoord[prev]
		curCoord, curOK := nodeCoord[cur]
		if !prevOK || !curOK {
			haveAllCoords = false
		} else {
			lengthM += geo.Haversine(prevCoord.Lat, prevCoord.Lon, curCoord.Lat, curCoord.Lon)
		}

		_, isDecision := compactOf[cur]
		if !isDecision {
			if c, ok := nodeCoord[cur]; ok {
				polyline = append(polyline, Point{
					LatFxp: osmingest.LatLonFixedPoint(c.Lat),
					LonFxp: osmingest.LatLonFixedPoint(c.Lon),
				})
			}
			continue
		}

		startID := way.NodeRefs[segStart]
		endID := cur
		startCompact, startHas := compactOf[startID]
		endCompact, endHas := compactOf[endID]

		if !haveAllCoords || !startHas || !endHas {
			skipped++
		} else {
			a, b := startCompact, endCompact
			rev := false
			if a > b {
				a, b = b, a
				rev = true
			}
			pl := polyline
			if rev {
				pl = reversePoints(polyline)
			}
			var bearing uint16 = BearingNA
			sc, sOK := nodeCoord[startID]
			ec, eOK := nodeCoord[endID]
			if sOK && eOK {
				bearing = EncodeBearing(geo.InitialBearingDeg(sc.Lat, sc.Lon, ec.Lat, ec.Lon))
			}
			edges = append(edges, Edge{
				A:              a,
				B:              b,
				LengthMM:       SaturateLength(uint64(lengthM * 1000)),
				BearingDeciDeg: bearing,
				Polyline:       pl,
				FirstOSMWayID:  way.ID,
				Class:          class,
			})
		}

		segStart = i
		polyline = nil
		lengthM = 0
		haveAllCoords = true
	}

	return edges, skipped
}

func reversePoints(pts []Point) []Point {
	if len(pts) == 0 {
		return nil
	}
	out := make([]Point, len(pts))
	for i, p := range pts {
		out[len(pts)-1-i] = p
	}
	return out
}

// assembleCSR builds Offsets/Heads/EdgeIdx from g.Edges: insert each
// edge into both endpoints' adjacency, then derive offsets as a prefix
// sum of degree, the same CSR-build-then-binary-search discipline
// customize's weight lookup relies on.
func assembleCSR(g *Graph) {
	n := g.NumNodes()
	degree := make([]uint32, n+1)
	for _, e := range g.Edges {
		degree[e.A+1]++
		if e.B != e.A {
			degree[e.B+1]++
		} else {
			// Self-loop (a closed way whose only decision node is its
			// shared endpoint): counted once already via e.A above, and
			// inserted once below.
		}
	}
	for i := 1; i <= n; i++ {
		degree[i] += degree[i-1]
	}
	g.Offsets = degree

	total := degree[n]
	g.Heads = make([]ids.NBGNode, total)
	g.EdgeIdx = make([]ids.NBGEdge, total)

	cursor := make([]uint32, n)
	copy(cursor, degree[:n])

	for ei, e := range g.Edges {
		pa := cursor[e.A]
		g.Heads[pa] = e.B
		g.EdgeIdx[pa] = ids.NBGEdge(ei)
		cursor[e.A]++

		if e.B != e.A {
			pb := cursor[e.B]
			g.Heads[pb] = e.A
			g.EdgeIdx[pb] = ids.NBGEdge(ei)
			cursor[e.B]++
		}
	}
}

// ValidateInvariants checks two structural invariants of a built NBG:
// every edge references valid compact node ids, and Offsets has n+1
// entries. It does not check that CSR adjacency is symmetric.
func ValidateInvariants(g *Graph) error {
	n := g.NumNodes()
	for i, e := range g.Edges {
		if int(e.A) >= n || int(e.B) >= n {
			return fmt.Errorf("nbg: edge %d references out-of-range node (a=%d b=%d n=%d): %w", i, e.A, e.B, n, coreerr.ErrInvariantViolation)
		}
	}
	if len(g.Offsets) != n+1 {
		return fmt.Errorf("nbg: offsets length %d != n+1 (%d): %w", len(g.Offsets), n+1, coreerr.ErrInvariantViolation)
	}
	return nil
}
