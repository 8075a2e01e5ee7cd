package trailnet

import (
	"container/heap"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Shape is the kind of route a pattern asks for.
type Shape string

const (
	ShapeLoop         Shape = "loop"
	ShapeOutAndBack   Shape = "out-and-back"
	ShapePointToPoint Shape = "point-to-point"
)

// RoutePattern is a target specification: distance, elevation gain, shape,
// and the acceptable deviation from the targets. Read-only configuration.
type RoutePattern struct {
	TargetKm   float64 // target distance
	TargetGain float64 // target elevation gain in m; 0 means don't care
	Tolerance  float64 // acceptable deviation as a fraction, e.g. 0.1 for 10%
	Shape      Shape
}

func (p RoutePattern) validate() error {
	if p.TargetKm <= 0 {
		return fmt.Errorf("pattern target distance must be positive, got %.3f", p.TargetKm)
	}
	if p.Tolerance <= 0 {
		return fmt.Errorf("pattern tolerance must be positive, got %.3f", p.Tolerance)
	}
	switch p.Shape {
	case ShapeLoop, ShapeOutAndBack, ShapePointToPoint:
	default:
		return fmt.Errorf("unknown route shape %q", p.Shape)
	}
	return nil
}

// score measures closeness to the pattern, each error normalized by the
// pattern's tolerance so 0 is a perfect match and anything past 1 on either
// dimension is outside tolerance and discarded.
func (p RoutePattern) score(distKm, gain float64) (float64, bool) {
	distErr := math.Abs(distKm-p.TargetKm) / (p.TargetKm * p.Tolerance)
	if distErr > 1 {
		return 0, false
	}
	var gainErr float64
	if p.TargetGain > 0 {
		gainErr = math.Abs(gain-p.TargetGain) / (p.TargetGain * p.Tolerance)
		if gainErr > 1 {
			return 0, false
		}
	}
	return (distErr + gainErr) / 2, true
}

// maxDistance is the upper edge of the pattern's distance window.
func (p RoutePattern) maxDistance() float64 {
	return p.TargetKm * (1 + p.Tolerance)
}

// RouteCandidate is one route satisfying a pattern: an ordered edge sequence,
// its aggregates, a score (lower is better) and the source trail names for
// reporting.
type RouteCandidate struct {
	ID         string // deterministic uuid derived from shape and edges
	Name       string
	Shape      Shape
	StartNode  int
	EndNode    int // equals StartNode for loops and out-and-backs
	EdgeIDs    []int
	DistanceKm float64
	Gain       float64 // m
	Score      float64
	TrailNames []string
}

// RouteOptions bound the search.
type RouteOptions struct {
	StartNode     int // start node id, or -1 to consider every node
	MaxCandidates int
	MaxCycleEdges int // cap on edges per enumerated cycle
	MaxExpansions int // search step budget; when exhausted, partial results are returned
}

func DefaultRouteOptions() RouteOptions {
	return RouteOptions{
		StartNode:     -1,
		MaxCandidates: 10,
		MaxCycleEdges: 12,
		MaxExpansions: 500000,
	}
}

// FindRoutes searches the graph for routes matching the pattern and returns
// them ranked best first. The search is read-only: concurrent calls against
// the same graph need no coordination. An empty result with a
// tolerance-exhausted diagnostic means nothing fit, which is not an error.
func FindRoutes(g *Graph, ci *CompositionIndex, pattern RoutePattern, opts RouteOptions) ([]RouteCandidate, []Diagnostic, error) {
	if err := pattern.validate(); err != nil {
		return nil, nil, err
	}
	if opts.StartNode >= len(g.Nodes) {
		return nil, nil, fmt.Errorf("start node %d not in graph", opts.StartNode)
	}

	var candidates []RouteCandidate
	var diags []Diagnostic
	switch pattern.Shape {
	case ShapePointToPoint:
		candidates = findPointToPoint(g, ci, pattern, opts)
	case ShapeOutAndBack:
		candidates = findOutAndBack(g, ci, pattern, opts)
	case ShapeLoop:
		candidates = findLoops(g, ci, pattern, opts, &diags)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Score != b.Score {
			return a.Score < b.Score
		}
		da := math.Abs(a.DistanceKm - pattern.TargetKm)
		db := math.Abs(b.DistanceKm - pattern.TargetKm)
		if da != db {
			return da < db
		}
		if a.StartNode != b.StartNode {
			return a.StartNode < b.StartNode
		}
		return a.ID < b.ID
	})
	if opts.MaxCandidates > 0 && len(candidates) > opts.MaxCandidates {
		candidates = candidates[:opts.MaxCandidates]
	}
	if len(candidates) == 0 {
		diags = append(diags, Diagnostic{
			Kind:   ToleranceExhausted,
			Detail: fmt.Sprintf("no %s candidate within %.0f%% of %.1fkm", pattern.Shape, pattern.Tolerance*100, pattern.TargetKm),
		})
	}
	return candidates, diags, nil
}

// pathInfo is the shortest-path record for one node.
type pathInfo struct {
	dist     float64
	gain     float64 // climb accumulated along the shortest path
	loss     float64
	prevEdge int
	prevNode int
	reached  bool
}

type queueItem struct {
	node int
	dist float64
}

type queue []queueItem

func (q queue) Len() int           { return len(q) }
func (q queue) Less(i, j int) bool { return q[i].dist < q[j].dist }
func (q queue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }
func (q *queue) Push(x any)        { *q = append(*q, x.(queueItem)) }
func (q *queue) Pop() any {
	old := *q
	item := old[len(old)-1]
	*q = old[:len(old)-1]
	return item
}

// dijkstra computes distance-weighted shortest paths from start, accumulating
// elevation gain and loss along each path. An edge traversed against its
// geometry direction swaps gain and loss.
func dijkstra(g *Graph, inc [][]int, start int) []pathInfo {
	info := make([]pathInfo, len(g.Nodes))
	for i := range info {
		info[i] = pathInfo{dist: math.Inf(1), prevEdge: -1, prevNode: -1}
	}
	info[start].dist = 0
	info[start].reached = true

	q := &queue{{node: start}}
	heap.Init(q)
	done := make([]bool, len(g.Nodes))
	for q.Len() > 0 {
		item := heap.Pop(q).(queueItem)
		u := item.node
		if done[u] {
			continue
		}
		done[u] = true
		for _, eid := range inc[u] {
			e := g.Edges[eid]
			v := e.Opposite(u)
			alt := info[u].dist + e.Length
			if alt >= info[v].dist {
				continue
			}
			gain, loss := e.Gain, e.Loss
			if u == e.To {
				gain, loss = loss, gain
			}
			info[v] = pathInfo{
				dist:     alt,
				gain:     info[u].gain + gain,
				loss:     info[u].loss + loss,
				prevEdge: eid,
				prevNode: u,
				reached:  true,
			}
			heap.Push(q, queueItem{node: v, dist: alt})
		}
	}
	return info
}

// pathEdges reconstructs the edge sequence from the search start to t.
func pathEdges(info []pathInfo, t int) []int {
	var rev []int
	for n := t; info[n].prevEdge >= 0; n = info[n].prevNode {
		rev = append(rev, info[n].prevEdge)
	}
	out := make([]int, len(rev))
	for i, e := range rev {
		out[len(rev)-1-i] = e
	}
	return out
}

func startNodes(g *Graph, opts RouteOptions) []int {
	if opts.StartNode >= 0 {
		return []int{opts.StartNode}
	}
	starts := make([]int, len(g.Nodes))
	for i := range starts {
		starts[i] = i
	}
	return starts
}

func findPointToPoint(g *Graph, ci *CompositionIndex, pattern RoutePattern, opts RouteOptions) []RouteCandidate {
	inc := g.Incidence()
	var out []RouteCandidate
	for _, s := range startNodes(g, opts) {
		info := dijkstra(g, inc, s)
		for t := range g.Nodes {
			if t == s {
				continue
			}
			if opts.StartNode < 0 && t < s {
				continue // both directions of the pair are scored from the lower start
			}
			// straight-line separation incompatible with the target can
			// be rejected before looking at the path
			if g.Nodes[s].Pos.Distance(g.Nodes[t].Pos) > pattern.maxDistance() {
				continue
			}
			if !info[t].reached {
				continue
			}
			fwdScore, fwdOK := pattern.score(info[t].dist, info[t].gain)
			if opts.StartNode >= 0 {
				if fwdOK {
					out = append(out, newCandidate(ci, pattern.Shape, s, t, pathEdges(info, t), info[t].dist, info[t].gain, fwdScore))
				}
				continue
			}
			// gain is direction-dependent: walking the same path back
			// climbs what the forward walk descended
			revScore, revOK := pattern.score(info[t].dist, info[t].loss)
			switch {
			case fwdOK && (!revOK || fwdScore <= revScore):
				out = append(out, newCandidate(ci, pattern.Shape, s, t, pathEdges(info, t), info[t].dist, info[t].gain, fwdScore))
			case revOK:
				fwd := pathEdges(info, t)
				rev := make([]int, len(fwd))
				for i, e := range fwd {
					rev[len(fwd)-1-i] = e
				}
				out = append(out, newCandidate(ci, pattern.Shape, t, s, rev, info[t].dist, info[t].loss, revScore))
			}
		}
	}
	return out
}

func findOutAndBack(g *Graph, ci *CompositionIndex, pattern RoutePattern, opts RouteOptions) []RouteCandidate {
	inc := g.Incidence()
	var out []RouteCandidate
	for _, s := range startNodes(g, opts) {
		info := dijkstra(g, inc, s)
		for t := range g.Nodes {
			if t == s || !info[t].reached {
				continue
			}
			// the outward leg is half the route
			if g.Nodes[s].Pos.Distance(g.Nodes[t].Pos) > pattern.maxDistance()/2 {
				continue
			}
			dist := info[t].dist * 2
			// the return leg climbs what the outward leg descended
			gain := info[t].gain + info[t].loss
			score, ok := pattern.score(dist, gain)
			if !ok {
				continue
			}
			outward := pathEdges(info, t)
			edges := make([]int, 0, 2*len(outward))
			edges = append(edges, outward...)
			for i := len(outward) - 1; i >= 0; i-- {
				edges = append(edges, outward[i])
			}
			out = append(out, newCandidate(ci, pattern.Shape, s, s, edges, dist, gain, score))
		}
	}
	return out
}

// findLoops enumerates simple cycles reachable from each start node, bounded
// by the cycle-length cap and the expansion budget. When the budget runs out
// the candidates found so far are returned rather than blocking.
func findLoops(g *Graph, ci *CompositionIndex, pattern RoutePattern, opts RouteOptions, diags *[]Diagnostic) []RouteCandidate {
	inc := g.Incidence()
	budget := opts.MaxExpansions
	seen := map[string]int{} // canonical cycle key -> index into out
	var out []RouteCandidate

	record := func(start int, edges []int, dist, gain float64) {
		score, ok := pattern.score(dist, gain)
		if !ok {
			return
		}
		key := canonicalCycleKey(edges)
		cand := newCandidate(ci, ShapeLoop, start, start, edges, dist, gain, score)
		if i, dup := seen[key]; dup {
			// the same cycle walked the other way round; keep the
			// direction that scores better
			if cand.Score < out[i].Score {
				out[i] = cand
			}
			return
		}
		seen[key] = len(out)
		out = append(out, cand)
	}

	exhausted := false
	for _, s := range startNodes(g, opts) {
		if budget <= 0 {
			exhausted = true
			break
		}
		onNode := make([]bool, len(g.Nodes))
		onNode[s] = true
		usedEdge := make([]bool, len(g.Edges))
		var stack []int
		var walk func(u int, dist, gain float64)
		walk = func(u int, dist, gain float64) {
			for _, eid := range inc[u] {
				if budget <= 0 {
					return
				}
				budget--
				if usedEdge[eid] {
					continue
				}
				e := g.Edges[eid]
				v := e.Opposite(u)
				stepGain := e.Gain
				if u == e.To {
					stepGain = e.Loss
				}
				d := dist + e.Length
				if d > pattern.maxDistance() {
					continue
				}
				if v == s {
					if len(stack) >= 1 {
						cycle := append(append([]int{}, stack...), eid)
						record(s, cycle, d, gain+stepGain)
					}
					continue
				}
				if onNode[v] {
					continue
				}
				// each cycle is owned by its lowest node, so it is
				// enumerated from exactly one start
				if opts.StartNode < 0 && v < s {
					continue
				}
				if len(stack)+1 >= opts.MaxCycleEdges {
					continue
				}
				onNode[v] = true
				usedEdge[eid] = true
				stack = append(stack, eid)
				walk(v, d, gain+stepGain)
				stack = stack[:len(stack)-1]
				usedEdge[eid] = false
				onNode[v] = false
			}
		}
		walk(s, 0, 0)
	}
	if exhausted || budget <= 0 {
		*diags = append(*diags, Diagnostic{
			Kind:   SearchBudgetExhausted,
			Detail: fmt.Sprintf("cycle enumeration stopped after %d expansions", opts.MaxExpansions),
		})
	}
	return out
}

// canonicalCycleKey is direction- and rotation-independent: the sorted edge
// id set identifies a simple cycle uniquely.
func canonicalCycleKey(edges []int) string {
	sorted := make([]int, len(edges))
	copy(sorted, edges)
	sort.Ints(sorted)
	var sb strings.Builder
	for i, e := range sorted {
		if i > 0 {
			sb.WriteByte(',')
		}
		fmt.Fprintf(&sb, "%d", e)
	}
	return sb.String()
}

var shapeTitles = map[Shape]string{
	ShapeLoop:         "Loop",
	ShapeOutAndBack:   "Out-and-Back",
	ShapePointToPoint: "Point-to-Point",
}

func newCandidate(ci *CompositionIndex, shape Shape, start, end int, edges []int, dist, gain, score float64) RouteCandidate {
	names := ci.TrailNames(edges)
	name := shapeTitles[shape]
	if len(names) > 0 {
		name = fmt.Sprintf("%s via %s", name, strings.Join(names, ", "))
	}
	seed := fmt.Sprintf("route:%s:%d:%v", shape, start, edges)
	return RouteCandidate{
		ID:         uuid.NewSHA1(uuid.NameSpaceOID, []byte(seed)).String(),
		Name:       name,
		Shape:      shape,
		StartNode:  start,
		EndNode:    end,
		EdgeIDs:    edges,
		DistanceKm: dist,
		Gain:       gain,
		Score:      score,
		TrailNames: names,
	}
}
